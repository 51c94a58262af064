package settings

import "errors"

var ErrInvalidSetting = errors.New("invalid setting")
