package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service serves the read side of the ledger
type Service struct {
	repo Repository
	loc  *time.Location
}

// NewService creates settlement service. Report dates are local to loc.
func NewService(repo Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{repo: repo, loc: loc}
}

// Repository exposes the ledger for writers that share a transaction.
func (s *Service) Repository() Repository {
	return s.repo
}

// DayRange converts inclusive calendar dates into a created_at range:
// local midnight of from up to local midnight after to.
func (s *Service) DayRange(from, to *time.Time) (Range, error) {
	var rng Range
	if from != nil {
		start := s.midnight(*from)
		rng.From = &start
	}
	if to != nil {
		end := s.midnight(*to).AddDate(0, 0, 1)
		rng.To = &end
	}
	if rng.From != nil && rng.To != nil && !rng.From.Before(*rng.To) {
		return Range{}, ErrInvalidRange
	}
	return rng, nil
}

func (s *Service) midnight(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, s.loc)
}

// CommissionReport totals commission, payout and revenue with a
// per-library breakdown.
func (s *Service) CommissionReport(ctx context.Context, from, to *time.Time) (*Report, error) {
	rng, err := s.DayRange(from, to)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.Summarize(ctx, rng)
	if err != nil {
		return nil, err
	}
	return newReport(from, to, rows), nil
}

// ListByLibrary lists ledger entries of one library, newest first
func (s *Service) ListByLibrary(ctx context.Context, libraryID uuid.UUID, from, to *time.Time, page, limit int) ([]*Transaction, int, error) {
	rng, err := s.DayRange(from, to)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListByLibrary(ctx, libraryID, rng, limit, (page-1)*limit)
}
