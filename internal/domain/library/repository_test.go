package library

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatbook/seatbook-api/internal/pkg/testdb"
)

func TestRepositoryApprovalLifecycle(t *testing.T) {
	db := testdb.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()

	id := uuid.New()
	_, err := db.Exec(`
		INSERT INTO libraries (id, librarian_id, name, total_seats)
		VALUES ($1, $2, 'Awaiting review', 12)
	`, id, uuid.New())
	require.NoError(t, err)

	pending, err := repo.ListPendingLibraries(ctx)
	require.NoError(t, err)
	var found bool
	for _, lib := range pending {
		found = found || lib.ID == id
	}
	assert.True(t, found)

	admin := uuid.New()
	lib, err := repo.ApproveLibrary(ctx, id, admin, time.Now())
	require.NoError(t, err)
	assert.True(t, lib.Bookable())
	assert.Equal(t, admin, lib.ApprovedBy.UUID)

	_, err = repo.ApproveLibrary(ctx, id, admin, time.Now())
	assert.ErrorIs(t, err, ErrAlreadyApproved)

	lib, err = repo.RejectLibrary(ctx, id, "Incomplete documents", time.Now())
	require.NoError(t, err)
	assert.False(t, lib.Bookable())
	assert.False(t, lib.ApprovedBy.Valid)
	assert.Equal(t, "Incomplete documents", lib.Rejection.String)

	_, err = repo.ApproveLibrary(ctx, uuid.New(), admin, time.Now())
	assert.ErrorIs(t, err, ErrLibraryNotFound)
	_, err = repo.RejectLibrary(ctx, uuid.New(), "x", time.Now())
	assert.ErrorIs(t, err, ErrLibraryNotFound)
}
