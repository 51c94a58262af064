package settlement

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines ledger data access. Entries are only ever inserted.
type Repository interface {
	CreateTx(ctx context.Context, tx *sqlx.Tx, entry *Transaction) error
	ListByLibrary(ctx context.Context, libraryID uuid.UUID, rng Range, limit, offset int) ([]*Transaction, int, error)
	Summarize(ctx context.Context, rng Range) ([]*LibrarySummary, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates ledger repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

var dialect = goqu.Dialect("postgres")

// CreateTx inserts entry inside the payment confirmation transaction.
func (r *repository) CreateTx(ctx context.Context, tx *sqlx.Tx, entry *Transaction) error {
	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO transactions (
			id, booking_id, library_id, user_id, booking_amount, platform_commission,
			librarian_payout, commission_percentage, settlement_status, created_at
		) VALUES (
			:id, :booking_id, :library_id, :user_id, :booking_amount, :platform_commission,
			:librarian_payout, :commission_percentage, :settlement_status, :created_at
		)
	`, entry)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("%w: %w", ErrDuplicateEntry, err)
		}
		return err
	}
	return nil
}

func rangeConditions(column string, rng Range) []goqu.Expression {
	var where []goqu.Expression
	if rng.From != nil {
		where = append(where, goqu.I(column).Gte(*rng.From))
	}
	if rng.To != nil {
		where = append(where, goqu.I(column).Lt(*rng.To))
	}
	return where
}

func (r *repository) ListByLibrary(ctx context.Context, libraryID uuid.UUID, rng Range, limit, offset int) ([]*Transaction, int, error) {
	where := append(rangeConditions("created_at", rng), goqu.C("library_id").Eq(libraryID))

	countSQL, countArgs, err := dialect.From("transactions").
		Select(goqu.COUNT("*")).
		Where(where...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, err
	}

	listSQL, listArgs, err := dialect.From("transactions").
		Select(
			"id", "booking_id", "library_id", "user_id", "booking_amount", "platform_commission",
			"librarian_payout", "commission_percentage", "settlement_status", "created_at",
		).
		Where(where...).
		Order(goqu.C("created_at").Desc()).
		Limit(uint(limit)).
		Offset(uint(offset)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	entries := []*Transaction{}
	if err := r.db.SelectContext(ctx, &entries, listSQL, listArgs...); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// Summarize groups the ledger by library, highest commission first.
func (r *repository) Summarize(ctx context.Context, rng Range) ([]*LibrarySummary, error) {
	query, args, err := dialect.From(goqu.T("transactions").As("t")).
		Join(goqu.T("libraries").As("l"), goqu.On(goqu.I("l.id").Eq(goqu.I("t.library_id")))).
		Select(
			goqu.I("t.library_id").As("library_id"),
			goqu.I("l.name").As("library_name"),
			goqu.COUNT("*").As("bookings"),
			goqu.SUM(goqu.I("t.booking_amount")).As("revenue"),
			goqu.SUM(goqu.I("t.platform_commission")).As("commission"),
			goqu.SUM(goqu.I("t.librarian_payout")).As("payout"),
		).
		Where(rangeConditions("t.created_at", rng)...).
		GroupBy(goqu.I("t.library_id"), goqu.I("l.name")).
		Order(goqu.I("commission").Desc(), goqu.I("library_name").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build report query: %w", err)
	}

	rows := []*LibrarySummary{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}
