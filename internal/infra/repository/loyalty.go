package repository

import (
	"context"
	"encoding/json"
	"errors"

	"payments-service/internal/domain/loyalty"
	"payments-service/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LedgerRepository persists one JSONB ledger document per user with a
// version column. Writes are conditional on the version read, giving the
// optimistic-concurrency loop in the usecase layer its conflict signal.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

func (r *LedgerRepository) FindByUser(ctx context.Context, userID string) (*loyalty.Ledger, int64, error) {
	var (
		doc     []byte
		version int64
	)
	err := r.pool.QueryRow(ctx,
		`SELECT doc, version FROM loyalty_ledgers WHERE user_id = $1`,
		userID,
	).Scan(&doc, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, infra.WrapRepoErr(infra.KindNotFound, "ledger not found", err)
		}
		return nil, 0, infra.WrapRepoErr(infra.KindDBFailure, "failed to find ledger", err)
	}

	var ledger loyalty.Ledger
	if err := json.Unmarshal(doc, &ledger); err != nil {
		return nil, 0, infra.WrapRepoErr(infra.KindDBFailure, "failed to unmarshal ledger document", err)
	}
	return &ledger, version, nil
}

func (r *LedgerRepository) Create(ctx context.Context, ledger *loyalty.Ledger) error {
	doc, err := json.Marshal(ledger)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to marshal ledger", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO loyalty_ledgers (user_id, doc, version) VALUES ($1, $2, 1)`,
		ledger.UserID, doc,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return infra.WrapRepoErr(infra.KindConflict, "ledger already created concurrently", err)
		}
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to create ledger", err)
	}
	return nil
}

// Update replaces the document only if the stored version still matches the
// one the caller read. A conflict kind signals the caller to re-read and
// retry.
func (r *LedgerRepository) Update(ctx context.Context, ledger *loyalty.Ledger, version int64) error {
	doc, err := json.Marshal(ledger)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to marshal ledger", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE loyalty_ledgers
		 SET doc = $2, version = version + 1, updated_at = now()
		 WHERE user_id = $1 AND version = $3`,
		ledger.UserID, doc, version,
	)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to update ledger", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(infra.KindConflict, "ledger modified concurrently", nil)
	}
	return nil
}
