package postgres

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
)

// WithdrawalStore implements domain.WithdrawalStore using PostgreSQL.
type WithdrawalStore struct {
	pool *pgxpool.Pool
}

// NewWithdrawalStore creates a new WithdrawalStore backed by the given pool.
func NewWithdrawalStore(pool *pgxpool.Pool) *WithdrawalStore {
	return &WithdrawalStore{pool: pool}
}

// Upsert inserts or updates a pending-withdrawal entry.
func (s *WithdrawalStore) Upsert(ctx context.Context, w domain.PendingWithdrawal) error {
	const query = `
		INSERT INTO withdrawals (account, balance, creator_fees, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account) DO UPDATE SET
			balance      = EXCLUDED.balance,
			creator_fees = EXCLUDED.creator_fees,
			updated_at   = EXCLUDED.updated_at`

	_, err := s.pool.Exec(ctx, query, w.Account.Hex(), w.Balance, w.CreatorFees, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: upsert withdrawal %s: %w", w.Account.Hex(), err)
	}
	return nil
}

// Get retrieves one account's pending-withdrawal entry.
func (s *WithdrawalStore) Get(ctx context.Context, account common.Address) (domain.PendingWithdrawal, error) {
	var (
		w    domain.PendingWithdrawal
		acct string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT account, balance, creator_fees, updated_at FROM withdrawals WHERE account = $1`,
		account.Hex(),
	).Scan(&acct, &w.Balance, &w.CreatorFees, &w.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.PendingWithdrawal{}, domain.ErrNotFound
		}
		return domain.PendingWithdrawal{}, fmt.Errorf("postgres: get withdrawal %s: %w", account.Hex(), err)
	}
	w.Account = common.HexToAddress(acct)
	return w, nil
}

// ListAll returns every pending-withdrawal entry. Used by the warm-restart
// loader.
func (s *WithdrawalStore) ListAll(ctx context.Context) ([]domain.PendingWithdrawal, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT account, balance, creator_fees, updated_at FROM withdrawals ORDER BY account`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list withdrawals: %w", err)
	}
	defer rows.Close()

	var out []domain.PendingWithdrawal
	for rows.Next() {
		var (
			w    domain.PendingWithdrawal
			acct string
		)
		if err := rows.Scan(&acct, &w.Balance, &w.CreatorFees, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan withdrawal: %w", err)
		}
		w.Account = common.HexToAddress(acct)
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list withdrawals rows: %w", err)
	}
	return out, nil
}

// Compile-time interface check.
var _ domain.WithdrawalStore = (*WithdrawalStore)(nil)
