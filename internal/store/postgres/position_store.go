package postgres

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
)

// PositionStore implements domain.PositionStore using PostgreSQL.
type PositionStore struct {
	pool *pgxpool.Pool
}

// NewPositionStore creates a new PositionStore backed by the given pool.
func NewPositionStore(pool *pgxpool.Pool) *PositionStore {
	return &PositionStore{pool: pool}
}

const positionCols = `market_id, account, yes_shares, no_shares, invested, returned,
	claimed, refunded, has_voted, voted_for_dispute, vote_weight,
	created_at, updated_at`

// Upsert inserts or updates a single position.
func (s *PositionStore) Upsert(ctx context.Context, p domain.Position) error {
	const query = `
		INSERT INTO positions (` + positionCols + `) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13
		)
		ON CONFLICT (market_id, account) DO UPDATE SET
			yes_shares        = EXCLUDED.yes_shares,
			no_shares         = EXCLUDED.no_shares,
			invested          = EXCLUDED.invested,
			returned          = EXCLUDED.returned,
			claimed           = EXCLUDED.claimed,
			refunded          = EXCLUDED.refunded,
			has_voted         = EXCLUDED.has_voted,
			voted_for_dispute = EXCLUDED.voted_for_dispute,
			vote_weight       = EXCLUDED.vote_weight,
			updated_at        = EXCLUDED.updated_at`

	_, err := s.pool.Exec(ctx, query,
		p.MarketID, p.Account.Hex(), p.YesShares, p.NoShares, p.Invested, p.Returned,
		p.Claimed, p.Refunded, p.HasVoted, p.VotedForDispute, p.VoteWeight,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert position %s/%s: %w", p.MarketID, p.Account.Hex(), err)
	}
	return nil
}

// scanPosition scans a single position row into a domain.Position.
func scanPosition(row pgx.Row) (domain.Position, error) {
	var (
		p       domain.Position
		account string
	)
	err := row.Scan(
		&p.MarketID, &account, &p.YesShares, &p.NoShares, &p.Invested, &p.Returned,
		&p.Claimed, &p.Refunded, &p.HasVoted, &p.VotedForDispute, &p.VoteWeight,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.Position{}, err
	}
	p.Account = common.HexToAddress(account)
	return p, nil
}

// Get retrieves one position by its composite key.
func (s *PositionStore) Get(ctx context.Context, marketID string, account common.Address) (domain.Position, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+positionCols+` FROM positions WHERE market_id = $1 AND account = $2`,
		marketID, account.Hex())
	p, err := scanPosition(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Position{}, domain.ErrNotFound
		}
		return domain.Position{}, fmt.Errorf("postgres: get position %s/%s: %w", marketID, account.Hex(), err)
	}
	return p, nil
}

// ListByMarket returns every position in a market.
func (s *PositionStore) ListByMarket(ctx context.Context, marketID string) ([]domain.Position, error) {
	return s.queryPositions(ctx,
		`SELECT `+positionCols+` FROM positions WHERE market_id = $1 ORDER BY account`,
		marketID)
}

// ListAll returns every position. Used by the warm-restart loader.
func (s *PositionStore) ListAll(ctx context.Context) ([]domain.Position, error) {
	return s.queryPositions(ctx,
		`SELECT `+positionCols+` FROM positions ORDER BY market_id, account`)
}

func (s *PositionStore) queryPositions(ctx context.Context, query string, args ...any) ([]domain.Position, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list positions: %w", err)
	}
	defer rows.Close()

	var positions []domain.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan position: %w", err)
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list positions rows: %w", err)
	}
	return positions, nil
}

// Compile-time interface check.
var _ domain.PositionStore = (*PositionStore)(nil)
