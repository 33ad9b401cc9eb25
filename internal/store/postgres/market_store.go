package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
)

// MarketStore implements domain.MarketStore using PostgreSQL.
type MarketStore struct {
	pool *pgxpool.Pool
}

// NewMarketStore creates a new MarketStore backed by the given connection pool.
func NewMarketStore(pool *pgxpool.Pool) *MarketStore {
	return &MarketStore{pool: pool}
}

const marketCols = `id, creator, question, evidence_ref, rules, image_ref,
	expires_at, heat, yes_shares, no_shares, pool_balance, paused,
	status, outcome, proposer, proposed_outcome, proposer_bond, proposed_at,
	disputer, disputer_bond, disputed_at,
	proposer_vote_weight, disputer_vote_weight, voter_count,
	resolved_at, resolved_pool, winning_supply,
	jury_pool, jury_weight, jury_for_side,
	created_at, updated_at`

// Upsert inserts or updates a single market.
func (s *MarketStore) Upsert(ctx context.Context, m domain.Market) error {
	const query = `
		INSERT INTO markets (` + marketCols + `) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18,
			$19, $20, $21,
			$22, $23, $24,
			$25, $26, $27,
			$28, $29, $30,
			$31, $32
		)
		ON CONFLICT (id) DO UPDATE SET
			yes_shares           = EXCLUDED.yes_shares,
			no_shares            = EXCLUDED.no_shares,
			pool_balance         = EXCLUDED.pool_balance,
			paused               = EXCLUDED.paused,
			status               = EXCLUDED.status,
			outcome              = EXCLUDED.outcome,
			proposer             = EXCLUDED.proposer,
			proposed_outcome     = EXCLUDED.proposed_outcome,
			proposer_bond        = EXCLUDED.proposer_bond,
			proposed_at          = EXCLUDED.proposed_at,
			disputer             = EXCLUDED.disputer,
			disputer_bond        = EXCLUDED.disputer_bond,
			disputed_at          = EXCLUDED.disputed_at,
			proposer_vote_weight = EXCLUDED.proposer_vote_weight,
			disputer_vote_weight = EXCLUDED.disputer_vote_weight,
			voter_count          = EXCLUDED.voter_count,
			resolved_at          = EXCLUDED.resolved_at,
			resolved_pool        = EXCLUDED.resolved_pool,
			winning_supply       = EXCLUDED.winning_supply,
			jury_pool            = EXCLUDED.jury_pool,
			jury_weight          = EXCLUDED.jury_weight,
			jury_for_side        = EXCLUDED.jury_for_side,
			updated_at           = EXCLUDED.updated_at`

	_, err := s.pool.Exec(ctx, query,
		m.ID, m.Creator.Hex(), m.Question, m.EvidenceRef, m.Rules, m.ImageRef,
		m.ExpiresAt, string(m.Heat), m.YesShares, m.NoShares, m.PoolBalance, m.Paused,
		string(m.Status), m.Outcome, m.Proposer.Hex(), m.ProposedOutcome, m.ProposerBond, timePtr(m.ProposedAt),
		m.Disputer.Hex(), m.DisputerBond, timePtr(m.DisputedAt),
		m.ProposerVoteWeight, m.DisputerVoteWeight, m.VoterCount,
		m.ResolvedAt, m.ResolvedPool, m.WinningSupply,
		m.JuryPool, m.JuryWeight, m.JuryForSide,
		m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert market %s: %w", m.ID, err)
	}
	return nil
}

// scanMarket scans a single market row into a domain.Market.
func scanMarket(row pgx.Row) (domain.Market, error) {
	var (
		m          domain.Market
		creator    string
		heat       string
		status     string
		proposer   string
		disputer   string
		proposedAt *time.Time
		disputedAt *time.Time
	)
	err := row.Scan(
		&m.ID, &creator, &m.Question, &m.EvidenceRef, &m.Rules, &m.ImageRef,
		&m.ExpiresAt, &heat, &m.YesShares, &m.NoShares, &m.PoolBalance, &m.Paused,
		&status, &m.Outcome, &proposer, &m.ProposedOutcome, &m.ProposerBond, &proposedAt,
		&disputer, &m.DisputerBond, &disputedAt,
		&m.ProposerVoteWeight, &m.DisputerVoteWeight, &m.VoterCount,
		&m.ResolvedAt, &m.ResolvedPool, &m.WinningSupply,
		&m.JuryPool, &m.JuryWeight, &m.JuryForSide,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return domain.Market{}, err
	}
	m.Creator = common.HexToAddress(creator)
	m.Heat = domain.HeatLevel(heat)
	m.Status = domain.MarketStatus(status)
	m.Proposer = common.HexToAddress(proposer)
	m.Disputer = common.HexToAddress(disputer)
	m.ProposedAt = timeVal(proposedAt)
	m.DisputedAt = timeVal(disputedAt)
	return m, nil
}

// GetByID retrieves a market by its primary key.
func (s *MarketStore) GetByID(ctx context.Context, id string) (domain.Market, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+marketCols+` FROM markets WHERE id = $1`, id)
	m, err := scanMarket(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Market{}, domain.ErrNotFound
		}
		return domain.Market{}, fmt.Errorf("postgres: get market %s: %w", id, err)
	}
	return m, nil
}

// List returns markets ordered by creation time, newest first.
func (s *MarketStore) List(ctx context.Context, opts domain.ListOpts) ([]domain.Market, error) {
	query := `SELECT ` + marketCols + ` FROM markets ORDER BY created_at DESC`
	args := []any{}
	argIdx := 1

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	return s.queryMarkets(ctx, query, args...)
}

// ListAll returns every market. Used by the warm-restart loader.
func (s *MarketStore) ListAll(ctx context.Context) ([]domain.Market, error) {
	return s.queryMarkets(ctx, `SELECT `+marketCols+` FROM markets ORDER BY created_at`)
}

func (s *MarketStore) queryMarkets(ctx context.Context, query string, args ...any) ([]domain.Market, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list markets: %w", err)
	}
	defer rows.Close()

	var markets []domain.Market
	for rows.Next() {
		m, err := scanMarket(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan market: %w", err)
		}
		markets = append(markets, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list markets rows: %w", err)
	}
	return markets, nil
}

// timePtr maps the zero time to NULL for storage.
func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// timeVal maps NULL back to the zero time.
func timeVal(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// Compile-time interface check.
var _ domain.MarketStore = (*MarketStore)(nil)
