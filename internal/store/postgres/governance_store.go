package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
)

// GovernanceStore implements domain.GovernanceStore using PostgreSQL. The
// confirmation set is stored as a JSONB array of signer addresses; the
// applied parameter set lives in a single-row table.
type GovernanceStore struct {
	pool *pgxpool.Pool
}

// NewGovernanceStore creates a new GovernanceStore backed by the given pool.
func NewGovernanceStore(pool *pgxpool.Pool) *GovernanceStore {
	return &GovernanceStore{pool: pool}
}

// UpsertAction inserts or updates a governance action.
func (s *GovernanceStore) UpsertAction(ctx context.Context, a domain.GovernanceAction) error {
	confirmed, err := marshalConfirmed(a.Confirmed)
	if err != nil {
		return fmt.Errorf("postgres: marshal confirmations for %s: %w", a.ID, err)
	}

	const query = `
		INSERT INTO governance_actions (
			id, action_type, value, proposed_by, confirmed, executed, expires_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			confirmed = EXCLUDED.confirmed,
			executed  = EXCLUDED.executed`

	_, err = s.pool.Exec(ctx, query,
		a.ID, string(a.Type), a.Value, a.ProposedBy.Hex(),
		confirmed, a.Executed, a.ExpiresAt, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert governance action %s: %w", a.ID, err)
	}
	return nil
}

// scanAction scans a single governance action row.
func scanAction(row pgx.Row) (domain.GovernanceAction, error) {
	var (
		a          domain.GovernanceAction
		actionType string
		proposedBy string
		confirmed  []byte
	)
	err := row.Scan(
		&a.ID, &actionType, &a.Value, &proposedBy,
		&confirmed, &a.Executed, &a.ExpiresAt, &a.CreatedAt,
	)
	if err != nil {
		return domain.GovernanceAction{}, err
	}
	a.Type = domain.ActionType(actionType)
	a.ProposedBy = common.HexToAddress(proposedBy)
	a.Confirmed, err = unmarshalConfirmed(confirmed)
	if err != nil {
		return domain.GovernanceAction{}, err
	}
	return a, nil
}

const actionCols = `id, action_type, value, proposed_by, confirmed, executed, expires_at, created_at`

// GetAction retrieves a governance action by ID.
func (s *GovernanceStore) GetAction(ctx context.Context, id string) (domain.GovernanceAction, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+actionCols+` FROM governance_actions WHERE id = $1`, id)
	a, err := scanAction(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.GovernanceAction{}, domain.ErrNotFound
		}
		return domain.GovernanceAction{}, fmt.Errorf("postgres: get governance action %s: %w", id, err)
	}
	return a, nil
}

// ListActions returns governance actions, newest first.
func (s *GovernanceStore) ListActions(ctx context.Context, opts domain.ListOpts) ([]domain.GovernanceAction, error) {
	query := `SELECT ` + actionCols + ` FROM governance_actions ORDER BY created_at DESC`
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

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list governance actions: %w", err)
	}
	defer rows.Close()

	var actions []domain.GovernanceAction
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan governance action: %w", err)
		}
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list governance actions rows: %w", err)
	}
	return actions, nil
}

// SaveParams persists the applied parameter set.
func (s *GovernanceStore) SaveParams(ctx context.Context, p domain.Params) error {
	const query = `
		INSERT INTO params (
			id, platform_fee_bps, creator_fee_bps, proposer_reward_bps,
			min_bond, bond_bps, resolution_fee, creator_window_sec, updated_at
		) VALUES (TRUE, $1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (id) DO UPDATE SET
			platform_fee_bps    = EXCLUDED.platform_fee_bps,
			creator_fee_bps     = EXCLUDED.creator_fee_bps,
			proposer_reward_bps = EXCLUDED.proposer_reward_bps,
			min_bond            = EXCLUDED.min_bond,
			bond_bps            = EXCLUDED.bond_bps,
			resolution_fee      = EXCLUDED.resolution_fee,
			creator_window_sec  = EXCLUDED.creator_window_sec,
			updated_at          = NOW()`

	_, err := s.pool.Exec(ctx, query,
		p.PlatformFeeBps, p.CreatorFeeBps, p.ProposerRewardBps,
		p.MinBond, p.BondBps, p.ResolutionFee, int64(p.CreatorWindow/time.Second),
	)
	if err != nil {
		return fmt.Errorf("postgres: save params: %w", err)
	}
	return nil
}

// LoadParams returns the persisted parameter set, or domain.ErrNotFound when
// none has been saved yet (first boot).
func (s *GovernanceStore) LoadParams(ctx context.Context) (domain.Params, error) {
	var (
		p         domain.Params
		windowSec int64
	)
	err := s.pool.QueryRow(ctx, `
		SELECT platform_fee_bps, creator_fee_bps, proposer_reward_bps,
		       min_bond, bond_bps, resolution_fee, creator_window_sec
		FROM params WHERE id = TRUE`,
	).Scan(
		&p.PlatformFeeBps, &p.CreatorFeeBps, &p.ProposerRewardBps,
		&p.MinBond, &p.BondBps, &p.ResolutionFee, &windowSec,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Params{}, domain.ErrNotFound
		}
		return domain.Params{}, fmt.Errorf("postgres: load params: %w", err)
	}
	p.CreatorWindow = time.Duration(windowSec) * time.Second
	return p, nil
}

// marshalConfirmed encodes the confirmation set as a sorted JSON array of
// hex addresses, keeping the stored form deterministic.
func marshalConfirmed(confirmed map[common.Address]bool) ([]byte, error) {
	addrs := make([]string, 0, len(confirmed))
	for addr, ok := range confirmed {
		if ok {
			addrs = append(addrs, addr.Hex())
		}
	}
	sort.Strings(addrs)
	return json.Marshal(addrs)
}

// unmarshalConfirmed decodes a JSON array of hex addresses back into the
// confirmation set.
func unmarshalConfirmed(data []byte) (map[common.Address]bool, error) {
	var addrs []string
	if len(data) > 0 {
		if err := json.Unmarshal(data, &addrs); err != nil {
			return nil, fmt.Errorf("unmarshal confirmations: %w", err)
		}
	}
	out := make(map[common.Address]bool, len(addrs))
	for _, a := range addrs {
		out[common.HexToAddress(a)] = true
	}
	return out, nil
}

// Compile-time interface check.
var _ domain.GovernanceStore = (*GovernanceStore)(nil)
