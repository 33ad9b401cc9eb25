package ledger

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
)

var (
	addrA = common.HexToAddress("0x1111111111111111111111111111111111111111")
	addrB = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func newMarket(id string, createdAt time.Time) *domain.Market {
	return &domain.Market{
		ID:        id,
		Question:  "q-" + id,
		Heat:      domain.HeatStandard,
		Status:    domain.MarketStatusActive,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestMarketLookup(t *testing.T) {
	s := New()

	_, err := s.Market("missing")
	require.ErrorIs(t, err, domain.ErrNotFound)

	m := newMarket("m1", time.Now())
	s.PutMarket(m)

	got, err := s.Market("m1")
	require.NoError(t, err)
	require.Same(t, m, got)
}

func TestMarketsNewestFirst(t *testing.T) {
	s := New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s.PutMarket(newMarket("old", base))
	s.PutMarket(newMarket("new", base.Add(time.Hour)))
	s.PutMarket(newMarket("mid", base.Add(time.Minute)))

	ms := s.Markets()
	require.Len(t, ms, 3)
	require.Equal(t, "new", ms[0].ID)
	require.Equal(t, "mid", ms[1].ID)
	require.Equal(t, "old", ms[2].ID)
}

func TestEnsurePositionCreatesOnce(t *testing.T) {
	s := New()
	m := newMarket("m1", time.Now())
	s.PutMarket(m)

	require.Nil(t, s.Position("m1", addrA))

	p := s.EnsurePosition(m, addrA)
	require.Equal(t, "m1", p.MarketID)
	require.Equal(t, addrA, p.Account)
	require.Zero(t, p.YesShares)

	p.YesShares = 42
	require.Same(t, p, s.EnsurePosition(m, addrA))
	require.Same(t, p, s.Position("m1", addrA))
}

func TestPositionsByMarketSortedByAccount(t *testing.T) {
	s := New()
	m1 := newMarket("m1", time.Now())
	m2 := newMarket("m2", time.Now())
	s.PutMarket(m1)
	s.PutMarket(m2)

	s.EnsurePosition(m1, addrB)
	s.EnsurePosition(m1, addrA)
	s.EnsurePosition(m2, addrA)

	ps := s.PositionsByMarket("m1")
	require.Len(t, ps, 2)
	require.Equal(t, addrA, ps[0].Account)
	require.Equal(t, addrB, ps[1].Account)
}

func TestWithdrawalLazyCreate(t *testing.T) {
	s := New()

	w := s.Withdrawal(addrA)
	require.Equal(t, addrA, w.Account)
	require.Zero(t, w.Balance)

	w.Balance = 100
	require.Same(t, w, s.Withdrawal(addrA))
}

func TestActionsNewestFirst(t *testing.T) {
	s := New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := s.Action("missing")
	require.ErrorIs(t, err, domain.ErrNotFound)

	s.PutAction(&domain.GovernanceAction{ID: "a1", CreatedAt: base})
	s.PutAction(&domain.GovernanceAction{ID: "a2", CreatedAt: base.Add(time.Hour)})

	as := s.Actions()
	require.Len(t, as, 2)
	require.Equal(t, "a2", as[0].ID)

	got, err := s.Action("a1")
	require.NoError(t, err)
	require.Equal(t, "a1", got.ID)
}
