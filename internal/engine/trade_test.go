package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
)

func TestCreateMarketValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.e.CreateMarket(creator, CreateMarketInput{
		ExpiresAt: f.clk.Now().Add(time.Hour),
		Heat:      domain.HeatStandard,
	})
	assert.ErrorIs(t, err, domain.ErrEmptyQuestion)

	_, err = f.e.CreateMarket(creator, CreateMarketInput{
		Question:  "q",
		ExpiresAt: f.clk.Now().Add(-time.Hour),
		Heat:      domain.HeatStandard,
	})
	assert.ErrorIs(t, err, domain.ErrPastExpiry)

	_, err = f.e.CreateMarket(creator, CreateMarketInput{
		Question:  "q",
		ExpiresAt: f.clk.Now().Add(time.Hour),
		Heat:      domain.HeatLevel("lukewarm"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidHeat)

	m, err := f.e.CreateMarket(creator, CreateMarketInput{
		Question:  "q",
		ExpiresAt: f.clk.Now().Add(time.Hour),
		Heat:      domain.HeatVolatile,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MarketStatusActive, m.Status)
	assert.Zero(t, m.YesShares)
	assert.Zero(t, m.NoShares)
	assert.Zero(t, m.PoolBalance)
	assert.Len(t, f.eventsOfType(domain.EventMarketCreated), 1)
}

func TestBuySplitsFeesAndFillsPool(t *testing.T) {
	f := newFixture(t)
	id := f.openMarket(t)

	amount := units(100)
	res, err := f.e.Buy(alice, id, domain.SideYes, amount, 0)
	require.NoError(t, err)

	// 150 bps platform + 100 bps creator off the gross.
	assert.Equal(t, int64(2_500_000), res.Fee)
	assert.Positive(t, res.Shares)
	assert.Greater(t, res.YesPrice, res.NoPrice)
	// price_yes + price_no == UnitPrice up to flooring.
	assert.InDelta(t, domain.UnitPrice, res.YesPrice+res.NoPrice, 1)

	m, err := f.e.Market(id)
	require.NoError(t, err)
	assert.Equal(t, amount-res.Fee, m.PoolBalance)
	assert.Equal(t, res.Shares, m.YesShares)
	assert.Zero(t, m.NoShares)

	pos, err := f.e.Position(id, alice)
	require.NoError(t, err)
	assert.Equal(t, res.Shares, pos.YesShares)
	assert.Equal(t, amount, pos.Invested)

	assert.Equal(t, int64(1_500_000), f.e.PendingBalance(treasury).Balance)
	assert.Equal(t, int64(1_000_000), f.e.PendingBalance(creator).CreatorFees)
}

func TestBuyRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	id := f.openMarket(t)

	_, err := f.e.Buy(alice, id, domain.Side("maybe"), units(10), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidSide)

	_, err = f.e.Buy(alice, id, domain.SideYes, 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.e.Buy(alice, id, domain.SideYes, domain.MinTradeAmount-1, 0)
	assert.ErrorIs(t, err, domain.ErrBelowMinTrade)

	_, err = f.e.Buy(alice, "nope", domain.SideYes, units(10), 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBuySlippageBoundLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	id := f.openMarket(t)

	quote, err := f.e.PreviewBuy(id, domain.SideYes, units(50))
	require.NoError(t, err)

	_, err = f.e.Buy(alice, id, domain.SideYes, units(50), quote.Shares+1)
	assert.ErrorIs(t, err, domain.ErrSlippage)

	m, err := f.e.Market(id)
	require.NoError(t, err)
	assert.Zero(t, m.PoolBalance)
	assert.Zero(t, m.YesShares)
	assert.Zero(t, f.e.PendingBalance(treasury).Balance)
}

func TestBuyClosedStates(t *testing.T) {
	f := newFixture(t)
	id := f.openMarket(t)

	_, err := f.e.SetPaused(id, true)
	require.NoError(t, err)
	_, err = f.e.Buy(alice, id, domain.SideYes, units(10), 0)
	assert.ErrorIs(t, err, domain.ErrMarketPaused)

	_, err = f.e.SetPaused(id, false)
	require.NoError(t, err)
	_, err = f.e.Buy(alice, id, domain.SideYes, units(10), 0)
	require.NoError(t, err)

	f.clk.Advance(24 * time.Hour)
	_, err = f.e.Buy(alice, id, domain.SideYes, units(10), 0)
	assert.ErrorIs(t, err, domain.ErrMarketClosed)
	_, err = f.e.Sell(alice, id, domain.SideYes, units(1), 0)
	assert.ErrorIs(t, err, domain.ErrMarketClosed)
}

func TestSellRoundTripLosesOnlyFees(t *testing.T) {
	f := newFixture(t)
	id := f.openMarket(t)

	buy, err := f.e.Buy(alice, id, domain.SideYes, units(200), 0)
	require.NoError(t, err)

	sell, err := f.e.Sell(alice, id, domain.SideYes, buy.Shares, 0)
	require.NoError(t, err)

	// Selling everything back returns strictly less than was paid in, and
	// the shortfall is bounded by the two fee legs plus rounding.
	assert.Less(t, sell.Payment, units(200))
	assert.GreaterOrEqual(t, sell.Payment, units(200)-buy.Fee-sell.Fee-1)

	m, err := f.e.Market(id)
	require.NoError(t, err)
	assert.Zero(t, m.YesShares)
	// Only rounding dust may remain in the pool.
	assert.GreaterOrEqual(t, m.PoolBalance, int64(0))
	assert.LessOrEqual(t, m.PoolBalance, int64(1))

	pos, err := f.e.Position(id, alice)
	require.NoError(t, err)
	assert.Zero(t, pos.YesShares)
	assert.Equal(t, sell.Payment, pos.Returned)
}

func TestSellRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	id := f.openMarket(t)

	buy, err := f.e.Buy(alice, id, domain.SideYes, units(10), 0)
	require.NoError(t, err)

	_, err = f.e.Sell(alice, id, domain.SideYes, 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.e.Sell(alice, id, domain.SideYes, domain.MinSellShares-1, 0)
	assert.ErrorIs(t, err, domain.ErrBelowMinTrade)

	_, err = f.e.Sell(alice, id, domain.SideYes, buy.Shares+1, 0)
	assert.ErrorIs(t, err, domain.ErrInsufficientShare)

	_, err = f.e.Sell(bob, id, domain.SideYes, domain.MinSellShares, 0)
	assert.ErrorIs(t, err, domain.ErrInsufficientShare)

	_, err = f.e.Sell(alice, id, domain.SideYes, buy.Shares, buy.Payment*2)
	assert.ErrorIs(t, err, domain.ErrSlippage)
}

func TestSellPoolSolvencyGuard(t *testing.T) {
	f := newFixture(t)
	id := f.openMarket(t)

	buy, err := f.e.Buy(alice, id, domain.SideYes, units(100), 0)
	require.NoError(t, err)

	// Drain most of the pool out from under the seller.
	m, err := f.store.Market(id)
	require.NoError(t, err)
	m.PoolBalance = units(1)

	_, err = f.e.Sell(alice, id, domain.SideYes, buy.Shares, 0)
	assert.ErrorIs(t, err, domain.ErrPoolInsufficient)

	// State untouched: the seller still holds the shares.
	pos, err := f.e.Position(id, alice)
	require.NoError(t, err)
	assert.Equal(t, buy.Shares, pos.YesShares)
}

func TestPricesMoveWithFlow(t *testing.T) {
	f := newFixture(t)
	id := f.openMarket(t)

	yes0, no0, err := f.e.SpotPrices(id)
	require.NoError(t, err)
	assert.Equal(t, domain.UnitPrice/2, yes0)
	assert.Equal(t, domain.UnitPrice/2, no0)

	_, err = f.e.Buy(alice, id, domain.SideYes, units(500), 0)
	require.NoError(t, err)
	yes1, no1, err := f.e.SpotPrices(id)
	require.NoError(t, err)
	assert.Greater(t, yes1, yes0)
	assert.Less(t, no1, no0)

	_, err = f.e.Buy(bob, id, domain.SideNo, units(500), 0)
	require.NoError(t, err)
	yes2, _, err := f.e.SpotPrices(id)
	require.NoError(t, err)
	assert.Less(t, yes2, yes1)
}

func TestLaterBuyersPayMore(t *testing.T) {
	f := newFixture(t)
	id := f.openMarket(t)

	first, err := f.e.Buy(alice, id, domain.SideYes, units(100), 0)
	require.NoError(t, err)
	second, err := f.e.Buy(bob, id, domain.SideYes, units(100), 0)
	require.NoError(t, err)
	assert.Less(t, second.Shares, first.Shares)
}

func TestEarlySmallBuyerProfitsFromPump(t *testing.T) {
	f := newFixture(t)
	id := f.openMarket(t)

	// Alice takes a small early position, then bob pumps the same side hard.
	_, err := f.e.Buy(alice, id, domain.SideYes, units(10), 0)
	require.NoError(t, err)
	_, err = f.e.Buy(bob, id, domain.SideYes, units(2000), 0)
	require.NoError(t, err)

	// Bob's full exit quote is already below what he paid in.
	bobPos, err := f.e.Position(id, bob)
	require.NoError(t, err)
	bobQuote, err := f.e.PreviewSell(id, domain.SideYes, bobPos.YesShares)
	require.NoError(t, err)
	assert.Less(t, bobQuote.Payment, units(2000))

	// Alice's full exit at the pumped price beats her payment, fees included.
	alicePos, err := f.e.Position(id, alice)
	require.NoError(t, err)
	sell, err := f.e.Sell(alice, id, domain.SideYes, alicePos.YesShares, 0)
	require.NoError(t, err)
	assert.Greater(t, sell.Payment, units(10))
}

func TestSymmetricPumpLeavesFollowerUnderwater(t *testing.T) {
	for _, amount := range []int64{units(10), units(100), units(1000)} {
		f := newFixture(t)
		id := f.openMarket(t)

		_, err := f.e.Buy(alice, id, domain.SideYes, amount, 0)
		require.NoError(t, err)
		_, err = f.e.Buy(bob, id, domain.SideYes, amount, 0)
		require.NoError(t, err)

		bobPos, err := f.e.Position(id, bob)
		require.NoError(t, err)
		quote, err := f.e.PreviewSell(id, domain.SideYes, bobPos.YesShares)
		require.NoError(t, err)
		assert.Less(t, quote.Payment, amount)

		// The leader dumping first only deepens the follower's loss.
		alicePos, err := f.e.Position(id, alice)
		require.NoError(t, err)
		_, err = f.e.Sell(alice, id, domain.SideYes, alicePos.YesShares, 0)
		require.NoError(t, err)
		after, err := f.e.PreviewSell(id, domain.SideYes, bobPos.YesShares)
		require.NoError(t, err)
		assert.Less(t, after.Payment, quote.Payment)
	}
}

func TestPoolMatchesNetFlow(t *testing.T) {
	f := newFixture(t)
	id := f.openMarket(t)

	var poolIn, poolOut int64
	for i := 0; i < 5; i++ {
		res, err := f.e.Buy(alice, id, domain.SideYes, units(30), 0)
		require.NoError(t, err)
		poolIn += units(30) - res.Fee

		res, err = f.e.Buy(bob, id, domain.SideNo, units(20), 0)
		require.NoError(t, err)
		poolIn += units(20) - res.Fee
	}
	pos, err := f.e.Position(id, bob)
	require.NoError(t, err)
	sell, err := f.e.Sell(bob, id, domain.SideNo, pos.NoShares/2, 0)
	require.NoError(t, err)
	poolOut += sell.Payment + sell.Fee

	m, err := f.e.Market(id)
	require.NoError(t, err)
	assert.Equal(t, poolIn-poolOut, m.PoolBalance)
	assert.Positive(t, m.PoolBalance)
}

func TestPauseResolvedMarketFails(t *testing.T) {
	f := newFixture(t)
	id := f.openMarket(t)
	_, err := f.e.Buy(alice, id, domain.SideYes, units(100), 0)
	require.NoError(t, err)
	_, err = f.e.Buy(bob, id, domain.SideNo, units(100), 0)
	require.NoError(t, err)

	f.clk.Advance(24 * time.Hour)
	_, err = f.e.ProposeOutcome(creator, id, true, units(11))
	require.NoError(t, err)
	f.clk.Advance(domain.DisputeWindow)
	_, err = f.e.FinalizeMarket(id)
	require.NoError(t, err)

	_, err = f.e.SetPaused(id, true)
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
}

func TestPreviewMatchesExecution(t *testing.T) {
	f := newFixture(t)
	id := f.openMarket(t)

	quote, err := f.e.PreviewBuy(id, domain.SideYes, units(75))
	require.NoError(t, err)
	res, err := f.e.Buy(alice, id, domain.SideYes, units(75), quote.Shares)
	require.NoError(t, err)
	assert.Equal(t, quote.Shares, res.Shares)
	assert.Equal(t, quote.Fee, res.Fee)

	sq, err := f.e.PreviewSell(id, domain.SideYes, res.Shares)
	require.NoError(t, err)
	sres, err := f.e.Sell(alice, id, domain.SideYes, res.Shares, sq.Payment)
	require.NoError(t, err)
	assert.Equal(t, sq.Payment, sres.Payment)
}
