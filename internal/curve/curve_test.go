package curve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
)

const (
	unit = domain.MicroUnit
	vl   = 5_000 * unit // standard heat
)

func TestSpotPrice(t *testing.T) {
	tests := []struct {
		name   string
		supply int64
		other  int64
		want   int64
	}{
		{"empty market is even money", 0, 0, 500_000},
		{"equal supplies stay even", 100 * unit, 100 * unit, 500_000},
		{"heavier side is dearer", 5_000 * unit, 0, 666_666},
		{"lighter side is cheaper", 0, 5_000 * unit, 333_333},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, SpotPrice(tt.supply, tt.other, vl))
		})
	}
}

func TestSpotPriceSumsToUnit(t *testing.T) {
	// price_yes + price_no == UnitPrice up to flooring.
	cases := [][2]int64{{0, 0}, {17 * unit, 3 * unit}, {123456789, 987654321}}
	for _, c := range cases {
		sum := SpotPrice(c[0], c[1], vl) + SpotPrice(c[1], c[0], vl)
		require.InDelta(t, domain.UnitPrice, sum, 1)
	}
}

func TestBuyRaisesPriceSellLowersIt(t *testing.T) {
	var yes, no int64 = 200 * unit, 150 * unit

	before := SpotPrice(yes, no, vl)
	bought := SharesForAmount(yes, no, vl, 500*unit)
	require.Positive(t, bought)
	after := SpotPrice(yes+bought, no, vl)
	require.Greater(t, after, before)

	// Buying YES lowers the NO price.
	require.Less(t, SpotPrice(no, yes+bought, vl), SpotPrice(no, yes, vl))

	// Selling brings it back down.
	require.Less(t, SpotPrice(yes+bought-bought, no, vl), after)
}

func TestSellIsInverseOfBuy(t *testing.T) {
	var yes, no int64 = 80 * unit, 40 * unit

	for _, amount := range []int64{1 * unit, 7 * unit, 1_000 * unit, 123_456_789} {
		shares := SharesForAmount(yes, no, vl, amount)
		require.Positive(t, shares)

		cost := BuyCost(yes, no, vl, shares)
		require.LessOrEqual(t, cost, amount)

		// Selling the same quantity from the post-buy state returns the
		// cost, up to the pro-pool rounding micro-unit.
		proceeds := SellProceeds(yes+shares, no, vl, shares)
		require.LessOrEqual(t, proceeds, cost)
		require.GreaterOrEqual(t, proceeds, cost-1)
	}
}

func TestSharesForAmountIsMaximal(t *testing.T) {
	var yes, no int64 = 10 * unit, 900 * unit
	amount := int64(50 * unit)

	shares := SharesForAmount(yes, no, vl, amount)
	require.LessOrEqual(t, BuyCost(yes, no, vl, shares), amount)
	require.Greater(t, BuyCost(yes, no, vl, shares+1), amount)
}

func TestBuyCostMonotoneInQuantity(t *testing.T) {
	var yes, no int64 = 0, 0
	prev := int64(0)
	for q := int64(unit); q <= 10*unit; q += unit {
		c := BuyCost(yes, no, vl, q)
		require.Greater(t, c, prev)
		prev = c
	}
}

func TestLaterBuyerPaysMore(t *testing.T) {
	// The same payment buys fewer shares once the side has been pumped.
	var yes, no int64 = 0, 0
	first := SharesForAmount(yes, no, vl, 1_000*unit)
	second := SharesForAmount(yes+first, no, vl, 1_000*unit)
	require.Less(t, second, first)
}

func TestHeatControlsSlippage(t *testing.T) {
	// A deeper curve moves less for the same trade.
	amount := int64(10_000 * unit)
	for _, tt := range []struct {
		hot, cold int64
	}{
		{domain.HeatVolatile.VirtualLiquidity(), domain.HeatStandard.VirtualLiquidity()},
		{domain.HeatStandard.VirtualLiquidity(), domain.HeatDeep.VirtualLiquidity()},
	} {
		hotShares := SharesForAmount(0, 0, tt.hot, amount)
		coldShares := SharesForAmount(0, 0, tt.cold, amount)
		hotMove := SpotPrice(hotShares, 0, tt.hot) - SpotPrice(0, 0, tt.hot)
		coldMove := SpotPrice(coldShares, 0, tt.cold) - SpotPrice(0, 0, tt.cold)
		require.Greater(t, hotMove, coldMove)
	}
}

func TestZeroAndNegativeQuantities(t *testing.T) {
	require.Zero(t, BuyCost(unit, unit, vl, 0))
	require.Zero(t, SellProceeds(unit, unit, vl, 0))
	require.Zero(t, SellProceeds(unit, unit, vl, 2*unit)) // more than supply
	require.Zero(t, SharesForAmount(unit, unit, vl, 0))
}
