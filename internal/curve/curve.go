// Package curve implements the shared-ratio bonding curve that prices every
// trade. The spot price of a side is
//
//	price = UnitPrice * (S + VL) / (S + O + 2*VL)
//
// where S is the side's supply, O the opposing supply, and VL the market's
// virtual-liquidity offset. Trade execution uses the trapezoid average of
// the spot price over the traded interval, which makes a sell the exact
// inverse of the buy that produced the shares: selling immediately after
// buying returns the identical gross amount, so fees make every round trip
// a loss. Buys round the cost up and sells round the proceeds down, in the
// pool's favour.
//
// All arithmetic is integer. Intermediate products use big.Int; no floating
// point appears anywhere on a monetary path.
package curve

import (
	"math"
	"math/big"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
)

// SpotPrice returns the instantaneous price of the side whose supply is
// `supply`, in micro-units per share (floor division). Readable as the
// side's probability in ppm.
func SpotPrice(supply, other, vl int64) int64 {
	num := new(big.Int).SetInt64(supply + vl)
	num.Mul(num, big.NewInt(domain.UnitPrice))
	den := big.NewInt(supply + other + 2*vl)
	return num.Div(num, den).Int64()
}

// BuyCost returns the cost in micro-units of buying `shares` micro-shares
// of the side whose current supply is `supply`, rounded up.
func BuyCost(supply, other, vl, shares int64) int64 {
	if shares <= 0 {
		return 0
	}
	return tradeValue(supply, supply+shares, other, vl, shares, true)
}

// SellProceeds returns the gross proceeds in micro-units of selling
// `shares` micro-shares of the side whose current supply is `supply`,
// rounded down. It is the exact inverse of BuyCost: the proceeds of selling
// q shares equal the cost of the buy that moved supply from supply-q to
// supply, up to the one micro-unit of rounding.
func SellProceeds(supply, other, vl, shares int64) int64 {
	if shares <= 0 || shares > supply {
		return 0
	}
	return tradeValue(supply-shares, supply, other, vl, shares, false)
}

// tradeValue computes shares * (P(lo) + P(hi)) / 2 exactly in rational
// arithmetic, then rounds: up for buys, down for sells.
func tradeValue(lo, hi, other, vl, shares int64, roundUp bool) int64 {
	dLo := big.NewInt(lo + other + 2*vl)
	dHi := big.NewInt(hi + other + 2*vl)

	// numerator = shares * Unit * ((lo+vl)*dHi + (hi+vl)*dLo)
	a := new(big.Int).Mul(big.NewInt(lo+vl), dHi)
	b := new(big.Int).Mul(big.NewInt(hi+vl), dLo)
	num := new(big.Int).Add(a, b)
	num.Mul(num, big.NewInt(shares))
	num.Mul(num, big.NewInt(domain.UnitPrice))

	// denominator = 2 * MicroUnit * dLo * dHi
	den := new(big.Int).Mul(dLo, dHi)
	den.Mul(den, big.NewInt(2*domain.MicroUnit))

	q, r := new(big.Int).QuoRem(num, den, new(big.Int))
	if roundUp && r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return q.Int64()
}

// SharesForAmount returns the largest share quantity whose BuyCost does not
// exceed `amount`: the number of shares a buy of that payment grants. The
// cost function is monotone in the quantity, so an integer binary search
// finds the answer exactly.
func SharesForAmount(supply, other, vl, amount int64) int64 {
	if amount <= 0 {
		return 0
	}

	// The trapezoid average never drops below the pre-trade spot price, so
	// amount/spot bounds the quantity from above.
	spot := SpotPrice(supply, other, vl)
	if spot < 1 {
		spot = 1
	}
	hi := new(big.Int).SetInt64(amount)
	hi.Mul(hi, big.NewInt(domain.MicroUnit))
	hi.Div(hi, big.NewInt(spot))
	hi.Add(hi, big.NewInt(domain.MicroUnit))
	upper := int64(math.MaxInt64 / 4)
	if hi.IsInt64() && hi.Int64() < upper {
		upper = hi.Int64()
	}

	lo := int64(0)
	for lo < upper {
		mid := lo + (upper-lo+1)/2
		if BuyCost(supply, other, vl, mid) <= amount {
			lo = mid
		} else {
			upper = mid - 1
		}
	}
	return lo
}
