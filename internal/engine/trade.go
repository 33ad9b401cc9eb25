package engine

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/curve"
	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
)

// CreateMarketInput carries the immutable metadata of a new market.
type CreateMarketInput struct {
	Question    string
	EvidenceRef string
	Rules       string
	ImageRef    string
	ExpiresAt   time.Time
	Heat        domain.HeatLevel
}

// CreateMarket opens a new binary market. Both supplies and the pool start
// at zero; the first trades bootstrap the curve from even money.
func (e *Engine) CreateMarket(creator common.Address, in CreateMarketInput) (domain.Market, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	if in.Question == "" {
		return domain.Market{}, domain.ErrEmptyQuestion
	}
	if !in.ExpiresAt.After(now) {
		return domain.Market{}, domain.ErrPastExpiry
	}
	if !in.Heat.Valid() {
		return domain.Market{}, domain.ErrInvalidHeat
	}

	m := &domain.Market{
		ID:          e.newID(),
		Creator:     creator,
		Question:    in.Question,
		EvidenceRef: in.EvidenceRef,
		Rules:       in.Rules,
		ImageRef:    in.ImageRef,
		ExpiresAt:   in.ExpiresAt,
		Heat:        in.Heat,
		Status:      domain.MarketStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	e.store.PutMarket(m)

	e.emit(domain.EventMarketCreated, m.ID, creator, map[string]any{
		"question":   m.Question,
		"heat":       string(m.Heat),
		"expires_at": m.ExpiresAt.Format(time.RFC3339),
	})
	return *m, nil
}

// TradeResult reports the outcome of a buy or sell.
type TradeResult struct {
	Shares   int64 // shares granted (buy) or sold (sell)
	Payment  int64 // gross paid in (buy) or net paid out (sell)
	Fee      int64 // total fee taken
	YesPrice int64 // post-trade spot prices
	NoPrice  int64
}

// checkOpen verifies a market accepts trades.
func (e *Engine) checkOpen(m *domain.Market, now time.Time) error {
	if m.Status != domain.MarketStatusActive || m.Expired(now) {
		return domain.ErrMarketClosed
	}
	if m.Paused {
		return domain.ErrMarketPaused
	}
	return nil
}

// Buy converts a payment into shares of one side. The fee comes off the
// gross amount first; the post-fee remainder moves the curve and enters
// the pool in full (any rounding dust stays in the pool, never minted as
// shares).
func (e *Engine) Buy(account common.Address, marketID string, side domain.Side, amount, minSharesOut int64) (TradeResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !side.Valid() {
		return TradeResult{}, domain.ErrInvalidSide
	}
	if amount <= 0 {
		return TradeResult{}, domain.ErrInvalidAmount
	}
	if amount < domain.MinTradeAmount {
		return TradeResult{}, domain.ErrBelowMinTrade
	}

	m, err := e.store.Market(marketID)
	if err != nil {
		return TradeResult{}, err
	}
	now := e.now()
	if err := e.checkOpen(m, now); err != nil {
		return TradeResult{}, err
	}

	fee := bpsShare(amount, e.params.TotalFeeBps())
	platformShare := bpsShare(amount, e.params.PlatformFeeBps)
	creatorShare := fee - platformShare
	net := amount - fee

	vl := m.Heat.VirtualLiquidity()
	supply, other := m.SupplyOf(side), m.SupplyOf(side.Opposite())
	shares := curve.SharesForAmount(supply, other, vl, net)
	if shares <= 0 || shares < minSharesOut {
		return TradeResult{}, domain.ErrSlippage
	}

	// Commit.
	if side == domain.SideYes {
		m.YesShares += shares
	} else {
		m.NoShares += shares
	}
	m.PoolBalance += net
	m.UpdatedAt = now

	pos := e.store.EnsurePosition(m, account)
	if side == domain.SideYes {
		pos.YesShares += shares
	} else {
		pos.NoShares += shares
	}
	pos.Invested += amount
	pos.UpdatedAt = now

	e.creditFees(m.Creator, platformShare, creatorShare, now)

	res := e.tradeResult(m, shares, amount, fee)
	e.emit(domain.EventTradeExecuted, m.ID, account, map[string]any{
		"direction": "buy",
		"side":      string(side),
		"amount":    amount,
		"fee":       fee,
		"shares":    shares,
		"yes_price": res.YesPrice,
		"no_price":  res.NoPrice,
	})
	return res, nil
}

// Sell converts shares back into a payment via the inverse of the buy
// pricing. The pool is debited by the gross proceeds; the seller receives
// the post-fee net. A sell that would drive the pool negative fails with a
// pool-insufficiency error even when the seller's share balance covers it:
// that guard protects other holders, not the seller.
func (e *Engine) Sell(account common.Address, marketID string, side domain.Side, shares, minPaymentOut int64) (TradeResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !side.Valid() {
		return TradeResult{}, domain.ErrInvalidSide
	}
	if shares <= 0 {
		return TradeResult{}, domain.ErrInvalidAmount
	}
	if shares < domain.MinSellShares {
		return TradeResult{}, domain.ErrBelowMinTrade
	}

	m, err := e.store.Market(marketID)
	if err != nil {
		return TradeResult{}, err
	}
	now := e.now()
	if err := e.checkOpen(m, now); err != nil {
		return TradeResult{}, err
	}

	pos := e.store.Position(marketID, account)
	if pos == nil || pos.SharesOf(side) < shares {
		return TradeResult{}, domain.ErrInsufficientShare
	}

	vl := m.Heat.VirtualLiquidity()
	supply, other := m.SupplyOf(side), m.SupplyOf(side.Opposite())
	gross := curve.SellProceeds(supply, other, vl, shares)
	if gross > m.PoolBalance {
		return TradeResult{}, domain.ErrPoolInsufficient
	}

	fee := bpsShare(gross, e.params.TotalFeeBps())
	platformShare := bpsShare(gross, e.params.PlatformFeeBps)
	creatorShare := fee - platformShare
	net := gross - fee
	if net < minPaymentOut {
		return TradeResult{}, domain.ErrSlippage
	}

	// Commit.
	if side == domain.SideYes {
		m.YesShares -= shares
		pos.YesShares -= shares
	} else {
		m.NoShares -= shares
		pos.NoShares -= shares
	}
	m.PoolBalance -= gross
	m.UpdatedAt = now
	pos.Returned += net
	pos.UpdatedAt = now

	e.creditFees(m.Creator, platformShare, creatorShare, now)

	res := e.tradeResult(m, shares, net, fee)
	e.emit(domain.EventTradeExecuted, m.ID, account, map[string]any{
		"direction": "sell",
		"side":      string(side),
		"payment":   net,
		"fee":       fee,
		"shares":    shares,
		"yes_price": res.YesPrice,
		"no_price":  res.NoPrice,
	})
	return res, nil
}

// PreviewBuy quotes a buy without touching state.
func (e *Engine) PreviewBuy(marketID string, side domain.Side, amount int64) (TradeResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !side.Valid() {
		return TradeResult{}, domain.ErrInvalidSide
	}
	if amount < domain.MinTradeAmount {
		return TradeResult{}, domain.ErrBelowMinTrade
	}
	m, err := e.store.Market(marketID)
	if err != nil {
		return TradeResult{}, err
	}

	fee := bpsShare(amount, e.params.TotalFeeBps())
	net := amount - fee
	vl := m.Heat.VirtualLiquidity()
	supply, other := m.SupplyOf(side), m.SupplyOf(side.Opposite())
	shares := curve.SharesForAmount(supply, other, vl, net)

	return TradeResult{
		Shares:   shares,
		Payment:  amount,
		Fee:      fee,
		YesPrice: curve.SpotPrice(m.YesShares, m.NoShares, vl),
		NoPrice:  curve.SpotPrice(m.NoShares, m.YesShares, vl),
	}, nil
}

// PreviewSell quotes a sell without touching state.
func (e *Engine) PreviewSell(marketID string, side domain.Side, shares int64) (TradeResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !side.Valid() {
		return TradeResult{}, domain.ErrInvalidSide
	}
	if shares <= 0 {
		return TradeResult{}, domain.ErrInvalidAmount
	}
	m, err := e.store.Market(marketID)
	if err != nil {
		return TradeResult{}, err
	}

	vl := m.Heat.VirtualLiquidity()
	supply, other := m.SupplyOf(side), m.SupplyOf(side.Opposite())
	if shares > supply {
		return TradeResult{}, domain.ErrInsufficientShare
	}
	gross := curve.SellProceeds(supply, other, vl, shares)
	fee := bpsShare(gross, e.params.TotalFeeBps())

	return TradeResult{
		Shares:   shares,
		Payment:  gross - fee,
		Fee:      fee,
		YesPrice: curve.SpotPrice(m.YesShares, m.NoShares, vl),
		NoPrice:  curve.SpotPrice(m.NoShares, m.YesShares, vl),
	}, nil
}

// SpotPrices returns the current spot price of each side.
func (e *Engine) SpotPrices(marketID string) (yes, no int64, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, err := e.store.Market(marketID)
	if err != nil {
		return 0, 0, err
	}
	vl := m.Heat.VirtualLiquidity()
	return curve.SpotPrice(m.YesShares, m.NoShares, vl),
		curve.SpotPrice(m.NoShares, m.YesShares, vl), nil
}

// SetPaused pauses or unpauses trading on a market. Operator-only; the
// authorization gate lives at the API boundary.
func (e *Engine) SetPaused(marketID string, paused bool) (domain.Market, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, err := e.store.Market(marketID)
	if err != nil {
		return domain.Market{}, err
	}
	if m.Status == domain.MarketStatusResolved {
		return domain.Market{}, domain.ErrAlreadyResolved
	}
	m.Paused = paused
	m.UpdatedAt = e.now()

	evt := domain.EventMarketPaused
	if !paused {
		evt = domain.EventMarketUnpaused
	}
	e.emit(evt, m.ID, common.Address{}, nil)
	return *m, nil
}

// creditFees credits the platform share to the treasury balance and the
// creator share to the creator's pull-pattern fee bucket.
func (e *Engine) creditFees(creator common.Address, platformShare, creatorShare int64, now time.Time) {
	if platformShare > 0 {
		w := e.store.Withdrawal(e.treasury)
		w.Balance += platformShare
		w.UpdatedAt = now
	}
	if creatorShare > 0 {
		w := e.store.Withdrawal(creator)
		w.CreatorFees += creatorShare
		w.UpdatedAt = now
	}
}

func (e *Engine) tradeResult(m *domain.Market, shares, payment, fee int64) TradeResult {
	vl := m.Heat.VirtualLiquidity()
	return TradeResult{
		Shares:   shares,
		Payment:  payment,
		Fee:      fee,
		YesPrice: curve.SpotPrice(m.YesShares, m.NoShares, vl),
		NoPrice:  curve.SpotPrice(m.NoShares, m.YesShares, vl),
	}
}
