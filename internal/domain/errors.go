package domain

import "errors"

// Input validation failures.
var (
	ErrNotFound      = errors.New("not found")
	ErrEmptyQuestion = errors.New("question must not be empty")
	ErrPastExpiry    = errors.New("expiry time is in the past")
	ErrInvalidHeat   = errors.New("unknown heat level")
	ErrInvalidSide   = errors.New("side must be yes or no")
	ErrBelowMinTrade = errors.New("trade below minimum size")
	ErrInvalidAmount = errors.New("amount must be positive")
)

// State-precondition failures.
var (
	ErrMarketClosed     = errors.New("market is not open for trading")
	ErrMarketPaused     = errors.New("market is paused")
	ErrMarketNotExpired = errors.New("market has not expired yet")
	ErrAlreadyProposed  = errors.New("outcome already proposed")
	ErrNotProposed      = errors.New("no outcome proposed")
	ErrAlreadyDisputed  = errors.New("proposal already disputed")
	ErrNotDisputed      = errors.New("market is not disputed")
	ErrAlreadyResolved  = errors.New("market already resolved")
	ErrNotResolved      = errors.New("market is not resolved")
	ErrOneSidedMarket   = errors.New("one-sided market cannot be proposed")
	ErrWindowClosed     = errors.New("window has elapsed")
	ErrWindowOpen       = errors.New("window has not elapsed yet")
	ErrCreatorPriority  = errors.New("creator priority window is still open")
	ErrEmergencyNotOpen = errors.New("emergency refund window not open")
	ErrWinningSideEmpty = errors.New("winning side has no remaining supply")
)

// Economic-guard failures.
var (
	ErrSlippage          = errors.New("slippage bound exceeded")
	ErrPoolInsufficient  = errors.New("pool balance insufficient for payout")
	ErrInsufficientBond  = errors.New("bond payment below required amount")
	ErrInsufficientShare = errors.New("insufficient share balance")
	ErrParamOutOfBounds  = errors.New("parameter outside allowed bounds")
)

// Authorization failures.
var (
	ErrNoVotingPower = errors.New("no shares held in this market")
	ErrNotSigner     = errors.New("not a governance signer")
	ErrBadSignature  = errors.New("signature verification failed")
	ErrInvalidAction = errors.New("unknown governance action type")
)

// Double-action failures.
var (
	ErrAlreadyClaimed   = errors.New("payout already claimed")
	ErrAlreadyRefunded  = errors.New("position already refunded")
	ErrAlreadyVoted     = errors.New("already voted in this market")
	ErrAlreadyConfirmed = errors.New("signer already confirmed this action")
	ErrActionExecuted   = errors.New("action already executed")
	ErrActionExpired    = errors.New("action has expired")
	ErrNothingToClaim   = errors.New("nothing to claim")
	ErrNothingOwed      = errors.New("no pending balance to withdraw")
)
