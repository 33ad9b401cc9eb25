package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// PendingWithdrawal is a pull-pattern balance. Settlement events only ever
// credit it; funds leave through an explicit withdraw call. Creator fees
// are kept in a separate bucket so they can be withdrawn independently.
type PendingWithdrawal struct {
	Account     common.Address
	Balance     int64 // bond returns, jury fees, proposer rewards, platform fees
	CreatorFees int64
	UpdatedAt   time.Time
}
