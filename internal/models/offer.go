package models

import (
	"time"
)

// LoanOffer is one bank's response to one application. Offers are immutable
// once written; the bank name is a snapshot of the bank's profile name at
// submission time, not a live join.
type LoanOffer struct {
	ID            string    `db:"id"`
	ApplicationID string    `db:"application_id"`
	BankID        string    `db:"bank_id"`
	BankName      string    `db:"bank_name"`
	Eligible      bool      `db:"eligible"`
	InterestRate  float64   `db:"interest_rate"`
	EMI           float64   `db:"emi"`
	MaxAmount     float64   `db:"max_amount"`
	Remarks       string    `db:"remarks"`
	Seq           int64     `db:"seq"`
	CreatedAt     time.Time `db:"created_at"`
}
