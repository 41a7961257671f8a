package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type LoanApplication struct {
	ID               string         `db:"id"`
	UserID           string         `db:"user_id"`
	LoanType         string         `db:"loan_type"`
	Amount           float64        `db:"amount"`
	TenureMonths     int            `db:"tenure_months"`
	Purpose          string         `db:"purpose"`
	HasExistingLoans bool           `db:"has_existing_loans"`
	ExistingLoans    ExistingLoans  `db:"existing_loans"`
	Status           string         `db:"status"`
	Unlocked         bool           `db:"unlocked"`
	UnlockedAt       sql.NullTime   `db:"unlocked_at"`
	AssignedRM       sql.NullString `db:"assigned_rm"`
	RMAssignedAt     sql.NullTime   `db:"rm_assigned_at"`
	RMStatus         sql.NullString `db:"rm_status"`
	RMNotes          sql.NullString `db:"rm_notes"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        sql.NullTime   `db:"updated_at"`

	// Offers are loaded from their own table; submission order is preserved.
	Offers []LoanOffer `db:"-"`
}

// ExistingLoan is one liability the borrower declared on the application form.
type ExistingLoan struct {
	Type            string  `json:"type"`
	Amount          float64 `json:"amount"`
	Tenure          int     `json:"tenure"`
	EMI             float64 `json:"emi"`
	RemainingTenure int     `json:"remaining_tenure"`
}

type ExistingLoans []ExistingLoan

func (e *ExistingLoans) Scan(value any) error {
	if value == nil {
		*e = ExistingLoans{}
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unsupported type %T for ExistingLoans", value)
	}

	return json.Unmarshal(b, e)
}

func (e ExistingLoans) Value() (driver.Value, error) {
	if e == nil {
		e = ExistingLoans{}
	}
	return json.Marshal(e)
}
