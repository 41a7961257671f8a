package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type User struct {
	ID             string         `db:"id"`
	Email          string         `db:"email"`
	Name           string         `db:"name"`
	Phone          string         `db:"phone"`
	HashedPassword string         `db:"hashed_password"`
	Role           string         `db:"role"`
	KycStatus      string         `db:"kyc_status"`
	KycData        KycData        `db:"kyc_data"`
	KycSubmittedAt sql.NullTime   `db:"kyc_submitted_at"`
	Address        sql.NullString `db:"address"`
	Image          sql.NullString `db:"image"`
	IsPremium      bool           `db:"is_premium"`
	PremiumPlan    sql.NullString `db:"premium_plan"`
	PremiumSince   sql.NullTime   `db:"premium_since"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      sql.NullTime   `db:"updated_at"`
}

// KycData is the borrower's identity/income declaration, stored as a JSONB
// column. Bank and RM accounts never carry one.
type KycData struct {
	Aadhaar        string  `json:"aadhaar,omitempty"`
	Pan            string  `json:"pan,omitempty"`
	Income         float64 `json:"income,omitempty"`
	EmploymentType string  `json:"employment_type,omitempty"`
	City           string  `json:"city,omitempty"`
	CreditScore    int     `json:"credit_score,omitempty"`
	Address        string  `json:"address,omitempty"`
	Company        string  `json:"company,omitempty"`
}

func (k *KycData) Scan(value any) error {
	if value == nil {
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unsupported type %T for KycData", value)
	}

	return json.Unmarshal(b, k)
}

func (k KycData) Value() (driver.Value, error) {
	return json.Marshal(k)
}
