package models

import (
	"database/sql"
	"time"
)

type Transaction struct {
	ID               string         `db:"id"`
	UserID           string         `db:"user_id"`
	Type             string         `db:"type"`
	Amount           float64        `db:"amount"`
	ApplicationID    sql.NullString `db:"application_id"`
	Plan             sql.NullString `db:"plan"`
	PaymentReference string         `db:"payment_reference"`
	ReferenceNumber  string         `db:"reference_number"`
	Status           string         `db:"status"`
	CreatedAt        time.Time      `db:"created_at"`
}
