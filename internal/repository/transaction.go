package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/loanlinker/api/internal/models"
)

type TransactionRepository interface {
	Insert(transaction *models.Transaction) (string, error)
	GetAll() ([]models.Transaction, error)
	SumAmounts() (float64, error)
}

const (
	// TransactionTypeUnlock records a one-time paywall fee for a single
	// application's offer comparison.
	TransactionTypeUnlock = "unlock"

	// TransactionTypePremium records a premium subscription purchase.
	TransactionTypePremium = "premium"

	// TransactionStatusCompleted is the only persisted status; the payment
	// provider owns the pending/failed lifecycle.
	TransactionStatusCompleted = "completed"
)

type TransactionRepositoryImpl struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) TransactionRepository {
	return &TransactionRepositoryImpl{db: db}
}

func (repo *TransactionRepositoryImpl) Insert(transaction *models.Transaction) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string
	query := `
		INSERT INTO transactions
			(user_id, type, amount, application_id, plan, payment_reference, reference_number, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err := repo.db.GetContext(ctx, &id, query,
		transaction.UserID,
		transaction.Type,
		transaction.Amount,
		transaction.ApplicationID,
		transaction.Plan,
		transaction.PaymentReference,
		transaction.ReferenceNumber,
		TransactionStatusCompleted,
	)
	if err != nil {
		return "", err
	}

	return id, nil
}

func (repo *TransactionRepositoryImpl) GetAll() ([]models.Transaction, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var transactions []models.Transaction

	query := `SELECT * FROM transactions ORDER BY created_at`

	err := repo.db.SelectContext(ctx, &transactions, query)
	if err != nil {
		return nil, err
	}

	return transactions, nil
}

// SumAmounts totals every transaction regardless of type; the admin
// dashboard reports it as platform revenue.
func (repo *TransactionRepositoryImpl) SumAmounts() (float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var total float64

	query := `SELECT COALESCE(SUM(amount), 0) FROM transactions`

	err := repo.db.GetContext(ctx, &total, query)
	return total, err
}
