package repository

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/loanlinker/api/internal/models"
)

type OfferRepository interface {
	Insert(offer *models.LoanOffer) (string, error)
	GetAllByApplication(applicationID string) ([]models.LoanOffer, error)
	ExistsForBank(applicationID, bankID string) (bool, error)
}

// ErrDuplicateOffer is returned by Insert when the bank already holds an
// offer on the application. The unique index raises it even when two
// submissions race past the handler's existence check.
var ErrDuplicateOffer = errors.New("bank has already submitted an offer for this application")

type OfferRepositoryImpl struct {
	db *sqlx.DB
}

func NewOfferRepository(db *sqlx.DB) OfferRepository {
	return &OfferRepositoryImpl{db: db}
}

// Insert appends an offer. Offers never get updated or deleted, and each
// submission is its own row, so concurrent banks cannot lose each other's
// writes the way a read-modify-write of an embedded list would.
func (repo *OfferRepositoryImpl) Insert(offer *models.LoanOffer) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string
	query := `
		INSERT INTO loan_offers
			(application_id, bank_id, bank_name, eligible, interest_rate, emi, max_amount, remarks)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err := repo.db.GetContext(ctx, &id, query,
		offer.ApplicationID,
		offer.BankID,
		offer.BankName,
		offer.Eligible,
		offer.InterestRate,
		offer.EMI,
		offer.MaxAmount,
		offer.Remarks,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return "", ErrDuplicateOffer
		}
		return "", err
	}

	return id, nil
}

// GetAllByApplication returns offers in submission order.
func (repo *OfferRepositoryImpl) GetAllByApplication(applicationID string) ([]models.LoanOffer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var offers []models.LoanOffer

	query := `SELECT * FROM loan_offers WHERE application_id = $1 ORDER BY seq`

	err := repo.db.SelectContext(ctx, &offers, query, applicationID)
	if err != nil {
		return nil, err
	}

	return offers, nil
}

func (repo *OfferRepositoryImpl) ExistsForBank(applicationID, bankID string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var exists bool

	query := `SELECT EXISTS(SELECT 1 FROM loan_offers WHERE application_id = $1 AND bank_id = $2)`

	err := repo.db.GetContext(ctx, &exists, query, applicationID, bankID)
	if err != nil {
		return false, err
	}

	return exists, nil
}
