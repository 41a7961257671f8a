package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/loanlinker/api/internal/models"
)

type ApplicationRepository interface {
	Insert(app *models.LoanApplication) (string, error)
	GetOne(id string) (*models.LoanApplication, bool, error)
	GetAll() ([]models.LoanApplication, error)
	GetAllByUser(userID string) ([]models.LoanApplication, error)
	GetAllByAssignedRM(rmID string) ([]models.LoanApplication, error)
	UpdateFields(app *models.LoanApplication) error
	AssignRM(id string, rmID string) error
	UpdateRMStatus(id string, status, notes string) error
	Unlock(id string) (bool, error)
	Count() (int, error)
	GetRecent(limit int) ([]models.LoanApplication, error)
}

const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusApproved = "approved"
	ApplicationStatusRejected = "rejected"
)

// Recognized RM pipeline statuses. The status field is advisory free text;
// these are the values the dashboards know how to render.
const (
	RMStatusUnderReview       = "Under Review"
	RMStatusDocumentsVerified = "Documents Verified"
	RMStatusBankMeeting       = "Bank Meeting Scheduled"
	RMStatusApproved          = "Approved"
	RMStatusRejected          = "Rejected"
)

type ApplicationRepositoryImpl struct {
	db *sqlx.DB
}

func NewApplicationRepository(db *sqlx.DB) ApplicationRepository {
	return &ApplicationRepositoryImpl{db: db}
}

func (repo *ApplicationRepositoryImpl) Insert(app *models.LoanApplication) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string
	query := `
		INSERT INTO loan_applications
			(user_id, loan_type, amount, tenure_months, purpose, has_existing_loans, existing_loans)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := repo.db.GetContext(ctx, &id, query,
		app.UserID,
		app.LoanType,
		app.Amount,
		app.TenureMonths,
		app.Purpose,
		app.HasExistingLoans,
		app.ExistingLoans,
	)
	if err != nil {
		return "", err
	}

	return id, nil
}

func (repo *ApplicationRepositoryImpl) GetOne(id string) (*models.LoanApplication, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var app models.LoanApplication

	query := `SELECT * FROM loan_applications WHERE id = $1`

	err := repo.db.GetContext(ctx, &app, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &app, true, err
}

func (repo *ApplicationRepositoryImpl) GetAll() ([]models.LoanApplication, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var apps []models.LoanApplication

	query := `SELECT * FROM loan_applications ORDER BY created_at`

	err := repo.db.SelectContext(ctx, &apps, query)
	if err != nil {
		return nil, err
	}

	return apps, nil
}

func (repo *ApplicationRepositoryImpl) GetAllByUser(userID string) ([]models.LoanApplication, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var apps []models.LoanApplication

	query := `SELECT * FROM loan_applications WHERE user_id = $1 ORDER BY created_at`

	err := repo.db.SelectContext(ctx, &apps, query, userID)
	if err != nil {
		return nil, err
	}

	return apps, nil
}

func (repo *ApplicationRepositoryImpl) GetAllByAssignedRM(rmID string) ([]models.LoanApplication, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var apps []models.LoanApplication

	query := `SELECT * FROM loan_applications WHERE assigned_rm = $1 ORDER BY created_at`

	err := repo.db.SelectContext(ctx, &apps, query, rmID)
	if err != nil {
		return nil, err
	}

	return apps, nil
}

// UpdateFields overwrites the borrower-editable fields. Callers must have
// already checked that no offers exist.
func (repo *ApplicationRepositoryImpl) UpdateFields(app *models.LoanApplication) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE loan_applications
		SET loan_type = $1, amount = $2, tenure_months = $3, purpose = $4,
		    has_existing_loans = $5, existing_loans = $6, updated_at = NOW()
		WHERE id = $7`

	_, err := repo.db.ExecContext(ctx, query,
		app.LoanType,
		app.Amount,
		app.TenureMonths,
		app.Purpose,
		app.HasExistingLoans,
		app.ExistingLoans,
		app.ID,
	)
	return err
}

func (repo *ApplicationRepositoryImpl) AssignRM(id string, rmID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE loan_applications
		SET assigned_rm = $1, rm_assigned_at = NOW(), updated_at = NOW()
		WHERE id = $2`

	_, err := repo.db.ExecContext(ctx, query, rmID, id)
	return err
}

func (repo *ApplicationRepositoryImpl) UpdateRMStatus(id string, status, notes string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE loan_applications
		SET rm_status = $1, rm_notes = $2, updated_at = NOW()
		WHERE id = $3`

	_, err := repo.db.ExecContext(ctx, query, status, notes, id)
	return err
}

// Unlock flips the paywall flag. The flag is monotonic: the conditional
// UPDATE only matches a still-locked row, so concurrent unlocks race safely
// and exactly one caller observes the transition. Returns whether this call
// performed the flip.
func (repo *ApplicationRepositoryImpl) Unlock(id string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE loan_applications
		SET unlocked = TRUE, unlocked_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND unlocked = FALSE`

	result, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}

func (repo *ApplicationRepositoryImpl) Count() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var count int

	query := `SELECT COUNT(*) FROM loan_applications`

	err := repo.db.GetContext(ctx, &count, query)
	return count, err
}

func (repo *ApplicationRepositoryImpl) GetRecent(limit int) ([]models.LoanApplication, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var apps []models.LoanApplication

	query := `SELECT * FROM loan_applications ORDER BY created_at DESC LIMIT $1`

	err := repo.db.SelectContext(ctx, &apps, query, limit)
	if err != nil {
		return nil, err
	}

	return apps, nil
}
