package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/loanlinker/api/internal/models"
)

type UserRepository interface {
	Insert(user *models.User) (string, error)
	GetOne(id string) (*models.User, bool, error)
	GetByEmail(email string) (*models.User, bool, error)
	GetAll() ([]models.User, error)
	SubmitKyc(id string, data models.KycData) error
	MergeKycData(id string, phone string, data *models.KycData) error
	UpdateBankProfile(id, name, phone, address string) error
	UpdatePassword(id string, hashedPassword string) error
	ChangeProfilePicture(id string, image string) error
	UpgradePremium(id string, plan string) error
	CountByRole(role string) (int, error)
	CountPremium() (int, error)
}

const (
	// RoleUser is a borrower. Borrowers self-register, complete KYC and
	// submit loan applications.
	RoleUser = "user"

	// RoleBank is a partner bank account. Bank accounts are created by the
	// admin, auto-verified, and never submit applications.
	RoleBank = "bank"

	// RoleRM is a relationship manager, a trusted intermediary with full
	// visibility into the applications assigned to them.
	RoleRM = "rm"

	// RoleAdmin is the platform operator account.
	RoleAdmin = "admin"
)

const (
	KycStatusPending  = "pending"
	KycStatusVerified = "verified"
)

type UserRepositoryImpl struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (repo *UserRepositoryImpl) Insert(user *models.User) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string
	query := `
		INSERT INTO users (email, name, phone, hashed_password, role, kyc_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := repo.db.GetContext(ctx, &id, query,
		user.Email,
		user.Name,
		user.Phone,
		user.HashedPassword,
		user.Role,
		user.KycStatus,
	)
	if err != nil {
		return "", err
	}

	return id, nil
}

func (repo *UserRepositoryImpl) GetOne(id string) (*models.User, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var user models.User

	query := `SELECT * FROM users WHERE id = $1`

	err := repo.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &user, true, err
}

func (repo *UserRepositoryImpl) GetByEmail(email string) (*models.User, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var user models.User

	query := `SELECT * FROM users WHERE email = $1`

	err := repo.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &user, true, err
}

func (repo *UserRepositoryImpl) GetAll() ([]models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var users []models.User

	query := `SELECT * FROM users ORDER BY created_at`

	err := repo.db.SelectContext(ctx, &users, query)
	if err != nil {
		return nil, err
	}

	return users, nil
}

// SubmitKyc stores the borrower's declaration and marks the account verified.
// Real identity verification happens outside the platform.
func (repo *UserRepositoryImpl) SubmitKyc(id string, data models.KycData) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE users
		SET kyc_data = $1, kyc_status = $2, kyc_submitted_at = NOW(), updated_at = NOW()
		WHERE id = $3`

	_, err := repo.db.ExecContext(ctx, query, data, KycStatusVerified, id)
	return err
}

func (repo *UserRepositoryImpl) MergeKycData(id string, phone string, data *models.KycData) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if data != nil {
		query := `
			UPDATE users
			SET phone = COALESCE(NULLIF($1, ''), phone),
			    kyc_data = COALESCE(kyc_data, '{}'::jsonb) || $2,
			    updated_at = NOW()
			WHERE id = $3`

		_, err := repo.db.ExecContext(ctx, query, phone, *data, id)
		return err
	}

	query := `
		UPDATE users
		SET phone = COALESCE(NULLIF($1, ''), phone), updated_at = NOW()
		WHERE id = $2`

	_, err := repo.db.ExecContext(ctx, query, phone, id)
	return err
}

func (repo *UserRepositoryImpl) UpdateBankProfile(id, name, phone, address string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE users
		SET name = COALESCE(NULLIF($1, ''), name),
		    phone = COALESCE(NULLIF($2, ''), phone),
		    address = COALESCE(NULLIF($3, ''), address),
		    updated_at = NOW()
		WHERE id = $4`

	_, err := repo.db.ExecContext(ctx, query, name, phone, address, id)
	return err
}

func (repo *UserRepositoryImpl) UpdatePassword(id string, hashedPassword string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE users SET hashed_password = $1, updated_at = NOW() WHERE id = $2`

	_, err := repo.db.ExecContext(ctx, query, hashedPassword, id)
	return err
}

func (repo *UserRepositoryImpl) ChangeProfilePicture(id string, image string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE users SET image = $1, updated_at = NOW() WHERE id = $2`

	_, err := repo.db.ExecContext(ctx, query, image, id)
	return err
}

func (repo *UserRepositoryImpl) UpgradePremium(id string, plan string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE users
		SET is_premium = TRUE, premium_plan = $1, premium_since = NOW(), updated_at = NOW()
		WHERE id = $2`

	_, err := repo.db.ExecContext(ctx, query, plan, id)
	return err
}

func (repo *UserRepositoryImpl) CountByRole(role string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var count int

	query := `SELECT COUNT(*) FROM users WHERE role = $1`

	err := repo.db.GetContext(ctx, &count, query, role)
	return count, err
}

func (repo *UserRepositoryImpl) CountPremium() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var count int

	query := `SELECT COUNT(*) FROM users WHERE is_premium`

	err := repo.db.GetContext(ctx, &count, query)
	return count, err
}
