package seeder

import (
	"log"

	"github.com/cradoe/gopass"
	"github.com/loanlinker/api/internal/config"
	"github.com/loanlinker/api/internal/models"
	"github.com/loanlinker/api/internal/repository"
)

type Seeder struct {
	DB     repository.Database
	Config *config.Config
}

func New(db repository.Database, cfg *config.Config) *Seeder {
	return &Seeder{
		DB:     db,
		Config: cfg,
	}
}

func (seeder *Seeder) Run() {
	seeder.seedDefaultAdmin()
}

// seedDefaultAdmin guarantees the platform always has an operator account.
// It runs on every boot and is keyed on the configured admin email, so a
// restart never creates a second admin or resets a changed password.
func (seeder *Seeder) seedDefaultAdmin() {
	email := seeder.Config.DefaultAdmin.Email

	_, found, err := seeder.DB.User().GetByEmail(email)
	if err != nil {
		log.Fatalf("Failed to check for default admin: %v", err)
	}

	if found {
		return
	}

	hashedPassword, err := gopass.Hash(seeder.Config.DefaultAdmin.Password)
	if err != nil {
		log.Fatalf("Failed to hash default admin password: %v", err)
	}

	admin := &models.User{
		Email:          email,
		Name:           "Platform Admin",
		HashedPassword: hashedPassword,
		Role:           repository.RoleAdmin,
		KycStatus:      repository.KycStatusVerified,
	}

	id, err := seeder.DB.User().Insert(admin)
	if err != nil {
		log.Fatalf("Failed to insert default admin: %v", err)
	}

	// The operator account gets the top plan so every console view renders
	// without paywall branches.
	err = seeder.DB.User().UpgradePremium(id, "platinum")
	if err != nil {
		log.Fatalf("Failed to mark default admin premium: %v", err)
	}

	log.Printf("Default admin account created: %s", email)
}
