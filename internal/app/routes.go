package app

import (
	"net/http"

	"github.com/loanlinker/api/internal/handler"
	"github.com/loanlinker/api/internal/middleware"
	"github.com/loanlinker/api/internal/repository"
)

func (app *Application) routes() http.Handler {
	mux := http.NewServeMux()

	middlewareRepo := middleware.New(app.errorHandler, app.Logger, app.DB.User(), &app.Config)

	healthHandler := handler.NewHealthCheckHandler(app.errorHandler)

	authHandler := handler.NewAuthHandler(&handler.AuthHandler{
		UserRepo:   app.DB.User(),
		ErrHandler: app.errorHandler,
		Helper:     app.Helper,
		Mailer:     app.Mailer,
		Config:     &app.Config,
	})

	userHandler := handler.NewUserHandler(&handler.UserHandler{
		UserRepo:        app.DB.User(),
		ApplicationRepo: app.DB.Application(),
		OfferRepo:       app.DB.Offer(),
		ErrHandler:      app.errorHandler,
		Helper:          app.Helper,
		FileUploader:    app.FileUploader,
	})

	applicationHandler := handler.NewApplicationHandler(&handler.ApplicationHandler{
		UserRepo:        app.DB.User(),
		ApplicationRepo: app.DB.Application(),
		OfferRepo:       app.DB.Offer(),
		ErrHandler:      app.errorHandler,
		Helper:          app.Helper,
	})

	bankHandler := handler.NewBankHandler(&handler.BankHandler{
		UserRepo:        app.DB.User(),
		ApplicationRepo: app.DB.Application(),
		OfferRepo:       app.DB.Offer(),
		ErrHandler:      app.errorHandler,
		Helper:          app.Helper,
		Kafka:           app.Kafka,
		Config:          &app.Config,
	})

	rmHandler := handler.NewRMHandler(&handler.RMHandler{
		UserRepo:        app.DB.User(),
		ApplicationRepo: app.DB.Application(),
		OfferRepo:       app.DB.Offer(),
		ErrHandler:      app.errorHandler,
	})

	adminHandler := handler.NewAdminHandler(&handler.AdminHandler{
		UserRepo:        app.DB.User(),
		ApplicationRepo: app.DB.Application(),
		OfferRepo:       app.DB.Offer(),
		TransactionRepo: app.DB.Transaction(),
		ErrHandler:      app.errorHandler,
		Helper:          app.Helper,
		Mailer:          app.Mailer,
	})

	paymentHandler := handler.NewPaymentHandler(&handler.PaymentHandler{
		UserRepo:        app.DB.User(),
		ApplicationRepo: app.DB.Application(),
		OfferRepo:       app.DB.Offer(),
		TransactionRepo: app.DB.Transaction(),
		ErrHandler:      app.errorHandler,
		Helper:          app.Helper,
		Mailer:          app.Mailer,
		Kafka:           app.Kafka,
		Verifier:        app.Payments,
	})

	mux.HandleFunc("GET /health", healthHandler.HandleHealthCheck)

	mux.HandleFunc("POST /auth/register", authHandler.HandleAuthRegister)
	mux.HandleFunc("POST /auth/login", authHandler.HandleAuthLogin)
	mux.Handle("GET /me", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(authHandler.HandleMe)))

	requireUser := func(next http.HandlerFunc) http.Handler {
		return middlewareRepo.RequireRole(repository.RoleUser, next)
	}
	requireBank := func(next http.HandlerFunc) http.Handler {
		return middlewareRepo.RequireRole(repository.RoleBank, next)
	}
	requireRM := func(next http.HandlerFunc) http.Handler {
		return middlewareRepo.RequireRole(repository.RoleRM, next)
	}
	requireAdmin := func(next http.HandlerFunc) http.Handler {
		return middlewareRepo.RequireRole(repository.RoleAdmin, next)
	}

	mux.Handle("POST /kyc", requireUser(userHandler.HandleSubmitKyc))
	mux.Handle("POST /user/update-profile", requireUser(userHandler.HandleUpdateProfile))
	mux.Handle("POST /user/profile-picture", requireUser(userHandler.HandleProfilePicture))

	mux.Handle("POST /loan-application", requireUser(applicationHandler.HandleSubmitApplication))
	mux.Handle("POST /user/update-application", requireUser(applicationHandler.HandleUpdateApplication))
	mux.Handle("GET /my-applications", requireUser(applicationHandler.HandleMyApplications))

	mux.Handle("POST /unlock-offers", requireUser(paymentHandler.HandleUnlockOffers))
	mux.Handle("POST /upgrade-premium", requireUser(paymentHandler.HandleUpgradePremium))

	mux.Handle("GET /bank/leads", requireBank(bankHandler.HandleLeads))
	mux.Handle("POST /bank/submit-offer", requireBank(bankHandler.HandleSubmitOffer))
	mux.Handle("POST /bank/update-profile", requireBank(bankHandler.HandleUpdateProfile))

	mux.Handle("GET /rm/leads", requireRM(rmHandler.HandleLeads))
	mux.Handle("POST /rm/update-status", requireRM(rmHandler.HandleUpdateStatus))

	mux.Handle("GET /admin/users", requireAdmin(adminHandler.HandleUsers))
	mux.Handle("GET /admin/applications", requireAdmin(adminHandler.HandleApplications))
	mux.Handle("GET /admin/analytics", requireAdmin(adminHandler.HandleAnalytics))
	mux.Handle("POST /admin/create-account", requireAdmin(adminHandler.HandleCreateAccount))
	mux.Handle("POST /admin/reset-password", requireAdmin(adminHandler.HandleResetPassword))
	mux.Handle("POST /admin/assign-rm", requireAdmin(adminHandler.HandleAssignRM))

	return middlewareRepo.LogAccess(middlewareRepo.RecoverPanic(middlewareRepo.Authenticate(mux)))
}
