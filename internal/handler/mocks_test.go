package handler

import (
	"io"
	"log/slog"
	"sync"

	"github.com/loanlinker/api/internal/errHandler"
	"github.com/loanlinker/api/internal/helper"
	"github.com/loanlinker/api/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepo implements UserRepository but only mocks the methods a given
// test cares about; the rest are no-ops.
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Insert(user *models.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

func (m *MockUserRepo) GetOne(id string) (*models.User, bool, error) {
	args := m.Called(id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Bool(1), args.Error(2)
}

func (m *MockUserRepo) GetByEmail(email string) (*models.User, bool, error) {
	args := m.Called(email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Bool(1), args.Error(2)
}

func (m *MockUserRepo) GetAll() ([]models.User, error) {
	args := m.Called()
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *MockUserRepo) SubmitKyc(id string, data models.KycData) error {
	args := m.Called(id, data)
	return args.Error(0)
}

func (m *MockUserRepo) MergeKycData(id string, phone string, data *models.KycData) error {
	return nil
}

func (m *MockUserRepo) UpdateBankProfile(id, name, phone, address string) error {
	return nil
}

func (m *MockUserRepo) UpdatePassword(id string, hashedPassword string) error {
	args := m.Called(id, hashedPassword)
	return args.Error(0)
}

func (m *MockUserRepo) ChangeProfilePicture(id string, image string) error {
	return nil
}

func (m *MockUserRepo) UpgradePremium(id string, plan string) error {
	args := m.Called(id, plan)
	return args.Error(0)
}

func (m *MockUserRepo) CountByRole(role string) (int, error) {
	args := m.Called(role)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepo) CountPremium() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

type MockApplicationRepo struct {
	mock.Mock
}

func (m *MockApplicationRepo) Insert(app *models.LoanApplication) (string, error) {
	args := m.Called(app)
	return args.String(0), args.Error(1)
}

func (m *MockApplicationRepo) GetOne(id string) (*models.LoanApplication, bool, error) {
	args := m.Called(id)
	app, _ := args.Get(0).(*models.LoanApplication)
	return app, args.Bool(1), args.Error(2)
}

func (m *MockApplicationRepo) GetAll() ([]models.LoanApplication, error) {
	args := m.Called()
	apps, _ := args.Get(0).([]models.LoanApplication)
	return apps, args.Error(1)
}

func (m *MockApplicationRepo) GetAllByUser(userID string) ([]models.LoanApplication, error) {
	args := m.Called(userID)
	apps, _ := args.Get(0).([]models.LoanApplication)
	return apps, args.Error(1)
}

func (m *MockApplicationRepo) GetAllByAssignedRM(rmID string) ([]models.LoanApplication, error) {
	args := m.Called(rmID)
	apps, _ := args.Get(0).([]models.LoanApplication)
	return apps, args.Error(1)
}

func (m *MockApplicationRepo) UpdateFields(app *models.LoanApplication) error {
	args := m.Called(app)
	return args.Error(0)
}

func (m *MockApplicationRepo) AssignRM(id string, rmID string) error {
	args := m.Called(id, rmID)
	return args.Error(0)
}

func (m *MockApplicationRepo) UpdateRMStatus(id string, status, notes string) error {
	args := m.Called(id, status, notes)
	return args.Error(0)
}

func (m *MockApplicationRepo) Unlock(id string) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockApplicationRepo) Count() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

func (m *MockApplicationRepo) GetRecent(limit int) ([]models.LoanApplication, error) {
	args := m.Called(limit)
	apps, _ := args.Get(0).([]models.LoanApplication)
	return apps, args.Error(1)
}

type MockOfferRepo struct {
	mock.Mock
}

func (m *MockOfferRepo) Insert(offer *models.LoanOffer) (string, error) {
	args := m.Called(offer)
	return args.String(0), args.Error(1)
}

func (m *MockOfferRepo) GetAllByApplication(applicationID string) ([]models.LoanOffer, error) {
	args := m.Called(applicationID)
	offers, _ := args.Get(0).([]models.LoanOffer)
	return offers, args.Error(1)
}

func (m *MockOfferRepo) ExistsForBank(applicationID, bankID string) (bool, error) {
	args := m.Called(applicationID, bankID)
	return args.Bool(0), args.Error(1)
}

type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) Insert(transaction *models.Transaction) (string, error) {
	args := m.Called(transaction)
	return args.String(0), args.Error(1)
}

func (m *MockTransactionRepo) GetAll() ([]models.Transaction, error) {
	args := m.Called()
	transactions, _ := args.Get(0).([]models.Transaction)
	return transactions, args.Error(1)
}

func (m *MockTransactionRepo) SumAmounts() (float64, error) {
	args := m.Called()
	return args.Get(0).(float64), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(recipient string, data any, patterns ...string) error {
	args := m.Called(recipient, data, patterns)
	return args.Error(0)
}

// newTestErrHandler builds a real error handler whose output goes nowhere, so
// tests exercise the same status codes and envelopes production does.
func newTestErrHandler() *errHandler.ErrorRepository {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	baseURL := "http://localhost"
	var wg sync.WaitGroup
	help := helper.New(&baseURL, &wg, logger)

	return errHandler.New("", nil, logger, help)
}

func newTestHelper() *helper.HelperRepository {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	baseURL := "http://localhost"
	var wg sync.WaitGroup

	return helper.New(&baseURL, &wg, logger)
}
