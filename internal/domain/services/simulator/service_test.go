package simulator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vantage-service/vantage_service/internal/domain/entities"
	"github.com/vantage-service/vantage_service/internal/domain/repositories"
	"github.com/vantage-service/vantage_service/internal/domain/services/admingate"
	"github.com/vantage-service/vantage_service/internal/domain/services/audit"
	apperrors "github.com/vantage-service/vantage_service/pkg/errors"
)

type fakeUserRepo struct {
	profiles  map[uuid.UUID]*entities.Profile
	adjustErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{profiles: make(map[uuid.UUID]*entities.Profile)}
}

func (f *fakeUserRepo) addProfile(isAdmin bool) *entities.Profile {
	p := &entities.Profile{
		UserID:  uuid.New(),
		Email:   uuid.NewString() + "@example.com",
		IsAdmin: isAdmin,
		Balance: decimal.Zero,
	}
	f.profiles[p.UserID] = p
	return p
}

func (f *fakeUserRepo) GetProfile(_ context.Context, userID uuid.UUID) (*entities.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "user not found")
	}
	return p, nil
}

func (f *fakeUserRepo) SetKYCStatus(_ context.Context, _ uuid.UUID, _ repositories.ProfileKYCUpdate) error {
	return nil
}

func (f *fakeUserRepo) AdjustBalance(_ context.Context, userID uuid.UUID, delta decimal.Decimal, _ string) (decimal.Decimal, error) {
	if f.adjustErr != nil {
		return decimal.Zero, f.adjustErr
	}
	p, ok := f.profiles[userID]
	if !ok {
		return decimal.Zero, apperrors.New(apperrors.KindNotFound, "user not found")
	}
	p.Balance = p.Balance.Add(delta)
	return p.Balance, nil
}

type fakeAuditRepo struct {
	actions []*entities.AdminAction
}

func (f *fakeAuditRepo) Create(_ context.Context, action *entities.AdminAction) error {
	f.actions = append(f.actions, action)
	return nil
}

func (f *fakeAuditRepo) List(_ context.Context, _ repositories.AuditLogFilter) ([]*entities.AdminAction, error) {
	return f.actions, nil
}

func (f *fakeAuditRepo) Count(_ context.Context, _ repositories.AuditLogFilter) (int64, error) {
	return int64(len(f.actions)), nil
}

type fakeTxRepo struct {
	txs       []*entities.Transaction
	createErr error
}

func (f *fakeTxRepo) Create(_ context.Context, tx *entities.Transaction) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.txs = append(f.txs, tx)
	return nil
}

type fakeNotifRepo struct {
	notifications []*entities.Notification
}

func (f *fakeNotifRepo) Create(_ context.Context, n *entities.Notification) error {
	f.notifications = append(f.notifications, n)
	return nil
}

type fakeNotifier struct {
	sent    []string
	sendErr error
}

func (f *fakeNotifier) Send(_ context.Context, toEmail, _, _ string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, toEmail)
	return nil
}

type fixture struct {
	svc       *Service
	userRepo  *fakeUserRepo
	txRepo    *fakeTxRepo
	notifRepo *fakeNotifRepo
	notifier  *fakeNotifier
	auditRepo *fakeAuditRepo
	admin     *entities.Profile
	target    *entities.Profile
}

func newFixture() *fixture {
	userRepo := newFakeUserRepo()
	txRepo := &fakeTxRepo{}
	notifRepo := &fakeNotifRepo{}
	notifier := &fakeNotifier{}
	auditRepo := &fakeAuditRepo{}
	auditor := audit.NewService(auditRepo, zap.NewNop())
	gate := admingate.NewService(userRepo, auditor, "test-secret", "vantage", 5*time.Minute, zap.NewNop())
	return &fixture{
		svc:       NewService(userRepo, txRepo, notifRepo, notifier, gate, auditor, zap.NewNop()),
		userRepo:  userRepo,
		txRepo:    txRepo,
		notifRepo: notifRepo,
		notifier:  notifier,
		auditRepo: auditRepo,
		admin:     userRepo.addProfile(true),
		target:    userRepo.addProfile(false),
	}
}

func (f *fixture) simulate(t *testing.T, ops ...entities.SimulationOperation) []entities.SimulationResult {
	t.Helper()
	results, err := f.svc.Simulate(context.Background(), f.admin.UserID, &entities.SimulationRequest{
		TargetUserID: f.target.UserID,
		Operations:   ops,
	})
	require.NoError(t, err)
	return results
}

func TestSimulateDepositCreditsBalance(t *testing.T) {
	f := newFixture()

	results := f.simulate(t, entities.SimulationOperation{
		Type:   entities.SimOpDeposit,
		Amount: decimal.NewFromInt(100),
	})

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.True(t, f.target.Balance.Equal(decimal.NewFromInt(100)))

	require.Len(t, f.auditRepo.actions, 1)
	assert.Equal(t, entities.AdminActionSimulateDeposit, f.auditRepo.actions[0].ActionType)
	assert.Equal(t, "profiles", f.auditRepo.actions[0].TargetTable)
}

func TestSimulateWithdrawDebitsBalance(t *testing.T) {
	f := newFixture()
	f.target.Balance = decimal.NewFromInt(50)

	results := f.simulate(t, entities.SimulationOperation{
		Type:   entities.SimOpWithdraw,
		Amount: decimal.NewFromInt(30),
	})

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.True(t, f.target.Balance.Equal(decimal.NewFromInt(20)))
	require.Len(t, f.auditRepo.actions, 1)
	assert.Equal(t, entities.AdminActionSimulateWithdraw, f.auditRepo.actions[0].ActionType)
}

func TestSimulateUnknownOpIsPerItemFailure(t *testing.T) {
	f := newFixture()

	results := f.simulate(t,
		entities.SimulationOperation{Type: entities.SimOpDeposit, Amount: decimal.NewFromInt(100)},
		entities.SimulationOperation{Type: "bogus"},
	)

	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Equal(t, "UNKNOWN_OPERATION", results[1].Error)

	// Nothing was attempted for the unknown op, so only the deposit is audited.
	assert.Len(t, f.auditRepo.actions, 1)
}

func TestSimulateNonPositiveAmountFailsButIsAudited(t *testing.T) {
	f := newFixture()

	results := f.simulate(t, entities.SimulationOperation{
		Type:   entities.SimOpDeposit,
		Amount: decimal.NewFromInt(-5),
	})

	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.True(t, f.target.Balance.IsZero())

	require.Len(t, f.auditRepo.actions, 1, "attempted operations are audited even on failure")
	newValue := f.auditRepo.actions[0].NewValue
	assert.Equal(t, false, newValue["success"])
}

func TestSimulateFailureDoesNotAbortBatch(t *testing.T) {
	f := newFixture()
	f.userRepo.adjustErr = apperrors.New(apperrors.KindUpstreamFailure, "balance store down")

	results := f.simulate(t,
		entities.SimulationOperation{Type: entities.SimOpDeposit, Amount: decimal.NewFromInt(10)},
		entities.SimulationOperation{Type: entities.SimOpTransaction, Amount: decimal.NewFromInt(10)},
	)

	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.True(t, results[1].Success, "one failure never aborts the rest")
	assert.Len(t, f.auditRepo.actions, 2)
}

func TestSimulateTransactionDefaults(t *testing.T) {
	f := newFixture()

	results := f.simulate(t, entities.SimulationOperation{
		Type:   entities.SimOpTransaction,
		Amount: decimal.NewFromInt(25),
	})

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)

	require.Len(t, f.txRepo.txs, 1)
	tx := f.txRepo.txs[0]
	assert.Equal(t, "adjustment", tx.Type)
	assert.Equal(t, "USD", tx.Currency)
	assert.Equal(t, "completed", tx.Status)
	require.NotNil(t, tx.CreatedBy)
	assert.Equal(t, f.admin.UserID, *tx.CreatedBy)
}

func TestSimulateNotifyWritesRowAndSendsEmail(t *testing.T) {
	f := newFixture()

	results := f.simulate(t, entities.SimulationOperation{
		Type:    entities.SimOpNotify,
		Title:   "Test",
		Message: "hello",
	})

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	require.Len(t, f.notifRepo.notifications, 1)
	assert.Equal(t, "system", f.notifRepo.notifications[0].Kind)
	assert.Equal(t, []string{f.target.Email}, f.notifier.sent)
}

func TestSimulateNotifyEmailFailureIsBestEffort(t *testing.T) {
	f := newFixture()
	f.notifier.sendErr = errors.New("smtp down")

	results := f.simulate(t, entities.SimulationOperation{
		Type:    entities.SimOpNotify,
		Title:   "Test",
		Message: "hello",
	})

	require.Len(t, results, 1)
	assert.True(t, results[0].Success, "email delivery is best-effort")
	assert.Len(t, f.notifRepo.notifications, 1)
}

func TestSimulateNotifyWithoutRepoIsSoftFailure(t *testing.T) {
	f := newFixture()
	auditor := audit.NewService(f.auditRepo, zap.NewNop())
	gate := admingate.NewService(f.userRepo, auditor, "test-secret", "vantage", 5*time.Minute, zap.NewNop())
	svc := NewService(f.userRepo, f.txRepo, nil, nil, gate, auditor, zap.NewNop())

	results, err := svc.Simulate(context.Background(), f.admin.UserID, &entities.SimulationRequest{
		TargetUserID: f.target.UserID,
		Operations: []entities.SimulationOperation{
			{Type: entities.SimOpNotify, Title: "Test", Message: "hello"},
			{Type: entities.SimOpDeposit, Amount: decimal.NewFromInt(10)},
		},
	})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.Equal(t, "notifications unavailable", results[0].Error)
	assert.True(t, results[1].Success, "batch continues past the soft failure")
	assert.Len(t, f.auditRepo.actions, 2, "the soft failure is still an attempted, audited operation")
}

func TestSimulateByNonAdminIsForbidden(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Simulate(context.Background(), f.target.UserID, &entities.SimulationRequest{
		TargetUserID: f.target.UserID,
		Operations:   []entities.SimulationOperation{{Type: entities.SimOpDeposit, Amount: decimal.NewFromInt(1)}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
	assert.Empty(t, f.auditRepo.actions)
}

func TestSimulateMissingTargetIsNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Simulate(context.Background(), f.admin.UserID, &entities.SimulationRequest{
		TargetUserID: uuid.New(),
		Operations:   []entities.SimulationOperation{{Type: entities.SimOpDeposit, Amount: decimal.NewFromInt(1)}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
