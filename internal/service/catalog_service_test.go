package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/activation_api/internal/models"
	"github.com/GTDGit/activation_api/internal/repository"
	"github.com/GTDGit/activation_api/internal/utils"
)

type mockContactCodes struct{ mock.Mock }

func (m *mockContactCodes) GetByCode(ctx context.Context, code string) (*models.ContactCode, error) {
	args := m.Called(ctx, code)
	cc, _ := args.Get(0).(*models.ContactCode)
	return cc, args.Error(1)
}

func (m *mockContactCodes) GetActiveByCode(ctx context.Context, code string) (*models.ContactCode, error) {
	args := m.Called(ctx, code)
	cc, _ := args.Get(0).(*models.ContactCode)
	return cc, args.Error(1)
}

func (m *mockContactCodes) ListCodesByManager(ctx context.Context, managerID int) ([]string, error) {
	args := m.Called(ctx, managerID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockContactCodes) List(ctx context.Context, filter repository.ContactCodeFilter) ([]models.ContactCode, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.ContactCode), args.Error(1)
}

func (m *mockContactCodes) Create(ctx context.Context, cc *models.ContactCode) error {
	return m.Called(ctx, cc).Error(0)
}

func (m *mockContactCodes) Update(ctx context.Context, cc *models.ContactCode) error {
	return m.Called(ctx, cc).Error(0)
}

func (m *mockContactCodes) Deactivate(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

func TestContactCodeService_Resolve(t *testing.T) {
	codes := &mockContactCodes{}
	managerID := 5
	codes.On("GetActiveByCode", mock.Anything, "MCC001").
		Return(&models.ContactCode{Code: "MCC001", DealerName: "Acme Store", Carrier: "KT", ManagerID: &managerID, IsActive: true}, nil)
	codes.On("GetActiveByCode", mock.Anything, "OLD001").Return(nil, sql.ErrNoRows)
	svc := NewContactCodeService(codes, &mockManagerStore{})
	ctx := context.Background()

	res, ok, err := svc.Resolve(ctx, "MCC001")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Acme Store", res.DealerDisplayName)
	assert.Equal(t, 5, *res.OwningManagerID)

	_, ok, err = svc.Resolve(ctx, "OLD001")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = svc.Resolve(ctx, "  ")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestContactCodeService_CreateDenormalizesManager(t *testing.T) {
	codes := &mockContactCodes{}
	managers := &mockManagerStore{}
	managers.On("GetByID", mock.Anything, 5).Return(&models.SalesManager{ID: 5, ManagerName: "Park"}, nil)
	managers.On("GetByID", mock.Anything, 6).Return(nil, sql.ErrNoRows)
	codes.On("Create", mock.Anything, mock.MatchedBy(func(cc *models.ContactCode) bool { return cc.Code == "MCC001" })).Return(nil).Once()
	codes.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicate)
	svc := NewContactCodeService(codes, managers)
	ctx := context.Background()

	cc, err := svc.Create(ctx, testAdmin, ContactCodeInput{Code: " mcc001 ", DealerName: "Acme Store", Carrier: "KT", ManagerID: intPtr(5)})
	require.NoError(t, err)
	assert.Equal(t, "MCC001", cc.Code)
	assert.Equal(t, "Park", *cc.ManagerName)
	assert.True(t, cc.IsActive)

	_, err = svc.Create(ctx, testAdmin, ContactCodeInput{Code: "MCC001", DealerName: "Acme Store", Carrier: "KT"})
	assert.ErrorIs(t, err, utils.ErrConflict)

	_, err = svc.Create(ctx, testAdmin, ContactCodeInput{Code: "MCC009", DealerName: "Acme Store", Carrier: "KT", ManagerID: intPtr(6)})
	assert.ErrorIs(t, err, utils.ErrNotFound)

	_, err = svc.Create(ctx, testManager, ContactCodeInput{Code: "MCC010", DealerName: "x", Carrier: "KT"})
	assert.ErrorIs(t, err, utils.ErrForbidden)
}

func TestContactCodeService_Deactivate(t *testing.T) {
	codes := &mockContactCodes{}
	codes.On("Deactivate", mock.Anything, "MCC001").Return(nil)
	codes.On("Deactivate", mock.Anything, "NOPE").Return(sql.ErrNoRows)
	svc := NewContactCodeService(codes, &mockManagerStore{})

	require.NoError(t, svc.Deactivate(context.Background(), testAdmin, "MCC001"))
	assert.ErrorIs(t, svc.Deactivate(context.Background(), testAdmin, "NOPE"), utils.ErrNotFound)
}

type mockPlanStore struct{ mock.Mock }

func (m *mockPlanStore) GetByID(ctx context.Context, id int) (*models.ServicePlan, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.ServicePlan)
	return p, args.Error(1)
}

func (m *mockPlanStore) List(ctx context.Context, carrier *string, activeOnly bool) ([]models.ServicePlan, error) {
	args := m.Called(ctx, carrier, activeOnly)
	return args.Get(0).([]models.ServicePlan), args.Error(1)
}

func (m *mockPlanStore) Create(ctx context.Context, p *models.ServicePlan) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPlanStore) Update(ctx context.Context, p *models.ServicePlan) error {
	return m.Called(ctx, p).Error(0)
}

func TestServicePlanService_ListHidesInactiveFromNonAdmins(t *testing.T) {
	plans := &mockPlanStore{}
	plans.On("List", mock.Anything, (*string)(nil), true).Return([]models.ServicePlan{{ID: 7}}, nil).Once()
	plans.On("List", mock.Anything, (*string)(nil), false).Return([]models.ServicePlan{{ID: 7}, {ID: 9}}, nil).Once()
	svc := NewServicePlanService(plans)
	ctx := context.Background()

	got, err := svc.List(ctx, testWorker, nil, true)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.List(ctx, testAdmin, nil, true)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	plans.AssertExpectations(t)
}

func TestServicePlanService_CreateAndDeactivate(t *testing.T) {
	plans := &mockPlanStore{}
	plans.On("Create", mock.Anything, mock.Anything).Return(nil)
	plans.On("GetByID", mock.Anything, 7).Return(&models.ServicePlan{ID: 7, Carrier: "KT", PlanName: "5G", IsActive: true}, nil)
	plans.On("GetByID", mock.Anything, 8).Return(nil, sql.ErrNoRows)
	plans.On("Update", mock.Anything, mock.MatchedBy(func(p *models.ServicePlan) bool { return !p.IsActive })).Return(nil)
	svc := NewServicePlanService(plans)
	ctx := context.Background()

	_, err := svc.Create(ctx, testAdmin, ServicePlanInput{Carrier: "KT", PlanName: "5G", MonthlyFee: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, utils.ErrValidationFailed)

	p, err := svc.Create(ctx, testAdmin, ServicePlanInput{Carrier: "KT", PlanName: "5G", MonthlyFee: decimal.NewFromInt(69000)})
	require.NoError(t, err)
	assert.True(t, p.IsActive)

	require.NoError(t, svc.Deactivate(ctx, testAdmin, 7))
	assert.ErrorIs(t, svc.Deactivate(ctx, testAdmin, 8), utils.ErrNotFound)
	assert.ErrorIs(t, svc.Deactivate(ctx, testWorker, 7), utils.ErrForbidden)
}
