package service_test

import (
	"testing"

	"github.com/lankaline/freight-api/internal/domain"
	"github.com/lankaline/freight-api/internal/notify"
	"github.com/lankaline/freight-api/internal/repository"
	"github.com/lankaline/freight-api/internal/service"
	"github.com/lankaline/freight-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type customerFixture struct {
	db     *gorm.DB
	svc    *service.CustomerService
	events *notify.Collector
	sales  *domain.User
	mgmt   *domain.User
}

func newCustomerFixture(t *testing.T) *customerFixture {
	db := testutil.SetupTestDB(t)
	events := notify.NewCollector()
	return &customerFixture{
		db:     db,
		svc:    service.NewCustomerService(repository.NewCustomerRepository(db), events, zap.NewNop()),
		events: events,
		sales:  testutil.CreateTestUser(t, db, domain.RoleSales),
		mgmt:   testutil.CreateTestUser(t, db, domain.RoleMgmt),
	}
}

func (f *customerFixture) pendingCustomer(t *testing.T) *domain.CustomerDTO {
	t.Helper()
	dto, err := f.svc.Create(userContext(f.sales), &domain.CreateCustomerInput{
		Name:         "Ceylon Tea Exports",
		ContactEmail: "ops@ceylontea.example",
	})
	require.NoError(t, err)
	return dto
}

func TestCustomerService_Onboarding(t *testing.T) {
	f := newCustomerFixture(t)

	t.Run("new customers enter pending", func(t *testing.T) {
		dto := f.pendingCustomer(t)
		assert.Equal(t, domain.CustomerPending, dto.ApprovalStatus)
		assert.Equal(t, f.sales.ID, dto.CreatedByID)
	})

	t.Run("management approves", func(t *testing.T) {
		dto := f.pendingCustomer(t)
		approved, err := f.svc.Approve(userContext(f.mgmt), dto.ID, &domain.CustomerDecisionInput{})
		require.NoError(t, err)
		assert.Equal(t, domain.CustomerApproved, approved.ApprovalStatus)
		require.NotNil(t, approved.DecidedByID)
		assert.Equal(t, f.mgmt.ID, *approved.DecidedByID)
	})

	t.Run("sales may not decide", func(t *testing.T) {
		dto := f.pendingCustomer(t)
		_, err := f.svc.Approve(userContext(f.sales), dto.ID, &domain.CustomerDecisionInput{})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("an admin may decide", func(t *testing.T) {
		admin := testutil.CreateTestUser(t, f.db, domain.RoleAdmin)
		dto := f.pendingCustomer(t)
		_, err := f.svc.Approve(userContext(admin), dto.ID, &domain.CustomerDecisionInput{})
		assert.NoError(t, err)
	})

	t.Run("rejection requires a meaningful note", func(t *testing.T) {
		dto := f.pendingCustomer(t)
		_, err := f.svc.Reject(userContext(f.mgmt), dto.ID, &domain.CustomerDecisionInput{Note: "bad"})
		assert.ErrorIs(t, err, service.ErrValidation)

		rejected, err := f.svc.Reject(userContext(f.mgmt), dto.ID, &domain.CustomerDecisionInput{
			Note: "missing registration documents",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.CustomerRejected, rejected.ApprovalStatus)
		assert.Equal(t, "missing registration documents", rejected.ApprovalNote)
	})

	t.Run("decided customers stay decided", func(t *testing.T) {
		dto := f.pendingCustomer(t)
		_, err := f.svc.Approve(userContext(f.mgmt), dto.ID, &domain.CustomerDecisionInput{})
		require.NoError(t, err)

		_, err = f.svc.Approve(userContext(f.mgmt), dto.ID, &domain.CustomerDecisionInput{})
		assert.ErrorIs(t, err, service.ErrCustomerDecided)
		_, err = f.svc.Reject(userContext(f.mgmt), dto.ID, &domain.CustomerDecisionInput{
			Note: "changed our mind after approval",
		})
		assert.ErrorIs(t, err, service.ErrCustomerDecided)
	})

	t.Run("the creator hears about the decision", func(t *testing.T) {
		f.events.Reset()
		dto := f.pendingCustomer(t)
		_, err := f.svc.Approve(userContext(f.mgmt), dto.ID, &domain.CustomerDecisionInput{})
		require.NoError(t, err)

		intents := f.events.ByType(string(domain.NotificationTypeCustomerDecided))
		require.Len(t, intents, 1)
		assert.Equal(t, f.sales.ID, intents[0].UserID)
	})
}
