package service_test

import (
	"testing"
	"time"

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

type itineraryFixture struct {
	db     *gorm.DB
	svc    *service.ItineraryService
	events *notify.Collector
	owner  *domain.User
	head   *domain.User
	admin  *domain.User
}

func newItineraryFixture(t *testing.T) *itineraryFixture {
	db := testutil.SetupTestDB(t)
	events := notify.NewCollector()

	owner := testutil.CreateTestUser(t, db, domain.RoleSales)
	head := testutil.CreateTestUser(t, db, domain.RoleSBUHead)
	testutil.CreateTestSBU(t, db, head, owner)

	return &itineraryFixture{
		db:     db,
		svc:    service.NewItineraryService(repository.NewItineraryRepository(db), repository.NewUserRepository(db), events, zap.NewNop()),
		events: events,
		owner:  owner,
		head:   head,
		admin:  testutil.CreateTestUser(t, db, domain.RoleAdmin),
	}
}

func weekPlanInput() *domain.CreateItineraryInput {
	return &domain.CreateItineraryInput{
		Type:      "SP",
		WeekStart: time.Now().AddDate(0, 0, 7),
		Items: []domain.ItineraryItemInput{
			{Date: time.Now().AddDate(0, 0, 8), Purpose: "Quarterly review with key account"},
		},
	}
}

func TestItineraryService_SubmitFlow(t *testing.T) {
	f := newItineraryFixture(t)
	ownerCtx := userContext(f.owner)
	headCtx := userContext(f.head)

	t.Run("draft starts with its items", func(t *testing.T) {
		dto, err := f.svc.Create(ownerCtx, weekPlanInput())
		require.NoError(t, err)
		assert.Equal(t, domain.ItineraryDraft, dto.Status)
		assert.Len(t, dto.Items, 1)
	})

	t.Run("only the owner may submit", func(t *testing.T) {
		dto, err := f.svc.Create(ownerCtx, weekPlanInput())
		require.NoError(t, err)

		_, err = f.svc.Submit(headCtx, dto.ID)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)

		submitted, err := f.svc.Submit(ownerCtx, dto.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ItinerarySubmitted, submitted.Status)
	})

	t.Run("submit requires a draft", func(t *testing.T) {
		dto, err := f.svc.Create(ownerCtx, weekPlanInput())
		require.NoError(t, err)
		_, err = f.svc.Submit(ownerCtx, dto.ID)
		require.NoError(t, err)

		_, err = f.svc.Submit(ownerCtx, dto.ID)
		assert.ErrorIs(t, err, service.ErrItineraryNotDraft)
	})

	t.Run("submission notifies the SBU head", func(t *testing.T) {
		f.events.Reset()
		dto, err := f.svc.Create(ownerCtx, weekPlanInput())
		require.NoError(t, err)
		_, err = f.svc.Submit(ownerCtx, dto.ID)
		require.NoError(t, err)

		intents := f.events.ByType(string(domain.NotificationTypeItinerarySubmitted))
		require.Len(t, intents, 1)
		assert.Equal(t, f.head.ID, intents[0].UserID)
	})
}

func TestItineraryService_Decisions(t *testing.T) {
	f := newItineraryFixture(t)
	ownerCtx := userContext(f.owner)
	headCtx := userContext(f.head)

	submitted := func(t *testing.T) *domain.ItineraryDTO {
		dto, err := f.svc.Create(ownerCtx, weekPlanInput())
		require.NoError(t, err)
		dto, err = f.svc.Submit(ownerCtx, dto.ID)
		require.NoError(t, err)
		return dto
	}

	t.Run("the SBU head approves", func(t *testing.T) {
		dto := submitted(t)
		approved, err := f.svc.Approve(headCtx, dto.ID, &domain.ItineraryDecisionInput{Note: "looks solid"})
		require.NoError(t, err)
		assert.Equal(t, domain.ItineraryApproved, approved.Status)
		require.NotNil(t, approved.DecidedByID)
		assert.Equal(t, f.head.ID, *approved.DecidedByID)
		assert.NotNil(t, approved.DecidedAt)
	})

	t.Run("an admin may decide any itinerary", func(t *testing.T) {
		dto := submitted(t)
		_, err := f.svc.Approve(userContext(f.admin), dto.ID, &domain.ItineraryDecisionInput{})
		assert.NoError(t, err)
	})

	t.Run("rejection requires a note", func(t *testing.T) {
		dto := submitted(t)
		_, err := f.svc.Reject(headCtx, dto.ID, &domain.ItineraryDecisionInput{})
		assert.ErrorIs(t, err, service.ErrRejectNoteRequired)

		rejected, err := f.svc.Reject(headCtx, dto.ID, &domain.ItineraryDecisionInput{Note: "two visits clash on Tuesday"})
		require.NoError(t, err)
		assert.Equal(t, domain.ItineraryRejected, rejected.Status)
	})

	t.Run("a head of another SBU may not decide", func(t *testing.T) {
		otherHead := testutil.CreateTestUser(t, f.db, domain.RoleSBUHead)
		testutil.CreateTestSBU(t, f.db, otherHead)

		dto := submitted(t)
		_, err := f.svc.Approve(userContext(otherHead), dto.ID, &domain.ItineraryDecisionInput{})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("the owner may not decide their own plan", func(t *testing.T) {
		dto := submitted(t)
		_, err := f.svc.Approve(ownerCtx, dto.ID, &domain.ItineraryDecisionInput{})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("decisions require a submitted itinerary", func(t *testing.T) {
		dto, err := f.svc.Create(ownerCtx, weekPlanInput())
		require.NoError(t, err)

		_, err = f.svc.Approve(headCtx, dto.ID, &domain.ItineraryDecisionInput{})
		assert.ErrorIs(t, err, service.ErrItineraryNotSubmitted)
	})

	t.Run("the owner is notified of the outcome", func(t *testing.T) {
		f.events.Reset()
		dto := submitted(t)
		_, err := f.svc.Approve(headCtx, dto.ID, &domain.ItineraryDecisionInput{})
		require.NoError(t, err)

		intents := f.events.ByType(string(domain.NotificationTypeItineraryDecided))
		require.Len(t, intents, 1)
		assert.Equal(t, f.owner.ID, intents[0].UserID)
	})
}

func TestItineraryService_Items(t *testing.T) {
	f := newItineraryFixture(t)
	ownerCtx := userContext(f.owner)

	itemInput := func(purpose string) *domain.ItineraryItemInput {
		return &domain.ItineraryItemInput{
			Date:    time.Now().AddDate(0, 0, 9),
			Purpose: purpose,
		}
	}

	t.Run("items are mutable on a draft", func(t *testing.T) {
		dto, err := f.svc.Create(ownerCtx, weekPlanInput())
		require.NoError(t, err)

		item, err := f.svc.AddItem(ownerCtx, dto.ID, itemInput("Cold call at the port office"))
		require.NoError(t, err)

		updated, err := f.svc.UpdateItem(ownerCtx, dto.ID, item.ID, itemInput("Follow-up on open quotation"))
		require.NoError(t, err)
		assert.Equal(t, "Follow-up on open quotation", updated.Purpose)

		require.NoError(t, f.svc.RemoveItem(ownerCtx, dto.ID, item.ID))
	})

	t.Run("items freeze on submission", func(t *testing.T) {
		dto, err := f.svc.Create(ownerCtx, weekPlanInput())
		require.NoError(t, err)
		item, err := f.svc.AddItem(ownerCtx, dto.ID, itemInput("Site visit"))
		require.NoError(t, err)
		_, err = f.svc.Submit(ownerCtx, dto.ID)
		require.NoError(t, err)

		_, err = f.svc.AddItem(ownerCtx, dto.ID, itemInput("Another visit"))
		assert.ErrorIs(t, err, service.ErrItineraryNotDraft)
		_, err = f.svc.UpdateItem(ownerCtx, dto.ID, item.ID, itemInput("Changed"))
		assert.ErrorIs(t, err, service.ErrItineraryNotDraft)
		err = f.svc.RemoveItem(ownerCtx, dto.ID, item.ID)
		assert.ErrorIs(t, err, service.ErrItineraryNotDraft)
	})

	t.Run("items from another itinerary are invisible", func(t *testing.T) {
		first, err := f.svc.Create(ownerCtx, weekPlanInput())
		require.NoError(t, err)
		second, err := f.svc.Create(ownerCtx, weekPlanInput())
		require.NoError(t, err)
		item, err := f.svc.AddItem(ownerCtx, first.ID, itemInput("Belongs to the first plan"))
		require.NoError(t, err)

		_, err = f.svc.UpdateItem(ownerCtx, second.ID, item.ID, itemInput("Hijack"))
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}
