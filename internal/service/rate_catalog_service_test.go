package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
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

type rateCatalogFixture struct {
	db      *gorm.DB
	svc     *service.RateCatalogService
	events  *notify.Collector
	pricing *domain.User
	lane    *domain.TradeLane
}

func newRateCatalogFixture(t *testing.T) *rateCatalogFixture {
	db := testutil.SetupTestDB(t)
	events := notify.NewCollector()

	origin := testutil.CreateTestPort(t, db, domain.HomePortUnlocode)
	destination := testutil.CreateTestPort(t, db, "INNSA")

	return &rateCatalogFixture{
		db: db,
		svc: service.NewRateCatalogService(
			repository.NewPredefinedRateRepository(db),
			repository.NewMasterDataRepository(db),
			repository.NewUserRepository(db),
			events,
			zap.NewNop(),
		),
		events:  events,
		pricing: testutil.CreateTestUser(t, db, domain.RolePricing),
		lane:    testutil.CreateTestTradeLane(t, db, origin, destination),
	}
}

func (f *rateCatalogFixture) rateInput(validTo time.Time) *domain.CreatePredefinedRateInput {
	return &domain.CreatePredefinedRateInput{
		TradeLaneID: f.lane.ID,
		PolID:       f.lane.OriginPortID,
		PodID:       f.lane.DestinationPortID,
		Service:     "Weekly direct service",
		ValidFrom:   validTo.AddDate(0, -3, 0),
		ValidTo:     validTo,
	}
}

func TestRateCatalogService_Create(t *testing.T) {
	f := newRateCatalogFixture(t)
	ctx := context.Background()

	t.Run("new rate classifies as active", func(t *testing.T) {
		dto, err := f.svc.Create(ctx, f.rateInput(time.Now().AddDate(0, 2, 0)))
		require.NoError(t, err)
		assert.Equal(t, domain.PredefinedRateActive, dto.Status)
		assert.Equal(t, domain.RateValidityActive, dto.Validity)
	})

	t.Run("validity window must be ordered", func(t *testing.T) {
		input := f.rateInput(time.Now())
		input.ValidFrom = input.ValidTo.AddDate(0, 0, 1)
		_, err := f.svc.Create(ctx, input)
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("unknown trade lane is rejected", func(t *testing.T) {
		input := f.rateInput(time.Now().AddDate(0, 1, 0))
		input.TradeLaneID = uuid.New()
		_, err := f.svc.Create(ctx, input)
		assert.ErrorIs(t, err, service.ErrTradeLaneNotFound)
	})
}

func TestRateCatalogService_Validity(t *testing.T) {
	f := newRateCatalogFixture(t)
	ctx := context.Background()

	active, err := f.svc.Create(ctx, f.rateInput(time.Now().AddDate(0, 2, 0)))
	require.NoError(t, err)
	expiring, err := f.svc.Create(ctx, f.rateInput(time.Now().Add(72*time.Hour)))
	require.NoError(t, err)
	expired, err := f.svc.Create(ctx, f.rateInput(time.Now().AddDate(0, 0, -2)))
	require.NoError(t, err)

	t.Run("classification follows the validity window", func(t *testing.T) {
		got, err := f.svc.GetByID(ctx, active.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RateValidityActive, got.Validity)

		got, err = f.svc.GetByID(ctx, expiring.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RateValidityExpiring, got.Validity)

		got, err = f.svc.GetByID(ctx, expired.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RateValidityExpired, got.Validity)
	})

	t.Run("validity filter narrows the list", func(t *testing.T) {
		validity := domain.RateValidityExpired
		result, err := f.svc.List(ctx, 1, 50, nil, &validity)
		require.NoError(t, err)

		dtos, ok := result.Data.([]domain.PredefinedRateDTO)
		require.True(t, ok)
		require.Len(t, dtos, 1)
		assert.Equal(t, expired.ID, dtos[0].ID)
	})

	t.Run("no filter returns everything", func(t *testing.T) {
		result, err := f.svc.List(ctx, 1, 50, nil, nil)
		require.NoError(t, err)
		assert.EqualValues(t, 3, result.Total)
	})
}

func TestRateCatalogService_RequestUpdate(t *testing.T) {
	f := newRateCatalogFixture(t)
	requester := testutil.CreateTestUser(t, f.db, domain.RoleSales)
	ctx := userContext(requester)

	rate, err := f.svc.Create(context.Background(), f.rateInput(time.Now().AddDate(0, 0, -1)))
	require.NoError(t, err)

	t.Run("advisory request fans out to pricing", func(t *testing.T) {
		f.events.Reset()
		err := f.svc.RequestUpdate(ctx, rate.ID, &domain.RequestRateUpdateInput{
			Reason: "rate lapsed, customer asking for refresh",
		})
		require.NoError(t, err)

		intents := f.events.ByType(string(domain.NotificationTypeRateUpdateRequested))
		require.Len(t, intents, 1)
		assert.Equal(t, f.pricing.ID, intents[0].UserID)

		var count int64
		require.NoError(t, f.db.Model(&domain.RateUpdateRequest{}).Where("predefined_rate_id = ?", rate.ID).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("lane assignees take precedence over the pricing pool", func(t *testing.T) {
		assignee := testutil.CreateTestUser(t, f.db, domain.RolePricing)
		require.NoError(t, f.db.Create(&domain.PricingTeamAssignment{
			TradeLaneID: f.lane.ID,
			UserID:      assignee.ID,
		}).Error)

		f.events.Reset()
		err := f.svc.RequestUpdate(ctx, rate.ID, &domain.RequestRateUpdateInput{
			Reason: "second refresh request for the lane",
		})
		require.NoError(t, err)

		intents := f.events.ByType(string(domain.NotificationTypeRateUpdateRequested))
		require.Len(t, intents, 1)
		assert.Equal(t, assignee.ID, intents[0].UserID)
	})

	t.Run("the rate itself is never mutated", func(t *testing.T) {
		got, err := f.svc.GetByID(ctx, rate.ID)
		require.NoError(t, err)
		assert.Equal(t, rate.ValidTo.Unix(), got.ValidTo.Unix())
		assert.Equal(t, domain.RateValidityExpired, got.Validity)
	})

	t.Run("unknown rate is rejected", func(t *testing.T) {
		err := f.svc.RequestUpdate(ctx, uuid.New(), &domain.RequestRateUpdateInput{
			Reason: "refresh a rate that does not exist",
		})
		assert.ErrorIs(t, err, service.ErrPredefinedRateNotFound)
	})
}

func TestRateCatalogService_SweepExpiring(t *testing.T) {
	f := newRateCatalogFixture(t)
	ctx := context.Background()

	expiring, err := f.svc.Create(ctx, f.rateInput(time.Now().Add(48*time.Hour)))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.rateInput(time.Now().AddDate(0, 2, 0)))
	require.NoError(t, err)

	t.Run("expiring rates are notified exactly once", func(t *testing.T) {
		f.events.Reset()
		notified, err := f.svc.SweepExpiring(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, notified)

		intents := f.events.ByType(string(domain.NotificationTypeRateExpiring))
		require.Len(t, intents, 1)
		assert.Equal(t, f.pricing.ID, intents[0].UserID)

		f.events.Reset()
		notified, err = f.svc.SweepExpiring(ctx)
		require.NoError(t, err)
		assert.Zero(t, notified)
		assert.Empty(t, f.events.Intents())
	})

	t.Run("a refreshed validity window re-arms the sweep", func(t *testing.T) {
		newValidTo := time.Now().Add(24 * time.Hour)
		_, err := f.svc.Update(ctx, expiring.ID, &domain.UpdatePredefinedRateInput{ValidTo: &newValidTo})
		require.NoError(t, err)

		f.events.Reset()
		notified, err := f.svc.SweepExpiring(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, notified)
	})
}
