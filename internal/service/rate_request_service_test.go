package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lankaline/freight-api/internal/auth"
	"github.com/lankaline/freight-api/internal/domain"
	"github.com/lankaline/freight-api/internal/notify"
	"github.com/lankaline/freight-api/internal/repository"
	"github.com/lankaline/freight-api/internal/service"
	"github.com/lankaline/freight-api/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createRateRequestService(db *gorm.DB, collector *notify.Collector) *service.RateRequestService {
	logger := zap.NewNop()
	return service.NewRateRequestService(
		repository.NewRateRequestRepository(db),
		repository.NewMasterDataRepository(db),
		repository.NewCustomerRepository(db),
		repository.NewUserRepository(db),
		collector,
		logger,
	)
}

func userContext(user *domain.User) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Role:        user.Role,
		SbuID:       user.SbuID,
	})
}

type rateRequestFixture struct {
	db       *gorm.DB
	svc      *service.RateRequestService
	events   *notify.Collector
	sales    *domain.User
	pricing  *domain.User
	customer *domain.Customer
	homePort *domain.Port
	pod      *domain.Port
	equip    *domain.EquipmentType
}

func newRateRequestFixture(t *testing.T) *rateRequestFixture {
	db := testutil.SetupTestDB(t)
	events := notify.NewCollector()

	sales := testutil.CreateTestUser(t, db, domain.RoleSales)
	pricing := testutil.CreateTestUser(t, db, domain.RolePricing)

	return &rateRequestFixture{
		db:       db,
		svc:      createRateRequestService(db, events),
		events:   events,
		sales:    sales,
		pricing:  pricing,
		customer: testutil.CreateTestCustomer(t, db, domain.CustomerApproved, sales.ID),
		homePort: testutil.CreateTestPort(t, db, domain.HomePortUnlocode),
		pod:      testutil.CreateTestPort(t, db, "SGSIN"),
		equip:    testutil.CreateTestEquipmentType(t, db, false, false),
	}
}

func (f *rateRequestFixture) validInput() *domain.CreateRateRequestInput {
	return &domain.CreateRateRequestInput{
		Mode:              "SEA",
		CargoType:         "FCL",
		PodID:             f.pod.ID,
		DeliveryMode:      "CY",
		EquipTypeID:       f.equip.ID,
		WeightTons:        decimal.NewFromFloat(12.5),
		CargoReadyDate:    time.Now().AddDate(0, 0, 14),
		DetentionFreeTime: "14",
		CustomerID:        f.customer.ID,
	}
}

func TestRateRequestService_Create(t *testing.T) {
	f := newRateRequestFixture(t)
	ctx := userContext(f.sales)

	t.Run("sea request without origin port defaults to the home port", func(t *testing.T) {
		dto, err := f.svc.Create(ctx, f.validInput())
		require.NoError(t, err)
		assert.Equal(t, f.homePort.ID, dto.PolID)
		assert.Equal(t, domain.RateRequestPending, dto.Status)
		assert.NotEmpty(t, dto.RefNo)
		assert.Equal(t, f.sales.ID, dto.SalespersonID)
	})

	t.Run("air request without origin port is rejected", func(t *testing.T) {
		input := f.validInput()
		input.Mode = "AIR"
		_, err := f.svc.Create(ctx, input)
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("explicit origin port is kept", func(t *testing.T) {
		origin := testutil.CreateTestPort(t, f.db, "AEJEA")
		input := f.validInput()
		input.PolID = &origin.ID
		dto, err := f.svc.Create(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, origin.ID, dto.PolID)
	})

	t.Run("weight below one kilogram is rejected", func(t *testing.T) {
		input := f.validInput()
		input.WeightTons = decimal.NewFromFloat(0.0005)
		_, err := f.svc.Create(ctx, input)
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("reefer equipment requires a temperature", func(t *testing.T) {
		reefer := testutil.CreateTestEquipmentType(t, f.db, true, false)
		input := f.validInput()
		input.EquipTypeID = reefer.ID
		_, err := f.svc.Create(ctx, input)
		assert.ErrorIs(t, err, service.ErrReeferTempRequired)

		temp := "-18C"
		input.ReeferTemp = &temp
		_, err = f.svc.Create(ctx, input)
		assert.NoError(t, err)
	})

	t.Run("flat rack equipment requires pallet details", func(t *testing.T) {
		flatRack := testutil.CreateTestEquipmentType(t, f.db, false, true)
		input := f.validInput()
		input.EquipTypeID = flatRack.ID
		_, err := f.svc.Create(ctx, input)
		assert.ErrorIs(t, err, service.ErrPalletInfoRequired)

		count := 4
		dims := "120x100x150cm"
		input.PalletCount = &count
		input.PalletDims = &dims
		_, err = f.svc.Create(ctx, input)
		assert.NoError(t, err)
	})

	t.Run("unknown customer is rejected", func(t *testing.T) {
		input := f.validInput()
		input.CustomerID = uuid.New()
		_, err := f.svc.Create(ctx, input)
		assert.ErrorIs(t, err, service.ErrCustomerNotFound)
	})

	t.Run("unapproved customer cannot raise a request", func(t *testing.T) {
		pending := testutil.CreateTestCustomer(t, f.db, domain.CustomerPending, f.sales.ID)
		input := f.validInput()
		input.CustomerID = pending.ID
		_, err := f.svc.Create(ctx, input)
		assert.ErrorIs(t, err, service.ErrCustomerNotApproved)

		rejected := testutil.CreateTestCustomer(t, f.db, domain.CustomerRejected, f.sales.ID)
		input.CustomerID = rejected.ID
		_, err = f.svc.Create(ctx, input)
		assert.ErrorIs(t, err, service.ErrCustomerNotApproved)
	})

	t.Run("missing user context is rejected", func(t *testing.T) {
		_, err := f.svc.Create(context.Background(), f.validInput())
		assert.ErrorIs(t, err, service.ErrUserContextRequired)
	})

	t.Run("pricing team is notified of new requests", func(t *testing.T) {
		f.events.Reset()
		_, err := f.svc.Create(ctx, f.validInput())
		require.NoError(t, err)

		intents := f.events.ByType(string(domain.NotificationTypeRateRequestCreated))
		require.Len(t, intents, 1)
		assert.Equal(t, f.pricing.ID, intents[0].UserID)
	})
}

func TestRateRequestService_Update(t *testing.T) {
	f := newRateRequestFixture(t)
	ctx := userContext(f.sales)

	dto, err := f.svc.Create(ctx, f.validInput())
	require.NoError(t, err)

	t.Run("pending request can be edited", func(t *testing.T) {
		incoterm := "CIF"
		updated, err := f.svc.Update(ctx, dto.ID, &domain.UpdateRateRequestInput{Incoterm: &incoterm})
		require.NoError(t, err)
		assert.Equal(t, "CIF", updated.Incoterm)
	})

	t.Run("weight floor applies on update", func(t *testing.T) {
		tiny := decimal.NewFromFloat(0.0001)
		_, err := f.svc.Update(ctx, dto.ID, &domain.UpdateRateRequestInput{WeightTons: &tiny})
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("processing request is frozen", func(t *testing.T) {
		pricingCtx := userContext(f.pricing)
		_, err := f.svc.Respond(pricingCtx, dto.ID, &domain.RespondInput{})
		require.NoError(t, err)

		incoterm := "FOB"
		_, err = f.svc.Update(ctx, dto.ID, &domain.UpdateRateRequestInput{Incoterm: &incoterm})
		assert.ErrorIs(t, err, service.ErrRateRequestNotPending)
	})
}

func TestRateRequestService_Respond(t *testing.T) {
	f := newRateRequestFixture(t)
	salesCtx := userContext(f.sales)
	pricingCtx := userContext(f.pricing)

	t.Run("first response moves the request to processing", func(t *testing.T) {
		dto, err := f.svc.Create(salesCtx, f.validInput())
		require.NoError(t, err)

		response, err := f.svc.Respond(pricingCtx, dto.ID, &domain.RespondInput{})
		require.NoError(t, err)
		assert.Equal(t, 1, response.LineNo)

		refreshed, err := f.svc.GetByID(salesCtx, dto.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RateRequestProcessing, refreshed.Status)
	})

	t.Run("line numbers increase per request", func(t *testing.T) {
		dto, err := f.svc.Create(salesCtx, f.validInput())
		require.NoError(t, err)

		for want := 1; want <= 3; want++ {
			response, err := f.svc.Respond(pricingCtx, dto.ID, &domain.RespondInput{})
			require.NoError(t, err)
			assert.Equal(t, want, response.LineNo)
		}
	})

	t.Run("vessel details are mandatory when a vessel was requested", func(t *testing.T) {
		input := f.validInput()
		input.VesselRequired = true
		dto, err := f.svc.Create(salesCtx, input)
		require.NoError(t, err)

		_, err = f.svc.Respond(pricingCtx, dto.ID, &domain.RespondInput{})
		assert.ErrorIs(t, err, service.ErrVesselDetailsMissing)

		vessel := "MV EVER GIVEN"
		eta := time.Now().AddDate(0, 0, 21)
		etd := time.Now().AddDate(0, 0, 18)
		_, err = f.svc.Respond(pricingCtx, dto.ID, &domain.RespondInput{
			VesselName: &vessel,
			Eta:        &eta,
			Etd:        &etd,
		})
		assert.NoError(t, err)
	})

	t.Run("terminal requests refuse responses", func(t *testing.T) {
		dto, err := f.svc.Create(salesCtx, f.validInput())
		require.NoError(t, err)

		_, err = f.svc.Reject(pricingCtx, dto.ID, &domain.RejectRateRequestInput{Remark: "no coverage on this lane"})
		require.NoError(t, err)

		_, err = f.svc.Respond(pricingCtx, dto.ID, &domain.RespondInput{})
		assert.ErrorIs(t, err, service.ErrRateRequestTerminal)
	})

	t.Run("salesperson is notified of each response", func(t *testing.T) {
		f.events.Reset()
		dto, err := f.svc.Create(salesCtx, f.validInput())
		require.NoError(t, err)

		_, err = f.svc.Respond(pricingCtx, dto.ID, &domain.RespondInput{})
		require.NoError(t, err)

		intents := f.events.ByType(string(domain.NotificationTypeRateRequestResponse))
		require.Len(t, intents, 1)
		assert.Equal(t, f.sales.ID, intents[0].UserID)
	})
}

func TestRateRequestService_CreateLineQuote(t *testing.T) {
	f := newRateRequestFixture(t)
	salesCtx := userContext(f.sales)
	pricingCtx := userContext(f.pricing)
	line := testutil.CreateTestShippingLine(t, f.db)

	quoteInput := func(selected bool) *domain.CreateLineQuoteInput {
		return &domain.CreateLineQuoteInput{
			LineID:   line.ID,
			ValidTo:  time.Now().AddDate(0, 1, 0),
			Selected: selected,
		}
	}

	t.Run("pending request refuses line quotes", func(t *testing.T) {
		dto, err := f.svc.Create(salesCtx, f.validInput())
		require.NoError(t, err)

		_, err = f.svc.CreateLineQuote(pricingCtx, dto.ID, quoteInput(false))
		assert.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("newest selected quote displaces the previous one", func(t *testing.T) {
		dto, err := f.svc.Create(salesCtx, f.validInput())
		require.NoError(t, err)
		_, err = f.svc.Respond(pricingCtx, dto.ID, &domain.RespondInput{})
		require.NoError(t, err)

		first, err := f.svc.CreateLineQuote(pricingCtx, dto.ID, quoteInput(true))
		require.NoError(t, err)
		assert.True(t, first.Selected)

		second, err := f.svc.CreateLineQuote(pricingCtx, dto.ID, quoteInput(true))
		require.NoError(t, err)
		assert.True(t, second.Selected)

		var selected []domain.LineQuote
		require.NoError(t, f.db.Where("rate_request_id = ? AND selected = ?", dto.ID, true).Find(&selected).Error)
		require.Len(t, selected, 1)
		assert.Equal(t, second.ID, selected[0].ID)
	})

	t.Run("unknown shipping line is rejected", func(t *testing.T) {
		dto, err := f.svc.Create(salesCtx, f.validInput())
		require.NoError(t, err)
		_, err = f.svc.Respond(pricingCtx, dto.ID, &domain.RespondInput{})
		require.NoError(t, err)

		input := quoteInput(false)
		input.LineID = uuid.New()
		_, err = f.svc.CreateLineQuote(pricingCtx, dto.ID, input)
		assert.ErrorIs(t, err, service.ErrShippingLineNotFound)
	})
}

func TestRateRequestService_CompleteAndReject(t *testing.T) {
	f := newRateRequestFixture(t)
	salesCtx := userContext(f.sales)
	pricingCtx := userContext(f.pricing)

	t.Run("complete requires a processing request", func(t *testing.T) {
		dto, err := f.svc.Create(salesCtx, f.validInput())
		require.NoError(t, err)

		_, err = f.svc.Complete(pricingCtx, dto.ID)
		assert.ErrorIs(t, err, service.ErrConflict)

		_, err = f.svc.Respond(pricingCtx, dto.ID, &domain.RespondInput{})
		require.NoError(t, err)

		completed, err := f.svc.Complete(pricingCtx, dto.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RateRequestCompleted, completed.Status)
	})

	t.Run("reject works from pending", func(t *testing.T) {
		dto, err := f.svc.Create(salesCtx, f.validInput())
		require.NoError(t, err)

		rejected, err := f.svc.Reject(pricingCtx, dto.ID, &domain.RejectRateRequestInput{Remark: "rates unavailable this week"})
		require.NoError(t, err)
		assert.Equal(t, domain.RateRequestRejected, rejected.Status)
		assert.Equal(t, "rates unavailable this week", rejected.RejectRemark)
	})

	t.Run("terminal requests cannot be decided again", func(t *testing.T) {
		dto, err := f.svc.Create(salesCtx, f.validInput())
		require.NoError(t, err)
		_, err = f.svc.Respond(pricingCtx, dto.ID, &domain.RespondInput{})
		require.NoError(t, err)
		_, err = f.svc.Complete(pricingCtx, dto.ID)
		require.NoError(t, err)

		_, err = f.svc.Reject(pricingCtx, dto.ID, &domain.RejectRateRequestInput{Remark: "already shipped elsewhere"})
		assert.ErrorIs(t, err, service.ErrRateRequestTerminal)
		_, err = f.svc.Complete(pricingCtx, dto.ID)
		assert.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("decisions notify the salesperson", func(t *testing.T) {
		f.events.Reset()
		dto, err := f.svc.Create(salesCtx, f.validInput())
		require.NoError(t, err)
		_, err = f.svc.Reject(pricingCtx, dto.ID, &domain.RejectRateRequestInput{Remark: "lane suspended until June"})
		require.NoError(t, err)

		intents := f.events.ByType(string(domain.NotificationTypeRateRequestDecided))
		require.Len(t, intents, 1)
		assert.Equal(t, f.sales.ID, intents[0].UserID)
	})
}
