package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lankaline/freight-api/internal/domain"
	"github.com/lankaline/freight-api/internal/notify"
	"github.com/lankaline/freight-api/internal/repository"
	"github.com/lankaline/freight-api/internal/service"
	"github.com/lankaline/freight-api/internal/storage"
	"github.com/lankaline/freight-api/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func tenTons() decimal.Decimal {
	return decimal.NewFromInt(10)
}

// stubVerifier answers ERP job lookups from a fixed set
type stubVerifier struct {
	known map[string]bool
}

func (v *stubVerifier) JobExists(_ context.Context, erpJobNo string) (bool, error) {
	return v.known[erpJobNo], nil
}

type bookingFixture struct {
	db       *gorm.DB
	svc      *service.BookingService
	rateSvc  *service.RateRequestService
	events   *notify.Collector
	sales    *domain.User
	pricing  *domain.User
	customer *domain.Customer
	lane     *domain.TradeLane
}

func newBookingFixture(t *testing.T, erp service.ERPVerifier) *bookingFixture {
	db := testutil.SetupTestDB(t)
	events := notify.NewCollector()
	logger := zap.NewNop()

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	sales := testutil.CreateTestUser(t, db, domain.RoleSales)
	pricing := testutil.CreateTestUser(t, db, domain.RolePricing)
	origin := testutil.CreateTestPort(t, db, domain.HomePortUnlocode)
	destination := testutil.CreateTestPort(t, db, "NLRTM")

	bookingRepo := repository.NewBookingRepository(db)
	rateRequestRepo := repository.NewRateRequestRepository(db)
	rateRepo := repository.NewPredefinedRateRepository(db)
	customerRepo := repository.NewCustomerRepository(db)

	return &bookingFixture{
		db:       db,
		svc:      service.NewBookingService(bookingRepo, rateRequestRepo, rateRepo, customerRepo, store, erp, events, logger),
		rateSvc:  createRateRequestService(db, notify.NewCollector()),
		events:   events,
		sales:    sales,
		pricing:  pricing,
		customer: testutil.CreateTestCustomer(t, db, domain.CustomerApproved, sales.ID),
		lane:     testutil.CreateTestTradeLane(t, db, origin, destination),
	}
}

// createCatalogRate inserts a predefined rate expiring at validTo
func (f *bookingFixture) createCatalogRate(t *testing.T, validTo time.Time) *domain.PredefinedRate {
	t.Helper()
	rate := &domain.PredefinedRate{
		TradeLaneID: f.lane.ID,
		PolID:       f.lane.OriginPortID,
		PodID:       f.lane.DestinationPortID,
		Service:     "Weekly feeder",
		ValidFrom:   validTo.AddDate(0, -3, 0),
		ValidTo:     validTo,
		Status:      domain.PredefinedRateActive,
	}
	require.NoError(t, f.db.Create(rate).Error)
	return rate
}

// completedRequestWithQuote drives a rate request to COMPLETED with a
// selected line quote valid until validTo.
func (f *bookingFixture) completedRequestWithQuote(t *testing.T, validTo time.Time) *domain.RateRequestDTO {
	t.Helper()
	salesCtx := userContext(f.sales)
	pricingCtx := userContext(f.pricing)
	equip := testutil.CreateTestEquipmentType(t, f.db, false, false)
	line := testutil.CreateTestShippingLine(t, f.db)

	request, err := f.rateSvc.Create(salesCtx, &domain.CreateRateRequestInput{
		Mode:              "SEA",
		CargoType:         "FCL",
		PodID:             f.lane.DestinationPortID,
		DeliveryMode:      "CY",
		EquipTypeID:       equip.ID,
		WeightTons:        tenTons(),
		CargoReadyDate:    time.Now().AddDate(0, 0, 10),
		DetentionFreeTime: "7",
		CustomerID:        f.customer.ID,
	})
	require.NoError(t, err)

	_, err = f.rateSvc.Respond(pricingCtx, request.ID, &domain.RespondInput{})
	require.NoError(t, err)
	_, err = f.rateSvc.CreateLineQuote(pricingCtx, request.ID, &domain.CreateLineQuoteInput{
		LineID:   line.ID,
		ValidTo:  validTo,
		Selected: true,
	})
	require.NoError(t, err)
	_, err = f.rateSvc.Complete(pricingCtx, request.ID)
	require.NoError(t, err)
	return request
}

func TestBookingService_Create(t *testing.T) {
	f := newBookingFixture(t, nil)
	ctx := userContext(f.sales)

	t.Run("booking against a catalog rate", func(t *testing.T) {
		rate := f.createCatalogRate(t, time.Now().AddDate(0, 1, 0))
		dto, err := f.svc.Create(ctx, &domain.CreateBookingInput{
			CustomerID: f.customer.ID,
			RateSource: "predefined",
			LinkID:     rate.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.BookingPending, dto.Status)
		require.NotNil(t, dto.PredefinedRateID)
		assert.Equal(t, rate.ID, *dto.PredefinedRateID)
	})

	t.Run("booking against a completed request resolves the selected quote", func(t *testing.T) {
		request := f.completedRequestWithQuote(t, time.Now().AddDate(0, 1, 0))
		dto, err := f.svc.Create(ctx, &domain.CreateBookingInput{
			CustomerID: f.customer.ID,
			RateSource: "request",
			LinkID:     request.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, dto.RateRequestID)
		assert.Equal(t, request.ID, *dto.RateRequestID)
		assert.NotNil(t, dto.LineQuoteID)
	})

	t.Run("incomplete request cannot be booked", func(t *testing.T) {
		salesCtx := userContext(f.sales)
		equip := testutil.CreateTestEquipmentType(t, f.db, false, false)
		request, err := f.rateSvc.Create(salesCtx, &domain.CreateRateRequestInput{
			Mode:              "SEA",
			CargoType:         "FCL",
			PodID:             f.lane.DestinationPortID,
			DeliveryMode:      "CY",
			EquipTypeID:       equip.ID,
			WeightTons:        tenTons(),
			CargoReadyDate:    time.Now().AddDate(0, 0, 10),
			DetentionFreeTime: "7",
			CustomerID:        f.customer.ID,
		})
		require.NoError(t, err)

		_, err = f.svc.Create(ctx, &domain.CreateBookingInput{
			CustomerID: f.customer.ID,
			RateSource: "request",
			LinkID:     request.ID,
		})
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("unapproved customer cannot book", func(t *testing.T) {
		pending := testutil.CreateTestCustomer(t, f.db, domain.CustomerPending, f.sales.ID)
		rate := f.createCatalogRate(t, time.Now().AddDate(0, 1, 0))
		_, err := f.svc.Create(ctx, &domain.CreateBookingInput{
			CustomerID: pending.ID,
			RateSource: "predefined",
			LinkID:     rate.ID,
		})
		assert.ErrorIs(t, err, service.ErrCustomerNotApproved)
	})

	t.Run("unknown rate link is rejected", func(t *testing.T) {
		_, err := f.svc.Create(ctx, &domain.CreateBookingInput{
			CustomerID: f.customer.ID,
			RateSource: "predefined",
			LinkID:     uuid.New(),
		})
		assert.ErrorIs(t, err, service.ErrPredefinedRateNotFound)
	})
}

func TestBookingService_Confirm(t *testing.T) {
	f := newBookingFixture(t, nil)
	ctx := userContext(f.sales)

	book := func(t *testing.T, validTo time.Time) *domain.BookingRequestDTO {
		rate := f.createCatalogRate(t, validTo)
		dto, err := f.svc.Create(ctx, &domain.CreateBookingInput{
			CustomerID: f.customer.ID,
			RateSource: "predefined",
			LinkID:     rate.ID,
		})
		require.NoError(t, err)
		return dto
	}

	t.Run("pending booking with a live rate confirms", func(t *testing.T) {
		dto := book(t, time.Now().AddDate(0, 1, 0))
		confirmed, err := f.svc.Confirm(ctx, dto.ID, &domain.ConfirmBookingInput{})
		require.NoError(t, err)
		assert.Equal(t, domain.BookingConfirmed, confirmed.Status)
		assert.NotNil(t, confirmed.ConfirmedAt)
	})

	t.Run("expired rate refuses confirmation without the override", func(t *testing.T) {
		dto := book(t, time.Now().AddDate(0, 0, -1))
		_, err := f.svc.Confirm(ctx, dto.ID, &domain.ConfirmBookingInput{})
		assert.ErrorIs(t, err, service.ErrRateExpired)

		confirmed, err := f.svc.Confirm(ctx, dto.ID, &domain.ConfirmBookingInput{OverrideExpiry: true})
		require.NoError(t, err)
		assert.Equal(t, domain.BookingConfirmed, confirmed.Status)
	})

	t.Run("expired line quote is also caught", func(t *testing.T) {
		request := f.completedRequestWithQuote(t, time.Now().AddDate(0, 0, -1))
		dto, err := f.svc.Create(ctx, &domain.CreateBookingInput{
			CustomerID: f.customer.ID,
			RateSource: "request",
			LinkID:     request.ID,
		})
		require.NoError(t, err)

		_, err = f.svc.Confirm(ctx, dto.ID, &domain.ConfirmBookingInput{})
		assert.ErrorIs(t, err, service.ErrRateExpired)
	})

	t.Run("only pending bookings confirm", func(t *testing.T) {
		dto := book(t, time.Now().AddDate(0, 1, 0))
		_, err := f.svc.Confirm(ctx, dto.ID, &domain.ConfirmBookingInput{})
		require.NoError(t, err)

		_, err = f.svc.Confirm(ctx, dto.ID, &domain.ConfirmBookingInput{})
		assert.ErrorIs(t, err, service.ErrBookingNotPending)
	})
}

func TestBookingService_Cancel(t *testing.T) {
	f := newBookingFixture(t, nil)
	ctx := userContext(f.sales)
	reason := "customer postponed the shipment"

	book := func(t *testing.T) *domain.BookingRequestDTO {
		rate := f.createCatalogRate(t, time.Now().AddDate(0, 1, 0))
		dto, err := f.svc.Create(ctx, &domain.CreateBookingInput{
			CustomerID: f.customer.ID,
			RateSource: "predefined",
			LinkID:     rate.ID,
		})
		require.NoError(t, err)
		return dto
	}

	t.Run("pending booking cancels with a reason", func(t *testing.T) {
		dto := book(t)
		cancelled, err := f.svc.Cancel(ctx, dto.ID, &domain.CancelBookingInput{Reason: reason})
		require.NoError(t, err)
		assert.Equal(t, domain.BookingCancelled, cancelled.Status)
		assert.Equal(t, reason, cancelled.CancelReason)
	})

	t.Run("confirmed booking can still cancel", func(t *testing.T) {
		dto := book(t)
		_, err := f.svc.Confirm(ctx, dto.ID, &domain.ConfirmBookingInput{})
		require.NoError(t, err)

		_, err = f.svc.Cancel(ctx, dto.ID, &domain.CancelBookingInput{Reason: reason})
		assert.NoError(t, err)
	})

	t.Run("cancelling twice is refused", func(t *testing.T) {
		dto := book(t)
		_, err := f.svc.Cancel(ctx, dto.ID, &domain.CancelBookingInput{Reason: reason})
		require.NoError(t, err)

		_, err = f.svc.Cancel(ctx, dto.ID, &domain.CancelBookingInput{Reason: reason})
		assert.ErrorIs(t, err, service.ErrConflict)
	})
}

func TestBookingService_RODocuments(t *testing.T) {
	f := newBookingFixture(t, nil)
	ctx := userContext(f.sales)

	rate := f.createCatalogRate(t, time.Now().AddDate(0, 1, 0))
	dto, err := f.svc.Create(ctx, &domain.CreateBookingInput{
		CustomerID: f.customer.ID,
		RateSource: "predefined",
		LinkID:     rate.ID,
	})
	require.NoError(t, err)

	docInput := &domain.CreateRODocumentInput{
		Number:     "RO-2026-00042",
		ReceivedAt: time.Now(),
	}

	t.Run("pending booking refuses release orders", func(t *testing.T) {
		_, err := f.svc.AddRODocument(ctx, dto.ID, docInput, "", nil)
		assert.ErrorIs(t, err, service.ErrBookingNotConfirmed)
	})

	t.Run("confirmed booking accepts a release order with a scan", func(t *testing.T) {
		_, err := f.svc.Confirm(ctx, dto.ID, &domain.ConfirmBookingInput{})
		require.NoError(t, err)

		doc, err := f.svc.AddRODocument(ctx, dto.ID, docInput, "ro-scan.pdf", strings.NewReader("%PDF-1.4 fake scan"))
		require.NoError(t, err)
		assert.Equal(t, docInput.Number, doc.Number)
		require.NotNil(t, doc.FileURL)
		assert.NotEmpty(t, *doc.FileURL)
	})

	t.Run("release order without a file keeps a nil url", func(t *testing.T) {
		doc, err := f.svc.AddRODocument(ctx, dto.ID, docInput, "", nil)
		require.NoError(t, err)
		assert.Nil(t, doc.FileURL)
	})
}

func TestBookingService_Jobs(t *testing.T) {
	verifier := &stubVerifier{known: map[string]bool{"JOB-1001": true}}
	f := newBookingFixture(t, verifier)
	ctx := userContext(f.sales)

	confirmedBooking := func(t *testing.T) *domain.BookingRequestDTO {
		rate := f.createCatalogRate(t, time.Now().AddDate(0, 1, 0))
		dto, err := f.svc.Create(ctx, &domain.CreateBookingInput{
			CustomerID: f.customer.ID,
			RateSource: "predefined",
			LinkID:     rate.ID,
		})
		require.NoError(t, err)
		confirmed, err := f.svc.Confirm(ctx, dto.ID, &domain.ConfirmBookingInput{})
		require.NoError(t, err)
		return confirmed
	}

	t.Run("job opens once per booking", func(t *testing.T) {
		dto := confirmedBooking(t)
		job, err := f.svc.OpenERPJob(ctx, dto.ID, &domain.OpenJobInput{ErpJobNo: "JOB-1001"})
		require.NoError(t, err)
		assert.Equal(t, "JOB-1001", job.ErpJobNo)

		_, err = f.svc.OpenERPJob(ctx, dto.ID, &domain.OpenJobInput{ErpJobNo: "JOB-1001"})
		assert.ErrorIs(t, err, service.ErrJobAlreadyOpen)
	})

	t.Run("unknown ERP job number is refused", func(t *testing.T) {
		dto := confirmedBooking(t)
		_, err := f.svc.OpenERPJob(ctx, dto.ID, &domain.OpenJobInput{ErpJobNo: "JOB-9999"})
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("pending booking cannot open a job", func(t *testing.T) {
		rate := f.createCatalogRate(t, time.Now().AddDate(0, 1, 0))
		dto, err := f.svc.Create(ctx, &domain.CreateBookingInput{
			CustomerID: f.customer.ID,
			RateSource: "predefined",
			LinkID:     rate.ID,
		})
		require.NoError(t, err)

		_, err = f.svc.OpenERPJob(ctx, dto.ID, &domain.OpenJobInput{ErpJobNo: "JOB-1001"})
		assert.ErrorIs(t, err, service.ErrBookingNotConfirmed)
	})

	t.Run("completions append without limit", func(t *testing.T) {
		dto := confirmedBooking(t)
		job, err := f.svc.OpenERPJob(ctx, dto.ID, &domain.OpenJobInput{ErpJobNo: "JOB-1001"})
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			_, err := f.svc.CompleteJob(ctx, job.ID, &domain.CompleteJobInput{
				Details: domain.JSONMap{"leg": i + 1},
			})
			require.NoError(t, err)
		}

		var count int64
		require.NoError(t, f.db.Model(&domain.JobCompletion{}).Where("job_id = ?", job.ID).Count(&count).Error)
		assert.EqualValues(t, 3, count)
	})

	t.Run("completion on an unknown job fails", func(t *testing.T) {
		_, err := f.svc.CompleteJob(ctx, uuid.New(), &domain.CompleteJobInput{})
		assert.ErrorIs(t, err, service.ErrJobNotFound)
	})
}
