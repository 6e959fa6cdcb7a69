package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lankaline/freight-api/internal/domain"
	"github.com/lankaline/freight-api/internal/repository"
	"github.com/lankaline/freight-api/internal/service"
	"github.com/lankaline/freight-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMasterDataService_Ports(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewMasterDataService(repository.NewMasterDataRepository(db), zap.NewNop())
	ctx := context.Background()

	input := &domain.CreatePortInput{Name: "Colombo", Unlocode: "LKCMB", CountryCode: "LK"}

	t.Run("create and list", func(t *testing.T) {
		dto, err := svc.CreatePort(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, "LKCMB", dto.Unlocode)

		ports, err := svc.ListPorts(ctx)
		require.NoError(t, err)
		assert.Len(t, ports, 1)
	})

	t.Run("duplicate unlocode is refused", func(t *testing.T) {
		_, err := svc.CreatePort(ctx, input)
		assert.ErrorIs(t, err, service.ErrDuplicateUnlocode)
	})
}

func TestMasterDataService_TradeLanes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewMasterDataService(repository.NewMasterDataRepository(db), zap.NewNop())
	ctx := context.Background()

	origin := testutil.CreateTestPort(t, db, "LKCMB")
	destination := testutil.CreateTestPort(t, db, "AEJEA")

	laneInput := &domain.CreateTradeLaneInput{
		Code:              "CMB-JEA",
		Name:              "Colombo to Jebel Ali",
		Region:            "Middle East",
		OriginPortID:      origin.ID,
		DestinationPortID: destination.ID,
	}

	t.Run("create with valid ports", func(t *testing.T) {
		dto, err := svc.CreateTradeLane(ctx, laneInput)
		require.NoError(t, err)
		assert.Equal(t, "CMB-JEA", dto.Code)
	})

	t.Run("duplicate lane code is refused", func(t *testing.T) {
		_, err := svc.CreateTradeLane(ctx, laneInput)
		assert.ErrorIs(t, err, service.ErrDuplicateLaneCode)
	})

	t.Run("unknown origin port is refused", func(t *testing.T) {
		bad := *laneInput
		bad.Code = "XXX-YYY"
		bad.OriginPortID = uuid.New()
		_, err := svc.CreateTradeLane(ctx, &bad)
		assert.ErrorIs(t, err, service.ErrPortNotFound)
	})

	t.Run("region filter narrows the listing", func(t *testing.T) {
		second := *laneInput
		second.Code = "CMB-SIN"
		second.Region = "Far East"
		second.DestinationPortID = testutil.CreateTestPort(t, db, "SGSIN").ID
		_, err := svc.CreateTradeLane(ctx, &second)
		require.NoError(t, err)

		lanes, err := svc.ListTradeLanes(ctx, "Far East")
		require.NoError(t, err)
		require.Len(t, lanes, 1)
		assert.Equal(t, "CMB-SIN", lanes[0].Code)

		all, err := svc.ListTradeLanes(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

func TestMasterDataService_AssignPricingUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewMasterDataService(repository.NewMasterDataRepository(db), zap.NewNop())
	ctx := context.Background()

	origin := testutil.CreateTestPort(t, db, "LKCMB")
	destination := testutil.CreateTestPort(t, db, "SGSIN")
	lane := testutil.CreateTestTradeLane(t, db, origin, destination)
	pricing := testutil.CreateTestUser(t, db, domain.RolePricing)

	t.Run("assignment succeeds once", func(t *testing.T) {
		require.NoError(t, svc.AssignPricingUser(ctx, lane.ID, pricing.ID))
	})

	t.Run("repeat assignment is refused", func(t *testing.T) {
		err := svc.AssignPricingUser(ctx, lane.ID, pricing.ID)
		assert.ErrorIs(t, err, service.ErrDuplicateAssignment)
	})

	t.Run("unknown lane is refused", func(t *testing.T) {
		err := svc.AssignPricingUser(ctx, uuid.New(), pricing.ID)
		assert.ErrorIs(t, err, service.ErrTradeLaneNotFound)
	})

	t.Run("assignees are listed for the lane", func(t *testing.T) {
		users, err := svc.ListPricingUsers(ctx, lane.ID)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, pricing.ID, users[0].ID)
	})

	t.Run("listing an unknown lane is refused", func(t *testing.T) {
		_, err := svc.ListPricingUsers(ctx, uuid.New())
		assert.ErrorIs(t, err, service.ErrTradeLaneNotFound)
	})
}
