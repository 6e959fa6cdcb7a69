package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lankaline/freight-api/internal/auth"
	"github.com/lankaline/freight-api/internal/domain"
	"github.com/lankaline/freight-api/internal/http/handler"
	"github.com/lankaline/freight-api/internal/notify"
	"github.com/lankaline/freight-api/internal/repository"
	"github.com/lankaline/freight-api/internal/service"
	"github.com/lankaline/freight-api/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRateRequestHandler_ListMine(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewRateRequestService(
		repository.NewRateRequestRepository(db),
		repository.NewMasterDataRepository(db),
		repository.NewCustomerRepository(db),
		repository.NewUserRepository(db),
		notify.NewCollector(),
		zap.NewNop(),
	)
	h := handler.NewRateRequestHandler(svc, zap.NewNop())

	salesA := testutil.CreateTestUser(t, db, domain.RoleSales)
	salesB := testutil.CreateTestUser(t, db, domain.RoleSales)
	customer := testutil.CreateTestCustomer(t, db, domain.CustomerApproved, salesA.ID)
	testutil.CreateTestPort(t, db, domain.HomePortUnlocode)
	pod := testutil.CreateTestPort(t, db, "SGSIN")
	equip := testutil.CreateTestEquipmentType(t, db, false, false)

	input := &domain.CreateRateRequestInput{
		Mode:              "SEA",
		CargoType:         "FCL",
		PodID:             pod.ID,
		DeliveryMode:      "CY",
		EquipTypeID:       equip.ID,
		WeightTons:        decimal.NewFromInt(5),
		CargoReadyDate:    time.Now().AddDate(0, 0, 7),
		DetentionFreeTime: "7",
		CustomerID:        customer.ID,
	}

	for _, sales := range []*domain.User{salesA, salesB} {
		ctx := auth.WithUserContext(context.Background(), &auth.UserContext{
			UserID: sales.ID,
			Role:   sales.Role,
		})
		_, err := svc.Create(ctx, input)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rate-requests?mine=true", nil)
	req = req.WithContext(auth.WithUserContext(req.Context(), &auth.UserContext{
		UserID: salesA.ID,
		Role:   salesA.Role,
	}))
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data  []domain.RateRequestDTO `json:"data"`
		Total int64                   `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, salesA.ID, resp.Data[0].SalespersonID)
	assert.EqualValues(t, 1, resp.Total)
}
