package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lankaline/freight-api/internal/database"
	"github.com/lankaline/freight-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbCounter atomic.Int64

// SetupTestDB creates an isolated in-memory SQLite database with the full
// schema migrated. Models assign UUIDs application-side, so the same code
// paths run against SQLite in tests and PostgreSQL in production.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache database so every pooled connection sees the
	// same schema; the counter keeps parallel tests apart.
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", dbCounter.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err, "failed to open in-memory test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Shared-cache in-memory databases vanish when the last connection
	// closes; a single connection keeps the schema alive for the test.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db), "failed to migrate test schema")

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

// CreateTestUser inserts an active user with the given role
func CreateTestUser(t *testing.T, db *gorm.DB, role domain.UserRole) *domain.User {
	t.Helper()
	user := &domain.User{
		Email:       fmt.Sprintf("user-%s@lankaline.lk", uuid.NewString()[:8]),
		DisplayName: "Test User",
		Role:        role,
		Active:      true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestSBU inserts an SBU headed by the given user and assigns the
// members to it.
func CreateTestSBU(t *testing.T, db *gorm.DB, head *domain.User, members ...*domain.User) *domain.SBU {
	t.Helper()
	sbu := &domain.SBU{
		Code: fmt.Sprintf("SBU%s", uuid.NewString()[:5]),
		Name: "Test SBU",
	}
	require.NoError(t, db.Create(sbu).Error)

	if head != nil {
		sbu.HeadUserID = &head.ID
		require.NoError(t, db.Save(sbu).Error)
		head.SbuID = &sbu.ID
		require.NoError(t, db.Save(head).Error)
	}
	for _, member := range members {
		member.SbuID = &sbu.ID
		require.NoError(t, db.Save(member).Error)
	}
	return sbu
}

// CreateTestPort inserts a port with the given UN/LOCODE
func CreateTestPort(t *testing.T, db *gorm.DB, unlocode string) *domain.Port {
	t.Helper()
	port := &domain.Port{
		Name:        "Port " + unlocode,
		Unlocode:    unlocode,
		CountryCode: unlocode[:2],
	}
	require.NoError(t, db.Create(port).Error)
	return port
}

// CreateTestTradeLane inserts a trade lane between two ports
func CreateTestTradeLane(t *testing.T, db *gorm.DB, origin, destination *domain.Port) *domain.TradeLane {
	t.Helper()
	lane := &domain.TradeLane{
		Code:              fmt.Sprintf("TL%s", uuid.NewString()[:6]),
		Name:              fmt.Sprintf("%s - %s", origin.Unlocode, destination.Unlocode),
		OriginPortID:      origin.ID,
		DestinationPortID: destination.ID,
	}
	require.NoError(t, db.Create(lane).Error)
	return lane
}

// CreateTestEquipmentType inserts an equipment type
func CreateTestEquipmentType(t *testing.T, db *gorm.DB, isReefer, isFlatRackOpenTop bool) *domain.EquipmentType {
	t.Helper()
	equip := &domain.EquipmentType{
		Code:              fmt.Sprintf("EQ%s", uuid.NewString()[:6]),
		Name:              "Test Equipment",
		IsReefer:          isReefer,
		IsFlatRackOpenTop: isFlatRackOpenTop,
	}
	require.NoError(t, db.Create(equip).Error)
	return equip
}

// CreateTestShippingLine inserts a carrier
func CreateTestShippingLine(t *testing.T, db *gorm.DB) *domain.ShippingLine {
	t.Helper()
	line := &domain.ShippingLine{
		ScacCode: fmt.Sprintf("S%s", uuid.NewString()[:4]),
		Name:     "Test Line",
	}
	require.NoError(t, db.Create(line).Error)
	return line
}

// CreateTestCustomer inserts a customer in the given approval state
func CreateTestCustomer(t *testing.T, db *gorm.DB, status domain.CustomerApprovalStatus, createdBy uuid.UUID) *domain.Customer {
	t.Helper()
	customer := &domain.Customer{
		Name:           fmt.Sprintf("Customer %s", uuid.NewString()[:8]),
		ApprovalStatus: status,
		CreatedByID:    createdBy,
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}
