package accounts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/simovate/simstack-backend/pkg/db/models"
	"github.com/simovate/simstack-backend/pkg/enums"
	pkgerrors "github.com/simovate/simstack-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:accounts_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Account{}); err != nil {
		t.Fatalf("migrate accounts: %v", err)
	}
	return conn
}

func TestGetPreloadsParent(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc, err := NewService(NewRepository(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	agent := models.Account{Name: "North Agent", Role: enums.AccountRoleAgent, Status: enums.AccountStatusActive}
	if err := conn.Create(&agent).Error; err != nil {
		t.Fatalf("seed agent: %v", err)
	}
	distributor := models.Account{
		Name:     "North Distributor",
		Role:     enums.AccountRoleDistributor,
		Status:   enums.AccountStatusActive,
		ParentID: &agent.ID,
	}
	if err := conn.Create(&distributor).Error; err != nil {
		t.Fatalf("seed distributor: %v", err)
	}

	loaded, err := svc.Get(ctx, distributor.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Parent == nil || loaded.Parent.ID != agent.ID {
		t.Fatalf("parent not preloaded: %+v", loaded.Parent)
	}
	if loaded.Parent.Role != enums.AccountRoleAgent {
		t.Fatalf("parent role = %s", loaded.Parent.Role)
	}
}

func TestGetActiveRejectsInactive(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc, err := NewService(NewRepository(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	account := models.Account{Name: "Dormant", Role: enums.AccountRoleUser, Status: enums.AccountStatusInactive}
	if err := conn.Create(&account).Error; err != nil {
		t.Fatalf("seed account: %v", err)
	}

	_, err = svc.GetActive(ctx, account.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.GetActive(ctx, uuid.New())
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error for missing account: %v", err)
	}
}
