package settings

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/martsys/inventory-backend/pkg/db/models"
	pkgerrors "github.com/martsys/inventory-backend/pkg/errors"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Setting{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	svc, err := NewService(NewRepository(conn))
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}
	return svc
}

func strPtr(s string) *string { return &s }

func TestGetReturnsDefaultsWhenUnset(t *testing.T) {
	svc := newTestService(t)

	setting, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if setting.MartName != "My Mart" || setting.Currency != "USD" {
		t.Fatalf("unexpected defaults: %+v", setting)
	}
}

func TestUpdatePersistsPartialChanges(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	updated, err := svc.Update(ctx, UpdateInput{
		MartName: strPtr("Corner Mart"),
		Currency: strPtr("eur"),
		Contact:  strPtr(" +44 1234 "),
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.MartName != "Corner Mart" {
		t.Fatalf("expected mart name updated, got %q", updated.MartName)
	}
	if updated.Currency != "EUR" {
		t.Fatalf("expected currency upper-cased, got %q", updated.Currency)
	}
	if updated.Contact != "+44 1234" {
		t.Fatalf("expected contact trimmed, got %q", updated.Contact)
	}
	if updated.AdminName != "Admin" {
		t.Fatalf("untouched fields must keep their value, got %q", updated.AdminName)
	}

	reloaded, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("Get after update error: %v", err)
	}
	if reloaded.MartName != "Corner Mart" || reloaded.Currency != "EUR" {
		t.Fatalf("update not persisted: %+v", reloaded)
	}
}

func TestUpdateValidation(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name  string
		input UpdateInput
	}{
		{name: "empty mart name", input: UpdateInput{MartName: strPtr("  ")}},
		{name: "bad currency", input: UpdateInput{Currency: strPtr("EURO")}},
		{name: "short pin", input: UpdateInput{AccessPin: strPtr("12")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Update(context.Background(), tc.input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
}

func TestUpdateClearsPin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Update(ctx, UpdateInput{AccessPin: strPtr("4321")}); err != nil {
		t.Fatalf("set pin error: %v", err)
	}
	updated, err := svc.Update(ctx, UpdateInput{AccessPin: strPtr("")})
	if err != nil {
		t.Fatalf("clear pin error: %v", err)
	}
	if updated.AccessPin != "" {
		t.Fatalf("expected pin cleared, got %q", updated.AccessPin)
	}
}
