package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/martsys/inventory-backend/pkg/db/models"
	pkgerrors "github.com/martsys/inventory-backend/pkg/errors"
)

// UpdateInput carries partial settings changes. Nil fields are untouched.
type UpdateInput struct {
	MartName  *string
	AdminName *string
	Address   *string
	Contact   *string
	Currency  *string
	AccessPin *string
}

// Service manages the singleton store profile.
type Service interface {
	Get(ctx context.Context) (*models.Setting, error)
	Update(ctx context.Context, input UpdateInput) (*models.Setting, error)
}

type service struct {
	repo Repository
}

// NewService wires a settings service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	return &service{repo: repo}, nil
}

// defaults is the profile served before anyone saves one. The migration seeds
// the same row in Postgres.
func defaults() *models.Setting {
	return &models.Setting{
		ID:        singletonID,
		MartName:  "My Mart",
		AdminName: "Admin",
		Currency:  "USD",
	}
}

func (s *service) Get(ctx context.Context) (*models.Setting, error) {
	setting, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return defaults(), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load settings")
	}
	return setting, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.Setting, error) {
	setting, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	if input.MartName != nil {
		name := strings.TrimSpace(*input.MartName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "mart name cannot be empty")
		}
		setting.MartName = name
	}
	if input.AdminName != nil {
		setting.AdminName = strings.TrimSpace(*input.AdminName)
	}
	if input.Address != nil {
		setting.Address = strings.TrimSpace(*input.Address)
	}
	if input.Contact != nil {
		setting.Contact = strings.TrimSpace(*input.Contact)
	}
	if input.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*input.Currency))
		if len(currency) != 3 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "currency must be a 3-letter code")
		}
		setting.Currency = currency
	}
	if input.AccessPin != nil {
		pin := strings.TrimSpace(*input.AccessPin)
		if pin != "" && len(pin) < 4 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "access pin must be at least 4 characters")
		}
		setting.AccessPin = pin
	}

	if err := s.repo.Save(ctx, setting); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save settings")
	}
	return setting, nil
}
