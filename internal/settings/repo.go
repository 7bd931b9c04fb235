package settings

import (
	"context"

	"gorm.io/gorm"

	"github.com/martsys/inventory-backend/pkg/db/models"
)

// singletonID is the only row the settings table ever holds.
const singletonID = 1

// Repository persists the singleton store profile.
type Repository interface {
	Get(ctx context.Context) (*models.Setting, error)
	Save(ctx context.Context, setting *models.Setting) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a settings repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context) (*models.Setting, error) {
	var setting models.Setting
	if err := r.db.WithContext(ctx).First(&setting, "id = ?", singletonID).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *repository) Save(ctx context.Context, setting *models.Setting) error {
	setting.ID = singletonID
	return r.db.WithContext(ctx).Save(setting).Error
}
