package catalog

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/martsys/inventory-backend/pkg/db/models"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Product{}))
	return conn
}

func insertProduct(t *testing.T, conn *gorm.DB, name, category string, createdAt time.Time) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:        uuid.New(),
		Name:      name,
		Category:  category,
		UnitPrice: decimal.NewFromFloat(2.50),
		CreatedAt: createdAt,
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	conn := setupCatalogTestDB(t)
	repo := NewRepository(conn)
	now := time.Now().UTC()

	insertProduct(t, conn, "Whole Milk", "Dairy", now)
	insertProduct(t, conn, "Bread", "Bakery", now)

	rows, err := repo.Search(context.Background(), "MILK")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Whole Milk", rows[0].Name)

	rows, err = repo.Search(context.Background(), "dairy")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Whole Milk", rows[0].Name)
}

func TestSearchOrdersNewestFirst(t *testing.T) {
	conn := setupCatalogTestDB(t)
	repo := NewRepository(conn)
	now := time.Now().UTC()

	insertProduct(t, conn, "Old Stock", "Groceries", now.Add(-2*time.Hour))
	insertProduct(t, conn, "New Stock", "Groceries", now)

	rows, err := repo.Search(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "New Stock", rows[0].Name)
	assert.Equal(t, "Old Stock", rows[1].Name)
}

func TestFindByNamePrefersEarliestCreated(t *testing.T) {
	conn := setupCatalogTestDB(t)
	repo := NewRepository(conn)
	now := time.Now().UTC()

	insertProduct(t, conn, "Milk 1L", "Dairy", now)
	first := insertProduct(t, conn, "Milk 1L", "Dairy", now.Add(-time.Hour))

	found, err := repo.FindByName(context.Background(), "  milk 1l ")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
}

func TestDeleteReportsAffectedRows(t *testing.T) {
	conn := setupCatalogTestDB(t)
	repo := NewRepository(conn)
	product := insertProduct(t, conn, "Milk 1L", "Dairy", time.Now().UTC())

	affected, err := repo.Delete(context.Background(), product.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	affected, err = repo.Delete(context.Background(), product.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)
}
