package migrate_test

import (
	"strings"
	"testing"
)

func TestStockTransactionsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_stock_transactions.sql")

	checks := []string{
		"CREATE TYPE transaction_kind_enum AS ENUM ('sale', 'addition')",
		"CREATE TABLE IF NOT EXISTS stock_transactions",
		"CHECK (quantity > 0)",
		"CHECK (line_total >= 0)",
		"idx_stock_transactions_product_id",
		"DROP TABLE IF EXISTS stock_transactions",
		"DROP TYPE IF EXISTS transaction_kind_enum",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestSeedCategoriesMigrationListsDefaults(t *testing.T) {
	content := readMigration(t, "*_seed_categories.sql")

	for _, name := range []string{"Groceries", "Bakery", "Dairy", "Confectionery", "Beverages", "Electronics"} {
		if !strings.Contains(content, name) {
			t.Errorf("missing seed category %q", name)
		}
	}
	if !strings.Contains(content, "ON CONFLICT (name) DO NOTHING") {
		t.Error("seed must be idempotent")
	}
}
