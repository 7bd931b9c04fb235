package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type stockRow struct {
	ID       int
	Name     string
	Quantity int
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&stockRow{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	conn := newTestDB(t)
	client := NewWithConn(conn)

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&stockRow{Name: "milk", Quantity: 10}).Error
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}

	var count int64
	if err := conn.Model(&stockRow{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row after commit, got %d", count)
	}
}

func TestWithTxRollsBackEveryWrite(t *testing.T) {
	conn := newTestDB(t)
	client := NewWithConn(conn)

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&stockRow{Name: "milk", Quantity: 10}).Error; err != nil {
			return err
		}
		if err := tx.Create(&stockRow{Name: "bread", Quantity: 5}).Error; err != nil {
			return err
		}
		return errors.New("stock check failed")
	})
	if err == nil {
		t.Fatal("expected WithTx to surface the callback error")
	}

	var count int64
	if err := conn.Model(&stockRow{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rollback to drop both rows, got %d", count)
	}
}

func TestPing(t *testing.T) {
	client := NewWithConn(newTestDB(t))
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}
