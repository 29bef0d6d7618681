package db

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type txProbe struct {
	ID    int
	Label string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&txProbe{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestWithTxCommitsAndRollsBack(t *testing.T) {
	conn := newTestDB(t)
	client := &Client{conn: conn}

	ctx := context.Background()
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&txProbe{Label: "committed"}).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}

	var count int64
	if err := conn.Model(&txProbe{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record, got %d", count)
	}

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&txProbe{Label: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to return an error")
	}
	if err := conn.Model(&txProbe{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed after rollback: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected rollback to leave 1 record, got %d", count)
	}
}

func TestPing(t *testing.T) {
	conn := newTestDB(t)
	client := &Client{conn: conn}
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error should never be a unique violation")
	}
	pgErr := errors.New(`duplicate key value violates unique constraint "ux_quote_responses_accepted"`)
	if !IsUniqueViolation(pgErr, "") {
		t.Fatal("expected generic duplicate key detection")
	}
	if !IsUniqueViolation(pgErr, "ux_quote_responses_accepted") {
		t.Fatal("expected constraint-name detection")
	}
	if IsUniqueViolation(pgErr, "ux_private_prices_product_party") {
		t.Fatal("unexpected match for different constraint")
	}
	sqliteErr := errors.New("UNIQUE constraint failed: quote_responses.quote_request_id")
	if !IsUniqueViolation(sqliteErr, "") {
		t.Fatal("expected sqlite unique violation detection")
	}
}
