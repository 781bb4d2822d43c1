package sequence

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
)

func newStoreTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.NumberSequence{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Exec("DELETE FROM number_sequences").Error
	})
	return conn
}

func TestNextSerialStartsAtOneAndIncrements(t *testing.T) {
	conn := newStoreTestDB(t)
	store := NewGormStore()
	ctx := context.Background()

	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	for want := int64(1); want <= 3; want++ {
		serial, err := store.NextSerial(ctx, tx, ScopeDraft, "20250812")
		if err != nil {
			t.Fatalf("next serial: %v", err)
		}
		if serial != want {
			t.Fatalf("expected serial %d, got %d", want, serial)
		}
	}
}

func TestNextSerialIsolatesScopesAndDays(t *testing.T) {
	conn := newStoreTestDB(t)
	store := NewGormStore()
	ctx := context.Background()

	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	if serial, err := store.NextSerial(ctx, tx, ScopeDraft, "20250812"); err != nil || serial != 1 {
		t.Fatalf("draft day one: serial=%d err=%v", serial, err)
	}
	if serial, err := store.NextSerial(ctx, tx, ScopeInvoice, "20250812"); err != nil || serial != 1 {
		t.Fatalf("invoice scope must not share the draft counter: serial=%d err=%v", serial, err)
	}
	if serial, err := store.NextSerial(ctx, tx, ScopeDraft, "20250813"); err != nil || serial != 1 {
		t.Fatalf("next day must restart at one: serial=%d err=%v", serial, err)
	}
	if serial, err := store.NextSerial(ctx, tx, ScopeDraft, "20250812"); err != nil || serial != 2 {
		t.Fatalf("original day counter must continue: serial=%d err=%v", serial, err)
	}
}

func TestNextSerialRequiresTransaction(t *testing.T) {
	store := NewGormStore()
	if _, err := store.NextSerial(context.Background(), nil, ScopeDraft, "20250812"); err == nil {
		t.Fatal("expected error without a transaction")
	}
}
