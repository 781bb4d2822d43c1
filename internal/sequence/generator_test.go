package sequence

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

type fakeStore struct {
	serials map[string]int64
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{serials: map[string]int64{}}
}

func (f *fakeStore) NextSerial(_ context.Context, _ *gorm.DB, scope Scope, dateKey string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	key := string(scope) + "|" + dateKey
	f.serials[key]++
	return f.serials[key], nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewGeneratorRequiresStore(t *testing.T) {
	if _, err := NewGenerator(nil); err == nil {
		t.Fatal("expected error creating generator without store")
	}
}

func TestNextFormatsDraftNumbers(t *testing.T) {
	at := time.Date(2025, 8, 12, 10, 30, 0, 0, time.UTC)
	gen, err := NewGenerator(newFakeStore(), WithNow(fixedClock(at)))
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	want := []string{"DRAFT-20250812-001", "DRAFT-20250812-002", "DRAFT-20250812-003"}
	for i, expected := range want {
		got, err := gen.Next(context.Background(), &gorm.DB{}, ScopeDraft)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		if got != expected {
			t.Fatalf("expected %q got %q", expected, got)
		}
	}
}

func TestNextScopesAreIndependent(t *testing.T) {
	at := time.Date(2025, 8, 12, 10, 30, 0, 0, time.UTC)
	gen, err := NewGenerator(newFakeStore(), WithNow(fixedClock(at)))
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	draft, err := gen.Next(context.Background(), &gorm.DB{}, ScopeDraft)
	if err != nil {
		t.Fatalf("draft next: %v", err)
	}
	invoice, err := gen.Next(context.Background(), &gorm.DB{}, ScopeInvoice)
	if err != nil {
		t.Fatalf("invoice next: %v", err)
	}

	if draft != "DRAFT-20250812-001" {
		t.Fatalf("unexpected draft number %q", draft)
	}
	if invoice != "INV-20250812-001" {
		t.Fatalf("invoice counter must not share the draft namespace, got %q", invoice)
	}
}

func TestNextRollsOverAtUTCMidnight(t *testing.T) {
	store := newFakeStore()
	beforeMidnight := time.Date(2025, 8, 12, 23, 59, 59, 0, time.UTC)
	afterMidnight := time.Date(2025, 8, 13, 0, 0, 1, 0, time.UTC)

	clock := beforeMidnight
	gen, err := NewGenerator(store, WithNow(func() time.Time { return clock }))
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	first, err := gen.Next(context.Background(), &gorm.DB{}, ScopeDraft)
	if err != nil {
		t.Fatalf("next before midnight: %v", err)
	}
	clock = afterMidnight
	second, err := gen.Next(context.Background(), &gorm.DB{}, ScopeDraft)
	if err != nil {
		t.Fatalf("next after midnight: %v", err)
	}

	if first != "DRAFT-20250812-001" {
		t.Fatalf("unexpected pre-midnight number %q", first)
	}
	if second != "DRAFT-20250813-001" {
		t.Fatalf("new day must restart at 001, got %q", second)
	}
}

func TestNextNonUTCClockStillUsesUTCDate(t *testing.T) {
	// 2025-08-12 23:30 at UTC-5 is already 2025-08-13 in UTC.
	loc := time.FixedZone("UTC-5", -5*60*60)
	at := time.Date(2025, 8, 12, 23, 30, 0, 0, loc)
	gen, err := NewGenerator(newFakeStore(), WithNow(fixedClock(at)))
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	got, err := gen.Next(context.Background(), &gorm.DB{}, ScopeDraft)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if got != "DRAFT-20250813-001" {
		t.Fatalf("expected UTC date part, got %q", got)
	}
}

func TestNextWidensPastThreeDigits(t *testing.T) {
	store := newFakeStore()
	at := time.Date(2025, 8, 12, 10, 0, 0, 0, time.UTC)
	store.serials[string(ScopeDraft)+"|20250812"] = 999

	gen, err := NewGenerator(store, WithNow(fixedClock(at)))
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	got, err := gen.Next(context.Background(), &gorm.DB{}, ScopeDraft)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if got != "DRAFT-20250812-1000" {
		t.Fatalf("serial past 999 should widen, got %q", got)
	}
}

func TestNextWrapsStoreErrors(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("connection reset")
	gen, err := NewGenerator(store)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	_, gotErr := gen.Next(context.Background(), &gorm.DB{}, ScopeDraft)
	if gotErr == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(gotErr)
	if typed == nil || typed.Code() != pkgerrors.CodeSequence {
		t.Fatalf("expected sequence error code, got %v", gotErr)
	}
	if !pkgerrors.MetadataFor(typed.Code()).Retryable {
		t.Fatal("sequence errors must be retryable")
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		scope  Scope
		serial int64
		want   string
	}{
		{ScopeDraft, 1, "DRAFT-20250101-001"},
		{ScopeDraft, 42, "DRAFT-20250101-042"},
		{ScopeInvoice, 7, "INV-20250101-007"},
		{ScopeInvoice, 1234, "INV-20250101-1234"},
	}
	for _, tc := range cases {
		if got := Format(tc.scope, "20250101", tc.serial); got != tc.want {
			t.Fatalf("Format(%s, %d): expected %q got %q", tc.scope, tc.serial, tc.want, got)
		}
	}
}
