package sequence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

// Scope names an independent counter namespace. Drafts and invoices never
// share serials.
type Scope string

const (
	ScopeDraft   Scope = "invoice_draft"
	ScopeInvoice Scope = "invoice"
)

// Prefix returns the document number prefix for the scope.
func (s Scope) Prefix() string {
	switch s {
	case ScopeInvoice:
		return "INV"
	default:
		return "DRAFT"
	}
}

// dateKeyLayout renders the day component. The day boundary is UTC: a draft
// created just before midnight UTC and one just after get different date parts.
const dateKeyLayout = "20060102"

// Store advances the per-(scope, day) counter. NextSerial must be atomic so
// racing callers get distinct serials.
type Store interface {
	NextSerial(ctx context.Context, tx *gorm.DB, scope Scope, dateKey string) (int64, error)
}

// Generator produces day-scoped document numbers like DRAFT-20250812-001.
// Serials start at 001 each day and are zero-padded to three digits; a day
// that overflows 999 keeps the fixed pad width and widens naturally (1000).
type Generator struct {
	store Store
	now   func() time.Time
}

// Option customizes a Generator.
type Option func(*Generator)

// WithNow overrides the clock, used by tests to pin the date part.
func WithNow(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGenerator builds a Generator backed by the provided store.
func NewGenerator(store Store, opts ...Option) (*Generator, error) {
	if store == nil {
		return nil, fmt.Errorf("sequence store required")
	}
	g := &Generator{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Next reserves the next serial for the scope's current UTC day and formats
// the document number. It must run inside the same transaction that inserts
// the numbered row; the number is never handed out without a committed
// counter increment backing it.
func (g *Generator) Next(ctx context.Context, tx *gorm.DB, scope Scope) (string, error) {
	dateKey := g.now().UTC().Format(dateKeyLayout)

	serial, err := g.store.NextSerial(ctx, tx, scope, dateKey)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeSequence, err, "advance number sequence")
	}
	if serial < 1 {
		return "", pkgerrors.New(pkgerrors.CodeSequence, fmt.Sprintf("sequence store returned non-positive serial %d", serial))
	}

	return Format(scope, dateKey, serial), nil
}

// Format renders a document number from its parts.
func Format(scope Scope, dateKey string, serial int64) string {
	return fmt.Sprintf("%s-%s-%03d", scope.Prefix(), dateKey, serial)
}
