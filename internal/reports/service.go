package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

// defaultSalesWindow is applied when the caller gives no range.
const defaultSalesWindow = 30 * 24 * time.Hour

// lowStockThreshold marks variants that need reordering.
const lowStockThreshold = 5

// SalesReport is the /reports/sales payload.
type SalesReport struct {
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	Days         []SalesRow      `json:"days"`
	InvoiceCount int64           `json:"invoiceCount"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// InventoryReport is the /reports/inventory payload.
type InventoryReport struct {
	GeneratedAt time.Time       `json:"generatedAt"`
	Items       []InventoryItem `json:"items"`
	StockValue  decimal.Decimal `json:"stockValue"`
	LowStock    int             `json:"lowStock"`
	OutOfStock  int             `json:"outOfStock"`
}

// InventoryItem decorates a stock row with reorder flags.
type InventoryItem struct {
	InventoryRow
	LowStock   bool `json:"lowStock"`
	OutOfStock bool `json:"outOfStock"`
}

// Service produces the reporting rollups.
type Service interface {
	Sales(ctx context.Context, from, to *time.Time) (*SalesReport, error)
	Inventory(ctx context.Context) (*InventoryReport, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// Option customizes the reports service.
type Option func(*service)

// WithNow overrides the clock, used by tests.
func WithNow(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService builds a reports service.
func NewService(repo Repository, opts ...Option) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	s := &service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *service) Sales(ctx context.Context, from, to *time.Time) (*SalesReport, error) {
	end := s.now().UTC()
	if to != nil {
		end = to.UTC()
	}
	start := end.Add(-defaultSalesWindow)
	if from != nil {
		start = from.UTC()
	}
	if !start.Before(end) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "report range start must precede end")
	}

	rows, err := s.repo.SalesByDay(ctx, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sales rollup")
	}

	report := &SalesReport{
		From:    start,
		To:      end,
		Days:    rows,
		Revenue: decimal.Zero,
	}
	for _, row := range rows {
		report.InvoiceCount += row.InvoiceCount
		report.Revenue = report.Revenue.Add(row.Revenue)
	}
	return report, nil
}

func (s *service) Inventory(ctx context.Context) (*InventoryReport, error) {
	rows, err := s.repo.InventoryPositions(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "inventory rollup")
	}

	report := &InventoryReport{
		GeneratedAt: s.now().UTC(),
		Items:       make([]InventoryItem, 0, len(rows)),
		StockValue:  decimal.Zero,
	}
	for _, row := range rows {
		item := InventoryItem{
			InventoryRow: row,
			OutOfStock:   row.StockQty == 0,
			LowStock:     row.StockQty > 0 && row.StockQty <= lowStockThreshold,
		}
		if item.OutOfStock {
			report.OutOfStock++
		}
		if item.LowStock {
			report.LowStock++
		}
		report.StockValue = report.StockValue.Add(row.StockValue)
		report.Items = append(report.Items, item)
	}
	return report, nil
}
