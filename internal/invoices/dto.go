package invoices

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// InvoiceDTO is the read model returned to controllers.
type InvoiceDTO struct {
	ID            uuid.UUID           `json:"id"`
	InvoiceNumber string              `json:"invoiceNumber"`
	CustomerID    *uuid.UUID          `json:"customerId,omitempty"`
	CustomerName  *string             `json:"customerName,omitempty"`
	CustomerPhone *string             `json:"customerPhone,omitempty"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	Discount      decimal.Decimal     `json:"discount"`
	Tax           decimal.Decimal     `json:"tax"`
	Total         decimal.Decimal     `json:"total"`
	PaymentMode   enums.PaymentMode   `json:"paymentMode"`
	Status        enums.InvoiceStatus `json:"status"`
	Items         []InvoiceItemDTO    `json:"items"`
	CreatedAt     time.Time           `json:"createdAt"`
}

// InvoiceListDTO is one page of invoices. NextCursor is set when more rows
// exist past this page.
type InvoiceListDTO struct {
	Items      []InvoiceDTO `json:"items"`
	NextCursor *string      `json:"nextCursor,omitempty"`
}

// InvoiceItemDTO is the read model for one sold line.
type InvoiceItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	InvoiceID uuid.UUID       `json:"invoiceId"`
	VariantID uuid.UUID       `json:"variantId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Total     decimal.Decimal `json:"total"`
}

func toInvoiceDTO(invoice *models.Invoice) *InvoiceDTO {
	dto := &InvoiceDTO{
		ID:            invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		CustomerID:    invoice.CustomerID,
		Subtotal:      invoice.Subtotal,
		Discount:      invoice.Discount,
		Tax:           invoice.Tax,
		Total:         invoice.Total,
		PaymentMode:   invoice.PaymentMode,
		Status:        invoice.Status,
		Items:         make([]InvoiceItemDTO, 0, len(invoice.Items)),
		CreatedAt:     invoice.CreatedAt,
	}
	if invoice.Customer != nil {
		dto.CustomerName = &invoice.Customer.Name
		dto.CustomerPhone = &invoice.Customer.Phone
	}
	for i := range invoice.Items {
		dto.Items = append(dto.Items, *toInvoiceItemDTO(&invoice.Items[i]))
	}
	return dto
}

func toInvoiceItemDTO(item *models.InvoiceItem) *InvoiceItemDTO {
	return &InvoiceItemDTO{
		ID:        item.ID,
		InvoiceID: item.InvoiceID,
		VariantID: item.VariantID,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
		Total:     item.Total,
	}
}
