package drafts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// DraftDTO is the read model returned to controllers. Customer name and phone
// are flattened from the joined customer row.
type DraftDTO struct {
	ID            uuid.UUID          `json:"id"`
	DraftNumber   string             `json:"draftNumber"`
	CustomerID    *uuid.UUID         `json:"customerId,omitempty"`
	CustomerName  *string            `json:"customerName,omitempty"`
	CustomerPhone *string            `json:"customerPhone,omitempty"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Discount      decimal.Decimal    `json:"discount"`
	Tax           decimal.Decimal    `json:"tax"`
	Total         decimal.Decimal    `json:"total"`
	PaymentMode   *enums.PaymentMode `json:"paymentMode,omitempty"`
	Status        enums.DraftStatus  `json:"status"`
	Items         []DraftItemDTO     `json:"items"`
	CreatedAt     time.Time          `json:"createdAt"`
}

// DraftItemDTO is the read model for one draft line.
type DraftItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	DraftID   uuid.UUID       `json:"draftId"`
	VariantID uuid.UUID       `json:"variantId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Total     decimal.Decimal `json:"total"`
}

func toDraftDTO(draft *models.InvoiceDraft) *DraftDTO {
	dto := &DraftDTO{
		ID:          draft.ID,
		DraftNumber: draft.DraftNumber,
		CustomerID:  draft.CustomerID,
		Subtotal:    draft.Subtotal,
		Discount:    draft.Discount,
		Tax:         draft.Tax,
		Total:       draft.Total,
		PaymentMode: draft.PaymentMode,
		Status:      draft.Status,
		Items:       make([]DraftItemDTO, 0, len(draft.Items)),
		CreatedAt:   draft.CreatedAt,
	}
	if draft.Customer != nil {
		dto.CustomerName = &draft.Customer.Name
		dto.CustomerPhone = &draft.Customer.Phone
	}
	for i := range draft.Items {
		dto.Items = append(dto.Items, *toDraftItemDTO(&draft.Items[i]))
	}
	return dto
}

func toDraftItemDTO(item *models.InvoiceDraftItem) *DraftItemDTO {
	return &DraftItemDTO{
		ID:        item.ID,
		DraftID:   item.DraftID,
		VariantID: item.VariantID,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
		Total:     item.Total,
	}
}
