package inventory

import (
	"time"

	"github.com/bizgrid/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockMovementRequest records a manual stock movement. Adjustments are signed;
// in and out quantities must be positive.
type StockMovementRequest struct {
	OrgProductID uuid.UUID       `json:"org_product_id" binding:"required"`
	Type         string          `json:"type" binding:"required,oneof=in out adjustment"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
	Note         string          `json:"note" binding:"max=500"`
}

// RegisterSerialsRequest adds serial units of a serial-tracked product to stock
type RegisterSerialsRequest struct {
	OrgProductID uuid.UUID `json:"org_product_id" binding:"required"`
	Serials      []string  `json:"serials" binding:"required,min=1,max=500,dive,required,max=100"`
	Note         string    `json:"note" binding:"max=500"`
}

// LedgerEntryResponse represents a stock ledger entry
type LedgerEntryResponse struct {
	ID           uuid.UUID       `json:"id"`
	OrgProductID uuid.UUID       `json:"org_product_id"`
	MovementType string          `json:"movement_type"`
	Quantity     decimal.Decimal `json:"quantity"`
	SourceType   string          `json:"source_type"`
	SourceID     *uuid.UUID      `json:"source_id,omitempty"`
	Note         string          `json:"note,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToLedgerEntryResponse converts a ledger entry
func ToLedgerEntryResponse(e *inventory.StockLedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:           e.ID,
		OrgProductID: e.OrgProductID,
		MovementType: string(e.MovementType),
		Quantity:     e.Quantity,
		SourceType:   string(e.SourceType),
		SourceID:     e.SourceID,
		Note:         e.Note,
		CreatedAt:    e.CreatedAt,
	}
}

// RegisterSerialsResponse reports the registered units and the resulting stock entry
type RegisterSerialsResponse struct {
	Registered []string            `json:"registered"`
	Entry      LedgerEntryResponse `json:"entry"`
}

// StockLevelResponse is the on-hand position of one product
type StockLevelResponse struct {
	OrgProductID     uuid.UUID       `json:"org_product_id"`
	TrackingMode     string          `json:"tracking_mode"`
	OnHand           decimal.Decimal `json:"on_hand"`
	AvailableSerials *int64          `json:"available_serials,omitempty"`
}
