package inventory

import (
	"strings"
	"time"

	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SerialStatus is the state of a serial-tracked unit
type SerialStatus string

const (
	SerialAvailable SerialStatus = "available"
	SerialSold      SerialStatus = "sold"
)

// SerialUnit is one physical unit of a serial-tracked product
type SerialUnit struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_serial_unit_number,priority:1"`
	OrgProductID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_serial_unit_number,priority:2"`
	SerialNumber string       `gorm:"type:varchar(100);not null;uniqueIndex:idx_serial_unit_number,priority:3"`
	Status       SerialStatus `gorm:"type:varchar(20);not null;default:'available';index"`
	InvoiceID    *uuid.UUID   `gorm:"type:uuid;index"`
	CreatedAt    time.Time    `gorm:"not null"`
	UpdatedAt    time.Time    `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SerialUnit) TableName() string {
	return "serial_units"
}

// NormalizeSerial trims and upper-cases a serial number
func NormalizeSerial(serial string) string {
	return strings.ToUpper(strings.TrimSpace(serial))
}

// NewSerialUnit registers an available unit
func NewSerialUnit(tenantID, productID uuid.UUID, serial string) (*SerialUnit, error) {
	serial = NormalizeSerial(serial)
	if serial == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Serial number cannot be empty")
	}
	if len(serial) > 100 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Serial number cannot exceed 100 characters")
	}
	now := time.Now()
	return &SerialUnit{
		ID:           uuid.New(),
		TenantID:     tenantID,
		OrgProductID: productID,
		SerialNumber: serial,
		Status:       SerialAvailable,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// IsAvailable reports whether the unit can be sold
func (u *SerialUnit) IsAvailable() bool {
	return u.Status == SerialAvailable
}
