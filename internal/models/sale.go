package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Sale struct {
	ID            uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	StationID     uuid.UUID `gorm:"type:char(36);index;not null" json:"stationId"`
	EmployeeID    uuid.UUID `gorm:"type:char(36);index;not null" json:"employeeId"`
	ProductID     uuid.UUID `gorm:"type:char(36);index;not null" json:"productId"`
	Quantity      float64   `gorm:"type:decimal(12,3);not null" json:"quantity"`
	UnitPrice     float64   `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
	Total         float64   `gorm:"type:decimal(12,2);not null" json:"total"`
	PaymentMethod string    `gorm:"size:50;not null;default:cash" json:"paymentMethod"`
	SoldAt        time.Time `gorm:"index;not null" json:"soldAt"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type StockEntry struct {
	ID         uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	ProductID  uuid.UUID  `gorm:"type:char(36);index;not null" json:"productId"`
	SupplierID uuid.UUID  `gorm:"type:char(36);index;not null" json:"supplierId"`
	TankID     *uuid.UUID `gorm:"type:char(36);index" json:"tankId,omitempty"`
	Quantity   float64    `gorm:"type:decimal(12,3);not null" json:"quantity"`
	UnitCost   float64    `gorm:"type:decimal(12,2);not null" json:"unitCost"`
	ReceivedAt time.Time  `gorm:"index;not null" json:"receivedAt"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (e *StockEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
