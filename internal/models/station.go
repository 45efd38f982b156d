package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Station struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Address   string    `gorm:"size:500" json:"address"`
	City      string    `gorm:"size:120" json:"city"`
	Phone     string    `gorm:"size:50" json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *Station) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type Pump struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	StationID uuid.UUID `gorm:"type:char(36);index;not null" json:"stationId"`
	Number    int       `gorm:"not null" json:"number"`
	FuelType  string    `gorm:"size:50;not null" json:"fuelType"`
	Status    string    `gorm:"size:50;not null;default:active" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p *Pump) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type Tank struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	StationID    uuid.UUID `gorm:"type:char(36);index;not null" json:"stationId"`
	FuelType     string    `gorm:"size:50;not null" json:"fuelType"`
	Capacity     float64   `gorm:"type:decimal(12,2);not null" json:"capacity"`
	CurrentLevel float64   `gorm:"type:decimal(12,2);not null;default:0" json:"currentLevel"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (t *Tank) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
