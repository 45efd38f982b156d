package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AttendanceStatusAbsent  = "absent"
	AttendanceStatusPresent = "present"
	AttendanceStatusLate    = "late"
)

// Attendance holds at most one row per (employee, calendar day); the
// composite unique index is what makes concurrent check-ins safe.
type Attendance struct {
	ID         uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	EmployeeID uuid.UUID  `gorm:"type:char(36);not null;uniqueIndex:idx_attendance_employee_day" json:"employeeId"`
	Date       time.Time  `gorm:"not null;uniqueIndex:idx_attendance_employee_day" json:"date"`
	Status     string     `gorm:"size:20;not null;default:absent" json:"status"`
	CheckIn    *time.Time `json:"checkIn,omitempty"`
	CheckOut   *time.Time `json:"checkOut,omitempty"`
	Comments   string     `gorm:"size:500" json:"comments"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (a *Attendance) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
