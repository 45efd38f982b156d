// Package attendance owns the daily check-in/check-out protocol: at most one
// attendance record per employee per calendar day, check-out only after
// check-in, and the presence mirror on the employee row kept in step with the
// ledger inside a single transaction.
package attendance

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yasminey01/station-manager-portal-sub000/internal/models"
)

var (
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrAlreadyCheckedIn  = errors.New("already checked in today")
	ErrAlreadyCheckedOut = errors.New("already checked out today")
	ErrNoCheckInFound    = errors.New("no check-in found for today")
)

// PresenceSummary is the employee-facing result of a check-in or check-out.
type PresenceSummary struct {
	EmployeeID uuid.UUID `json:"idEmployee"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsPresent  bool      `json:"isPresent"`
}

// Ledger enforces the attendance invariants on top of the shared database.
// The reference timezone is fixed per deployment so that "today" does not
// depend on the caller's locale.
type Ledger struct {
	db  *gorm.DB
	loc *time.Location
}

func NewLedger(db *gorm.DB, loc *time.Location) *Ledger {
	if loc == nil {
		loc = time.UTC
	}
	return &Ledger{db: db, loc: loc}
}

// DayOf truncates t to midnight in the reference timezone.
func (l *Ledger) DayOf(t time.Time) time.Time {
	local := t.In(l.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, l.loc)
}

// CheckIn opens today's attendance record for the employee. The record is
// created lazily; if a row for the day already exists with its check-in set,
// the call fails with ErrAlreadyCheckedIn and nothing is mutated. Creation
// races are resolved by the unique (employee_id, date) index: the losing
// writer observes the duplicate key, re-reads under a row lock, and reports
// the conflict.
func (l *Ledger) CheckIn(employeeID uuid.UUID, now time.Time) (PresenceSummary, error) {
	day := l.DayOf(now)
	var summary PresenceSummary

	err := l.db.Transaction(func(tx *gorm.DB) error {
		employee, err := findEmployee(tx, employeeID)
		if err != nil {
			return err
		}

		record := models.Attendance{
			EmployeeID: employeeID,
			Date:       day,
			Status:     models.AttendanceStatusPresent,
			CheckIn:    &now,
		}
		if err := tx.Create(&record).Error; err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("create attendance: %w", err)
			}
			// Locking read: a plain read under REPEATABLE READ still sees the
			// snapshot taken before the winner committed and would miss the row
			// that just caused the duplicate key.
			var existing models.Attendance
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("employee_id = ? AND date = ?", employeeID, day).
				First(&existing).Error; err != nil {
				return fmt.Errorf("load attendance: %w", err)
			}
			if existing.CheckIn != nil {
				return ErrAlreadyCheckedIn
			}
			// Day was pre-marked (e.g. absent) without a check-in; open it.
			existing.CheckIn = &now
			existing.Status = models.AttendanceStatusPresent
			if err := tx.Save(&existing).Error; err != nil {
				return fmt.Errorf("update attendance: %w", err)
			}
		}

		if err := updateMirror(tx, employeeID, map[string]any{
			"is_present":    true,
			"last_check_in": now,
		}); err != nil {
			return err
		}

		summary = summarize(employee, true)
		return nil
	})

	return summary, err
}

// CheckOut closes today's attendance record. It fails with ErrNoCheckInFound
// when no open check-in exists for the day and with ErrAlreadyCheckedOut when
// the record is already closed.
func (l *Ledger) CheckOut(employeeID uuid.UUID, now time.Time) (PresenceSummary, error) {
	day := l.DayOf(now)
	var summary PresenceSummary

	err := l.db.Transaction(func(tx *gorm.DB) error {
		employee, err := findEmployee(tx, employeeID)
		if err != nil {
			return err
		}

		var record models.Attendance
		if err := tx.Where("employee_id = ? AND date = ?", employeeID, day).
			First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoCheckInFound
			}
			return fmt.Errorf("load attendance: %w", err)
		}
		if record.CheckIn == nil {
			return ErrNoCheckInFound
		}
		if record.CheckOut != nil {
			return ErrAlreadyCheckedOut
		}

		record.CheckOut = &now
		if err := tx.Save(&record).Error; err != nil {
			return fmt.Errorf("update attendance: %w", err)
		}

		if err := updateMirror(tx, employeeID, map[string]any{
			"is_present":     false,
			"last_check_out": now,
		}); err != nil {
			return err
		}

		summary = summarize(employee, false)
		return nil
	})

	return summary, err
}

// List returns the employee's attendance records ordered by date descending.
// from and to bound the window inclusively; either may be nil.
func (l *Ledger) List(employeeID uuid.UUID, from, to *time.Time) ([]models.Attendance, error) {
	query := l.db.Where("employee_id = ?", employeeID)
	if from != nil {
		query = query.Where("date >= ?", l.DayOf(*from))
	}
	if to != nil {
		query = query.Where("date <= ?", l.DayOf(*to))
	}

	var records []models.Attendance
	if err := query.Order("date desc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

func findEmployee(tx *gorm.DB, employeeID uuid.UUID) (models.Employee, error) {
	var employee models.Employee
	if err := tx.First(&employee, "id = ?", employeeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return employee, ErrEmployeeNotFound
		}
		return employee, fmt.Errorf("load employee: %w", err)
	}
	return employee, nil
}

func updateMirror(tx *gorm.DB, employeeID uuid.UUID, fields map[string]any) error {
	if err := tx.Model(&models.Employee{}).
		Where("id = ?", employeeID).
		Updates(fields).Error; err != nil {
		return fmt.Errorf("update presence mirror: %w", err)
	}
	return nil
}

func summarize(employee models.Employee, present bool) PresenceSummary {
	return PresenceSummary{
		EmployeeID: employee.ID,
		FirstName:  employee.FirstName,
		LastName:   employee.LastName,
		Email:      employee.Email,
		Role:       employee.Role,
		IsPresent:  present,
	}
}
