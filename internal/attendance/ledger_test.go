package attendance

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yasminey01/station-manager-portal-sub000/internal/models"
)

// _txlock=immediate makes concurrent transactions serialize at BEGIN instead
// of deadlocking on lock upgrade, which mirrors how InnoDB behaves in
// production.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000&_txlock=immediate"
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.AutoMigrate(&models.Employee{}, &models.Attendance{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return database
}

func seedEmployee(t *testing.T, db *gorm.DB) models.Employee {
	t.Helper()
	employee := models.Employee{
		FirstName: "Amina",
		LastName:  "Berrada",
		Email:     "amina.berrada@example.com",
		Role:      "employee",
		HiredAt:   time.Date(2023, 1, 9, 0, 0, 0, 0, time.UTC),
	}
	if err := db.Create(&employee).Error; err != nil {
		t.Fatalf("seed employee: %v", err)
	}
	return employee
}

func loadRecord(t *testing.T, db *gorm.DB, employeeID uuid.UUID) models.Attendance {
	t.Helper()
	var record models.Attendance
	if err := db.Where("employee_id = ?", employeeID).First(&record).Error; err != nil {
		t.Fatalf("load attendance record: %v", err)
	}
	return record
}

func loadEmployee(t *testing.T, db *gorm.DB, employeeID uuid.UUID) models.Employee {
	t.Helper()
	var employee models.Employee
	if err := db.First(&employee, "id = ?", employeeID).Error; err != nil {
		t.Fatalf("load employee: %v", err)
	}
	return employee
}

func TestCheckInCreatesRecordAndMirror(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db, time.UTC)
	employee := seedEmployee(t, db)

	checkInAt := time.Date(2024, 3, 25, 8, 15, 0, 0, time.UTC)
	summary, err := ledger.CheckIn(employee.ID, checkInAt)
	if err != nil {
		t.Fatalf("check-in: %v", err)
	}

	if summary.EmployeeID != employee.ID {
		t.Errorf("summary employee = %s, want %s", summary.EmployeeID, employee.ID)
	}
	if !summary.IsPresent {
		t.Error("summary should report present")
	}
	if summary.FirstName != "Amina" || summary.Email != "amina.berrada@example.com" {
		t.Errorf("summary identity fields wrong: %+v", summary)
	}

	record := loadRecord(t, db, employee.ID)
	if record.Status != models.AttendanceStatusPresent {
		t.Errorf("status = %q, want present", record.Status)
	}
	if record.CheckIn == nil || !record.CheckIn.Equal(checkInAt) {
		t.Errorf("checkIn = %v, want %v", record.CheckIn, checkInAt)
	}
	if record.CheckOut != nil {
		t.Errorf("checkOut should be unset, got %v", record.CheckOut)
	}
	wantDay := time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC)
	if !record.Date.Equal(wantDay) {
		t.Errorf("date = %v, want %v", record.Date, wantDay)
	}

	mirror := loadEmployee(t, db, employee.ID)
	if !mirror.IsPresent {
		t.Error("mirror isPresent should be true")
	}
	if mirror.LastCheckIn == nil || !mirror.LastCheckIn.Equal(checkInAt) {
		t.Errorf("mirror lastCheckIn = %v, want %v", mirror.LastCheckIn, checkInAt)
	}
}

func TestCheckInTwiceSameDayRejected(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db, time.UTC)
	employee := seedEmployee(t, db)

	first := time.Date(2024, 3, 25, 8, 15, 0, 0, time.UTC)
	if _, err := ledger.CheckIn(employee.ID, first); err != nil {
		t.Fatalf("first check-in: %v", err)
	}

	second := time.Date(2024, 3, 25, 8, 20, 0, 0, time.UTC)
	if _, err := ledger.CheckIn(employee.ID, second); !errors.Is(err, ErrAlreadyCheckedIn) {
		t.Fatalf("second check-in err = %v, want ErrAlreadyCheckedIn", err)
	}

	record := loadRecord(t, db, employee.ID)
	if record.CheckIn == nil || !record.CheckIn.Equal(first) {
		t.Errorf("checkIn = %v, want unchanged %v", record.CheckIn, first)
	}
}

func TestCheckInNextDayCreatesNewRecord(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db, time.UTC)
	employee := seedEmployee(t, db)

	if _, err := ledger.CheckIn(employee.ID, time.Date(2024, 3, 25, 8, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("day one check-in: %v", err)
	}
	if _, err := ledger.CheckIn(employee.ID, time.Date(2024, 3, 26, 8, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("day two check-in: %v", err)
	}

	var count int64
	if err := db.Model(&models.Attendance{}).Where("employee_id = ?", employee.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("records = %d, want 2", count)
	}
}

func TestCheckOutClosesRecordAndMirror(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db, time.UTC)
	employee := seedEmployee(t, db)

	checkInAt := time.Date(2024, 3, 25, 8, 15, 0, 0, time.UTC)
	if _, err := ledger.CheckIn(employee.ID, checkInAt); err != nil {
		t.Fatalf("check-in: %v", err)
	}

	checkOutAt := time.Date(2024, 3, 25, 17, 5, 0, 0, time.UTC)
	summary, err := ledger.CheckOut(employee.ID, checkOutAt)
	if err != nil {
		t.Fatalf("check-out: %v", err)
	}
	if summary.IsPresent {
		t.Error("summary should report not present after check-out")
	}

	record := loadRecord(t, db, employee.ID)
	if record.CheckOut == nil || !record.CheckOut.Equal(checkOutAt) {
		t.Errorf("checkOut = %v, want %v", record.CheckOut, checkOutAt)
	}
	if record.Status != models.AttendanceStatusPresent {
		t.Errorf("status = %q, check-out must not change it", record.Status)
	}

	mirror := loadEmployee(t, db, employee.ID)
	if mirror.IsPresent {
		t.Error("mirror isPresent should be false")
	}
	if mirror.LastCheckOut == nil || !mirror.LastCheckOut.Equal(checkOutAt) {
		t.Errorf("mirror lastCheckOut = %v, want %v", mirror.LastCheckOut, checkOutAt)
	}
}

func TestCheckOutTwiceRejected(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db, time.UTC)
	employee := seedEmployee(t, db)

	if _, err := ledger.CheckIn(employee.ID, time.Date(2024, 3, 25, 8, 15, 0, 0, time.UTC)); err != nil {
		t.Fatalf("check-in: %v", err)
	}
	if _, err := ledger.CheckOut(employee.ID, time.Date(2024, 3, 25, 17, 5, 0, 0, time.UTC)); err != nil {
		t.Fatalf("check-out: %v", err)
	}
	if _, err := ledger.CheckOut(employee.ID, time.Date(2024, 3, 25, 18, 0, 0, 0, time.UTC)); !errors.Is(err, ErrAlreadyCheckedOut) {
		t.Fatalf("second check-out err = %v, want ErrAlreadyCheckedOut", err)
	}
}

func TestCheckOutWithoutCheckInRejected(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db, time.UTC)
	employee := seedEmployee(t, db)

	if _, err := ledger.CheckOut(employee.ID, time.Date(2024, 3, 25, 17, 0, 0, 0, time.UTC)); !errors.Is(err, ErrNoCheckInFound) {
		t.Fatalf("check-out err = %v, want ErrNoCheckInFound", err)
	}
}

func TestCheckOutOnPremarkedDayRejected(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db, time.UTC)
	employee := seedEmployee(t, db)

	// A manually pre-marked absent day has a row but no check-in.
	premarked := models.Attendance{
		EmployeeID: employee.ID,
		Date:       time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC),
		Status:     models.AttendanceStatusAbsent,
	}
	if err := db.Create(&premarked).Error; err != nil {
		t.Fatalf("seed premarked day: %v", err)
	}

	if _, err := ledger.CheckOut(employee.ID, time.Date(2024, 3, 25, 17, 0, 0, 0, time.UTC)); !errors.Is(err, ErrNoCheckInFound) {
		t.Fatalf("check-out err = %v, want ErrNoCheckInFound", err)
	}
}

func TestCheckInOpensPremarkedDay(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db, time.UTC)
	employee := seedEmployee(t, db)

	premarked := models.Attendance{
		EmployeeID: employee.ID,
		Date:       time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC),
		Status:     models.AttendanceStatusAbsent,
	}
	if err := db.Create(&premarked).Error; err != nil {
		t.Fatalf("seed premarked day: %v", err)
	}

	checkInAt := time.Date(2024, 3, 25, 9, 30, 0, 0, time.UTC)
	if _, err := ledger.CheckIn(employee.ID, checkInAt); err != nil {
		t.Fatalf("check-in: %v", err)
	}

	var count int64
	if err := db.Model(&models.Attendance{}).Where("employee_id = ?", employee.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("records = %d, want the premarked row reused", count)
	}

	record := loadRecord(t, db, employee.ID)
	if record.ID != premarked.ID {
		t.Error("check-in must reuse the existing row")
	}
	if record.Status != models.AttendanceStatusPresent {
		t.Errorf("status = %q, want present", record.Status)
	}
	if record.CheckIn == nil || !record.CheckIn.Equal(checkInAt) {
		t.Errorf("checkIn = %v, want %v", record.CheckIn, checkInAt)
	}
}

func TestCheckInUnknownEmployee(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db, time.UTC)

	if _, err := ledger.CheckIn(uuid.New(), time.Now()); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("check-in err = %v, want ErrEmployeeNotFound", err)
	}
}

func TestConcurrentCheckInExactlyOneSucceeds(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db, time.UTC)
	employee := seedEmployee(t, db)

	at := time.Date(2024, 3, 25, 8, 0, 0, 0, time.UTC)
	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, results[slot] = ledger.CheckIn(employee.ID, at)
		}(i)
	}
	wg.Wait()

	successes := 0
	conflicts := 0
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrAlreadyCheckedIn):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || conflicts != 1 {
		t.Fatalf("successes = %d, conflicts = %d, want exactly one of each", successes, conflicts)
	}

	var count int64
	if err := db.Model(&models.Attendance{}).Where("employee_id = ?", employee.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("records = %d, want 1", count)
	}
}

func TestDayOfUsesReferenceTimezone(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	ledger := NewLedger(nil, loc)

	// 02:00 UTC is still the previous day at UTC-5.
	at := time.Date(2024, 3, 25, 2, 0, 0, 0, time.UTC)
	day := ledger.DayOf(at)

	want := time.Date(2024, 3, 24, 0, 0, 0, 0, loc)
	if !day.Equal(want) {
		t.Errorf("DayOf = %v, want %v", day, want)
	}
}

func TestListOrderingAndRange(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db, time.UTC)
	employee := seedEmployee(t, db)

	for day := 24; day <= 27; day++ {
		checkInAt := time.Date(2024, 3, day, 8, 0, 0, 0, time.UTC)
		if _, err := ledger.CheckIn(employee.ID, checkInAt); err != nil {
			t.Fatalf("check-in day %d: %v", day, err)
		}
	}

	all, err := ledger.List(employee.ID, nil, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("records = %d, want 4", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Date.After(all[i-1].Date) {
			t.Fatalf("records not ordered by date descending: %v before %v", all[i-1].Date, all[i].Date)
		}
	}

	from := time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 26, 0, 0, 0, 0, time.UTC)
	window, err := ledger.List(employee.ID, &from, &to)
	if err != nil {
		t.Fatalf("list window: %v", err)
	}
	if len(window) != 2 {
		t.Fatalf("windowed records = %d, want 2 (bounds inclusive)", len(window))
	}
	if !window[0].Date.Equal(to) || !window[1].Date.Equal(from) {
		t.Errorf("window = [%v, %v], want [%v, %v]", window[0].Date, window[1].Date, to, from)
	}
}
