package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yasminey01/station-manager-portal-sub000/internal/attendance"
	"github.com/yasminey01/station-manager-portal-sub000/internal/middleware"
	"github.com/yasminey01/station-manager-portal-sub000/internal/models"
	"github.com/yasminey01/station-manager-portal-sub000/internal/utils"
)

const testSecret = "test-secret"

type attendanceEnv struct {
	db     *gorm.DB
	router *gin.Engine
	ledger *attendance.Ledger
}

func newAttendanceEnv(t *testing.T) attendanceEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	ledger := attendance.NewLedger(database, time.UTC)
	handler := NewAttendanceHandler(database, ledger)

	router := gin.New()
	api := router.Group("/api")
	api.Use(middleware.AuthRequired(testSecret))
	api.GET("/attendance", middleware.RequireAnyRole("admin", "manager", "employee"), handler.List)
	api.POST("/attendance/checkin", middleware.RequireAnyRole("admin", "manager", "employee"), handler.CheckIn)
	api.POST("/attendance/checkout", middleware.RequireAnyRole("admin", "manager", "employee"), handler.CheckOut)
	api.PATCH("/attendance/:id", middleware.RequireAnyRole("admin", "manager"), handler.Update)
	api.DELETE("/attendance/:id", middleware.RequireAnyRole("admin", "manager"), handler.Delete)

	return attendanceEnv{db: database, router: router, ledger: ledger}
}

func (env attendanceEnv) seedEmployee(t *testing.T, email string) models.Employee {
	t.Helper()
	employee := models.Employee{
		FirstName: "Karim",
		LastName:  "Alaoui",
		Email:     email,
		Role:      "employee",
		HiredAt:   time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := env.db.Create(&employee).Error; err != nil {
		t.Fatalf("seed employee: %v", err)
	}
	return employee
}

func tokenFor(t *testing.T, role, employeeID string) string {
	t.Helper()
	token, err := utils.GenerateAccessToken(uuid.NewString(), role, employeeID, testSecret, 15)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func (env attendanceEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestCheckInRequiresAuth(t *testing.T) {
	env := newAttendanceEnv(t)

	rec := env.do(t, http.MethodPost, "/api/attendance/checkin", "", `{}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestEmployeeCheckInAndOut(t *testing.T) {
	env := newAttendanceEnv(t)
	employee := env.seedEmployee(t, "karim.alaoui@example.com")
	token := tokenFor(t, "employee", employee.ID.String())

	rec := env.do(t, http.MethodPost, "/api/attendance/checkin", token, `{}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("check-in status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}

	var summary attendance.PresenceSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.EmployeeID != employee.ID {
		t.Errorf("summary employee = %s, want %s", summary.EmployeeID, employee.ID)
	}
	if !summary.IsPresent {
		t.Error("summary should report present")
	}

	rec = env.do(t, http.MethodPost, "/api/attendance/checkout", token, `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("check-out status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.IsPresent {
		t.Error("summary should report not present after check-out")
	}
}

func TestCheckInWithoutBodyAllowed(t *testing.T) {
	env := newAttendanceEnv(t)
	employee := env.seedEmployee(t, "karim.alaoui@example.com")
	token := tokenFor(t, "employee", employee.ID.String())

	rec := env.do(t, http.MethodPost, "/api/attendance/checkin", token, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("check-in status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/api/attendance/checkout", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("check-out status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
}

func TestDuplicateCheckInConflicts(t *testing.T) {
	env := newAttendanceEnv(t)
	employee := env.seedEmployee(t, "karim.alaoui@example.com")
	token := tokenFor(t, "employee", employee.ID.String())

	if rec := env.do(t, http.MethodPost, "/api/attendance/checkin", token, `{}`); rec.Code != http.StatusCreated {
		t.Fatalf("first check-in status = %d, want 201", rec.Code)
	}
	rec := env.do(t, http.MethodPost, "/api/attendance/checkin", token, `{}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second check-in status = %d, want 409, body %s", rec.Code, rec.Body.String())
	}
}

func TestCheckOutWithoutCheckInConflicts(t *testing.T) {
	env := newAttendanceEnv(t)
	employee := env.seedEmployee(t, "karim.alaoui@example.com")
	token := tokenFor(t, "employee", employee.ID.String())

	rec := env.do(t, http.MethodPost, "/api/attendance/checkout", token, `{}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409, body %s", rec.Code, rec.Body.String())
	}
}

func TestAdminCheckInNamesTarget(t *testing.T) {
	env := newAttendanceEnv(t)
	employee := env.seedEmployee(t, "karim.alaoui@example.com")
	token := tokenFor(t, "admin", "")

	rec := env.do(t, http.MethodPost, "/api/attendance/checkin", token, `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("no target status = %d, want 400", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/attendance/checkin", token, `{"employeeId":"`+employee.ID.String()+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}
}

func TestCheckInUnknownEmployeeNotFound(t *testing.T) {
	env := newAttendanceEnv(t)
	token := tokenFor(t, "admin", "")

	rec := env.do(t, http.MethodPost, "/api/attendance/checkin", token, `{"employeeId":"`+uuid.NewString()+`"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404, body %s", rec.Code, rec.Body.String())
	}
}

func TestEmployeeListScopedToSelf(t *testing.T) {
	env := newAttendanceEnv(t)
	self := env.seedEmployee(t, "karim.alaoui@example.com")
	other := env.seedEmployee(t, "amina.berrada@example.com")

	if _, err := env.ledger.CheckIn(self.ID, time.Now()); err != nil {
		t.Fatalf("seed self check-in: %v", err)
	}
	if _, err := env.ledger.CheckIn(other.ID, time.Now()); err != nil {
		t.Fatalf("seed other check-in: %v", err)
	}

	token := tokenFor(t, "employee", self.ID.String())
	// Asking for someone else's records is ignored for employees.
	rec := env.do(t, http.MethodGet, "/api/attendance?employeeId="+other.ID.String(), token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	var records []models.Attendance
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("decode records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if records[0].EmployeeID != self.ID {
		t.Errorf("record employee = %s, want self %s", records[0].EmployeeID, self.ID)
	}
}

func TestAdminListAllWithDateRange(t *testing.T) {
	env := newAttendanceEnv(t)
	first := env.seedEmployee(t, "karim.alaoui@example.com")
	second := env.seedEmployee(t, "amina.berrada@example.com")

	if _, err := env.ledger.CheckIn(first.ID, time.Now()); err != nil {
		t.Fatalf("seed check-in: %v", err)
	}
	if _, err := env.ledger.CheckIn(second.ID, time.Now()); err != nil {
		t.Fatalf("seed check-in: %v", err)
	}

	token := tokenFor(t, "admin", "")
	rec := env.do(t, http.MethodGet, "/api/attendance", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var records []models.Attendance
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("decode records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}

	rec = env.do(t, http.MethodGet, "/api/attendance?startDate=2030-01-01", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("ranged status = %d, want 200", rec.Code)
	}
	records = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("decode records: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("future range records = %d, want 0", len(records))
	}

	rec = env.do(t, http.MethodGet, "/api/attendance?startDate=01/02/2030", token, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad date status = %d, want 400", rec.Code)
	}
}

func TestAdminListSameDayStableOrder(t *testing.T) {
	env := newAttendanceEnv(t)
	first := env.seedEmployee(t, "karim.alaoui@example.com")
	second := env.seedEmployee(t, "amina.berrada@example.com")

	if _, err := env.ledger.CheckIn(first.ID, time.Now()); err != nil {
		t.Fatalf("seed check-in: %v", err)
	}
	if _, err := env.ledger.CheckIn(second.ID, time.Now()); err != nil {
		t.Fatalf("seed check-in: %v", err)
	}

	token := tokenFor(t, "admin", "")
	rec := env.do(t, http.MethodGet, "/api/attendance", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var records []models.Attendance
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("decode records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	// Same day, so the later-created row must come first.
	if records[0].EmployeeID != second.ID || records[1].EmployeeID != first.ID {
		t.Errorf("order = [%s, %s], want [%s, %s]",
			records[0].EmployeeID, records[1].EmployeeID, second.ID, first.ID)
	}
}

func TestUpdateRequiresAdminRole(t *testing.T) {
	env := newAttendanceEnv(t)
	employee := env.seedEmployee(t, "karim.alaoui@example.com")
	if _, err := env.ledger.CheckIn(employee.ID, time.Now()); err != nil {
		t.Fatalf("seed check-in: %v", err)
	}
	var record models.Attendance
	if err := env.db.Where("employee_id = ?", employee.ID).First(&record).Error; err != nil {
		t.Fatalf("load record: %v", err)
	}

	employeeToken := tokenFor(t, "employee", employee.ID.String())
	rec := env.do(t, http.MethodPatch, "/api/attendance/"+record.ID.String(), employeeToken, `{"status":"late"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("employee patch status = %d, want 403", rec.Code)
	}

	adminToken := tokenFor(t, "admin", "")
	rec = env.do(t, http.MethodPatch, "/api/attendance/"+record.ID.String(), adminToken, `{"status":"late","comments":"arrived after shift start"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin patch status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	var updated models.Attendance
	if err := env.db.First(&updated, "id = ?", record.ID).Error; err != nil {
		t.Fatalf("reload record: %v", err)
	}
	if updated.Status != models.AttendanceStatusLate {
		t.Errorf("status = %q, want late", updated.Status)
	}
	if updated.Comments != "arrived after shift start" {
		t.Errorf("comments = %q", updated.Comments)
	}
}

func TestUpdateRejectsCheckOutBeforeCheckIn(t *testing.T) {
	env := newAttendanceEnv(t)
	employee := env.seedEmployee(t, "karim.alaoui@example.com")
	if _, err := env.ledger.CheckIn(employee.ID, time.Date(2024, 3, 25, 9, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("seed check-in: %v", err)
	}
	var record models.Attendance
	if err := env.db.Where("employee_id = ?", employee.ID).First(&record).Error; err != nil {
		t.Fatalf("load record: %v", err)
	}

	token := tokenFor(t, "admin", "")
	rec := env.do(t, http.MethodPatch, "/api/attendance/"+record.ID.String(), token, `{"checkOut":"2024-03-25T08:00:00Z"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body %s", rec.Code, rec.Body.String())
	}
}
