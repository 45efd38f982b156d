package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yasminey01/station-manager-portal-sub000/internal/attendance"
	"github.com/yasminey01/station-manager-portal-sub000/internal/middleware"
	"github.com/yasminey01/station-manager-portal-sub000/internal/models"
)

type AttendanceHandler struct {
	DB     *gorm.DB
	Ledger *attendance.Ledger
}

type presenceRequest struct {
	EmployeeID string `json:"employeeId"`
}

type updateAttendanceRequest struct {
	Status   *string `json:"status"`
	Comments *string `json:"comments"`
	CheckIn  *string `json:"checkIn"`
	CheckOut *string `json:"checkOut"`
}

func NewAttendanceHandler(db *gorm.DB, ledger *attendance.Ledger) *AttendanceHandler {
	return &AttendanceHandler{DB: db, Ledger: ledger}
}

// bindPresenceRequest reads the optional request body. An empty body is valid
// since employees check in on themselves without naming a target.
func bindPresenceRequest(c *gin.Context) (presenceRequest, bool) {
	var req presenceRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return req, false
	}
	return req, true
}

// resolveEmployeeID picks the acting employee: employees always act on
// themselves, admins and managers must name a target.
func resolveEmployeeID(c *gin.Context, requested string) (uuid.UUID, bool) {
	role, _ := c.Get(middleware.ContextRole)
	if role == "employee" {
		contextEmployeeID, ok := c.Get(middleware.ContextEmployeeID)
		if !ok || contextEmployeeID == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return uuid.Nil, false
		}
		requested = contextEmployeeID.(string)
	} else if requested == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "employeeId required"})
		return uuid.Nil, false
	}

	employeeID, err := uuid.Parse(requested)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employeeId"})
		return uuid.Nil, false
	}
	return employeeID, true
}

func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	req, ok := bindPresenceRequest(c)
	if !ok {
		return
	}

	employeeID, ok := resolveEmployeeID(c, req.EmployeeID)
	if !ok {
		return
	}

	summary, err := h.Ledger.CheckIn(employeeID, time.Now())
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	c.JSON(http.StatusCreated, summary)
}

func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	req, ok := bindPresenceRequest(c)
	if !ok {
		return
	}

	employeeID, ok := resolveEmployeeID(c, req.EmployeeID)
	if !ok {
		return
	}

	summary, err := h.Ledger.CheckOut(employeeID, time.Now())
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *AttendanceHandler) List(c *gin.Context) {
	role, _ := c.Get(middleware.ContextRole)

	requested := c.Query("employeeId")
	if role == "employee" {
		contextEmployeeID, ok := c.Get(middleware.ContextEmployeeID)
		if !ok || contextEmployeeID == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		requested = contextEmployeeID.(string)
	}

	from, ok := parseDateQuery(c, "startDate")
	if !ok {
		return
	}
	to, ok := parseDateQuery(c, "endDate")
	if !ok {
		return
	}

	if requested == "" {
		// Admin/manager overview across all employees. Secondary key keeps
		// same-day rows from different employees in a stable order.
		query := h.DB.Order("date desc, created_at desc")
		if from != nil {
			query = query.Where("date >= ?", h.Ledger.DayOf(*from))
		}
		if to != nil {
			query = query.Where("date <= ?", h.Ledger.DayOf(*to))
		}
		var records []models.Attendance
		if err := query.Find(&records).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load attendance"})
			return
		}
		c.JSON(http.StatusOK, records)
		return
	}

	employeeID, err := uuid.Parse(requested)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employeeId"})
		return
	}

	records, err := h.Ledger.List(employeeID, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load attendance"})
		return
	}
	c.JSON(http.StatusOK, records)
}

// Update is the administrative edit path: manual status (including "late"),
// comments, and time corrections. Last writer wins; the ledger invariants on
// check-in/check-out ordering are still validated.
func (h *AttendanceHandler) Update(c *gin.Context) {
	attendanceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req updateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	var record models.Attendance
	if err := h.DB.First(&record, "id = ?", attendanceID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "attendance not found"})
		return
	}

	if req.Status != nil {
		status := *req.Status
		if status != models.AttendanceStatusAbsent &&
			status != models.AttendanceStatusPresent &&
			status != models.AttendanceStatusLate {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		record.Status = status
	}
	if req.Comments != nil {
		record.Comments = *req.Comments
	}
	if req.CheckIn != nil {
		parsed, err := time.Parse(time.RFC3339, *req.CheckIn)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid checkIn"})
			return
		}
		record.CheckIn = &parsed
	}
	if req.CheckOut != nil {
		parsed, err := time.Parse(time.RFC3339, *req.CheckOut)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid checkOut"})
			return
		}
		record.CheckOut = &parsed
	}

	if record.CheckOut != nil && record.CheckIn == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "checkOut requires checkIn"})
		return
	}
	if record.CheckOut != nil && record.CheckOut.Before(*record.CheckIn) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "checkOut cannot be before checkIn"})
		return
	}

	if err := h.DB.Save(&record).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *AttendanceHandler) Delete(c *gin.Context) {
	attendanceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.DB.Delete(&models.Attendance{}, "id = ?", attendanceID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *AttendanceHandler) DeleteByEmployee(c *gin.Context) {
	employeeID, err := uuid.Parse(c.Param("employeeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employeeId"})
		return
	}

	if err := h.DB.Where("employee_id = ?", employeeID).Delete(&models.Attendance{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func parseDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	value := c.Query(name)
	if value == "" {
		return nil, true
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return nil, false
	}
	return &parsed, true
}

func respondLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, attendance.ErrEmployeeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "employee not found"})
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		c.JSON(http.StatusConflict, gin.H{"error": "already checked in for this day"})
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		c.JSON(http.StatusConflict, gin.H{"error": "already checked out"})
	case errors.Is(err, attendance.ErrNoCheckInFound):
		c.JSON(http.StatusConflict, gin.H{"error": "no check-in found for today"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable"})
	}
}
