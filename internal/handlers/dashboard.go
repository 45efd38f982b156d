package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yasminey01/station-manager-portal-sub000/internal/attendance"
	"github.com/yasminey01/station-manager-portal-sub000/internal/models"
)

type DashboardHandler struct {
	DB     *gorm.DB
	Ledger *attendance.Ledger
}

func NewDashboardHandler(db *gorm.DB, ledger *attendance.Ledger) *DashboardHandler {
	return &DashboardHandler{DB: db, Ledger: ledger}
}

func (h *DashboardHandler) Get(c *gin.Context) {
	var employeeCount int64
	_ = h.DB.Model(&models.Employee{}).Count(&employeeCount).Error

	var onShift int64
	_ = h.DB.Model(&models.Employee{}).Where("is_present = ?", true).Count(&onShift).Error

	var stationCount int64
	_ = h.DB.Model(&models.Station{}).Count(&stationCount).Error

	today := h.Ledger.DayOf(time.Now())
	var todayAttendance int64
	_ = h.DB.Model(&models.Attendance{}).Where("date = ?", today).Count(&todayAttendance).Error

	var revenueToday float64
	_ = h.DB.Model(&models.Sale{}).Where("sold_at >= ?", today).
		Select("COALESCE(SUM(total),0)").Scan(&revenueToday).Error

	var revenueTotal float64
	_ = h.DB.Model(&models.Sale{}).Select("COALESCE(SUM(total),0)").Scan(&revenueTotal).Error

	// Tanks below a fifth of capacity need a refill order.
	var lowTanks int64
	_ = h.DB.Model(&models.Tank{}).Where("current_level < capacity / 5").Count(&lowTanks).Error

	c.JSON(http.StatusOK, gin.H{
		"employees":       employeeCount,
		"onShift":         onShift,
		"stations":        stationCount,
		"todayAttendance": todayAttendance,
		"revenueToday":    revenueToday,
		"revenueTotal":    revenueTotal,
		"lowTanks":        lowTanks,
		"currency":        "USD",
	})
}
