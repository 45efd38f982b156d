package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yasminey01/station-manager-portal-sub000/internal/models"
)

type StationHandler struct {
	DB *gorm.DB
}

type stationRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	City    string `json:"city"`
	Phone   string `json:"phone"`
}

type pumpRequest struct {
	StationID string `json:"stationId" binding:"required"`
	Number    int    `json:"number" binding:"required"`
	FuelType  string `json:"fuelType" binding:"required"`
	Status    string `json:"status"`
}

type tankRequest struct {
	StationID    string  `json:"stationId" binding:"required"`
	FuelType     string  `json:"fuelType" binding:"required"`
	Capacity     float64 `json:"capacity" binding:"required"`
	CurrentLevel float64 `json:"currentLevel"`
}

func NewStationHandler(db *gorm.DB) *StationHandler {
	return &StationHandler{DB: db}
}

func (h *StationHandler) findStation(c *gin.Context, raw string) (models.Station, bool) {
	var station models.Station
	stationID, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stationId"})
		return station, false
	}
	if err := h.DB.First(&station, "id = ?", stationID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "station not found"})
		return station, false
	}
	return station, true
}

func (h *StationHandler) List(c *gin.Context) {
	var stations []models.Station
	if err := h.DB.Order("created_at desc").Find(&stations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load stations"})
		return
	}
	c.JSON(http.StatusOK, stations)
}

func (h *StationHandler) Create(c *gin.Context) {
	var req stationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	station := models.Station{
		Name:    strings.TrimSpace(req.Name),
		Address: req.Address,
		City:    req.City,
		Phone:   req.Phone,
	}
	if err := h.DB.Create(&station).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, station)
}

func (h *StationHandler) Update(c *gin.Context) {
	stationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req stationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	var station models.Station
	if err := h.DB.First(&station, "id = ?", stationID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "station not found"})
		return
	}

	station.Name = strings.TrimSpace(req.Name)
	station.Address = req.Address
	station.City = req.City
	station.Phone = req.Phone
	if err := h.DB.Save(&station).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, station)
}

func (h *StationHandler) Delete(c *gin.Context) {
	stationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.DB.Delete(&models.Station{}, "id = ?", stationID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *StationHandler) ListPumps(c *gin.Context) {
	query := h.DB.Order("number asc")
	if stationID := c.Query("stationId"); stationID != "" {
		parsed, err := uuid.Parse(stationID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stationId"})
			return
		}
		query = query.Where("station_id = ?", parsed)
	}

	var pumps []models.Pump
	if err := query.Find(&pumps).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load pumps"})
		return
	}
	c.JSON(http.StatusOK, pumps)
}

func (h *StationHandler) CreatePump(c *gin.Context) {
	var req pumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	station, ok := h.findStation(c, req.StationID)
	if !ok {
		return
	}

	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status == "" {
		status = "active"
	}
	if status != "active" && status != "maintenance" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	pump := models.Pump{
		StationID: station.ID,
		Number:    req.Number,
		FuelType:  req.FuelType,
		Status:    status,
	}
	if err := h.DB.Create(&pump).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, pump)
}

func (h *StationHandler) UpdatePump(c *gin.Context) {
	pumpID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req pumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	var pump models.Pump
	if err := h.DB.First(&pump, "id = ?", pumpID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "pump not found"})
		return
	}

	station, ok := h.findStation(c, req.StationID)
	if !ok {
		return
	}

	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status == "" {
		status = pump.Status
	}
	if status != "active" && status != "maintenance" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	pump.StationID = station.ID
	pump.Number = req.Number
	pump.FuelType = req.FuelType
	pump.Status = status
	if err := h.DB.Save(&pump).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, pump)
}

func (h *StationHandler) DeletePump(c *gin.Context) {
	pumpID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.DB.Delete(&models.Pump{}, "id = ?", pumpID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *StationHandler) ListTanks(c *gin.Context) {
	query := h.DB.Order("created_at desc")
	if stationID := c.Query("stationId"); stationID != "" {
		parsed, err := uuid.Parse(stationID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stationId"})
			return
		}
		query = query.Where("station_id = ?", parsed)
	}

	var tanks []models.Tank
	if err := query.Find(&tanks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load tanks"})
		return
	}
	c.JSON(http.StatusOK, tanks)
}

func (h *StationHandler) CreateTank(c *gin.Context) {
	var req tankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	station, ok := h.findStation(c, req.StationID)
	if !ok {
		return
	}

	if req.CurrentLevel < 0 || req.CurrentLevel > req.Capacity {
		c.JSON(http.StatusBadRequest, gin.H{"error": "currentLevel out of range"})
		return
	}

	tank := models.Tank{
		StationID:    station.ID,
		FuelType:     req.FuelType,
		Capacity:     req.Capacity,
		CurrentLevel: req.CurrentLevel,
	}
	if err := h.DB.Create(&tank).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, tank)
}

func (h *StationHandler) UpdateTank(c *gin.Context) {
	tankID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req tankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	var tank models.Tank
	if err := h.DB.First(&tank, "id = ?", tankID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "tank not found"})
		return
	}

	station, ok := h.findStation(c, req.StationID)
	if !ok {
		return
	}

	if req.CurrentLevel < 0 || req.CurrentLevel > req.Capacity {
		c.JSON(http.StatusBadRequest, gin.H{"error": "currentLevel out of range"})
		return
	}

	tank.StationID = station.ID
	tank.FuelType = req.FuelType
	tank.Capacity = req.Capacity
	tank.CurrentLevel = req.CurrentLevel
	if err := h.DB.Save(&tank).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, tank)
}

func (h *StationHandler) DeleteTank(c *gin.Context) {
	tankID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.DB.Delete(&models.Tank{}, "id = ?", tankID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
