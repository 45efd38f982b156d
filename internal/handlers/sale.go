package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yasminey01/station-manager-portal-sub000/internal/middleware"
	"github.com/yasminey01/station-manager-portal-sub000/internal/models"
)

type SaleHandler struct {
	DB *gorm.DB
}

type saleRequest struct {
	StationID     string  `json:"stationId" binding:"required"`
	EmployeeID    string  `json:"employeeId"`
	ProductID     string  `json:"productId" binding:"required"`
	Quantity      float64 `json:"quantity" binding:"required"`
	UnitPrice     float64 `json:"unitPrice"`
	PaymentMethod string  `json:"paymentMethod"`
}

type stockEntryRequest struct {
	ProductID  string  `json:"productId" binding:"required"`
	SupplierID string  `json:"supplierId" binding:"required"`
	TankID     string  `json:"tankId"`
	Quantity   float64 `json:"quantity" binding:"required"`
	UnitCost   float64 `json:"unitCost" binding:"required"`
}

func NewSaleHandler(db *gorm.DB) *SaleHandler {
	return &SaleHandler{DB: db}
}

func (h *SaleHandler) List(c *gin.Context) {
	query := h.DB.Order("sold_at desc")

	role, _ := c.Get(middleware.ContextRole)
	if role == "employee" {
		contextEmployeeID, ok := c.Get(middleware.ContextEmployeeID)
		if !ok || contextEmployeeID == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		query = query.Where("employee_id = ?", contextEmployeeID.(string))
	} else if stationID := c.Query("stationId"); stationID != "" {
		parsed, err := uuid.Parse(stationID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stationId"})
			return
		}
		query = query.Where("station_id = ?", parsed)
	}

	var sales []models.Sale
	if err := query.Find(&sales).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load sales"})
		return
	}
	c.JSON(http.StatusOK, sales)
}

func (h *SaleHandler) Create(c *gin.Context) {
	var req saleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	role, _ := c.Get(middleware.ContextRole)
	if role == "employee" {
		contextEmployeeID, ok := c.Get(middleware.ContextEmployeeID)
		if !ok || contextEmployeeID == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		req.EmployeeID = contextEmployeeID.(string)
	} else if req.EmployeeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "employeeId required"})
		return
	}

	stationID, err := uuid.Parse(req.StationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stationId"})
		return
	}
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employeeId"})
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid productId"})
		return
	}
	if req.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be positive"})
		return
	}

	var station models.Station
	if err := h.DB.First(&station, "id = ?", stationID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "station not found"})
		return
	}
	var employee models.Employee
	if err := h.DB.First(&employee, "id = ?", employeeID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "employee not found"})
		return
	}
	var product models.Product
	if err := h.DB.First(&product, "id = ?", productID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	unitPrice := req.UnitPrice
	if unitPrice <= 0 {
		unitPrice = product.Price
	}
	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "cash"
	}

	sale := models.Sale{
		StationID:     stationID,
		EmployeeID:    employeeID,
		ProductID:     productID,
		Quantity:      req.Quantity,
		UnitPrice:     unitPrice,
		Total:         req.Quantity * unitPrice,
		PaymentMethod: paymentMethod,
		SoldAt:        time.Now(),
	}
	if err := h.DB.Create(&sale).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, sale)
}

func (h *SaleHandler) Delete(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.DB.Delete(&models.Sale{}, "id = ?", saleID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *SaleHandler) ListStockEntries(c *gin.Context) {
	query := h.DB.Order("received_at desc")
	if productID := c.Query("productId"); productID != "" {
		parsed, err := uuid.Parse(productID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid productId"})
			return
		}
		query = query.Where("product_id = ?", parsed)
	}

	var entries []models.StockEntry
	if err := query.Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load stock entries"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// CreateStockEntry records a delivery. A fuel delivery targeting a tank
// raises the tank level in the same transaction so the entry and the level
// never diverge.
func (h *SaleHandler) CreateStockEntry(c *gin.Context) {
	var req stockEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid productId"})
		return
	}
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid supplierId"})
		return
	}
	if req.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be positive"})
		return
	}

	var product models.Product
	if err := h.DB.First(&product, "id = ?", productID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	var supplier models.Supplier
	if err := h.DB.First(&supplier, "id = ?", supplierID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "supplier not found"})
		return
	}

	var tankID *uuid.UUID
	if req.TankID != "" {
		parsed, err := uuid.Parse(req.TankID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tankId"})
			return
		}
		tankID = &parsed
	}

	entry := models.StockEntry{
		ProductID:  productID,
		SupplierID: supplierID,
		TankID:     tankID,
		Quantity:   req.Quantity,
		UnitCost:   req.UnitCost,
		ReceivedAt: time.Now(),
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if tankID != nil {
			var tank models.Tank
			if err := tx.First(&tank, "id = ?", *tankID).Error; err != nil {
				return err
			}
			if tank.CurrentLevel+req.Quantity > tank.Capacity {
				return errTankOverflow
			}
			tank.CurrentLevel += req.Quantity
			if err := tx.Save(&tank).Error; err != nil {
				return err
			}
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		if errors.Is(err, errTankOverflow) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "delivery exceeds tank capacity"})
			return
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "tank not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *SaleHandler) DeleteStockEntry(c *gin.Context) {
	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.DB.Delete(&models.StockEntry{}, "id = ?", entryID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

var errTankOverflow = errors.New("delivery exceeds tank capacity")
