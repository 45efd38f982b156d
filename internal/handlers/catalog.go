package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yasminey01/station-manager-portal-sub000/internal/models"
)

type CatalogHandler struct {
	DB *gorm.DB
}

type productRequest struct {
	Name     string  `json:"name" binding:"required"`
	Category string  `json:"category"`
	Unit     string  `json:"unit"`
	Price    float64 `json:"price" binding:"required"`
}

type supplierRequest struct {
	Name    string `json:"name" binding:"required"`
	Contact string `json:"contact"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{DB: db}
}

func normalizeCategory(value string) (string, bool) {
	category := strings.ToLower(strings.TrimSpace(value))
	if category == "" {
		return "fuel", true
	}
	if category == "fuel" || category == "shop" {
		return category, true
	}
	return "", false
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	query := h.DB.Order("name asc")
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", strings.ToLower(category))
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load products"})
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	category, ok := normalizeCategory(req.Category)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
		return
	}
	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = "liter"
	}

	product := models.Product{
		Name:     strings.TrimSpace(req.Name),
		Category: category,
		Unit:     unit,
		Price:    req.Price,
	}
	if err := h.DB.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	category, ok := normalizeCategory(req.Category)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
		return
	}

	var product models.Product
	if err := h.DB.First(&product, "id = ?", productID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	product.Name = strings.TrimSpace(req.Name)
	product.Category = category
	if unit := strings.TrimSpace(req.Unit); unit != "" {
		product.Unit = unit
	}
	product.Price = req.Price
	if err := h.DB.Save(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.DB.Delete(&models.Product{}, "id = ?", productID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *CatalogHandler) ListSuppliers(c *gin.Context) {
	var suppliers []models.Supplier
	if err := h.DB.Order("name asc").Find(&suppliers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load suppliers"})
		return
	}
	c.JSON(http.StatusOK, suppliers)
}

func (h *CatalogHandler) CreateSupplier(c *gin.Context) {
	var req supplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	supplier := models.Supplier{
		Name:    strings.TrimSpace(req.Name),
		Contact: req.Contact,
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:   req.Phone,
	}
	if err := h.DB.Create(&supplier).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

func (h *CatalogHandler) UpdateSupplier(c *gin.Context) {
	supplierID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req supplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	var supplier models.Supplier
	if err := h.DB.First(&supplier, "id = ?", supplierID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "supplier not found"})
		return
	}

	supplier.Name = strings.TrimSpace(req.Name)
	supplier.Contact = req.Contact
	supplier.Email = strings.ToLower(strings.TrimSpace(req.Email))
	supplier.Phone = req.Phone
	if err := h.DB.Save(&supplier).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func (h *CatalogHandler) DeleteSupplier(c *gin.Context) {
	supplierID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.DB.Delete(&models.Supplier{}, "id = ?", supplierID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
