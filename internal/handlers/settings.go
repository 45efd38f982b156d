package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yasminey01/station-manager-portal-sub000/internal/models"
)

type SettingsHandler struct {
	DB *gorm.DB
}

type updateLogoRequest struct {
	LogoURL string `json:"logoUrl" binding:"required"`
}

const logoSettingKey = "company_logo"

func NewSettingsHandler(db *gorm.DB) *SettingsHandler {
	return &SettingsHandler{DB: db}
}

func (h *SettingsHandler) GetLogo(c *gin.Context) {
	var setting models.Setting
	if err := h.DB.Where("`key` = ?", logoSettingKey).Take(&setting).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusOK, gin.H{"logoUrl": ""})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load logo"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logoUrl": strings.TrimSpace(setting.Value)})
}

func (h *SettingsHandler) UpdateLogo(c *gin.Context) {
	var req updateLogoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	value := strings.TrimSpace(req.LogoURL)
	if value == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "logo cannot be empty"})
		return
	}

	var setting models.Setting
	err := h.DB.Where("`key` = ?", logoSettingKey).Take(&setting).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
			return
		}
		setting = models.Setting{Key: logoSettingKey, Value: value}
		if err := h.DB.Create(&setting).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"logoUrl": value})
		return
	}

	setting.Value = value
	if err := h.DB.Save(&setting).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logoUrl": value})
}
