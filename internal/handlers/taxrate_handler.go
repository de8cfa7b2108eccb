package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go-gst-billing/internal/database"
	"go-gst-billing/internal/logging"
	"go-gst-billing/internal/models"
	"go-gst-billing/internal/store"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// --- GET: List configured HSN/SAC rates ---
func GetTaxRates(c *gin.Context) {
	var rates []models.TaxRate
	if err := database.DB.Order("hsn_code").Find(&rates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tax rates"})
		return
	}
	c.JSON(http.StatusOK, rates)
}

// saveTaxRate persists a rate; when it is marked default, every other
// default is cleared in the same transaction so at most one row holds
// the flag.
func saveTaxRate(rate *models.TaxRate) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		if rate.IsDefault {
			if err := tx.Model(&models.TaxRate{}).
				Where("is_default = ? AND id <> ?", true, rate.ID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Save(rate).Error
	})
}

// --- POST: Add a new HSN/SAC rate ---
func AddTaxRate(c *gin.Context) {
	var rate models.TaxRate
	if err := c.ShouldBindJSON(&rate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if rate.HSNCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "HSN code is required"})
		return
	}

	if err := saveTaxRate(&rate); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "This HSN code is already configured"})
			return
		}
		logging.LogError("handlers", "AddTaxRate", "insert", rate.HSNCode, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create tax rate"})
		return
	}
	c.JSON(http.StatusCreated, rate)
}

// --- PUT: Update a rate (including making it the default) ---
func UpdateTaxRate(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tax rate ID"})
		return
	}

	var rate models.TaxRate
	if err := database.DB.First(&rate, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tax rate not found"})
		return
	}

	var input models.TaxRate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	rate.HSNCode = input.HSNCode
	rate.Description = input.Description
	rate.CGST = input.CGST
	rate.SGST = input.SGST
	rate.IGST = input.IGST
	rate.IsDefault = input.IsDefault

	if err := saveTaxRate(&rate); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "This HSN code is already configured"})
			return
		}
		logging.LogError("handlers", "UpdateTaxRate", "save", rate.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update tax rate"})
		return
	}
	c.JSON(http.StatusOK, rate)
}

// --- DELETE: Tombstone a rate ---
func DeleteTaxRate(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tax rate ID"})
		return
	}

	if err := store.SoftDelete[models.TaxRate](database.DB, uint(id)); err != nil {
		logging.LogError("handlers", "DeleteTaxRate", "soft delete", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete tax rate"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tax rate deleted"})
}
