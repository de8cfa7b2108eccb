package handlers

import (
	"net/http"

	"go-gst-billing/internal/database"
	"go-gst-billing/internal/logging"
	"go-gst-billing/internal/models"

	"github.com/gin-gonic/gin"
)

// The invoice numbering settings and the business profile are both
// singletons: one row each, created on first save, edited in place.

// --- GET: Current numbering settings (defaults if never saved) ---
func GetInvoiceSettings(c *gin.Context) {
	var setting models.InvoiceSetting
	if err := database.DB.First(&setting).Error; err != nil {
		c.JSON(http.StatusOK, models.InvoiceSetting{
			PrefixRetail:     "JVJ/D/",
			PrefixInterCity:  "JVJ/D/",
			PrefixOuterState: "JVJ/S/",
			NumberDigits:     3,
			StartingNumber:   1,
		})
		return
	}
	c.JSON(http.StatusOK, setting)
}

// --- PUT: Update numbering settings ---
// Changing a prefix starts a fresh series; existing invoices keep their
// numbers and the old series simply stops growing.
func UpdateInvoiceSettings(c *gin.Context) {
	var input models.InvoiceSetting
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	var setting models.InvoiceSetting
	if err := database.DB.First(&setting).Error; err == nil {
		input.ID = setting.ID
	}

	if err := database.DB.Save(&input).Error; err != nil {
		logging.LogError("handlers", "UpdateInvoiceSettings", "save", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
		return
	}
	c.JSON(http.StatusOK, input)
}

// --- GET: Seller profile printed on documents ---
func GetBusinessProfile(c *gin.Context) {
	var profile models.BusinessProfile
	if err := database.DB.First(&profile).Error; err != nil {
		c.JSON(http.StatusOK, models.BusinessProfile{})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// --- PUT: Update seller profile ---
func UpdateBusinessProfile(c *gin.Context) {
	var input models.BusinessProfile
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	var profile models.BusinessProfile
	if err := database.DB.First(&profile).Error; err == nil {
		input.ID = profile.ID
	}

	if err := database.DB.Save(&input).Error; err != nil {
		logging.LogError("handlers", "UpdateBusinessProfile", "save", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save business profile"})
		return
	}
	c.JSON(http.StatusOK, input)
}
