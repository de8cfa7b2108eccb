package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"go-gst-billing/internal/database"
	"go-gst-billing/internal/models"
	"go-gst-billing/internal/utils"

	"github.com/gin-gonic/gin"
)

type LicenseRequest struct {
	LicenseKey string `json:"license_key" binding:"required"`
}

// GetSystemStatus feeds the activation screen the Device ID so the shop
// owner can text it to support and get a key back
func GetSystemStatus(c *gin.Context) {
	var license models.SystemLicense
	database.DB.First(&license)

	c.JSON(http.StatusOK, gin.H{
		"device_id": utils.GetDeviceID(),
		"activated": license.IsActive && time.Now().Before(license.ExpirationDate),
	})
}

// ActivateLicense checks the provided key against the contract stages
// mapped to this exact hardware
func ActivateLicense(c *gin.Context) {
	var req LicenseRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	// 1. Get the physical Hardware ID of THIS specific computer
	currentDeviceID := utils.GetDeviceID()

	// 2. Shared secret; the keygen tool uses the same salt
	secretSalt := "JVJ-BILLING-MASTER-SECRET-2026"

	// 3. The contract stages and their strict expiration dates
	stages := map[string]time.Time{
		"TRIAL":    time.Date(2026, 10, 7, 23, 59, 59, 0, time.Local),  // Evaluation -> Expires Oct 7
		"Q3":       time.Date(2026, 12, 31, 23, 59, 59, 0, time.Local), // Installment 1 -> Expires Dec 31
		"Q4":       time.Date(2027, 3, 31, 23, 59, 59, 0, time.Local),  // Installment 2 -> Expires Mar 31
		"LIFETIME": time.Date(2099, 12, 31, 23, 59, 59, 0, time.Local), // Final Installment -> Unlimited Single-Device
	}

	var matchedExpiration time.Time
	var matchedStage string
	isValid := false

	// 4. Verify the key against every stage for THIS hardware
	for stage, expDate := range stages {
		hash := sha256.Sum256([]byte(currentDeviceID + stage + secretSalt))
		expectedKey := stage + "-" + strings.ToUpper(hex.EncodeToString(hash[:])[:12])

		if req.LicenseKey == expectedKey {
			isValid = true
			matchedExpiration = expDate
			matchedStage = stage
			break
		}
	}

	if !isValid {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid key for this specific device. Please contact support.",
		})
		return
	}

	// 5. Key matched, persist the activation
	var license models.SystemLicense
	database.DB.First(&license)

	license.LicenseKey = req.LicenseKey
	license.ExpirationDate = matchedExpiration
	license.IsActive = true

	if license.ID == 0 {
		database.DB.Create(&license)
	} else {
		database.DB.Save(&license)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "System activated! Stage: " + matchedStage,
		"expires": license.ExpirationDate,
	})
}
