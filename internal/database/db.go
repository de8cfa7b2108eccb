package database

import (
	"os"
	"time"

	"go-gst-billing/internal/billing"
	"go-gst-billing/internal/logging"
	"go-gst-billing/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect() {
	log := logging.GetLogger()

	// Credentials come from .env so the same binary runs anywhere
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN not found in .env file. Please configure your database.")
	}

	var err error

	// Wait for MySQL to come up (docker compose starts us in parallel)
	for i := 0; i < 5; i++ {
		DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
			// Surfaces duplicate-key violations as gorm.ErrDuplicatedKey,
			// which the invoice-number retry depends on
			TranslateError: true,
		})
		if err == nil {
			break
		}
		log.Warnf("Failed to connect to database. Retrying in 2 seconds... (%d/5)", i+1)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		log.Fatal("Failed to connect to database after 5 attempts: ", err)
	}

	log.Info("✅ Successfully connected to MySQL!")

	err = DB.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Invoice{},
		&models.LineItem{},
		&models.LineItemTax{},
		&models.TaxRate{},
		&models.InvoiceSetting{},
		&models.BusinessProfile{},
		&models.SystemLicense{},
	)
	if err != nil {
		log.Fatal("Migration failed: ", err)
	}

	log.Info("✅ Database Schema Synced!")
}

// LoadNumberingSettings reads the singleton InvoiceSetting row once per
// operation and hands it to the numbering engine as a plain value. A missing
// row is fine; the engine falls back to its documented defaults.
func LoadNumberingSettings(db *gorm.DB) billing.NumberingSettings {
	var row models.InvoiceSetting
	if err := db.First(&row).Error; err != nil {
		return billing.DefaultNumberingSettings()
	}
	return billing.NumberingSettings{
		PrefixRetail:     row.PrefixRetail,
		PrefixInterCity:  row.PrefixInterCity,
		PrefixOuterState: row.PrefixOuterState,
		NumberDigits:     row.NumberDigits,
		StartingNumber:   row.StartingNumber,
	}.Normalized()
}

// LastInvoiceNumber finds the most recently created invoice number under a
// prefix, "" when the series has no invoices yet. Soft-deleted invoices
// still occupy their numbers, so the lookup includes them.
func LastInvoiceNumber(db *gorm.DB, prefix string) (string, error) {
	var number string
	err := db.Unscoped().Model(&models.Invoice{}).
		Where("invoice_number LIKE ?", prefix+"%").
		Order("created_at DESC").
		Limit(1).
		Pluck("invoice_number", &number).Error
	if err != nil {
		return "", err
	}
	return number, nil
}
