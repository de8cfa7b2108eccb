package database

import (
	"time"

	"go-gst-billing/internal/models"
)

// SalesReportResult holds the headline numbers for a date range
type SalesReportResult struct {
	TotalRevenue float64
	TotalCount   int64
}

// GetSalesReport sums invoice revenue within a date range.
// Used by the reports endpoint and as an AI assistant tool.
func GetSalesReport(start, end time.Time) (*SalesReportResult, error) {
	var result SalesReportResult

	// COALESCE ensures we get 0 instead of NULL when there are no invoices
	err := DB.Model(&models.Invoice{}).
		Where("invoice_date BETWEEN ? AND ?", start, end).
		Select("COALESCE(SUM(total_value), 0)").
		Scan(&result.TotalRevenue).Error
	if err != nil {
		return nil, err
	}

	err = DB.Model(&models.Invoice{}).
		Where("invoice_date BETWEEN ? AND ?", start, end).
		Count(&result.TotalCount).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}
