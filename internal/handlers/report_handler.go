package handlers

import (
	"fmt"
	"net/http"

	"go-gst-billing/internal/database"
	"go-gst-billing/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ReportData defines the shape of our analytics response
type ReportData struct {
	TotalRevenue float64 `json:"total_revenue"`
	TotalTax     float64 `json:"total_tax"`
	TotalCount   int64   `json:"total_invoices"`
	TopBuyers    []struct {
		BuyerName string  `json:"buyer_name"`
		Count     int64   `json:"count"`
		Revenue   float64 `json:"revenue"`
	} `json:"top_buyers"`
	RecentInvoices []models.Invoice `json:"recent_invoices"`
}

// GSTSummaryRow is one tax-rate bucket in the GST summary.
// parseFloat-style zero fallback happens at the SQL layer via COALESCE.
type GSTSummaryRow struct {
	TaxName      string  `json:"tax_name"`
	TaxRate      float64 `json:"tax_rate"`
	TaxableValue float64 `json:"taxable_value"`
	TaxAmount    float64 `json:"tax_amount"`
}

// --- GET: /api/reports ---
func GetSalesReport(c *gin.Context) {
	var data ReportData

	// 1. All-time revenue (COALESCE gives 0 instead of NULL)
	err := database.DB.Model(&models.Invoice{}).
		Select("COALESCE(SUM(total_value), 0)").
		Scan(&data.TotalRevenue).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate revenue"})
		return
	}

	// 2. All-time tax collected
	err = database.DB.Model(&models.LineItemTax{}).
		Select("COALESCE(SUM(tax_amount), 0)").
		Scan(&data.TotalTax).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate tax"})
		return
	}

	// 3. Invoice count
	err = database.DB.Model(&models.Invoice{}).Count(&data.TotalCount).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count invoices"})
		return
	}

	// 4. Top 5 buyers by revenue (by snapshot name, so it works even for
	// walk-in buyers with no customer record)
	err = database.DB.Model(&models.Invoice{}).
		Select("buyer_name, COUNT(*) as count, SUM(total_value) as revenue").
		Group("buyer_name").
		Order("revenue desc").
		Limit(5).
		Scan(&data.TopBuyers).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch top buyers"})
		return
	}

	// 5. Last 10 invoices, newest first
	err = database.DB.Order("created_at desc").Limit(10).Find(&data.RecentInvoices).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recent invoices"})
		return
	}

	c.JSON(http.StatusOK, data)
}

func gstSummary(from, to string) ([]GSTSummaryRow, error) {
	q := database.DB.Model(&models.LineItemTax{}).
		Select(`line_item_taxes.tax_name,
			line_item_taxes.tax_rate,
			COALESCE(SUM(line_items.taxable_value), 0) as taxable_value,
			COALESCE(SUM(line_item_taxes.tax_amount), 0) as tax_amount`).
		Joins("JOIN line_items ON line_item_taxes.line_item_id = line_items.id").
		Joins("JOIN invoices ON line_items.invoice_id = invoices.id").
		Where("line_items.deleted_at IS NULL AND invoices.deleted_at IS NULL").
		Group("line_item_taxes.tax_name, line_item_taxes.tax_rate").
		Order("line_item_taxes.tax_name, line_item_taxes.tax_rate")

	if from != "" {
		q = q.Where("invoices.invoice_date >= ?", from)
	}
	if to != "" {
		q = q.Where("invoices.invoice_date <= ?", to)
	}

	var rows []GSTSummaryRow
	err := q.Scan(&rows).Error
	return rows, err
}

// --- GET: /api/reports/gst ---
// Tax collected per component and rate, for the GSTR filing worksheet
func GetGSTSummary(c *gin.Context) {
	rows, err := gstSummary(c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build GST summary"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// --- GET: /api/reports/gst/export ---
// Same summary as a spreadsheet the accountant can file from
func ExportGSTSummaryExcel(c *gin.Context) {
	rows, err := gstSummary(c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build GST summary"})
		return
	}

	f := excelize.NewFile()
	sheet := "Sheet1"

	f.SetCellValue(sheet, "A1", "Tax")
	f.SetCellValue(sheet, "B1", "Rate (%)")
	f.SetCellValue(sheet, "C1", "Taxable Value")
	f.SetCellValue(sheet, "D1", "Tax Amount")

	for i, row := range rows {
		f.SetCellValue(sheet, "A"+fmt.Sprint(i+2), row.TaxName)
		f.SetCellValue(sheet, "B"+fmt.Sprint(i+2), row.TaxRate)
		f.SetCellValue(sheet, "C"+fmt.Sprint(i+2), row.TaxableValue)
		f.SetCellValue(sheet, "D"+fmt.Sprint(i+2), row.TaxAmount)
	}

	c.Header("Content-Disposition", `attachment; filename="gst-summary.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write file"})
	}
}
