package handlers

import (
	"archive/zip"
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"go-gst-billing/internal/database"
	"go-gst-billing/internal/logging"
	"go-gst-billing/internal/models"
	"go-gst-billing/internal/pdf"

	"github.com/gin-gonic/gin"
)

func loadBusinessProfile() *models.BusinessProfile {
	var profile models.BusinessProfile
	database.DB.First(&profile) // empty profile is fine, PDF just has blanks
	return &profile
}

// --- GET: Render one invoice as a PDF ---
// ?copy= selects the printed label (ORIGINAL, DUPLICATE, TRIPLICATE)
func GetInvoicePDF(c *gin.Context) {
	var invoice models.Invoice
	if err := database.DB.Preload("Items.Taxes").First(&invoice, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}

	copyLabel := strings.ToUpper(c.DefaultQuery("copy", "ORIGINAL"))

	data, err := pdf.RenderInvoice(&invoice, loadBusinessProfile(), copyLabel)
	if err != nil {
		logging.LogError("handlers", "GetInvoicePDF", "render", invoice.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render PDF"})
		return
	}

	filename := strings.ReplaceAll(invoice.InvoiceNumber, "/", "-") + ".pdf"
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}

// --- POST: Bulk export invoices as a zip of PDFs ---
// A render failure on one invoice skips that invoice; the rest of the
// batch still ships. The zip comment carries the success count.
func BulkExportInvoices(c *gin.Context) {
	var req BulkIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	profile := loadBusinessProfile()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	exported := 0

	for _, id := range req.IDs {
		var invoice models.Invoice
		if err := database.DB.Preload("Items.Taxes").First(&invoice, id).Error; err != nil {
			continue
		}

		data, err := pdf.RenderInvoice(&invoice, profile, "ORIGINAL")
		if err != nil {
			logging.LogError("handlers", "BulkExportInvoices", "render", id, err)
			continue
		}

		name := strings.ReplaceAll(invoice.InvoiceNumber, "/", "-") + ".pdf"
		f, err := zw.Create(name)
		if err != nil {
			continue
		}
		if _, err := f.Write(data); err != nil {
			continue
		}
		exported++
	}

	zw.SetComment(fmt.Sprintf("%d of %d invoices exported", exported, len(req.IDs)))
	if err := zw.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build archive"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="invoices.zip"`)
	c.Header("X-Exported-Count", fmt.Sprint(exported))
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}
