package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"go-gst-billing/internal/billing"
	"go-gst-billing/internal/database"
	"go-gst-billing/internal/logging"
	"go-gst-billing/internal/models"
	"go-gst-billing/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceRequest is what the frontend sends for create, update and preview.
// invoice_number is optional; when blank the numbering engine fills it in.
type InvoiceRequest struct {
	InvoiceNumber   string              `json:"invoice_number"`
	InvoiceDate     time.Time           `json:"invoice_date"`
	TransactionType string              `json:"transaction_type" binding:"required"`
	InputMode       string              `json:"input_mode"`
	CustomerID      *uint               `json:"customer_id"`
	BuyerName       string              `json:"buyer_name"`
	BuyerAddress    string              `json:"buyer_address"`
	BuyerGSTIN      string              `json:"buyer_gstin"`
	BuyerStateCode  string              `json:"buyer_state_code"`
	CGSTRate        decimal.Decimal     `json:"cgst_rate"`
	SGSTRate        decimal.Decimal     `json:"sgst_rate"`
	Roundoff        decimal.Decimal     `json:"roundoff"`
	Flagged         bool                `json:"flagged"`
	Items           []billing.LineInput `json:"items" binding:"required"`
}

// resolveLines fills each item's mode from the invoice-level input mode
// and runs validation + taxable-value computation. All of this happens
// before anything touches the database.
func (r *InvoiceRequest) resolveLines() ([]billing.Line, error) {
	mode := billing.InputMode(r.InputMode)
	if mode == "" {
		mode = billing.ModeComponent
	}
	inputs := make([]billing.LineInput, len(r.Items))
	for i, item := range r.Items {
		if item.Mode == "" {
			item.Mode = mode
		}
		inputs[i] = item
	}
	return billing.ResolveLines(inputs, r.CGSTRate, r.SGSTRate)
}

// buildLineItems turns resolved lines into persistable rows with their
// per-line tax components attached.
func buildLineItems(lines []billing.Line, txnType billing.TransactionType, cgst, sgst decimal.Decimal) []models.LineItem {
	items := make([]models.LineItem, len(lines))
	for i, line := range lines {
		item := models.LineItem{
			HSNSACCode:   line.HSNSACCode,
			Description:  line.Description,
			Unit:         line.Unit,
			Quantity:     line.Quantity,
			Rate:         line.Rate,
			TaxableValue: line.TaxableValue,
			Roundoff:     line.Roundoff,
		}
		for _, row := range billing.TaxRowsFor(line, txnType, cgst, sgst) {
			item.Taxes = append(item.Taxes, models.LineItemTax{
				TaxName:   row.Name,
				TaxRate:   row.Rate,
				TaxAmount: row.Amount,
			})
		}
		items[i] = item
	}
	return items
}

// snapshotBuyer copies the live customer record into the invoice's buyer
// fields unless the request already filled them in by hand.
func snapshotBuyer(req *InvoiceRequest) error {
	if req.CustomerID == nil {
		return nil
	}
	var customer models.Customer
	if err := database.DB.First(&customer, *req.CustomerID).Error; err != nil {
		return err
	}
	if req.BuyerName == "" {
		req.BuyerName = customer.Name
	}
	if req.BuyerAddress == "" {
		req.BuyerAddress = customer.Address
	}
	if req.BuyerGSTIN == "" {
		req.BuyerGSTIN = customer.GSTIN
	}
	if req.BuyerStateCode == "" {
		req.BuyerStateCode = customer.StateCode
	}
	return nil
}

// --- POST: Create an invoice ---
func CreateInvoice(c *gin.Context) {
	var req InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	txnType := billing.TransactionType(req.TransactionType)

	// 1. Validate and compute everything before any persistence
	lines, err := req.resolveLines()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	totals := billing.ComputeTotals(lines, txnType, req.CGSTRate, req.SGSTRate, req.Roundoff)

	// 2. Snapshot the buyer from the customer record
	if err := snapshotBuyer(&req); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}

	if req.InvoiceDate.IsZero() {
		req.InvoiceDate = time.Now()
	}

	// 3. Persist: number generation happens inside the transaction, and a
	// duplicate-key conflict (two clerks saving at once) gets one retry
	// with a freshly derived number.
	var invoice models.Invoice
	autoNumber := req.InvoiceNumber == ""

	for attempt := 0; ; attempt++ {
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			number := req.InvoiceNumber
			if autoNumber {
				settings := database.LoadNumberingSettings(tx)
				prefix := settings.PrefixFor(txnType)
				last, err := database.LastInvoiceNumber(tx, prefix)
				if err != nil {
					return err
				}
				number = settings.FormatNumber(prefix, settings.NextSequence(prefix, last))
			}

			invoice = models.Invoice{
				InvoiceNumber:   number,
				InvoiceDate:     req.InvoiceDate,
				TransactionType: string(txnType),
				InputMode:       req.InputMode,
				TaxType:         totals.TaxType,
				CustomerID:      req.CustomerID,
				BuyerName:       req.BuyerName,
				BuyerAddress:    req.BuyerAddress,
				BuyerGSTIN:      req.BuyerGSTIN,
				BuyerStateCode:  req.BuyerStateCode,
				CGSTRate:        req.CGSTRate,
				SGSTRate:        req.SGSTRate,
				TotalValue:      totals.FinalTotal,
				Roundoff:        req.Roundoff,
				Flagged:         req.Flagged,
				Items:           buildLineItems(lines, txnType, req.CGSTRate, req.SGSTRate),
			}
			return tx.Create(&invoice).Error
		})

		if err != nil && autoNumber && errors.Is(err, gorm.ErrDuplicatedKey) && attempt == 0 {
			continue // lost the race for this number, derive the next one
		}
		break
	}

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Invoice number already exists"})
			return
		}
		logging.LogError("handlers", "CreateInvoice", "create transaction", req.InvoiceNumber, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create invoice"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"invoice": invoice, "totals": totals})
}

// --- POST: Preview totals without saving anything ---
// The live form calls this on every edit; it is the same calculator the
// create/update/PDF paths use, so the numbers always agree.
func PreviewInvoice(c *gin.Context) {
	var req InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	lines, err := req.resolveLines()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txnType := billing.TransactionType(req.TransactionType)
	totals := billing.ComputeTotals(lines, txnType, req.CGSTRate, req.SGSTRate, req.Roundoff)
	c.JSON(http.StatusOK, gin.H{"lines": lines, "totals": totals})
}

// --- GET: List invoices (flag and date filters) ---
func GetInvoices(c *gin.Context) {
	q := database.DB.Preload("Items.Taxes").Order("created_at DESC")

	if flagged := c.Query("flagged"); flagged != "" {
		q = q.Where("flagged = ?", flagged == "true")
	}
	if txn := c.Query("transaction_type"); txn != "" {
		q = q.Where("transaction_type = ?", txn)
	}
	if from := c.Query("from"); from != "" {
		q = q.Where("invoice_date >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		q = q.Where("invoice_date <= ?", to)
	}

	var invoices []models.Invoice
	if err := q.Find(&invoices).Error; err != nil {
		logging.LogError("handlers", "GetInvoices", "list query", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invoices"})
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// --- GET: Single invoice with its items and tax rows ---
func GetInvoice(c *gin.Context) {
	id := c.Param("id")

	var invoice models.Invoice
	if err := database.DB.Preload("Items.Taxes").First(&invoice, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// --- PUT: Full update, line items replaced wholesale ---
func UpdateInvoice(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice ID"})
		return
	}

	var invoice models.Invoice
	if err := database.DB.First(&invoice, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}

	var req InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	txnType := billing.TransactionType(req.TransactionType)
	lines, err := req.resolveLines()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	totals := billing.ComputeTotals(lines, txnType, req.CGSTRate, req.SGSTRate, req.Roundoff)

	if err := snapshotBuyer(&req); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}

	// A payload without a date keeps the stored one
	if req.InvoiceDate.IsZero() {
		req.InvoiceDate = invoice.InvoiceDate
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		invoice.InvoiceDate = req.InvoiceDate
		invoice.TransactionType = string(txnType)
		invoice.InputMode = req.InputMode
		invoice.TaxType = totals.TaxType
		invoice.CustomerID = req.CustomerID
		invoice.BuyerName = req.BuyerName
		invoice.BuyerAddress = req.BuyerAddress
		invoice.BuyerGSTIN = req.BuyerGSTIN
		invoice.BuyerStateCode = req.BuyerStateCode
		invoice.CGSTRate = req.CGSTRate
		invoice.SGSTRate = req.SGSTRate
		invoice.TotalValue = totals.FinalTotal
		invoice.Roundoff = req.Roundoff
		invoice.Flagged = req.Flagged
		if req.InvoiceNumber != "" {
			invoice.InvoiceNumber = req.InvoiceNumber
		}

		if err := tx.Omit("Items").Save(&invoice).Error; err != nil {
			return err
		}
		return store.ReplaceInvoiceItems(tx, invoice.ID,
			buildLineItems(lines, txnType, req.CGSTRate, req.SGSTRate))
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Invoice number already exists"})
			return
		}
		logging.LogError("handlers", "UpdateInvoice", "update transaction", invoice.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update invoice"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoice": invoice, "totals": totals})
}

// --- PATCH: Lightweight flag toggle, nothing else changes ---
func FlagInvoice(c *gin.Context) {
	id := c.Param("id")

	var req struct {
		Flagged bool `json:"flagged"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	result := database.DB.Model(&models.Invoice{}).Where("id = ?", id).Update("flagged", req.Flagged)
	if result.Error != nil {
		logging.LogError("handlers", "FlagInvoice", "flag update", id, result.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update flag"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Flag updated", "flagged": req.Flagged})
}

// --- DELETE: Soft delete the invoice and its children ---
func DeleteInvoice(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice ID"})
		return
	}

	if err := store.CascadeSoftDeleteInvoice(database.DB, uint(id)); err != nil {
		logging.LogError("handlers", "DeleteInvoice", "cascade soft delete", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete invoice"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invoice deleted"})
}

type BulkIDRequest struct {
	IDs []uint `json:"ids" binding:"required"`
}

// --- POST: Bulk flag/unflag ---
// Each id is handled independently; one failure does not stop the batch
// and the response reports how many succeeded.
func BulkFlagInvoices(c *gin.Context) {
	var req struct {
		IDs     []uint `json:"ids" binding:"required"`
		Flagged bool   `json:"flagged"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	succeeded := 0
	for _, id := range req.IDs {
		result := database.DB.Model(&models.Invoice{}).Where("id = ?", id).Update("flagged", req.Flagged)
		if result.Error == nil && result.RowsAffected > 0 {
			succeeded++
		}
	}
	c.JSON(http.StatusOK, gin.H{"requested": len(req.IDs), "succeeded": succeeded})
}

// --- POST: Bulk soft delete ---
func BulkDeleteInvoices(c *gin.Context) {
	var req BulkIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	succeeded := 0
	for _, id := range req.IDs {
		if err := store.CascadeSoftDeleteInvoice(database.DB, id); err != nil {
			logging.LogError("handlers", "BulkDeleteInvoices", "cascade soft delete", id, err)
			continue
		}
		succeeded++
	}
	c.JSON(http.StatusOK, gin.H{"requested": len(req.IDs), "succeeded": succeeded})
}
