package pdf

import (
	"bytes"
	"fmt"

	"go-gst-billing/internal/models"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// RenderInvoice draws a GST tax invoice as a PDF. It only formats what the
// invoice record already carries: the stored line items, tax rows and
// totals. No tax math happens here.
func RenderInvoice(invoice *models.Invoice, profile *models.BusinessProfile, copyLabel string) ([]byte, error) {
	p := gofpdf.New("P", "mm", "A4", "")
	p.AddPage()

	marginX := 15.0
	marginY := 15.0
	p.SetMargins(marginX, marginY, marginX)
	p.SetAutoPageBreak(true, marginY)

	// Seller header
	p.SetFont("Arial", "B", 16)
	p.SetTextColor(33, 37, 41)
	p.CellFormat(0, 10, profile.Name, "", 1, "C", false, 0, "")
	p.SetFont("Arial", "", 10)
	p.CellFormat(0, 5, profile.Address, "", 1, "C", false, 0, "")
	p.CellFormat(0, 5, fmt.Sprintf("GSTIN: %s    Phone: %s", profile.GSTIN, profile.Phone), "", 1, "C", false, 0, "")
	p.Ln(3)

	p.SetFont("Arial", "B", 12)
	title := "TAX INVOICE"
	if copyLabel != "" {
		title = title + " - " + copyLabel
	}
	p.CellFormat(0, 8, title, "T", 1, "C", false, 0, "")
	p.Ln(2)

	// Invoice meta
	p.SetFont("Arial", "", 10)
	p.Cell(95, 6, "Invoice No: "+invoice.InvoiceNumber)
	p.CellFormat(0, 6, "Date: "+invoice.InvoiceDate.Format("02-Jan-2006"), "", 1, "R", false, 0, "")
	p.Cell(95, 6, "Tax Type: "+invoice.TaxType)
	p.CellFormat(0, 6, "Transaction: "+invoice.TransactionType, "", 1, "R", false, 0, "")
	p.Ln(2)

	// Buyer block (snapshot fields, not the live customer)
	p.SetFont("Arial", "B", 10)
	p.CellFormat(0, 6, "Billed To", "B", 1, "", false, 0, "")
	p.SetFont("Arial", "", 10)
	p.CellFormat(0, 5, invoice.BuyerName, "", 1, "", false, 0, "")
	if invoice.BuyerAddress != "" {
		p.CellFormat(0, 5, invoice.BuyerAddress, "", 1, "", false, 0, "")
	}
	if invoice.BuyerGSTIN != "" {
		p.CellFormat(0, 5, "GSTIN: "+invoice.BuyerGSTIN+"    State Code: "+invoice.BuyerStateCode, "", 1, "", false, 0, "")
	}
	p.Ln(3)

	// Items table
	p.SetFont("Arial", "B", 9)
	p.SetFillColor(240, 240, 240)
	p.CellFormat(22, 7, "HSN/SAC", "1", 0, "C", true, 0, "")
	p.CellFormat(68, 7, "Description", "1", 0, "C", true, 0, "")
	p.CellFormat(20, 7, "Qty", "1", 0, "C", true, 0, "")
	p.CellFormat(15, 7, "Unit", "1", 0, "C", true, 0, "")
	p.CellFormat(27, 7, "Rate", "1", 0, "C", true, 0, "")
	p.CellFormat(28, 7, "Taxable Value", "1", 1, "C", true, 0, "")

	p.SetFont("Arial", "", 9)
	for _, item := range invoice.Items {
		p.CellFormat(22, 7, item.HSNSACCode, "1", 0, "C", false, 0, "")
		p.CellFormat(68, 7, item.Description, "1", 0, "", false, 0, "")
		p.CellFormat(20, 7, item.Quantity.StringFixed(3), "1", 0, "R", false, 0, "")
		p.CellFormat(15, 7, item.Unit, "1", 0, "C", false, 0, "")
		p.CellFormat(27, 7, item.Rate.StringFixed(2), "1", 0, "R", false, 0, "")
		p.CellFormat(28, 7, item.TaxableValue.StringFixed(2), "1", 1, "R", false, 0, "")
	}
	p.Ln(3)

	// Tax summary from the stored per-line tax rows
	taxable := decimal.Zero
	taxTotals := map[string]decimal.Decimal{}
	for _, item := range invoice.Items {
		taxable = taxable.Add(item.TaxableValue)
		for _, tax := range item.Taxes {
			taxTotals[tax.TaxName] = taxTotals[tax.TaxName].Add(tax.TaxAmount)
		}
	}

	summaryRow := func(label string, value decimal.Decimal, bold bool) {
		if bold {
			p.SetFont("Arial", "B", 10)
		} else {
			p.SetFont("Arial", "", 10)
		}
		p.Cell(125, 6, "")
		p.CellFormat(30, 6, label, "", 0, "R", false, 0, "")
		p.CellFormat(25, 6, value.StringFixed(2), "", 1, "R", false, 0, "")
	}

	summaryRow("Taxable Value", taxable, false)
	for _, name := range []string{"CGST", "SGST", "IGST"} {
		if amount, ok := taxTotals[name]; ok {
			summaryRow(name, amount, false)
		}
	}
	if !invoice.Roundoff.IsZero() {
		summaryRow("Round Off", invoice.Roundoff, false)
	}
	summaryRow("Total", invoice.TotalValue, true)
	p.Ln(6)

	// Bank details footer
	if profile.BankName != "" {
		p.SetFont("Arial", "B", 9)
		p.CellFormat(0, 5, "Bank Details", "T", 1, "", false, 0, "")
		p.SetFont("Arial", "", 9)
		p.CellFormat(0, 5, fmt.Sprintf("%s, A/C: %s, IFSC: %s, Branch: %s",
			profile.BankName, profile.BankAccountNo, profile.BankIFSC, profile.BankBranch), "", 1, "", false, 0, "")
	}

	var buf bytes.Buffer
	if err := p.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
