package ai

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
)

// Tool arguments are model-supplied, so a wrongly typed value has to come
// back as a tool error instead of panicking the request goroutine. Both
// helpers bail out before touching the chat session or the database, so a
// nil session is fine here.

func TestFlagInvoiceRejectsNonNumericID(t *testing.T) {
	out := executeFlagInvoice(context.Background(), nil, genai.FunctionCall{
		Name: "flag_invoice",
		Args: map[string]any{"invoice_id": "42"},
	})
	assert.Contains(t, out, "invoice_id must be a number")
}

func TestFlagInvoiceRejectsMissingID(t *testing.T) {
	out := executeFlagInvoice(context.Background(), nil, genai.FunctionCall{
		Name: "flag_invoice",
		Args: map[string]any{},
	})
	assert.Contains(t, out, "invoice_id must be a number")
}

func TestSalesReportRejectsNonStringDates(t *testing.T) {
	out := executeSalesReport(context.Background(), nil, genai.FunctionCall{
		Name: "get_sales_report",
		Args: map[string]any{"start_date": 20260101.0, "end_date": "2026-01-31"},
	})
	assert.Contains(t, out, "Dates must be")
}
