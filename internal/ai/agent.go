package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-gst-billing/internal/database"
	"go-gst-billing/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

func RunAgent(userMessage string, apiKey string) (string, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-2.0-flash-001")

	today := time.Now().Format("2006-01-02")

	systemPrompt := fmt.Sprintf(`SYSTEM: Today is %s. You are an assistant for a GST billing desk.

	RULES:
	1. FLAG: If a user asks to flag an invoice by NUMBER (e.g. "Flag JVJ/D/042"), you must NOT ask them for the ID. Instead:
	   - Call 'lookup_invoices' to find the ID.
	   - Call 'flag_invoice' using that ID.

	2. READ: If a user asks about a CUSTOMER (GSTIN, address, state code):
	   - You MUST call 'lookup_customers' to get the list.
	   - Then read the JSON to find the customer and answer the user.
	   - Do NOT say "I cannot look that up". You CAN by checking the customer list.

	3. SALES: If the user asks for sales/revenue, use 'get_sales_report'.

	USER: %s`, today, userMessage)

	// --- DEFINE TOOLS ---
	model.Tools = []*genai.Tool{
		{
			FunctionDeclarations: []*genai.FunctionDeclaration{
				{
					Name:        "lookup_customers",
					Description: "Get the full customer list. Use this to find ANY customer details like ID, Name, GSTIN, Address, or State Code.",
				},
				{
					Name:        "lookup_invoices",
					Description: "Get the most recent invoices. Use this to find an invoice ID from its invoice number or buyer name.",
				},
				{
					Name:        "flag_invoice",
					Description: "Mark a specific invoice for review using its ID",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"invoice_id": {Type: genai.TypeInteger, Description: "ID of the invoice"},
						},
						Required: []string{"invoice_id"},
					},
				},
				{
					Name:        "get_sales_report",
					Description: "Get total invoice revenue for a date range.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
							"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
						},
						Required: []string{"start_date", "end_date"},
					},
				},
			},
		},
	}

	session := model.StartChat()

	resp, err := session.SendMessage(ctx, genai.Text(systemPrompt))
	if err != nil {
		return "", err
	}

	// --- HANDLE TOOL CALLS ---
	for _, part := range resp.Candidates[0].Content.Parts {
		if funcCall, ok := part.(genai.FunctionCall); ok {

			// TOOL 1: Customer lookup
			if funcCall.Name == "lookup_customers" {
				var customers []models.Customer
				database.DB.Find(&customers)

				type SimpleCustomer struct {
					ID        uint   `json:"id"`
					Name      string `json:"name"`
					GSTIN     string `json:"gstin"`
					Address   string `json:"address"`
					StateCode string `json:"state_code"`
				}
				var simpleList []SimpleCustomer
				for _, cust := range customers {
					simpleList = append(simpleList, SimpleCustomer{
						ID:        cust.ID,
						Name:      cust.Name,
						GSTIN:     cust.GSTIN,
						Address:   cust.Address,
						StateCode: cust.StateCode,
					})
				}

				jsonBytes, _ := json.Marshal(simpleList)

				toolResp := genai.FunctionResponse{
					Name:     "lookup_customers",
					Response: map[string]interface{}{"customers": string(jsonBytes)},
				}

				finalResp, err := session.SendMessage(ctx, toolResp)
				if err != nil {
					return "", err
				}

				return handleRecursiveToolCalls(ctx, session, finalResp), nil
			}

			// TOOL 2: Invoice lookup
			if funcCall.Name == "lookup_invoices" {
				return executeInvoiceLookup(ctx, session), nil
			}

			// TOOL 3: Flag invoice
			if funcCall.Name == "flag_invoice" {
				return executeFlagInvoice(ctx, session, funcCall), nil
			}

			// TOOL 4: Sales Report
			if funcCall.Name == "get_sales_report" {
				return executeSalesReport(ctx, session, funcCall), nil
			}
		}
	}

	return printResponse(resp), nil
}

// --- HELPER FUNCTIONS ---

func handleRecursiveToolCalls(ctx context.Context, session *genai.ChatSession, resp *genai.GenerateContentResponse) string {
	for _, part := range resp.Candidates[0].Content.Parts {
		if funcCall, ok := part.(genai.FunctionCall); ok {
			if funcCall.Name == "flag_invoice" {
				return executeFlagInvoice(ctx, session, funcCall)
			}
		}
	}
	return printResponse(resp)
}

func executeInvoiceLookup(ctx context.Context, session *genai.ChatSession) string {
	var invoices []models.Invoice
	database.DB.Order("created_at desc").Limit(50).Find(&invoices)

	type SimpleInvoice struct {
		ID            uint   `json:"id"`
		InvoiceNumber string `json:"invoice_number"`
		BuyerName     string `json:"buyer_name"`
		Total         string `json:"total"`
		Flagged       bool   `json:"flagged"`
	}
	var simpleList []SimpleInvoice
	for _, inv := range invoices {
		simpleList = append(simpleList, SimpleInvoice{
			ID:            inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			BuyerName:     inv.BuyerName,
			Total:         inv.TotalValue.StringFixed(2),
			Flagged:       inv.Flagged,
		})
	}

	jsonBytes, _ := json.Marshal(simpleList)

	finalResp, err := session.SendMessage(ctx, genai.FunctionResponse{
		Name:     "lookup_invoices",
		Response: map[string]interface{}{"invoices": string(jsonBytes)},
	})
	if err != nil {
		return "Error reading invoices."
	}
	return handleRecursiveToolCalls(ctx, session, finalResp)
}

func executeFlagInvoice(ctx context.Context, session *genai.ChatSession, funcCall genai.FunctionCall) string {
	// Tool arguments come from the model, so never trust their types
	idArg, ok := funcCall.Args["invoice_id"].(float64)
	if !ok {
		return "Error: invoice_id must be a number."
	}
	invoiceID := int(idArg)

	result := database.DB.Model(&models.Invoice{}).Where("id = ?", invoiceID).Update("flagged", true)

	msg := "Success"
	if result.RowsAffected == 0 {
		msg = "Invoice ID not found"
	}

	finalResp, _ := session.SendMessage(ctx, genai.FunctionResponse{
		Name:     "flag_invoice",
		Response: map[string]interface{}{"status": msg, "invoice_id": invoiceID},
	})
	return printResponse(finalResp)
}

func executeSalesReport(ctx context.Context, session *genai.ChatSession, funcCall genai.FunctionCall) string {
	startStr, okStart := funcCall.Args["start_date"].(string)
	endStr, okEnd := funcCall.Args["end_date"].(string)
	if !okStart || !okEnd {
		return "Error: Dates must be in YYYY-MM-DD format."
	}

	start, err1 := time.Parse("2006-01-02", startStr)
	end, err2 := time.Parse("2006-01-02", endStr)

	if err1 != nil || err2 != nil {
		return "Error: Dates must be in YYYY-MM-DD format."
	}
	end = end.Add(23*time.Hour + 59*time.Minute)

	report, err := database.GetSalesReport(start, end)
	if err != nil {
		return "Error calculating sales."
	}

	finalResp, _ := session.SendMessage(ctx, genai.FunctionResponse{
		Name: "get_sales_report",
		Response: map[string]interface{}{
			"revenue":       report.TotalRevenue,
			"invoice_count": report.TotalCount,
		},
	})
	return printResponse(finalResp)
}

func printResponse(resp *genai.GenerateContentResponse) string {
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return "I completed the action."
}
