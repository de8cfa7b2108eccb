package billing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// InputMode controls how a line item's taxable value is derived
type InputMode string

const (
	ModeComponent InputMode = "component" // quantity x rate
	ModeDirect    InputMode = "direct"    // taxable amount entered directly
	ModeReverse   InputMode = "reverse"   // back-solved from a tax-inclusive target
)

// Typed validation errors so callers can tell bad input apart from system failure
var (
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
	ErrInvalidRate      = errors.New("rate must be greater than zero")
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrInvalidTarget    = errors.New("target amount must be greater than zero")
	ErrUnknownInputMode = errors.New("unknown input mode")
)

var oneHundred = decimal.NewFromInt(100)

// LineInput is one raw line as submitted by the caller. Which fields matter
// depends on Mode: component reads Quantity+Rate, direct reads Amount,
// reverse reads Amount (tax-inclusive target) + Rate.
type LineInput struct {
	HSNSACCode  string          `json:"hsn_sac_code"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	Mode        InputMode       `json:"mode"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
	Roundoff    decimal.Decimal `json:"roundoff"`
}

// Line is a resolved line item: quantity, rate and taxable value are all
// filled in regardless of which input mode produced them.
type Line struct {
	HSNSACCode   string          `json:"hsn_sac_code"`
	Description  string          `json:"description"`
	Unit         string          `json:"unit"`
	Quantity     decimal.Decimal `json:"quantity"`
	Rate         decimal.Decimal `json:"rate"`
	TaxableValue decimal.Decimal `json:"taxable_value"`
	Roundoff     decimal.Decimal `json:"roundoff"`
}

// TaxRow is one persisted tax component for a line item
type TaxRow struct {
	Name   string          `json:"tax_name"`
	Rate   decimal.Decimal `json:"tax_rate"`
	Amount decimal.Decimal `json:"tax_amount"`
}

// Totals is everything the renderer and the invoice record need
type Totals struct {
	TaxableValue        decimal.Decimal `json:"taxable_value"`
	CGSTAmount          decimal.Decimal `json:"cgst_amount"`
	SGSTAmount          decimal.Decimal `json:"sgst_amount"`
	IGSTAmount          decimal.Decimal `json:"igst_amount"`
	TotalBeforeRoundoff decimal.Decimal `json:"total_before_roundoff"`
	FinalTotal          decimal.Decimal `json:"final_total"`
	TaxType             string          `json:"tax_type"`
}

// ResolveLine validates one raw line and computes its taxable value.
//
// Reverse mode always back-solves with the combined CGST+SGST fraction,
// even for IGST transactions. The combined percentage is the same number
// under either regime; only the split of the tax rows differs. Confirmed
// with product as the intended behaviour.
func ResolveLine(in LineInput, cgstRate, sgstRate decimal.Decimal) (Line, error) {
	line := Line{
		HSNSACCode:  in.HSNSACCode,
		Description: in.Description,
		Unit:        in.Unit,
		Roundoff:    in.Roundoff,
	}

	switch in.Mode {
	case ModeComponent:
		if in.Quantity.LessThanOrEqual(decimal.Zero) {
			return Line{}, fmt.Errorf("line %q: %w", in.Description, ErrInvalidQuantity)
		}
		if in.Rate.LessThanOrEqual(decimal.Zero) {
			return Line{}, fmt.Errorf("line %q: %w", in.Description, ErrInvalidRate)
		}
		line.Quantity = in.Quantity
		line.Rate = in.Rate
		line.TaxableValue = in.Quantity.Mul(in.Rate)

	case ModeDirect:
		if in.Amount.LessThanOrEqual(decimal.Zero) {
			return Line{}, fmt.Errorf("line %q: %w", in.Description, ErrInvalidAmount)
		}
		line.Quantity = decimal.NewFromInt(1)
		line.Rate = in.Amount
		line.TaxableValue = in.Amount

	case ModeReverse:
		if in.Amount.LessThanOrEqual(decimal.Zero) {
			return Line{}, fmt.Errorf("line %q: %w", in.Description, ErrInvalidTarget)
		}
		if in.Rate.LessThanOrEqual(decimal.Zero) {
			return Line{}, fmt.Errorf("line %q: %w", in.Description, ErrInvalidRate)
		}
		taxFraction := cgstRate.Add(sgstRate).Div(oneHundred)
		line.TaxableValue = in.Amount.Div(decimal.NewFromInt(1).Add(taxFraction))
		line.Rate = in.Rate
		line.Quantity = line.TaxableValue.Div(in.Rate)

	default:
		return Line{}, fmt.Errorf("%w: %q", ErrUnknownInputMode, in.Mode)
	}

	return line, nil
}

// ResolveLines resolves every raw line or fails on the first invalid one.
// Validation happens before anything is persisted, so a rejected line
// never leaves partial writes behind.
func ResolveLines(inputs []LineInput, cgstRate, sgstRate decimal.Decimal) ([]Line, error) {
	lines := make([]Line, 0, len(inputs))
	for i, in := range inputs {
		line, err := ResolveLine(in, cgstRate, sgstRate)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// ComputeTotals aggregates resolved lines into the invoice totals.
// Exactly one regime carries the tax: IGST for inter/outer state
// transactions (at the combined rate), CGST+SGST otherwise.
// The global roundoff is applied once to the whole invoice and may be
// negative. Pure computation; persistence is the caller's job.
func ComputeTotals(lines []Line, t TransactionType, cgstRate, sgstRate, roundoff decimal.Decimal) Totals {
	taxable := decimal.Zero
	for _, line := range lines {
		taxable = taxable.Add(line.TaxableValue)
	}

	totals := Totals{
		TaxableValue: taxable,
		CGSTAmount:   decimal.Zero,
		SGSTAmount:   decimal.Zero,
		IGSTAmount:   decimal.Zero,
		TaxType:      ResolveTaxType(t),
	}

	if IsIGST(t) {
		igstRate := cgstRate.Add(sgstRate)
		totals.IGSTAmount = taxable.Mul(igstRate).Div(oneHundred)
	} else {
		totals.CGSTAmount = taxable.Mul(cgstRate).Div(oneHundred)
		totals.SGSTAmount = taxable.Mul(sgstRate).Div(oneHundred)
	}

	totals.TotalBeforeRoundoff = taxable.
		Add(totals.CGSTAmount).
		Add(totals.SGSTAmount).
		Add(totals.IGSTAmount)
	totals.FinalTotal = totals.TotalBeforeRoundoff.Add(roundoff)
	return totals
}

// TaxRowsFor builds the persisted tax components for one line item:
// two rows (CGST, SGST) for retail, one combined-rate IGST row otherwise.
func TaxRowsFor(line Line, t TransactionType, cgstRate, sgstRate decimal.Decimal) []TaxRow {
	if IsIGST(t) {
		igstRate := cgstRate.Add(sgstRate)
		return []TaxRow{
			{Name: "IGST", Rate: igstRate, Amount: line.TaxableValue.Mul(igstRate).Div(oneHundred)},
		}
	}
	return []TaxRow{
		{Name: "CGST", Rate: cgstRate, Amount: line.TaxableValue.Mul(cgstRate).Div(oneHundred)},
		{Name: "SGST", Rate: sgstRate, Amount: line.TaxableValue.Mul(sgstRate).Div(oneHundred)},
	}
}
