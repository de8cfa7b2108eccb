package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestResolveLineComponentMode(t *testing.T) {
	line, err := ResolveLine(LineInput{
		Mode:     ModeComponent,
		Quantity: dec("10.5"),
		Rate:     dec("5600"),
	}, dec("1.5"), dec("1.5"))
	require.NoError(t, err)
	assert.True(t, line.TaxableValue.Equal(dec("58800")), "got %s", line.TaxableValue)
}

func TestResolveLineDirectMode(t *testing.T) {
	line, err := ResolveLine(LineInput{
		Mode:   ModeDirect,
		Amount: dec("25000"),
	}, dec("1.5"), dec("1.5"))
	require.NoError(t, err)
	assert.True(t, line.Quantity.Equal(dec("1")))
	assert.True(t, line.Rate.Equal(dec("25000")))
	assert.True(t, line.TaxableValue.Equal(dec("25000")))
}

// Scenario: reverse mode with rate 56000 and tax-inclusive target 590208.83
// at 1.5+1.5 percent. Back-solved values must round-trip within a paisa.
func TestResolveLineReverseMode(t *testing.T) {
	target := dec("590208.83")
	line, err := ResolveLine(LineInput{
		Mode:   ModeReverse,
		Amount: target,
		Rate:   dec("56000"),
	}, dec("1.5"), dec("1.5"))
	require.NoError(t, err)

	// taxable ~ 573018.28
	assert.True(t, line.TaxableValue.Sub(dec("573018.28")).Abs().LessThan(dec("0.01")),
		"taxable = %s", line.TaxableValue)

	// quantity ~ 10.232
	assert.True(t, line.Quantity.Sub(dec("10.232")).Abs().LessThan(dec("0.001")),
		"quantity = %s", line.Quantity)

	// Round trip: taxable * 1.03 recovers the target
	recovered := line.TaxableValue.Mul(dec("1.03"))
	assert.True(t, recovered.Sub(target).Abs().LessThan(dec("0.01")),
		"recovered = %s", recovered)

	// And taxable = quantity * rate
	assert.True(t, line.Quantity.Mul(line.Rate).Sub(line.TaxableValue).Abs().LessThan(dec("0.01")))
}

func TestResolveLineRejectsBadInput(t *testing.T) {
	cgst, sgst := dec("1.5"), dec("1.5")

	_, err := ResolveLine(LineInput{Mode: ModeComponent, Quantity: dec("0"), Rate: dec("100")}, cgst, sgst)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = ResolveLine(LineInput{Mode: ModeComponent, Quantity: dec("1"), Rate: dec("-5")}, cgst, sgst)
	assert.ErrorIs(t, err, ErrInvalidRate)

	_, err = ResolveLine(LineInput{Mode: ModeDirect, Amount: dec("0")}, cgst, sgst)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ResolveLine(LineInput{Mode: ModeReverse, Amount: dec("-1"), Rate: dec("100")}, cgst, sgst)
	assert.ErrorIs(t, err, ErrInvalidTarget)

	_, err = ResolveLine(LineInput{Mode: ModeReverse, Amount: dec("100"), Rate: dec("0")}, cgst, sgst)
	assert.ErrorIs(t, err, ErrInvalidRate)

	_, err = ResolveLine(LineInput{Mode: InputMode("bogus"), Amount: dec("100")}, cgst, sgst)
	assert.ErrorIs(t, err, ErrUnknownInputMode)
}

func TestResolveLinesStopsAtFirstBadLine(t *testing.T) {
	_, err := ResolveLines([]LineInput{
		{Mode: ModeDirect, Amount: dec("100")},
		{Mode: ModeComponent, Quantity: dec("0"), Rate: dec("10")},
	}, dec("1.5"), dec("1.5"))
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

// Scenario: outer_state, single line of 100000 at 1.5+1.5 ->
// IGST 3% = 3000, CGST/SGST zero, total 103000.
func TestComputeTotalsIGST(t *testing.T) {
	lines := []Line{{TaxableValue: dec("100000")}}
	totals := ComputeTotals(lines, TransactionOuterState, dec("1.5"), dec("1.5"), decimal.Zero)

	assert.Equal(t, TaxTypeIGST, totals.TaxType)
	assert.True(t, totals.IGSTAmount.Equal(dec("3000")), "igst = %s", totals.IGSTAmount)
	assert.True(t, totals.CGSTAmount.IsZero())
	assert.True(t, totals.SGSTAmount.IsZero())
	assert.True(t, totals.TotalBeforeRoundoff.Equal(dec("103000")))
	assert.True(t, totals.FinalTotal.Equal(dec("103000")))
}

// Scenario: retail, lines of 50000 + 30000 at 1.5+1.5, roundoff -0.50 ->
// taxable 80000, CGST 1200, SGST 1200, final 82399.50.
func TestComputeTotalsRetailWithRoundoff(t *testing.T) {
	lines := []Line{
		{TaxableValue: dec("50000")},
		{TaxableValue: dec("30000")},
	}
	totals := ComputeTotals(lines, TransactionRetail, dec("1.5"), dec("1.5"), dec("-0.50"))

	assert.Equal(t, TaxTypeCGSTSGST, totals.TaxType)
	assert.True(t, totals.TaxableValue.Equal(dec("80000")))
	assert.True(t, totals.CGSTAmount.Equal(dec("1200")), "cgst = %s", totals.CGSTAmount)
	assert.True(t, totals.SGSTAmount.Equal(dec("1200")), "sgst = %s", totals.SGSTAmount)
	assert.True(t, totals.IGSTAmount.IsZero())
	assert.True(t, totals.TotalBeforeRoundoff.Equal(dec("82400")))
	assert.True(t, totals.FinalTotal.Equal(dec("82399.50")), "final = %s", totals.FinalTotal)
}

// For nonzero taxable value, exactly one regime carries the tax amount
func TestTaxSplitExclusivity(t *testing.T) {
	lines := []Line{{TaxableValue: dec("12345.67")}}
	cgst, sgst := dec("9"), dec("9")

	for _, txn := range []TransactionType{TransactionRetail, TransactionInterState, TransactionOuterState} {
		totals := ComputeTotals(lines, txn, cgst, sgst, decimal.Zero)
		splitSide := totals.CGSTAmount.Add(totals.SGSTAmount)
		if IsIGST(txn) {
			assert.True(t, totals.IGSTAmount.IsPositive(), "%s: igst should carry the tax", txn)
			assert.True(t, splitSide.IsZero(), "%s: cgst+sgst must be zero", txn)
		} else {
			assert.True(t, splitSide.IsPositive(), "%s: cgst+sgst should carry the tax", txn)
			assert.True(t, totals.IGSTAmount.IsZero(), "%s: igst must be zero", txn)
		}
	}
}

func TestComputeTotalsEmptyInvoice(t *testing.T) {
	totals := ComputeTotals(nil, TransactionRetail, dec("1.5"), dec("1.5"), decimal.Zero)
	assert.True(t, totals.TaxableValue.IsZero())
	assert.True(t, totals.FinalTotal.IsZero())
}

func TestTaxRowsForRetailSplitsCGSTAndSGST(t *testing.T) {
	line := Line{TaxableValue: dec("10000")}
	rows := TaxRowsFor(line, TransactionRetail, dec("1.5"), dec("1.5"))

	require.Len(t, rows, 2)
	assert.Equal(t, "CGST", rows[0].Name)
	assert.True(t, rows[0].Amount.Equal(dec("150")))
	assert.Equal(t, "SGST", rows[1].Name)
	assert.True(t, rows[1].Amount.Equal(dec("150")))
}

func TestTaxRowsForIGSTUsesCombinedRate(t *testing.T) {
	line := Line{TaxableValue: dec("10000")}
	rows := TaxRowsFor(line, TransactionOuterState, dec("1.5"), dec("1.5"))

	require.Len(t, rows, 1)
	assert.Equal(t, "IGST", rows[0].Name)
	assert.True(t, rows[0].Rate.Equal(dec("3")))
	assert.True(t, rows[0].Amount.Equal(dec("300")))
}

// Per-line tax rows always sum to the aggregate tax, whichever regime applies
func TestTaxRowsSumMatchesAggregate(t *testing.T) {
	lines := []Line{
		{TaxableValue: dec("50000")},
		{TaxableValue: dec("30000")},
		{TaxableValue: dec("199.99")},
	}
	cgst, sgst := dec("2.5"), dec("2.5")

	for _, txn := range []TransactionType{TransactionRetail, TransactionOuterState} {
		totals := ComputeTotals(lines, txn, cgst, sgst, decimal.Zero)
		sum := decimal.Zero
		for _, line := range lines {
			for _, row := range TaxRowsFor(line, txn, cgst, sgst) {
				sum = sum.Add(row.Amount)
			}
		}
		aggregate := totals.CGSTAmount.Add(totals.SGSTAmount).Add(totals.IGSTAmount)
		assert.True(t, sum.Sub(aggregate).Abs().LessThan(dec("0.01")),
			"%s: rows sum %s vs aggregate %s", txn, sum, aggregate)
	}
}
