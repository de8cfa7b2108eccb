package billing

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveTaxType(t *testing.T) {
	assert.Equal(t, TaxTypeCGSTSGST, ResolveTaxType(TransactionRetail))
	assert.Equal(t, TaxTypeIGST, ResolveTaxType(TransactionInterState))
	assert.Equal(t, TaxTypeIGST, ResolveTaxType(TransactionOuterState))

	// Anything unrecognized falls back to the retail regime
	assert.Equal(t, TaxTypeCGSTSGST, ResolveTaxType(TransactionType("whatever")))
}

func TestPrefixSelection(t *testing.T) {
	s := NumberingSettings{
		PrefixRetail:     "JVJ/D/",
		PrefixInterCity:  "JVJ/I/",
		PrefixOuterState: "JVJ/S/",
	}
	assert.Equal(t, "JVJ/D/", s.PrefixFor(TransactionRetail))
	assert.Equal(t, "JVJ/I/", s.PrefixFor(TransactionInterState))
	assert.Equal(t, "JVJ/S/", s.PrefixFor(TransactionOuterState))
}

func TestPrefixDefaultsWhenSettingsAbsent(t *testing.T) {
	// An empty settings struct behaves like the documented defaults
	var s NumberingSettings
	assert.Equal(t, "JVJ/D/", s.PrefixFor(TransactionRetail))
	assert.Equal(t, "JVJ/D/", s.PrefixFor(TransactionInterState))
	assert.Equal(t, "JVJ/S/", s.PrefixFor(TransactionOuterState))
	assert.Equal(t, DefaultNumberingSettings(), s.Normalized())
}

// Scenario: fresh system, no prior invoices -> first retail number is JVJ/D/001
func TestFirstRetailInvoiceNumber(t *testing.T) {
	s := NumberingSettings{PrefixRetail: "JVJ/D/", NumberDigits: 3, StartingNumber: 1}
	assert.Equal(t, "JVJ/D/001", s.NextInvoiceNumber(TransactionRetail, ""))
	assert.Equal(t, TaxTypeCGSTSGST, ResolveTaxType(TransactionRetail))
}

// Scenario: JVJ/D/001 already exists -> next retail number is JVJ/D/002
func TestSequenceIncrementsFromLastNumber(t *testing.T) {
	s := NumberingSettings{PrefixRetail: "JVJ/D/", NumberDigits: 3, StartingNumber: 1}
	assert.Equal(t, "JVJ/D/002", s.NextInvoiceNumber(TransactionRetail, "JVJ/D/001"))
}

func TestSequenceMonotonicNoGaps(t *testing.T) {
	s := NumberingSettings{PrefixRetail: "JVJ/D/", NumberDigits: 3, StartingNumber: 1}

	last := ""
	for i := 1; i <= 25; i++ {
		next := s.NextInvoiceNumber(TransactionRetail, last)
		assert.Equal(t, fmt.Sprintf("JVJ/D/%03d", i), next)
		last = next
	}
}

func TestStartingNumberRespected(t *testing.T) {
	s := NumberingSettings{PrefixRetail: "INV/", NumberDigits: 4, StartingNumber: 500}
	assert.Equal(t, "INV/0500", s.NextInvoiceNumber(TransactionRetail, ""))
	assert.Equal(t, "INV/0501", s.NextInvoiceNumber(TransactionRetail, "INV/0500"))
}

func TestPrefixesKeepIndependentCounters(t *testing.T) {
	s := NumberingSettings{
		PrefixRetail:     "JVJ/D/",
		PrefixInterCity:  "JVJ/D/",
		PrefixOuterState: "JVJ/S/",
		NumberDigits:     3,
		StartingNumber:   1,
	}

	// The outer-state series starts at 001 no matter how far retail has gone
	assert.Equal(t, "JVJ/D/042", s.NextInvoiceNumber(TransactionRetail, "JVJ/D/041"))
	assert.Equal(t, "JVJ/S/001", s.NextInvoiceNumber(TransactionOuterState, ""))
}

// A hand-edited or corrupt suffix must not break number generation;
// the series falls back to its starting number instead.
func TestCorruptSuffixFallsBackToStart(t *testing.T) {
	s := NumberingSettings{PrefixRetail: "JVJ/D/", NumberDigits: 3, StartingNumber: 1}
	assert.Equal(t, "JVJ/D/001", s.NextInvoiceNumber(TransactionRetail, "JVJ/D/ABC"))
	assert.Equal(t, "JVJ/D/001", s.NextInvoiceNumber(TransactionRetail, "JVJ/D/12X"))
	assert.Equal(t, "JVJ/D/001", s.NextInvoiceNumber(TransactionRetail, "JVJ/D/-5"))
}

func TestSequenceOverflowsPaddingWidth(t *testing.T) {
	s := NumberingSettings{PrefixRetail: "JVJ/D/", NumberDigits: 3, StartingNumber: 1}
	assert.Equal(t, "JVJ/D/1000", s.NextInvoiceNumber(TransactionRetail, "JVJ/D/999"))
}
