package billing

import (
	"fmt"
	"strconv"
	"strings"
)

// TransactionType decides both the tax regime and which number prefix is used.
type TransactionType string

const (
	TransactionRetail     TransactionType = "retail"
	TransactionInterState TransactionType = "inter_state"
	TransactionOuterState TransactionType = "outer_state"
)

const (
	TaxTypeCGSTSGST = "CGST+SGST"
	TaxTypeIGST     = "IGST"
)

// Fallback defaults used when no InvoiceSetting row has been saved yet
const (
	DefaultPrefixLocal      = "JVJ/D/" // retail and inter_state
	DefaultPrefixOuterState = "JVJ/S/"
	DefaultNumberDigits     = 3
	DefaultStartingNumber   = 1
)

// NumberingSettings is the InvoiceSetting row loaded once per operation
// and passed in explicitly. Zero values fall back to the defaults above.
type NumberingSettings struct {
	PrefixRetail     string
	PrefixInterCity  string
	PrefixOuterState string
	NumberDigits     int
	StartingNumber   int
}

func DefaultNumberingSettings() NumberingSettings {
	return NumberingSettings{
		PrefixRetail:     DefaultPrefixLocal,
		PrefixInterCity:  DefaultPrefixLocal,
		PrefixOuterState: DefaultPrefixOuterState,
		NumberDigits:     DefaultNumberDigits,
		StartingNumber:   DefaultStartingNumber,
	}
}

// Normalized fills any missing field with its documented default,
// so a partially configured (or absent) settings row still works.
func (s NumberingSettings) Normalized() NumberingSettings {
	if s.PrefixRetail == "" {
		s.PrefixRetail = DefaultPrefixLocal
	}
	if s.PrefixInterCity == "" {
		s.PrefixInterCity = DefaultPrefixLocal
	}
	if s.PrefixOuterState == "" {
		s.PrefixOuterState = DefaultPrefixOuterState
	}
	if s.NumberDigits <= 0 {
		s.NumberDigits = DefaultNumberDigits
	}
	if s.StartingNumber <= 0 {
		s.StartingNumber = DefaultStartingNumber
	}
	return s
}

// IsIGST reports whether the transaction is taxed as a single IGST
// component instead of the CGST+SGST split.
func IsIGST(t TransactionType) bool {
	return t == TransactionInterState || t == TransactionOuterState
}

// ResolveTaxType maps a transaction type to the tax regime stored on the
// invoice. Anything that is not inter/outer state counts as retail.
func ResolveTaxType(t TransactionType) string {
	if IsIGST(t) {
		return TaxTypeIGST
	}
	return TaxTypeCGSTSGST
}

// PrefixFor picks the invoice number prefix for a transaction type.
// outer_state gets its own prefix; inter_state shares the local series
// prefix field but keeps its own independent counter.
func (s NumberingSettings) PrefixFor(t TransactionType) string {
	n := s.Normalized()
	switch t {
	case TransactionOuterState:
		return n.PrefixOuterState
	case TransactionInterState:
		return n.PrefixInterCity
	default:
		return n.PrefixRetail
	}
}

// NextSequence derives the next sequence number for a prefix given the most
// recently created invoice number under that prefix ("" when none exists).
// A suffix that does not parse as an unsigned integer is treated as absent,
// so one hand-edited invoice number cannot break the whole series.
func (s NumberingSettings) NextSequence(prefix, lastNumber string) int {
	n := s.Normalized()
	if lastNumber == "" {
		return n.StartingNumber
	}
	suffix := strings.TrimPrefix(lastNumber, prefix)
	last, err := strconv.ParseUint(suffix, 10, 64)
	if err != nil {
		return n.StartingNumber
	}
	return int(last) + 1
}

// FormatNumber zero-pads the sequence and glues it onto the prefix.
// Sequences that outgrow the configured width simply use more digits.
func (s NumberingSettings) FormatNumber(prefix string, seq int) string {
	n := s.Normalized()
	return prefix + fmt.Sprintf("%0*d", n.NumberDigits, seq)
}

// NextInvoiceNumber is the full derivation: prefix selection, sequence
// bump from the last number under that prefix, and zero-padded formatting.
func (s NumberingSettings) NextInvoiceNumber(t TransactionType, lastNumber string) string {
	prefix := s.PrefixFor(t)
	return s.FormatNumber(prefix, s.NextSequence(prefix, lastNumber))
}
