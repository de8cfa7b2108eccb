package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User - The person operating the billing desk
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;size:100" json:"email"`
	Name         string         `gorm:"size:100" json:"name"`
	PasswordHash string         `json:"-"`    // Never return this in JSON
	Role         string         `json:"role"` // 'admin', 'user'
	CreatedAt    time.Time      `json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Customer - The buyer master record, independent of any invoice snapshot
type Customer struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:150;not null" json:"name"`
	Address   string         `gorm:"size:255" json:"address"`
	City      string         `gorm:"size:100" json:"city"`
	State     string         `gorm:"size:100" json:"state"`
	StateCode string         `gorm:"size:10" json:"state_code"`
	Pincode   string         `gorm:"size:10" json:"pincode"`
	GSTIN     string         `gorm:"size:20;index" json:"gstin"` // Unique among live rows (checked in handler)
	Phone     string         `gorm:"size:20" json:"phone"`
	PANNumber string         `gorm:"size:15" json:"pan_number"`
	Email     string         `gorm:"size:100" json:"email"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Invoice - The sales/purchase document header.
// Buyer fields are a snapshot taken at creation time, so the invoice
// stays correct even if the Customer record changes or is removed later.
type Invoice struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	InvoiceNumber   string          `gorm:"size:50;uniqueIndex" json:"invoice_number"`
	InvoiceDate     time.Time       `json:"invoice_date"`
	TransactionType string          `gorm:"size:20" json:"transaction_type"` // 'retail', 'inter_state', 'outer_state'
	InputMode       string          `gorm:"size:20" json:"input_mode"`       // 'component', 'direct', 'reverse'
	TaxType         string          `gorm:"size:20" json:"tax_type"`         // 'CGST+SGST' or 'IGST' (derived)
	CustomerID      *uint           `json:"customer_id"`
	BuyerName       string          `gorm:"size:150" json:"buyer_name"`
	BuyerAddress    string          `gorm:"size:255" json:"buyer_address"`
	BuyerGSTIN      string          `gorm:"size:20" json:"buyer_gstin"`
	BuyerStateCode  string          `gorm:"size:10" json:"buyer_state_code"`
	CGSTRate        decimal.Decimal `gorm:"type:decimal(6,3)" json:"cgst_rate"`
	SGSTRate        decimal.Decimal `gorm:"type:decimal(6,3)" json:"sgst_rate"`
	TotalValue      decimal.Decimal `gorm:"type:decimal(20,2)" json:"total_invoice_value"`
	Roundoff        decimal.Decimal `gorm:"type:decimal(10,2)" json:"roundoff"` // Signed, whole-invoice adjustment
	Flagged         bool            `gorm:"default:false" json:"flagged"`
	Items           []LineItem      `gorm:"foreignKey:InvoiceID" json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}

// LineItem - One taxable product/service entry on an Invoice
type LineItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	InvoiceID    uint            `gorm:"index" json:"invoice_id"`
	HSNSACCode   string          `gorm:"size:20" json:"hsn_sac_code"`
	Description  string          `gorm:"size:255" json:"description"`
	Quantity     decimal.Decimal `gorm:"type:decimal(20,4)" json:"quantity"`
	Unit         string          `gorm:"size:20" json:"unit"`
	Rate         decimal.Decimal `gorm:"type:decimal(20,2)" json:"rate"`
	TaxableValue decimal.Decimal `gorm:"type:decimal(20,2)" json:"taxable_value"`
	Roundoff     decimal.Decimal `gorm:"type:decimal(10,2)" json:"roundoff"`
	Taxes        []LineItemTax   `gorm:"foreignKey:LineItemID" json:"taxes"`
	CreatedAt    time.Time       `json:"created_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}

// LineItemTax - One tax component (CGST, SGST or IGST) applied to a LineItem
type LineItemTax struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	LineItemID uint            `gorm:"index" json:"line_item_id"`
	TaxName    string          `gorm:"size:10" json:"tax_name"` // 'CGST', 'SGST', 'IGST'
	TaxRate    decimal.Decimal `gorm:"type:decimal(6,3)" json:"tax_rate"`
	TaxAmount  decimal.Decimal `gorm:"type:decimal(20,2)" json:"tax_amount"`
	CreatedAt  time.Time       `json:"created_at"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}

// TaxRate - A configured HSN/SAC code with its rate triple.
// At most one row is the default; the handler clears the others when one is set.
type TaxRate struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	HSNCode     string          `gorm:"size:20;uniqueIndex" json:"hsn_code"`
	Description string          `gorm:"size:255" json:"description"`
	CGST        decimal.Decimal `gorm:"type:decimal(6,3)" json:"cgst"`
	SGST        decimal.Decimal `gorm:"type:decimal(6,3)" json:"sgst"`
	IGST        decimal.Decimal `gorm:"type:decimal(6,3)" json:"igst"`
	IsDefault   bool            `gorm:"default:false" json:"is_default"`
	CreatedAt   time.Time       `json:"created_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}

// InvoiceSetting - Singleton config for invoice number generation.
// Not soft-deletable: settings are edited in place, never tombstoned.
type InvoiceSetting struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	PrefixRetail     string    `gorm:"size:20" json:"prefix_retail"`
	PrefixInterCity  string    `gorm:"size:20" json:"prefix_inter_city"`
	PrefixOuterState string    `gorm:"size:20" json:"prefix_outer_state"`
	NumberDigits     int       `gorm:"default:3" json:"number_digits"`
	StartingNumber   int       `gorm:"default:1" json:"starting_number"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// BusinessProfile - Singleton seller identity printed on every document
type BusinessProfile struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"size:150" json:"name"`
	GSTIN         string         `gorm:"size:20" json:"gstin"`
	Address       string         `gorm:"size:255" json:"address"`
	City          string         `gorm:"size:100" json:"city"`
	State         string         `gorm:"size:100" json:"state"`
	StateCode     string         `gorm:"size:10" json:"state_code"`
	Pincode       string         `gorm:"size:10" json:"pincode"`
	Phone         string         `gorm:"size:20" json:"phone"`
	Email         string         `gorm:"size:100" json:"email"`
	BankName      string         `gorm:"size:100" json:"bank_name"`
	BankAccountNo string         `gorm:"size:30" json:"bank_account_no"`
	BankIFSC      string         `gorm:"size:15" json:"bank_ifsc"`
	BankBranch    string         `gorm:"size:100" json:"bank_branch"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// SystemLicense - Device-locked activation record for this installation
type SystemLicense struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	LicenseKey     string    `json:"license_key"`
	ExpirationDate time.Time `json:"expiration_date"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}
