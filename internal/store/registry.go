package store

import (
	"errors"

	"go-gst-billing/internal/models"

	"gorm.io/gorm"
)

// EntityKind is the closed set of entities the admin recycle-bin tooling
// can operate on. A typed registry instead of string-to-table reflection
// keeps the dispatch compile-time checked.
type EntityKind string

const (
	KindCustomer        EntityKind = "customer"
	KindInvoice         EntityKind = "invoice"
	KindTaxRate         EntityKind = "tax_rate"
	KindUser            EntityKind = "user"
	KindBusinessProfile EntityKind = "business_profile"
)

var ErrUnknownEntityKind = errors.New("unknown entity kind")

type accessor struct {
	listDeleted func(db *gorm.DB) (interface{}, error)
	restore     func(db *gorm.DB, id uint) error
	hardDelete  func(db *gorm.DB, id uint) error
}

func entry[T any]() accessor {
	return accessor{
		listDeleted: func(db *gorm.DB) (interface{}, error) { return FindDeleted[T](db) },
		restore:     func(db *gorm.DB, id uint) error { return Restore[T](db, id) },
		hardDelete:  func(db *gorm.DB, id uint) error { return HardDelete[T](db, id) },
	}
}

// Invoices route through the cascade operations so children follow the header.
var registry = map[EntityKind]accessor{
	KindCustomer:        entry[models.Customer](),
	KindTaxRate:         entry[models.TaxRate](),
	KindUser:            entry[models.User](),
	KindBusinessProfile: entry[models.BusinessProfile](),
	KindInvoice: {
		listDeleted: func(db *gorm.DB) (interface{}, error) { return FindDeleted[models.Invoice](db) },
		restore:     CascadeRestoreInvoice,
		hardDelete:  CascadeHardDeleteInvoice,
	},
}

// Kinds lists every registered entity kind (for the admin UI dropdown)
func Kinds() []EntityKind {
	return []EntityKind{KindCustomer, KindInvoice, KindTaxRate, KindUser, KindBusinessProfile}
}

func lookup(kind EntityKind) (accessor, error) {
	acc, ok := registry[kind]
	if !ok {
		return accessor{}, ErrUnknownEntityKind
	}
	return acc, nil
}

// ListDeleted returns the tombstoned rows for one entity kind
func ListDeleted(db *gorm.DB, kind EntityKind) (interface{}, error) {
	acc, err := lookup(kind)
	if err != nil {
		return nil, err
	}
	return acc.listDeleted(db)
}

// RestoreKind clears the tombstone on one row of the given kind
func RestoreKind(db *gorm.DB, kind EntityKind, id uint) error {
	acc, err := lookup(kind)
	if err != nil {
		return err
	}
	return acc.restore(db, id)
}

// HardDeleteKind physically removes one row of the given kind
func HardDeleteKind(db *gorm.DB, kind EntityKind, id uint) error {
	acc, err := lookup(kind)
	if err != nil {
		return err
	}
	return acc.hardDelete(db, id)
}
