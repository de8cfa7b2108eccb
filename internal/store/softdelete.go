package store

import (
	"time"

	"go-gst-billing/internal/models"

	"gorm.io/gorm"
)

// Soft-delete policy for the billing entities.
//
// Every soft-deletable model embeds gorm.DeletedAt, so default reads
// (Find/First/Count) already exclude tombstoned rows and a plain Delete
// writes a tombstone instead of removing the row. The helpers here cover
// the paths GORM does not give for free: restoring, listing tombstones,
// bypassing the filter, and physical removal for admin tooling.
//
// Cascades across Invoice -> LineItem -> LineItemTax are deliberately NOT
// automatic at this layer; they are explicit aggregate operations below,
// run inside one transaction.

// SoftDelete tombstones rows by primary key. Re-deleting an already
// tombstoned row is a harmless no-op (zero rows affected, no error).
func SoftDelete[T any](db *gorm.DB, ids ...uint) error {
	if len(ids) == 0 {
		return nil
	}
	return db.Delete(new(T), ids).Error
}

// Restore clears the tombstone. Restoring an active row is a no-op.
func Restore[T any](db *gorm.DB, ids ...uint) error {
	if len(ids) == 0 {
		return nil
	}
	return db.Unscoped().Model(new(T)).Where("id IN ?", ids).
		Update("deleted_at", nil).Error
}

// FindDeleted returns only tombstoned rows, for the admin recycle bin
func FindDeleted[T any](db *gorm.DB) ([]T, error) {
	var out []T
	err := db.Unscoped().Where("deleted_at IS NOT NULL").Find(&out).Error
	return out, err
}

// FindWithDeleted bypasses the tombstone filter entirely
func FindWithDeleted[T any](db *gorm.DB) ([]T, error) {
	var out []T
	err := db.Unscoped().Find(&out).Error
	return out, err
}

// HardDelete physically removes rows. Terminal and irreversible;
// only admin paths call this.
func HardDelete[T any](db *gorm.DB, ids ...uint) error {
	if len(ids) == 0 {
		return nil
	}
	return db.Unscoped().Delete(new(T), ids).Error
}

// lineItemIDs collects the invoice's item ids. withDeleted includes
// tombstoned items, which restore and hard delete both need.
func lineItemIDs(tx *gorm.DB, invoiceID uint, withDeleted bool) ([]uint, error) {
	var ids []uint
	q := tx.Model(&models.LineItem{})
	if withDeleted {
		q = q.Unscoped()
	}
	err := q.Where("invoice_id = ?", invoiceID).Pluck("id", &ids).Error
	return ids, err
}

// CascadeSoftDeleteInvoice tombstones an invoice together with its line
// items and their tax rows, in one transaction. Every row gets the same
// timestamp, so a later restore can tell this cascade's tombstones apart
// from items that were already dead (replaced by an earlier edit).
// The Model+Update form carries the default scope, so only live rows are
// stamped and re-deleting a tombstoned invoice stays a no-op.
func CascadeSoftDeleteInvoice(db *gorm.DB, invoiceID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		itemIDs, err := lineItemIDs(tx, invoiceID, false)
		if err != nil {
			return err
		}
		if len(itemIDs) > 0 {
			if err := tx.Model(&models.LineItemTax{}).
				Where("line_item_id IN ?", itemIDs).
				Update("deleted_at", now).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.LineItem{}).
				Where("id IN ?", itemIDs).
				Update("deleted_at", now).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Invoice{}).
			Where("id = ?", invoiceID).
			Update("deleted_at", now).Error
	})
}

// restorableItemIDs picks the line items a restore should bring back: the
// rows the cascade delete itself tombstoned, stamped at or after the
// invoice's own tombstone. Items replaced by an earlier edit died before
// the invoice did and stay dead. The cutoff comparison happens on time
// instants in Go, independent of how the driver formats timestamps.
func restorableItemIDs(tx *gorm.DB, invoiceID uint, cutoff time.Time) ([]uint, error) {
	var items []models.LineItem
	err := tx.Unscoped().
		Where("invoice_id = ? AND deleted_at IS NOT NULL", invoiceID).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		if !item.DeletedAt.Time.Before(cutoff) {
			ids = append(ids, item.ID)
		}
	}
	return ids, nil
}

// CascadeRestoreInvoice undoes exactly what CascadeSoftDeleteInvoice
// tombstoned. Restoring a live invoice is a no-op.
func CascadeRestoreInvoice(db *gorm.DB, invoiceID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		if err := tx.Unscoped().First(&invoice, invoiceID).Error; err != nil {
			return err
		}
		if !invoice.DeletedAt.Valid {
			return nil
		}

		itemIDs, err := restorableItemIDs(tx, invoiceID, invoice.DeletedAt.Time)
		if err != nil {
			return err
		}
		if len(itemIDs) > 0 {
			// Tax rows only ever die together with their item, so every
			// dead row under a restored item came from the same cascade.
			if err := tx.Unscoped().Model(&models.LineItemTax{}).
				Where("line_item_id IN ?", itemIDs).
				Update("deleted_at", nil).Error; err != nil {
				return err
			}
			if err := Restore[models.LineItem](tx, itemIDs...); err != nil {
				return err
			}
		}
		return Restore[models.Invoice](tx, invoiceID)
	})
}

// CascadeHardDeleteInvoice physically removes an invoice and its children.
// Order matters for referential integrity: tax rows, then items, then the
// invoice itself.
func CascadeHardDeleteInvoice(db *gorm.DB, invoiceID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		itemIDs, err := lineItemIDs(tx, invoiceID, true)
		if err != nil {
			return err
		}
		if len(itemIDs) > 0 {
			if err := tx.Unscoped().Where("line_item_id IN ?", itemIDs).
				Delete(&models.LineItemTax{}).Error; err != nil {
				return err
			}
			if err := HardDelete[models.LineItem](tx, itemIDs...); err != nil {
				return err
			}
		}
		return HardDelete[models.Invoice](tx, invoiceID)
	})
}

// ReplaceInvoiceItems swaps an invoice's line items wholesale: the old
// items (and their tax rows) are tombstoned and the new set inserted.
// Used by the full-update path, inside the caller's transaction.
func ReplaceInvoiceItems(tx *gorm.DB, invoiceID uint, items []models.LineItem) error {
	itemIDs, err := lineItemIDs(tx, invoiceID, false)
	if err != nil {
		return err
	}
	if len(itemIDs) > 0 {
		if err := tx.Where("line_item_id IN ?", itemIDs).Delete(&models.LineItemTax{}).Error; err != nil {
			return err
		}
		if err := SoftDelete[models.LineItem](tx, itemIDs...); err != nil {
			return err
		}
	}
	for i := range items {
		items[i].InvoiceID = invoiceID
	}
	if len(items) == 0 {
		return nil
	}
	return tx.Create(&items).Error
}
