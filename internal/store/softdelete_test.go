package store

import (
	"strings"
	"sync"
	"testing"

	"go-gst-billing/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
	"gorm.io/gorm/utils/tests"
)

// Most tests here are DB-free: a DryRun session over the dummy dialector
// lets us assert the SQL the policy layer produces without a MySQL
// instance. The cascade tests need real rows and run on in-memory SQLite.

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true})
	require.NoError(t, err)
	return db
}

func sqliteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Invoice{}, &models.LineItem{}, &models.LineItemTax{}))
	return db
}

func liveItems(t *testing.T, db *gorm.DB, invoiceID uint) []models.LineItem {
	t.Helper()
	var invoice models.Invoice
	require.NoError(t, db.Preload("Items.Taxes").First(&invoice, invoiceID).Error)
	return invoice.Items
}

// Every entity in the soft-deletable set must carry the tombstone column;
// that is what makes default reads exclude deleted rows automatically.
func TestSoftDeletableSetCarriesTombstone(t *testing.T) {
	softDeletable := map[string]interface{}{
		"BusinessProfile": &models.BusinessProfile{},
		"Customer":        &models.Customer{},
		"Invoice":         &models.Invoice{},
		"LineItem":        &models.LineItem{},
		"LineItemTax":     &models.LineItemTax{},
		"TaxRate":         &models.TaxRate{},
		"User":            &models.User{},
	}
	for name, model := range softDeletable {
		s, err := schema.Parse(model, &sync.Map{}, schema.NamingStrategy{})
		require.NoError(t, err, name)
		field := s.LookUpField("DeletedAt")
		require.NotNil(t, field, "%s must have a DeletedAt tombstone", name)
	}

	// InvoiceSetting is outside the set on purpose: settings are edited
	// in place, never tombstoned.
	s, err := schema.Parse(&models.InvoiceSetting{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	assert.Nil(t, s.LookUpField("DeletedAt"))
}

func TestDefaultReadExcludesTombstonedRows(t *testing.T) {
	db := dryRunDB(t)

	queries := map[string]*gorm.DB{
		"customers": db.Find(&[]models.Customer{}),
		"invoices":  db.Find(&[]models.Invoice{}),
		"taxes":     db.Find(&[]models.LineItemTax{}),
	}
	for name, q := range queries {
		sql := q.Statement.SQL.String()
		assert.Contains(t, sql, "deleted_at", "%s: %s", name, sql)
		assert.Contains(t, sql, "IS NULL", "%s: %s", name, sql)
	}
}

// When the caller constrains deleted_at explicitly, the automatic filter
// must not be layered on top.
func TestExplicitDeletedAtFilterIsRespected(t *testing.T) {
	db := dryRunDB(t)

	q := db.Unscoped().Where("deleted_at IS NOT NULL").Find(&[]models.Customer{})
	sql := q.Statement.SQL.String()
	assert.Contains(t, sql, "deleted_at IS NOT NULL")
	assert.NotContains(t, sql, "`deleted_at` IS NULL")
}

func TestWithDeletedBypassesFilterEntirely(t *testing.T) {
	db := dryRunDB(t)

	q := db.Unscoped().Find(&[]models.Invoice{})
	sql := q.Statement.SQL.String()
	assert.NotContains(t, sql, "deleted_at")

	// The generic helpers build the same two query shapes
	_, err := FindWithDeleted[models.Invoice](db)
	assert.NoError(t, err)
	_, err = FindDeleted[models.Invoice](db)
	assert.NoError(t, err)
}

// Delete on a soft-deletable model must translate to a tombstone UPDATE
func TestDeleteTranslatesToTombstoneUpdate(t *testing.T) {
	db := dryRunDB(t)

	q := db.Delete(&models.Customer{}, 1)
	sql := q.Statement.SQL.String()
	assert.True(t, strings.HasPrefix(sql, "UPDATE"), "expected UPDATE, got: %s", sql)
	assert.Contains(t, sql, "deleted_at")
}

// Unscoped delete is the only path that physically removes a row
func TestHardDeleteEmitsPhysicalDelete(t *testing.T) {
	db := dryRunDB(t)

	q := db.Unscoped().Delete(&models.Customer{}, 1)
	sql := q.Statement.SQL.String()
	assert.True(t, strings.HasPrefix(sql, "DELETE"), "expected DELETE, got: %s", sql)
}

func TestRestoreClearsTombstone(t *testing.T) {
	db := dryRunDB(t)

	q := db.Unscoped().Model(&models.Invoice{}).Where("id IN ?", []uint{7}).
		Update("deleted_at", nil)
	sql := q.Statement.SQL.String()
	assert.True(t, strings.HasPrefix(sql, "UPDATE"), "expected UPDATE, got: %s", sql)
	assert.Contains(t, sql, "deleted_at")
}

func TestRegistryDispatch(t *testing.T) {
	for _, kind := range Kinds() {
		_, err := lookup(kind)
		assert.NoError(t, err, string(kind))
	}

	_, err := lookup(EntityKind("line_item"))
	assert.ErrorIs(t, err, ErrUnknownEntityKind)

	db := dryRunDB(t)
	_, err = ListDeleted(db, EntityKind("nope"))
	assert.ErrorIs(t, err, ErrUnknownEntityKind)
	assert.ErrorIs(t, RestoreKind(db, "nope", 1), ErrUnknownEntityKind)
	assert.ErrorIs(t, HardDeleteKind(db, "nope", 1), ErrUnknownEntityKind)
}

// Empty id lists are accepted and do nothing, so bulk endpoints can pass
// through whatever the client sent.
func TestNoOpOnEmptyIDList(t *testing.T) {
	db := dryRunDB(t)
	assert.NoError(t, SoftDelete[models.Customer](db))
	assert.NoError(t, Restore[models.Customer](db))
	assert.NoError(t, HardDelete[models.Customer](db))
}

func TestCascadeDeleteRestoreRoundTrip(t *testing.T) {
	db := sqliteDB(t)

	invoice := models.Invoice{
		InvoiceNumber: "JVJ/D/001",
		Items: []models.LineItem{{
			Description: "Gold ring",
			Taxes: []models.LineItemTax{
				{TaxName: "CGST"}, {TaxName: "SGST"},
			},
		}},
	}
	require.NoError(t, db.Create(&invoice).Error)

	require.NoError(t, CascadeSoftDeleteInvoice(db, invoice.ID))

	var gone models.Invoice
	assert.Error(t, db.First(&gone, invoice.ID).Error)
	var liveChildren int64
	require.NoError(t, db.Model(&models.LineItem{}).
		Where("invoice_id = ?", invoice.ID).Count(&liveChildren).Error)
	assert.Zero(t, liveChildren)

	require.NoError(t, CascadeRestoreInvoice(db, invoice.ID))

	items := liveItems(t, db, invoice.ID)
	require.Len(t, items, 1)
	assert.Equal(t, "Gold ring", items[0].Description)
	assert.Len(t, items[0].Taxes, 2)
}

// Line items tombstoned by an edit (ReplaceInvoiceItems) before the
// invoice was deleted must stay dead when the invoice comes back; the
// restore only undoes what the cascade delete itself tombstoned.
func TestRestoreSkipsItemsReplacedBeforeDeletion(t *testing.T) {
	db := sqliteDB(t)

	invoice := models.Invoice{
		InvoiceNumber: "JVJ/D/002",
		Items: []models.LineItem{{
			Description: "Gold ring",
			Taxes:       []models.LineItemTax{{TaxName: "CGST"}},
		}},
	}
	require.NoError(t, db.Create(&invoice).Error)

	err := db.Transaction(func(tx *gorm.DB) error {
		return ReplaceInvoiceItems(tx, invoice.ID, []models.LineItem{{
			Description: "Gold chain",
			Taxes:       []models.LineItemTax{{TaxName: "CGST"}},
		}})
	})
	require.NoError(t, err)

	require.NoError(t, CascadeSoftDeleteInvoice(db, invoice.ID))
	require.NoError(t, CascadeRestoreInvoice(db, invoice.ID))

	items := liveItems(t, db, invoice.ID)
	require.Len(t, items, 1)
	assert.Equal(t, "Gold chain", items[0].Description)

	// The replaced generation and its tax rows keep their tombstones
	var deadItems []models.LineItem
	require.NoError(t, db.Unscoped().
		Where("invoice_id = ? AND deleted_at IS NOT NULL", invoice.ID).
		Find(&deadItems).Error)
	require.Len(t, deadItems, 1)
	assert.Equal(t, "Gold ring", deadItems[0].Description)

	var deadTaxes int64
	require.NoError(t, db.Unscoped().Model(&models.LineItemTax{}).
		Where("line_item_id = ? AND deleted_at IS NOT NULL", deadItems[0].ID).
		Count(&deadTaxes).Error)
	assert.EqualValues(t, 1, deadTaxes)
}

func TestRestoreOfLiveInvoiceIsNoOp(t *testing.T) {
	db := sqliteDB(t)

	invoice := models.Invoice{
		InvoiceNumber: "JVJ/D/003",
		Items:         []models.LineItem{{Description: "Gold ring"}},
	}
	require.NoError(t, db.Create(&invoice).Error)

	// An edit tombstoned the first generation; restoring the live invoice
	// must not resurrect it.
	err := db.Transaction(func(tx *gorm.DB) error {
		return ReplaceInvoiceItems(tx, invoice.ID, []models.LineItem{{
			Description: "Gold chain",
		}})
	})
	require.NoError(t, err)

	require.NoError(t, CascadeRestoreInvoice(db, invoice.ID))

	items := liveItems(t, db, invoice.ID)
	require.Len(t, items, 1)
	assert.Equal(t, "Gold chain", items[0].Description)
}
