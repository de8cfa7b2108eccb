package handlers

import (
	"net/http"
	"strconv"

	"go-gst-billing/internal/database"
	"go-gst-billing/internal/logging"
	"go-gst-billing/internal/models"
	"go-gst-billing/internal/store"

	"github.com/gin-gonic/gin"
)

// gstinTaken checks GSTIN uniqueness among live (non-deleted) customers.
// Tombstoned customers do not block reuse of their GSTIN.
func gstinTaken(gstin string, excludeID uint) (bool, error) {
	if gstin == "" {
		return false, nil
	}
	var count int64
	q := database.DB.Model(&models.Customer{}).Where("gstin = ?", gstin)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// --- GET: List all customers ---
func GetCustomers(c *gin.Context) {
	var customers []models.Customer

	q := database.DB.Order("name")
	if search := c.Query("q"); search != "" {
		q = q.Where("name LIKE ? OR gstin LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if err := q.Find(&customers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch customers"})
		return
	}
	c.JSON(http.StatusOK, customers)
}

// --- GET: Single customer ---
func GetCustomer(c *gin.Context) {
	var customer models.Customer
	if err := database.DB.First(&customer, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}
	c.JSON(http.StatusOK, customer)
}

// --- POST: Add a new customer ---
func AddCustomer(c *gin.Context) {
	var customer models.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if customer.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Customer name is required"})
		return
	}

	taken, err := gstinTaken(customer.GSTIN, 0)
	if err != nil {
		logging.LogError("handlers", "AddCustomer", "gstin check", customer.GSTIN, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create customer"})
		return
	}
	if taken {
		c.JSON(http.StatusConflict, gin.H{"error": "A customer with this GSTIN already exists"})
		return
	}

	if err := database.DB.Create(&customer).Error; err != nil {
		logging.LogError("handlers", "AddCustomer", "insert", customer.Name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create customer"})
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// --- PUT: Update customer details ---
// Invoices keep their buyer snapshot, so editing a customer never
// rewrites history.
func UpdateCustomer(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID"})
		return
	}

	var customer models.Customer
	if err := database.DB.First(&customer, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}

	var input models.Customer
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	taken, err := gstinTaken(input.GSTIN, customer.ID)
	if err != nil {
		logging.LogError("handlers", "UpdateCustomer", "gstin check", input.GSTIN, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update customer"})
		return
	}
	if taken {
		c.JSON(http.StatusConflict, gin.H{"error": "A customer with this GSTIN already exists"})
		return
	}

	customer.Name = input.Name
	customer.Address = input.Address
	customer.City = input.City
	customer.State = input.State
	customer.StateCode = input.StateCode
	customer.Pincode = input.Pincode
	customer.GSTIN = input.GSTIN
	customer.Phone = input.Phone
	customer.PANNumber = input.PANNumber
	customer.Email = input.Email

	if err := database.DB.Save(&customer).Error; err != nil {
		logging.LogError("handlers", "UpdateCustomer", "save", customer.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update customer"})
		return
	}
	c.JSON(http.StatusOK, customer)
}

// --- DELETE: Tombstone a customer ---
// Their invoices stay untouched; the buyer snapshot on each invoice is
// what the documents print from.
func DeleteCustomer(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID"})
		return
	}

	if err := store.SoftDelete[models.Customer](database.DB, uint(id)); err != nil {
		logging.LogError("handlers", "DeleteCustomer", "soft delete", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete customer"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted"})
}
