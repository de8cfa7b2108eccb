package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go-gst-billing/internal/database"
	"go-gst-billing/internal/logging"
	"go-gst-billing/internal/models"
	"go-gst-billing/internal/store"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// Admin-only endpoints: user management and the recycle bin
// (deleted-records listing, restore, permanent delete). Routing puts all
// of these behind RequireRole("admin").

func entityKindParam(c *gin.Context) (store.EntityKind, uint, bool) {
	kind := store.EntityKind(c.Param("kind"))
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record ID"})
		return "", 0, false
	}
	return kind, uint(id), true
}

// --- GET: Tombstoned rows for one entity kind ---
func GetDeletedRecords(c *gin.Context) {
	kind := store.EntityKind(c.Param("kind"))
	records, err := store.ListDeleted(database.DB, kind)
	if err != nil {
		if errors.Is(err, store.ErrUnknownEntityKind) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown entity kind", "kinds": store.Kinds()})
			return
		}
		logging.LogError("handlers", "GetDeletedRecords", "list deleted", kind, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch deleted records"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": kind, "records": records})
}

// --- POST: Restore a tombstoned row (invoices restore their children too) ---
func RestoreRecord(c *gin.Context) {
	kind, id, ok := entityKindParam(c)
	if !ok {
		return
	}
	if err := store.RestoreKind(database.DB, kind, id); err != nil {
		if errors.Is(err, store.ErrUnknownEntityKind) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown entity kind"})
			return
		}
		logging.LogError("handlers", "RestoreRecord", "restore", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to restore record"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Record restored"})
}

// --- DELETE: Permanently remove a row. Terminal, admin-only. ---
func HardDeleteRecord(c *gin.Context) {
	kind, id, ok := entityKindParam(c)
	if !ok {
		return
	}
	if err := store.HardDeleteKind(database.DB, kind, id); err != nil {
		if errors.Is(err, store.ErrUnknownEntityKind) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown entity kind"})
			return
		}
		logging.LogError("handlers", "HardDeleteRecord", "hard delete", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete record permanently"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Record permanently deleted"})
}

// --- GET: List users ---
func GetUsers(c *gin.Context) {
	var users []models.User
	if err := database.DB.Order("email").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// --- POST: Create a user ---
func AddUser(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Name     string `json:"name"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if input.Role != "admin" {
		input.Role = "user"
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: string(hashed),
		Role:         input.Role,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A user with this email already exists"})
		return
	}
	c.JSON(http.StatusCreated, user)
}

// --- PUT: Change a user's role or reset their password ---
func UpdateUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var input struct {
		Name     string `json:"name"`
		Role     string `json:"role"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Role == "admin" || input.Role == "user" {
		user.Role = input.Role
	}
	if input.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		user.PasswordHash = string(hashed)
	}

	if err := database.DB.Save(&user).Error; err != nil {
		logging.LogError("handlers", "UpdateUser", "save", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// --- DELETE: Tombstone a user account ---
func DeleteUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	// Don't let an admin lock everyone out by deleting themselves
	if callerID, exists := c.Get("userID"); exists && callerID == uint(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot delete your own account"})
		return
	}

	if err := store.SoftDelete[models.User](database.DB, uint(id)); err != nil {
		logging.LogError("handlers", "DeleteUser", "soft delete", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
