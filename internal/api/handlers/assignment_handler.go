package handlers

import (
	"net/http"

	"enquiry-admin-console/internal/api/middleware"
	"enquiry-admin-console/internal/console"
	"enquiry-admin-console/internal/models"

	"github.com/gin-gonic/gin"
)

// AssignmentHandler drives the vendor modal of an enquiry line.
type AssignmentHandler struct {
	Registry *console.Registry
}

type ToggleVendorPayload struct {
	VendorID string `json:"vendorId" binding:"required"`
}

// CommitVendorsPayload commits the open modal when VendorIDs is absent.
type CommitVendorsPayload struct {
	VendorIDs *[]string `json:"vendorIds"`
}

func (h *AssignmentHandler) Open(c *gin.Context) {
	view, ok := loadView(c, h.Registry)
	if !ok {
		return
	}
	picker, err := view.OpenVendors(c.Request.Context(), middleware.Token(c), c.Param("productId"), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, picker)
}

func (h *AssignmentHandler) Close(c *gin.Context) {
	view, ok := loadView(c, h.Registry)
	if !ok {
		return
	}
	view.CloseVendors(c.Param("productId"))
	c.Status(http.StatusNoContent)
}

func (h *AssignmentHandler) Toggle(c *gin.Context) {
	var payload ToggleVendorPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, ok := loadView(c, h.Registry)
	if !ok {
		return
	}
	picker, err := view.ToggleVendor(c.Param("productId"), payload.VendorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, picker)
}

func (h *AssignmentHandler) Commit(c *gin.Context) {
	var payload CommitVendorsPayload
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	view, ok := loadView(c, h.Registry)
	if !ok {
		return
	}

	var ids []string
	if payload.VendorIDs != nil {
		ids = *payload.VendorIDs
		if ids == nil {
			ids = []string{}
		}
	}
	assigned, err := view.CommitVendors(c.Request.Context(), middleware.Token(c), c.Param("productId"), ids)
	if err != nil {
		respondError(c, err)
		return
	}
	if assigned == nil {
		assigned = []models.Vendor{}
	}
	c.JSON(http.StatusOK, gin.H{"productId": c.Param("productId"), "assignedVendors": assigned})
}

func (h *AssignmentHandler) Remove(c *gin.Context) {
	view, ok := loadView(c, h.Registry)
	if !ok {
		return
	}
	removed, err := view.RemoveVendor(c.Request.Context(), c.Param("productId"), c.Param("vendorId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vendor is not assigned to this product"})
		return
	}
	c.Status(http.StatusNoContent)
}
