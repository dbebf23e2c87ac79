package handlers

import (
	"net/http"

	"enquiry-admin-console/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

type NavItem struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Icon string `json:"icon"`
}

var navigation = []NavItem{
	{Name: "Dashboard", Path: "/", Icon: "grid"},
	{Name: "Enquiries", Path: "/enquiries", Icon: "file-text"},
}

// Navigation serves the sidebar items and the top bar's user.
func Navigation(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"items": navigation,
		"user":  middleware.CurrentUser(c),
	})
}
