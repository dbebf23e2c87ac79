package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"enquiry-admin-console/internal/api/middleware"
	"enquiry-admin-console/internal/backend"
	"enquiry-admin-console/internal/console"
	"enquiry-admin-console/internal/enquiry"
	"enquiry-admin-console/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EnquiryLister is the backend call behind the enquiry list.
type EnquiryLister interface {
	ListEnquiries(ctx context.Context, token string) ([]models.Enquiry, error)
}

type EnquiryHandler struct {
	Backend  EnquiryLister
	Registry *console.Registry
	Logger   *zap.Logger
}

// EnquiryRow is one row of the enquiry list.
type EnquiryRow struct {
	ID           string     `json:"id"`
	DisplayID    string     `json:"displayId"`
	BuyerName    string     `json:"buyerName"`
	BuyerEmail   string     `json:"buyerEmail"`
	BuyerPhone   string     `json:"buyerPhone"`
	Status       string     `json:"status"`
	Products     int        `json:"products"`
	ExpectedDate *time.Time `json:"expectedDeliveryDate,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
}

// ProductRow is one line of the enquiry detail table.
type ProductRow struct {
	models.EnquiryProduct
	DisplayName     string          `json:"displayName"`
	Category        string          `json:"category"`
	Status          string          `json:"status"`
	Selected        bool            `json:"selected"`
	AssignedVendors []models.Vendor `json:"assignedVendors"`
}

// List serves the filtered enquiry list. A failed fetch is logged and shows
// as an empty list.
func (h *EnquiryHandler) List(c *gin.Context) {
	all, err := h.Backend.ListEnquiries(c.Request.Context(), middleware.Token(c))
	if err != nil {
		if sessionLost(err) {
			respondError(c, err)
			return
		}
		h.Logger.Error("Failed to load enquiries", zap.Error(err))
		all = nil
	}

	now := time.Now()
	matched := enquiry.Filter(all, c.Query("q"), c.Query("status"))
	rows := make([]EnquiryRow, 0, len(matched))
	for _, e := range matched {
		rows = append(rows, EnquiryRow{
			ID:           e.ID,
			DisplayID:    e.DisplayID(now),
			BuyerName:    e.BuyerName(),
			BuyerEmail:   e.BuyerEmail(),
			BuyerPhone:   e.BuyerPhone(),
			Status:       e.EnquiryStatus,
			Products:     len(e.EnquiryProducts),
			ExpectedDate: e.ExpectedDeliveryDate,
			CreatedAt:    e.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"enquiries": rows,
		"statuses":  enquiry.Statuses(all),
		"total":     len(all),
	})
}

// Get serves one enquiry with its assignment state. ?refresh=true re-fetches
// it from the backend.
func (h *EnquiryHandler) Get(c *gin.Context) {
	view, ok := loadView(c, h.Registry)
	if !ok {
		return
	}
	if c.Query("refresh") == "true" {
		if err := view.Reload(c.Request.Context(), middleware.Token(c)); err != nil {
			respondError(c, err)
			return
		}
	}
	h.respondDetail(c, view)
}

func (h *EnquiryHandler) ToggleProduct(c *gin.Context) {
	view, ok := loadView(c, h.Registry)
	if !ok {
		return
	}
	selected, err := view.ToggleProduct(c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"productId": c.Param("productId"), "selected": selected, "selectedProducts": view.SelectedProducts()})
}

func (h *EnquiryHandler) ToggleAll(c *gin.Context) {
	view, ok := loadView(c, h.Registry)
	if !ok {
		return
	}
	all, err := view.ToggleAll()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"allSelected": all, "selectedProducts": view.SelectedProducts()})
}

func (h *EnquiryHandler) respondDetail(c *gin.Context, view *console.EnquiryView) {
	e, err := view.Enquiry()
	if err != nil {
		respondError(c, err)
		return
	}
	assigned, err := view.Assigned()
	if err != nil {
		respondError(c, err)
		return
	}
	selected := make(map[string]bool)
	for _, id := range view.SelectedProducts() {
		selected[id] = true
	}

	rows := make([]ProductRow, 0, len(e.EnquiryProducts))
	total := 0
	for _, p := range e.EnquiryProducts {
		vendors := assigned[p.ID]
		if vendors == nil {
			vendors = []models.Vendor{}
		}
		total += len(vendors)
		rows = append(rows, ProductRow{
			EnquiryProduct:  p,
			DisplayName:     p.DisplayName(),
			Category:        p.Category(),
			Status:          p.StatusOrDefault(),
			Selected:        selected[p.ID],
			AssignedVendors: vendors,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"enquiry":         e,
		"displayId":       e.DisplayID(time.Now()),
		"buyer":           gin.H{"name": e.BuyerName(), "email": e.BuyerEmail(), "phone": e.BuyerPhone()},
		"products":        rows,
		"allSelected":     len(rows) > 0 && len(selected) == len(e.ProductIDs()),
		"totalVendorRfqs": total,
	})
}

// loadView resolves the admin's view of the :id enquiry, writing the error
// response itself when that fails.
func loadView(c *gin.Context, registry *console.Registry) (*console.EnquiryView, bool) {
	ws := registry.Workspace(c.Request.Context(), middleware.CurrentUser(c))
	view, err := ws.View(c.Request.Context(), middleware.Token(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return view, true
}

// sessionLost reports whether the backend refused the token itself.
func sessionLost(err error) bool {
	var apiErr *backend.APIError
	return errors.As(err, &apiErr) &&
		(apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden)
}
