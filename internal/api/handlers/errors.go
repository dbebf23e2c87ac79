package handlers

import (
	"errors"
	"net/http"

	"enquiry-admin-console/internal/api/middleware"
	"enquiry-admin-console/internal/backend"
	"enquiry-admin-console/internal/console"
	"enquiry-admin-console/internal/quotes"
	"enquiry-admin-console/internal/rfq"

	"github.com/gin-gonic/gin"
)

// respondError maps console and backend errors to a status and writes
// {"error": message}. A backend 401 means the token died mid-session, so the
// login redirect hint is added.
func respondError(c *gin.Context, err error) {
	var apiErr *backend.APIError
	switch {
	case errors.As(err, &apiErr):
		switch apiErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			c.JSON(http.StatusUnauthorized, gin.H{"error": apiErr.Message, "redirect": middleware.LoginPath})
		case http.StatusNotFound, http.StatusBadRequest, http.StatusConflict:
			c.JSON(apiErr.Status, gin.H{"error": apiErr.Message})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": apiErr.Message})
		}
	case errors.Is(err, console.ErrEnquiryNotLoaded),
		errors.Is(err, console.ErrUnknownProduct),
		errors.Is(err, console.ErrUnknownQuote):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, console.ErrNoOpenSelection),
		errors.Is(err, rfq.ErrSubmissionInFlight),
		errors.Is(err, quotes.ErrForwardInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, rfq.ErrNothingToSend),
		errors.Is(err, quotes.ErrEmptySelection):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}
