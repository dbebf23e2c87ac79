package handlers

import (
	"net/http"

	"enquiry-admin-console/internal/api/middleware"
	"enquiry-admin-console/internal/console"

	"github.com/gin-gonic/gin"
)

type RFQHandler struct {
	Registry *console.Registry
}

// Review shows the RFQ that Send would submit.
func (h *RFQHandler) Review(c *gin.Context) {
	view, ok := loadView(c, h.Registry)
	if !ok {
		return
	}
	review, err := view.Review()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h *RFQHandler) Send(c *gin.Context) {
	view, ok := loadView(c, h.Registry)
	if !ok {
		return
	}
	ack, err := view.SendRFQ(c.Request.Context(), middleware.Token(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "RFQ sent successfully", "data": ack})
}
