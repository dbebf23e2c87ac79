package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"enquiry-admin-console/internal/api/middleware"
	"enquiry-admin-console/internal/console"
	"enquiry-admin-console/internal/export"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FileStore signs attachment links and archives exports. It is optional.
type FileStore interface {
	AttachmentURL(ctx context.Context, link string) (string, error)
	UploadFile(ctx context.Context, file io.Reader, objectKey, contentType string) (string, error)
	ArchiveKey(enquiryID string, t time.Time) string
}

type QuoteHandler struct {
	Registry *console.Registry
	Files    FileStore
	Logger   *zap.Logger
}

// List serves the grouped quotes. ?refresh=true re-fetches them first.
func (h *QuoteHandler) List(c *gin.Context) {
	view, ok := loadView(c, h.Registry)
	if !ok {
		return
	}
	if c.Query("refresh") == "true" {
		if err := view.ReloadQuotes(c.Request.Context(), middleware.Token(c)); err != nil {
			h.Logger.Error("Failed to load quotes", zap.String("enquiry_id", c.Param("id")), zap.Error(err))
		}
	}

	board := view.Quotes()
	if h.Files != nil {
		for gi := range board.Groups {
			for qi := range board.Groups[gi].Quotes {
				q := &board.Groups[gi].Quotes[qi]
				signed, err := h.Files.AttachmentURL(c.Request.Context(), q.Attachment)
				if err != nil {
					h.Logger.Warn("Failed to sign attachment", zap.String("quote_id", q.ID), zap.Error(err))
					continue
				}
				q.Attachment = signed
			}
		}
	}
	c.JSON(http.StatusOK, board)
}

func (h *QuoteHandler) ToggleGroup(c *gin.Context) {
	view, ok := loadView(c, h.Registry)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"productId": c.Param("productId"), "expanded": view.ToggleGroup(c.Param("productId"))})
}

func (h *QuoteHandler) ToggleQuote(c *gin.Context) {
	view, ok := loadView(c, h.Registry)
	if !ok {
		return
	}
	selected, err := view.ToggleQuote(c.Param("quoteId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quoteId": c.Param("quoteId"), "selected": selected})
}

// Forward sends the selected quotes to the buyer.
func (h *QuoteHandler) Forward(c *gin.Context) {
	view, ok := loadView(c, h.Registry)
	if !ok {
		return
	}
	res, err := view.ForwardQuotes(c.Request.Context(), middleware.Token(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("%d quote(s) sent to buyer", res.Count),
		"count":   res.Count,
	})
}

// Export downloads the quote comparison workbook, or with ?archive=true
// stores it in the bucket and returns its URL.
func (h *QuoteHandler) Export(c *gin.Context) {
	view, ok := loadView(c, h.Registry)
	if !ok {
		return
	}
	e, err := view.Enquiry()
	if err != nil {
		respondError(c, err)
		return
	}

	data, err := export.Render(view.Groups())
	if err != nil {
		h.Logger.Error("Failed to build quote workbook", zap.String("enquiry_id", e.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build workbook"})
		return
	}
	now := time.Now()

	if c.Query("archive") == "true" {
		if h.Files == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Export archive is not configured"})
			return
		}
		key := h.Files.ArchiveKey(e.ID, now)
		url, err := h.Files.UploadFile(c.Request.Context(), bytes.NewReader(data), key, export.ContentType)
		if err != nil {
			h.Logger.Error("Failed to archive quote workbook", zap.String("key", key), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to archive workbook"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"key": key, "url": url})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", export.FileName(e, now)))
	c.Data(http.StatusOK, export.ContentType, data)
}
