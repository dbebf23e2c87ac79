package backend

import (
	"context"
	"net/http"
	"net/url"

	"enquiry-admin-console/internal/models"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	User  models.AuthUser `json:"user"`
	Token string          `json:"token"`
}

// RFQAck acknowledges a send-rfq call.
type RFQAck struct {
	EnquiryID        string `json:"enquiryId"`
	TotalAssignments int    `json:"totalAssignments"`
}

type ForwardResult struct {
	Count int `json:"count"`
}

// Login calls POST /api/auth/login.
func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, http.MethodPost, "/api/auth/login", "", req, &out, "Login failed")
	return out, err
}

// CurrentUser calls GET /api/auth/me.
func (c *Client) CurrentUser(ctx context.Context, token string) (models.AuthUser, error) {
	var out models.AuthUser
	err := c.do(ctx, http.MethodGet, "/api/auth/me", token, nil, &out, "Not authenticated")
	return out, err
}

// ListEnquiries calls GET /api/admin/enquiries.
func (c *Client) ListEnquiries(ctx context.Context, token string) ([]models.Enquiry, error) {
	var out struct {
		Enquiries []models.Enquiry `json:"enquiries"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/enquiries", token, nil, &out, "Failed to get enquiries"); err != nil {
		return nil, err
	}
	return out.Enquiries, nil
}

// GetEnquiry calls GET /api/admin/enquiries/{id}.
func (c *Client) GetEnquiry(ctx context.Context, token, id string) (*models.Enquiry, error) {
	var out struct {
		Enquiry *models.Enquiry `json:"enquiry"`
	}
	if err := c.do(ctx, http.MethodGet, enquiryPath(id), token, nil, &out, "Failed to get enquiry"); err != nil {
		return nil, err
	}
	if out.Enquiry == nil {
		return nil, &APIError{Status: http.StatusNotFound, Message: "Enquiry not found"}
	}
	return out.Enquiry, nil
}

// ListVendors calls GET /api/admin/vendors.
func (c *Client) ListVendors(ctx context.Context, token string) ([]models.Vendor, error) {
	var out struct {
		Vendors []models.Vendor `json:"vendors"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/vendors", token, nil, &out, "Failed to get vendors"); err != nil {
		return nil, err
	}
	return out.Vendors, nil
}

// SendRFQ calls POST /api/admin/enquiries/{id}/send-rfq.
func (c *Client) SendRFQ(ctx context.Context, token, enquiryID string, req models.SendRFQRequest) (RFQAck, error) {
	var out RFQAck
	err := c.do(ctx, http.MethodPost, enquiryPath(enquiryID)+"/send-rfq", token, req, &out, "Failed to send RFQ")
	return out, err
}

// ListQuotes calls GET /api/admin/enquiries/{id}/quotes.
func (c *Client) ListQuotes(ctx context.Context, token, enquiryID string) ([]models.Quote, error) {
	var out struct {
		Quotes []models.Quote `json:"quotes"`
	}
	if err := c.do(ctx, http.MethodGet, enquiryPath(enquiryID)+"/quotes", token, nil, &out, "Failed to get quotes"); err != nil {
		return nil, err
	}
	return out.Quotes, nil
}

// SendQuotesToBuyer calls POST /api/admin/enquiries/{id}/quotes/send-to-buyer.
func (c *Client) SendQuotesToBuyer(ctx context.Context, token, enquiryID string, quoteIDs []string) (ForwardResult, error) {
	var out ForwardResult
	body := struct {
		QuoteIDs []string `json:"quoteIds"`
	}{QuoteIDs: quoteIDs}
	err := c.do(ctx, http.MethodPost, enquiryPath(enquiryID)+"/quotes/send-to-buyer", token, body, &out, "Failed to send quotes to buyer")
	return out, err
}

func enquiryPath(id string) string {
	return "/api/admin/enquiries/" + url.PathEscape(id)
}
