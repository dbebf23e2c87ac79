package models

import (
	"fmt"
	"strings"
	"time"
)

// Product line statuses. Statuses are free text on the backend; these are the
// ones the console itself writes or defaults to.
const (
	ProductStatusPending  = "Pending"
	ProductStatusAssigned = "Assigned"
)

// ProductSheetItem is a catalog entry referenced by an enquiry line.
type ProductSheetItem struct {
	ID             string         `json:"_id,omitempty"`
	ProductSource  string         `json:"productSource"`
	AdminProductID string         `json:"adminProductId,omitempty"`
	ExternalRef    string         `json:"externalRef,omitempty"`
	DisplayName    string         `json:"displayName,omitempty"`
	Category       string         `json:"category,omitempty"`
	UserAttributes map[string]any `json:"userAttributes,omitempty"`
}

func (p ProductSheetItem) Identifier() string { return p.ID }

// EnquiryProduct is one line item of an enquiry.
type EnquiryProduct struct {
	ID                 string                `json:"_id,omitempty"`
	EnquiryID          string                `json:"enquiryId"`
	ProductSheetItemID Ref[ProductSheetItem] `json:"productsheetitemid"`
	Quantity           string                `json:"quantity,omitempty"`
	TargetUnitPrice    string                `json:"targetUnitPrice,omitempty"`
	Status             string                `json:"status"`
	CreatedAt          *time.Time            `json:"createdAt,omitempty"`
	UpdatedAt          *time.Time            `json:"updatedAt,omitempty"`
}

func (p EnquiryProduct) Identifier() string { return p.ID }

func (p EnquiryProduct) DisplayName() string {
	if item, ok := p.ProductSheetItemID.Resolve(); ok {
		if item.DisplayName != "" {
			return item.DisplayName
		}
		if item.ProductSource != "" {
			return item.ProductSource
		}
	}
	return "Unknown Product"
}

func (p EnquiryProduct) Category() string {
	if item, ok := p.ProductSheetItemID.Resolve(); ok && item.Category != "" {
		return item.Category
	}
	return "Uncategorized"
}

func (p EnquiryProduct) StatusOrDefault() string {
	if p.Status == "" {
		return ProductStatusPending
	}
	return p.Status
}

// Enquiry is a buyer's request for quotes on a set of products.
type Enquiry struct {
	ID                   string           `json:"_id,omitempty"`
	UserID               Ref[User]        `json:"userId"`
	EnquiryName          string           `json:"enquiryName"`
	ShippingAddress      Address          `json:"shippingAddress"`
	BillingAddress       Address          `json:"billingAddress"`
	ExpectedDeliveryDate *time.Time       `json:"expectedDeliveryDate,omitempty"`
	EnquiryStatus        string           `json:"enquiryStatus"`
	EnquiryNotes         string           `json:"enquiryNotes,omitempty"`
	Attachment           string           `json:"attachment,omitempty"`
	EnquiryProducts      []EnquiryProduct `json:"enquiryProducts,omitempty"`
	CreatedAt            *time.Time       `json:"createdAt,omitempty"`
	UpdatedAt            *time.Time       `json:"updatedAt,omitempty"`
}

// BuyerName prefers the populated buyer's name over the enquiry name.
func (e Enquiry) BuyerName() string {
	if user, ok := e.UserID.Resolve(); ok && user.Name() != "" {
		return user.Name()
	}
	if e.EnquiryName != "" {
		return e.EnquiryName
	}
	return "Unknown Company"
}

// BuyerEmail prefers the populated buyer's email, then the shipping and
// billing address emails. It returns "" when none is known.
func (e Enquiry) BuyerEmail() string {
	if user, ok := e.UserID.Resolve(); ok && user.Email() != "" {
		return user.Email()
	}
	if e.ShippingAddress.Email != "" {
		return e.ShippingAddress.Email
	}
	return e.BillingAddress.Email
}

func (e Enquiry) BuyerPhone() string {
	if e.ShippingAddress.Phone != "" {
		return e.ShippingAddress.Phone
	}
	return e.BillingAddress.Phone
}

// DisplayID renders the short ENQ-YYYY-XXX form shown to staff.
func (e Enquiry) DisplayID(now time.Time) string {
	if e.ID == "" {
		return "N/A"
	}
	short := e.ID
	if len(short) > 3 {
		short = short[len(short)-3:]
	}
	short = strings.Repeat("0", 3-len(short)) + strings.ToUpper(short)
	return fmt.Sprintf("ENQ-%d-%s", now.Year(), short)
}

// Product returns the line with the given id.
func (e *Enquiry) Product(id string) (*EnquiryProduct, bool) {
	for i := range e.EnquiryProducts {
		if e.EnquiryProducts[i].ID == id {
			return &e.EnquiryProducts[i], true
		}
	}
	return nil, false
}

// ProductIDs lists line ids in enquiry order, skipping lines without one.
func (e Enquiry) ProductIDs() []string {
	ids := make([]string, 0, len(e.EnquiryProducts))
	for _, p := range e.EnquiryProducts {
		if p.ID != "" {
			ids = append(ids, p.ID)
		}
	}
	return ids
}
