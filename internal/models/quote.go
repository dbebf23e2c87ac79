package models

import "time"

// Quote statuses as written by the vendor-side system.
const (
	QuoteStatusSubmitted = "Submitted"
	QuoteStatusAccepted  = "Accepted"
	QuoteStatusRejected  = "Rejected"
)

// VendorAssignment links a vendor to an enquiry line. It only reaches the
// console populated inside quotes.
type VendorAssignment struct {
	ID               string              `json:"_id,omitempty"`
	EnquiryProductID Ref[EnquiryProduct] `json:"enquiryProductId"`
	VendorID         Ref[User]           `json:"vendorId"`
}

func (a VendorAssignment) Identifier() string { return a.ID }

// Quote is a vendor's answer to an RFQ line.
type Quote struct {
	ID                 string                `json:"_id,omitempty"`
	VendorAssignmentID Ref[VendorAssignment] `json:"vendorAssignmentId"`
	UnitPrice          string                `json:"unitPrice,omitempty"`
	DeliveryDate       *time.Time            `json:"deliveryDate,omitempty"`
	ValidTill          *time.Time            `json:"validTill,omitempty"`
	Description        string                `json:"description,omitempty"`
	Attachment         string                `json:"attachment,omitempty"`
	VisibleToClient    bool                  `json:"visibletoClient"`
	QuoteStatus        string                `json:"quoteStatus"`
	CreatedAt          *time.Time            `json:"createdAt,omitempty"`
	UpdatedAt          *time.Time            `json:"updatedAt,omitempty"`
}

// CatalogItem follows assignment → enquiry line → catalog item. ok is false
// when any link of the chain is missing or unpopulated.
func (q Quote) CatalogItem() (item ProductSheetItem, ok bool) {
	assignment, ok := q.VendorAssignmentID.Resolve()
	if !ok {
		return item, false
	}
	line, ok := assignment.EnquiryProductID.Resolve()
	if !ok {
		return item, false
	}
	item, ok = line.ProductSheetItemID.Resolve()
	if !ok || item.ID == "" {
		return ProductSheetItem{}, false
	}
	return item, true
}

func (q Quote) VendorName() string {
	if assignment, ok := q.VendorAssignmentID.Resolve(); ok {
		if vendor, ok := assignment.VendorID.Resolve(); ok && vendor.Name() != "" {
			return vendor.Name()
		}
	}
	return "Unknown Vendor"
}

// RFQAssignment is one line of an RFQ request.
type RFQAssignment struct {
	EnquiryProductID string   `json:"enquiryProductId"`
	VendorIDs        []string `json:"vendorIds"`
}

type SendRFQRequest struct {
	Assignments []RFQAssignment `json:"assignments"`
}
