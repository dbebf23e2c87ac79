package console

import (
	"context"
	"fmt"
	"sync"

	"enquiry-admin-console/internal/assignment"
	"enquiry-admin-console/internal/backend"
	"enquiry-admin-console/internal/models"
	"enquiry-admin-console/internal/quotes"
	"enquiry-admin-console/internal/rfq"

	"go.uber.org/zap"
)

// EnquiryView is what one admin sees of one enquiry: the fetched enquiry, the
// lines ticked in the product table, the open vendor picker and the quotes.
type EnquiryView struct {
	ws        *Workspace
	enquiryID string
	logger    *zap.Logger
	triage    *quotes.Triage

	mu       sync.Mutex
	enquiry  *models.Enquiry
	products map[string]bool
	picker   *assignment.Selection
	quotes   []models.Quote
}

// VendorPicker is the state of the vendor modal of one line.
type VendorPicker struct {
	ProductID string          `json:"productId"`
	Vendors   []models.Vendor `json:"vendors"`
	Selected  []string        `json:"selected"`
}

// Review is the RFQ about to be sent.
type Review struct {
	Request    models.SendRFQRequest `json:"request"`
	Products   int                   `json:"products"`
	VendorRFQs int                   `json:"vendorRfqs"`
}

// QuoteBoard is the grouped quote list with its triage state.
type QuoteBoard struct {
	Groups   []BoardGroup   `json:"groups"`
	Selected []string       `json:"selected"`
	Summary  quotes.Summary `json:"summary"`
}

type BoardGroup struct {
	quotes.Group
	Expanded bool `json:"expanded"`
}

// Reload fetches the enquiry and its quotes. An enquiry failure empties the
// view and is returned; a quote failure is logged and leaves no quotes.
func (v *EnquiryView) Reload(ctx context.Context, token string) error {
	enquiry, err := v.ws.registry.backend.GetEnquiry(ctx, token, v.enquiryID)
	if err != nil {
		v.logger.Error("Failed to load enquiry", zap.Error(err))
		v.mu.Lock()
		v.enquiry = nil
		v.quotes = nil
		v.mu.Unlock()
		return err
	}

	v.mu.Lock()
	v.enquiry = enquiry
	for id := range v.products {
		if _, ok := enquiry.Product(id); !ok {
			delete(v.products, id)
		}
	}
	v.mu.Unlock()

	if err := v.ReloadQuotes(ctx, token); err != nil {
		v.logger.Error("Failed to load quotes", zap.Error(err))
	}
	return nil
}

// ReloadQuotes re-fetches the quote list. On failure the list is emptied.
func (v *EnquiryView) ReloadQuotes(ctx context.Context, token string) error {
	list, err := v.ws.registry.backend.ListQuotes(ctx, token, v.enquiryID)
	if err != nil {
		list = nil
	}
	v.mu.Lock()
	v.quotes = list
	v.mu.Unlock()
	v.triage.Retain(list)
	return err
}

func (v *EnquiryView) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.enquiry != nil
}

// Enquiry returns a copy of the fetched enquiry.
func (v *EnquiryView) Enquiry() (models.Enquiry, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.enquiry == nil {
		return models.Enquiry{}, ErrEnquiryNotLoaded
	}
	e := *v.enquiry
	e.EnquiryProducts = append([]models.EnquiryProduct(nil), v.enquiry.EnquiryProducts...)
	return e, nil
}

// SelectedProducts returns the ticked lines in enquiry order.
func (v *EnquiryView) SelectedProducts() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	var out []string
	if v.enquiry == nil {
		return out
	}
	for _, id := range v.enquiry.ProductIDs() {
		if v.products[id] {
			out = append(out, id)
		}
	}
	return out
}

// ToggleProduct ticks or unticks one line and reports the new state.
func (v *EnquiryView) ToggleProduct(productID string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.checkProduct(productID); err != nil {
		return false, err
	}
	if v.products[productID] {
		delete(v.products, productID)
		return false, nil
	}
	v.products[productID] = true
	return true, nil
}

// ToggleAll unticks every line when all are ticked, otherwise ticks all. It
// reports whether all lines are now ticked.
func (v *EnquiryView) ToggleAll() (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.enquiry == nil {
		return false, ErrEnquiryNotLoaded
	}
	ids := v.enquiry.ProductIDs()
	if len(ids) > 0 && len(v.products) == len(ids) {
		v.products = make(map[string]bool)
		return false, nil
	}
	v.products = make(map[string]bool, len(ids))
	for _, id := range ids {
		v.products[id] = true
	}
	return len(ids) > 0, nil
}

// OpenVendors opens the vendor picker of a line, seeded with its current
// assignment. An already open picker of the same line is kept as is. search
// filters the listed vendors only.
func (v *EnquiryView) OpenVendors(ctx context.Context, token, productID, search string) (VendorPicker, error) {
	v.mu.Lock()
	err := v.checkProduct(productID)
	v.mu.Unlock()
	if err != nil {
		return VendorPicker{}, err
	}

	sel, err := v.ws.Assignments.Open(ctx, v.ws.Vendors(token), productID)
	if err != nil {
		v.logger.Error("Failed to load vendors", zap.Error(err))
		return VendorPicker{}, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.picker == nil || v.picker.ProductID != productID {
		v.picker = sel
	}
	return pickerState(v.picker, search), nil
}

// CloseVendors discards the open picker of a line without committing.
func (v *EnquiryView) CloseVendors(productID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.picker != nil && v.picker.ProductID == productID {
		v.picker = nil
	}
}

// ToggleVendor flips a vendor in the open picker without committing.
func (v *EnquiryView) ToggleVendor(productID, vendorID string) (VendorPicker, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.picker == nil || v.picker.ProductID != productID {
		return VendorPicker{}, ErrNoOpenSelection
	}
	v.picker.Toggle(vendorID)
	return pickerState(v.picker, ""), nil
}

// CommitVendors replaces the line's assignment and closes the picker. With
// vendorIDs nil the open picker's selection is committed; otherwise the given
// catalog vendors are. Ids missing from the catalog are ignored.
func (v *EnquiryView) CommitVendors(ctx context.Context, token, productID string, vendorIDs []string) ([]models.Vendor, error) {
	v.mu.Lock()
	if err := v.checkProduct(productID); err != nil {
		v.mu.Unlock()
		return nil, err
	}
	var vendors []models.Vendor
	if vendorIDs == nil {
		if v.picker == nil || v.picker.ProductID != productID {
			v.mu.Unlock()
			return nil, ErrNoOpenSelection
		}
		vendors = v.picker.Vendors()
	}
	v.mu.Unlock()

	if vendorIDs != nil {
		sel, err := v.ws.Assignments.Open(ctx, v.ws.Vendors(token), productID)
		if err != nil {
			v.logger.Error("Failed to load vendors", zap.Error(err))
			return nil, err
		}
		sel.Set(vendorIDs)
		vendors = sel.Vendors()
	}

	v.ws.Assignments.Commit(ctx, productID, vendors)

	v.mu.Lock()
	if v.picker != nil && v.picker.ProductID == productID {
		v.picker = nil
	}
	v.mu.Unlock()

	assigned := v.ws.Assignments.Assigned(productID)
	v.ws.publish(EventAssignmentsChanged, assignmentEvent(v.enquiryID, productID, len(assigned)))
	return assigned, nil
}

// RemoveVendor drops one vendor from a line's assignment.
func (v *EnquiryView) RemoveVendor(ctx context.Context, productID, vendorID string) (bool, error) {
	v.mu.Lock()
	err := v.checkProduct(productID)
	v.mu.Unlock()
	if err != nil {
		return false, err
	}
	removed := v.ws.Assignments.Remove(ctx, productID, vendorID)
	if removed {
		v.ws.publish(EventAssignmentsChanged, assignmentEvent(v.enquiryID, productID, len(v.ws.Assignments.Assigned(productID))))
	}
	return removed, nil
}

// Assigned returns the assignment of every line of the enquiry.
func (v *EnquiryView) Assigned() (assignment.Assignments, error) {
	e, err := v.Enquiry()
	if err != nil {
		return nil, err
	}
	snapshot := v.ws.Assignments.Snapshot()
	out := make(assignment.Assignments)
	for _, id := range e.ProductIDs() {
		if vendors, ok := snapshot[id]; ok {
			out[id] = vendors
		}
	}
	return out, nil
}

// Review builds the RFQ that SendRFQ would send.
func (v *EnquiryView) Review() (Review, error) {
	e, err := v.Enquiry()
	if err != nil {
		return Review{}, err
	}
	req := rfq.BuildRequest(e.EnquiryProducts, v.ws.Assignments.Snapshot())
	return Review{Request: req, Products: len(req.Assignments), VendorRFQs: rfq.VendorRFQCount(req)}, nil
}

// SendRFQ submits the staged assignments and marks the included lines
// Assigned locally.
func (v *EnquiryView) SendRFQ(ctx context.Context, token string) (backend.RFQAck, error) {
	e, err := v.Enquiry()
	if err != nil {
		return backend.RFQAck{}, err
	}
	req, ack, err := v.ws.registry.submitter.Submit(ctx, token, e, v.ws.Assignments.Snapshot())
	if err != nil {
		return backend.RFQAck{}, err
	}

	v.mu.Lock()
	if v.enquiry != nil {
		rfq.MarkAssigned(v.enquiry, req)
	}
	v.mu.Unlock()

	v.ws.publish(EventRFQSent, map[string]any{
		"enquiryId":        v.enquiryID,
		"totalAssignments": ack.TotalAssignments,
	})
	return ack, nil
}

// Quotes returns the grouped quote list.
func (v *EnquiryView) Quotes() QuoteBoard {
	v.mu.Lock()
	list := append([]models.Quote(nil), v.quotes...)
	v.mu.Unlock()

	groups := quotes.GroupByProduct(list)
	board := QuoteBoard{
		Groups:   make([]BoardGroup, 0, len(groups)),
		Selected: v.triage.Selected(),
		Summary:  quotes.Summarize(groups),
	}
	for _, g := range groups {
		board.Groups = append(board.Groups, BoardGroup{Group: g, Expanded: v.triage.Expanded(g.ProductID)})
	}
	return board
}

// Groups returns the quotes grouped by product.
func (v *EnquiryView) Groups() []quotes.Group {
	v.mu.Lock()
	defer v.mu.Unlock()
	return quotes.GroupByProduct(v.quotes)
}

func (v *EnquiryView) ToggleGroup(productID string) bool {
	return v.triage.ToggleExpanded(productID)
}

// ToggleQuote flips a quote in the forwarding selection.
func (v *EnquiryView) ToggleQuote(quoteID string) (bool, error) {
	v.mu.Lock()
	found := false
	for _, q := range v.quotes {
		if q.ID == quoteID {
			found = true
			break
		}
	}
	v.mu.Unlock()
	if !found {
		return false, ErrUnknownQuote
	}
	return v.triage.ToggleSelected(quoteID), nil
}

// ForwardQuotes sends the selected quotes to the buyer and re-fetches the list.
func (v *EnquiryView) ForwardQuotes(ctx context.Context, token string) (backend.ForwardResult, error) {
	res, err := v.triage.Forward(ctx, v.ws.registry.backend, token, v.enquiryID, func(ctx context.Context) error {
		return v.ReloadQuotes(ctx, token)
	})
	if err != nil {
		return res, err
	}
	v.ws.publish(EventQuotesForwarded, map[string]any{"enquiryId": v.enquiryID, "count": res.Count})
	return res, nil
}

// checkProduct reports whether productID is a line of the loaded enquiry.
// Callers hold v.mu.
func (v *EnquiryView) checkProduct(productID string) error {
	if v.enquiry == nil {
		return ErrEnquiryNotLoaded
	}
	if _, ok := v.enquiry.Product(productID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}
	return nil
}

func assignmentEvent(enquiryID, productID string, vendors int) map[string]any {
	return map[string]any{"enquiryId": enquiryID, "productId": productID, "vendors": vendors}
}

func pickerState(sel *assignment.Selection, search string) VendorPicker {
	return VendorPicker{
		ProductID: sel.ProductID,
		Vendors:   sel.Search(search),
		Selected:  sel.IDs(),
	}
}
