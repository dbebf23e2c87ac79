package console

import (
	"context"
	"sync"

	"enquiry-admin-console/internal/assignment"
	"enquiry-admin-console/internal/models"
	"enquiry-admin-console/internal/quotes"

	"go.uber.org/zap"
)

// Workspace is one admin's console state.
type Workspace struct {
	// User is fixed at creation.
	User        models.AuthUser
	Assignments *assignment.Store

	registry *Registry
	logger   *zap.Logger

	mu    sync.Mutex
	views map[string]*EnquiryView
}

// View returns the admin's view of an enquiry, fetching it on first use. A
// view whose load fails is logged and dropped, so a missing enquiry leaves
// nothing behind; the next call fetches it again.
func (w *Workspace) View(ctx context.Context, token, enquiryID string) (*EnquiryView, error) {
	w.mu.Lock()
	view, ok := w.views[enquiryID]
	if !ok {
		view = &EnquiryView{
			ws:        w,
			enquiryID: enquiryID,
			products:  make(map[string]bool),
			triage:    quotes.NewTriage(w.logger),
			logger:    w.logger.With(zap.String("enquiry_id", enquiryID)),
		}
		w.views[enquiryID] = view
	}
	w.mu.Unlock()

	if ok && view.Loaded() {
		return view, nil
	}
	if err := view.Reload(ctx, token); err != nil {
		w.mu.Lock()
		if w.views[enquiryID] == view {
			delete(w.views, enquiryID)
		}
		w.mu.Unlock()
		return view, err
	}
	return view, nil
}

// Vendors is the catalog source for this admin's token.
func (w *Workspace) Vendors(token string) assignment.VendorSource {
	return assignment.VendorSourceFunc(func(ctx context.Context) ([]models.Vendor, error) {
		return w.registry.backend.ListVendors(ctx, token)
	})
}

func (w *Workspace) publish(event string, payload any) {
	w.registry.notifier.Publish(w.User.ID, event, payload)
}
