// Package console holds the per-admin state of the dashboard: the vendor
// assignment store of each admin and the enquiry views they have open.
package console

import (
	"context"
	"errors"
	"sync"

	"enquiry-admin-console/internal/assignment"
	"enquiry-admin-console/internal/backend"
	"enquiry-admin-console/internal/cache"
	"enquiry-admin-console/internal/models"
	"enquiry-admin-console/internal/rfq"

	"go.uber.org/zap"
)

var (
	ErrEnquiryNotLoaded = errors.New("enquiry is not loaded")
	ErrUnknownProduct   = errors.New("product is not part of this enquiry")
	ErrUnknownQuote     = errors.New("quote is not part of this enquiry")
	ErrNoOpenSelection  = errors.New("no vendor selection is open for this product")
)

// Backend is the subset of the REST client the console drives.
type Backend interface {
	GetEnquiry(ctx context.Context, token, id string) (*models.Enquiry, error)
	ListQuotes(ctx context.Context, token, enquiryID string) ([]models.Quote, error)
	ListVendors(ctx context.Context, token string) ([]models.Vendor, error)
	SendRFQ(ctx context.Context, token, enquiryID string, req models.SendRFQRequest) (backend.RFQAck, error)
	SendQuotesToBuyer(ctx context.Context, token, enquiryID string, quoteIDs []string) (backend.ForwardResult, error)
}

// Event names pushed to an admin's open consoles.
const (
	EventRFQSent            = "rfq_sent"
	EventQuotesForwarded    = "quotes_forwarded"
	EventAssignmentsChanged = "assignments_changed"
)

// Notifier delivers events to every open console of a user.
type Notifier interface {
	Publish(userID, event string, payload any)
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, string, any) {}

// Registry hands out one Workspace per admin.
type Registry struct {
	cache     cache.Store
	backend   Backend
	submitter *rfq.Submitter
	notifier  Notifier
	logger    *zap.Logger

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

func NewRegistry(c cache.Store, b Backend, notifier Notifier, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Registry{
		cache:      c,
		backend:    b,
		submitter:  rfq.NewSubmitter(b, logger),
		notifier:   notifier,
		logger:     logger,
		workspaces: make(map[string]*Workspace),
	}
}

// Workspace returns the admin's workspace, loading its assignment map from
// the cache the first time. The workspace keeps the user it was created with.
func (r *Registry) Workspace(ctx context.Context, user models.AuthUser) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ws, ok := r.workspaces[user.ID]; ok {
		return ws
	}
	logger := r.logger.With(zap.String("user_id", user.ID))
	store := assignment.NewStore(cache.Namespace(r.cache, "user/"+user.ID), assignment.DefaultKey, logger)
	store.Load(ctx)

	ws := &Workspace{
		User:        user,
		Assignments: store,
		registry:    r,
		logger:      logger,
		views:       make(map[string]*EnquiryView),
	}
	r.workspaces[user.ID] = ws
	return ws
}

// Forget drops the in-memory workspace of a user, with its enquiry views.
// The cached assignment map is kept and reloaded by the next Workspace call.
func (r *Registry) Forget(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.workspaces, userID)
}
