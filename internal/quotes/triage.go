package quotes

import (
	"context"
	"errors"
	"sync"

	"enquiry-admin-console/internal/backend"
	"enquiry-admin-console/internal/models"

	"go.uber.org/zap"
)

var (
	ErrEmptySelection  = errors.New("no quotes selected")
	ErrForwardInFlight = errors.New("selected quotes are already being sent to the buyer")
)

// Forwarder is the backend call that marks quotes visible to the buyer.
type Forwarder interface {
	SendQuotesToBuyer(ctx context.Context, token, enquiryID string, quoteIDs []string) (backend.ForwardResult, error)
}

// Triage holds the expanded groups and the selected quotes of one quote list.
// The two sets are independent. Safe for concurrent use.
type Triage struct {
	mu         sync.Mutex
	expanded   map[string]bool
	selected   map[string]bool
	order      []string
	forwarding bool
	logger     *zap.Logger
}

func NewTriage(logger *zap.Logger) *Triage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Triage{
		expanded: make(map[string]bool),
		selected: make(map[string]bool),
		logger:   logger,
	}
}

// ToggleExpanded flips a group's expansion and reports the new state.
func (t *Triage) ToggleExpanded(productID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.expanded[productID] {
		delete(t.expanded, productID)
		return false
	}
	t.expanded[productID] = true
	return true
}

func (t *Triage) Expanded(productID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expanded[productID]
}

// ToggleSelected flips a quote's membership and reports the new state.
func (t *Triage) ToggleSelected(quoteID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.selected[quoteID] {
		t.unselect(quoteID)
		return false
	}
	t.selected[quoteID] = true
	t.order = append(t.order, quoteID)
	return true
}

func (t *Triage) IsSelected(quoteID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selected[quoteID]
}

// Selected returns the selected quote ids in the order they were picked.
func (t *Triage) Selected() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.order...)
}

// Retain drops selected ids that are no longer in quotes.
func (t *Triage) Retain(quotes []models.Quote) {
	present := make(map[string]bool, len(quotes))
	for _, q := range quotes {
		present[q.ID] = true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range append([]string(nil), t.order...) {
		if !present[id] {
			t.unselect(id)
		}
	}
}

// Forward sends the selected quotes to the buyer. On success the forwarded
// ids are unselected and reload is called to re-fetch the list; a reload
// failure is logged only. On failure the selection is left as it was.
func (t *Triage) Forward(ctx context.Context, f Forwarder, token, enquiryID string, reload func(context.Context) error) (backend.ForwardResult, error) {
	t.mu.Lock()
	if len(t.order) == 0 {
		t.mu.Unlock()
		return backend.ForwardResult{}, ErrEmptySelection
	}
	if t.forwarding {
		t.mu.Unlock()
		return backend.ForwardResult{}, ErrForwardInFlight
	}
	t.forwarding = true
	ids := append([]string(nil), t.order...)
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.forwarding = false
		t.mu.Unlock()
	}()

	result, err := f.SendQuotesToBuyer(ctx, token, enquiryID, ids)
	if err != nil {
		t.logger.Error("Failed to send quotes to buyer",
			zap.String("enquiry_id", enquiryID), zap.Int("quotes", len(ids)), zap.Error(err))
		return backend.ForwardResult{}, err
	}

	t.mu.Lock()
	for _, id := range ids {
		t.unselect(id)
	}
	t.mu.Unlock()

	t.logger.Info("Quotes sent to buyer",
		zap.String("enquiry_id", enquiryID), zap.Int("quotes", len(ids)), zap.Int("count", result.Count))

	if reload != nil {
		if err := reload(ctx); err != nil {
			t.logger.Warn("Failed to reload quotes after forwarding", zap.String("enquiry_id", enquiryID), zap.Error(err))
		}
	}
	return result, nil
}

// unselect removes id from the selection. Callers hold t.mu.
func (t *Triage) unselect(id string) {
	delete(t.selected, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}
