package console

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"

	"enquiry-admin-console/internal/assignment"
	"enquiry-admin-console/internal/backend"
	"enquiry-admin-console/internal/cache"
	"enquiry-admin-console/internal/models"
	"enquiry-admin-console/internal/rfq"
)

type fakeBackend struct {
	mu          sync.Mutex
	enquiry     *models.Enquiry
	enquiryErr  error
	quotes      []models.Quote
	quotesErr   error
	vendors     []models.Vendor
	vendorCalls int
	rfqs        []models.SendRFQRequest
	forwarded   [][]string
}

func (f *fakeBackend) GetEnquiry(_ context.Context, _, id string) (*models.Enquiry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.enquiryErr != nil {
		return nil, f.enquiryErr
	}
	e := *f.enquiry
	e.EnquiryProducts = append([]models.EnquiryProduct(nil), f.enquiry.EnquiryProducts...)
	return &e, nil
}

func (f *fakeBackend) ListQuotes(context.Context, string, string) ([]models.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Quote(nil), f.quotes...), f.quotesErr
}

func (f *fakeBackend) ListVendors(context.Context, string) ([]models.Vendor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vendorCalls++
	return f.vendors, nil
}

func (f *fakeBackend) SendRFQ(_ context.Context, _, id string, req models.SendRFQRequest) (backend.RFQAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rfqs = append(f.rfqs, req)
	return backend.RFQAck{EnquiryID: id, TotalAssignments: rfq.VendorRFQCount(req)}, nil
}

func (f *fakeBackend) SendQuotesToBuyer(_ context.Context, _, _ string, ids []string) (backend.ForwardResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forwarded = append(f.forwarded, ids)
	for i := range f.quotes {
		for _, id := range ids {
			if f.quotes[i].ID == id {
				f.quotes[i].VisibleToClient = true
			}
		}
	}
	return backend.ForwardResult{Count: len(ids)}, nil
}

type recordedEvent struct {
	userID, event string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *recordingNotifier) Publish(userID, event string, _ any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{userID, event})
}

var admin = models.AuthUser{ID: "admin-1", Email: "ops@example.com", Role: models.RoleAdmin}

func newFixture(t *testing.T) (*fakeBackend, *recordingNotifier, *Registry, cache.Store) {
	t.Helper()
	fb := &fakeBackend{
		enquiry: &models.Enquiry{
			ID: "E1",
			EnquiryProducts: []models.EnquiryProduct{
				{ID: "P1", Status: models.ProductStatusPending},
				{ID: "P2", Status: models.ProductStatusPending},
			},
		},
		vendors: []models.Vendor{{ID: "V1", Name: "Acme"}, {ID: "V2", Name: "Bolt"}, {ID: "V3", Name: "Crane"}},
		quotes:  []models.Quote{{ID: "Q1"}, {ID: "Q2"}},
	}
	n := &recordingNotifier{}
	c := cache.NewMemoryStore()
	return fb, n, NewRegistry(c, fb, n, nil), c
}

func openView(t *testing.T, r *Registry) (*Workspace, *EnquiryView) {
	t.Helper()
	ws := r.Workspace(context.Background(), admin)
	view, err := ws.View(context.Background(), "tok", "E1")
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	return ws, view
}

func TestAssignAndSendRFQ(t *testing.T) {
	ctx := context.Background()
	fb, n, r, c := newFixture(t)
	_, view := openView(t, r)

	if _, err := view.OpenVendors(ctx, "tok", "P1", ""); err != nil {
		t.Fatalf("OpenVendors: %v", err)
	}
	view.ToggleVendor("P1", "V1")
	picker, err := view.ToggleVendor("P1", "V2")
	if err != nil {
		t.Fatalf("ToggleVendor: %v", err)
	}
	if !reflect.DeepEqual(picker.Selected, []string{"V1", "V2"}) {
		t.Errorf("picker selection = %v", picker.Selected)
	}
	if _, err := view.CommitVendors(ctx, "tok", "P1", nil); err != nil {
		t.Fatalf("CommitVendors: %v", err)
	}

	raw, ok, _ := c.Get(ctx, "user/admin-1/"+assignment.DefaultKey)
	if !ok {
		t.Fatal("assignment map was not cached under the admin's namespace")
	}
	var cached assignment.Assignments
	if err := json.Unmarshal(raw, &cached); err != nil || len(cached["P1"]) != 2 {
		t.Errorf("cached map = %s", raw)
	}

	review, err := view.Review()
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if review.Products != 1 || review.VendorRFQs != 2 {
		t.Errorf("review = %+v", review)
	}

	ack, err := view.SendRFQ(ctx, "tok")
	if err != nil {
		t.Fatalf("SendRFQ: %v", err)
	}
	want := []models.RFQAssignment{{EnquiryProductID: "P1", VendorIDs: []string{"V1", "V2"}}}
	if len(fb.rfqs) != 1 || !reflect.DeepEqual(fb.rfqs[0].Assignments, want) {
		t.Errorf("sent %+v", fb.rfqs)
	}
	if ack.TotalAssignments != 2 {
		t.Errorf("ack = %+v", ack)
	}

	e, _ := view.Enquiry()
	if e.EnquiryProducts[0].Status != models.ProductStatusAssigned || e.EnquiryProducts[1].Status != models.ProductStatusPending {
		t.Errorf("statuses = %q, %q", e.EnquiryProducts[0].Status, e.EnquiryProducts[1].Status)
	}
	if fb.enquiry.EnquiryProducts[0].Status != models.ProductStatusPending {
		t.Error("the local patch must not touch the fetched source")
	}

	events := []string{}
	for _, ev := range n.events {
		events = append(events, ev.event)
	}
	if !reflect.DeepEqual(events, []string{EventAssignmentsChanged, EventRFQSent}) {
		t.Errorf("events = %v", events)
	}
}

func TestSendRFQWithoutAssignments(t *testing.T) {
	fb, _, r, _ := newFixture(t)
	_, view := openView(t, r)

	if _, err := view.SendRFQ(context.Background(), "tok"); !errors.Is(err, rfq.ErrNothingToSend) {
		t.Fatalf("err = %v", err)
	}
	if len(fb.rfqs) != 0 {
		t.Error("no RFQ should be sent")
	}
}

func TestCommitExplicitVendorIDs(t *testing.T) {
	ctx := context.Background()
	_, _, r, _ := newFixture(t)
	ws, view := openView(t, r)

	got, err := view.CommitVendors(ctx, "tok", "P2", []string{"V3", "V-missing", "V1"})
	if err != nil {
		t.Fatalf("CommitVendors: %v", err)
	}
	ids := []string{}
	for _, v := range got {
		ids = append(ids, v.ID)
	}
	if !reflect.DeepEqual(ids, []string{"V1", "V3"}) {
		t.Errorf("assigned = %v", ids)
	}

	if _, err := view.CommitVendors(ctx, "tok", "P2", []string{}); err != nil {
		t.Fatalf("empty commit: %v", err)
	}
	if _, ok := ws.Assignments.Snapshot()["P2"]; ok {
		t.Error("empty commit must remove the entry")
	}
}

func TestCommitWithoutOpenPicker(t *testing.T) {
	_, _, r, _ := newFixture(t)
	_, view := openView(t, r)
	if _, err := view.CommitVendors(context.Background(), "tok", "P1", nil); !errors.Is(err, ErrNoOpenSelection) {
		t.Fatalf("err = %v", err)
	}
	if _, err := view.ToggleVendor("P1", "V1"); !errors.Is(err, ErrNoOpenSelection) {
		t.Fatalf("toggle err = %v", err)
	}
}

func TestUnknownProductIsRejected(t *testing.T) {
	_, _, r, _ := newFixture(t)
	_, view := openView(t, r)
	if _, err := view.ToggleProduct("P9"); !errors.Is(err, ErrUnknownProduct) {
		t.Errorf("ToggleProduct err = %v", err)
	}
	if _, err := view.OpenVendors(context.Background(), "tok", "P9", ""); !errors.Is(err, ErrUnknownProduct) {
		t.Errorf("OpenVendors err = %v", err)
	}
}

func TestToggleAll(t *testing.T) {
	_, _, r, _ := newFixture(t)
	_, view := openView(t, r)

	view.ToggleProduct("P2")
	if all, _ := view.ToggleAll(); !all {
		t.Fatal("partial selection should select all")
	}
	if got := view.SelectedProducts(); !reflect.DeepEqual(got, []string{"P1", "P2"}) {
		t.Errorf("selected = %v", got)
	}
	if all, _ := view.ToggleAll(); all {
		t.Fatal("full selection should clear")
	}
	if got := view.SelectedProducts(); len(got) != 0 {
		t.Errorf("selected = %v", got)
	}
}

func TestVendorCatalogFetchedOncePerWorkspace(t *testing.T) {
	ctx := context.Background()
	fb, _, r, _ := newFixture(t)
	_, view := openView(t, r)

	view.OpenVendors(ctx, "tok", "P1", "")
	view.CloseVendors("P1")
	view.OpenVendors(ctx, "tok", "P2", "bolt")
	if fb.vendorCalls != 1 {
		t.Errorf("vendor catalog fetched %d times", fb.vendorCalls)
	}
}

func TestOpenVendorsSearch(t *testing.T) {
	_, _, r, _ := newFixture(t)
	_, view := openView(t, r)
	picker, err := view.OpenVendors(context.Background(), "tok", "P1", "CRA")
	if err != nil {
		t.Fatalf("OpenVendors: %v", err)
	}
	if len(picker.Vendors) != 1 || picker.Vendors[0].ID != "V3" {
		t.Errorf("vendors = %v", picker.Vendors)
	}
}

func viewCount(ws *Workspace) int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.views)
}

func TestFailedLoadLeavesViewEmpty(t *testing.T) {
	fb, _, r, _ := newFixture(t)
	fb.enquiryErr = &backend.APIError{Status: 404, Message: "Enquiry not found"}
	ws := r.Workspace(context.Background(), admin)

	view, err := ws.View(context.Background(), "tok", "E1")
	if !backend.IsStatus(err, 404) {
		t.Fatalf("err = %v", err)
	}
	if _, err := view.Enquiry(); !errors.Is(err, ErrEnquiryNotLoaded) {
		t.Errorf("Enquiry err = %v", err)
	}
	if board := view.Quotes(); len(board.Groups) != 0 {
		t.Errorf("quotes = %+v", board)
	}

	fb.enquiryErr = nil
	retry, err := ws.View(context.Background(), "tok", "E1")
	if err != nil {
		t.Fatalf("retry View: %v", err)
	}
	if !retry.Loaded() {
		t.Error("retry should load the enquiry")
	}
}

func TestFailedLoadsAreNotKept(t *testing.T) {
	fb, _, r, _ := newFixture(t)
	ws := r.Workspace(context.Background(), admin)
	fb.enquiryErr = &backend.APIError{Status: 404, Message: "Enquiry not found"}

	for _, id := range []string{"E404", "E405", "E406"} {
		if _, err := ws.View(context.Background(), "tok", id); err == nil {
			t.Fatalf("View(%s) should fail", id)
		}
	}
	if n := viewCount(ws); n != 0 {
		t.Errorf("views kept after failed loads = %d", n)
	}

	fb.enquiryErr = nil
	if _, err := ws.View(context.Background(), "tok", "E1"); err != nil {
		t.Fatalf("View: %v", err)
	}
	if n := viewCount(ws); n != 1 {
		t.Errorf("views = %d, want 1", n)
	}
}

func TestForgetDropsWorkspaceButKeepsAssignments(t *testing.T) {
	ctx := context.Background()
	_, _, r, _ := newFixture(t)
	ws, view := openView(t, r)
	view.CommitVendors(ctx, "tok", "P1", []string{"V1"})

	r.Forget(admin.ID)

	again := r.Workspace(ctx, admin)
	if again == ws {
		t.Fatal("Forget should drop the workspace")
	}
	if n := viewCount(again); n != 0 {
		t.Errorf("views = %d", n)
	}
	if got := again.Assignments.Assigned("P1"); len(got) != 1 || got[0].ID != "V1" {
		t.Errorf("assignments after Forget = %v", got)
	}
}

func TestWorkspaceLookupDuringCommits(t *testing.T) {
	ctx := context.Background()
	_, n, r, _ := newFixture(t)
	_, view := openView(t, r)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			r.Workspace(ctx, admin)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			view.CommitVendors(ctx, "tok", "P1", []string{"V1"})
		}
	}()
	wg.Wait()

	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if e.userID != admin.ID {
			t.Fatalf("event for %q", e.userID)
		}
	}
}

func TestAssignedAfterFailedReload(t *testing.T) {
	fb, _, r, _ := newFixture(t)
	_, view := openView(t, r)
	if _, err := view.Assigned(); err != nil {
		t.Fatalf("Assigned: %v", err)
	}

	fb.mu.Lock()
	fb.enquiryErr = errors.New("backend down")
	fb.mu.Unlock()
	if err := view.Reload(context.Background(), "tok"); err == nil {
		t.Fatal("Reload should fail")
	}
	if _, err := view.Assigned(); !errors.Is(err, ErrEnquiryNotLoaded) {
		t.Errorf("Assigned err = %v", err)
	}
}

func TestQuoteFailureIsNotFatal(t *testing.T) {
	fb, _, r, _ := newFixture(t)
	fb.quotesErr = errors.New("boom")
	_, view := openView(t, r)
	if !view.Loaded() {
		t.Fatal("enquiry should still load")
	}
	if board := view.Quotes(); board.Summary.Total != 0 {
		t.Errorf("quotes = %+v", board)
	}
}

func TestForwardQuotes(t *testing.T) {
	ctx := context.Background()
	fb, n, r, _ := newFixture(t)
	_, view := openView(t, r)

	if _, err := view.ToggleQuote("Q-missing"); !errors.Is(err, ErrUnknownQuote) {
		t.Errorf("err = %v", err)
	}
	view.ToggleQuote("Q2")
	res, err := view.ForwardQuotes(ctx, "tok")
	if err != nil {
		t.Fatalf("ForwardQuotes: %v", err)
	}
	if res.Count != 1 || !reflect.DeepEqual(fb.forwarded, [][]string{{"Q2"}}) {
		t.Errorf("res=%+v forwarded=%v", res, fb.forwarded)
	}
	board := view.Quotes()
	if len(board.Selected) != 0 {
		t.Errorf("selection not cleared: %v", board.Selected)
	}
	if board.Summary.VisibleToBuyer != 1 {
		t.Errorf("quotes were not re-fetched: %+v", board.Summary)
	}
	if len(n.events) != 1 || n.events[0].event != EventQuotesForwarded {
		t.Errorf("events = %v", n.events)
	}
}

func TestWorkspaceRestoresCachedAssignments(t *testing.T) {
	ctx := context.Background()
	fb, _, r, c := newFixture(t)
	_, view := openView(t, r)
	view.CommitVendors(ctx, "tok", "P1", []string{"V2"})

	fresh := NewRegistry(c, fb, nil, nil)
	ws := fresh.Workspace(ctx, admin)
	if got := ws.Assignments.Assigned("P1"); len(got) != 1 || got[0].ID != "V2" {
		t.Errorf("restored = %v", got)
	}

	other := fresh.Workspace(ctx, models.AuthUser{ID: "admin-2", Role: models.RoleAdmin})
	if got := other.Assignments.Snapshot(); len(got) != 0 {
		t.Errorf("another admin sees %v", got)
	}
}
