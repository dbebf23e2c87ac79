package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestRefDecodesBareID(t *testing.T) {
	var e Enquiry
	if err := json.Unmarshal([]byte(`{"_id":"e1","userId":"u42","enquiryName":"Acme"}`), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := e.UserID.Resolve(); ok {
		t.Fatalf("expected bare id, got populated user")
	}
	if got := e.UserID.ID(); got != "u42" {
		t.Errorf("ID() = %q, want u42", got)
	}
	if got := e.BuyerName(); got != "Acme" {
		t.Errorf("BuyerName() = %q, want Acme", got)
	}
}

func TestRefDecodesPopulatedDocument(t *testing.T) {
	raw := `{"_id":"e1","userId":{"_id":"u42","auth":{"email":"buyer@acme.io","name":"Jane Buyer"}},
		"shippingAddress":{"email":"ship@acme.io"}}`
	var e Enquiry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	user, ok := e.UserID.Resolve()
	if !ok {
		t.Fatal("expected populated user")
	}
	if user.ID != "u42" || e.UserID.ID() != "u42" {
		t.Errorf("unexpected id %q / %q", user.ID, e.UserID.ID())
	}
	if got := e.BuyerEmail(); got != "buyer@acme.io" {
		t.Errorf("BuyerEmail() = %q", got)
	}
	if got := e.BuyerName(); got != "Jane Buyer" {
		t.Errorf("BuyerName() = %q", got)
	}
}

func TestRefNullAndRoundTrip(t *testing.T) {
	var r Ref[User]
	if err := json.Unmarshal([]byte(`null`), &r); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !r.IsZero() {
		t.Error("expected zero ref")
	}

	out, err := json.Marshal(RefTo[User]("u1"))
	if err != nil || string(out) != `"u1"` {
		t.Errorf("marshal id = %s, %v", out, err)
	}
}

func TestBuyerEmailFallsBackToAddresses(t *testing.T) {
	e := Enquiry{BillingAddress: Address{Email: "bill@acme.io"}}
	if got := e.BuyerEmail(); got != "bill@acme.io" {
		t.Errorf("BuyerEmail() = %q", got)
	}
	e.ShippingAddress.Email = "ship@acme.io"
	if got := e.BuyerEmail(); got != "ship@acme.io" {
		t.Errorf("BuyerEmail() = %q", got)
	}
}

func TestDisplayID(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cases := map[string]string{
		"":                         "N/A",
		"7":                        "ENQ-2026-007",
		"65f1c2d3e4a5b6c7d8e9fabc": "ENQ-2026-ABC",
	}
	for id, want := range cases {
		if got := (Enquiry{ID: id}).DisplayID(now); got != want {
			t.Errorf("DisplayID(%q) = %q, want %q", id, got, want)
		}
	}
}

func TestQuoteCatalogItemChain(t *testing.T) {
	raw := `{"_id":"q1","vendorAssignmentId":{"_id":"va1",
		"vendorId":{"_id":"v1","auth":{"name":"Steel Co"}},
		"enquiryProductId":{"_id":"ep1","productsheetitemid":{"_id":"p1","displayName":"Rebar"}}}}`
	var q Quote
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	item, ok := q.CatalogItem()
	if !ok || item.ID != "p1" {
		t.Fatalf("CatalogItem() = %+v, %v", item, ok)
	}
	if got := q.VendorName(); got != "Steel Co" {
		t.Errorf("VendorName() = %q", got)
	}

	broken := Quote{VendorAssignmentID: RefTo[VendorAssignment]("va2")}
	if _, ok := broken.CatalogItem(); ok {
		t.Error("expected broken chain")
	}
}
