package assignment

import (
	"strings"

	"enquiry-admin-console/internal/models"
)

// Selection is the uncommitted vendor choice for one enquiry line. It is not
// safe for concurrent use.
type Selection struct {
	ProductID string
	catalog   []models.Vendor
	selected  map[string]bool
}

func newSelection(productID string, catalog, assigned []models.Vendor) *Selection {
	sel := &Selection{
		ProductID: productID,
		catalog:   catalog,
		selected:  make(map[string]bool, len(assigned)),
	}
	for _, v := range assigned {
		sel.selected[v.ID] = true
	}
	return sel
}

// Toggle flips a vendor's membership and reports whether it is now selected.
func (s *Selection) Toggle(vendorID string) bool {
	if s.selected[vendorID] {
		delete(s.selected, vendorID)
		return false
	}
	s.selected[vendorID] = true
	return true
}

// Set replaces the selection with ids.
func (s *Selection) Set(ids []string) {
	s.selected = make(map[string]bool, len(ids))
	for _, id := range ids {
		s.selected[id] = true
	}
}

func (s *Selection) Has(vendorID string) bool {
	return s.selected[vendorID]
}

func (s *Selection) Len() int {
	return len(s.selected)
}

// IDs returns the selected vendor ids in catalog order.
func (s *Selection) IDs() []string {
	vendors := s.Vendors()
	ids := make([]string, 0, len(vendors))
	for _, v := range vendors {
		ids = append(ids, v.ID)
	}
	return ids
}

// Vendors returns the selected catalog vendors in catalog order. Selected ids
// missing from the catalog are dropped.
func (s *Selection) Vendors() []models.Vendor {
	out := make([]models.Vendor, 0, len(s.selected))
	for _, v := range s.catalog {
		if s.selected[v.ID] {
			out = append(out, v)
		}
	}
	return out
}

func (s *Selection) Catalog() []models.Vendor {
	return s.catalog
}

// Search filters the catalog by a case-insensitive name or email substring.
func (s *Selection) Search(term string) []models.Vendor {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return s.catalog
	}
	var out []models.Vendor
	for _, v := range s.catalog {
		if strings.Contains(strings.ToLower(v.Name), needle) ||
			strings.Contains(strings.ToLower(v.Email), needle) {
			out = append(out, v)
		}
	}
	return out
}
