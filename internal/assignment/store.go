// Package assignment keeps the staging map of which vendors will receive an
// RFQ for which enquiry line, backed by an advisory cache.
package assignment

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"enquiry-admin-console/internal/cache"
	"enquiry-admin-console/internal/models"

	"go.uber.org/zap"
)

// DefaultKey is the cache key the assignment map is stored under.
const DefaultKey = "assigned_vendors"

// Assignments maps an enquiry line id to its ordered, non-empty vendor list.
type Assignments map[string][]models.Vendor

func (a Assignments) clone() Assignments {
	out := make(Assignments, len(a))
	for id, vendors := range a {
		out[id] = append([]models.Vendor(nil), vendors...)
	}
	return out
}

// VendorSource supplies the vendor catalog.
type VendorSource interface {
	ListVendors(ctx context.Context) ([]models.Vendor, error)
}

// VendorSourceFunc adapts a function to VendorSource.
type VendorSourceFunc func(ctx context.Context) ([]models.Vendor, error)

func (f VendorSourceFunc) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	return f(ctx)
}

// Store holds the assignment map and mirrors every mutation to the cache.
// Cache failures are logged and never returned: the cache is advisory.
type Store struct {
	mu      sync.Mutex
	cache   cache.Store
	key     string
	logger  *zap.Logger
	current Assignments
	catalog []models.Vendor
}

func NewStore(c cache.Store, key string, logger *zap.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		cache:   c,
		key:     key,
		logger:  logger.With(zap.String("cache_key", key)),
		current: make(Assignments),
	}
}

// Load replaces the in-memory map with the cached one. A missing, unreadable
// or malformed cache value yields an empty map.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = make(Assignments)
	raw, ok, err := s.cache.Get(ctx, s.key)
	if err != nil {
		s.logger.Error("Failed to load assigned vendors from cache", zap.Error(err))
		return
	}
	if !ok {
		return
	}

	var parsed Assignments
	if err := json.Unmarshal(raw, &parsed); err != nil {
		s.logger.Error("Failed to parse assigned vendors from cache", zap.Error(err))
		return
	}
	for productID, vendors := range parsed {
		if len(vendors) > 0 {
			s.current[productID] = vendors
		}
	}
}

// Catalog returns the vendor catalog, fetching it on first use. A failed fetch
// is not cached.
func (s *Store) Catalog(ctx context.Context, src VendorSource) ([]models.Vendor, error) {
	s.mu.Lock()
	if s.catalog != nil {
		catalog := s.catalog
		s.mu.Unlock()
		return catalog, nil
	}
	s.mu.Unlock()

	vendors, err := src.ListVendors(ctx)
	if err != nil {
		return nil, fmt.Errorf("load vendors: %w", err)
	}
	if vendors == nil {
		vendors = []models.Vendor{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.catalog == nil {
		s.catalog = vendors
	}
	return s.catalog, nil
}

// Open prepares a vendor selection for one enquiry line, seeded with the
// vendors already assigned to it.
func (s *Store) Open(ctx context.Context, src VendorSource, productID string) (*Selection, error) {
	catalog, err := s.Catalog(ctx, src)
	if err != nil {
		return nil, err
	}
	return newSelection(productID, catalog, s.Assigned(productID)), nil
}

// Commit replaces the line's assignment with vendors. An empty list removes
// the entry.
func (s *Store) Commit(ctx context.Context, productID string, vendors []models.Vendor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unique := dedupe(vendors)
	if len(unique) == 0 {
		delete(s.current, productID)
	} else {
		s.current[productID] = unique
	}
	s.persist(ctx)
}

// CommitSelection commits the vendors chosen in sel.
func (s *Store) CommitSelection(ctx context.Context, sel *Selection) {
	s.Commit(ctx, sel.ProductID, sel.Vendors())
}

// Remove drops one vendor from a line. It reports whether the vendor was
// assigned. Removing the last vendor removes the entry.
func (s *Store) Remove(ctx context.Context, productID, vendorID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	vendors, ok := s.current[productID]
	if !ok {
		return false
	}
	kept := make([]models.Vendor, 0, len(vendors))
	for _, v := range vendors {
		if v.ID != vendorID {
			kept = append(kept, v)
		}
	}
	if len(kept) == len(vendors) {
		return false
	}
	if len(kept) == 0 {
		delete(s.current, productID)
	} else {
		s.current[productID] = kept
	}
	s.persist(ctx)
	return true
}

// Assigned returns a copy of the vendors assigned to a line.
func (s *Store) Assigned(productID string) []models.Vendor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Vendor(nil), s.current[productID]...)
}

// Snapshot returns a deep copy of the whole map.
func (s *Store) Snapshot() Assignments {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.clone()
}

// VendorCount is the number of vendor RFQs the given lines would produce.
func (s *Store) VendorCount(productIDs []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, id := range productIDs {
		total += len(s.current[id])
	}
	return total
}

// persist rewrites the whole map. Callers hold s.mu.
func (s *Store) persist(ctx context.Context) {
	raw, err := json.Marshal(s.current)
	if err != nil {
		s.logger.Error("Failed to encode assigned vendors", zap.Error(err))
		return
	}
	if err := s.cache.Put(ctx, s.key, raw); err != nil {
		s.logger.Error("Failed to save assigned vendors to cache", zap.Error(err))
	}
}

func dedupe(vendors []models.Vendor) []models.Vendor {
	seen := make(map[string]bool, len(vendors))
	out := make([]models.Vendor, 0, len(vendors))
	for _, v := range vendors {
		if v.ID == "" || seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		out = append(out, v)
	}
	return out
}
