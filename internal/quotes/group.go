// Package quotes groups vendor quotes by catalog product and tracks which of
// them an admin is about to forward to the buyer.
package quotes

import (
	"strings"

	"enquiry-admin-console/internal/models"

	"github.com/shopspring/decimal"
)

// UnknownProductID buckets quotes whose product chain cannot be followed.
const UnknownProductID = "unknown"

const unknownProductName = "Unknown Product"

type Group struct {
	ProductID string         `json:"productId"`
	Name      string         `json:"name"`
	Quotes    []models.Quote `json:"quotes"`
}

// GroupByProduct partitions quotes by the catalog item reached through
// assignment → enquiry line → catalog item. Groups appear in the order their
// first quote does, and quotes keep their input order within a group.
func GroupByProduct(quotes []models.Quote) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, q := range quotes {
		id, name := UnknownProductID, unknownProductName
		if item, ok := q.CatalogItem(); ok {
			id = item.ID
			name = productName(item)
		}
		i, seen := index[id]
		if !seen {
			i = len(groups)
			index[id] = i
			groups = append(groups, Group{ProductID: id, Name: name})
		}
		groups[i].Quotes = append(groups[i].Quotes, q)
	}
	return groups
}

func productName(item models.ProductSheetItem) string {
	switch {
	case item.DisplayName != "":
		return item.DisplayName
	case item.ExternalRef != "":
		return item.ExternalRef
	default:
		return unknownProductName
	}
}

type GroupSummary struct {
	ProductID       string `json:"productId"`
	Name            string `json:"name"`
	Quotes          int    `json:"quotes"`
	LowestUnitPrice string `json:"lowestUnitPrice,omitempty"`
	LowestVendor    string `json:"lowestVendor,omitempty"`
}

// Summary is the comparison header shown above the grouped quotes.
type Summary struct {
	Total          int            `json:"total"`
	VisibleToBuyer int            `json:"visibleToBuyer"`
	ByStatus       map[string]int `json:"byStatus"`
	Groups         []GroupSummary `json:"groups"`
}

// Summarize counts quotes per status and finds the cheapest quote of each
// group. Unit prices that are not plain decimal numbers are ignored for the
// minimum; on a tie the earlier quote wins.
func Summarize(groups []Group) Summary {
	s := Summary{ByStatus: make(map[string]int), Groups: make([]GroupSummary, 0, len(groups))}
	for _, g := range groups {
		gs := GroupSummary{ProductID: g.ProductID, Name: g.Name, Quotes: len(g.Quotes)}
		var best decimal.Decimal
		found := false
		for _, q := range g.Quotes {
			s.Total++
			s.ByStatus[q.QuoteStatus]++
			if q.VisibleToClient {
				s.VisibleToBuyer++
			}
			price, ok := UnitPrice(q)
			if !ok {
				continue
			}
			if !found || price.Cmp(best) < 0 {
				best, found = price, true
				gs.LowestUnitPrice = strings.TrimSpace(q.UnitPrice)
				gs.LowestVendor = q.VendorName()
			}
		}
		s.Groups = append(s.Groups, gs)
	}
	return s
}

// UnitPrice parses a quote's free-text unit price. ok is false for blank,
// negative or non-numeric prices.
func UnitPrice(q models.Quote) (price decimal.Decimal, ok bool) {
	raw := strings.TrimSpace(q.UnitPrice)
	if raw == "" {
		return decimal.Decimal{}, false
	}
	price, err := decimal.NewFromString(raw)
	if err != nil || price.IsNegative() {
		return decimal.Decimal{}, false
	}
	return price, true
}
