// Package enquiry filters the admin enquiry list.
package enquiry

import (
	"strings"

	"enquiry-admin-console/internal/models"
)

// StatusAll disables the status filter.
const StatusAll = "all"

// Filter returns the enquiries matching both the status filter and the free
// text query, preserving input order. The status must match exactly unless it
// is StatusAll or empty. The query is matched case-insensitively as a
// substring of the enquiry id, buyer email or buyer name, surrounding spaces
// included; a blank query matches everything.
func Filter(enquiries []models.Enquiry, query, status string) []models.Enquiry {
	blank := strings.TrimSpace(query) == ""
	needle := strings.ToLower(query)
	out := make([]models.Enquiry, 0, len(enquiries))
	for _, e := range enquiries {
		if status != "" && status != StatusAll && e.EnquiryStatus != status {
			continue
		}
		if !blank && !matches(e, needle) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func matches(e models.Enquiry, needle string) bool {
	if strings.Contains(strings.ToLower(e.ID), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(e.BuyerEmail()), needle) {
		return true
	}
	return strings.Contains(strings.ToLower(searchName(e)), needle)
}

// searchName is the buyer name used for matching. Unlike BuyerName it has no
// "Unknown Company" placeholder, which must never match a query.
func searchName(e models.Enquiry) string {
	if user, ok := e.UserID.Resolve(); ok && user.Name() != "" {
		return user.Name()
	}
	return e.EnquiryName
}

// Statuses lists the distinct enquiry statuses in first-seen order.
func Statuses(enquiries []models.Enquiry) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range enquiries {
		if e.EnquiryStatus == "" || seen[e.EnquiryStatus] {
			continue
		}
		seen[e.EnquiryStatus] = true
		out = append(out, e.EnquiryStatus)
	}
	return out
}
