// Package referral holds the per-row business rules of the report: the
// referral source category and the business-logic validity flag.
package referral

import "strings"

// Category is the coarse channel a referral came through.
type Category string

const (
	Online  Category = "Online"
	Offline Category = "Offline"
	Lead    Category = "Lead"
	Other   Category = "Other"
)

// Categories lists every category Classify can return.
var Categories = []Category{Online, Offline, Lead, Other}

// missingText stands in for a missing source so that it is classified like
// any other non-matching text.
const missingText = "nan"

// Classify maps a free-text referral source to a Category. Matching is a
// case-insensitive substring test, first hit wins: "sign up", then "draft",
// then "lead".
func Classify(source *string) Category {
	s := missingText
	if source != nil {
		s = *source
	}
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.Contains(s, "sign up"):
		return Online
	case strings.Contains(s, "draft"):
		return Offline
	case strings.Contains(s, "lead"):
		return Lead
	default:
		return Other
	}
}
