// Package matcher decides whether an incoming contact already exists in a
// user's address book.
package matcher

import (
	"strings"

	"contactsync/internal/interchange/model"

	"golang.org/x/text/cases"
)

// Kind is the result of classifying one candidate.
type Kind int

const (
	New Kind = iota
	Duplicate
)

func (k Kind) String() string {
	if k == Duplicate {
		return "duplicate"
	}
	return "new"
}

// MatchedBy names the key that produced a duplicate match.
type MatchedBy string

const (
	MatchedByEmail       MatchedBy = "email"
	MatchedByNameCompany MatchedBy = "name_company"
)

type Classification struct {
	Kind      Kind
	ContactID string
	MatchedBy MatchedBy
}

// Index maps match keys to contact ids. The first contact registered for a
// key owns it, so building from a list sorted by creation time makes the
// earliest record the match target.
type Index struct {
	byEmail       map[string]string
	byNameCompany map[string]string
}

// NewIndex registers contacts in order.
func NewIndex(contacts []*model.Contact) *Index {
	idx := &Index{
		byEmail:       make(map[string]string, len(contacts)),
		byNameCompany: make(map[string]string, len(contacts)),
	}
	for _, c := range contacts {
		idx.Add(c)
	}
	return idx
}

// Classify checks email first; only when the email is unknown does the
// name+company key apply.
func (idx *Index) Classify(c *model.Contact) Classification {
	if k := EmailKey(c); k != "" {
		if id, ok := idx.byEmail[k]; ok {
			return Classification{Kind: Duplicate, ContactID: id, MatchedBy: MatchedByEmail}
		}
	}
	if k := NameCompanyKey(c); k != "" {
		if id, ok := idx.byNameCompany[k]; ok {
			return Classification{Kind: Duplicate, ContactID: id, MatchedBy: MatchedByNameCompany}
		}
	}
	return Classification{Kind: New}
}

// Add registers c under each of its keys that is not taken yet.
func (idx *Index) Add(c *model.Contact) {
	if k := EmailKey(c); k != "" {
		if _, ok := idx.byEmail[k]; !ok {
			idx.byEmail[k] = c.ID
		}
	}
	if k := NameCompanyKey(c); k != "" {
		if _, ok := idx.byNameCompany[k]; !ok {
			idx.byNameCompany[k] = c.ID
		}
	}
}

// Len is the number of distinct keys held.
func (idx *Index) Len() int {
	return len(idx.byEmail) + len(idx.byNameCompany)
}

// EmailKey is the trimmed, lowercased email, or "" when absent.
func EmailKey(c *model.Contact) string {
	return strings.ToLower(strings.TrimSpace(c.Email))
}

// NameCompanyKey is "first last|company" case-folded. It is empty unless both
// names are present; the company may be empty.
func NameCompanyKey(c *model.Contact) string {
	first := strings.TrimSpace(c.FirstName)
	last := strings.TrimSpace(c.LastName)
	if first == "" || last == "" {
		return ""
	}
	fold := cases.Fold()
	return fold.String(first+" "+last) + "|" + fold.String(strings.TrimSpace(c.Company))
}
