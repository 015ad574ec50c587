package restriction

import "strings"

// defaultKeywords mark the adult-only product categories. Matching is
// case-insensitive substring over the category.
var defaultKeywords = []string{
	"alcohol",
	"cigarros",
	"licor",
	"cerveza",
	"tabaco",
	"vino",
}

// Policy decides whether a product category falls under the age-restricted
// set.
type Policy struct {
	keywords []string
}

// NewPolicy returns a policy using the default restricted keyword set.
func NewPolicy() *Policy {
	return NewPolicyWithKeywords(defaultKeywords)
}

// NewPolicyWithKeywords builds a policy over a custom keyword list.
// Keywords are normalized to lower case.
func NewPolicyWithKeywords(keywords []string) *Policy {
	normalized := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		normalized = append(normalized, kw)
	}
	return &Policy{keywords: normalized}
}

// IsRestricted reports whether the product category contains any restricted
// keyword. The empty category is never restricted.
func (p *Policy) IsRestricted(category string) bool {
	if category == "" {
		return false
	}
	category = strings.ToLower(category)
	for _, kw := range p.keywords {
		if strings.Contains(category, kw) {
			return true
		}
	}
	return false
}

// Keywords returns the active keyword list.
func (p *Policy) Keywords() []string {
	out := make([]string, len(p.keywords))
	copy(out, p.keywords)
	return out
}
