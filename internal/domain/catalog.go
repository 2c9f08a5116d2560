package domain

import (
	"sort"
	"strings"
)

// Building is a catalog entry.
type Building struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Catalog maps canonical building codes to display names. It is immutable
// after construction.
type Catalog struct {
	byCode map[string]Building
	sorted []Building
}

// NewCatalog builds a catalog from code/name pairs. Codes are canonicalized to
// upper case; a later duplicate replaces an earlier one.
func NewCatalog(entries map[string]string) *Catalog {
	c := &Catalog{byCode: make(map[string]Building, len(entries))}
	for code, name := range entries {
		code = canonicalCode(code)
		if code == "" {
			continue
		}
		c.byCode[code] = Building{Code: code, Name: strings.TrimSpace(name)}
	}

	c.sorted = make([]Building, 0, len(c.byCode))
	for _, b := range c.byCode {
		c.sorted = append(c.sorted, b)
	}
	sort.Slice(c.sorted, func(i, j int) bool { return c.sorted[i].Code < c.sorted[j].Code })
	return c
}

// DefaultCatalog returns the campus building catalog.
func DefaultCatalog() *Catalog {
	return NewCatalog(map[string]string{
		"ADM": "Administration Building",
		"ART": "Fine Arts Center",
		"BIO": "Biology Annex",
		"CAF": "Cafe Patio",
		"ENG": "Engineering Hall",
		"GYM": "Recreation Center",
		"HGN": "Hagen Hall",
		"LAK": "Lakeside Lawn",
		"LIB": "Main Library",
		"SCI": "Science Atrium",
		"SMN": "Smith North Residence",
		"STU": "Student Union",
	})
}

// Lookup finds a building by code, ignoring case and surrounding whitespace.
func (c *Catalog) Lookup(code string) (Building, bool) {
	b, ok := c.byCode[canonicalCode(code)]
	return b, ok
}

// Name returns the display name for a code, or "" when the code is unknown.
func (c *Catalog) Name(code string) string {
	return c.byCode[canonicalCode(code)].Name
}

// Buildings returns all entries ordered by code.
func (c *Catalog) Buildings() []Building {
	out := make([]Building, len(c.sorted))
	copy(out, c.sorted)
	return out
}

// Len reports the number of buildings in the catalog.
func (c *Catalog) Len() int {
	return len(c.byCode)
}

func canonicalCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
