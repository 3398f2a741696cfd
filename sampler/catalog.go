package sampler

import (
	"strings"

	"github.com/raushankrgupta/style-auditor/aggregator"
)

// DefaultCatalog is the selector walk applied to every page, in order.
var DefaultCatalog = Catalog{
	"body",
	"h1", "h2", "h3", "h4", "h5", "h6",
	"p",
	"a",
	"button",
	".btn",
	`[class*="button"]`,
	"nav",
	"header",
	"footer",
	"main",
	`[class*="container"]`,
	`[class*="wrapper"]`,
	`[class*="card"]`,
	`[class*="property"]`,
	`[class*="grid"]`,
	`[class*="flex"]`,
	"input",
	"form",
	"select",
}

// Catalog is an ordered list of CSS selectors.
type Catalog []string

// Clone returns a copy that can be handed to a task.
func (c Catalog) Clone() Catalog {
	out := make(Catalog, len(c))
	copy(out, c)
	return out
}

// ComponentKind classifies a selector as a component family. ok is false for
// selectors that are not components (typography, layout wrappers, forms).
func ComponentKind(selector string) (kind aggregator.ComponentKind, ok bool) {
	s := strings.ToLower(selector)
	switch {
	case s == "button" || s == ".btn" || strings.Contains(s, "button"):
		return aggregator.ComponentButton, true
	case strings.Contains(s, "card") || strings.Contains(s, "property") || strings.Contains(s, "listing"):
		return aggregator.ComponentCard, true
	case s == "nav" || s == "header" || strings.Contains(s, "nav"):
		return aggregator.ComponentNavigation, true
	}
	return "", false
}
