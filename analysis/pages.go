package analysis

import "github.com/raushankrgupta/style-auditor/models"

// Link selectors used to find the listings and detail pages from the home page.
const (
	ListingsLinkSelector = `a[href*="property"], a[href*="listing"], a[href*="search"], a[href*="buy"], a[href*="rent"]`
	DetailLinkSelector   = `a[href*="property/"], a[href*="listing/"]`

	SectionSelector = `section, [class*="section"], main > div`
	CardSelector    = `[class*="property"], [class*="listing"], [class*="card"]`
)

// DefaultPages is the page set analysed when the run file names none.
func DefaultPages() []models.PageDescriptor {
	return []models.PageDescriptor{
		{
			Name:               "home",
			ScreenshotSelector: SectionSelector,
			ScreenshotLabel:    "section",
			ScreenshotLimit:    5,
		},
		{
			Name:               "listings",
			LinkSelector:       ListingsLinkSelector,
			ScreenshotSelector: CardSelector,
			ScreenshotLabel:    "card",
			ScreenshotLimit:    3,
		},
		{
			Name:         "detail",
			LinkSelector: DetailLinkSelector,
		},
	}
}
