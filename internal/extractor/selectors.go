package extractor

import (
	"net/url"
	"strings"
)

// SelectorSuggestion prefills the admin form for a new site.
type SelectorSuggestion struct {
	Title string  `json:"title"`
	Image string  `json:"image"`
	Link  *string `json:"link,omitempty"`
}

var knownSelectors = map[string]SelectorSuggestion{
	"g1.globo.com": {
		Title: ".feed-post-link",
		Image: ".feed-post-link img",
		Link:  strPtr(".feed-post-link"),
	},
	"globo.com": {
		Title: ".feed-post-link",
		Image: ".feed-post-link img",
		Link:  strPtr(".feed-post-link"),
	},
	"uol.com.br": {
		Title: ".headline",
		Image: ".headline img",
		Link:  strPtr(".headline a"),
	},
	"folha.com.br": {
		Title: ".c-headline__title",
		Image: ".c-headline__image img",
		Link:  strPtr(".c-headline__title a"),
	},
	"estadao.com.br": {
		Title: ".headline",
		Image: ".headline img",
		Link:  strPtr(".headline a"),
	},
	"terra.com.br": {
		Title: ".card-news__title",
		Image: ".card-news__image img",
		Link:  strPtr(".card-news__title a"),
	},
	"espn.com": {
		Title: `h1, h2, h3, .headline, .title, [class*="title"], [class*="headline"]`,
		Image: `img[src*="http"], img[data-src*="http"]`,
		Link:  strPtr(`a[href*="http"]`),
	},
}

// CommonSelectors returns selectors known to work for popular news domains,
// falling back to generic heading/image selectors.
func CommonSelectors(siteURL string) SelectorSuggestion {
	if u, err := url.Parse(siteURL); err == nil {
		host := strings.ToLower(u.Hostname())
		for domain, sel := range knownSelectors {
			if strings.Contains(host, domain) {
				return sel
			}
		}
	}

	return SelectorSuggestion{
		Title: `h1, h2, h3, .title, .headline, [class*="title"], [class*="headline"]`,
		Image: `img[src*="http"], img[data-src*="http"]`,
		Link:  strPtr(`a[href*="http"]`),
	}
}

func strPtr(s string) *string { return &s }
