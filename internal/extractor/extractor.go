// Package extractor turns a fetched HTML document into candidate suggested
// posts using a site's CSS selector configuration.
package extractor

import (
	"log/slog"
	"math/rand"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"promo_watch/internal/domain"
)

// boilerplateWords disqualify a heading from becoming a candidate. Matching is
// case-insensitive substring.
var boilerplateWords = []string{
	"menu",
	"navegação",
	"navigation",
	"login",
	"cadastro",
	"buscar",
	"pesquisar",
	"search",
	"contato",
	"contact",
	"sobre",
	"home",
	"início",
}

// genericTitleSelector matches heading-like elements anywhere in a document.
const genericTitleSelector = "h1, h2, h3, h4, .title, .headline, .news-title, .post-title, .article-title, " +
	`[class*="title"], [class*="headline"], [class*="news"], [class*="article"]`

// imageSrcAttrs are checked in order when resolving an <img> source. Lazy
// loaders commonly park the real URL in a data attribute.
var imageSrcAttrs = []string{"src", "data-src", "data-lazy"}

type Config struct {
	MaxCandidates  int
	MinTitleLength int
}

// Extractor is a pure transformation: it performs no I/O and no persistence.
type Extractor struct {
	maxCandidates  int
	minTitleLength int
	logger         *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Extractor {
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = 10
	}
	if cfg.MinTitleLength <= 0 {
		cfg.MinTitleLength = 10
	}
	return &Extractor{
		maxCandidates:  cfg.MaxCandidates,
		minTitleLength: cfg.MinTitleLength,
		logger:         logger,
	}
}

// Extract produces up to MaxCandidates suggested posts from one HTML document,
// in document order of the discovered titles. The generic heuristic tier runs
// first; the site's own selectors are the fallback. A parse failure yields an
// empty result, never an error.
func (e *Extractor) Extract(html string, site *domain.Site) []domain.SuggestedPost {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		e.logger.Warn("failed to parse page", "site", site.Name, "error", err)
		return nil
	}

	origin := siteOrigin(site.URL)

	posts := e.extractGeneric(doc, site, origin)
	if len(posts) == 0 {
		posts = e.extractWithSelectors(doc, site, origin)
	}

	e.logger.Debug("extraction finished",
		"site", site.Name,
		"candidates", len(posts),
	)

	return posts
}

// extractGeneric scans the whole document for heading-like elements and pairs
// each with a nearby image.
func (e *Extractor) extractGeneric(doc *goquery.Document, site *domain.Site, origin string) []domain.SuggestedPost {
	titles := doc.Find(genericTitleSelector)
	images := doc.Find("img")

	var posts []domain.SuggestedPost

	titles.EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := strings.TrimSpace(sel.Text())
		if !e.acceptTitle(title) {
			return true
		}

		imageURL := normalizeURL(findNearbyImage(sel, images), origin)
		if imageURL == "" {
			return true
		}

		articleURL := normalizeURL(findArticleLink(sel), origin)

		posts = append(posts, buildPost(site, title, imageURL, articleURL))
		return len(posts) < e.maxCandidates
	})

	return posts
}

// extractWithSelectors pairs the site's configured selectors positionally:
// i-th title with i-th image with i-th link.
func (e *Extractor) extractWithSelectors(doc *goquery.Document, site *domain.Site, origin string) []domain.SuggestedPost {
	titles := doc.Find(site.SelectorTitle)
	images := doc.Find(site.SelectorImage)

	var links *goquery.Selection
	if site.SelectorLink != nil && *site.SelectorLink != "" {
		links = doc.Find(*site.SelectorLink)
	}

	n := titles.Length()
	if images.Length() < n {
		n = images.Length()
	}
	if n > e.maxCandidates {
		n = e.maxCandidates
	}

	var posts []domain.SuggestedPost

	for i := 0; i < n; i++ {
		title := strings.TrimSpace(titles.Eq(i).Text())
		if !e.acceptTitle(title) {
			continue
		}

		imageURL := normalizeURL(imageSrc(images.Eq(i)), origin)
		if imageURL == "" {
			continue
		}

		var articleURL string
		if links != nil && i < links.Length() {
			articleURL = normalizeURL(links.Eq(i).AttrOr("href", ""), origin)
		}

		posts = append(posts, buildPost(site, title, imageURL, articleURL))
	}

	return posts
}

func (e *Extractor) acceptTitle(title string) bool {
	if len([]rune(title)) < e.minTitleLength {
		return false
	}
	lower := strings.ToLower(title)
	for _, word := range boilerplateWords {
		if strings.Contains(lower, word) {
			return false
		}
	}
	return true
}

func buildPost(site *domain.Site, title, imageURL, articleURL string) domain.SuggestedPost {
	post := domain.SuggestedPost{
		SiteID:     site.ID,
		Title:      title,
		ImageURL:   imageURL,
		SourceSite: site.Name,
	}
	if articleURL != "" {
		post.ArticleURL = &articleURL
	}
	return post
}

// findNearbyImage resolves the image for a title element: first an image in
// the same parent container, then one in a sibling container, then a random
// pick among the first few images on the page.
func findNearbyImage(title *goquery.Selection, pageImages *goquery.Selection) string {
	parent := title.Parent()

	if img := parent.Find("img").First(); img.Length() > 0 {
		if src := imageSrc(img); src != "" {
			return src
		}
	}

	if img := parent.Siblings().Find("img").First(); img.Length() > 0 {
		if src := imageSrc(img); src != "" {
			return src
		}
	}

	n := pageImages.Length()
	if n == 0 {
		return ""
	}
	if n > 5 {
		n = 5
	}
	return imageSrc(pageImages.Eq(rand.Intn(n)))
}

// findArticleLink looks for an anchor wrapping the title, then for the first
// anchor in the title's container.
func findArticleLink(title *goquery.Selection) string {
	if a := title.Closest("a"); a.Length() > 0 {
		return a.AttrOr("href", "")
	}
	if a := title.Parent().Find("a").First(); a.Length() > 0 {
		return a.AttrOr("href", "")
	}
	return ""
}

func imageSrc(img *goquery.Selection) string {
	for _, attr := range imageSrcAttrs {
		if v, ok := img.Attr(attr); ok && v != "" {
			return v
		}
	}
	return ""
}

// normalizeURL upgrades protocol-relative URLs to https and resolves
// root-relative paths against the site's own origin.
func normalizeURL(raw, origin string) string {
	switch {
	case raw == "":
		return ""
	case strings.HasPrefix(raw, "//"):
		return "https:" + raw
	case strings.HasPrefix(raw, "/"):
		if origin == "" {
			return ""
		}
		return origin + raw
	default:
		return raw
	}
}

func siteOrigin(siteURL string) string {
	u, err := url.Parse(siteURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
