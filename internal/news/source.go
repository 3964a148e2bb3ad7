package news

import (
	"strings"

	"golang.org/x/net/html"
)

// MaxHeadlinesPerSource caps the headlines taken from one page.
const MaxHeadlinesPerSource = 5

// Source is a known news site.
type Source int

const (
	CoinTelegraph Source = iota
	CoinDesk
	CryptoNews
)

// AllSources lists every known source in display order.
var AllSources = []Source{CoinTelegraph, CoinDesk, CryptoNews}

// extraction describes where headlines live in a source page: every element
// matching the container rule holds at most one title element.
type extraction struct {
	url            string
	containerTag   string
	containerClass string
	titleTag       string
	titleClass     string
}

var extractions = map[Source]extraction{
	CoinTelegraph: {
		url:            "https://cointelegraph.com/",
		containerTag:   "article",
		containerClass: "post-card__article",
		titleTag:       "span",
		titleClass:     "post-card__title",
	},
	CoinDesk: {
		url:            "https://www.coindesk.com/",
		containerTag:   "div",
		containerClass: "article-cardstyles__AcTitle-sc-q1x8lc-4",
		titleTag:       "h6",
	},
	CryptoNews: {
		url:            "https://cryptonews.com/",
		containerTag:   "div",
		containerClass: "cn-tile article",
		titleTag:       "h4",
	},
}

func (s Source) String() string {
	switch s {
	case CoinTelegraph:
		return "cointelegraph"
	case CoinDesk:
		return "coindesk"
	case CryptoNews:
		return "cryptonews"
	default:
		return "unknown"
	}
}

// URL returns the front page the headlines are scraped from.
func (s Source) URL() string {
	return extractions[s].url
}

// Extract returns up to MaxHeadlinesPerSource trimmed headlines from a parsed page.
func (s Source) Extract(doc *html.Node) []string {
	rule, ok := extractions[s]
	if !ok || doc == nil {
		return nil
	}

	var containers []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if len(containers) >= MaxHeadlinesPerSource {
			return
		}
		if matches(n, rule.containerTag, rule.containerClass) {
			containers = append(containers, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	headlines := make([]string, 0, len(containers))
	for _, c := range containers {
		title := findFirst(c, rule.titleTag, rule.titleClass)
		if title == nil {
			continue
		}
		if text := strings.TrimSpace(textContent(title)); text != "" {
			headlines = append(headlines, text)
		}
	}
	return headlines
}

func findFirst(n *html.Node, tag, class string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if matches(c, tag, class) {
			return c
		}
		if found := findFirst(c, tag, class); found != nil {
			return found
		}
	}
	return nil
}

// matches checks the tag and, when class is set, the class attribute. A
// class containing spaces must equal the whole attribute; a single class
// may be any of the element's classes.
func matches(n *html.Node, tag, class string) bool {
	if n.Type != html.ElementNode || n.Data != tag {
		return false
	}
	if class == "" {
		return true
	}
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		if strings.Contains(class, " ") {
			return strings.Join(strings.Fields(attr.Val), " ") == class
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
