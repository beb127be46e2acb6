package webgrep

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// ParseHTML decodes body honoring its declared charset and parses it into
// a DOM tree.
func ParseHTML(body []byte) (*html.Node, error) {
	reader, err := charset.NewReader(strings.NewReader(string(body)), "text/html")
	if err != nil {
		return nil, err
	}
	return html.Parse(reader)
}

// InnerText walks doc depth-first, concatenating text nodes while skipping
// the subtrees of <head> and <script> elements.
func InnerText(doc *html.Node) string {
	var b strings.Builder
	walkInnerText(doc, &b)
	return b.String()
}

func walkInnerText(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode && (n.Data == "head" || n.Data == "script") {
		return
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkInnerText(c, b)
	}
}

// ExtractLinks walks doc for <a> elements, takes the first href attribute
// of each, resolves it against pageURL, and returns the deduplicated set of
// resolved absolute URLs in first-seen order. Resolution failures are
// skipped, not fatal.
func ExtractLinks(pageURL string, doc *html.Node) []string {
	seen := make(map[string]struct{})
	var ordered []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href, ok := firstHref(n); ok {
				if resolved, err := ResolveLink(pageURL, href); err == nil {
					if _, dup := seen[resolved]; !dup {
						seen[resolved] = struct{}{}
						ordered = append(ordered, resolved)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return ordered
}

func firstHref(n *html.Node) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == "href" {
			return a.Val, true
		}
	}
	return "", false
}
