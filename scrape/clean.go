package scrape

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Pre-compiled regexes for the fallback cleanup path.
var (
	scriptRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
)

// CleanHTML strips script, style and noscript elements from an HTML
// fragment so downstream conversion only sees content. Falls back to a
// regex sweep when the fragment does not parse.
func CleanHTML(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return basicHTMLCleanup(fragment)
	}

	removeElements(doc, []string{"script", "style", "noscript", "iframe"})

	var sb strings.Builder
	if err := html.Render(&sb, doc); err != nil {
		return basicHTMLCleanup(fragment)
	}
	return sb.String()
}

// removeElements removes all elements with the given tag names.
func removeElements(n *html.Node, tags []string) {
	tagSet := make(map[string]bool)
	for _, tag := range tags {
		tagSet[tag] = true
	}

	var toRemove []*html.Node
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.ElementNode && tagSet[node.Data] {
			toRemove = append(toRemove, node)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)

	for _, node := range toRemove {
		if node.Parent != nil {
			node.Parent.RemoveChild(node)
		}
	}
}

// basicHTMLCleanup provides basic HTML cleanup when parsing fails.
func basicHTMLCleanup(content string) string {
	content = scriptRe.ReplaceAllString(content, "")
	content = styleRe.ReplaceAllString(content, "")
	return content
}
