package scrape

import (
	"strconv"
	"strings"
	"sync"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
)

// ReviewStats are the aggregate per-aspect ratings on the reviews tab.
type ReviewStats struct {
	Interiors   float64 `json:"interiors,omitempty"`
	FuelEconomy float64 `json:"fuel_economy,omitempty"`
	Looks       float64 `json:"looks,omitempty"`
	Comfort     float64 `json:"comfort,omitempty"`
	Overall     float64 `json:"overall,omitempty"`
}

// Review is one user review. Content is markdown converted from the
// review body HTML.
type Review struct {
	User    string   `json:"user,omitempty"`
	Rating  string   `json:"rating,omitempty"`
	Date    string   `json:"date,omitempty"`
	Content string   `json:"content,omitempty"`
	Pros    []string `json:"pros,omitempty"`
	Cons    []string `json:"cons,omitempty"`
}

// ReviewData combines the statistics with the individual reviews.
type ReviewData struct {
	Statistics ReviewStats `json:"statistics"`
	Reviews    []Review    `json:"reviews,omitempty"`
}

var (
	mdConverter     *md.Converter
	mdConverterOnce sync.Once
)

// markdownConverter returns the shared HTML to markdown converter.
func markdownConverter() *md.Converter {
	mdConverterOnce.Do(func() {
		mdConverter = md.NewConverter("", true, nil)
		mdConverter.Use(plugin.GitHubFlavored())
	})
	return mdConverter
}

// ExtractReviews extracts review statistics and individual reviews from
// reviews tab content.
func ExtractReviews(content []byte) (any, error) {
	doc, err := parseDoc(content)
	if err != nil {
		return nil, err
	}

	data := ReviewData{
		Statistics: ReviewStats{
			Interiors:   statValue(doc, "#mini-stat-interiors"),
			FuelEconomy: statValue(doc, "#mini-stat-fuel-economy"),
			Looks:       statValue(doc, "#mini-stat-looks"),
			Comfort:     statValue(doc, "#mini-stat-comfort"),
			Overall:     statValue(doc, "#mini-stat-overall"),
		},
	}

	doc.Find("div.review-card").Each(func(_ int, card *goquery.Selection) {
		review := Review{
			User:    text(card.Find("span.user-name")),
			Rating:  text(card.Find("div.rating")),
			Date:    text(card.Find("span.review-date")),
			Content: reviewContent(card),
			Pros:    listItems(card.Find("div.pros li")),
			Cons:    listItems(card.Find("div.cons li")),
		}
		data.Reviews = append(data.Reviews, review)
	})

	return data, nil
}

// reviewContent converts the review body to markdown, dropping markup the
// converter cannot use. Falls back to plain text on conversion failure.
func reviewContent(card *goquery.Selection) string {
	body := card.Find("div.review-content").First()
	raw, err := body.Html()
	if err != nil || strings.TrimSpace(raw) == "" {
		return strings.TrimSpace(body.Text())
	}

	markdown, err := markdownConverter().ConvertString(CleanHTML(raw))
	if err != nil {
		return strings.TrimSpace(body.Text())
	}
	return strings.TrimSpace(markdown)
}

// statValue reads one aggregate rating, 0 when missing or malformed.
func statValue(doc *goquery.Document, selector string) float64 {
	v, err := strconv.ParseFloat(text(doc.Find(selector)), 64)
	if err != nil {
		return 0
	}
	return v
}

// listItems collects trimmed non-empty list entries.
func listItems(sel *goquery.Selection) []string {
	var items []string
	sel.Each(func(_ int, li *goquery.Selection) {
		if v := strings.TrimSpace(li.Text()); v != "" {
			items = append(items, v)
		}
	})
	return items
}
