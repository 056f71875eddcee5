package scrape

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Variant is one trim level listed on the variants tab.
type Variant struct {
	Name           string            `json:"name"`
	Price          string            `json:"price,omitempty"`
	Specifications map[string]string `json:"specifications,omitempty"`
	Features       []string          `json:"features,omitempty"`
	TotalFeatures  int               `json:"total_features"`
	Tag            string            `json:"tag,omitempty"`
}

// ExtractVariants extracts the variant list from variants tab content.
func ExtractVariants(content []byte) (any, error) {
	doc, err := parseDoc(content)
	if err != nil {
		return nil, err
	}

	var variants []Variant
	doc.Find("div#car-variants").Each(func(_ int, card *goquery.Selection) {
		v := Variant{
			Name:  text(card.Find("h2")),
			Price: text(card.Find("div.bg-transparent p")),
		}

		specs := make(map[string]string)
		card.Find("div.grid.grid-cols-3 div.flex.flex-col").Each(func(_ int, spec *goquery.Selection) {
			value := text(spec.Find("p.font-medium"))
			label := text(spec.Find("p.text-grey"))
			if value != "" && label != "" {
				specs[strings.ToLower(label)] = value
			}
		})
		if len(specs) > 0 {
			v.Specifications = specs
		}

		card.Find("div.flex.flex-wrap span.flex.items-center").Each(func(_ int, feature *goquery.Selection) {
			if f := strings.TrimSpace(feature.Text()); f != "" {
				v.Features = append(v.Features, f)
			}
		})

		// "+N more" button carries the count of features not shown inline.
		v.TotalFeatures = len(v.Features) + hiddenFeatureCount(text(card.Find("button#all-feature-sheet-undefined")))

		if tag := text(card.Find("div.bg-black.text-white")); tag != "" {
			v.Tag = tag
		}

		variants = append(variants, v)
	})

	return variants, nil
}

// hiddenFeatureCount parses "+N more" labels, returning 0 when absent or
// malformed.
func hiddenFeatureCount(label string) int {
	i := strings.IndexByte(label, '+')
	if i < 0 {
		return 0
	}
	rest := strings.TrimSpace(label[i+1:])
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return 0
	}
	return n
}
