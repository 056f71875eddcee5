package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Colour is one paint option with its swatch images.
type Colour struct {
	Name    string `json:"name"`
	Image   string `json:"image"`
	HQImage string `json:"hq_image"`
}

// ExtractColours extracts colour names and images from colours tab
// content.
func ExtractColours(content []byte) (any, error) {
	doc, err := parseDoc(content)
	if err != nil {
		return nil, err
	}

	var colours []Colour
	doc.Find("div[data-selected]").Each(func(_ int, section *goquery.Selection) {
		name := text(section.Find("p"))
		if name == "" {
			name = strings.TrimSpace(section.AttrOr("id", ""))
		}

		img := section.Find("img").First()
		imgURL := img.AttrOr("src", "")
		hq := hqFromSrcset(img.AttrOr("srcset", ""), imgURL)

		if name != "" && imgURL != "" {
			colours = append(colours, Colour{Name: name, Image: imgURL, HQImage: hq})
		}
	})

	return colours, nil
}
