package scrape

import (
	"github.com/PuerkitoBio/goquery"
)

// Specifications holds the keyed spec tables from the specs tab.
type Specifications struct {
	Engine       map[string]string `json:"engine,omitempty"`
	Dimensions   map[string]string `json:"dimensions,omitempty"`
	Transmission map[string]string `json:"transmission,omitempty"`
	Features     map[string]string `json:"features,omitempty"`
}

// ExtractSpecifications extracts the engine, dimensions, transmission and
// features sections from specs tab content.
func ExtractSpecifications(content []byte) (any, error) {
	doc, err := parseDoc(content)
	if err != nil {
		return nil, err
	}

	return Specifications{
		Engine:       specSection(doc, "engine"),
		Dimensions:   specSection(doc, "dimensions"),
		Transmission: specSection(doc, "transmission"),
		Features:     specSection(doc, "features"),
	}, nil
}

// specSection reads one key/value spec table.
func specSection(doc *goquery.Document, section string) map[string]string {
	specs := make(map[string]string)
	doc.Find("div." + section + "-specifications tr").Each(func(_ int, row *goquery.Selection) {
		key := text(row.Find("td").First())
		value := text(row.Find("td").Last())
		if key != "" && value != "" {
			specs[key] = value
		}
	})
	if len(specs) == 0 {
		return nil
	}
	return specs
}
