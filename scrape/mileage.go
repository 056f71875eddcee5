package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MileageData holds claimed mileage figures per fuel type and
// transmission.
type MileageData struct {
	Overview string `json:"overview,omitempty"`
	// Figures maps fuel type -> transmission -> mileage figure, both keys
	// lowercased.
	Figures map[string]map[string]string `json:"figures,omitempty"`
}

// ExtractMileage extracts the mileage table from mileage tab content.
func ExtractMileage(content []byte) (any, error) {
	doc, err := parseDoc(content)
	if err != nil {
		return nil, err
	}

	data := MileageData{
		Overview: text(doc.Find("#mileage-stat-title p")),
		Figures:  make(map[string]map[string]string),
	}

	doc.Find("tr[id^='tr-']").Each(func(_ int, row *goquery.Selection) {
		fuel := strings.ToLower(text(row.Find("#td-fuel-engine")))
		transmission := strings.ToLower(text(row.Find("#td-transmission")))
		mileage := text(row.Find("#td-aria-mileage"))
		if fuel == "" || transmission == "" || mileage == "" {
			return
		}

		// Drop the displacement suffix, e.g. "petrol (998 cc)".
		if i := strings.IndexByte(fuel, '('); i > 0 {
			fuel = strings.TrimSpace(fuel[:i])
		}

		if data.Figures[fuel] == nil {
			data.Figures[fuel] = make(map[string]string)
		}
		data.Figures[fuel][transmission] = mileage
	})

	if len(data.Figures) == 0 {
		data.Figures = nil
	}
	return data, nil
}
