package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PriceData holds the detailed price breakdown from the price tab.
// Values keep the page's formatting with the currency symbol stripped.
type PriceData struct {
	ExShowroom   string       `json:"ex_showroom,omitempty"`
	RTO          string       `json:"rto,omitempty"`
	Insurance    string       `json:"insurance,omitempty"`
	OtherCharges OtherCharges `json:"other_charges"`
	OnRoad       string       `json:"on_road,omitempty"`
	City         string       `json:"city"`
}

// OtherCharges is the aggregate plus itemized breakdown of extra charges.
type OtherCharges struct {
	Total     string            `json:"total,omitempty"`
	Breakdown map[string]string `json:"breakdown,omitempty"`
}

// ExtractPrice extracts the price breakdown from price tab content.
func ExtractPrice(content []byte) (any, error) {
	doc, err := parseDoc(content)
	if err != nil {
		return nil, err
	}

	data := PriceData{
		City:         "New Delhi",
		OtherCharges: OtherCharges{Breakdown: map[string]string{}},
	}

	priceItem := func(htmlID string) string {
		sel := doc.Find("div#" + htmlID + " p#price-item-value")
		return cleanPrice(text(sel))
	}

	data.ExShowroom = priceItem("price-ex-showroom")
	data.RTO = priceItem("price-rto")
	data.Insurance = priceItem("price-insurance")
	data.OtherCharges.Total = priceItem("price-other-charges")
	data.OnRoad = priceItem("price-on-road")

	doc.Find("div[id^='other-charges-']").Each(func(_ int, charge *goquery.Selection) {
		label := text(charge.Find("div#price-item-label"))
		value := cleanPrice(text(charge.Find("p#price-item-value")))
		if label != "" && value != "" {
			data.OtherCharges.Breakdown[strings.ToLower(label)] = value
		}
	})

	return data, nil
}

// cleanPrice strips the currency symbol and surrounding whitespace.
func cleanPrice(v string) string {
	return strings.TrimSpace(strings.ReplaceAll(v, "₹", ""))
}
