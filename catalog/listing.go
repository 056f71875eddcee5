package catalog

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseBrands extracts the manufacturer cards from the listing index
// page. Brand URLs are resolved against baseURL.
func ParseBrands(baseURL string, content []byte) ([]Brand, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse brand index: %w", err)
	}

	var brands []Brand
	doc.Find("a.TopBrands_brand-title__G7tjI").Each(func(_ int, card *goquery.Selection) {
		name := strings.TrimSpace(card.Find("span").First().Text())
		href, ok := card.Attr("href")
		if name == "" || !ok {
			return
		}
		logo, _ := card.Find("img").First().Attr("src")
		brands = append(brands, Brand{
			Name: name,
			URL:  resolveURL(baseURL, href),
			Logo: logo,
		})
	})
	return brands, nil
}

// ListingPage is the result of parsing one brand listing page.
type ListingPage struct {
	Cars []Car

	// NextURL is the resolved URL of the next listing page, or empty
	// when this is the last page.
	NextURL string
}

// ParseListing extracts the car cards from a brand listing page.
// Cards missing a detail link are skipped.
func ParseListing(brand, pageURL string, content []byte) (*ListingPage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse listing page: %w", err)
	}

	page := &ListingPage{}
	doc.Find("div.model-card").Each(func(_ int, card *goquery.Selection) {
		href, ok := card.Find("a").First().Attr("href")
		if !ok || href == "" {
			return
		}

		car := Car{
			Brand:      brand,
			Name:       strings.TrimSpace(card.Find("span.font-medium.text-black").First().Text()),
			DetailURL:  resolveURL(pageURL, href),
			PriceRange: strings.TrimSpace(card.Find("p.font-medium.text-lg.whitespace-nowrap").First().Text()),
		}

		specs := make(map[string]string)
		card.Find("div.flex.justify-between.mt-3 div.flex.flex-col").Each(func(_ int, spec *goquery.Selection) {
			label := strings.TrimSpace(spec.Find("p[class*='text-[10px]']").First().Text())
			value := strings.TrimSpace(spec.Find("p.font-medium").First().Text())
			if label != "" && value != "" {
				specs[strings.ToLower(label)] = value
			}
		})
		if len(specs) > 0 {
			car.Specifications = specs
		}

		card.Find("a.key-specs span.text-xs.font-small").Each(func(_ int, s *goquery.Selection) {
			if feature := strings.TrimSpace(s.Text()); feature != "" {
				car.KeyFeatures = append(car.KeyFeatures, feature)
			}
		})

		card.Find("img.w-full.h-full.object-contain").Each(func(_ int, img *goquery.Selection) {
			if src, ok := img.Attr("src"); ok && src != "" {
				car.Images = append(car.Images, src)
			}
		})

		if thumb, ok := card.Find("img#youtube-video-thumbnail").First().Attr("src"); ok {
			car.VideoThumbnail = thumb
		}

		page.Cars = append(page.Cars, car)
	})

	if next, ok := doc.Find("a.next-page").First().Attr("href"); ok && next != "" {
		page.NextURL = resolveURL(pageURL, next)
	}
	return page, nil
}

// resolveURL resolves href against base, returning href unchanged when
// either side fails to parse.
func resolveURL(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	h, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}
