package catalog

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/c360studio/sawari/assembly"
)

// Brand is a manufacturer entry from the top-brands strip of the
// listing index page.
type Brand struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Logo string `json:"logo,omitempty"`
}

// Car is a single catalog entry as harvested from a brand listing
// page. The listing card carries a shallow summary; the detail tabs
// fetched during assembly fill in the rest.
type Car struct {
	Brand          string            `json:"brand"`
	Name           string            `json:"name"`
	DetailURL      string            `json:"detail_url"`
	PriceRange     string            `json:"price_range,omitempty"`
	Specifications map[string]string `json:"specifications,omitempty"`
	KeyFeatures    []string          `json:"key_features,omitempty"`
	Images         []string          `json:"images,omitempty"`
	VideoThumbnail string            `json:"video_thumbnail,omitempty"`
}

// SeedURL returns the page assembly should fetch first for this car.
// The overview tab carries no extractable data, so the crawl starts
// on the price tab instead.
func (c Car) SeedURL() string {
	return strings.Replace(c.DetailURL, "/overview", "/price", 1)
}

// Entity converts the car into an assembly entity. Listing-card
// specifications are carried under the card_specs key so they cannot
// shadow the specifications field assembled from the detail tabs.
func (c Car) Entity() assembly.Entity {
	base := map[string]any{
		"brand":      c.Brand,
		"name":       c.Name,
		"detail_url": c.DetailURL,
	}
	if c.PriceRange != "" {
		base["price_range"] = c.PriceRange
	}
	if len(c.Specifications) > 0 {
		base["card_specs"] = c.Specifications
	}
	if len(c.KeyFeatures) > 0 {
		base["key_features"] = c.KeyFeatures
	}
	if len(c.Images) > 0 {
		base["images"] = c.Images
	}
	if c.VideoThumbnail != "" {
		base["video_thumbnail"] = c.VideoThumbnail
	}

	return assembly.Entity{
		ID:      EntityID(c.DetailURL),
		Base:    base,
		SeedURL: c.SeedURL(),
	}
}

// Validate checks that the car carries enough information to be
// assembled.
func (c Car) Validate() error {
	if c.DetailURL == "" {
		return fmt.Errorf("car %q: missing detail_url", c.Name)
	}
	if c.Name == "" {
		return fmt.Errorf("car at %s: missing name", c.DetailURL)
	}
	return nil
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9-]+`)

// EntityID derives a stable identifier from a detail URL. Path
// segments that only route (the listing prefix and the tab suffix)
// are dropped so the same vehicle maps to the same ID regardless of
// which tab the URL points at.
func EntityID(detailURL string) string {
	parsed, err := url.Parse(detailURL)
	if err != nil || parsed.Path == "" {
		return slugify(detailURL)
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	var kept []string
	for i, seg := range segments {
		if seg == "new-cars" {
			continue
		}
		// Trailing tab name is routing, not identity.
		if i == len(segments)-1 && isTabSegment(seg) {
			continue
		}
		kept = append(kept, seg)
	}
	if len(kept) == 0 {
		return slugify(parsed.Hostname())
	}
	return slugify(strings.Join(kept, "-"))
}

func isTabSegment(seg string) bool {
	switch seg {
	case "overview", "price", "specs", "variants", "colours", "range", "reviews", "gallery", "model", "compare":
		return true
	}
	return false
}

func slugify(s string) string {
	s = strings.ToLower(s)
	s = nonSlugChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
