package scrape

import (
	"github.com/PuerkitoBio/goquery"
)

// GalleryImage is one image with its highest-quality srcset URL.
type GalleryImage struct {
	URL   string `json:"url"`
	Alt   string `json:"alt,omitempty"`
	HQURL string `json:"hq_url,omitempty"`
}

// GalleryData groups gallery images by section.
type GalleryData struct {
	Exterior []GalleryImage `json:"exterior,omitempty"`
	Interior []GalleryImage `json:"interior,omitempty"`
	Colours  []GalleryImage `json:"colours,omitempty"`
}

// ExtractGallery extracts exterior, interior and colour images from
// gallery tab content.
func ExtractGallery(content []byte) (any, error) {
	doc, err := parseDoc(content)
	if err != nil {
		return nil, err
	}

	data := GalleryData{
		Exterior: galleryImages(doc.Find(`h2:contains('Exterior') + div.grid img`)),
		Interior: galleryImages(doc.Find(`h2:contains('Interior') + div.grid img`)),
		Colours:  galleryImages(doc.Find("div[data-selected] img")),
	}

	return data, nil
}

// galleryImages collects images with a source URL from a selection.
func galleryImages(sel *goquery.Selection) []GalleryImage {
	var images []GalleryImage
	sel.Each(func(_ int, img *goquery.Selection) {
		src := img.AttrOr("src", "")
		if src == "" {
			return
		}
		images = append(images, GalleryImage{
			URL:   src,
			Alt:   img.AttrOr("alt", ""),
			HQURL: hqFromSrcset(img.AttrOr("srcset", ""), src),
		})
	})
	return images
}
