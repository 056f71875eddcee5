package scrape

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/c360studio/sawari/assembly"
)

// FieldKind identifies the detail tab variant an adapter handles.
// Dispatch is over this tag rather than raw strings; KindUnknown covers
// keys no adapter claims.
type FieldKind int

const (
	KindUnknown FieldKind = iota
	KindPrice
	KindSpecifications
	KindVariants
	KindColours
	KindMileage
	KindReviews
	KindGallery
)

// String returns the field kind name.
func (k FieldKind) String() string {
	switch k {
	case KindPrice:
		return "price"
	case KindSpecifications:
		return "specifications"
	case KindVariants:
		return "variants"
	case KindColours:
		return "colours"
	case KindMileage:
		return "mileage"
	case KindReviews:
		return "reviews"
	case KindGallery:
		return "gallery"
	default:
		return "unknown"
	}
}

// Field binds a field key to its kind and extraction adapter.
type Field struct {
	Key     string
	Kind    FieldKind
	Extract assembly.ExtractFunc
}

// Registry maps field keys to extraction adapters. It implements
// assembly.AdapterRegistry.
type Registry struct {
	fields map[string]Field
}

// NewRegistry returns a registry with every built-in adapter registered
// under its canonical field key.
func NewRegistry() *Registry {
	r := &Registry{fields: make(map[string]Field)}
	r.Register("price", KindPrice, ExtractPrice)
	r.Register("specifications", KindSpecifications, ExtractSpecifications)
	r.Register("variants", KindVariants, ExtractVariants)
	r.Register("colours", KindColours, ExtractColours)
	r.Register("mileage", KindMileage, ExtractMileage)
	r.Register("reviews", KindReviews, ExtractReviews)
	r.Register("gallery", KindGallery, ExtractGallery)
	return r
}

// Register binds an adapter to a field key, replacing any previous
// binding.
func (r *Registry) Register(key string, kind FieldKind, fn assembly.ExtractFunc) {
	r.fields[key] = Field{Key: key, Kind: kind, Extract: fn}
}

// Resolve returns the adapter for a field key. A miss means the key is
// unrecognized and must terminate without fetching.
func (r *Registry) Resolve(key string) (assembly.ExtractFunc, bool) {
	f, ok := r.fields[key]
	if !ok {
		return nil, false
	}
	return f.Extract, true
}

// Kind returns the field kind registered for a key, KindUnknown on miss.
func (r *Registry) Kind(key string) FieldKind {
	return r.fields[key].Kind
}

// Keys returns the registered field keys.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.fields))
	for k := range r.fields {
		keys = append(keys, k)
	}
	return keys
}

// parseDoc builds a goquery document from fetched page content.
func parseDoc(content []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return doc, nil
}

// text returns the trimmed text of the first match.
func text(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.First().Text())
}

// hqFromSrcset picks the last (highest quality) URL from a srcset
// attribute, falling back to the given URL.
func hqFromSrcset(srcset, fallback string) string {
	if srcset == "" {
		return fallback
	}
	parts := strings.Split(srcset, ",")
	last := strings.TrimSpace(parts[len(parts)-1])
	if last == "" {
		return fallback
	}
	if i := strings.IndexByte(last, ' '); i > 0 {
		last = last[:i]
	}
	if last == "" {
		return fallback
	}
	return last
}
