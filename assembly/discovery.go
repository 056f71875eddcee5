package assembly

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultNavSelector matches the detail-tab navigation list on vehicle
// detail pages.
const DefaultNavSelector = "ul.flex.gap-9 li a"

// AdapterRegistry resolves a field key to its extraction adapter. A miss
// routes the key to the unknown-field fallback.
type AdapterRegistry interface {
	Resolve(key string) (ExtractFunc, bool)
}

// Discovery enumerates an entity's sub-tasks from its first-fetched page.
// Tab ids on the configured denylist are filtered out; remaining ids are
// mapped to field keys through a fixed lookup table, and keys without a
// registered adapter fall back to a nil Extract so they still terminate.
type Discovery struct {
	navSelector string
	exclude     map[string]struct{}
	keys        map[string]string
	adapters    AdapterRegistry
	logger      *slog.Logger
}

// NewDiscovery creates a discovery stage. The exclude list holds tab ids
// that are non-actionable navigation items; keys maps tab ids to field
// keys (ids absent from the table keep their id as key).
func NewDiscovery(navSelector string, exclude []string, keys map[string]string, adapters AdapterRegistry, logger *slog.Logger) *Discovery {
	if navSelector == "" {
		navSelector = DefaultNavSelector
	}
	if logger == nil {
		logger = slog.Default()
	}
	excluded := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}
	return &Discovery{
		navSelector: navSelector,
		exclude:     excluded,
		keys:        keys,
		adapters:    adapters,
		logger:      logger,
	}
}

// Discover parses the first-fetched page of an entity and returns its
// sub-task descriptors. Relative tab targets are resolved against baseURL.
// Returns ErrNoNavigation when the page carries no navigable items; an
// empty (fully filtered) descriptor list is not an error.
func (d *Discovery) Discover(baseURL string, content []byte) ([]SubTask, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	nav := doc.Find(d.navSelector)
	if nav.Length() == 0 {
		return nil, ErrNoNavigation
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}

	var tasks []SubTask
	seen := make(map[string]struct{})
	nav.Each(func(_ int, tab *goquery.Selection) {
		tabID := strings.TrimSpace(tab.AttrOr("id", ""))
		if tabID == "" {
			return
		}
		if _, skip := d.exclude[tabID]; skip {
			return
		}

		key, ok := d.keys[tabID]
		if !ok {
			key = tabID
		}
		if _, dup := seen[key]; dup {
			d.logger.Warn("Duplicate field key in navigation, keeping first",
				"tab_id", tabID, "key", key)
			return
		}
		seen[key] = struct{}{}

		target := resolveTarget(base, tab.AttrOr("href", ""))
		extract, registered := d.adapters.Resolve(key)
		if !registered {
			extract = nil
		}
		tasks = append(tasks, SubTask{Key: key, Target: target, Extract: extract})
	})

	return tasks, nil
}

// resolveTarget resolves a possibly relative href against the page URL.
func resolveTarget(base *url.URL, href string) string {
	if href == "" {
		return base.String()
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
