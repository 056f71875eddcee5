// Package scrape provides the external collaborators consumed by the
// assembly engine: the HTTP fetch gateway and the per-field extraction
// adapters for vehicle detail pages.
//
// # Fetching
//
// Fetcher implements assembly.Gateway with SSRF protection (HTTPS only,
// private IP and DNS rebinding blocking), bounded retry on transient HTTP
// statuses and an in-memory TTL response cache.
//
// # Extraction
//
// Each detail tab has a dedicated adapter (price, specifications,
// variants, colours, mileage, reviews, gallery) built on goquery CSS
// selectors. Adapters are registered in a Registry keyed by field key;
// the registry dispatches on a tagged FieldKind rather than raw strings,
// with KindUnknown covering keys no adapter claims.
package scrape
