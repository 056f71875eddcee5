package assembly

import (
	"errors"
	"testing"
)

// stubRegistry resolves a fixed set of field keys.
type stubRegistry struct {
	known map[string]bool
}

func (r *stubRegistry) Resolve(key string) (ExtractFunc, bool) {
	if !r.known[key] {
		return nil, false
	}
	return func([]byte) (any, error) { return key, nil }, true
}

const navPage = `<html><body>
<ul class="flex gap-9">
  <li><a id="model" href="/cars/alto/model">Model</a></li>
  <li><a id="price" href="/cars/alto/price">Price</a></li>
  <li><a id="specs" href="/cars/alto/specs">Specs</a></li>
  <li><a id="range" href="/cars/alto/range">Range</a></li>
  <li><a id="compare" href="/cars/alto/compare">Compare</a></li>
  <li><a id="gizmo" href="/cars/alto/gizmo">Gizmo</a></li>
</ul>
</body></html>`

func testDiscovery(reg AdapterRegistry) *Discovery {
	return NewDiscovery(
		"",
		[]string{"model", "compare"},
		map[string]string{"specs": "specifications", "range": "mileage"},
		reg,
		nil,
	)
}

func TestDiscoverFiltersAndMapsTabs(t *testing.T) {
	reg := &stubRegistry{known: map[string]bool{"price": true, "specifications": true, "mileage": true}}
	d := testDiscovery(reg)

	tasks, err := d.Discover("https://www.cars24.com/cars/alto/price", []byte(navPage))
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	byKey := make(map[string]SubTask, len(tasks))
	for _, task := range tasks {
		byKey[task.Key] = task
	}

	if len(tasks) != 4 {
		t.Fatalf("got %d tasks %v, want 4 (denylisted tabs filtered)", len(tasks), byKey)
	}
	for _, denied := range []string{"model", "compare"} {
		if _, ok := byKey[denied]; ok {
			t.Errorf("denylisted tab %q produced a sub-task", denied)
		}
	}

	// Lookup table renames specs and range.
	if _, ok := byKey["specifications"]; !ok {
		t.Error("specs tab not mapped to specifications key")
	}
	if _, ok := byKey["mileage"]; !ok {
		t.Error("range tab not mapped to mileage key")
	}

	// Relative hrefs resolve against the page URL.
	if got := byKey["price"].Target; got != "https://www.cars24.com/cars/alto/price" {
		t.Errorf("price target = %q", got)
	}

	// Unregistered key falls back to a nil adapter, so it still terminates.
	gizmo, ok := byKey["gizmo"]
	if !ok {
		t.Fatal("unknown tab dropped instead of falling back")
	}
	if gizmo.Extract != nil {
		t.Error("unknown tab got a real adapter")
	}
}

func TestDiscoverNoNavigation(t *testing.T) {
	d := testDiscovery(&stubRegistry{})
	_, err := d.Discover("https://x/car", []byte("<html><body><p>no tabs here</p></body></html>"))
	if !errors.Is(err, ErrNoNavigation) {
		t.Fatalf("err = %v, want ErrNoNavigation", err)
	}
}

func TestDiscoverAllTabsFilteredIsNotAnError(t *testing.T) {
	page := `<ul class="flex gap-9"><li><a id="model" href="/m">M</a></li></ul>`
	d := testDiscovery(&stubRegistry{})
	tasks, err := d.Discover("https://x/car", []byte(page))
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("got %d tasks, want 0", len(tasks))
	}
}

func TestDiscoverDuplicateKeysKeepFirst(t *testing.T) {
	// range and mileage both map to the mileage key.
	page := `<ul class="flex gap-9">
	  <li><a id="mileage" href="/cars/alto/mileage">Mileage</a></li>
	  <li><a id="range" href="/cars/alto/range">Range</a></li>
	</ul>`
	reg := &stubRegistry{known: map[string]bool{"mileage": true}}
	d := testDiscovery(reg)

	tasks, err := d.Discover("https://x/car", []byte(page))
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want deduplicated 1", len(tasks))
	}
	if tasks[0].Target != "https://x/cars/alto/mileage" {
		t.Errorf("kept %q, want the first descriptor", tasks[0].Target)
	}
}
