package scrape

import (
	"testing"
)

const mileagePage = `<html><body>
<div id="mileage-stat-title"><p>Alto K10 mileage ranges from 24.39 to 33.85 km/kg</p></div>
<table>
<tr id="tr-1"><td id="td-fuel-engine">Petrol (998 cc)</td><td id="td-transmission">Manual</td><td id="td-aria-mileage">24.39 kmpl</td></tr>
<tr id="tr-2"><td id="td-fuel-engine">Petrol (998 cc)</td><td id="td-transmission">Automatic</td><td id="td-aria-mileage">24.90 kmpl</td></tr>
<tr id="tr-3"><td id="td-fuel-engine">CNG</td><td id="td-transmission">Manual</td><td id="td-aria-mileage">33.85 km/kg</td></tr>
<tr id="tr-4"><td id="td-fuel-engine"></td><td id="td-transmission">Manual</td><td id="td-aria-mileage">ignored</td></tr>
</table>
</body></html>`

func TestExtractMileage(t *testing.T) {
	v, err := ExtractMileage([]byte(mileagePage))
	if err != nil {
		t.Fatalf("ExtractMileage: %v", err)
	}
	data, ok := v.(MileageData)
	if !ok {
		t.Fatalf("got %T, want MileageData", v)
	}

	if data.Overview != "Alto K10 mileage ranges from 24.39 to 33.85 km/kg" {
		t.Errorf("Overview = %q", data.Overview)
	}
	if got := data.Figures["petrol"]["manual"]; got != "24.39 kmpl" {
		t.Errorf("petrol/manual = %q, want displacement suffix stripped from fuel key", got)
	}
	if got := data.Figures["petrol"]["automatic"]; got != "24.90 kmpl" {
		t.Errorf("petrol/automatic = %q", got)
	}
	if got := data.Figures["cng"]["manual"]; got != "33.85 km/kg" {
		t.Errorf("cng/manual = %q", got)
	}
	if len(data.Figures) != 2 {
		t.Errorf("Figures has %d fuel types, incomplete rows must be skipped", len(data.Figures))
	}
}
