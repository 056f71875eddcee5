package scrape

import (
	"testing"
)

const pricePage = `<html><body>
<div id="price-ex-showroom"><div id="price-item-label">Ex-Showroom</div><p id="price-item-value"> ₹ 4,23,000 </p></div>
<div id="price-rto"><div id="price-item-label">RTO</div><p id="price-item-value">₹ 42,300</p></div>
<div id="price-insurance"><div id="price-item-label">Insurance</div><p id="price-item-value">₹ 25,000</p></div>
<div id="price-other-charges"><div id="price-item-label">Other Charges</div><p id="price-item-value">₹ 7,500</p></div>
<div id="other-charges-fastag"><div id="price-item-label">FASTag</div><p id="price-item-value">₹ 500</p></div>
<div id="other-charges-tcs"><div id="price-item-label">TCS</div><p id="price-item-value">₹ 7,000</p></div>
<div id="price-on-road"><div id="price-item-label">On-Road</div><p id="price-item-value">₹ 4,97,800</p></div>
</body></html>`

func TestExtractPrice(t *testing.T) {
	v, err := ExtractPrice([]byte(pricePage))
	if err != nil {
		t.Fatalf("ExtractPrice: %v", err)
	}
	data, ok := v.(PriceData)
	if !ok {
		t.Fatalf("got %T, want PriceData", v)
	}

	if data.ExShowroom != "4,23,000" {
		t.Errorf("ExShowroom = %q, want currency symbol stripped", data.ExShowroom)
	}
	if data.RTO != "42,300" {
		t.Errorf("RTO = %q", data.RTO)
	}
	if data.Insurance != "25,000" {
		t.Errorf("Insurance = %q", data.Insurance)
	}
	if data.OnRoad != "4,97,800" {
		t.Errorf("OnRoad = %q", data.OnRoad)
	}
	if data.OtherCharges.Total != "7,500" {
		t.Errorf("OtherCharges.Total = %q", data.OtherCharges.Total)
	}
	if got := data.OtherCharges.Breakdown["fastag"]; got != "500" {
		t.Errorf("Breakdown[fastag] = %q", got)
	}
	if got := data.OtherCharges.Breakdown["tcs"]; got != "7,000" {
		t.Errorf("Breakdown[tcs] = %q", got)
	}
	if data.City != "New Delhi" {
		t.Errorf("City = %q", data.City)
	}
}

func TestExtractPriceEmptyPage(t *testing.T) {
	v, err := ExtractPrice([]byte("<html><body></body></html>"))
	if err != nil {
		t.Fatalf("ExtractPrice: %v", err)
	}
	data := v.(PriceData)
	if data.ExShowroom != "" || data.OnRoad != "" {
		t.Errorf("expected empty fields, got %+v", data)
	}
}
