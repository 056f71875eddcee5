package scrape

import (
	"strings"
	"testing"
)

const reviewsPage = `<html><body>
<span id="mini-stat-interiors">4.2</span>
<span id="mini-stat-fuel-economy">4.8</span>
<span id="mini-stat-looks">4.0</span>
<span id="mini-stat-comfort">3.9</span>
<span id="mini-stat-overall">4.3</span>
<div class="review-card">
  <span class="user-name">Ravi</span>
  <div class="rating">4.5</div>
  <span class="review-date">12 Mar 2025</span>
  <div class="review-content"><p>Great <strong>city car</strong>.</p><script>track()</script></div>
  <div class="pros"><ul><li>Mileage</li><li> Price </li></ul></div>
  <div class="cons"><ul><li>Road noise</li></ul></div>
</div>
</body></html>`

func TestExtractReviews(t *testing.T) {
	v, err := ExtractReviews([]byte(reviewsPage))
	if err != nil {
		t.Fatalf("ExtractReviews: %v", err)
	}
	data, ok := v.(ReviewData)
	if !ok {
		t.Fatalf("got %T, want ReviewData", v)
	}

	if data.Statistics.Overall != 4.3 || data.Statistics.FuelEconomy != 4.8 {
		t.Errorf("statistics = %+v", data.Statistics)
	}

	if len(data.Reviews) != 1 {
		t.Fatalf("got %d reviews, want 1", len(data.Reviews))
	}
	r := data.Reviews[0]
	if r.User != "Ravi" || r.Rating != "4.5" || r.Date != "12 Mar 2025" {
		t.Errorf("review header = %+v", r)
	}
	if !strings.Contains(r.Content, "**city car**") {
		t.Errorf("Content = %q, want markdown emphasis", r.Content)
	}
	if strings.Contains(r.Content, "track()") {
		t.Errorf("Content = %q, script body leaked into markdown", r.Content)
	}
	if len(r.Pros) != 2 || r.Pros[1] != "Price" {
		t.Errorf("Pros = %v", r.Pros)
	}
	if len(r.Cons) != 1 || r.Cons[0] != "Road noise" {
		t.Errorf("Cons = %v", r.Cons)
	}
}

func TestExtractReviewsMissingStats(t *testing.T) {
	v, err := ExtractReviews([]byte("<html><body></body></html>"))
	if err != nil {
		t.Fatalf("ExtractReviews: %v", err)
	}
	data := v.(ReviewData)
	if data.Statistics.Overall != 0 {
		t.Errorf("missing stat parsed as %v, want 0", data.Statistics.Overall)
	}
	if len(data.Reviews) != 0 {
		t.Errorf("got %d reviews from empty page", len(data.Reviews))
	}
}
