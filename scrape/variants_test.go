package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const variantsPage = `<html><body>
<div id="car-variants">
  <h2> Alto K10 STD </h2>
  <div class="bg-black text-white">Base Variant</div>
  <div class="bg-transparent"><p>₹ 3.99 Lakh</p></div>
  <div class="grid grid-cols-3">
    <div class="flex flex-col"><p class="font-medium">Manual</p><p class="text-grey">Transmission</p></div>
    <div class="flex flex-col"><p class="font-medium">Petrol</p><p class="text-grey">Fuel</p></div>
  </div>
  <div class="flex flex-wrap">
    <span class="flex items-center">Power Steering</span>
    <span class="flex items-center">Front Airbags</span>
  </div>
  <button id="all-feature-sheet-undefined">+12 more features</button>
</div>
<div id="car-variants">
  <h2>Alto K10 VXI</h2>
  <div class="bg-transparent"><p>₹ 4.99 Lakh</p></div>
</div>
</body></html>`

func TestExtractVariants(t *testing.T) {
	v, err := ExtractVariants([]byte(variantsPage))
	require.NoError(t, err)
	variants, ok := v.([]Variant)
	require.True(t, ok, "got %T, want []Variant", v)
	require.Len(t, variants, 2)

	std := variants[0]
	assert.Equal(t, "Alto K10 STD", std.Name)
	assert.Equal(t, "₹ 3.99 Lakh", std.Price)
	assert.Equal(t, "Base Variant", std.Tag)
	assert.Equal(t, map[string]string{"transmission": "Manual", "fuel": "Petrol"}, std.Specifications)
	assert.Equal(t, []string{"Power Steering", "Front Airbags"}, std.Features)
	assert.Equal(t, 14, std.TotalFeatures, "2 inline + 12 hidden")

	vxi := variants[1]
	assert.Equal(t, "Alto K10 VXI", vxi.Name)
	assert.Empty(t, vxi.Tag)
	assert.Equal(t, 0, vxi.TotalFeatures)
}

func TestHiddenFeatureCount(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  int
	}{
		{name: "plus n more", label: "+12 more features", want: 12},
		{name: "no plus", label: "see all features", want: 0},
		{name: "empty", label: "", want: 0},
		{name: "malformed", label: "+abc more", want: 0},
		{name: "leading text", label: "View +3 more", want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hiddenFeatureCount(tt.label))
		})
	}
}
