package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const brandIndexPage = `
<html><body>
<div class="TopBrands_wrapper">
  <a class="TopBrands_brand-title__G7tjI" href="/new-cars/maruti-suzuki">
    <img src="https://cdn.example.com/maruti.png"/>
    <span>Maruti Suzuki</span>
  </a>
  <a class="TopBrands_brand-title__G7tjI" href="/new-cars/tata">
    <img src="https://cdn.example.com/tata.png"/>
    <span>Tata</span>
  </a>
  <a class="TopBrands_brand-title__G7tjI" href="/new-cars/empty"><span>  </span></a>
</div>
</body></html>`

const listingPage = `
<html><body>
<div class="model-card">
  <a href="/new-cars/tata/nexon/overview"></a>
  <span class="font-medium text-black">Tata Nexon</span>
  <p class="font-medium text-lg whitespace-nowrap">₹8 - 15.6 Lakh</p>
  <div class="flex justify-between mt-3">
    <div class="flex flex-col">
      <p class="text-[10px]">Engine</p>
      <p class="font-medium">1199 cc</p>
    </div>
    <div class="flex flex-col">
      <p class="text-[10px]">Fuel</p>
      <p class="font-medium">Petrol</p>
    </div>
  </div>
  <a class="key-specs"><span class="text-xs font-small">Sunroof</span><span class="text-xs font-small">6 Airbags</span></a>
  <img class="w-full h-full object-contain" src="https://cdn.example.com/nexon-1.jpg"/>
  <img class="w-full h-full object-contain" src="https://cdn.example.com/nexon-2.jpg"/>
  <img id="youtube-video-thumbnail" src="https://cdn.example.com/nexon-video.jpg"/>
</div>
<div class="model-card">
  <a href="/new-cars/tata/tiago/overview"></a>
  <span class="font-medium text-black">Tata Tiago</span>
  <p class="font-medium text-lg whitespace-nowrap">₹5 - 8 Lakh</p>
</div>
<div class="model-card"><span class="font-medium text-black">No Link Car</span></div>
<a class="next-page" href="/new-cars/tata?page=2">Next</a>
</body></html>`

func TestParseBrands(t *testing.T) {
	brands, err := ParseBrands("https://www.cars24.com/new-cars", []byte(brandIndexPage))
	require.NoError(t, err)
	require.Len(t, brands, 2, "blank brand card should be skipped")

	assert.Equal(t, "Maruti Suzuki", brands[0].Name)
	assert.Equal(t, "https://www.cars24.com/new-cars/maruti-suzuki", brands[0].URL)
	assert.Equal(t, "https://cdn.example.com/maruti.png", brands[0].Logo)
	assert.Equal(t, "Tata", brands[1].Name)
}

func TestParseListing(t *testing.T) {
	page, err := ParseListing("Tata", "https://www.cars24.com/new-cars/tata", []byte(listingPage))
	require.NoError(t, err)
	require.Len(t, page.Cars, 2, "card without a detail link should be skipped")

	nexon := page.Cars[0]
	assert.Equal(t, "Tata", nexon.Brand)
	assert.Equal(t, "Tata Nexon", nexon.Name)
	assert.Equal(t, "https://www.cars24.com/new-cars/tata/nexon/overview", nexon.DetailURL)
	assert.Equal(t, "₹8 - 15.6 Lakh", nexon.PriceRange)
	assert.Equal(t, map[string]string{"engine": "1199 cc", "fuel": "Petrol"}, nexon.Specifications)
	assert.Equal(t, []string{"Sunroof", "6 Airbags"}, nexon.KeyFeatures)
	assert.Equal(t, []string{"https://cdn.example.com/nexon-1.jpg", "https://cdn.example.com/nexon-2.jpg"}, nexon.Images)
	assert.Equal(t, "https://cdn.example.com/nexon-video.jpg", nexon.VideoThumbnail)

	tiago := page.Cars[1]
	assert.Equal(t, "Tata Tiago", tiago.Name)
	assert.Nil(t, tiago.Specifications)
	assert.Empty(t, tiago.KeyFeatures)

	assert.Equal(t, "https://www.cars24.com/new-cars/tata?page=2", page.NextURL)
}

func TestParseListingNoNextPage(t *testing.T) {
	page, err := ParseListing("Tata", "https://www.cars24.com/new-cars/tata", []byte(`<html><body></body></html>`))
	require.NoError(t, err)
	assert.Empty(t, page.Cars)
	assert.Empty(t, page.NextURL)
}
