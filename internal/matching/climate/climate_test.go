// internal/matching/climate/climate_test.go
package climate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name     string
		region   string
		expected string
	}{
		{"exact province", "山东", "山东"},
		{"city resolves to province", "山东菏泽", "山东"},
		{"whitespace trimmed", "  山东  ", "山东"},
		{"unknown region falls back", "亚特兰蒂斯", "default"},
		{"empty region falls back", "", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Lookup(tt.region).Region)
		})
	}
}

func TestProvince(t *testing.T) {
	assert.Equal(t, "山东", Province("山东"))
	assert.Equal(t, "山东", Province("山东菏泽"))
	assert.Equal(t, "黑龙江", Province("黑龙江哈尔滨"))
	assert.Equal(t, "", Province("亚特兰蒂斯"))
	assert.Equal(t, "", Province(""))
}

// A region naming two provinces must resolve identically on every call;
// 山东 precedes 河南 in the resolution order.
func TestLookupAndProvince_MultiProvinceRegionIsStable(t *testing.T) {
	for i := 0; i < 200; i++ {
		assert.Equal(t, "山东", Province("山东河南交界试验田"))
		assert.Equal(t, "山东", Lookup("山东河南交界试验田").Region)
	}
}

func TestZone(t *testing.T) {
	tests := []struct {
		region string
		zone   string
	}{
		{"山东", "华东"},
		{"山东菏泽", "华东"},
		{"河北", "华北"},
		{"黑龙江", "东北"},
		{"广东", "华南"},
		{"四川", "西南"},
		{"新疆", "西北"},
		{"河南", "华中"},
		{"亚特兰蒂斯", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.zone, Zone(tt.region), "region=%s", tt.region)
	}
}

func TestSameZone(t *testing.T) {
	assert.True(t, SameZone("山东", "江苏"))
	assert.True(t, SameZone("山东菏泽", "浙江"))
	assert.False(t, SameZone("山东", "广东"))
	// Unresolved regions never match anything, including each other.
	assert.False(t, SameZone("亚特兰蒂斯", "亚特兰蒂斯"))
	assert.False(t, SameZone("", "山东"))
}

func TestLightSatisfied(t *testing.T) {
	tests := []struct {
		regionLight string
		need        string
		satisfied   bool
	}{
		{LightFull, "full", true},
		{LightModerate, "full", false},
		{LightLow, "full", false},
		{LightFull, "partial", true},
		{LightModerate, "partial", true},
		{LightLow, "partial", false},
		{LightLow, "shade", true},
		{LightFull, "shade", false},
		{LightModerate, "unknown-need", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.satisfied, LightSatisfied(tt.regionLight, tt.need),
			"light=%s need=%s", tt.regionLight, tt.need)
	}
}

func TestLightCompatible(t *testing.T) {
	tests := []struct {
		regionLight string
		need        string
		compatible  bool
	}{
		{LightModerate, "full", true},
		{LightLow, "full", false},
		{LightLow, "partial", true},
		{LightModerate, "shade", true},
		{LightFull, "shade", false},
		{LightFull, "unknown-need", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.compatible, LightCompatible(tt.regionLight, tt.need),
			"light=%s need=%s", tt.regionLight, tt.need)
	}
}

func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile()
	assert.Equal(t, "default", p.Region)
	assert.NotEmpty(t, p.Seasons)
}
