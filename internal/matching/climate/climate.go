// internal/matching/climate/climate.go
package climate

import "strings"

// Light categories used by both region profiles and product requirements.
const (
	LightFull     = "full"
	LightModerate = "moderate"
	LightLow      = "low"
)

// Profile describes the average growing conditions of a region.
type Profile struct {
	Region         string   `json:"region"`
	AvgTemperature float64  `json:"avgTemperature"` // celsius, growing season average
	AvgHumidity    float64  `json:"avgHumidity"`    // percent
	Light          string   `json:"light"`
	Seasons        []string `json:"seasons"` // planting seasons typical for the region
}

// defaultProfile is used when a region cannot be resolved at all.
var defaultProfile = Profile{
	Region:         "default",
	AvgTemperature: 18,
	AvgHumidity:    60,
	Light:          LightModerate,
	Seasons:        []string{"春季", "秋季"},
}

// provinceProfiles holds province-level climate baselines. City-level lookups
// fall back onto the owning province via prefix match.
var provinceProfiles = map[string]Profile{
	"山东":  {Region: "山东", AvgTemperature: 14, AvgHumidity: 62, Light: LightFull, Seasons: []string{"春季", "秋季"}},
	"河南":  {Region: "河南", AvgTemperature: 15, AvgHumidity: 65, Light: LightFull, Seasons: []string{"春季", "秋季"}},
	"河北":  {Region: "河北", AvgTemperature: 12, AvgHumidity: 55, Light: LightFull, Seasons: []string{"春季", "秋季"}},
	"山西":  {Region: "山西", AvgTemperature: 10, AvgHumidity: 50, Light: LightFull, Seasons: []string{"春季"}},
	"北京":  {Region: "北京", AvgTemperature: 13, AvgHumidity: 54, Light: LightFull, Seasons: []string{"春季", "秋季"}},
	"天津":  {Region: "天津", AvgTemperature: 13, AvgHumidity: 58, Light: LightFull, Seasons: []string{"春季", "秋季"}},
	"内蒙古": {Region: "内蒙古", AvgTemperature: 6, AvgHumidity: 45, Light: LightFull, Seasons: []string{"春季"}},
	"辽宁":  {Region: "辽宁", AvgTemperature: 9, AvgHumidity: 60, Light: LightModerate, Seasons: []string{"春季"}},
	"吉林":  {Region: "吉林", AvgTemperature: 6, AvgHumidity: 60, Light: LightModerate, Seasons: []string{"春季"}},
	"黑龙江": {Region: "黑龙江", AvgTemperature: 4, AvgHumidity: 62, Light: LightModerate, Seasons: []string{"春季"}},
	"江苏":  {Region: "江苏", AvgTemperature: 16, AvgHumidity: 72, Light: LightModerate, Seasons: []string{"春季", "秋季"}},
	"浙江":  {Region: "浙江", AvgTemperature: 17, AvgHumidity: 76, Light: LightModerate, Seasons: []string{"春季", "秋季"}},
	"安徽":  {Region: "安徽", AvgTemperature: 16, AvgHumidity: 70, Light: LightModerate, Seasons: []string{"春季", "秋季"}},
	"上海":  {Region: "上海", AvgTemperature: 17, AvgHumidity: 75, Light: LightModerate, Seasons: []string{"春季", "秋季"}},
	"福建":  {Region: "福建", AvgTemperature: 20, AvgHumidity: 78, Light: LightModerate, Seasons: []string{"春季", "秋季", "冬季"}},
	"江西":  {Region: "江西", AvgTemperature: 18, AvgHumidity: 77, Light: LightModerate, Seasons: []string{"春季", "秋季"}},
	"湖北":  {Region: "湖北", AvgTemperature: 16, AvgHumidity: 74, Light: LightModerate, Seasons: []string{"春季", "秋季"}},
	"湖南":  {Region: "湖南", AvgTemperature: 17, AvgHumidity: 78, Light: LightModerate, Seasons: []string{"春季", "秋季"}},
	"广东":  {Region: "广东", AvgTemperature: 22, AvgHumidity: 80, Light: LightFull, Seasons: []string{"春季", "秋季", "冬季"}},
	"广西":  {Region: "广西", AvgTemperature: 21, AvgHumidity: 78, Light: LightFull, Seasons: []string{"春季", "秋季", "冬季"}},
	"海南":  {Region: "海南", AvgTemperature: 25, AvgHumidity: 82, Light: LightFull, Seasons: []string{"春季", "秋季", "冬季"}},
	"四川":  {Region: "四川", AvgTemperature: 16, AvgHumidity: 75, Light: LightLow, Seasons: []string{"春季", "秋季"}},
	"重庆":  {Region: "重庆", AvgTemperature: 18, AvgHumidity: 79, Light: LightLow, Seasons: []string{"春季", "秋季"}},
	"贵州":  {Region: "贵州", AvgTemperature: 15, AvgHumidity: 77, Light: LightLow, Seasons: []string{"春季", "秋季"}},
	"云南":  {Region: "云南", AvgTemperature: 16, AvgHumidity: 68, Light: LightFull, Seasons: []string{"春季", "夏季", "秋季"}},
	"陕西":  {Region: "陕西", AvgTemperature: 13, AvgHumidity: 58, Light: LightModerate, Seasons: []string{"春季", "秋季"}},
	"甘肃":  {Region: "甘肃", AvgTemperature: 9, AvgHumidity: 46, Light: LightFull, Seasons: []string{"春季"}},
	"宁夏":  {Region: "宁夏", AvgTemperature: 9, AvgHumidity: 48, Light: LightFull, Seasons: []string{"春季"}},
	"青海":  {Region: "青海", AvgTemperature: 5, AvgHumidity: 45, Light: LightFull, Seasons: []string{"春季"}},
	"新疆":  {Region: "新疆", AvgTemperature: 11, AvgHumidity: 40, Light: LightFull, Seasons: []string{"春季"}},
	"西藏":  {Region: "西藏", AvgTemperature: 7, AvgHumidity: 42, Light: LightFull, Seasons: []string{"春季"}},
}

// provinceOrder fixes the resolution precedence for region names that contain
// more than one province. Lookups must not depend on map iteration order.
var provinceOrder = []string{
	"山东", "河南", "河北", "山西", "北京", "天津", "内蒙古",
	"辽宁", "吉林", "黑龙江",
	"江苏", "浙江", "安徽", "上海", "福建", "江西",
	"湖北", "湖南", "广东", "广西", "海南",
	"四川", "重庆", "贵州", "云南",
	"陕西", "甘肃", "宁夏", "青海", "新疆", "西藏",
}

// provinceZones maps provinces to major geographic growing zones. Regions in the
// same zone are considered agronomically adjacent for region scoring.
var provinceZones = map[string]string{
	"北京": "华北", "天津": "华北", "河北": "华北", "山西": "华北", "内蒙古": "华北",
	"辽宁": "东北", "吉林": "东北", "黑龙江": "东北",
	"上海": "华东", "江苏": "华东", "浙江": "华东", "安徽": "华东", "福建": "华东", "江西": "华东", "山东": "华东",
	"河南": "华中", "湖北": "华中", "湖南": "华中",
	"广东": "华南", "广西": "华南", "海南": "华南",
	"重庆": "西南", "四川": "西南", "贵州": "西南", "云南": "西南", "西藏": "西南",
	"陕西": "西北", "甘肃": "西北", "青海": "西北", "宁夏": "西北", "新疆": "西北",
}

// Lookup resolves a region name to its climate profile. Resolution order:
// exact province name, then prefix/containment against known provinces
// (so "山东菏泽" resolves to the 山东 baseline), then the default profile.
func Lookup(region string) Profile {
	region = strings.TrimSpace(region)
	if region == "" {
		return defaultProfile
	}
	if p, ok := provinceProfiles[region]; ok {
		return p
	}
	for _, name := range provinceOrder {
		if strings.HasPrefix(region, name) || strings.Contains(region, name) {
			return provinceProfiles[name]
		}
	}
	return defaultProfile
}

// Province extracts the province component of a region name, or "" when no
// known province matches.
func Province(region string) string {
	region = strings.TrimSpace(region)
	if region == "" {
		return ""
	}
	if _, ok := provinceProfiles[region]; ok {
		return region
	}
	for _, name := range provinceOrder {
		if strings.HasPrefix(region, name) || strings.Contains(region, name) {
			return name
		}
	}
	return ""
}

// Zone returns the major geographic zone of a region, or "" when unresolved.
func Zone(region string) string {
	if prov := Province(region); prov != "" {
		return provinceZones[prov]
	}
	return ""
}

// SameZone reports whether two regions belong to the same major zone.
func SameZone(a, b string) bool {
	za, zb := Zone(a), Zone(b)
	return za != "" && za == zb
}

// LightSatisfied reports whether a region's light profile fully meets a
// product's stated need ("full", "partial" or "shade").
func LightSatisfied(regionLight, productNeed string) bool {
	switch productNeed {
	case "full":
		return regionLight == LightFull
	case "partial":
		return regionLight == LightFull || regionLight == LightModerate
	case "shade":
		return regionLight == LightLow
	}
	// Unknown need is treated as satisfied rather than penalized.
	return true
}

// LightCompatible reports whether a region's light profile can still serve a
// product's need it does not fully meet (an adjacent category).
func LightCompatible(regionLight, productNeed string) bool {
	switch productNeed {
	case "full":
		return regionLight == LightModerate
	case "partial":
		return regionLight == LightLow
	case "shade":
		return regionLight == LightModerate
	}
	return false
}

// DefaultProfile returns the fallback profile used for unresolvable regions.
func DefaultProfile() Profile {
	return defaultProfile
}
