// Package normalizer canonicalizes Chinese administrative place names so that
// every spelling of the same place maps onto a single city_visits row
// ("四川" and "四川省" must not split one province into two).
//
// Both functions are total: they never fail, and blank input maps to the
// unknown-place sentinels. Both are idempotent.
package normalizer

import "strings"

// Sentinels used when a coordinate cannot be resolved to a place. The
// normalizers treat them as fixed points.
const (
	UnknownCity     = "未知城市"
	UnknownProvince = "未知省份"
)

// citySuffixes are the administrative suffixes a city-level name may already
// carry. A name ending in one of these is returned unchanged.
var citySuffixes = []string{"市", "区", "县", "州", "盟", "旗"}

// municipalities are the province-level municipalities, kept as-is with no
// suffix. Both the bare and the 市-suffixed spellings are accepted.
var municipalities = map[string]bool{
	"北京": true, "北京市": true,
	"上海": true, "上海市": true,
	"天津": true, "天津市": true,
	"重庆": true, "重庆市": true,
}

// specialAdminRegions get the 特别行政区 suffix appended.
var specialAdminRegions = map[string]bool{
	"香港": true,
	"澳门": true,
}

// NormalizeCity returns the canonical form of a raw city name.
func NormalizeCity(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return UnknownCity
	}
	for _, suffix := range citySuffixes {
		if strings.HasSuffix(name, suffix) {
			return name
		}
	}
	return name + "市"
}

// NormalizeProvince returns the canonical form of a raw province name.
func NormalizeProvince(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" || name == UnknownProvince {
		return UnknownProvince
	}
	if municipalities[name] {
		return name
	}
	if specialAdminRegions[name] {
		return name + "特别行政区"
	}
	if strings.HasSuffix(name, "自治区") ||
		strings.HasSuffix(name, "特别行政区") ||
		strings.HasSuffix(name, "省") {
		return name
	}
	return name + "省"
}
