package platform

import (
	"strings"

	"github.com/RodrigoFalk/LinkPulse/app/models"
)

// Platform pairs a shape predicate with the mapper that turns a matching
// payload into a NormalizedSale. Adding support for a new checkout platform
// means appending one entry to the registry; nothing else changes.
type Platform struct {
	ID        string
	Matches   func(obj map[string]interface{}) bool
	Normalize func(obj map[string]interface{}) *NormalizedSale
}

// registry is evaluated in priority order; the first matching shape wins.
func registry() []Platform {
	return []Platform{hotmart, kirvano, kiwify}
}

// UnwrapData replaces an array-valued "data" field with its first element.
// Some platforms batch-wrap a single sale in an array.
func UnwrapData(obj map[string]interface{}) map[string]interface{} {
	if arr := getSlice(obj, "data"); len(arr) > 0 {
		if first, ok := arr[0].(map[string]interface{}); ok {
			obj["data"] = first
		}
	}
	return obj
}

// Detect classifies the payload's source platform. A platform declared on
// the webhook at creation time always wins; the shape heuristic only runs
// for webhooks created as "auto".
func Detect(obj map[string]interface{}, declared string) string {
	if declared != "" && declared != models.PlatformAuto {
		return declared
	}

	// Event string prefixes are the cheapest signal.
	event := strings.ToUpper(firstString(obj, "event", "webhook_event_type"))
	switch {
	case strings.HasPrefix(event, "PURCHASE_"):
		return models.PlatformHotmart
	case strings.HasPrefix(event, "SALE_"):
		return models.PlatformKirvano
	case strings.HasPrefix(event, "ORDER_"):
		return models.PlatformKiwify
	}

	for _, p := range registry() {
		if p.Matches(obj) {
			return p.ID
		}
	}
	return models.PlatformUnknown
}

// Normalize maps the payload into a NormalizedSale by probing each
// registered shape. Matching runs on shape presence, not on the detected
// label, so a mislabeled webhook still normalizes correctly as long as the
// JSON is recognizable. Returns false when no shape matches; that is not an
// error, the caller logs the payload as ignored.
func Normalize(obj map[string]interface{}) (*NormalizedSale, string, bool) {
	for _, p := range registry() {
		if !p.Matches(obj) {
			continue
		}
		sale := p.Normalize(obj)
		if sale == nil {
			continue
		}
		if sale.Currency == "" {
			sale.Currency = "BRL"
		}
		extractTracking(obj, sale)
		sale.Truncate()
		return sale, p.ID, true
	}
	return nil, models.PlatformUnknown, false
}

// utmLocations returns the ordered list of payload locations probed for
// tracking parameters.
func utmLocations(obj map[string]interface{}) []map[string]interface{} {
	data := getMap(obj, "data")
	return []map[string]interface{}{
		obj,
		data,
		getMap(data, "purchase"),
		getMap(data, "checkout"),
		getMap(obj, "TrackingParameters"),
	}
}

// extractTracking fills the UTM block, the direct click id and the fallback
// utm_term carrier.
//
// UTM fields come from the first location that has a non-empty source
// anchor, and only from that location: mixing levels would stitch together
// attribution fields from unrelated parts of the payload.
//
// The click id is deliberately a separate extraction. Only click_id and sck
// count as a direct click id; utm_term never does, but it is captured
// separately because the redirect handler duplicates the click id into
// utm_term for platforms that strip custom parameters while passing
// standard UTM parameters through.
func extractTracking(obj map[string]interface{}, sale *NormalizedSale) {
	locations := utmLocations(obj)

	for _, loc := range locations {
		if loc == nil {
			continue
		}
		source := firstString(loc, "utm_source", "utmSource", "src")
		if source == "" {
			continue
		}
		sale.UTMSource = source
		sale.UTMMedium = firstString(loc, "utm_medium", "utmMedium")
		sale.UTMCampaign = firstString(loc, "utm_campaign", "utmCampaign")
		sale.UTMContent = firstString(loc, "utm_content", "utmContent")
		sale.UTMTerm = firstString(loc, "utm_term", "utmTerm")
		break
	}

	data := getMap(obj, "data")
	clickLocations := append(locations, getMap(getMap(data, "purchase"), "origin"))
	for _, loc := range clickLocations {
		if loc == nil {
			continue
		}
		if id := firstString(loc, "click_id", "sck"); id != "" {
			sale.ClickID = id
			break
		}
	}

	for _, loc := range locations {
		if loc == nil {
			continue
		}
		if term := firstString(loc, "utm_term", "utmTerm"); term != "" {
			sale.FallbackTerm = term
			break
		}
	}
}
