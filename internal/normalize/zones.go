package normalize

import (
	"encoding/json"
	"strings"
)

// zoneNames maps canonical PPF zone identifiers to their display names.
var zoneNames = map[string]string{
	"full_body":     "Véhicule complet",
	"full_front":    "Avant complet",
	"hood":          "Capot",
	"roof":          "Toit",
	"trunk":         "Coffre",
	"bumper_front":  "Pare-chocs avant",
	"bumper_rear":   "Pare-chocs arrière",
	"fenders":       "Ailes avant",
	"mirrors":       "Rétroviseurs",
	"headlights":    "Phares",
	"rocker_panels": "Bas de caisse",
	"door_edges":    "Seuils de porte",
	"door_cups":     "Coques de poignées",
	"pillars":       "Montants",
}

// zoneAliases maps zone identifiers from retired backend versions to
// their canonical replacements.
var zoneAliases = map[string]string{
	"complete":         "full_body",
	"front_pack":       "full_front",
	"capot":            "hood",
	"pare_choc_avant":  "bumper_front",
	"pare_choc_arriere": "bumper_rear",
	"retros":           "mirrors",
}

// ZoneName returns the display name for a canonical zone identifier.
// Unknown identifiers come back unchanged so a new backend zone still
// renders something.
func ZoneName(id string) string {
	if name, ok := zoneNames[id]; ok {
		return name
	}
	return id
}

// decodeZones extracts the canonical zone identifier list from the raw
// ppf_zones field. Legacy rows encode the selection three ways: a JSON
// array, a JSON string containing an encoded array, or a comma-joined
// string.
func decodeZones(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err == nil {
		return canonicalZoneIDs(ids)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	// A JSON string may itself hold an encoded array.
	if strings.HasPrefix(s, "[") {
		if err := json.Unmarshal([]byte(s), &ids); err == nil {
			return canonicalZoneIDs(ids)
		}
	}

	return canonicalZoneIDs(strings.Split(s, ","))
}

// canonicalZoneIDs trims, lowercases, de-aliases, and de-duplicates zone
// identifiers while preserving their order.
func canonicalZoneIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))

	for _, id := range ids {
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "" {
			continue
		}
		if canonical, ok := zoneAliases[id]; ok {
			id = canonical
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
