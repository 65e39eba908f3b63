package exporter

import "github.com/ogdrb/ogdrb/internal/repeaterbook"

// dedup consolidates overlapping zone results by directory identity. A
// repeater retrieved by several zones lands once in the global record list
// (first-appearance order: zone request order, then in-zone order) and is
// referenced by every zone that retrieved it. Matching is identity equality
// on the directory key, never geographic proximity.
func dedup(byZone []ZoneResult) ([]repeaterbook.Repeater, [][]repeaterbook.Key) {
	var global []repeaterbook.Repeater
	seen := make(map[repeaterbook.Key]bool)

	zoneKeys := make([][]repeaterbook.Key, len(byZone))
	for i := range byZone {
		inZone := make(map[repeaterbook.Key]bool)
		keys := make([]repeaterbook.Key, 0, len(byZone[i].Repeaters))
		for _, r := range byZone[i].Repeaters {
			key := r.Key()
			if inZone[key] {
				continue
			}
			inZone[key] = true
			keys = append(keys, key)
			if !seen[key] {
				seen[key] = true
				global = append(global, r)
			}
		}
		zoneKeys[i] = keys
	}
	return global, zoneKeys
}
