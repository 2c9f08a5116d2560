package domain

import (
	"math"
	"sort"
)

// minBarWidth keeps single sightings visible next to a dominant hotspot.
const minBarWidth = 6

// Tally counts sightings per location and ranks the result by count
// descending, breaking ties by location code ascending.
func Tally(sightings []Sighting) []LocationTally {
	counts := make(map[string]int)
	for _, s := range sightings {
		counts[s.Location]++
	}

	items := make([]LocationTally, 0, len(counts))
	for location, count := range counts {
		items = append(items, LocationTally{Location: location, Count: count})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Location < items[j].Location
	})
	return items
}

// TopCount returns the largest count in a ranked tally, or 1 when it is empty.
func TopCount(tally []LocationTally) int {
	if len(tally) == 0 || tally[0].Count < 1 {
		return 1
	}
	return tally[0].Count
}

// BarWidth is the relative width, in percent, of a tally bar.
func BarWidth(count, top int) int {
	if top < 1 {
		top = 1
	}
	w := int(math.Round(float64(count) / float64(top) * 100))
	return max(minBarWidth, w)
}

// Summarize builds the ranked distribution for a set of sightings.
func Summarize(sightings []Sighting) Distribution {
	entries := Tally(sightings)
	return Distribution{
		Total:    len(sightings),
		TopCount: TopCount(entries),
		Entries:  entries,
	}
}
