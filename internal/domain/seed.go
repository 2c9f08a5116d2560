package domain

import "time"

// DemoSightings returns the sightings every new session starts with, newest
// first, timestamped relative to now.
func DemoSightings(now time.Time) []Sighting {
	return []Sighting{
		{
			ID:          "demo-1",
			Description: "Spotted tiny beetles near the vending machines.",
			Location:    "SCI",
			ImageSource: "https://images.unsplash.com/photo-1504518633247-6bf4c7c6f62c?auto=format&fit=crop&w=400&q=80",
			CreatedAt:   now.Add(-45 * time.Minute),
		},
		{
			ID:          "demo-2",
			Description: "Fruit flies hovering around the compost bin.",
			Location:    "CAF",
			ImageSource: "https://images.unsplash.com/photo-1586953208448-b95ef33822f8?auto=format&fit=crop&w=400&q=80",
			CreatedAt:   now.Add(-90 * time.Minute),
		},
		{
			ID:          "demo-3",
			Description: "Mosquito swarm close to the south pond.",
			Location:    "LAK",
			ImageSource: "https://images.unsplash.com/photo-1438109491414-7198515b166b?auto=format&fit=crop&w=400&q=80",
			CreatedAt:   now.Add(-150 * time.Minute),
		},
		{
			ID:          "demo-4",
			Description: "Silverfish under the sink on the third floor.",
			Location:    "SMN",
			ImageSource: "https://images.unsplash.com/photo-1559253664-ca249d4608c6?auto=format&fit=crop&w=400&q=80",
			CreatedAt:   now.Add(-5 * time.Hour),
		},
		{
			ID:          "demo-5",
			Description: "Ant trail along the lounge window sill.",
			Location:    "SMN",
			ImageSource: "https://images.unsplash.com/photo-1563387852576-964bc31b73af?auto=format&fit=crop&w=400&q=80",
			CreatedAt:   now.Add(-26 * time.Hour),
		},
		{
			ID:          "demo-6",
			Description: "Cockroach by the laundry room door.",
			Location:    "HGN",
			ImageSource: "https://images.unsplash.com/photo-1588776814546-1ffcf47267a5?auto=format&fit=crop&w=400&q=80",
			CreatedAt:   now.Add(-50 * time.Hour),
		},
	}
}
