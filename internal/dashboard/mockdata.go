// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dashboard

import (
	"math/rand"
	"time"
)

// mockSeed fixes the demo dataset so repeated runs render identical charts.
const mockSeed = 42

// DataPoint is one row of the demonstration time series shown on the charts
// and the explore page.
type DataPoint struct {
	Timestamp time.Time
	ValueA    float64
	ValueB    float64
	Category  string
}

// Dataset is the demonstration series. It is constructed once at startup and
// passed to the server; nothing mutates it afterwards.
type Dataset struct {
	Points []DataPoint
}

// NewMockDataset builds 100 daily points starting 2024-01-01: two cumulative
// random walks and a rotating category label, from a fixed seed.
func NewMockDataset() *Dataset {
	rng := rand.New(rand.NewSource(mockSeed))
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	categories := []string{"A", "B", "C"}

	points := make([]DataPoint, 100)
	a, b := 10.0, 5.0
	for i := range points {
		a += rng.NormFloat64()
		b += rng.NormFloat64()
		points[i] = DataPoint{
			Timestamp: start.AddDate(0, 0, i),
			ValueA:    a,
			ValueB:    b,
			Category:  categories[rng.Intn(len(categories))],
		}
	}
	return &Dataset{Points: points}
}

// Categories returns the distinct category labels in first-seen order.
func (d *Dataset) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, p := range d.Points {
		if !seen[p.Category] {
			seen[p.Category] = true
			cats = append(cats, p.Category)
		}
	}
	return cats
}

// FilterCategory returns the points matching the category, or all points for
// "All" or the empty string.
func (d *Dataset) FilterCategory(category string) []DataPoint {
	if category == "" || category == "All" {
		return d.Points
	}
	var filtered []DataPoint
	for _, p := range d.Points {
		if p.Category == category {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
