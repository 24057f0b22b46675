// Package types provides core data types shared across landex pipelines.
package types

// RawRow is a single record returned by the land-allocation query against
// the model output database.
type RawRow struct {
	// Scenario names the model scenario the record belongs to
	Scenario string `json:"scenario"`

	// Region is the model's region name (e.g. "Brazil")
	Region string `json:"region"`

	// Category is the compound land-allocation category string
	// (e.g. "biomass_grass_AmazonBasin_IRR")
	Category string `json:"category"`

	// Year is the model output year
	Year int `json:"year"`

	// Units carries the allocation unit (e.g. "thous km2")
	Units string `json:"units"`

	// Value is the allocated amount
	Value float64 `json:"value"`
}
