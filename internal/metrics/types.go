// Package metrics derives coupling, cohesion, and information-flow
// complexity from the aggregated call graph.
package metrics

// Coupling levels by cross-call count.
const (
	LevelTight = "tight"
	LevelLoose = "loose"
)

// Cohesion and flow rating bands.
const (
	RatingHigh     = "High"
	RatingMedium   = "Medium"
	RatingLow      = "Low"
	RatingNone     = "None"
	RatingVeryHigh = "Very High"
)

// CouplingPair is one coupled pair of modules or functional groups.
// Read-only once emitted.
type CouplingPair struct {
	A     string `json:"a"`
	B     string `json:"b"`
	Calls int    `json:"calls"`
	Level string `json:"level"`
}

// CohesionScore is the cohesion of one module. Read-only once emitted.
type CohesionScore struct {
	Module string  `json:"module"`
	Score  float64 `json:"score"`
	Rating string  `json:"rating"`
	Reason string  `json:"reason,omitempty"`
}

// IFCEntry is the information-flow complexity of one function.
// Read-only once emitted.
type IFCEntry struct {
	Path     string `json:"path"`
	Function string `json:"function"`
	Line     int    `json:"line"`
	FanIn    int    `json:"fanIn"`
	FanOut   int    `json:"fanOut"`
	Score    int    `json:"score"`
	Rating   string `json:"rating"`
}
