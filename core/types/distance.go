package types

// DistanceResult is a resolved driving distance from a delivery
// location to a branch
type DistanceResult struct {
	// Branch is the resolved origin branch
	Branch BranchLocation `json:"branch"`

	// DeliveryLocation is the destination as requested
	DeliveryLocation string `json:"delivery_location"`

	// DistanceMiles is the driving distance in miles
	DistanceMiles float64 `json:"distance_miles"`

	// DistanceMeters is the driving distance in meters
	DistanceMeters float64 `json:"distance_meters"`

	// DurationSeconds is the estimated drive time
	DurationSeconds float64 `json:"duration_seconds"`

	// WithinServiceArea reports state-list membership, computed
	// independently of distance
	WithinServiceArea bool `json:"within_service_area"`

	// Estimated marks straight-line fallback results
	Estimated bool `json:"estimated"`
}
