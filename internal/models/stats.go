package models

// VisitStats is the GET /stats payload.
type VisitStats struct {
	TotalCities    int     `json:"totalCities"`
	TotalProvinces int     `json:"totalProvinces"`
	TotalDistance  float64 `json:"totalDistance"` // route distance is not computed, always 0
	TrackingDays   int     `json:"trackingDays"`
}
