package models

// CityVisit is the per-(user, city, province) aggregate maintained by the
// visit upsert. City and province names are stored in canonical form.
//
// visit_count and total_stay_hours only ever grow, and is_lighted makes a
// one-way false→true transition.
type CityVisit struct {
	ID             int64   `json:"id" db:"id"`
	UserID         string  `json:"userId" db:"user_id"`
	CityName       string  `json:"cityName" db:"city_name"`
	ProvinceName   string  `json:"provinceName" db:"province_name"`
	FirstVisitDate string  `json:"firstVisitDate" db:"first_visit_date"` // RFC3339 UTC
	LastVisitDate  string  `json:"lastVisitDate" db:"last_visit_date"`   // RFC3339 UTC
	VisitCount     int     `json:"visitCount" db:"visit_count"`
	TotalStayHours float64 `json:"totalStayHours" db:"total_stay_hours"`
	IsLighted      bool    `json:"isLighted" db:"is_lighted"`
	Latitude       float64 `json:"latitude" db:"latitude"`   // last-known coordinate
	Longitude      float64 `json:"longitude" db:"longitude"` // last-known coordinate
}
