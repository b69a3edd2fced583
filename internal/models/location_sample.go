package models

import (
	"github.com/golang/geo/s2"

	"github.com/citylight/citylight-go/pkg/response"
)

// LocationSample is one ingested GPS sample. Rows are append-only: this
// subsystem never mutates or deletes them.
type LocationSample struct {
	ID           int64    `json:"id" db:"id"`
	UserID       string   `json:"userId" db:"user_id"`
	Latitude     float64  `json:"latitude" db:"latitude"`
	Longitude    float64  `json:"longitude" db:"longitude"`
	TimestampMs  int64    `json:"timestamp" db:"timestamp_ms"` // client-supplied epoch millis
	Accuracy     *float64 `json:"accuracy,omitempty" db:"accuracy"`
	SpeedMps     *float64 `json:"speed,omitempty" db:"speed_mps"`
	HeadingDeg   *float64 `json:"heading,omitempty" db:"heading_deg"`
	CityName     string   `json:"cityName" db:"city_name"`
	ProvinceName string   `json:"provinceName" db:"province_name"`
	CreatedAt    string   `json:"createdAt,omitempty" db:"created_at"`
}

// LocationUpload is the POST /location request body. Coordinates and the
// timestamp are pointers so that "missing" and "zero" can be told apart.
type LocationUpload struct {
	Latitude     *float64 `json:"latitude" binding:"required"`
	Longitude    *float64 `json:"longitude" binding:"required"`
	Timestamp    *int64   `json:"timestamp" binding:"required"`
	Accuracy     *float64 `json:"accuracy"`
	Speed        *float64 `json:"speed"`
	Heading      *float64 `json:"heading"`
	CityName     string   `json:"cityName"`
	ProvinceName string   `json:"provinceName"`
}

// Validate checks the upload against the ingestion contract and returns one
// entry per invalid field.
func (u *LocationUpload) Validate() []response.FieldError {
	var errs []response.FieldError

	if !s2.LatLngFromDegrees(*u.Latitude, 0).IsValid() {
		errs = append(errs, response.FieldError{Field: "latitude", Message: "must be between -90 and 90"})
	}
	if !s2.LatLngFromDegrees(0, *u.Longitude).IsValid() {
		errs = append(errs, response.FieldError{Field: "longitude", Message: "must be between -180 and 180"})
	}
	if *u.Timestamp < 0 {
		errs = append(errs, response.FieldError{Field: "timestamp", Message: "must be a non-negative epoch millisecond value"})
	}
	if u.Accuracy != nil && *u.Accuracy < 0 {
		errs = append(errs, response.FieldError{Field: "accuracy", Message: "must be >= 0"})
	}
	if u.Speed != nil && *u.Speed < -1 {
		errs = append(errs, response.FieldError{Field: "speed", Message: "must be >= -1"})
	}
	if u.Heading != nil && *u.Heading < -1 {
		errs = append(errs, response.FieldError{Field: "heading", Message: "must be >= -1"})
	}

	return errs
}

// ToSample converts a validated upload into a storable sample. Speed and
// heading values of exactly -1 mean "unknown" on some client platforms and
// are normalized to absent before storage.
func (u *LocationUpload) ToSample(userID string) *LocationSample {
	s := &LocationSample{
		UserID:       userID,
		Latitude:     *u.Latitude,
		Longitude:    *u.Longitude,
		TimestampMs:  *u.Timestamp,
		Accuracy:     u.Accuracy,
		CityName:     u.CityName,
		ProvinceName: u.ProvinceName,
	}
	if u.Speed != nil && *u.Speed >= 0 {
		s.SpeedMps = u.Speed
	}
	if u.Heading != nil && *u.Heading >= 0 {
		s.HeadingDeg = u.Heading
	}
	return s
}
