package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultAmapBaseURL = "https://restapi.amap.com/v3/geocode/regeo"

// AmapClient calls the Amap (高德) v3 reverse geocoding REST API.
type AmapClient struct {
	key     string
	baseURL string
	http    *http.Client
}

// NewAmapClient creates a client for the given Web 服务 API key.
func NewAmapClient(key string, timeout time.Duration) *AmapClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AmapClient{
		key:     key,
		baseURL: defaultAmapBaseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// flexString tolerates Amap's habit of encoding empty fields as "[]".
// Municipality responses carry an empty-array city, for example.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	*s = ""
	return nil
}

type regeoResponse struct {
	Status    string `json:"status"`
	Info      string `json:"info"`
	Infocode  string `json:"infocode"`
	Regeocode struct {
		AddressComponent struct {
			Province flexString `json:"province"`
			City     flexString `json:"city"`
			District flexString `json:"district"`
		} `json:"addressComponent"`
	} `json:"regeocode"`
}

// ReverseGeocode resolves a coordinate to raw (city, province) names. Amap
// takes the coordinate as "longitude,latitude".
func (c *AmapClient) ReverseGeocode(ctx context.Context, lat, lon float64) (string, string, error) {
	q := url.Values{}
	q.Set("key", c.key)
	q.Set("location", fmt.Sprintf("%.6f,%.6f", lon, lat))
	q.Set("extensions", "base")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to build regeo request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("regeo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("regeo request failed: status %d", resp.StatusCode)
	}

	var r regeoResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", "", fmt.Errorf("failed to decode regeo response: %w", err)
	}
	if r.Status != "1" {
		return "", "", fmt.Errorf("amap error: %s (%s)", r.Info, r.Infocode)
	}

	province := string(r.Regeocode.AddressComponent.Province)
	city := string(r.Regeocode.AddressComponent.City)
	if city == "" {
		// municipalities report no city of their own
		city = province
	}
	return city, province, nil
}
