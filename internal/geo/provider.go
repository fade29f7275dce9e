package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Provider performs the actual lookup for public addresses. Implementations
// must respect the context deadline; the resolver converts any error into a
// low-confidence unknown result.
type Provider interface {
	Lookup(ctx context.Context, ip string) (*Location, error)
}

// HTTPProvider queries an ip-api.com style JSON endpoint.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProvider creates a provider against the given base URL
// (e.g. "http://ip-api.com/json").
func NewHTTPProvider(baseURL string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type providerResponse struct {
	Status     string  `json:"status"`
	Country    string  `json:"country"`
	RegionName string  `json:"regionName"`
	City       string  `json:"city"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Timezone   string  `json:"timezone"`
	ISP        string  `json:"isp"`
	Org        string  `json:"org"`
	Proxy      bool    `json:"proxy"`
	Hosting    bool    `json:"hosting"`
}

// vpnKeywords flag ISPs that commonly front VPN or tunnel traffic. Heuristic;
// supplements the provider's own proxy/hosting flags.
var vpnKeywords = []string{"vpn", "proxy", "tunnel", "tor", "hosting", "datacenter", "cloud"}

func (p *HTTPProvider) Lookup(ctx context.Context, ip string) (*Location, error) {
	url := fmt.Sprintf("%s/%s?fields=status,country,regionName,city,lat,lon,timezone,isp,org,proxy,hosting", p.baseURL, ip)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build lookup request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geolocation lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geolocation provider returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}

	var pr providerResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}

	if pr.Status != "success" || pr.Country == "" {
		return nil, fmt.Errorf("geolocation provider could not resolve %s", ip)
	}

	loc := &Location{
		Country:    &pr.Country,
		IsVPN:      pr.Proxy || pr.Hosting || ispLooksLikeVPN(pr.ISP) || ispLooksLikeVPN(pr.Org),
		Confidence: ConfidenceGood,
	}
	if pr.RegionName != "" {
		loc.Region = &pr.RegionName
	}
	if pr.City != "" {
		loc.City = &pr.City
	}
	if pr.Lat != 0 || pr.Lon != 0 {
		lat, lon := pr.Lat, pr.Lon
		loc.Latitude = &lat
		loc.Longitude = &lon
	}
	if pr.Timezone != "" {
		loc.Timezone = &pr.Timezone
	}
	if pr.ISP != "" {
		loc.ISP = &pr.ISP
	}
	return loc, nil
}

func ispLooksLikeVPN(isp string) bool {
	lower := strings.ToLower(isp)
	for _, kw := range vpnKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
