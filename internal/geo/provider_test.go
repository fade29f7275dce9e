package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newProviderServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestHTTPProvider_Lookup(t *testing.T) {
	server := newProviderServer(t, `{
		"status": "success",
		"country": "Germany",
		"regionName": "Hesse",
		"city": "Frankfurt am Main",
		"lat": 50.1109,
		"lon": 8.6821,
		"timezone": "Europe/Berlin",
		"isp": "Deutsche Telekom AG",
		"proxy": false,
		"hosting": false
	}`, http.StatusOK)

	provider := NewHTTPProvider(server.URL, time.Second)
	loc, err := provider.Lookup(context.Background(), "93.184.216.34")

	assert.NoError(t, err)
	assert.Equal(t, "Germany", *loc.Country)
	assert.Equal(t, "Hesse", *loc.Region)
	assert.Equal(t, "Frankfurt am Main", *loc.City)
	assert.InDelta(t, 50.1109, *loc.Latitude, 1e-6)
	assert.Equal(t, "Europe/Berlin", *loc.Timezone)
	assert.False(t, loc.IsVPN)
	assert.Equal(t, ConfidenceGood, loc.Confidence)
}

func TestHTTPProvider_ProxyFlagMarksVPN(t *testing.T) {
	server := newProviderServer(t, `{"status":"success","country":"Netherlands","proxy":true}`, http.StatusOK)

	provider := NewHTTPProvider(server.URL, time.Second)
	loc, err := provider.Lookup(context.Background(), "185.65.134.1")

	assert.NoError(t, err)
	assert.True(t, loc.IsVPN)
}

func TestHTTPProvider_ISPKeywordMarksVPN(t *testing.T) {
	tests := []struct {
		isp string
		vpn bool
	}{
		{"NordVPN S.A.", true},
		{"M247 Datacenter", true},
		{"Amazon Cloud Services", true},
		{"Comcast Cable", false},
	}

	for _, tt := range tests {
		server := newProviderServer(t, `{"status":"success","country":"US","isp":"`+tt.isp+`"}`, http.StatusOK)
		provider := NewHTTPProvider(server.URL, time.Second)

		loc, err := provider.Lookup(context.Background(), "1.2.3.4")
		assert.NoError(t, err)
		assert.Equal(t, tt.vpn, loc.IsVPN, "isp %q", tt.isp)
	}
}

func TestHTTPProvider_FailedStatus(t *testing.T) {
	server := newProviderServer(t, `{"status":"fail","message":"reserved range"}`, http.StatusOK)

	provider := NewHTTPProvider(server.URL, time.Second)
	_, err := provider.Lookup(context.Background(), "240.0.0.1")

	assert.Error(t, err)
}

func TestHTTPProvider_Non200(t *testing.T) {
	server := newProviderServer(t, `rate limited`, http.StatusTooManyRequests)

	provider := NewHTTPProvider(server.URL, time.Second)
	_, err := provider.Lookup(context.Background(), "8.8.8.8")

	assert.Error(t, err)
}

func TestHTTPProvider_MalformedJSON(t *testing.T) {
	server := newProviderServer(t, `{not json`, http.StatusOK)

	provider := NewHTTPProvider(server.URL, time.Second)
	_, err := provider.Lookup(context.Background(), "8.8.8.8")

	assert.Error(t, err)
}

func TestHTTPProvider_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(server.Close)

	provider := NewHTTPProvider(server.URL, 10*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := provider.Lookup(ctx, "8.8.8.8")
	assert.Error(t, err)
}
