package mapbox

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeocodeFound(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[{"place_name":"Hastings Community Centre, Vancouver","center":[-123.0406,49.2808],"relevance":0.97}]}`))
	}))
	defer srv.Close()

	c := New("pk.test", srv.Client())
	c.BaseURL = srv.URL
	pt, ok, err := c.Geocode(context.Background(), "Hastings Community Centre", orb.Point{-123.1, 49.25})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, orb.Point{-123.0406, 49.2808}, pt)

	require.NotNil(t, got)
	assert.Equal(t, "/Hastings Community Centre.json", got.URL.Path)
	assert.Equal(t, "pk.test", got.URL.Query().Get("access_token"))
	assert.Equal(t, "1", got.URL.Query().Get("limit"))
	assert.Equal(t, "-123.100000,49.250000", got.URL.Query().Get("proximity"))
}

func TestGeocodeNoFeature(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("proximity"))
		_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[]}`))
	}))
	defer srv.Close()

	c := New("pk.test", srv.Client())
	c.BaseURL = srv.URL
	_, ok, err := c.Geocode(context.Background(), "Nowhere", orb.Point{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGeocodeErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "bad") {
			_, _ = w.Write([]byte(`not json`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Not Authorized - Invalid Token"}`))
	}))
	defer srv.Close()

	c := New("pk.bad", srv.Client())
	c.BaseURL = srv.URL
	_, _, err := c.Geocode(context.Background(), "Britannia", orb.Point{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid Token")

	_, _, err = c.Geocode(context.Background(), "bad", orb.Point{})
	require.Error(t, err)

	_, _, err = New("", nil).Geocode(context.Background(), "x", orb.Point{})
	require.ErrorIs(t, err, ErrMissingToken)
}
