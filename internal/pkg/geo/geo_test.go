//go:build unit

package geo_test

import (
	"math"
	"testing"

	"payments-service/internal/pkg/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceKm(t *testing.T) {
	t.Run("known city pair", func(t *testing.T) {
		// Buenos Aires <-> Montevideo, roughly 205 km apart.
		buenosAires := geo.Point{Longitude: -58.3816, Latitude: -34.6037}
		montevideo := geo.Point{Longitude: -56.1645, Latitude: -34.9011}

		d, err := geo.DistanceKm(buenosAires, montevideo)
		require.NoError(t, err)
		assert.InDelta(t, 205, d, 5)
	})

	t.Run("zero distance for identical points", func(t *testing.T) {
		p := geo.Point{Longitude: 10, Latitude: 20}
		d, err := geo.DistanceKm(p, p)
		require.NoError(t, err)
		assert.Zero(t, d)
	})

	t.Run("symmetric", func(t *testing.T) {
		a := geo.Point{Longitude: 2.3522, Latitude: 48.8566}
		b := geo.Point{Longitude: -0.1276, Latitude: 51.5072}

		ab, err := geo.DistanceKm(a, b)
		require.NoError(t, err)
		ba, err := geo.DistanceKm(b, a)
		require.NoError(t, err)
		assert.InDelta(t, ab, ba, 1e-9)
	})

	t.Run("one degree of latitude at the equator", func(t *testing.T) {
		a := geo.Point{Longitude: 0, Latitude: 0}
		b := geo.Point{Longitude: 0, Latitude: 1}

		d, err := geo.DistanceKm(a, b)
		require.NoError(t, err)
		assert.InDelta(t, 111.2, d, 0.5)
	})
}

func TestPointValidate(t *testing.T) {
	testCases := []struct {
		name      string
		longitude float64
		latitude  float64
		wantErr   bool
	}{
		{name: "valid point", longitude: -58.4, latitude: -34.6},
		{name: "boundary values", longitude: 180, latitude: -90},
		{name: "latitude above range", longitude: 0, latitude: 90.01, wantErr: true},
		{name: "latitude below range", longitude: 0, latitude: -91, wantErr: true},
		{name: "longitude above range", longitude: 180.5, latitude: 0, wantErr: true},
		{name: "longitude below range", longitude: -181, latitude: 0, wantErr: true},
		{name: "NaN latitude", longitude: 0, latitude: math.NaN(), wantErr: true},
		{name: "infinite longitude", longitude: math.Inf(1), latitude: 0, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := geo.NewPoint(tc.longitude, tc.latitude)
			if tc.wantErr {
				require.ErrorIs(t, err, geo.ErrInvalidCoordinate)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
