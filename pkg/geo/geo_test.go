package geo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDistanceKmOneDegreeLongitudeAtEquator(t *testing.T) {
	// One degree of longitude at the equator is about 111.19 km
	d := DistanceKm(0, 0, 0, 1)
	require.InDelta(t, 111.19, d, 0.5)
}

func TestDistanceKmZeroForSamePoint(t *testing.T) {
	require.Equal(t, 0.0, DistanceKm(12.9716, 77.5946, 12.9716, 77.5946))
}

func TestDistanceKmIsSymmetric(t *testing.T) {
	a := DistanceKm(28.6139, 77.2090, 19.0760, 72.8777)
	b := DistanceKm(19.0760, 72.8777, 28.6139, 77.2090)
	require.InDelta(t, a, b, 1e-9)

	// Delhi to Mumbai is roughly 1150 km great-circle
	require.InDelta(t, 1150, a, 20)
}
