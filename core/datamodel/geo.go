package datamodel

import (
	"math"

	"github.com/kilianp07/ridepool/core/model"
)

const earthRadius = 6371008.8 // meters

// Haversine returns the great-circle distance in meters between a and b.
func Haversine(a, b model.Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadius * math.Asin(math.Min(1, math.Sqrt(h)))
}

// GeodesicMatrix returns the pairwise distances of points.
func GeodesicMatrix(points []model.Point) [][]float64 {
	m := newSquare(len(points))
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			d := Haversine(points[i], points[j])
			m[i][j], m[j][i] = d, d
		}
	}
	return m
}

// SyntheticTimes converts a distance matrix to seconds at a constant speed.
func SyntheticTimes(dist [][]float64) [][]float64 {
	m := newSquare(len(dist))
	for i := range dist {
		for j := range dist[i] {
			m[i][j] = dist[i][j] / syntheticSpeed
		}
	}
	return m
}

func newSquare(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	return m
}

func copySquare(src [][]float64) [][]float64 {
	m := make([][]float64, len(src))
	for i := range src {
		m[i] = append([]float64(nil), src[i]...)
	}
	return m
}

func points(r model.Route) []model.Point {
	out := make([]model.Point, len(r))
	for i, s := range r {
		out[i] = s.Coordinates
	}
	return out
}

// zeroReturn clears column 0 of m.
func zeroReturn(m [][]float64) {
	for _, row := range m {
		if len(row) > 0 {
			row[0] = 0
		}
	}
}
