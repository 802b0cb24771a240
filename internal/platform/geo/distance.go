package geo

import "math"

const earthRadiusKm = 6371.0

// Point es una coordenada WGS84.
type Point struct {
	Lat float64
	Lng float64
}

// Valid indica si la coordenada está dentro de rango y no es (0,0).
func (p Point) Valid() bool {
	if p.Lat == 0 && p.Lng == 0 {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// DistanceKm calcula la distancia haversine entre dos puntos.
func DistanceKm(a, b Point) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// BoundingBox devuelve el rectángulo que contiene el círculo (center, radiusKm).
// Se usa como prefiltro en SQL antes de calcular la distancia exacta.
func BoundingBox(center Point, radiusKm float64) (minLat, maxLat, minLng, maxLng float64) {
	dLat := radiusKm / earthRadiusKm * 180 / math.Pi
	cos := math.Cos(center.Lat * math.Pi / 180)
	if cos < 1e-6 {
		cos = 1e-6
	}
	dLng := dLat / cos
	return center.Lat - dLat, center.Lat + dLat, center.Lng - dLng, center.Lng + dLng
}
