package distance

import (
	"context"
	"math"

	"rental-quote/core/types"
	"rental-quote/internal/errors"
)

const (
	earthRadiusMeters = 6371000.0
	metersPerMile     = 1609.344
)

// Hub is the fixed fallback origin for straight-line estimates
type Hub struct {
	Name    string
	Address string
	Lat     float64
	Lon     float64
}

// EstimateStraightLine produces a geodesic fallback result against the
// hub coordinates with an average-speed drive time. The result is
// always marked estimated and is never cached.
func (r *Resolver) EstimateStraightLine(ctx context.Context, deliveryLocation string) (*types.DistanceResult, error) {
	for _, variation := range AddressVariations(deliveryLocation) {
		coords, err := r.provider.Geocode(ctx, variation)
		if err != nil {
			r.reportError(errors.Provider("geocode failed for variation", err).
				WithContext("variation", variation))
			continue
		}

		meters := haversineMeters(coords.Lat, coords.Lon, r.opts.Hub.Lat, r.opts.Hub.Lon)
		miles := meters / metersPerMile

		speed := r.opts.AverageSpeedMPH
		if speed <= 0 {
			speed = 45
		}

		return &types.DistanceResult{
			Branch: types.BranchLocation{
				Name:    r.opts.Hub.Name,
				Address: r.opts.Hub.Address,
			},
			DeliveryLocation:  deliveryLocation,
			DistanceMiles:     miles,
			DistanceMeters:    meters,
			DurationSeconds:   miles / speed * 3600,
			WithinServiceArea: r.serviceArea.Contains(deliveryLocation),
			Estimated:         true,
		}, nil
	}
	return nil, errors.LocationUnresolved(deliveryLocation)
}

// haversineMeters returns the great-circle distance in meters
func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180.0 }
	dlat := rad(lat2 - lat1)
	dlon := rad(lon2 - lon1)
	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}
