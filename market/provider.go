package market

import "hash/fnv"

// HashHealthProvider derives stable pseudo-figures from the zip code alone.
// It stands in for a real market data feed: values land in [0.6, 1.0), the
// band a healthy-to-hot feed reports, and never change for a given zip.
type HashHealthProvider struct{}

func (HashHealthProvider) Health(zipCode string) HealthSnapshot {
	return HealthSnapshot{
		HealthScore:              hashUnit(zipCode, "health")*0.4 + 0.6,
		SchoolDistrictRating:     hashUnit(zipCode, "schools")*0.4 + 0.6,
		NeighborhoodDesirability: hashUnit(zipCode, "neighborhood")*0.4 + 0.6,
	}
}

// hashUnit maps (zip, salt) onto [0, 1).
func hashUnit(zipCode, salt string) float64 {
	h := fnv.New32a()
	h.Write([]byte(zipCode))
	h.Write([]byte(salt))
	return float64(h.Sum32()%10000) / 10000
}
