package feature

import (
	"strconv"

	"github.com/urbanmotion/tripflow/internal/algo"
	"github.com/urbanmotion/tripflow/internal/model"
)

// boroughCenter is one reference point for nearest-zone classification. The
// slice order breaks distance ties in favor of earlier entries.
type boroughCenter struct {
	name string
	lat  float64
	lon  float64
}

var boroughCenters = []boroughCenter{
	{"Manhattan", 40.7831, -73.9712},
	{"Brooklyn", 40.6782, -73.9442},
	{"Queens", 40.7282, -73.7949},
	{"Bronx", 40.8448, -73.8648},
	{"Staten Island", 40.5795, -74.1502},
}

// classifyZones assigns the nearest borough to each endpoint and derives the
// Intra-/Inter-borough trip type. Unparsable coordinates yield "Unknown".
func (p *Pipeline) classifyZones(trips []*model.Trip) {
	for _, trip := range trips {
		pickupLat, err1 := strconv.ParseFloat(trip.Get(model.FieldPickupLatitude), 64)
		pickupLon, err2 := strconv.ParseFloat(trip.Get(model.FieldPickupLongitude), 64)
		dropoffLat, err3 := strconv.ParseFloat(trip.Get(model.FieldDropoffLatitude), 64)
		dropoffLon, err4 := strconv.ParseFloat(trip.Get(model.FieldDropoffLongitude), 64)

		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			trip.Set(model.FieldPickupBorough, "Unknown")
			trip.Set(model.FieldDropoffBorough, "Unknown")
			trip.Set(model.FieldTripType, "Unknown")
			continue
		}

		pickupBorough := closestBorough(pickupLat, pickupLon)
		dropoffBorough := closestBorough(dropoffLat, dropoffLon)
		trip.Set(model.FieldPickupBorough, pickupBorough)
		trip.Set(model.FieldDropoffBorough, dropoffBorough)

		if pickupBorough == dropoffBorough {
			trip.Set(model.FieldTripType, "Intra-borough")
		} else {
			trip.Set(model.FieldTripType, "Inter-borough")
		}

		p.stats.FeaturesCreated += 3
	}
}

func closestBorough(lat, lon float64) string {
	closest := boroughCenters[0].name
	minDistance := algo.HaversineKm(lat, lon, boroughCenters[0].lat, boroughCenters[0].lon)

	for _, center := range boroughCenters[1:] {
		if d := algo.HaversineKm(lat, lon, center.lat, center.lon); d < minDistance {
			minDistance = d
			closest = center.name
		}
	}
	return closest
}
