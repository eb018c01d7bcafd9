package feature

import (
	"strconv"
	"time"

	"github.com/urbanmotion/tripflow/internal/model"
)

// deriveTemporalFeatures writes the six time-based features from the pickup
// timestamp. An unparsable timestamp yields the documented defaults.
func (p *Pipeline) deriveTemporalFeatures(trips []*model.Trip) {
	for _, trip := range trips {
		pickup, err := time.Parse(model.DatetimeLayout, trip.Get(model.FieldPickupDatetime))
		if err != nil {
			trip.Set(model.FieldPickupHour, "0")
			trip.Set(model.FieldTimeOfDay, "Unknown")
			trip.Set(model.FieldDayOfWeek, "Unknown")
			trip.Set(model.FieldIsWeekend, "False")
			trip.Set(model.FieldPickupMonth, "1")
			trip.Set(model.FieldIsRushHour, "False")
			continue
		}

		hour := pickup.Hour()
		trip.Set(model.FieldPickupHour, strconv.Itoa(hour))
		trip.Set(model.FieldTimeOfDay, timeOfDay(hour))

		day := pickup.Weekday()
		trip.Set(model.FieldDayOfWeek, day.String())

		weekend := day == time.Saturday || day == time.Sunday
		trip.Set(model.FieldIsWeekend, formatBool(weekend))

		trip.Set(model.FieldPickupMonth, strconv.Itoa(int(pickup.Month())))

		rush := !weekend && ((hour >= 7 && hour <= 9) || (hour >= 17 && hour <= 19))
		trip.Set(model.FieldIsRushHour, formatBool(rush))

		p.stats.TimeFeatures += 6
		p.stats.FeaturesCreated += 6
	}
}

func timeOfDay(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "Morning"
	case hour >= 12 && hour < 17:
		return "Afternoon"
	case hour >= 17 && hour < 21:
		return "Evening"
	default:
		return "Night"
	}
}

// formatBool matches the source data's True/False capitalization.
func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
