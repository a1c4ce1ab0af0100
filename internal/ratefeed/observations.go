package ratefeed

import (
	"strconv"
	"time"

	"ratecompare/internal/domain"
)

// ToObservations converts store payloads into observation store rows
// for persistence. Price points whose date does not parse are dropped;
// everything else is kept raw, including priceless points.
func ToObservations(payloads []StorePayload) []*domain.RateObservation {
	var obs []*domain.RateObservation
	for _, store := range payloads {
		storeID := strconv.Itoa(store.StoreID)
		for _, unit := range store.UnitTypes {
			flags := featureFlags(unit.Feature)
			for _, p := range unit.Prices {
				date, err := time.Parse("2006-01-02", p.Date)
				if err != nil {
					continue
				}
				obs = append(obs, &domain.RateObservation{
					StoreID:       storeID,
					SpaceType:     unit.Type,
					Size:          unit.Size,
					RegularRate:   p.Regular,
					OnlineRate:    p.Online,
					Promo:         p.Promo,
					DateCollected: date,

					ClimateControlled:  flags.climate,
					HumidityControlled: flags.humidity,
					DriveUp:            flags.driveUp,
					Elevator:           flags.elevator,
					OutdoorAccess:      flags.outdoor,
				})
			}
		}
	}
	return obs
}
