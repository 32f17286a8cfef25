package dispatch

import (
	"sort"

	"github.com/kilianp07/ridepool/core/datamodel"
	"github.com/kilianp07/ridepool/core/model"
)

// Default seat counts of vehicles without fleet data.
var (
	defaultCapacity        = model.Capacity{Passengers: 5}
	defaultADACapacity     = model.Capacity{Passengers: 3, ADA: 1}
	defaultRefreshCapacity = model.Capacity{Passengers: 2, ADA: 1}
)

// Eligible keeps the drivers of drivers that may serve req in loc and
// returns them sorted by distance to the pickup. Capacity and pickup
// distance are resolved on the returned copies.
func Eligible(drivers []model.Driver, req model.Request, loc model.LocationConfig) []model.Driver {
	if req.IsADA && !loc.IsADA {
		return nil
	}
	out := make([]model.Driver, 0, len(drivers))
	for _, d := range drivers {
		if !d.Available || d.LocationID != req.LocationID {
			continue
		}
		if d.ActiveRidesCount() >= DefaultMaxActiveRides {
			continue
		}
		var c model.Capacity
		if loc.FleetEnabled {
			if d.Vehicle == nil || !d.Vehicle.Accepts(req.IsADA) {
				continue
			}
			c = model.Capacity{Passengers: d.Vehicle.PassengerCapacity, ADA: d.Vehicle.ADACapacity}
		} else {
			if d.IsADA != req.IsADA {
				continue
			}
			c = defaultCapacity
			if req.IsADA {
				c = defaultADACapacity
			}
		}
		if pax, ada := req.Seats(); pax > c.Passengers || ada > c.ADA {
			continue
		}
		c.HailedPassengers, c.HailedADA = model.HailedCapacity(d.ActiveRides)
		d.Capacity = c
		d.PickupDistance = datamodel.Haversine(d.Position, req.Pickup)
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PickupDistance < out[j].PickupDistance })
	return out
}

// VehicleCapacity resolves the seats of a driver for a route refresh.
func VehicleCapacity(d model.Driver) model.Capacity {
	var c model.Capacity
	switch {
	case d.Vehicle != nil:
		c = model.Capacity{Passengers: d.Vehicle.PassengerCapacity, ADA: d.Vehicle.ADACapacity}
	case d.IsADA:
		c = defaultRefreshCapacity
	default:
		c = defaultCapacity
	}
	c.HailedPassengers, c.HailedADA = model.HailedCapacity(d.ActiveRides)
	return c
}

// underCeilings drops drivers with too many active rides or pending stops.
func underCeilings(drivers []model.Driver, cfg Config) []model.Driver {
	out := drivers[:0:0]
	for _, d := range drivers {
		if d.ActiveRidesCount() < cfg.MaxActiveRides && d.WaitingStops() <= cfg.MaxWaitingStops {
			out = append(out, d)
		}
	}
	return out
}

// Buckets splits drivers into the call order of a fleet location:
// locked vehicles covering both zones, priority or exclusive vehicles of
// the origin zone, then of the destination zone, shared vehicles and
// finally priority vehicles outside both zones. Other drivers are dropped.
func Buckets(drivers []model.Driver, req model.Request) [][]model.Driver {
	buckets := make([][]model.Driver, 5)
	for _, d := range drivers {
		v := d.Vehicle
		if v == nil {
			continue
		}
		switch {
		case v.MatchingRule == model.RuleLocked && v.InZone(req.PickupZone) && v.InZone(req.DropoffZone):
			buckets[0] = append(buckets[0], d)
		case (v.MatchingRule == model.RulePriority || v.MatchingRule == model.RuleExclusive) && v.InZone(req.PickupZone):
			buckets[1] = append(buckets[1], d)
		case (v.MatchingRule == model.RulePriority || v.MatchingRule == model.RuleExclusive) && v.InZone(req.DropoffZone):
			buckets[2] = append(buckets[2], d)
		case v.MatchingRule == model.RuleShared:
			buckets[3] = append(buckets[3], d)
		case v.MatchingRule == model.RulePriority:
			buckets[4] = append(buckets[4], d)
		}
	}
	return buckets
}

// shortlist applies the limit sort and the initial driver limit.
func shortlist(drivers []model.Driver, s model.Settings) []model.Driver {
	out := append([]model.Driver(nil), drivers...)
	if s.DriverLimitSort == model.SortIdle {
		sort.SliceStable(out, func(i, j int) bool { return out[i].ActiveRidesCount() < out[j].ActiveRidesCount() })
	}
	return out[:model.Limit(len(out), s.InitialDriverLimit)]
}

func driverIDs(drivers []model.Driver) []string {
	ids := make([]string, len(drivers))
	for i, d := range drivers {
		ids[i] = d.ID
	}
	return ids
}
