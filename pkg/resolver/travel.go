package resolver

import (
	"fmt"
	"math"

	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/events"
	"github.com/jwebster45206/turn-engine/pkg/state"
)

const earthRadiusKm = 6371.0

// MetroFare is the flat price of a metro ride
const MetroFare = 1.90

// TravelQuote is the price of a trip in minutes, money and energy
type TravelQuote struct {
	Minutes int
	Cost    float64
	Energy  int
}

// Distance returns the great-circle distance between a and b in km
func Distance(a, b state.Position) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// TravelCost quotes a trip of d km by mode. ok is false for unknown modes.
func TravelCost(mode string, d float64) (q TravelQuote, ok bool) {
	switch mode {
	case action.ModeWalk:
		return TravelQuote{
			Minutes: round(12 * d),
			Energy:  round(5*d) + 1,
		}, true
	case action.ModeMetro:
		return TravelQuote{
			Minutes: round(4*d + 10),
			Cost:    MetroFare,
			Energy:  round(d) + 1,
		}, true
	case action.ModeTaxi:
		return TravelQuote{
			Minutes: round(2*d + 5),
			Cost:    round2(5 + 1.5*d),
			Energy:  round(0.5 * d),
		}, true
	}
	return TravelQuote{}, false
}

func (r *Resolver) resolveTravel(ws *state.WorldState, req *action.TravelRequest) branchResult {
	d := Distance(req.Origin.Position, req.Destination.Position)
	q, ok := TravelCost(req.Mode, d)
	if !ok {
		return notice(events.NoticeUnknownTravelMode,
			fmt.Sprintf("You can't travel by %q.", req.Mode))
	}

	p := ws.Player
	if p.Money < q.Cost {
		return notice(events.NoticeInsufficientFunds,
			fmt.Sprintf("The %s to %s costs %.2f but you only have %.2f.", req.Mode, req.Destination.Name, q.Cost, p.Money))
	}
	if p.Stat(state.StatEnergy) < float64(q.Energy) {
		return notice(events.NoticeInsufficientEnergy,
			fmt.Sprintf("You are too tired to reach %s by %s.", req.Destination.Name, req.Mode))
	}

	var evs []events.Event
	if q.Cost > 0 {
		evs = append(evs, events.MoneyChanged{Delta: -q.Cost, Reason: req.Mode + " fare"})
	}
	evs = append(evs,
		events.TravelExecuted{
			From:       req.Origin,
			To:         req.Destination,
			Mode:       req.Mode,
			DistanceKm: round2(d),
			Minutes:    q.Minutes,
			Cost:       q.Cost,
			Energy:     q.Energy,
		},
		events.StatChanged{Stat: state.StatEnergy, Delta: -float64(q.Energy), Reason: "travel"},
	)

	r.logger.Debug("Travel quoted",
		"mode", req.Mode,
		"distance_km", d,
		"minutes", q.Minutes,
		"cost", q.Cost,
		"energy", q.Energy)

	return branchResult{events: evs, minutes: q.Minutes, energy: q.Energy}
}

func round(v float64) int {
	return int(math.Round(v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
