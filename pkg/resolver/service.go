package resolver

import (
	"fmt"
	"maps"
	"slices"

	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/events"
	"github.com/jwebster45206/turn-engine/pkg/state"
)

func (r *Resolver) resolveService(ws *state.WorldState, req *action.ServiceRequest) branchResult {
	loc, ok := ws.Locations[req.LocationID]
	if !ok {
		return notice(events.NoticeUnknownLocation,
			fmt.Sprintf("There is no place called %q here.", req.LocationID))
	}
	svc, ok := loc.Service(req.ServiceID)
	if !ok {
		return notice(events.NoticeUnknownService,
			fmt.Sprintf("%s doesn't offer that.", loc.Name))
	}
	if ws.Player.Money < svc.Price {
		return notice(events.NoticeInsufficientFunds,
			fmt.Sprintf("%s costs %.2f but you only have %.2f.", svc.Name, svc.Price, ws.Player.Money))
	}

	evs := []events.Event{
		events.MoneyChanged{Delta: negate(svc.Price), Reason: svc.Name},
	}
	if svc.GrantsItem != nil {
		item := svc.GrantsItem.Clone()
		if item.Quantity <= 0 {
			item.Quantity = 1
		}
		evs = append(evs, events.ItemAdded{Item: item})
	}
	return branchResult{events: evs}
}

func (r *Resolver) resolveItemUse(ws *state.WorldState, req *action.ItemUseRequest) branchResult {
	item, ok := ws.Player.Item(req.ItemID)
	if !ok || item.Quantity <= 0 {
		return notice(events.NoticeItemNotFound, "You don't have that item.")
	}

	evs := []events.Event{events.ItemUsed{ItemID: item.ID, Name: item.Name}}
	if !item.Consumable {
		return branchResult{events: evs}
	}

	evs = append(evs, events.ItemRemoved{ItemID: item.ID, Name: item.Name, Quantity: 1})
	for _, stat := range slices.Sorted(maps.Keys(item.Effects.Stats)) {
		evs = append(evs, events.StatChanged{
			Stat:   stat,
			Delta:  item.Effects.Stats[stat],
			Reason: item.Name,
		})
	}
	for _, need := range slices.Sorted(maps.Keys(item.Effects.Physiology)) {
		evs = append(evs, events.PhysiologyChanged{
			Need:   need,
			Delta:  item.Effects.Physiology[need],
			Reason: item.Name,
		})
	}
	return branchResult{events: evs}
}
