package events

import (
	"encoding/json"
	"fmt"
)

// Envelope is the wire form of an event
type Envelope struct {
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

var decoders = map[Kind]func(json.RawMessage) (Event, error){
	KindJournalEntry:       decodeAs[JournalEntry],
	KindStatChanged:        decodeAs[StatChanged],
	KindPhysiologyChanged:  decodeAs[PhysiologyChanged],
	KindMoneyChanged:       decodeAs[MoneyChanged],
	KindItemAdded:          decodeAs[ItemAdded],
	KindItemRemoved:        decodeAs[ItemRemoved],
	KindItemUsed:           decodeAs[ItemUsed],
	KindDynamicItemCreated: decodeAs[DynamicItemCreated],
	KindSkillCheckResolved: decodeAs[SkillCheckResolved],
	KindMomentumUpdated:    decodeAs[MomentumUpdated],
	KindSkillXPAwarded:     decodeAs[SkillXPAwarded],
	KindPlayerXPGained:     decodeAs[PlayerXPGained],
	KindItemXPGained:       decodeAs[ItemXPGained],
	KindTravelExecuted:     decodeAs[TravelExecuted],
	KindCombatAction:       decodeAs[CombatAction],
	KindCombatEnded:        decodeAs[CombatEnded],
	KindTextNotice:         decodeAs[TextNotice],
	KindTimeProgressed:     decodeAs[TimeProgressed],
}

func decodeAs[T Event](raw json.RawMessage) (Event, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Marshal encodes one event as an envelope
func Marshal(ev Event) ([]byte, error) {
	if ev == nil {
		return nil, fmt.Errorf("cannot marshal nil event")
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", ev.Kind(), err)
	}
	return json.Marshal(Envelope{Kind: ev.Kind(), Payload: payload})
}

// Unmarshal decodes one envelope
func Unmarshal(data []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event envelope: %w", err)
	}
	return env.Decode()
}

// Decode returns the typed event carried by the envelope
func (env Envelope) Decode() (Event, error) {
	dec, ok := decoders[env.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown event kind %q", env.Kind)
	}
	ev, err := dec(env.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", env.Kind, err)
	}
	return ev, nil
}

// MarshalList encodes events as a JSON array of envelopes, preserving order
func MarshalList(evs []Event) ([]byte, error) {
	envs := make([]Envelope, 0, len(evs))
	for i, ev := range evs {
		if ev == nil {
			return nil, fmt.Errorf("event %d is nil", i)
		}
		payload, err := json.Marshal(ev)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal event %d (%s): %w", i, ev.Kind(), err)
		}
		envs = append(envs, Envelope{Kind: ev.Kind(), Payload: payload})
	}
	return json.Marshal(envs)
}

// UnmarshalList decodes a JSON array of envelopes
func UnmarshalList(data []byte) ([]Event, error) {
	var envs []Envelope
	if err := json.Unmarshal(data, &envs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event list: %w", err)
	}
	evs := make([]Event, 0, len(envs))
	for i, env := range envs {
		ev, err := env.Decode()
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		evs = append(evs, ev)
	}
	return evs, nil
}
