package game

import "encoding/json"

type Kind string

const (
	KindMoveTop     Kind = "MOVE_TOP"
	KindSetResource Kind = "SET_RESOURCE"
	KindShuffle     Kind = "SHUFFLE"
	KindMulligan    Kind = "MULLIGAN"
	KindRefresh     Kind = "REFRESH"
	KindReveal      Kind = "REVEAL"
	KindPlace       Kind = "PLACE"
	KindClearSlot   Kind = "CLEAR_SLOT"
)

type PoolField string

const (
	PoolReserve PoolField = "reserve"
	PoolActive  PoolField = "active"
	PoolRested  PoolField = "rested"
)

// Action is one tagged request against the state. Which fields matter depends
// on Kind; the rest stay zero.
type Action struct {
	Kind  Kind
	Side  Side
	From  Zone
	To    Zone
	Pool  PoolField
	Value int
	Zone  Zone
	Slot  int
	Cards []string
}

type wireAction struct {
	Kind  string   `json:"kind"`
	Side  string   `json:"side"`
	From  string   `json:"from"`
	To    string   `json:"to"`
	Pool  string   `json:"pool"`
	Value looseInt `json:"value"`
	Zone  string   `json:"zone"`
	Slot  looseInt `json:"slot"`
	Cards []string `json:"cards"`
}

// looseInt tolerates numbers, numeric strings, and garbage. Anything that
// isn't a number decodes as 0 instead of failing the whole payload.
type looseInt int

func (n *looseInt) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*n = looseInt(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		var sf float64
		if err := json.Unmarshal([]byte(s), &sf); err == nil {
			*n = looseInt(sf)
			return nil
		}
	}
	*n = 0
	return nil
}

// DecodeAction turns a raw payload into an Action. A payload that cannot be
// decoded at all collapses to the zero Action, which the reducer treats as a
// no-op; it never returns an error to the sender.
func DecodeAction(raw []byte) Action {
	var w wireAction
	if err := json.Unmarshal(raw, &w); err != nil {
		return Action{}
	}
	return Action{
		Kind:  Kind(w.Kind),
		Side:  parseSide(w.Side),
		From:  Zone(w.From),
		To:    Zone(w.To),
		Pool:  PoolField(w.Pool),
		Value: int(w.Value),
		Zone:  Zone(w.Zone),
		Slot:  int(w.Slot),
		Cards: w.Cards,
	}
}

func parseSide(s string) Side {
	if s == "B" || s == "b" {
		return SideB
	}
	return SideA
}
