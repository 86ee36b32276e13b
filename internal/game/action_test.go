package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeAction_MoveTop(t *testing.T) {
	a := DecodeAction([]byte(`{"kind":"MOVE_TOP","from":"deck","to":"hand","side":"A"}`))

	assert.Equal(t, KindMoveTop, a.Kind)
	assert.Equal(t, SideA, a.Side)
	assert.Equal(t, ZoneDeck, a.From)
	assert.Equal(t, ZoneHand, a.To)
}

func TestDecodeAction_SideDefaultsToA(t *testing.T) {
	assert.Equal(t, SideA, DecodeAction([]byte(`{"kind":"MULLIGAN"}`)).Side)
	assert.Equal(t, SideA, DecodeAction([]byte(`{"kind":"MULLIGAN","side":"Q"}`)).Side)
	assert.Equal(t, SideB, DecodeAction([]byte(`{"kind":"MULLIGAN","side":"b"}`)).Side)
}

func TestDecodeAction_LooseNumbers(t *testing.T) {
	a := DecodeAction([]byte(`{"kind":"SET_RESOURCE","pool":"active","value":"7"}`))
	assert.Equal(t, 7, a.Value)

	// non-numeric values coerce to 0 instead of failing the payload
	a = DecodeAction([]byte(`{"kind":"SET_RESOURCE","pool":"active","value":"lots"}`))
	assert.Equal(t, KindSetResource, a.Kind)
	assert.Equal(t, 0, a.Value)

	a = DecodeAction([]byte(`{"kind":"PLACE","slot":{"bad":true}}`))
	assert.Equal(t, KindPlace, a.Kind)
	assert.Equal(t, 0, a.Slot)
}

func TestDecodeAction_GarbageCollapsesToNoop(t *testing.T) {
	a := DecodeAction([]byte(`not json at all`))
	assert.Equal(t, Action{}, a)
}
