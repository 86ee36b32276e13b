package game

import "math/rand"

// moveTopAllowed lists the legal source→destination pairs for MOVE_TOP.
var moveTopAllowed = map[Zone]map[Zone]bool{
	ZoneDeck: {ZoneHand: true, ZoneLife: true, ZoneTrash: true},
	ZoneLife: {ZoneHand: true, ZoneTrash: true},
}

// Apply runs one action against the state in place. Structural misses (empty
// source zone, unknown kind, bad zone or pool names, occupied slot) leave the
// state untouched; the caller still counts the action as accepted. The rng is
// the only source of randomness, injected so transitions stay deterministic
// under test.
func Apply(st *State, a Action, rng *rand.Rand) {
	sd := st.Sides[a.Side]
	if sd == nil {
		return
	}

	switch a.Kind {
	case KindMoveTop:
		moveTop(sd, a.From, a.To)

	case KindSetResource:
		setResource(sd, a.Pool, a.Value)

	case KindShuffle:
		shuffleZone(sd, a.Zone, rng)

	case KindMulligan:
		mulligan(sd, rng)

	case KindRefresh:
		refresh(sd)

	case KindReveal:
		reveal(sd, a.Zone, a.Cards)

	case KindPlace:
		place(sd, a.Slot)

	case KindClearSlot:
		clearSlot(sd, a.Slot)
	}
}

func moveTop(sd *SideState, from, to Zone) {
	if !moveTopAllowed[from][to] {
		return
	}
	src, srcN := sd.zone(from)
	dst, dstN := sd.zone(to)
	if len(*src) == 0 {
		return
	}

	ref := (*src)[0]
	*src = (*src)[1:]
	*dst = append([]string{ref}, *dst...)
	*srcN--
	*dstN++
	sd.unreveal(from, ref)
}

func setResource(sd *SideState, field PoolField, v int) {
	if v < 0 {
		v = 0
	}
	if v > PoolMax {
		v = PoolMax
	}
	switch field {
	case PoolReserve:
		sd.Pool.Reserve = v
	case PoolActive:
		sd.Pool.Active = v
	case PoolRested:
		sd.Pool.Rested = v
	}
}

func shuffleZone(sd *SideState, z Zone, rng *rand.Rand) {
	seq, _ := sd.zone(z)
	if seq == nil {
		return
	}
	s := *seq
	rng.Shuffle(len(s), func(i, j int) {
		s[i], s[j] = s[j], s[i]
	})
}

func mulligan(sd *SideState, rng *rand.Rand) {
	moved := sd.Hand
	sd.Deck = append(sd.Deck, moved...)
	sd.DeckCount += len(moved)
	sd.Hand = []string{}
	sd.HandCount = 0
	for _, ref := range moved {
		sd.unreveal(ZoneHand, ref)
	}

	shuffleZone(sd, ZoneDeck, rng)

	for i := 0; i < MulliganDraw; i++ {
		moveTop(sd, ZoneDeck, ZoneHand)
	}
}

func refresh(sd *SideState) {
	sd.Pool.Rested = 0

	n := min(2, sd.Pool.Reserve, PoolMax-sd.Pool.Active)
	if n > 0 {
		sd.Pool.Reserve -= n
		sd.Pool.Active += n
	}

	moveTop(sd, ZoneDeck, ZoneHand)
}

func reveal(sd *SideState, z Zone, refs []string) {
	if seq, _ := sd.zone(z); seq == nil {
		return
	}
	set := sd.Revealed[z]
	if set == nil {
		set = CardSet{}
		sd.Revealed[z] = set
	}
	for _, ref := range refs {
		set.Add(ref)
	}
}

func place(sd *SideState, slot int) {
	if slot < 0 || slot >= BoardSlots {
		return
	}
	if sd.Board[slot] != "" || len(sd.Hand) == 0 {
		return
	}

	ref := sd.Hand[0]
	sd.Hand = sd.Hand[1:]
	sd.HandCount--
	sd.unreveal(ZoneHand, ref)
	sd.Board[slot] = ref
}

func clearSlot(sd *SideState, slot int) {
	if slot < 0 || slot >= BoardSlots {
		return
	}
	ref := sd.Board[slot]
	if ref == "" {
		return
	}

	sd.Board[slot] = ""
	sd.Trash = append([]string{ref}, sd.Trash...)
	sd.TrashCount++
}
