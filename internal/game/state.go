package game

type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

type Zone string

const (
	ZoneDeck  Zone = "deck"
	ZoneHand  Zone = "hand"
	ZoneLife  Zone = "life"
	ZoneTrash Zone = "trash"
)

const (
	// PoolMax bounds every resource sub-pool.
	PoolMax = 10
	// BoardSlots is the size of each side's board array.
	BoardSlots = 5
	// MulliganDraw is how many cards come back after a mulligan.
	MulliganDraw = 5
)

// Pool is a side's secondary resource: reserve feeds active, active rests.
type Pool struct {
	Reserve int `json:"reserve"`
	Active  int `json:"active"`
	Rested  int `json:"rested"`
}

// SideState holds one side of the table. Each zone keeps its card refs in
// order, front first, with a mirrored count that must always equal the
// sequence length.
type SideState struct {
	Deck  []string `json:"deck"`
	Hand  []string `json:"hand"`
	Life  []string `json:"life"`
	Trash []string `json:"trash"`

	DeckCount  int `json:"deckCount"`
	HandCount  int `json:"handCount"`
	LifeCount  int `json:"lifeCount"`
	TrashCount int `json:"trashCount"`

	Pool  Pool               `json:"pool"`
	Board [BoardSlots]string `json:"board"`

	// Revealed tracks which otherwise face-down refs are face-up, per zone.
	Revealed map[Zone]CardSet `json:"revealed"`
}

type State struct {
	Sides map[Side]*SideState `json:"sides"`
}

func NewState() *State {
	return &State{
		Sides: map[Side]*SideState{
			SideA: newSideState(),
			SideB: newSideState(),
		},
	}
}

func newSideState() *SideState {
	return &SideState{
		Deck:     []string{},
		Hand:     []string{},
		Life:     []string{},
		Trash:    []string{},
		Revealed: map[Zone]CardSet{},
	}
}

// zone resolves a zone name to its sequence and mirrored count. Unknown
// names return nil, which callers treat as a structural no-op.
func (sd *SideState) zone(z Zone) (*[]string, *int) {
	switch z {
	case ZoneDeck:
		return &sd.Deck, &sd.DeckCount
	case ZoneHand:
		return &sd.Hand, &sd.HandCount
	case ZoneLife:
		return &sd.Life, &sd.LifeCount
	case ZoneTrash:
		return &sd.Trash, &sd.TrashCount
	default:
		return nil, nil
	}
}

// unreveal drops a ref from the zone's reveal-set once it leaves that zone.
func (sd *SideState) unreveal(z Zone, ref string) {
	if set := sd.Revealed[z]; set != nil {
		delete(set, ref)
	}
}
