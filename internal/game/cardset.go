package game

import (
	"encoding/json"
	"sort"

	"github.com/samber/lo"
)

// CardSet is an in-memory set of card references. On the wire it is always a
// sorted array; the set representation never crosses the serialization
// boundary.
type CardSet map[string]struct{}

func (s CardSet) Add(ref string) { s[ref] = struct{}{} }

func (s CardSet) Has(ref string) bool {
	_, ok := s[ref]
	return ok
}

func (s CardSet) MarshalJSON() ([]byte, error) {
	refs := lo.Keys(s)
	sort.Strings(refs)
	return json.Marshal(refs)
}

func (s *CardSet) UnmarshalJSON(b []byte) error {
	var refs []string
	if err := json.Unmarshal(b, &refs); err != nil {
		return err
	}
	*s = make(CardSet, len(refs))
	for _, r := range refs {
		(*s)[r] = struct{}{}
	}
	return nil
}
