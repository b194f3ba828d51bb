package domain

import "time"

// Collection is the full persisted state: every list, every card across
// all lists, and the active-list pointer.
type Collection struct {
	Lists         []*List `json:"lists"`
	Cards         []*Card `json:"cards"`
	CurrentListID string  `json:"currentListId"`
}

// CardsForList returns the cards belonging to the given list.
func (c *Collection) CardsForList(listID string) []*Card {
	var out []*Card
	for _, card := range c.Cards {
		if card.ListID == listID {
			out = append(out, card)
		}
	}
	return out
}

// Clone returns a deep copy sharing nothing with the original. The
// persistence mirrors encode their snapshot on a background goroutine, so
// they must not alias cards the application is still mutating.
func (c Collection) Clone() Collection {
	out := Collection{CurrentListID: c.CurrentListID}
	if c.Lists != nil {
		out.Lists = make([]*List, len(c.Lists))
		for i, l := range c.Lists {
			cp := *l
			out.Lists[i] = &cp
		}
	}
	if c.Cards != nil {
		out.Cards = make([]*Card, len(c.Cards))
		for i, card := range c.Cards {
			cp := *card
			if card.LastAskedAt != nil {
				t := *card.LastAskedAt
				cp.LastAskedAt = &t
			}
			if card.NextDueAt != nil {
				t := *card.NextDueAt
				cp.NextDueAt = &t
			}
			out.Cards[i] = &cp
		}
	}
	return out
}

// FindList returns the list with the given ID, or nil.
func (c *Collection) FindList(listID string) *List {
	for _, l := range c.Lists {
		if l.ID == listID {
			return l
		}
	}
	return nil
}

// Snapshot is the bound-file export format: a Collection stamped with the
// time it was written.
type Snapshot struct {
	Lists         []*List   `json:"lists"`
	Cards         []*Card   `json:"cards"`
	CurrentListID string    `json:"currentListId"`
	ExportedAt    time.Time `json:"exportedAt"`
}

// NewSnapshot stamps the collection for export.
func NewSnapshot(col Collection, now time.Time) Snapshot {
	return Snapshot{
		Lists:         col.Lists,
		Cards:         col.Cards,
		CurrentListID: col.CurrentListID,
		ExportedAt:    now,
	}
}

// Collection unwraps the snapshot back into persisted state.
func (s Snapshot) Collection() Collection {
	return Collection{
		Lists:         s.Lists,
		Cards:         s.Cards,
		CurrentListID: s.CurrentListID,
	}
}
