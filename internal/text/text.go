// Package text implements a YATA-style (Yet Another Transformation
// Approach) text CRDT: an ordered sequence of character items whose
// concurrent insertions resolve deterministically across replicas.
package text

import (
	"strings"
	"unicode/utf8"
)

// Text is one replica's view of a collaboratively edited string.
type Text struct {
	ClientID uint64
	Counter  uint64
	Items    map[ItemID]*Item
	Sequence []ItemID
}

// New returns an empty Text owned by clientID.
func New(clientID uint64) *Text {
	return &Text{
		ClientID: clientID,
		Items:    make(map[ItemID]*Item),
	}
}

func (t *Text) nextID() ItemID {
	t.Counter++
	return ItemID{Replica: t.ClientID, Counter: t.Counter - 1}
}

func (t *Text) indexOf(id ItemID) int {
	for i, existing := range t.Sequence {
		if existing == id {
			return i
		}
	}
	return -1
}

// visibleLen returns the rune-visible length of the item at id (0 if
// tombstoned).
func (t *Text) visibleLen(id ItemID) int {
	item := t.Items[id]
	if item == nil || item.Deleted {
		return 0
	}
	return utf8.RuneCountInString(item.Content)
}

// originsAtPosition locates the left and right origin item IDs for an
// insertion at position, scanning the sequence and counting visible
// content length.
func (t *Text) originsAtPosition(position int) (left, right *ItemID) {
	if position == 0 {
		if len(t.Sequence) > 0 {
			id := t.Sequence[0]
			return nil, &id
		}
		return nil, nil
	}

	remaining := position
	for i, id := range t.Sequence {
		visible := t.visibleLen(id)
		if visible == 0 {
			continue
		}
		if remaining <= visible {
			idCopy := id
			if i+1 < len(t.Sequence) {
				nextID := t.Sequence[i+1]
				return &idCopy, &nextID
			}
			return &idCopy, nil
		}
		remaining -= visible
	}

	if len(t.Sequence) > 0 {
		last := t.Sequence[len(t.Sequence)-1]
		return &last, nil
	}
	return nil, nil
}

// integrateItem places an already-registered item into Sequence at the
// position dictated by YATA conflict resolution: it scans from just
// after its left origin, stopping at its right origin, at a position
// whose existing item has a different left origin, or — for
// same-left-origin competitors — at the point where ID order says
// this item precedes the competitor.
func (t *Text) integrateItem(id ItemID, item *Item) {
	pos := 0
	if item.Left != nil {
		pos = t.indexOf(*item.Left) + 1
	}

	for pos < len(t.Sequence) {
		candidateID := t.Sequence[pos]
		if item.Right != nil && candidateID == *item.Right {
			break
		}
		candidate := t.Items[candidateID]

		if idEqual(candidate.Left, item.Left) {
			if id.Less(candidateID) {
				break
			}
			pos++
			continue
		}

		if item.Right != nil && candidate.Left != nil {
			itemLeftIdx := -1
			if item.Left != nil {
				itemLeftIdx = t.indexOf(*item.Left)
			}
			if t.indexOf(*candidate.Left) > itemLeftIdx {
				break
			}
		}
		pos++
	}

	t.Sequence = append(t.Sequence, ItemID{})
	copy(t.Sequence[pos+1:], t.Sequence[pos:])
	t.Sequence[pos] = id
}

// Insert inserts content at the given visible-character position. Each
// character becomes its own Item, and every character from this call
// shares the same left/right origin pair (the position's origins as
// they stood before the insert began). Integration places them in
// counter order because integrateItem breaks ties between same-origin
// competitors by ID, so they land adjacent to each other in Sequence.
// mergeBlocks then fuses them onto their left origin item when that
// item is this replica's immediately preceding counter run; characters
// inserted with no left origin stay separate items.
func (t *Text) Insert(position int, content string) {
	if content == "" {
		return
	}

	left, right := t.originsAtPosition(position)

	for _, r := range content {
		id := t.nextID()
		item := &Item{ID: id, Content: string(r), Left: left, Right: right}
		t.Items[id] = item
		t.integrateItem(id, item)
	}

	t.mergeBlocks()
}

// Delete tombstones every item whose visible range intersects
// [position, position+length). Items are never removed from Items or
// Sequence, and an item is never split: any overlap tombstones the
// whole item.
func (t *Text) Delete(position, length int) {
	if length <= 0 {
		return
	}

	cursor := 0
	end := position + length
	for _, id := range t.Sequence {
		item := t.Items[id]
		if item.Deleted {
			continue
		}
		itemStart := cursor
		itemEnd := cursor + utf8.RuneCountInString(item.Content)
		cursor = itemEnd

		if itemEnd <= position || itemStart >= end {
			continue
		}
		item.Deleted = true
	}
}

// mergeBlocks walks Sequence and fuses adjacent items that satisfy the
// coalescing condition: same replica, consecutive counters, b's left
// origin is a's id, matching right origins, and matching deletion
// state. The fused item keeps a's id and left origin and takes b's
// right origin; b is removed from Items and Sequence, and no
// uncoalesced copy is kept.
func (t *Text) mergeBlocks() {
	i := 0
	for i < len(t.Sequence)-1 {
		aID := t.Sequence[i]
		bID := t.Sequence[i+1]
		a := t.Items[aID]
		b := t.Items[bID]

		if canMergeWith(a, aID, b) {
			a.Content += b.Content
			a.Right = b.Right
			delete(t.Items, bID)
			t.Sequence = append(t.Sequence[:i+1], t.Sequence[i+2:]...)
			continue
		}
		i++
	}
}

// Merge integrates every item from other that this Text has not yet
// observed, applying deletion flags monotonically for items both
// sides already hold, then re-coalesces.
func (t *Text) Merge(other *Text) {
	var toIntegrate []ItemID

	for id, remoteItem := range other.Items {
		local, ok := t.Items[id]
		if !ok {
			copied := *remoteItem
			t.Items[id] = &copied
			toIntegrate = append(toIntegrate, id)
			continue
		}
		if remoteItem.Deleted {
			local.Deleted = true
		}
	}

	for _, id := range toIntegrate {
		item := t.Items[id]
		t.integrateItem(id, item)
	}

	if other.Counter > t.Counter {
		t.Counter = other.Counter
	}

	t.mergeBlocks()
}

// String renders the visible text by concatenating every non-deleted
// item's content in sequence order.
func (t *Text) String() string {
	var b strings.Builder
	for _, id := range t.Sequence {
		item := t.Items[id]
		if item.Deleted {
			continue
		}
		b.WriteString(item.Content)
	}
	return b.String()
}

// Len returns the visible character length without rendering the
// whole string.
func (t *Text) Len() int {
	n := 0
	for _, id := range t.Sequence {
		n += t.visibleLen(id)
	}
	return n
}

// IsEmpty reports whether the rendered text has zero visible length.
func (t *Text) IsEmpty() bool {
	return t.Len() == 0
}
