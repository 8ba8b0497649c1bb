package text

import "unicode/utf8"

// Item is a single run of text placed causally between two origin
// items. Items are never removed from a Text's storage once created;
// deletion only ever sets Deleted, so that causally-dependent remote
// items can still be integrated correctly against a full history.
type Item struct {
	ID      ItemID  `json:"-"`
	Content string  `json:"content"`
	Left    *ItemID `json:"left"`
	Right   *ItemID `json:"right"`
	Deleted bool    `json:"deleted"`
}

func idEqual(a, b *ItemID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// canMergeWith reports whether b may be coalesced onto the end of a:
// same replica, consecutive counters (a's counter plus a's rune
// length), b's left origin is a's own id, b's right origin equals a's,
// and matching deletion state. Coalescing is purely an in-memory
// compaction; it must never change the rendered text or the merge
// outcome. Since every character of one Insert call shares the same
// pre-insertion origin pair, those characters fuse onto their left
// origin item when it is this replica's immediately preceding counter
// run; characters inserted with no left origin stay separate items.
func canMergeWith(a *Item, aID ItemID, b *Item) bool {
	return aID.Replica == b.ID.Replica &&
		b.ID.Counter == aID.Counter+uint64(utf8.RuneCountInString(a.Content)) &&
		idEqual(b.Left, &aID) &&
		idEqual(b.Right, a.Right) &&
		a.Deleted == b.Deleted
}
