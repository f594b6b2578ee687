package srx

import "sort"

// codeInventory records every inline code of a coded text, both at its
// position in the original runes and at the position it collapses to in the
// codes-removed working copy.
//
// All positions are rune offsets.
type codeInventory struct {
	original []int // rune offset of each marker in the coded text
	removed  []int // rune offset of the same code in the codes-removed text
	kinds    []CodeKind
	shift    []int   // shift[k] = runes dropped by the first k codes
	cover    []uint8 // per original rune: coverMarker, coverIndex or 0
	asSpace  bool    // isolated codes leave a single space behind
}

const (
	coverMarker uint8 = 1
	coverIndex  uint8 = 2
)

// takeInventory scans runes once for code markers. A marker rune in the last
// position has no index rune and is treated as plain text.
func takeInventory(runes []rune, isolatedAsSpace bool) *codeInventory {
	inv := &codeInventory{
		cover:   make([]uint8, len(runes)),
		asSpace: isolatedAsSpace,
		shift:   []int{0},
	}
	removed := 0
	for i := 0; i < len(runes); i++ {
		kind := markerKind(runes[i])
		if kind == NoCode || i+1 >= len(runes) {
			removed++
			continue
		}
		inv.original = append(inv.original, i)
		inv.removed = append(inv.removed, removed)
		inv.kinds = append(inv.kinds, kind)
		dropped := 2
		if kind == IsolatedCode && isolatedAsSpace {
			dropped = 1
			removed++
		}
		inv.shift = append(inv.shift, inv.shift[len(inv.shift)-1]+dropped)
		inv.cover[i], inv.cover[i+1] = coverMarker, coverIndex
		i++
	}
	return inv
}

// count returns the number of codes found.
func (inv *codeInventory) count() int {
	return len(inv.original)
}

// strip returns the codes-removed working copy of runes.
func (inv *codeInventory) strip(runes []rune) []rune {
	if inv.count() == 0 {
		return runes
	}
	out := make([]rune, 0, len(runes)-inv.shift[inv.count()])
	for i := 0; i < len(runes); i++ {
		if inv.cover[i] == 0 {
			out = append(out, runes[i])
			continue
		}
		if markerKind(runes[i]) == IsolatedCode && inv.asSpace {
			out = append(out, ' ')
		}
		i++ // skip index rune
	}
	return out
}

// toOriginal translates a position in the codes-removed text to the coded
// text. Codes collapsing onto pos itself are placed after it.
func (inv *codeInventory) toOriginal(pos int) int {
	k := sort.SearchInts(inv.removed, pos) // codes with removed[i] < pos
	return pos + inv.shift[k]
}

// toRemoved translates a position in the coded text to the codes-removed
// text. Positions inside a marker map to the position of its code.
func (inv *codeInventory) toRemoved(pos int) int {
	k := sort.SearchInts(inv.original, pos) // codes starting before pos
	if k > 0 && pos < inv.original[k-1]+2 {
		return inv.removed[k-1]
	}
	return pos - inv.shift[k]
}

// markerAt returns the kind of the code starting at pos, if any.
func (inv *codeInventory) markerAt(runes []rune, pos int) CodeKind {
	if pos < 0 || pos >= len(runes) || inv.cover[pos] != coverMarker {
		return NoCode
	}
	return markerKind(runes[pos])
}

// markerEndingAt returns the kind of the code whose index rune is at pos-1.
func (inv *codeInventory) markerEndingAt(runes []rune, pos int) CodeKind {
	if pos < 2 || pos > len(runes) || inv.cover[pos-1] != coverIndex {
		return NoCode
	}
	return markerKind(runes[pos-2])
}
