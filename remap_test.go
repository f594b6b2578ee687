package srx

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestInventory(t *testing.T) {
	text := []rune("a" + openB + "b" + br + "c" + closeB)
	inv := takeInventory(text, false)
	if inv.count() != 3 {
		t.Fatalf("expected 3 codes, got %d", inv.count())
	}
	if !reflect.DeepEqual(inv.original, []int{1, 4, 7}) {
		t.Fatalf("original positions: got %v", inv.original)
	}
	if !reflect.DeepEqual(inv.removed, []int{1, 2, 3}) {
		t.Fatalf("removed positions: got %v", inv.removed)
	}
	if !reflect.DeepEqual(inv.kinds, []CodeKind{OpeningCode, IsolatedCode, ClosingCode}) {
		t.Fatalf("kinds: got %v", inv.kinds)
	}
	if got := string(inv.strip(text)); got != "abc" {
		t.Fatalf("stripped text: got %q", got)
	}
	inv = takeInventory(text, true)
	if got := string(inv.strip(text)); got != "ab c" {
		t.Fatalf("stripped text with isolated code as space: got %q", got)
	}
}

func TestTrailingMarkerIsText(t *testing.T) {
	text := []rune("ab" + string(MarkerOpening))
	inv := takeInventory(text, false)
	if inv.count() != 0 {
		t.Fatalf("incomplete marker should not count as code")
	}
	if got := string(inv.strip(text)); got != string(text) {
		t.Fatalf("incomplete marker should be kept, got %q", got)
	}
}

func TestToOriginal(t *testing.T) {
	text := []rune("a" + openB + "b" + br + "c" + closeB)
	tests := []struct {
		asSpace bool
		removed []int
		want    []int
	}{
		// codes collapsing onto a position are placed after it
		{asSpace: false, removed: []int{0, 1, 2, 3}, want: []int{0, 1, 4, 7}},
		{asSpace: true, removed: []int{0, 1, 2, 3, 4}, want: []int{0, 1, 4, 6, 7}},
	}
	for _, tt := range tests {
		inv := takeInventory(text, tt.asSpace)
		var got []int
		for _, p := range tt.removed {
			got = append(got, inv.toOriginal(p))
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("asSpace=%v: got %v, want %v", tt.asSpace, got, tt.want)
		}
	}
}

func TestToRemovedInsideMarker(t *testing.T) {
	text := []rune("a" + openB + "b")
	inv := takeInventory(text, false)
	if got := inv.toRemoved(2); got != 1 {
		t.Fatalf("position inside a marker should map to its code, got %d", got)
	}
	if got := inv.toRemoved(4); got != 2 {
		t.Fatalf("end of text: got %d, want 2", got)
	}
}

func TestRemapRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	pieces := []string{"x", " ", "漢", "😀", openB, closeB, br}
	for n := 0; n < 200; n++ {
		var text []rune
		for k, n := 0, rnd.Intn(30); k < n; k++ {
			text = append(text, []rune(pieces[rnd.Intn(len(pieces))])...)
		}
		for _, asSpace := range []bool{false, true} {
			inv := takeInventory(text, asSpace)
			plain := inv.strip(text)
			prev := -1
			for p := 0; p <= len(plain); p++ {
				o := inv.toOriginal(p)
				if o <= prev || o > len(text) {
					t.Fatalf("toOriginal not strictly increasing within text: %d -> %d", p, o)
				}
				if back := inv.toRemoved(o); back != p {
					t.Fatalf("round trip %d -> %d -> %d", p, o, back)
				}
				if o < len(text) && inv.cover[o] == coverIndex {
					t.Fatalf("position %d maps into a marker", p)
				}
				prev = o
			}
			// order of calls must not matter
			if inv.toOriginal(len(plain)) != inv.toOriginal(len(plain)) || inv.toRemoved(0) != 0 {
				t.Fatalf("remapping is not stable")
			}
		}
	}
}
