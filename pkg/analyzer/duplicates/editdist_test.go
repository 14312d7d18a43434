package duplicates

import (
	"fmt"
	"testing"
)

func TestDistanceWithin(t *testing.T) {
	tests := []struct {
		name    string
		a, b    []string
		maxDist int
		want    int
		wantOK  bool
	}{
		{
			name: "identical", a: []string{"ID", "=", "NUM"}, b: []string{"ID", "=", "NUM"},
			maxDist: 0, want: 0, wantOK: true,
		},
		{
			name: "single substitution", a: []string{"ID", "=", "NUM"}, b: []string{"ID", "=", "STR"},
			maxDist: 1, want: 1, wantOK: true,
		},
		{
			name: "insertion", a: []string{"return", "ID"}, b: []string{"return", "ID", ";"},
			maxDist: 1, want: 1, wantOK: true,
		},
		{
			name: "both empty", a: nil, b: nil,
			maxDist: 0, want: 0, wantOK: true,
		},
		{
			name: "one empty within bound", a: nil, b: []string{"ID", "ID"},
			maxDist: 2, want: 2, wantOK: true,
		},
		{
			name: "one empty beyond bound", a: nil, b: []string{"ID", "ID", "ID"},
			maxDist: 2, wantOK: false,
		},
		{
			name: "length gap fails fast", a: []string{"ID"}, b: []string{"ID", "ID", "ID", "ID"},
			maxDist: 2, wantOK: false,
		},
		{
			name: "negative bound", a: []string{"ID"}, b: []string{"ID"},
			maxDist: -1, wantOK: false,
		},
		{
			name:    "row minimum abort",
			a:       []string{"a", "b", "c", "d", "e"},
			b:       []string{"v", "w", "x", "y", "z"},
			maxDist: 2, wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := distanceWithin(tt.a, tt.b, tt.maxDist)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("distance = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDistanceWithinSymmetric(t *testing.T) {
	a := []string{"if", "(", "ID", ")", "{", "return", "NUM", "}"}
	b := []string{"if", "(", "ID", "==", "NUM", ")", "{", "return", "STR", "}"}

	dab, okAB := distanceWithin(a, b, 10)
	dba, okBA := distanceWithin(b, a, 10)
	if !okAB || !okBA {
		t.Fatal("expected both directions within bound")
	}
	if dab != dba {
		t.Errorf("asymmetric distance: %d vs %d", dab, dba)
	}
	if dab != 3 {
		t.Errorf("distance = %d, want 3", dab)
	}
}

func TestDistanceWithinBandEdges(t *testing.T) {
	// Sequences long enough that the band leaves most cells untouched.
	// A leading insertion shifts every comparison one column off the
	// diagonal, so the optimal path rides the band edge.
	long := make([]string, 30)
	for i := range long {
		long[i] = fmt.Sprintf("t%d", i)
	}
	shifted := append([]string{"pre"}, long...)

	if d, ok := distanceWithin(long, shifted, 1); !ok || d != 1 {
		t.Errorf("got (%d, %v), want (1, true)", d, ok)
	}

	// Length gap equal to the bound: the path is all deletions along
	// the band boundary and must still be exact.
	if d, ok := distanceWithin(long[:26], long, 4); !ok || d != 4 {
		t.Errorf("got (%d, %v), want (4, true)", d, ok)
	}

	// Substitutions spread across the sequence, bound met exactly.
	edited := make([]string, len(long))
	copy(edited, long)
	for _, i := range []int{2, 11, 19, 28} {
		edited[i] = "x"
	}
	if d, ok := distanceWithin(long, edited, 4); !ok || d != 4 {
		t.Errorf("got (%d, %v), want (4, true)", d, ok)
	}
	if _, ok := distanceWithin(long, edited, 3); ok {
		t.Error("distance 4 should exceed bound 3")
	}
}

func TestDistanceWithinExactBound(t *testing.T) {
	a := []string{"x", "y", "z"}
	b := []string{"x", "q", "z"}

	if _, ok := distanceWithin(a, b, 0); ok {
		t.Error("distance 1 should exceed bound 0")
	}
	if d, ok := distanceWithin(a, b, 1); !ok || d != 1 {
		t.Errorf("got (%d, %v), want (1, true)", d, ok)
	}
}
