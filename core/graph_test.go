package core

import (
	"errors"
	"slices"
	"testing"
)

func TestConnectionGraphLinks(t *testing.T) {
	g := NewConnectionGraph()
	g.AddSatellite(7)
	g.AddLink(2, 1, 100)
	g.AddLink(1, 3, 250)
	g.AddLink(1, 2, 120) // replaces
	g.AddLink(4, 4, 1)   // self link ignored

	if g.LinkCount() != 2 {
		t.Fatalf("LinkCount = %d, want 2", g.LinkCount())
	}
	if got := g.Satellites(); !slices.Equal(got, []int{1, 2, 3, 4, 7}) {
		t.Fatalf("Satellites = %v", got)
	}
	if got := g.Neighbors(1); !slices.Equal(got, []int{2, 3}) {
		t.Fatalf("Neighbors(1) = %v, want [2 3]", got)
	}
	if got := g.Neighbors(99); got != nil {
		t.Fatalf("Neighbors(99) = %v, want nil", got)
	}
	if l, ok := g.Length(2, 1); !ok || l != 120 {
		t.Fatalf("Length(2,1) = %v, %v; want 120, true", l, ok)
	}
	if _, ok := g.Length(2, 3); ok {
		t.Fatalf("Length(2,3) reported a link")
	}
	if g.HasLink(4, 4) {
		t.Fatalf("self link present")
	}

	want := []Link{{A: 1, B: 2, LengthM: 120}, {A: 1, B: 3, LengthM: 250}}
	if got := g.Links(); !slices.Equal(got, want) {
		t.Fatalf("Links = %v, want %v", got, want)
	}
}

func TestConnectionGraphShortestPath(t *testing.T) {
	g := NewConnectionGraph()
	g.AddLink(1, 2, 10)
	g.AddLink(2, 3, 10)
	g.AddLink(1, 3, 50)
	g.AddSatellite(9)

	route, length, err := g.ShortestPath(1, 3)
	if err != nil {
		t.Fatalf("ShortestPath: %v", err)
	}
	if !slices.Equal(route, []int{1, 2, 3}) || length != 20 {
		t.Fatalf("ShortestPath = %v (%v), want [1 2 3] (20)", route, length)
	}

	if _, _, err := g.ShortestPath(1, 9); !errors.Is(err, ErrNoPath) {
		t.Fatalf("isolated target err = %v, want ErrNoPath", err)
	}
	if _, _, err := g.ShortestPath(1, 42); !errors.Is(err, ErrUnknownSatellite) {
		t.Fatalf("unknown target err = %v, want ErrUnknownSatellite", err)
	}
}
