// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package layers

import (
	"slices"
	"testing"
)

type entry struct {
	layer Layer
	name  string
}

func collect(o *Orderer[string]) []entry {
	var out []entry
	for l, name := range o.All() {
		out = append(out, entry{l, name})
	}
	return out
}

func TestOrderer_AscendingThenRegistration(t *testing.T) {
	o := New[string]()
	o.Register(NodesSelected, "nodes")
	o.Register(EdgesUnselected, "undirected")
	o.Register(EdgesSelected, "undirected")
	o.Register(EdgesUnselected, "directed")
	o.Register(NodesUnselected, "nodes")
	o.Register(EdgesSelected, "directed")

	want := []entry{
		{EdgesUnselected, "undirected"},
		{EdgesUnselected, "directed"},
		{NodesUnselected, "nodes"},
		{EdgesSelected, "undirected"},
		{EdgesSelected, "directed"},
		{NodesSelected, "nodes"},
	}
	if got := collect(o); !slices.Equal(got, want) {
		t.Errorf("All() = %v, want %v", got, want)
	}
}

func TestOrderer_CustomLayer(t *testing.T) {
	o := New[string]()
	o.Register(Overlay, "labels")
	o.Register(NodesUnselected+1, "halo")
	o.Register(NodesUnselected, "nodes")

	want := []Layer{NodesUnselected, NodesUnselected + 1, Overlay}
	if got := o.Layers(); !slices.Equal(got, want) {
		t.Errorf("Layers() = %v, want %v", got, want)
	}
}

func TestOrderer_VisibilityAndRemoval(t *testing.T) {
	o := New[string]()
	o.Register(EdgesUnselected, "a")
	o.Register(NodesUnselected, "b")

	o.SetVisible(EdgesUnselected, false)
	if got := collect(o); len(got) != 1 || got[0].name != "b" {
		t.Errorf("All() with hidden layer = %v", got)
	}

	if err := o.RemoveLayer(NodesUnselected); err != nil {
		t.Fatalf("RemoveLayer() error = %v", err)
	}
	if err := o.RemoveLayer(NodesUnselected); err == nil {
		t.Error("RemoveLayer() of missing layer should fail")
	}
	if got := o.Layers(); !slices.Equal(got, []Layer{EdgesUnselected}) {
		t.Errorf("Layers() = %v", got)
	}
}

func TestOrderer_LayersReturnsCopy(t *testing.T) {
	o := New[string]()
	o.Register(Overlay, "x")
	l := o.Layers()
	l[0] = 0
	if got := o.Layers()[0]; got != Overlay {
		t.Errorf("Layers()[0] = %v after caller mutation, want %v", got, Overlay)
	}
}

func TestStandard_Order(t *testing.T) {
	std := Standard()
	if !slices.IsSorted(std) {
		t.Errorf("Standard() = %v is not ascending", std)
	}
	if !EdgesSelected.Selected() || NodesUnselected.Selected() {
		t.Error("Selected() misclassifies standard layers")
	}
}
