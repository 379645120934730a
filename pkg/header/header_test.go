package header

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNew(t *testing.T) {
	h := New(
		Card{Key: "A", Value: 1},
		Card{Key: "B", Value: "x", Comment: "b"},
		Card{Key: "A", Value: 2, Comment: "a"},
		Card{Key: KeyComment, Value: "first"},
		Card{Key: KeyComment, Value: "second"},
	)

	want := []Card{
		{Key: "A", Value: 2, Comment: "a"},
		{Key: "B", Value: "x", Comment: "b"},
		{Key: KeyComment, Value: "first"},
		{Key: KeyComment, Value: "second"},
	}
	if diff := cmp.Diff(want, h.Cards()); diff != "" {
		t.Errorf("Cards() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"A", "B"}, h.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestSetKeepsPositionAndComment(t *testing.T) {
	h := New(
		Card{Key: "MAXITER", Value: 200, Comment: "Maximum number of iterations to run"},
		Card{Key: "FLUX", Value: 1.0},
	)
	h.Set("MAXITER", 50)
	h.Set("NEW", true)

	c, ok := h.Card("MAXITER")
	if !ok {
		t.Fatal("MAXITER missing")
	}
	if c.Value != 50 {
		t.Errorf("MAXITER = %v, want 50", c.Value)
	}
	if c.Comment != "Maximum number of iterations to run" {
		t.Errorf("comment = %q, want original comment", c.Comment)
	}
	if diff := cmp.Diff([]string{"MAXITER", "FLUX", "NEW"}, h.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestAppendKeys(t *testing.T) {
	h := &Header{}
	h.Set(KeyHistory, "one")
	h.Set(KeyHistory, "two")
	h.Add(KeyComment, "note", "")

	if got := h.Values(KeyHistory); !cmp.Equal(got, []any{"one", "two"}) {
		t.Errorf("Values(HISTORY) = %v, want [one two]", got)
	}
	if h.Len() != 3 {
		t.Errorf("Len() = %d, want 3", h.Len())
	}
	if len(h.Keys()) != 0 {
		t.Errorf("Keys() = %v, want none", h.Keys())
	}
}

func TestTypedGetters(t *testing.T) {
	h := New(
		Card{Key: "S", Value: "str"},
		Card{Key: "I", Value: 3},
		Card{Key: "F", Value: 2.5},
	)

	if s, ok := h.GetString("S"); !ok || s != "str" {
		t.Errorf("GetString(S) = %q, %v", s, ok)
	}
	if _, ok := h.GetString("I"); ok {
		t.Error("GetString(I) ok = true, want false")
	}
	if n, ok := h.GetInt("I"); !ok || n != 3 {
		t.Errorf("GetInt(I) = %d, %v", n, ok)
	}
	if f, ok := h.GetFloat("I"); !ok || f != 3 {
		t.Errorf("GetFloat(I) = %v, %v", f, ok)
	}
	if f, ok := h.GetFloat("F"); !ok || f != 2.5 {
		t.Errorf("GetFloat(F) = %v, %v", f, ok)
	}
	if _, ok := h.GetFloat("missing"); ok {
		t.Error("GetFloat(missing) ok = true, want false")
	}
}

func TestDeleteFilterClone(t *testing.T) {
	h := New(Card{Key: "A", Value: 1}, Card{Key: "B", Value: 2}, Card{Key: "C", Value: 3})

	clone := h.Clone()
	if !h.Delete("B") {
		t.Error("Delete(B) = false, want true")
	}
	if h.Delete("B") {
		t.Error("second Delete(B) = true, want false")
	}
	if !clone.Has("B") {
		t.Error("clone lost B after Delete on original")
	}

	odd := clone.Filter(func(c Card) bool { return c.Value.(int)%2 == 1 })
	if diff := cmp.Diff([]string{"A", "C"}, odd.Keys()); diff != "" {
		t.Errorf("Filter keys mismatch (-want +got):\n%s", diff)
	}
}

func TestNilHeader(t *testing.T) {
	var h *Header
	if h.Len() != 0 || h.Has("A") || h.Keys() != nil {
		t.Error("nil header should behave as empty")
	}
	if _, ok := h.Get("A"); ok {
		t.Error("Get on nil header ok = true")
	}
}
