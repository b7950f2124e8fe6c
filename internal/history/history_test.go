package history

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestHistory(t *testing.T) {
	t.Run("Test missing file loads empty", func(t *testing.T) {
		h := New(filepath.Join(t.TempDir(), "history"), 10)

		if err := h.Load(); err != nil {
			t.Fatalf("expected not to receive error: got '%v'", err)
		}

		if got := h.GetAll(); len(got) != 0 {
			t.Errorf("expected empty history: got '%v'", got)
		}
	})

	t.Run("Test save then load", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "history")

		h := New(file, 10)
		h.Add("echo hi")
		h.Add("sleep 1 | cat")

		if err := h.Save(); err != nil {
			t.Fatalf("expected not to receive error: got '%v'", err)
		}

		loaded := New(file, 10)
		if err := loaded.Load(); err != nil {
			t.Fatalf("expected not to receive error: got '%v'", err)
		}

		want := []string{"echo hi", "sleep 1 | cat"}
		if got := loaded.GetAll(); !slices.Equal(got, want) {
			t.Errorf("expected history: got '%v', want '%v'", got, want)
		}
	})

	t.Run("Test keeps most recent entries", func(t *testing.T) {
		h := New(filepath.Join(t.TempDir(), "history"), 2)

		h.Add("a")
		h.Add("b")
		h.Add("c")

		want := []string{"b", "c"}
		if got := h.GetAll(); !slices.Equal(got, want) {
			t.Errorf("expected history: got '%v', want '%v'", got, want)
		}
	})

	t.Run("Test save to a directory fails", func(t *testing.T) {
		h := New(t.TempDir(), 10)
		h.Add("a")

		if err := h.Save(); err == nil {
			t.Errorf("expected to receive error: got '%v'", err)
		}
	})

	t.Run("Test load of a directory fails", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "history")
		if err := os.Mkdir(dir, 0o700); err != nil {
			t.Fatalf("expected not to receive error: got '%v'", err)
		}

		if err := New(dir, 10).Load(); err == nil {
			t.Errorf("expected to receive error: got '%v'", err)
		}
	})

	t.Run("Test default limit", func(t *testing.T) {
		h := New("unused", 0)

		if h.maxItems != DefaultMaxItems {
			t.Errorf("expected limit: got '%d', want '%d'", h.maxItems, DefaultMaxItems)
		}
	})
}
