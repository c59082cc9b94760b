package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jakecoffman/cp"

	"github.com/comalice/storybook/internal/characters"
)

func TestDefaultResolvesEveryFamily(t *testing.T) {
	c := Default()
	ctx := context.Background()
	for _, key := range []Key{
		{"chick", "1"}, {"egg", "1"}, {"hen", "1"}, {"hen", "2"},
		{"chef", "1"}, {"points", "1"}, {"eggCatch", "1"},
	} {
		e, err := c.Resolve(ctx, key)
		if err != nil {
			t.Errorf("Resolve(%s) error = %v", key, err)
			continue
		}
		def := e.New(characters.Input{GroundY: 100})
		if err := def.Validate(); err != nil {
			t.Errorf("%s definition invalid: %v", key, err)
		}
		if def.ID != key.Type || def.Version != key.Version {
			t.Errorf("%s built %s@%s", key, def.ID, def.Version)
		}
	}
	if got := len(c.Keys()); got != 7 {
		t.Errorf("len(Keys()) = %d, want 7", got)
	}
}

func TestResolveErrors(t *testing.T) {
	c := Default()
	if _, err := c.Resolve(context.Background(), Key{"dragon", "1"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown type error = %v, want ErrNotFound", err)
	}
	if _, err := c.Resolve(context.Background(), Key{"hen", "3"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown version error = %v, want ErrNotFound", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Resolve(ctx, Key{"hen", "1"}); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled resolve error = %v", err)
	}
	err := c.Register(Entry{Key: Key{"hen", "1"}, New: characters.Hen})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate Register error = %v", err)
	}
	if err := c.Register(Entry{Key: Key{"ghost", "1"}}); err == nil {
		t.Error("Register without factory succeeded")
	}
}

func TestDefaultDemos(t *testing.T) {
	set := DefaultDemos()
	want := []string{"chick", "egg", "hen", "chef", "egg-catch"}
	ids := set.IDs()
	if len(ids) != len(want) {
		t.Fatalf("IDs() = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("IDs()[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
	c := Default()
	for _, d := range set.Demos {
		for _, a := range d.Actors {
			if _, err := c.Resolve(context.Background(), a.Key()); err != nil {
				t.Errorf("demo %s actor %s: %v", d.ID, a.ID, err)
			}
		}
	}
	chick, ok := set.Find("chick")
	if !ok {
		t.Fatal("chick demo missing")
	}
	if !chick.Actors[1].Headless || chick.Actors[1].Mirror != "chick" {
		t.Errorf("headless actor = %+v", chick.Actors[1])
	}
	if _, ok := set.Find("nope"); ok {
		t.Error("Find(nope) succeeded")
	}
}

func TestParseDemosRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "demos: [\n"},
		{"missing id", "demos:\n  - title: x\n"},
		{"duplicate demo", "demos:\n  - id: a\n  - id: a\n"},
		{"actor without type", "demos:\n  - id: a\n    actors:\n      - id: x\n"},
		{"duplicate actor", "demos:\n  - id: a\n    actors:\n      - {id: x, type: hen}\n      - {id: x, type: hen}\n"},
		{"unknown mirror", "demos:\n  - id: a\n    actors:\n      - {id: x, type: hen, headless: true, mirror: y}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseDemos([]byte(tt.yaml)); err == nil {
				t.Error("ParseDemos succeeded")
			}
		})
	}
}

func TestLayout(t *testing.T) {
	demo := DemoSpec{Width: 800, GroundY: 300}
	l := ComputeLayout(demo, 400)
	if l.Scale != 0.5 {
		t.Fatalf("Scale = %v, want 0.5", l.Scale)
	}
	in := l.Input(demo, ActorSpec{X: 200, Y: 100, Params: map[string]any{"hatch": true}})
	if in.Position != (cp.Vector{X: 100, Y: 50}) || in.GroundY != 150 {
		t.Errorf("Input = %+v", in)
	}
	if !in.Bool("hatch", false) {
		t.Error("params not carried")
	}
	if got := ComputeLayout(DemoSpec{}, 400).Scale; got != 1 {
		t.Errorf("unscaled Scale = %v", got)
	}
}

func TestLoadDemosFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demos.yaml")
	if _, err := LoadDemosFile(path); err == nil {
		t.Error("missing file loaded")
	}
	if err := os.WriteFile(path, []byte("demos:\n  - id: solo\n    actors:\n      - {id: h, type: hen, version: \"1\"}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	set, err := LoadDemosFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if d, ok := set.Find("solo"); !ok || d.Actors[0].Key() != (Key{"hen", "1"}) {
		t.Errorf("loaded %+v", set)
	}
}

func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demos.yaml")
	if err := os.WriteFile(path, []byte("demos:\n  - id: first\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("demos:\n  - id: second\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case set := <-w.Events:
		if _, ok := set.Find("second"); !ok {
			t.Errorf("reloaded set = %v", set.IDs())
		}
	case err := <-w.Errors:
		t.Fatalf("watch error = %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload within 5s")
	}
}
