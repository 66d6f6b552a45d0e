package vision

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// pattern builds a w x h grid from row-major values
func pattern(w, h int, vals ...uint8) *Gray {
	g := NewGray(w, h)
	copy(g.Pix, vals)
	return g
}

func testStore() *TemplateStore {
	return NewTemplateStore(
		Template{Label: "A", Pixels: pattern(2, 2, 0, 255, 255, 0)},
		Template{Label: "B", Pixels: pattern(2, 2, 255, 0, 0, 255)},
		Template{Label: "C", Pixels: pattern(2, 2, 255, 255, 0, 0)},
	)
}

func writePNG(t *testing.T, path string, g *Gray) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			img.SetGray(x, y, color.Gray{Y: g.At(x, y)})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func TestDistance(t *testing.T) {
	black := pattern(2, 2, 0, 0, 0, 0)
	white := pattern(2, 2, 255, 255, 255, 255)
	half := pattern(2, 2, 0, 255, 0, 255)

	tests := []struct {
		name string
		a, b *Gray
		want float64
	}{
		{"identical", half, half, 0},
		{"opposite", black, white, 1},
		{"half differ", black, half, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Distance(tt.a, tt.b)
			if err != nil {
				t.Fatalf("Distance() error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Distance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDistanceShapeMismatch(t *testing.T) {
	_, err := Distance(NewGray(2, 2), NewGray(3, 2))
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestResampleNearest(t *testing.T) {
	src := pattern(2, 2, 10, 20, 30, 40)
	got := src.Resample(4, 4)

	want := []uint8{
		10, 10, 20, 20,
		10, 10, 20, 20,
		30, 30, 40, 40,
		30, 30, 40, 40,
	}
	for i, v := range want {
		if got.Pix[i] != v {
			t.Fatalf("Resample pix[%d] = %d, want %d (got %v)", i, got.Pix[i], v, got.Pix)
		}
	}

	if same := src.Resample(2, 2); same != src {
		t.Error("Resample to the same shape should return the grid unchanged")
	}
}

func TestTemplateSelfDistanceIsZero(t *testing.T) {
	for _, tpl := range testStore().Templates() {
		d, err := Distance(tpl.Pixels, tpl.Pixels)
		if err != nil || d != 0 {
			t.Errorf("template %s: distance to itself = %v (err %v), want 0", tpl.Label, d, err)
		}
	}
}

func TestNewRecognizerEmptyStore(t *testing.T) {
	if _, err := NewRecognizer(NewTemplateStore()); !errors.Is(err, ErrEmptyTemplateStore) {
		t.Errorf("expected ErrEmptyTemplateStore, got %v", err)
	}
	if _, err := NewRecognizer(nil); !errors.Is(err, ErrEmptyTemplateStore) {
		t.Errorf("nil store: expected ErrEmptyTemplateStore, got %v", err)
	}
}

func TestMatchRoundTrip(t *testing.T) {
	store := testStore()
	r, err := NewRecognizer(store)
	if err != nil {
		t.Fatal(err)
	}

	for _, tpl := range store.Templates() {
		got := r.Match(Capture{Source: tpl.Label, Pixels: tpl.Pixels})
		if got.Label != tpl.Label {
			t.Errorf("capture of %s recognized as %q", tpl.Label, got.Label)
		}
		if got.Distance != 0 {
			t.Errorf("capture of %s distance = %v, want 0", tpl.Label, got.Distance)
		}
	}
}

func TestMatchTieGoesToFirstTemplate(t *testing.T) {
	same := pattern(2, 2, 1, 2, 3, 4)
	r, _ := NewRecognizer(NewTemplateStore(
		Template{Label: "first", Pixels: same},
		Template{Label: "second", Pixels: same},
	))

	got := r.Match(Capture{Pixels: pattern(2, 2, 1, 2, 3, 4)})
	if got.Label != "first" {
		t.Errorf("tie resolved to %q, want first", got.Label)
	}
}

func TestMatchResamplesTemplateToCapture(t *testing.T) {
	r, _ := NewRecognizer(testStore())

	// A 4x4 upscale of template A
	capture := pattern(4, 4,
		0, 0, 255, 255,
		0, 0, 255, 255,
		255, 255, 0, 0,
		255, 255, 0, 0,
	)
	got := r.Match(Capture{Pixels: capture})
	if got.Label != "A" || got.Distance != 0 {
		t.Errorf("Match() = %q (%v), want A (0)", got.Label, got.Distance)
	}
	if got.Capture.Pixels.Width != 4 {
		t.Error("capture must keep its own resolution")
	}
}

func TestMatchEmptyCapture(t *testing.T) {
	r, _ := NewRecognizer(testStore())
	got := r.Match(Capture{Source: "blank"})
	if got.Matched() {
		t.Errorf("empty capture matched %q", got.Label)
	}
	if got.Distance != 1 {
		t.Errorf("empty capture distance = %v, want 1", got.Distance)
	}
}

func TestIsImageFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"Ana.png", true},
		{"Genji.JPG", true},
		{"dir/Mercy.jpeg", true},
		{"Zarya.bmp", true},
		{"Kiriko.webp", true},
		{"notes.txt", false},
		{"full.png.tmp", false},
		{"README", false},
	}
	for _, tt := range tests {
		if got := IsImageFile(tt.path); got != tt.want {
			t.Errorf("IsImageFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestLoadTemplates(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "Ana.png"), pattern(2, 2, 0, 255, 255, 0))
	writePNG(t, filepath.Join(dir, "Mercy.png"), pattern(2, 2, 255, 0, 0, 255))
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644)
	os.WriteFile(filepath.Join(dir, "Broken.png"), []byte("not a png"), 0o644)

	store, err := LoadTemplates(dir, 4)
	if err != nil {
		t.Fatalf("LoadTemplates() error: %v", err)
	}

	labels := store.Labels()
	if len(labels) != 2 || labels[0] != "Ana" || labels[1] != "Mercy" {
		t.Errorf("labels = %v, want [Ana Mercy]", labels)
	}
	for _, tpl := range store.Templates() {
		if tpl.Pixels.Width != 4 || tpl.Pixels.Height != 4 {
			t.Errorf("template %s is %dx%d, want 4x4", tpl.Label, tpl.Pixels.Width, tpl.Pixels.Height)
		}
	}
}

func TestLoadTemplatesEmpty(t *testing.T) {
	if _, err := LoadTemplates(t.TempDir(), 42); !errors.Is(err, ErrEmptyTemplateStore) {
		t.Errorf("empty dir: expected ErrEmptyTemplateStore, got %v", err)
	}
	if _, err := LoadTemplates(filepath.Join(t.TempDir(), "missing"), 42); !errors.Is(err, ErrEmptyTemplateStore) {
		t.Errorf("missing dir: expected ErrEmptyTemplateStore, got %v", err)
	}
}

func TestLoadVariantOrderAndSkips(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	// Written out of name order; mtime decides slot order
	files := []struct {
		name string
		age  time.Duration
	}{
		{"b.png", 3 * time.Second},
		{"a.png", 1 * time.Second},
		{"c.png", 2 * time.Second},
	}
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		writePNG(t, path, pattern(2, 2, 0, 0, 0, 0))
		mt := now.Add(-f.age)
		if err := os.Chtimes(path, mt, mt); err != nil {
			t.Fatal(err)
		}
	}
	os.WriteFile(filepath.Join(dir, "d.png"), []byte("garbage"), 0o644)

	v := LoadVariant(dir, "0perk")
	if len(v.Captures) != 3 {
		t.Fatalf("captures = %d, want 3", len(v.Captures))
	}
	want := []string{"b.png", "c.png", "a.png"}
	for i, c := range v.Captures {
		if filepath.Base(c.Source) != want[i] {
			t.Errorf("slot %d = %s, want %s", i, filepath.Base(c.Source), want[i])
		}
	}
	if len(v.Skipped) != 1 {
		t.Errorf("skipped = %v, want the corrupt file", v.Skipped)
	}
}

func TestLoadVariantMissingDir(t *testing.T) {
	v := LoadVariant(filepath.Join(t.TempDir(), "nope"), "2perk")
	if v.ID != "2perk" || len(v.Captures) != 0 {
		t.Errorf("missing dir should give an empty variant, got %+v", v)
	}
}

func TestSelectVariantPrefersExactCopies(t *testing.T) {
	store := testStore()
	r, _ := NewRecognizer(store)
	tpls := store.Templates()

	good := Variant{ID: "good", Captures: []Capture{
		{Source: "a", Pixels: tpls[0].Pixels},
		{Source: "b", Pixels: tpls[1].Pixels},
	}}
	bad := Variant{ID: "bad", Captures: []Capture{
		{Source: "n1", Pixels: pattern(2, 2, 128, 64, 200, 10)},
		{Source: "n2", Pixels: pattern(2, 2, 90, 180, 30, 240)},
	}}
	empty := Variant{ID: "empty"}

	sel, ok := SelectVariant(r, []Variant{bad, empty, good})
	if !ok {
		t.Fatal("expected a roster")
	}
	if sel.Winner.VariantID != "good" {
		t.Errorf("winner = %s, want good", sel.Winner.VariantID)
	}
	if sel.Winner.Quality != 0 {
		t.Errorf("winner quality = %v, want 0", sel.Winner.Quality)
	}
	if len(sel.Evaluations) != 3 {
		t.Errorf("evaluations = %d, want 3", len(sel.Evaluations))
	}
	if !math.IsInf(sel.Evaluations[1].Quality, 1) {
		t.Errorf("empty variant quality = %v, want +Inf", sel.Evaluations[1].Quality)
	}

	labels := sel.Winner.Labels()
	if len(labels) != 2 || labels[0] != "A" || labels[1] != "B" {
		t.Errorf("labels = %v, want [A B]", labels)
	}
}

func TestSelectVariantTieKeepsEarlier(t *testing.T) {
	store := testStore()
	r, _ := NewRecognizer(store)
	a := store.Templates()[0].Pixels

	first := Variant{ID: "first", Captures: []Capture{{Pixels: a}}}
	second := Variant{ID: "second", Captures: []Capture{{Pixels: a}}}

	sel, ok := SelectVariant(r, []Variant{first, second})
	if !ok || sel.Winner.VariantID != "first" {
		t.Errorf("winner = %s (ok=%v), want first", sel.Winner.VariantID, ok)
	}
}

func TestSelectVariantNoRoster(t *testing.T) {
	r, _ := NewRecognizer(testStore())

	sel, ok := SelectVariant(r, []Variant{{ID: "0perk"}, {ID: "1perk"}})
	if ok {
		t.Fatal("expected no roster when every variant is empty")
	}
	if !sel.Roster().IsEmpty() {
		t.Errorf("roster = %+v, want empty", sel.Roster())
	}

	if _, ok := SelectVariant(r, nil); ok {
		t.Error("no variants should report no roster")
	}
}

func TestSelectionRosterSplit(t *testing.T) {
	store := testStore()
	r, _ := NewRecognizer(store)
	tpls := store.Templates()

	var caps []Capture
	for i := 0; i < 10; i++ {
		caps = append(caps, Capture{Pixels: tpls[i%3].Pixels})
	}
	sel, ok := SelectVariant(r, []Variant{{ID: "v", Captures: caps}})
	if !ok {
		t.Fatal("expected a roster")
	}

	roster := sel.Roster()
	if len(roster.Allies) != 4 || len(roster.Enemies) != 5 {
		t.Fatalf("roster sizes = %d/%d, want 4/5", len(roster.Allies), len(roster.Enemies))
	}
	if roster.Allies[0] != "A" || roster.Allies[3] != "A" || roster.Enemies[0] != "B" {
		t.Errorf("unexpected slot order: %+v", roster)
	}
}
