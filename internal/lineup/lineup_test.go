package lineup

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestNewRoster(t *testing.T) {
	tests := []struct {
		name        string
		labels      []string
		wantAllies  []string
		wantEnemies []string
	}{
		{"full", []string{"a1", "a2", "a3", "a4", "e1", "e2", "e3", "e4", "e5"},
			[]string{"a1", "a2", "a3", "a4"}, []string{"e1", "e2", "e3", "e4", "e5"}},
		{"short", []string{"a1", "a2"}, []string{"a1", "a2"}, nil},
		{"overflow dropped", []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"},
			[]string{"1", "2", "3", "4"}, []string{"5", "6", "7", "8", "9"}},
		{"none slot kept", []string{"a1", "", "a3", "a4", "e1"},
			[]string{"a1", "", "a3", "a4"}, []string{"e1"}},
		{"empty", nil, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewRoster(tt.labels)
			if !reflect.DeepEqual(got.Allies, tt.wantAllies) {
				t.Errorf("Allies = %v, want %v", got.Allies, tt.wantAllies)
			}
			if !reflect.DeepEqual(got.Enemies, tt.wantEnemies) {
				t.Errorf("Enemies = %v, want %v", got.Enemies, tt.wantEnemies)
			}
		})
	}
}

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lineup.txt")
	roster := Roster{
		Allies:  []string{"Ana", "", "Reinhardt", "Genji"},
		Enemies: []string{"Mercy", "Zarya", "Tracer", "Sojourn", "Kiriko"},
	}

	if err := Write(path, roster); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	raw, _ := os.ReadFile(path)
	want := "Ana\n\nReinhardt\nGenji\nMercy\nZarya\nTracer\nSojourn\nKiriko\n"
	if string(raw) != want {
		t.Errorf("file = %q, want %q", raw, want)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if !reflect.DeepEqual(got, roster) {
		t.Errorf("Read() = %+v, want %+v", got, roster)
	}
}

func TestWriteEmptyRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lineup.txt")
	os.WriteFile(path, []byte("stale\n"), 0o644)

	if err := Write(path, Roster{}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	raw, _ := os.ReadFile(path)
	if len(raw) != 0 {
		t.Errorf("empty roster should truncate the file, got %q", raw)
	}
}
