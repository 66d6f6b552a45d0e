package tables

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const sheet = `Hero,Ana Enemy,Ana Ally,Genji Enemy,Mercy Ally,Zarya Enemy,Zarya Ally
Ana,,,"1,5",2,-1,
Genji,3,4,,,2,"0,5"
Mercy,-2,5,oops,,,1
`

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"1.5", 1.5, false},
		{"1,5", 1.5, false},
		{" -3,25 ", -3.25, false},
		{"12", 12, false},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDecimal(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDecimal(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDecimal(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestReadMatchups(t *testing.T) {
	ally, enemy, err := ReadMatchups(strings.NewReader(sheet))
	if err != nil {
		t.Fatalf("ReadMatchups() error: %v", err)
	}

	if got := enemy.Heroes(); !reflect.DeepEqual(got, []string{"Ana", "Genji", "Zarya"}) {
		t.Errorf("enemy heroes = %v", got)
	}
	if got := ally.Heroes(); !reflect.DeepEqual(got, []string{"Ana", "Mercy", "Zarya"}) {
		t.Errorf("ally heroes = %v", got)
	}

	tests := []struct {
		name   string
		table  *MatchupTable
		hero   string
		other  string
		want   float64
		wantOK bool
	}{
		{"comma decimal", enemy, "Genji", "Ana", 1.5, true},
		{"plain", enemy, "Ana", "Genji", 3, true},
		{"negative", enemy, "Ana", "Mercy", -2, true},
		{"empty cell absent", enemy, "Ana", "Ana", 0, false},
		{"unparsable absent", enemy, "Genji", "Mercy", 0, false},
		{"ally comma", ally, "Zarya", "Genji", 0.5, true},
		{"ally", ally, "Mercy", "Ana", 2, true},
		{"unknown hero", ally, "Tracer", "Ana", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.table.Get(tt.hero, tt.other)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Get(%s, %s) = %v, %v; want %v, %v", tt.hero, tt.other, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestReadMatchupsDuplicateRowKeepsFirst(t *testing.T) {
	data := `Hero,Ana Enemy,Genji Enemy
Mercy,2,
Mercy,9,4
`
	_, enemy, err := ReadMatchups(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadMatchups() error: %v", err)
	}
	if got, _ := enemy.Get("Ana", "Mercy"); got != 2 {
		t.Errorf("Ana vs Mercy = %v, want 2 from the first row", got)
	}
	// the later row never fills cells the first one left empty
	if got, ok := enemy.Get("Genji", "Mercy"); ok {
		t.Errorf("Genji vs Mercy = %v, want absent", got)
	}
}

func TestPickableIntersection(t *testing.T) {
	ally, enemy, err := ReadMatchups(strings.NewReader(sheet))
	if err != nil {
		t.Fatal(err)
	}
	set := &Set{Ally: ally, Enemy: enemy}

	// Genji has no Ally column, Mercy no Enemy column
	if got := set.Pickable(); !reflect.DeepEqual(got, []string{"Ana", "Zarya"}) {
		t.Errorf("Pickable() = %v, want [Ana Zarya]", got)
	}
}

func TestReadWinrates(t *testing.T) {
	data := `Hero,Winrate Master,Winrate Grandmaster,Average,Score
Ana,"50,1","51,3","50,70","1,14"
Genji,"48,0",,,
Mercy,1,2,3,n/a
,1,2,3,4
Zarya,1,2,3,"-2,5"
`
	table, err := ReadWinrates(strings.NewReader(data), 0)
	if err != nil {
		t.Fatalf("ReadWinrates() error: %v", err)
	}

	tests := []struct {
		hero   string
		want   float64
		wantOK bool
	}{
		{"Ana", 1.14, true},
		{"Genji", 0, false},
		{"Mercy", 0, true},
		{"Zarya", -2.5, true},
	}
	for _, tt := range tests {
		got, ok := table.Get(tt.hero)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Get(%s) = %v, %v; want %v, %v", tt.hero, got, ok, tt.want, tt.wantOK)
		}
	}
	if table.Len() != 3 {
		t.Errorf("Len() = %d, want 3", table.Len())
	}
	if got := table.Lookup("Genji", 0); got != 0 {
		t.Errorf("Lookup(Genji) = %v, want fallback 0", got)
	}
}

func TestWinrateTop(t *testing.T) {
	table := NewWinrateTable()
	table.Set("A", 1)
	table.Set("B", 3)
	table.Set("C", 3)
	table.Set("D", -1)

	got := table.Top(3)
	want := []Entry{{"B", 3}, {"C", 3}, {"A", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Top(3) = %v, want %v", got, want)
	}
	if len(table.Top(10)) != 4 {
		t.Error("Top(n) larger than the table should return every entry")
	}
}

func TestCSVSource(t *testing.T) {
	dir := t.TempDir()
	matchups := filepath.Join(dir, "heroes.csv")
	os.WriteFile(matchups, []byte(sheet), 0o644)

	src := &CSVSource{
		MatchupsPath: matchups,
		SheetPath:    func(m string) string { return filepath.Join(dir, m+".csv") },
	}

	set, err := src.LoadTables(context.Background(), "")
	if err != nil {
		t.Fatalf("no map selected should not require a winrate sheet: %v", err)
	}
	if set.Winrates.Len() != 0 {
		t.Error("expected an empty winrate table")
	}

	if _, err := src.LoadTables(context.Background(), "Ilios"); !errors.Is(err, ErrMissingTable) {
		t.Errorf("selected map without winrates: expected ErrMissingTable, got %v", err)
	}

	missing := &CSVSource{MatchupsPath: filepath.Join(dir, "nope.csv")}
	if _, err := missing.LoadTables(context.Background(), ""); !errors.Is(err, ErrMissingTable) {
		t.Errorf("missing matchups: expected ErrMissingTable, got %v", err)
	}
}

func TestCSVSourceReadsSelectedMapSheet(t *testing.T) {
	dir := t.TempDir()
	matchups := filepath.Join(dir, "heroes.csv")
	os.WriteFile(matchups, []byte(sheet), 0o644)
	os.WriteFile(filepath.Join(dir, "Ilios.csv"), []byte("Hero,M,G,A,Score\nGenji,,,,4\n"), 0o644)

	src := &CSVSource{
		MatchupsPath:  matchups,
		SheetPath:     func(m string) string { return filepath.Join(dir, m+".csv") },
		WinrateColumn: DefaultWinrateColumn,
	}

	set, err := src.LoadTables(context.Background(), "Ilios")
	if err != nil {
		t.Fatalf("LoadTables(Ilios) error: %v", err)
	}
	if v, ok := set.Winrates.Get("Genji"); !ok || v != 4 {
		t.Errorf("Ilios Genji = %v, %v; want 4", v, ok)
	}

	// Switching to a map without its own sheet must not reuse Ilios scores
	if _, err := src.LoadTables(context.Background(), "Busan"); !errors.Is(err, ErrMissingTable) {
		t.Errorf("LoadTables(Busan) error = %v, want ErrMissingTable", err)
	}

	noSheets := &CSVSource{MatchupsPath: matchups}
	if _, err := noSheets.LoadTables(context.Background(), "Ilios"); !errors.Is(err, ErrMissingTable) {
		t.Errorf("no sheet location: error = %v, want ErrMissingTable", err)
	}
}
