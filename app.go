package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"heropick/internal/capture"
	"heropick/internal/config"
	"heropick/internal/data"
	"heropick/internal/lineup"
	"heropick/internal/overlay"
	"heropick/internal/rates"
	"heropick/internal/scoring"
	"heropick/internal/stats"
	"heropick/internal/tables"
	"heropick/internal/vision"
)

// ErrPipelineBusy means a pipeline run was requested while another was in progress
var ErrPipelineBusy = errors.New("pipeline already running")

// App struct
type App struct {
	ctx        context.Context
	cfg        *config.Config
	cfgPath    string
	out        io.Writer
	recognizer *vision.Recognizer
	source     tables.Source
	tableDB    *data.TableDB
	provider   *stats.Provider
	hub        *overlay.Hub
	grabber    capture.Grabber

	runMu   sync.Mutex
	cfgMu   sync.RWMutex // guards cfg.Player
	busy    atomic.Bool
	mode    atomic.Int32
	lastRun atomic.Int64 // unix nanos when the last recognition finished
}

// PipelineResult is the outcome of one recognition and scoring run
type PipelineResult struct {
	Variant  string              `json:"variant"`
	Quality  float64             `json:"quality"`
	Roster   lineup.Roster       `json:"roster"`
	Ranking  []scoring.HeroScore `json:"ranking"`
	NoRoster bool                `json:"noRoster"`
}

// NewApp creates a new App application struct
func NewApp(cfg *config.Config, cfgPath string) *App {
	a := &App{
		cfg:     cfg,
		cfgPath: cfgPath,
		out:     os.Stdout,
		ctx:     context.Background(),
	}
	if cfg.Capture.ScreenshotFile != "" {
		a.grabber = capture.FileGrabber{Path: cfg.Capture.ScreenshotFile}
	} else {
		a.grabber = capture.ScreenGrabber{Display: cfg.Capture.Display}
	}
	return a
}

// startup loads templates and opens the table source
func (a *App) startup(ctx context.Context) error {
	a.ctx = ctx

	store, err := vision.LoadTemplates(a.cfg.Paths.Templates, a.cfg.Recognition.TemplateSize)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	a.recognizer, err = vision.NewRecognizer(store)
	if err != nil {
		return err
	}

	if err := a.openTableSource(ctx); err != nil {
		return err
	}

	if a.cfg.Overlay.Enabled {
		a.hub = overlay.NewHub()
		go func() {
			if err := a.hub.ListenAndServe(ctx, a.cfg.Overlay.Addr); err != nil {
				fmt.Printf("[Overlay] %v\n", err)
			}
		}()
	}
	return nil
}

// openTableSource picks the matchup/win-rate backend from config
func (a *App) openTableSource(ctx context.Context) error {
	switch strings.ToLower(a.cfg.Tables.Source) {
	case config.SourceSQLite:
		db, err := data.NewTableDB(a.cfg.Paths.Database)
		if err != nil {
			return err
		}
		a.tableDB = db
		a.source = db
		if !db.HasData() {
			if url := a.manifestURL(); url != "" {
				if err := db.CheckForUpdates(url); err != nil {
					fmt.Printf("[Tables] Initial download failed: %v\n", err)
				}
			} else {
				fmt.Println("[Tables] Database is empty and no manifest URL is configured")
			}
		}
	case config.SourcePostgres:
		url := os.Getenv("DATABASE_URL")
		if url == "" {
			return fmt.Errorf("DATABASE_URL environment variable not set")
		}
		provider, err := stats.NewProvider(ctx, url)
		if err != nil {
			return err
		}
		if _, err := provider.FetchVersion(ctx); err != nil {
			fmt.Printf("[Stats] %v\n", err)
		}
		a.provider = provider
		a.source = provider
	default:
		sheetDir := a.cfg.Paths.Winrates
		a.source = &tables.CSVSource{
			MatchupsPath: a.cfg.Paths.Matchups,
			SheetPath: func(mapName string) string {
				return rates.SheetPath(sheetDir, mapName)
			},
			WinrateColumn: a.cfg.Tables.WinrateColumn,
		}
	}
	return nil
}

// shutdown releases database connections
func (a *App) shutdown() {
	if a.hub != nil {
		a.hub.Close()
	}
	if a.tableDB != nil {
		a.tableDB.Close()
	}
	if a.provider != nil {
		a.provider.Close()
	}
}

// RunPipeline grabs the screen, crops every variant and recognizes and scores the roster
func (a *App) RunPipeline(ctx context.Context) (*PipelineResult, error) {
	if !a.busy.CompareAndSwap(false, true) {
		return nil, ErrPipelineBusy
	}
	defer a.busy.Store(false)

	unlock := a.lockRun()
	defer unlock()

	player := a.player()
	set, err := a.loadTables(ctx, player.Map)
	if err != nil {
		return nil, err
	}

	a.emitStatus("capturing")
	full, err := a.grabber.Grab()
	if err != nil {
		a.emitStatus("capture failed")
		return nil, fmt.Errorf("failed to grab screen: %w", err)
	}

	cropper := capture.NewCropper(capture.DefaultLayout(), player.ParsedRole())
	if _, err := cropper.WriteVariants(full, a.cfg.Paths.CaptureDir); err != nil {
		return nil, err
	}

	return a.recognize(set, player)
}

// recognizeAndScore runs recognition over the variant directories already on
// disk, writes the lineup and prints the ranking
func (a *App) recognizeAndScore(ctx context.Context) (*PipelineResult, error) {
	unlock := a.lockRun()
	defer unlock()

	player := a.player()
	set, err := a.loadTables(ctx, player.Map)
	if err != nil {
		return nil, err
	}
	return a.recognize(set, player)
}

// lockRun serializes runs over the capture directories and the lineup file
func (a *App) lockRun() func() {
	a.runMu.Lock()
	return func() {
		a.lastRun.Store(time.Now().UnixNano())
		a.runMu.Unlock()
	}
}

// loadTables loads every table before recognition so a missing table aborts
// the run before anything is written
func (a *App) loadTables(ctx context.Context, mapName string) (*tables.Set, error) {
	set, err := a.source.LoadTables(ctx, mapName)
	if err != nil {
		a.emitStatus("tables unavailable")
		return nil, fmt.Errorf("failed to load tables: %w", err)
	}
	return set, nil
}

// recognize selects the best variant, writes the lineup and ranks the picks.
// Callers hold runMu.
func (a *App) recognize(set *tables.Set, player config.PlayerConfig) (*PipelineResult, error) {
	a.emitStatus("recognizing")

	layout := capture.DefaultLayout()
	variants := make([]vision.Variant, 0, len(layout.Variants))
	for _, v := range layout.Variants {
		variants = append(variants, vision.LoadVariant(filepath.Join(a.cfg.Paths.CaptureDir, v.ID), v.ID))
	}

	sel, ok := vision.SelectVariant(a.recognizer, variants)
	if !ok {
		fmt.Fprintln(a.out, "No roster found.")
		if err := lineup.Write(a.cfg.Paths.Lineup, lineup.Roster{}); err != nil {
			return nil, err
		}
		a.emitStatus("no roster")
		return &PipelineResult{NoRoster: true}, nil
	}

	roster := sel.Roster()
	fmt.Printf("[App] Best variant: %s (%.4f)\n", sel.Winner.VariantID, sel.Winner.Quality)
	for _, res := range sel.Winner.Results {
		if !res.Matched() {
			fmt.Printf("[App] Unrecognized slot: %s\n", res.Capture.Source)
		}
	}

	scores := scoring.Score(roster, set, a.cfg.Weights())
	if player.OnlyFavorites && len(player.Favorites) > 0 {
		scores = scoring.Filter(scores, player.Favorites)
	}
	ranked := scoring.Rank(scores)

	if err := lineup.Write(a.cfg.Paths.Lineup, roster); err != nil {
		return nil, err
	}
	a.emitRoster(sel.Winner.VariantID, roster)
	a.emitTeamComp(analyzeTeamComp(roster))

	if err := scoring.Render(a.out, ranked); err != nil {
		return nil, err
	}
	a.emitRanking(ranked, player.Map)
	a.emitStatus("ready")

	return &PipelineResult{
		Variant: sel.Winner.VariantID,
		Quality: sel.Winner.Quality,
		Roster:  roster,
		Ranking: ranked,
	}, nil
}

// player returns a copy of the menu-controlled settings
func (a *App) player() config.PlayerConfig {
	a.cfgMu.RLock()
	defer a.cfgMu.RUnlock()
	p := a.cfg.Player
	p.Favorites = append([]string(nil), a.cfg.Player.Favorites...)
	return p
}

// updatePlayer applies a menu change and persists the config
func (a *App) updatePlayer(fn func(p *config.PlayerConfig)) {
	a.cfgMu.Lock()
	defer a.cfgMu.Unlock()
	fn(&a.cfg.Player)
	a.saveConfig()
}

// manifestURL returns the snapshot manifest from config or the environment
func (a *App) manifestURL() string {
	if a.cfg.Tables.ManifestURL != "" {
		return a.cfg.Tables.ManifestURL
	}
	return os.Getenv("TABLES_MANIFEST_URL")
}

// saveConfig persists menu choices. Callers hold cfgMu.
func (a *App) saveConfig() {
	if a.cfgPath == "" {
		return
	}
	if err := a.cfg.Save(a.cfgPath); err != nil {
		fmt.Printf("[App] Failed to save config: %v\n", err)
	}
}
