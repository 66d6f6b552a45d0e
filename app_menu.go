package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"heropick/internal/capture"
	"heropick/internal/config"
	"heropick/internal/heroes"
	"heropick/internal/rates"
)

// Menu modes. The hotkey only fires the pipeline in modeMain.
const (
	modeMain int32 = iota
	modeAway
)

func (a *App) inMainMenu() bool {
	return a.mode.Load() == modeMain
}

func printMainMenu(w io.Writer) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " 1. Run hero pick")
	fmt.Fprintln(w, " 2. Select map")
	fmt.Fprintln(w, " 3. Select role")
	fmt.Fprintln(w, " 4. Favorites")
	fmt.Fprintln(w, " 5. Download map win rates")
	fmt.Fprintln(w, " 6. Clear map")
	fmt.Fprintln(w, " 7. Exit")
	fmt.Fprintln(w, " 8. Update tables")
	fmt.Fprintln(w, "==================================================")
}

// runMenu reads commands from in until exit or end of input
func (a *App) runMenu(ctx context.Context, in io.Reader) {
	scanner := bufio.NewScanner(in)
	a.mode.Store(modeMain)
	printMainMenu(a.out)

	for {
		fmt.Fprint(a.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(a.out, "\nInput closed.")
			return
		}
		cmd := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if cmd == "" {
			continue
		}

		switch cmd {
		case "1", "run":
			a.runFromMenu(ctx)
		case "2", "map":
			a.away(func() { a.selectMap(ctx, scanner) })
		case "3", "role":
			a.away(func() { a.selectRole(scanner) })
		case "4", "favorite", "fav":
			a.away(func() { a.editFavorites(scanner) })
		case "5":
			a.away(func() { a.downloadRates(ctx) })
		case "6":
			a.away(a.clearMap)
		case "7", "exit", "quit":
			fmt.Fprintln(a.out, "Exiting...")
			return
		case "8", "update":
			a.away(func() { fmt.Fprintln(a.out, a.UpdateTables(false)) })
		default:
			fmt.Fprintln(a.out, "Unknown command.")
			printMainMenu(a.out)
		}
	}
}

// away leaves the main menu while fn runs so the hotkey stays quiet
func (a *App) away(fn func()) {
	a.mode.Store(modeAway)
	defer func() {
		a.mode.Store(modeMain)
		fmt.Fprintln(a.out, "\nBack to main menu.")
	}()
	fn()
}

// runFromMenu runs the pipeline and reports errors instead of exiting
func (a *App) runFromMenu(ctx context.Context) {
	fmt.Fprintln(a.out, ">>> Running hero pick...")
	if _, err := a.RunPipeline(ctx); err != nil {
		if errors.Is(err, ErrPipelineBusy) {
			fmt.Fprintln(a.out, "A run is already in progress.")
			return
		}
		fmt.Printf("[App] Pipeline failed: %v\n", err)
	}
}

// triggerPipeline is called from the hotkey; it is ignored outside the main menu
func (a *App) triggerPipeline() {
	if !a.inMainMenu() {
		return
	}
	go a.runFromMenu(a.ctx)
}

func prompt(w io.Writer, scanner *bufio.Scanner, label string) (string, bool) {
	fmt.Fprint(w, label)
	if !scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(scanner.Text()), true
}

// selectMap resolves a typed map name and prepares its win-rate sheet
func (a *App) selectMap(ctx context.Context, scanner *bufio.Scanner) {
	input, ok := prompt(a.out, scanner, "Map: ")
	if !ok || input == "" {
		return
	}
	name, ok := heroes.FindMap(input)
	if !ok {
		fmt.Fprintf(a.out, "Map not found: %s\n", input)
		return
	}
	a.setMap(ctx, name)
}

func (a *App) setMap(ctx context.Context, name string) {
	a.updatePlayer(func(p *config.PlayerConfig) { p.Map = name })
	fmt.Fprintf(a.out, "Map set to %s\n", name)

	switch {
	case strings.ToLower(a.cfg.Tables.Source) == config.SourceCSV:
		if _, err := rates.Extract(a.cfg.Paths.RatesDir, name, rates.SheetPath(a.cfg.Paths.Winrates, name)); err != nil {
			fmt.Printf("[Rates] %v\n", err)
			fmt.Fprintln(a.out, "Use option 5 to download map win rates.")
			return
		}
	case a.tableDB != nil:
		maps, err := a.tableDB.MapsWithData(ctx)
		if err != nil {
			fmt.Printf("[Tables] %v\n", err)
			return
		}
		if !containsString(maps, rates.Slug(name)) {
			fmt.Fprintf(a.out, "No win rates stored for %s. Use option 8 to update tables.\n", name)
			return
		}
	}
	a.showMapMeta(ctx)
}

func (a *App) selectRole(scanner *bufio.Scanner) {
	roles := []capture.Role{capture.RoleOpen, capture.RoleTank, capture.RoleDamage, capture.RoleSupport}
	for i, r := range roles {
		fmt.Fprintf(a.out, " %d. %s\n", i+1, r)
	}
	input, ok := prompt(a.out, scanner, "Role: ")
	if !ok || input == "" {
		return
	}

	var role capture.Role
	if len(input) == 1 && input[0] >= '1' && int(input[0]-'0') <= len(roles) {
		role = roles[input[0]-'1']
	} else {
		r, err := capture.ParseRole(input)
		if err != nil {
			fmt.Fprintln(a.out, err)
			return
		}
		role = r
	}

	a.updatePlayer(func(p *config.PlayerConfig) { p.Role = string(role) })
	fmt.Fprintf(a.out, "Selected: %s\n", role)
}

func (a *App) editFavorites(scanner *bufio.Scanner) {
	for {
		fmt.Fprintln(a.out, "\n1. Add hero")
		fmt.Fprintln(a.out, "2. Remove hero")
		fmt.Fprintln(a.out, "3. List favorites")
		fmt.Fprintf(a.out, "4. Only show favorites (%v)\n", a.player().OnlyFavorites)
		fmt.Fprintln(a.out, "5. Back")

		choice, ok := prompt(a.out, scanner, "\nOption: ")
		if !ok {
			return
		}
		switch choice {
		case "1", "2":
			input, ok := prompt(a.out, scanner, "Hero: ")
			if !ok {
				return
			}
			name, found := heroes.FindHero(input)
			if !found {
				fmt.Fprintln(a.out, "Hero not found")
				continue
			}
			if choice == "1" {
				a.addFavorite(name)
			} else {
				a.removeFavorite(name)
			}
		case "3":
			a.listFavorites()
		case "4":
			a.updatePlayer(func(p *config.PlayerConfig) { p.OnlyFavorites = !p.OnlyFavorites })
		case "5":
			return
		default:
			fmt.Fprintln(a.out, "Invalid option")
		}
	}
}

func (a *App) addFavorite(name string) bool {
	added := false
	a.updatePlayer(func(p *config.PlayerConfig) {
		for _, f := range p.Favorites {
			if f == name {
				return
			}
		}
		p.Favorites = append(p.Favorites, name)
		added = true
	})
	if !added {
		fmt.Fprintf(a.out, "%s is already a favorite\n", name)
		return false
	}
	fmt.Fprintf(a.out, "Added %s\n", name)
	return true
}

func (a *App) removeFavorite(name string) bool {
	removed := false
	a.updatePlayer(func(p *config.PlayerConfig) {
		for i, f := range p.Favorites {
			if f == name {
				p.Favorites = append(p.Favorites[:i:i], p.Favorites[i+1:]...)
				removed = true
				return
			}
		}
	})
	if !removed {
		fmt.Fprintf(a.out, "%s is not a favorite\n", name)
		return false
	}
	fmt.Fprintf(a.out, "Removed %s\n", name)
	return true
}

func (a *App) listFavorites() {
	favorites := a.player().Favorites
	if len(favorites) == 0 {
		fmt.Fprintln(a.out, "  No favorites")
		return
	}
	grouped := heroes.ByRole(favorites)
	for _, r := range heroes.RoleOrder {
		for _, name := range grouped[r] {
			fmt.Fprintf(a.out, "  %s (%s)\n", name, r)
		}
	}
}

// downloadRates scrapes every map's rates pages, then refreshes the selected map
func (a *App) downloadRates(ctx context.Context) {
	saved, err := rates.NewFetcher().FetchAll(ctx, heroes.Maps, a.cfg.Paths.RatesDir)
	if err != nil {
		fmt.Printf("[Rates] Download stopped: %v\n", err)
	}
	fmt.Fprintf(a.out, "Saved %d pages to %s\n", saved, a.cfg.Paths.RatesDir)

	if mapName := a.player().Map; mapName != "" {
		a.setMap(ctx, mapName)
	}
}

func (a *App) clearMap() {
	var cleared string
	a.updatePlayer(func(p *config.PlayerConfig) {
		cleared, p.Map = p.Map, ""
	})
	if cleared == "" {
		fmt.Fprintln(a.out, "No map selected")
		return
	}
	fmt.Fprintf(a.out, "Cleared map %s\n", cleared)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
