package stats

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"heropick/internal/data"
	"heropick/internal/rates"
	"heropick/internal/tables"
)

const schema = `
	CREATE TABLE IF NOT EXISTS data_version (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		version TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS matchup_heroes (
		kind TEXT NOT NULL,
		hero TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (kind, hero)
	);

	CREATE TABLE IF NOT EXISTS matchups (
		kind TEXT NOT NULL,
		hero TEXT NOT NULL,
		other TEXT NOT NULL,
		value DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (kind, hero, other)
	);

	CREATE TABLE IF NOT EXISTS winrates (
		map TEXT NOT NULL,
		hero TEXT NOT NULL,
		value DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (map, hero)
	);
`

// Provider reads matchup and win-rate tables from our PostgreSQL database
type Provider struct {
	pool           *pgxpool.Pool
	currentVersion string
}

// NewProvider creates a new stats provider
func NewProvider(ctx context.Context, databaseURL string) (*Provider, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Provider{pool: pool}, nil
}

// Close closes the database connection
func (p *Provider) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// EnsureSchema creates the tables if they do not exist
func (p *Provider) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// FetchVersion gets the snapshot version stored in the database
func (p *Provider) FetchVersion(ctx context.Context) (string, error) {
	var version string
	err := p.pool.QueryRow(ctx, `SELECT version FROM data_version WHERE id = 1`).Scan(&version)
	if err != nil {
		return "", fmt.Errorf("failed to get version: %w", err)
	}

	p.currentVersion = version
	fmt.Printf("[Stats] Using version: %s\n", version)
	return version, nil
}

// GetVersion returns the last fetched version
func (p *Provider) GetVersion() string {
	return p.currentVersion
}

// LoadTables implements tables.Source
func (p *Provider) LoadTables(ctx context.Context, mapName string) (*tables.Set, error) {
	ally, err := p.loadMatchups(ctx, data.KindAlly)
	if err != nil {
		return nil, err
	}
	enemy, err := p.loadMatchups(ctx, data.KindEnemy)
	if err != nil {
		return nil, err
	}
	if ally.Len() == 0 || enemy.Len() == 0 {
		return nil, fmt.Errorf("%w: no matchup data in database", tables.ErrMissingTable)
	}

	winrates := tables.NewWinrateTable()
	if key := rates.Slug(mapName); key != "" {
		rows, err := p.pool.Query(ctx, `
			SELECT hero, value FROM winrates
			WHERE map = $1
			ORDER BY hero
		`, key)
		if err != nil {
			return nil, fmt.Errorf("failed to query winrates: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var hero string
			var value float64
			if err := rows.Scan(&hero, &value); err != nil {
				return nil, err
			}
			winrates.Set(hero, value)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		if winrates.Len() == 0 {
			return nil, fmt.Errorf("%w: no win rates for %s", tables.ErrMissingTable, mapName)
		}
	}

	return &tables.Set{Ally: ally, Enemy: enemy, Winrates: winrates}, nil
}

func (p *Provider) loadMatchups(ctx context.Context, kind string) (*tables.MatchupTable, error) {
	table := tables.NewMatchupTable()

	rows, err := p.pool.Query(ctx, `
		SELECT hero FROM matchup_heroes
		WHERE kind = $1
		ORDER BY position, hero
	`, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s heroes: %w", kind, err)
	}
	heroes, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s heroes: %w", kind, err)
	}
	for _, h := range heroes {
		table.AddHero(h)
	}

	rows, err = p.pool.Query(ctx, `
		SELECT hero, other, value FROM matchups
		WHERE kind = $1
	`, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s matchups: %w", kind, err)
	}
	defer rows.Close()

	for rows.Next() {
		var hero, other string
		var value float64
		if err := rows.Scan(&hero, &other, &value); err != nil {
			return nil, err
		}
		table.Set(hero, other, value)
	}
	return table, rows.Err()
}

// Publish replaces the stored tables with a snapshot in one transaction
func (p *Provider) Publish(ctx context.Context, export *data.DataExport) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE matchup_heroes, matchups, winrates`); err != nil {
		return fmt.Errorf("failed to clear tables: %w", err)
	}

	batch := &pgx.Batch{}
	for _, h := range export.Heroes {
		batch.Queue(`INSERT INTO matchup_heroes (kind, hero, position) VALUES ($1, $2, $3)
			ON CONFLICT (kind, hero) DO UPDATE SET position = EXCLUDED.position`,
			h.Kind, h.Hero, h.Position)
	}
	for _, m := range export.Matchups {
		batch.Queue(`INSERT INTO matchups (kind, hero, other, value) VALUES ($1, $2, $3, $4)
			ON CONFLICT (kind, hero, other) DO UPDATE SET value = EXCLUDED.value`,
			m.Kind, m.Hero, m.Other, m.Value)
	}
	for _, w := range export.Winrates {
		batch.Queue(`INSERT INTO winrates (map, hero, value) VALUES ($1, $2, $3)
			ON CONFLICT (map, hero) DO UPDATE SET value = EXCLUDED.value`,
			rates.Slug(w.Map), w.Hero, w.Value)
	}
	batch.Queue(`INSERT INTO data_version (id, version, updated_at) VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET version = EXCLUDED.version, updated_at = now()`,
		export.Version)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	p.currentVersion = export.Version
	fmt.Printf("[Stats] Published version %s: %d heroes, %d matchup cells, %d map scores\n",
		export.Version, len(export.Heroes), len(export.Matchups), len(export.Winrates))
	return nil
}
