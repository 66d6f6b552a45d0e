// Package lineup holds the resolved ally/enemy roster and its plain-text file.
package lineup

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// MaxAllies is the number of teammates besides the player
	MaxAllies = 4
	// MaxEnemies is the size of the opposing team
	MaxEnemies = 5
	// Slots is the total number of recognized roster slots
	Slots = MaxAllies + MaxEnemies
)

// Roster is the recognized teams in slot order.
// An empty name marks a slot where recognition failed.
type Roster struct {
	Allies  []string `json:"allies"`
	Enemies []string `json:"enemies"`
}

// NewRoster splits labels in slot order: the first four are allies, the next
// five enemies. Extra labels are dropped.
func NewRoster(labels []string) Roster {
	var r Roster
	for i, label := range labels {
		switch {
		case i < MaxAllies:
			r.Allies = append(r.Allies, label)
		case i < Slots:
			r.Enemies = append(r.Enemies, label)
		}
	}
	return r
}

// Slots returns the roster flattened in slot order
func (r Roster) Slots() []string {
	out := make([]string, 0, len(r.Allies)+len(r.Enemies))
	out = append(out, r.Allies...)
	return append(out, r.Enemies...)
}

// IsEmpty reports whether no slot was recognized
func (r Roster) IsEmpty() bool {
	return len(r.Allies) == 0 && len(r.Enemies) == 0
}

// Write stores the roster one name per line. The file is replaced atomically so
// a reader never sees a half-written lineup.
func Write(path string, r Roster) error {
	var buf bytes.Buffer
	for _, name := range r.Slots() {
		buf.WriteString(name)
		buf.WriteByte('\n')
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".lineup-*")
	if err != nil {
		return fmt.Errorf("failed to create lineup file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write lineup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write lineup: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace lineup: %w", err)
	}
	return nil
}

// Read loads a roster written by Write
func Read(path string) (Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return Roster{}, fmt.Errorf("failed to open lineup: %w", err)
	}
	defer f.Close()

	var labels []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		labels = append(labels, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return Roster{}, fmt.Errorf("failed to read lineup: %w", err)
	}
	return NewRoster(labels), nil
}
