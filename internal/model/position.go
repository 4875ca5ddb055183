package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Player identifies a side of the board
type Player string

const (
	PlayerX Player = "x"
	PlayerO Player = "o"
)

// Board holds checker counts per point for each side.
// Points are keyed by their number from the owning player's perspective;
// "bar" is a valid key for checkers on the bar.
type Board struct {
	X map[string]int `json:"x"`
	O map[string]int `json:"o"`
}

// Position is a canonical board state plus dice and player to move.
// It is immutable and used only as a lookup key for engine queries.
type Position struct {
	Board   Board  `json:"board"`
	Dice    [2]int `json:"dice"`
	Player  Player `json:"player"`
	Cubeful bool   `json:"cubeful,omitempty"`
}

// Valid reports whether the position is well-formed enough to query:
// both dice in 1-6, a recognized player, and at least one checker on the
// moving side.
func (p *Position) Valid() error {
	for _, d := range p.Dice {
		if d < 1 || d > 6 {
			return fmt.Errorf("invalid die value: %d", d)
		}
	}
	if p.Player != PlayerX && p.Player != PlayerO {
		return fmt.Errorf("invalid player: %q", p.Player)
	}
	side := p.Board.X
	if p.Player == PlayerO {
		side = p.Board.O
	}
	total := 0
	for point, count := range side {
		if count < 0 {
			return fmt.Errorf("negative checker count at %s: %d", point, count)
		}
		total += count
	}
	if total == 0 {
		return fmt.Errorf("no checkers for player %q", p.Player)
	}
	return nil
}

// Canonical returns a deterministic serialization of the position.
// Identical positions always serialize identically regardless of map order.
func (p *Position) Canonical() string {
	var b strings.Builder
	b.WriteString("x:")
	b.WriteString(canonicalSide(p.Board.X))
	b.WriteString("|o:")
	b.WriteString(canonicalSide(p.Board.O))
	fmt.Fprintf(&b, "|d:%d-%d|p:%s|c:%t", p.Dice[0], p.Dice[1], p.Player, p.Cubeful)
	return b.String()
}

// CacheKey generates a cache key from the canonical position
func (p *Position) CacheKey() string {
	hash := sha256.Sum256([]byte(p.Canonical()))
	return "tavla:v1:" + hex.EncodeToString(hash[:])
}

func canonicalSide(side map[string]int) string {
	keys := make([]string, 0, len(side))
	for k, v := range side {
		if v == 0 {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, side[k]))
	}
	return strings.Join(parts, ",")
}
