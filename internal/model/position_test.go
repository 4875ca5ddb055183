package model

import (
	"strings"
	"testing"
)

func TestPosition_CanonicalDeterministic(t *testing.T) {
	a := &Position{
		Board: Board{
			X: map[string]int{"24": 2, "13": 5, "8": 3, "6": 5},
			O: map[string]int{"6": 5, "8": 3, "13": 5, "24": 2},
		},
		Dice:   [2]int{3, 1},
		Player: PlayerX,
	}
	b := &Position{
		Board: Board{
			X: map[string]int{"6": 5, "8": 3, "13": 5, "24": 2},
			O: map[string]int{"24": 2, "8": 3, "13": 5, "6": 5},
		},
		Dice:   [2]int{3, 1},
		Player: PlayerX,
	}

	if a.Canonical() != b.Canonical() {
		t.Errorf("Identical positions serialize differently:\n%s\n%s", a.Canonical(), b.Canonical())
	}
	if a.CacheKey() != b.CacheKey() {
		t.Error("Identical positions produce different cache keys")
	}
	if !strings.HasPrefix(a.CacheKey(), "tavla:v1:") {
		t.Errorf("Unexpected cache key format: %s", a.CacheKey())
	}
}

func TestPosition_CanonicalDistinguishes(t *testing.T) {
	base := Position{
		Board:  Board{X: map[string]int{"6": 2}, O: map[string]int{"6": 2}},
		Dice:   [2]int{3, 1},
		Player: PlayerX,
	}

	dice := base
	dice.Dice = [2]int{1, 3}
	player := base
	player.Player = PlayerO
	board := base
	board.Board = Board{X: map[string]int{"6": 2, "bar": 1}, O: map[string]int{"6": 2}}

	for name, other := range map[string]Position{"dice order": dice, "player": player, "board": board} {
		if base.CacheKey() == other.CacheKey() {
			t.Errorf("Positions differing by %s share a cache key", name)
		}
	}
}

func TestPosition_Valid(t *testing.T) {
	good := Position{
		Board:  Board{X: map[string]int{"6": 2}, O: map[string]int{"6": 2}},
		Dice:   [2]int{3, 1},
		Player: PlayerX,
	}
	if err := good.Valid(); err != nil {
		t.Errorf("Expected valid position, got %v", err)
	}

	badDice := good
	badDice.Dice = [2]int{0, 1}
	if err := badDice.Valid(); err == nil {
		t.Error("Expected error for die value 0")
	}

	badPlayer := good
	badPlayer.Player = "z"
	if err := badPlayer.Valid(); err == nil {
		t.Error("Expected error for unknown player")
	}

	empty := good
	empty.Board = Board{X: map[string]int{}, O: map[string]int{"6": 2}}
	if err := empty.Valid(); err == nil {
		t.Error("Expected error when the moving side has no checkers")
	}
}
