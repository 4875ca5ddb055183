package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ppiankov/tavla/internal/model"
)

// hop is a single checker movement with numeric endpoints.
// bar is 25 and off is 0 so hops sort naturally from the back of the board.
type hop struct {
	from int
	to   int
}

// NormalizeMove canonicalizes a move string so that notational variants of
// the same play compare equal: "8/5, 6/5", "8/5 6/5" and "6/5 8/5" all
// normalize to "8/5 6/5"; hit markers are dropped, "(2)" repeats expanded,
// and same-checker chains like "24/18 18/13" collapsed to "24/13".
func NormalizeMove(move string) (string, error) {
	hops, err := parseMove(move)
	if err != nil {
		return "", err
	}
	return canonical(hops), nil
}

// RenderPlay normalizes an engine play (list of from/to steps) into the
// same canonical notation NormalizeMove produces, so the two sides of a
// comparison always share a representation.
func RenderPlay(play []model.CheckerMove) (string, error) {
	hops := make([]hop, 0, len(play))
	for _, step := range play {
		from, err := pointValue(step.From)
		if err != nil {
			return "", fmt.Errorf("engine play: %w", err)
		}
		to, err := pointValue(step.To)
		if err != nil {
			return "", fmt.Errorf("engine play: %w", err)
		}
		hops = append(hops, hop{from: from, to: to})
	}
	if len(hops) == 0 {
		return "", fmt.Errorf("engine play is empty")
	}
	return canonical(hops), nil
}

// parseMove parses human notation into hops
func parseMove(move string) ([]hop, error) {
	cleaned := strings.ToLower(strings.TrimSpace(move))
	cleaned = strings.ReplaceAll(cleaned, ",", " ")
	cleaned = strings.ReplaceAll(cleaned, "*", "")
	if cleaned == "" {
		return nil, fmt.Errorf("empty move string")
	}

	var hops []hop
	for _, token := range strings.Fields(cleaned) {
		repeat := 1
		if idx := strings.Index(token, "("); idx >= 0 {
			end := strings.Index(token, ")")
			if end <= idx {
				return nil, fmt.Errorf("malformed repeat in %q", token)
			}
			n, err := strconv.Atoi(token[idx+1 : end])
			if err != nil || n < 1 {
				return nil, fmt.Errorf("malformed repeat in %q", token)
			}
			repeat = n
			token = token[:idx]
		}

		points := strings.Split(token, "/")
		if len(points) < 2 {
			return nil, fmt.Errorf("malformed move token %q", token)
		}

		var chain []hop
		for i := 0; i < len(points)-1; i++ {
			from, err := pointValue(points[i])
			if err != nil {
				return nil, err
			}
			to, err := pointValue(points[i+1])
			if err != nil {
				return nil, err
			}
			chain = append(chain, hop{from: from, to: to})
		}

		for r := 0; r < repeat; r++ {
			hops = append(hops, chain...)
		}
	}

	if len(hops) == 0 {
		return nil, fmt.Errorf("no movements in %q", move)
	}
	return hops, nil
}

// canonical collapses same-checker chains, sorts, and renders hops
func canonical(hops []hop) string {
	collapsed := collapse(hops)

	sort.Slice(collapsed, func(i, j int) bool {
		if collapsed[i].from != collapsed[j].from {
			return collapsed[i].from > collapsed[j].from
		}
		return collapsed[i].to > collapsed[j].to
	})

	parts := make([]string, 0, len(collapsed))
	for _, h := range collapsed {
		parts = append(parts, pointName(h.from)+"/"+pointName(h.to))
	}
	return strings.Join(parts, " ")
}

// collapse merges hop pairs where one checker continues its move
// (a->b followed by b->c becomes a->c). Repeats until stable so longer
// chains written as individual die hops reduce fully.
//
// Hit markers are stripped before hops reach this point, so a hitting
// chain like "6/5* 5/4" reduces to the same "6/4" a single checker would
// produce. Claimed and engine plays pass through the same reduction, so
// comparisons stay consistent even though the hit is no longer visible.
func collapse(hops []hop) []hop {
	out := make([]hop, len(hops))
	copy(out, hops)

	for {
		merged := false
		for i := 0; i < len(out) && !merged; i++ {
			for j := 0; j < len(out); j++ {
				if i == j {
					continue
				}
				if out[i].to != 0 && out[i].to == out[j].from {
					out[i] = hop{from: out[i].from, to: out[j].to}
					out = append(out[:j], out[j+1:]...)
					merged = true
					break
				}
			}
		}
		if !merged {
			return out
		}
	}
}

func pointValue(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bar":
		return 25, nil
	case "off":
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 24 {
		return 0, fmt.Errorf("invalid point %q", s)
	}
	return n, nil
}

func pointName(n int) string {
	switch n {
	case 25:
		return "bar"
	case 0:
		return "off"
	}
	return strconv.Itoa(n)
}
