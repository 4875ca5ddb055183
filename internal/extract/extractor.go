// Package extract pulls verifiable move claims out of generated artifact
// content and maps each one to the canonical position it refers to.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/tavla/internal/model"
)

// movePattern matches prose assertions like `the best move is 24/23 13/11`
// or `the correct play here is 8/5(2)`. The move itself is capture group 2.
var movePattern = regexp.MustCompile(
	`(?i)\b(?:best|correct|right|strongest)\s+(?:move|play)\b[^.!?]*?\bis\s+((?:bar|off|\d{1,2})(?:/(?:bar|off|\d{1,2}))+(?:\(\d\))?(?:[ ,]+(?:bar|off|\d{1,2})(?:/(?:bar|off|\d{1,2}))+(?:\(\d\))?)*)`)

// Extractor walks artifact content and extracts move-recommendation claims
type Extractor struct{}

// NewExtractor creates a new claim extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract walks drill-series content and returns one claim per move
// assertion. Claims whose position cannot be reconstructed are returned
// marked skipped, never dropped: the aggregator reports them separately
// from correctness failures.
func (e *Extractor) Extract(content []byte) ([]model.Claim, error) {
	series, err := model.ParseDrillSeries(content)
	if err != nil {
		return nil, err
	}

	var claims []model.Claim
	for pi, phase := range series.Phases {
		for di, drill := range phase.Drills {
			claims = append(claims, drillClaim(pi, di, drill))
		}
	}
	for _, section := range series.Sections {
		claims = append(claims, SectionClaims(section)...)
	}
	return claims, nil
}

// drillClaim builds the claim for one drill's recommended move
func drillClaim(phase, idx int, drill model.Drill) model.Claim {
	claim := model.Claim{
		Move: strings.TrimSpace(drill.BestMove),
		Location: model.Location{
			Source: model.ClaimSourceDrill,
			Phase:  phase,
			Drill:  idx,
		},
	}

	if claim.Move == "" {
		claim.Skipped = true
		claim.SkipNote = "drill has no recommended move"
		return claim
	}
	if drill.Position == nil {
		claim.Skipped = true
		claim.SkipNote = "drill has no position"
		return claim
	}
	if err := drill.Position.Valid(); err != nil {
		claim.Skipped = true
		claim.SkipNote = fmt.Sprintf("unusable position: %v", err)
		return claim
	}

	claim.Position = drill.Position
	return claim
}

// SectionClaims scans a lesson section's prose for move assertions.
// Assertions are only verifiable against the section's example position;
// without one they are recorded as skipped so reviewers see the gap.
// Exported so the fixer can re-check a rewritten section before accepting it.
func SectionClaims(section model.LessonSection) []model.Claim {
	text := visibleText(section.Body)
	matches := movePattern.FindAllStringSubmatch(text, -1)

	var claims []model.Claim
	for _, m := range matches {
		claim := model.Claim{
			Move: strings.TrimSpace(m[1]),
			Location: model.Location{
				Source:  model.ClaimSourceSection,
				Section: section.Title,
			},
		}

		if section.Position == nil {
			claim.Skipped = true
			claim.SkipNote = "section asserts a move but carries no example position"
		} else if err := section.Position.Valid(); err != nil {
			claim.Skipped = true
			claim.SkipNote = fmt.Sprintf("unusable position: %v", err)
		} else {
			claim.Position = section.Position
		}
		claims = append(claims, claim)
	}
	return claims
}

// visibleText extracts text nodes from an HTML fragment, skipping
// scripts/styles. Parse errors fall back to the raw body: generated prose
// is not always well-formed markup.
func visibleText(body string) string {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return body
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return buf.String()
}
