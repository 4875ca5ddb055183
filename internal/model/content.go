package model

import (
	"encoding/json"
	"fmt"
)

// DrillSeries is the content schema for drill-series artifacts: practice
// drills organized into phases of play, plus prose lesson sections.
// This is the shape the claim extractor walks and the fixer patches.
type DrillSeries struct {
	Title    string          `json:"title,omitempty"`
	Phases   []Phase         `json:"phases"`
	Sections []LessonSection `json:"sections,omitempty"`
}

// Phase groups drills by stage of the game (e.g., "Opening", "Bearing off")
type Phase struct {
	Name   string  `json:"name"`
	Drills []Drill `json:"drills"`
}

// Drill is one practice exercise: a position, a dice roll, and the move the
// content recommends as best.
type Drill struct {
	ID          string    `json:"id,omitempty"`
	Position    *Position `json:"position"`
	BestMove    string    `json:"best_move"`
	Explanation string    `json:"explanation,omitempty"`
}

// LessonSection is narrative teaching content. Body is an HTML fragment; an
// optional example position anchors any move assertions made in the prose.
type LessonSection struct {
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	Position *Position `json:"position,omitempty"`
}

// ParseDrillSeries decodes and minimally validates drill-series content
func ParseDrillSeries(content []byte) (*DrillSeries, error) {
	var series DrillSeries
	if err := json.Unmarshal(content, &series); err != nil {
		return nil, fmt.Errorf("parse drill series: %w", err)
	}
	if len(series.Phases) == 0 && len(series.Sections) == 0 {
		return nil, fmt.Errorf("drill series has no phases or sections")
	}
	return &series, nil
}
