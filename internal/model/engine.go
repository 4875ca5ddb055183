package model

// CheckerMove is a single checker movement within a play.
// From/To are point numbers as strings; "bar" and "off" are valid.
type CheckerMove struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Probability holds the engine's outcome estimates for a candidate move
type Probability struct {
	Win    float64 `json:"win"`
	Lose   float64 `json:"lose"`
	WinG   float64 `json:"winG"`
	LoseG  float64 `json:"loseG"`
	WinBG  float64 `json:"winBG"`
	LoseBG float64 `json:"loseBG"`
}

// EvalInfo records how the engine evaluated the move
type EvalInfo struct {
	Cubeful bool `json:"cubeful"`
	Plies   int  `json:"plies"`
}

// Evaluation is the engine's assessment of one candidate move
type Evaluation struct {
	Equity      float64     `json:"eq"`
	Diff        float64     `json:"diff"` // Equity loss relative to the best move
	Probability Probability `json:"probability"`
	Info        EvalInfo    `json:"info"`
}

// CandidateMove is one entry in the engine's ranked move list
type CandidateMove struct {
	Evaluation Evaluation    `json:"evaluation"`
	Play       []CheckerMove `json:"play"`
}

// EngineResponse is the normalized engine answer for one Position:
// candidate moves ranked best-first. Cacheable per verification run.
type EngineResponse struct {
	Moves []CandidateMove `json:"moves"`
}

// Best returns the top-ranked move, or nil if the response is empty
func (r *EngineResponse) Best() *CandidateMove {
	if r == nil || len(r.Moves) == 0 {
		return nil
	}
	return &r.Moves[0]
}
