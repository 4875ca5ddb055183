package model

// FixItem is the outcome of one claim's repair attempt
type FixItem struct {
	Location Location `json:"location"`
	Fixed    bool     `json:"fixed"`
	Reason   string   `json:"reason,omitempty"` // Why the rewrite was rejected, when Fixed is false
}

// FixResult summarizes a batch of repair attempts. SuccessfullyFixed may be
// less than Total; individual failures never abort the batch.
type FixResult struct {
	Items             []FixItem `json:"items"`
	SuccessfullyFixed int       `json:"successfully_fixed"`
	Total             int       `json:"total"`
}
