package models

// ProgressState is the snapshot shown by the purchase progress indicator
type ProgressState struct {
	Step       int     `json:"step"`
	TotalSteps int     `json:"totalSteps"`
	Percentage float64 `json:"percentage"`
	Message    string  `json:"message"`
	ETA        string  `json:"eta"`
}
