package core

// PlanStep is one actionable step in the synthesized plan.
type PlanStep struct {
	Step      string `json:"step"`
	Owner     string `json:"owner"`
	Timeframe string `json:"timeframe"`
}

// Plan is the final output of a completed run: the three role summaries
// plus the action plan synthesized by the integration agent. A plan is
// produced exactly once per session and derives deterministically from the
// bundle the integration step received.
type Plan struct {
	PastSummary    string     `json:"past_summary"`
	PresentSummary string     `json:"present_summary"`
	FutureSummary  string     `json:"future_summary"`
	Integrated     string     `json:"integrated_summary"`
	Steps          []PlanStep `json:"plan"`
	Themes         []string   `json:"themes,omitempty"`
	Contradictions []string   `json:"contradictions,omitempty"`
	Metrics        []string   `json:"metrics,omitempty"`
	NextCheckIn    string     `json:"next_check_in,omitempty"`
	Confidence     float64    `json:"confidence,omitempty"`
}

// Clone returns a deep copy of the plan.
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Steps = append([]PlanStep(nil), p.Steps...)
	cp.Themes = append([]string(nil), p.Themes...)
	cp.Contradictions = append([]string(nil), p.Contradictions...)
	cp.Metrics = append([]string(nil), p.Metrics...)
	return &cp
}
