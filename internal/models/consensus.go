package models

type ConsensusOutcome string

const (
	OutcomePending         ConsensusOutcome = "pending"
	OutcomeMatched         ConsensusOutcome = "matched"
	OutcomeNeedsThirdRound ConsensusOutcome = "needs_third_round"
	OutcomeResolvedByThird ConsensusOutcome = "resolved_by_third"
)

func (co ConsensusOutcome) String() string {
	return string(co)
}

// Resolution is the consensus verdict for a block. It is derived from
// persisted results on demand and never stored.
type Resolution struct {
	BlockCode     string           `json:"block_code"`
	Outcome       ConsensusOutcome `json:"outcome"`
	FinalScore    *float64         `json:"final_score,omitempty"`
	Difference    *float64         `json:"difference,omitempty"`
	MaxDifference float64          `json:"max_difference"`
	Scores        []float64        `json:"scores"`
	ResultCount   int              `json:"result_count"`
}
