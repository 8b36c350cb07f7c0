package models

type ThirdRoundRequestedEvent struct {
	BlockCode    string    `json:"block_code"`
	AssignmentID string    `json:"assignment_id"`
	ExaminerID   string    `json:"examiner_id"`
	Scores       []float64 `json:"scores"`
	Timestamp    int64     `json:"timestamp"`
}

type GradingResolvedEvent struct {
	BlockCode   string  `json:"block_code"`
	Outcome     string  `json:"outcome"`
	FinalScore  float64 `json:"final_score"`
	ResultCount int     `json:"result_count"`
	Timestamp   int64   `json:"timestamp"`
}
