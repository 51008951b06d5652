package models

// ResultKind classifies a recent attempt for display
type ResultKind string

const (
	ResultCorrect   ResultKind = "correct"
	ResultIncorrect ResultKind = "incorrect"
	ResultNeutral   ResultKind = "neutral"
)

// RecentResult is one of the latest attempt scores of a user
type RecentResult struct {
	Score float64    `json:"score"` // Percentage 0-100
	Kind  ResultKind `json:"kind"`
}

// UserAggregate holds per-user statistics computed from attempts
type UserAggregate struct {
	UserIdentity   string         `json:"user_identity"`
	UserName       string         `json:"user_name"`
	TotalTests     int            `json:"total_tests"`
	TotalQuestions int            `json:"total_questions"`
	TotalCorrect   int            `json:"total_correct"`
	TotalIncorrect int            `json:"total_incorrect"`
	AverageScore   float64        `json:"average_score"` // Percentage 0-100
	WilsonScore    float64        `json:"wilson_score"`  // Percentage 0-100
	TopCategory    string         `json:"top_category"`
	RecentResults  []RecentResult `json:"recent_results"`
}

// LeaderboardEntry is a ranked user aggregate
type LeaderboardEntry struct {
	Rank int `json:"rank"`
	UserAggregate
}

// Standing describes where a single user sits on the leaderboard
type Standing struct {
	Position          *int           `json:"position"`
	Aggregate         *UserAggregate `json:"aggregate"`
	MeetsMinimum      bool           `json:"meets_minimum"`
	TotalParticipants int            `json:"total_participants"`
	Percentile        float64        `json:"percentile"` // Top X%
}

// Ranking is the result of a leaderboard computation
type Ranking struct {
	Entries  []LeaderboardEntry `json:"entries"`
	Standing Standing           `json:"standing"`
}
