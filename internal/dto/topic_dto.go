package dto

// TopicSuggestionsResponse lists topic names appropriate for the student's grade.
type TopicSuggestionsResponse struct {
	Subject  string   `json:"subject"`
	Grade    string   `json:"grade"`
	Topics   []string `json:"topics"`
	CacheHit bool     `json:"cache_hit"`
}

// TopicOverview is a short study card for one topic.
type TopicOverview struct {
	TopicName   string `json:"topic_name"`
	Explanation string `json:"explanation"`
	Example     string `json:"example"`
	QuickTip    string `json:"quick_tip"`
}

// TopicExplorationResponse groups study cards for a subject.
type TopicExplorationResponse struct {
	Subject string          `json:"subject"`
	Grade   string          `json:"grade"`
	Topics  []TopicOverview `json:"topics"`
}
