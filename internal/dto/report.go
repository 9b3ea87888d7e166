package dto

// ── 报表/排行榜 DTO ──

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Points     int    `json:"points"`
	Experience int    `json:"experience"`
}

// LeaderboardResponse 排行榜响应
type LeaderboardResponse struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// ClassroomStatsResponse 班级（导师组）统计
type ClassroomStatsResponse struct {
	TutorID           string  `json:"tutor_id"`
	TutorName         string  `json:"tutor_name"`
	StudentCount      int     `json:"student_count"`
	TotalPoints       int     `json:"total_points"`
	AveragePoints     float64 `json:"average_points"`
	TotalExperience   int     `json:"total_experience"`
	AverageExperience float64 `json:"average_experience"`
}
