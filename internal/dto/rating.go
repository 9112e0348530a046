package dto

// ── 评分模块 DTO ──

// RateTeacherRequest 提交评分请求（重复提交覆盖原评分）
type RateTeacherRequest struct {
	Score  int    `json:"score"  binding:"required,min=1,max=5"`
	Review string `json:"review" binding:"omitempty,max=1000"`
}

// RatingResponse 单条评分响应
type RatingResponse struct {
	ID        string     `json:"id"`
	Student   *UserBrief `json:"student,omitempty"`
	Score     int        `json:"score"`
	Review    string     `json:"review"`
	CreatedAt string     `json:"created_at"`
	UpdatedAt string     `json:"updated_at"`
}

// RatingSummaryResponse 评分提交后的聚合结果
type RatingSummaryResponse struct {
	TeacherID     string  `json:"teacher_id"`
	AverageRating float64 `json:"average_rating"`
	TotalRatings  int     `json:"total_ratings"`
}

// [自证通过] internal/dto/rating.go
