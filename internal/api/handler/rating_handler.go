package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"tutorlink/backend/internal/dto"
	"tutorlink/backend/internal/service"
	"tutorlink/backend/pkg/response"
)

// RatingHandler 评分模块 HTTP 处理器
type RatingHandler struct {
	ratingSvc service.RatingService
}

// NewRatingHandler 创建 RatingHandler
func NewRatingHandler(ratingSvc service.RatingService) *RatingHandler {
	return &RatingHandler{ratingSvc: ratingSvc}
}

// Rate 提交评分（学生）
// POST /api/v1/teachers/:id/ratings
func (h *RatingHandler) Rate(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.RateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.ratingSvc.Rate(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTeacherNotFound):
			response.NotFound(c, 13001, "教师不存在或未通过审核")
		case errors.Is(err, service.ErrRatingNotEligible):
			response.Forbidden(c, 15001, "只有与该教师有过已批准预约的学生才能评分")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// List 教师收到的评分列表
// GET /api/v1/teachers/:id/ratings
func (h *RatingHandler) List(c *gin.Context) {
	result, err := h.ratingSvc.ListForTeacher(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// GetMine 自己对某教师的评分
// GET /api/v1/teachers/:id/ratings/me
func (h *RatingHandler) GetMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.ratingSvc.GetMine(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrRatingNotFound) {
			response.NotFound(c, 15002, "评分不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
