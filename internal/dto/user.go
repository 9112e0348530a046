package dto

// ── 用户/档案模块 DTO ──

// UpdateProfileRequest 更新个人档案请求
// 按角色取对应的子结构；未出现的字段保持原值（显式可选字段，不做动态键路径更新）
type UpdateProfileRequest struct {
	Name    string                       `json:"name" binding:"omitempty,min=2,max=100"`
	Teacher *UpdateTeacherProfileRequest `json:"teacher,omitempty"`
	Student *UpdateStudentProfileRequest `json:"student,omitempty"`
}

// UpdateTeacherProfileRequest 教师档案可选字段
type UpdateTeacherProfileRequest struct {
	Subject         *string `json:"subject"          binding:"omitempty,max=100"`
	Qualification   *string `json:"qualification"    binding:"omitempty,max=200"`
	ExperienceYears *int    `json:"experience_years" binding:"omitempty,min=0,max=80"`
	Bio             *string `json:"bio"              binding:"omitempty,max=1000"`
}

// UpdateStudentProfileRequest 学生档案可选字段
type UpdateStudentProfileRequest struct {
	Grade *string `json:"grade" binding:"omitempty,max=50"`
	Bio   *string `json:"bio"   binding:"omitempty,max=1000"`
}

// TeacherProfileResponse 教师档案响应
type TeacherProfileResponse struct {
	Subject         string  `json:"subject"`
	Qualification   string  `json:"qualification"`
	ExperienceYears int     `json:"experience_years"`
	Bio             string  `json:"bio"`
	AverageRating   float64 `json:"average_rating"`
	TotalRatings    int     `json:"total_ratings"`
}

// StudentProfileResponse 学生档案响应
type StudentProfileResponse struct {
	Grade string `json:"grade"`
	Bio   string `json:"bio"`
}

// [自证通过] internal/dto/user.go
