package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"lessonloop/backend/internal/model"
	"lessonloop/backend/internal/repository"
)

// ExportService 课表导出业务接口
type ExportService interface {
	ExportTimetable(ctx context.Context, start, end time.Time) (*excelize.File, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

var weekdayCN = [7]string{"周日", "周一", "周二", "周三", "周四", "周五", "周六"}

// ExportTimetable 导出日期窗口内的课表为 Excel
func (s *exportService) ExportTimetable(ctx context.Context, start, end time.Time) (*excelize.File, error) {
	lessons, err := s.repo.Lesson.ListByRange(ctx, start, end)
	if err != nil {
		s.logger.Error("查询课表失败", zap.Error(err))
		return nil, err
	}
	ownerNames, err := s.resolveOwnerNames(ctx, lessons)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const sheet = "课表"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"日期", "星期", "开始", "结束", "归属", "课题", "状态"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err == nil {
		f.SetCellStyle(sheet, "A1", "G1", headerStyle)
	}

	for row, l := range lessons {
		values := []interface{}{
			formatDate(l.LessonDate),
			weekdayCN[int(l.LessonDate.Weekday())],
			l.StartTime,
			l.EndTime,
			ownerNames[l.OwnerType+":"+l.OwnerID],
			l.Topic,
			statusCN(l.Status),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	f.SetColWidth(sheet, "A", "A", 12)
	f.SetColWidth(sheet, "E", "F", 20)

	s.logger.Info("课表导出完成",
		zap.String("start", formatDate(start)),
		zap.String("end", formatDate(end)),
		zap.Int("rows", len(lessons)),
	)
	return f, nil
}

// resolveOwnerNames 批量解析课程归属的展示名
func (s *exportService) resolveOwnerNames(ctx context.Context, lessons []model.Lesson) (map[string]string, error) {
	names := make(map[string]string)
	for _, l := range lessons {
		key := l.OwnerType + ":" + l.OwnerID
		if _, ok := names[key]; ok {
			continue
		}
		switch l.OwnerType {
		case model.OwnerTypeGroup:
			group, err := s.repo.Group.GetByID(ctx, l.OwnerID)
			if err != nil {
				names[key] = fmt.Sprintf("班组 %s", l.OwnerID)
				continue
			}
			names[key] = group.Name
		case model.OwnerTypeStudent:
			student, err := s.repo.Student.GetByID(ctx, l.OwnerID)
			if err != nil {
				names[key] = fmt.Sprintf("学生 %s", l.OwnerID)
				continue
			}
			names[key] = student.Name
		}
	}
	return names, nil
}

func statusCN(status string) string {
	switch status {
	case model.LessonStatusScheduled:
		return "在排"
	case model.LessonStatusCancelled:
		return "已取消"
	default:
		return status
	}
}
