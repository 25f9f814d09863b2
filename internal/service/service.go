package service

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"lessonloop/backend/config"
	"lessonloop/backend/internal/model"
	"lessonloop/backend/internal/repository"
	"lessonloop/backend/pkg/jwt"
	"lessonloop/backend/pkg/redis"
)

// 跨领域通用错误
var (
	ErrInvalidDate     = errors.New("日期格式无效，应为 YYYY-MM-DD")
	ErrInvalidTimeSpan = errors.New("时段无效：开始时刻必须早于结束时刻")
)

// Service 业务层聚合
type Service struct {
	Auth    AuthService
	Student StudentService
	Group   GroupService
	Lesson  LessonService
	Event   EventService
	Billing BillingService
	Export  ExportService
}

// NewService 创建业务层聚合（rdb 可为 nil，相关能力降级）
func NewService(cfg *config.Config, repo *repository.Repository, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *Service {
	lessonSvc := NewLessonService(cfg, repo, logger)
	return &Service{
		Auth:    NewAuthService(cfg, repo.User, jwtMgr, rdb, logger),
		Student: NewStudentService(repo, logger),
		Group:   NewGroupService(repo, logger),
		Lesson:  lessonSvc,
		Event:   NewEventService(repo, logger),
		Billing: NewBillingService(repo, logger),
		Export:  NewExportService(repo, logger),
	}
}

// ── 共享转换工具 ──────────────────────────────────────────────

const dateLayout = "2006-01-02"

// parseDate 解析 "YYYY-MM-DD"，归一化为当日零点（UTC）
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return normalizeDate(t), nil
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

var weekdayLabels = [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// scheduleDaysToIndices 星期名列表 → 索引集合；未知名称原样丢弃不报错
func scheduleDaysToIndices(names []string) model.IntArray {
	arr := make(model.IntArray, 0, len(names))
	seen := make(map[int]bool)
	for _, name := range names {
		idx, ok := weekdayIndex(name)
		if ok && !seen[idx] {
			seen[idx] = true
			arr = append(arr, idx)
		}
	}
	return arr
}

// scheduleDaysToNames 索引集合 → 星期名列表（响应用）
func scheduleDaysToNames(days model.IntArray) []string {
	names := make([]string, 0, len(days))
	for _, d := range days {
		if d >= 0 && d <= 6 {
			names = append(names, weekdayLabels[d])
		}
	}
	return names
}

// validTimeSpan 校验 "HH:MM" 起止时段；end 允许为空（后续按 1 小时回退）
func validTimeSpan(start, end string) error {
	sh, sm, ok := parseClock(start)
	if !ok {
		return ErrInvalidTimeSpan
	}
	if end == "" {
		return nil
	}
	eh, em, ok := parseClock(end)
	if !ok {
		return ErrInvalidTimeSpan
	}
	if eh*60+em <= sh*60+sm {
		return ErrInvalidTimeSpan
	}
	return nil
}
