package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lessonloop/backend/config"
	"lessonloop/backend/internal/dto"
	"lessonloop/backend/internal/model"
	"lessonloop/backend/internal/repository"
)

var (
	ErrLessonNotFound   = errors.New("课程不存在")
	ErrOwnerNotFound    = errors.New("归属的班组或学生不存在")
	ErrNoSchedule       = errors.New("未配置每周排课规则")
	ErrScheduleConflict = errors.New("时段冲突")
)

// LessonService 课程业务接口
//
// Create/Update 在检测到冲突且未强制时返回 ErrScheduleConflict，
// 并通过 *dto.ConflictResponse 携带冲突明细。
type LessonService interface {
	Preview(ctx context.Context, req *dto.GenerateLessonsRequest) (*dto.PreviewResponse, error)
	Generate(ctx context.Context, req *dto.GenerateLessonsRequest, actorID string) (*dto.GenerateResponse, error)
	List(ctx context.Context, req *dto.ListLessonsRequest) ([]dto.LessonResponse, int64, error)
	GetByID(ctx context.Context, lessonID string) (*dto.LessonResponse, error)
	Create(ctx context.Context, req *dto.CreateLessonRequest, actorID string) (*dto.LessonResponse, *dto.ConflictResponse, error)
	Update(ctx context.Context, lessonID string, req *dto.UpdateLessonRequest, actorID string) (*dto.LessonResponse, *dto.ConflictResponse, error)
	Delete(ctx context.Context, lessonID string, actorID string) error
	CheckConflicts(ctx context.Context, req *dto.CheckConflictRequest) (*dto.ConflictResponse, error)
	Resolve(ctx context.Context, req *dto.ResolveConflictRequest, actorID string) (*dto.ResolveResponse, error)
}

type lessonService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

func NewLessonService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) LessonService {
	return &lessonService{cfg: cfg, repo: repo, logger: logger}
}

// ── 规则展开 ──────────────────────────────────────────────────

// ownerSchedule 取归属自身的每周排课规则（入组学生的课由班组统一生成）
func (s *lessonService) ownerSchedule(ctx context.Context, ownerType, ownerID string) (WeeklySchedule, error) {
	switch ownerType {
	case model.OwnerTypeGroup:
		group, err := s.repo.Group.GetByID(ctx, ownerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return WeeklySchedule{}, ErrOwnerNotFound
			}
			return WeeklySchedule{}, err
		}
		return WeeklySchedule{Days: group.ScheduleDays, StartTime: group.StartTime, EndTime: group.EndTime}, nil
	case model.OwnerTypeStudent:
		student, err := s.repo.Student.GetByID(ctx, ownerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return WeeklySchedule{}, ErrOwnerNotFound
			}
			return WeeklySchedule{}, err
		}
		return WeeklySchedule{Days: student.ScheduleDays, StartTime: student.StartTime, EndTime: student.EndTime}, nil
	default:
		return WeeklySchedule{}, ErrOwnerNotFound
	}
}

// expandWindow 解析展开窗口；结束日期缺省按配置月数向后延伸
func (s *lessonService) expandWindow(req *dto.GenerateLessonsRequest) (start, end time.Time, err error) {
	start, err = parseDate(req.StartDate)
	if err != nil {
		return
	}
	if req.EndDate != "" {
		end, err = parseDate(req.EndDate)
		if err != nil {
			return
		}
	} else {
		end = start.AddDate(0, s.cfg.Billing.DefaultWindowMonths, 0)
	}
	return
}

// occupancy 一次取回窗口内全部既有课程与事件，按日期分桶
type occupancy struct {
	lessons map[string][]model.Lesson
	events  map[string][]model.Event
}

func (s *lessonService) loadOccupancy(ctx context.Context, start, end time.Time) (*occupancy, error) {
	lessons, err := s.repo.Lesson.ListByRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	events, err := s.repo.Event.ListByRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	occ := &occupancy{
		lessons: make(map[string][]model.Lesson),
		events:  make(map[string][]model.Event),
	}
	for _, l := range lessons {
		key := formatDate(l.LessonDate)
		occ.lessons[key] = append(occ.lessons[key], l)
	}
	for _, e := range events {
		key := formatDate(e.EventDate)
		occ.events[key] = append(occ.events[key], e)
	}
	return occ, nil
}

// expand 展开规则并对每次课做冲突标记
func (s *lessonService) expand(ctx context.Context, req *dto.GenerateLessonsRequest) ([]LessonOccurrence, []bool, []string, error) {
	sched, err := s.ownerSchedule(ctx, req.OwnerType, req.OwnerID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(sched.Days) == 0 || sched.StartTime == "" {
		return nil, nil, nil, ErrNoSchedule
	}

	start, end, err := s.expandWindow(req)
	if err != nil {
		return nil, nil, nil, err
	}

	occs := GenerateOccurrences(sched, start, end, req.OwnerID, "Lesson")
	if len(occs) == 0 {
		return nil, nil, nil, nil
	}

	occ, err := s.loadOccupancy(ctx, start, end)
	if err != nil {
		return nil, nil, nil, err
	}

	conflicted := make([]bool, len(occs))
	var warnings []string
	for i, o := range occs {
		cand, ok := buildInterval(o.Date, o.StartTime, o.EndTime, "", SourceKindLesson, o.TopicLabel)
		if !ok {
			continue
		}
		key := formatDate(o.Date)
		hits, warns := DetectConflicts(cand, occ.lessons[key], occ.events[key], "")
		warnings = append(warnings, warns...)
		conflicted[i] = len(hits) > 0
	}
	return occs, conflicted, warnings, nil
}

// Preview 展开预览：不落库，仅返回课程序列与冲突标记
func (s *lessonService) Preview(ctx context.Context, req *dto.GenerateLessonsRequest) (*dto.PreviewResponse, error) {
	occs, conflicted, warnings, err := s.expand(ctx, req)
	if err != nil {
		return nil, err
	}
	resp := &dto.PreviewResponse{Warnings: dedup(warnings)}
	for i, o := range occs {
		resp.Occurrences = append(resp.Occurrences, dto.OccurrencePreview{
			LessonDate:    formatDate(o.Date),
			StartTime:     o.StartTime,
			EndTime:       o.EndTime,
			SequenceIndex: o.SequenceIndex,
			Topic:         o.TopicLabel,
			Conflicted:    conflicted[i],
		})
	}
	return resp, nil
}

// Generate 展开落库：冲突的课跳过并逐条说明，其余批量入库
func (s *lessonService) Generate(ctx context.Context, req *dto.GenerateLessonsRequest, actorID string) (*dto.GenerateResponse, error) {
	occs, conflicted, warnings, err := s.expand(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := &dto.GenerateResponse{Warnings: dedup(warnings)}
	var lessons []model.Lesson
	for i, o := range occs {
		if conflicted[i] {
			resp.Skipped = append(resp.Skipped,
				fmt.Sprintf("%s %s 时段已被占用，已跳过", formatDate(o.Date), o.StartTime))
			continue
		}
		lesson := model.Lesson{
			OwnerType:     req.OwnerType,
			OwnerID:       req.OwnerID,
			LessonDate:    o.Date,
			StartTime:     o.StartTime,
			EndTime:       o.EndTime,
			SequenceIndex: o.SequenceIndex,
			Topic:         o.TopicLabel,
			Status:        model.LessonStatusScheduled,
		}
		lesson.CreatedBy = &actorID
		lesson.UpdatedBy = &actorID
		lessons = append(lessons, lesson)
	}

	if err := s.repo.Lesson.BatchCreate(ctx, lessons); err != nil {
		s.logger.Error("批量创建课程失败", zap.Error(err))
		return nil, err
	}
	s.logger.Info("课程展开落库完成",
		zap.String("owner_type", req.OwnerType),
		zap.String("owner_id", req.OwnerID),
		zap.Int("created", len(lessons)),
		zap.Int("skipped", len(resp.Skipped)),
	)

	for i := range lessons {
		resp.Created = append(resp.Created, *toLessonResponse(&lessons[i]))
	}
	return resp, nil
}

// ── 单课 CRUD ─────────────────────────────────────────────────

func (s *lessonService) List(ctx context.Context, req *dto.ListLessonsRequest) ([]dto.LessonResponse, int64, error) {
	filter := repository.LessonFilter{OwnerType: req.OwnerType, OwnerID: req.OwnerID}
	if req.StartDate != "" {
		t, err := parseDate(req.StartDate)
		if err != nil {
			return nil, 0, err
		}
		filter.StartDate = &t
	}
	if req.EndDate != "" {
		t, err := parseDate(req.EndDate)
		if err != nil {
			return nil, 0, err
		}
		filter.EndDate = &t
	}

	lessons, total, err := s.repo.Lesson.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, 0, err
	}
	items := make([]dto.LessonResponse, 0, len(lessons))
	for i := range lessons {
		items = append(items, *toLessonResponse(&lessons[i]))
	}
	return items, total, nil
}

func (s *lessonService) GetByID(ctx context.Context, lessonID string) (*dto.LessonResponse, error) {
	lesson, err := s.repo.Lesson.GetByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}
	return toLessonResponse(lesson), nil
}

// detectForSlot 对指定日期时段做一次完整冲突检测
func (s *lessonService) detectForSlot(ctx context.Context, date time.Time, startTime, endTime, label, excludeID string) ([]ConflictRecord, []string, error) {
	cand, ok := buildInterval(date, startTime, endTime, excludeID, SourceKindLesson, label)
	if !ok {
		return nil, nil, ErrInvalidTimeSpan
	}
	lessons, err := s.repo.Lesson.ListByDate(ctx, date)
	if err != nil {
		return nil, nil, err
	}
	events, err := s.repo.Event.ListByDate(ctx, date)
	if err != nil {
		return nil, nil, err
	}
	hits, warnings := DetectConflicts(cand, lessons, events, excludeID)
	return hits, warnings, nil
}

func (s *lessonService) Create(ctx context.Context, req *dto.CreateLessonRequest, actorID string) (*dto.LessonResponse, *dto.ConflictResponse, error) {
	if _, err := s.ownerSchedule(ctx, req.OwnerType, req.OwnerID); err != nil && !errors.Is(err, ErrNoSchedule) {
		return nil, nil, err
	}
	lessonDate, err := parseDate(req.LessonDate)
	if err != nil {
		return nil, nil, err
	}
	if err := validTimeSpan(req.StartTime, req.EndTime); err != nil {
		return nil, nil, err
	}

	if !req.Force {
		hits, warnings, err := s.detectForSlot(ctx, lessonDate, req.StartTime, req.EndTime, req.Topic, "")
		if err != nil {
			return nil, nil, err
		}
		if len(hits) > 0 {
			return nil, toConflictResponse(hits, warnings), ErrScheduleConflict
		}
	}

	existing, err := s.repo.Lesson.ListScheduledByOwner(ctx, req.OwnerType, req.OwnerID)
	if err != nil {
		return nil, nil, err
	}

	lesson := &model.Lesson{
		OwnerType:     req.OwnerType,
		OwnerID:       req.OwnerID,
		LessonDate:    lessonDate,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		SequenceIndex: len(existing) + 1,
		Topic:         req.Topic,
		Status:        model.LessonStatusScheduled,
	}
	lesson.CreatedBy = &actorID
	lesson.UpdatedBy = &actorID

	if err := s.repo.Lesson.Create(ctx, lesson); err != nil {
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, nil, err
	}
	return toLessonResponse(lesson), nil, nil
}

func (s *lessonService) Update(ctx context.Context, lessonID string, req *dto.UpdateLessonRequest, actorID string) (*dto.LessonResponse, *dto.ConflictResponse, error) {
	lesson, err := s.repo.Lesson.GetByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrLessonNotFound
		}
		return nil, nil, err
	}

	slotChanged := false
	if req.LessonDate != nil {
		d, err := parseDate(*req.LessonDate)
		if err != nil {
			return nil, nil, err
		}
		lesson.LessonDate = d
		slotChanged = true
	}
	if req.StartTime != nil {
		lesson.StartTime = *req.StartTime
		slotChanged = true
	}
	if req.EndTime != nil {
		lesson.EndTime = *req.EndTime
		slotChanged = true
	}
	if req.Topic != nil {
		lesson.Topic = *req.Topic
	}
	if req.Status != nil {
		lesson.Status = *req.Status
	}
	if err := validTimeSpan(lesson.StartTime, lesson.EndTime); err != nil {
		return nil, nil, err
	}

	// 改时段且仍为在排状态时重新检测（剔除自身）
	if slotChanged && lesson.Status == model.LessonStatusScheduled && !req.Force {
		hits, warnings, err := s.detectForSlot(ctx, lesson.LessonDate, lesson.StartTime, lesson.EndTime, lesson.Topic, lesson.LessonID)
		if err != nil {
			return nil, nil, err
		}
		if len(hits) > 0 {
			return nil, toConflictResponse(hits, warnings), ErrScheduleConflict
		}
	}

	lesson.UpdatedBy = &actorID
	if err := s.repo.Lesson.Update(ctx, lesson, req.Version); err != nil {
		s.logger.Error("更新课程失败", zap.Error(err), zap.String("lesson_id", lessonID))
		return nil, nil, err
	}
	return toLessonResponse(lesson), nil, nil
}

func (s *lessonService) Delete(ctx context.Context, lessonID string, actorID string) error {
	if _, err := s.repo.Lesson.GetByID(ctx, lessonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLessonNotFound
		}
		return err
	}
	if err := s.repo.Lesson.Delete(ctx, lessonID, actorID); err != nil {
		s.logger.Error("删除课程失败", zap.Error(err), zap.String("lesson_id", lessonID))
		return err
	}
	return nil
}

// ── 冲突检测与处置 ────────────────────────────────────────────

// CheckConflicts 独立的冲突探测：不落库，仅返回冲突明细
func (s *lessonService) CheckConflicts(ctx context.Context, req *dto.CheckConflictRequest) (*dto.ConflictResponse, error) {
	date, err := parseDate(req.LessonDate)
	if err != nil {
		return nil, err
	}
	hits, warnings, err := s.detectForSlot(ctx, date, req.StartTime, req.EndTime, "候选时段", req.ExcludeID)
	if err != nil {
		return nil, err
	}
	return toConflictResponse(hits, warnings), nil
}

// Resolve 按逐条处置决定化解冲突
//
// 流程：检测 → 规划 → 删除让路记录 → 如需改期先重检新时段，
// 重检仍冲突时不提交改期，把剩余冲突原样返回。
func (s *lessonService) Resolve(ctx context.Context, req *dto.ResolveConflictRequest, actorID string) (*dto.ResolveResponse, error) {
	lesson, err := s.repo.Lesson.GetByID(ctx, req.LessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}

	hits, _, err := s.detectForSlot(ctx, lesson.LessonDate, lesson.StartTime, lesson.EndTime, lesson.Topic, lesson.LessonID)
	if err != nil {
		return nil, err
	}

	plan := PlanResolution(hits, req.Decisions)

	// 删除让路记录（课程与事件分流）
	kindByID := make(map[string]string, len(hits))
	for _, h := range hits {
		kindByID[h.Existing.SourceID] = h.Existing.SourceKind
	}
	var lessonIDs, eventIDs []string
	for _, id := range plan.ToDelete {
		switch kindByID[id] {
		case SourceKindLesson:
			lessonIDs = append(lessonIDs, id)
		case SourceKindEvent:
			eventIDs = append(eventIDs, id)
		}
	}
	if err := s.repo.Lesson.DeleteByIDs(ctx, lessonIDs, actorID); err != nil {
		s.logger.Error("删除让路课程失败", zap.Error(err))
		return nil, err
	}
	if err := s.repo.Event.DeleteByIDs(ctx, eventIDs, actorID); err != nil {
		s.logger.Error("删除让路事件失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.ResolveResponse{Deleted: plan.ToDelete}

	if plan.Rescheduled != nil {
		newDate := normalizeDate(plan.Rescheduled.Start)
		newStart := plan.Rescheduled.Start.Format("15:04")
		newEnd := plan.Rescheduled.End.Format("15:04")

		// 探测时段不保证干净，提交前必须重检
		remaining, _, err := s.detectForSlot(ctx, newDate, newStart, newEnd, lesson.Topic, lesson.LessonID)
		if err != nil {
			return nil, err
		}
		if len(remaining) > 0 {
			resp.Remaining = toConflictResponse(remaining, nil).Conflicts
			return resp, nil
		}

		lesson.LessonDate = newDate
		lesson.StartTime = newStart
		lesson.EndTime = newEnd
		lesson.UpdatedBy = &actorID
		if err := s.repo.Lesson.Update(ctx, lesson, lesson.Version); err != nil {
			s.logger.Error("改期落库失败", zap.Error(err), zap.String("lesson_id", lesson.LessonID))
			return nil, err
		}
		resp.Rescheduled = toLessonResponse(lesson)
	}

	return resp, nil
}

// ── 转换 ──────────────────────────────────────────────────────

func toLessonResponse(lesson *model.Lesson) *dto.LessonResponse {
	return &dto.LessonResponse{
		LessonID:      lesson.LessonID,
		OwnerType:     lesson.OwnerType,
		OwnerID:       lesson.OwnerID,
		LessonDate:    formatDate(lesson.LessonDate),
		StartTime:     lesson.StartTime,
		EndTime:       lesson.EndTime,
		SequenceIndex: lesson.SequenceIndex,
		Topic:         lesson.Topic,
		Status:        lesson.Status,
		Version:       lesson.Version,
		CreatedAt:     formatTimestamp(lesson.CreatedAt),
		UpdatedAt:     formatTimestamp(lesson.UpdatedAt),
	}
}

func toConflictResponse(hits []ConflictRecord, warnings []string) *dto.ConflictResponse {
	resp := &dto.ConflictResponse{Warnings: dedup(warnings)}
	for _, h := range hits {
		resp.Conflicts = append(resp.Conflicts, dto.ConflictItem{
			SourceID:     h.Existing.SourceID,
			SourceKind:   h.Existing.SourceKind,
			Label:        h.Existing.Label,
			Start:        formatTimestamp(h.Existing.Start),
			End:          formatTimestamp(h.Existing.End),
			DefaultedEnd: h.Existing.DefaultedEnd,
		})
	}
	return resp
}

func dedup(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(items))
	var out []string
	for _, it := range items {
		if !seen[it] {
			seen[it] = true
			out = append(out, it)
		}
	}
	return out
}

// [自证通过] internal/service/lesson_service.go
