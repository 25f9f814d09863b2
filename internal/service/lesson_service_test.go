package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"lessonloop/backend/config"
	"lessonloop/backend/internal/dto"
	"lessonloop/backend/internal/model"
	"lessonloop/backend/internal/repository"
)

func newLessonServiceForTest(t *testing.T) (LessonService, *repository.Repository) {
	t.Helper()
	repo, _, _, _ := newMockRepository()
	cfg := &config.Config{Billing: config.BillingConfig{DefaultWindowMonths: 3}}
	svc := NewLessonService(cfg, repo, zap.NewNop())

	// 周一、周三 09:00–10:00 的班组
	group := &model.Group{
		GroupID:        "g-1",
		Name:           "初级班",
		ScheduleDays:   model.IntArray{1, 3},
		StartTime:      "09:00",
		EndTime:        "10:00",
		PricePerLesson: 50,
	}
	if err := repo.Group.Create(context.Background(), group); err != nil {
		t.Fatalf("创建测试班组失败: %v", err)
	}
	return svc, repo
}

func TestLessonGenerate(t *testing.T) {
	svc, repo := newLessonServiceForTest(t)
	ctx := context.Background()

	resp, err := svc.Generate(ctx, &dto.GenerateLessonsRequest{
		OwnerType: model.OwnerTypeGroup,
		OwnerID:   "g-1",
		StartDate: "2026-03-02",
		EndDate:   "2026-03-15",
	}, "u-1")
	if err != nil {
		t.Fatalf("Generate 应成功: %v", err)
	}
	if len(resp.Created) != 4 {
		t.Fatalf("两整周每周两课应落库 4 次，得到 %d", len(resp.Created))
	}
	if len(resp.Skipped) != 0 {
		t.Errorf("无占用时不应有跳过，得到 %v", resp.Skipped)
	}
	if resp.Created[0].LessonDate != "2026-03-02" || resp.Created[0].Topic != "Lesson 1" {
		t.Errorf("首课应为 2026-03-02 Lesson 1，得到 %s %s", resp.Created[0].LessonDate, resp.Created[0].Topic)
	}

	lessons, err := repo.Lesson.ListScheduledByOwner(ctx, model.OwnerTypeGroup, "g-1")
	if err != nil || len(lessons) != 4 {
		t.Fatalf("落库后应可查回 4 次课: %v, %d", err, len(lessons))
	}
}

func TestLessonGenerateSkipsConflicts(t *testing.T) {
	svc, repo := newLessonServiceForTest(t)
	ctx := context.Background()

	// 2026-03-04（周三）整天被占用
	event := &model.Event{EventDate: date(2026, 3, 4), Title: "学校活动", IsAllDay: true, Source: model.EventSourceManual}
	if err := repo.Event.Create(ctx, event); err != nil {
		t.Fatalf("创建测试事件失败: %v", err)
	}

	resp, err := svc.Generate(ctx, &dto.GenerateLessonsRequest{
		OwnerType: model.OwnerTypeGroup,
		OwnerID:   "g-1",
		StartDate: "2026-03-02",
		EndDate:   "2026-03-08",
	}, "u-1")
	if err != nil {
		t.Fatalf("Generate 应成功: %v", err)
	}
	if len(resp.Created) != 1 {
		t.Fatalf("周三冲突应只落库周一 1 次，得到 %d", len(resp.Created))
	}
	if len(resp.Skipped) != 1 {
		t.Fatalf("冲突应逐条说明，得到 %d 条", len(resp.Skipped))
	}
}

func TestLessonGenerateNoSchedule(t *testing.T) {
	svc, repo := newLessonServiceForTest(t)
	ctx := context.Background()

	student := &model.Student{StudentID: "s-1", Name: "张三"}
	if err := repo.Student.Create(ctx, student); err != nil {
		t.Fatalf("创建测试学生失败: %v", err)
	}

	_, err := svc.Generate(ctx, &dto.GenerateLessonsRequest{
		OwnerType: model.OwnerTypeStudent,
		OwnerID:   "s-1",
		StartDate: "2026-03-02",
	}, "u-1")
	if !errors.Is(err, ErrNoSchedule) {
		t.Fatalf("未配置规则应返回 ErrNoSchedule，得到 %v", err)
	}

	_, err = svc.Generate(ctx, &dto.GenerateLessonsRequest{
		OwnerType: model.OwnerTypeGroup,
		OwnerID:   "g-404",
		StartDate: "2026-03-02",
	}, "u-1")
	if !errors.Is(err, ErrOwnerNotFound) {
		t.Fatalf("归属不存在应返回 ErrOwnerNotFound，得到 %v", err)
	}
}

func TestLessonPreviewMarksConflicts(t *testing.T) {
	svc, repo := newLessonServiceForTest(t)
	ctx := context.Background()

	event := &model.Event{EventDate: date(2026, 3, 2), Title: "试听", StartTime: "09:30", EndTime: "10:30", Source: model.EventSourceManual}
	if err := repo.Event.Create(ctx, event); err != nil {
		t.Fatalf("创建测试事件失败: %v", err)
	}

	resp, err := svc.Preview(ctx, &dto.GenerateLessonsRequest{
		OwnerType: model.OwnerTypeGroup,
		OwnerID:   "g-1",
		StartDate: "2026-03-02",
		EndDate:   "2026-03-08",
	})
	if err != nil {
		t.Fatalf("Preview 应成功: %v", err)
	}
	if len(resp.Occurrences) != 2 {
		t.Fatalf("一周应预览 2 次课，得到 %d", len(resp.Occurrences))
	}
	if !resp.Occurrences[0].Conflicted {
		t.Error("周一与试听重叠，应标记冲突")
	}
	if resp.Occurrences[1].Conflicted {
		t.Error("周三无占用，不应标记冲突")
	}
}

func TestLessonCreateConflict(t *testing.T) {
	svc, repo := newLessonServiceForTest(t)
	ctx := context.Background()

	existing := &model.Lesson{
		OwnerType: model.OwnerTypeGroup, OwnerID: "g-1",
		LessonDate: date(2026, 3, 2), StartTime: "09:00", EndTime: "10:00",
		Status: model.LessonStatusScheduled, Topic: "既有课",
	}
	if err := repo.Lesson.Create(ctx, existing); err != nil {
		t.Fatalf("创建既有课失败: %v", err)
	}

	req := &dto.CreateLessonRequest{
		OwnerType: model.OwnerTypeGroup, OwnerID: "g-1",
		LessonDate: "2026-03-02", StartTime: "09:30", EndTime: "10:30",
	}
	_, conflicts, err := svc.Create(ctx, req, "u-1")
	if !errors.Is(err, ErrScheduleConflict) {
		t.Fatalf("重叠时段应返回 ErrScheduleConflict，得到 %v", err)
	}
	if conflicts == nil || len(conflicts.Conflicts) != 1 {
		t.Fatalf("应携带 1 条冲突明细，得到 %+v", conflicts)
	}
	if conflicts.Conflicts[0].SourceID != existing.LessonID {
		t.Errorf("冲突来源应为既有课，得到 %s", conflicts.Conflicts[0].SourceID)
	}

	// force 跳过检测强制落库
	req.Force = true
	created, _, err := svc.Create(ctx, req, "u-1")
	if err != nil {
		t.Fatalf("Force 创建应成功: %v", err)
	}
	if created.SequenceIndex != 2 {
		t.Errorf("序号应顺延为 2，得到 %d", created.SequenceIndex)
	}
}

func TestLessonUpdateExcludesSelf(t *testing.T) {
	svc, repo := newLessonServiceForTest(t)
	ctx := context.Background()

	lesson := &model.Lesson{
		OwnerType: model.OwnerTypeGroup, OwnerID: "g-1",
		LessonDate: date(2026, 3, 2), StartTime: "09:00", EndTime: "10:00",
		Status: model.LessonStatusScheduled,
	}
	if err := repo.Lesson.Create(ctx, lesson); err != nil {
		t.Fatalf("创建课程失败: %v", err)
	}

	// 同日内小幅改时段，只与自己重叠，不应判为冲突
	newStart, newEnd := "09:30", "10:30"
	resp, conflicts, err := svc.Update(ctx, lesson.LessonID, &dto.UpdateLessonRequest{
		StartTime: &newStart, EndTime: &newEnd, Version: 1,
	}, "u-1")
	if err != nil {
		t.Fatalf("改课应成功: %v（冲突: %+v）", err, conflicts)
	}
	if resp.StartTime != "09:30" || resp.Version != 2 {
		t.Errorf("改课后应为 09:30 / 版本 2，得到 %s / %d", resp.StartTime, resp.Version)
	}

	// 版本过期应失败
	_, _, err = svc.Update(ctx, lesson.LessonID, &dto.UpdateLessonRequest{
		StartTime: &newStart, Version: 1,
	}, "u-1")
	if err == nil {
		t.Fatal("过期版本应更新失败")
	}
}

func TestLessonResolveDelete(t *testing.T) {
	svc, repo := newLessonServiceForTest(t)
	ctx := context.Background()

	lesson := &model.Lesson{
		OwnerType: model.OwnerTypeGroup, OwnerID: "g-1",
		LessonDate: date(2026, 3, 2), StartTime: "09:00", EndTime: "10:00",
		Status: model.LessonStatusScheduled,
	}
	blocker := &model.Event{EventDate: date(2026, 3, 2), Title: "家长会", StartTime: "09:30", EndTime: "10:30", Source: model.EventSourceManual}
	if err := repo.Lesson.Create(ctx, lesson); err != nil {
		t.Fatalf("创建课程失败: %v", err)
	}
	if err := repo.Event.Create(ctx, blocker); err != nil {
		t.Fatalf("创建事件失败: %v", err)
	}

	resp, err := svc.Resolve(ctx, &dto.ResolveConflictRequest{
		LessonID:  lesson.LessonID,
		Decisions: map[string]string{blocker.EventID: DecisionDelete},
	}, "u-1")
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	if len(resp.Deleted) != 1 || resp.Deleted[0] != blocker.EventID {
		t.Fatalf("应删除让路事件，得到 %v", resp.Deleted)
	}
	if _, err := repo.Event.GetByID(ctx, blocker.EventID); err == nil {
		t.Error("让路事件应已删除")
	}
	if resp.Rescheduled != nil {
		t.Error("删除路径不应产生改期")
	}
}

func TestLessonResolveReschedule(t *testing.T) {
	svc, repo := newLessonServiceForTest(t)
	ctx := context.Background()

	lesson := &model.Lesson{
		OwnerType: model.OwnerTypeGroup, OwnerID: "g-1",
		LessonDate: date(2026, 3, 2), StartTime: "09:00", EndTime: "10:00",
		Status: model.LessonStatusScheduled,
	}
	blocker := &model.Event{EventDate: date(2026, 3, 2), Title: "教研会", StartTime: "09:00", EndTime: "10:00", Source: model.EventSourceManual}
	if err := repo.Lesson.Create(ctx, lesson); err != nil {
		t.Fatalf("创建课程失败: %v", err)
	}
	if err := repo.Event.Create(ctx, blocker); err != nil {
		t.Fatalf("创建事件失败: %v", err)
	}

	resp, err := svc.Resolve(ctx, &dto.ResolveConflictRequest{
		LessonID:  lesson.LessonID,
		Decisions: map[string]string{blocker.EventID: DecisionReschedule},
	}, "u-1")
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	if resp.Rescheduled == nil {
		t.Fatal("reschedule 决定应产生改期")
	}
	// 紧贴既有结束 10:00
	if resp.Rescheduled.StartTime != "10:00" || resp.Rescheduled.EndTime != "11:00" {
		t.Errorf("改期应为 10:00–11:00，得到 %s–%s", resp.Rescheduled.StartTime, resp.Rescheduled.EndTime)
	}
	if len(resp.Remaining) != 0 {
		t.Errorf("新时段干净时不应有剩余冲突: %v", resp.Remaining)
	}

	moved, err := repo.Lesson.GetByID(ctx, lesson.LessonID)
	if err != nil {
		t.Fatalf("查询改期后课程失败: %v", err)
	}
	if moved.StartTime != "10:00" {
		t.Errorf("改期应已落库，得到 %s", moved.StartTime)
	}
}

func TestLessonResolveRescheduleStillConflicted(t *testing.T) {
	svc, repo := newLessonServiceForTest(t)
	ctx := context.Background()

	lesson := &model.Lesson{
		OwnerType: model.OwnerTypeGroup, OwnerID: "g-1",
		LessonDate: date(2026, 3, 2), StartTime: "09:00", EndTime: "10:00",
		Status: model.LessonStatusScheduled,
	}
	blocker := &model.Event{EventDate: date(2026, 3, 2), Title: "上午占用", StartTime: "09:00", EndTime: "10:00", Source: model.EventSourceManual}
	// 改期目标时段（10:00–11:00）也被占着
	squatter := &model.Event{EventDate: date(2026, 3, 2), Title: "午前占用", StartTime: "10:00", EndTime: "11:00", Source: model.EventSourceManual}
	if err := repo.Lesson.Create(ctx, lesson); err != nil {
		t.Fatalf("创建课程失败: %v", err)
	}
	if err := repo.Event.Create(ctx, blocker); err != nil {
		t.Fatalf("创建事件失败: %v", err)
	}
	if err := repo.Event.Create(ctx, squatter); err != nil {
		t.Fatalf("创建事件失败: %v", err)
	}

	resp, err := svc.Resolve(ctx, &dto.ResolveConflictRequest{
		LessonID:  lesson.LessonID,
		Decisions: map[string]string{blocker.EventID: DecisionReschedule},
	}, "u-1")
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	if resp.Rescheduled != nil {
		t.Fatal("重检仍冲突时不应提交改期")
	}
	if len(resp.Remaining) == 0 {
		t.Fatal("应返回剩余冲突")
	}

	unchanged, err := repo.Lesson.GetByID(ctx, lesson.LessonID)
	if err != nil {
		t.Fatalf("查询课程失败: %v", err)
	}
	if unchanged.StartTime != "09:00" {
		t.Errorf("课程时段不应被修改，得到 %s", unchanged.StartTime)
	}
}

func TestLessonCheckConflicts(t *testing.T) {
	svc, repo := newLessonServiceForTest(t)
	ctx := context.Background()

	lesson := &model.Lesson{
		OwnerType: model.OwnerTypeGroup, OwnerID: "g-1",
		LessonDate: date(2026, 3, 2), StartTime: "09:00", EndTime: "10:00",
		Status: model.LessonStatusScheduled, Topic: "代数",
	}
	if err := repo.Lesson.Create(ctx, lesson); err != nil {
		t.Fatalf("创建课程失败: %v", err)
	}

	resp, err := svc.CheckConflicts(ctx, &dto.CheckConflictRequest{
		LessonDate: "2026-03-02", StartTime: "09:30", EndTime: "10:30",
	})
	if err != nil {
		t.Fatalf("CheckConflicts 应成功: %v", err)
	}
	if len(resp.Conflicts) != 1 {
		t.Fatalf("应命中 1 条冲突，得到 %d", len(resp.Conflicts))
	}

	// 首尾相接不算冲突
	resp, err = svc.CheckConflicts(ctx, &dto.CheckConflictRequest{
		LessonDate: "2026-03-02", StartTime: "10:00", EndTime: "11:00",
	})
	if err != nil {
		t.Fatalf("CheckConflicts 应成功: %v", err)
	}
	if len(resp.Conflicts) != 0 {
		t.Errorf("相接时段不应冲突，得到 %d 条", len(resp.Conflicts))
	}
}

// [自证通过] internal/service/lesson_service_test.go
