package service

import (
	"testing"
	"time"

	"lessonloop/backend/internal/model"
)

func mustInterval(t *testing.T, day time.Time, start, end, id, kind, label string) Interval {
	t.Helper()
	iv, ok := buildInterval(day, start, end, id, kind, label)
	if !ok {
		t.Fatalf("buildInterval(%s, %s) 应成功", start, end)
	}
	return iv
}

func TestOverlaps(t *testing.T) {
	day := date(2026, 3, 2)
	a := mustInterval(t, day, "09:00", "10:00", "a", SourceKindLesson, "A")

	cases := []struct {
		name       string
		start, end string
		want       bool
	}{
		{"完全包含", "08:00", "11:00", true},
		{"部分重叠", "09:30", "10:30", true},
		{"首尾相接不算冲突", "10:00", "11:00", false},
		{"前一段相接不算冲突", "08:00", "09:00", false},
		{"完全分离", "11:00", "12:00", false},
		{"完全相同", "09:00", "10:00", true},
	}
	for _, c := range cases {
		b := mustInterval(t, day, c.start, c.end, "b", SourceKindLesson, "B")
		if got := overlaps(a, b); got != c.want {
			t.Errorf("%s: overlaps = %v，期望 %v", c.name, got, c.want)
		}
		if got := overlaps(b, a); got != c.want {
			t.Errorf("%s: 重叠判断应对称，反向得到 %v", c.name, got)
		}
	}
}

func TestBuildIntervalDefaultedEnd(t *testing.T) {
	day := date(2026, 3, 2)

	iv, ok := buildInterval(day, "09:00", "", "x", SourceKindLesson, "X")
	if !ok {
		t.Fatal("缺少结束时间不应导致失败")
	}
	if !iv.DefaultedEnd {
		t.Error("缺少结束时间应标记 DefaultedEnd")
	}
	if !iv.End.Equal(iv.Start.Add(time.Hour)) {
		t.Errorf("回退时长应为 1 小时，得到 %v", iv.End.Sub(iv.Start))
	}

	// 结束早于开始同样回退
	iv, _ = buildInterval(day, "09:00", "08:00", "x", SourceKindLesson, "X")
	if !iv.DefaultedEnd {
		t.Error("结束早于开始应按缺失处理并回退")
	}

	if _, ok := buildInterval(day, "not-a-time", "10:00", "x", SourceKindLesson, "X"); ok {
		t.Error("开始时刻非法应返回 ok=false")
	}
}

func TestEventIntervalAllDay(t *testing.T) {
	e := &model.Event{EventID: "e1", Title: "学校运动会", EventDate: date(2026, 3, 2), IsAllDay: true}
	iv, ok := eventInterval(e)
	if !ok {
		t.Fatal("全天事件折算应成功")
	}
	if !iv.Start.Equal(date(2026, 3, 2)) {
		t.Errorf("全天事件应从 00:00:00 开始，得到 %v", iv.Start)
	}
	if iv.End.Hour() != 23 || iv.End.Minute() != 59 || iv.End.Second() != 59 {
		t.Errorf("全天事件应到 23:59:59 结束，得到 %v", iv.End)
	}

	// 全天事件与当天任何时段都冲突
	lesson := mustInterval(t, date(2026, 3, 2), "09:00", "10:00", "l1", SourceKindLesson, "L")
	if !overlaps(iv, lesson) {
		t.Error("全天事件应与当天任意课程冲突")
	}
}

func TestDetectConflicts(t *testing.T) {
	day := date(2026, 3, 2)
	lessons := []model.Lesson{
		{LessonID: "l1", LessonDate: day, StartTime: "09:00", EndTime: "10:00", Status: model.LessonStatusScheduled, Topic: "代数"},
		{LessonID: "l2", LessonDate: day, StartTime: "10:00", EndTime: "11:00", Status: model.LessonStatusScheduled, Topic: "几何"},
		{LessonID: "l3", LessonDate: day, StartTime: "09:00", EndTime: "10:00", Status: model.LessonStatusCancelled, Topic: "已取消"},
	}
	events := []model.Event{
		{EventID: "e1", Title: "家长会", EventDate: day, StartTime: "09:30", EndTime: "10:30"},
	}

	cand := mustInterval(t, day, "09:30", "10:00", "new", SourceKindLesson, "新课")
	conflicts, warnings := DetectConflicts(cand, lessons, events, "")

	if len(conflicts) != 2 {
		t.Fatalf("应命中 l1 与 e1 两条冲突，得到 %d", len(conflicts))
	}
	if conflicts[0].Existing.SourceID != "l1" || conflicts[1].Existing.SourceID != "e1" {
		t.Errorf("冲突来源错误: %s, %s", conflicts[0].Existing.SourceID, conflicts[1].Existing.SourceID)
	}
	if len(warnings) != 0 {
		t.Errorf("起止齐全不应有警告，得到 %v", warnings)
	}
}

func TestDetectConflictsExcludeSelf(t *testing.T) {
	day := date(2026, 3, 2)
	lessons := []model.Lesson{
		{LessonID: "l1", LessonDate: day, StartTime: "09:00", EndTime: "10:00", Status: model.LessonStatusScheduled},
	}
	// 改课场景：候选就是 l1 的新时段，应剔除自身
	cand := mustInterval(t, day, "09:30", "10:30", "l1", SourceKindLesson, "改课")
	conflicts, _ := DetectConflicts(cand, lessons, nil, "l1")
	if len(conflicts) != 0 {
		t.Errorf("应剔除待改课自身，得到 %d 条冲突", len(conflicts))
	}
}

func TestDetectConflictsDefaultedEndWarning(t *testing.T) {
	day := date(2026, 3, 2)
	lessons := []model.Lesson{
		{LessonID: "l1", LessonDate: day, StartTime: "09:00", Status: model.LessonStatusScheduled, Topic: "缺结束"},
	}
	cand := mustInterval(t, day, "09:30", "10:30", "new", SourceKindLesson, "新课")
	conflicts, warnings := DetectConflicts(cand, lessons, nil, "")

	if len(conflicts) != 1 {
		t.Fatalf("按 1 小时回退后应命中冲突，得到 %d", len(conflicts))
	}
	if len(warnings) != 1 {
		t.Fatalf("结束时间回退应产生 1 条警告，得到 %d", len(warnings))
	}
	if !conflicts[0].Existing.DefaultedEnd {
		t.Error("回退得到的区间应带 DefaultedEnd 标记")
	}
}

func TestPlanResolutionDelete(t *testing.T) {
	day := date(2026, 3, 2)
	cand := mustInterval(t, day, "09:00", "10:00", "new", SourceKindLesson, "新课")
	ex1 := mustInterval(t, day, "09:00", "10:00", "l1", SourceKindLesson, "旧课一")
	ex2 := mustInterval(t, day, "09:30", "10:30", "e1", SourceKindEvent, "事件")
	conflicts := []ConflictRecord{{cand, ex1}, {cand, ex2}, {cand, ex1}}

	plan := PlanResolution(conflicts, map[string]string{"l1": DecisionDelete, "e1": DecisionDelete})
	if len(plan.ToDelete) != 2 {
		t.Fatalf("删除清单应去重为 2 条，得到 %d", len(plan.ToDelete))
	}
	if plan.ToDelete[0] != "l1" || plan.ToDelete[1] != "e1" {
		t.Errorf("删除顺序应按首次出现: %v", plan.ToDelete)
	}
	if plan.Rescheduled != nil {
		t.Error("全部删除时不应产生改期")
	}
}

func TestPlanResolutionReschedule(t *testing.T) {
	day := date(2026, 3, 2)
	// 候选与既有完全重合（09:00–10:00）：新时段应紧贴既有结束，即 10:00–11:00
	cand := mustInterval(t, day, "09:00", "10:00", "new", SourceKindLesson, "新课")
	existing := mustInterval(t, day, "09:00", "10:00", "l1", SourceKindLesson, "旧课")
	conflicts := []ConflictRecord{{cand, existing}}

	plan := PlanResolution(conflicts, map[string]string{"l1": DecisionReschedule})
	if plan.Rescheduled == nil {
		t.Fatal("reschedule 决定应产生改期时段")
	}
	if plan.Rescheduled.Start.Hour() != 10 || plan.Rescheduled.Start.Minute() != 0 {
		t.Errorf("改期起始应为既有结束时刻（10:00），得到 %v", plan.Rescheduled.Start)
	}
	if plan.Rescheduled.End.Hour() != 11 || plan.Rescheduled.End.Minute() != 0 {
		t.Errorf("改期结束应为 11:00，得到 %v", plan.Rescheduled.End)
	}
}

func TestPlanResolutionRescheduleKeepsDuration(t *testing.T) {
	day := date(2026, 3, 2)
	cand := mustInterval(t, day, "09:00", "10:30", "new", SourceKindLesson, "新课")
	existing := mustInterval(t, day, "09:00", "10:00", "l1", SourceKindLesson, "旧课")
	conflicts := []ConflictRecord{{cand, existing}}

	plan := PlanResolution(conflicts, map[string]string{"l1": DecisionReschedule})
	if plan.Rescheduled == nil {
		t.Fatal("应产生改期时段")
	}
	if plan.Rescheduled.Start.Hour() != 10 || plan.Rescheduled.Start.Minute() != 0 {
		t.Errorf("改期起始应为 10:00，得到 %v", plan.Rescheduled.Start)
	}
	if got := plan.Rescheduled.End.Sub(plan.Rescheduled.Start); got != 90*time.Minute {
		t.Errorf("改期应保持原时长 90 分钟，得到 %v", got)
	}
}

func TestPlanResolutionRescheduleTooLate(t *testing.T) {
	day := date(2026, 3, 2)
	cand := mustInterval(t, day, "20:00", "21:00", "new", SourceKindLesson, "新课")
	existing := mustInterval(t, day, "20:30", "22:30", "l1", SourceKindLesson, "晚课")
	conflicts := []ConflictRecord{{cand, existing}}

	// 既有结束 22:30，起始 ≥ 22:00 → 改为最早冲突起始 20:30 - 2h = 18:30
	plan := PlanResolution(conflicts, map[string]string{"l1": DecisionReschedule})
	if plan.Rescheduled == nil {
		t.Fatal("应产生改期时段")
	}
	if plan.Rescheduled.Start.Hour() != 18 || plan.Rescheduled.Start.Minute() != 30 {
		t.Errorf("过晚时应改为最早冲突起始前 2 小时（18:30），得到 %v", plan.Rescheduled.Start)
	}
}

func TestPlanResolutionRescheduleClampMorning(t *testing.T) {
	day := date(2026, 3, 2)
	// 既有占用横跨 09:00–22:30：探测起始 22:30 过晚 →
	// 回退为最早冲突起始 09:00 - 2h = 07:00 → 钳到当日 08:00
	cand := mustInterval(t, day, "09:00", "10:00", "new", SourceKindLesson, "新课")
	marathon := mustInterval(t, day, "09:00", "22:30", "e1", SourceKindEvent, "全天培训")
	conflicts := []ConflictRecord{{cand, marathon}}

	plan := PlanResolution(conflicts, map[string]string{"e1": DecisionReschedule})
	if plan.Rescheduled == nil {
		t.Fatal("应产生改期时段")
	}
	if plan.Rescheduled.Start.Hour() != businessOpenHour || plan.Rescheduled.Start.Minute() != 0 {
		t.Errorf("早于营业时间应钳到 08:00，得到 %v", plan.Rescheduled.Start)
	}
	if !normalizeDate(plan.Rescheduled.Start).Equal(day) {
		t.Errorf("钳制后仍应落在当日，得到 %v", plan.Rescheduled.Start)
	}
}

func TestPlanResolutionIgnoreUndecided(t *testing.T) {
	day := date(2026, 3, 2)
	cand := mustInterval(t, day, "09:00", "10:00", "new", SourceKindLesson, "新课")
	existing := mustInterval(t, day, "09:00", "10:00", "l1", SourceKindLesson, "旧课")
	plan := PlanResolution([]ConflictRecord{{cand, existing}}, nil)
	if len(plan.ToDelete) != 0 || plan.Rescheduled != nil {
		t.Error("未作决定的冲突不应进入处置方案")
	}
}

// [自证通过] internal/service/interval_test.go
