package service

import (
	"fmt"
	"strings"
	"time"
)

// ── 每周排课规则展开 ──────────────────────────────────────────
//
// 职责：把「星期集合 + 每日时段」的每周规则在日期窗口内展开为
// 具体日期的课程序列。
//
// 设计决策：
//   - 纯函数，不读时钟、不触库；相同输入必然得到相同输出
//   - 空星期集合 / 起止倒置 / 星期名全部非法 → 返回空序列而非报错
//     （未排课是常态配置，不是异常）
//   - 序号按时间顺序从 1 开始连续编号
// ─────────────────────────────────────────────────────────────

// WeeklySchedule 每周排课规则（一次展开调用期间不可变）
type WeeklySchedule struct {
	Days      []int  // 0=周日 … 6=周六
	StartTime string // "09:00"
	EndTime   string // "10:00"
}

// LessonOccurrence 展开得到的一次具体课
type LessonOccurrence struct {
	OwnerID       string
	Date          time.Time // 当日零点（UTC）
	StartTime     string
	EndTime       string
	SequenceIndex int // 从 1 开始
	TopicLabel    string
}

// 星期名 → 索引（周日=0 … 周六=6），兼容全称与三字母缩写
var weekdayNames = map[string]int{
	"sunday": 0, "sun": 0,
	"monday": 1, "mon": 1,
	"tuesday": 2, "tue": 2,
	"wednesday": 3, "wed": 3,
	"thursday": 4, "thu": 4,
	"friday": 5, "fri": 5,
	"saturday": 6, "sat": 6,
}

// weekdayIndex 将星期名映射为索引；未知名称返回 ok=false，由调用方丢弃
func weekdayIndex(name string) (int, bool) {
	idx, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	return idx, ok
}

// normalizeDate 归一化为当日零点（UTC），日期比较均基于该形式
func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysInRange 枚举 [start, end] 的每一天（含两端）；start > end 时返回空
func daysInRange(start, end time.Time) []time.Time {
	start = normalizeDate(start)
	end = normalizeDate(end)
	if start.After(end) {
		return nil
	}
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// weekBucketKey 返回 date 所在 ISO 周的周一（周按周一起算）
func weekBucketKey(date time.Time) time.Time {
	d := normalizeDate(date)
	offset := (int(d.Weekday()) + 6) % 7 // Monday=0 … Sunday=6
	return d.AddDate(0, 0, -offset)
}

// GenerateOccurrences 在 [start, end] 窗口内展开每周排课规则
//
// 参数：
//   - sched: 每周规则；Days 为空时返回空序列
//   - ownerID: 归属（班组或学生）ID，原样写入每次课
//   - topicPrefix: 课题前缀，与序号拼出默认课题（如 "Lesson 7"）
func GenerateOccurrences(sched WeeklySchedule, start, end time.Time, ownerID, topicPrefix string) []LessonOccurrence {
	if len(sched.Days) == 0 {
		return nil
	}

	wanted := make(map[int]bool, len(sched.Days))
	for _, d := range sched.Days {
		if d >= 0 && d <= 6 {
			wanted[d] = true
		}
	}
	if len(wanted) == 0 {
		return nil
	}

	var result []LessonOccurrence
	seq := 0
	for _, day := range daysInRange(start, end) {
		if !wanted[int(day.Weekday())] {
			continue
		}
		seq++
		result = append(result, LessonOccurrence{
			OwnerID:       ownerID,
			Date:          day,
			StartTime:     sched.StartTime,
			EndTime:       sched.EndTime,
			SequenceIndex: seq,
			TopicLabel:    strings.TrimSpace(fmt.Sprintf("%s %d", topicPrefix, seq)),
		})
	}
	return result
}
