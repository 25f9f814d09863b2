package service

import (
	"fmt"
	"io"

	ics "github.com/arran4/golang-ical"

	"lessonloop/backend/internal/model"
)

// parseICSEvents 把 iCalendar 数据中的 VEVENT 逐条转为事件记录
//
// 只接收具体日期的条目：没有 DTSTART 的跳过并记警告。
// DTSTART 带 VALUE=DATE 参数的按全天事件处理。
func parseICSEvents(r io.Reader) (events []model.Event, skipped int, warnings []string, err error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("解析 iCalendar 失败: %w", err)
	}

	for _, ve := range cal.Events() {
		title := "未命名事件"
		if p := ve.GetProperty(ics.ComponentPropertySummary); p != nil && p.Value != "" {
			title = p.Value
		}

		start, err := ve.GetStartAt()
		if err != nil {
			skipped++
			warnings = append(warnings, fmt.Sprintf("条目 %q 缺少开始时间，已跳过", title))
			continue
		}

		allDay := false
		if p := ve.GetProperty(ics.ComponentPropertyDtStart); p != nil {
			if vals, ok := p.ICalParameters["VALUE"]; ok && len(vals) > 0 && vals[0] == "DATE" {
				allDay = true
			}
		}

		event := model.Event{
			Title:     title,
			EventDate: normalizeDate(start),
			IsAllDay:  allDay,
			Source:    model.EventSourceICS,
		}
		if !allDay {
			event.StartTime = start.Format("15:04")
			if end, err := ve.GetEndAt(); err == nil && end.After(start) {
				event.EndTime = end.Format("15:04")
			} else {
				warnings = append(warnings, fmt.Sprintf("条目 %q 缺少结束时间，按 1 小时处理", title))
			}
		}
		events = append(events, event)
	}

	return events, skipped, warnings, nil
}
