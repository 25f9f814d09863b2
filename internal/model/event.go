package model

import "time"

// 事件来源
const (
	EventSourceManual = "manual"
	EventSourceICS    = "ics"
)

// Event 事件表 — 对应 events
// 一次性事项（试听、家长会、外部日历导入的占用时段等），参与冲突检测
type Event struct {
	EventID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"event_id"`
	Title     string    `gorm:"type:varchar(200);not null"                     json:"title"`
	EventDate time.Time `gorm:"type:date;not null;column:event_date"           json:"event_date"`
	StartTime string    `gorm:"type:time"                                      json:"start_time"`
	EndTime   string    `gorm:"type:time"                                      json:"end_time"`
	IsAllDay  bool      `gorm:"not null;default:false"                         json:"is_all_day"`
	Source    string    `gorm:"type:varchar(20);not null;default:'manual'"     json:"source"` // manual | ics
	VersionedModel
}

func (Event) TableName() string { return "events" }

// [自证通过] internal/model/event.go
