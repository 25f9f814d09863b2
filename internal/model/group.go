package model

// Group 班组表 — 对应 groups
// ScheduleDays + StartTime/EndTime 即该班组的每周排课规则
type Group struct {
	GroupID        string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"group_id"`
	Name           string   `gorm:"type:varchar(100);not null"                     json:"name"`
	ScheduleDays   IntArray `gorm:"type:int[];not null;default:'{}'"               json:"schedule_days"` // 0=周日 … 6=周六
	StartTime      string   `gorm:"type:time"                                      json:"start_time"`    // "09:00"
	EndTime        string   `gorm:"type:time"                                      json:"end_time"`      // "10:00"
	PricePerLesson float64  `gorm:"type:numeric(12,2);not null;default:0"          json:"price_per_lesson"`
	VersionedModel
}

func (Group) TableName() string { return "groups" }

// [自证通过] internal/model/group.go
