package model

import "time"

// 账单频率
const (
	FrequencyDaily      = "daily"       // 每课一期
	FrequencyWeekly     = "weekly"      // 每周一期
	FrequencyFourWeekly = "four_weekly" // 每四周一期（以首课日期为锚）
)

// 账单状态
const (
	InstallmentUnpaid = "unpaid"
	InstallmentPaid   = "paid"
)

// Installment 分期账单表 — 对应 installments
type Installment struct {
	InstallmentID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"installment_id"`
	OwnerType     string     `gorm:"type:varchar(10);not null"                      json:"owner_type"`
	OwnerID       string     `gorm:"type:uuid;not null"                             json:"owner_id"`
	Number        int        `gorm:"type:int;not null"                              json:"number"` // 期数，从 1 开始
	Amount        float64    `gorm:"type:numeric(12,2);not null;default:0"          json:"amount"`
	DueDate       time.Time  `gorm:"type:date;not null"                             json:"due_date"`
	LessonCount   int        `gorm:"type:int;not null;default:0"                    json:"lesson_count"`
	Frequency     string     `gorm:"type:varchar(20);not null"                      json:"frequency"`
	Status        string     `gorm:"type:varchar(20);not null;default:'unpaid'"     json:"status"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	VersionedModel
}

func (Installment) TableName() string { return "installments" }

// [自证通过] internal/model/installment.go
