package dto

// GenerateInstallmentsRequest 生成分期账单请求
// 对该归属现有 scheduled 课程按频率归集，覆盖旧的未支付账单
type GenerateInstallmentsRequest struct {
	OwnerType string `json:"owner_type" binding:"required,oneof=group student"`
	OwnerID   string `json:"owner_id" binding:"required,uuid"`
	Frequency string `json:"frequency" binding:"required,oneof=daily weekly four_weekly"`
}

// ListInstallmentsRequest 账单列表查询
type ListInstallmentsRequest struct {
	OwnerType string `form:"owner_type" binding:"required,oneof=group student"`
	OwnerID   string `form:"owner_id" binding:"required,uuid"`
	Status    string `form:"status" binding:"omitempty,oneof=unpaid paid"`
}

// MarkPaidRequest 标记支付请求
type MarkPaidRequest struct {
	Version int `json:"version" binding:"required,min=1"`
}

// InstallmentResponse 账单响应
type InstallmentResponse struct {
	InstallmentID string  `json:"installment_id"`
	OwnerType     string  `json:"owner_type"`
	OwnerID       string  `json:"owner_id"`
	Number        int     `json:"number"`
	Amount        float64 `json:"amount"`
	DueDate       string  `json:"due_date"`
	LessonCount   int     `json:"lesson_count"`
	Frequency     string  `json:"frequency"`
	Status        string  `json:"status"`
	PaidAt        string  `json:"paid_at,omitempty"`
	Version       int     `json:"version"`
}
