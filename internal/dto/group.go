package dto

// CreateGroupRequest 创建班组请求
type CreateGroupRequest struct {
	Name           string   `json:"name" binding:"required,max=100"`
	ScheduleDays   []string `json:"schedule_days" binding:"omitempty,dive,max=10"` // 星期名，如 "monday"
	StartTime      string   `json:"start_time" binding:"omitempty,len=5"`          // "09:00"
	EndTime        string   `json:"end_time" binding:"omitempty,len=5"`
	PricePerLesson float64  `json:"price_per_lesson" binding:"omitempty,min=0"`
}

// UpdateGroupRequest 更新班组请求（指针字段区分「未传」与「清空」）
type UpdateGroupRequest struct {
	Name           *string   `json:"name" binding:"omitempty,max=100"`
	ScheduleDays   *[]string `json:"schedule_days" binding:"omitempty,dive,max=10"`
	StartTime      *string   `json:"start_time" binding:"omitempty,len=5"`
	EndTime        *string   `json:"end_time" binding:"omitempty,len=5"`
	PricePerLesson *float64  `json:"price_per_lesson" binding:"omitempty,min=0"`
	Version        int       `json:"version" binding:"required,min=1"`
}

// GroupResponse 班组响应
type GroupResponse struct {
	GroupID        string   `json:"group_id"`
	Name           string   `json:"name"`
	ScheduleDays   []string `json:"schedule_days"`
	StartTime      string   `json:"start_time"`
	EndTime        string   `json:"end_time"`
	PricePerLesson float64  `json:"price_per_lesson"`
	StudentCount   int64    `json:"student_count"`
	Version        int      `json:"version"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
}
