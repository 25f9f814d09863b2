package dto

// CreateEventRequest 创建事件请求
type CreateEventRequest struct {
	Title     string `json:"title" binding:"required,max=200"`
	EventDate string `json:"event_date" binding:"required,len=10"`
	StartTime string `json:"start_time" binding:"omitempty,len=5"` // 非全天时必填，业务层校验
	EndTime   string `json:"end_time" binding:"omitempty,len=5"`
	IsAllDay  bool   `json:"is_all_day"`
}

// UpdateEventRequest 更新事件请求
type UpdateEventRequest struct {
	Title     *string `json:"title" binding:"omitempty,max=200"`
	EventDate *string `json:"event_date" binding:"omitempty,len=10"`
	StartTime *string `json:"start_time" binding:"omitempty,len=5"`
	EndTime   *string `json:"end_time" binding:"omitempty,len=5"`
	IsAllDay  *bool   `json:"is_all_day"`
	Version   int     `json:"version" binding:"required,min=1"`
}

// ListEventsRequest 事件列表查询
type ListEventsRequest struct {
	PaginationRequest
	StartDate string `form:"start_date" binding:"omitempty,len=10"`
	EndDate   string `form:"end_date" binding:"omitempty,len=10"`
	Source    string `form:"source" binding:"omitempty,oneof=manual ics"`
}

// ImportICSResponse 日历导入响应
type ImportICSResponse struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"` // 缺日期等无法落库的条目
	Warnings []string `json:"warnings,omitempty"`
}

// EventResponse 事件响应
type EventResponse struct {
	EventID   string `json:"event_id"`
	Title     string `json:"title"`
	EventDate string `json:"event_date"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
	IsAllDay  bool   `json:"is_all_day"`
	Source    string `json:"source"`
	Version   int    `json:"version"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
