package dto

// CreateStudentRequest 创建学生请求
// 入组学生（GroupID 非空）跟随班组排课；一对一学生自带每周规则
type CreateStudentRequest struct {
	Name           string   `json:"name" binding:"required,max=100"`
	Phone          string   `json:"phone" binding:"omitempty,max=20"`
	GroupID        *string  `json:"group_id" binding:"omitempty,uuid"`
	ScheduleDays   []string `json:"schedule_days" binding:"omitempty,dive,max=10"`
	StartTime      string   `json:"start_time" binding:"omitempty,len=5"`
	EndTime        string   `json:"end_time" binding:"omitempty,len=5"`
	PricePerLesson float64  `json:"price_per_lesson" binding:"omitempty,min=0"`
}

// UpdateStudentRequest 更新学生请求
type UpdateStudentRequest struct {
	Name           *string   `json:"name" binding:"omitempty,max=100"`
	Phone          *string   `json:"phone" binding:"omitempty,max=20"`
	GroupID        *string   `json:"group_id" binding:"omitempty,uuid"`
	ScheduleDays   *[]string `json:"schedule_days" binding:"omitempty,dive,max=10"`
	StartTime      *string   `json:"start_time" binding:"omitempty,len=5"`
	EndTime        *string   `json:"end_time" binding:"omitempty,len=5"`
	PricePerLesson *float64  `json:"price_per_lesson" binding:"omitempty,min=0"`
	Version        int       `json:"version" binding:"required,min=1"`
}

// StudentResponse 学生响应
type StudentResponse struct {
	StudentID      string   `json:"student_id"`
	Name           string   `json:"name"`
	Phone          string   `json:"phone,omitempty"`
	GroupID        *string  `json:"group_id,omitempty"`
	GroupName      string   `json:"group_name,omitempty"`
	ScheduleDays   []string `json:"schedule_days"`
	StartTime      string   `json:"start_time"`
	EndTime        string   `json:"end_time"`
	PricePerLesson float64  `json:"price_per_lesson"`
	Version        int      `json:"version"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
}
