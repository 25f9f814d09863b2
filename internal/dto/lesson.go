package dto

// GenerateLessonsRequest 按每周规则展开课程（预览或落库共用）
type GenerateLessonsRequest struct {
	OwnerType string `json:"owner_type" binding:"required,oneof=group student"`
	OwnerID   string `json:"owner_id" binding:"required,uuid"`
	StartDate string `json:"start_date" binding:"required,len=10"` // "2026-03-02"
	EndDate   string `json:"end_date" binding:"omitempty,len=10"`  // 缺省按配置窗口
}

// CreateLessonRequest 手工创建单次课
type CreateLessonRequest struct {
	OwnerType  string `json:"owner_type" binding:"required,oneof=group student"`
	OwnerID    string `json:"owner_id" binding:"required,uuid"`
	LessonDate string `json:"lesson_date" binding:"required,len=10"`
	StartTime  string `json:"start_time" binding:"required,len=5"`
	EndTime    string `json:"end_time" binding:"omitempty,len=5"`
	Topic      string `json:"topic" binding:"omitempty,max=200"`
	Force      bool   `json:"force"` // true 时忽略冲突强制落库
}

// UpdateLessonRequest 改课请求
type UpdateLessonRequest struct {
	LessonDate *string `json:"lesson_date" binding:"omitempty,len=10"`
	StartTime  *string `json:"start_time" binding:"omitempty,len=5"`
	EndTime    *string `json:"end_time" binding:"omitempty,len=5"`
	Topic      *string `json:"topic" binding:"omitempty,max=200"`
	Status     *string `json:"status" binding:"omitempty,oneof=scheduled cancelled"`
	Force      bool    `json:"force"`
	Version    int     `json:"version" binding:"required,min=1"`
}

// ListLessonsRequest 课程列表查询
type ListLessonsRequest struct {
	PaginationRequest
	OwnerType string `form:"owner_type" binding:"omitempty,oneof=group student"`
	OwnerID   string `form:"owner_id" binding:"omitempty,uuid"`
	StartDate string `form:"start_date" binding:"omitempty,len=10"`
	EndDate   string `form:"end_date" binding:"omitempty,len=10"`
}

// CheckConflictRequest 单独的冲突检测请求（不落库）
type CheckConflictRequest struct {
	LessonDate string `json:"lesson_date" binding:"required,len=10"`
	StartTime  string `json:"start_time" binding:"required,len=5"`
	EndTime    string `json:"end_time" binding:"omitempty,len=5"`
	ExcludeID  string `json:"exclude_id" binding:"omitempty,uuid"` // 改课时剔除自身
}

// ResolveConflictRequest 冲突处置请求
type ResolveConflictRequest struct {
	LessonID  string            `json:"lesson_id" binding:"required,uuid"`
	Decisions map[string]string `json:"decisions" binding:"required"` // 既有记录 ID → delete | reschedule
}

// LessonResponse 课程响应
type LessonResponse struct {
	LessonID      string `json:"lesson_id"`
	OwnerType     string `json:"owner_type"`
	OwnerID       string `json:"owner_id"`
	LessonDate    string `json:"lesson_date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time,omitempty"`
	SequenceIndex int    `json:"sequence_index"`
	Topic         string `json:"topic,omitempty"`
	Status        string `json:"status"`
	Version       int    `json:"version"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// OccurrencePreview 展开预览中的一次课（未落库，无 ID）
type OccurrencePreview struct {
	LessonDate    string `json:"lesson_date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	SequenceIndex int    `json:"sequence_index"`
	Topic         string `json:"topic"`
	Conflicted    bool   `json:"conflicted"` // 该日时段已被占用
}

// PreviewResponse 展开预览响应
type PreviewResponse struct {
	Occurrences []OccurrencePreview `json:"occurrences"`
	Warnings    []string            `json:"warnings,omitempty"`
}

// GenerateResponse 展开落库响应
type GenerateResponse struct {
	Created  []LessonResponse `json:"created"`
	Skipped  []string         `json:"skipped,omitempty"` // 因冲突跳过的日期说明
	Warnings []string         `json:"warnings,omitempty"`
}

// ConflictItem 一条冲突的对外表示
type ConflictItem struct {
	SourceID     string `json:"source_id"`
	SourceKind   string `json:"source_kind"` // lesson | event
	Label        string `json:"label"`
	Start        string `json:"start"` // "2026-03-02T09:00:00Z"
	End          string `json:"end"`
	DefaultedEnd bool   `json:"defaulted_end"`
}

// ConflictResponse 冲突检测响应
type ConflictResponse struct {
	Conflicts []ConflictItem `json:"conflicts"`
	Warnings  []string       `json:"warnings,omitempty"`
}

// ResolveResponse 冲突处置响应
type ResolveResponse struct {
	Deleted     []string        `json:"deleted,omitempty"`
	Rescheduled *LessonResponse `json:"rescheduled,omitempty"`
	Remaining   []ConflictItem  `json:"remaining,omitempty"` // 处置后重检仍存在的冲突
}
