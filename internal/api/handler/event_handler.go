package handler

import (
	"github.com/gin-gonic/gin"

	"lessonloop/backend/internal/dto"
	"lessonloop/backend/internal/service"
	"lessonloop/backend/pkg/response"
)

// 日历文件大小上限 2MB
const maxICSFileSize = 2 << 20

// EventHandler 事件管理与日历导入接口
type EventHandler struct {
	svc service.EventService
}

func NewEventHandler(svc service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// Create POST /api/v1/events
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "请求参数无效: "+err.Error())
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), &req, MustGetUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, resp)
}

// Get GET /api/v1/events/:id
func (h *EventHandler) Get(c *gin.Context) {
	resp, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, resp)
}

// List GET /api/v1/events
func (h *EventHandler) List(c *gin.Context) {
	var req dto.ListEventsRequest
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

// Update PUT /api/v1/events/:id
func (h *EventHandler) Update(c *gin.Context) {
	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "请求参数无效: "+err.Error())
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req, MustGetUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, resp)
}

// Delete DELETE /api/v1/events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), MustGetUserID(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, nil)
}

// ImportICS POST /api/v1/events/import（multipart，字段名 file）
func (h *EventHandler) ImportICS(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 40001, "缺少日历文件")
		return
	}
	if fileHeader.Size > maxICSFileSize {
		response.BadRequest(c, 40002, "日历文件不能超过 2MB")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, 40001, "日历文件打开失败")
		return
	}
	defer f.Close()

	resp, err := h.svc.ImportICS(c.Request.Context(), f, MustGetUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, resp)
}
