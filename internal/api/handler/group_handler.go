package handler

import (
	"github.com/gin-gonic/gin"

	"lessonloop/backend/internal/dto"
	"lessonloop/backend/internal/service"
	"lessonloop/backend/pkg/response"
)

// GroupHandler 班组管理接口
type GroupHandler struct {
	svc service.GroupService
}

func NewGroupHandler(svc service.GroupService) *GroupHandler {
	return &GroupHandler{svc: svc}
}

// Create POST /api/v1/groups
func (h *GroupHandler) Create(c *gin.Context) {
	var req dto.CreateGroupRequest
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

// Get GET /api/v1/groups/:id
func (h *GroupHandler) Get(c *gin.Context) {
	resp, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, resp)
}

// List GET /api/v1/groups
func (h *GroupHandler) List(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 40001, "分页参数无效: "+err.Error())
		return
	}
	items, total, err := h.svc.List(c.Request.Context(), &page)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OKPage(c, items, total, page.GetPage(), page.GetPageSize())
}

// Update PUT /api/v1/groups/:id
func (h *GroupHandler) Update(c *gin.Context) {
	var req dto.UpdateGroupRequest
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

// Delete DELETE /api/v1/groups/:id
func (h *GroupHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), MustGetUserID(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, nil)
}
