package handler

import (
	"github.com/gin-gonic/gin"

	"lessonloop/backend/internal/dto"
	"lessonloop/backend/internal/service"
	"lessonloop/backend/pkg/response"
)

// StudentHandler 学生管理接口
type StudentHandler struct {
	svc service.StudentService
}

func NewStudentHandler(svc service.StudentService) *StudentHandler {
	return &StudentHandler{svc: svc}
}

// Create POST /api/v1/students
func (h *StudentHandler) Create(c *gin.Context) {
	var req dto.CreateStudentRequest
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

// Get GET /api/v1/students/:id
func (h *StudentHandler) Get(c *gin.Context) {
	resp, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, resp)
}

// List GET /api/v1/students?group_id=
func (h *StudentHandler) List(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 40001, "分页参数无效: "+err.Error())
		return
	}
	items, total, err := h.svc.List(c.Request.Context(), c.Query("group_id"), &page)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OKPage(c, items, total, page.GetPage(), page.GetPageSize())
}

// Update PUT /api/v1/students/:id
func (h *StudentHandler) Update(c *gin.Context) {
	var req dto.UpdateStudentRequest
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

// Delete DELETE /api/v1/students/:id
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), MustGetUserID(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, nil)
}
