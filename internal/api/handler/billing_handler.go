package handler

import (
	"github.com/gin-gonic/gin"

	"lessonloop/backend/internal/dto"
	"lessonloop/backend/internal/service"
	"lessonloop/backend/pkg/response"
)

// BillingHandler 分期账单接口
type BillingHandler struct {
	svc service.BillingService
}

func NewBillingHandler(svc service.BillingService) *BillingHandler {
	return &BillingHandler{svc: svc}
}

// Generate POST /api/v1/billing/installments/generate
func (h *BillingHandler) Generate(c *gin.Context) {
	var req dto.GenerateInstallmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "请求参数无效: "+err.Error())
		return
	}
	items, err := h.svc.Generate(c.Request.Context(), &req, MustGetUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, items)
}

// List GET /api/v1/billing/installments
func (h *BillingHandler) List(c *gin.Context) {
	var req dto.ListInstallmentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 40001, "查询参数无效: "+err.Error())
		return
	}
	items, err := h.svc.List(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, items)
}

// MarkPaid PUT /api/v1/billing/installments/:id/pay
func (h *BillingHandler) MarkPaid(c *gin.Context) {
	var req dto.MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "请求参数无效: "+err.Error())
		return
	}
	resp, err := h.svc.MarkPaid(c.Request.Context(), c.Param("id"), req.Version, MustGetUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, resp)
}
