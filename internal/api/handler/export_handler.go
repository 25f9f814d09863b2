package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lessonloop/backend/internal/service"
	"lessonloop/backend/pkg/response"
)

// ExportHandler 课表导出接口
type ExportHandler struct {
	svc service.ExportService
}

func NewExportHandler(svc service.ExportService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// Timetable GET /api/v1/export/timetable?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *ExportHandler) Timetable(c *gin.Context) {
	start, err := time.Parse("2006-01-02", c.Query("start"))
	if err != nil {
		response.BadRequest(c, 40001, "start 参数无效，应为 YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", c.Query("end"))
	if err != nil {
		response.BadRequest(c, 40001, "end 参数无效，应为 YYYY-MM-DD")
		return
	}
	if end.Before(start) {
		response.BadRequest(c, 40001, "end 不能早于 start")
		return
	}

	f, err := h.svc.ExportTimetable(c.Request.Context(), start, end)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("timetable_%s_%s.xlsx", c.Query("start"), c.Query("end"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := f.Write(c.Writer); err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}
