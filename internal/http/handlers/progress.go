package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/premsagarmanikyala/mantrix-ai/internal/http/response"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/ctxutil"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
	"github.com/premsagarmanikyala/mantrix-ai/internal/services"
)

type ProgressHandler struct {
	log      *logger.Logger
	progress services.ProgressService
}

func NewProgressHandler(log *logger.Logger, progress services.ProgressService) *ProgressHandler {
	return &ProgressHandler{log: log.With("handler", "ProgressHandler"), progress: progress}
}

func (h *ProgressHandler) Complete(c *gin.Context) {
	var req struct {
		RoadmapID         string `json:"roadmap_id" binding:"required"`
		BranchID          string `json:"branch_id" binding:"required"`
		UnitID            string `json:"unit_id" binding:"required"`
		DurationCompleted *int   `json:"duration_completed" binding:"omitempty,gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.progress.CompleteUnit(c.Request.Context(), ctxutil.OwnerID(c.Request.Context()), services.CompleteUnitInput{
		RoadmapID:                req.RoadmapID,
		BranchID:                 req.BranchID,
		UnitID:                   req.UnitID,
		DurationCompletedSeconds: req.DurationCompleted,
	})
	if err != nil {
		response.RespondServiceError(c, h.log, "complete_unit_failed", err)
		return
	}
	status := http.StatusCreated
	if res.AlreadyCompleted {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"entry": res.Entry, "already_completed": res.AlreadyCompleted})
}

func (h *ProgressHandler) Summary(c *gin.Context) {
	roadmapID := c.Query("roadmap_id")
	if roadmapID == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errRoadmapIDRequired)
		return
	}
	sum, err := h.progress.Summary(c.Request.Context(), ctxutil.OwnerID(c.Request.Context()), roadmapID)
	if err != nil {
		response.RespondServiceError(c, h.log, "progress_summary_failed", err)
		return
	}
	response.RespondOK(c, sum)
}

func (h *ProgressHandler) Overview(c *gin.Context) {
	ov, err := h.progress.Overview(c.Request.Context(), ctxutil.OwnerID(c.Request.Context()))
	if err != nil {
		response.RespondServiceError(c, h.log, "progress_overview_failed", err)
		return
	}
	response.RespondOK(c, ov)
}
