package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/premsagarmanikyala/mantrix-ai/internal/http/response"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/ctxutil"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
	"github.com/premsagarmanikyala/mantrix-ai/internal/services"
)

var errRoadmapIDRequired = errors.New("roadmap_id is required")

type ResumeHandler struct {
	log     *logger.Logger
	resumes services.ResumeService
}

func NewResumeHandler(log *logger.Logger, resumes services.ResumeService) *ResumeHandler {
	return &ResumeHandler{log: log.With("handler", "ResumeHandler"), resumes: resumes}
}

func (h *ResumeHandler) Generate(c *gin.Context) {
	var req struct {
		Mode      string `json:"mode" binding:"required,oneof=study fast"`
		RoadmapID string `json:"roadmap_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.resumes.Generate(c.Request.Context(), ctxutil.OwnerID(c.Request.Context()), services.ResumeInput{
		Mode:      req.Mode,
		RoadmapID: req.RoadmapID,
	})
	if err != nil {
		response.RespondServiceError(c, h.log, "resume_generation_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{
		"resume":  res.Resume,
		"source":  res.Source,
		"status":  "success",
		"message": res.Message,
	})
}

func (h *ResumeHandler) List(c *gin.Context) {
	list, err := h.resumes.List(c.Request.Context(), ctxutil.OwnerID(c.Request.Context()))
	if err != nil {
		response.RespondServiceError(c, h.log, "list_resumes_failed", err)
		return
	}
	response.RespondOK(c, list)
}
