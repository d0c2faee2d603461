package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/premsagarmanikyala/mantrix-ai/internal/domain"
	"github.com/premsagarmanikyala/mantrix-ai/internal/http/response"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/ctxutil"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
	"github.com/premsagarmanikyala/mantrix-ai/internal/services"
)

type RoadmapHandler struct {
	log      *logger.Logger
	roadmaps services.RoadmapService
}

func NewRoadmapHandler(log *logger.Logger, roadmaps services.RoadmapService) *RoadmapHandler {
	return &RoadmapHandler{log: log.With("handler", "RoadmapHandler"), roadmaps: roadmaps}
}

type unitRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title" binding:"required"`
	Duration    int    `json:"duration" binding:"gte=0"`
	IsCore      bool   `json:"is_core"`
	Description string `json:"description"`
}

type branchRequest struct {
	ID                string        `json:"id"`
	Title             string        `json:"title" binding:"required"`
	Description       string        `json:"description"`
	EstimatedDuration int           `json:"estimated_duration" binding:"gte=0"`
	Units             []unitRequest `json:"units" binding:"dive"`
}

type roadmapRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	Branches    []branchRequest `json:"branches" binding:"required,min=1,dive"`
}

func (r roadmapRequest) input() services.RoadmapInput {
	in := services.RoadmapInput{Title: r.Title, Description: r.Description}
	for _, b := range r.Branches {
		branch := domain.Branch{
			ID:                       b.ID,
			Title:                    b.Title,
			Description:              b.Description,
			EstimatedDurationSeconds: b.EstimatedDuration,
		}
		for _, u := range b.Units {
			branch.Units = append(branch.Units, domain.LearningUnit{
				ID:              u.ID,
				Title:           u.Title,
				DurationSeconds: u.Duration,
				IsCore:          u.IsCore,
				Description:     u.Description,
			})
		}
		in.Branches = append(in.Branches, branch)
	}
	return in
}

func (h *RoadmapHandler) List(c *gin.Context) {
	rows, err := h.roadmaps.ListByOwner(c.Request.Context(), ctxutil.OwnerID(c.Request.Context()))
	if err != nil {
		response.RespondServiceError(c, h.log, "list_roadmaps_failed", err)
		return
	}
	if rows == nil {
		rows = []*domain.Roadmap{}
	}
	response.RespondOK(c, gin.H{"roadmaps": rows})
}

func (h *RoadmapHandler) Create(c *gin.Context) {
	var req roadmapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	created, err := h.roadmaps.Create(c.Request.Context(), ctxutil.OwnerID(c.Request.Context()), req.input())
	if err != nil {
		response.RespondServiceError(c, h.log, "create_roadmap_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{"roadmap": created})
}

func (h *RoadmapHandler) Get(c *gin.Context) {
	row, err := h.roadmaps.Get(c.Request.Context(), ctxutil.OwnerID(c.Request.Context()), c.Param("id"))
	if err != nil {
		response.RespondServiceError(c, h.log, "get_roadmap_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"roadmap": row})
}

func (h *RoadmapHandler) Replace(c *gin.Context) {
	var req roadmapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	row, err := h.roadmaps.Replace(c.Request.Context(), ctxutil.OwnerID(c.Request.Context()), c.Param("id"), req.input())
	if err != nil {
		response.RespondServiceError(c, h.log, "replace_roadmap_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"roadmap": row})
}

func (h *RoadmapHandler) Delete(c *gin.Context) {
	if err := h.roadmaps.Delete(c.Request.Context(), ctxutil.OwnerID(c.Request.Context()), c.Param("id")); err != nil {
		response.RespondServiceError(c, h.log, "delete_roadmap_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// ListMergeable returns a bare array of roadmap summaries.
func (h *RoadmapHandler) ListMergeable(c *gin.Context) {
	list, err := h.roadmaps.ListMergeable(c.Request.Context(), ctxutil.OwnerID(c.Request.Context()))
	if err != nil {
		response.RespondServiceError(c, h.log, "list_mergeable_failed", err)
		return
	}
	response.RespondOK(c, list)
}
