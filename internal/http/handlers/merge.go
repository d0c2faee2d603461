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

type MergeHandler struct {
	log   *logger.Logger
	merge services.MergeService
}

func NewMergeHandler(log *logger.Logger, merge services.MergeService) *MergeHandler {
	return &MergeHandler{log: log.With("handler", "MergeHandler"), merge: merge}
}

type mergePreviewRequest struct {
	RoadmapIDs []string `json:"roadmap_ids"`
}

type mergeRequest struct {
	RoadmapIDs      []string `json:"roadmap_ids"`
	ScheduleMode    string   `json:"schedule_mode" binding:"omitempty,schedule_mode"`
	CalendarView    bool     `json:"calendar_view"`
	DailyStudyHours *float64 `json:"daily_study_hours" binding:"omitempty,gt=0,lte=8"`
}

type mergePreviewResponse struct {
	Preview       domain.MergePreview    `json:"preview"`
	Statistics    domain.MergeStatistics `json:"statistics"`
	UnresolvedIDs []string               `json:"unresolved_ids"`
}

type mergeResponse struct {
	MergedRoadmap    *domain.MergedRoadmap  `json:"merged_roadmap"`
	SourceCount      int                    `json:"source_count"`
	ScheduleMode     string                 `json:"schedule_mode"`
	CalendarEnabled  bool                   `json:"calendar_enabled"`
	Statistics       domain.MergeStatistics `json:"statistics"`
	UnresolvedIDs    []string               `json:"unresolved_ids"`
	UnscheduledUnits int                    `json:"unscheduled_units"`
}

func (h *MergeHandler) Preview(c *gin.Context) {
	var req mergePreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.merge.Preview(c.Request.Context(), ctxutil.OwnerID(c.Request.Context()), req.RoadmapIDs)
	if err != nil {
		response.RespondServiceError(c, h.log, "merge_preview_failed", err)
		return
	}
	response.RespondOK(c, mergePreviewResponse{
		Preview:       res.Preview,
		Statistics:    res.Statistics,
		UnresolvedIDs: nonNil(res.UnresolvedIDs),
	})
}

func (h *MergeHandler) Merge(c *gin.Context) {
	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, bindingErrorCode(err), err)
		return
	}
	out, err := h.merge.Merge(c.Request.Context(), ctxutil.OwnerID(c.Request.Context()), services.MergeRequest{
		RoadmapIDs:        req.RoadmapIDs,
		ScheduleMode:      req.ScheduleMode,
		CalendarRequested: req.CalendarView,
		DailyStudyHours:   req.DailyStudyHours,
	})
	if err != nil {
		response.RespondServiceError(c, h.log, "merge_failed", err)
		return
	}
	response.RespondOK(c, mergeResponse{
		MergedRoadmap:    out.MergedRoadmap,
		SourceCount:      out.SourceCount,
		ScheduleMode:     out.ScheduleMode,
		CalendarEnabled:  out.CalendarEnabled,
		Statistics:       out.Statistics,
		UnresolvedIDs:    nonNil(out.UnresolvedIDs),
		UnscheduledUnits: out.UnscheduledUnits,
	})
}

func (h *MergeHandler) ListMerged(c *gin.Context) {
	rows, err := h.merge.ListMerged(c.Request.Context(), ctxutil.OwnerID(c.Request.Context()))
	if err != nil {
		response.RespondServiceError(c, h.log, "list_merged_failed", err)
		return
	}
	if rows == nil {
		rows = []*domain.MergedRoadmap{}
	}
	response.RespondOK(c, gin.H{"merged_roadmaps": rows})
}

func (h *MergeHandler) GetMerged(c *gin.Context) {
	row, err := h.merge.GetMerged(c.Request.Context(), ctxutil.OwnerID(c.Request.Context()), c.Param("id"))
	if err != nil {
		response.RespondServiceError(c, h.log, "get_merged_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"merged_roadmap": row})
}

func (h *MergeHandler) Health(c *gin.Context) {
	response.RespondOK(c, h.merge.Health())
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
