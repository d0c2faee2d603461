package http

import (
	"bytes"
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/premsagarmanikyala/mantrix-ai/internal/data/repos"
	"github.com/premsagarmanikyala/mantrix-ai/internal/data/repos/memory"
	httpH "github.com/premsagarmanikyala/mantrix-ai/internal/http/handlers"
	httpMW "github.com/premsagarmanikyala/mantrix-ai/internal/http/middleware"
	"github.com/premsagarmanikyala/mantrix-ai/internal/modules/roadmap"
	"github.com/premsagarmanikyala/mantrix-ai/internal/observability"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
	"github.com/premsagarmanikyala/mantrix-ai/internal/services"
)

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
	token  string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.Nop()
	store := repos.NewMemoryStore(memory.New())
	metrics := observability.NewMetrics("test")
	// Monday 2026-01-05
	engine := roadmap.New(roadmap.UsecasesDeps{Now: func() time.Time { return time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC) }})

	auth := services.NewAuthService(log, store.Users, "test-secret", time.Hour)
	progress := services.NewProgressService(log, store.Roadmaps, store.MergedRoadmaps, store.Progress, nil, metrics)
	r, err := NewRouter(RouterConfig{
		Log:             log,
		Metrics:         metrics,
		RequestTimeout:  5 * time.Second,
		AuthHandler:     httpH.NewAuthHandler(log, auth),
		AuthMiddleware:  httpMW.NewAuthMiddleware(log, auth),
		RoadmapHandler:  httpH.NewRoadmapHandler(log, services.NewRoadmapService(log, store.Roadmaps)),
		MergeHandler:    httpH.NewMergeHandler(log, services.NewMergeService(log, store.Roadmaps, store.MergedRoadmaps, engine, nil, nil, metrics, 3)),
		ProgressHandler: httpH.NewProgressHandler(log, progress),
		ResumeHandler: httpH.NewResumeHandler(log, services.NewResumeService(
			log, store.Roadmaps, store.MergedRoadmaps, store.Progress, store.Resumes, nil, nil, metrics)),
		HealthHandler: httpH.NewHealthHandler(),
	})
	require.NoError(t, err)

	api := &testAPI{t: t, engine: r}
	var login struct {
		AccessToken string `json:"access_token"`
	}
	api.do(nethttp.MethodPost, "/api/v1/auth/login", map[string]any{"email": "ada@example.com"}, nethttp.StatusOK, &login)
	require.NotEmpty(t, login.AccessToken)
	api.token = login.AccessToken
	return api
}

func (a *testAPI) do(method, path string, body any, wantStatus int, out any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	require.Equal(a.t, wantStatus, rec.Code, rec.Body.String())
	if out != nil {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func (a *testAPI) createRoadmap(title string, branches ...string) string {
	a.t.Helper()
	var bs []map[string]any
	for _, b := range branches {
		bs = append(bs, map[string]any{
			"title": b,
			"units": []map[string]any{
				{"title": b + " intro", "duration": 1800, "is_core": true},
				{"title": b + " lab", "duration": 1800},
			},
		})
	}
	var out struct {
		Roadmap struct {
			ID string `json:"id"`
		} `json:"roadmap"`
	}
	a.do(nethttp.MethodPost, "/api/v1/roadmap", map[string]any{"title": title, "branches": bs}, nethttp.StatusCreated, &out)
	return out.Roadmap.ID
}

type errorBody struct {
	Error struct {
		Code string `json:"code"`
	} `json:"error"`
}

func TestHealthAndMetrics(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(nethttp.MethodGet, "/healthcheck", nil, nethttp.StatusOK, nil)
	assert.Equal(t, "ok", rec.Body.String())

	var health services.MergeHealth
	api.do(nethttp.MethodGet, "/api/v1/roadmap/merge/health", nil, nethttp.StatusOK, &health)
	assert.Equal(t, 3, health.MaxSources)
	assert.Equal(t, 8.0, health.MaxDailyStudyHours)

	rec = api.do(nethttp.MethodGet, "/metrics", nil, nethttp.StatusOK, nil)
	assert.Contains(t, rec.Body.String(), "test_http_requests_total")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)
	api.token = ""
	var body errorBody
	api.do(nethttp.MethodGet, "/api/v1/roadmap/mergeable", nil, nethttp.StatusUnauthorized, &body)
	assert.Equal(t, "unauthorized", body.Error.Code)
}

func TestMergeFlow(t *testing.T) {
	api := newTestAPI(t)
	fe := api.createRoadmap("Frontend", "HTML", "JavaScript")
	be := api.createRoadmap("Backend", "JavaScript", "Databases")

	var mergeable []map[string]any
	api.do(nethttp.MethodGet, "/api/v1/roadmap/mergeable", nil, nethttp.StatusOK, &mergeable)
	require.Len(t, mergeable, 2)
	assert.EqualValues(t, 2, mergeable[0]["branchCount"])
	assert.EqualValues(t, 7200, mergeable[0]["estimatedDuration"])

	var preview struct {
		Preview struct {
			Title    string           `json:"title"`
			Branches []map[string]any `json:"branches"`
		} `json:"preview"`
		Statistics struct {
			EfficiencyGain int `json:"efficiencyGain"`
			DurationSaved  int `json:"durationSaved"`
		} `json:"statistics"`
		UnresolvedIDs []string `json:"unresolved_ids"`
	}
	api.do(nethttp.MethodPost, "/api/v1/roadmap/merge/preview", map[string]any{"roadmap_ids": []string{fe, be, "ghost"}}, nethttp.StatusOK, &preview)
	assert.Equal(t, "Merged: Frontend + Backend", preview.Preview.Title)
	assert.Len(t, preview.Preview.Branches, 3)
	assert.Equal(t, 25, preview.Statistics.EfficiencyGain)
	assert.Equal(t, 3600, preview.Statistics.DurationSaved)
	assert.Equal(t, []string{"ghost"}, preview.UnresolvedIDs)

	var merged struct {
		MergedRoadmap struct {
			ID         string                      `json:"id"`
			MergedFrom []string                    `json:"mergedFrom"`
			Calendar   map[string][]map[string]any `json:"calendar"`
		} `json:"merged_roadmap"`
		SourceCount     int      `json:"source_count"`
		ScheduleMode    string   `json:"schedule_mode"`
		CalendarEnabled bool     `json:"calendar_enabled"`
		UnresolvedIDs   []string `json:"unresolved_ids"`
	}
	api.do(nethttp.MethodPost, "/api/v1/roadmap/merge", map[string]any{
		"roadmap_ids":       []string{fe, be},
		"schedule_mode":     "auto",
		"calendar_view":     true,
		"daily_study_hours": 1,
	}, nethttp.StatusOK, &merged)
	assert.Equal(t, 2, merged.SourceCount)
	assert.Equal(t, "auto", merged.ScheduleMode)
	assert.True(t, merged.CalendarEnabled)
	assert.Equal(t, []string{fe, be}, merged.MergedRoadmap.MergedFrom)
	assert.Empty(t, merged.UnresolvedIDs)
	// six 1800s units at two per day from Monday
	require.Len(t, merged.MergedRoadmap.Calendar, 3)
	assert.Len(t, merged.MergedRoadmap.Calendar["2026-01-07"], 2)
	assert.Equal(t, "09:00", merged.MergedRoadmap.Calendar["2026-01-05"][0]["scheduledTime"])

	var got struct {
		MergedRoadmap map[string]any `json:"merged_roadmap"`
	}
	api.do(nethttp.MethodGet, "/api/v1/roadmap/merged/"+merged.MergedRoadmap.ID, nil, nethttp.StatusOK, &got)
	assert.Equal(t, merged.MergedRoadmap.ID, got.MergedRoadmap["id"])

	var plain struct {
		MergedRoadmap map[string]any `json:"merged_roadmap"`
	}
	api.do(nethttp.MethodPost, "/api/v1/roadmap/merge", map[string]any{"roadmap_ids": []string{fe, be}}, nethttp.StatusOK, &plain)
	calendar, present := plain.MergedRoadmap["calendar"]
	assert.True(t, present)
	assert.Nil(t, calendar)

	var list struct {
		MergedRoadmaps []map[string]any `json:"merged_roadmaps"`
	}
	api.do(nethttp.MethodGet, "/api/v1/roadmap/merged", nil, nethttp.StatusOK, &list)
	assert.Len(t, list.MergedRoadmaps, 2)
}

func TestMergeErrors(t *testing.T) {
	api := newTestAPI(t)
	fe := api.createRoadmap("Frontend", "HTML")
	be := api.createRoadmap("Backend", "Go")

	cases := []struct {
		name string
		body map[string]any
		code string
	}{
		{"one source", map[string]any{"roadmap_ids": []string{fe}}, "insufficient_sources"},
		{"unresolved", map[string]any{"roadmap_ids": []string{fe, "ghost"}}, "insufficient_sources"},
		{"too many", map[string]any{"roadmap_ids": []string{fe, be, "a", "b"}}, "too_many_sources"},
		{"bad mode", map[string]any{"roadmap_ids": []string{fe, be}, "schedule_mode": "weekly"}, "invalid_schedule_mode"},
		{"zero hours", map[string]any{"roadmap_ids": []string{fe, be}, "schedule_mode": "auto", "calendar_view": true, "daily_study_hours": 0}, "invalid_schedule_parameter"},
		{"negative hours", map[string]any{"roadmap_ids": []string{fe, be}, "daily_study_hours": -2}, "invalid_schedule_parameter"},
		{"hours above ceiling", map[string]any{"roadmap_ids": []string{fe, be}, "daily_study_hours": 9}, "invalid_schedule_parameter"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var body errorBody
			api.do(nethttp.MethodPost, "/api/v1/roadmap/merge", tc.body, nethttp.StatusBadRequest, &body)
			assert.Equal(t, tc.code, body.Error.Code)
		})
	}

	var list struct {
		MergedRoadmaps []map[string]any `json:"merged_roadmaps"`
	}
	api.do(nethttp.MethodGet, "/api/v1/roadmap/merged", nil, nethttp.StatusOK, &list)
	assert.Empty(t, list.MergedRoadmaps)

	var nf errorBody
	api.do(nethttp.MethodGet, "/api/v1/roadmap/merged/ghost", nil, nethttp.StatusNotFound, &nf)
	assert.Equal(t, "not_found", nf.Error.Code)
}

func TestRoadmapCRUD(t *testing.T) {
	api := newTestAPI(t)
	id := api.createRoadmap("Go", "Basics")

	var got struct {
		Roadmap struct {
			Title    string `json:"title"`
			Branches []struct {
				ID    string `json:"id"`
				Units []struct {
					ID     string `json:"id"`
					IsCore bool   `json:"isCore"`
				} `json:"units"`
			} `json:"branches"`
		} `json:"roadmap"`
	}
	api.do(nethttp.MethodGet, "/api/v1/roadmap/"+id, nil, nethttp.StatusOK, &got)
	require.Len(t, got.Roadmap.Branches, 1)
	assert.True(t, got.Roadmap.Branches[0].Units[0].IsCore)

	api.do(nethttp.MethodPut, "/api/v1/roadmap/"+id, map[string]any{
		"title":    "Go v2",
		"branches": []map[string]any{{"title": "Only", "units": []map[string]any{{"title": "x", "duration": 60}}}},
	}, nethttp.StatusOK, &got)
	assert.Equal(t, "Go v2", got.Roadmap.Title)

	var bad errorBody
	api.do(nethttp.MethodPost, "/api/v1/roadmap", map[string]any{"title": "no branches"}, nethttp.StatusBadRequest, &bad)
	assert.Equal(t, "invalid_request", bad.Error.Code)

	api.do(nethttp.MethodDelete, "/api/v1/roadmap/"+id, nil, nethttp.StatusOK, nil)
	api.do(nethttp.MethodGet, "/api/v1/roadmap/"+id, nil, nethttp.StatusNotFound, nil)
}

func TestProgressAndResumeFlow(t *testing.T) {
	api := newTestAPI(t)
	id := api.createRoadmap("Go", "Go Basics")
	var rm struct {
		Roadmap struct {
			Branches []struct {
				ID    string `json:"id"`
				Units []struct {
					ID string `json:"id"`
				} `json:"units"`
			} `json:"branches"`
		} `json:"roadmap"`
	}
	api.do(nethttp.MethodGet, "/api/v1/roadmap/"+id, nil, nethttp.StatusOK, &rm)
	branch := rm.Roadmap.Branches[0]
	body := map[string]any{"roadmap_id": id, "branch_id": branch.ID, "unit_id": branch.Units[0].ID}

	var first struct {
		AlreadyCompleted bool `json:"already_completed"`
	}
	api.do(nethttp.MethodPost, "/api/v1/progress/complete", body, nethttp.StatusCreated, &first)
	assert.False(t, first.AlreadyCompleted)
	api.do(nethttp.MethodPost, "/api/v1/progress/complete", body, nethttp.StatusOK, &first)
	assert.True(t, first.AlreadyCompleted)

	var sum struct {
		CompletedUnits  int     `json:"completedUnits"`
		ProgressPercent float64 `json:"progressPercent"`
	}
	api.do(nethttp.MethodGet, "/api/v1/progress/summary?roadmap_id="+id, nil, nethttp.StatusOK, &sum)
	assert.Equal(t, 1, sum.CompletedUnits)
	assert.Equal(t, 50.0, sum.ProgressPercent)
	api.do(nethttp.MethodGet, "/api/v1/progress/summary", nil, nethttp.StatusBadRequest, nil)

	var ov struct {
		StudyTime int `json:"studyTime"`
	}
	api.do(nethttp.MethodGet, "/api/v1/progress", nil, nethttp.StatusOK, &ov)
	assert.Equal(t, 1800, ov.StudyTime)

	var gen struct {
		Resume struct {
			Skills []string `json:"skills"`
		} `json:"resume"`
		Source string `json:"source"`
	}
	api.do(nethttp.MethodPost, "/api/v1/resume/generate", map[string]any{"mode": "study", "roadmap_id": id}, nethttp.StatusCreated, &gen)
	assert.Equal(t, []string{"Go"}, gen.Resume.Skills)
	assert.Equal(t, services.ResumeSourceTemplate, gen.Source)
	api.do(nethttp.MethodPost, "/api/v1/resume/generate", map[string]any{"mode": "analyzer", "roadmap_id": id}, nethttp.StatusBadRequest, nil)

	var list services.ResumeList
	api.do(nethttp.MethodGet, "/api/v1/resume", nil, nethttp.StatusOK, &list)
	assert.Equal(t, 1, list.StudyModeCount)

	var me struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	api.do(nethttp.MethodGet, "/api/v1/auth/me", nil, nethttp.StatusOK, &me)
	assert.Equal(t, "ada@example.com", me.User.Email)
}

func TestServerShutsDownOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv, err := NewServer(RouterConfig{HealthHandler: httpH.NewHealthHandler()}, "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, time.Second) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
