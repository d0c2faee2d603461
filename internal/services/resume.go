package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/premsagarmanikyala/mantrix-ai/internal/clients/redis"
	"github.com/premsagarmanikyala/mantrix-ai/internal/data/repos"
	"github.com/premsagarmanikyala/mantrix-ai/internal/domain"
	"github.com/premsagarmanikyala/mantrix-ai/internal/observability"
	apperr "github.com/premsagarmanikyala/mantrix-ai/internal/pkg/errors"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
)

const (
	ResumeSourceAI       = "ai"
	ResumeSourceTemplate = "template"
)

// TextGenerator produces free text from a system and a user prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, system string, user string) (string, error)
}

type ResumeInput struct {
	Mode      string
	RoadmapID string
}

type ResumeResult struct {
	Resume  *domain.Resume
	Source  string
	Message string
}

type ResumeList struct {
	Resumes        []*domain.Resume `json:"resumes"`
	Total          int              `json:"total"`
	StudyModeCount int              `json:"studyModeCount"`
	FastModeCount  int              `json:"fastModeCount"`
}

type ResumeService interface {
	Generate(ctx context.Context, ownerID string, in ResumeInput) (*ResumeResult, error)
	List(ctx context.Context, ownerID string) (*ResumeList, error)
}

type resumeService struct {
	log      *logger.Logger
	roadmaps repos.RoadmapRepo
	merged   repos.MergedRoadmapRepo
	progress repos.ProgressRepo
	resumes  repos.ResumeRepo
	gen      TextGenerator
	events   redis.EventBus
	metrics  *observability.Metrics
}

// NewResumeService wires resume generation. A nil generator always uses the text template.
func NewResumeService(
	log *logger.Logger,
	roadmaps repos.RoadmapRepo,
	merged repos.MergedRoadmapRepo,
	progress repos.ProgressRepo,
	resumes repos.ResumeRepo,
	gen TextGenerator,
	events redis.EventBus,
	metrics *observability.Metrics,
) ResumeService {
	return &resumeService{
		log:      log.With("service", "ResumeService"),
		roadmaps: roadmaps,
		merged:   merged,
		progress: progress,
		resumes:  resumes,
		gen:      gen,
		events:   events,
		metrics:  metrics,
	}
}

type resumeUnit struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Branch   string `json:"branch"`
	Duration int    `json:"duration"`
	IsCore   bool   `json:"is_core"`
}

type resumeContent struct {
	RoadmapTitle string       `json:"roadmap_title"`
	Skills       []string     `json:"skills"`
	Topics       []string     `json:"topics"`
	Units        []resumeUnit `json:"units"`
}

func (s *resumeService) Generate(ctx context.Context, ownerID string, in ResumeInput) (res *ResumeResult, err error) {
	ctx, span := startSpan(ctx, "ResumeService.Generate")
	defer func() { endSpan(span, err) }()

	mode := strings.ToLower(strings.TrimSpace(in.Mode))
	if mode != domain.ResumeModeStudy && mode != domain.ResumeModeFast {
		return nil, fmt.Errorf("%w: mode must be study or fast", apperr.ErrInvalidArgument)
	}
	rm, err := resolveOwnedRoadmap(ctx, s.roadmaps, s.merged, ownerID, in.RoadmapID)
	if err != nil {
		return nil, err
	}

	var include func(branchID, unitID string) bool
	if mode == domain.ResumeModeStudy {
		entries, err := s.progress.ListByOwnerAndRoadmap(dbc(ctx), ownerID, rm.ID)
		if err != nil {
			return nil, fmt.Errorf("list progress: %w", err)
		}
		done := make(map[string]bool, len(entries))
		for _, e := range entries {
			done[e.BranchID+"/"+e.UnitID] = true
		}
		include = func(branchID, unitID string) bool { return done[branchID+"/"+unitID] }
	} else {
		include = func(string, string) bool { return true }
	}
	content := collectResumeContent(rm, include)

	var text, source string
	if len(content.Units) == 0 {
		text, source = minimalResume(), ResumeSourceTemplate
	} else {
		text, source = s.write(ctx, content, mode)
	}

	row := &domain.Resume{
		OwnerID:   ownerID,
		Mode:      mode,
		RoadmapID: rm.ID,
		Content:   text,
		Skills:    content.Skills,
		UnitIDs:   unitIDs(content.Units),
		IsDraft:   mode == domain.ResumeModeFast,
	}
	created, err := s.resumes.Create(dbc(ctx), row)
	if err != nil {
		return nil, fmt.Errorf("save resume: %w", err)
	}
	s.metrics.IncResumeGenerated(mode, source)
	publish(ctx, s.log, s.events, redis.Event{
		Type:     redis.EventResumeGenerated,
		OwnerID:  ownerID,
		EntityID: created.ID,
		Data:     map[string]any{"mode": mode, "roadmap_id": rm.ID, "source": source},
	})

	msg := fmt.Sprintf("Study mode resume generated with %d completed units", len(content.Units))
	if mode == domain.ResumeModeFast {
		msg = fmt.Sprintf("Fast mode resume generated with full roadmap content (%d units)", len(content.Units))
	}
	return &ResumeResult{Resume: created, Source: source, Message: msg}, nil
}

func (s *resumeService) List(ctx context.Context, ownerID string) (*ResumeList, error) {
	rows, err := s.resumes.ListByOwner(dbc(ctx), ownerID)
	if err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	out := &ResumeList{Resumes: rows, Total: len(rows)}
	if out.Resumes == nil {
		out.Resumes = []*domain.Resume{}
	}
	for _, r := range rows {
		switch r.Mode {
		case domain.ResumeModeStudy:
			out.StudyModeCount++
		case domain.ResumeModeFast:
			out.FastModeCount++
		}
	}
	return out, nil
}

// write asks the generator for resume text and falls back to the template on any failure.
func (s *resumeService) write(ctx context.Context, content resumeContent, mode string) (string, string) {
	if s.gen == nil {
		return templateResume(content, mode), ResumeSourceTemplate
	}
	payload, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return templateResume(content, mode), ResumeSourceTemplate
	}
	system := fmt.Sprintf(`You are an expert resume writer. Generate a professional resume based on the following learning content.

Mode: %s
Content: %s

Create a resume with these sections:
- Professional Summary
- Technical Skills
- Experience (based on learning units)
- Education/Certifications

Format as clean, ATS-friendly text. Focus on skills and knowledge from the provided content.`, mode, payload)
	user := fmt.Sprintf("Generate a professional resume for user learning content in %s mode.", mode)

	text, err := s.gen.GenerateText(ctx, system, user)
	if err != nil || strings.TrimSpace(text) == "" {
		s.log.Warn("resume generation fell back to template", "mode", mode, "error", err)
		return templateResume(content, mode), ResumeSourceTemplate
	}
	return strings.TrimSpace(text), ResumeSourceAI
}

func collectResumeContent(rm *domain.Roadmap, include func(branchID, unitID string) bool) resumeContent {
	content := resumeContent{RoadmapTitle: rm.Title, Skills: []string{}, Topics: []string{}}
	seen := map[string]bool{}
	for _, b := range rm.Branches {
		var titles []string
		for _, u := range b.Units {
			if !include(b.ID, u.ID) {
				continue
			}
			titles = append(titles, u.Title)
			content.Units = append(content.Units, resumeUnit{
				ID: u.ID, Title: u.Title, Branch: b.Title, Duration: u.DurationSeconds, IsCore: u.IsCore,
			})
			for _, skill := range ExtractSkills(u.Title) {
				if !seen[skill] {
					seen[skill] = true
					content.Skills = append(content.Skills, skill)
				}
			}
		}
		if len(titles) > 0 {
			content.Topics = append(content.Topics, b.Title+": "+strings.Join(titles, ", "))
		}
	}
	return content
}

var techKeywords = []string{
	"React", "JavaScript", "Python", "Node.js", "HTML", "CSS", "SQL",
	"AWS", "Docker", "Git", "API", "REST", "GraphQL", "MongoDB",
	"PostgreSQL", "Machine Learning", "AI", "FastAPI", "Express",
	"Vue", "Angular", "TypeScript", "Java", "C++", "Go", "Rust",
}

var derivedSkills = []struct{ stem, skill string }{
	{"database", "Database Design"},
	{"test", "Testing"},
	{"deploy", "Deployment"},
	{"security", "Security"},
}

var keywordPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(techKeywords))
	for i, kw := range techKeywords {
		out[i] = regexp.MustCompile(`(?i)(^|[^a-z0-9])` + regexp.QuoteMeta(kw) + `s?($|[^a-z0-9+#])`)
	}
	return out
}()

// ExtractSkills maps a unit title to skill names. Keywords match on word boundaries so
// "Go" does not fire on "Google"; derived skills match on stems.
func ExtractSkills(title string) []string {
	var out []string
	for i, re := range keywordPatterns {
		if re.MatchString(title) {
			out = append(out, techKeywords[i])
		}
	}
	lower := strings.ToLower(title)
	for _, d := range derivedSkills {
		if strings.Contains(lower, d.stem) {
			out = append(out, d.skill)
		}
	}
	return out
}

func unitIDs(units []resumeUnit) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.ID
	}
	return out
}

func templateResume(content resumeContent, mode string) string {
	title := content.RoadmapTitle
	if title == "" {
		title = "Technical Learning"
	}
	skills := "Various technical skills acquired through structured learning"
	if len(content.Skills) > 0 {
		skills = strings.Join(content.Skills, ", ")
	}
	topics := "core technical concepts"
	if len(content.Topics) > 0 {
		n := min(3, len(content.Topics))
		topics = strings.Join(content.Topics[:n], ", ")
	}
	status := "Completed Units"
	if mode == domain.ResumeModeFast {
		status = "In Progress"
	}

	var b strings.Builder
	b.WriteString("PROFESSIONAL SUMMARY\n")
	fmt.Fprintf(&b, "Motivated professional with hands-on experience in %s.\n", strings.ToLower(title))
	b.WriteString("Completed comprehensive training in modern development practices.\n\n")
	b.WriteString("TECHNICAL SKILLS\n")
	b.WriteString(skills + "\n\n")
	b.WriteString("RELEVANT EXPERIENCE\n")
	b.WriteString("Learning & Development\n")
	fmt.Fprintf(&b, "• Completed structured learning program: %s\n", title)
	fmt.Fprintf(&b, "• Gained practical experience in: %s\n", topics)
	b.WriteString("• Applied knowledge through hands-on projects and exercises\n\n")
	b.WriteString("EDUCATION & CERTIFICATIONS\n")
	fmt.Fprintf(&b, "• Completed: %s\n", title)
	fmt.Fprintf(&b, "• Mode: %s Learning Track\n", strings.ToUpper(mode[:1])+mode[1:])
	fmt.Fprintf(&b, "• Status: %s\n", status)
	return b.String()
}

func minimalResume() string {
	return `PROFESSIONAL SUMMARY
Motivated professional beginning structured learning journey in technology.
Committed to continuous learning and skill development.

TECHNICAL SKILLS
Currently developing technical skills through comprehensive learning programs.

LEARNING & DEVELOPMENT
• Enrolled in structured technical learning program
• Focused on building foundational knowledge
• Committed to hands-on practical application

EDUCATION & TRAINING
• Active learner in technical skill development
• Study Mode: Progress-based learning approach
`
}
