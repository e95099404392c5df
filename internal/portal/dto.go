// AngelaMos | 2026
// dto.go

package portal

import (
	"github.com/angelamos/studio-portal/internal/document"
	"github.com/angelamos/studio-portal/internal/finance"
	"github.com/angelamos/studio-portal/internal/message"
	"github.com/angelamos/studio-portal/internal/progress"
	"github.com/angelamos/studio-portal/internal/project"
)

const recentDocuments = 5

// SectionResponse carries data only when the section loaded.
type SectionResponse[T any] struct {
	Status    string `json:"status"`
	Retryable bool   `json:"retryable,omitempty"`
	Data      *T     `json:"data"`
}

func toSection[S, T any](s Section[S], conv func(S) T) SectionResponse[T] {
	resp := SectionResponse[T]{Status: s.Status, Retryable: s.Retryable}
	if s.OK() {
		v := conv(s.Data)
		resp.Data = &v
	}
	return resp
}

// ProjectResponse is the client's view of a project. Office notes stay in
// the back office.
type ProjectResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Type        string  `json:"project_type"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	StatusLabel string  `json:"status_label"`
	BudgetRange *string `json:"budget_range"`
	Timeline    *string `json:"timeline"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
}

type ProjectCard struct {
	Project        ProjectResponse                           `json:"project"`
	Financial      finance.Summary                           `json:"financial"`
	Progress       SectionResponse[project.ProgressResponse] `json:"progress"`
	UnreadMessages SectionResponse[int]                      `json:"unread_messages"`
}

type OverviewResponse struct {
	Project         ProjectResponse                              `json:"project"`
	Financial       finance.Summary                              `json:"financial"`
	Progress        SectionResponse[project.ProgressResponse]    `json:"progress"`
	RecentDocuments SectionResponse[[]document.DocumentResponse] `json:"recent_documents"`
	PhotoCount      SectionResponse[int]                         `json:"photo_count"`
	UnreadMessages  SectionResponse[int]                         `json:"unread_messages"`
}

type TimelineData struct {
	Phases   []project.PhaseResponse  `json:"phases"`
	Progress project.ProgressResponse `json:"progress"`
}

type TimelineResponse struct {
	Project  ProjectResponse               `json:"project"`
	Timeline SectionResponse[TimelineData] `json:"timeline"`
}

type DocumentsResponse struct {
	Project   ProjectResponse                              `json:"project"`
	Documents SectionResponse[[]document.DocumentResponse] `json:"documents"`
}

type MessagesResponse struct {
	Project  ProjectResponse                        `json:"project"`
	Messages SectionResponse[message.ThreadResponse] `json:"messages"`
}

type FinancialsResponse struct {
	Project   ProjectResponse `json:"project"`
	Financial finance.Summary `json:"financial"`
}

type PostMessageRequest = message.PostMessageRequest

func toProjectResponse(p *project.Project) ProjectResponse {
	full := project.ToResponse(p)
	return ProjectResponse{
		ID:          full.ID,
		Title:       full.Title,
		Type:        full.Type,
		Description: full.Description,
		Status:      full.Status,
		StatusLabel: full.StatusLabel,
		BudgetRange: full.BudgetRange,
		Timeline:    full.Timeline,
		StartDate:   full.StartDate,
		EndDate:     full.EndDate,
	}
}

func progressOf(s progress.Summary[project.Phase]) project.ProgressResponse {
	return project.ToProgressResponse(s)
}

func unreadOf(msgs []message.Message) int {
	return message.CountUnread(msgs, message.RoleClient)
}

func ToProjectCard(v *View) ProjectCard {
	return ProjectCard{
		Project:        toProjectResponse(v.Project),
		Financial:      v.Financial,
		Progress:       toSection(v.Progress, progressOf),
		UnreadMessages: toSection(v.Messages, unreadOf),
	}
}

func ToProjectCards(views []*View) []ProjectCard {
	out := make([]ProjectCard, 0, len(views))
	for _, v := range views {
		out = append(out, ToProjectCard(v))
	}
	return out
}

func ToOverview(v *View) OverviewResponse {
	photos := v.Photos()
	return OverviewResponse{
		Project:   toProjectResponse(v.Project),
		Financial: v.Financial,
		Progress:  toSection(v.Progress, progressOf),
		RecentDocuments: toSection(v.Documents, func(docs []document.Document) []document.DocumentResponse {
			return document.ToResponseList(docs[:min(len(docs), recentDocuments)])
		}),
		PhotoCount: toSection(photos, func(docs []document.Document) int {
			return len(docs)
		}),
		UnreadMessages: toSection(v.Messages, unreadOf),
	}
}

func ToTimeline(v *View) TimelineResponse {
	return TimelineResponse{
		Project: toProjectResponse(v.Project),
		Timeline: toSection(v.Progress, func(s progress.Summary[project.Phase]) TimelineData {
			return TimelineData{
				Phases:   project.ToPhaseResponseList(s.Ordered),
				Progress: project.ToProgressResponse(s),
			}
		}),
	}
}

func ToDocuments(v *View, docs Section[[]document.Document]) DocumentsResponse {
	return DocumentsResponse{
		Project:   toProjectResponse(v.Project),
		Documents: toSection(docs, document.ToResponseList),
	}
}

func ToMessages(v *View) MessagesResponse {
	return MessagesResponse{
		Project: toProjectResponse(v.Project),
		Messages: toSection(v.Messages, func(msgs []message.Message) message.ThreadResponse {
			return message.ToThreadResponse(msgs, message.RoleClient)
		}),
	}
}

func ToFinancials(v *View) FinancialsResponse {
	return FinancialsResponse{
		Project:   toProjectResponse(v.Project),
		Financial: v.Financial,
	}
}
