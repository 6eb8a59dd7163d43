package views

import (
	"slices"
	"strings"

	"github.com/rpggio/tasksync/internal/domain/entity"
	"github.com/rpggio/tasksync/internal/domain/project"
	"github.com/rpggio/tasksync/internal/domain/task"
)

// TaskCountByProject counts tasks per project using each task's projectId. Project.Tasks
// is never consulted. Every project is present in the result; tasks whose projectId
// names no known project are not counted anywhere.
func TaskCountByProject(projects []project.Project, tasks []task.Task) map[string]int {
	counts := make(map[string]int, len(projects))
	for _, p := range projects {
		counts[p.ID] = 0
	}
	for _, t := range tasks {
		if _, ok := counts[t.ProjectID]; ok && t.ProjectID != "" {
			counts[t.ProjectID]++
		}
	}
	return counts
}

// Progress is the completion state of one project.
type Progress struct {
	ProjectID string        `json:"projectId"`
	Name      string        `json:"name"`
	Status    entity.Status `json:"status"`
	Total     int           `json:"total"`
	Done      int           `json:"done"`
	Ratio     float64       `json:"ratio"`
}

// ProjectProgress reports per-project completion in the order projects are given.
func ProjectProgress(projects []project.Project, tasks []task.Task) []Progress {
	index := make(map[string]int, len(projects))
	out := make([]Progress, len(projects))
	for i, p := range projects {
		index[p.ID] = i
		out[i] = Progress{ProjectID: p.ID, Name: p.Name, Status: p.Status}
	}
	for _, t := range tasks {
		i, ok := index[t.ProjectID]
		if !ok || t.ProjectID == "" {
			continue
		}
		out[i].Total++
		if t.Status == entity.StatusDone {
			out[i].Done++
		}
	}
	for i := range out {
		if out[i].Total > 0 {
			out[i].Ratio = float64(out[i].Done) / float64(out[i].Total)
		}
	}
	return out
}

// ProjectFilter selects projects. Empty fields don't constrain.
type ProjectFilter struct {
	Statuses []entity.Status `json:"statuses,omitempty"`
	Member   string          `json:"member,omitempty"`
	Search   string          `json:"search,omitempty"`
}

// FilterProjects returns the matching projects sorted by name, then createdAt and id.
func FilterProjects(projects []project.Project, f ProjectFilter) []project.Project {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]project.Project, 0, len(projects))
	for _, p := range projects {
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, p.Status) {
			continue
		}
		if f.Member != "" && !slices.Contains(p.Members, f.Member) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		out = append(out, p)
	}
	slices.SortStableFunc(out, func(a, b project.Project) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return tieBreak(a.Base, b.Base)
	})
	return out
}
