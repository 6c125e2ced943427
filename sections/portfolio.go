package sections

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/HSouheill/portfolio_backend/models"
)

// Placeholders shown when the about document cannot be read
const (
	HomePlaceholder  = "I craft high-performance digital experiences with "
	AboutPlaceholder = "I build intelligent, scalable digital products where clean engineering meets real-world impact."
)

// Section names, also used as live-update topics
const (
	NameHome     = "home"
	NameAbout    = "about"
	NameSkills   = "skills"
	NameProjects = "projects"
)

// ContentRepository is the subset of the repository the sections use
type ContentRepository interface {
	GetAbout(ctx context.Context) (*models.AboutDocument, error)
	SaveAbout(ctx context.Context, patch models.AboutPatch) error
	ListSkillGroups(ctx context.Context) ([]models.SkillGroup, error)
	UpsertSkillGroup(ctx context.Context, group models.SkillGroup) error
	ListProjects(ctx context.Context) ([]models.Project, error)
	CreateProject(ctx context.Context, project models.Project) (string, error)
	UpdateProject(ctx context.Context, id string, project models.Project) error
	DeleteProject(ctx context.Context, id string) error
}

// NewHome shows the about document's headline text
func NewHome(repo ContentRepository, viewer Viewer) *Section[string, string] {
	return New(Options[string, string]{
		Name:     NameHome,
		Fallback: HomePlaceholder,
		Fetch: func(ctx context.Context) (string, error) {
			about, err := repo.GetAbout(ctx)
			if err != nil {
				return "", err
			}
			return about.Text, nil
		},
		Save: func(ctx context.Context, text string) error {
			return repo.SaveAbout(ctx, models.AboutPatch{Text: &text})
		},
	}, viewer)
}

// NewAbout shows and edits the about document
func NewAbout(repo ContentRepository, viewer Viewer) *Section[models.AboutDocument, models.AboutPatch] {
	return New(Options[models.AboutDocument, models.AboutPatch]{
		Name:     NameAbout,
		Fallback: models.AboutDocument{Text: HomePlaceholder, Bio: AboutPlaceholder},
		Fetch: func(ctx context.Context) (models.AboutDocument, error) {
			about, err := repo.GetAbout(ctx)
			if err != nil {
				return models.AboutDocument{}, err
			}
			return *about, nil
		},
		Save: func(ctx context.Context, patch models.AboutPatch) error {
			return repo.SaveAbout(ctx, patch)
		},
	}, viewer)
}

// SeedAboutPatch starts an about edit from the stored values
func SeedAboutPatch(about models.AboutDocument) models.AboutPatch {
	return models.AboutPatch{Text: &about.Text, Bio: &about.Bio}
}

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeCategoryID turns a category name into its document id:
// lower-cased with all whitespace removed
func NormalizeCategoryID(name string) string {
	return whitespace.ReplaceAllString(strings.ToLower(name), "")
}

// NewSkills lists skill groups and upserts one group per save
func NewSkills(repo ContentRepository, viewer Viewer) *Section[[]models.SkillGroup, models.SkillGroupForm] {
	return New(Options[[]models.SkillGroup, models.SkillGroupForm]{
		Name:     NameSkills,
		Fallback: []models.SkillGroup{},
		Fetch:    repo.ListSkillGroups,
		Save: func(ctx context.Context, form models.SkillGroupForm) error {
			return repo.UpsertSkillGroup(ctx, models.SkillGroup{
				ID:         NormalizeCategoryID(form.ID),
				SkillsList: models.SplitList(form.Skills),
			})
		},
	}, viewer)
}

// SeedSkillGroupForm starts editing the group with the given id, or a new
// group when no such id is listed
func SeedSkillGroupForm(id string) func([]models.SkillGroup) models.SkillGroupForm {
	return func(groups []models.SkillGroup) models.SkillGroupForm {
		for _, g := range groups {
			if g.ID == id {
				return models.SkillGroupForm{ID: g.ID, Skills: strings.Join(g.SkillsList, ", ")}
			}
		}
		return models.SkillGroupForm{}
	}
}

// ProjectDraft is the project form plus the id being edited; an empty
// EditingID creates a new project
type ProjectDraft struct {
	EditingID string             `json:"editingId,omitempty"`
	Form      models.ProjectForm `json:"form"`
}

// ProjectsSection is the project gallery. It remembers the id of the last
// project it created.
type ProjectsSection struct {
	*Section[[]models.Project, ProjectDraft]

	mu        sync.Mutex
	createdID string
}

// NewProjects lists projects and creates or updates one per save
func NewProjects(repo ContentRepository, viewer Viewer) *ProjectsSection {
	ps := &ProjectsSection{}
	ps.Section = New(Options[[]models.Project, ProjectDraft]{
		Name:     NameProjects,
		Fallback: []models.Project{},
		Fetch:    repo.ListProjects,
		Save: func(ctx context.Context, draft ProjectDraft) error {
			if draft.EditingID != "" {
				return repo.UpdateProject(ctx, draft.EditingID, draft.Form.Project(draft.EditingID))
			}
			id, err := repo.CreateProject(ctx, draft.Form.Project(""))
			if err != nil {
				return err
			}
			ps.mu.Lock()
			ps.createdID = id
			ps.mu.Unlock()
			return nil
		},
	}, viewer)
	return ps
}

// CreatedID is the id assigned to the most recently created project
func (ps *ProjectsSection) CreatedID() string {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.createdID
}

// Delete removes a project and refreshes the gallery
func (ps *ProjectsSection) Delete(ctx context.Context, repo ContentRepository, id string) error {
	return ps.Perform(ctx, func(ctx context.Context) error {
		return repo.DeleteProject(ctx, id)
	})
}

// SeedProjectDraft starts editing the project with the given id, or a new
// project when id is empty or unknown
func SeedProjectDraft(id string) func([]models.Project) ProjectDraft {
	return func(projects []models.Project) ProjectDraft {
		for _, p := range projects {
			if p.ID == id {
				return ProjectDraft{EditingID: p.ID, Form: models.ProjectFormFrom(p)}
			}
		}
		return ProjectDraft{}
	}
}
