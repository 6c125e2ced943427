package sections

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HSouheill/portfolio_backend/models"
	"github.com/HSouheill/portfolio_backend/repositories"
)

var editor = Viewer{Session: &models.Session{Email: "me@example.com"}, Editor: true}

// flakyRepo fails writes while failWrites is set and reads while failReads is set
type flakyRepo struct {
	*repositories.ContentRepository
	failReads  bool
	failWrites bool
}

var errStoreDown = errors.New("store unavailable")

func newFlakyRepo() *flakyRepo {
	return &flakyRepo{ContentRepository: repositories.NewContentRepository(repositories.NewMemoryStore())}
}

func (r *flakyRepo) GetAbout(ctx context.Context) (*models.AboutDocument, error) {
	if r.failReads {
		return nil, errStoreDown
	}
	return r.ContentRepository.GetAbout(ctx)
}

func (r *flakyRepo) ListSkillGroups(ctx context.Context) ([]models.SkillGroup, error) {
	if r.failReads {
		return nil, errStoreDown
	}
	return r.ContentRepository.ListSkillGroups(ctx)
}

func (r *flakyRepo) ListProjects(ctx context.Context) ([]models.Project, error) {
	if r.failReads {
		return nil, errStoreDown
	}
	return r.ContentRepository.ListProjects(ctx)
}

func (r *flakyRepo) SaveAbout(ctx context.Context, patch models.AboutPatch) error {
	if r.failWrites {
		return errStoreDown
	}
	return r.ContentRepository.SaveAbout(ctx, patch)
}

func (r *flakyRepo) UpsertSkillGroup(ctx context.Context, group models.SkillGroup) error {
	if r.failWrites {
		return errStoreDown
	}
	return r.ContentRepository.UpsertSkillGroup(ctx, group)
}

func TestLoadFallsBackWhenMissing(t *testing.T) {
	repo := newFlakyRepo()
	ctx := context.Background()

	home := NewHome(repo, Anonymous).Load(ctx)
	assert.Equal(t, StateReady, home.State)
	assert.Equal(t, HomePlaceholder, home.Data)
	assert.True(t, home.Fallback)
	assert.Equal(t, ReasonNotFound, home.Reason)

	about := NewAbout(repo, Anonymous).Load(ctx)
	assert.Equal(t, AboutPlaceholder, about.Data.Bio)

	skills := NewSkills(repo, Anonymous).Load(ctx)
	assert.Equal(t, StateReady, skills.State)
	assert.Empty(t, skills.Data)
}

func TestLoadFallsBackOnError(t *testing.T) {
	repo := newFlakyRepo()
	repo.failReads = true
	ctx := context.Background()

	about := NewAbout(repo, Anonymous)
	view := about.Load(ctx)
	assert.Equal(t, StateError, view.State)
	assert.Equal(t, AboutPlaceholder, view.Data.Bio)
	assert.Equal(t, ReasonUnavailable, view.Reason)
	assert.ErrorIs(t, about.Err(), errStoreDown)

	projects := NewProjects(repo, Anonymous).Load(ctx)
	assert.Equal(t, StateError, projects.State)
	assert.NotNil(t, projects.Data)
	assert.Empty(t, projects.Data)
}

func TestNonEditorCannotReachWrites(t *testing.T) {
	repo := newFlakyRepo()
	ctx := context.Background()

	about := NewAbout(repo, Anonymous)
	view := about.Load(ctx)
	assert.False(t, view.Editable)

	assert.ErrorIs(t, about.BeginEdit(SeedAboutPatch), ErrNotEditor)
	assert.ErrorIs(t, about.Save(ctx), ErrNotEditor)
	assert.Equal(t, StateReady, about.State())

	projects := NewProjects(repo, Anonymous)
	projects.Load(ctx)
	assert.ErrorIs(t, projects.Delete(ctx, repo, "any"), ErrNotEditor)

	_, err := repo.GetAbout(ctx)
	assert.ErrorIs(t, err, repositories.ErrNotFound, "nothing may have been written")
}

func TestEditSaveRoundTrip(t *testing.T) {
	repo := newFlakyRepo()
	ctx := context.Background()

	about := NewAbout(repo, editor)
	about.Load(ctx)
	require.NoError(t, about.BeginEdit(SeedAboutPatch))
	assert.Equal(t, StateEditing, about.State())

	text := "Building with Go"
	require.NoError(t, about.SetDraft(models.AboutPatch{Text: &text}))
	require.NoError(t, about.Save(ctx))

	view := about.View()
	assert.Equal(t, StateReady, view.State)
	assert.Equal(t, text, view.Data.Text)
	assert.False(t, view.Fallback)
	assert.Nil(t, view.Draft)

	home := NewHome(repo, Anonymous).Load(ctx)
	assert.Equal(t, text, home.Data)
}

func TestSaveFailureKeepsEditingAndDraft(t *testing.T) {
	repo := newFlakyRepo()
	ctx := context.Background()
	require.NoError(t, repo.ContentRepository.UpsertSkillGroup(ctx, models.SkillGroup{ID: "backend", SkillsList: []string{"Go"}}))

	skills := NewSkills(repo, editor)
	skills.Load(ctx)
	require.NoError(t, skills.BeginEdit(SeedSkillGroupForm("backend")))
	assert.Equal(t, "Go", skills.Draft().Skills)

	repo.failWrites = true
	draft := models.SkillGroupForm{ID: "backend", Skills: "Go, Rust"}
	require.NoError(t, skills.SetDraft(draft))
	err := skills.Save(ctx)
	require.ErrorIs(t, err, errStoreDown)

	assert.Equal(t, StateEditing, skills.State())
	assert.Equal(t, draft, skills.Draft())
	view := skills.View()
	assert.Equal(t, []string{"Go"}, view.Data[0].SkillsList, "visible data reverts only on the next fetch")

	repo.failWrites = false
	require.NoError(t, skills.Save(ctx))
	assert.Equal(t, StateReady, skills.State())
	assert.Equal(t, []string{"Go", "Rust"}, skills.View().Data[0].SkillsList)
}

func TestBeginEditRequiresReady(t *testing.T) {
	repo := newFlakyRepo()
	repo.failReads = true
	ctx := context.Background()

	about := NewAbout(repo, editor)
	assert.ErrorIs(t, about.BeginEdit(SeedAboutPatch), ErrNotReady, "still loading")

	about.Load(ctx)
	assert.ErrorIs(t, about.BeginEdit(SeedAboutPatch), ErrNotReady, "fetch failed")
	assert.ErrorIs(t, about.SetDraft(models.AboutPatch{}), ErrNotEditing)
}

func TestCancelDropsDraft(t *testing.T) {
	repo := newFlakyRepo()
	ctx := context.Background()

	home := NewHome(repo, editor)
	home.Load(ctx)
	require.NoError(t, home.BeginEdit(func(s string) string { return s }))
	require.NoError(t, home.SetDraft("draft text"))

	home.Cancel()
	assert.Equal(t, StateReady, home.State())
	assert.Equal(t, "", home.Draft())
	assert.ErrorIs(t, home.Save(ctx), ErrNotEditing)
}

func TestProjectsCreateUpdateDelete(t *testing.T) {
	repo := newFlakyRepo()
	ctx := context.Background()

	projects := NewProjects(repo, editor)
	projects.Load(ctx)
	require.NoError(t, projects.BeginEdit(SeedProjectDraft("")))
	require.NoError(t, projects.SetDraft(ProjectDraft{Form: models.ProjectForm{Title: "CLI", TechStack: "Go, Cobra"}}))
	require.NoError(t, projects.Save(ctx))

	id := projects.CreatedID()
	require.NotEmpty(t, id)
	view := projects.View()
	require.Len(t, view.Data, 1)
	assert.Equal(t, models.TechStack{"Go", "Cobra"}, view.Data[0].TechStack)

	require.NoError(t, projects.BeginEdit(SeedProjectDraft(id)))
	assert.Equal(t, "CLI", projects.Draft().Form.Title)
	require.NoError(t, projects.SetDraft(ProjectDraft{EditingID: id, Form: models.ProjectForm{Title: "CLI v2"}}))
	require.NoError(t, projects.Save(ctx))
	assert.Equal(t, "CLI v2", projects.View().Data[0].Title)

	require.NoError(t, projects.Delete(ctx, repo, id))
	assert.Empty(t, projects.View().Data)
}

func TestNormalizeCategoryID(t *testing.T) {
	assert.Equal(t, "machinelearning", NormalizeCategoryID("Machine  Learning"))
	assert.Equal(t, "devops", NormalizeCategoryID(" Dev\tOps "))
}
