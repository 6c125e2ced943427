package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/HSouheill/portfolio_backend/models"
)

// Persisted field names. Skill lists live under "title" and the repository
// link under "github link", as the site has always stored them.
const (
	fieldAboutText   = "text"
	fieldAboutBio    = "bio"
	fieldSkills      = "title"
	fieldSkillsAlt   = "skillsList"
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldTechStack   = "techstack"
	fieldGithub      = "github link"
	fieldLive        = "live"
	fieldImageURL    = "imageUrl"
	fieldSentAt      = "sentAt"
)

var githubAliases = []string{fieldGithub, "githubLink", "github"}

// ContentRepository reads and writes the portfolio collections and turns
// loosely shaped documents into the canonical models.
type ContentRepository struct {
	store DocumentStore
}

// NewContentRepository wraps a document store
func NewContentRepository(store DocumentStore) *ContentRepository {
	return &ContentRepository{store: store}
}

// GetAbout returns the about singleton or ErrNotFound
func (r *ContentRepository) GetAbout(ctx context.Context) (*models.AboutDocument, error) {
	doc, err := r.store.GetDocument(ctx, models.AboutDocPath)
	if err != nil {
		return nil, err
	}
	return &models.AboutDocument{
		Text: stringField(doc.Fields, fieldAboutText),
		Bio:  stringField(doc.Fields, fieldAboutBio),
	}, nil
}

// SaveAbout merges the changed fields into the singleton, creating it on first write
func (r *ContentRepository) SaveAbout(ctx context.Context, patch models.AboutPatch) error {
	fields := map[string]interface{}{}
	if patch.Text != nil {
		fields[fieldAboutText] = *patch.Text
	}
	if patch.Bio != nil {
		fields[fieldAboutBio] = *patch.Bio
	}
	if len(fields) == 0 {
		return nil
	}

	collPath, id, err := splitDocPath(models.AboutDocPath)
	if err != nil {
		return err
	}
	return r.store.UpsertDocument(ctx, collPath, id, fields, true)
}

// ListSkillGroups returns every category in store order
func (r *ContentRepository) ListSkillGroups(ctx context.Context) ([]models.SkillGroup, error) {
	docs, err := r.store.ListDocuments(ctx, models.SkillsCollectionPath)
	if err != nil {
		return nil, err
	}

	groups := make([]models.SkillGroup, 0, len(docs))
	for _, doc := range docs {
		groups = append(groups, models.SkillGroup{
			ID:         doc.ID,
			SkillsList: skillsField(doc.Fields),
		})
	}
	return groups, nil
}

// UpsertSkillGroup writes a category's skills, leaving other fields of the
// document in place
func (r *ContentRepository) UpsertSkillGroup(ctx context.Context, group models.SkillGroup) error {
	if group.ID == "" {
		return errors.New("skill group id is required")
	}
	skills := group.SkillsList
	if skills == nil {
		skills = []string{}
	}
	return r.store.UpsertDocument(ctx, models.SkillsCollectionPath, group.ID, map[string]interface{}{
		fieldSkills: skills,
	}, true)
}

// ListProjects returns every project in store order
func (r *ContentRepository) ListProjects(ctx context.Context) ([]models.Project, error) {
	docs, err := r.store.ListDocuments(ctx, models.ProjectsCollectionPath)
	if err != nil {
		return nil, err
	}

	projects := make([]models.Project, 0, len(docs))
	for _, doc := range docs {
		projects = append(projects, projectFromDocument(doc))
	}
	return projects, nil
}

// GetProject returns one project or ErrNotFound
func (r *ContentRepository) GetProject(ctx context.Context, id string) (*models.Project, error) {
	doc, err := r.store.GetDocument(ctx, models.ProjectsCollectionPath+"/"+id)
	if err != nil {
		return nil, err
	}
	project := projectFromDocument(*doc)
	return &project, nil
}

// CreateProject stores a new project and returns its store-assigned id
func (r *ContentRepository) CreateProject(ctx context.Context, project models.Project) (string, error) {
	id, err := r.store.CreateDocument(ctx, models.ProjectsCollectionPath, projectFields(project))
	if err != nil {
		return "", fmt.Errorf("creating project: %w", err)
	}
	return id, nil
}

// UpdateProject overwrites the form fields of an existing project
func (r *ContentRepository) UpdateProject(ctx context.Context, id string, project models.Project) error {
	if _, err := r.store.GetDocument(ctx, models.ProjectsCollectionPath+"/"+id); err != nil {
		return err
	}
	return r.store.UpsertDocument(ctx, models.ProjectsCollectionPath, id, projectFields(project), true)
}

// SetProjectImage points an existing project at a new image
func (r *ContentRepository) SetProjectImage(ctx context.Context, id, imageURL string) error {
	if _, err := r.store.GetDocument(ctx, models.ProjectsCollectionPath+"/"+id); err != nil {
		return err
	}
	return r.store.UpsertDocument(ctx, models.ProjectsCollectionPath, id, map[string]interface{}{
		fieldImageURL: imageURL,
	}, true)
}

// DeleteProject removes a project permanently
func (r *ContentRepository) DeleteProject(ctx context.Context, id string) error {
	return r.store.DeleteDocument(ctx, models.ProjectsCollectionPath, id)
}

// AppendMessage stores a contact message with a server-assigned timestamp
func (r *ContentRepository) AppendMessage(ctx context.Context, msg models.ContactMessage) (string, error) {
	id, err := r.store.CreateDocument(ctx, models.MessagesCollectionPath, map[string]interface{}{
		"name":      msg.Name,
		"email":     msg.Email,
		"message":   msg.Message,
		fieldSentAt: ServerTimestamp,
	})
	if err != nil {
		return "", fmt.Errorf("storing contact message: %w", err)
	}
	return id, nil
}

func projectFields(p models.Project) map[string]interface{} {
	stack := []string(p.TechStack)
	if stack == nil {
		stack = []string{}
	}
	return map[string]interface{}{
		fieldTitle:       p.Title,
		fieldDescription: p.Description,
		fieldTechStack:   stack,
		fieldGithub:      p.GithubLink,
		fieldLive:        p.Live,
		fieldImageURL:    p.ImageURL,
	}
}

func projectFromDocument(doc Document) models.Project {
	p := models.Project{
		ID:          doc.ID,
		Title:       stringField(doc.Fields, fieldTitle),
		Description: stringField(doc.Fields, fieldDescription),
		TechStack:   models.ParseTechStack(doc.Fields[fieldTechStack]),
		Live:        stringField(doc.Fields, fieldLive),
		ImageURL:    stringField(doc.Fields, fieldImageURL),
	}
	for _, alias := range githubAliases {
		if link := stringField(doc.Fields, alias); link != "" {
			p.GithubLink = link
			break
		}
	}
	return p
}

func skillsField(fields map[string]interface{}) []string {
	for _, key := range []string{fieldSkills, fieldSkillsAlt} {
		switch v := fields[key].(type) {
		case []interface{}, []string:
			return []string(models.ParseTechStack(v))
		}
	}
	return []string{}
}

func stringField(fields map[string]interface{}, key string) string {
	if s, ok := fields[key].(string); ok {
		return s
	}
	return ""
}
