package models

// SkillGroupForm is the editor's category form; Skills is comma separated
type SkillGroupForm struct {
	ID     string `json:"id" validate:"required,max=100"`
	Skills string `json:"skills"`
}

// ProjectForm is the editor's project form. TechStack is comma separated.
type ProjectForm struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	TechStack   string `json:"techstack"`
	GithubLink  string `json:"githubLink" validate:"omitempty,url"`
	Live        string `json:"live" validate:"omitempty,url"`
	ImageURL    string `json:"imageUrl"`
}

// ProjectFormFrom seeds the edit form from a stored project
func ProjectFormFrom(p Project) ProjectForm {
	return ProjectForm{
		Title:       p.Title,
		Description: p.Description,
		TechStack:   p.TechStack.String(),
		GithubLink:  p.GithubLink,
		Live:        p.Live,
		ImageURL:    p.ImageURL,
	}
}

// Project converts the form into a project with a normalized stack
func (f ProjectForm) Project(id string) Project {
	return Project{
		ID:          id,
		Title:       f.Title,
		Description: f.Description,
		TechStack:   TechStack(SplitList(f.TechStack)),
		GithubLink:  f.GithubLink,
		Live:        f.Live,
		ImageURL:    f.ImageURL,
	}
}
