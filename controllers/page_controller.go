package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/HSouheill/portfolio_backend/middleware"
	"github.com/HSouheill/portfolio_backend/models"
	"github.com/HSouheill/portfolio_backend/sections"
	"github.com/HSouheill/portfolio_backend/web"
)

// SiteInfo is the shell page metadata
type SiteInfo struct {
	Title       string
	Description string
	URL         string

	// GoogleClientID enables the Google sign-in button when set
	GoogleClientID string
}

// PageData is everything the shell template renders
type PageData struct {
	Site     SiteInfo
	Nav      []web.NavLink
	Viewer   sections.Viewer
	Home     sections.View[string, string]
	About    sections.View[models.AboutDocument, models.AboutPatch]
	Skills   sections.View[[]models.SkillGroup, models.SkillGroupForm]
	Projects sections.View[[]models.Project, sections.ProjectDraft]
	Year     int
}

// PageController renders the shell page and the health check
type PageController struct {
	repo    ContentRepository
	site    SiteInfo
	backend string
	logger  *zap.Logger
}

// NewPageController creates a new page controller. backend names the
// document store in health responses.
func NewPageController(repo ContentRepository, site SiteInfo, backend string, logger *zap.Logger) *PageController {
	return &PageController{
		repo:    repo,
		site:    site,
		backend: backend,
		logger:  logger.Named("page"),
	}
}

// Index handles GET /. Sections load concurrently and each one falls back
// on its own.
func (pc *PageController) Index(c echo.Context) error {
	viewer := middleware.GetViewer(c)
	data := PageData{
		Site:   pc.site,
		Nav:    web.DefaultNav,
		Viewer: viewer,
		Year:   time.Now().Year(),
	}

	var g errgroup.Group
	ctx := c.Request().Context()
	g.Go(func() error {
		data.Home = sections.NewHome(pc.repo, viewer).Load(ctx)
		return nil
	})
	g.Go(func() error {
		data.About = sections.NewAbout(pc.repo, viewer).Load(ctx)
		return nil
	})
	g.Go(func() error {
		data.Skills = sections.NewSkills(pc.repo, viewer).Load(ctx)
		return nil
	})
	g.Go(func() error {
		data.Projects = sections.NewProjects(pc.repo, viewer).Load(ctx)
		return nil
	})
	_ = g.Wait()

	for _, state := range []sections.State{data.Home.State, data.About.State, data.Skills.State, data.Projects.State} {
		if state == sections.StateError {
			pc.logger.Warn("rendering page with fallback content")
			break
		}
	}
	return c.Render(http.StatusOK, "index.html", data)
}

// Health handles GET /health
func (pc *PageController) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
		"store":  pc.backend,
	})
}
