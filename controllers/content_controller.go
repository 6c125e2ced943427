package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/HSouheill/portfolio_backend/middleware"
	"github.com/HSouheill/portfolio_backend/models"
	"github.com/HSouheill/portfolio_backend/sections"
	"github.com/HSouheill/portfolio_backend/utils"
)

// ContentController serves the Home, About and Skills sections
type ContentController struct {
	repo     ContentRepository
	notifier Notifier
	logger   *zap.Logger
}

// NewContentController creates a new content controller
func NewContentController(repo ContentRepository, notifier Notifier, logger *zap.Logger) *ContentController {
	return &ContentController{
		repo:     repo,
		notifier: notifier,
		logger:   logger.Named("content"),
	}
}

// GetHome handles GET /api/home
func (cc *ContentController) GetHome(c echo.Context) error {
	view := sections.NewHome(cc.repo, middleware.GetViewer(c)).Load(c.Request().Context())
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Home retrieved",
		Data:    view,
	})
}

// GetAbout handles GET /api/about
func (cc *ContentController) GetAbout(c echo.Context) error {
	view := sections.NewAbout(cc.repo, middleware.GetViewer(c)).Load(c.Request().Context())
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "About retrieved",
		Data:    view,
	})
}

// UpdateAbout handles PUT /api/about. Only the fields present in the body
// are written.
func (cc *ContentController) UpdateAbout(c echo.Context) error {
	var patch models.AboutPatch
	if err := c.Bind(&patch); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if patch.Text == nil && patch.Bio == nil {
		return badRequest(c, "Nothing to update")
	}
	if patch.Text != nil {
		text := utils.SanitizeInput(*patch.Text)
		patch.Text = &text
	}
	if patch.Bio != nil {
		bio := utils.SanitizeInput(*patch.Bio)
		patch.Bio = &bio
	}

	ctx := c.Request().Context()
	about := sections.NewAbout(cc.repo, middleware.GetViewer(c))
	if err := editAndSave(ctx, about, sections.SeedAboutPatch, patch); err != nil {
		return respondError(c, cc.logger, err, about.View())
	}

	cc.notifier.NotifyContentUpdated(sections.NameAbout)
	if patch.Text != nil {
		cc.notifier.NotifyContentUpdated(sections.NameHome)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "About updated",
		Data:    about.View(),
	})
}

// GetSkills handles GET /api/skills
func (cc *ContentController) GetSkills(c echo.Context) error {
	view := sections.NewSkills(cc.repo, middleware.GetViewer(c)).Load(c.Request().Context())
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Skills retrieved",
		Data:    view,
	})
}

// UpsertSkillGroup handles PUT /api/skills. The category name becomes the
// group id after normalization; the skills string is comma separated.
func (cc *ContentController) UpsertSkillGroup(c echo.Context) error {
	var form models.SkillGroupForm
	if err := c.Bind(&form); err != nil {
		return badRequest(c, "Invalid request body")
	}
	form.ID = utils.SanitizeInput(form.ID)
	form.Skills = utils.SanitizeInput(form.Skills)
	if err := c.Validate(&form); err != nil {
		return badRequest(c, utils.ValidationMessage(err))
	}
	if sections.NormalizeCategoryID(form.ID) == "" {
		return badRequest(c, "Category name is required")
	}

	ctx := c.Request().Context()
	skills := sections.NewSkills(cc.repo, middleware.GetViewer(c))
	seed := sections.SeedSkillGroupForm(sections.NormalizeCategoryID(form.ID))
	if err := editAndSave(ctx, skills, seed, form); err != nil {
		return respondError(c, cc.logger, err, skills.View())
	}

	cc.notifier.NotifyContentUpdated(sections.NameSkills)
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Skills updated",
		Data:    skills.View(),
	})
}
