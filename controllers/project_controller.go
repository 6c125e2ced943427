package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/HSouheill/portfolio_backend/middleware"
	"github.com/HSouheill/portfolio_backend/models"
	"github.com/HSouheill/portfolio_backend/repositories"
	"github.com/HSouheill/portfolio_backend/sections"
	"github.com/HSouheill/portfolio_backend/utils"
)

const (
	defaultQRSize = 256
	minQRSize     = 128
	maxQRSize     = 1024
)

// ProjectController serves the project gallery
type ProjectController struct {
	repo     ContentRepository
	images   *utils.ImageStore
	notifier Notifier
	logger   *zap.Logger
}

// NewProjectController creates a new project controller
func NewProjectController(repo ContentRepository, images *utils.ImageStore, notifier Notifier, logger *zap.Logger) *ProjectController {
	return &ProjectController{
		repo:     repo,
		images:   images,
		notifier: notifier,
		logger:   logger.Named("projects"),
	}
}

// GetProjects handles GET /api/projects
func (pc *ProjectController) GetProjects(c echo.Context) error {
	view := sections.NewProjects(pc.repo, middleware.GetViewer(c)).Load(c.Request().Context())
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Projects retrieved",
		Data:    view,
	})
}

func (pc *ProjectController) bindForm(c echo.Context) (models.ProjectForm, error) {
	var form models.ProjectForm
	if err := c.Bind(&form); err != nil {
		return form, errors.New("Invalid request body")
	}
	form = utils.SanitizeProjectForm(form)
	if err := c.Validate(&form); err != nil {
		return form, errors.New(utils.ValidationMessage(err))
	}
	return form, nil
}

// CreateProject handles POST /api/projects
func (pc *ProjectController) CreateProject(c echo.Context) error {
	form, err := pc.bindForm(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	ctx := c.Request().Context()
	projects := sections.NewProjects(pc.repo, middleware.GetViewer(c))
	if err := editAndSave(ctx, projects.Section, sections.SeedProjectDraft(""), sections.ProjectDraft{Form: form}); err != nil {
		return respondError(c, pc.logger, err, projects.View())
	}

	pc.notifier.NotifyContentUpdated(sections.NameProjects)
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Project created",
		Data: map[string]interface{}{
			"id":       projects.CreatedID(),
			"projects": projects.View(),
		},
	})
}

// UpdateProject handles PUT /api/projects/:id. An empty imageUrl keeps the
// current image.
func (pc *ProjectController) UpdateProject(c echo.Context) error {
	id := c.Param("id")
	form, err := pc.bindForm(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	ctx := c.Request().Context()
	existing, err := pc.repo.GetProject(ctx, id)
	if err != nil {
		return respondError(c, pc.logger, err, nil)
	}
	if form.ImageURL == "" {
		form.ImageURL = existing.ImageURL
	}

	projects := sections.NewProjects(pc.repo, middleware.GetViewer(c))
	draft := sections.ProjectDraft{EditingID: id, Form: form}
	if err := editAndSave(ctx, projects.Section, sections.SeedProjectDraft(id), draft); err != nil {
		return respondError(c, pc.logger, err, projects.View())
	}

	pc.notifier.NotifyContentUpdated(sections.NameProjects)
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Project updated",
		Data:    projects.View(),
	})
}

// DeleteProject handles DELETE /api/projects/:id and removes its uploaded
// image
func (pc *ProjectController) DeleteProject(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	existing, err := pc.repo.GetProject(ctx, id)
	if err != nil {
		return respondError(c, pc.logger, err, nil)
	}

	projects := sections.NewProjects(pc.repo, middleware.GetViewer(c))
	if err := projects.Delete(ctx, pc.repo, id); err != nil {
		return respondError(c, pc.logger, err, nil)
	}

	if err := pc.images.RemoveUpload(existing.ImageURL); err != nil {
		pc.logger.Warn("failed to remove project image", zap.String("id", id), zap.Error(err))
	}

	pc.notifier.NotifyContentUpdated(sections.NameProjects)
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Project deleted",
		Data:    projects.View(),
	})
}

// UploadProjectImage handles POST /api/projects/:id/image with a multipart
// "image" field
func (pc *ProjectController) UploadProjectImage(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	existing, err := pc.repo.GetProject(ctx, id)
	if err != nil {
		return respondError(c, pc.logger, err, nil)
	}

	file, err := c.FormFile("image")
	if err != nil {
		return badRequest(c, "Image file is required")
	}
	if !utils.IsValidImageFile(file) {
		return badRequest(c, utils.ErrUnsupportedImage.Error())
	}
	if file.Size > utils.MaxImageSize {
		return badRequest(c, "Image is too large")
	}

	src, err := file.Open()
	if err != nil {
		return badRequest(c, "Failed to read image")
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, utils.MaxImageSize+1))
	if err != nil {
		return badRequest(c, "Failed to read image")
	}

	url, err := pc.images.SaveProjectImage(data, file.Filename)
	if err != nil {
		return badRequest(c, err.Error())
	}

	projects := sections.NewProjects(pc.repo, middleware.GetViewer(c))
	err = projects.Perform(ctx, func(ctx context.Context) error {
		return pc.repo.SetProjectImage(ctx, id, url)
	})
	if err != nil {
		if rmErr := pc.images.RemoveUpload(url); rmErr != nil {
			pc.logger.Warn("failed to remove orphaned image", zap.String("url", url), zap.Error(rmErr))
		}
		return respondError(c, pc.logger, err, nil)
	}

	if existing.ImageURL != "" && existing.ImageURL != url {
		if err := pc.images.RemoveUpload(existing.ImageURL); err != nil {
			pc.logger.Warn("failed to remove previous image", zap.String("id", id), zap.Error(err))
		}
	}

	pc.notifier.NotifyContentUpdated(sections.NameProjects)
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Image uploaded",
		Data:    map[string]string{"imageUrl": url},
	})
}

// GetProjectQRCode handles GET /api/projects/:id/qrcode. It encodes the
// live link, else the repository link.
func (pc *ProjectController) GetProjectQRCode(c echo.Context) error {
	project, err := pc.repo.GetProject(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Project not found",
			})
		}
		return respondError(c, pc.logger, err, nil)
	}

	link := project.Live
	if link == "" {
		link = project.GithubLink
	}
	if link == "" {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Project has no link to encode",
		})
	}

	size := defaultQRSize
	if raw := c.QueryParam("size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			size = n
		}
	}
	if size < minQRSize {
		size = minQRSize
	}
	if size > maxQRSize {
		size = maxQRSize
	}

	png, err := utils.QRCodePNG(link, size)
	if err != nil {
		pc.logger.Error("failed to generate QR code", zap.String("link", link), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate QR code",
		})
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=3600")
	return c.Blob(http.StatusOK, "image/png", png)
}
