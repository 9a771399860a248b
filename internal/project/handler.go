package project

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"JanSamadhan/internal/auth"

	"github.com/labstack/echo/v4"
)

const (
	maxFileSize   = 5 << 20 // 5MB per file
	maxPhotoFiles = 10
)

type ProjectHandler struct {
	service *ProjectService
}

func NewProjectHandler(service *ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// Create opens a project for the department in the session.
func (h *ProjectHandler) Create(c echo.Context) error {
	claims, ok := c.Get("user").(*auth.JWTClaims)
	if !ok || claims == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing session"})
	}

	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	project, err := h.service.Create(c.Request().Context(), claims.DeptName, req)
	var validationErr *ValidationError
	switch {
	case errors.Is(err, ErrInvalidProgress), errors.As(err, &validationErr):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create project"})
	}
	return c.JSON(http.StatusCreated, project)
}

// ListAll returns every project across departments, for the admin dashboard.
// The route is guarded by the admin middleware.
func (h *ProjectHandler) ListAll(c echo.Context) error {
	projects, err := h.service.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch projects"})
	}
	return c.JSON(http.StatusOK, projects)
}

// ListByDepartment returns the session department's projects. Admins may
// query any department.
func (h *ProjectHandler) ListByDepartment(c echo.Context) error {
	claims, ok := c.Get("user").(*auth.JWTClaims)
	if !ok || claims == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing session"})
	}

	department := claims.DeptName
	if claims.Role == auth.RoleAdmin {
		department = c.QueryParam("department")
	}
	if department == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Department is required"})
	}

	projects, err := h.service.ListByDepartment(c.Request().Context(), department)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch projects"})
	}
	return c.JSON(http.StatusOK, projects)
}

func (h *ProjectHandler) Get(c echo.Context) error {
	project, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch project"})
	}
	return c.JSON(http.StatusOK, project)
}

// UpdateProgress applies a daily report. Multipart form; progress,
// remainingBudget and remarks are optional, photo files go under "photos".
func (h *ProjectHandler) UpdateProgress(c echo.Context) error {
	claims, ok := c.Get("user").(*auth.JWTClaims)
	if !ok || claims == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing session"})
	}

	params, err := parseUpdateParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	files, err := readUploads(c, "photos", maxPhotoFiles)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	actingDept := claims.DeptName
	if claims.Role == auth.RoleAdmin {
		actingDept = ""
	}

	err = h.service.UpdateProgress(c.Request().Context(), c.Param("id"), actingDept, params, files)
	switch {
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrInvalidProgress):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrNotOwner):
		return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update project"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Project updated successfully"})
}

func (h *ProjectHandler) Delete(c echo.Context) error {
	claims, ok := c.Get("user").(*auth.JWTClaims)
	if !ok || claims == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing session"})
	}

	actingDept := claims.DeptName
	if claims.Role == auth.RoleAdmin {
		actingDept = ""
	}

	err := h.service.Delete(c.Request().Context(), c.Param("id"), actingDept)
	switch {
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrNotOwner):
		return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete project"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Project deleted successfully"})
}

// parseUpdateParams reads the optional report fields; absent form values stay
// nil so the service leaves them unchanged.
func parseUpdateParams(c echo.Context) (UpdateParams, error) {
	var params UpdateParams

	if v := c.FormValue("progress"); v != "" {
		progress, err := strconv.Atoi(v)
		if err != nil {
			return params, errors.New("progress must be a number")
		}
		params.Progress = &progress
	}
	if v := c.FormValue("remainingBudget"); v != "" {
		budget, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return params, errors.New("remainingBudget must be a number")
		}
		params.RemainingBudget = &budget
	}
	if v := c.FormValue("remarks"); v != "" {
		remarks := v
		params.Remarks = &remarks
	}
	return params, nil
}

func readUploads(c echo.Context, field string, maxFiles int) ([]Upload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil
	}
	headers := form.File[field]
	if len(headers) > maxFiles {
		return nil, errors.New("too many files")
	}

	uploads := make([]Upload, 0, len(headers))
	for _, header := range headers {
		if header.Size > maxFileSize {
			return nil, errors.New("file exceeds the 5MB limit: " + header.Filename)
		}
		data, err := readFile(header)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return uploads, nil
}

func readFile(header *multipart.FileHeader) ([]byte, error) {
	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(src)
}
