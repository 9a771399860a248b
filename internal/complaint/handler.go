package complaint

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"JanSamadhan/internal/auth"

	"github.com/labstack/echo/v4"
)

const (
	maxFileSize          = 5 << 20 // 5MB per file
	maxRegistrationFiles = 5
	maxSupportingFiles   = 10
)

type ComplaintHandler struct {
	service *ComplaintService
}

func NewComplaintHandler(service *ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{service: service}
}

// Register handles complaint registration by a data-entry operator. Multipart
// form with up to 5 files under the "documents" field.
func (h *ComplaintHandler) Register(c echo.Context) error {
	req := CreateRequest{
		ComplainantName:  c.FormValue("complainantName"),
		GuardianName:     c.FormValue("guardianName"),
		Address:          c.FormValue("address"),
		Mobile:           c.FormValue("mobile"),
		ComplaintDetails: c.FormValue("complaintDetails"),
		AssignedBy:       c.FormValue("assignedBy"),
		AssignedPlace:    c.FormValue("assignedPlace"),
		AssignedDate:     c.FormValue("assignedDate"),
		Department:       c.FormValue("department"),
	}

	files, err := readUploads(c, "documents", maxRegistrationFiles)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	complaintID, err := h.service.Register(c.Request().Context(), req, files)
	var validationErr *ValidationError
	switch {
	case errors.Is(err, ErrUnknownDepartment), errors.As(err, &validationErr):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to register complaint"})
	}
	return c.JSON(http.StatusCreated, map[string]string{"complaintId": complaintID})
}

// ListByDepartment lists complaints for the department dashboard. Department
// sessions always see their own queue; all=true is reserved for admins.
func (h *ComplaintHandler) ListByDepartment(c echo.Context) error {
	claims, ok := c.Get("user").(*auth.JWTClaims)
	if !ok || claims == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing session"})
	}

	department := c.QueryParam("department")
	all := c.QueryParam("all") == "true"
	if claims.Role != auth.RoleAdmin {
		department = claims.DeptName
		all = false
	}

	complaints, err := h.service.List(c.Request().Context(), department, all)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch complaints"})
	}
	return c.JSON(http.StatusOK, complaints)
}

// GetStatus is the public tracking endpoint, no authentication.
func (h *ComplaintHandler) GetStatus(c echo.Context) error {
	complaintID := c.Param("complaintId")
	if complaintID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Complaint ID is required"})
	}

	complaint, err := h.service.GetByPublicID(c.Request().Context(), complaintID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch complaint"})
	}
	return c.JSON(http.StatusOK, complaint)
}

// UpdateStatus appends a status transition. Multipart form with up to 10
// files under the "supportDocs" field. The acting department comes from the
// session token, admins may act for a department named in the form.
func (h *ComplaintHandler) UpdateStatus(c echo.Context) error {
	claims, ok := c.Get("user").(*auth.JWTClaims)
	if !ok || claims == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing session"})
	}

	complaintID := c.Param("complaintId")
	status := c.FormValue("status")
	remark := c.FormValue("remark")

	actingDept := claims.DeptName
	if claims.Role == auth.RoleAdmin {
		actingDept = c.FormValue("department")
	}
	if actingDept == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Department is required"})
	}

	files, err := readUploads(c, "supportDocs", maxSupportingFiles)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	err = h.service.AppendStatusTransition(c.Request().Context(), complaintID, status, remark, actingDept, files)
	switch {
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrUnknownDepartment):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update status"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Status updated successfully"})
}

// readUploads reads the named multipart file field into memory, enforcing
// the per-file size cap and the file count cap.
func readUploads(c echo.Context, field string, maxFiles int) ([]Upload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// No multipart body at all is fine, file fields are optional.
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
