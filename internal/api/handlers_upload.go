// handlers_upload.go - File upload operation handlers
package api

import (
	"errors"
	"net/http"
	"slices"

	"github.com/ctutil/backend/internal/common"
	"github.com/ctutil/backend/internal/response"
	"github.com/ctutil/backend/internal/upload"
	"github.com/labstack/echo/v4"
)

// UploadHandlerImpl implements the UploadHandler interface
type UploadHandlerImpl struct {
	uploads    *upload.Manager
	maxMemory  int64
	categories []string
}

// NewUploadHandler creates a new upload handler instance. ?category= must be
// one of categories; an empty list allows only the default category.
func NewUploadHandler(uploads *upload.Manager, maxMemory int64, categories []string) UploadHandler {
	if maxMemory <= 0 {
		maxMemory = 32 << 20
	}
	if len(categories) == 0 {
		categories = []string{upload.DefaultCategory}
	}
	return &UploadHandlerImpl{
		uploads:    uploads,
		maxMemory:  maxMemory,
		categories: categories,
	}
}

// HandleUploadFile stores the part named by ?field= (default "file") under
// ?category= (default "image")
func (h *UploadHandlerImpl) HandleUploadFile(c echo.Context) error {
	category, err := h.category(c)
	if err != nil {
		return err
	}
	form, err := h.form(c)
	if err != nil {
		return err
	}

	stored, err := h.uploads.StoreFile(c.Request().Context(), form,
		queryOr(c, "field", upload.DefaultField), category)
	if err != nil {
		return saveError("failed to save file", err)
	}
	if stored == nil {
		return response.Fail(c, "no file provided", response.StateNormalError)
	}

	return response.Success(c, stored)
}

// HandleUploadAll stores every uploaded part
func (h *UploadHandlerImpl) HandleUploadAll(c echo.Context) error {
	category, err := h.category(c)
	if err != nil {
		return err
	}
	form, err := h.form(c)
	if err != nil {
		return err
	}

	paths, err := h.uploads.StoreAll(c.Request().Context(), form, category)
	if err != nil {
		return saveError("failed to save files", err)
	}

	return response.Success(c, paths)
}

// HandleContent accepts form or JSON fields, moves an inline base64 image in
// "content" to storage and returns the fields with content rewritten
func (h *UploadHandlerImpl) HandleContent(c echo.Context) error {
	fields := map[string]any{}
	if err := c.Bind(&fields); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	if err := h.uploads.ExtractInlineImage(c.Request().Context(), fields); err != nil {
		return NewBadRequestError("invalid inline image", err)
	}

	return response.Success(c, fields)
}

// form parses the multipart body. A request without one has no parts.
func (h *UploadHandlerImpl) form(c echo.Context) (upload.Form, error) {
	req := c.Request()
	if err := req.ParseMultipartForm(h.maxMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return upload.FromMultipart(nil), nil
		}
		return nil, NewBadRequestError("invalid multipart body", err)
	}
	return upload.FromMultipart(req.MultipartForm), nil
}

func (h *UploadHandlerImpl) category(c echo.Context) (string, error) {
	category := queryOr(c, "category", upload.DefaultCategory)
	if !slices.Contains(h.categories, category) {
		return "", NewValidationError("category")
	}
	return category, nil
}

// saveError keeps rejected names a client error
func saveError(message string, err error) error {
	if errors.Is(err, common.ErrInvalidArgument) {
		return NewBadRequestError(message, err)
	}
	return NewInternalError(message, err)
}

func queryOr(c echo.Context, name, fallback string) string {
	if v := c.QueryParam(name); v != "" {
		return v
	}
	return fallback
}
