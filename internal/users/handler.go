package users

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"recipes-backend/internal/shared/server/middleware"
	"recipes-backend/internal/shared/server/respond"
	"recipes-backend/internal/uploads"
)

// PictureField is the multipart field holding a profile picture.
const PictureField = "picture"

type Handler struct {
	Svc    *Service
	Upload gin.HandlerFunc
}

func NewHandler(svc *Service, upload gin.HandlerFunc) *Handler {
	return &Handler{Svc: svc, Upload: upload}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	upload := h.Upload
	if upload == nil {
		upload = func(c *gin.Context) { c.Next() }
	}
	rg.GET("/users", h.list)
	rg.POST("/users", upload, h.create)
	rg.GET("/users/search/username", h.search)
	rg.GET("/users/:id", h.get)
	rg.PATCH("/users/:id", upload, h.update)
	rg.DELETE("/users/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	found, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Fail(c, http.StatusInternalServerError, "Read Users Failed", nil)
		return
	}
	respond.Success(c, "", found)
}

func (h *Handler) create(c *gin.Context) {
	p, err := bindProfile(c)
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, "Validation Failed", respond.ValidationDetails(err))
		return
	}
	user, err := h.Svc.Register(c.Request.Context(), p)
	if err != nil {
		writeError(c, err, "Create User Failed")
		return
	}
	c.Set(middleware.UserIDKey, user.ID)
	respond.Success(c, "", user)
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.UserIDKey, id)
	user, err := h.Svc.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Read User Failed")
		return
	}
	respond.Success(c, "", user)
}

func (h *Handler) update(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.UserIDKey, id)
	p, err := bindProfile(c)
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, "Validation Failed", respond.ValidationDetails(err))
		return
	}
	user, err := h.Svc.UpdateProfile(c.Request.Context(), id, p)
	if err != nil {
		writeError(c, err, "Update User Failed")
		return
	}
	respond.Success(c, "Success update data", user)
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.UserIDKey, id)
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err, "Delete User Failed")
		return
	}
	respond.Success(c, "Success Delete Data", gin.H{"id": id})
}

func (h *Handler) search(c *gin.Context) {
	found, err := h.Svc.SearchByUsername(c.Request.Context(), c.Query("q"))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Fail(c, http.StatusBadRequest, "Search term is required", nil)
		case errors.Is(err, ErrNotFound):
			respond.Fail(c, http.StatusNotFound, "Users not found", nil)
		default:
			respond.Fail(c, http.StatusInternalServerError, "Search User By Username Failed", nil)
		}
		return
	}
	respond.Success(c, "", found)
}

func writeError(c *gin.Context, err error, failure string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Fail(c, http.StatusNotFound, "User not found", nil)
	case errors.Is(err, ErrConflict):
		respond.Fail(c, http.StatusConflict, "Username or email already taken", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Fail(c, http.StatusBadRequest, "Username and email are required", nil)
	default:
		respond.Fail(c, http.StatusInternalServerError, failure, nil)
	}
}

func bindProfile(c *gin.Context) (Profile, error) {
	var p Profile
	if c.Request.ContentLength != 0 || c.ContentType() != "" {
		if err := c.ShouldBind(&p); err != nil && !errors.Is(err, io.EOF) {
			return Profile{}, err
		}
	}
	if ref, ok := uploads.Reference(c, PictureField); ok {
		locator := ref.Locator
		p.Picture = &locator
	}
	return p, nil
}
