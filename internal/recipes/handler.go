package recipes

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"recipes-backend/internal/shared/server/middleware"
	"recipes-backend/internal/shared/server/respond"
	"recipes-backend/internal/uploads"
)

// PictureField is the multipart field holding a recipe image.
const PictureField = "picture"

// Handler wires HTTP handlers to the service. Upload runs before create and
// update; it is expected to store the PictureField part, if any.
type Handler struct {
	Svc    *Service
	Upload gin.HandlerFunc
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, upload gin.HandlerFunc) *Handler {
	return &Handler{Svc: svc, Upload: upload}
}

// RegisterRoutes attaches recipe routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	upload := h.Upload
	if upload == nil {
		upload = func(c *gin.Context) { c.Next() }
	}
	rg.GET("/recipes", h.list)
	rg.GET("/recipes/search", h.search)
	rg.GET("/recipes/:id", h.get)
	rg.POST("/recipes", upload, h.create)
	rg.PATCH("/recipes/:id", upload, h.update)
	rg.PUT("/recipes/:id", upload, h.update)
	rg.DELETE("/recipes/:id", h.delete)
}

func (h *Handler) create(c *gin.Context) {
	in, err := bindInput(c)
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, "Validation Failed", respond.ValidationDetails(err))
		return
	}
	recipe, err := h.Svc.Create(c.Request.Context(), in)
	if err != nil {
		respond.Fail(c, http.StatusInternalServerError, "Create Recipe Failed", nil)
		return
	}
	c.Set(middleware.RecipeIDKey, recipe.ID)
	respond.Success(c, "", recipe)
}

func (h *Handler) list(c *gin.Context) {
	recipes, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Fail(c, http.StatusInternalServerError, "Read Recipes Failed", nil)
		return
	}
	respond.Success(c, "", recipes)
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.RecipeIDKey, id)
	recipe, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		writeLookupError(c, err, "Read Recipe Failed")
		return
	}
	respond.Success(c, "", recipe)
}

func (h *Handler) update(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.RecipeIDKey, id)
	in, err := bindInput(c)
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, "Validation Failed", respond.ValidationDetails(err))
		return
	}
	recipe, err := h.Svc.Update(c.Request.Context(), id, in)
	if err != nil {
		writeLookupError(c, err, "Update Recipe Failed")
		return
	}
	respond.Success(c, "Success update data", recipe)
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.RecipeIDKey, id)
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		writeLookupError(c, err, "Delete Recipe Failed")
		return
	}
	respond.Success(c, "Success Delete Data", gin.H{"id": id})
}

func (h *Handler) search(c *gin.Context) {
	found, err := h.Svc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Fail(c, http.StatusBadRequest, "Search term is required", nil)
		case errors.Is(err, ErrNotFound):
			respond.Fail(c, http.StatusNotFound, "Recipes not found", nil)
		default:
			respond.Fail(c, http.StatusInternalServerError, "Search Recipe By Name Failed", nil)
		}
		return
	}
	respond.Success(c, "", found)
}

func writeLookupError(c *gin.Context, err error, failure string) {
	if errors.Is(err, ErrNotFound) {
		respond.Fail(c, http.StatusNotFound, "Recipe not found", nil)
		return
	}
	respond.Fail(c, http.StatusInternalServerError, failure, nil)
}

// bindInput reads the text fields from JSON, urlencoded or multipart bodies.
// A stored picture overrides any image given in the body.
func bindInput(c *gin.Context) (Input, error) {
	var in Input
	if c.Request.ContentLength != 0 || c.ContentType() != "" {
		if err := c.ShouldBind(&in); err != nil && !errors.Is(err, io.EOF) {
			return Input{}, err
		}
	}
	if ref, ok := uploads.Reference(c, PictureField); ok {
		locator := ref.Locator
		in.Image = &locator
	}
	return in, nil
}
