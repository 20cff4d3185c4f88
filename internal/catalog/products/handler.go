package products

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Niyatinagar/Quickpick/internal/catalog/categories"
	catshared "github.com/Niyatinagar/Quickpick/internal/catalog/shared"
	"github.com/Niyatinagar/Quickpick/internal/platform/httpx"
	"github.com/Niyatinagar/Quickpick/internal/shared"
)

// Handler exposes product endpoints. Reads are public; writes sit behind
// the admin middleware supplied by the router.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountPublicRoutes registers the read-only product routes.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
}

// MountAdminRoutes registers the write routes.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Patch("/{id}/stock", h.adjustStock)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := catshared.FiltersFromQuery(r)
	products, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"products": products,
		"total":    total,
		"page":     filters.Page,
		"limit":    filters.Limit,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrBadRequest)
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

type productForm struct {
	Name        string  `json:"name" validate:"required"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	CategoryID  int64   `json:"category_id" validate:"required,gt=0"`
	Price       float64 `json:"price" validate:"gte=0"`
	Unit        string  `json:"unit" validate:"required"`
	Stock       int     `json:"stock" validate:"gte=0"`
	ImageURL    string  `json:"image_url"`
	IsActive    bool    `json:"is_active"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decodeForm(w, r)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), form.toProduct())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrBadRequest)
		return
	}
	form, ok := h.decodeForm(w, r)
	if !ok {
		return
	}
	if err := h.service.Update(r.Context(), id, form.toProduct()); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type stockForm struct {
	Delta int `json:"delta" validate:"required"`
}

func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrBadRequest)
		return
	}
	var form stockForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.AdjustStock(r.Context(), id, form.Delta); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrBadRequest)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (f productForm) toProduct() Product {
	return Product{
		Name:        f.Name,
		Slug:        f.Slug,
		Description: f.Description,
		CategoryID:  f.CategoryID,
		Price:       f.Price,
		Unit:        f.Unit,
		Stock:       f.Stock,
		ImageURL:    f.ImageURL,
		IsActive:    f.IsActive,
	}
}

func (h *Handler) decodeForm(w http.ResponseWriter, r *http.Request) (productForm, bool) {
	var form productForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return form, false
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return form, false
	}
	if form.Slug == "" {
		form.Slug = categories.Slugify(form.Name)
	}
	return form, true
}
