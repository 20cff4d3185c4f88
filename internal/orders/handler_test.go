package orders

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Niyatinagar/Quickpick/internal/cart"
	"github.com/Niyatinagar/Quickpick/internal/shared"
)

// newOrdersRouter mounts the handler the way the application router does,
// with the caller's identity injected ahead of the routes.
func newOrdersRouter(h *Handler, callerID uuid.UUID) http.Handler {
	inject := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithUserID(req.Context(), callerID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
	r := chi.NewRouter()
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(inject)
		h.MountRoutes(r)
	})
	r.Route("/api/admin/orders", func(r chi.Router) {
		r.Use(inject)
		h.MountAdminRoutes(r)
	})
	return r
}

func TestAdminOrderRouteFetchesAnyOrder(t *testing.T) {
	buyerID := uuid.New()
	adminID := uuid.New()
	gateway := &stubGateway{}
	svc, _, _ := newTestService(stubCart{lines: map[uuid.UUID][]cart.Line{buyerID: fixtureLines(buyerID)}}, gateway)

	order, err := svc.PlaceOrder(context.Background(), buyerID)
	require.NoError(t, err)

	handler := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
	router := newOrdersRouter(handler, adminID)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/orders/"+order.ID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, order.ID, fetched.ID)
	assert.Equal(t, buyerID, fetched.UserID)
}

func TestUserOrderRouteEnforcesOwnership(t *testing.T) {
	buyerID := uuid.New()
	otherID := uuid.New()
	gateway := &stubGateway{}
	svc, _, _ := newTestService(stubCart{lines: map[uuid.UUID][]cart.Line{buyerID: fixtureLines(buyerID)}}, gateway)

	order, err := svc.PlaceOrder(context.Background(), buyerID)
	require.NoError(t, err)

	handler := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)

	rec := httptest.NewRecorder()
	newOrdersRouter(handler, otherID).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/"+order.ID.String(), nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	newOrdersRouter(handler, buyerID).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/"+order.ID.String(), nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
