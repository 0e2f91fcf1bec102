package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-directory/internal/domain"
	httpez "user-directory/internal/transport/http/ez"
)

type UserHandler struct {
	store domain.AggregateStore
	l     *zap.Logger
}

func NewUserHandler(store domain.AggregateStore, l *zap.Logger) *UserHandler {
	return &UserHandler{store: store, l: l}
}

type idOut struct {
	ID uint `json:"id"`
}

type routes struct {
	create, list, get, update, del string
}

// Paths served by the original backend, used by the HTML frontend.
var legacyRoutes = routes{
	create: "/add",
	list:   "/users",
	get:    "/users/:id",
	update: "/update/:id",
	del:    "/delete/:id",
}

var restRoutes = routes{
	create: "/users",
	list:   "/users",
	get:    "/users/:id",
	update: "/users/:id",
	del:    "/users/:id",
}

func (h *UserHandler) Priority() int { return 10 }

// MountAPI serves the resource-style routes under the versioned group.
func (h *UserHandler) MountAPI(g *gin.RouterGroup) { h.mount(g, restRoutes) }

// MountLegacy serves the verb-style routes at the root.
func (h *UserHandler) MountLegacy(g gin.IRoutes) { h.mount(g, legacyRoutes) }

func (h *UserHandler) mount(g gin.IRoutes, p routes) {
	e := httpez.New(g, h.l)

	httpez.RegisterAction(e, httpez.Action[domain.AggregateInput, *domain.User]{
		Method:  http.MethodPost,
		Path:    p.create,
		Binder:  httpez.BindJSON,
		Handler: h.create,
	})
	httpez.RegisterAction(e, httpez.Action[struct{}, []domain.User]{
		Method:  http.MethodGet,
		Path:    p.list,
		Binder:  httpez.BindNone,
		Handler: h.list,
	})
	httpez.RegisterAction(e, httpez.Action[struct{}, *domain.User]{
		Method:  http.MethodGet,
		Path:    p.get,
		Binder:  httpez.BindNone,
		Handler: h.get,
	})
	httpez.RegisterAction(e, httpez.Action[domain.AggregateInput, idOut]{
		Method:  http.MethodPut,
		Path:    p.update,
		Binder:  httpez.BindJSON,
		Handler: h.update,
	})
	httpez.RegisterAction(e, httpez.Action[struct{}, idOut]{
		Method:  http.MethodDelete,
		Path:    p.del,
		Binder:  httpez.BindNone,
		Handler: h.delete,
	})
}

func (h *UserHandler) create(c *gin.Context, in *domain.AggregateInput) (*domain.User, error) {
	return h.store.Create(c.Request.Context(), *in)
}

func (h *UserHandler) list(c *gin.Context, _ *struct{}) ([]domain.User, error) {
	return h.store.List(c.Request.Context())
}

func (h *UserHandler) get(c *gin.Context, _ *struct{}) (*domain.User, error) {
	id, err := httpez.ParamID(c, "id")
	if err != nil {
		return nil, err
	}
	return h.store.Get(c.Request.Context(), id)
}

func (h *UserHandler) update(c *gin.Context, in *domain.AggregateInput) (idOut, error) {
	id, err := httpez.ParamID(c, "id")
	if err != nil {
		return idOut{}, err
	}
	if err := h.store.Update(c.Request.Context(), id, *in); err != nil {
		return idOut{}, err
	}
	return idOut{ID: id}, nil
}

func (h *UserHandler) delete(c *gin.Context, _ *struct{}) (idOut, error) {
	id, err := httpez.ParamID(c, "id")
	if err != nil {
		return idOut{}, err
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		return idOut{}, err
	}
	return idOut{ID: id}, nil
}
