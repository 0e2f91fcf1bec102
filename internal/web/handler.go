package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-directory/internal/domain"
)

const (
	msgAdded       = "User added successfully"
	msgUpdated     = "User updated successfully"
	msgDeleted     = "User deleted successfully"
	msgNotFound    = "User not found"
	msgFetchFailed = "Error fetching data from server"
	msgFetchUser   = "Error fetching user data"
	msgDeleteError = "Error deleting user"
)

// Backend is the subset of Client the pages need.
type Backend interface {
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, in domain.AggregateInput) error
	Update(ctx context.Context, id string, in domain.AggregateInput) error
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	api Backend
	l   *zap.Logger
}

func NewHandler(api Backend, l *zap.Logger) *Handler {
	return &Handler{api: api, l: l}
}

// formUser is what the edit form renders, from a stored user or a rejected post.
type formUser struct {
	ID      string
	Name    string
	Gender  string
	Phone   string
	Zipcode string
	Email   string
}

func fromUser(id string, u *domain.User) formUser {
	f := formUser{ID: id, Name: u.Name, Gender: u.Gender}
	if u.Contact != nil {
		f.Phone, f.Zipcode = u.Contact.Phone, u.Contact.Zipcode
	}
	if u.Email != nil {
		f.Email = u.Email.Email
	}
	return f
}

func fromInput(id string, in domain.AggregateInput) formUser {
	return formUser{ID: id, Name: in.Name, Gender: in.Gender, Phone: in.Phone, Zipcode: in.Zipcode, Email: in.Email}
}

func (h *Handler) Mount(r gin.IRoutes) {
	r.GET("/", h.index)
	r.GET("/add", h.addForm)
	r.POST("/add", h.add)
	r.GET("/edit/:id", h.editForm)
	r.POST("/update/:id", h.update)
	r.GET("/delete/:id", h.delete)
}

func (h *Handler) index(c *gin.Context) {
	users, err := h.api.List(c.Request.Context())
	message := c.Query("message")
	if err != nil {
		h.l.Error("list users", zap.Error(err))
		users, message = nil, msgFetchFailed
	}
	c.HTML(http.StatusOK, "index.html", gin.H{"users": users, "message": message})
}

func (h *Handler) addForm(c *gin.Context) {
	c.HTML(http.StatusOK, "add_users.html", gin.H{"title": "Add Users", "message": "", "user": formUser{}})
}

func (h *Handler) add(c *gin.Context) {
	var in domain.AggregateInput
	_ = c.ShouldBind(&in)
	if err := h.api.Create(c.Request.Context(), in); err != nil {
		h.l.Warn("add user", zap.Error(err))
		c.HTML(http.StatusOK, "add_users.html", gin.H{
			"title":   "Add Users",
			"message": "Error adding user: " + reason(err),
			"user":    fromInput("", in),
		})
		return
	}
	redirect(c, msgAdded)
}

func (h *Handler) editForm(c *gin.Context) {
	id := c.Param("id")
	u, err := h.api.Get(c.Request.Context(), id)
	switch {
	case errors.Is(err, ErrNotFound):
		redirect(c, msgNotFound)
		return
	case err != nil:
		h.l.Error("get user", zap.String("id", id), zap.Error(err))
		redirect(c, msgFetchUser)
		return
	}
	c.HTML(http.StatusOK, "edit_users.html", gin.H{"title": "Edit User", "message": "", "user": fromUser(id, u)})
}

func (h *Handler) update(c *gin.Context) {
	id := c.Param("id")
	var in domain.AggregateInput
	_ = c.ShouldBind(&in)
	if err := h.api.Update(c.Request.Context(), id, in); err != nil {
		h.l.Warn("update user", zap.String("id", id), zap.Error(err))
		c.HTML(http.StatusOK, "edit_users.html", gin.H{
			"title":   "Edit User",
			"message": "Error updating user: " + reason(err),
			"user":    fromInput(id, in),
		})
		return
	}
	redirect(c, msgUpdated)
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.api.Delete(c.Request.Context(), id); err != nil {
		h.l.Warn("delete user", zap.String("id", id), zap.Error(err))
		redirect(c, msgDeleteError)
		return
	}
	redirect(c, msgDeleted)
}

func redirect(c *gin.Context, message string) {
	c.Redirect(http.StatusFound, "/?message="+url.QueryEscape(message))
}

// reason prefers the backend's own message over transport detail.
func reason(err error) string {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Msg
	}
	return "backend unavailable"
}
