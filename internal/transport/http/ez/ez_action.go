package ez

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-directory/internal/domain"
	mdw "user-directory/internal/transport/http/middleware"
	resp "user-directory/internal/transport/http/response"
)

// EZ registers envelope-returning actions on a route group.
type EZ struct {
	g gin.IRoutes
	l *zap.Logger
}

func New(g gin.IRoutes, l *zap.Logger) EZ {
	if l == nil {
		l = zap.NewNop()
	}
	return EZ{g: g, l: l}
}

type Binder string

const (
	BindJSON  Binder = "json"
	BindQuery Binder = "query"
	BindNone  Binder = "none" // handler reads c.Param itself
)

// AErr carries an envelope code. Err is logged, never sent.
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func NotFound(msg string) error   { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

type Action[I any, O any] struct {
	Method  string // GET / POST / PUT / DELETE
	Path    string // e.g. /users/:id
	Binder  Binder
	Handler func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			e.fail(c, BadRequest(bindMessage(bindErr)))
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			e.fail(c, err)
			return
		}
		c.Set(mdw.KeyEnvelopeCode, resp.CodeOK)
		resp.JSON(c, resp.OK(out))
	}

	method := strings.ToUpper(a.Method)
	if method == "" {
		method = http.MethodPost
	}
	e.g.Handle(method, a.Path, h)
}

func (e EZ) fail(c *gin.Context, err error) {
	ae := Classify(err)
	if ae.Code >= resp.CodeServerError {
		e.l.Error("action failed",
			zap.String("rid", mdw.RequestIDFrom(c)),
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
	}
	c.Set(mdw.KeyEnvelopeCode, ae.Code)
	resp.JSON(c, resp.Error(ae.Code, ae.Error()))
}

// Classify turns any handler error into an AErr. Store errors keep their
// validation message; persistence details are replaced by "internal error".
func Classify(err error) *AErr {
	var ae *AErr
	if errors.As(err, &ae) {
		return ae
	}
	var de *domain.Error
	if errors.As(err, &de) {
		switch de.Code {
		case domain.CodeValidation:
			msg := de.Message
			if msg == "" {
				msg = "invalid input"
			}
			return &AErr{Code: resp.CodeBadRequest, Msg: msg, Err: err}
		case domain.CodeNotFound:
			return &AErr{Code: resp.CodeNotFound, Msg: "user not found", Err: err}
		}
	}
	return &AErr{Code: resp.CodeServerError, Msg: "internal error", Err: err}
}

func bindMessage(err error) string {
	var mbe *http.MaxBytesError
	var se *json.SyntaxError
	var te *json.UnmarshalTypeError
	switch {
	case errors.As(err, &mbe):
		return "request body too large"
	case errors.Is(err, io.EOF):
		return "request body is empty"
	case errors.As(err, &se), errors.Is(err, io.ErrUnexpectedEOF):
		return "malformed JSON body"
	case errors.As(err, &te):
		return te.Field + " has the wrong type"
	}
	return "invalid request: " + err.Error()
}

// ParamID reads a positive numeric path parameter.
func ParamID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		return 0, BadRequest("invalid id: " + strconv.Quote(raw))
	}
	return uint(id), nil
}
