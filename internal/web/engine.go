package web

import (
	"embed"
	"html/template"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-directory/internal/core/server"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("2006-01-02 15:04")
	},
}

func Templates() *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

// NewEngine serves the HTML pages backed by api.
func NewEngine(l *zap.Logger, o server.Options, api Backend) *gin.Engine {
	r := server.NewRouter(l, o)
	r.SetHTMLTemplate(Templates())
	NewHandler(api, l).Mount(r)
	return r
}
