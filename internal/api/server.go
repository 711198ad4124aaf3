package api

import (
	"html/template"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Tennis match winners</title>
{{if not .Ready}}<meta http-equiv="refresh" content="2">{{end}}
<style>
body { font-family: sans-serif; margin: 2em; }
.chart { margin-bottom: 2em; }
.error { color: #d62728; }
</style>
</head>
<body>
<h1>Tennis match winners</h1>
{{if .Error}}<p class="error">Dataset failed to load: {{.Error}}</p>{{end}}
{{if .Ready}}
{{range .Charts}}
<div class="chart" id="{{.Name}}">
<h2>{{.Title}}</h2>
{{.SVG}}
<p><a href="/charts/{{.Name}}">SVG</a></p>
</div>
{{else}}
<p>No charts configured.</p>
{{end}}
{{else if not .Error}}
<p>Loading dataset&hellip;</p>
{{end}}
</body>
</html>
`

type templates struct {
	t *template.Template
}

func (t *templates) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.t.ExecuteTemplate(w, name, data)
}

func newTemplates() *templates {
	return &templates{t: template.Must(template.New("index").Parse(indexHTML))}
}

// jsonSerializer encodes responses with goccy/go-json.
type jsonSerializer struct{}

func (jsonSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsonSerializer) Deserialize(c echo.Context, i interface{}) error {
	if err := json.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body").SetInternal(err)
	}
	return nil
}

// NewServer returns an echo instance with the middleware stack and h's
// routes. A non-positive rateLimit disables rate limiting.
func NewServer(h *Handler, rateLimit float64) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.JSONSerializer = jsonSerializer{}
	e.Renderer = newTemplates()

	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	if rateLimit > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(rateLimit))))
	}

	h.RegisterRoutes(e)
	return e
}
