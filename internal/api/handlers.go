package api

import (
	"bytes"
	"html/template"
	"net/http"
	"strconv"
	"sync"

	"github.com/labstack/echo/v4"

	"tennischarts/internal/chart"
	"tennischarts/internal/models"
)

type Handler struct {
	mu      sync.RWMutex
	data    *models.Dashboard
	loadErr error

	charts map[string]chart.Options
	layout chart.Layout
}

// NewHandler serves data, which may be nil until SetData is called. opts
// holds the render options per chart name.
func NewHandler(data *models.Dashboard, layout chart.Layout, opts map[string]chart.Options) *Handler {
	return &Handler{data: data, layout: layout, charts: opts}
}

func (h *Handler) SetData(data *models.Dashboard) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.data = data
	h.loadErr = nil
}

// SetError records a failed load. Data endpoints keep returning 503.
func (h *Handler) SetError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loadErr = err
}

func (h *Handler) snapshot() (*models.Dashboard, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.data, h.loadErr
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Index)
	e.GET("/charts/:name", h.GetChartSVG)

	api := e.Group("/api")
	api.GET("/status", h.GetStatus)
	api.GET("/charts", h.ListCharts)
	api.GET("/charts/:name", h.GetChart)
}

// --- HANDLERS ---
func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ready returns the dashboard or a 503 while it is still loading.
func (h *Handler) ready() (*models.Dashboard, error) {
	data, loadErr := h.snapshot()
	if data != nil {
		return data, nil
	}
	if loadErr != nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "dataset failed to load").SetInternal(loadErr)
	}
	return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "dataset is loading")
}

func (h *Handler) lookup(c echo.Context) (*models.ChartData, error) {
	data, err := h.ready()
	if err != nil {
		return nil, err
	}
	cd := data.Chart(c.Param("name"))
	if cd == nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "unknown chart "+strconv.Quote(c.Param("name")))
	}
	return cd, nil
}

func (h *Handler) GetStatus(c echo.Context) error {
	data, loadErr := h.snapshot()
	st := models.Status{Charts: make([]string, 0)}
	if data != nil {
		st.Ready = true
		st.Rows = data.Rows
		st.Fingerprint = data.Fingerprint
		for _, cd := range data.Charts {
			st.Charts = append(st.Charts, cd.Name)
		}
	}
	if loadErr != nil {
		st.Error = loadErr.Error()
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) ListCharts(c echo.Context) error {
	data, err := h.ready()
	if err != nil {
		return err
	}
	out := make([]models.ChartSummary, 0, len(data.Charts))
	for i := range data.Charts {
		out = append(out, data.Charts[i].Summary())
	}
	return c.JSON(http.StatusOK, out)
}

// GetChart returns the aggregated rows of one chart, paginated by category.
func (h *Handler) GetChart(c echo.Context) error {
	cd, err := h.lookup(c)
	if err != nil {
		return err
	}

	rows := cd.Rows
	total := len(rows)
	limit, offset := getPaginationParams(c, total)

	page := []models.AggregatedRow{}
	if offset < total {
		if limit > total-offset {
			limit = total - offset
		}
		page = rows[offset : offset+limit]
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"name":      cd.Name,
		"field":     cd.Field,
		"title":     cd.Title,
		"winners":   cd.Winners,
		"max_count": cd.Max,
		"data":      page,
		"total":     total,
		"limit":     limit,
		"offset":    offset,
	})
}

func (h *Handler) GetChartSVG(c echo.Context) error {
	cd, err := h.lookup(c)
	if err != nil {
		return err
	}
	b, err := h.renderSVG(cd)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/svg+xml", b)
}

type indexChart struct {
	models.ChartSummary
	SVG template.HTML
}

type indexPage struct {
	Ready  bool
	Error  string
	Charts []indexChart
}

// renderSVG renders cd with its configured options.
func (h *Handler) renderSVG(cd *models.ChartData) ([]byte, error) {
	opts, ok := h.charts[cd.Name]
	if !ok {
		opts = chart.Options{Layout: h.layout, Title: cd.Title}
	}
	var buf bytes.Buffer
	if err := chart.Render(&buf, cd, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (h *Handler) Index(c echo.Context) error {
	data, loadErr := h.snapshot()
	var page indexPage
	if loadErr != nil {
		page.Error = loadErr.Error()
	}
	if data != nil {
		page.Ready = true
		for i := range data.Charts {
			cd := &data.Charts[i]
			b, err := h.renderSVG(cd)
			if err != nil {
				return err
			}
			// drop the XML prolog
			if n := bytes.Index(b, []byte("<svg")); n > 0 {
				b = b[n:]
			}
			page.Charts = append(page.Charts, indexChart{ChartSummary: cd.Summary(), SVG: template.HTML(b)})
		}
	}
	return c.Render(http.StatusOK, "index", page)
}
