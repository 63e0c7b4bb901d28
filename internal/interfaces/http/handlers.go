package http

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/teciza/desk/internal/application/service"
	"github.com/teciza/desk/internal/domain/entity"
	"github.com/teciza/desk/internal/domain/report"
)

// Version is reported by the health check
var Version = "dev"

// Handlers contains all HTTP request handlers
type Handlers struct {
	formService   service.FormService
	reportService service.ReportService
	health        HealthFunc
	logger        Logger
}

// NewHandlers creates a new Handlers instance. health may be nil.
func NewHandlers(
	formService service.FormService,
	reportService service.ReportService,
	health HealthFunc,
	logger Logger,
) *Handlers {
	return &Handlers{
		formService:   formService,
		reportService: reportService,
		health:        health,
		logger:        logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string      `json:"status"`
	Timestamp  string      `json:"timestamp"`
	Version    string      `json:"version"`
	Components interface{} `json:"components,omitempty"`
}

// ButtonResponse is one custom button of a form view
type ButtonResponse struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

// FormResponse represents a rendered form in API responses
type FormResponse struct {
	Document *entity.Document `json:"doc"`
	Buttons  []ButtonResponse `json:"buttons"`
}

// FiltersResponse represents a report filter panel
type FiltersResponse struct {
	Report  string                    `json:"report"`
	Filters []report.FilterDescriptor `json:"filters"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	healthy, details := true, interface{}(nil)
	if h.health != nil {
		healthy, details = h.health(c.Request.Context())
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	c.JSON(code, Response{
		Success: healthy,
		Data: HealthResponse{
			Status:     status,
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			Version:    Version,
			Components: details,
		},
	})
}

// GetForm handles GET /api/desk/form/:doctype/:name
func (h *Handlers) GetForm(c *gin.Context) {
	doctype, name := c.Param("doctype"), c.Param("name")

	view, err := h.formService.Render(c.Request.Context(), sessionFrom(c), doctype, name)
	if err != nil {
		h.writeError(c, err, "Failed to render form", "doctype", doctype, "name", name)
		return
	}

	buttons := make([]ButtonResponse, 0, len(view.Buttons))
	for _, label := range view.Buttons {
		buttons = append(buttons, ButtonResponse{
			Label:  label,
			Action: actionPath(doctype, name, label),
		})
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: FormResponse{
			Document: view.Document,
			Buttons:  buttons,
		},
	})
}

// ActivateAction handles GET|POST /api/desk/form/:doctype/:name/action/:label
// by redirecting the browser to the URL the action navigates to.
func (h *Handlers) ActivateAction(c *gin.Context) {
	doctype, name, label := c.Param("doctype"), c.Param("name"), c.Param("label")

	target, err := h.formService.Activate(c.Request.Context(), sessionFrom(c), doctype, name, label)
	if err != nil {
		h.writeError(c, err, "Failed to activate form action", "doctype", doctype, "name", name, "label", label)
		return
	}

	h.logger.Info("Form action activated",
		"request_id", GetRequestID(c),
		"doctype", doctype,
		"name", name,
		"label", label,
		"location", target,
	)
	c.Redirect(http.StatusSeeOther, target)
}

// ListReports handles GET /api/desk/reports
func (h *Handlers) ListReports(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    h.reportService.Reports(),
	})
}

// GetReportFilters handles GET /api/desk/report/:report/filters
func (h *Handlers) GetReportFilters(c *gin.Context) {
	name := c.Param("report")

	filters, err := h.reportService.Filters(c.Request.Context(), sessionFrom(c), name)
	if err != nil {
		h.writeError(c, err, "Failed to build report filters", "report", name)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: FiltersResponse{
			Report:  name,
			Filters: filters,
		},
	})
}

func (h *Handlers) writeError(c *gin.Context, err error, msg string, keysAndValues ...interface{}) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, append([]interface{}{"error", err, "request_id", GetRequestID(c)}, keysAndValues...)...)
	}

	c.JSON(status, Response{
		Success: false,
		Error:   err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrDocumentNotFound),
		errors.Is(err, service.ErrDoctypeNotBound),
		errors.Is(err, service.ErrActionNotFound),
		errors.Is(err, service.ErrReportNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func actionPath(doctype, name, label string) string {
	return "/api/desk/form/" + url.PathEscape(doctype) + "/" + url.PathEscape(name) +
		"/action/" + url.PathEscape(label)
}
