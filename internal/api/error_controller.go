package api

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"github.com/phrazzld/useradmin/internal/platform/logger"
	"github.com/phrazzld/useradmin/internal/redact"
)

//go:embed templates/error.html
var templateFS embed.FS

// ErrorPath is where the error page is mounted.
const ErrorPath = "/error"

// Keys of the error page model.
const (
	ModelStatus    = "status"
	ModelMessage   = "message"
	ModelException = "exception"
)

// ErrorAttributes describe the failure being rendered by the error page.
// A zero StatusCode on a dispatched error means 500.
type ErrorAttributes struct {
	StatusCode int
	Message    string
	Exception  error
}

type errorAttributesKey struct{}

// WithErrorAttributes returns a copy of ctx carrying attrs.
func WithErrorAttributes(ctx context.Context, attrs ErrorAttributes) context.Context {
	return context.WithValue(ctx, errorAttributesKey{}, attrs)
}

// ErrorAttributesFromContext returns the attributes attached by Dispatch.
func ErrorAttributesFromContext(ctx context.Context) (ErrorAttributes, bool) {
	attrs, ok := ctx.Value(errorAttributesKey{}).(ErrorAttributes)
	return attrs, ok
}

// ErrorController renders the error page for failed requests, unknown
// routes and recovered panics.
type ErrorController struct {
	tmpl   *template.Template
	logger *slog.Logger
}

// NewErrorController parses the embedded error template.
func NewErrorController(logger *slog.Logger) (*ErrorController, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tmpl, err := template.ParseFS(templateFS, "templates/error.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse error template: %w", err)
	}
	return &ErrorController{
		tmpl:   tmpl,
		logger: logger.With("component", "error_controller"),
	}, nil
}

// Dispatch attaches attrs to the request and renders the error page.
func (c *ErrorController) Dispatch(w http.ResponseWriter, r *http.Request, attrs ErrorAttributes) {
	if attrs.StatusCode == 0 {
		attrs.StatusCode = http.StatusInternalServerError
	}
	c.HandleError(w, r.WithContext(WithErrorAttributes(r.Context(), attrs)))
}

// HandleError renders the error page from the request's error attributes.
// A request without attributes renders an empty page with status 200.
func (c *ErrorController) HandleError(w http.ResponseWriter, r *http.Request) {
	attrs, dispatched := ErrorAttributesFromContext(r.Context())
	model := BuildErrorModel(attrs)

	if attrs.Exception != nil {
		logger.FromContextOrDefault(r.Context(), c.logger).Error("error occurred",
			"error", redact.Error(attrs.Exception),
			"status", attrs.StatusCode,
			"path", r.URL.Path)
	}

	status := http.StatusOK
	if dispatched {
		status = attrs.StatusCode
		if status == 0 {
			status = http.StatusInternalServerError
		}
	}

	if render.GetAcceptedContentType(r) == render.ContentTypeJSON {
		render.Status(r, status)
		render.JSON(w, r, model)
		return
	}

	var buf bytes.Buffer
	if err := c.tmpl.ExecuteTemplate(&buf, "error", model); err != nil {
		c.logger.Error("failed to render error page", "error", err)
		http.Error(w, http.StatusText(status), status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// BuildErrorModel returns the page model. Only the attributes that are set
// appear, each as a string.
func BuildErrorModel(attrs ErrorAttributes) map[string]string {
	model := make(map[string]string, 3)
	if attrs.StatusCode != 0 {
		model[ModelStatus] = strconv.Itoa(attrs.StatusCode)
	}
	if attrs.Message != "" {
		model[ModelMessage] = attrs.Message
	}
	if attrs.Exception != nil {
		model[ModelException] = attrs.Exception.Error()
	}
	return model
}

// NotFound renders the error page for unknown routes.
func (c *ErrorController) NotFound(w http.ResponseWriter, r *http.Request) {
	c.Dispatch(w, r, ErrorAttributes{
		StatusCode: http.StatusNotFound,
		Message:    http.StatusText(http.StatusNotFound),
	})
}

// MethodNotAllowed renders the error page for unsupported methods.
func (c *ErrorController) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	c.Dispatch(w, r, ErrorAttributes{
		StatusCode: http.StatusMethodNotAllowed,
		Message:    http.StatusText(http.StatusMethodNotAllowed),
	})
}

// Recoverer turns handler panics into a 500 error page.
func (c *ErrorController) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			exception, ok := rec.(error)
			if !ok {
				exception = fmt.Errorf("%v", rec)
			}
			c.Dispatch(w, r, ErrorAttributes{
				StatusCode: http.StatusInternalServerError,
				Message:    http.StatusText(http.StatusInternalServerError),
				Exception:  fmt.Errorf("panic: %w", exception),
			})
		}()
		next.ServeHTTP(w, r)
	})
}
