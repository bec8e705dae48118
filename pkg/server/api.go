package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nimburion/remotestore/pkg/health"
	"github.com/nimburion/remotestore/pkg/observability/logger"
	"github.com/nimburion/remotestore/pkg/observability/metrics"
	"github.com/nimburion/remotestore/pkg/store"
)

const defaultMaxRequestSize = 1 << 20

// Options wires the dependencies of the HTTP API.
type Options struct {
	Service store.DataService
	Health  *health.Registry
	// Metrics is optional; without it /metrics is not mounted.
	Metrics        *metrics.Registry
	Logger         logger.Logger
	MaxRequestSize int64
}

// ValueResponse is the body of a successful read.
type ValueResponse struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type handlers struct {
	service        store.DataService
	health         *health.Registry
	logger         logger.Logger
	maxRequestSize int64
}

// NewRouter builds the gin engine serving the key-value API, health and metrics.
func NewRouter(opts Options) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	registry := opts.Health
	if registry == nil {
		registry = health.NewRegistry()
	}
	maxSize := opts.MaxRequestSize
	if maxSize <= 0 {
		maxSize = defaultMaxRequestSize
	}

	engine := gin.New()
	engine.Use(RequestID(), Recovery(log), Logging(log))
	if opts.Metrics != nil {
		engine.Use(Metrics(opts.Metrics))
		engine.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	h := &handlers{
		service:        opts.Service,
		health:         registry,
		logger:         log,
		maxRequestSize: maxSize,
	}
	engine.GET("/healthz", h.healthz)

	kv := engine.Group("/v1/kv")
	kv.GET("/:key", h.get)
	kv.PUT("/:key", h.put)
	kv.DELETE("/:key", h.delete)

	return engine
}

func (h *handlers) get(c *gin.Context) {
	key := c.Param("key")
	value, err := h.service.Get(c.Request.Context(), key)
	if err != nil {
		h.fail(c, err)
		return
	}
	if value == nil {
		writeError(c, http.StatusNotFound, "not_found", "key not found")
		return
	}
	c.JSON(http.StatusOK, ValueResponse{Key: key, Value: value})
}

func (h *handlers) put(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxRequestSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, http.StatusRequestEntityTooLarge, "request_too_large", err.Error())
			return
		}
		writeError(c, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_body", "request body must be a JSON document")
		return
	}

	if err := h.service.Set(c.Request.Context(), c.Param("key"), value); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("key")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) healthz(c *gin.Context) {
	result := h.health.Check(c.Request.Context())
	status := http.StatusOK
	if !result.IsHealthy() {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, result)
}

// fail maps data store errors onto HTTP statuses.
func (h *handlers) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrUninitialized):
		writeError(c, http.StatusServiceUnavailable, "store_unavailable", err.Error())
	case errors.Is(err, store.ErrInvalidKey):
		writeError(c, http.StatusBadRequest, "invalid_key", err.Error())
	case errors.Is(err, store.ErrSerialization) && c.Request.Method != http.MethodGet:
		writeError(c, http.StatusBadRequest, "invalid_value", err.Error())
	default:
		h.logger.WithContext(c.Request.Context()).Error("data store operation failed",
			"method", c.Request.Method,
			"key", c.Param("key"),
			"error", err,
		)
		writeError(c, http.StatusInternalServerError, "internal_error", "data store operation failed")
	}
}

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     code,
		Message:   message,
		RequestID: c.GetString(requestIDKey),
	})
}
