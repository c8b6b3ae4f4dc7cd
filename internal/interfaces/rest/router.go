package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/nv0skar/Noisier/internal/application/dispatcher"
	"github.com/nv0skar/Noisier/internal/application/registry"
	"github.com/nv0skar/Noisier/internal/application/services"
	"github.com/nv0skar/Noisier/internal/interfaces/middleware"
	"github.com/sirupsen/logrus"
)

// MetricsPath exposes request statistics when enabled
const MetricsPath = "/metrics"

// RouterOptions carries everything the HTTP surface needs. Nil collaborators
// disable the matching feature.
type RouterOptions struct {
	Debug     bool
	Prefix    string
	StaticDir string
	CacheTime int

	Registry   *registry.Registry
	Dispatcher *dispatcher.Dispatcher
	Auth       *services.AuthService
	Metrics    *middleware.Metrics
}

// NewRouter builds the gin engine. JSON bodies are decoded with UseNumber so
// integer ids survive beyond 2^53.
func NewRouter(l *logrus.Entry, opts RouterOptions) *gin.Engine {
	binding.EnableDecoderUseNumber = true

	router := gin.New()
	router.Use(gin.LoggerWithWriter(l.WriterLevel(logrus.DebugLevel)), gin.Recovery())

	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware())
		router.GET(MetricsPath, opts.Metrics.Handler())
	}
	router.Use(middleware.Cors(opts.Prefix), middleware.Token())

	responder := &Responder{L: l, Debug: opts.Debug}
	builtins := map[string]gin.HandlerFunc{}
	if opts.Registry != nil {
		builtins[services.SummaryEndpoint] = NewSummaryHandler(opts.Registry).Get
	}
	if opts.Auth != nil {
		authHandler := NewAuthHandler(opts.Auth, responder)
		builtins[services.LoginEndpoint] = authHandler.Login
		builtins[services.RegisterEndpoint] = authHandler.Register
	}

	endpoints := NewEndpointHandler(responder, EndpointHandlerOptions{
		Prefix:     opts.Prefix,
		Dispatcher: opts.Dispatcher,
		Builtins:   builtins,
		StaticDir:  opts.StaticDir,
		CacheTime:  opts.CacheTime,
	})
	router.NoRoute(endpoints.Handle)

	return router
}
