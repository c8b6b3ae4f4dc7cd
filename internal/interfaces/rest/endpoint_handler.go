package rest

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nv0skar/Noisier/internal/application/dispatcher"
	"github.com/nv0skar/Noisier/internal/domain/endpoint"
	"github.com/nv0skar/Noisier/internal/interfaces/middleware"
	"github.com/nv0skar/Noisier/pkg/errors"
)

// IndexFile is served for the root path
const IndexFile = "index.html"

// EndpointHandler serves every request that gin's static routes did not
// match: registered endpoints under the API prefix and, optionally, files from
// the static directory for everything else.
type EndpointHandler struct {
	*Responder
	prefix     string
	dispatcher *dispatcher.Dispatcher
	builtins   map[string]gin.HandlerFunc

	staticDir string
	cacheTime int
}

// EndpointHandlerOptions configures NewEndpointHandler. A nil Dispatcher
// disables the API; an empty StaticDir disables static files.
type EndpointHandlerOptions struct {
	Prefix     string
	Dispatcher *dispatcher.Dispatcher
	Builtins   map[string]gin.HandlerFunc
	StaticDir  string
	CacheTime  int
}

func NewEndpointHandler(r *Responder, opts EndpointHandlerOptions) *EndpointHandler {
	return &EndpointHandler{
		Responder:  r,
		prefix:     strings.TrimRight(opts.Prefix, "/"),
		dispatcher: opts.Dispatcher,
		builtins:   opts.Builtins,
		staticDir:  opts.StaticDir,
		cacheTime:  opts.CacheTime,
	}
}

// Handle is installed as gin's NoRoute handler
func (h *EndpointHandler) Handle(c *gin.Context) {
	path := c.Request.URL.Path

	if h.dispatcher != nil {
		if rel, ok := h.relative(path); ok {
			h.serveEndpoint(c, rel)
			return
		}
	}
	if h.staticDir != "" {
		h.serveStatic(c, path)
		return
	}
	h.RespondAppError(c, errors.NewNotFoundError("resource", path))
}

func (h *EndpointHandler) relative(path string) (string, bool) {
	if h.prefix == "" {
		return path, true
	}
	if path == h.prefix {
		return "", true
	}
	if strings.HasPrefix(path, h.prefix+"/") {
		return strings.TrimPrefix(path, h.prefix), true
	}
	return "", false
}

func (h *EndpointHandler) serveEndpoint(c *gin.Context, rel string) {
	method, err := endpoint.ParseHttpMethod(c.Request.Method)
	if err != nil {
		h.RespondAppError(c, errors.NewNotFoundError("endpoint", fmt.Sprintf("%s %s", c.Request.Method, rel)))
		return
	}

	match, ok := h.dispatcher.Resolve(rel, method)
	if !ok {
		h.RespondAppError(c, errors.NewNotFoundError("endpoint", fmt.Sprintf("%s %s", method, rel)))
		return
	}
	c.Set(middleware.ContextKeyEndpoint, match.Entry.Name)

	if builtin, ok := h.builtins[match.Entry.Name]; ok {
		builtin(c)
		return
	}

	req := dispatcher.Request{
		Method: method,
		Path:   rel,
		Token:  c.GetString(middleware.ContextKeyToken),
		Query:  c.Request.URL.Query(),
	}
	if hasBody(c.Request.Method) {
		if req.Body, err = ReadBody(c); err != nil {
			h.RespondAppError(c, err)
			return
		}
	}

	res, err := match.Serve(c.Request.Context(), req)
	if err != nil {
		h.RespondAppError(c, err)
		return
	}
	c.JSON(res.Status, res.Body)
}

func (h *EndpointHandler) serveStatic(c *gin.Context, path string) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		h.RespondAppError(c, errors.NewNotFoundError("resource", path))
		return
	}

	rel := filepath.Clean("/" + path)
	if rel == "/" {
		rel = "/" + IndexFile
	}
	file := filepath.Join(h.staticDir, filepath.FromSlash(rel))

	info, err := os.Stat(file)
	if err != nil || info.IsDir() {
		h.RespondAppError(c, errors.NewNotFoundError("file", strings.TrimPrefix(rel, "/")))
		return
	}

	c.Header("Cache-Control", fmt.Sprintf("max-age=%d", h.cacheTime))
	c.File(file)
}
