// Package dispatcher compiles registered endpoints into handlers and serves
// requests against them.
//
// Setup runs once, single-threaded, before the server starts; the resulting
// Dispatcher is read-only and safe for concurrent use.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nv0skar/Noisier/internal/application/registry"
	"github.com/nv0skar/Noisier/internal/domain/endpoint"
	"github.com/nv0skar/Noisier/internal/domain/ports"
	apperrors "github.com/nv0skar/Noisier/pkg/errors"
	"github.com/nv0skar/Noisier/pkg/placeholder"
	"github.com/nv0skar/Noisier/pkg/results"
	"github.com/nv0skar/Noisier/pkg/sqllint"
	"github.com/sirupsen/logrus"
)

// Options configures Setup
type Options struct {
	// IdentityKey is the identity field bound to $loggedId, normally the
	// users table primary key. Empty binds NULL.
	IdentityKey string
	// Guard enforces allowed roles on authenticated endpoints. Optional.
	Guard ports.RoleGuard
	// BindStyle selects the native placeholder syntax
	BindStyle placeholder.BindStyle
	// Linter, when set, parses each translated query and warns on failure
	Linter *sqllint.Linter
}

// Request is the transport-independent view of an incoming call
type Request struct {
	Method endpoint.HttpMethod
	Path   string
	Token  string
	Query  url.Values
	Body   map[string]any
}

// Response is what a handler produced
type Response struct {
	Status int
	Body   any
}

// Handler serves one endpoint
type Handler struct {
	Entry     *registry.Entry
	Compiled  placeholder.Compiled
	Operation endpoint.SqlOperation

	pathParam   string
	store       ports.DataStore
	verifier    ports.TokenVerifier
	identityKey string
	guard       ports.RoleGuard
}

// Dispatcher routes requests to compiled handlers
type Dispatcher struct {
	registry *registry.Registry
	handlers map[*registry.Entry]*Handler
}

// Setup checks and compiles every query-backed entry of reg. Entries without
// a query are skipped; they are served elsewhere.
func Setup(l *logrus.Entry, reg *registry.Registry, store ports.DataStore, verifier ports.TokenVerifier, opts Options) (*Dispatcher, error) {
	d := &Dispatcher{registry: reg, handlers: make(map[*registry.Entry]*Handler)}

	for _, e := range reg.All() {
		if !e.Definition.HasQuery() {
			continue
		}
		el := l.WithFields(logrus.Fields{"endpoint": e.Name, "route": e.Definition.Route, "method": e.Definition.Method})
		el.Debug("setting up endpoint")

		warnings, err := Check(&e.Definition)
		for _, w := range warnings {
			el.Warn("⚠️  " + w)
		}
		if err != nil {
			return nil, err
		}

		h := &Handler{
			Entry:       e,
			Compiled:    placeholder.Translate(e.Definition.QueryText(), opts.BindStyle),
			Operation:   e.Definition.Operation(),
			store:       store,
			verifier:    verifier,
			identityKey: opts.IdentityKey,
			guard:       opts.Guard,
		}
		if names := placeholder.Extract(e.Pattern.ParameterName); len(names) > 0 {
			h.pathParam = names[0]
		}

		if opts.Linter != nil {
			if op, err := opts.Linter.Lint(h.Compiled.Native); err != nil {
				el.WithError(err).Warn("⚠️  the SQL query could not be parsed")
			} else if op != h.Operation {
				el.Warnf("⚠️  the SQL query parses as %s but starts like %s", op, h.Operation)
			}
		}

		d.handlers[e] = h
	}
	return d, nil
}

// Match is a registry entry resolved for one request. Handler is nil for
// entries without a query, which are served elsewhere.
type Match struct {
	Entry     *registry.Entry
	Handler   *Handler
	PathValue *int64
}

// Resolve finds the registry entry for a request path and method
func (d *Dispatcher) Resolve(path string, method endpoint.HttpMethod) (Match, bool) {
	e, value, ok := d.registry.FindMatchingRoute(path, method)
	if !ok {
		return Match{}, false
	}
	return Match{Entry: e, Handler: d.handlers[e], PathValue: value}, true
}

// Serve runs the matched handler for req
func (m Match) Serve(ctx context.Context, req Request) (Response, error) {
	if m.Handler == nil {
		return Response{}, apperrors.NewNotFoundError("endpoint", fmt.Sprintf("%s %s", req.Method, req.Path))
	}
	return m.Handler.Serve(ctx, req, m.PathValue)
}

// Len returns the number of compiled handlers
func (d *Dispatcher) Len() int {
	return len(d.handlers)
}

// Serve runs the endpoint for req. pathValue is the numeric trailing segment
// of the request path, if any.
func (h *Handler) Serve(ctx context.Context, req Request, pathValue *int64) (Response, error) {
	def := &h.Entry.Definition

	identity := h.identify(req.Token)
	if def.RequiredAuth {
		if identity == nil {
			return Response{}, apperrors.NewUnauthorizedError("a valid session token is required")
		}
		if h.guard != nil {
			if err := h.guard(identity, def.AllowedRoles); err != nil {
				if errors.Is(err, apperrors.ErrRoleNotAllowed) {
					return Response{}, apperrors.NewPermissionError(string(def.Method), def.Route)
				}
				return Response{}, err
			}
		}
	}

	values := make(map[string]any)
	if h.Operation.ReadsBody() {
		for _, p := range def.RequestBodyParams {
			values[p] = req.Body[p]
		}
	}
	if h.pathParam != "" && pathValue != nil {
		values[h.pathParam] = *pathValue
	}
	if h.Compiled.Uses(endpoint.LoggedIDParam) {
		values[endpoint.LoggedIDParam] = h.loggedID(identity)
	}
	args := h.Compiled.Bind(values)

	if !h.Operation.IsWrite() {
		rows, err := h.store.Query(ctx, h.Compiled.Native, args)
		if err != nil {
			return Response{}, err
		}
		rows = results.Apply(rows, req.Query)
		if len(rows) == 0 && h.Entry.Pattern.Parameterized {
			return Response{}, apperrors.NewNotFoundError("entry", pathString(pathValue))
		}
		return Response{Status: http.StatusOK, Body: rows}, nil
	}

	ack, err := h.store.Execute(ctx, h.Compiled.Native, args)
	if err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusOK, Body: ack}, nil
}

func (h *Handler) identify(token string) ports.Identity {
	if token == "" || h.verifier == nil {
		return nil
	}
	identity, err := h.verifier.Verify(token)
	if err != nil {
		return nil
	}
	return identity
}

func (h *Handler) loggedID(identity ports.Identity) any {
	if identity == nil || h.identityKey == "" {
		return nil
	}
	return identity[h.identityKey]
}

func pathString(v *int64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}
