package handlers

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"sort"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/chi/v5"

	"github.com/nnnkkk7/snowflake-bridge/pkg/logging"
	"github.com/nnnkkk7/snowflake-bridge/server/apierror"
	"github.com/nnnkkk7/snowflake-bridge/server/envelope"
	"github.com/nnnkkk7/snowflake-bridge/server/invocation"
)

// Route paths.
const (
	PathHello          = "/hello"
	PathTestConnection = "/test-snowflake"
	PathChat           = "/chat"
	PathExecuteSQL     = "/execute-sql"
)

type route struct {
	methods map[string]bool
	op      Operation
}

// Router dispatches invocations to the bridge operations and turns every
// outcome into exactly one envelope.
type Router struct {
	routes map[string]route
	logger *logging.Logger
}

// NewRouter creates a router for h.
func NewRouter(h *BridgeHandler, logger *logging.Logger) *Router {
	rt := &Router{
		routes: make(map[string]route),
		logger: logging.OrNop(logger),
	}
	rt.handle(PathHello, h.Hello, http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch)
	rt.handle(PathTestConnection, h.TestConnection, http.MethodGet, http.MethodPost)
	rt.handle(PathChat, h.Chat, http.MethodPost)
	rt.handle(PathExecuteSQL, h.ExecuteSQL, http.MethodPost)
	return rt
}

func (rt *Router) handle(path string, op Operation, methods ...string) {
	allowed := make(map[string]bool, len(methods))
	for _, m := range methods {
		allowed[m] = true
	}
	rt.routes[path] = route{methods: allowed, op: op}
}

// Paths returns the registered route paths in sorted order.
func (rt *Router) Paths() []string {
	paths := make([]string, 0, len(rt.routes))
	for p := range rt.routes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Invoke runs the operation for req. Panics are recovered into an internal
// error envelope.
func (rt *Router) Invoke(ctx context.Context, req *invocation.Request) (env envelope.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			rt.logger.Error("panic while handling invocation", "path", req.Path, "panic", r, "stack", string(debug.Stack()))
			env = envelope.FromError(apierror.NewInternalError(logging.Mask(fmt.Sprintf("internal error: %v", r))))
		}
	}()

	path := rt.resolvePath(req)
	r, ok := rt.routes[path]
	if !ok {
		return rt.fail(req, apierror.NewNotFoundError(path))
	}
	if !r.methods[req.Method] {
		return rt.fail(req, apierror.NewMethodNotAllowedError(req.Method, path))
	}

	payload, err := r.op(ctx, req)
	if err != nil {
		return rt.fail(req, err)
	}
	return envelope.Build(http.StatusOK, payload)
}

// HandleGatewayEvent is the Lambda entry point.
func (rt *Router) HandleGatewayEvent(ctx context.Context, ev events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	req, err := invocation.FromGatewayEvent(ev)
	if err != nil {
		return invocation.ToGatewayResponse(envelope.FromError(err)), nil
	}
	return invocation.ToGatewayResponse(rt.Invoke(ctx, req)), nil
}

// ServeHTTP synthesizes a gateway event from r and invokes it, the way API
// Gateway would.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ev, err := invocation.NewGatewayEvent(r)
	if err != nil {
		invocation.WriteResponse(w, envelope.FromError(apierror.NewValidationError(err.Error())))
		return
	}

	req, err := invocation.FromGatewayEvent(ev)
	if err != nil {
		invocation.WriteResponse(w, envelope.FromError(err))
		return
	}
	invocation.WriteResponse(w, rt.Invoke(r.Context(), req))
}

// Mount registers every route on r. Unknown paths and methods are answered by
// the router itself so errors keep the bridge format.
func (rt *Router) Mount(r chi.Router) {
	for _, path := range rt.Paths() {
		r.Handle(path, rt)
	}
	r.NotFound(rt.ServeHTTP)
	r.MethodNotAllowed(rt.ServeHTTP)
}

// resolvePath prefers the route template when it names a known route, so
// stage-prefixed paths still match.
func (rt *Router) resolvePath(req *invocation.Request) string {
	for _, candidate := range []string{req.Resource, req.Path} {
		if _, ok := rt.routes[trimPath(candidate)]; ok {
			return trimPath(candidate)
		}
	}
	if req.Path != "" {
		return trimPath(req.Path)
	}
	return trimPath(req.Resource)
}

func trimPath(p string) string {
	if len(p) > 1 {
		return strings.TrimRight(p, "/")
	}
	return p
}

func (rt *Router) fail(req *invocation.Request, err error) envelope.Envelope {
	bErr := apierror.FromError(err)
	if bErr.HTTPStatus() >= http.StatusInternalServerError {
		rt.logger.Error("invocation failed", "method", req.Method, "path", req.Path, "request_id", req.RequestID, "kind", bErr.Kind, "err", bErr.Message)
	} else {
		rt.logger.Debug("invocation rejected", "method", req.Method, "path", req.Path, "kind", bErr.Kind, "err", bErr.Message)
	}
	return envelope.Build(bErr.HTTPStatus(), bErr.ToResponse())
}
