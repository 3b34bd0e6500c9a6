package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler dispatches dashboard JSON-RPC methods.
type Handler interface {
	Handle(ctx context.Context, method string, params json.RawMessage) (any, error)
}

// CodedError is an error that carries its own JSON-RPC code and data.
type CodedError interface {
	error
	RPCCode() int
	RPCData() any
}

// Server wires HTTP handlers.
type Server struct {
	handler Handler
}

// NewServer creates the HTTP router. The health check is always public; /rpc
// and the optional MCP endpoint sit behind authMiddleware when it is set.
func NewServer(handler Handler, authMiddleware func(http.Handler) http.Handler, mcpHandler http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	srv := &Server{handler: handler}
	r.Get("/health", srv.handleHealth)

	r.Group(func(r chi.Router) {
		if authMiddleware != nil {
			r.Use(authMiddleware)
		}
		r.Post("/rpc", srv.handleRPC)
		if mcpHandler != nil {
			r.Handle("/mcp", mcpHandler)
			r.Handle("/mcp/*", mcpHandler)
		}
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(r.Body)
	if err != nil {
		var reqErr *RequestError
		if errors.As(err, &reqErr) {
			WriteError(w, nil, reqErr.Code, reqErr.Message(), reqErr.Reason)
			return
		}
		WriteError(w, nil, RPCInvalidRequest, "invalid request", nil)
		return
	}

	result, err := s.handler.Handle(r.Context(), req.Method, req.Params)
	if err != nil {
		var coded CodedError
		if errors.As(err, &coded) {
			WriteError(w, req.ID, coded.RPCCode(), coded.Error(), coded.RPCData())
			return
		}
		WriteError(w, req.ID, RPCInternalError, err.Error(), nil)
		return
	}

	WriteResult(w, req.ID, result)
}
