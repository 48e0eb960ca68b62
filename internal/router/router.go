package router

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"

	apperrors "github.com/mowind/txinsight-go/internal/errors"
	"github.com/mowind/txinsight-go/internal/jsonrpc"
)

// Handler serves one JSON-RPC method.
//
// A non-nil error is converted by the router: signature lookup failures
// become -32010 and call data decode failures become -32011.
type Handler interface {
	Handle(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error)
	Method() string
}

const (
	// DefaultMaxRequestSize is the body limit used by NewRouter.
	DefaultMaxRequestSize = 10 * 1024 * 1024

	// MaxBatchSize caps the number of requests in one batch body.
	MaxBatchSize = 100

	// DefaultBatchWorkerCount bounds the goroutines serving one batch.
	DefaultBatchWorkerCount = 50
)

// Router dispatches txinsight JSON-RPC calls by method name.
//
// It is safe for concurrent use. Batches are served by a bounded worker
// pool so a slow signature lookup does not hold up the other calls.
type Router struct {
	mu             sync.RWMutex
	handlers       map[string]Handler
	logger         *logrus.Logger
	maxRequestSize int64
}

// NewRouter returns a router that accepts bodies up to DefaultMaxRequestSize.
func NewRouter(logger *logrus.Logger) *Router {
	return NewRouterWithMaxSize(logger, DefaultMaxRequestSize)
}

// NewRouterWithMaxSize returns a router that rejects bodies larger than
// maxRequestSize bytes with HTTP 413.
func NewRouterWithMaxSize(logger *logrus.Logger, maxRequestSize int64) *Router {
	return &Router{
		handlers:       make(map[string]Handler),
		logger:         logger,
		maxRequestSize: maxRequestSize,
	}
}

// Register adds handler under handler.Method(). Empty and duplicate
// method names are rejected.
func (r *Router) Register(handler Handler) error {
	method := handler.Method()
	if method == "" {
		return fmt.Errorf("handler method name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[method]; exists {
		return fmt.Errorf("handler for method %s already registered", method)
	}
	r.handlers[method] = handler

	r.logger.WithField("method", method).Info("Registered JSON-RPC handler")
	return nil
}

// Unregister removes the handler for method, if any.
func (r *Router) Unregister(method string) {
	r.mu.Lock()
	delete(r.handlers, method)
	r.mu.Unlock()

	r.logger.WithField("method", method).Info("Unregistered JSON-RPC handler")
}

func (r *Router) getHandler(method string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, found := r.handlers[method]
	return handler, found
}

// GetRegisteredMethods lists the registered method names in no particular order.
func (r *Router) GetRegisteredMethods() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	methods := make([]string, 0, len(r.handlers))
	for method := range r.handlers {
		methods = append(methods, method)
	}
	return methods
}

// HasHandler reports whether method is registered.
func (r *Router) HasHandler(method string) bool {
	_, found := r.getHandler(method)
	return found
}

// Route serves a single call, logging with fields taken from ctx.
func (r *Router) Route(ctx context.Context, request *jsonrpc.Request) *jsonrpc.Response {
	if request == nil {
		r.logger.Warn("Received nil JSON-RPC request")
		return jsonrpc.NewErrorResponse(nil, jsonrpc.InvalidRequestError)
	}
	return r.routeRequest(ctx, request, apperrors.WithContext(r.logger, ctx))
}

// RouteWithContext serves a single call, logging through logger.
func (r *Router) RouteWithContext(ctx context.Context, request *jsonrpc.Request, logger *logrus.Entry) *jsonrpc.Response {
	return r.routeRequest(ctx, request, logger)
}

func (r *Router) routeRequest(ctx context.Context, request *jsonrpc.Request, logger *logrus.Entry) *jsonrpc.Response {
	if request == nil {
		return jsonrpc.NewErrorResponse(nil, jsonrpc.InvalidRequestError)
	}

	logger = logger.WithFields(logrus.Fields{
		"method": request.Method,
		"id":     request.ID,
	})

	handler, found := r.getHandler(request.Method)
	if !found {
		logger.Warn("Method not found")
		return jsonrpc.NewErrorResponse(request.ID, jsonrpc.MethodNotFoundError)
	}

	response, err := handler.Handle(apperrors.NewContextWithOperation(ctx, request.Method), request)
	switch {
	case err != nil:
		if jsonErr, ok := err.(*jsonrpc.Error); ok {
			logger.WithError(err).Warn("Handler returned JSON-RPC error")
			return jsonrpc.NewErrorResponse(request.ID, jsonErr)
		}
		apperrors.LogError(logger, err, "Handler execution failed")
		return jsonrpc.NewErrorResponse(request.ID, apperrors.ConvertToJSONRPC(err))

	case response == nil:
		logger.Error("Handler returned nil response")
		return jsonrpc.NewErrorResponse(request.ID, jsonrpc.InternalError)
	}

	response.ID = request.ID
	response.JSONRPC = jsonrpc.JSONRPCVersion
	return response
}

func batchTooLargeError() *jsonrpc.Error {
	return jsonrpc.NewError(jsonrpc.CodeInvalidParams,
		fmt.Sprintf("Batch size exceeds maximum limit of %d", MaxBatchSize))
}

// RouteBatch serves every call in requests and returns the responses in
// request order. An empty batch yields a single invalid request error and
// a batch over MaxBatchSize a single invalid params error.
func (r *Router) RouteBatch(ctx context.Context, requests []jsonrpc.Request) []*jsonrpc.Response {
	if len(requests) == 0 {
		return []*jsonrpc.Response{jsonrpc.NewErrorResponse(nil, jsonrpc.InvalidRequestError)}
	}
	if len(requests) > MaxBatchSize {
		r.logger.WithField("count", len(requests)).Warn("Batch size exceeds limit")
		return []*jsonrpc.Response{jsonrpc.NewErrorResponse(nil, batchTooLargeError())}
	}

	logger := apperrors.WithContext(r.logger, ctx)
	logger.WithField("count", len(requests)).Info("Routing batch requests")

	responses := make([]*jsonrpc.Response, len(requests))
	tasks := make(chan int, len(requests))
	for i := range requests {
		tasks <- i
	}
	close(tasks)

	workers := DefaultBatchWorkerCount
	if len(requests) < workers {
		workers = len(requests)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			entry := logger.WithField("worker_id", worker)
			for idx := range tasks {
				responses[idx] = r.routeBatchItem(ctx, &requests[idx], entry)
			}
		}(w)
	}
	wg.Wait()

	logger.WithField("count", len(responses)).Info("Batch routing completed")
	return responses
}

// routeBatchItem 单个批量请求，panic 和取消都转为内部错误
func (r *Router) routeBatchItem(ctx context.Context, request *jsonrpc.Request, logger *logrus.Entry) (resp *jsonrpc.Response) {
	if err := ctx.Err(); err != nil {
		return jsonrpc.NewErrorResponse(request.ID, jsonrpc.NewError(jsonrpc.CodeInternalError, err.Error()))
	}

	failed := jsonrpc.NewErrorResponse(request.ID, jsonrpc.NewError(jsonrpc.CodeInternalError, "Processing failed"))
	defer func() {
		if p := recover(); p != nil {
			logger.WithField("panic", p).Error("Worker panic recovered")
			resp = failed
		}
	}()

	if resp = r.routeRequest(ctx, request, logger); resp == nil {
		logger.WithField("id", request.ID).Warn("Route returned nil response")
		return failed
	}
	return resp
}

// HandleHTTPRequest reads a JSON-RPC body from req and writes the reply,
// logging with fields taken from the request context.
func (r *Router) HandleHTTPRequest(w http.ResponseWriter, req *http.Request) {
	r.HandleHTTPRequestWithContext(w, req, apperrors.WithContext(r.logger, req.Context()))
}

// HandleHTTPRequestWithContext is HandleHTTPRequest with a caller supplied
// log entry.
//
// A body over the size limit gets HTTP 413. A JSON array always gets an
// array reply, even for a batch of one. Every other reply is HTTP 200.
func (r *Router) HandleHTTPRequestWithContext(w http.ResponseWriter, req *http.Request, logger *logrus.Entry) {
	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, r.maxRequestSize))
	if err != nil {
		logger.WithError(err).WithField("max_size_bytes", r.maxRequestSize).Error("Request body too large")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		if _, err := w.Write([]byte(`{"jsonrpc":"2.0","error":{"code":-32602,"message":"Request entity too large"},"id":null}`)); err != nil {
			logger.WithError(err).Error("Failed to write error response")
		}
		return
	}

	requests, err := jsonrpc.ParseRequest(body)
	if err != nil {
		logger.WithError(err).Warn("Failed to parse JSON-RPC request")
		r.writeResponse(w, logger, jsonrpc.NewErrorResponse(nil, jsonrpc.ParseError))
		return
	}
	if len(requests) > MaxBatchSize {
		logger.WithField("count", len(requests)).Warn("Batch size exceeds limit")
		r.writeResponse(w, logger, jsonrpc.NewErrorResponse(nil, batchTooLargeError()))
		return
	}

	if !jsonrpc.IsBatch(body) {
		r.writeResponse(w, logger, r.RouteWithContext(req.Context(), &requests[0], logger))
		return
	}

	data, err := jsonrpc.MarshalBatchResponses(r.RouteBatch(req.Context(), requests))
	if err != nil {
		logger.WithError(err).Error("Failed to marshal JSON-RPC responses")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	r.writeJSON(w, logger, data)
}

func (r *Router) writeResponse(w http.ResponseWriter, logger *logrus.Entry, resp *jsonrpc.Response) {
	data, err := jsonrpc.MarshalResponse(resp)
	if err != nil {
		logger.WithError(err).Error("Failed to marshal JSON-RPC response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	r.writeJSON(w, logger, data)
}

func (r *Router) writeJSON(w http.ResponseWriter, logger *logrus.Entry, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.WithError(err).Error("Failed to write response")
	}
}
