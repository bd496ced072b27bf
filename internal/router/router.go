package router

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	apperrors "github.com/mowind/txinsight-go/internal/errors"
	"github.com/mowind/txinsight-go/internal/jsonrpc"
	"github.com/sirupsen/logrus"
)

// Handler defines a JSON-RPC method handler interface.
//
// Implementations of this interface can be registered with the Router
// to handle specific JSON-RPC methods.
type Handler interface {
	// Handle processes a JSON-RPC request.
	Handle(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error)

	// Method returns the JSON-RPC method name this handler supports.
	Method() string
}

// MaxBatchSize defines the maximum number of requests allowed in a batch
const MaxBatchSize = 100

// DefaultBatchWorkerCount defines the number of workers for the locally handled part of a batch
const DefaultBatchWorkerCount = 16

// DefaultMaxRequestSize is the body limit used by NewRouter (10MB).
const DefaultMaxRequestSize int64 = 10 << 20

// Router routes JSON-RPC requests to appropriate handlers.
//
// Registered methods are handled locally. Everything else goes to the
// default handler; when that is a *ForwardHandler the unregistered part of
// a batch is forwarded to the node in a single downstream batch.
type Router struct {
	handlers       map[string]Handler
	defaultHandler Handler // 默认处理器，处理未注册的方法
	mu             sync.RWMutex
	logger         *logrus.Logger
	maxRequestSize int64 // 最大请求体大小（字节）
}

// NewRouter creates a new JSON-RPC router with the default body limit.
func NewRouter(logger *logrus.Logger) *Router {
	return NewRouterWithMaxSize(logger, DefaultMaxRequestSize)
}

// NewRouterWithMaxSize creates a new JSON-RPC router with custom max request size.
//
// Parameters:
//   - logger: The logger to use for request logging
//   - maxRequestSize: Maximum allowed request body size in bytes
//
// Returns:
//   - *Router: A new router instance
func NewRouterWithMaxSize(logger *logrus.Logger, maxRequestSize int64) *Router {
	if maxRequestSize <= 0 {
		maxRequestSize = DefaultMaxRequestSize
	}
	return &Router{
		handlers:       make(map[string]Handler),
		logger:         logger,
		maxRequestSize: maxRequestSize,
	}
}

// SetDefaultHandler sets the handler for unregistered methods.
func (r *Router) SetDefaultHandler(handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.defaultHandler = handler
	r.logger.WithField("handler", handler.Method()).Info("Default handler set")
}

// Register registers a JSON-RPC method handler under handler.Method().
func (r *Router) Register(handler Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	method := handler.Method()
	if method == "" {
		return fmt.Errorf("handler method name cannot be empty")
	}

	if _, exists := r.handlers[method]; exists {
		return fmt.Errorf("handler for method %s already registered", method)
	}

	r.handlers[method] = handler
	r.logger.WithField("method", method).Info("Registered JSON-RPC handler")
	return nil
}

// Unregister removes a handler for the specified method.
func (r *Router) Unregister(method string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.handlers, method)
	r.logger.WithField("method", method).Info("Unregistered JSON-RPC handler")
}

func (r *Router) getHandler(method string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, found := r.handlers[method]
	return handler, found
}

func (r *Router) getDefaultHandler() Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultHandler
}

// GetRegisteredMethods returns a list of all registered method names.
func (r *Router) GetRegisteredMethods() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	methods := make([]string, 0, len(r.handlers))
	for method := range r.handlers {
		methods = append(methods, method)
	}
	return methods
}

// HasHandler checks if a handler is registered for the given method.
func (r *Router) HasHandler(method string) bool {
	_, found := r.getHandler(method)
	return found
}

// Route routes a single JSON-RPC request to the appropriate handler.
func (r *Router) Route(ctx context.Context, request *jsonrpc.Request) *jsonrpc.Response {
	return r.RouteWithContext(ctx, request, r.logger.WithContext(ctx))
}

// RouteWithContext routes a single request using the provided logger entry.
//
// Handler errors become JSON-RPC error responses; a *jsonrpc.Error is
// returned as is, anything else goes through the application error converter.
func (r *Router) RouteWithContext(ctx context.Context, request *jsonrpc.Request, logger *logrus.Entry) *jsonrpc.Response {
	if request == nil {
		return jsonrpc.NewErrorResponse(nil, jsonrpc.InvalidRequestError)
	}

	logger = logger.WithFields(logrus.Fields{
		"method": request.Method,
		"id":     request.ID,
	})
	logger.Debug("Routing request")

	handler, found := r.getHandler(request.Method)
	if !found {
		handler = r.getDefaultHandler()
		if handler == nil {
			logger.Warn("Method not found")
			return jsonrpc.NewErrorResponse(request.ID, jsonrpc.MethodNotFoundError)
		}
	}

	response, err := handler.Handle(ctx, request)
	if err != nil {
		logger.WithError(err).Error("Handler execution failed")
		if jsonErr, ok := err.(*jsonrpc.Error); ok {
			return jsonrpc.NewErrorResponse(request.ID, jsonErr)
		}
		return jsonrpc.NewErrorResponse(request.ID, apperrors.ConvertToJSONRPC(err))
	}

	if response == nil {
		logger.Error("Handler returned nil response")
		return jsonrpc.NewErrorResponse(request.ID, jsonrpc.InternalError)
	}

	response.ID = request.ID
	response.JSONRPC = jsonrpc.JSONRPCVersion
	return response
}

// RouteBatch routes a batch of JSON-RPC requests through a worker pool.
//
// Returns:
//   - []*jsonrpc.Response: Ordered responses matching request order
func (r *Router) RouteBatch(ctx context.Context, requests []jsonrpc.Request) []*jsonrpc.Response {
	if len(requests) == 0 {
		return []*jsonrpc.Response{jsonrpc.NewErrorResponse(nil, jsonrpc.InvalidRequestError)}
	}

	indices := make([]int, len(requests))
	for i := range indices {
		indices[i] = i
	}

	responses := make([]*jsonrpc.Response, len(requests))
	r.routeIndices(ctx, requests, indices, responses, r.logger.WithContext(ctx))
	return responses
}

// routeIndices routes requests[idx] for every idx and stores the result in responses[idx].
func (r *Router) routeIndices(ctx context.Context, requests []jsonrpc.Request, indices []int, responses []*jsonrpc.Response, logger *logrus.Entry) {
	if len(indices) == 0 {
		return
	}

	taskCh := make(chan int, len(indices))
	for _, idx := range indices {
		taskCh <- idx
	}
	close(taskCh)

	workerCount := DefaultBatchWorkerCount
	if len(indices) < workerCount {
		workerCount = len(indices)
	}

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for idx := range taskCh {
				responses[idx] = r.routeSafely(ctx, &requests[idx], logger.WithField("worker_id", workerID))
			}
		}(i)
	}
	wg.Wait()
}

func (r *Router) routeSafely(ctx context.Context, request *jsonrpc.Request, logger *logrus.Entry) (resp *jsonrpc.Response) {
	defer func() {
		if p := recover(); p != nil {
			logger.WithField("panic", p).Error("Handler panic recovered")
			resp = jsonrpc.NewErrorResponse(request.ID, jsonrpc.InternalError)
		}
	}()

	if err := ctx.Err(); err != nil {
		return jsonrpc.NewErrorResponse(request.ID, apperrors.ConvertToJSONRPC(err))
	}
	return r.RouteWithContext(ctx, request, logger)
}

// dispatch handles a parsed request list and returns ordered responses.
func (r *Router) dispatch(ctx context.Context, requests []jsonrpc.Request, logger *logrus.Entry) []*jsonrpc.Response {
	if len(requests) == 1 {
		return []*jsonrpc.Response{r.RouteWithContext(ctx, &requests[0], logger)}
	}

	fwdHandler, ok := r.getDefaultHandler().(*ForwardHandler)
	if !ok {
		responses := make([]*jsonrpc.Response, len(requests))
		indices := make([]int, len(requests))
		for i := range indices {
			indices[i] = i
		}
		r.routeIndices(ctx, requests, indices, responses, logger)
		return responses
	}
	return r.dispatchWithForwarding(ctx, requests, fwdHandler, logger)
}

// dispatchWithForwarding handles registered methods locally and forwards the
// remaining requests to the downstream node in one batch, preserving order.
func (r *Router) dispatchWithForwarding(ctx context.Context, requests []jsonrpc.Request, fwdHandler *ForwardHandler, logger *logrus.Entry) []*jsonrpc.Response {
	responses := make([]*jsonrpc.Response, len(requests))

	localIndices := make([]int, 0, len(requests))
	forwardIndices := make([]int, 0, len(requests))
	forwardRequests := make([]jsonrpc.Request, 0, len(requests))

	for i, request := range requests {
		if r.HasHandler(request.Method) {
			localIndices = append(localIndices, i)
		} else {
			forwardIndices = append(forwardIndices, i)
			forwardRequests = append(forwardRequests, request)
		}
	}

	logger.WithFields(logrus.Fields{
		"local":     len(localIndices),
		"forwarded": len(forwardRequests),
	}).Debug("Splitting batch request")

	var wg sync.WaitGroup
	if len(forwardRequests) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			forwarded := fwdHandler.ForwardBatch(ctx, forwardRequests)
			for i, idx := range forwardIndices {
				responses[idx] = forwarded[i]
			}
		}()
	}

	r.routeIndices(ctx, requests, localIndices, responses, logger)
	wg.Wait()

	return responses
}

// HandleHTTPRequestWithContext reads a JSON-RPC payload from req, routes it
// and writes the responses.
//
// A single request gets a single response object; a batch always gets an
// array, even with one element.
func (r *Router) HandleHTTPRequestWithContext(w http.ResponseWriter, req *http.Request, logger *logrus.Entry) {
	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, r.maxRequestSize))
	if err != nil {
		logger.WithError(err).WithField("max_size_bytes", r.maxRequestSize).Warn("Request body too large")
		writeJSON(w, http.StatusRequestEntityTooLarge, jsonrpc.NewErrorResponse(nil, &jsonrpc.Error{
			Code:    jsonrpc.CodeInvalidRequest,
			Message: "Request entity too large",
		}), logger)
		return
	}

	requests, err := jsonrpc.ParseRequest(body)
	if err != nil {
		logger.WithError(err).Warn("Failed to parse JSON-RPC request")
		writeJSON(w, http.StatusOK, jsonrpc.NewErrorResponse(nil, jsonrpc.ParseError), logger)
		return
	}

	if len(requests) > MaxBatchSize {
		logger.WithField("count", len(requests)).Warn("Batch size exceeds limit")
		writeJSON(w, http.StatusOK, jsonrpc.NewErrorResponse(nil, jsonrpc.Errorf(
			jsonrpc.CodeInvalidRequest, "Batch size exceeds maximum limit of %d", MaxBatchSize)), logger)
		return
	}

	responses := r.dispatch(req.Context(), requests, logger)
	if jsonrpc.IsBatch(body) {
		writeJSON(w, http.StatusOK, responses, logger)
		return
	}
	writeJSON(w, http.StatusOK, responses[0], logger)
}

// HandleHTTPRequest handles HTTP requests using the router's logger.
func (r *Router) HandleHTTPRequest(w http.ResponseWriter, req *http.Request) {
	r.HandleHTTPRequestWithContext(w, req, r.logger.WithContext(req.Context()))
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}, logger *logrus.Entry) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.WithError(err).Error("Failed to marshal JSON-RPC responses")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logger.WithError(err).Error("Failed to write response")
	}
}
