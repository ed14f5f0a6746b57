// Package transport exposes the gateway over HTTP: the signed redirect for
// checkout, the return callbacks and the operator endpoints.
package transport

import (
	"context"
	"net/http"

	"epdq-gateway/internal/auth"
	"epdq-gateway/internal/callback"
	"epdq-gateway/internal/checkout"
	"epdq-gateway/internal/gateway"
	"epdq-gateway/internal/metrics"
	"epdq-gateway/internal/middleware"
	"epdq-gateway/internal/signature"

	"github.com/julienschmidt/httprouter"
)

const (
	routeCheckout    = "/gateways/:gateway_id/checkout"
	routeReturn      = "/gateways/:gateway_id/return/:kind"
	routeLogin       = "/admin/login"
	routeAdminConfig = "/admin/gateways/:gateway_id"
	routeHealth      = "/health"
	routeMetrics     = "/metrics"
)

// CallbackHandler applies a verified gateway return.
type CallbackHandler interface {
	Handle(ctx context.Context, cfg gateway.Configuration, kind callback.Kind, params signature.Params) (*callback.Result, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	gateways  gateway.Service
	checkouts checkout.Service
	callbacks CallbackHandler
	tokens    auth.Service
	metrics   *metrics.Metrics
	db        Pinger
}

func NewServer(
	gateways gateway.Service,
	checkouts checkout.Service,
	callbacks CallbackHandler,
	tokens auth.Service,
	m *metrics.Metrics,
	db Pinger,
) *Server {
	return &Server{
		gateways:  gateways,
		checkouts: checkouts,
		callbacks: callbacks,
		tokens:    tokens,
		metrics:   m,
		db:        db,
	}
}

func (s *Server) Register(router *httprouter.Router) {
	router.POST(routeCheckout, s.instrument(routeCheckout, s.checkout))
	router.GET(routeReturn, s.instrument(routeReturn, s.gatewayReturn))
	router.POST(routeReturn, s.instrument(routeReturn, s.gatewayReturn))

	router.POST(routeLogin, s.instrument(routeLogin, s.login))
	requireOperator := middleware.RequireOperator(s.tokens)
	router.Handler(http.MethodGet, routeAdminConfig, requireOperator(s.adapt(routeAdminConfig, s.getGateway)))
	router.Handler(http.MethodPut, routeAdminConfig, requireOperator(s.adapt(routeAdminConfig, s.putGateway)))

	router.GET(routeHealth, s.health)
	router.Handler(http.MethodGet, routeMetrics, s.metrics.Handler())
}

// Routes returns a router with every endpoint registered.
func (s *Server) Routes() *httprouter.Router {
	router := httprouter.New()
	s.Register(router)
	return router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	status := http.StatusOK
	body := map[string]string{"status": "OK"}
	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "DEGRADED"
			body["database"] = "unreachable"
		}
	}
	writeJSON(w, status, body)
}

// statusRecorder captures the status code for the latency histogram.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(route string, h httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		timer := metrics.StartTimer()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r, ps)
		s.metrics.ObserveRequest(r.Method, route, rec.status, timer.Duration())
	}
}

// adapt turns a Handle into an http.Handler for routes wrapped in plain
// middleware. httprouter stores the params on the request context there.
func (s *Server) adapt(route string, h httprouter.Handle) http.Handler {
	handle := s.instrument(route, h)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handle(w, r, httprouter.ParamsFromContext(r.Context()))
	})
}
