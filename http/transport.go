package http

import (
	"encoding/json"
	"errors"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"go-exchange-rate-graph/domain"
	"go-exchange-rate-graph/exchange"
	"io"
	"net/http"
)

// maxBody largest request body accepted by convert
const maxBody = 1 << 16

// Server dependencies for HTTP Server functions
type Server struct {
	Service exchange.Service
	Logger  log.Logger
	router  *http.ServeMux
}

// NewServer returns a Server converting with s. metrics, when not nil, is served on /metrics.
func NewServer(s exchange.Service, logger log.Logger, metrics http.Handler) *Server {
	server := &Server{
		Service: s,
		Logger:  logger,
		router:  http.NewServeMux(),
	}
	server.routes(metrics)
	return server
}

func (s *Server) routes(metrics http.Handler) {
	s.router.Handle("/api/convert", s.convert())
	if metrics != nil {
		s.router.Handle("/metrics", metrics)
	}
}

func (s *Server) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(rw, r)
}

// convert produces HTTP handler for currency conversions
func (s *Server) convert() http.HandlerFunc {

	// request for unmarshalling JSON requests posted by clients
	type request struct {
		FromCurrency string        `json:"fromCurrency"`
		ToCurrency   string        `json:"toCurrency"`
		Amount       domain.Amount `json:"amount"`
	}

	// response for marshalling JSON responses to return to clients
	type response struct {
		ID       string            `json:"id"`
		Amount   int64             `json:"amount"`
		Exact    domain.Amount     `json:"exact"`
		Original domain.Amount     `json:"original"`
		Route    []domain.Currency `json:"route"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		rw.Header().Set("Content-Type", "application/json")

		if r.Method != http.MethodPost {
			rw.Header().Set("Allow", http.MethodPost)
			s.fail(rw, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		bytes, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
		if err != nil {
			s.fail(rw, http.StatusBadRequest, "invalid request")
			return
		}

		var request request
		err = json.Unmarshal(bytes, &request)
		if err != nil {
			s.fail(rw, http.StatusBadRequest, "invalid json")
			return
		}

		from, err := domain.ParseCurrency(request.FromCurrency)
		if err != nil {
			s.fail(rw, http.StatusBadRequest, err.Error())
			return
		}
		to, err := domain.ParseCurrency(request.ToCurrency)
		if err != nil {
			s.fail(rw, http.StatusBadRequest, err.Error())
			return
		}

		result, err := s.Service.Convert(r.Context(), request.Amount, from, to)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, exchange.ErrNotLoaded) {
				status = http.StatusServiceUnavailable
			}
			s.fail(rw, status, err.Error())
			return
		}

		response := response{
			ID:       uuid.NewString(),
			Amount:   result.Amount,
			Exact:    result.Exact,
			Original: request.Amount,
			Route:    result.Route,
		}

		enc := json.NewEncoder(rw)
		err = enc.Encode(&response)
		if err != nil {
			level.Error(s.Logger).Log("msg", "failed json encoding", "id", response.ID, "err", err)
		}
	}
}

// fail writes an error document
func (s *Server) fail(rw http.ResponseWriter, status int, msg string) {
	rw.WriteHeader(status)
	err := json.NewEncoder(rw).Encode(map[string]string{"error": msg})
	if err != nil {
		level.Error(s.Logger).Log("msg", "failed json encoding", "err", err)
	}
}
