package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"toorak_vpn/internal/model"
	"toorak_vpn/internal/protector"
	"toorak_vpn/internal/service/router"
	"toorak_vpn/internal/utils/log"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type (
	HttpServer struct {
		router *router.Router

		mu     sync.Mutex
		mapper map[string]*websocket.Conn

		srv *http.Server
	}

	statsResponse struct {
		Routes model.RouteStats     `json:"routes"`
		Caches protector.Stats      `json:"caches"`
		Queues map[model.Tier]int64 `json:"queues,omitempty"`
	}

	jurisdictionResponse struct {
		Label    string `json:"label"`
		Accepted bool   `json:"accepted"`
	}

	errorResponse struct {
		Error string `json:"error"`
	}
)

func NewHttpServer(r *router.Router) *HttpServer {
	return &HttpServer{
		router: r,
		mapper: make(map[string]*websocket.Conn),
	}
}

func (s *HttpServer) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/packets", s.HandleProcessPacket()).Methods(http.MethodPost)
	r.HandleFunc("/packets/{id}", s.HandleGetPacket()).Methods(http.MethodGet)
	r.HandleFunc("/packets/{id}/reveal", s.HandleRevealPacket()).Methods(http.MethodPost)
	r.HandleFunc("/reveal", s.HandleRevealCiphertext()).Methods(http.MethodPost)
	r.HandleFunc("/routes/{tier}", s.HandleDrainRoute()).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.HandleStats()).Methods(http.MethodGet)
	r.HandleFunc("/jurisdictions/validate", s.HandleValidateJurisdiction()).Methods(http.MethodGet)
	r.HandleFunc("/stream", s.HandleStream()).Methods(http.MethodGet)
	return r
}

// Run blocks until the server stops. It returns nil after Shutdown.
func (s *HttpServer) Run(addr string) error {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info("http server listening", zap.String("addr", addr))
	if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HttpServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for id, conn := range s.mapper {
		if conn != nil {
			conn.Close()
		}
		delete(s.mapper, id)
	}
	s.mu.Unlock()

	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *HttpServer) HandleProcessPacket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var msg model.Message
		if err := decodeBody(w, r, &msg); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		rec, err := s.router.Process(r.Context(), &msg)
		if err != nil {
			log.Error("process packet failed", zap.String("id", msg.ID), zap.Error(err))
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	}
}

func (s *HttpServer) HandleGetPacket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		rec, err := s.router.Get(r.Context(), id)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func (s *HttpServer) HandleRevealPacket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		payload, err := s.router.Reveal(r.Context(), id)
		if err != nil {
			log.Error("reveal packet failed", zap.String("id", id), zap.Error(err))
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, &model.RevealResponse{MessageID: id, Payload: payload})
	}
}

func (s *HttpServer) HandleRevealCiphertext() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.RevealRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if !req.Tier.Normalize().Valid() {
			writeError(w, http.StatusBadRequest, errors.New("unknown tier"))
			return
		}

		payload, err := s.router.RevealCiphertext(req.Ciphertext, req.Tier)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, &model.RevealResponse{Payload: payload})
	}
}

func (s *HttpServer) HandleDrainRoute() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tier := model.Tier(mux.Vars(r)["tier"])
		if !tier.Valid() {
			writeError(w, http.StatusBadRequest, errors.New("unknown tier"))
			return
		}

		records, err := s.router.DrainRoute(r.Context(), tier)
		if err != nil {
			log.Error("drain route failed", zap.String("tier", string(tier)), zap.Error(err))
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, records)
	}
}

func (s *HttpServer) HandleStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := &statsResponse{
			Routes: s.router.Stats(),
			Caches: s.router.CacheStats(),
		}
		depths, err := s.router.RouteDepths(r.Context())
		switch {
		case err == nil:
			res.Queues = depths
		case !errors.Is(err, router.ErrUnavailable):
			log.Warn("RouteDepths failed", zap.Error(err))
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *HttpServer) HandleValidateJurisdiction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		label := r.URL.Query().Get("label")
		writeJSON(w, http.StatusOK, &jurisdictionResponse{
			Label:    label,
			Accepted: s.router.ValidateJurisdiction(label),
		})
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, router.ErrInvalidMessage):
		return http.StatusBadRequest
	case errors.Is(err, router.ErrOutOfJurisdiction), errors.Is(err, protector.ErrDecryption):
		return http.StatusUnprocessableEntity
	case errors.Is(err, router.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, router.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error("marshal response failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, &errorResponse{Error: err.Error()})
}
