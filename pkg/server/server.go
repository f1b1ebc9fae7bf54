package server

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kushal2060/charity-ledger-go/pkg/config"
	"github.com/kushal2060/charity-ledger-go/pkg/persistence"
)

// Server handles HTTP requests for the charity ledger: charity and donation
// management, merkle proof generation, and proof verification.
//
// Tree operations are stateless. Every proof or verification request
// rebuilds the charity's tree from the store's confirmed donation set, so
// concurrent requests never share a tree instance and no locking is needed
// around tree state. Consistency of the underlying donation set is the
// store's concern.
type Server struct {
	config     *config.ServerConfig
	store      persistence.IDonationStore
	logger     *zap.Logger
	httpServer *http.Server
}

// NewServer creates a new server instance.
func NewServer(cfg *config.ServerConfig, store persistence.IDonationStore, logger *zap.Logger) *Server {
	s := &Server{
		config: cfg,
		store:  store,
		logger: logger,
	}

	mux := http.NewServeMux()

	// Charity endpoints
	mux.HandleFunc("POST /charities", s.handleCreateCharity)
	mux.HandleFunc("GET /charities", s.handleListCharities)
	mux.HandleFunc("GET /charities/{id}", s.handleGetCharity)
	mux.HandleFunc("PUT /charities/{id}/status", s.handleUpdateCharityStatus)
	mux.HandleFunc("PUT /charities/{id}/onchain", s.handleUpdateOnChainID)
	mux.HandleFunc("GET /charities/{id}/merkle-info", s.handleCharityMerkleInfo)

	// Donation endpoints
	mux.HandleFunc("POST /donations", s.handleRecordDonation)
	mux.HandleFunc("GET /donations", s.handleListDonations)
	mux.HandleFunc("GET /donations/{id}", s.handleGetDonation)
	mux.HandleFunc("GET /donations/{id}/proof", s.handleDonationProof)
	mux.HandleFunc("POST /donations/verify", s.handleVerifyProof)

	// Health endpoint
	mux.HandleFunc("GET /health", s.handleHealth)

	var handler http.Handler = mux
	if cfg.RateLimit > 0 {
		limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
		handler = rateLimitMiddleware(limiter, handler)
	}

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	go func() {
		s.logger.Sugar().Infow("Starting HTTP server", "port", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Sugar().Errorw("HTTP server error", "error", err)
		}
	}()
	return nil
}

// Stop stops the HTTP server.
func (s *Server) Stop() error {
	return s.httpServer.Close()
}

// GetHandler returns the HTTP handler (for testing).
func (s *Server) GetHandler() http.Handler {
	return s.httpServer.Handler
}
