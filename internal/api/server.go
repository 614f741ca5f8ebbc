package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/runesbridge/staking-pipeline/internal/ledger"
	"github.com/runesbridge/staking-pipeline/internal/models"
)

// Amounts are served as JSON numbers, as clients of the service expect.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// LedgerService is the part of the ledger the HTTP surface reads and writes.
type LedgerService interface {
	ListWallets(ctx context.Context) ([]models.Wallet, error)
	WalletCategory(ctx context.Context, walletAddress string) (ledger.WalletView, error)
	AddStaking(ctx context.Context, walletAddress string, submission models.ManualStaking) (models.Wallet, error)
	ListStakingEntries(ctx context.Context) ([]models.StakingEntry, error)
	CategoryTotals(ctx context.Context) ([]models.CategoryTotal, error)
}

// BatchRunner runs one ingest, merge and export pass.
type BatchRunner interface {
	Run(ctx context.Context) (*ledger.RunResult, error)
}

// Server represents the API server with necessary dependencies.
type Server struct {
	Ledger LedgerService
	Batch  BatchRunner
	logger *zap.Logger
}

// NewServer initializes a new API server instance.
func NewServer(svc LedgerService, batch BatchRunner, logger *zap.Logger) *Server {
	return &Server{
		Ledger: svc,
		Batch:  batch,
		logger: logger,
	}
}

// NewRouter returns the router with every route of the service, wrapped in CORS.
func (s *Server) NewRouter() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/get-wallets", s.HandleProcessWallets).Methods(http.MethodGet)

	r.HandleFunc("/api/wallets", s.HandleListWallets).Methods(http.MethodGet)
	r.HandleFunc("/api/wallet-category/{walletAddress}", s.HandleWalletCategory).Methods(http.MethodGet)
	r.HandleFunc("/api/wallet-staking/{walletAddress}", s.HandleAddStaking).Methods(http.MethodPost)
	r.HandleFunc("/api/staking-data", s.HandleStakingData).Methods(http.MethodGet)
	r.HandleFunc("/api/category-totals", s.HandleCategoryTotals).Methods(http.MethodGet)

	r.Use(mux.CORSMethodMiddleware(r))
	return WithCORS(r)
}

// WithCORS allows any origin.
func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Fast-path the preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// HandleProcessWallets runs the batch job over the configured ingest file.
func (s *Server) HandleProcessWallets(w http.ResponseWriter, r *http.Request) {
	// A client going away must not leave the batch half merged.
	result, err := s.Batch.Run(context.WithoutCancel(r.Context()))
	if err != nil {
		s.logger.Error("error processing wallets", zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to process wallets"})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"message":       "Wallets processed and saved successfully",
		"excelFilePath": result.ExportPath,
	})
}

func (s *Server) HandleListWallets(w http.ResponseWriter, r *http.Request) {
	wallets, err := s.Ledger.ListWallets(r.Context())
	if err != nil {
		s.logger.Error("error fetching wallets", zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch wallets"})
		return
	}
	s.writeJSON(w, http.StatusOK, wallets)
}

func (s *Server) HandleWalletCategory(w http.ResponseWriter, r *http.Request) {
	walletAddress := mux.Vars(r)["walletAddress"]

	view, err := s.Ledger.WalletCategory(r.Context(), walletAddress)
	if errors.Is(err, ledger.ErrWalletNotFound) {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "Wallet not found"})
		return
	}
	if err != nil {
		s.logger.Error("error fetching wallet category", zap.String("wallet", walletAddress), zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch wallet category"})
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) HandleAddStaking(w http.ResponseWriter, r *http.Request) {
	walletAddress := mux.Vars(r)["walletAddress"]

	var submission models.ManualStaking
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
		return
	}

	wallet, err := s.Ledger.AddStaking(r.Context(), walletAddress, submission)
	if errors.Is(err, ledger.ErrWalletNotFound) {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "Wallet not found"})
		return
	}
	if err != nil {
		s.logger.Error("error adding staking details", zap.String("wallet", walletAddress), zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to add staking details"})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Staking details added successfully",
		"wallet":  wallet,
	})
}

func (s *Server) HandleStakingData(w http.ResponseWriter, r *http.Request) {
	entries, err := s.Ledger.ListStakingEntries(r.Context())
	if err != nil {
		s.logger.Error("error fetching staking data", zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch staking data"})
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) HandleCategoryTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := s.Ledger.CategoryTotals(r.Context())
	if err != nil {
		s.logger.Error("error fetching category totals", zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch category totals"})
		return
	}
	s.writeJSON(w, http.StatusOK, totals)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("error encoding response", zap.Error(err))
	}
}
