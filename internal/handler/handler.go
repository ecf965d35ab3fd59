package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/honeynil/bank-ledger/internal/models"
	service "github.com/honeynil/bank-ledger/internal/services"
	"github.com/honeynil/bank-ledger/internal/validation"
	pkgerrors "github.com/honeynil/bank-ledger/pkg/errors"
	"github.com/shopspring/decimal"
)

type Ledger interface {
	AddUsers(ctx context.Context, users ...validation.UserInput) (int, error)
	AddBanks(ctx context.Context, banks ...validation.BankInput) (int, error)
	AddAccounts(ctx context.Context, accounts ...validation.AccountInput) (int, error)
	Transfer(ctx context.Context, req service.TransferRequest) (*models.Transaction, error)
	GetAccount(ctx context.Context, id int64) (*models.Account, error)
}

type Analytics interface {
	AssignRandomDiscounts(ctx context.Context) (map[int64]int, error)
	UsersWithDebts(ctx context.Context) ([]string, error)
	RichestBank(ctx context.Context) (string, error)
	BankWithOldestClient(ctx context.Context) (string, error)
	BankWithMostUniqueSenders(ctx context.Context) (string, error)
	DeleteIncomplete(ctx context.Context) (models.CleanupResult, error)
	UserTransactions(ctx context.Context, userID int64, days int) ([]models.Transaction, error)
}

type Handler struct {
	ledger    Ledger
	analytics Analytics
}

func NewHandler(ledger Ledger, analytics Analytics) *Handler {
	return &Handler{ledger: ledger, analytics: analytics}
}

func (h *Handler) RegisterPublicRoutes(r *mux.Router) {
	r.HandleFunc("/accounts/{id:[0-9]+}", h.GetAccount).Methods(http.MethodGet)
	r.HandleFunc("/users/{id:[0-9]+}/transactions", h.UserTransactions).Methods(http.MethodGet)
	r.HandleFunc("/analytics/discounts", h.Discounts).Methods(http.MethodGet)
	r.HandleFunc("/analytics/debtors", h.Debtors).Methods(http.MethodGet)
	r.HandleFunc("/analytics/richest-bank", h.bankLookup(Analytics.RichestBank)).Methods(http.MethodGet)
	r.HandleFunc("/analytics/oldest-client-bank", h.bankLookup(Analytics.BankWithOldestClient)).Methods(http.MethodGet)
	r.HandleFunc("/analytics/top-sender-bank", h.bankLookup(Analytics.BankWithMostUniqueSenders)).Methods(http.MethodGet)
}

func (h *Handler) RegisterProtectedRoutes(r *mux.Router) {
	r.HandleFunc("/users", h.AddUsers).Methods(http.MethodPost)
	r.HandleFunc("/banks", h.AddBanks).Methods(http.MethodPost)
	r.HandleFunc("/accounts", h.AddAccounts).Methods(http.MethodPost)
	r.HandleFunc("/transfers", h.Transfer).Methods(http.MethodPost)
	r.HandleFunc("/analytics/incomplete", h.DeleteIncomplete).Methods(http.MethodDelete)
}

type createdResponse struct {
	Created int `json:"created"`
}

func (h *Handler) AddUsers(w http.ResponseWriter, r *http.Request) {
	var req []validation.UserInput
	if !decode(w, r, &req) {
		return
	}
	n, err := h.ledger.AddUsers(r.Context(), req...)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{Created: n})
}

func (h *Handler) AddBanks(w http.ResponseWriter, r *http.Request) {
	var req []validation.BankInput
	if !decode(w, r, &req) {
		return
	}
	n, err := h.ledger.AddBanks(r.Context(), req...)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{Created: n})
}

func (h *Handler) AddAccounts(w http.ResponseWriter, r *http.Request) {
	var req []validation.AccountInput
	if !decode(w, r, &req) {
		return
	}
	n, err := h.ledger.AddAccounts(r.Context(), req...)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{Created: n})
}

type transferRequest struct {
	SenderID   int64           `json:"account_sender_id"`
	ReceiverID int64           `json:"account_receiver_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	DateTime   string          `json:"datetime"`
}

func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !decode(w, r, &req) {
		return
	}
	at, err := validation.ParseDateTime(req.DateTime, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	tx, err := h.ledger.Transfer(r.Context(), service.TransferRequest{
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Amount:     req.Amount,
		Currency:   req.Currency,
		DateTime:   at,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	acc, err := h.ledger.GetAccount(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

func (h *Handler) UserTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, fmt.Errorf("%w: days must be a positive integer", pkgerrors.ErrInvalidInput))
			return
		}
		days = n
	}

	txs, err := h.analytics.UserTransactions(r.Context(), id, days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (h *Handler) Discounts(w http.ResponseWriter, r *http.Request) {
	discounts, err := h.analytics.AssignRandomDiscounts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, discounts)
}

func (h *Handler) Debtors(w http.ResponseWriter, r *http.Request) {
	names, err := h.analytics.UsersWithDebts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (h *Handler) DeleteIncomplete(w http.ResponseWriter, r *http.Request) {
	res, err := h.analytics.DeleteIncomplete(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) bankLookup(lookup func(Analytics, context.Context) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := lookup(h.analytics, r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"bank": name})
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, fmt.Errorf("%w: malformed request body: %v", pkgerrors.ErrInvalidInput, err))
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, fmt.Errorf("%w: id must be a positive integer", pkgerrors.ErrInvalidInput))
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.OK(data))
}

func writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		msg = "internal server error"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.Failed(msg))
}

// StatusFor maps ledger errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, pkgerrors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, pkgerrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, pkgerrors.ErrUserNotFound),
		errors.Is(err, pkgerrors.ErrBankNotFound),
		errors.Is(err, pkgerrors.ErrAccountNotFound),
		errors.Is(err, pkgerrors.ErrTransactionNotFound),
		errors.Is(err, pkgerrors.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, pkgerrors.ErrUserAlreadyExists),
		errors.Is(err, pkgerrors.ErrBankAlreadyExists),
		errors.Is(err, pkgerrors.ErrAccountAlreadyExists),
		errors.Is(err, pkgerrors.ErrBalanceConflict):
		return http.StatusConflict
	case errors.Is(err, pkgerrors.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pkgerrors.ErrRateUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
