package fakebank

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Routes served by the bank.
const (
	PathAuth         = "/cards/auth"
	PathWithdraw     = "/transactions/withdraw"
	PathBalance      = "/transactions/balance"
	PathTransactions = "/transactions/get_transactions"
	PathTopUp        = "/transactions/top_up"
)

type cardRequest struct {
	CardNumber string           `json:"card_number"`
	PinCode    string           `json:"pin_code"`
	Amount     *decimal.Decimal `json:"amount"`
}

type accountRequest struct {
	AccountID *int             `json:"account_id"`
	Amount    *decimal.Decimal `json:"amount"`
}

type transactionReply struct {
	TransactionID   int         `json:"transaction_id"`
	Summa           json.Number `json:"summa"`
	TransactionTime string      `json:"transaction_time"`
	AccountID       int         `json:"account_id"`
}

// Handler returns the HTTP handler serving every route.
func (b *Bank) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(b.traceRequests)
	r.Use(middleware.Recoverer)
	r.Use(b.countCalls)

	r.Post(PathAuth, b.overridable(PathAuth, b.handleAuth))
	r.Route("/transactions", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(b.requireToken)
			r.Post("/withdraw", b.overridable(PathWithdraw, b.handleWithdraw))
			r.Post("/balance", b.overridable(PathBalance, b.handleBalance))
		})
		r.Post("/get_transactions", b.overridable(PathTransactions, b.handleTransactions))
		r.Post("/top_up", b.overridable(PathTopUp, b.handleTopUp))
	})
	return r
}

// traceRequests logs each request under the ID the client sent, so bank and
// terminal logs line up.
func (b *Bank) traceRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.logger.Debug("request started",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (b *Bank) countCalls(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls[r.URL.Path]++
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Bank) overridable(path string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		override := b.overrides[path]
		b.mu.Unlock()
		if override != nil {
			override(w, r)
			return
		}
		h(w, r)
	}
}

// checkPIN verifies pin against c and applies the failed-attempt policy.
// It returns the status and message to send on failure, or 0 on success.
// Caller holds b.mu.
func (b *Bank) checkPIN(c *card, pin string) (int, string) {
	if c.blocked {
		return http.StatusForbidden, MsgCardBlocked
	}
	if err := bcrypt.CompareHashAndPassword(c.pinHash, []byte(pin)); err != nil {
		c.failed++
		if c.failed >= MaxFailedAttempts {
			c.blocked = true
			b.logger.Info("card blocked after failed attempts", "failed_attempts", c.failed)
			return http.StatusForbidden, MsgCardBlocked
		}
		return http.StatusForbidden, MsgWrongPIN
	}
	c.failed = 0
	return 0, ""
}

func (b *Bank) handleAuth(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CardNumber == "" || req.PinCode == "" {
		respondError(w, http.StatusBadRequest, "card_number and pin_code are required")
		return
	}

	b.mu.Lock()
	c, ok := b.cards[req.CardNumber]
	if !ok {
		b.mu.Unlock()
		respondError(w, http.StatusNotFound, MsgCardNotFound)
		return
	}
	if status, msg := b.checkPIN(c, req.PinCode); status != 0 {
		b.mu.Unlock()
		respondError(w, status, msg)
		return
	}
	acct, ok := b.accounts[c.accountID]
	cardType := c.cardType
	b.mu.Unlock()
	if !ok {
		respondError(w, http.StatusNotFound, "Account not found")
		return
	}

	token, err := b.issueToken(acct.id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Sisäinen palvelinvirhe")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(tokenLifetime.Seconds()),
	})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"customer": map[string]string{
			"first_name": acct.firstName,
			"last_name":  acct.lastName,
		},
		"account_id": acct.id,
		"card_type":  cardType,
	})
}

func (b *Bank) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.CardNumber == "" || req.PinCode == "" || req.Amount == nil {
		respondError(w, http.StatusBadRequest, "card_number, pin_code, and amount are required")
		return
	}
	if !req.Amount.IsPositive() {
		respondError(w, http.StatusBadRequest, "Amount must be a positive number")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.cards[req.CardNumber]
	if !ok {
		respondError(w, http.StatusNotFound, "Kortti ei ole olemassa")
		return
	}
	if status, msg := b.checkPIN(c, req.PinCode); status != 0 {
		respondError(w, status, msg)
		return
	}
	acct, ok := b.accounts[c.accountID]
	if !ok {
		respondError(w, http.StatusNotFound, "Account not found")
		return
	}
	if acct.balance.LessThan(*req.Amount) {
		respondError(w, http.StatusBadRequest, MsgInsufficientFunds)
		return
	}

	acct.balance = acct.balance.Sub(*req.Amount)
	b.recordLocked(acct.id, req.Amount.Neg(), b.now())

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": MsgWithdrawalOK,
		"transaction": map[string]json.Number{
			"amount":      number(*req.Amount),
			"new_balance": number(acct.balance),
		},
	})
}

func (b *Bank) handleBalance(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CardNumber == "" || req.PinCode == "" {
		respondError(w, http.StatusBadRequest, "card_number and pin_code are required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.cards[req.CardNumber]
	if !ok {
		respondError(w, http.StatusNotFound, "Card not found")
		return
	}
	if c.blocked {
		respondError(w, http.StatusForbidden, MsgCardBlocked)
		return
	}
	acct, ok := b.accounts[c.accountID]
	if !ok {
		respondError(w, http.StatusNotFound, "Account not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": MsgBalanceOK,
		"balance": number(acct.balance),
	})
}

func (b *Bank) handleTransactions(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccountID == nil {
		respondError(w, http.StatusBadRequest, "account_id is required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Newest first, at most ten, like the real backend.
	out := make([]transactionReply, 0, 10)
	for i := len(b.transactions) - 1; i >= 0 && len(out) < 10; i-- {
		tx := b.transactions[i]
		if tx.AccountID != *req.AccountID {
			continue
		}
		out = append(out, transactionReply{
			TransactionID:   tx.ID,
			Summa:           number(tx.Amount),
			TransactionTime: tx.Time.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			AccountID:       tx.AccountID,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (b *Bank) handleTopUp(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.AccountID == nil || req.Amount == nil || !req.Amount.IsPositive() {
		respondError(w, http.StatusBadRequest, "account_id and a positive amount are required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	acct, ok := b.accounts[*req.AccountID]
	if !ok {
		respondError(w, http.StatusNotFound, "Account not found")
		return
	}
	acct.balance = acct.balance.Add(*req.Amount)
	b.recordLocked(acct.id, *req.Amount, b.now())

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"newBalance": number(acct.balance),
	})
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
