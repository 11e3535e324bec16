package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"pos-terminal/internal/app"
	"pos-terminal/internal/core"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// Handler holds the TerminalService behind the route handlers.
type Handler struct {
	svc app.TerminalService
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.TerminalService, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(1 << 20)) // 1 MB

	r.Get("/api/health", h.health)
	r.Get("/api/products", h.listProducts)

	r.Post("/api/sessions", h.openSession)
	r.Route("/api/sessions/{id}", func(r chi.Router) {
		r.Delete("/", h.closeSession)

		r.Get("/cart", h.cartSummary)
		r.Delete("/cart", h.clearCart)
		r.Post("/cart/items", h.addItem)
		r.Delete("/cart/items/{productID}", h.removeItem)
		r.Post("/cart/items/{productID}/quantity", h.adjustQuantity)
		r.Post("/cart/items/{productID}/price", h.setPrice)
		r.Delete("/cart/items/{productID}/price", h.resetPrice)

		r.Post("/scan", h.scan)

		r.Post("/payment", h.setPayment)
		r.Get("/customers", h.searchCustomers)
		r.Post("/customers/select", h.selectCustomer)

		r.Post("/checkout", h.initiateCheckout)
		r.Post("/checkout/confirm", h.confirmSale)
		r.Post("/checkout/cancel", h.cancelCheckout)
		r.Post("/checkout/new", h.newSale)

		r.Get("/receipt", h.receiptStatus)
		r.Post("/receipt/print", h.printReceipt)
		r.Post("/receipt/dialog-closed", h.dialogClosed)
	})

	return r
}

// health reports service liveness.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// sessionID extracts the {id} URL parameter.
func sessionID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// productID extracts the {productID} URL parameter as an int.
func productID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, r, "invalid product id", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

// openSession handles POST /api/sessions.
// Body: { viewport_width }
func (h *Handler) openSession(w http.ResponseWriter, r *http.Request) {
	var body app.OpenSessionRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.OpenSession(r.Context(), body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result)
}

// closeSession handles DELETE /api/sessions/{id}.
func (h *Handler) closeSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.CloseSession(r.Context(), sessionID(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listProducts handles GET /api/products.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.ListProducts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	type response struct {
		Products []core.Product `json:"products"`
	}
	writeJSON(w, response{Products: products})
}

// cartSummary handles GET /api/sessions/{id}/cart.
func (h *Handler) cartSummary(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.CartSummary(r.Context(), sessionID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// addItem handles POST /api/sessions/{id}/cart/items.
// Body: { product_id }
func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID int `json:"product_id"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.AddItem(r.Context(), sessionID(r), body.ProductID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// removeItem handles DELETE /api/sessions/{id}/cart/items/{productID}.
func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.RemoveItem(r.Context(), sessionID(r), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// adjustQuantity handles POST /api/sessions/{id}/cart/items/{productID}/quantity.
// Body: { delta }
func (h *Handler) adjustQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	var body struct {
		Delta int `json:"delta"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Delta == 0 {
		writeError(w, r, "delta must be non-zero", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.AdjustQuantity(r.Context(), sessionID(r), id, body.Delta)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// setPrice handles POST /api/sessions/{id}/cart/items/{productID}/price.
// Body: { price }
func (h *Handler) setPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	var body struct {
		Price string `json:"price"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	price, err := decimal.NewFromString(body.Price)
	if err != nil {
		writeError(w, r, "invalid price", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.SetPrice(r.Context(), sessionID(r), app.SetPriceRequest{ProductID: id, Price: price})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// resetPrice handles DELETE /api/sessions/{id}/cart/items/{productID}/price.
func (h *Handler) resetPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.ResetPrice(r.Context(), sessionID(r), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// clearCart handles DELETE /api/sessions/{id}/cart.
func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ClearCart(r.Context(), sessionID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// scan handles POST /api/sessions/{id}/scan.
// Body: { code }
func (h *Handler) scan(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Code == "" {
		writeError(w, r, "code is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.Scan(r.Context(), sessionID(r), body.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// setPayment handles POST /api/sessions/{id}/payment.
// Body: { method, due_date? }
func (h *Handler) setPayment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Method  string `json:"method"`
		DueDate string `json:"due_date"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	method := core.PaymentMethod(body.Method)
	if !core.ValidPaymentMethod(method) {
		writeError(w, r, "unknown payment method", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	req := app.SetPaymentRequest{Method: method}
	if body.DueDate != "" {
		due, err := time.Parse("2006-01-02", body.DueDate)
		if err != nil {
			writeError(w, r, "due_date must be YYYY-MM-DD", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		req.DueDate = &due
	}
	if err := h.svc.SetPayment(r.Context(), sessionID(r), req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// searchCustomers handles GET /api/sessions/{id}/customers?q=.
// Each call registers a keystroke in the debounced search and reports the
// candidates known so far; callers poll to pick up late results.
func (h *Handler) searchCustomers(w http.ResponseWriter, r *http.Request) {
	var (
		result *app.CustomerSearchResult
		err    error
	)
	if q, ok := r.URL.Query()["q"]; ok {
		query := ""
		if len(q) > 0 {
			query = q[0]
		}
		result, err = h.svc.SearchCustomers(r.Context(), sessionID(r), query)
	} else {
		result, err = h.svc.CustomerCandidates(r.Context(), sessionID(r))
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// selectCustomer handles POST /api/sessions/{id}/customers/select.
// Body: { customer_id }
func (h *Handler) selectCustomer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CustomerID int `json:"customer_id"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := h.svc.SelectCustomer(r.Context(), sessionID(r), body.CustomerID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// initiateCheckout handles POST /api/sessions/{id}/checkout.
func (h *Handler) initiateCheckout(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.InitiateCheckout(r.Context(), sessionID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// confirmSale handles POST /api/sessions/{id}/checkout/confirm.
func (h *Handler) confirmSale(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ConfirmSale(r.Context(), sessionID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// cancelCheckout handles POST /api/sessions/{id}/checkout/cancel.
func (h *Handler) cancelCheckout(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.CancelCheckout(r.Context(), sessionID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// newSale handles POST /api/sessions/{id}/checkout/new.
func (h *Handler) newSale(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.NewSale(r.Context(), sessionID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// receiptStatus handles GET /api/sessions/{id}/receipt.
func (h *Handler) receiptStatus(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ReceiptStatus(r.Context(), sessionID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// printReceipt handles POST /api/sessions/{id}/receipt/print.
func (h *Handler) printReceipt(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.PrintReceipt(r.Context(), sessionID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// dialogClosed handles POST /api/sessions/{id}/receipt/dialog-closed.
func (h *Handler) dialogClosed(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.DialogClosed(r.Context(), sessionID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
