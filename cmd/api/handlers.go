package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"posflow/pkg/changelog"
	"posflow/pkg/customer"
	"posflow/pkg/item"
	"posflow/pkg/order"
	"posflow/pkg/otel"
	"posflow/pkg/pos"
	"posflow/pkg/snapshot"
)

// loginRequest represents login credentials.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginHandler handles user login and session creation.
// @Summary Login
// @Description Authenticates user and sets session cookie
// @Accept json
// @Produce json
// @Param creds body loginRequest true "Credentials"
// @Success 200
// @Router /login [post]
func loginHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "loginHandler")
	defer span.End()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		http.Error(w, "invalid credentials", http.StatusBadRequest)
		return
	}
	sid := uuid.NewString()
	if err := redisClient.Set(ctx, "session:"+sid, req.Username, time.Hour).Err(); err != nil {
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "session_id", Value: sid, Path: "/", Expires: time.Now().Add(time.Hour), HttpOnly: true})
	w.WriteHeader(http.StatusOK)
}

// respondError maps domain failures to HTTP status codes.
func respondError(w http.ResponseWriter, err error) {
	var invQty pos.InvalidQuantityError
	var insStock pos.InsufficientStockError
	var vErrs validator.ValidationErrors
	switch {
	case errors.Is(err, customer.ErrNotFound),
		errors.Is(err, item.ErrNotFound),
		errors.Is(err, order.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, pos.ErrEmptyOrder),
		errors.As(err, &invQty),
		errors.As(err, &vErrs):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &insStock):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// rejectionReason labels placement failures for the rejection counter.
func rejectionReason(err error) string {
	var invQty pos.InvalidQuantityError
	var insStock pos.InsufficientStockError
	switch {
	case errors.Is(err, customer.ErrNotFound):
		return "customer_not_found"
	case errors.Is(err, item.ErrNotFound):
		return "item_not_found"
	case errors.Is(err, pos.ErrEmptyOrder):
		return "empty_order"
	case errors.As(err, &invQty):
		return "invalid_quantity"
	case errors.As(err, &insStock):
		return "insufficient_stock"
	default:
		return "other"
	}
}

// createCustomerHandler registers a new customer.
// @Summary Create customer
// @Accept json
// @Produce json
// @Param customer body customer.Customer true "Customer"
// @Success 201 {object} customer.Customer
// @Security ApiKeyAuth
// @Router /customers [post]
func createCustomerHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "createCustomerHandler")
	defer span.End()

	var c customer.Customer
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := c.Validate(); err != nil {
		respondError(w, err)
		return
	}
	created, err := customers.Add(ctx, c)
	if err != nil {
		log.Error(ctx, "create customer", "error", err)
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// listCustomersHandler lists customers, optionally filtered by ?q=.
// @Summary List customers
// @Produce json
// @Param q query string false "Substring filter"
// @Success 200 {array} customer.Customer
// @Security ApiKeyAuth
// @Router /customers [get]
func listCustomersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listCustomersHandler")
	defer span.End()

	all, err := customers.List(ctx)
	if err != nil {
		log.Error(ctx, "list customers", "error", err)
		respondError(w, err)
		return
	}
	if term := r.URL.Query().Get("q"); term != "" {
		all = pos.FilterBySubstring(all, term, func(c customer.Customer) []string {
			return []string{c.ID, c.Name, c.Mobile, c.Email, c.Address}
		})
	}
	respondJSON(w, http.StatusOK, all)
}

// getCustomerHandler retrieves a customer by ID.
// @Summary Get customer
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} customer.Customer
// @Security ApiKeyAuth
// @Router /customers/{id} [get]
func getCustomerHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getCustomerHandler")
	defer span.End()

	c, err := customers.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// updateCustomerHandler updates an existing customer.
// @Summary Update customer
// @Accept json
// @Produce json
// @Param id path string true "Customer ID"
// @Param customer body customer.Customer true "Customer"
// @Success 200 {object} customer.Customer
// @Security ApiKeyAuth
// @Router /customers/{id} [put]
func updateCustomerHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "updateCustomerHandler")
	defer span.End()

	var c customer.Customer
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c.ID = mux.Vars(r)["id"]
	if err := c.Validate(); err != nil {
		respondError(w, err)
		return
	}
	if err := customers.Update(ctx, c); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// deleteCustomerHandler removes a customer. Orders referencing the
// customer are untouched.
// @Summary Delete customer
// @Param id path string true "Customer ID"
// @Success 204
// @Security ApiKeyAuth
// @Router /customers/{id} [delete]
func deleteCustomerHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "deleteCustomerHandler")
	defer span.End()

	if err := customers.Delete(ctx, mux.Vars(r)["id"]); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// createItemHandler registers a new inventory item.
// @Summary Create item
// @Accept json
// @Produce json
// @Param item body item.Item true "Item"
// @Success 201 {object} item.Item
// @Security ApiKeyAuth
// @Router /items [post]
func createItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "createItemHandler")
	defer span.End()

	var it item.Item
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := it.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	created, err := items.Add(ctx, it)
	if err != nil {
		log.Error(ctx, "create item", "error", err)
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// listItemsHandler lists items, optionally filtered by ?q=.
// @Summary List items
// @Produce json
// @Param q query string false "Substring filter"
// @Success 200 {array} item.Item
// @Security ApiKeyAuth
// @Router /items [get]
func listItemsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listItemsHandler")
	defer span.End()

	all, err := items.List(ctx)
	if err != nil {
		log.Error(ctx, "list items", "error", err)
		respondError(w, err)
		return
	}
	if term := r.URL.Query().Get("q"); term != "" {
		all = pos.FilterBySubstring(all, term, func(it item.Item) []string {
			return []string{it.ID, it.Name, it.Category, it.Barcode, it.Description}
		})
	}
	respondJSON(w, http.StatusOK, all)
}

// getItemHandler retrieves an item by ID.
// @Summary Get item
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} item.Item
// @Security ApiKeyAuth
// @Router /items/{id} [get]
func getItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getItemHandler")
	defer span.End()

	it, err := items.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, it)
}

// updateItemHandler updates an existing item.
// @Summary Update item
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param item body item.Item true "Item"
// @Success 200 {object} item.Item
// @Security ApiKeyAuth
// @Router /items/{id} [put]
func updateItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "updateItemHandler")
	defer span.End()

	var it item.Item
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	it.ID = mux.Vars(r)["id"]
	if err := it.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := items.Update(ctx, it); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, it)
}

// deleteItemHandler removes an item.
// @Summary Delete item
// @Param id path string true "Item ID"
// @Success 204
// @Security ApiKeyAuth
// @Router /items/{id} [delete]
func deleteItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "deleteItemHandler")
	defer span.End()

	if err := items.Delete(ctx, mux.Vars(r)["id"]); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// placeOrderRequest is the wire shape for order placement.
type placeOrderRequest struct {
	CustomerID string            `json:"customerId"`
	Lines      []pos.LineRequest `json:"lines"`
	Date       string            `json:"date"`
	Notes      string            `json:"notes"`
}

// orderResponse decorates an order with the resolved customer name.
type orderResponse struct {
	order.Order
	CustomerName string `json:"customerName"`
}

// placeOrderHandler validates and commits a new order.
// @Summary Place order
// @Accept json
// @Produce json
// @Param order body placeOrderRequest true "Order request"
// @Success 201 {object} orderResponse
// @Failure 400 {string} string "empty order or invalid quantity"
// @Failure 404 {string} string "unknown customer or item"
// @Failure 409 {string} string "insufficient stock"
// @Security ApiKeyAuth
// @Router /orders [post]
func placeOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "placeOrderHandler")
	defer span.End()

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var date time.Time
	if req.Date != "" {
		var err error
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			http.Error(w, "invalid date, want YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	start := time.Now()
	placed, err := svc.PlaceOrder(ctx, pos.PlaceOrderRequest{
		CustomerID: req.CustomerID,
		Lines:      req.Lines,
		Date:       date,
		Notes:      req.Notes,
	})
	stats.PlacementLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		stats.PlacementRejected.WithLabelValues(rejectionReason(err)).Inc()
		log.Info(ctx, "placement rejected", "error", err)
		respondError(w, err)
		return
	}
	stats.OrdersPlaced.Inc()

	if err := auditLog.Append(changelog.Entry{
		OrderID:    placed.ID,
		CustomerID: placed.CustomerID,
		Total:      placed.Total.String(),
		Items:      placed.ItemCount(),
		TS:         time.Now().Unix(),
	}); err != nil {
		log.Error(ctx, "changelog append", "order", placed.ID, "error", err)
	}
	writeSnapshot(ctx)

	name, err := svc.CustomerDisplayName(ctx, placed)
	if err != nil {
		log.Error(ctx, "resolve customer name", "error", err)
		name = placed.CustomerID
	}
	log.Info(ctx, "order placed", "order", placed.ID, "customer", placed.CustomerID, "total", placed.Total.String())
	respondJSON(w, http.StatusCreated, orderResponse{Order: placed, CustomerName: name})
}

// writeSnapshot persists the current item and order collections. Failures
// are logged; the placement has already committed.
func writeSnapshot(ctx context.Context) {
	its, err := items.List(ctx)
	if err != nil {
		log.Error(ctx, "snapshot list items", "error", err)
		stats.SnapshotWriteFails.Inc()
		return
	}
	ords, err := orders.List(ctx)
	if err != nil {
		log.Error(ctx, "snapshot list orders", "error", err)
		stats.SnapshotWriteFails.Inc()
		return
	}
	if err := snapStore.Save(ctx, snapshot.Snapshot{Orders: ords, Items: its}); err != nil {
		log.Error(ctx, "snapshot save", "error", err)
		stats.SnapshotWriteFails.Inc()
		return
	}
	stats.SnapshotWrites.Inc()
}

// listOrdersHandler lists placed orders, optionally filtered by ?q=.
// @Summary List orders
// @Produce json
// @Param q query string false "Substring filter"
// @Success 200 {array} orderResponse
// @Security ApiKeyAuth
// @Router /orders [get]
func listOrdersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listOrdersHandler")
	defer span.End()

	all, err := svc.ListOrders(ctx)
	if err != nil {
		log.Error(ctx, "list orders", "error", err)
		respondError(w, err)
		return
	}
	out := make([]orderResponse, 0, len(all))
	for _, o := range all {
		name, err := svc.CustomerDisplayName(ctx, o)
		if err != nil {
			name = o.CustomerID
		}
		out = append(out, orderResponse{Order: o, CustomerName: name})
	}
	if term := r.URL.Query().Get("q"); term != "" {
		out = pos.FilterBySubstring(out, term, func(o orderResponse) []string {
			fields := []string{o.ID, o.CustomerID, o.CustomerName, o.Notes, o.Date.Format("2006-01-02"), o.Total.String()}
			for _, l := range o.Lines {
				fields = append(fields, l.Name)
			}
			return fields
		})
	}
	respondJSON(w, http.StatusOK, out)
}

// getOrderHandler retrieves a placed order by ID.
// @Summary Get order
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} orderResponse
// @Security ApiKeyAuth
// @Router /orders/{id} [get]
func getOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getOrderHandler")
	defer span.End()

	o, err := svc.GetOrder(ctx, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	name, err := svc.CustomerDisplayName(ctx, o)
	if err != nil {
		name = o.CustomerID
	}
	respondJSON(w, http.StatusOK, orderResponse{Order: o, CustomerName: name})
}
