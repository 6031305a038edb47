package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/FabianHardy/stm-v2-sub000/internal/campaign"
	"github.com/FabianHardy/stm-v2-sub000/internal/cart"
	"github.com/FabianHardy/stm-v2-sub000/internal/export"
	kafkax "github.com/FabianHardy/stm-v2-sub000/internal/kafka"
	"github.com/FabianHardy/stm-v2-sub000/internal/orders"
	"github.com/FabianHardy/stm-v2-sub000/internal/quota"
	"github.com/FabianHardy/stm-v2-sub000/internal/session"
)

const headerSession = "X-Session-Token"

type IdentifyReq struct {
	CustomerNumber string `json:"customer_number"`
	Country        string `json:"country"`
	Password       string `json:"password,omitempty"`
}

type CartMutationReq struct {
	ProductCode string `json:"product_code"`
	Quantity    int    `json:"quantity"`
}

type CartResp struct {
	Success bool        `json:"success"`
	Cart    []cart.Line `json:"cart,omitempty"`
	Error   *CartError  `json:"error,omitempty"`
}

type CartError struct {
	Code         string       `json:"code"`
	ProductCode  string       `json:"product_code,omitempty"`
	MaxOrderable *quota.Limit `json:"max_orderable,omitempty"`
}

type CatalogItem struct {
	ProductCode string `json:"product_code"`
	Label       string `json:"label"`
	quota.Availability
}

type CampaignHandler struct {
	Gate      *campaign.Gate
	Campaigns *campaign.Repo
	Sessions  *session.Store
	Carts     *cart.Service
	Quota     *quota.Ledger
	Finalizer *orders.Finalizer
	Exports   *export.Service
	Producer  *kafkax.Producer
	Service   string
	Log       *zap.Logger
}

func (h *CampaignHandler) Register(r *chi.Mux) {
	r.Route("/c/{token}", func(r chi.Router) {
		r.Get("/", h.probe)
		r.Post("/identify", h.identify)
		r.Get("/catalog", h.catalog)
		r.Route("/cart", func(r chi.Router) {
			r.Post("/add", h.cartAdd)
			r.Post("/update", h.cartUpdate)
			r.Post("/remove", h.cartRemove)
			r.Post("/clear", h.cartClear)
			r.Post("/submit", h.submit)
		})
	})
	r.Post("/orders/{id}/export", h.regenerate)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func denialCode(st campaign.AccessStatus) int {
	switch st {
	case campaign.StatusNotFound:
		return http.StatusNotFound
	case campaign.StatusAccessDenied:
		return http.StatusForbidden
	default:
		return http.StatusConflict
	}
}

// probe answers the unauthenticated landing request: campaign status and
// whether identification needs a password.
func (h *CampaignHandler) probe(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	d, err := h.Gate.Probe(ctx, chi.URLParam(r, "token"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
		return
	}
	if d.Status == campaign.StatusNotFound {
		writeJSON(w, http.StatusNotFound, map[string]string{"status": string(d.Status)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            d.Status,
		"campaign_name":     d.Campaign.Name,
		"country":           d.Campaign.Country,
		"password_required": d.Campaign.Mode == campaign.ModeProtected,
	})
}

func (h *CampaignHandler) identify(w http.ResponseWriter, r *http.Request) {
	var req IdentifyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.CustomerNumber == "" || req.Country == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	token := chi.URLParam(r, "token")
	d, err := h.Gate.Admit(ctx, token, campaign.Credentials{
		CustomerNumber: req.CustomerNumber,
		Country:        req.Country,
		Password:       req.Password,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
		return
	}
	if d.Status != campaign.StatusActive {
		writeJSON(w, denialCode(d.Status), map[string]string{"error": string(d.Status)})
		return
	}

	sid, err := h.Sessions.Create(ctx, session.Session{
		CampaignToken:  token,
		CustomerNumber: req.CustomerNumber,
		Country:        req.Country,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_token": sid,
		"campaign_name": d.Campaign.Name,
	})
}

// admitted loads the session and the active campaign behind the token; it
// writes the denial itself and returns nil on any failure.
func (h *CampaignHandler) admitted(ctx context.Context, w http.ResponseWriter, r *http.Request) (*session.Session, *campaign.Campaign) {
	token := chi.URLParam(r, "token")

	sess, err := h.Sessions.Get(ctx, r.Header.Get(headerSession))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
		return nil, nil
	}
	if sess == nil || sess.CampaignToken != token {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "session_expired"})
		return nil, nil
	}
	_ = h.Sessions.Touch(ctx, sess.ID)

	d, err := h.Gate.Probe(ctx, token)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
		return nil, nil
	}
	if d.Status != campaign.StatusActive {
		writeJSON(w, denialCode(d.Status), map[string]string{"error": string(d.Status)})
		return nil, nil
	}
	return sess, d.Campaign
}

func (h *CampaignHandler) catalog(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sess, cmp := h.admitted(ctx, w, r)
	if sess == nil {
		return
	}

	items, err := h.Campaigns.ActiveItems(ctx, cmp.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
		return
	}
	out := make([]CatalogItem, 0, len(items))
	for _, it := range items {
		av, err := h.Quota.Availability(ctx, it, sess.CustomerKey())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
			return
		}
		out = append(out, CatalogItem{ProductCode: it.Code, Label: it.Label, Availability: av})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *CampaignHandler) cartAdd(w http.ResponseWriter, r *http.Request) {
	h.mutateCart(w, r, func(ctx context.Context, sess *session.Session, it campaign.Item, qty int) error {
		return h.Carts.Add(ctx, sess.ID, sess.CampaignToken, it, sess.CustomerKey(), qty)
	})
}

func (h *CampaignHandler) cartUpdate(w http.ResponseWriter, r *http.Request) {
	h.mutateCart(w, r, func(ctx context.Context, sess *session.Session, it campaign.Item, qty int) error {
		return h.Carts.SetQuantity(ctx, sess.ID, sess.CampaignToken, it, sess.CustomerKey(), qty)
	})
}

func (h *CampaignHandler) mutateCart(w http.ResponseWriter, r *http.Request,
	apply func(ctx context.Context, sess *session.Session, it campaign.Item, qty int) error) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req CartMutationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductCode == "" {
		writeJSON(w, http.StatusBadRequest, CartResp{Error: &CartError{Code: "invalid_body"}})
		return
	}
	sess, cmp := h.admitted(ctx, w, r)
	if sess == nil {
		return
	}

	it, err := h.Campaigns.ItemByCode(ctx, cmp.ID, req.ProductCode)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
		return
	}
	if it == nil {
		writeJSON(w, http.StatusNotFound, CartResp{Error: &CartError{
			Code: string(quota.ReasonNotOrderable), ProductCode: req.ProductCode,
		}})
		return
	}

	if err := apply(ctx, sess, *it, req.Quantity); err != nil {
		h.writeCartError(w, err)
		return
	}
	h.writeCart(ctx, w, sess)
}

func (h *CampaignHandler) cartRemove(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req CartMutationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductCode == "" {
		writeJSON(w, http.StatusBadRequest, CartResp{Error: &CartError{Code: "invalid_body"}})
		return
	}
	sess, _ := h.admitted(ctx, w, r)
	if sess == nil {
		return
	}
	if err := h.Carts.Remove(ctx, sess.ID, sess.CampaignToken, req.ProductCode); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
		return
	}
	h.writeCart(ctx, w, sess)
}

func (h *CampaignHandler) cartClear(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sess, _ := h.admitted(ctx, w, r)
	if sess == nil {
		return
	}
	if err := h.Carts.Clear(ctx, sess.ID, sess.CampaignToken); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
		return
	}
	writeJSON(w, http.StatusOK, CartResp{Success: true, Cart: []cart.Line{}})
}

func (h *CampaignHandler) submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sess, cmp := h.admitted(ctx, w, r)
	if sess == nil {
		return
	}

	snap, err := h.Carts.Snapshot(ctx, sess.ID, sess.CampaignToken)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
		return
	}

	entries := make([]orders.CartEntry, 0, len(snap))
	for _, l := range snap {
		it, err := h.Campaigns.ItemByCode(ctx, cmp.ID, l.ProductCode)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
			return
		}
		if it == nil {
			h.writeCartError(w, &quota.Rejected{Reason: quota.ReasonNotOrderable, ProductCode: l.ProductCode})
			return
		}
		entries = append(entries, orders.CartEntry{Item: *it, Qty: l.Qty})
	}

	o, err := h.Finalizer.Finalize(ctx, cmp, sess.CustomerKey(), entries)
	if err != nil {
		if errors.Is(err, orders.ErrEmptyCart) {
			writeJSON(w, http.StatusBadRequest, CartResp{Error: &CartError{Code: "empty_cart"}})
			return
		}
		var rej *quota.Rejected
		if errors.As(err, &rej) {
			h.writeCartError(w, err)
			return
		}
		// nothing was persisted; the caller may retry
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "persistence_failure"})
		return
	}

	if err := h.Carts.Clear(ctx, sess.ID, sess.CampaignToken); err != nil {
		h.Log.Warn("cart clear after finalize", zap.String("order_id", o.ID), zap.Error(err))
	}
	h.publishFinalized(o, cmp, entries, r.Header.Get("X-Request-Id"))

	writeJSON(w, http.StatusCreated, map[string]string{"order_id": o.ID})
}

func (h *CampaignHandler) publishFinalized(o *orders.Order, cmp *campaign.Campaign, entries []orders.CartEntry, trace string) {
	lines := make([]orders.LinePayload, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, orders.LinePayload{ProductCode: e.Item.Code, Quantity: e.Qty})
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderFinalized,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       trace,
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(orders.OrderFinalizedPayload{
			OrderID:        o.ID,
			CampaignToken:  cmp.Token,
			CustomerNumber: o.CustomerNumber,
			Country:        o.Country,
			Lines:          lines,
		}),
	}
	h.Producer.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderFinalized)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *CampaignHandler) regenerate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	path, err := h.Exports.Export(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"file": path})
}

func (h *CampaignHandler) writeCartError(w http.ResponseWriter, err error) {
	if errors.Is(err, cart.ErrInvalidQuantity) {
		writeJSON(w, http.StatusBadRequest, CartResp{Error: &CartError{Code: "invalid_quantity"}})
		return
	}
	var rej *quota.Rejected
	if errors.As(err, &rej) {
		ce := &CartError{Code: string(rej.Reason), ProductCode: rej.ProductCode}
		if rej.MaxOrderable.IsBounded() {
			mo := rej.MaxOrderable
			ce.MaxOrderable = &mo
		}
		writeJSON(w, http.StatusConflict, CartResp{Error: ce})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
}

func (h *CampaignHandler) writeCart(ctx context.Context, w http.ResponseWriter, sess *session.Session) {
	snap, err := h.Carts.Snapshot(ctx, sess.ID, sess.CampaignToken)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
		return
	}
	if snap == nil {
		snap = []cart.Line{}
	}
	writeJSON(w, http.StatusOK, CartResp{Success: true, Cart: snap})
}
