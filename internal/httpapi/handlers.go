package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"ladderbook/internal/book"
)

// Gate is the subset of service.Service the HTTP layer depends on,
// grounded on polymarket-mm's MarketSnapshotProvider interface — handlers
// depend on a narrow contract, not the concrete service type.
type Gate interface {
	Submit(req book.Request) int64
	Cancel(id int64) bool
	MidPrice() (decimal.Decimal, bool)
	DepthSnapshot(depth int) (bids, asks [][2]decimal.Decimal)
	PnL(user string) (decimal.Decimal, bool)
	Positions(user string) []book.PositionSample
	PnLHistory(user string) []book.PnLSample
	Users() []string
	MidPrices() []book.MidPriceSample
}

const depthLevels = 10

// Handlers holds the dependencies every endpoint needs.
type Handlers struct {
	gate Gate
	log  zerolog.Logger
}

// NewHandlers wires gate behind the seven REST endpoints.
func NewHandlers(gate Gate, log zerolog.Logger) *Handlers {
	return &Handlers{gate: gate, log: log.With().Str("component", "httpapi").Logger()}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func isoTime(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.000")
}

// HandleMidPrice reports the mid-price time series sampled on every trade.
func (h *Handlers) HandleMidPrice(w http.ResponseWriter, r *http.Request) {
	samples := h.gate.MidPrices()
	resp := midPriceResponse{Times: make([]string, 0, len(samples)), Prices: make([]string, 0, len(samples))}
	for _, s := range samples {
		resp.Times = append(resp.Times, isoTime(s.Time))
		if s.Valid {
			resp.Prices = append(resp.Prices, s.Price.String())
		} else {
			resp.Prices = append(resp.Prices, "")
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleOrderbook reports a depth-10 cumulative-volume snapshot around mid.
func (h *Handlers) HandleOrderbook(w http.ResponseWriter, r *http.Request) {
	bids, asks := h.gate.DepthSnapshot(depthLevels)
	resp := depthResponse{Bids: make([][2]string, len(bids)), Asks: make([][2]string, len(asks))}
	for i, lvl := range bids {
		resp.Bids[i] = [2]string{lvl[0].String(), lvl[1].String()}
	}
	for i, lvl := range asks {
		resp.Asks[i] = [2]string{lvl[0].String(), lvl[1].String()}
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleAddOrder admits a new order. Returns 400 with {"error": "..."} on
// a missing field or invalid side; 200 with the full order_dict otherwise.
func (h *Handlers) HandleAddOrder(w http.ResponseWriter, r *http.Request) {
	var req addOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	side, err := book.ParseSide(req.Side)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	kind, err := book.ParseKind(req.Kind)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if req.User == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: book.ErrMissingField.Error()})
		return
	}
	volume, err := decimal.NewFromString(req.Volume)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "volume must be a decimal string"})
		return
	}

	var price *decimal.Decimal
	if req.Price != nil {
		p, err := decimal.NewFromString(*req.Price)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "price must be a decimal string"})
			return
		}
		price = &p
	}
	if kind != book.Market && price == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: book.ErrMissingField.Error()})
		return
	}

	id := h.gate.Submit(book.Request{Side: side, Price: price, Volume: volume, Kind: kind, User: req.User})

	dict := orderDict{ID: id, Side: side.String(), Volume: volume.String(), Kind: kind.String(), User: req.User}
	if price != nil {
		s := price.String()
		dict.Price = &s
	}
	writeJSON(w, http.StatusOK, addOrderResponse{OrderDict: dict})
}

// HandleDelOrder cancels a resting order by id. Returns 400 whenever the
// removal fails — including an unknown or already-filled id — per the
// redesigned behavior (the original returned 200 on any branch).
func (h *Handlers) HandleDelOrder(w http.ResponseWriter, r *http.Request) {
	var req delOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	if !h.gate.Cancel(req.OrderID) {
		writeJSON(w, http.StatusBadRequest, delOrderErrorResponse{
			Error:   book.ErrUnknownOrder.Error(),
			OrderID: strconv.FormatInt(req.OrderID, 10),
		})
		return
	}
	writeJSON(w, http.StatusOK, delOrderResponse{OrderID: req.OrderID})
}

// HandleUsers lists every user handle the ledger has touched.
func (h *Handlers) HandleUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.gate.Users())
}

// HandlePnLHistory reports one user's PnL time-series.
func (h *Handlers) HandlePnLHistory(w http.ResponseWriter, r *http.Request) {
	user := pathTail(r.URL.Path, "/pnl_history/")
	if user == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: book.ErrMissingField.Error()})
		return
	}
	samples := h.gate.PnLHistory(user)
	resp := pnlHistoryResponse{User: user, Times: make([]string, 0, len(samples)), PnLs: make([]string, 0, len(samples))}
	for _, s := range samples {
		resp.Times = append(resp.Times, isoTime(s.Time))
		resp.PnLs = append(resp.PnLs, s.PnL.String())
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandlePositions reports one user's position time-series.
func (h *Handlers) HandlePositions(w http.ResponseWriter, r *http.Request) {
	user := pathTail(r.URL.Path, "/positions/")
	if user == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: book.ErrMissingField.Error()})
		return
	}
	samples := h.gate.Positions(user)
	resp := positionsResponse{User: user, Times: make([]string, 0, len(samples)), Positions: make([]string, 0, len(samples))}
	for _, s := range samples {
		resp.Times = append(resp.Times, isoTime(s.Time))
		resp.Positions = append(resp.Positions, s.Position.String())
	}
	writeJSON(w, http.StatusOK, resp)
}

func pathTail(path, prefix string) string {
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	return strings.TrimPrefix(path, prefix)
}
