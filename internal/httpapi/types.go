package httpapi

// Wire DTOs for the seven REST endpoints. Decimal-valued fields are
// string-encoded per spec's "numeric values ... string-encoded decimals"
// rule, so clients never lose tick-size precision to float64 JSON
// marshaling.

type midPriceResponse struct {
	Times  []string `json:"times"`
	Prices []string `json:"prices"`
}

type depthResponse struct {
	Bids [][2]string `json:"bids"`
	Asks [][2]string `json:"asks"`
}

type addOrderRequest struct {
	Side   string  `json:"side"`
	Price  *string `json:"price,omitempty"`
	Volume string  `json:"volume"`
	Kind   string  `json:"kind"`
	User   string  `json:"user"`
}

type orderDict struct {
	ID     int64   `json:"id"`
	Side   string  `json:"side"`
	Price  *string `json:"price,omitempty"`
	Volume string  `json:"volume"`
	Kind   string  `json:"kind"`
	User   string  `json:"user"`
}

type addOrderResponse struct {
	OrderDict orderDict `json:"order_dict"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type delOrderRequest struct {
	OrderID int64 `json:"order_id"`
}

type delOrderResponse struct {
	OrderID int64 `json:"order_id"`
}

// delOrderErrorResponse echoes the requested id back as a string alongside
// the error, per spec's UnknownOrder response shape.
type delOrderErrorResponse struct {
	Error   string `json:"error"`
	OrderID string `json:"order_id"`
}

type pnlHistoryResponse struct {
	User  string   `json:"user"`
	Times []string `json:"times"`
	PnLs  []string `json:"pnls"`
}

type positionsResponse struct {
	User      string   `json:"user"`
	Times     []string `json:"times"`
	Positions []string `json:"positions"`
}
