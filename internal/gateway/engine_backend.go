package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"mockx/internal/replay"
)

// EngineBackend satisfies Backend directly on top of a replay.Engine,
// translating the logical REST paths into engine calls. It carries no
// state of its own; the engine owns everything.
type EngineBackend struct {
	engine *replay.Engine
}

func NewEngineBackend(engine *replay.Engine) *EngineBackend {
	return &EngineBackend{engine: engine}
}

func (b *EngineBackend) Engine() *replay.Engine {
	return b.engine
}

func (b *EngineBackend) Get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	switch {
	case path == "/tickers":
		return json.Marshal(b.engine.Tickers())
	case strings.HasPrefix(path, "/tickers/"):
		t, err := b.engine.Ticker(strings.TrimPrefix(path, "/tickers/"))
		if err != nil {
			return nil, err
		}
		return json.Marshal(t)
	case path == "/balance":
		return json.Marshal(b.engine.Balance())
	case path == "/orders":
		filter := replay.OrderFilter{
			Symbol: params.Get("symbol"),
			Status: params.Get("status"),
			Side:   params.Get("side"),
		}
		if tail := params.Get("tail"); tail != "" {
			n, err := strconv.Atoi(tail)
			if err != nil {
				return nil, fmt.Errorf("invalid tail parameter %q", tail)
			}
			filter.Tail = n
		}
		return json.Marshal(b.engine.Orders(filter))
	case strings.HasPrefix(path, "/orders/"):
		o, err := b.engine.Order(strings.TrimPrefix(path, "/orders/"))
		if err != nil {
			return nil, err
		}
		return json.Marshal(o)
	default:
		return nil, fmt.Errorf("%w: path %s", ErrNotFound, path)
	}
}

func (b *EngineBackend) Post(ctx context.Context, path string, body any) ([]byte, error) {
	switch {
	case path == "/orders":
		var req replay.OrderRequest
		if err := recode(body, &req); err != nil {
			return nil, err
		}
		o, err := b.engine.CreateOrder(req)
		if err != nil {
			return nil, err
		}
		return json.Marshal(o)
	case path == "/orders/can_execute":
		var req replay.OrderRequest
		if err := recode(body, &req); err != nil {
			return nil, err
		}
		ok, err := b.engine.CanExecute(req)
		if err != nil {
			return nil, err
		}
		return json.Marshal(map[string]bool{"can_execute": ok})
	case strings.HasSuffix(path, "/cancel") && strings.HasPrefix(path, "/orders/"):
		oid := strings.TrimSuffix(strings.TrimPrefix(path, "/orders/"), "/cancel")
		o, err := b.engine.CancelOrder(oid)
		if err != nil {
			return nil, err
		}
		return json.Marshal(o)
	case strings.HasPrefix(path, "/balance/") && strings.HasSuffix(path, "/deposit"):
		asset := strings.TrimSuffix(strings.TrimPrefix(path, "/balance/"), "/deposit")
		var req BalanceChangeRequest
		if err := recode(body, &req); err != nil {
			return nil, err
		}
		row, err := b.engine.Deposit(asset, req.Amount)
		if err != nil {
			return nil, err
		}
		return json.Marshal(row)
	case strings.HasPrefix(path, "/balance/") && strings.HasSuffix(path, "/withdrawal"):
		asset := strings.TrimSuffix(strings.TrimPrefix(path, "/balance/"), "/withdrawal")
		var req BalanceChangeRequest
		if err := recode(body, &req); err != nil {
			return nil, err
		}
		row, err := b.engine.Withdraw(asset, req.Amount)
		if err != nil {
			return nil, err
		}
		return json.Marshal(row)
	case path == "/replay/advance":
		var req AdvanceRequest
		if err := recode(body, &req); err != nil {
			return nil, err
		}
		var ts int64
		if req.ToTimestamp != nil {
			ts = b.engine.AdvanceTo(*req.ToTimestamp)
		} else {
			// Absent steps means one; an explicit zero is a no-op read.
			steps := 1
			if req.Steps != nil {
				steps = *req.Steps
			}
			ts = b.engine.Advance(steps)
		}
		return json.Marshal(map[string]int64{"timestamp": ts})
	default:
		return nil, fmt.Errorf("%w: path %s", ErrNotFound, path)
	}
}

// BalanceChangeRequest is the /balance/{asset}/deposit and
// /balance/{asset}/withdrawal payload.
type BalanceChangeRequest struct {
	Amount float64 `json:"amount"`
}

// AdvanceRequest is the /replay/advance payload. ToTimestamp, when set,
// overrides Steps. Steps stays a pointer so a missing field (default 1)
// and an explicit 0 (no-op) are distinguishable.
type AdvanceRequest struct {
	Steps       *int   `json:"steps,omitempty"`
	ToTimestamp *int64 `json:"to_timestamp,omitempty"`
}

// recode round-trips body through JSON so callers may pass maps or
// typed structs interchangeably, same as an HTTP backend would accept.
func recode(body, dst any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request body failed: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decoding request body failed: %w", err)
	}
	return nil
}
