package gateway

import (
	"context"
	"net/url"
)

// Backend is the minimal HTTP-client-shaped contract the paper adapter
// consumes. Two implementations exist: the REST client talking to a
// remote paper-trading service, and the in-process adapter over the
// replay engine. Both return raw JSON bytes so the adapter parses one
// shape regardless of where the data came from. The variant is chosen
// at construction, never probed at runtime.
//
// Read paths: /tickers, /tickers/{symbol}, /balance, /orders,
// /orders/{oid}. Write paths: /orders, /orders/{oid}/cancel,
// /orders/can_execute, /replay/advance (replay-capable backends only).
type Backend interface {
	Get(ctx context.Context, path string, params url.Values) ([]byte, error)
	Post(ctx context.Context, path string, body any) ([]byte, error)
}
