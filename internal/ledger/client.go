package ledger

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"student-records/internal/httpx"
	"student-records/internal/logger"
)

// MaxEventPage is the largest page the event query returns.
const MaxEventPage = 100

// Client reads from a ledger full node over JSON-RPC.
type Client struct {
	URL   string
	HTTP  *http.Client
	Retry httpx.RetryConfig
}

func New(url string) *Client {
	tr := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	retry := httpx.DefaultRetryConfig()
	retry.Log = logger.Component("ledger")
	return &Client{
		URL:   url,
		HTTP:  &http.Client{Transport: tr},
		Retry: retry,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse[T any] struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      string    `json:"id"`
	Result  T         `json:"result"`
	Error   *RPCError `json:"error"`
}

// RPCError is a JSON-RPC error object returned by the node.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func call[T any](ctx context.Context, c *Client, method string, params ...any) (T, error) {
	var out rpcResponse[T]
	req := rpcRequest{JSONRPC: "2.0", ID: uuid.NewString(), Method: method, Params: params}
	if err := httpx.PostJSON(ctx, c.HTTP, c.URL, nil, req, &out, c.Retry); err != nil {
		var zero T
		return zero, fmt.Errorf("%s: %w", method, err)
	}
	if out.Error != nil {
		var zero T
		return zero, fmt.Errorf("%s: %w", method, out.Error)
	}
	return out.Result, nil
}

type EventID struct {
	TxDigest string `json:"txDigest"`
	EventSeq string `json:"eventSeq"`
}

// Event is one decoded entry of the event log.
type Event struct {
	ID          EventID        `json:"id"`
	PackageID   string         `json:"packageId"`
	Module      string         `json:"transactionModule"`
	Sender      string         `json:"sender"`
	Type        string         `json:"type"`
	ParsedJSON  map[string]any `json:"parsedJson"`
	TimestampMs string         `json:"timestampMs"`
}

type EventPage struct {
	Data        []Event  `json:"data"`
	NextCursor  *EventID `json:"nextCursor"`
	HasNextPage bool     `json:"hasNextPage"`
}

// ModuleQuery scopes an event query to one package module.
type ModuleQuery struct {
	Package string `json:"package"`
	Module  string `json:"module"`
}

// QueryEvents returns at most limit events of the module, newest first.
// Only the first page is fetched.
func (c *Client) QueryEvents(ctx context.Context, q ModuleQuery, limit int) ([]Event, error) {
	if limit <= 0 || limit > MaxEventPage {
		limit = MaxEventPage
	}
	filter := map[string]ModuleQuery{"MoveEventModule": q}
	page, err := call[EventPage](ctx, c, "suix_queryEvents", filter, nil, limit, true)
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}
