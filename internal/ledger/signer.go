package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"student-records/internal/httpx"
	"student-records/internal/logger"
)

// SignerExecutor hands calls to an external wallet signer over HTTP. The
// signer owns the keys and submits the transaction.
type SignerExecutor struct {
	URL    string
	Sender string
	HTTP   *http.Client
	log    zerolog.Logger
}

func NewSignerExecutor(url, sender string) *SignerExecutor {
	return &SignerExecutor{
		URL:    url,
		Sender: sender,
		HTTP:   &http.Client{},
		log:    logger.Component("signer"),
	}
}

type signRequest struct {
	Sender      string  `json:"sender"`
	Transaction Call    `json:"transaction"`
	Options     Options `json:"options"`
}

type signResponse struct {
	Result
	Error string `json:"error,omitempty"`
}

// ExecutionFailure is the signer's or node's own description of a failed
// transaction.
type ExecutionFailure struct {
	Message string
}

func (e *ExecutionFailure) Error() string { return e.Message }

// Execute is never retried: a repeated submit could commit twice.
func (s *SignerExecutor) Execute(ctx context.Context, c Call, opts Options) (*Result, error) {
	if s.URL == "" {
		return nil, errors.New("signer: no signer url configured")
	}
	s.log.Debug().Str("target", c.Target).Int("args", len(c.Arguments)).Msg("submitting transaction")

	var out signResponse
	err := httpx.PostJSON(ctx, s.HTTP, s.URL, nil, signRequest{Sender: s.Sender, Transaction: c, Options: opts}, &out, httpx.SingleAttempt())
	if err != nil {
		var herr *httpx.HTTPError
		if errors.As(err, &herr) {
			if msg := failureMessage(herr.Body); msg != "" {
				return nil, &ExecutionFailure{Message: msg}
			}
		}
		return nil, fmt.Errorf("signer: %w", err)
	}
	if out.Error != "" {
		return nil, &ExecutionFailure{Message: out.Error}
	}

	s.log.Info().Str("target", c.Target).Str("digest", out.Digest).Msg("transaction executed")
	return &out.Result, nil
}

func failureMessage(body []byte) string {
	var v struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return strings.TrimSpace(string(body))
	}
	if v.Error != "" {
		return v.Error
	}
	return v.Message
}
