// Package client talks to the remote lead-qualification API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"fullhouse_client/platform/apperr"
	"fullhouse_client/platform/config"
	"fullhouse_client/platform/logger"

	"github.com/google/uuid"
)

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger
}

// NewClient builds a client from cfg. The HTTP timeout bounds every call;
// callers may tighten it further through ctx.
func NewClient(cfg config.APIConfig, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.GetAPIBaseURL(), "/"),
		http:    &http.Client{Timeout: cfg.GetAPITimeout()},
		log:     log,
	}
}

// BaseURL returns the normalised API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// call describes one request.
type call struct {
	op          string
	method      string
	path        string
	token       string
	body        io.Reader
	contentType string
}

func (c *Client) doJSON(ctx context.Context, op, method, path, token string, payload, out any) error {
	cl := call{op: op, method: method, path: path, token: token}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return apperr.Wrap(apperr.KindInternal, "no se pudo serializar la solicitud", err).WithOp(op)
		}
		cl.body = bytes.NewReader(data)
		cl.contentType = "application/json"
	}
	return c.do(ctx, cl, out)
}

func (c *Client) do(ctx context.Context, cl call, out any) error {
	start := time.Now()
	status, err := c.roundTrip(ctx, cl, out)
	c.log.WithContext(ctx).APICall(cl.method, cl.path, status, float64(time.Since(start).Milliseconds()), err)
	return err
}

func (c *Client) roundTrip(ctx context.Context, cl call, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, cl.body)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, "solicitud inválida", err).WithOp(cl.op)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID(ctx))
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, transportError(err).WithOp(cl.op)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, transportError(err).WithOp(cl.op)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return resp.StatusCode, statusError(resp.StatusCode, data).WithOp(cl.op)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, apperr.Wrap(apperr.KindDecode, "respuesta inválida del servidor", err).WithOp(cl.op)
	}
	return resp.StatusCode, nil
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(logger.RequestIDKey).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

func transportError(err error) *apperr.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Timeout(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperr.Timeout(err)
	}
	return apperr.Transport(err)
}

// statusError extracts the FastAPI-style "detail" field: a string is used as
// is, a list of validation entries is joined with "; ", anything else falls
// back to the status text.
func statusError(status int, data []byte) *apperr.Error {
	var decoded any
	if len(bytes.TrimSpace(data)) > 0 {
		_ = json.Unmarshal(data, &decoded)
	}

	message := detailMessage(decoded)
	if message == "" {
		message = http.StatusText(status)
	}
	if message == "" {
		message = fmt.Sprintf("HTTP %d", status)
	}

	return apperr.FromStatus(status, message).WithDetails(decoded)
}

func detailMessage(decoded any) string {
	obj, ok := decoded.(map[string]any)
	if !ok {
		return ""
	}

	switch detail := obj["detail"].(type) {
	case string:
		return detail
	case []any:
		parts := make([]string, 0, len(detail))
		for _, item := range detail {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if msg, _ := entry["msg"].(string); msg != "" {
				parts = append(parts, msg)
			} else if d, _ := entry["detail"].(string); d != "" {
				parts = append(parts, d)
			}
		}
		return strings.Join(parts, "; ")
	default:
		return ""
	}
}
