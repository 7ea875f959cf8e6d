package ratingclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxResponseBody = 1 << 20 // 1 MiB

// GenericFailureMessage is shown to the user when the server never produced
// a usable answer (transport failure or malformed response).
const GenericFailureMessage = "Could not submit rating. Please try again."

// Summary is the server's authoritative aggregate for one photo.
type Summary struct {
	Average float64
	Count   int64
}

// Renderer writes a summary into the display targets scoped by photoID.
type Renderer interface {
	RenderSummary(photoID string, summary Summary) error
}

// Notifier shows a message to the user.
type Notifier interface {
	Notify(message string)
}

// Submitter defines the contract for submitting a rating.
type Submitter interface {
	Submit(ctx context.Context, photoID string, value int) error
}

// Options configures an HTTPClient.
type Options struct {
	BaseURL string
	RaterID string
	Timeout time.Duration
	Logger  *zap.Logger
}

// HTTPClient submits ratings over HTTP and reports the outcome through the
// injected Renderer and Notifier.
//
// Submissions for the same photo follow a cancel-and-replace policy: a new
// Submit cancels the in-flight one, and the replaced submission neither
// renders nor notifies. Renderer and Notifier are invoked while the client
// holds its internal lock, so they must not call back into the client.
type HTTPClient struct {
	baseURL  string
	raterID  string
	client   *http.Client
	renderer Renderer
	notifier Notifier
	logger   *zap.Logger

	mu       sync.Mutex
	inflight map[string]*submission
}

var _ Submitter = (*HTTPClient)(nil)

type submission struct {
	id     uuid.UUID
	cancel context.CancelCauseFunc
}

// NewHTTPClient constructs a rating submitter bound to a server base URL.
func NewHTTPClient(opts Options, renderer Renderer, notifier Notifier) (*HTTPClient, error) {
	if renderer == nil {
		return nil, errors.New("ratingclient: renderer is required")
	}
	if notifier == nil {
		return nil, errors.New("ratingclient: notifier is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	parsed, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse ratings url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("parse ratings url: %q is not absolute", opts.BaseURL)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPClient{
		baseURL: parsed.String(),
		raterID: opts.RaterID,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		renderer: renderer,
		notifier: notifier,
		logger:   logger,
		inflight: make(map[string]*submission),
	}, nil
}

// Submit sends value as the caller's rating for photoID. On success the
// returned summary is rendered; on failure the user is notified and the
// error is returned.
func (c *HTTPClient) Submit(ctx context.Context, photoID string, value int) error {
	ctx, sub := c.begin(ctx, photoID)
	defer c.finish(photoID, sub)

	log := c.logger.With(
		zap.String("photo_id", photoID),
		zap.String("submission_id", sub.id.String()),
	)

	summary, err := c.put(ctx, photoID, value)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inflight[photoID] != sub {
		log.Debug("rating submission superseded")
		return ErrSuperseded
	}

	if err != nil {
		if ctx.Err() != nil && errors.Is(context.Cause(ctx), context.Canceled) {
			log.Debug("rating submission canceled by caller")
			return err
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			log.Info("rating rejected", zap.Int("status", statusErr.Code))
			c.notifier.Notify(statusErr.Message())
		} else {
			log.Warn("rating submission failed", zap.Error(err))
			c.notifier.Notify(GenericFailureMessage)
		}
		return err
	}

	if err := c.renderer.RenderSummary(photoID, summary); err != nil {
		log.Warn("render rating summary", zap.Error(err))
	}
	return nil
}

// begin registers a new submission for photoID, replacing any in-flight one.
func (c *HTTPClient) begin(parent context.Context, photoID string) (context.Context, *submission) {
	ctx, cancel := context.WithCancelCause(parent)
	sub := &submission{id: uuid.New(), cancel: cancel}

	c.mu.Lock()
	if prev, ok := c.inflight[photoID]; ok {
		prev.cancel(ErrSuperseded)
	}
	c.inflight[photoID] = sub
	c.mu.Unlock()

	return ctx, sub
}

func (c *HTTPClient) finish(photoID string, sub *submission) {
	c.mu.Lock()
	if c.inflight[photoID] == sub {
		delete(c.inflight, photoID)
	}
	c.mu.Unlock()
	sub.cancel(nil)
}

type submitRequest struct {
	Value int `json:"value"`
}

type summaryPayload struct {
	Average *float64 `json:"avg"`
	Count   *int64   `json:"count"`
}

func (c *HTTPClient) put(ctx context.Context, photoID string, value int) (Summary, error) {
	body, err := json.Marshal(submitRequest{Value: value})
	if err != nil {
		return Summary{}, fmt.Errorf("encode rating: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.endpoint(photoID), bytes.NewReader(body))
	if err != nil {
		return Summary{}, fmt.Errorf("build rating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.raterID != "" {
		req.Header.Set("X-Rater-Id", c.raterID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return Summary{}, fmt.Errorf("%w: read response: %w", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Summary{}, &StatusError{Code: resp.StatusCode, Body: string(payload)}
	}
	return decodeSummary(payload)
}

func (c *HTTPClient) endpoint(photoID string) string {
	return c.baseURL + "/photos/" + url.PathEscape(photoID) + "/rating"
}

func decodeSummary(payload []byte) (Summary, error) {
	var decoded summaryPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return Summary{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if decoded.Average == nil || decoded.Count == nil {
		return Summary{}, fmt.Errorf("%w: avg and count are required", ErrMalformedResponse)
	}
	if math.IsNaN(*decoded.Average) || math.IsInf(*decoded.Average, 0) {
		return Summary{}, fmt.Errorf("%w: avg is not finite", ErrMalformedResponse)
	}
	if *decoded.Count < 0 {
		return Summary{}, fmt.Errorf("%w: negative count %d", ErrMalformedResponse, *decoded.Count)
	}
	return Summary{Average: *decoded.Average, Count: *decoded.Count}, nil
}
