// Package gateway issues requests against the remote rental catalog API.
//
// The API is loosely specified: list and detail resources may live under
// /api-prefixed or bare paths, so every operation retries once against the
// alternate layout when the primary path answers 404.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aluiziolira/go-rental-cars/config"
	"github.com/aluiziolira/go-rental-cars/models"
)

const (
	listPrimaryPath     = "/api/cars"
	listAlternatePath   = "/cars"
	rentalPrimaryPath   = "/api/rentals"
	rentalAlternatePath = "/rentals"
)

// Client talks to the remote catalog service. It performs network I/O only
// and never mutates local state.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	Metrics    *Metrics
}

// NewClient builds a catalog client configured from cfg.
func NewClient(cfg *config.Config) (*Client, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	httpClient := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   cfg.Timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}

	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		Metrics:    NewMetrics(),
	}, nil
}

// WithTransport swaps the underlying round tripper. Used by tests to
// install a mock transport.
func (c *Client) WithTransport(rt http.RoundTripper) {
	c.httpClient.Transport = rt
}

// ListCars fetches one catalog page. Only non-empty filter criteria become
// query parameters; the server may ignore them anyway, which is why the
// store re-filters the result.
func (c *Client) ListCars(ctx context.Context, filters models.Filters, page int) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(c.cfg.PageSize))

	if brand := strings.TrimSpace(filters.Brand); brand != "" {
		query.Set("make", brand)
	}
	if price := strings.TrimSpace(filters.Price); price != "" {
		if _, err := strconv.ParseFloat(price, 64); err == nil {
			query.Set("rentalPrice", price)
		}
	}
	if from := strings.TrimSpace(filters.MileageFrom); from != "" {
		if _, err := strconv.Atoi(from); err == nil {
			query.Set("mileageFrom", from)
		}
	}
	if to := strings.TrimSpace(filters.MileageTo); to != "" {
		if _, err := strconv.Atoi(to); err == nil {
			query.Set("mileageTo", to)
		}
	}

	return c.getWithFallback(ctx, "list", listPrimaryPath, listAlternatePath, query)
}

// GetCar fetches a single vehicle resource.
func (c *Client) GetCar(ctx context.Context, id string) (json.RawMessage, error) {
	escaped := url.PathEscape(id)
	primary := listPrimaryPath + "/" + escaped
	alternate := listAlternatePath + "/" + escaped
	return c.getWithFallback(ctx, "detail", primary, alternate, nil)
}

// SubmitInquiry posts a booking inquiry. A 404 on both the primary and the
// alternate path means the deployment simply lacks the inquiry endpoint;
// when Config.InquiryNotFoundOK is set (the default) that case resolves as
// success so the caller can still report the booking as accepted.
func (c *Client) SubmitInquiry(ctx context.Context, inquiry models.Inquiry) error {
	body, err := json.Marshal(inquiry)
	if err != nil {
		return fmt.Errorf("encode inquiry: %w", err)
	}

	_, err = c.do(ctx, http.MethodPost, rentalPrimaryPath, nil, body, "inquiry")
	if err == nil {
		return nil
	}
	if !IsNotFound(err) {
		return err
	}

	c.Metrics.IncFallback()
	_, err = c.do(ctx, http.MethodPost, rentalAlternatePath, nil, body, "inquiry")
	if err == nil {
		return nil
	}
	if IsNotFound(err) && c.cfg.InquiryNotFoundOK {
		slog.Warn("inquiry endpoint missing on both paths, treating as accepted",
			slog.String("car_id", inquiry.CarID),
		)
		return nil
	}
	return err
}

func (c *Client) getWithFallback(ctx context.Context, operation, primary, alternate string, query url.Values) (json.RawMessage, error) {
	payload, err := c.do(ctx, http.MethodGet, primary, query, nil, operation)
	if err == nil || !IsNotFound(err) {
		return payload, err
	}

	c.Metrics.IncFallback()
	slog.Debug("primary path answered 404, retrying alternate",
		slog.String("primary", primary),
		slog.String("alternate", alternate),
	)
	return c.do(ctx, http.MethodGet, alternate, query, nil, operation)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte, operation string) (json.RawMessage, error) {
	target := strings.TrimRight(c.cfg.BaseURL, "/") + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.Metrics.IncRequest(operation)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.Metrics.ObserveDuration(time.Since(start))
	if err != nil {
		classified := classifyTransportError(err)
		c.Metrics.IncError(errorTypeLabel(classified))
		slog.Error("catalog request failed",
			slog.String("url", target),
			slog.Any("error", classified),
		)
		return nil, classified
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		statusErr := StatusError{Status: resp.StatusCode, URL: target}
		c.Metrics.IncError(errorTypeLabel(statusErr))
		if resp.StatusCode != http.StatusNotFound {
			slog.Error("non-success response",
				slog.Int("status", resp.StatusCode),
				slog.String("url", target),
			)
		}
		return nil, statusErr
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return payload, nil
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout{Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrConnection{Err: err}
	}
	return fmt.Errorf("catalog request: %w", err)
}
