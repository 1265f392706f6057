package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/btcrunway/btcrunway/internal/config"
	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	log "github.com/sirupsen/logrus"
)

const latestQuotesPath = "/v1/cryptocurrency/quotes/latest"

var ErrMissingPrice = errors.New("quote response does not contain a USD price")

// APIError is returned when the quote API answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("quote API error: status=%d body=%s", e.StatusCode, string(e.Body))
}

func (e *APIError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type Client interface {
	// LatestUsdPrice returns the current BTC/USD spot price.
	LatestUsdPrice(ctx context.Context) (float64, error)
}

type usdQuote struct {
	Price *float64 `json:"price"`
}

type quotesResponse struct {
	Data map[string]struct {
		Quote map[string]usdQuote `json:"quote"`
	} `json:"data"`
}

// ClientImpl talks to the CoinMarketCap quotes API.
type ClientImpl struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	bitcoinId  int
	pipeline   failsafe.Executor[[]byte]
}

func NewClient(cfg config.CoinMarketCap) *ClientImpl {
	retryPolicy := retrypolicy.NewBuilder[[]byte]().
		HandleIf(func(_ []byte, err error) bool {
			if err == nil {
				return false
			}
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.retryable()
			}
			// network errors are retried, cancellations are not
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}).
		WithBackoff(cfg.MinBackoff, cfg.MaxBackoff).
		WithMaxRetries(cfg.MaxRetries).
		Build()

	return &ClientImpl{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.ApiKey,
		bitcoinId:  cfg.BitcoinId,
		pipeline:   failsafe.With[[]byte](retryPolicy),
	}
}

func (c *ClientImpl) LatestUsdPrice(ctx context.Context) (float64, error) {
	body, err := c.pipeline.GetWithExecution(func(exec failsafe.Execution[[]byte]) ([]byte, error) {
		if attempt := exec.Attempts(); attempt > 1 {
			log.Debugf("retrying quote request, attempt %d", attempt)
		}
		return c.fetchLatest(ctx)
	})
	if err != nil {
		log.Errorf("Error fetching Bitcoin price: %v", err)
		return 0, err
	}

	var response quotesResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return 0, fmt.Errorf("failed to decode quote response: %w", err)
	}
	asset, ok := response.Data[strconv.Itoa(c.bitcoinId)]
	if !ok {
		return 0, ErrMissingPrice
	}
	usd, ok := asset.Quote["USD"]
	if !ok || usd.Price == nil {
		return 0, ErrMissingPrice
	}
	price := *usd.Price
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("%w: got %v", ErrMissingPrice, price)
	}
	return price, nil
}

func (c *ClientImpl) fetchLatest(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+latestQuotesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	q := req.URL.Query()
	q.Set("id", strconv.Itoa(c.bitcoinId))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("X-CMC_PRO_API_KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: body}
	}
	return body, nil
}
