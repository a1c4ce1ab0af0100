// Package ratefeed is the client for the vendor's historical-rate API.
// It handles password-grant authentication, client-side hourly rate
// limiting, and status-aware retry with progressive backoff, and
// flattens the nested store/unit/price payload into normalizable rows.
package ratefeed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Default request behavior, overridable per client via options.
const (
	DefaultTimeout    = 60 * time.Second
	DefaultMaxRetries = 3
)

// Client talks to the vendor API. Safe for concurrent use.
type Client struct {
	http       *resty.Client
	username   string
	password   string
	maxRetries int
	limiter    *hourlyLimiter
	log        *zap.Logger

	// sleep is swapped in tests to avoid real backoff waits.
	sleep func(context.Context, time.Duration) error

	mu    sync.Mutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithMaxRetries caps retry attempts for transient failures.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithHourlyLimit overrides the vendor call allowance.
func WithHourlyLimit(n int) Option {
	return func(c *Client) { c.limiter = newHourlyLimiter(n) }
}

// WithLogger attaches a logger. Default is no-op.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient builds a vendor client for the given base URL and
// password-grant credentials.
func NewClient(baseURL, username, password string, opts ...Option) *Client {
	http := resty.New()
	http.SetBaseURL(baseURL)
	http.SetTimeout(DefaultTimeout)

	c := &Client{
		http:       http,
		username:   username,
		password:   password,
		maxRetries: DefaultMaxRetries,
		limiter:    newHourlyLimiter(DefaultHourlyLimit),
		log:        zap.NewNop(),
		sleep:      sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	Token       string `json:"token"`
}

// authToken fetches and caches the bearer token. The vendor issues
// long-lived tokens, so one fetch serves the session.
func (c *Client) authToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}

	var body tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{
			"grant_type": "password",
			"username":   c.username,
			"password":   c.password,
		}).
		SetResult(&body).
		Post("/authtoken")
	if err != nil {
		return "", fmt.Errorf("auth token: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", classify(resp.StatusCode(), resp.String())
	}

	token := body.AccessToken
	if token == "" {
		token = body.Token
	}
	if token == "" {
		return "", &APIError{
			Status:  resp.StatusCode(),
			Message: "token missing from auth response",
			Action:  "authentication failed, check vendor credentials",
		}
	}

	c.token = "Bearer " + token
	return c.token, nil
}

type storesByAddressRequest struct {
	Country     string `json:"country"`
	State       string `json:"state"`
	City        string `json:"city"`
	Zip         string `json:"zip"`
	StoreName   string `json:"storename"`
	CompanyName string `json:"companyname"`
}

type storesByAddressResponse struct {
	Stores []StoreListing `json:"stores"`
}

// StoreListing is one store search result.
type StoreListing struct {
	StoreID   int     `json:"storeID"`
	StoreName string  `json:"storeName"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Zip       string  `json:"zipcode"`
	Distance  float64 `json:"distance"`
}

// StoreQuery narrows a store search. Country is mandatory per the
// vendor contract; the rest are optional.
type StoreQuery struct {
	Country     string
	State       string
	City        string
	Zip         string
	StoreName   string
	CompanyName string
}

// FindStoresByAddress searches the vendor catalog.
func (c *Client) FindStoresByAddress(ctx context.Context, q StoreQuery) ([]StoreListing, error) {
	if q.Country == "" {
		q.Country = "United States"
	}

	req, err := c.authed(ctx)
	if err != nil {
		return nil, err
	}

	var body storesByAddressResponse
	resp, err := req.
		SetBody(storesByAddressRequest{
			Country:     q.Country,
			State:       q.State,
			City:        q.City,
			Zip:         q.Zip,
			StoreName:   q.StoreName,
			CompanyName: q.CompanyName,
		}).
		SetResult(&body).
		Post("/storesbyaddress")
	if err != nil {
		return nil, fmt.Errorf("stores by address: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, classify(resp.StatusCode(), resp.String())
	}
	return body.Stores, nil
}

type findCompetitorsRequest struct {
	StoreID      []int   `json:"storeid"`
	MasterID     []int   `json:"masterid"`
	CoverageZone float64 `json:"coveragezone"`
}

// CompetitorSet is the subject store plus its competitors within the
// coverage zone.
type CompetitorSet struct {
	SubjectStore     StoreListing   `json:"subjectstore"`
	CompetitorStores []StoreListing `json:"competitorstores"`
}

// FindCompetitors looks up competitors within radiusMiles of a store.
func (c *Client) FindCompetitors(ctx context.Context, storeID int, radiusMiles float64) (*CompetitorSet, error) {
	req, err := c.authed(ctx)
	if err != nil {
		return nil, err
	}

	var body CompetitorSet
	resp, err := req.
		SetBody(findCompetitorsRequest{
			StoreID:      []int{storeID},
			MasterID:     []int{},
			CoverageZone: radiusMiles,
		}).
		SetResult(&body).
		Post("/findcompetitors")
	if err != nil {
		return nil, fmt.Errorf("find competitors: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, classify(resp.StatusCode(), resp.String())
	}
	return &body, nil
}

type historicalRequest struct {
	StoreID     int    `json:"storeid"`
	MasterID    int    `json:"masterid"`
	From        string `json:"from"`
	To          string `json:"to"`
	RequestYear int    `json:"requestyear"`
}

// HistoricalRates fetches a store's rate history for [from, to]. Each
// call consumes a rate-limit slot; transient failures are retried with
// progressive backoff up to the retry cap.
func (c *Client) HistoricalRates(ctx context.Context, storeID int, from, to time.Time) ([]StorePayload, error) {
	req := historicalRequest{
		StoreID: storeID,
		From:    from.Format("2006-01-02"),
		To:      to.Format("2006-01-02"),
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.wait(ctx); err != nil {
			return nil, err
		}

		call, err := c.authed(ctx)
		if err != nil {
			return nil, err
		}

		var payload []StorePayload
		resp, err := call.
			SetBody(req).
			SetResult(&payload).
			Post("/historicaldata")
		if err != nil {
			lastErr = fmt.Errorf("historical data: %w", err)
			c.log.Warn("historical fetch failed",
				zap.Int("store_id", storeID),
				zap.Int("attempt", attempt),
				zap.Error(err))
			if err := c.backoff(ctx, 2*time.Second*time.Duration(attempt)); err != nil {
				return nil, err
			}
			continue
		}
		if resp.StatusCode() == 200 {
			return payload, nil
		}

		apiErr := classify(resp.StatusCode(), resp.String())
		lastErr = apiErr
		if !apiErr.Transient || attempt == c.maxRetries {
			return nil, apiErr
		}

		c.log.Warn("historical fetch retrying",
			zap.Int("store_id", storeID),
			zap.Int("status", apiErr.Status),
			zap.Int("attempt", attempt))

		var wait error
		switch apiErr.Status {
		case 429:
			wait = c.limiter.reset(ctx)
		case 404:
			wait = c.backoff(ctx, 2*time.Second*time.Duration(attempt))
		default:
			wait = c.backoff(ctx, 5*time.Second*time.Duration(attempt))
		}
		if wait != nil {
			return nil, wait
		}
	}

	return nil, lastErr
}

// authed builds a request carrying the bearer token. A token failure
// surfaces here as a credential or network error instead of going out
// unauthenticated and coming back as a vendor 401.
func (c *Client) authed(ctx context.Context) (*resty.Request, error) {
	token, err := c.authToken(ctx)
	if err != nil {
		return nil, err
	}
	return c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("Authorization", token), nil
}

func (c *Client) backoff(ctx context.Context, d time.Duration) error {
	return c.sleep(ctx, d)
}
