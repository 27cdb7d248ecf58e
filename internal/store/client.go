package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/mkravets/datalift/internal/model"
	"github.com/mkravets/datalift/internal/util"
)

// selectPageSize is the number of rows fetched per read-back request.
const selectPageSize = 1000

// Client talks to the hosted relational store over its table-oriented HTTP
// API. It is constructed once per pipeline run and passed by reference into
// the stages that need it; there is no process-wide client state.
type Client struct {
	baseURL    string
	key        string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient builds a client from configuration. A missing endpoint or access
// key is a fatal configuration error, not a per-call error.
func NewClient(cfg model.StoreConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, &model.ConfigError{Field: "store.url", Reason: "required"}
	}
	if cfg.Key == "" {
		return nil, &model.ConfigError{Field: "store.key", Reason: "required"}
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		key:     cfg.Key,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy),
			},
		},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}, nil
}

// Insert sends records to the table as a single insert operation. The
// response is checked twice: once for the transport/status outcome and once
// for an error payload embedded in the body, since the API can report success
// at the transport layer while encoding a semantic failure.
func (c *Client) Insert(ctx context.Context, table string, records []model.Record) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &TransportError{Op: "insert", URL: c.tableURL(table), Err: err}
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}

	url := c.tableURL(table)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: "insert", URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &TransportError{Op: "insert", URL: url, Err: err}
	}

	return classifyResponse(resp.StatusCode, body)
}

// SelectAll reads the whole table back, all columns, paginating with Range
// headers until a short page signals the end.
func (c *Client) SelectAll(ctx context.Context, table string) ([]model.Record, error) {
	var all []model.Record
	for offset := 0; ; offset += selectPageSize {
		page, err := c.selectPage(ctx, table, offset, selectPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < selectPageSize {
			return all, nil
		}
	}
}

func (c *Client) selectPage(ctx context.Context, table string, offset, limit int) ([]model.Record, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{Op: "select", URL: c.tableURL(table), Err: err}
	}

	url := c.tableURL(table) + "?select=*"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Range-Unit", "items")
	req.Header.Set("Range", fmt.Sprintf("%d-%d", offset, offset+limit-1))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "select", URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "select", URL: url, Err: err}
	}

	if resp.StatusCode >= 400 {
		if semErr := parseErrorBody(resp.StatusCode, body); semErr != nil {
			return nil, semErr
		}
		return nil, &SemanticError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	var page []model.Record
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, &SemanticError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("unexpected response body: %v", err)}
	}
	return page, nil
}

func (c *Client) tableURL(table string) string {
	return c.baseURL + "/rest/v1/" + table
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/json")
}

// errorBody is the error payload shape the store embeds in responses.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// classifyResponse turns a response into nil, or a SemanticError. An error
// payload in the body counts as failure even under a 2xx status.
func classifyResponse(status int, body []byte) error {
	if status >= 400 {
		if semErr := parseErrorBody(status, body); semErr != nil {
			return semErr
		}
		return &SemanticError{StatusCode: status, Message: http.StatusText(status)}
	}
	if semErr := parseErrorBody(status, body); semErr != nil {
		return semErr
	}
	return nil
}

func parseErrorBody(status int, body []byte) *SemanticError {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		if status >= 400 {
			return &SemanticError{StatusCode: status, Message: string(bytes.TrimSpace(body))}
		}
		return nil
	}
	if eb.Message == "" && eb.Code == "" {
		if status >= 400 {
			return &SemanticError{StatusCode: status, Message: string(bytes.TrimSpace(body))}
		}
		return nil
	}
	return &SemanticError{StatusCode: status, Code: eb.Code, Message: eb.Message, Details: eb.Details}
}
