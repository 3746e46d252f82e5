// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package esi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/tidwall/gjson"
)

const (
	DefaultBaseURL   = "https://esi.evetech.net/latest"
	DefaultUserAgent = "evectl (+https://github.com/staranto/evectl)"
	DefaultTimeout   = 30 * time.Second
)

// Client talks to ESI.
type Client struct {
	baseURL   string
	userAgent string
	token     string
	http      *http.Client
	logger    log.Interface
}

// Option configures a Client.
type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithToken sets the bearer token sent to authenticated endpoints.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l log.Interface) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient returns a client using a pooled transport and DefaultTimeout.
func NewClient(opts ...Option) *Client {
	hc := cleanhttp.DefaultPooledClient()
	hc.Timeout = DefaultTimeout

	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		http:      hc,
		logger:    log.Log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the ESI root the client sends requests to.
func (c *Client) BaseURL() string { return c.baseURL }

// get performs a GET of path, decodes a 200 response into out and returns
// the response headers.
func (c *Client) get(
	ctx context.Context,
	op string,
	path string,
	query url.Values,
	auth bool,
	out any,
) (http.Header, error) {
	if auth && c.token == "" {
		return nil, &APIError{Operation: op, Err: ErrNoToken}
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &APIError{Operation: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if auth {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debugf("GET %s", u)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &APIError{Operation: op, Err: err}
	}
	defer resp.Body.Close()

	var body bytes.Buffer
	if _, err := body.ReadFrom(resp.Body); err != nil {
		return nil, &APIError{Operation: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    gjson.GetBytes(body.Bytes(), "error").String(),
		}
	}

	if err := json.Unmarshal(body.Bytes(), out); err != nil {
		return nil, &APIError{Operation: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return resp.Header, nil
}

func getOne[T any](ctx context.Context, c *Client, op string, path string, auth bool) (T, error) {
	var v T
	_, err := c.get(ctx, op, path, nil, auth, &v)
	return v, err
}

func (c *Client) Station(ctx context.Context, id int32) (Station, error) {
	return getOne[Station](ctx, c, fmt.Sprintf("get_station %d", id), fmt.Sprintf("/universe/stations/%d/", id), false)
}

// Structure needs a token with the structures scope.
func (c *Client) Structure(ctx context.Context, id int64) (Structure, error) {
	return getOne[Structure](ctx, c, fmt.Sprintf("get_structure %d", id), fmt.Sprintf("/universe/structures/%d/", id), true)
}

func (c *Client) System(ctx context.Context, id int32) (System, error) {
	return getOne[System](ctx, c, fmt.Sprintf("get_system %d", id), fmt.Sprintf("/universe/systems/%d/", id), false)
}

func (c *Client) Constellation(ctx context.Context, id int32) (Constellation, error) {
	return getOne[Constellation](ctx, c, fmt.Sprintf("get_constellation %d", id), fmt.Sprintf("/universe/constellations/%d/", id), false)
}

func (c *Client) Region(ctx context.Context, id int32) (Region, error) {
	return getOne[Region](ctx, c, fmt.Sprintf("get_region %d", id), fmt.Sprintf("/universe/regions/%d/", id), false)
}

func (c *Client) Type(ctx context.Context, id int32) (Type, error) {
	return getOne[Type](ctx, c, fmt.Sprintf("get_type %d", id), fmt.Sprintf("/universe/types/%d/", id), false)
}

func (c *Client) Corporation(ctx context.Context, id int32) (Corporation, error) {
	return getOne[Corporation](ctx, c, fmt.Sprintf("get_corporation %d", id), fmt.Sprintf("/corporations/%d/", id), false)
}

func (c *Client) Alliance(ctx context.Context, id int32) (Alliance, error) {
	return getOne[Alliance](ctx, c, fmt.Sprintf("get_alliance %d", id), fmt.Sprintf("/alliances/%d/", id), false)
}

// Search runs a character search. It needs a token.
func (c *Client) Search(ctx context.Context, key SearchKey) (SearchResult, error) {
	q := url.Values{}
	q.Set("categories", key.Categories)
	q.Set("search", key.Search)
	if key.Strict != StrictUnset {
		q.Set("strict", key.Strict.String())
	}

	var v SearchResult
	_, err := c.get(ctx, "search", fmt.Sprintf("/characters/%d/search/", key.CharacterID), q, true, &v)
	return v, err
}

func (c *Client) MarketPrices(ctx context.Context) ([]PriceItem, error) {
	return getOne[[]PriceItem](ctx, c, "get_market_prices", "/markets/prices/", false)
}

func (c *Client) IndustrialSystems(ctx context.Context) ([]IndustrialSystem, error) {
	return getOne[[]IndustrialSystem](ctx, c, "get_industry_systems", "/industry/systems/", false)
}

func (c *Client) RegionIDs(ctx context.Context) ([]int32, error) {
	return getOne[[]int32](ctx, c, "get_region_ids", "/universe/regions/", false)
}

// MarketOrders returns every order of one side of a region's market,
// following the X-Pages header across pages.
func (c *Client) MarketOrders(ctx context.Context, key MarketOrderKey) ([]MarketOrder, error) {
	op := fmt.Sprintf("get_market_orders %s", key)
	path := fmt.Sprintf("/markets/%d/orders/", key.RegionID)

	var orders []MarketOrder
	for page, pages := 1, 1; page <= pages; page++ {
		q := url.Values{}
		q.Set("order_type", key.OrderType.query())
		q.Set("page", strconv.Itoa(page))

		var batch []MarketOrder
		header, err := c.get(ctx, op, path, q, false, &batch)
		if err != nil {
			return nil, err
		}
		orders = append(orders, batch...)

		if page == 1 {
			if n, err := strconv.Atoi(header.Get("X-Pages")); err == nil && n > 1 {
				pages = n
			}
		}
	}

	return orders, nil
}
