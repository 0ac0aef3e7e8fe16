package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

type requestOptions struct {
	method      string
	body        io.Reader
	contentType string
	// anonymous requests go out without the Authorization header.
	anonymous bool
	header    http.Header
}

type response struct {
	body   []byte
	header http.Header
}

func (api *API) get(ctx context.Context, ep *url.URL) (*response, error) {
	return api.request(ctx, ep, requestOptions{method: http.MethodGet})
}

func (api *API) postJSON(ctx context.Context, ep *url.URL, payload any) (*response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't marshal request body: %w", err)
	}
	return api.request(ctx, ep, requestOptions{
		method:      http.MethodPost,
		body:        bytes.NewReader(body),
		contentType: "application/json",
	})
}

// request performs one call through the proxy, if any.  A missing response becomes a
// ConnectivityError and a non-2xx one an HTTPStatusError; both are returned unwrapped so callers
// can match on them directly.
func (api *API) request(ctx context.Context, ep *url.URL, opts requestOptions) (*response, error) {
	if opts.method == "" {
		opts.method = http.MethodGet
	}

	target := ProxiedURL(ep.String(), api.ProxyURL)
	req, err := http.NewRequestWithContext(ctx, opts.method, target, opts.body)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't instantiate http request: %w", err)
	}

	req.Header.Add("Accept", "application/json, */*")
	for k, vs := range opts.header {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if opts.contentType != "" {
		req.Header.Set("Content-Type", opts.contentType)
	}
	if !opts.anonymous && api.token != "" {
		req.Header.Set("Authorization", "Basic "+api.token)
	}

	resp, err := api.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("wordpress: request to %s abandoned: %w", ep.String(), ctx.Err())
		}
		return nil, &ConnectivityError{
			URL:     ep.String(),
			Proxied: api.Proxied(),
			Err:     err,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("wordpress: couldn't read http response body: %w", err)
	}

	if err := resp.Body.Close(); err != nil {
		return nil, fmt.Errorf("wordpress: couldn't close response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPStatusError{
			URL:        ep.String(),
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    errorMessage(body, resp.StatusCode),
		}
	}

	return &response{body: body, header: resp.Header}, nil
}

// errorMessage digs the "message" out of a WordPress error body:
// {"code":"rest_forbidden","message":"Sorry, you are not allowed to do that.","data":{"status":401}}
func errorMessage(body []byte, statusCode int) string {
	var e struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP error! status: %d", statusCode)
}

func decode[T any](resp *response) (*T, error) {
	var v T
	if err := json.Unmarshal(resp.body, &v); err != nil {
		return nil, fmt.Errorf("wordpress: couldn't parse json response: %w", err)
	}
	return &v, nil
}
