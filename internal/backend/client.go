package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mswatii/cs2-tracker/internal/apierror"
	"github.com/mswatii/cs2-tracker/internal/logger"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

const userAgent = "cs2-tracker/1.0"

// Client talks to the tracker backend, which owns users, trackers, price
// polling and alert delivery. Calls are never retried.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *fasthttp.Client
	log     *logrus.Entry
}

// NewClient creates a backend client. A zero timeout lets calls wait until
// the context is done.
func NewClient(baseURL string, timeout time.Duration, log *logger.Log) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http: &fasthttp.Client{
			Name:                     userAgent,
			NoDefaultUserAgentHeader: true,
		},
		log: log.WithComponent("backend"),
	}
}

// BaseURL returns the backend root the client was built with
func (c *Client) BaseURL() string {
	return c.baseURL
}

// errorBody is the backend's error payload
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// do sends one request and decodes a JSON response into out (when non-nil)
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return apierror.Transport("request cancelled", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	uri := c.baseURL + path
	if len(query) > 0 {
		uri += "?" + query.Encode()
	}
	req.SetRequestURI(uri)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s %s body: %w", method, path, err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	start := time.Now()
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.http.DoDeadline(req, resp, deadline)
	} else if c.timeout > 0 {
		err = c.http.DoTimeout(req, resp, c.timeout)
	} else {
		err = c.http.Do(req, resp)
	}

	entry := c.log.WithFields(logrus.Fields{
		"method":      method,
		"path":        path,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Warn("backend request failed")
		return apierror.Transport(fmt.Sprintf("request to %s %s failed", method, path), err)
	}

	status := resp.StatusCode()
	entry.WithField("status", status).Debug("backend request")

	if status < 200 || status >= 300 {
		var eb errorBody
		_ = json.Unmarshal(resp.Body(), &eb)
		msg := eb.Message
		if msg == "" {
			msg = eb.Error
		}
		if status == fasthttp.StatusNotFound {
			return apierror.NotFound(msg)
		}
		return apierror.Remote(status, msg)
	}

	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return apierror.Transport(fmt.Sprintf("failed to parse %s %s response", method, path), err)
	}
	return nil
}
