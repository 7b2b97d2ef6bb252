package teller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"
)

const (
	mimeJSON     = "application/json"
	headerAccept = "Accept"
)

// Param is one query-string entry. Value may be a string, bool, integer or
// float (or a pointer to one); nil, nil pointers and empty strings are omitted.
type Param struct {
	Name  string
	Value any
}

// Executor performs single GET requests against the Teller API.
type Executor struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewExecutor returns an Executor bound to baseURL. The timeout is applied per
// request through the request context, not through http.Client.Timeout, so that
// expiry can be told apart from other transport failures.
func NewExecutor(baseURL string, timeout time.Duration, httpClient *http.Client) *Executor {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Executor{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: httpClient,
	}
}

// Get issues GET {baseURL}{path}?{params} and decodes a 2xx JSON body into out.
func (e *Executor) Get(ctx context.Context, path string, params []Param, out any) error {
	target, err := e.buildURL(path, params)
	if err != nil {
		return &TransportError{Path: path, Err: err}
	}

	reqCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return &TransportError{Path: path, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set(headerAccept, mimeJSON)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return e.classify(ctx, reqCtx, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return e.classify(ctx, reqCtx, path, readErr)
		}
		return &RequestFailedError{Path: path, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if decodeErr := json.NewDecoder(resp.Body).Decode(out); decodeErr != nil {
		return e.classify(ctx, reqCtx, path, fmt.Errorf("decode response: %w", decodeErr))
	}
	return nil
}

// classify maps a failure to RequestTimedOutError when the executor's own
// deadline fired, and to TransportError otherwise. A caller context that was
// already done (cancelled or past its own deadline) is a TransportError.
func (e *Executor) classify(ctx, reqCtx context.Context, path string, err error) error {
	if ctx.Err() == nil && errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return &RequestTimedOutError{Path: path, Timeout: e.timeout}
	}
	return &TransportError{Path: path, Err: err}
}

func (e *Executor) buildURL(path string, params []Param) (string, error) {
	u, err := url.Parse(e.baseURL + path)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	u.RawQuery = EncodeQuery(params)
	return u.String(), nil
}

// EncodeQuery serializes params in insertion order, skipping absent values.
func EncodeQuery(params []Param) string {
	var b strings.Builder
	for _, p := range params {
		value, ok := stringifyParam(p.Value)
		if !ok {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(value))
	}
	return b.String()
}

// stringifyParam reports false for values that must not be sent.
func stringifyParam(v any) (string, bool) {
	if v == nil {
		return "", false
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.String:
		s := rv.String()
		return s, s != ""
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), true
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), true
	default:
		s := fmt.Sprint(rv.Interface())
		return s, s != ""
	}
}
