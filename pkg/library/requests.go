// Package library talks to the video service over HTTP.
// Every call is blocking and bounded by the client's timeout.
package library

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-errors/errors"
)

const DefaultTimeout = 60 * time.Second

var ErrNilHost = errors.Errorf("host is nil")

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Status     string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("unexpected status code: %s", e.Status)
	}
	return fmt.Sprintf("unexpected status code: %s: %s", e.Status, truncate(e.Body, 200))
}

// DecodeError is returned when a body is not the JSON the caller expected.
type DecodeError struct {
	Err  error
	Body []byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid JSON: %s", truncate(e.Body, 200))
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func truncate(b []byte, n int) string {
	s := string(b)
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

type Host url.URL

var DefaultHost = (*Host)(&url.URL{
	Scheme: "http",
	Host:   "localhost:8001",
})

func (h *Host) String() string {
	return (*url.URL)(h).String()
}

func (h *Host) Base() string {
	return fmt.Sprintf("%s://%s", h.Scheme, h.Host)
}

// FromString parses a server base URL, dropping trailing slashes so paths can be appended.
func FromString(s string) (*Host, error) {
	return parse(strings.TrimRight(s, "/"))
}

func parse(s string) (*Host, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("url must include scheme and host, got %q", s)
	}
	return (*Host)(u), nil
}

// WithPath appends path to the host's own path, so a server mounted under a prefix keeps it.
func (h *Host) WithPath(path string) *Host {
	if h == nil {
		return nil
	}
	p := *h
	p.Path = strings.TrimRight(p.Path, "/") + path
	p.RawPath = ""
	return &p
}

type Request struct {
	Host      *Host
	Method    string
	Data      any
	MarshalTo any
	Client    *http.Client
	Accept    string
}

func WithStruct(data any) func(*Request) {
	return func(r *Request) {
		r.Data = data
	}
}

func WithDest(dest any) func(*Request) {
	return func(r *Request) {
		r.MarshalTo = dest
	}
}

func WithClient(c *http.Client) func(*Request) {
	return func(r *Request) {
		r.Client = c
	}
}

func WithAccept(accept string) func(*Request) {
	return func(r *Request) {
		r.Accept = accept
	}
}

func NewRequest(h *Host, method string, opts ...func(*Request)) *Request {
	r := &Request{
		Host:   h,
		Method: method,
		Accept: "application/json",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Do sends the request and returns the raw body.
// When MarshalTo is set the body is decoded into it as JSON.
func (r *Request) Do() ([]byte, error) {
	if r.Host == nil {
		return nil, ErrNilHost
	}

	var buffer io.Reader
	switch d := r.Data.(type) {
	case nil:
	case []byte:
		buffer = bytes.NewReader(d)
	case io.Reader:
		buffer = d
	default:
		b, err := json.Marshal(r.Data)
		if err != nil {
			return nil, err
		}
		buffer = bytes.NewReader(b)
	}

	request, err := http.NewRequest(r.Method, r.Host.String(), buffer)
	if err != nil {
		return nil, err
	}

	if buffer != nil {
		request.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}
	if r.Accept != "" {
		request.Header.Set("Accept", r.Accept)
	}

	client := r.Client
	if client == nil {
		client = NewClient()
	}

	response, err := client.Do(request)
	if err != nil {
		return nil, err
	}
	defer closeResponseBody(response)

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, &StatusError{Status: response.Status, StatusCode: response.StatusCode, Body: body}
	}

	if r.MarshalTo != nil {
		if err := json.Unmarshal(body, r.MarshalTo); err != nil {
			return nil, &DecodeError{Err: err, Body: body}
		}
	}
	return body, nil
}

// NewClient returns an http.Client with DefaultTimeout.
func NewClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}

func closeResponseBody(response *http.Response) {
	if response != nil {
		if err := response.Body.Close(); err != nil {
			fmt.Println("Error closing response body:", err)
		}
	}
}
