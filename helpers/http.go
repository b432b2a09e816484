package helpers

import (
	"bufio"
	"bytes"
	"io"
	"net/http"
	"sync"
)

// MockHTTP is http.RoundTripper replaying canned responses.
// Fun takes precedence, then Err, then Header+Body.
// Every request is recorded with its body already read.
type MockHTTP struct {
	Fun    func(*http.Request) (*http.Response, error)
	Header []byte
	Body   []byte
	Err    error

	mu       sync.Mutex
	requests []MockRequest
}

type MockRequest struct {
	Req  *http.Request
	Body []byte
}

func (m *MockHTTP) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(body))
	}
	m.mu.Lock()
	m.requests = append(m.requests, MockRequest{Req: req, Body: body})
	m.mu.Unlock()

	if m.Fun != nil {
		return m.Fun(req)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	header := m.Header
	if header == nil {
		header = []byte("HTTP/1.0 200 OK\r\nContent-Type: application/json\r\n\r\n")
	}
	rb := make([]byte, 0, len(header)+len(m.Body))
	rb = append(rb, header...)
	rb = append(rb, m.Body...)
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(rb)), req)
}

func (m *MockHTTP) Requests() []MockRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	rs := make([]MockRequest, len(m.requests))
	copy(rs, m.requests)
	return rs
}
