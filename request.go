// request.go
// ----------
// The request façade: translates call-site intent into a Descriptor, adds
// the identification and session headers, fail-fast validates, and runs
// the chosen executor behind a Promise. No I/O happens until Execute.
package baas

import (
	"context"
	"io"
	"net/url"
	"strings"
	"time"
)

// Request builds and executes one API call. Builder methods return the
// receiver for chaining; nothing touches the network until Execute.
type Request struct {
	service *Service
	path    string

	method          string
	contentType     string
	data            any
	queryParams     map[string]string
	headers         map[string]string
	sessionToken    *string
	responseKind    ResponseKind
	receiveResponse bool
	rawMessage      bool
	useHTTP2        bool
	rangeStart      *int64
	rangeEnd        *int64
	ifMatch         string
	ifRange         string
	timeout         time.Duration
}

func newRequest(s *Service, path string) *Request {
	return &Request{
		service:     s,
		path:        path,
		method:      "GET",
		queryParams: map[string]string{},
		headers:     map[string]string{},
		useHTTP2:    s.cfg.EnableHTTP2,
		timeout:     s.cfg.timeout(),
	}
}

// SetMethod sets the HTTP verb.
func (r *Request) SetMethod(method string) *Request {
	r.method = method
	return r
}

// SetContentType sets the Content-Type header for the request body.
func (r *Request) SetContentType(contentType string) *Request {
	r.contentType = contentType
	return r
}

// SetData sets the request body. Strings and byte slices pass through
// untouched, readers are streamed, everything else is JSON-serialized.
func (r *Request) SetData(data any) *Request {
	r.data = data
	return r
}

// SetQueryParams merges params into the request query string.
func (r *Request) SetQueryParams(params map[string]string) *Request {
	for k, v := range params {
		r.queryParams[k] = v
	}
	return r
}

// SetQueryParam sets one query parameter.
func (r *Request) SetQueryParam(key, value string) *Request {
	r.queryParams[key] = value
	return r
}

// AddHeader adds a one-off request header.
func (r *Request) AddHeader(key, value string) *Request {
	r.headers[key] = value
	return r
}

// SetSessionToken overrides the service session token for this request
// only. An empty string suppresses the session header entirely.
func (r *Request) SetSessionToken(token string) *Request {
	r.sessionToken = &token
	return r
}

// SetResponseKind selects how the response body is decoded.
func (r *Request) SetResponseKind(kind ResponseKind) *Request {
	r.responseKind = kind
	return r
}

// SetReceiveResponse asks for status and headers to be captured alongside
// the body. With false the success value keeps the bare-body shape.
func (r *Request) SetReceiveResponse(enabled bool) *Request {
	r.receiveResponse = enabled
	return r
}

// SetRawMessage asks for the live response stream instead of a buffered
// body.
func (r *Request) SetRawMessage(enabled bool) *Request {
	r.rawMessage = enabled
	return r
}

// SetUseHTTP2 opts this request into the multiplexed session protocol.
func (r *Request) SetUseHTTP2(enabled bool) *Request {
	r.useHTTP2 = enabled
	return r
}

// SetRange requests a byte range. Either bound may be nil.
func (r *Request) SetRange(start, end *int64) *Request {
	r.rangeStart, r.rangeEnd = start, end
	return r
}

// SetIfMatch sets a quoted If-Match entity tag.
func (r *Request) SetIfMatch(etag string) *Request {
	r.ifMatch = etag
	return r
}

// SetIfRange sets a quoted If-Range entity tag.
func (r *Request) SetIfRange(etag string) *Request {
	r.ifRange = etag
	return r
}

// SetTimeout overrides the service default timeout for this request.
func (r *Request) SetTimeout(timeout time.Duration) *Request {
	r.timeout = timeout
	return r
}

// URL resolves the full request URL including the encoded query string.
func (r *Request) URL() (string, error) {
	base := strings.TrimSuffix(r.service.cfg.BaseURI, "/")
	full := base + "/1/" + r.service.cfg.TenantID + r.path
	if _, err := url.Parse(full); err != nil {
		return "", ErrConfiguration.Wrap(err)
	}
	if q := encodeQuery(r.queryParams); q != "" {
		full += "?" + q
	}
	return full, nil
}

// descriptor assembles the immutable Descriptor for this call. All
// configuration errors surface here, before any I/O.
func (r *Request) descriptor() (*Descriptor, error) {
	full, err := r.URL()
	if err != nil {
		return nil, err
	}
	body, stream, err := serializeBody(r.data)
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string, len(r.headers)+4)
	for k, v := range r.headers {
		headers[k] = v
	}
	headers[HeaderAppID] = r.service.cfg.AppID
	headers[HeaderAppKey] = r.service.cfg.AppKey
	token := r.service.SessionToken()
	if r.sessionToken != nil {
		token = *r.sessionToken
	}
	if token != "" {
		headers[HeaderSessionToken] = token
	}
	if r.contentType != "" {
		headers["Content-Type"] = r.contentType
	} else if r.data != nil {
		// Only JSON-serialized bodies get the JSON default; strings, byte
		// slices, and readers pass through verbatim.
		switch r.data.(type) {
		case string, []byte, io.Reader:
		default:
			headers["Content-Type"] = "application/json"
		}
	}
	if rangeHeader, err := rangeValue(r.rangeStart, r.rangeEnd); err != nil {
		return nil, err
	} else if rangeHeader != "" {
		headers["Range"] = rangeHeader
	}
	if r.ifMatch != "" {
		headers["If-Match"] = quoteETag(r.ifMatch)
	}
	if r.ifRange != "" {
		headers["If-Range"] = quoteETag(r.ifRange)
	}

	return &Descriptor{
		Method:          r.method,
		URL:             full,
		Headers:         headers,
		Body:            body,
		BodyStream:      stream,
		Timeout:         r.timeout,
		ResponseKind:    r.responseKind,
		ReceiveResponse: r.receiveResponse,
		RawMessage:      r.rawMessage,
		UseHTTP2:        r.useHTTP2,
	}, nil
}

// Execute builds the descriptor and starts the exchange. Configuration
// errors are returned synchronously and never travel through the Promise.
func (r *Request) Execute(ctx context.Context) (*Promise, error) {
	d, err := r.descriptor()
	if err != nil {
		return nil, err
	}
	ex := r.service.executorFor(d)
	p := newPromise()
	go func() {
		resp, err := ex.Execute(ctx, d)
		if err != nil {
			p.reject(err)
			return
		}
		p.resolve(resp)
	}()
	return p, nil
}

// Do is Execute followed by Await.
func (r *Request) Do(ctx context.Context) (*Response, error) {
	p, err := r.Execute(ctx)
	if err != nil {
		return nil, err
	}
	return p.Await(ctx)
}
