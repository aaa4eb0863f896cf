package onedrive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// OData query option names.
const (
	QueryExpand  = "$expand"
	QuerySelect  = "$select"
	QueryFilter  = "$filter"
	QueryTop     = "$top"
	QuerySkip    = "$skip"
	QueryOrderBy = "$orderby"
)

// QueryOption is a single name=value pair appended to a request URL.
type QueryOption struct {
	Name  string
	Value string
}

// baseRequest is the immutable state shared by all request kinds. Builder
// methods return a modified copy and never touch the receiver's options.
type baseRequest struct {
	client  *Client
	url     string
	options []QueryOption
}

func newBaseRequest(c *Client, requestURL string, options []QueryOption) baseRequest {
	return baseRequest{
		client:  c,
		url:     requestURL,
		options: append([]QueryOption(nil), options...),
	}
}

func (r baseRequest) with(opt QueryOption) baseRequest {
	options := make([]QueryOption, len(r.options), len(r.options)+1)
	copy(options, r.options)
	r.options = append(options, opt)
	return r
}

// QueryOptions returns a copy of the options in the order they were added.
func (r baseRequest) QueryOptions() []QueryOption {
	return append([]QueryOption(nil), r.options...)
}

// RequestURL returns the URL with every query option appended. A query string
// already present on the base URL, as on continuation links, is kept as is.
func (r baseRequest) RequestURL() string {
	if len(r.options) == 0 {
		return r.url
	}
	var b strings.Builder
	b.WriteString(r.url)
	sep := "?"
	if strings.Contains(r.url, "?") {
		sep = "&"
	}
	for _, opt := range r.options {
		b.WriteString(sep)
		sep = "&"
		b.WriteString(opt.Name)
		b.WriteByte('=')
		b.WriteString(escapeQueryValue(opt.Value))
	}
	return b.String()
}

func escapeQueryValue(value string) string {
	escaped := url.QueryEscape(value)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	escaped = strings.ReplaceAll(escaped, "%2C", ",")
	escaped = strings.ReplaceAll(escaped, "%24", "$")
	return escaped
}

// send performs one HTTP exchange. payload, when non-nil, is serialized as
// the JSON body. The response body is decoded into result when result is
// non-nil and the body is not empty; decoded reports whether that happened.
func (r baseRequest) send(ctx context.Context, method string, payload any, result any, target string) (decoded bool, err error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, cancelled(ctxErr)
	}

	requestURL := r.RequestURL()
	var body []byte
	contentType := ""
	if payload != nil {
		body, err = r.client.serializer.Encode(payload)
		if err != nil {
			return false, fmt.Errorf("encoding %s request body: %w", target, err)
		}
		contentType = ContentTypeJSON
	}

	res, err := r.client.apiCall(ctx, method, requestURL, contentType, body)
	if err != nil {
		return false, err
	}
	defer closeBodySafely(res.Body, r.client.logger, target)

	data, err := io.ReadAll(res.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, cancelled(ctxErr)
		}
		return false, &TransportError{Method: method, URL: requestURL, Err: fmt.Errorf("reading response body: %w", err)}
	}
	if result == nil || isEmptyBody(data) {
		return false, nil
	}
	if err := r.client.serializer.Decode(data, result); err != nil {
		return false, &DecodeError{Target: target, Err: err}
	}
	return true, nil
}

// isEmptyBody reports whether data carries no entity: nothing but whitespace
// or a JSON null.
func isEmptyBody(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
