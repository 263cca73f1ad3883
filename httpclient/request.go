package httpclient

// Request describes an outbound HTTP request.
type Request struct {
	// Method defaults to GET.
	Method string
	URL    string
	// Headers are merged over the client defaults.
	Headers map[string]string
}

// Response is the result of an HTTP request.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
