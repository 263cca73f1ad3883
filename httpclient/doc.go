// Package httpclient downloads remote source files.
//
// The Client classifies failures (timeout, connection, status codes) into
// *Error values, retries the retryable ones through resilience.Retry and caps
// response bodies at a configured size.
//
//	client, err := httpclient.New(httpclient.Config{
//	    Timeout: 30 * time.Second,
//	    Auth:    httpclient.AuthConfig{Type: httpclient.AuthBearer, Token: token},
//	})
//	body, err := client.Get(ctx, "https://example.com/export.csv")
package httpclient
