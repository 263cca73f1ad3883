// Package testutil provides test doubles that follow the component lifecycle.
//
// A TestComponent is a component.Component with Reset, Snapshot and Restore
// added for test isolation. Two are provided:
//
//   - RedisComponent: an in-memory Redis server (miniredis) for bus tests
//   - FileServer: an HTTP server serving in-memory files for download tests
//
// Usage with automatic cleanup:
//
//	func TestDownload(t *testing.T) {
//	    srv := testutil.NewFileServer()
//	    testutil.T(t).Setup(srv)
//	    srv.Put("/people.csv", []byte("name\nAlice"))
//	    // srv.URL("/people.csv") is served until the test ends
//	}
package testutil
