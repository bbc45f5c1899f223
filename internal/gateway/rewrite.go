package gateway

import (
	"bytes"
	"io"
	"net/http"
	"strings"
)

// rewriteForward builds the request handed into a tenant's execution
// context: same method, headers, and query as the original, with any
// tenant path prefix stripped. The body comes from a buffered copy so a
// deploy-and-retry cycle can replay it.
func rewriteForward(r *http.Request, route Route, body []byte) *http.Request {
	fwd := r.Clone(r.Context())

	if route.StripPrefix != "" {
		path := strings.TrimPrefix(fwd.URL.Path, route.StripPrefix)
		if path == "" {
			path = "/"
		}
		fwd.URL.Path = path
		fwd.URL.RawPath = ""
	}

	if len(body) > 0 {
		fwd.Body = io.NopCloser(bytes.NewReader(body))
		fwd.ContentLength = int64(len(body))
		fwd.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
	} else {
		fwd.Body = http.NoBody
		fwd.ContentLength = 0
		fwd.GetBody = nil
	}

	return fwd
}
