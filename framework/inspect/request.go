package inspect

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/km-arc/go-wiring/framework/manifest"
)

const maxBody = 1 << 20 // 1 MB

// Request wraps *http.Request with the helpers the handlers need.
type Request struct {
	raw *http.Request
}

// NewRequest wraps a standard *http.Request.
func NewRequest(r *http.Request) *Request {
	return &Request{raw: r}
}

// RouteParam returns a URL route parameter (chi).
func (req *Request) RouteParam(key string) string {
	return Param(req.raw, key)
}

// ContentType returns the Content-Type header value.
func (req *Request) ContentType() string {
	return req.raw.Header.Get("Content-Type")
}

// Manifest decodes the body as a manifest. YAML and HCL bodies are selected
// by Content-Type; anything else is read as JSON.
func (req *Request) Manifest() (*manifest.Manifest, error) {
	defer req.raw.Body.Close()
	body, err := io.ReadAll(io.LimitReader(req.raw.Body, maxBody+1))
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errors.New("empty request body")
	}
	if len(body) > maxBody {
		return nil, fmt.Errorf("request body exceeds %d bytes", maxBody)
	}

	ct := req.ContentType()
	switch {
	case strings.Contains(ct, "yaml"):
		return manifest.DecodeYAML(body, "request.yaml")
	case strings.Contains(ct, "hcl"):
		return manifest.DecodeHCL(body, "request.hcl")
	default:
		return manifest.DecodeJSON(body, "request.json")
	}
}
