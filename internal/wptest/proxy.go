package wptest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// Proxy is a forwarding proxy in the {proxy}/{target} style: the request path, minus its leading
// slash, is the URL to fetch.
type Proxy struct {
	*httptest.Server

	mu      sync.Mutex
	targets []string
}

func NewProxy() *Proxy {
	p := &Proxy{}
	p.Server = httptest.NewServer(http.HandlerFunc(p.forward))
	return p
}

// Targets lists the URLs forwarded so far.
func (p *Proxy) Targets() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.targets...)
}

func (p *Proxy) forward(w http.ResponseWriter, r *http.Request) {
	target := strings.TrimPrefix(r.RequestURI, "/")

	p.mu.Lock()
	p.targets = append(p.targets, target)
	p.mu.Unlock()

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target, r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	req.Header = r.Header.Clone()

	resp, err := http.DefaultTransport.RoundTrip(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	for k, vs := range resp.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	io.Copy(w, resp.Body)
}
