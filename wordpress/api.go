package wordpress

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Connection describes one WordPress site reachable over its REST API.  It's built once, by
// whoever collects the credentials, and never mutated afterwards.
type Connection struct {
	BaseURL string
	// CredentialToken is base64("username:application password"), sent as-is after "Basic ".
	CredentialToken string
	// ProxyURL is an optional forwarding proxy prepended to every outgoing URL.
	ProxyURL    string
	DisplayName string
}

// BasicToken builds the opaque credential token from a username and application password.
func BasicToken(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}

func NewAPI(conn Connection) (*API, error) {
	if conn.BaseURL == "" {
		return nil, fmt.Errorf("wordpress: configure the site URL for %q", conn.DisplayName)
	}
	if conn.CredentialToken == "" {
		return nil, fmt.Errorf("wordpress: credential token for %q is empty, please check auth-token-cmd", conn.DisplayName)
	}

	u, err := url.ParseRequestURI(strings.TrimRight(conn.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't parse site URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("wordpress: site URL %q must be absolute", conn.BaseURL)
	}

	a := &API{
		BaseURI:     u,
		ProxyURL:    conn.ProxyURL,
		DisplayName: conn.DisplayName,
		token:       conn.CredentialToken,
	}
	a.Client = &http.Client{}

	return a, nil
}

type API struct {
	// Root of the WordPress site, e.g. https://example.com or https://example.com/blog
	BaseURI *url.URL

	// Optional CORS-style forwarding proxy, e.g. https://proxy.example.com/
	ProxyURL string

	DisplayName string

	// An HTTP client - you can substitute VCR or whatnot.
	Client *http.Client

	token string
}

// Proxied reports whether requests from this API go through a forwarding proxy.
func (api *API) Proxied() bool {
	return api.ProxyURL != ""
}

func (api *API) String() string {
	if api.DisplayName != "" {
		return fmt.Sprintf("%s (%s)", api.DisplayName, api.BaseURI)
	}
	return api.BaseURI.String()
}
