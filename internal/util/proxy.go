package util

import (
	"crypto/tls"
	"net/http"
	"net/url"
	"strings"

	"verilens/internal/model"
)

// NewTransport builds the outbound HTTP transport from the HTTP config:
// configured proxies with no-proxy exclusions, falling back to the process
// environment, and optional TLS verification skip for intercepting proxies.
func NewTransport(cfg model.HTTPConfig) *http.Transport {
	transport := &http.Transport{
		Proxy: NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
	}
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return transport
}

// NewProxyFunc selects a proxy per request. Explicit proxy URLs win over the
// environment; hosts matching a noProxy entry bypass the proxy entirely.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	exclusions := splitNoProxy(noProxy)

	return func(req *http.Request) (*url.URL, error) {
		if hostExcluded(req.URL.Hostname(), exclusions) {
			return nil, nil
		}
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}

func splitNoProxy(noProxy string) []string {
	var hosts []string
	for _, part := range strings.Split(noProxy, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part != "" {
			hosts = append(hosts, strings.TrimPrefix(part, "."))
		}
	}
	return hosts
}

// hostExcluded reports whether host matches an exclusion exactly or as a
// domain suffix: "example.com" covers "api.example.com"
func hostExcluded(host string, exclusions []string) bool {
	host = strings.ToLower(host)
	for _, excl := range exclusions {
		if host == excl || strings.HasSuffix(host, "."+excl) {
			return true
		}
	}
	return false
}
