// Package network provides the shared HTTP client used by the catalog and subtitle collaborators.
package network

import (
	"net/http"
	"sync"
	"time"

	"github.com/reel-cli/reel/constant"
	"github.com/reel-cli/reel/key"
	"github.com/spf13/viper"
)

var (
	client     *http.Client
	clientOnce sync.Once
)

// Client returns the process-wide HTTP client. The transport is chosen once,
// on first use, from the network.tls_fingerprint setting.
func Client() *http.Client {
	clientOnce.Do(func() {
		client = New(viper.GetBool(key.NetworkTLSFingerprint))
	})
	return client
}

// New builds a client with the tuned pool settings. When fingerprint is true,
// https requests are sent over a Chrome-like TLS handshake.
func New(fingerprint bool) *http.Client {
	var rt http.RoundTripper = newTransport()
	if fingerprint {
		rt = &fingerprintTransport{plain: rt}
	}
	return &http.Client{
		Timeout:   time.Minute,
		Transport: &userAgent{next: rt},
	}
}

// newTransport initializes a tuned http.Transport with pool and timeout parameters.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 32
	t.MaxIdleConnsPerHost = 8
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = time.Second
	return t
}

type userAgent struct {
	next http.RoundTripper
}

func (u *userAgent) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", constant.UserAgent)
	}
	return u.next.RoundTrip(req)
}
