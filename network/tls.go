package network

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

const dialTimeout = 30 * time.Second

// fingerprintTransport sends https traffic with a Chrome 120 ClientHello.
// h2 is attempted first; requests without a body are retried over http/1.1
// when the h2 exchange fails. Plain http goes through the wrapped transport.
type fingerprintTransport struct {
	plain http.RoundTripper

	once sync.Once
	h2   *http2.Transport
	h1   *http.Transport
}

func (f *fingerprintTransport) init() {
	f.h2 = &http2.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			return dialFingerprint(ctx, network, addr, nil)
		},
	}
	f.h1 = &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialFingerprint(ctx, network, addr, []string{"http/1.1"})
		},
		IdleConnTimeout: 30 * time.Second,
	}
}

func (f *fingerprintTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		return f.plain.RoundTrip(req)
	}
	f.once.Do(f.init)

	resp, err := f.h2.RoundTrip(req)
	if err == nil {
		return resp, nil
	}
	if req.Body != nil && req.Body != http.NoBody {
		return nil, err
	}
	return f.h1.RoundTrip(req.Clone(req.Context()))
}

// dialFingerprint opens a TLS connection mimicking Chrome's handshake.
// A nil protos keeps Chrome's own ALPN list (h2, http/1.1).
func dialFingerprint(ctx context.Context, network, addr string, protos []string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	dialer := &net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	tlsConn := utls.UClient(conn, &utls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
		NextProtos: protos,
	}, utls.HelloChrome_120)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}

	return tlsConn, nil
}
