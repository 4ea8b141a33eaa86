// Package httpclient builds the outbound HTTP client used for provider APIs. Host
// lookups go through an in-process DNS cache refreshed on a ticker.
package httpclient

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/rs/dnscache"
)

const (
	DefaultTimeout    = 10 * time.Second
	DefaultDNSRefresh = 5 * time.Minute
)

// Client is an *http.Client whose dialer resolves through a DNS cache.
type Client struct {
	*http.Client
	resolver *dnscache.Resolver
	stop     chan struct{}
}

// New creates a client. Close stops the cache refresher.
func New(timeout, refresh time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if refresh <= 0 {
		refresh = DefaultDNSRefresh
	}

	c := &Client{
		resolver: &dnscache.Resolver{},
		stop:     make(chan struct{}),
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = c.dialContext
	c.Client = &http.Client{Timeout: timeout, Transport: transport}

	go c.refresh(refresh)
	return c
}

func (c *Client) refresh(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.resolver.Refresh(true)
		case <-c.stop:
			return
		}
	}
}

func (c *Client) dialContext(ctx context.Context, network, address string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return nil, err
	}

	ips, err := c.resolver.LookupHost(ctx, host)
	if err != nil {
		return nil, err
	}
	if len(ips) == 0 {
		return nil, &net.DNSError{Err: "no IP addresses found", Name: host}
	}

	dialer := &net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}
	return dialer.DialContext(ctx, network, net.JoinHostPort(ips[0], port))
}

// Close stops the background refresher. It is safe to call once.
func (c *Client) Close() {
	close(c.stop)
}
