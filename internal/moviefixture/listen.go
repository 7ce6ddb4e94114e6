package moviefixture

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Running is a fixture server listening on a real socket.
type Running struct {
	*Server
	URL string

	srv  *http.Server
	done chan error
}

// Start listens on addr (":0" picks a free port) and serves the fixture in
// the background. URL is the app entry point, with a trailing slash.
func Start(addr string, catalog *Catalog, opts Options) (*Running, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	s := New(catalog, opts)
	r := &Running{
		Server: s,
		URL:    "http://" + hostPort(ln.Addr()) + "/",
		srv: &http.Server{
			Handler:           s.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		done: make(chan error, 1),
	}
	go func() {
		err := r.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		r.done <- err
	}()
	s.logger.Info("fixture listening", "url", r.URL, "page_size", s.opts.PageSize,
		"latency_ms", s.opts.Latency.Milliseconds(), "fail_page_requests", s.opts.FailPageRequests)
	return r, nil
}

// Close shuts the server down, waiting for in-flight requests until ctx ends.
func (r *Running) Close(ctx context.Context) error {
	defer r.Server.Close()
	if err := r.srv.Shutdown(ctx); err != nil {
		return err
	}
	return <-r.done
}

// hostPort turns wildcard listen addresses into a loopback host browsers can
// reach.
func hostPort(a net.Addr) string {
	tcp, ok := a.(*net.TCPAddr)
	if !ok {
		return a.String()
	}
	if tcp.IP == nil || tcp.IP.IsUnspecified() {
		return net.JoinHostPort("127.0.0.1", fmt.Sprint(tcp.Port))
	}
	return net.JoinHostPort(tcp.IP.String(), fmt.Sprint(tcp.Port))
}
