//go:build !linux

package peerconn

import (
	"net"
	"time"
)

// Parallel probes every address in addrs at once, sending each peer to
// the returned channel as soon as its dial completes. Platforms without
// epoll fall back to one goroutine per candidate racing a shared
// timeout; unlike the epoll-backed variant, a slow candidate cannot be
// cancelled once dialed, but every result is still forwarded the moment
// it arrives rather than batched until the slowest candidate resolves.
func Parallel(addrs []string, timeout time.Duration, onProgress ProgressFunc) (<-chan net.Conn, error) {
	if timeout == 0 {
		timeout = DefaultConnectTimeout
	}

	type result struct {
		addr string
		conn net.Conn
		err  error
	}

	results := make(chan result, len(addrs))
	for _, addr := range addrs {
		addr := addr
		go func() {
			conn, err := dialTCP(addr, timeout)
			results <- result{addr: addr, conn: conn, err: err}
		}()
	}

	out := make(chan net.Conn)
	go func() {
		defer close(out)
		probed := 0
		for i := 0; i < len(addrs); i++ {
			r := <-results
			probed++
			if onProgress != nil {
				onProgress(r.addr, probed)
			}
			if r.err != nil {
				continue
			}
			out <- r.conn
		}
	}()

	return out, nil
}
