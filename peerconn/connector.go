// Package peerconn probes a list of candidate peer addresses and yields
// connected TCP streams, one at a time, through a channel-shaped
// iterator (spec.md §4.4, C4: "connect(peers) -> iterator<Stream>").
// Two strategies are provided: Sequential, a simple ordered blocking
// dial, and Parallel, a non-blocking connect-then-poll strategy that
// probes every candidate at once and yields each as it becomes ready.
// Neither strategy treats "nothing responded" as an error: the returned
// channel is simply closed empty, mirroring the original's plain
// iterator that yields zero items in that case. Callers that need to
// know no peer ever responded track that themselves, as
// cmd/bitpeer/main.go does.
package peerconn

import (
	"fmt"
	"net"
	"time"
)

// DefaultConnectTimeout bounds how long a single candidate is given to
// complete its TCP handshake before being abandoned.
const DefaultConnectTimeout = 5 * time.Second

// NoResponsivePeerError reports that every candidate address failed to
// connect, or that every stream a connector yielded was rejected by the
// caller (e.g. failed handshake or was not a seed).
type NoResponsivePeerError struct{ Attempted int }

func (e NoResponsivePeerError) Error() string {
	return fmt.Sprintf("peerconn: no usable peer among %d candidates", e.Attempted)
}

// ProgressFunc is invoked once per resolved probe (success or failure),
// reporting the address just resolved and the running count of
// candidates resolved so far.
type ProgressFunc func(addr string, probed int)

// dialTCP resolves and connects to addr without blocking past timeout.
func dialTCP(addr string, timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout("tcp", addr, timeout)
}
