package peerconn

import (
	"testing"
	"time"
)

func TestParallelYieldsEveryResponsivePeer(t *testing.T) {
	first := mustListen(t)
	defer first.Close()
	second := mustListen(t)
	defer second.Close()

	addrs := []string{mustReserveClosedPort(t), first.Addr().String(), second.Addr().String()}

	var progressed []string
	out, err := Parallel(addrs, 2*time.Second, func(addr string, n int) {
		progressed = append(progressed, addr)
	})
	if err != nil {
		t.Fatalf("Parallel() error = %v", err)
	}

	got := map[string]bool{}
	for conn := range out {
		got[conn.RemoteAddr().String()] = true
		conn.Close()
	}

	want := map[string]bool{first.Addr().String(): true, second.Addr().String(): true}
	if len(got) != len(want) {
		t.Fatalf("got %d connections %v, want %v", len(got), got, want)
	}
	for addr := range want {
		if !got[addr] {
			t.Errorf("missing connection to %s", addr)
		}
	}
	if len(progressed) != len(addrs) {
		t.Errorf("progress callback fired %d times, want %d", len(progressed), len(addrs))
	}
}

func TestParallelChannelClosesEmptyWhenAllUnresponsive(t *testing.T) {
	addrs := []string{mustReserveClosedPort(t), mustReserveClosedPort(t)}
	out, err := Parallel(addrs, time.Second, nil)
	if err != nil {
		t.Fatalf("Parallel() error = %v", err)
	}
	if _, ok := recvWithin(t, out, 2*time.Second); ok {
		t.Error("expected no connections and a closed channel")
	}
}

func TestParallelDoesNotHangPastTimeout(t *testing.T) {
	// 192.0.2.0/24 is reserved for documentation (RFC 5737) and never
	// routable, so connect attempts to it should simply time out.
	start := time.Now()
	out, err := Parallel([]string{"192.0.2.1:6881"}, 300*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("Parallel() error = %v", err)
	}
	if _, ok := recvWithin(t, out, 2*time.Second); ok {
		t.Error("expected no connections from an unroutable address")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Parallel took %v, expected to respect the timeout", elapsed)
	}
}
