package peerconn

import (
	"net"
	"time"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "peerconn")

// Sequential dials each address in addrs, in order, sending every
// successful connection to the returned channel as it is made. The
// channel is closed once every address has been tried. Callers that
// only need the first usable peer can simply stop ranging over it;
// abandoned candidates are never dialed.
func Sequential(addrs []string, timeout time.Duration) (<-chan net.Conn, error) {
	if timeout == 0 {
		timeout = DefaultConnectTimeout
	}

	out := make(chan net.Conn)
	go func() {
		defer close(out)
		for i, addr := range addrs {
			conn, err := dialTCP(addr, timeout)
			if err != nil {
				log.WithFields(logrus.Fields{"addr": addr, "err": err}).Debug("peer dial failed")
				continue
			}
			log.WithField("addr", addr).WithField("attempt", i+1).Debug("peer dial succeeded")
			out <- conn
		}
	}()
	return out, nil
}
