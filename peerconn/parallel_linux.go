//go:build linux

package peerconn

import (
	"net"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Parallel probes every address in addrs at once using non-blocking
// connect plus epoll readiness polling, sending each peer to the
// returned channel as its TCP handshake completes. The channel is
// closed once every candidate has either connected, errored, or the
// shared timeout has elapsed. onProgress, if non-nil, is invoked once
// per resolved candidate (successful or not).
func Parallel(addrs []string, timeout time.Duration, onProgress ProgressFunc) (<-chan net.Conn, error) {
	if timeout == 0 {
		timeout = DefaultConnectTimeout
	}

	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, err
	}

	pending := make(map[int]string, len(addrs))
	for _, addr := range addrs {
		fd, err := connectNonblocking(addr)
		if err != nil {
			log.WithFields(logrus.Fields{"addr": addr, "err": err}).Debug("peer connect failed")
			continue
		}
		ev := unix.EpollEvent{Events: unix.EPOLLOUT, Fd: int32(fd)}
		if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
			unix.Close(fd)
			continue
		}
		pending[fd] = addr
	}
	if len(pending) == 0 {
		unix.Close(epfd)
		out := make(chan net.Conn)
		close(out)
		return out, nil
	}

	out := make(chan net.Conn)
	go func() {
		defer close(out)
		defer unix.Close(epfd)
		defer func() {
			for fd := range pending {
				unix.Close(fd)
			}
		}()

		deadline := time.Now().Add(timeout)
		events := make([]unix.EpollEvent, 64)
		probed := 0

		for len(pending) > 0 {
			remaining := int(time.Until(deadline).Milliseconds())
			if remaining <= 0 {
				return
			}
			n, err := unix.EpollWait(epfd, events, remaining)
			if err != nil {
				if err == unix.EINTR {
					continue
				}
				return
			}
			if n == 0 {
				return // deadline reached
			}

			for i := 0; i < n; i++ {
				fd := int(events[i].Fd)
				addr := pending[fd]
				delete(pending, fd)
				unix.EpollCtl(epfd, unix.EPOLL_CTL_DEL, fd, nil)

				probed++
				if onProgress != nil {
					onProgress(addr, probed)
				}

				errno, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
				if err != nil || errno != 0 {
					unix.Close(fd)
					continue
				}

				conn, err := finishConnect(fd, addr)
				if err != nil {
					continue
				}
				out <- conn
			}
		}
	}()

	return out, nil
}

func connectNonblocking(addr string) (int, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return -1, err
	}

	var domain int
	var sa unix.Sockaddr
	if ip4 := tcpAddr.IP.To4(); ip4 != nil {
		domain = unix.AF_INET
		var sa4 unix.SockaddrInet4
		copy(sa4.Addr[:], ip4)
		sa4.Port = tcpAddr.Port
		sa = &sa4
	} else {
		domain = unix.AF_INET6
		var sa6 unix.SockaddrInet6
		copy(sa6.Addr[:], tcpAddr.IP.To16())
		sa6.Port = tcpAddr.Port
		sa = &sa6
	}

	fd, err := unix.Socket(domain, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		return -1, err
	}

	if err := unix.Connect(fd, sa); err != nil && err != unix.EINPROGRESS {
		unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

// finishConnect switches fd back to blocking mode and wraps it as a
// net.Conn, per the pattern the original implementation follows before
// handing a socket off to the rest of the pipeline.
func finishConnect(fd int, addr string) (net.Conn, error) {
	if err := unix.SetNonblock(fd, false); err != nil {
		unix.Close(fd)
		return nil, err
	}
	file := os.NewFile(uintptr(fd), addr)
	conn, err := net.FileConn(file)
	file.Close()
	if err != nil {
		return nil, err
	}
	return conn, nil
}
