package wire

import (
	"net"
	"time"

	"github.com/jrmo/bitpeer/ids"
)

// HandshakeTimeout bounds the synchronous handshake round trip.
const HandshakeTimeout = 10 * time.Second

// ReadTimeout bounds every in-session read; it covers keep-alive gaps.
const ReadTimeout = 60 * time.Second

// Channel is a framed, bidirectional message channel over one TCP
// connection to a peer. It exclusively owns conn for its lifetime.
type Channel struct {
	conn   net.Conn
	PeerID ids.PeerId
}

// Open performs the BitTorrent handshake over conn and returns a Channel
// ready to exchange framed messages. conn is closed if the handshake
// fails.
func Open(conn net.Conn, infoHash ids.Sha1, peerID ids.PeerId) (*Channel, error) {
	if err := conn.SetDeadline(time.Now().Add(HandshakeTimeout)); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Write(BuildHandshake(infoHash, peerID)); err != nil {
		conn.Close()
		return nil, err
	}
	remoteID, err := ReadHandshake(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := conn.SetDeadline(time.Time{}); err != nil {
		conn.Close()
		return nil, err
	}
	return &Channel{conn: conn, PeerID: remoteID}, nil
}

// Receive reads the next non-keepalive message, honouring ReadTimeout.
func (c *Channel) Receive() (*PeerMessage, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(ReadTimeout)); err != nil {
		return nil, err
	}
	return ReadMessage(c.conn)
}

// SendInterested sends an Interested message.
func (c *Channel) SendInterested() error {
	_, err := c.conn.Write(EncodeInterested())
	return err
}

// SendRequest sends a Request for (pieceIndex, offset, length).
func (c *Channel) SendRequest(pieceIndex, offset, length uint32) error {
	_, err := c.conn.Write(EncodeRequest(pieceIndex, offset, length))
	return err
}

// Close closes the underlying connection.
func (c *Channel) Close() error {
	return c.conn.Close()
}

// RemoteAddr returns the underlying connection's remote address.
func (c *Channel) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
