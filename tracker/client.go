// Package tracker builds BitTorrent announce requests, issues them over
// HTTP, and decodes the bencoded peer list in the response.
package tracker

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/jrmo/bitpeer/bencode"
	"github.com/jrmo/bitpeer/ids"
)

// Timeout bounds the blocking HTTP GET issued against the tracker.
const Timeout = 30 * time.Second

// TrackerURLInvalidError wraps a malformed tracker URL.
type TrackerURLInvalidError struct{ URL string }

func (e TrackerURLInvalidError) Error() string {
	return fmt.Sprintf("tracker: invalid url %q", e.URL)
}

// TrackerHTTPFailureError wraps a transport-level failure reaching the
// tracker.
type TrackerHTTPFailureError struct{ Cause error }

func (e TrackerHTTPFailureError) Error() string {
	return fmt.Sprintf("tracker: http request failed: %s", e.Cause)
}
func (e TrackerHTTPFailureError) Unwrap() error { return e.Cause }

// MalformedResponseError wraps a tracker response that isn't a valid
// bencoded peer list, or that carries a "failure reason".
type MalformedResponseError struct{ Reason string }

func (e MalformedResponseError) Error() string {
	return fmt.Sprintf("tracker: malformed response: %s", e.Reason)
}

// DNSResolutionFailureError wraps a failure resolving a peer's advertised
// (ip, port) to a socket address.
type DNSResolutionFailureError struct {
	IP, Port string
	Cause    error
}

func (e DNSResolutionFailureError) Error() string {
	return fmt.Sprintf("tracker: could not resolve peer %s:%s: %s", e.IP, e.Port, e.Cause)
}

// AnnounceRequest announces to the tracker at trackerURL and returns the
// peer addresses it advertises, in the order it returned them.
func AnnounceRequest(trackerURL string, infoHash ids.Sha1, peerID ids.PeerId) ([]string, error) {
	url, err := buildAnnounceURL(trackerURL, infoHash, peerID)
	if err != nil {
		return nil, err
	}

	client := http.Client{Timeout: Timeout}
	resp, err := client.Get(url)
	if err != nil {
		return nil, TrackerHTTPFailureError{Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(TrackerHTTPFailureError{Cause: err}, "reading tracker response body")
	}

	return parseAnnounceResponse(body)
}

// buildAnnounceURL appends info_hash and peer_id as raw-byte
// percent-encoded query parameters. net/url's escapers re-encode bytes >=
// 0x80 as UTF-8 code points, which common trackers reject; the 20 raw
// bytes are encoded byte-by-byte instead (spec.md §9).
func buildAnnounceURL(trackerURL string, infoHash ids.Sha1, peerID ids.PeerId) (string, error) {
	if !strings.HasPrefix(trackerURL, "http://") && !strings.HasPrefix(trackerURL, "https://") {
		return "", TrackerURLInvalidError{URL: trackerURL}
	}
	sep := "?"
	if strings.Contains(trackerURL, "?") {
		sep = "&"
	}
	return trackerURL + sep +
		"info_hash=" + percentEncodeBytes(infoHash[:]) +
		"&peer_id=" + percentEncodeBytes(peerID[:]), nil
}

// percentEncodeBytes percent-encodes every byte that is not an RFC 3986
// unreserved character, one byte at a time.
func percentEncodeBytes(raw []byte) string {
	var b strings.Builder
	for _, c := range raw {
		if isUnreserved(c) {
			b.WriteByte(c)
		} else {
			b.WriteByte('%')
			b.WriteString(strings.ToUpper(hexByte(c)))
		}
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_' || c == '.' || c == '~':
		return true
	default:
		return false
	}
}

func hexByte(c byte) string {
	const hexDigits = "0123456789abcdef"
	return string([]byte{hexDigits[c>>4], hexDigits[c&0xf]})
}

// parseAnnounceResponse decodes a bencoded tracker response body into a
// flat, order-preserving list of peer socket addresses.
func parseAnnounceResponse(body []byte) ([]string, error) {
	root, err := bencode.NewDecoder(body).DecodeDict()
	if err != nil {
		return nil, MalformedResponseError{Reason: err.Error()}
	}
	if reason, ok := root.GetString("failure reason"); ok {
		return nil, MalformedResponseError{Reason: string(reason)}
	}
	peersVal, ok := root.Get("peers")
	if !ok {
		return nil, MalformedResponseError{Reason: "missing \"peers\" key"}
	}

	switch peersVal.Kind {
	case bencode.KindList:
		return parseDictPeerList(peersVal.List)
	case bencode.KindByteString:
		return parseCompactPeerList(peersVal.ByteString)
	default:
		return nil, MalformedResponseError{Reason: "\"peers\" is neither a list nor a byte string"}
	}
}

// parseDictPeerList handles the non-compact {ip, port} dict form of the
// peers key.
func parseDictPeerList(peers []bencode.Value) ([]string, error) {
	addrs := make([]string, 0, len(peers))
	for _, p := range peers {
		if p.Kind != bencode.KindDict {
			return nil, MalformedResponseError{Reason: "peer entry is not a dict"}
		}
		ipRaw, ok := p.Dict.GetString("ip")
		if !ok {
			return nil, MalformedResponseError{Reason: "peer entry missing \"ip\""}
		}
		portRaw, ok := p.Dict.GetInt("port")
		if !ok {
			return nil, MalformedResponseError{Reason: "peer entry missing \"port\""}
		}
		addr, err := resolvePeer(string(ipRaw), strconv.FormatInt(portRaw, 10))
		if err != nil {
			continue // per-peer DNS failure is skipped, not fatal (spec.md §4.3)
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

// parseCompactPeerList handles the compact binary form: 6 bytes per peer
// (4-byte IPv4 address, 2-byte big-endian port).
func parseCompactPeerList(blob []byte) ([]string, error) {
	const peerSize = 6
	if len(blob)%peerSize != 0 {
		return nil, MalformedResponseError{
			Reason: fmt.Sprintf("compact peers length %d not a multiple of %d", len(blob), peerSize),
		}
	}
	addrs := make([]string, 0, len(blob)/peerSize)
	for i := 0; i < len(blob); i += peerSize {
		ip := net.IP(blob[i : i+4]).String()
		port := int(blob[i+4])<<8 | int(blob[i+5])
		addrs = append(addrs, net.JoinHostPort(ip, strconv.Itoa(port)))
	}
	return addrs, nil
}

// resolvePeer resolves an (ip, port) pair to one socket address,
// surfacing (and letting the caller skip) DNS resolution failures.
func resolvePeer(ip, port string) (string, error) {
	addr, err := net.ResolveTCPAddr("tcp", net.JoinHostPort(ip, port))
	if err != nil {
		return "", DNSResolutionFailureError{IP: ip, Port: port, Cause: err}
	}
	return addr.String(), nil
}
