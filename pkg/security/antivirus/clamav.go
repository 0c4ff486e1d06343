package antivirus

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// clamd rejects INSTREAM chunks above StreamMaxLength (25M by default).
const chunkSize = 1 << 20

// Verdict is the outcome of scanning one upload.
type Verdict struct {
	Infected   bool
	ThreatName string
}

// Scanner checks uploaded documents for malware before they are kept.
type Scanner interface {
	Scan(ctx context.Context, filename string, data []byte) (Verdict, error)
	Name() string
}

// ClamAV talks to a clamd daemon over TCP ("host:3310") or a unix socket
// ("/run/clamav/clamd.sock").
type ClamAV struct {
	address string
	timeout time.Duration
	dialer  net.Dialer
}

var _ Scanner = (*ClamAV)(nil)

func NewClamAV(address string, timeout time.Duration) *ClamAV {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ClamAV{address: address, timeout: timeout}
}

func (c *ClamAV) Name() string { return "clamav" }

func (c *ClamAV) network() string {
	if strings.HasPrefix(c.address, "/") {
		return "unix"
	}
	return "tcp"
}

func (c *ClamAV) dial(ctx context.Context) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	conn, err := c.dialer.DialContext(ctx, c.network(), c.address)
	if err != nil {
		return nil, fmt.Errorf("connect clamd: %w", err)
	}
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)
	return conn, nil
}

// Ping reports whether clamd answers. Used by the health check.
func (c *ClamAV) Ping(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("zPING\x00")); err != nil {
		return fmt.Errorf("ping clamd: %w", err)
	}
	reply, err := readReply(conn)
	if err != nil {
		return fmt.Errorf("ping clamd: %w", err)
	}
	if reply != "PONG" {
		return fmt.Errorf("unexpected clamd reply %q", reply)
	}
	return nil
}

// Scan streams data with INSTREAM. A transport or clamd error is returned
// as an error; callers decide whether to fail closed.
func (c *ClamAV) Scan(ctx context.Context, filename string, data []byte) (Verdict, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return Verdict{}, err
	}
	defer conn.Close()

	w := bufio.NewWriter(conn)
	if _, err := w.WriteString("zINSTREAM\x00"); err != nil {
		return Verdict{}, fmt.Errorf("send command: %w", err)
	}
	var size [4]byte
	for off := 0; off < len(data); off += chunkSize {
		chunk := data[off:min(off+chunkSize, len(data))]
		binary.BigEndian.PutUint32(size[:], uint32(len(chunk)))
		if _, err := w.Write(size[:]); err != nil {
			return Verdict{}, fmt.Errorf("send %s: %w", filename, err)
		}
		if _, err := w.Write(chunk); err != nil {
			return Verdict{}, fmt.Errorf("send %s: %w", filename, err)
		}
	}
	binary.BigEndian.PutUint32(size[:], 0)
	if _, err := w.Write(size[:]); err != nil {
		return Verdict{}, fmt.Errorf("send end of stream: %w", err)
	}
	if err := w.Flush(); err != nil {
		return Verdict{}, fmt.Errorf("send %s: %w", filename, err)
	}

	reply, err := readReply(conn)
	if err != nil {
		return Verdict{}, fmt.Errorf("read clamd reply: %w", err)
	}
	return parseReply(reply)
}

func readReply(conn net.Conn) (string, error) {
	reply, err := bufio.NewReader(conn).ReadString(0)
	if err != nil && reply == "" {
		return "", err
	}
	return strings.TrimSpace(strings.TrimRight(reply, "\x00")), nil
}

// parseReply reads "stream: OK", "stream: <threat> FOUND" or
// "<message> ERROR".
func parseReply(reply string) (Verdict, error) {
	body := reply
	if i := strings.Index(reply, ":"); i >= 0 {
		body = strings.TrimSpace(reply[i+1:])
	}
	switch {
	case body == "OK":
		return Verdict{}, nil
	case strings.HasSuffix(body, " FOUND"):
		return Verdict{Infected: true, ThreatName: strings.TrimSuffix(body, " FOUND")}, nil
	case strings.HasSuffix(body, "ERROR"):
		return Verdict{}, errors.New("clamd: " + body)
	}
	return Verdict{}, fmt.Errorf("unexpected clamd reply %q", reply)
}
