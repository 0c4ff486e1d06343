package antivirus

import (
	"bufio"
	"context"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClamd answers one connection. It reassembles the INSTREAM chunks and
// hands them to reply.
func fakeClamd(t *testing.T, reply func(cmd string, body []byte) string) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		cmd, err := r.ReadString(0)
		if err != nil {
			return
		}
		cmd = cmd[:len(cmd)-1]

		var body []byte
		if cmd == "zINSTREAM" {
			var size [4]byte
			for {
				if _, err := io.ReadFull(r, size[:]); err != nil {
					return
				}
				n := binary.BigEndian.Uint32(size[:])
				if n == 0 {
					break
				}
				chunk := make([]byte, n)
				if _, err := io.ReadFull(r, chunk); err != nil {
					return
				}
				body = append(body, chunk...)
			}
		}
		conn.Write([]byte(reply(cmd, body) + "\x00"))
	}()
	return ln.Addr().String()
}

func TestClamAV_Clean(t *testing.T) {
	var got []byte
	addr := fakeClamd(t, func(cmd string, body []byte) string {
		got = body
		return "stream: OK"
	})

	data := make([]byte, chunkSize+10)
	v, err := NewClamAV(addr, time.Second).Scan(context.Background(), "cv.pdf", data)
	require.NoError(t, err)
	assert.False(t, v.Infected)
	assert.Len(t, got, len(data))
}

func TestClamAV_Found(t *testing.T) {
	addr := fakeClamd(t, func(string, []byte) string { return "stream: Eicar-Test-Signature FOUND" })

	v, err := NewClamAV(addr, time.Second).Scan(context.Background(), "cv.pdf", []byte("X5O!P%@AP"))
	require.NoError(t, err)
	assert.True(t, v.Infected)
	assert.Equal(t, "Eicar-Test-Signature", v.ThreatName)
}

func TestClamAV_Errors(t *testing.T) {
	addr := fakeClamd(t, func(string, []byte) string { return "INSTREAM size limit exceeded. ERROR" })
	_, err := NewClamAV(addr, time.Second).Scan(context.Background(), "cv.pdf", []byte("data"))
	assert.Error(t, err)

	_, err = NewClamAV("127.0.0.1:1", 200*time.Millisecond).Scan(context.Background(), "cv.pdf", []byte("data"))
	assert.Error(t, err)
}

func TestClamAV_Ping(t *testing.T) {
	addr := fakeClamd(t, func(cmd string, _ []byte) string {
		if cmd == "zPING" {
			return "PONG"
		}
		return "UNKNOWN COMMAND"
	})
	assert.NoError(t, NewClamAV(addr, time.Second).Ping(context.Background()))
}
