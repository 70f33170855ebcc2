// Package transport performs request/response exchanges with a remote server.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"firestige.xyz/wirecap/internal/log"
)

// MaxDatagram is the largest response accepted.
const MaxDatagram = 65535

// UDP exchanges one datagram with a fixed server. No retries.
type UDP struct {
	server  string
	timeout time.Duration
}

// NewUDP creates a UDP exchanger. A zero timeout means 5 seconds.
func NewUDP(server string, timeout time.Duration) *UDP {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &UDP{server: server, timeout: timeout}
}

func (u *UDP) Server() string { return u.server }

// Exchange sends req and returns the first datagram received back. The
// earlier of the context deadline and the configured timeout applies, and
// cancelling ctx aborts a pending read.
func (u *UDP) Exchange(ctx context.Context, req []byte) ([]byte, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", u.server)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", u.server, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(u.timeout)
	ctxBound := false
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline, ctxBound = ctxDeadline, true
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	logger := log.GetLogger().WithField("server", u.server)
	if _, err := conn.Write(req); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	logger.WithField("bytes", len(req)).Debug("request sent")

	buf := make([]byte, MaxDatagram)
	n, err := conn.Read(buf)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if ctxBound && errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, context.DeadlineExceeded
		}
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	logger.WithField("bytes", n).Debug("response received")
	return buf[:n:n], nil
}
