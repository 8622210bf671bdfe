package singleinstance

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"time"
)

// DetectResidentPort reports the port of a lens answering PING within r.
func DetectResidentPort(ctx context.Context, r PortRange) (int, bool) {
	_, port, ok := findResident(ctx, r, dialTimeout(ctx, 300*time.Millisecond))
	return port, ok
}

// dialTimeout caps limit by whatever remains of ctx's deadline.
func dialTimeout(ctx context.Context, limit time.Duration) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 && d < limit {
			return d
		}
	}
	return limit
}

// findResident walks r in order and stops at the first port that answers
// the PING handshake. It gives up early once ctx is done.
func findResident(ctx context.Context, r PortRange, timeout time.Duration) (string, int, bool) {
	for port := r.Start; port <= r.End; port++ {
		if ctx.Err() != nil {
			return "", 0, false
		}
		addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
		if ping(addr, timeout) {
			return addr, port, true
		}
	}
	return "", 0, false
}

func ping(addr string, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))
	if _, err := conn.Write([]byte(pingRequest)); err != nil {
		return false
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	return err == nil && resp == pongResponse
}
