package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"time"
)

type tcpClient struct {
	ports PortRange
}

func newTcpClient(r PortRange) *tcpClient { return &tcpClient{ports: r} }

func (c *tcpClient) TrySnapshot(ctx context.Context, toStdout bool) (bool, string, error) {
	timeout := dialTimeout(ctx, 2*time.Second)
	addr, _, found := findResident(ctx, c.ports, timeout)
	if err := ctx.Err(); err != nil {
		return false, "", err
	}
	if !found {
		return false, "", nil
	}
	text, err := request(addr, toStdout, timeout)
	return true, text, err
}

func request(addr string, toStdout bool, timeout time.Duration) (string, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))

	req := snapshotClipboard
	if toStdout {
		req = snapshotText
	}
	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(req); err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", err
	}

	br := bufio.NewReader(conn)
	status, err := br.ReadString('\n')
	if err != nil {
		return "", err
	}
	body, _ := io.ReadAll(br)
	switch status {
	case statusOK:
		return string(body), nil
	case statusError:
		return "", errors.New(string(body))
	default:
		return "", errors.New("singleinstance: unexpected response " + strconv.Quote(status))
	}
}
