package ircd

import (
	"errors"
	"io"
	"log/slog"
	"net"

	"github.com/andy6609/ircserv/internal/framer"
	"github.com/andy6609/ircserv/internal/reply"
)

const readBufferSize = 4096

// HandleSession serves one connection: it asks the registry for admission,
// then frames everything read from conn into lines and submits them in
// arrival order. All protocol state lives in the registry.
func HandleSession(conn net.Conn, c *Client, reg *Registry, logger *slog.Logger) {
	defer func() {
		_ = conn.Close()
	}()

	admitted := make(chan error, 1)
	if !reg.Submit(Event{Type: EventConnect, Client: c, ReplyChan: admitted}) {
		return
	}
	select {
	case err := <-admitted:
		if err != nil {
			if errors.Is(err, ErrServerFull) {
				_, _ = io.WriteString(conn, reply.Closing(c.Host, "Server is full"))
			}
			return
		}
	case <-reg.Done():
		return
	}

	StartOutboundWriter(conn, c.Out)

	f := framer.New(framer.DefaultMaxCarry)
	buf := make([]byte, readBufferSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			lines, ferr := f.Feed(buf[:n])
			for _, line := range lines {
				if !reg.Submit(Event{Type: EventLine, Client: c, Line: line}) {
					return
				}
			}
			if ferr != nil {
				err = ferr
			}
		}
		if err != nil {
			reason := "Connection closed"
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				reason = "Read error"
				logger.Debug("read failed", "conn", c.ID, "error", err)
			}
			if pending := f.Pending(); pending > 0 {
				logger.Debug("dropping unterminated input", "conn", c.ID, "bytes", pending)
			}
			reg.Submit(Event{Type: EventDisconnect, Client: c, Reason: reason})
			return
		}
	}
}
