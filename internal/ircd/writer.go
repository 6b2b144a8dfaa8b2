package ircd

import (
	"bufio"
	"net"
)

// StartOutboundWriter drains out onto conn. When out is closed by the
// registry, or a write fails, the connection is closed so the session's
// reader wakes up.
func StartOutboundWriter(conn net.Conn, out <-chan string) {
	go func() {
		defer conn.Close()
		w := bufio.NewWriter(conn)
		for msg := range out {
			// Best-effort. If the connection breaks, just stop the writer.
			if _, err := w.WriteString(msg); err != nil {
				return
			}
			if len(out) > 0 {
				continue
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
		_ = w.Flush()
	}()
}
