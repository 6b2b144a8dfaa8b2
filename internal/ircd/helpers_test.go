package ircd

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lrstanley/girc"
	"github.com/stretchr/testify/require"

	"github.com/andy6609/ircserv/internal/reply"
)

const testServer = "irc.test"

// harness drives a running Registry through events. The probe is an
// unregistered connection: every command it sends is answered with 451,
// which tells the test that all earlier events have been processed.
type harness struct {
	t     *testing.T
	r     *Registry
	probe *Client
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	if opts.Name == "" {
		opts.Name = testServer
	}
	r := NewRegistry(128, opts, slog.New(slog.NewTextHandler(io.Discard, nil)))
	go r.Run()
	t.Cleanup(func() {
		r.Stop()
		r.Wait()
	})

	h := &harness{t: t, r: r}
	h.probe = h.connect("probe.invalid")
	return h
}

func newTestClient(host string) *Client {
	return &Client{ID: uuid.NewString(), Host: host, Out: make(chan string, outboundBuffer)}
}

func (h *harness) admit(c *Client) error {
	h.t.Helper()
	ack := make(chan error, 1)
	require.True(h.t, h.r.Submit(Event{Type: EventConnect, Client: c, ReplyChan: ack}))
	select {
	case err := <-ack:
		return err
	case <-time.After(time.Second):
		h.t.Fatal("timeout waiting for admission")
		return nil
	}
}

func (h *harness) connect(host string) *Client {
	h.t.Helper()
	c := newTestClient(host)
	require.NoError(h.t, h.admit(c))
	return c
}

func (h *harness) send(c *Client, lines ...string) {
	h.t.Helper()
	for _, line := range lines {
		require.True(h.t, h.r.Submit(Event{Type: EventLine, Client: c, Line: line}))
	}
}

func (h *harness) disconnect(c *Client, reason string) {
	h.t.Helper()
	require.True(h.t, h.r.Submit(Event{Type: EventDisconnect, Client: c, Reason: reason}))
}

// settle returns once every event submitted so far has been processed.
func (h *harness) settle() {
	h.t.Helper()
	h.send(h.probe, "PING sync")
	waitForPrefix(h.t, h.probe.Out, ":"+h.r.opts.Name+" 451 ")
}

// drain settles the registry and returns everything queued for c.
func (h *harness) drain(c *Client) []*girc.Event {
	h.t.Helper()
	h.settle()
	var evs []*girc.Event
	for {
		select {
		case line, ok := <-c.Out:
			if !ok {
				return evs
			}
			require.True(h.t, strings.HasSuffix(line, reply.Terminator), "line %q lacks CRLF", line)
			ev := girc.ParseEvent(strings.TrimSuffix(line, reply.Terminator))
			require.NotNil(h.t, ev, "unparsable line %q", line)
			evs = append(evs, ev)
		default:
			return evs
		}
	}
}

// closed reports whether the registry closed c's outbound queue. Pending
// lines are discarded.
func (h *harness) closed(c *Client) bool {
	h.t.Helper()
	h.settle()
	for {
		select {
		case _, ok := <-c.Out:
			if !ok {
				return true
			}
		default:
			return false
		}
	}
}

// register connects a client and completes registration as nick.
func (h *harness) register(nick string) *Client {
	h.t.Helper()
	c := h.connect("127.0.0.1")
	if h.r.opts.Password != "" {
		h.send(c, "PASS "+h.r.opts.Password)
	}
	h.send(c, "NICK "+nick, "USER "+strings.ToLower(nick)+" 0 * :"+nick+" Example")
	find(h.t, h.drain(c), "001")
	return c
}

func (h *harness) join(channel string, clients ...*Client) {
	h.t.Helper()
	for _, c := range clients {
		h.send(c, "JOIN "+channel)
		find(h.t, h.drain(c), "366")
	}
}

func (h *harness) user(nick string) *User {
	h.t.Helper()
	h.settle()
	u := h.r.FindUserByNick(nick)
	require.NotNil(h.t, u, "no user %s", nick)
	return u
}

func (h *harness) channel(name string) *Channel {
	h.t.Helper()
	h.settle()
	return h.r.FindChannelByName(name)
}

// find returns the first event with the given command or numeric.
func find(t *testing.T, evs []*girc.Event, command string) *girc.Event {
	t.Helper()
	for _, ev := range evs {
		if ev.Command == command {
			return ev
		}
	}
	t.Fatalf("no %s in %v", command, commandsOf(evs))
	return nil
}

func commandsOf(evs []*girc.Event) []string {
	out := make([]string, 0, len(evs))
	for _, ev := range evs {
		out = append(out, ev.Command)
	}
	return out
}

func waitForPrefix(t *testing.T, ch <-chan string, prefix string) string {
	t.Helper()
	deadline := time.NewTimer(1 * time.Second)
	defer deadline.Stop()
	for {
		select {
		case s, ok := <-ch:
			if !ok {
				t.Fatalf("channel closed waiting for prefix %q", prefix)
			}
			if strings.HasPrefix(s, prefix) {
				return s
			}
		case <-deadline.C:
			t.Fatalf("timeout waiting for prefix %q", prefix)
		}
	}
}
