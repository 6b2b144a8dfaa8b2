package ircd

import (
	"slices"
	"strings"

	"github.com/andy6609/ircserv/internal/reply"
)

// User is the protocol state of one live connection. It is only touched
// from the registry goroutine.
type User struct {
	client *Client

	Nick     string
	Username string
	Realname string
	Hostname string
	Modes    string // letters from userModeLetters, in the order they were set
	Away     string

	registered bool
	pass       string
	channels   []*Channel
}

func newUser(c *Client) *User {
	return &User{client: c, Hostname: c.Host}
}

func (u *User) Hostmask() string {
	nick := u.Nick
	if nick == "" {
		nick = "*"
	}
	return reply.Hostmask(nick, u.Username, u.Hostname)
}

func (u *User) HasMode(m byte) bool {
	return strings.IndexByte(u.Modes, m) >= 0
}

// IsOperator reports IRC operator status (user mode o).
func (u *User) IsOperator() bool { return u.HasMode('o') }

func (u *User) joined(ch *Channel) {
	if !slices.Contains(u.channels, ch) {
		u.channels = append(u.channels, ch)
	}
}

func (u *User) left(ch *Channel) {
	u.channels = slices.DeleteFunc(u.channels, func(c *Channel) bool { return c == ch })
}

// sharesChannel reports whether u and other are both members of some channel.
func (u *User) sharesChannel(other *User) bool {
	for _, ch := range u.channels {
		if ch.Member(other) != nil {
			return true
		}
	}
	return false
}

// validNick accepts only ASCII letters.
func validNick(nick string) bool {
	if nick == "" {
		return false
	}
	for i := 0; i < len(nick); i++ {
		c := nick[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

func sendLine(c *Client, line string) {
	// Non-blocking send prevents slow/disconnected clients from blocking the registry.
	select {
	case c.Out <- line:
	default:
		// Best-effort: the remote's buffer is full, the line is dropped.
	}
}
