package ircd

import (
	"path"
	"slices"
	"strings"
	"time"
)

// Member is a user's membership in one channel with its privilege bits.
type Member struct {
	User  *User
	Op    bool
	Voice bool
}

// Prefix is the NAMES/WHO status prefix: "@", "+" or "".
func (m *Member) Prefix() string {
	switch {
	case m.Op:
		return "@"
	case m.Voice:
		return "+"
	}
	return ""
}

type Channel struct {
	Name    string
	Topic   string
	Modes   string // channel-wide flags only; o and v live on Member
	Key     string
	Limit   int
	Bans    []string // ban masks, duplicates allowed
	Created time.Time

	members []*Member
	invited map[*User]bool
}

func newChannel(name string) *Channel {
	return &Channel{
		Name:    name,
		Created: time.Now(),
		invited: make(map[*User]bool),
	}
}

func (ch *Channel) HasMode(m byte) bool {
	return strings.IndexByte(ch.Modes, m) >= 0
}

func (ch *Channel) Len() int { return len(ch.members) }

func (ch *Channel) Member(u *User) *Member {
	for _, m := range ch.members {
		if m.User == u {
			return m
		}
	}
	return nil
}

func (ch *Channel) addMember(u *User, op bool) *Member {
	if m := ch.Member(u); m != nil {
		return m
	}
	m := &Member{User: u, Op: op}
	ch.members = append(ch.members, m)
	u.joined(ch)
	return m
}

func (ch *Channel) removeMember(u *User) {
	ch.members = slices.DeleteFunc(ch.members, func(m *Member) bool { return m.User == u })
	u.left(ch)
}

// Invitations belong to the connection, so they follow a nick change and
// are never inherited by whoever takes the old nick.
func (ch *Channel) invite(u *User) { ch.invited[u] = true }

func (ch *Channel) isInvited(u *User) bool { return ch.invited[u] }

func (ch *Channel) uninvite(u *User) { delete(ch.invited, u) }

// isBanned matches the user's nick!user@host against every ban mask.
func (ch *Channel) isBanned(u *User) bool {
	host := strings.ToLower(u.Hostmask())
	for _, mask := range ch.Bans {
		if ok, err := path.Match(strings.ToLower(mask), host); err == nil && ok {
			return true
		}
	}
	return false
}

// hidden reports whether the channel is private or secret.
func (ch *Channel) hidden() bool {
	return ch.HasMode('p') || ch.HasMode('s')
}

// names builds the space-separated NAMES list as seen by viewer.
func (ch *Channel) names(viewer *User) string {
	inside := ch.Member(viewer) != nil
	list := make([]string, 0, len(ch.members))
	for _, m := range ch.members {
		if !inside && m.User.HasMode('i') {
			continue
		}
		list = append(list, m.Prefix()+m.User.Nick)
	}
	return strings.Join(list, " ")
}

// validChannelName checks the prefix; the second result reports whether
// the rest of the name is acceptable.
func validChannelName(name string) (prefixed, ok bool) {
	if name == "" || (name[0] != '#' && name[0] != '&') {
		return false, false
	}
	if len(name) < 2 || len(name) > 50 || strings.ContainsAny(name, " ,\x07") {
		return true, false
	}
	return true, true
}

func isChannelTarget(s string) bool {
	return s != "" && (s[0] == '#' || s[0] == '&')
}
