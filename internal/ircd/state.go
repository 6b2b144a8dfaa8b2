package ircd

import (
	"slices"
	"strings"

	"github.com/andy6609/ircserv/internal/reply"
)

// Lookups are linear scans returning the first match or nil.

func (r *Registry) FindUserByNick(nick string) *User {
	for _, u := range r.users {
		if u.Nick != "" && strings.EqualFold(u.Nick, nick) {
			return u
		}
	}
	return nil
}

func (r *Registry) FindChannelByName(name string) *Channel {
	for _, ch := range r.channels {
		if strings.EqualFold(ch.Name, name) {
			return ch
		}
	}
	return nil
}

// FindChannelByKey returns the first keyed channel whose key is key.
func (r *Registry) FindChannelByKey(key string) *Channel {
	for _, ch := range r.channels {
		if ch.HasMode('k') && ch.Key == key {
			return ch
		}
	}
	return nil
}

// resolveChannel maps a MODE target to a channel: "#name" by name, "&x"
// by name first and then by key.
func (r *Registry) resolveChannel(target string) *Channel {
	switch {
	case strings.HasPrefix(target, "#"):
		return r.FindChannelByName(target)
	case strings.HasPrefix(target, "&"):
		if ch := r.FindChannelByName(target); ch != nil {
			return ch
		}
		return r.FindChannelByKey(target[1:])
	}
	return nil
}

func (r *Registry) createChannel(name string) *Channel {
	ch := newChannel(name)
	r.channels = append(r.channels, ch)
	r.logger.Info("channel created", "channel", name)
	return ch
}

func (r *Registry) deleteChannel(ch *Channel) {
	r.channels = slices.DeleteFunc(r.channels, func(c *Channel) bool { return c == ch })
	r.logger.Info("channel deleted", "channel", ch.Name)
}

// leaveChannel removes u from ch and drops the channel once empty.
func (r *Registry) leaveChannel(u *User, ch *Channel) {
	ch.removeMember(u)
	if ch.Len() == 0 {
		r.deleteChannel(ch)
	}
}

// removeUser tears a user down: peers get a QUIT, every membership is
// dropped, and the outbound queue is closed so no further output happens.
func (r *Registry) removeUser(u *User, reason string) {
	if _, ok := r.byID[u.client.ID]; !ok {
		return
	}
	if u.registered {
		r.sendPeers(u, reply.Message(u.Hostmask(), "QUIT", "Quit: "+reason))
	}
	for _, ch := range slices.Clone(u.channels) {
		r.leaveChannel(u, ch)
	}
	for _, ch := range r.channels {
		ch.uninvite(u)
	}
	r.users = slices.DeleteFunc(r.users, func(x *User) bool { return x == u })
	delete(r.byID, u.client.ID)
	close(u.client.Out)
	r.logger.Info("client gone away", "conn", u.client.ID, "nick", u.Nick, "reason", reason)
}

func (r *Registry) send(u *User, line string) {
	sendLine(u.client, line)
}

func (r *Registry) sendNumeric(u *User, code int, body string) {
	r.send(u, reply.Numeric(r.opts.Name, u.Nick, code, body))
}

func (r *Registry) sendError(u *User, code int, subject string) {
	r.send(u, reply.Error(r.opts.Name, u.Nick, code, subject))
}

// sendChannel writes line to every member of ch except skip (may be nil).
func (r *Registry) sendChannel(ch *Channel, line string, skip *User) {
	for _, m := range ch.members {
		if m.User != skip {
			r.send(m.User, line)
		}
	}
}

// sendPeers writes line once to every user sharing a channel with u.
func (r *Registry) sendPeers(u *User, line string) {
	seen := map[*User]bool{u: true}
	for _, ch := range u.channels {
		for _, m := range ch.members {
			if !seen[m.User] {
				seen[m.User] = true
				r.send(m.User, line)
			}
		}
	}
}
