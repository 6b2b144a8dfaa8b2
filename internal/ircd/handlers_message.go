package ircd

import (
	"path"
	"strings"

	"github.com/andy6609/ircserv/internal/reply"
)

func (r *Registry) handlePrivmsg(u *User, args []string) {
	r.relay(u, "PRIVMSG", args[0], args[1], true)
}

// handleNotice relays like PRIVMSG but never answers with an error or an
// away reply.
func (r *Registry) handleNotice(u *User, args []string) {
	r.relay(u, "NOTICE", args[0], args[1], false)
}

func (r *Registry) relay(u *User, verb, targets, text string, answer bool) {
	if text == "" {
		if answer {
			r.sendError(u, reply.ErrNoTextToSend, "")
		}
		return
	}
	for _, target := range strings.Split(targets, ",") {
		if target == "" {
			if answer {
				r.sendError(u, reply.ErrNoRecipient, "")
			}
			continue
		}
		if isChannelTarget(target) {
			ch := r.FindChannelByName(target)
			if ch == nil {
				if answer {
					r.sendError(u, reply.ErrNoSuchChannel, target)
				}
				continue
			}
			if !canSend(u, ch) {
				if answer {
					r.sendError(u, reply.ErrCannotSendToChan, ch.Name)
				}
				continue
			}
			r.sendChannel(ch, reply.Message(u.Hostmask(), verb, ch.Name, text), u)
			continue
		}

		to := r.FindUserByNick(target)
		if to == nil || !to.registered {
			if answer {
				r.sendError(u, reply.ErrNoSuchNick, target)
			}
			continue
		}
		r.send(to, reply.Message(u.Hostmask(), verb, to.Nick, text))
		if answer && to.Away != "" {
			r.sendNumeric(u, reply.RplAway, reply.Away(to.Nick, to.Away))
		}
	}
}

// canSend applies +n (no outside messages), +m (moderated) and bans.
func canSend(u *User, ch *Channel) bool {
	m := ch.Member(u)
	if m == nil {
		return !ch.HasMode('n') && !ch.HasMode('m') && !ch.isBanned(u)
	}
	if m.Op || m.Voice {
		return true
	}
	return !ch.HasMode('m') && !ch.isBanned(u)
}

func (r *Registry) handleAway(u *User, args []string) {
	if len(args) == 0 || args[0] == "" {
		u.Away = ""
		r.sendNumeric(u, reply.RplUnAway, reply.UnAway())
		return
	}
	u.Away = args[0]
	r.sendNumeric(u, reply.RplNowAway, reply.NowAway())
}

func (r *Registry) handleWho(u *User, args []string) {
	mask := "*"
	if len(args) > 0 && args[0] != "" && args[0] != "0" {
		mask = args[0]
	}

	if isChannelTarget(mask) {
		if ch := r.FindChannelByName(mask); ch != nil {
			inside := ch.Member(u) != nil
			if inside || !ch.HasMode('s') {
				for _, m := range ch.members {
					if !inside && m.User.HasMode('i') {
						continue
					}
					r.sendWhoReply(u, ch.Name, m.User, m.Prefix())
				}
			}
		}
		r.sendNumeric(u, reply.RplEndOfWho, reply.EndOfWho(mask))
		return
	}

	pattern := strings.ToLower(mask)
	for _, other := range r.users {
		if !other.registered {
			continue
		}
		if other != u && other.HasMode('i') && !u.sharesChannel(other) {
			continue
		}
		if ok, err := path.Match(pattern, strings.ToLower(other.Nick)); err != nil || !ok {
			continue
		}
		r.sendWhoReply(u, "*", other, "")
	}
	r.sendNumeric(u, reply.RplEndOfWho, reply.EndOfWho(mask))
}

func (r *Registry) sendWhoReply(u *User, channel string, who *User, prefix string) {
	flags := "H"
	if who.Away != "" {
		flags = "G"
	}
	if who.IsOperator() {
		flags += "*"
	}
	flags += prefix
	r.sendNumeric(u, reply.RplWhoReply, reply.WhoReply(channel, who.Username, who.Hostname, r.opts.Name, who.Nick, flags, who.Realname))
}
