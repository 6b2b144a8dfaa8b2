package ircd

import (
	"slices"
	"strings"

	"github.com/andy6609/ircserv/internal/reply"
)

func (r *Registry) handleJoin(u *User, args []string) {
	// JOIN 0 leaves every channel.
	if args[0] == "0" {
		for _, ch := range slices.Clone(u.channels) {
			r.part(u, ch, "")
		}
		return
	}

	names := strings.Split(args[0], ",")
	keys := make([]string, len(names))
	if len(args) > 1 {
		copy(keys, strings.Split(args[1], ","))
	}

	for i, name := range names {
		prefixed, ok := validChannelName(name)
		if !prefixed {
			r.sendError(u, reply.ErrNoSuchChannel, name)
			continue
		}
		if !ok {
			r.sendError(u, reply.ErrBadChanMask, name)
			continue
		}

		ch := r.FindChannelByName(name)
		if ch == nil {
			ch = r.createChannel(name)
			ch.addMember(u, true)
		} else {
			if ch.Member(u) != nil {
				continue
			}
			if code := r.admissionError(u, ch, keys[i]); code != 0 {
				r.sendError(u, code, ch.Name)
				continue
			}
			ch.addMember(u, false)
			ch.uninvite(u)
		}

		r.sendChannel(ch, reply.Message(u.Hostmask(), "JOIN", ch.Name), nil)
		if ch.Topic != "" {
			r.sendNumeric(u, reply.RplTopic, reply.Topic(ch.Name, ch.Topic))
		} else {
			r.sendNumeric(u, reply.RplNoTopic, reply.NoTopic(ch.Name))
		}
		r.sendNames(u, ch)
	}
}

// admissionError checks ban, invite-only, key and limit in that order and
// returns the numeric refusing u, or 0.
func (r *Registry) admissionError(u *User, ch *Channel, key string) int {
	invited := ch.isInvited(u)
	switch {
	case ch.isBanned(u) && !invited:
		return reply.ErrBannedFromChan
	case ch.HasMode('i') && !invited:
		return reply.ErrInviteOnlyChan
	case ch.HasMode('k') && key != ch.Key:
		return reply.ErrBadChannelKey
	case ch.HasMode('l') && ch.Len() >= ch.Limit:
		return reply.ErrChannelIsFull
	}
	return 0
}

func (r *Registry) handlePart(u *User, args []string) {
	reason := ""
	if len(args) > 1 {
		reason = args[1]
	}
	for _, name := range strings.Split(args[0], ",") {
		ch := r.FindChannelByName(name)
		if ch == nil {
			r.sendError(u, reply.ErrNoSuchChannel, name)
			continue
		}
		if ch.Member(u) == nil {
			r.sendError(u, reply.ErrNotOnChannel, ch.Name)
			continue
		}
		r.part(u, ch, reason)
	}
}

func (r *Registry) part(u *User, ch *Channel, reason string) {
	params := []string{ch.Name}
	if reason != "" {
		params = append(params, reason)
	}
	r.sendChannel(ch, reply.Message(u.Hostmask(), "PART", params...), nil)
	r.leaveChannel(u, ch)
}

func (r *Registry) handleTopic(u *User, args []string) {
	ch := r.FindChannelByName(args[0])
	if ch == nil {
		r.sendError(u, reply.ErrNoSuchChannel, args[0])
		return
	}
	m := ch.Member(u)

	if len(args) == 1 {
		if m == nil && ch.HasMode('s') {
			r.sendError(u, reply.ErrNotOnChannel, ch.Name)
			return
		}
		if ch.Topic == "" {
			r.sendNumeric(u, reply.RplNoTopic, reply.NoTopic(ch.Name))
			return
		}
		r.sendNumeric(u, reply.RplTopic, reply.Topic(ch.Name, ch.Topic))
		return
	}

	if m == nil {
		r.sendError(u, reply.ErrNotOnChannel, ch.Name)
		return
	}
	if ch.HasMode('t') && !m.Op && !u.IsOperator() {
		r.sendError(u, reply.ErrChanOPrivsNeeded, ch.Name)
		return
	}
	ch.Topic = args[1]
	r.sendChannel(ch, reply.Message(u.Hostmask(), "TOPIC", ch.Name, ch.Topic), nil)
}

func (r *Registry) handleNames(u *User, args []string) {
	if len(args) == 0 {
		for _, ch := range r.channels {
			if ch.hidden() && ch.Member(u) == nil {
				continue
			}
			r.sendNumeric(u, reply.RplNamReply, reply.NamReply(ch.Name, ch.names(u)))
		}
		r.sendNumeric(u, reply.RplEndOfNames, reply.EndOfNames("*"))
		return
	}
	for _, name := range strings.Split(args[0], ",") {
		ch := r.FindChannelByName(name)
		if ch == nil || (ch.hidden() && ch.Member(u) == nil) {
			r.sendNumeric(u, reply.RplEndOfNames, reply.EndOfNames(name))
			continue
		}
		r.sendNames(u, ch)
	}
}

func (r *Registry) sendNames(u *User, ch *Channel) {
	r.sendNumeric(u, reply.RplNamReply, reply.NamReply(ch.Name, ch.names(u)))
	r.sendNumeric(u, reply.RplEndOfNames, reply.EndOfNames(ch.Name))
}

func (r *Registry) handleKick(u *User, args []string) {
	ch := r.FindChannelByName(args[0])
	if ch == nil {
		r.sendError(u, reply.ErrNoSuchChannel, args[0])
		return
	}
	m := ch.Member(u)
	if m == nil && !u.IsOperator() {
		r.sendError(u, reply.ErrNotOnChannel, ch.Name)
		return
	}
	if (m == nil || !m.Op) && !u.IsOperator() {
		r.sendError(u, reply.ErrChanOPrivsNeeded, ch.Name)
		return
	}

	reason := u.Nick
	if len(args) > 2 && args[2] != "" {
		reason = args[2]
	}
	for _, nick := range strings.Split(args[1], ",") {
		target := r.FindUserByNick(nick)
		if target == nil || ch.Member(target) == nil {
			r.sendError(u, reply.ErrUserNotInChannel, nick+" "+ch.Name)
			continue
		}
		r.sendChannel(ch, reply.Message(u.Hostmask(), "KICK", ch.Name, target.Nick, reason), nil)
		r.logger.Info("user kicked", "channel", ch.Name, "nick", target.Nick, "by", u.Nick)
		r.leaveChannel(target, ch)
	}
}

func (r *Registry) handleInvite(u *User, args []string) {
	target := r.FindUserByNick(args[0])
	if target == nil {
		r.sendError(u, reply.ErrNoSuchNick, args[0])
		return
	}
	name := args[1]
	if ch := r.FindChannelByName(name); ch != nil {
		name = ch.Name
		m := ch.Member(u)
		if m == nil {
			r.sendError(u, reply.ErrNotOnChannel, ch.Name)
			return
		}
		if ch.Member(target) != nil {
			r.sendError(u, reply.ErrUserOnChannel, target.Nick+" "+ch.Name)
			return
		}
		if ch.HasMode('i') && !m.Op && !u.IsOperator() {
			r.sendError(u, reply.ErrChanOPrivsNeeded, ch.Name)
			return
		}
		ch.invite(target)
	}

	r.sendNumeric(u, reply.RplInviting, reply.Inviting(name, target.Nick))
	r.send(target, reply.Message(u.Hostmask(), "INVITE", target.Nick, name))
	if target.Away != "" {
		r.sendNumeric(u, reply.RplAway, reply.Away(target.Nick, target.Away))
	}
}
