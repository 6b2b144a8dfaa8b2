package ircd

import (
	"strings"

	"github.com/andy6609/ircserv/internal/reply"
)

type handler func(r *Registry, u *User, args []string)

type command struct {
	minArgs int
	// preRegistration commands are accepted before the client registered.
	preRegistration bool
	run             handler
}

// commands is built once and never mutated.
var commands = map[string]command{
	// registration
	"PASS": {minArgs: 1, preRegistration: true, run: (*Registry).handlePass},
	"NICK": {minArgs: 1, preRegistration: true, run: (*Registry).handleNick},
	"USER": {minArgs: 4, preRegistration: true, run: (*Registry).handleUser},
	"OPER": {minArgs: 2, run: (*Registry).handleOper},
	"QUIT": {run: (*Registry).handleQuit},

	// channels
	"JOIN":   {minArgs: 1, run: (*Registry).handleJoin},
	"PART":   {minArgs: 1, run: (*Registry).handlePart},
	"TOPIC":  {minArgs: 1, run: (*Registry).handleTopic},
	"NAMES":  {run: (*Registry).handleNames},
	"KICK":   {minArgs: 2, run: (*Registry).handleKick},
	"INVITE": {minArgs: 2, run: (*Registry).handleInvite},
	"MODE":   {minArgs: 2, run: (*Registry).handleMode},

	// queries
	"WHO":  {run: (*Registry).handleWho},
	"MOTD": {run: (*Registry).handleMotd},

	// messaging
	"PRIVMSG": {minArgs: 2, run: (*Registry).handlePrivmsg},
	"NOTICE":  {minArgs: 2, run: (*Registry).handleNotice},
	"AWAY":    {run: (*Registry).handleAway},

	// keepalive
	"PING": {minArgs: 1, run: (*Registry).handlePing},
	"PONG": {run: func(*Registry, *User, []string) {}},
}

// parseLine splits a line into an upper-cased verb and its arguments. A
// leading ":prefix" is dropped; an argument starting with ':' swallows the
// rest of the line, spaces included.
func parseLine(line string) (verb string, args []string) {
	line = strings.TrimRight(line, "\r\n")

	trailing, hasTrailing := "", false
	if strings.HasPrefix(line, ":") {
		if i := strings.IndexByte(line, ' '); i >= 0 {
			line = line[i+1:]
		} else {
			return "", nil
		}
	}
	if i := strings.Index(line, " :"); i >= 0 {
		trailing, hasTrailing = line[i+2:], true
		line = line[:i]
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	verb = strings.ToUpper(fields[0])
	args = fields[1:]
	if hasTrailing {
		args = append(args, trailing)
	}
	return verb, args
}

// dispatch runs one command line for u: lookup, registration gate,
// parameter count, then the handler.
func (r *Registry) dispatch(u *User, line string) {
	verb, args := parseLine(line)
	if verb == "" {
		return
	}

	cmd, ok := commands[verb]
	if !ok {
		r.sendError(u, reply.ErrUnknownCommand, verb)
		return
	}
	if !u.registered && !cmd.preRegistration {
		r.sendError(u, reply.ErrNotRegistered, "")
		return
	}
	if len(args) < cmd.minArgs {
		r.sendError(u, reply.ErrNeedMoreParams, verb)
		return
	}

	CommandsTotal.WithLabelValues(verb).Inc()
	cmd.run(r, u, args)
}
