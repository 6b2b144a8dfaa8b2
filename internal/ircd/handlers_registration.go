package ircd

import (
	"crypto/subtle"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/andy6609/ircserv/internal/reply"
)

func (r *Registry) handlePass(u *User, args []string) {
	if u.registered {
		r.sendError(u, reply.ErrAlreadyRegistered, "")
		return
	}
	u.pass = args[0]
}

// handleNick validates and applies a nickname. Before registration the nick
// is only recorded; USER (and PASS, when required) still gate the switch
// to Registered.
func (r *Registry) handleNick(u *User, args []string) {
	nick := strings.TrimRight(args[0], "\r\n")
	if nick == "" && len(args) == 1 {
		r.sendError(u, reply.ErrNoNicknameGiven, "")
		return
	}
	if len(args) > 1 || !validNick(nick) {
		r.sendError(u, reply.ErrErroneusNickname, strings.Join(args, " "))
		return
	}
	if u.registered && u.Nick == nick {
		return
	}

	for _, other := range r.users {
		if other != u && other.Nick != "" && strings.EqualFold(other.Nick, nick) {
			r.sendError(u, reply.ErrNicknameInUse, nick)
			return
		}
	}

	if !u.registered {
		u.Nick = nick
		r.completeRegistration(u)
		return
	}

	line := reply.Message(u.Hostmask(), "NICK", nick)
	r.logger.Info("nick changed", "conn", u.client.ID, "from", u.Nick, "to", nick)
	r.send(u, line)
	r.sendPeers(u, line)
	u.Nick = nick
}

func (r *Registry) handleUser(u *User, args []string) {
	if u.registered {
		r.sendError(u, reply.ErrAlreadyRegistered, "")
		return
	}
	u.Username = args[0]
	u.Realname = args[3]
	r.completeRegistration(u)
}

// completeRegistration flips u to Registered once nick and username are
// known and the connection password, if any, matched.
func (r *Registry) completeRegistration(u *User) {
	if u.registered || u.Nick == "" || u.Username == "" {
		return
	}
	if r.opts.Password != "" && subtle.ConstantTimeCompare([]byte(u.pass), []byte(r.opts.Password)) != 1 {
		r.sendError(u, reply.ErrPasswdMismatch, "")
		r.send(u, reply.Closing(u.Hostname, "Bad password"))
		r.removeUser(u, "Bad password")
		return
	}

	u.registered = true
	r.logger.Info("user registered", "conn", u.client.ID, "nick", u.Nick, "user", u.Username)

	r.sendNumeric(u, reply.RplWelcome, reply.Welcome(u.Nick, u.Username, u.Hostname))
	r.sendNumeric(u, reply.RplYourHost, reply.YourHost(r.opts.Name, r.opts.Version))
	r.sendNumeric(u, reply.RplCreated, reply.Created(r.opts.Created.Format(time.ANSIC)))
	r.sendNumeric(u, reply.RplMyInfo, reply.MyInfo(r.opts.Name, r.opts.Version, userModeLetters, channelModeLetters))
	r.sendMotd(u)
}

func (r *Registry) handleOper(u *User, args []string) {
	hash, ok := r.opts.Operators[args[0]]
	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(args[1])) != nil {
		r.logger.Warn("failed OPER attempt", "conn", u.client.ID, "nick", u.Nick, "name", args[0])
		r.sendError(u, reply.ErrPasswdMismatch, "")
		return
	}
	if !u.IsOperator() {
		u.Modes += "o"
	}
	r.logger.Info("operator authenticated", "conn", u.client.ID, "nick", u.Nick, "name", args[0])
	r.sendNumeric(u, reply.RplYoureOper, reply.YoureOper())
	r.sendNumeric(u, reply.RplUModeIs, reply.UModeIs(u.Modes))
}

func (r *Registry) handleQuit(u *User, args []string) {
	reason := "Client Quit"
	if len(args) > 0 && args[0] != "" {
		reason = args[0]
	}
	r.send(u, reply.Closing(u.Hostname, "Quit: "+reason))
	r.removeUser(u, reason)
}

func (r *Registry) handlePing(u *User, args []string) {
	r.send(u, reply.Message(r.opts.Name, "PONG", r.opts.Name, args[0]))
}

func (r *Registry) handleMotd(u *User, _ []string) {
	r.sendMotd(u)
}

func (r *Registry) sendMotd(u *User) {
	motd := strings.TrimRight(r.opts.MOTD, "\n")
	if motd == "" {
		r.sendError(u, reply.ErrNoMotd, "")
		return
	}
	r.sendNumeric(u, reply.RplMotdStart, reply.MotdStart(r.opts.Name))
	for _, line := range strings.Split(motd, "\n") {
		r.sendNumeric(u, reply.RplMotd, reply.Motd(strings.TrimRight(line, "\r")))
	}
	r.sendNumeric(u, reply.RplEndOfMotd, reply.EndOfMotd())
}
