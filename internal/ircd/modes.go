package ircd

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/andy6609/ircserv/internal/reply"
)

const (
	userModeLetters    = "iswo"
	channelModeLetters = "opsitnmbvkl"
)

type modeChange struct {
	add    bool
	letter byte
	arg    string
	hasArg bool
}

var errMissingArg = errors.New("mode letter needs an argument")

// unknownLetter returns the first letter of flags outside known, or 0.
// Sign characters are not letters.
func unknownLetter(flags, known string) byte {
	for i := 0; i < len(flags); i++ {
		c := flags[i]
		if c == '+' || c == '-' {
			continue
		}
		if strings.IndexByte(known, c) < 0 {
			return c
		}
	}
	return 0
}

// parseChanges expands a flag string into changes. A missing leading sign
// means '+'. takesArg decides, per letter and direction, whether an
// argument is required, optional or not used.
func parseChanges(flags string, params []string, takesArg func(letter byte, add bool) (wants, required bool)) ([]modeChange, error) {
	add := true
	var changes []modeChange
	for i := 0; i < len(flags); i++ {
		c := flags[i]
		switch c {
		case '+':
			add = true
			continue
		case '-':
			add = false
			continue
		}
		ch := modeChange{add: add, letter: c}
		if takesArg != nil {
			wants, required := takesArg(c, add)
			if wants && len(params) > 0 {
				ch.arg, ch.hasArg = params[0], true
				params = params[1:]
			} else if required {
				return nil, errMissingArg
			}
		}
		changes = append(changes, ch)
	}
	return changes, nil
}

func addLetter(modes string, c byte) string {
	if strings.IndexByte(modes, c) >= 0 {
		return modes
	}
	return modes + string(c)
}

func removeLetter(modes string, c byte) string {
	if i := strings.IndexByte(modes, c); i >= 0 {
		return modes[:i] + modes[i+1:]
	}
	return modes
}

func (r *Registry) handleMode(u *User, args []string) {
	if isChannelTarget(args[0]) {
		r.channelMode(u, args[0], args[1], args[2:])
		return
	}
	r.userMode(u, args[0], args[1])
}

// userMode changes the requester's own modes. +o is never granted here;
// operator status comes from OPER only.
func (r *Registry) userMode(u *User, target, flags string) {
	if !strings.EqualFold(u.Nick, target) {
		r.sendError(u, reply.ErrUsersDontMatch, target)
		return
	}
	if c := unknownLetter(flags, userModeLetters); c != 0 {
		r.sendError(u, reply.ErrUnknownMode, string(c))
		return
	}

	changes, _ := parseChanges(flags, nil, nil)
	modes := u.Modes
	for _, c := range changes {
		switch {
		case c.add && c.letter == 'o':
			// not grantable through MODE
		case c.add:
			modes = addLetter(modes, c.letter)
		default:
			modes = removeLetter(modes, c.letter)
		}
	}
	u.Modes = modes
	r.sendNumeric(u, reply.RplUModeIs, reply.UModeIs(u.Modes))
}

func channelModeArg(letter byte, add bool) (wants, required bool) {
	switch letter {
	case 'o', 'v':
		return true, true
	case 'k':
		return true, add
	case 'l':
		return add, add
	case 'b':
		return true, false
	}
	return false, false
}

// channelMode applies a channel mode request atomically: the new state is
// computed on a copy and committed only when every letter and argument
// validated.
func (r *Registry) channelMode(u *User, target, flags string, params []string) {
	ch := r.resolveChannel(target)
	if ch == nil {
		r.sendError(u, reply.ErrNoSuchNick, target)
		return
	}
	if c := unknownLetter(flags, channelModeLetters); c != 0 {
		r.sendError(u, reply.ErrUnknownMode, string(c))
		return
	}
	changes, err := parseChanges(flags, params, channelModeArg)
	if err != nil {
		r.sendError(u, reply.ErrNeedMoreParams, "MODE")
		return
	}

	needsOp := false
	for _, c := range changes {
		if !(c.letter == 'b' && !c.hasArg) {
			needsOp = true
		}
	}
	if needsOp && !u.IsOperator() {
		m := ch.Member(u)
		if m == nil {
			r.sendError(u, reply.ErrNotOnChannel, ch.Name)
			return
		}
		if !m.Op {
			r.sendError(u, reply.ErrChanOPrivsNeeded, ch.Name)
			return
		}
	}

	type privilege struct {
		member *Member
		letter byte
		add    bool
	}
	var (
		modes    = ch.Modes
		key      = ch.Key
		limit    = ch.Limit
		bans     = append([]string(nil), ch.Bans...)
		privs    []privilege
		listBans bool
		applied  modeDiff
	)

	for _, c := range changes {
		switch c.letter {
		case 'o', 'v':
			who := r.FindUserByNick(c.arg)
			if who == nil {
				r.sendError(u, reply.ErrNoSuchNick, c.arg)
				return
			}
			m := ch.Member(who)
			if m == nil {
				r.sendError(u, reply.ErrUserNotInChannel, who.Nick+" "+ch.Name)
				return
			}
			privs = append(privs, privilege{member: m, letter: c.letter, add: c.add})
			applied.add(c.add, c.letter, who.Nick)
		case 'b':
			if !c.hasArg {
				listBans = true
				continue
			}
			if c.add {
				bans = append(bans, c.arg)
				applied.add(true, 'b', c.arg)
			} else if i := slices.Index(bans, c.arg); i >= 0 {
				bans = append(bans[:i], bans[i+1:]...)
				applied.add(false, 'b', c.arg)
			}
		case 'k':
			if c.add {
				if strings.IndexByte(modes, 'k') >= 0 {
					r.sendError(u, reply.ErrKeySet, ch.Name)
					return
				}
				if c.arg == "" {
					r.sendError(u, reply.ErrNeedMoreParams, "MODE")
					return
				}
				modes, key = addLetter(modes, 'k'), c.arg
				applied.add(true, 'k', c.arg)
			} else if strings.IndexByte(modes, 'k') >= 0 {
				modes, key = removeLetter(modes, 'k'), ""
				applied.add(false, 'k', "*")
			}
		case 'l':
			if c.add {
				n, err := strconv.Atoi(c.arg)
				if err != nil || n <= 0 {
					r.sendError(u, reply.ErrNeedMoreParams, "MODE")
					return
				}
				modes, limit = addLetter(modes, 'l'), n
				applied.add(true, 'l', c.arg)
			} else if strings.IndexByte(modes, 'l') >= 0 {
				modes, limit = removeLetter(modes, 'l'), 0
				applied.add(false, 'l', "")
			}
		default:
			if c.add {
				if strings.IndexByte(modes, c.letter) < 0 {
					modes = addLetter(modes, c.letter)
					applied.add(true, c.letter, "")
				}
			} else if strings.IndexByte(modes, c.letter) >= 0 {
				modes = removeLetter(modes, c.letter)
				applied.add(false, c.letter, "")
			}
		}
	}

	ch.Modes, ch.Key, ch.Limit, ch.Bans = modes, key, limit, bans
	for _, p := range privs {
		if p.letter == 'o' {
			p.member.Op = p.add
		} else {
			p.member.Voice = p.add
		}
	}

	if !applied.empty() {
		r.sendChannel(ch, reply.Message(u.Hostmask(), "MODE", append([]string{ch.Name}, applied.params()...)...), u)
	}
	if listBans {
		for _, mask := range ch.Bans {
			r.sendNumeric(u, reply.RplBanList, reply.BanList(ch.Name, mask))
		}
		r.sendNumeric(u, reply.RplEndOfBanList, reply.EndOfBanList(ch.Name))
	}
	r.sendNumeric(u, reply.RplChannelModeIs, reply.ChannelModeIs(ch.Name, ch.Modes))
	r.sendNumeric(u, reply.RplCreationTime, reply.CreationTime(ch.Name, strconv.FormatInt(ch.Created.Unix(), 10)))
}

// modeDiff accumulates the changes that actually took effect, for the
// MODE line relayed to the other members.
type modeDiff struct {
	flags strings.Builder
	args  []string
	sign  byte
}

func (d *modeDiff) add(add bool, letter byte, arg string) {
	sign := byte('-')
	if add {
		sign = '+'
	}
	if sign != d.sign {
		d.flags.WriteByte(sign)
		d.sign = sign
	}
	d.flags.WriteByte(letter)
	if arg != "" {
		d.args = append(d.args, arg)
	}
}

func (d *modeDiff) empty() bool { return d.flags.Len() == 0 }

func (d *modeDiff) params() []string {
	return append([]string{d.flags.String()}, d.args...)
}
