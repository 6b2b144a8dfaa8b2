// Package reply formats server-to-client protocol lines: numeric replies,
// numeric errors and plain commands such as JOIN or PRIVMSG. Every function
// returns one complete line terminated by CRLF.
package reply

import (
	"fmt"
	"strconv"
	"strings"
)

// Terminator ends every line written to a client.
const Terminator = "\r\n"

// Success replies.
const (
	RplWelcome       = 1
	RplYourHost      = 2
	RplCreated       = 3
	RplMyInfo        = 4
	RplUModeIs       = 221
	RplAway          = 301
	RplUnAway        = 305
	RplNowAway       = 306
	RplEndOfWho      = 315
	RplChannelModeIs = 324
	RplCreationTime  = 329
	RplNoTopic       = 331
	RplTopic         = 332
	RplInviting      = 341
	RplWhoReply      = 352
	RplNamReply      = 353
	RplEndOfNames    = 366
	RplBanList       = 367
	RplEndOfBanList  = 368
	RplMotd          = 372
	RplMotdStart     = 375
	RplEndOfMotd     = 376
	RplYoureOper     = 381
)

// Error replies.
const (
	ErrNoSuchNick        = 401
	ErrNoSuchChannel     = 403
	ErrCannotSendToChan  = 404
	ErrNoRecipient       = 411
	ErrNoTextToSend      = 412
	ErrUnknownCommand    = 421
	ErrNoMotd            = 422
	ErrNoNicknameGiven   = 431
	ErrErroneusNickname  = 432
	ErrNicknameInUse     = 433
	ErrUserNotInChannel  = 441
	ErrNotOnChannel      = 442
	ErrUserOnChannel     = 443
	ErrNotRegistered     = 451
	ErrNeedMoreParams    = 461
	ErrAlreadyRegistered = 462
	ErrPasswdMismatch    = 464
	ErrKeySet            = 467
	ErrChannelIsFull     = 471
	ErrUnknownMode       = 472
	ErrInviteOnlyChan    = 473
	ErrBannedFromChan    = 474
	ErrBadChannelKey     = 475
	ErrBadChanMask       = 476
	ErrChanOPrivsNeeded  = 482
	ErrUModeUnknownFlag  = 501
	ErrUsersDontMatch    = 502
)

var errorText = map[int]string{
	ErrNoSuchNick:        "No such nick/channel",
	ErrNoSuchChannel:     "No such channel",
	ErrCannotSendToChan:  "Cannot send to channel",
	ErrNoRecipient:       "No recipient given",
	ErrNoTextToSend:      "No text to send",
	ErrUnknownCommand:    "Unknown command",
	ErrNoMotd:            "MOTD File is missing",
	ErrNoNicknameGiven:   "No nickname given",
	ErrErroneusNickname:  "Erroneous nickname",
	ErrNicknameInUse:     "Nickname is already in use",
	ErrUserNotInChannel:  "They aren't on that channel",
	ErrNotOnChannel:      "You're not on that channel",
	ErrUserOnChannel:     "is already on channel",
	ErrNotRegistered:     "You have not registered",
	ErrNeedMoreParams:    "Not enough parameters",
	ErrAlreadyRegistered: "Unauthorized command (already registered)",
	ErrPasswdMismatch:    "Password incorrect",
	ErrKeySet:            "Channel key already set",
	ErrChannelIsFull:     "Cannot join channel (+l)",
	ErrUnknownMode:       "is unknown mode char to me",
	ErrInviteOnlyChan:    "Cannot join channel (+i)",
	ErrBannedFromChan:    "Cannot join channel (+b)",
	ErrBadChannelKey:     "Cannot join channel (+k)",
	ErrBadChanMask:       "Bad Channel Mask",
	ErrChanOPrivsNeeded:  "You're not channel operator",
	ErrUModeUnknownFlag:  "Unknown MODE flag",
	ErrUsersDontMatch:    "Cannot change mode for other users",
}

// Numeric builds ":<server> <code> <target> <body>". An empty target is
// written as "*", which is what clients expect before a nick is known.
func Numeric(server, target string, code int, body string) string {
	if target == "" {
		target = "*"
	}
	var b strings.Builder
	b.WriteString(":")
	b.WriteString(server)
	b.WriteString(" ")
	b.WriteString(fmt.Sprintf("%03d", code))
	b.WriteString(" ")
	b.WriteString(target)
	if body != "" {
		b.WriteString(" ")
		b.WriteString(body)
	}
	b.WriteString(Terminator)
	return b.String()
}

// Error builds the numeric error line for code. subject is the offending
// nick, channel or command and may be empty. An unknown code panics.
func Error(server, target string, code int, subject string) string {
	text, ok := errorText[code]
	if !ok {
		panic("reply: no error text for numeric " + strconv.Itoa(code))
	}
	body := ":" + text
	if subject != "" {
		body = subject + " " + body
	}
	return Numeric(server, target, code, body)
}

// Message builds a non-numeric line such as ":nick!user@host JOIN #chan".
// The last parameter gets a colon when it is empty, contains a space or
// starts with a colon.
func Message(prefix, command string, params ...string) string {
	var b strings.Builder
	if prefix != "" {
		b.WriteString(":")
		b.WriteString(prefix)
		b.WriteString(" ")
	}
	b.WriteString(command)
	for i, p := range params {
		b.WriteString(" ")
		if i == len(params)-1 && (p == "" || strings.Contains(p, " ") || strings.HasPrefix(p, ":")) {
			b.WriteString(":")
		}
		b.WriteString(p)
	}
	b.WriteString(Terminator)
	return b.String()
}

// Closing is the ERROR line sent right before the server drops a link.
func Closing(host, reason string) string {
	return Message("", "ERROR", fmt.Sprintf("Closing Link: %s (%s)", host, reason))
}

// Hostmask formats nick!user@host.
func Hostmask(nick, user, host string) string {
	return nick + "!" + user + "@" + host
}
