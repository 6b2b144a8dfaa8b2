package reply

// Bodies of the success numerics. Pass the result to Numeric together with
// the matching Rpl* code.

func Welcome(nick, user, host string) string {
	return ":Welcome to the Internet Relay Network " + Hostmask(nick, user, host)
}

func YourHost(server, version string) string {
	return ":Your host is " + server + ", running version " + version
}

func Created(date string) string {
	return ":This server was created " + date
}

func MyInfo(server, version, userModes, channelModes string) string {
	return server + " " + version + " " + userModes + " " + channelModes
}

func MotdStart(server string) string {
	return ":- " + server + " Message of the day - "
}

func Motd(text string) string {
	return ":- " + text
}

func EndOfMotd() string {
	return ":End of /MOTD command"
}

// UModeIs carries the bare mode string.
func UModeIs(mode string) string {
	return mode
}

// WhoReply is "<channel> <user> <host> <server> <nick> <flags> :<hops> <realname>".
func WhoReply(channel, user, host, server, nick, flags, realname string) string {
	return channel + " " + user + " " + host + " " + server + " " + nick + " " + flags + " :0 " + realname
}

func EndOfWho(name string) string {
	return name + " :End of /WHO list"
}

func ChannelModeIs(channel, mode string) string {
	return channel + " :+" + mode
}

func NoTopic(channel string) string {
	return channel + " :No topic is set"
}

func Topic(channel, topic string) string {
	return channel + " :" + topic
}

func NamReply(channel, list string) string {
	return "= " + channel + " :" + list
}

func EndOfNames(channel string) string {
	return channel + " :End of /NAMES list."
}

func Away(nick, msg string) string {
	return nick + " :" + msg
}

func UnAway() string {
	return ":You are no longer marked as being away"
}

func NowAway() string {
	return ":You have been marked as being away"
}

func CreationTime(channel, creationTime string) string {
	return channel + " :" + creationTime
}

func BanList(channel, mask string) string {
	return channel + " :" + mask
}

func EndOfBanList(channel string) string {
	return channel + " :End of channel ban list"
}

func Inviting(channel, nick string) string {
	return channel + " " + nick
}

func YoureOper() string {
	return ":You are now an IRC operator"
}
