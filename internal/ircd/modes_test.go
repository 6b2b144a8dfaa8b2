package ircd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserMode_SetAndClear(t *testing.T) {
	h := newHarness(t, Options{})
	c := h.register("alice")

	h.send(c, "MODE alice +iw")
	ev := find(t, h.drain(c), "221")
	assert.Equal(t, "iw", ev.Last())

	// idempotent
	h.send(c, "MODE alice +i")
	ev = find(t, h.drain(c), "221")
	assert.Equal(t, "iw", ev.Last())

	h.send(c, "MODE ALICE -i+s")
	ev = find(t, h.drain(c), "221")
	assert.Equal(t, "ws", ev.Last())

	h.send(c, "MODE alice -ws")
	find(t, h.drain(c), "221")
	assert.Empty(t, h.user("alice").Modes)
}

func TestUserMode_Errors(t *testing.T) {
	h := newHarness(t, Options{})
	c := h.register("alice")
	h.register("bob")

	h.send(c, "MODE bob +i")
	assert.Equal(t, []string{"502"}, commandsOf(h.drain(c)))
	assert.Empty(t, h.user("bob").Modes)

	// unknown nicks are a mismatch too
	h.send(c, "MODE nobody +i")
	assert.Equal(t, []string{"502"}, commandsOf(h.drain(c)))

	h.send(c, "MODE alice +ix")
	evs := h.drain(c)
	require.Equal(t, []string{"472"}, commandsOf(evs))
	assert.Equal(t, "x", evs[0].Params[1])
	assert.Empty(t, h.user("alice").Modes, "no partial application")
}

func TestUserMode_OperatorOnlyThroughOper(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	h := newHarness(t, Options{Operators: map[string][]byte{"admin": hash}})
	c := h.register("alice")

	h.send(c, "MODE alice +o")
	h.drain(c)
	assert.False(t, h.user("alice").IsOperator())

	h.send(c, "OPER admin pw", "MODE alice +i")
	h.drain(c)
	assert.Equal(t, "oi", h.user("alice").Modes)

	h.send(c, "MODE alice -o")
	ev := find(t, h.drain(c), "221")
	assert.Equal(t, "i", ev.Last())
	assert.False(t, h.user("alice").IsOperator())
}

func TestChannelMode_FlagsAndRelay(t *testing.T) {
	h := newHarness(t, Options{})
	alice := h.register("alice")
	bob := h.register("bob")
	h.join("#go", alice, bob)
	h.drain(alice)

	h.send(alice, "MODE #go +tn")
	evs := h.drain(alice)
	assert.Equal(t, []string{"324", "329"}, commandsOf(evs))
	assert.Equal(t, []string{"alice", "#go", "+tn"}, evs[0].Params)

	ev := find(t, h.drain(bob), "MODE")
	assert.Equal(t, "alice", ev.Source.Name)
	assert.Equal(t, []string{"#go", "+tn"}, ev.Params)

	// repeating a set flag changes nothing and relays nothing
	h.send(alice, "MODE #go +t")
	h.drain(alice)
	assert.Empty(t, h.drain(bob))
	assert.Equal(t, "tn", h.channel("#go").Modes)

	h.send(alice, "MODE #go -t+m")
	h.drain(alice)
	ev = find(t, h.drain(bob), "MODE")
	assert.Equal(t, []string{"#go", "-t+m"}, ev.Params)
	assert.Equal(t, "nm", h.channel("#go").Modes)

	// removing an absent flag still confirms the current set
	h.send(alice, "MODE #go -i")
	ev = find(t, h.drain(alice), "324")
	assert.Equal(t, "+nm", ev.Last())
	assert.Empty(t, h.drain(bob))
}

func TestChannelMode_Atomic(t *testing.T) {
	h := newHarness(t, Options{})
	alice := h.register("alice")
	h.join("#go", alice)

	h.send(alice, "MODE #go +tx")
	evs := h.drain(alice)
	require.Equal(t, []string{"472"}, commandsOf(evs))
	assert.Equal(t, "x", evs[0].Params[1])
	assert.Empty(t, h.channel("#go").Modes)

	h.send(alice, "MODE #go +io")
	assert.Equal(t, []string{"461"}, commandsOf(h.drain(alice)))
	assert.Empty(t, h.channel("#go").Modes)

	h.send(alice, "MODE #go +il zero")
	assert.Equal(t, []string{"461"}, commandsOf(h.drain(alice)))
	assert.Empty(t, h.channel("#go").Modes)

	h.send(alice, "MODE #go +iv nobody")
	assert.Equal(t, []string{"401"}, commandsOf(h.drain(alice)))
	assert.Empty(t, h.channel("#go").Modes)
}

func TestChannelMode_Privileges(t *testing.T) {
	h := newHarness(t, Options{})
	alice := h.register("alice")
	bob := h.register("bob")
	carol := h.register("carol")
	h.join("#go", alice, bob)
	h.drain(alice)

	h.send(bob, "MODE #go +t")
	assert.Equal(t, []string{"482"}, commandsOf(h.drain(bob)))

	h.send(carol, "MODE #go +t")
	assert.Equal(t, []string{"442"}, commandsOf(h.drain(carol)))

	// listing bans needs no privileges
	h.send(bob, "MODE #go +b")
	assert.Equal(t, []string{"368", "324", "329"}, commandsOf(h.drain(bob)))

	h.send(alice, "MODE #go +o carol")
	ev := find(t, h.drain(alice), "441")
	assert.Equal(t, []string{"alice", "carol", "#go", "They aren't on that channel"}, ev.Params)

	h.send(alice, "MODE #go +ov bob bob")
	h.drain(alice)
	ev = find(t, h.drain(bob), "MODE")
	assert.Equal(t, []string{"#go", "+ov", "bob", "bob"}, ev.Params)

	m := h.channel("#go").Member(h.user("bob"))
	require.NotNil(t, m)
	assert.True(t, m.Op)
	assert.True(t, m.Voice)
	assert.Equal(t, "@", m.Prefix())

	h.send(bob, "MODE #go -o alice")
	h.drain(bob)
	assert.False(t, h.channel("#go").Member(h.user("alice")).Op)
	find(t, h.drain(alice), "MODE")

	h.send(alice, "MODE #go +t")
	assert.Equal(t, []string{"482"}, commandsOf(h.drain(alice)))
}

func TestChannelMode_OperatorBypassesChanop(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	h := newHarness(t, Options{Operators: map[string][]byte{"admin": hash}})
	alice := h.register("alice")
	bob := h.register("bob")
	h.join("#go", alice)

	h.send(bob, "OPER admin pw", "MODE #go +s")
	find(t, h.drain(bob), "324")
	assert.Equal(t, "s", h.channel("#go").Modes)
}

func TestChannelMode_KeyAndLimit(t *testing.T) {
	h := newHarness(t, Options{})
	alice := h.register("alice")
	bob := h.register("bob")
	carol := h.register("carol")
	h.join("#go", alice)

	h.send(alice, "MODE #go +k sesame")
	ev := find(t, h.drain(alice), "324")
	assert.Equal(t, "+k", ev.Last())
	assert.Equal(t, "sesame", h.channel("#go").Key)

	h.send(alice, "MODE #go +k other")
	assert.Equal(t, []string{"467"}, commandsOf(h.drain(alice)))
	assert.Equal(t, "sesame", h.channel("#go").Key)

	h.send(bob, "JOIN #go")
	assert.Equal(t, []string{"475"}, commandsOf(h.drain(bob)))
	h.send(bob, "JOIN #go wrong")
	assert.Equal(t, []string{"475"}, commandsOf(h.drain(bob)))
	h.send(bob, "JOIN #go sesame")
	find(t, h.drain(bob), "366")

	h.send(alice, "MODE #go -k+l * 2")
	h.drain(alice)
	ch := h.channel("#go")
	assert.Empty(t, ch.Key)
	assert.Equal(t, 2, ch.Limit)
	assert.Equal(t, "l", ch.Modes)

	h.send(carol, "JOIN #go")
	assert.Equal(t, []string{"471"}, commandsOf(h.drain(carol)))

	h.send(alice, "MODE #go +l -3")
	assert.Equal(t, []string{"461"}, commandsOf(h.drain(alice)))

	h.send(alice, "MODE #go -l")
	h.drain(alice)
	h.send(carol, "JOIN #go")
	find(t, h.drain(carol), "366")
	assert.Equal(t, 0, h.channel("#go").Limit)
}

func TestChannelMode_Bans(t *testing.T) {
	h := newHarness(t, Options{})
	alice := h.register("alice")
	bob := h.register("bob")
	h.join("#go", alice, bob)
	h.drain(alice)

	h.send(alice, "MODE #go +b bob!*@*", "MODE #go +b bob!*@*")
	h.drain(alice)
	assert.Len(t, h.drain(bob), 2, "each ban is relayed")
	assert.Equal(t, []string{"bob!*@*", "bob!*@*"}, h.channel("#go").Bans)

	h.send(alice, "MODE #go +b")
	evs := h.drain(alice)
	assert.Equal(t, []string{"367", "367", "368", "324", "329"}, commandsOf(evs))
	assert.Equal(t, []string{"alice", "#go", "bob!*@*"}, evs[0].Params)

	// banned members may not speak
	h.send(bob, "PRIVMSG #go :hello")
	assert.Equal(t, []string{"404"}, commandsOf(h.drain(bob)))

	h.send(bob, "PART #go", "JOIN #go")
	evs = h.drain(bob)
	assert.Equal(t, []string{"PART", "474"}, commandsOf(evs))

	h.send(alice, "MODE #go -b bob!*@*")
	h.drain(alice)
	assert.Equal(t, []string{"bob!*@*"}, h.channel("#go").Bans)
	h.send(alice, "MODE #go -b bob!*@*")
	h.drain(alice)
	assert.Empty(t, h.channel("#go").Bans)

	h.send(bob, "JOIN #go")
	find(t, h.drain(bob), "366")
}

func TestChannelMode_Targets(t *testing.T) {
	h := newHarness(t, Options{})
	alice := h.register("alice")
	h.join("&local", alice)

	h.send(alice, "MODE #missing +t")
	evs := h.drain(alice)
	require.Equal(t, []string{"401"}, commandsOf(evs))
	assert.Equal(t, "#missing", evs[0].Params[1])

	h.send(alice, "MODE &local +k sekrit")
	h.drain(alice)

	// "&" targets fall back to a channel whose key matches
	h.send(alice, "MODE &sekrit +t")
	ev := find(t, h.drain(alice), "324")
	assert.Equal(t, "&local", ev.Params[1])
	assert.Equal(t, "kt", h.channel("&local").Modes)
}

func TestParseChanges(t *testing.T) {
	changes, err := parseChanges("i-w+s", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []modeChange{
		{add: true, letter: 'i'},
		{add: false, letter: 'w'},
		{add: true, letter: 's'},
	}, changes)

	changes, err = parseChanges("+kl-o", []string{"key", "5", "bob"}, channelModeArg)
	require.NoError(t, err)
	require.Len(t, changes, 3)
	assert.Equal(t, "key", changes[0].arg)
	assert.Equal(t, "5", changes[1].arg)
	assert.Equal(t, "bob", changes[2].arg)

	_, err = parseChanges("+l", nil, channelModeArg)
	assert.ErrorIs(t, err, errMissingArg)

	changes, err = parseChanges("-lb", nil, channelModeArg)
	require.NoError(t, err)
	assert.False(t, changes[1].hasArg)
}

func TestModeDiff(t *testing.T) {
	var d modeDiff
	assert.True(t, d.empty())
	d.add(true, 'i', "")
	d.add(true, 'k', "key")
	d.add(false, 'o', "bob")
	d.add(true, 'l', "3")
	assert.Equal(t, []string{"+ik-o+l", "key", "bob", "3"}, d.params())
}
