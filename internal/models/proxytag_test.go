package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProxyTags(t *testing.T) {
	tags := ParseProxyTags(`[{"prefix":"k:","suffix":""},{"prefix":"{","suffix":"}"}]`)
	require.Len(t, tags, 2)
	assert.Equal(t, "k:", tags[0].Prefix)
	assert.Equal(t, "}", tags[1].Suffix)
}

func TestParseProxyTagsMalformed(t *testing.T) {
	assert.Nil(t, ParseProxyTags(""))
	assert.Nil(t, ParseProxyTags("not json"))
	assert.Nil(t, ParseProxyTags(`{"prefix":"k:"}`))
}

func TestSerializeProxyTagsRoundTrip(t *testing.T) {
	in := []ProxyTag{{Prefix: "k:", Suffix: ""}}
	out := ParseProxyTags(SerializeProxyTags(in))
	assert.Equal(t, in, out)

	assert.Equal(t, "[]", SerializeProxyTags(nil))
}

func TestMatchProxy(t *testing.T) {
	m := Member{Name: "Kit", ProxyTags: `[{"prefix":"k:","suffix":""}]`}

	stripped, ok := m.MatchProxy("k: hello there")
	require.True(t, ok)
	assert.Equal(t, "hello there", stripped)

	_, ok = m.MatchProxy("plain message")
	assert.False(t, ok)
}

func TestMatchProxySuffix(t *testing.T) {
	m := Member{Name: "Ren", ProxyTags: `[{"prefix":"{","suffix":"}"}]`}

	stripped, ok := m.MatchProxy("{hi}")
	require.True(t, ok)
	assert.Equal(t, "hi", stripped)

	// Shorter than prefix+suffix must not match or panic.
	_, ok = m.MatchProxy("{")
	assert.False(t, ok)
}

func TestMatchProxyEmptyTagsNeverMatch(t *testing.T) {
	m := Member{ProxyTags: `[{"prefix":"","suffix":""}]`}
	_, ok := m.MatchProxy("anything")
	assert.False(t, ok)
}

func TestMatchMemberFirstWins(t *testing.T) {
	members := []Member{
		{ID: 1, Name: "Kit", ProxyTags: `[{"prefix":"k:","suffix":""}]`},
		{ID: 2, Name: "Kay", ProxyTags: `[{"prefix":"k","suffix":""}]`},
	}

	m, stripped, ok := MatchMember(members, "k: hey")
	require.True(t, ok)
	assert.Equal(t, 1, m.ID)
	assert.Equal(t, "hey", stripped)

	m, _, ok = MatchMember(members, "no tags here")
	assert.False(t, ok)
	assert.Nil(t, m)
}

func TestAuthorName(t *testing.T) {
	msg := Message{Member: &Member{Name: "Kit"}, User: &User{Username: "sys"}}
	assert.Equal(t, "Kit", msg.AuthorName())

	msg = Message{User: &User{Username: "sys"}}
	assert.Equal(t, "sys", msg.AuthorName())

	msg = Message{}
	assert.Equal(t, "unknown", msg.AuthorName())
}
