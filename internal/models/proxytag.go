package models

import (
	"encoding/json"
	"strings"
)

// ProxyTag is a prefix/suffix text pattern that selects a persona at
// compose time, e.g. {Prefix: "k:", Suffix: ""} matches "k: hello".
type ProxyTag struct {
	Prefix string `json:"prefix"`
	Suffix string `json:"suffix"`
}

// ParseProxyTags decodes a serialized tag list. Malformed input means
// "no tags", never an error; stored tags come from external syncs and
// are not trusted to be well formed.
func ParseProxyTags(raw string) []ProxyTag {
	if raw == "" {
		return nil
	}
	var tags []ProxyTag
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil
	}
	return tags
}

func SerializeProxyTags(tags []ProxyTag) string {
	if len(tags) == 0 {
		return "[]"
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// MatchProxy reports whether content matches one of the member's proxy
// tags, returning the content with the tag stripped. Empty tags never
// match.
func (m *Member) MatchProxy(content string) (string, bool) {
	for _, tag := range ParseProxyTags(m.ProxyTags) {
		if tag.Prefix == "" && tag.Suffix == "" {
			continue
		}
		if len(content) < len(tag.Prefix)+len(tag.Suffix) {
			continue
		}
		if strings.HasPrefix(content, tag.Prefix) && strings.HasSuffix(content, tag.Suffix) {
			inner := content[len(tag.Prefix) : len(content)-len(tag.Suffix)]
			return strings.TrimSpace(inner), true
		}
	}
	return content, false
}

// MatchMember finds the first member whose proxy tags match the draft
// content, in the order members are listed.
func MatchMember(members []Member, content string) (*Member, string, bool) {
	for i := range members {
		if stripped, ok := members[i].MatchProxy(content); ok {
			return &members[i], stripped, true
		}
	}
	return nil, content, false
}
