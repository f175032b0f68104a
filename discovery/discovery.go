/*
Package discovery turns cluster membership events into the host and token information the token map consumes.

Discovery itself is done elsewhere, serf in our deployments. Members carry their topology in tags:
the datacenter, the rack and the comma separated list of tokens they own. The tag names are configurable.
*/
package discovery

import (
	"net"
	"strconv"
	"strings"

	"github.com/hashicorp/serf/serf"
	"github.com/justloop/tokenmap/host"
)

// Member is one cluster member carried by a MemberEvent
type Member struct {
	// Host is the identity and topology of the member
	Host host.Host
	// Tokens is the textual form of the tokens owned by the member
	Tokens []string
}

// GetServer will convert member object to string info, format: [address:port]
func GetServer(member serf.Member, config *Config) string {
	port := int(member.Port)
	if config.ServicePort > 0 {
		port = config.ServicePort
	}
	return net.JoinHostPort(member.Addr.String(), strconv.Itoa(port))
}

// GetMember will convert a serf member to a Member using the tag names of config
func GetMember(member serf.Member, config *Config) Member {
	return Member{
		Host: host.New(
			GetServer(member, config),
			member.Tags[config.RackTag],
			member.Tags[config.DatacenterTag],
		),
		Tokens: SplitTokens(member.Tags[config.TokensTag]),
	}
}

// GetMembers will convert a list of serf members
func GetMembers(members []serf.Member, config *Config) []Member {
	result := make([]Member, 0, len(members))
	for _, member := range members {
		result = append(result, GetMember(member, config))
	}
	return result
}

// SplitTokens splits a comma separated token list, dropping empty items
func SplitTokens(tag string) []string {
	tokens := []string{}
	for _, token := range strings.Split(tag, ",") {
		token = strings.TrimSpace(token)
		if len(token) > 0 {
			tokens = append(tokens, token)
		}
	}
	return tokens
}
