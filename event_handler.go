package tokenmap

import (
	"github.com/justloop/tokenmap/discovery"
	log "github.com/sirupsen/logrus"
)

// logTagListener is the logging tag for EventHandler
var logTagListener = "tokenmap.listener"

// EventHandler is a event listener that responsible to update the token map on membership changes
type EventHandler struct {
	tokenMap TokenMap
}

// NewEventHandler create a new EventHandler from a token map instance
func NewEventHandler(tokenMap TokenMap) *EventHandler {
	return &EventHandler{
		tokenMap: tokenMap,
	}
}

// Handler is the handler of member events, it rebuilds the map once per event
func (handler *EventHandler) Handler(event discovery.MemberEvent) error {
	log.WithField("tag", logTagListener).Infof("token map received %s for %d members", event.Type, len(event.Members))
	changed := false
	for _, member := range event.Members {
		switch event.Type {
		case discovery.EventMemberJoin:
			handler.tokenMap.AddHostTokens(member.Host, member.Tokens)
			changed = true
		case discovery.EventMemberUpdate:
			// the tags carry the full token list
			handler.tokenMap.UpdateHostTokens(member.Host, member.Tokens)
			changed = true
		case discovery.EventMemberLeave, discovery.EventMemberReap:
			handler.tokenMap.RemoveHost(member.Host)
			changed = true
		case discovery.EventMemberFailed:
			// a failed host still owns its tokens
			log.WithField("tag", logTagListener).Debugf("host %s failed, ring unchanged", member.Host.Address())
		}
	}
	if changed {
		handler.tokenMap.Build()
	}
	return nil
}
