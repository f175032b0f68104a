package discovery

import (
	"errors"

	"github.com/hashicorp/serf/serf"
	"github.com/justloop/tokenmap/utils"
	log "github.com/sirupsen/logrus"
)

var (
	// logTag is the logging tag for the event handler
	logTag = "tokenmap.discovery"

	// errUnknownMemberEvent is returned for serf member events of an unknown type
	errUnknownMemberEvent = errors.New("unknown member event received")
)

// SerfEventHandler adapts a HandlerFunc to serf's event handler, hiding serf from the token map
type SerfEventHandler struct {
	config  *Config
	handler HandlerFunc
}

// NewEventHandler will return a serf event handler from handler Function, config is optional
func NewEventHandler(handler HandlerFunc, config *Config) *SerfEventHandler {
	if config == nil {
		config = &Config{}
	}
	return &SerfEventHandler{
		config:  setDefaultConfig(config),
		handler: handler,
	}
}

// HandleEvent implements serf's agent.EventHandler
func (h *SerfEventHandler) HandleEvent(event serf.Event) {
	defer utils.DoPanicRecovery(logTag)
	if err := h.processEvent(event); err != nil {
		log.WithField("tag", logTag).Errorf("EventHandler error: %s", err)
	}
}

func (h *SerfEventHandler) processEvent(event serf.Event) error {
	switch casted := event.(type) {
	case serf.MemberEvent:
		return h.processMemberEvent(casted)
	case serf.UserEvent:
		log.WithField("tag", logTag).Debugf("EventHandler received user event: %s, ignored", utils.GetJSONStr(casted))
		return nil
	case *serf.Query:
		log.WithField("tag", logTag).Debugf("EventHandler received query event: %s, ignored", casted.Name)
		return nil
	}
	return nil
}

func (h *SerfEventHandler) processMemberEvent(casted serf.MemberEvent) error {
	var eventType EventType

	switch casted.Type {
	case serf.EventMemberJoin:
		eventType = EventMemberJoin
	case serf.EventMemberLeave:
		eventType = EventMemberLeave
	case serf.EventMemberFailed:
		eventType = EventMemberFailed
	case serf.EventMemberReap:
		eventType = EventMemberReap
	case serf.EventMemberUpdate:
		eventType = EventMemberUpdate
	default:
		log.WithField("tag", logTag).Warnf("unknown member event received: %s", casted.Type)
		return errUnknownMemberEvent
	}

	return h.handler(MemberEvent{
		Type:    eventType,
		Members: GetMembers(casted.Members, h.config),
	})
}
