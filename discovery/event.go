package discovery

// EventType is the potential event type for member event
type EventType int

// All the message types related to member events
const (
	EventMemberJoin EventType = iota
	EventMemberLeave
	EventMemberFailed
	EventMemberReap
	EventMemberUpdate
)

func (t EventType) String() string {
	switch t {
	case EventMemberJoin:
		return "member-join"
	case EventMemberLeave:
		return "member-leave"
	case EventMemberFailed:
		return "member-failed"
	case EventMemberReap:
		return "member-reap"
	case EventMemberUpdate:
		return "member-update"
	}
	return "unknown"
}

// MemberEvent is the member event received
type MemberEvent struct {
	// Type is one of the EventType
	Type EventType
	// Members is the list of members related to this event
	Members []Member
}

// HandlerFunc defines a function to handle the member events
type HandlerFunc func(event MemberEvent) error
