package consts

const (
	ConversationSnapshotKey = "negotiation:conversation:"
	ConversationListKey     = "negotiation:conversation:list:"
	IMUserChannelKey        = "im:user:"
)

const (
	NegotiationLock = "negotiation:lock:"
	EventRelayLock  = "negotiation:relay:lock"
)
