package nmos

// ResourceKind identifies a class of transport resource. Both the Node API
// and the Connection API address senders and receivers under these plural
// path segments.
type ResourceKind string

const (
	Senders   ResourceKind = "senders"
	Receivers ResourceKind = "receivers"
)

// Kinds lists the resource kinds in the order tests iterate them.
func Kinds() []ResourceKind {
	return []ResourceKind{Senders, Receivers}
}

// Singular returns the capitalised singular name used in verdict messages,
// e.g. "Sender" for senders.
func (k ResourceKind) Singular() string {
	switch k {
	case Senders:
		return "Sender"
	case Receivers:
		return "Receiver"
	}
	return string(k)
}

// Plural returns the capitalised plural name, e.g. "Senders".
func (k ResourceKind) Plural() string {
	return k.Singular() + "s"
}

// SubscriptionPeerField returns the subscription key that cross-references
// the opposite kind: a receiver's subscription names a sender_id, a
// sender's names a receiver_id.
func (k ResourceKind) SubscriptionPeerField() string {
	if k == Senders {
		return "receiver_id"
	}
	return "sender_id"
}
