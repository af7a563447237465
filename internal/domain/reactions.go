package domain

type ReactionType string

const (
	ReactionTypeEmoji  ReactionType = "emoji"
	ReactionTypeCustom ReactionType = "custom"
	ReactionTypePaid   ReactionType = "paid"
)

// Reaction identifies a single reaction kind.
type Reaction struct {
	Type       ReactionType `json:"type"`
	Emoticon   string       `json:"emoticon,omitempty"`
	DocumentID int64        `json:"document_id,omitempty"`
}

// ReactionCount is one aggregated entry of a message's reaction results.
// LocalAmount tracks a paid reaction applied optimistically before the
// server has confirmed it; it survives passive server reconciliation.
type ReactionCount struct {
	Reaction    Reaction `json:"reaction"`
	Count       int      `json:"count"`
	ChosenOrder *int     `json:"chosen_order,omitempty"`

	LocalAmount    int64  `json:"local_amount,omitempty"`
	LocalIsPrivate bool   `json:"local_is_private,omitempty"`
	LocalPeerID    string `json:"local_peer_id,omitempty"`
}

// IsChosen reports whether the viewer has this reaction applied.
func (r ReactionCount) IsChosen() bool {
	return r.ChosenOrder != nil
}

// RecentReaction is one entry of a message's bounded recent-reactors list.
type RecentReaction struct {
	PeerID    string   `json:"peer_id"`
	Reaction  Reaction `json:"reaction"`
	AddedDate int64    `json:"added_date"`
	IsOwn     bool     `json:"is_own,omitempty"`
	IsUnread  bool     `json:"is_unread,omitempty"`
}

// Reactions is the per-message reaction aggregate.
type Reactions struct {
	Results         []ReactionCount  `json:"results"`
	RecentReactions []RecentReaction `json:"recent_reactions,omitempty"`
	AreTags         bool             `json:"are_tags,omitempty"`
}
