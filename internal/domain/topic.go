package domain

// Topic is a forum sub-conversation rooted at its creation message; its id
// equals that message's id.
type Topic struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	IconColor   int32  `json:"icon_color,omitempty"`
	IconEmojiID int64  `json:"icon_emoji_id,omitempty"`
	Date        int64  `json:"date,omitempty"`
	FromID      string `json:"from_id,omitempty"`

	IsOwner  bool `json:"is_owner,omitempty"`
	IsClosed bool `json:"is_closed,omitempty"`
	IsHidden bool `json:"is_hidden,omitempty"`
	IsPinned bool `json:"is_pinned,omitempty"`

	// IsMin marks a partial representation carrying only the safe field
	// subset.
	IsMin bool `json:"is_min,omitempty"`

	NotifySettings *NotifySettings `json:"notify_settings,omitempty"`
}

type NotifySettings struct {
	MutedUntil   int64 `json:"muted_until,omitempty"`
	HasSound     bool  `json:"has_sound,omitempty"`
	ShowsPreview bool  `json:"shows_preview,omitempty"`
}

// TopicsInfo is the per-chat forum topic registry.
type TopicsInfo struct {
	TopicsByID            map[int64]*Topic `json:"topics_by_id"`
	ListedTopicIDs        []int64          `json:"listed_topic_ids,omitempty"`
	OrderedPinnedTopicIDs []int64          `json:"ordered_pinned_topic_ids,omitempty"`
	TotalCount            int              `json:"total_count,omitempty"`
}

// TopicPatch is a partial topic update. Nil fields keep the current value.
// When IsMin is set, the merge is restricted to the safe subset: id, title,
// icon color, icon emoji, date, sender, owner and closed flags. A min
// snapshot must never clobber richer fields of a previously known full
// topic.
type TopicPatch struct {
	ID          int64   `json:"id"`
	Title       *string `json:"title,omitempty"`
	IconColor   *int32  `json:"icon_color,omitempty"`
	IconEmojiID *int64  `json:"icon_emoji_id,omitempty"`
	Date        *int64  `json:"date,omitempty"`
	FromID      *string `json:"from_id,omitempty"`

	IsOwner  *bool `json:"is_owner,omitempty"`
	IsClosed *bool `json:"is_closed,omitempty"`
	IsHidden *bool `json:"is_hidden,omitempty"`
	IsPinned *bool `json:"is_pinned,omitempty"`

	IsMin bool `json:"is_min,omitempty"`

	NotifySettings *NotifySettings `json:"notify_settings,omitempty"`
}

// Apply merges the patch into a copy of t and returns it. t may be nil for
// a first sighting.
func (p TopicPatch) Apply(t *Topic) *Topic {
	var next Topic
	if t != nil {
		next = *t
	}
	if p.ID != 0 {
		next.ID = p.ID
	}
	if p.Title != nil {
		next.Title = *p.Title
	}
	if p.IconColor != nil {
		next.IconColor = *p.IconColor
	}
	if p.IconEmojiID != nil {
		next.IconEmojiID = *p.IconEmojiID
	}
	if p.Date != nil {
		next.Date = *p.Date
	}
	if p.FromID != nil {
		next.FromID = *p.FromID
	}
	if p.IsOwner != nil {
		next.IsOwner = *p.IsOwner
	}
	if p.IsClosed != nil {
		next.IsClosed = *p.IsClosed
	}
	if !p.IsMin {
		if p.IsHidden != nil {
			next.IsHidden = *p.IsHidden
		}
		if p.IsPinned != nil {
			next.IsPinned = *p.IsPinned
		}
		if p.NotifySettings != nil {
			next.NotifySettings = p.NotifySettings
		}
		next.IsMin = false
	} else if t == nil {
		next.IsMin = true
	}
	return &next
}
