package negotiation

import (
	"sort"
	"time"

	"Motorway/internal/model"
)

type ItemKind string

const (
	KindMessage ItemKind = "message"
	KindOffer   ItemKind = "offer"
)

// FeedItem 消息与报价合并后的展示项，不落库
type FeedItem struct {
	Kind    ItemKind
	Message *model.Message
	Offer   *model.Offer
}

func (f FeedItem) CreatedAt() time.Time {
	if f.Kind == KindOffer {
		return f.Offer.CreatedAt
	}
	return f.Message.CreatedAt
}

func (f FeedItem) SenderID() uint64 {
	if f.Kind == KindOffer {
		return f.Offer.SenderID
	}
	return f.Message.SenderID
}

func (f FeedItem) id() uint64 {
	if f.Kind == KindOffer {
		return f.Offer.ID
	}
	return f.Message.ID
}

// MergeFeed 按创建时间升序合并；时间相同按 ID 升序，再相同则消息在前
func MergeFeed(messages []*model.Message, offers []*model.Offer) []FeedItem {
	items := make([]FeedItem, 0, len(messages)+len(offers))
	for _, m := range messages {
		items = append(items, FeedItem{Kind: KindMessage, Message: m})
	}
	for _, o := range offers {
		items = append(items, FeedItem{Kind: KindOffer, Offer: o})
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.CreatedAt().Equal(b.CreatedAt()) {
			return a.CreatedAt().Before(b.CreatedAt())
		}
		if a.id() != b.id() {
			return a.id() < b.id()
		}
		return a.Kind == KindMessage && b.Kind == KindOffer
	})
	return items
}
