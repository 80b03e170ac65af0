package service

import (
	"Motorway/internal/model"
	"Motorway/internal/pkg/consts"
	"Motorway/internal/repository"
	"context"
	log "log/slog"
	"strconv"
	"time"
)

// versionTTL 需远大于快照与列表的 TTL
const versionTTL = 24 * time.Hour

// Operation 会修改会话状态的操作
type Operation string

const (
	OpStartConversation  Operation = "startConversation"
	OpSendMessage        Operation = "sendMessage"
	OpCreateOffer        Operation = "createOffer"
	OpCounterOffer       Operation = "counterOffer"
	OpRespondToOffer     Operation = "respondToOffer"
	OpMarkRead           Operation = "markRead"
	OpRemoveConversation Operation = "removeConversation"
)

type keyFunc func(conv *model.Conversation, actorID uint64) []string

func snapshotKey(conv *model.Conversation, _ uint64) []string {
	return []string{SnapshotKey(conv.ID)}
}

func participantListKeys(conv *model.Conversation, _ uint64) []string {
	return []string{ListKey(conv.BuyerID), ListKey(conv.SellerID)}
}

func actorListKey(_ *model.Conversation, actorID uint64) []string {
	return []string{ListKey(actorID)}
}

// invalidationTable 每个操作提交成功后需要删除的缓存
var invalidationTable = map[Operation][]keyFunc{
	OpStartConversation:  {snapshotKey, participantListKeys},
	OpSendMessage:        {snapshotKey, participantListKeys},
	OpCreateOffer:        {snapshotKey, participantListKeys},
	OpCounterOffer:       {snapshotKey, participantListKeys},
	OpRespondToOffer:     {snapshotKey, participantListKeys},
	OpMarkRead:           {snapshotKey, actorListKey},
	OpRemoveConversation: {actorListKey},
}

func SnapshotKey(convID uint64) string {
	return consts.ConversationSnapshotKey + strconv.FormatUint(convID, 10)
}

func ListKey(userID uint64) string {
	return consts.ConversationListKey + strconv.FormatUint(userID, 10)
}

// InvalidationKeys 返回操作对应的全部缓存键
func InvalidationKeys(op Operation, conv *model.Conversation, actorID uint64) []string {
	var keys []string
	for _, fn := range invalidationTable[op] {
		keys = append(keys, fn(conv, actorID)...)
	}
	return keys
}

func versionKey(key string) string {
	return key + ":ver"
}

// invalidate 只在事务提交后调用；先递增版本再删除，
// 读库期间发生的修改会让之后的回填落空。失败仅记录，缓存 TTL 兜底
func invalidate(ctx context.Context, cache Cache, op Operation, conv *model.Conversation, actorID uint64) {
	keys := InvalidationKeys(op, conv, actorID)
	if len(keys) == 0 {
		return
	}
	for _, key := range keys {
		if _, err := cache.Incr(ctx, versionKey(key), versionTTL); err != nil {
			log.WarnContext(ctx, "bump cache version failed", "key", key, "err", err)
		}
	}
	if err := cache.DeleteKey(ctx, keys...); err != nil {
		log.WarnContext(ctx, "cache invalidation failed", "op", op, "keys", keys, "err", err)
	}
}

// invalidateVehicle 车辆状态变化影响同一车辆下所有会话的快照与列表
func invalidateVehicle(ctx context.Context, cache Cache, repo repository.ConversationRepo, vehicleID uint64, actorID uint64) {
	convs, err := repo.ListByVehicle(ctx, vehicleID)
	if err != nil {
		log.WarnContext(ctx, "list vehicle conversations failed", "vehicle_id", vehicleID, "err", err)
		return
	}
	for _, c := range convs {
		invalidate(ctx, cache, OpRespondToOffer, c, actorID)
	}
}

// readVersion 回源前记录版本号，读取失败时返回 false，本次不回填
func readVersion(ctx context.Context, cache Cache, key string) (string, bool) {
	ver, err := cache.GetValue(ctx, versionKey(key))
	if err != nil {
		log.WarnContext(ctx, "read cache version failed", "key", key, "err", err)
		return "", false
	}
	return ver, true
}

// fillIfUnchanged 版本未变才回填
func fillIfUnchanged(ctx context.Context, cache Cache, key, version string, data []byte, ttl time.Duration) {
	ok, err := cache.SetIfVersion(ctx, key, data, ttl, versionKey(key), version)
	if err != nil {
		log.WarnContext(ctx, "write cache failed", "key", key, "err", err)
		return
	}
	if !ok {
		log.DebugContext(ctx, "skip cache fill, invalidated during load", "key", key)
	}
}
