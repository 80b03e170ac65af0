package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const auditCollection = "negotiation_audit"

type AuditRepo interface {
	Append(ctx context.Context, rec *NegotiationAudit) error
	ListByConversation(ctx context.Context, convID uint64, limit int64) ([]*NegotiationAudit, error)
}

type auditRepoImpl struct {
	col *mongo.Collection
}

func NewAuditRepo(db *mongo.Database) AuditRepo {
	return &auditRepoImpl{col: db.Collection(auditCollection)}
}

// EnsureAuditIndexes event_id 唯一，会话内按时间查询
func EnsureAuditIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(auditCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "event_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "occurred_at", Value: 1}}},
	})
	return err
}

// Append 重复投递的事件只保留第一次写入
func (s *auditRepoImpl) Append(ctx context.Context, rec *NegotiationAudit) error {
	filter := bson.M{"event_id": rec.EventID}
	update := bson.M{"$setOnInsert": rec}
	_, err := s.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// ListByConversation 按发生时间升序
func (s *auditRepoImpl) ListByConversation(ctx context.Context, convID uint64, limit int64) ([]*NegotiationAudit, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: 1}}).
		SetLimit(limit)

	cursor, err := s.col.Find(ctx, bson.M{"conversation_id": convID}, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var list []*NegotiationAudit
	if err = cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}
