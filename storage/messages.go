package storage

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"property-pulse-server/models"
)

type MessageStore struct {
	store *Store
}

func NewMessageStore(s *Store) *MessageStore {
	return &MessageStore{store: s}
}

func (m *MessageStore) Insert(ctx context.Context, message *models.Message) error {
	message.CreatedAt = time.Now().UTC()
	result, err := m.store.Messages().InsertOne(ctx, message)
	if err != nil {
		return err
	}
	message.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// ListForRecipient returns the recipient's inbox, newest first.
func (m *MessageStore) ListForRecipient(ctx context.Context, recipientID primitive.ObjectID) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := m.store.Messages().Find(ctx, bson.M{"recipient": recipientID}, opts)
	if err != nil {
		return nil, err
	}
	messages := []models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead flips the read flag on a message owned by the given recipient.
func (m *MessageStore) MarkRead(ctx context.Context, id, recipientID primitive.ObjectID, read bool) error {
	result, err := m.store.Messages().UpdateOne(ctx,
		bson.M{"_id": id, "recipient": recipientID},
		bson.M{"$set": bson.M{"read": read}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
