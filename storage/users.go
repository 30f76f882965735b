package storage

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/exp/slices"

	"property-pulse-server/models"
)

type UserStore struct {
	store *Store
}

func NewUserStore(s *Store) *UserStore {
	return &UserStore{store: s}
}

func (u *UserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return u.findOne(ctx, bson.M{"_id": id})
}

func (u *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return u.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (u *UserStore) findOne(ctx context.Context, query bson.M) (*models.User, error) {
	var user models.User
	err := u.store.Users().FindOne(ctx, query).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserStore) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.Email = strings.ToLower(user.Email)
	if user.Bookmarks == nil {
		user.Bookmarks = []primitive.ObjectID{}
	}

	result, err := u.store.Users().InsertOne(ctx, user)
	if err != nil {
		return err
	}
	user.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// ToggleBookmark adds the property to the user's bookmark set when absent and
// removes it when present. Returns the new bookmarked state.
func (u *UserStore) ToggleBookmark(ctx context.Context, userID, propertyID primitive.ObjectID) (bool, error) {
	user, err := u.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}

	bookmarked := slices.Contains(user.Bookmarks, propertyID)

	var update bson.M
	if bookmarked {
		update = bson.M{"$pull": bson.M{"bookmarks": propertyID}}
	} else {
		update = bson.M{"$addToSet": bson.M{"bookmarks": propertyID}}
	}
	update["$set"] = bson.M{"updatedAt": time.Now().UTC()}

	if _, err := u.store.Users().UpdateByID(ctx, userID, update); err != nil {
		return false, err
	}
	return !bookmarked, nil
}

func (u *UserStore) IsBookmarked(ctx context.Context, userID, propertyID primitive.ObjectID) (bool, error) {
	user, err := u.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return slices.Contains(user.Bookmarks, propertyID), nil
}
