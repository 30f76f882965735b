package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	FirstName      string               `bson:"firstName" json:"firstName"`
	LastName       string               `bson:"lastName" json:"lastName"`
	Username       string               `bson:"username,omitempty" json:"username,omitempty"`
	Email          string               `bson:"email" json:"email"`
	PhoneNumber    string               `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	Password       string               `bson:"password,omitempty" json:"-"`
	SocialLogin    bool                 `bson:"socialLogin" json:"socialLogin"`
	SocialProvider string               `bson:"socialProvider,omitempty" json:"socialProvider,omitempty"`
	Bookmarks      []primitive.ObjectID `bson:"bookmarks" json:"bookmarks"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"`
}
