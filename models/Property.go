package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Location struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
	Zipcode string `bson:"zipcode,omitempty" json:"zipcode,omitempty"`
}

// Rates uses pointers so an unset rate stays absent from the stored document
// instead of a zero; the rent-mode price filter relies on that.
type Rates struct {
	Nightly *float64 `bson:"nightly,omitempty" json:"nightly,omitempty"`
	Weekly  *float64 `bson:"weekly,omitempty" json:"weekly,omitempty"`
	Monthly *float64 `bson:"monthly,omitempty" json:"monthly,omitempty"`
}

// HasRate reports whether at least one rental rate is populated.
func (r Rates) HasRate() bool {
	return r.Nightly != nil || r.Weekly != nil || r.Monthly != nil
}

type SellerInfo struct {
	Name  string `bson:"name,omitempty" json:"name,omitempty"`
	Email string `bson:"email,omitempty" json:"email,omitempty"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
}

type Property struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Owner       primitive.ObjectID `bson:"owner" json:"owner"`
	Name        string             `bson:"name" json:"name"`
	Type        string             `bson:"type" json:"type"`
	Description string             `bson:"description" json:"description"`
	Location    Location           `bson:"location" json:"location"`
	Beds        int                `bson:"beds" json:"beds"`
	Baths       int                `bson:"baths" json:"baths"`
	SquareFeet  int                `bson:"square_feet" json:"square_feet"`
	Amenities   []string           `bson:"amenities" json:"amenities"`
	Rates       Rates              `bson:"rates" json:"rates"`
	Price       *float64           `bson:"price,omitempty" json:"price,omitempty"`
	Discount    *float64           `bson:"discount,omitempty" json:"discount,omitempty"`
	Currency    string             `bson:"currency" json:"currency"`
	IsForSale   bool               `bson:"isForSale" json:"isForSale"`
	SellerInfo  SellerInfo         `bson:"seller_info" json:"seller_info"`
	Images      []string           `bson:"images" json:"images"`
	VideoURL    string             `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
