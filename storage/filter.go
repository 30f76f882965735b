package storage

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"property-pulse-server/utils"
)

// The sentinel value that disables a filter field.
const FilterAll = "All"

// PropertyFilter holds the raw, optional search criteria as supplied by the
// caller. Query turns them into a Mongo filter; invalid or absent fields
// simply produce no clause.
type PropertyFilter struct {
	Location     string
	PropertyType string
	MaximumPrice string
	Currency     string
	IsForSale    string // "Sale", "Rent", "All" or empty
}

// Query builds the conjunction of the individual filter clauses. Clauses that
// need $or internally (location, rent-mode price) are kept independent by
// joining them under $and rather than letting one overwrite the other.
func (f PropertyFilter) Query() bson.M {
	query := bson.M{}
	var orGroups []bson.A

	if location := strings.TrimSpace(f.Location); location != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(location), Options: "i"}
		orGroups = append(orGroups, bson.A{
			bson.M{"location.city": pattern},
			bson.M{"location.state": pattern},
			bson.M{"location.country": pattern},
		})
	}

	if propertyType := strings.TrimSpace(f.PropertyType); propertyType != "" && propertyType != FilterAll {
		query["type"] = propertyType
	}

	if maxPrice, ok := utils.ParsePrice(f.MaximumPrice); ok {
		budget := bson.M{"$lte": maxPrice}
		switch f.IsForSale {
		case "Sale":
			query["price"] = budget
		case "Rent":
			orGroups = append(orGroups, bson.A{
				bson.M{"rates.monthly": budget},
				bson.M{"rates.weekly": budget},
				bson.M{"rates.nightly": budget},
			})
		default:
			orGroups = append(orGroups, bson.A{
				bson.M{"price": budget},
				bson.M{"rates.monthly": budget},
				bson.M{"rates.weekly": budget},
				bson.M{"rates.nightly": budget},
			})
		}
	}

	if currency, ok := utils.NormalizeCurrency(f.Currency); ok && f.Currency != FilterAll {
		query["currency"] = currency
	}

	switch f.IsForSale {
	case "Sale":
		query["isForSale"] = true
	case "Rent":
		query["isForSale"] = false
	}

	switch len(orGroups) {
	case 0:
	case 1:
		query["$or"] = orGroups[0]
	default:
		and := bson.A{}
		for _, group := range orGroups {
			and = append(and, bson.M{"$or": group})
		}
		query["$and"] = and
	}

	return query
}
