package storage

import (
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestQueryEmptyFilter(t *testing.T) {
	for _, f := range []PropertyFilter{
		{},
		{Location: "  ", PropertyType: FilterAll, MaximumPrice: "", Currency: FilterAll, IsForSale: FilterAll},
	} {
		if q := f.Query(); len(q) != 0 {
			t.Errorf("Query(%+v) = %v, want empty", f, q)
		}
	}
}

func TestQueryLocation(t *testing.T) {
	q := PropertyFilter{Location: "Lagos"}.Query()

	or, ok := q["$or"].(bson.A)
	if !ok {
		t.Fatalf("$or = %#v, want bson.A", q["$or"])
	}
	if len(or) != 3 {
		t.Fatalf("len($or) = %d, want 3 (city, state, country)", len(or))
	}
	pattern := or[0].(bson.M)["location.city"].(primitive.Regex)
	if pattern.Pattern != "Lagos" || pattern.Options != "i" {
		t.Errorf("city regex = %+v, want case-insensitive Lagos", pattern)
	}
}

func TestQueryLocationEscapesRegex(t *testing.T) {
	q := PropertyFilter{Location: "St. John's (West)"}.Query()
	pattern := q["$or"].(bson.A)[0].(bson.M)["location.city"].(primitive.Regex)
	if !strings.Contains(pattern.Pattern, `St\. John's \(West\)`) {
		t.Errorf("metacharacters not escaped: %q", pattern.Pattern)
	}
}

func TestQueryPropertyType(t *testing.T) {
	if q := (PropertyFilter{PropertyType: "Apartment"}).Query(); q["type"] != "Apartment" {
		t.Errorf("type clause = %v, want Apartment", q["type"])
	}
	if q := (PropertyFilter{PropertyType: FilterAll}).Query(); len(q) != 0 {
		t.Errorf("All sentinel produced a clause: %v", q)
	}
}

func TestQueryPriceByMode(t *testing.T) {
	tests := []struct {
		name      string
		filter    PropertyFilter
		wantField string   // set when the clause lands directly on one field
		wantOr    []string // set when the clause fans out as $or
	}{
		{
			name:      "sale mode bounds price",
			filter:    PropertyFilter{IsForSale: "Sale", MaximumPrice: "250000"},
			wantField: "price",
		},
		{
			name:   "rent mode bounds rates only",
			filter: PropertyFilter{IsForSale: "Rent", MaximumPrice: "2,000"},
			wantOr: []string{"rates.monthly", "rates.weekly", "rates.nightly"},
		},
		{
			name:   "no mode bounds price and rates",
			filter: PropertyFilter{MaximumPrice: "$2,000"},
			wantOr: []string{"price", "rates.monthly", "rates.weekly", "rates.nightly"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.filter.Query()

			if tt.wantField != "" {
				clause, ok := q[tt.wantField].(bson.M)
				if !ok {
					t.Fatalf("%s clause = %#v", tt.wantField, q[tt.wantField])
				}
				if clause["$lte"] != 250000.0 {
					t.Errorf("$lte = %v, want 250000", clause["$lte"])
				}
				return
			}

			or, ok := q["$or"].(bson.A)
			if !ok {
				t.Fatalf("$or = %#v, want bson.A", q["$or"])
			}
			fields := make([]string, 0, len(or))
			for _, branch := range or {
				for field, cond := range branch.(bson.M) {
					fields = append(fields, field)
					if cond.(bson.M)["$lte"] != 2000.0 {
						t.Errorf("%s $lte = %v, want 2000", field, cond.(bson.M)["$lte"])
					}
				}
			}
			if len(fields) != len(tt.wantOr) {
				t.Fatalf("$or fields = %v, want %v", fields, tt.wantOr)
			}
			for i, field := range tt.wantOr {
				if fields[i] != field {
					t.Errorf("$or[%d] = %s, want %s", i, fields[i], field)
				}
			}
		})
	}
}

func TestQueryInvalidPriceDropsOnlyThatClause(t *testing.T) {
	q := PropertyFilter{PropertyType: "House", MaximumPrice: "cheap", IsForSale: "Sale"}.Query()

	if _, ok := q["price"]; ok {
		t.Errorf("unparseable price produced a clause: %v", q["price"])
	}
	if q["type"] != "House" {
		t.Errorf("type clause lost: %v", q)
	}
	if q["isForSale"] != true {
		t.Errorf("isForSale clause lost: %v", q)
	}
}

func TestQueryCurrency(t *testing.T) {
	if q := (PropertyFilter{Currency: "usd"}).Query(); q["currency"] != "USD" {
		t.Errorf("currency = %v, want USD", q["currency"])
	}
	if q := (PropertyFilter{Currency: "₦"}).Query(); q["currency"] != "NGN" {
		t.Errorf("currency = %v, want NGN", q["currency"])
	}
	for _, token := range []string{FilterAll, "XYZ", ""} {
		if q := (PropertyFilter{Currency: token}).Query(); len(q) != 0 {
			t.Errorf("Currency %q produced a clause: %v", token, q)
		}
	}
}

func TestQuerySaleMode(t *testing.T) {
	if q := (PropertyFilter{IsForSale: "Sale"}).Query(); q["isForSale"] != true {
		t.Errorf("Sale: isForSale = %v", q["isForSale"])
	}
	if q := (PropertyFilter{IsForSale: "Rent"}).Query(); q["isForSale"] != false {
		t.Errorf("Rent: isForSale = %v", q["isForSale"])
	}
	if q := (PropertyFilter{IsForSale: FilterAll}).Query(); len(q) != 0 {
		t.Errorf("All sentinel produced a clause: %v", q)
	}
}

// Location and rent-mode price both need $or internally; they must combine
// under $and instead of one overwriting the other.
func TestQueryIndependentOrGroups(t *testing.T) {
	q := PropertyFilter{Location: "Austin", IsForSale: "Rent", MaximumPrice: "1800"}.Query()

	if _, ok := q["$or"]; ok {
		t.Fatalf("top-level $or present, groups collided: %v", q)
	}
	and, ok := q["$and"].(bson.A)
	if !ok || len(and) != 2 {
		t.Fatalf("$and = %#v, want two groups", q["$and"])
	}
	for _, group := range and {
		if _, ok := group.(bson.M)["$or"]; !ok {
			t.Errorf("group missing $or: %#v", group)
		}
	}
}

// End-to-end check that built queries select the right documents. matches is
// a small evaluator covering the operators Query emits: equality, $lte on a
// dotted path, $or and $and.
func TestQuerySelectsExpectedDocuments(t *testing.T) {
	forSale := bson.M{
		"type":      "House",
		"price":     300000.0,
		"currency":  "USD",
		"isForSale": true,
		"location":  bson.M{"city": "Boise", "state": "Idaho", "country": "USA"},
	}
	weeklyRental := bson.M{
		"type":      "Cabin",
		"currency":  "USD",
		"isForSale": false,
		"rates":     bson.M{"weekly": 1500.0},
		"location":  bson.M{"city": "Bend", "state": "Oregon", "country": "USA"},
	}
	monthlyRental := bson.M{
		"type":      "Apartment",
		"currency":  "EUR",
		"isForSale": false,
		"rates":     bson.M{"monthly": 2500.0},
		"location":  bson.M{"city": "Lagos", "state": "Lagos", "country": "Nigeria"},
	}
	docs := []bson.M{forSale, weeklyRental, monthlyRental}

	tests := []struct {
		name   string
		filter PropertyFilter
		want   []bool // per doc, in docs order
	}{
		{
			name:   "sale under budget",
			filter: PropertyFilter{IsForSale: "Sale", MaximumPrice: "350000"},
			want:   []bool{true, false, false},
		},
		{
			name:   "sale over budget",
			filter: PropertyFilter{IsForSale: "Sale", MaximumPrice: "250000"},
			want:   []bool{false, false, false},
		},
		{
			name:   "rent budget covers weekly-only listing",
			filter: PropertyFilter{IsForSale: "Rent", MaximumPrice: "2000"},
			want:   []bool{false, true, false},
		},
		{
			name:   "rent budget covers monthly listing too",
			filter: PropertyFilter{IsForSale: "Rent", MaximumPrice: "2500"},
			want:   []bool{false, true, true},
		},
		{
			name:   "location narrows within rentals",
			filter: PropertyFilter{IsForSale: "Rent", Location: "lagos"},
			want:   []bool{false, false, true},
		},
		{
			name:   "currency and type together",
			filter: PropertyFilter{PropertyType: "Cabin", Currency: "USD"},
			want:   []bool{false, true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := tt.filter.Query()
			for i, doc := range docs {
				if got := matches(query, doc); got != tt.want[i] {
					t.Errorf("doc %d: matches = %v, want %v (query %v)", i, got, tt.want[i], query)
				}
			}
		})
	}
}

func matches(query bson.M, doc bson.M) bool {
	for field, cond := range query {
		switch field {
		case "$or":
			any := false
			for _, branch := range cond.(bson.A) {
				if matches(branch.(bson.M), doc) {
					any = true
					break
				}
			}
			if !any {
				return false
			}
		case "$and":
			for _, branch := range cond.(bson.A) {
				if !matches(branch.(bson.M), doc) {
					return false
				}
			}
		default:
			if !fieldMatches(cond, lookupPath(doc, field)) {
				return false
			}
		}
	}
	return true
}

func fieldMatches(cond, value interface{}) bool {
	switch c := cond.(type) {
	case bson.M:
		bound, ok := c["$lte"].(float64)
		if !ok {
			return false
		}
		number, ok := value.(float64)
		return ok && number <= bound
	case primitive.Regex:
		text, ok := value.(string)
		return ok && strings.Contains(strings.ToLower(text), strings.ToLower(c.Pattern))
	default:
		return value == cond
	}
}

func lookupPath(doc bson.M, path string) interface{} {
	parts := strings.Split(path, ".")
	var value interface{} = doc
	for _, part := range parts {
		m, ok := value.(bson.M)
		if !ok {
			return nil
		}
		value = m[part]
	}
	return value
}
