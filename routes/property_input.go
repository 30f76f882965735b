package routes

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/kataras/iris/v12"

	"property-pulse-server/models"
	"property-pulse-server/storage"
	"property-pulse-server/utils"
)

const maxListingFormMemory = 64 << 20

// ListingForm is the raw multipart payload for create/update, extracted once
// by key. Validate turns it into typed fields or a list of field errors;
// nothing downstream touches the form map again.
type ListingForm struct {
	Name        string
	Type        string
	Description string
	SaleType    string // "For Sale" or "For Rent"
	Currency    string

	Street  string
	City    string
	State   string
	Country string
	Zipcode string

	Beds       string
	Baths      string
	SquareFeet string

	Price       string
	Discount    string
	NightlyRate string
	WeeklyRate  string
	MonthlyRate string

	SellerName  string
	SellerEmail string
	SellerPhone string

	Amenities []string

	Images []*multipart.FileHeader
	Video  *multipart.FileHeader

	// Update only: the retained and removed subsets of the stored image list.
	ExistingImages []string
	RemovedImages  []string
}

// ListingFields is the validated, typed result of a ListingForm.
type ListingFields struct {
	Name        string
	Type        string
	Description string
	IsForSale   bool
	Location    models.Location
	Beds        int
	Baths       int
	SquareFeet  int
	Amenities   []string
	Rates       models.Rates
	Price       *float64
	Discount    *float64
	Currency    string
	Seller      models.SellerInfo
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func parseListingForm(ctx iris.Context) (*ListingForm, error) {
	r := ctx.Request()
	if err := r.ParseMultipartForm(maxListingFormMemory); err != nil {
		return nil, err
	}

	form := &ListingForm{
		Name:        ctx.FormValue("listingTitle"),
		Type:        ctx.FormValue("type"),
		Description: ctx.FormValue("description"),
		SaleType:    ctx.FormValue("saleType"),
		Currency:    ctx.FormValue("currency"),
		Street:      ctx.FormValue("street"),
		City:        ctx.FormValue("city"),
		State:       ctx.FormValue("state"),
		Country:     ctx.FormValue("country"),
		Zipcode:     ctx.FormValue("zipcode"),
		Beds:        ctx.FormValue("beds"),
		Baths:       ctx.FormValue("baths"),
		SquareFeet:  ctx.FormValue("square_feet"),
		Price:       ctx.FormValue("actualPrice"),
		Discount:    ctx.FormValue("discountPrice"),
		NightlyRate: ctx.FormValue("rates.nightly"),
		WeeklyRate:  ctx.FormValue("rates.weekly"),
		MonthlyRate: ctx.FormValue("rates.monthly"),
		SellerName:  ctx.FormValue("seller_info.name"),
		SellerEmail: ctx.FormValue("seller_info.email"),
		SellerPhone: ctx.FormValue("seller_info.phone"),
	}

	if r.MultipartForm != nil {
		form.Amenities = r.MultipartForm.Value["amenities[]"]
		if len(form.Amenities) == 0 {
			for _, amenity := range r.MultipartForm.Value["amenities"] {
				if amenity != "" {
					form.Amenities = append(form.Amenities, amenity)
				}
			}
		}

		for _, fh := range r.MultipartForm.File["images"] {
			if fh.Filename != "" && fh.Size > 0 {
				form.Images = append(form.Images, fh)
			}
		}
		if videos := r.MultipartForm.File["video"]; len(videos) > 0 && videos[0].Size > 0 {
			form.Video = videos[0]
		}
	}

	form.ExistingImages = parseURLList(ctx.FormValue("existingImages"))
	form.RemovedImages = parseURLList(ctx.FormValue("removedImages"))

	return form, nil
}

func parseURLList(raw string) []string {
	if raw == "" {
		return nil
	}
	var urls []string
	if err := json.Unmarshal([]byte(raw), &urls); err != nil {
		return nil
	}
	return urls
}

// Validate performs the single validation pass over the raw form. It returns
// either the typed fields or the full list of field errors; business logic
// never runs on a form that failed here.
func (f *ListingForm) Validate() (*ListingFields, []FieldError) {
	var errs []FieldError

	requireText := func(field, value string) string {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, FieldError{Field: field, Message: field + " is required"})
		}
		return strings.TrimSpace(value)
	}

	fields := &ListingFields{
		Name:        requireText("listingTitle", f.Name),
		Type:        requireText("type", f.Type),
		Description: requireText("description", f.Description),
		Location: models.Location{
			Street:  strings.TrimSpace(f.Street),
			City:    strings.TrimSpace(f.City),
			State:   strings.TrimSpace(f.State),
			Country: strings.TrimSpace(f.Country),
			Zipcode: strings.TrimSpace(f.Zipcode),
		},
		Amenities: f.Amenities,
		Seller: models.SellerInfo{
			Name:  strings.TrimSpace(f.SellerName),
			Email: strings.TrimSpace(f.SellerEmail),
			Phone: strings.TrimSpace(f.SellerPhone),
		},
	}
	if fields.Amenities == nil {
		fields.Amenities = []string{}
	}

	switch f.SaleType {
	case "For Sale":
		fields.IsForSale = true
	case "For Rent":
		fields.IsForSale = false
	default:
		errs = append(errs, FieldError{Field: "saleType", Message: `saleType must be "For Sale" or "For Rent"`})
	}

	fields.Beds = requireCount(&errs, "beds", f.Beds)
	fields.Baths = requireCount(&errs, "baths", f.Baths)
	fields.SquareFeet = requireCount(&errs, "square_feet", f.SquareFeet)

	if amount, ok := utils.ParsePrice(f.Price); ok {
		fields.Price = &amount
	}
	if amount, ok := utils.ParsePrice(f.Discount); ok {
		fields.Discount = &amount
	}
	if amount, ok := utils.ParsePrice(f.NightlyRate); ok {
		fields.Rates.Nightly = &amount
	}
	if amount, ok := utils.ParsePrice(f.WeeklyRate); ok {
		fields.Rates.Weekly = &amount
	}
	if amount, ok := utils.ParsePrice(f.MonthlyRate); ok {
		fields.Rates.Monthly = &amount
	}

	// A for-rent listing must carry at least one rate; a bare price is
	// treated as the monthly rate.
	if f.SaleType == "For Rent" && !fields.Rates.HasRate() {
		if fields.Price != nil {
			fields.Rates.Monthly = fields.Price
		} else {
			errs = append(errs, FieldError{
				Field:   "rates",
				Message: "At least one rental rate (nightly, weekly or monthly) or a price is required for For Rent properties",
			})
		}
	}

	if strings.TrimSpace(f.Currency) == "" {
		fields.Currency = utils.DefaultCurrency
	} else if code, ok := utils.NormalizeCurrency(f.Currency); ok {
		fields.Currency = code
	} else {
		errs = append(errs, FieldError{Field: "currency", Message: "Invalid currency code"})
	}

	for _, fh := range f.Images {
		if err := storage.ValidateImageFile(fh); err != nil {
			errs = append(errs, FieldError{Field: "images", Message: err.Error()})
		}
	}
	if f.Video != nil {
		if err := storage.ValidateVideoFile(f.Video); err != nil {
			errs = append(errs, FieldError{Field: "video", Message: err.Error()})
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return fields, nil
}

func requireCount(errs *[]FieldError, field, raw string) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 0 {
		*errs = append(*errs, FieldError{Field: field, Message: fmt.Sprintf("%s must be a non-negative whole number", field)})
		return 0
	}
	return value
}
