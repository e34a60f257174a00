package validation

import (
	"reflect"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with the struct-level checks registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	v.RegisterStructValidation(cartItemStructValidation, CartItem{})
	// the client-computed totalPrice must equal sum(price * quantity) + shippingFee
	v.RegisterStructValidation(createSessionStructValidation, CreateSessionRequest{})

	return v
}

func cartItemStructValidation(sl validatorv10.StructLevel) {
	it := sl.Current().Interface().(CartItem)
	if !it.Price.IsPositive() {
		sl.ReportError(it.Price, "price", "Price", "gt", "0")
	}
}

func createSessionStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(CreateSessionRequest)

	if req.ShippingFee.IsNegative() {
		sl.ReportError(req.ShippingFee, "shippingFee", "ShippingFee", "gte", "0")
	}
	if len(req.Items) == 0 {
		return
	}

	// compare in hundredths so client-side float noise does not fail the check
	want := req.Subtotal().Add(req.ShippingFee).Round(2)
	if !req.TotalPrice.Round(2).Equal(want) {
		sl.ReportError(req.TotalPrice, "totalPrice", "TotalPrice", "total_match_items", want.StringFixed(2))
	}
}
