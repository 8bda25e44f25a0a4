package pos

import "context"

// PaymentMethod is one payment mode attached to a profile.
type PaymentMethod struct {
	ModeOfPayment string `json:"mode_of_payment"`
	Default       bool   `json:"default"`
	Account       string `json:"account,omitempty"`
}

// Profile is the per-terminal configuration a shift runs under: the
// company, warehouse, price list, and geographic scope every document in
// the shift inherits.
type Profile struct {
	Name           string          `json:"name"`
	Company        string          `json:"company"`
	Warehouse      string          `json:"warehouse"`
	PriceList      string          `json:"price_list"`
	Currency       string          `json:"currency"`
	Territory      string          `json:"territory,omitempty"`
	Route          string          `json:"route,omitempty"`
	Disabled       bool            `json:"disabled"`
	PaymentMethods []PaymentMethod `json:"payment_methods"`
}

// DefaultPaymentMode returns the profile's default payment mode, falling
// back to the first configured one.
func (p *Profile) DefaultPaymentMode() string {
	for _, m := range p.PaymentMethods {
		if m.Default {
			return m.ModeOfPayment
		}
	}
	if len(p.PaymentMethods) > 0 {
		return p.PaymentMethods[0].ModeOfPayment
	}
	return ""
}

// ProfileRepository reads POS profiles and their user assignments.
type ProfileRepository interface {
	FindByName(ctx context.Context, name string) (*Profile, error)
	// FindAccessible lists enabled profiles the user is assigned to;
	// when the user has no explicit assignment, all enabled profiles.
	FindAccessible(ctx context.Context, userID string) ([]Profile, error)
	// FindDefault returns the user's default profile assignment, or
	// shared.ErrNotFound.
	FindDefault(ctx context.Context, userID string) (*Profile, error)
	// FindFirstEnabled returns the first enabled profile, used by the
	// discovery endpoint's runtime defaults.
	FindFirstEnabled(ctx context.Context) (*Profile, error)
}
