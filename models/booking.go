package models

import "time"

// Schedule is the requested visit slot.
type Schedule struct {
	Date string `bson:"date" json:"date"` // "YYYY-MM-DD"
	Time string `bson:"time" json:"time"` // "HH:MM" on the half-hour grid
}

// IsSet reports whether both date and time were chosen.
func (s Schedule) IsSet() bool {
	return s.Date != "" && s.Time != ""
}

// Address is the service address captured at review.
type Address struct {
	FullName    string `bson:"full_name" json:"fullName" validate:"required"`
	Phone       string `bson:"phone" json:"phone" validate:"required,number,len=10"`
	HouseNumber string `bson:"house_number" json:"houseNumber" validate:"required"`
	Street      string `bson:"street" json:"street" validate:"required"`
	City        string `bson:"city" json:"city" validate:"required"`
	State       string `bson:"state" json:"state" validate:"required"`
	PostalCode  string `bson:"postal_code" json:"postalCode" validate:"required,number,len=6"`
	Landmark    string `bson:"landmark,omitempty" json:"landmark,omitempty"`
}

// Answer is the recorded answer to one add-on question.
type Answer struct {
	QuestionID string   `bson:"question_id" json:"questionId"`
	Prompt     string   `bson:"prompt" json:"prompt"`
	Text       string   `bson:"text,omitempty" json:"text,omitempty"`
	Options    []string `bson:"options,omitempty" json:"options,omitempty"`
	PriceDelta float64  `bson:"price_delta" json:"priceDelta"`
}

// IsEmpty reports whether the answer records nothing.
func (a Answer) IsEmpty() bool {
	return a.Text == "" && len(a.Options) == 0
}

// PriceBreakdown is the derived price of a draft.
type PriceBreakdown struct {
	PlanPrice   float64 `bson:"plan_price" json:"planPrice"`
	AddOnTotal  float64 `bson:"addon_total" json:"addOnTotal"`
	Subtotal    float64 `bson:"subtotal" json:"subtotal"`
	Tax         float64 `bson:"tax" json:"tax"`
	Total       float64 `bson:"total" json:"total"`
	Discount    float64 `bson:"discount" json:"discount"`
	FinalAmount float64 `bson:"final_amount" json:"finalAmount"`
	Taxable     bool    `bson:"taxable" json:"taxable"`
	Subscribed  bool    `bson:"subscribed" json:"subscribed"`
}

const (
	BookingStatusConfirmed = "confirmed"
)

// FinalizedBooking is the persisted record of a completed, paid booking.
// It is written once and never updated by the booking flow.
type FinalizedBooking struct {
	ID           string            `bson:"id" json:"id"`
	UserID       string            `bson:"user_id" json:"userId"`
	ServiceID    string            `bson:"service_id" json:"serviceId"`
	LocationID   string            `bson:"location_id" json:"locationId"`
	LocationName string            `bson:"location_name" json:"locationName"`
	PlanID       string            `bson:"plan_id" json:"planId"`
	PlanName     string            `bson:"plan_name" json:"planName"`
	Answers      map[string]Answer `bson:"answers" json:"answers"`
	Schedule     Schedule          `bson:"schedule" json:"schedule"`
	Notes        string            `bson:"notes,omitempty" json:"notes,omitempty"`
	Address      Address           `bson:"address" json:"address"`
	Price        PriceBreakdown    `bson:"price" json:"price"`
	Amount       int64             `bson:"amount" json:"amount"` // minor units
	Currency     string            `bson:"currency" json:"currency"`
	OrderRef     string            `bson:"order_ref" json:"orderRef"`
	PaymentRef   string            `bson:"payment_ref" json:"paymentRef"`
	GatewayRef   string            `bson:"gateway_ref" json:"gatewayRef"`
	Status       string            `bson:"status" json:"status"`
	CreatedAt    time.Time         `bson:"created_at" json:"createdAt"`
}
