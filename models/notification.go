package models

// BookingCompletedPayload is the payload of the delayed completion task.
type BookingCompletedPayload struct {
	BookingID string  `json:"bookingId"`
	UserID    string  `json:"userId"`
	PlanName  string  `json:"planName"`
	Date      string  `json:"date"`
	Time      string  `json:"time"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
}
