package booking

import (
	"sort"

	"maidbook/models"
)

// BookingDraft is the state a booking session accumulates step by step.
type BookingDraft struct {
	ServiceID  string                   `json:"serviceId"`
	UserID     string                   `json:"userId,omitempty"`
	Subscribed bool                     `json:"subscribed"`
	Location   *models.Location         `json:"location,omitempty"`
	Plan       *models.Plan             `json:"plan,omitempty"`
	Answers    map[string]models.Answer `json:"answers"`
	Schedule   models.Schedule          `json:"schedule"`
	Notes      string                   `json:"notes,omitempty"`
	Address    models.Address           `json:"address"`
	Price      models.PriceBreakdown    `json:"price"`
}

func newDraft(serviceID string) BookingDraft {
	return BookingDraft{
		ServiceID: serviceID,
		Answers:   make(map[string]models.Answer),
	}
}

// answeredDeltas returns the price deltas of answered choice questions,
// ordered by question id so the sum never depends on map iteration.
func (d *BookingDraft) answeredDeltas() []float64 {
	ids := make([]string, 0, len(d.Answers))
	for id, a := range d.Answers {
		if !a.IsEmpty() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	deltas := make([]float64, 0, len(ids))
	for _, id := range ids {
		deltas = append(deltas, d.Answers[id].PriceDelta)
	}
	return deltas
}

// reprice recomputes every derived price field.
func (d *BookingDraft) reprice() {
	if d.Plan == nil {
		d.Price = models.PriceBreakdown{Subscribed: d.Subscribed}
		return
	}
	d.Price = ComputePrice(d.Plan.Price, d.Plan.Name, d.answeredDeltas(), d.Subscribed)
}

func (d *BookingDraft) clearPlan() {
	d.Plan = nil
	d.Answers = make(map[string]models.Answer)
	d.reprice()
}

func (d BookingDraft) clone() BookingDraft {
	out := d
	out.Answers = make(map[string]models.Answer, len(d.Answers))
	for k, v := range d.Answers {
		v.Options = append([]string(nil), v.Options...)
		out.Answers[k] = v
	}
	if d.Location != nil {
		loc := *d.Location
		out.Location = &loc
	}
	if d.Plan != nil {
		p := *d.Plan
		out.Plan = &p
	}
	return out
}
