package models

// Location is a city (or area) in which a service is offered.
type Location struct {
	ID         string   `bson:"id" json:"id"`
	Name       string   `bson:"name" json:"name"`
	ImageRef   string   `bson:"image_ref" json:"imageRef,omitempty"` // cloudinary public id
	ImageURL   string   `bson:"-" json:"imageUrl,omitempty"`         // resolved delivery URL
	ServiceIDs []string `bson:"service_ids" json:"-"`
}

// Plan is a purchasable service tier with a fixed base price.
type Plan struct {
	ID         string  `bson:"id" json:"id"`
	Name       string  `bson:"name" json:"name"`
	Price      float64 `bson:"price" json:"price"`
	LocationID string  `bson:"location_id" json:"locationId"`
	ServiceID  string  `bson:"service_id" json:"serviceId"`
}

// QuestionType is the variant of an add-on question.
type QuestionType string

const (
	QuestionFreeText     QuestionType = "free_text"
	QuestionSingleSelect QuestionType = "single_select"
	QuestionMultiSelect  QuestionType = "multi_select"
)

// IsChoice reports whether answers to the question carry a price delta.
func (t QuestionType) IsChoice() bool {
	return t == QuestionSingleSelect || t == QuestionMultiSelect
}

// AddOnOption is a normalized option of an add-on question.
type AddOnOption struct {
	Label      string  `bson:"label" json:"label"`
	PriceDelta float64 `bson:"price_delta" json:"priceDelta"`
}

// AddOnQuestion is a configurable option set attached to a plan.
type AddOnQuestion struct {
	ID      string        `bson:"id" json:"id"`
	PlanID  string        `bson:"plan_id" json:"planId"`
	Prompt  string        `bson:"prompt" json:"prompt"`
	Type    QuestionType  `bson:"type" json:"type"`
	Options []AddOnOption `bson:"options" json:"options,omitempty"`
}

// Option looks up an option by its label.
func (q AddOnQuestion) Option(label string) (AddOnOption, bool) {
	for _, o := range q.Options {
		if o.Label == label {
			return o, true
		}
	}
	return AddOnOption{}, false
}
