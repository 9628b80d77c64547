package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// StructuredOption is the current stored shape of an add-on option.
type StructuredOption struct {
	Option string  `bson:"option" json:"option"`
	Price  float64 `bson:"price" json:"price"`
}

// AddOnOptionRaw is an add-on option as found in the data store. Older
// documents store a bare label string; newer ones store {option, price}.
// Exactly one of Legacy or Structured is meaningful.
type AddOnOptionRaw struct {
	Legacy     string
	Structured *StructuredOption
}

// LegacyOption wraps a bare label.
func LegacyOption(label string) AddOnOptionRaw {
	return AddOnOptionRaw{Legacy: label}
}

// PricedOption wraps a structured option.
func PricedOption(label string, price float64) AddOnOptionRaw {
	return AddOnOptionRaw{Structured: &StructuredOption{Option: label, Price: price}}
}

// Normalize returns the canonical option. Legacy labels carry no price.
func (r AddOnOptionRaw) Normalize() AddOnOption {
	if r.Structured != nil {
		return AddOnOption{Label: strings.TrimSpace(r.Structured.Option), PriceDelta: r.Structured.Price}
	}
	return AddOnOption{Label: strings.TrimSpace(r.Legacy)}
}

// NormalizeOptions normalizes a stored option list, dropping blank labels.
func NormalizeOptions(raw []AddOnOptionRaw) []AddOnOption {
	out := make([]AddOnOption, 0, len(raw))
	for _, r := range raw {
		opt := r.Normalize()
		if opt.Label == "" {
			continue
		}
		out = append(out, opt)
	}
	return out
}

// MarshalBSONValue writes the option back in whichever shape it was read.
func (r AddOnOptionRaw) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if r.Structured != nil {
		return bson.MarshalValue(bson.D{
			{Key: "option", Value: r.Structured.Option},
			{Key: "price", Value: r.Structured.Price},
		})
	}
	return bson.MarshalValue(r.Legacy)
}

// UnmarshalBSONValue accepts a string or an {option, price} document.
func (r *AddOnOptionRaw) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeString:
		r.Legacy, r.Structured = rv.StringValue(), nil
		return nil
	case bson.TypeEmbeddedDocument:
		var doc struct {
			Option string        `bson:"option"`
			Price  bson.RawValue `bson:"price"`
		}
		if err := rv.Unmarshal(&doc); err != nil {
			return fmt.Errorf("failed to decode add-on option: %w", err)
		}
		price, err := bsonPrice(doc.Price)
		if err != nil {
			return err
		}
		r.Legacy, r.Structured = "", &StructuredOption{Option: doc.Option, Price: price}
		return nil
	default:
		return fmt.Errorf("unsupported add-on option type %s", t)
	}
}

func bsonPrice(v bson.RawValue) (float64, error) {
	switch v.Type {
	case 0, bson.TypeNull, bson.TypeUndefined:
		return 0, nil
	case bson.TypeDouble:
		return v.Double(), nil
	case bson.TypeInt32:
		return float64(v.Int32()), nil
	case bson.TypeInt64:
		return float64(v.Int64()), nil
	case bson.TypeString:
		return parsePrice(v.StringValue())
	default:
		return 0, fmt.Errorf("unsupported add-on price type %s", v.Type)
	}
}

func (r AddOnOptionRaw) MarshalJSON() ([]byte, error) {
	if r.Structured != nil {
		return json.Marshal(r.Structured)
	}
	return json.Marshal(r.Legacy)
}

// UnmarshalJSON mirrors UnmarshalBSONValue for JSON seed files and APIs.
func (r *AddOnOptionRaw) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		r.Legacy, r.Structured = s, nil
		return nil
	}
	var doc struct {
		Option string          `json:"option"`
		Price  json.RawMessage `json:"price"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("failed to decode add-on option: %w", err)
	}
	price, err := jsonPrice(doc.Price)
	if err != nil {
		return err
	}
	r.Legacy, r.Structured = "", &StructuredOption{Option: doc.Option, Price: price}
	return nil
}

func jsonPrice(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		return parsePrice(s)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("invalid add-on price %s: %w", raw, err)
	}
	return f, nil
}

func parsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid add-on price %q: %w", s, err)
	}
	return f, nil
}
