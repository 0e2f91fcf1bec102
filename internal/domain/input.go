package domain

import "strings"

// AggregateInput is the accepted shape for create and update.
type AggregateInput struct {
	Name    string `json:"name"    form:"name"    validate:"required,max=64"`
	Gender  string `json:"gender"  form:"gender"  validate:"max=16"`
	Phone   string `json:"phone"   form:"phone"   validate:"max=32"`
	Zipcode string `json:"zipcode" form:"zipcode" validate:"max=16"`
	Email   string `json:"email"   form:"email"   validate:"omitempty,email,max=191"`
}

// Normalize trims surrounding whitespace from every field.
func (in AggregateInput) Normalize() AggregateInput {
	return AggregateInput{
		Name:    strings.TrimSpace(in.Name),
		Gender:  strings.TrimSpace(in.Gender),
		Phone:   strings.TrimSpace(in.Phone),
		Zipcode: strings.TrimSpace(in.Zipcode),
		Email:   strings.TrimSpace(in.Email),
	}
}
