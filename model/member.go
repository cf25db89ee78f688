package model

import "time"

const (
	MemberActive    = "active"
	MemberInactive  = "inactive"
	MemberSuspended = "suspended"
)

type Member struct {
	ID             int64                  `json:"-"`
	MemberID       string                 `json:"member_id"`
	FirstName      string                 `json:"first_name"`
	LastName       string                 `json:"last_name"`
	OtherNames     string                 `json:"other_names,omitempty"`
	Gender         string                 `json:"gender,omitempty"`
	EmailAddress   string                 `json:"email_address"`
	PhoneNumber    string                 `json:"phone_number"`
	Street         string                 `json:"street,omitempty"`
	City           string                 `json:"city,omitempty"`
	State          string                 `json:"state,omitempty"`
	Country        string                 `json:"country,omitempty"`
	Status         string                 `json:"status"`
	MonthlySavings int64                  `json:"monthly_savings"`
	CreatedAt      time.Time              `json:"created_at"`
	MetaData       map[string]interface{} `json:"meta_data,omitempty"`
}
