package domain

import "time"

// Customer is a contact record owned by an organization.
type Customer struct {
	ID             string             `json:"-"`
	CustomerID     string             `json:"customer_id"`
	OrganizationID string             `json:"organization_id"`
	Email          string             `json:"email"`
	FirstName      string             `json:"first_name"`
	LastName       string             `json:"last_name"`
	UniqueID       string             `json:"unique_id"`
	PhoneNumber    string             `json:"phone_number"`
	BusinessName   string             `json:"business_name"`
	Location       string             `json:"location"`
	Gender         string             `json:"gender"`
	Age            int                `json:"age"`
	PostalCode     string             `json:"postal_code"`
	Language       string             `json:"language"`
	Country        string             `json:"country"`
	City           string             `json:"city"`
	Region         string             `json:"region"`
	CountryCode    string             `json:"country_code"`
	AutoReminder   bool               `json:"auto_reminder"`
	OtherInfo      []OtherInformation `json:"other_info,omitempty"`
	IsDeleted      bool               `json:"is_deleted"`
	DateCreated    time.Time          `json:"date_created"`
	LastUpdated    time.Time          `json:"last_updated"`
}

// OtherInformation is a free-form key/value attached to a customer.
// Keys are not unique per customer.
type OtherInformation struct {
	ID         string `json:"-"`
	CustomerID string `json:"-"`
	Key        string `json:"key"`
	Value      string `json:"value"`
}
