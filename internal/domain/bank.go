package domain

import (
	"time"

	"github.com/guregu/null/v5"
)

// BankAccount is a bank detail record owned by an organization.
type BankAccount struct {
	ID               string      `json:"id"`
	OrganizationID   string      `json:"organisation_id"`
	CreatorID        string      `json:"creator_id"`
	AccountNumber    string      `json:"account_number"`
	BankName         string      `json:"bank_name"`
	RecipientName    null.String `json:"recipient_name"`
	Country          string      `json:"country"`
	SortCode         null.String `json:"sort_code"`
	SwiftCode        null.String `json:"swift_code"`
	BankAddress      string      `json:"bank_address"`
	AccountType      null.String `json:"account_type"`
	ABARoutingNumber null.String `json:"aba_routing_number"`
	IBAN             null.String `json:"iban"`
	IsPreferred      bool        `json:"is_preferred"`
	IsDeleted        bool        `json:"-"`
	DateCreated      time.Time   `json:"date_created"`
}

// Fields exposes the schema-checked bank attributes keyed by their wire names.
func (b BankAccount) Fields() map[string]string {
	return map[string]string{
		"account_number":     b.AccountNumber,
		"bank_name":          b.BankName,
		"recipient_name":     b.RecipientName.String,
		"country":            b.Country,
		"sort_code":          b.SortCode.String,
		"swift_code":         b.SwiftCode.String,
		"bank_address":       b.BankAddress,
		"account_type":       b.AccountType.String,
		"aba_routing_number": b.ABARoutingNumber.String,
		"iban":               b.IBAN.String,
	}
}
