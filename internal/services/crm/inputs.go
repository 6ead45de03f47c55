package crm

import (
	"encoding/json"
	"time"

	"github.com/hearthstone-labs/crm/internal/db/models"
)

// ClientInput is a validated client body. Create bodies carry every required
// field; update bodies carry only the fields to change.
type ClientInput struct {
	Type        *string         `mapstructure:"type"`
	FirstName   *string         `mapstructure:"firstName"`
	LastName    *string         `mapstructure:"lastName"`
	Email       *string         `mapstructure:"email"`
	Phone       *string         `mapstructure:"phone"`
	Stage       *string         `mapstructure:"stage"`
	Status      *string         `mapstructure:"status"`
	LeadScore   *int            `mapstructure:"leadScore"`
	Source      *string         `mapstructure:"source"`
	Preferences json.RawMessage `mapstructure:"preferences"`
	Notes       *string         `mapstructure:"notes"`
}

// Model builds a new client owned by ownerID.
func (in ClientInput) Model(ownerID string) *models.Client {
	return &models.Client{
		UserID:      ownerID,
		Type:        deref(in.Type),
		FirstName:   deref(in.FirstName),
		LastName:    deref(in.LastName),
		Email:       deref(in.Email),
		Phone:       in.Phone,
		Stage:       in.Stage,
		Status:      in.Status,
		LeadScore:   in.LeadScore,
		Source:      in.Source,
		Preferences: nonNull(in.Preferences),
		Notes:       in.Notes,
	}
}

// Patch converts the input into a partial update.
func (in ClientInput) Patch() models.ClientPatch {
	return models.ClientPatch{
		Type:        in.Type,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Phone:       in.Phone,
		Stage:       in.Stage,
		Status:      in.Status,
		LeadScore:   in.LeadScore,
		Source:      in.Source,
		Preferences: in.Preferences,
		Notes:       in.Notes,
	}
}

// TransactionInput is a validated transaction body.
type TransactionInput struct {
	TransactionType *string         `mapstructure:"transactionType"`
	PropertyAddress json.RawMessage `mapstructure:"propertyAddress"`
	ListPrice       *string         `mapstructure:"listPrice"`
	FinalPrice      *string         `mapstructure:"finalPrice"`
	ContractDate    *time.Time      `mapstructure:"contractDate"`
	ClosingDate     *time.Time      `mapstructure:"closingDate"`
	BuyerClientID   *string         `mapstructure:"buyerClientId"`
	SellerClientID  *string         `mapstructure:"sellerClientId"`
	Status          *string         `mapstructure:"status"`
}

// Model builds a new transaction owned by ownerID.
func (in TransactionInput) Model(ownerID string) *models.Transaction {
	return &models.Transaction{
		UserID:          ownerID,
		TransactionType: deref(in.TransactionType),
		PropertyAddress: nonNull(in.PropertyAddress),
		ListPrice:       in.ListPrice,
		FinalPrice:      in.FinalPrice,
		ContractDate:    in.ContractDate,
		ClosingDate:     in.ClosingDate,
		BuyerClientID:   in.BuyerClientID,
		SellerClientID:  in.SellerClientID,
		Status:          in.Status,
	}
}

// Patch converts the input into a partial update.
func (in TransactionInput) Patch() models.TransactionPatch {
	return models.TransactionPatch{
		TransactionType: in.TransactionType,
		PropertyAddress: in.PropertyAddress,
		ListPrice:       in.ListPrice,
		FinalPrice:      in.FinalPrice,
		ContractDate:    in.ContractDate,
		ClosingDate:     in.ClosingDate,
		BuyerClientID:   in.BuyerClientID,
		SellerClientID:  in.SellerClientID,
		Status:          in.Status,
	}
}

// nonNull drops an explicit JSON null so new rows store SQL NULL.
func nonNull(raw json.RawMessage) json.RawMessage {
	if string(raw) == "null" {
		return nil
	}
	return raw
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
