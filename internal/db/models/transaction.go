package models

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Transaction is a property deal owned by exactly one user. Prices are decimal
// strings; buyer and seller reference clients by id without a foreign key.
type Transaction struct {
	bun.BaseModel `bun:"table:transactions,alias:t"`

	ID              string          `bun:"id,pk,type:uuid" json:"id"`
	UserID          string          `bun:"user_id,notnull" json:"userId"`
	TransactionType string          `bun:"transaction_type,notnull" json:"transactionType"`
	PropertyAddress json.RawMessage `bun:"property_address,type:jsonb" json:"propertyAddress"`
	ListPrice       *string         `bun:"list_price" json:"listPrice"`
	FinalPrice      *string         `bun:"final_price" json:"finalPrice"`
	ContractDate    *time.Time      `bun:"contract_date" json:"contractDate"`
	ClosingDate     *time.Time      `bun:"closing_date" json:"closingDate"`
	BuyerClientID   *string         `bun:"buyer_client_id,type:uuid" json:"buyerClientId"`
	SellerClientID  *string         `bun:"seller_client_id,type:uuid" json:"sellerClientId"`
	Status          *string         `bun:"status" json:"status"`
	CreatedAt       time.Time       `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt       time.Time       `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

// ValidateForCreate verifies the record is well formed before insertion.
func (t *Transaction) ValidateForCreate() error {
	if _, err := uuid.Parse(t.ID); err != nil {
		return errors.New("id must be a valid UUID")
	}
	if t.UserID == "" {
		return errors.New("user_id is required")
	}
	if t.TransactionType == "" {
		return errors.New("transaction_type is required")
	}
	return nil
}

// TransactionPatch carries the fields of a partial update; nil means "leave unchanged".
type TransactionPatch struct {
	TransactionType *string
	PropertyAddress json.RawMessage
	ListPrice       *string
	FinalPrice      *string
	ContractDate    *time.Time
	ClosingDate     *time.Time
	BuyerClientID   *string
	SellerClientID  *string
	Status          *string
}

// Columns maps the set fields of the patch to column values.
func (p TransactionPatch) Columns() map[string]any {
	cols := map[string]any{}
	setString(cols, "transaction_type", p.TransactionType)
	setJSON(cols, "property_address", p.PropertyAddress)
	setString(cols, "list_price", p.ListPrice)
	setString(cols, "final_price", p.FinalPrice)
	if p.ContractDate != nil {
		cols["contract_date"] = *p.ContractDate
	}
	if p.ClosingDate != nil {
		cols["closing_date"] = *p.ClosingDate
	}
	setString(cols, "buyer_client_id", p.BuyerClientID)
	setString(cols, "seller_client_id", p.SellerClientID)
	setString(cols, "status", p.Status)
	return cols
}
