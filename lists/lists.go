package lists

import (
	"encoding/json"
	"strings"

	apperrors "github.com/jrsteele09/lia-server/internal/errors"
	"github.com/pkg/errors"
)

// ListType distinguishes shopping lists from recipes.
type ListType string

const (
	TypeGrocery ListType = "grocery"
	TypeRecipe  ListType = "recipe"
)

// AccessMethod is how a list reference is interpreted: a list id checked
// against ownership, or the URI of a list invite.
type AccessMethod string

const (
	AccessByID    AccessMethod = "id"
	AccessByAlias AccessMethod = "alias"
)

// ParseAccessMethod validates a client supplied access method.
func ParseAccessMethod(method string) (AccessMethod, error) {
	switch AccessMethod(method) {
	case AccessByID, AccessByAlias:
		return AccessMethod(method), nil
	}
	return "", apperrors.ErrInvalidMethod
}

type GroceryList struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	OwnerID        string   `json:"owner_id"`
	IncludedStores []string `json:"included_stores"`
	Type           ListType `json:"type"`
}

// OwnedBy reports whether userID owns the list. Ownership is always derived
// from the stored list, never from client input.
func (l *GroceryList) OwnedBy(userID string) bool {
	return userID != "" && l.OwnerID == userID
}

type Quantity struct {
	Amount float64 `json:"amount"`
	Unit   *string `json:"unit"`
}

// Alternative marks an item as a substitute for another item in the same
// list. It is a weak reference: deleting the referenced item leaves the
// alternative in place.
type Alternative struct {
	AlternativeTo string `json:"alternative_to"`
	Index         int    `json:"index"`
}

type Item struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	ListID      string          `json:"list_id"`
	AddedBy     string          `json:"added_by"`
	Checked     bool            `json:"checked"`
	Quantity    Quantity        `json:"quantity"`
	Alternative *Alternative    `json:"alternative"`
	Categories  []string        `json:"categories"`
	Price       *float64        `json:"price"`
	Location    *string         `json:"location"`
	LinkedItem  json.RawMessage `json:"linked_item"` // Opaque external catalog reference
	Recipe      *string         `json:"recipe"`      // Optional recipe list id
}

// CreateRequest is the input for a new list.
type CreateRequest struct {
	Name   string   `json:"name"`
	Stores []string `json:"stores"`
	Type   ListType `json:"type"`
}

func (r CreateRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.Wrap(apperrors.ErrInvalidInput, "list name is required")
	}
	if r.Type != TypeGrocery && r.Type != TypeRecipe {
		return errors.Wrapf(apperrors.ErrInvalidInput, "list type must be %q or %q", TypeGrocery, TypeRecipe)
	}
	return nil
}

// Settings are the owner editable list fields.
type Settings struct {
	Name   string   `json:"name"`
	Stores []string `json:"stores"`
}

func (s Settings) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.Wrap(apperrors.ErrInvalidInput, "list name is required")
	}
	return nil
}

// NewItemRequest is the input for a new list item.
type NewItemRequest struct {
	Name       string          `json:"name"`
	Quantity   Quantity        `json:"quantity"`
	Categories []string        `json:"categories"`
	Price      *float64        `json:"price"`
	Location   *string         `json:"location"`
	LinkedItem json.RawMessage `json:"linked_item"`
}

func (r NewItemRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.Wrap(apperrors.ErrInvalidInput, "item name is required")
	}
	return nil
}
