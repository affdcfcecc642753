package invites

import (
	"time"

	apperrors "github.com/jrsteele09/lia-server/internal/errors"
	"github.com/jrsteele09/lia-server/internal/utils"
	"github.com/pkg/errors"
)

// uriLength is the number of random bytes in an invite URI (96 bits).
const uriLength = 12

// Kind discriminates the invite variants. URIs are unique per kind.
type Kind string

const (
	KindAccount Kind = "account"
	KindList    Kind = "list"
)

func ParseKind(kind string) (Kind, error) {
	switch Kind(kind) {
	case KindAccount, KindList:
		return Kind(kind), nil
	}
	return "", errors.Wrapf(apperrors.ErrInvalidInput, "invite type must be %q or %q", KindAccount, KindList)
}

// AccountPayload is carried by account creation invites. Nil limits are unlimited.
type AccountPayload struct {
	UsesRemaining *int       `json:"uses_remaining"`
	Expires       *time.Time `json:"expires"`
}

// ListPayload is carried by list invites.
type ListPayload struct {
	Reference string `json:"reference"` // GroceryList id
}

// Invite is a tagged union: exactly one of Account or List is set, matching Kind.
type Invite struct {
	ID      string          `json:"id"`
	Kind    Kind            `json:"type"`
	URI     string          `json:"uri"`
	Account *AccountPayload `json:"account,omitempty"`
	List    *ListPayload    `json:"list,omitempty"`
}

// JoinedList records that a user joined a list through the invite with InviteURI.
type JoinedList struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	InviteURI string `json:"invite_uri"`
}

func newURI() (string, error) {
	uri, err := utils.RandomString(uriLength)
	if err != nil {
		return "", errors.Wrap(err, "[invites] failed to generate uri")
	}
	return uri, nil
}

func NewAccountInvite(uses *int, expires *time.Time) (*Invite, error) {
	if uses != nil && *uses < 1 {
		return nil, errors.Wrap(apperrors.ErrInvalidInput, "invite uses must be at least 1")
	}
	uri, err := newURI()
	if err != nil {
		return nil, err
	}
	return &Invite{
		ID:      utils.NewID(),
		Kind:    KindAccount,
		URI:     uri,
		Account: &AccountPayload{UsesRemaining: uses, Expires: expires},
	}, nil
}

func NewListInvite(listID string) (*Invite, error) {
	uri, err := newURI()
	if err != nil {
		return nil, err
	}
	return &Invite{
		ID:   utils.NewID(),
		Kind: KindList,
		URI:  uri,
		List: &ListPayload{Reference: listID},
	}, nil
}

// Validate checks the payload matches the discriminant.
func (i *Invite) Validate() error {
	switch i.Kind {
	case KindAccount:
		if i.Account == nil || i.List != nil {
			return errors.Wrap(apperrors.ErrInvalidInput, "account invite must carry only an account payload")
		}
	case KindList:
		if i.List == nil || i.Account != nil || i.List.Reference == "" {
			return errors.Wrap(apperrors.ErrInvalidInput, "list invite must carry only a list payload")
		}
	default:
		return errors.Wrapf(apperrors.ErrInvalidInput, "unknown invite type %q", i.Kind)
	}
	return nil
}

// Usable reports whether an account invite can still create an account at now.
func (p *AccountPayload) Usable(now time.Time) bool {
	if p.Expires != nil && !now.Before(*p.Expires) {
		return false
	}
	return p.UsesRemaining == nil || *p.UsesRemaining > 0
}

// Consume decrements a limited use count.
func (p *AccountPayload) Consume() {
	if p.UsesRemaining != nil {
		*p.UsesRemaining--
	}
}
