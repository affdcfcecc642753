package favorites

import (
	"github.com/jrsteele09/lia-server/internal/utils"
	"github.com/jrsteele09/lia-server/lists"
)

// AccessReference names a list the way a client reaches it: by id for owned
// lists or by invite URI for joined ones.
type AccessReference struct {
	Type      lists.AccessMethod `json:"type"`
	Reference string             `json:"reference"`
}

// Favorite is a user scoped bookmark. A user has at most one favorite per reference.
type Favorite struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Reference AccessReference `json:"reference"`
}

func New(userID string, ref AccessReference) *Favorite {
	return &Favorite{
		ID:        utils.NewID(),
		UserID:    userID,
		Reference: ref,
	}
}
