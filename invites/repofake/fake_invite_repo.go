package fakeinviterepo

import (
	"context"
	"sort"
	"sync"

	apperrors "github.com/jrsteele09/lia-server/internal/errors"
	"github.com/jrsteele09/lia-server/internal/utils"
	"github.com/jrsteele09/lia-server/invites"
)

var _ invites.Repo = (*FakeInviteRepo)(nil)
var _ invites.JoinedRepo = (*FakeJoinedRepo)(nil)

type FakeInviteRepo struct {
	invites map[string]invites.Invite
	seq     map[string]int
	next    int
	lock    sync.RWMutex
}

func NewFakeInviteRepo() *FakeInviteRepo {
	return &FakeInviteRepo{
		invites: make(map[string]invites.Invite),
		seq:     make(map[string]int),
	}
}

// clone copies the payloads so callers never share state with the store.
func clone(invite invites.Invite) *invites.Invite {
	c := invite
	if invite.Account != nil {
		account := *invite.Account
		if account.UsesRemaining != nil {
			account.UsesRemaining = utils.Ptr(*account.UsesRemaining)
		}
		if account.Expires != nil {
			account.Expires = utils.Ptr(*account.Expires)
		}
		c.Account = &account
	}
	if invite.List != nil {
		list := *invite.List
		c.List = &list
	}
	return &c
}

func (ir *FakeInviteRepo) Upsert(_ context.Context, invite *invites.Invite) error {
	ir.lock.Lock()
	defer ir.lock.Unlock()

	if _, ok := ir.seq[invite.ID]; !ok {
		ir.next++
		ir.seq[invite.ID] = ir.next
	}
	ir.invites[invite.ID] = *clone(*invite)
	return nil
}

func (ir *FakeInviteRepo) GetByURI(_ context.Context, kind invites.Kind, uri string) (*invites.Invite, error) {
	ir.lock.RLock()
	defer ir.lock.RUnlock()

	for _, invite := range ir.invites {
		if invite.Kind == kind && invite.URI == uri {
			return clone(invite), nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (ir *FakeInviteRepo) ListByReference(_ context.Context, listID string) ([]*invites.Invite, error) {
	ir.lock.RLock()
	defer ir.lock.RUnlock()

	result := make([]*invites.Invite, 0)
	for _, invite := range ir.invites {
		if invite.Kind == invites.KindList && invite.List != nil && invite.List.Reference == listID {
			result = append(result, clone(invite))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return ir.seq[result[i].ID] < ir.seq[result[j].ID]
	})
	return result, nil
}

func (ir *FakeInviteRepo) Delete(_ context.Context, id string) error {
	ir.lock.Lock()
	defer ir.lock.Unlock()

	delete(ir.invites, id)
	return nil
}

// Len is used by tests to observe lazy deletion.
func (ir *FakeInviteRepo) Len() int {
	ir.lock.RLock()
	defer ir.lock.RUnlock()
	return len(ir.invites)
}

type FakeJoinedRepo struct {
	joined map[string]invites.JoinedList
	seq    map[string]int
	next   int
	lock   sync.RWMutex
}

func NewFakeJoinedRepo() *FakeJoinedRepo {
	return &FakeJoinedRepo{
		joined: make(map[string]invites.JoinedList),
		seq:    make(map[string]int),
	}
}

func (jr *FakeJoinedRepo) Insert(_ context.Context, joined *invites.JoinedList) error {
	jr.lock.Lock()
	defer jr.lock.Unlock()

	if _, ok := jr.joined[joined.ID]; ok {
		return apperrors.ErrConflict
	}
	jr.next++
	jr.seq[joined.ID] = jr.next
	jr.joined[joined.ID] = *joined
	return nil
}

func (jr *FakeJoinedRepo) ListByUser(_ context.Context, userID string) ([]*invites.JoinedList, error) {
	return jr.filter(func(j invites.JoinedList) bool { return j.UserID == userID }), nil
}

func (jr *FakeJoinedRepo) ListByUserAndURI(_ context.Context, userID, uri string) ([]*invites.JoinedList, error) {
	return jr.filter(func(j invites.JoinedList) bool { return j.UserID == userID && j.InviteURI == uri }), nil
}

func (jr *FakeJoinedRepo) Delete(_ context.Context, id string) error {
	jr.lock.Lock()
	defer jr.lock.Unlock()

	delete(jr.joined, id)
	return nil
}

func (jr *FakeJoinedRepo) filter(match func(invites.JoinedList) bool) []*invites.JoinedList {
	jr.lock.RLock()
	defer jr.lock.RUnlock()

	result := make([]*invites.JoinedList, 0)
	for _, j := range jr.joined {
		if match(j) {
			found := j
			result = append(result, &found)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return jr.seq[result[i].ID] < jr.seq[result[j].ID]
	})
	return result
}
