package fakelistrepo

import (
	"context"
	"sort"
	"sync"

	apperrors "github.com/jrsteele09/lia-server/internal/errors"
	"github.com/jrsteele09/lia-server/lists"
)

var _ lists.Repo = (*FakeListRepo)(nil)
var _ lists.ItemRepo = (*FakeItemRepo)(nil)

type FakeListRepo struct {
	lists map[string]lists.GroceryList
	order []string // insertion order of ids
	lock  sync.RWMutex
}

func NewFakeListRepo() *FakeListRepo {
	return &FakeListRepo{
		lists: make(map[string]lists.GroceryList),
	}
}

func (lr *FakeListRepo) Upsert(_ context.Context, list *lists.GroceryList) error {
	lr.lock.Lock()
	defer lr.lock.Unlock()

	if _, ok := lr.lists[list.ID]; !ok {
		lr.order = append(lr.order, list.ID)
	}
	lr.lists[list.ID] = *list
	return nil
}

func (lr *FakeListRepo) Get(_ context.Context, id string) (*lists.GroceryList, error) {
	lr.lock.RLock()
	defer lr.lock.RUnlock()

	list, ok := lr.lists[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &list, nil
}

func (lr *FakeListRepo) ListByOwner(_ context.Context, ownerID string) ([]*lists.GroceryList, error) {
	lr.lock.RLock()
	defer lr.lock.RUnlock()

	result := make([]*lists.GroceryList, 0)
	for _, id := range lr.order {
		list, ok := lr.lists[id]
		if ok && list.OwnerID == ownerID {
			result = append(result, &list)
		}
	}
	return result, nil
}

func (lr *FakeListRepo) Delete(_ context.Context, id string) error {
	lr.lock.Lock()
	defer lr.lock.Unlock()

	delete(lr.lists, id)
	return nil
}

type FakeItemRepo struct {
	items map[string]lists.Item
	seq   map[string]int // id to insertion sequence
	next  int
	lock  sync.RWMutex
}

func NewFakeItemRepo() *FakeItemRepo {
	return &FakeItemRepo{
		items: make(map[string]lists.Item),
		seq:   make(map[string]int),
	}
}

func (ir *FakeItemRepo) Upsert(_ context.Context, item *lists.Item) error {
	ir.lock.Lock()
	defer ir.lock.Unlock()

	if _, ok := ir.seq[item.ID]; !ok {
		ir.next++
		ir.seq[item.ID] = ir.next
	}
	ir.items[item.ID] = *item
	return nil
}

func (ir *FakeItemRepo) Get(_ context.Context, id string) (*lists.Item, error) {
	ir.lock.RLock()
	defer ir.lock.RUnlock()

	item, ok := ir.items[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &item, nil
}

func (ir *FakeItemRepo) ListByList(_ context.Context, listID string) ([]*lists.Item, error) {
	return ir.filter(func(item lists.Item) bool { return item.ListID == listID }), nil
}

func (ir *FakeItemRepo) ListAlternatives(_ context.Context, listID, itemID string) ([]*lists.Item, error) {
	return ir.filter(func(item lists.Item) bool {
		return item.ListID == listID && item.Alternative != nil && item.Alternative.AlternativeTo == itemID
	}), nil
}

func (ir *FakeItemRepo) Delete(_ context.Context, id string) error {
	ir.lock.Lock()
	defer ir.lock.Unlock()

	delete(ir.items, id)
	return nil
}

func (ir *FakeItemRepo) DeleteByList(_ context.Context, listID string) error {
	ir.lock.Lock()
	defer ir.lock.Unlock()

	for id, item := range ir.items {
		if item.ListID == listID {
			delete(ir.items, id)
		}
	}
	return nil
}

func (ir *FakeItemRepo) filter(match func(lists.Item) bool) []*lists.Item {
	ir.lock.RLock()
	defer ir.lock.RUnlock()

	result := make([]*lists.Item, 0)
	for _, item := range ir.items {
		if match(item) {
			found := item
			result = append(result, &found)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return ir.seq[result[i].ID] < ir.seq[result[j].ID]
	})
	return result
}
