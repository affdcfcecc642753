package lists

import (
	"context"
	"strings"

	"github.com/jrsteele09/lia-server/events"
	apperrors "github.com/jrsteele09/lia-server/internal/errors"
	"github.com/jrsteele09/lia-server/internal/utils"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Repos holds all repository dependencies for the list Service
type Repos struct {
	Lists Repo
	Items ItemRepo
}

// Service performs list and item mutations and publishes a change event for
// each of them. Callers are expected to have authorized access to the list.
type Service struct {
	repos  Repos
	events events.Publisher
}

func NewService(repos Repos, publisher events.Publisher) (*Service, error) {
	if repos.Lists == nil {
		return nil, errors.New("[NewService] Lists repo is required")
	}
	if repos.Items == nil {
		return nil, errors.New("[NewService] Items repo is required")
	}
	if publisher == nil {
		return nil, errors.New("[NewService] event publisher is required")
	}
	return &Service{repos: repos, events: publisher}, nil
}

// Create stores a new list owned by ownerID.
func (s *Service) Create(ctx context.Context, ownerID string, req CreateRequest) (*GroceryList, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	list := &GroceryList{
		ID:             utils.NewID(),
		Name:           strings.TrimSpace(req.Name),
		OwnerID:        ownerID,
		IncludedStores: nonNil(req.Stores),
		Type:           req.Type,
	}
	if err := s.repos.Lists.Upsert(ctx, list); err != nil {
		return nil, errors.Wrap(err, "[Service Create] failed to store list")
	}
	return list, nil
}

// Get fetches a list by id without any ownership check.
func (s *Service) Get(ctx context.Context, listID string) (*GroceryList, error) {
	list, err := s.repos.Lists.Get(ctx, listID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service Get] list")
	}
	return list, nil
}

// Owned fetches a list that userID owns. A list owned by someone else is
// reported as not found.
func (s *Service) Owned(ctx context.Context, userID, listID string) (*GroceryList, error) {
	list, err := s.repos.Lists.Get(ctx, listID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service Owned] list")
	}
	if !list.OwnedBy(userID) {
		return nil, errors.Wrap(apperrors.ErrNotFound, "[Service Owned] list")
	}
	return list, nil
}

// OwnedBy returns every list owned by userID.
func (s *Service) OwnedBy(ctx context.Context, userID string) ([]*GroceryList, error) {
	owned, err := s.repos.Lists.ListByOwner(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service OwnedBy] failed to list lists")
	}
	return owned, nil
}

// UpdateSettings changes the name and stores of a list owned by userID.
func (s *Service) UpdateSettings(ctx context.Context, userID, listID string, settings Settings) (*GroceryList, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	list, err := s.Owned(ctx, userID, listID)
	if err != nil {
		return nil, err
	}

	list.Name = strings.TrimSpace(settings.Name)
	list.IncludedStores = nonNil(settings.Stores)
	if err := s.repos.Lists.Upsert(ctx, list); err != nil {
		return nil, errors.Wrap(err, "[Service UpdateSettings] failed to store list")
	}

	s.publish(ctx, events.ListSettingsChannel(list.ID), struct{}{})
	return list, nil
}

// Delete removes a list and its items and publishes the delete event.
// Invites, memberships and favorites that point at the list are left for
// lazy cleanup.
func (s *Service) Delete(ctx context.Context, list *GroceryList) error {
	if err := s.repos.Items.DeleteByList(ctx, list.ID); err != nil {
		return errors.Wrap(err, "[Service Delete] failed to delete items")
	}
	if err := s.repos.Lists.Delete(ctx, list.ID); err != nil {
		return errors.Wrap(err, "[Service Delete] failed to delete list")
	}

	s.publish(ctx, events.ListDeleteChannel(list.ID), nil)
	return nil
}

// Items returns the items of list.
func (s *Service) Items(ctx context.Context, list *GroceryList) ([]*Item, error) {
	items, err := s.repos.Items.ListByList(ctx, list.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service Items] failed to list items")
	}
	return items, nil
}

// AddItem appends an item to list on behalf of userID.
func (s *Service) AddItem(ctx context.Context, list *GroceryList, userID string, req NewItemRequest) (*Item, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	item := &Item{
		ID:         utils.NewID(),
		Name:       strings.TrimSpace(req.Name),
		ListID:     list.ID,
		AddedBy:    userID,
		Checked:    false,
		Quantity:   req.Quantity,
		Categories: nonNil(req.Categories),
		Price:      req.Price,
		Location:   req.Location,
		LinkedItem: req.LinkedItem,
	}
	if item.Location != nil && *item.Location == "" {
		item.Location = nil
	}
	if len(item.LinkedItem) == 0 {
		item.LinkedItem = nil
	}

	if err := s.repos.Items.Upsert(ctx, item); err != nil {
		return nil, errors.Wrap(err, "[Service AddItem] failed to store item")
	}

	s.publishAction(ctx, list, events.ActionAddItem)
	return item, nil
}

// SetChecked checks or unchecks an item of list.
func (s *Service) SetChecked(ctx context.Context, list *GroceryList, itemID string, checked bool) error {
	item, err := s.item(ctx, list, itemID)
	if err != nil {
		return err
	}

	item.Checked = checked
	if err := s.repos.Items.Upsert(ctx, item); err != nil {
		return errors.Wrap(err, "[Service SetChecked] failed to store item")
	}

	action := events.ActionUncheckItem
	if checked {
		action = events.ActionCheckItem
	}
	s.publishAction(ctx, list, action)
	return nil
}

// UpdateItem deep merges patch into an item of list.
func (s *Service) UpdateItem(ctx context.Context, list *GroceryList, itemID string, patch map[string]any) (*Item, error) {
	item, err := s.item(ctx, list, itemID)
	if err != nil {
		return nil, err
	}

	updated, err := ApplyUpdate(item, patch)
	if err != nil {
		return nil, err
	}
	if err := s.checkAlternative(ctx, list, item, updated); err != nil {
		return nil, err
	}
	if err := s.repos.Items.Upsert(ctx, updated); err != nil {
		return nil, errors.Wrap(err, "[Service UpdateItem] failed to store item")
	}

	s.publishAction(ctx, list, events.ActionUpdateItem)
	return updated, nil
}

// DeleteItem removes an item of list. Items that name it as their
// alternative are kept.
func (s *Service) DeleteItem(ctx context.Context, list *GroceryList, itemID string) error {
	if _, err := s.item(ctx, list, itemID); err != nil {
		return err
	}

	if err := s.repos.Items.Delete(ctx, itemID); err != nil {
		return errors.Wrap(err, "[Service DeleteItem] failed to delete item")
	}

	s.publishAction(ctx, list, events.ActionDeleteItem)
	return nil
}

// Alternatives returns the items registered as substitutes for itemID.
func (s *Service) Alternatives(ctx context.Context, list *GroceryList, itemID string) ([]*Item, error) {
	if _, err := s.item(ctx, list, itemID); err != nil {
		return nil, err
	}

	alternatives, err := s.repos.Items.ListAlternatives(ctx, list.ID, itemID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service Alternatives] failed to list alternatives")
	}
	return alternatives, nil
}

// checkAlternative requires a newly set alternative to name another item of
// the same list. An unchanged reference is left alone since its target may
// have been deleted since.
func (s *Service) checkAlternative(ctx context.Context, list *GroceryList, before, after *Item) error {
	if after.Alternative == nil {
		return nil
	}
	target := after.Alternative.AlternativeTo
	if before.Alternative != nil && before.Alternative.AlternativeTo == target {
		return nil
	}
	if target == after.ID {
		return errors.Wrap(apperrors.ErrInvalidInput, "an item cannot be its own alternative")
	}
	if _, err := s.item(ctx, list, target); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return errors.Wrap(apperrors.ErrInvalidInput, "alternative must be an item of the same list")
		}
		return err
	}
	return nil
}

// item fetches an item and checks it belongs to list.
func (s *Service) item(ctx context.Context, list *GroceryList, itemID string) (*Item, error) {
	item, err := s.repos.Items.Get(ctx, itemID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service] item")
	}
	if item.ListID != list.ID {
		return nil, errors.Wrap(apperrors.ErrNotFound, "[Service] item")
	}
	return item, nil
}

func (s *Service) publishAction(ctx context.Context, list *GroceryList, action string) {
	s.publish(ctx, events.ListChannel(list.ID), events.ItemAction{Action: action})
}

// publish is fire-and-forget: a failed notification never fails the mutation.
func (s *Service) publish(ctx context.Context, channel string, payload any) {
	if err := s.events.Publish(ctx, channel, payload); err != nil {
		log.Warn().Err(err).Str("channel", channel).Msg("failed to publish list event")
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
