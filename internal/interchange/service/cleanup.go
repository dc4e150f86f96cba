package service

import (
	"context"
	"fmt"
	"reflect"

	"contactsync/internal/interchange/matcher"
	"contactsync/internal/interchange/model"
	"contactsync/internal/interchange/util"

	"golang.org/x/sync/errgroup"
)

const cleanupConcurrency = 4

type groupOutcome struct {
	keeperID string
	removed  int
	flagged  int
}

// CleanupDuplicates merges groups of duplicate contacts into their earliest
// unflagged member. Losers are soft deleted (mode remove) or marked
// duplicate_of (mode flag). Flag sweeps skip contacts flagged earlier; remove
// sweeps include them so that a flag can later be turned into a merge.
func (s *Service) CleanupDuplicates(ctx context.Context, userID string, req model.CleanupReq) (*model.CleanupResult, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	mode := req.Mode
	if mode == "" {
		mode = model.CleanupModeRemove
	}
	if mode != model.CleanupModeRemove && mode != model.CleanupModeFlag {
		return nil, fmt.Errorf("%w: unknown cleanup mode %q", ErrBadRequest, mode)
	}

	filter := model.ContactFilter{UserID: userID, ExcludeFlagged: mode == model.CleanupModeFlag}
	contacts, err := s.Repo.FindContacts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}
	groups := matcher.Group(contacts)

	outcomes := make([]groupOutcome, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cleanupConcurrency)
	for i, group := range groups {
		g.Go(func() error {
			out, err := s.mergeGroup(gctx, userID, mode, keeperFirst(group))
			if err != nil {
				return err
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("cleanup duplicates: %w", err)
	}

	result := &model.CleanupResult{Mode: mode, GroupsFound: len(groups), KeptIDs: []string{}}
	for _, out := range outcomes {
		result.RecordsRemoved += out.removed
		result.RecordsFlagged += out.flagged
		result.KeptIDs = append(result.KeptIDs, out.keeperID)
	}

	util.FromContext(ctx).Info("duplicate cleanup finished",
		"user_id", userID,
		"mode", mode,
		"groups", result.GroupsFound,
		"removed", result.RecordsRemoved,
		"flagged", result.RecordsFlagged,
	)
	return result, nil
}

// mergeGroup saves the keeper first so that no loser is retired before its
// data has landed.
func (s *Service) mergeGroup(ctx context.Context, userID, mode string, group []*model.Contact) (groupOutcome, error) {
	keeper := group[0]
	out := groupOutcome{keeperID: keeper.ID}
	now := s.now()

	before := keeper.Clone()
	for _, loser := range group[1:] {
		keeper.FillEmptyFrom(loser)
	}
	if !reflect.DeepEqual(before, keeper) {
		keeper.UpdatedAt = now
		res, err := s.Repo.BulkWriteContacts(ctx, []model.ContactWrite{{Kind: model.WriteUpdate, Contact: keeper}})
		if err != nil {
			return out, err
		}
		if len(res.Failed) > 0 {
			return out, fmt.Errorf("update keeper %s: %s", keeper.ID, res.Failed[0].Reason)
		}
	}

	for _, loser := range group[1:] {
		if mode == model.CleanupModeFlag {
			if err := s.Repo.FlagDuplicate(ctx, userID, loser.ID, keeper.ID, now); err != nil {
				return out, fmt.Errorf("flag %s: %w", loser.ID, err)
			}
			out.flagged++
			continue
		}
		if err := s.Repo.MarkMerged(ctx, userID, loser.ID, keeper.ID, now); err != nil {
			return out, fmt.Errorf("merge %s: %w", loser.ID, err)
		}
		out.removed++
	}
	return out, nil
}

// keeperFirst moves the earliest contact that is not itself flagged as a
// duplicate to the front. Group order is otherwise kept.
func keeperFirst(group []*model.Contact) []*model.Contact {
	for i, c := range group {
		if c.DuplicateOf != "" {
			continue
		}
		if i == 0 {
			return group
		}
		out := make([]*model.Contact, 0, len(group))
		out = append(out, c)
		out = append(out, group[:i]...)
		return append(out, group[i+1:]...)
	}
	return group
}
