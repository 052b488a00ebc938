// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bridge

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/typ.v4/slices"

	"github.com/AccelByte/extend-lobby-server/pkg/constants"
	"github.com/AccelByte/extend-lobby-server/pkg/envelope"
	"github.com/AccelByte/extend-lobby-server/pkg/models"
)

var playableCharacters = func() []models.CharacterType {
	characters := make([]models.CharacterType, 0, len(models.CharacterConfigs))
	for c, cfg := range models.CharacterConfigs {
		if cfg.AllowForPlayers && cfg.CharacterRole != models.CharacterRoleNone {
			characters = append(characters, c)
		}
	}
	sort.Slice(characters, func(i, j int) bool { return characters[i] < characters[j] })
	return characters
}()

type characterChange struct {
	accountID int64
	character models.CharacterType
	forced    bool
}

func (s *Server) validateSelectedCharacterLocked(accountID int64, character models.CharacterType) bool {
	i := s.teamInfo.Find(accountID)
	if i < 0 {
		return false
	}
	team := s.teamInfo.TeamPlayerInfo[i].TeamID
	for _, p := range s.teamInfo.TeamPlayerInfo {
		if p.AccountID != accountID && p.TeamID == team && p.CharacterType == character {
			return false
		}
	}
	return true
}

// ValidateSelectedCharacter reports whether no teammate of the account holds the character.
func (s *Server) ValidateSelectedCharacter(accountID int64, character models.CharacterType) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.validateSelectedCharacterLocked(accountID, character)
}

// CheckDuplicatedAndFill flags every player sharing a character with an earlier teammate and every
// player still on a fill placeholder. Flagged players lose their ready state and are told who took
// their pick. It reports whether anyone was flagged.
func (s *Server) CheckDuplicatedAndFill(scope *envelope.Scope) bool {
	s.selectionMu.Lock()
	defer s.selectionMu.Unlock()

	type displaced struct {
		accountID int64
		holder    string
		character models.CharacterType
	}
	var notify []displaced

	s.mu.Lock()
	roster := s.teamInfo.TeamPlayerInfo
	for _, team := range []models.Team{models.TeamA, models.TeamB} {
		holders := map[models.CharacterType]int{}
		for i := range roster {
			p := &roster[i]
			if p.TeamID != team {
				continue
			}
			if p.CharacterType.IsWillFill() {
				if !p.IsNPCBot {
					s.flagLocked(p)
				}
				continue
			}
			first, taken := holders[p.CharacterType]
			if !taken {
				holders[p.CharacterType] = i
				continue
			}
			if p.IsNPCBot {
				continue
			}
			s.flagLocked(p)
			notify = append(notify, displaced{p.AccountID, roster[first].Handle, p.CharacterType})
		}
	}
	flagged := len(s.pendingSelection) > 0
	s.mu.Unlock()

	for _, d := range notify {
		scope.Log.Infof("%d must change %s, it was selected by %s first", d.accountID, d.character, d.holder)
		s.env.Sessions.Send(d.accountID, models.NewSystemMessage(models.NewLocalizationPayload(
			constants.TermDuplicateFreelancer, constants.ContextGlobal,
			models.LocalizationArg{Handle: d.holder},
			models.LocalizationArg{Text: d.character.String()},
		)))
	}
	return flagged
}

func (s *Server) flagLocked(p *models.PlayerInfo) {
	s.pendingSelection[p.AccountID] = p.CharacterType
	p.ReadyState = models.ReadyStateUnknown
}

// fillCandidatesLocked lists characters nobody on the team plays and no fill of this pass took.
func (s *Server) fillCandidatesLocked(team models.Team, usedFills map[models.CharacterType]bool) []models.CharacterType {
	used := map[models.CharacterType]bool{}
	for _, p := range s.teamInfo.TeamPlayerInfo {
		if p.TeamID == team {
			used[p.CharacterType] = true
		}
	}
	return slices.Filter(playableCharacters, func(c models.CharacterType) bool {
		return !used[c] && !usedFills[c]
	})
}

// CheckIfAllSelected resolves every flagged player. Players who kept their flagged character get a
// random free one and are told so. Everyone resolved is persisted and marked ready.
func (s *Server) CheckIfAllSelected(scope *envelope.Scope) error {
	s.selectionMu.Lock()
	defer s.selectionMu.Unlock()

	var changes []characterChange
	s.mu.Lock()
	usedFills := map[models.CharacterType]bool{}
	for i := range s.teamInfo.TeamPlayerInfo {
		p := &s.teamInfo.TeamPlayerInfo[i]
		flaggedCharacter, flagged := s.pendingSelection[p.AccountID]
		if !flagged {
			continue
		}
		change := characterChange{accountID: p.AccountID, character: p.CharacterType}
		if p.CharacterType == flaggedCharacter {
			candidates := s.fillCandidatesLocked(p.TeamID, usedFills)
			if len(candidates) == 0 {
				scope.Log.Warnf("No free character left to fill for %d", p.AccountID)
			} else {
				change.character = candidates[s.randIntN(len(candidates))]
				change.forced = true
			}
			usedFills[change.character] = true
		}
		p.CharacterType = change.character
		p.ReadyState = models.ReadyStateReady
		changes = append(changes, change)
	}
	s.pendingSelection = map[int64]models.CharacterType{}
	s.mu.Unlock()

	var errs []error
	for _, change := range changes {
		previous, err := s.persistLastCharacter(scope.Ctx, change.accountID, change.character)
		if err != nil {
			errs = append(errs, err)
		} else if _, recorded := s.substitutions[change.accountID]; change.forced && !recorded {
			s.substitutions[change.accountID] = previous
		}
		s.env.Sessions.UpdateCharacter(change.accountID, change.character)

		if !change.forced {
			continue
		}
		scope.Log.Infof("Selected %s for %d", change.character, change.accountID)
		s.env.Sessions.Send(change.accountID, models.ForcedCharacterChangeFromServerNotification{
			CharacterType: change.character,
		})
		s.env.Sessions.Send(change.accountID, models.NewSystemMessage(models.NewLocalizationPayload(
			constants.TermTooLateToChange, constants.ContextGlobal,
			models.LocalizationArg{Text: change.character.String()},
		)))
	}
	return errors.Join(errs...)
}

// SelectCharacter changes the pick of a player before the game launched.
func (s *Server) SelectCharacter(scope *envelope.Scope, accountID int64, character models.CharacterType) error {
	cfg, known := models.CharacterConfigs[character]
	if !known || !cfg.AllowForPlayers || character.IsWillFill() {
		return fmt.Errorf("%w: %s is not selectable", models.ErrCharacterUnavailable, character)
	}

	s.selectionMu.Lock()
	s.mu.Lock()
	err := func() error {
		if s.status.IsActive() || s.status == models.GameStatusStopped {
			return models.ErrSelectionClosed
		}
		i := s.teamInfo.Find(accountID)
		if i < 0 {
			return models.ErrPlayerNotInGame
		}
		if !s.validateSelectedCharacterLocked(accountID, character) {
			return models.ErrCharacterUnavailable
		}
		s.teamInfo.TeamPlayerInfo[i].CharacterType = character
		return nil
	}()
	s.mu.Unlock()
	s.selectionMu.Unlock()
	if err != nil {
		return err
	}

	scope.Log.Infof("%d selected %s in %s", accountID, character, s.processCode)
	s.env.Sessions.UpdateCharacter(accountID, character)
	_, err = s.persistLastCharacter(scope.Ctx, accountID, character)
	return err
}

// RevertSubstitutions restores the last character of every account the resolver changed.
func (s *Server) RevertSubstitutions(scope *envelope.Scope) {
	s.selectionMu.Lock()
	substitutions := s.substitutions
	s.substitutions = map[int64]models.CharacterType{}
	s.selectionMu.Unlock()

	for accountID, previous := range substitutions {
		if _, err := s.persistLastCharacter(scope.Ctx, accountID, previous); err != nil {
			scope.Log.WithError(err).Warnf("unable to restore last character of %d", accountID)
			continue
		}
		s.env.Sessions.UpdateCharacter(accountID, previous)
	}
}

func (s *Server) persistLastCharacter(ctx context.Context, accountID int64, character models.CharacterType) (models.CharacterType, error) {
	if s.env.Accounts == nil {
		return models.CharacterNone, nil
	}
	account, err := s.env.Accounts.GetAccount(ctx, accountID)
	if err != nil {
		return models.CharacterNone, fmt.Errorf("unable to load account %d: %w", accountID, err)
	}
	previous := account.LastCharacter
	account.LastCharacter = character
	if err := s.env.Accounts.UpdateAccount(ctx, account); err != nil {
		return previous, fmt.Errorf("unable to save account %d: %w", accountID, err)
	}
	return previous, nil
}
