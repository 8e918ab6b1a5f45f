// Package store owns the in-memory game tables and mirrors every change to
// the backing documents.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/mcoot/eventide-gm/internal/model"
	"github.com/mcoot/eventide-gm/internal/model/ordered"
	"github.com/mcoot/eventide-gm/internal/storage"
)

// User-facing reasons shown when the lore document cannot be used
const (
	LoreMissingReason = "Lore data file not found."
	LoreCorruptReason = "Error reading lore data file."
)

// Store holds players, missions, secret missions, the lore tree and the NPC
// roster. Every mutation rewrites the whole affected document.
type Store struct {
	storage storage.Storage
	logger  *slog.Logger

	mu             sync.RWMutex
	lore           *model.LoreTree
	players        map[model.PlayerID]*model.Player
	order          []model.PlayerID
	missions       *model.Missions
	secretMissions *model.SecretMissions
	recipients     []string
}

// New creates an empty store. Call Load to read the documents.
func New(st storage.Storage, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Store{
		storage:        st,
		logger:         logger,
		lore:           model.UnavailableLore(LoreMissingReason),
		players:        make(map[model.PlayerID]*model.Player),
		missions:       ordered.New[*model.Mission](),
		secretMissions: ordered.New[*model.SecretMission](),
	}
}

// Load reads every document. Missing documents leave their table empty;
// unreadable ones are reported in the returned error but never stop the
// remaining documents from loading.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error

	lore, err := s.storage.LoadLore(ctx)
	switch {
	case err == nil:
		s.lore = lore
		for _, key := range lore.OpaqueKeys() {
			s.logger.Warn("lore entry is neither text nor a section, skipping", slog.String("key", key))
		}
		s.logger.Info("lore data loaded", slog.Int("sections", lore.SectionCount()))
	case errors.Is(err, storage.ErrNotExist):
		s.lore = model.UnavailableLore(LoreMissingReason)
		s.logger.Error("lore data file not found")
	default:
		s.lore = model.UnavailableLore(LoreCorruptReason)
		s.logger.Error("error decoding lore data", slog.String("error", err.Error()))
		errs = append(errs, fmt.Errorf("lore: %w", err))
	}

	players, err := s.storage.LoadPlayers(ctx)
	s.players = make(map[model.PlayerID]*model.Player)
	s.order = nil
	switch {
	case err == nil:
		for _, p := range players {
			if p == nil {
				continue
			}
			if _, dup := s.players[p.ID]; !dup {
				s.order = append(s.order, p.ID)
			}
			s.players[p.ID] = p
		}
		s.logger.Info("player data loaded", slog.Int("players", len(s.players)))
	case errors.Is(err, storage.ErrNotExist):
		s.logger.Error("player data file not found")
	default:
		s.logger.Error("error decoding player data", slog.String("error", err.Error()))
		errs = append(errs, fmt.Errorf("players: %w", err))
	}

	missions, err := s.storage.LoadMissions(ctx)
	s.missions = ordered.New[*model.Mission]()
	switch {
	case err == nil:
		s.missions = missions
		s.logger.Info("mission data loaded", slog.Int("missions", missions.Len()))
	case errors.Is(err, storage.ErrNotExist):
		s.logger.Error("mission data file not found")
	default:
		s.logger.Error("error decoding mission data", slog.String("error", err.Error()))
		errs = append(errs, fmt.Errorf("missions: %w", err))
	}

	secret, err := s.storage.LoadSecretMissions(ctx)
	s.secretMissions = ordered.New[*model.SecretMission]()
	switch {
	case err == nil:
		s.secretMissions = secret
		s.logger.Info("secret mission data loaded", slog.Int("secret_missions", secret.Len()))
	case errors.Is(err, storage.ErrNotExist):
		s.logger.Warn("secret mission data file not found, no secret missions will be available")
	default:
		s.logger.Error("error decoding secret mission data", slog.String("error", err.Error()))
		errs = append(errs, fmt.Errorf("secret missions: %w", err))
	}

	recipients, err := s.storage.LoadRecipients(ctx)
	s.recipients = nil
	switch {
	case err == nil:
		s.recipients = recipients
		s.logger.Info("recipient list loaded", slog.Int("recipients", len(recipients)))
	case errors.Is(err, storage.ErrNotExist):
		s.logger.Warn("recipient list file not found, recipient list will be empty")
	default:
		s.logger.Error("error decoding recipient list", slog.String("error", err.Error()))
		errs = append(errs, fmt.Errorf("recipients: %w", err))
	}

	return errors.Join(errs...)
}

// Players

// Player returns a copy of the player record
func (s *Store) Player(id model.PlayerID) (*model.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[id]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// Players returns copies of every player sorted by character name, then id
func (s *Store) Players() []*model.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Player, 0, len(s.players))
	for _, id := range s.order {
		out = append(out, s.players[id].Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CharacterName != out[j].CharacterName {
			return out[i].CharacterName < out[j].CharacterName
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// PlayerByName finds a player by exact character name, in file order
func (s *Store) PlayerByName(name string) (*model.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if p := s.players[id]; p.CharacterName == name {
			return p.Clone(), true
		}
	}
	return nil, false
}

// Register creates the player record on first contact. The default mission
// is created the first time anyone registers. created is false when the
// player already existed.
func (s *Store) Register(ctx context.Context, id model.PlayerID, firstName string) (*model.Player, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.players[id]; ok {
		return p.Clone(), false, nil
	}

	if !s.missions.Has(model.DefaultMissionID) {
		s.missions.Set(model.DefaultMissionID, model.DefaultMission())
		if err := s.storage.SaveMissions(ctx, s.missions); err != nil {
			s.logger.Error("error saving mission data", slog.String("error", err.Error()))
		}
	}

	p := model.NewPlayer(id, firstName)
	s.players[id] = p
	s.order = append(s.order, id)
	if err := s.savePlayersLocked(ctx); err != nil {
		delete(s.players, id)
		s.order = s.order[:len(s.order)-1]
		return nil, false, err
	}

	s.logger.Info("new player registered", slog.Int64("player_id", int64(id)), slog.String("first_name", firstName))
	return p.Clone(), true, nil
}

// SetActive sets the activation flag. Re-applying the current value changes
// nothing, skips the save and reports changed=false.
func (s *Store) SetActive(ctx context.Context, id model.PlayerID, active bool) (*model.Player, bool, error) {
	changed := false
	p, err := s.mutatePlayer(ctx, id, func(p *model.Player) (bool, error) {
		if p.IsActive == active {
			return false, nil
		}
		p.IsActive = active
		changed = true
		return true, nil
	})
	return p, changed, err
}

// SetStatus changes the player's game status
func (s *Store) SetStatus(ctx context.Context, id model.PlayerID, status model.Status) (*model.Player, error) {
	if _, err := model.ParseStatus(string(status)); err != nil {
		return nil, err
	}
	return s.mutatePlayer(ctx, id, func(p *model.Player) (bool, error) {
		p.Status = status
		return true, nil
	})
}

// SetSecretMission assigns a secret mission; an empty id clears it
func (s *Store) SetSecretMission(ctx context.Context, id model.PlayerID, secretID string) (*model.Player, error) {
	return s.mutatePlayer(ctx, id, func(p *model.Player) (bool, error) {
		if secretID != "" && !s.secretMissions.Has(secretID) {
			return false, model.ErrSecretMissionNotFound
		}
		p.SecretMissionID = secretID
		return true, nil
	})
}

// CacheCharacterImage stores the attachment handle returned by the first upload
func (s *Store) CacheCharacterImage(ctx context.Context, id model.PlayerID, fileID string) error {
	_, err := s.mutatePlayer(ctx, id, func(p *model.Player) (bool, error) {
		p.CharacterImageFileID = fileID
		return true, nil
	})
	return err
}

// AssignMission sets the current mission for one player or, with all, for
// every player. The returned players are the ones updated.
func (s *Store) AssignMission(ctx context.Context, missionID string, all bool, id model.PlayerID) ([]*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.missions.Has(missionID) {
		return nil, model.ErrMissionNotFound
	}

	var targets []model.PlayerID
	if all {
		targets = append(targets, s.order...)
	} else {
		if _, ok := s.players[id]; !ok {
			return nil, model.ErrPlayerNotFound
		}
		targets = []model.PlayerID{id}
	}
	if len(targets) == 0 {
		return nil, nil
	}

	previous := make(map[model.PlayerID]string, len(targets))
	for _, pid := range targets {
		previous[pid] = s.players[pid].CurrentMissionID
		s.players[pid].CurrentMissionID = missionID
	}
	if err := s.savePlayersLocked(ctx); err != nil {
		for pid, m := range previous {
			s.players[pid].CurrentMissionID = m
		}
		return nil, err
	}

	out := make([]*model.Player, 0, len(targets))
	for _, pid := range targets {
		out = append(out, s.players[pid].Clone())
	}
	return out, nil
}

// mutatePlayer applies fn to the live record and saves. Any error from fn or
// from the save restores the record as it was before.
func (s *Store) mutatePlayer(ctx context.Context, id model.PlayerID, fn func(p *model.Player) (bool, error)) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}

	before := p.Clone()
	dirty, err := fn(p)
	if err != nil {
		*p = *before
		return nil, err
	}
	if !dirty {
		return p.Clone(), nil
	}
	if err := s.savePlayersLocked(ctx); err != nil {
		*p = *before
		return nil, err
	}
	return p.Clone(), nil
}

func (s *Store) savePlayersLocked(ctx context.Context) error {
	list := make([]*model.Player, 0, len(s.order))
	for _, id := range s.order {
		list = append(list, s.players[id])
	}
	if err := s.storage.SavePlayers(ctx, list); err != nil {
		s.logger.Error("error saving player data", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", model.ErrSave, err)
	}
	s.logger.Info("player data saved", slog.Int("players", len(list)))
	return nil
}

// Missions

// Mission returns the mission with the given id
func (s *Store) Mission(id string) (*model.Mission, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.missions.Get(id)
	if !ok || m == nil {
		return nil, false
	}
	c := *m
	return &c, true
}

// SecretMission returns the secret mission with the given id
func (s *Store) SecretMission(id string) (*model.SecretMission, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.secretMissions.Get(id)
	if !ok || m == nil {
		return nil, false
	}
	c := *m
	return &c, true
}

// SecretMissionEntry pairs a secret mission with its id
type SecretMissionEntry struct {
	ID      string
	Mission model.SecretMission
}

// SecretMissions lists secret missions in file order
func (s *Store) SecretMissions() []SecretMissionEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []SecretMissionEntry
	s.secretMissions.Each(func(id string, m *model.SecretMission) bool {
		if m != nil {
			out = append(out, SecretMissionEntry{ID: id, Mission: *m})
		}
		return true
	})
	return out
}

// Recipients

// Recipients returns a copy of the NPC roster
func (s *Store) Recipients() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.recipients))
	copy(out, s.recipients)
	return out
}

// HasRecipient reports whether name is on the NPC roster
func (s *Store) HasRecipient(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.recipients {
		if r == name {
			return true
		}
	}
	return false
}

// AddRecipient appends name to the roster; on a failed save it is removed again
func (s *Store) AddRecipient(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.recipients {
		if r == name {
			return model.ErrRecipientExists
		}
	}
	s.recipients = append(s.recipients, name)
	if err := s.storage.SaveRecipients(ctx, s.recipients); err != nil {
		s.recipients = s.recipients[:len(s.recipients)-1]
		s.logger.Error("error saving recipients list", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", model.ErrSave, err)
	}
	return nil
}

// RemoveRecipient drops name from the roster; on a failed save the previous list is restored
func (s *Store) RemoveRecipient(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i, r := range s.recipients {
		if r == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.ErrRecipientNotFound
	}
	orig := make([]string, len(s.recipients))
	copy(orig, s.recipients)

	s.recipients = append(s.recipients[:idx], s.recipients[idx+1:]...)
	if err := s.storage.SaveRecipients(ctx, s.recipients); err != nil {
		s.recipients = orig
		s.logger.Error("error saving recipients list", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", model.ErrSave, err)
	}
	return nil
}

// Lore

// ViewLore calls fn with the lore tree. fn must not modify it.
func (s *Store) ViewLore(fn func(lore *model.LoreTree)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.lore)
}

// UpdateLore lets fn modify the lore tree and saves it when fn reports a change
func (s *Store) UpdateLore(ctx context.Context, fn func(lore *model.LoreTree) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lore.Unavailable != "" {
		return model.ErrLoreUnavailable
	}
	if !fn(s.lore) {
		return nil
	}
	if err := s.storage.SaveLore(ctx, s.lore); err != nil {
		s.logger.Error("error saving lore data", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", model.ErrSave, err)
	}
	s.logger.Info("lore data saved")
	return nil
}

// Stats summarises table sizes
type Stats struct {
	Players        int
	ActivePlayers  int
	Missions       int
	SecretMissions int
	Recipients     int
	LoreSections   int
	LoreAvailable  bool
}

// Stats returns current table sizes
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Stats{
		Players:        len(s.players),
		Missions:       s.missions.Len(),
		SecretMissions: s.secretMissions.Len(),
		Recipients:     len(s.recipients),
		LoreSections:   s.lore.SectionCount(),
		LoreAvailable:  s.lore.Unavailable == "",
	}
	for _, p := range s.players {
		if p.IsActive {
			st.ActivePlayers++
		}
	}
	return st
}
