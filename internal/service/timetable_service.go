package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/campustack/timetable-api/internal/dto"
	"github.com/campustack/timetable-api/internal/engine"
	"github.com/campustack/timetable-api/internal/models"
	appErrors "github.com/campustack/timetable-api/pkg/errors"
)

type timetableRepository interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable) error
	ListByName(ctx context.Context, name string) ([]models.Timetable, error)
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.TimetableStatus, meta types.JSONText) error
	ArchiveOthers(ctx context.Context, exec sqlx.ExtContext, name, keepID string) error
}

type timetableSlotRepository interface {
	UpsertBatch(ctx context.Context, exec sqlx.ExtContext, slots []models.TimetableSlot) error
	ListByTimetable(ctx context.Context, timetableID string) ([]models.TimetableSlot, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type timetableGenerator interface {
	Generate(settings engine.Settings, requirements []engine.Requirement, prefs []engine.TeacherPreference) (*engine.Result, error)
}

type reportCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type generationObserver interface {
	ObserveGeneration(score float64, attempts, shortfalls int)
}

// TimetableService builds timetable proposals and persists accepted versions.
type TimetableService struct {
	repo      timetableRepository
	slots     timetableSlotRepository
	tx        txProvider
	generator timetableGenerator
	cache     reportCache
	metrics   generationObserver
	validator *validator.Validate
	logger    *zap.Logger
	store     *proposalStore
	cfg       TimetableServiceConfig
}

// TimetableServiceConfig governs proposal retention and detail caching.
type TimetableServiceConfig struct {
	ProposalTTL  time.Duration
	CacheEnabled bool
	ReportTTL    time.Duration
}

// NewTimetableService wires timetable dependencies.
func NewTimetableService(
	repo timetableRepository,
	slots timetableSlotRepository,
	tx txProvider,
	generator timetableGenerator,
	cache reportCache,
	metrics generationObserver,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableServiceConfig,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	if cfg.ReportTTL <= 0 {
		cfg.ReportTTL = 10 * time.Minute
	}
	return &TimetableService{
		repo:      repo,
		slots:     slots,
		tx:        tx,
		generator: generator,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		store:     newProposalStore(cfg.ProposalTTL),
		cfg:       cfg,
	}
}

// Generate runs the allocation engine and holds the result as a proposal.
// Proposals live in memory until saved or expired.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable generation payload")
	}

	settings := engine.Settings{
		PeriodsPerDay:            req.Settings.PeriodsPerDay,
		LunchPeriod:              req.Settings.LunchPeriod,
		BreakPeriods:             req.Settings.BreakPeriods,
		MaxTeacherPeriodsPerWeek: req.Settings.MaxTeacherPeriodsPerWeek,
	}
	requirements := make([]engine.Requirement, 0, len(req.Rows))
	for _, row := range req.Rows {
		requirements = append(requirements, engine.Requirement{
			Class:           engine.ClassID{Department: row.Department, Year: row.Year, Section: row.Section},
			Subject:         row.Subject,
			Periods:         row.Periods,
			Staff:           row.Staff,
			PreferredDay:    row.PreferredDay,
			PreferredPeriod: row.PreferredPeriod,
		})
	}
	prefs := make([]engine.TeacherPreference, 0, len(req.Preferences))
	for _, pref := range req.Preferences {
		prefs = append(prefs, engine.TeacherPreference{
			Teacher:         pref.Teacher,
			Class:           engine.ClassID{Department: pref.Department, Year: pref.Year, Section: pref.Section},
			PreferredDay:    pref.PreferredDay,
			PreferredPeriod: pref.PreferredPeriod,
		})
	}

	result, err := s.generator.Generate(settings, requirements, prefs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "timetable generation rejected input")
	}

	if s.metrics != nil {
		s.metrics.ObserveGeneration(result.Report.Score, result.Report.Attempts, len(result.Report.Shortfalls))
	}
	if len(result.Report.Shortfalls) > 0 {
		s.logger.Sugar().Infow("generation finished with shortfalls",
			"name", req.Name,
			"score", result.Report.Score,
			"shortfalls", len(result.Report.Shortfalls))
	}

	proposal := timetableProposal{
		ProposalID:  uuid.NewString(),
		Name:        req.Name,
		Settings:    settings,
		Result:      result,
		RequestedAt: time.Now().UTC(),
	}
	s.store.Save(proposal)

	return &dto.GenerateTimetableResponse{
		ProposalID: proposal.ProposalID,
		Name:       req.Name,
		Report:     result.Report,
		Classes:    result.Classes,
		Teachers:   result.Teachers,
	}, nil
}

// Proposal returns a held proposal by its identifier.
func (s *TimetableService) Proposal(ctx context.Context, id string) (*dto.GenerateTimetableResponse, error) {
	proposal, ok := s.store.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	return &dto.GenerateTimetableResponse{
		ProposalID: proposal.ProposalID,
		Name:       proposal.Name,
		Report:     proposal.Result.Report,
		Classes:    proposal.Result.Classes,
		Teachers:   proposal.Result.Teachers,
	}, nil
}

// savedMeta is the JSON document stored alongside a timetable version. It
// carries enough calendar context to rebuild grid dimensions on read.
type savedMeta struct {
	Settings struct {
		PeriodsPerDay            int   `json:"periodsPerDay"`
		LunchPeriod              int   `json:"lunchPeriod"`
		BreakPeriods             []int `json:"breakPeriods,omitempty"`
		MaxTeacherPeriodsPerWeek int   `json:"maxTeacherPeriodsPerWeek"`
	} `json:"settings"`
	Report engine.Report `json:"report"`
}

// Save persists a held proposal as the next version under its name.
func (s *TimetableService) Save(ctx context.Context, req dto.SaveTimetableRequest) (string, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save timetable payload")
	}
	proposal, ok := s.store.Get(req.ProposalID)
	if !ok {
		return "", appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	if err := s.requireStore(); err != nil {
		return "", err
	}
	if s.tx == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var meta savedMeta
	meta.Settings.PeriodsPerDay = proposal.Settings.PeriodsPerDay
	meta.Settings.LunchPeriod = proposal.Settings.LunchPeriod
	meta.Settings.BreakPeriods = proposal.Settings.BreakPeriods
	meta.Settings.MaxTeacherPeriodsPerWeek = proposal.Settings.MaxTeacherPeriodsPerWeek
	meta.Report = proposal.Result.Report
	metaBytes, marshalErr := json.Marshal(meta)
	if marshalErr != nil {
		err = appErrors.Wrap(marshalErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode timetable metadata")
		return "", err
	}

	record := &models.Timetable{
		Name:   proposal.Name,
		Status: models.TimetableStatusDraft,
		Score:  proposal.Result.Report.Score,
		Meta:   types.JSONText(metaBytes),
	}
	if err = s.repo.CreateVersioned(ctx, tx, record); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable")
		return "", err
	}

	slotModels := flattenClassGrids(record.ID, proposal.Result.Classes)
	if err = s.slots.UpsertBatch(ctx, tx, slotModels); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable slots")
		return "", err
	}

	if req.Publish {
		if err = s.repo.UpdateStatus(ctx, tx, record.ID, models.TimetableStatusPublished, nil); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish timetable")
			return "", err
		}
		if err = s.repo.ArchiveOthers(ctx, tx, record.Name, record.ID); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive replaced versions")
			return "", err
		}
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timetable transaction")
		return "", err
	}

	s.store.Delete(req.ProposalID)
	s.invalidateCache(ctx)
	return record.ID, nil
}

// Get loads a stored timetable and rebuilds both grid families from its slots.
func (s *TimetableService) Get(ctx context.Context, id string) (*dto.TimetableDetailResponse, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "timetable id is required")
	}
	if err := s.requireStore(); err != nil {
		return nil, err
	}

	cacheKey := detailCacheKey(id)
	if s.cfg.CacheEnabled && s.cache != nil {
		var cached dto.TimetableDetailResponse
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	slots, err := s.slots.ListByTimetable(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable slots")
	}

	var meta savedMeta
	if err := json.Unmarshal(record.Meta, &meta); err != nil || meta.Settings.PeriodsPerDay == 0 {
		return nil, appErrors.Clone(appErrors.ErrInternal, "timetable metadata is unreadable")
	}

	classes, teachers := rebuildGrids(meta.Settings.PeriodsPerDay, slots)
	detail := &dto.TimetableDetailResponse{
		Timetable: *record,
		Classes:   classes,
		Teachers:  teachers,
	}
	if s.cfg.CacheEnabled && s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, detail, s.cfg.ReportTTL); err != nil {
			s.logger.Sugar().Warnw("failed to cache timetable detail", "id", id, "error", err)
		}
	}
	return detail, nil
}

// List returns stored versions under the provided name.
func (s *TimetableService) List(ctx context.Context, query dto.TimetableQuery) ([]models.Timetable, error) {
	if query.Name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name is required")
	}
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	list, err := s.repo.ListByName(ctx, query.Name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}
	return list, nil
}

// Publish marks a draft version as the published one.
func (s *TimetableService) Publish(ctx context.Context, id string) error {
	if err := s.requireStore(); err != nil {
		return err
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	if record.Status == models.TimetableStatusPublished {
		return nil
	}
	if err := s.repo.UpdateStatus(ctx, nil, id, models.TimetableStatusPublished, nil); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish timetable")
	}
	if err := s.repo.ArchiveOthers(ctx, nil, record.Name, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive replaced versions")
	}
	s.invalidateCache(ctx)
	return nil
}

// Delete removes a draft version.
func (s *TimetableService) Delete(ctx context.Context, id string) error {
	if err := s.requireStore(); err != nil {
		return err
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	if record.Status != models.TimetableStatusDraft {
		return appErrors.Clone(appErrors.ErrConflict, "only draft timetables can be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable")
	}
	s.invalidateCache(ctx)
	return nil
}

// requireStore rejects persistence operations when the service runs without a
// database (generation and preview remain available).
func (s *TimetableService) requireStore() error {
	if s.repo == nil || s.slots == nil {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "timetable persistence is not configured")
	}
	return nil
}

func (s *TimetableService) invalidateCache(ctx context.Context) {
	if !s.cfg.CacheEnabled || s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "timetable:detail:*"); err != nil {
		s.logger.Sugar().Warnw("failed to invalidate timetable cache", "error", err)
	}
}

func detailCacheKey(id string) string {
	return fmt.Sprintf("timetable:detail:%s", id)
}

// flattenClassGrids extracts occupied class cells into persistence rows.
// Teacher grids are not stored; they are mirror images rebuilt on read.
func flattenClassGrids(timetableID string, classes []engine.ClassTimetable) []models.TimetableSlot {
	var slots []models.TimetableSlot
	for _, class := range classes {
		for day, row := range class.Grid {
			for _, cell := range row {
				if cell.Subject == "" {
					continue
				}
				slots = append(slots, models.TimetableSlot{
					TimetableID: timetableID,
					ClassName:   class.Name,
					DayOfWeek:   day,
					Period:      cell.Period,
					Subject:     cell.Subject,
					Staff:       cell.Staff,
				})
			}
		}
	}
	return slots
}

// rebuildGrids reconstructs both grid families from flat slot rows.
func rebuildGrids(periodsPerDay int, slots []models.TimetableSlot) ([]engine.ClassTimetable, []engine.TeacherTimetable) {
	classGrids := make(map[string]engine.Grid)
	teacherGrids := make(map[string]engine.Grid)

	for _, slot := range slots {
		if slot.DayOfWeek < 0 || slot.DayOfWeek >= engine.DaysPerWeek || slot.Period < 1 || slot.Period > periodsPerDay {
			continue
		}
		grid, ok := classGrids[slot.ClassName]
		if !ok {
			grid = engine.NewGrid(periodsPerDay)
			classGrids[slot.ClassName] = grid
		}
		cell := &grid[slot.DayOfWeek][slot.Period-1]
		cell.Subject = slot.Subject
		cell.Staff = slot.Staff

		for _, teacher := range engine.SplitStaff(slot.Staff) {
			tg, ok := teacherGrids[teacher]
			if !ok {
				tg = engine.NewGrid(periodsPerDay)
				teacherGrids[teacher] = tg
			}
			tcell := &tg[slot.DayOfWeek][slot.Period-1]
			tcell.Subject = slot.Subject
			tcell.Class = slot.ClassName
		}
	}

	classes := make([]engine.ClassTimetable, 0, len(classGrids))
	for name, grid := range classGrids {
		classes = append(classes, engine.ClassTimetable{Name: name, Grid: grid})
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].Name < classes[j].Name })

	teachers := make([]engine.TeacherTimetable, 0, len(teacherGrids))
	for name, grid := range teacherGrids {
		teachers = append(teachers, engine.TeacherTimetable{Teacher: name, Grid: grid})
	}
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].Teacher < teachers[j].Teacher })

	return classes, teachers
}

// --- Proposal cache ---

type timetableProposal struct {
	ProposalID  string
	Name        string
	Settings    engine.Settings
	Result      *engine.Result
	RequestedAt time.Time
}

type proposalStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]timetableProposal
}

func newProposalStore(ttl time.Duration) *proposalStore {
	return &proposalStore{
		ttl:   ttl,
		items: make(map[string]timetableProposal),
	}
}

func (s *proposalStore) Save(proposal timetableProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[proposal.ProposalID] = proposal
}

func (s *proposalStore) Get(id string) (timetableProposal, bool) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return timetableProposal{}, false
	}
	if time.Since(proposal.RequestedAt) > s.ttl {
		s.Delete(id)
		return timetableProposal{}, false
	}
	return proposal, true
}

func (s *proposalStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}
