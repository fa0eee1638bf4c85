package services

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"libranet/internal/duration"
	"libranet/internal/liberr"
	"libranet/internal/models"
	"libranet/internal/money"
	"libranet/internal/repositories"
)

// ─── Fine Calculation Constants ───────────────────────────────────────────────

// DefaultDailyFineRate is charged per overdue day when no rate is configured.
var DefaultDailyFineRate = money.FromMajor(10.00)

// ─── Service Interface ────────────────────────────────────────────────────────

// ItemSummary is the catalogue view returned by searches.
type ItemSummary struct {
	ID     int                       `json:"id"`
	Title  string                    `json:"title"`
	Type   models.ItemType           `json:"type"`
	Status models.AvailabilityStatus `json:"status"`
}

type PlaybackAction string

const (
	PlaybackPlay  PlaybackAction = "play"
	PlaybackPause PlaybackAction = "pause"
	PlaybackStop  PlaybackAction = "stop"
	PlaybackSeek  PlaybackAction = "seek"
	PlaybackQuery PlaybackAction = "status"
)

// LendingService defines the borrowing, returning and archiving workflows of the library.
// Every failure is a *liberr.Error; use errors.Is against the liberr sentinels.
type LendingService interface {
	AddItem(item *models.Item) (int, error)
	AddUser(id int, name string, borrowLimit int) (int, error)
	GetItem(itemID int) (*models.Item, error)
	ListItems() []*models.Item

	BorrowItem(userID, itemID int, durationText string) (*models.BorrowRecord, error)
	ReturnItem(userID, itemID int) (*models.Fine, error)
	SearchByType(typeName string) []ItemSummary
	ArchiveMagazine(itemID int) error

	ListUserBorrows(userID int) ([]*models.BorrowRecord, error)
	ListUserFines(userID int) ([]*models.Fine, error)
	UserFineTotal(userID int) (money.Money, error)

	ControlPlayback(itemID int, action PlaybackAction, position time.Duration) (models.PlaybackStatus, error)
}

// ─── Implementation ───────────────────────────────────────────────────────────

type lendingService struct {
	itemRepo   repositories.ItemRepository
	userRepo   repositories.UserRepository
	recordRepo repositories.BorrowRecordRepository
	fineRepo   repositories.FineRepository

	dailyRate    money.Money
	now          func() time.Time
	location     *time.Location
	enforceLimit bool
	defaultLimit int

	// userLocks serializes limit checks per user when enforceLimit is set.
	userLocks sync.Map
}

type Option func(*lendingService)

// WithClock replaces time.Now as the source of borrow and return timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *lendingService) { s.now = now }
}

// WithLocation sets the zone used to read dates in "YYYY-MM-DD to YYYY-MM-DD" ranges.
func WithLocation(loc *time.Location) Option {
	return func(s *lendingService) { s.location = loc }
}

// WithBorrowLimit turns enforcement of User.BorrowLimit on or off. It is off by default.
func WithBorrowLimit(enforce bool) Option {
	return func(s *lendingService) { s.enforceLimit = enforce }
}

// WithDefaultBorrowLimit sets the limit given to users added without one.
func WithDefaultBorrowLimit(limit int) Option {
	return func(s *lendingService) {
		if limit > 0 {
			s.defaultLimit = limit
		}
	}
}

// NewLendingService wires up all dependencies and returns a LendingService.
func NewLendingService(
	itemRepo repositories.ItemRepository,
	userRepo repositories.UserRepository,
	recordRepo repositories.BorrowRecordRepository,
	fineRepo repositories.FineRepository,
	dailyRate money.Money,
	opts ...Option,
) LendingService {
	s := &lendingService{
		itemRepo:   itemRepo,
		userRepo:   userRepo,
		recordRepo: recordRepo,
		fineRepo:   fineRepo,
		dailyRate:  dailyRate,
		now:        time.Now,
		location:   time.Local,

		defaultLimit: models.DefaultBorrowLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ─── Catalogue & Users ────────────────────────────────────────────────────────

// AddItem stores a new catalogue item under its caller-assigned id.
func (s *lendingService) AddItem(item *models.Item) (int, error) {
	if item == nil {
		return 0, liberr.InvalidInput("item is required")
	}
	if item.ID <= 0 {
		return 0, liberr.InvalidInput("item id must be positive")
	}
	if err := item.Validate(); err != nil {
		return 0, err
	}
	if item.Status == "" {
		item.Status = models.StatusAvailable
	}
	if !s.itemRepo.Insert(item) {
		return 0, liberr.InvalidInput("item id %d already exists", item.ID)
	}
	return item.ID, nil
}

// AddUser registers a user. A zero id picks the next free id and a zero limit
// falls back to the configured default limit.
func (s *lendingService) AddUser(id int, name string, borrowLimit int) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, liberr.InvalidInput("user name is required")
	}
	if id < 0 {
		return 0, liberr.InvalidInput("user id must not be negative")
	}
	if borrowLimit < 0 {
		return 0, liberr.InvalidInput("borrow limit must not be negative")
	}
	if borrowLimit == 0 {
		borrowLimit = s.defaultLimit
	}
	stored, ok := s.userRepo.Insert(&models.User{ID: id, Name: name, BorrowLimit: borrowLimit})
	if !ok {
		return 0, liberr.InvalidInput("user id %d already exists", stored)
	}
	return stored, nil
}

func (s *lendingService) GetItem(itemID int) (*models.Item, error) {
	item, ok := s.itemRepo.FindByID(itemID)
	if !ok {
		return nil, liberr.NotFound("item %d not found", itemID)
	}
	return item, nil
}

func (s *lendingService) ListItems() []*models.Item {
	return s.itemRepo.All()
}

// ─── Borrow ───────────────────────────────────────────────────────────────────

// BorrowItem lends an AVAILABLE item to a user for the period described by durationText.
//
// All validation happens before any state changes. The AVAILABLE→BORROWED
// transition is a compare-and-set, so of several concurrent borrowers of the same
// item exactly one succeeds and the rest get ItemNotAvailable.
func (s *lendingService) BorrowItem(userID, itemID int, durationText string) (*models.BorrowRecord, error) {
	// 1. Resolve user.
	user, ok := s.userRepo.FindByID(userID)
	if !ok {
		return nil, liberr.NotFound("user %d not found", userID)
	}

	// 2. Resolve item.
	item, ok := s.itemRepo.FindByID(itemID)
	if !ok {
		return nil, liberr.NotFound("item %d not found", itemID)
	}

	// 3. Fail fast when the item is not on the shelf.
	if item.Status != models.StatusAvailable {
		return nil, liberr.New(liberr.KindItemNotAvailable, "item %d is %s", itemID, item.Status)
	}

	// 4. Parse the borrow period.
	period, err := duration.ParseIn(durationText, s.location)
	if err != nil {
		return nil, err
	}

	// 5. The due date must lie in the future.
	now := s.now()
	due := period.DueAt(now)
	if !due.After(now) {
		return nil, liberr.InvalidInput("computed due date must be in the future")
	}

	if s.enforceLimit {
		unlock := s.lockUser(userID)
		defer unlock()
		if active := s.recordRepo.CountActiveByUserID(userID); active >= user.BorrowLimit {
			return nil, liberr.New(liberr.KindLimitExceeded,
				"user %d already has %d active borrows (limit %d)", userID, active, user.BorrowLimit)
		}
	}

	// 6. Claim the item, then record the loan.
	swapped, err := s.itemRepo.CompareAndSetStatus(itemID, models.StatusAvailable, models.StatusBorrowed)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, liberr.New(liberr.KindItemNotAvailable, "item %d is no longer available", itemID)
	}

	return s.recordRepo.Save(models.NewBorrowRecord(itemID, userID, now, due)), nil
}

// ─── Return ───────────────────────────────────────────────────────────────────

// ReturnItem closes the caller's active loan on an item. A late return creates a
// fine of dailyRate × overdue days, which is returned; an on-time return yields nil.
//
// The record is flipped to RETURNED with a compare-and-set before the fine is
// written, so two concurrent returns of the same loan charge at most once.
func (s *lendingService) ReturnItem(userID, itemID int) (*models.Fine, error) {
	if _, ok := s.userRepo.FindByID(userID); !ok {
		return nil, liberr.NotFound("user %d not found", userID)
	}
	if _, ok := s.itemRepo.FindByID(itemID); !ok {
		return nil, liberr.NotFound("item %d not found", itemID)
	}

	rec, ok := s.recordRepo.FindActiveByItemID(itemID)
	if !ok {
		return nil, liberr.New(liberr.KindReturnMismatch, "no active borrow record for item %d", itemID)
	}
	if rec.UserID != userID {
		return nil, liberr.New(liberr.KindReturnMismatch, "item %d is borrowed by another user", itemID)
	}

	now := s.now()
	overdueDays := rec.OverdueDays(now)

	if _, ok := s.recordRepo.MarkReturned(rec.ID, now); !ok {
		return nil, liberr.New(liberr.KindReturnMismatch, "no active borrow record for item %d", itemID)
	}

	var fine *models.Fine
	if overdueDays > 0 {
		fine = s.fineRepo.Add(itemID, userID, calculateFine(s.dailyRate, overdueDays),
			fmt.Sprintf("Overdue by %d days", overdueDays), now)
	}

	// An archived issue stays in MAINTENANCE.
	if _, err := s.itemRepo.Update(itemID, func(it *models.Item) error {
		if !it.IsArchived() {
			it.Status = models.StatusAvailable
		}
		return nil
	}); err != nil {
		return fine, err
	}
	return fine, nil
}

// ─── Queries ──────────────────────────────────────────────────────────────────

// SearchByType lists items of one variant ("Book", "Audiobook", "EMagazine").
// No match is an empty result, not an error.
func (s *lendingService) SearchByType(typeName string) []ItemSummary {
	items := s.itemRepo.FindByType(typeName)
	out := make([]ItemSummary, 0, len(items))
	for _, it := range items {
		out = append(out, ItemSummary{ID: it.ID, Title: it.Title, Type: it.Type, Status: it.Status})
	}
	return out
}

// ListUserBorrows returns all borrow records (active and past) for a user.
func (s *lendingService) ListUserBorrows(userID int) ([]*models.BorrowRecord, error) {
	if _, ok := s.userRepo.FindByID(userID); !ok {
		return nil, liberr.NotFound("user %d not found", userID)
	}
	return s.recordRepo.FindByUserID(userID), nil
}

// ListUserFines returns the fines charged to a user.
func (s *lendingService) ListUserFines(userID int) ([]*models.Fine, error) {
	if _, ok := s.userRepo.FindByID(userID); !ok {
		return nil, liberr.NotFound("user %d not found", userID)
	}
	return s.fineRepo.FindByUserID(userID), nil
}

func (s *lendingService) UserFineTotal(userID int) (money.Money, error) {
	fines, err := s.ListUserFines(userID)
	if err != nil {
		return money.Money{}, err
	}
	total := money.New(0)
	for _, f := range fines {
		total = total.Add(f.Amount)
	}
	return total, nil
}

// ─── Archive & Playback ───────────────────────────────────────────────────────

// ArchiveMagazine archives an EMagazine issue, moving it to MAINTENANCE for good.
func (s *lendingService) ArchiveMagazine(itemID int) error {
	_, err := s.itemRepo.Update(itemID, (*models.Item).Archive)
	return err
}

func (s *lendingService) ControlPlayback(itemID int, action PlaybackAction, position time.Duration) (models.PlaybackStatus, error) {
	item, err := s.GetItem(itemID)
	if err != nil {
		return models.PlaybackStatus{}, err
	}
	player, ok := item.Player()
	if !ok {
		return models.PlaybackStatus{}, liberr.InvalidInput("item %d is not playable", itemID)
	}

	switch action {
	case PlaybackPlay:
		return player.Play(), nil
	case PlaybackPause:
		return player.Pause(), nil
	case PlaybackStop:
		return player.Stop(), nil
	case PlaybackSeek:
		return player.Seek(position)
	case PlaybackQuery:
		return player.Status(), nil
	default:
		return models.PlaybackStatus{}, liberr.InvalidInput("unknown playback action %q", action)
	}
}

// ─── Internal Helpers ─────────────────────────────────────────────────────────

func (s *lendingService) lockUser(userID int) func() {
	v, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// calculateFine charges rate for every overdue day. Callers only pass days > 0.
func calculateFine(rate money.Money, overdueDays int) money.Money {
	return rate.Mul(int64(overdueDays))
}
