package repositories

import (
	"time"

	"libranet/internal/liberr"
	"libranet/internal/models"
	"libranet/internal/money"
)

type ItemRepository interface {
	FindByID(id int) (*models.Item, bool)
	Save(item *models.Item)
	All() []*models.Item
	Remove(id int)
	FindByType(typeName string) []*models.Item

	// Insert stores item unless its id is already taken.
	Insert(item *models.Item) bool
	// CompareAndSetStatus sets the status to `to` only if it currently equals `from`.
	CompareAndSetStatus(id int, from, to models.AvailabilityStatus) (bool, error)
	// Update applies fn to a copy of the item under the store lock and keeps the
	// copy only if fn succeeds.
	Update(id int, fn func(item *models.Item) error) (*models.Item, error)
}

type UserRepository interface {
	FindByID(id int) (*models.User, bool)
	Save(user *models.User)
	All() []*models.User
	Remove(id int)

	// Insert stores user unless its id is taken. A zero id is replaced by the
	// next free id. Returns the stored id.
	Insert(user *models.User) (int, bool)
}

type BorrowRecordRepository interface {
	// Save upserts rec, assigning the next id when rec.ID is zero, and returns the stored copy.
	Save(rec *models.BorrowRecord) *models.BorrowRecord
	FindByID(id int) (*models.BorrowRecord, bool)
	All() []*models.BorrowRecord
	Remove(id int)
	FindActiveByItemID(itemID int) (*models.BorrowRecord, bool)
	FindByUserID(userID int) []*models.BorrowRecord
	CountActiveByUserID(userID int) int
	// MarkReturned flips an ACTIVE record to RETURNED. It reports false if the
	// record is missing or no longer ACTIVE.
	MarkReturned(id int, at time.Time) (*models.BorrowRecord, bool)
}

type FineRepository interface {
	Add(itemID, userID int, amount money.Money, reason string, at time.Time) *models.Fine
	FindByID(id int) (*models.Fine, bool)
	FindByUserID(userID int) []*models.Fine
	All() []*models.Fine
}

// concrete implementations

type itemRepository struct {
	*Store[*models.Item]
}

func NewItemRepository() ItemRepository {
	return &itemRepository{Store: NewStore((*models.Item).Clone)}
}

func (r *itemRepository) Save(item *models.Item) {
	r.Store.Save(item.ID, item)
}

func (r *itemRepository) FindByType(typeName string) []*models.Item {
	return r.filter(func(it *models.Item) bool { return it.TypeName() == typeName })
}

func (r *itemRepository) Insert(item *models.Item) bool {
	inserted := false
	r.locked(func(items map[int]*models.Item) {
		if _, exists := items[item.ID]; exists {
			return
		}
		items[item.ID] = item.Clone()
		inserted = true
	})
	return inserted
}

func (r *itemRepository) CompareAndSetStatus(id int, from, to models.AvailabilityStatus) (bool, error) {
	var (
		swapped bool
		err     error
	)
	r.locked(func(items map[int]*models.Item) {
		it, ok := items[id]
		if !ok {
			err = liberr.NotFound("item %d not found", id)
			return
		}
		if it.Status != from {
			return
		}
		it.Status = to
		swapped = true
	})
	return swapped, err
}

func (r *itemRepository) Update(id int, fn func(item *models.Item) error) (*models.Item, error) {
	var (
		updated *models.Item
		err     error
	)
	r.locked(func(items map[int]*models.Item) {
		it, ok := items[id]
		if !ok {
			err = liberr.NotFound("item %d not found", id)
			return
		}
		c := it.Clone()
		if err = fn(c); err != nil {
			return
		}
		items[id] = c
		updated = c.Clone()
	})
	return updated, err
}

type userRepository struct {
	*Store[*models.User]
}

func NewUserRepository() UserRepository {
	return &userRepository{Store: NewStore(func(u *models.User) *models.User {
		c := *u
		return &c
	})}
}

func (r *userRepository) Save(user *models.User) {
	r.Store.Save(user.ID, user)
}

func (r *userRepository) Insert(user *models.User) (int, bool) {
	var (
		id       int
		inserted bool
	)
	r.locked(func(users map[int]*models.User) {
		c := *user
		if c.ID == 0 {
			for existing := range users {
				if existing > c.ID {
					c.ID = existing
				}
			}
			c.ID++
		}
		id = c.ID
		if _, exists := users[c.ID]; exists {
			return
		}
		users[c.ID] = &c
		inserted = true
	})
	return id, inserted
}

type borrowRecordRepository struct {
	*Store[*models.BorrowRecord]
	nextID int
}

func NewBorrowRecordRepository() BorrowRecordRepository {
	return &borrowRecordRepository{
		Store:  NewStore((*models.BorrowRecord).Clone),
		nextID: 1,
	}
}

func (r *borrowRecordRepository) Save(rec *models.BorrowRecord) *models.BorrowRecord {
	var saved *models.BorrowRecord
	r.locked(func(records map[int]*models.BorrowRecord) {
		c := rec.Clone()
		if c.ID == 0 {
			c.ID = r.nextID
			r.nextID++
		} else if c.ID >= r.nextID {
			r.nextID = c.ID + 1
		}
		records[c.ID] = c
		saved = c.Clone()
	})
	return saved
}

func (r *borrowRecordRepository) FindActiveByItemID(itemID int) (*models.BorrowRecord, bool) {
	active := r.filter(func(rec *models.BorrowRecord) bool {
		return rec.ItemID == itemID && rec.Status == models.BorrowStatusActive
	})
	if len(active) == 0 {
		return nil, false
	}
	return active[0], true
}

func (r *borrowRecordRepository) FindByUserID(userID int) []*models.BorrowRecord {
	return r.filter(func(rec *models.BorrowRecord) bool { return rec.UserID == userID })
}

func (r *borrowRecordRepository) CountActiveByUserID(userID int) int {
	n := 0
	r.locked(func(records map[int]*models.BorrowRecord) {
		for _, rec := range records {
			if rec.UserID == userID && rec.Status == models.BorrowStatusActive {
				n++
			}
		}
	})
	return n
}

func (r *borrowRecordRepository) MarkReturned(id int, at time.Time) (*models.BorrowRecord, bool) {
	var returned *models.BorrowRecord
	r.locked(func(records map[int]*models.BorrowRecord) {
		rec, ok := records[id]
		if !ok || rec.Status != models.BorrowStatusActive {
			return
		}
		rec.Status = models.BorrowStatusReturned
		rec.ReturnedAt = &at
		returned = rec.Clone()
	})
	return returned, returned != nil
}

type fineRepository struct {
	*Store[*models.Fine]
	nextID int
}

func NewFineRepository() FineRepository {
	return &fineRepository{
		Store: NewStore(func(f *models.Fine) *models.Fine {
			c := *f
			return &c
		}),
		nextID: 1,
	}
}

func (r *fineRepository) Add(itemID, userID int, amount money.Money, reason string, at time.Time) *models.Fine {
	var fine *models.Fine
	r.locked(func(fines map[int]*models.Fine) {
		fine = &models.Fine{
			ID:        r.nextID,
			ItemID:    itemID,
			UserID:    userID,
			Amount:    amount,
			Reason:    reason,
			AppliedAt: at,
		}
		r.nextID++
		c := *fine
		fines[fine.ID] = &c
	})
	return fine
}

func (r *fineRepository) FindByUserID(userID int) []*models.Fine {
	return r.filter(func(f *models.Fine) bool { return f.UserID == userID })
}
