package models

import (
	"encoding/json"
	"time"

	"libranet/internal/liberr"
)

// ItemType tags the variant carried by an Item.
type ItemType string

const (
	ItemTypeBook      ItemType = "Book"
	ItemTypeAudiobook ItemType = "Audiobook"
	ItemTypeEMagazine ItemType = "EMagazine"
)

// ItemTypes lists every variant in display order.
var ItemTypes = []ItemType{ItemTypeBook, ItemTypeAudiobook, ItemTypeEMagazine}

// Item is one lendable unit. Exactly one of Book, Audiobook or Magazine is set,
// matching Type.
type Item struct {
	ID       int                `json:"id"`
	Type     ItemType           `json:"type"`
	Title    string             `json:"title"`
	Authors  []string           `json:"authors"`
	Status   AvailabilityStatus `json:"status"`
	Metadata map[string]string  `json:"metadata,omitempty"`

	Book      *BookDetails      `json:"book,omitempty"`
	Audiobook *AudiobookDetails `json:"audiobook,omitempty"`
	Magazine  *MagazineDetails  `json:"magazine,omitempty"`
}

type BookDetails struct {
	PageCount int `json:"page_count"`
}

type AudiobookDetails struct {
	PlaybackDuration time.Duration
	Narrator         string

	// player is the playback session; clones of the item share it.
	player *Player
}

func (a *AudiobookDetails) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		PlaybackDuration string `json:"playback_duration"`
		Narrator         string `json:"narrator,omitempty"`
	}{a.PlaybackDuration.String(), a.Narrator})
}

type MagazineDetails struct {
	IssueNumber int       `json:"issue_number"`
	IssueDate   time.Time `json:"issue_date"`
	Archived    bool      `json:"archived"`
}

func newItem(id int, itemType ItemType, title string, authors []string) *Item {
	return &Item{
		ID:       id,
		Type:     itemType,
		Title:    title,
		Authors:  append([]string(nil), authors...),
		Status:   StatusAvailable,
		Metadata: map[string]string{},
	}
}

// NewBook builds an AVAILABLE book. pageCount must be positive.
func NewBook(id int, title string, authors []string, pageCount int) (*Item, error) {
	item := newItem(id, ItemTypeBook, title, authors)
	item.Book = &BookDetails{PageCount: pageCount}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// NewAudiobook builds an AVAILABLE audiobook with its own player. playback must be positive.
func NewAudiobook(id int, title string, authors []string, playback time.Duration, narrator string) (*Item, error) {
	item := newItem(id, ItemTypeAudiobook, title, authors)
	item.Audiobook = &AudiobookDetails{PlaybackDuration: playback, Narrator: narrator}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	item.Audiobook.player = NewPlayer(playback)
	return item, nil
}

// NewEMagazine builds an AVAILABLE, unarchived magazine issue. issueNumber must be positive.
func NewEMagazine(id int, title string, authors []string, issueNumber int, issueDate time.Time) (*Item, error) {
	item := newItem(id, ItemTypeEMagazine, title, authors)
	item.Magazine = &MagazineDetails{IssueNumber: issueNumber, IssueDate: issueDate}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// Validate checks the variant tag against its payload and the variant's own field rules.
func (i *Item) Validate() error {
	switch i.Type {
	case ItemTypeBook:
		if i.Book == nil {
			return liberr.InvalidInput("book details missing")
		}
		if i.Book.PageCount <= 0 {
			return liberr.InvalidInput("Book pageCount must be > 0")
		}
	case ItemTypeAudiobook:
		if i.Audiobook == nil {
			return liberr.InvalidInput("audiobook details missing")
		}
		if i.Audiobook.PlaybackDuration <= 0 {
			return liberr.InvalidInput("Audiobook duration must be positive")
		}
	case ItemTypeEMagazine:
		if i.Magazine == nil {
			return liberr.InvalidInput("magazine details missing")
		}
		if i.Magazine.IssueNumber <= 0 {
			return liberr.InvalidInput("Issue number must be > 0")
		}
	default:
		return liberr.InvalidInput("unknown item type %q", i.Type)
	}
	return nil
}

func (i *Item) TypeName() string { return string(i.Type) }

// Player returns the playback controls. Only audiobooks are playable.
func (i *Item) Player() (*Player, bool) {
	if i.Type != ItemTypeAudiobook || i.Audiobook == nil || i.Audiobook.player == nil {
		return nil, false
	}
	return i.Audiobook.player, true
}

// Archive marks a magazine issue archived and moves it to MAINTENANCE. There is no way back.
func (i *Item) Archive() error {
	if i.Type != ItemTypeEMagazine || i.Magazine == nil {
		return liberr.New(liberr.KindNotAMagazine, "item %d is not an EMagazine", i.ID)
	}
	if i.Magazine.Archived {
		return liberr.New(liberr.KindAlreadyArchived, "issue %d already archived", i.ID)
	}
	i.Magazine.Archived = true
	i.Status = StatusMaintenance
	return nil
}

// IsArchived reports whether the item is an archived magazine issue.
func (i *Item) IsArchived() bool {
	return i.Magazine != nil && i.Magazine.Archived
}

// Clone deep-copies the item. The audiobook player is shared.
func (i *Item) Clone() *Item {
	c := *i
	c.Authors = append([]string(nil), i.Authors...)
	if i.Metadata != nil {
		c.Metadata = make(map[string]string, len(i.Metadata))
		for k, v := range i.Metadata {
			c.Metadata[k] = v
		}
	}
	if i.Book != nil {
		b := *i.Book
		c.Book = &b
	}
	if i.Audiobook != nil {
		a := *i.Audiobook
		c.Audiobook = &a
	}
	if i.Magazine != nil {
		m := *i.Magazine
		c.Magazine = &m
	}
	return &c
}
