package entity

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

const DefaultTimer = "09:00"

// GuestOwner is the owner key of the shared, unauthenticated watchlist.
const GuestOwner = ""

type UserProfile struct {
	Watchlist []Stock `json:"watchlist"`
}

// AppState is the whole persisted snapshot.
type AppState struct {
	Watchlist []Stock                `json:"watchlist"`
	Users     map[string]UserProfile `json:"users"`
	Timer     string                 `json:"timer"`
	Reports   []AnalysisReport       `json:"reports"`
}

// NewAppState returns an empty state with defaults applied.
func NewAppState() *AppState {
	return &AppState{
		Watchlist: []Stock{},
		Users:     map[string]UserProfile{},
		Timer:     DefaultTimer,
		Reports:   []AnalysisReport{},
	}
}

// Normalize fills in defaults after decoding an older or partial snapshot.
func (s *AppState) Normalize() {
	if s.Watchlist == nil {
		s.Watchlist = []Stock{}
	}
	if s.Users == nil {
		s.Users = map[string]UserProfile{}
	}
	if s.Timer == "" {
		s.Timer = DefaultTimer
	}
	if s.Reports == nil {
		s.Reports = []AnalysisReport{}
	}
}

// WatchlistOf returns the watchlist of owner; GuestOwner maps to the shared list.
func (s *AppState) WatchlistOf(owner string) []Stock {
	if owner == GuestOwner {
		return s.Watchlist
	}
	return s.Users[owner].Watchlist
}

// SetWatchlist replaces the watchlist of owner, creating the profile on first use.
func (s *AppState) SetWatchlist(owner string, list []Stock) {
	if owner == GuestOwner {
		s.Watchlist = list
		return
	}
	if s.Users == nil {
		s.Users = map[string]UserProfile{}
	}
	profile := s.Users[owner]
	profile.Watchlist = list
	s.Users[owner] = profile
}

// Owners lists GuestOwner followed by every user key.
func (s *AppState) Owners() []string {
	owners := make([]string, 0, len(s.Users)+1)
	owners = append(owners, GuestOwner)
	for owner := range s.Users {
		owners = append(owners, owner)
	}
	return owners
}

// Clone returns a deep copy suitable for handing out of a lock.
func (s *AppState) Clone() *AppState {
	out := &AppState{
		Watchlist: append([]Stock(nil), s.Watchlist...),
		Users:     make(map[string]UserProfile, len(s.Users)),
		Timer:     s.Timer,
		Reports:   make([]AnalysisReport, len(s.Reports)),
	}
	for k, v := range s.Users {
		out.Users[k] = UserProfile{Watchlist: append([]Stock(nil), v.Watchlist...)}
	}
	for i, r := range s.Reports {
		r.NewsItems = append([]NewsItem(nil), r.NewsItems...)
		out.Reports[i] = r
	}
	out.Normalize()
	return out
}

// AppStateRecord is the single persisted row holding the encoded snapshot.
type AppStateRecord struct {
	ID        int            `gorm:"primaryKey"`
	Data      datatypes.JSON `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (AppStateRecord) TableName() string {
	return "app_state"
}

// AppStateRecordID is the fixed primary key of the snapshot row.
const AppStateRecordID = 1

func normalizeUpper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
