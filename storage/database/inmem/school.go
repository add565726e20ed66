package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
)

type schoolRepository struct {
	db *schoolTable
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db.school}
}

func (repo *schoolRepository) CreateAnnouncement(_ context.Context, a school.Announcement) (school.Announcement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	a.ID = uuid.New().String()
	a.CreatedAt = time.Now().UTC()
	repo.db.announcements[a.ID] = &a
	return a, nil
}

func (repo *schoolRepository) QueryAnnouncements(_ context.Context, ordering []core.DBOrdering) ([]school.Announcement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	anns := make([]school.Announcement, 0, len(repo.db.announcements))
	for _, a := range repo.db.announcements {
		anns = append(anns, *a)
	}
	sort.SliceStable(anns, func(i, j int) bool { return anns[i].CreatedAt.After(anns[j].CreatedAt) })
	return anns, nil
}

func (repo *schoolRepository) CreateEvent(_ context.Context, e school.Event) (school.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	e.ID = uuid.New().String()
	e.CreatedAt = time.Now().UTC()
	repo.db.events[e.ID] = &e
	return e, nil
}

func (repo *schoolRepository) QueryEvents(_ context.Context, ordering []core.DBOrdering) ([]school.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	events := make([]school.Event, 0, len(repo.db.events))
	for _, e := range repo.db.events {
		events = append(events, *e)
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })
	return events, nil
}

func (repo *schoolRepository) GetSettings(_ context.Context) (school.Settings, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if repo.db.settings == nil {
		return school.Settings{}, school.ErrSettingsNotFound
	}
	return *repo.db.settings, nil
}

func (repo *schoolRepository) SaveSettings(_ context.Context, s school.Settings) (school.Settings, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	s.UpdatedAt = time.Now().UTC()
	repo.db.settings = &s
	return s, nil
}
