package school

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

var ErrSettingsNotFound = errors.New("school settings not initialized")

type (
	Repository interface {
		CreateAnnouncement(ctx context.Context, a Announcement) (Announcement, error)
		QueryAnnouncements(ctx context.Context, ordering []core.DBOrdering) ([]Announcement, error)
		CreateEvent(ctx context.Context, e Event) (Event, error)
		QueryEvents(ctx context.Context, ordering []core.DBOrdering) ([]Event, error)
		GetSettings(ctx context.Context) (Settings, error)
		SaveSettings(ctx context.Context, s Settings) (Settings, error)
	}

	Service interface {
		Announce(ctx context.Context, actor user.Actor, na NewAnnouncement) (Announcement, error)
		QueryAnnouncements(ctx context.Context) ([]Announcement, error)
		CreateEvent(ctx context.Context, actor user.Actor, ne NewEvent) (Event, error)
		QueryEvents(ctx context.Context) ([]Event, error)
		Settings(ctx context.Context) (Settings, error)
		UpdateSettings(ctx context.Context, actor user.Actor, us UpdateSettings) (Settings, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Announce posts a school-wide announcement. Students cannot post.
func (svc *service) Announce(ctx context.Context, actor user.Actor, na NewAnnouncement) (Announcement, error) {
	if !canPost(actor) {
		return Announcement{}, core.ErrPermissionDenied
	}
	if err := na.Validate(); err != nil {
		return Announcement{}, err
	}
	return svc.repo.CreateAnnouncement(ctx, Announcement{
		Title:     na.Title,
		Content:   na.Content,
		CreatedBy: actor.ID,
	})
}

func (svc *service) QueryAnnouncements(ctx context.Context) ([]Announcement, error) {
	ordering := []core.DBOrdering{{Field: "created_at", Ascending: false}}
	return svc.repo.QueryAnnouncements(ctx, ordering)
}

func (svc *service) CreateEvent(ctx context.Context, actor user.Actor, ne NewEvent) (Event, error) {
	if !canPost(actor) {
		return Event{}, core.ErrPermissionDenied
	}
	if err := ne.Validate(); err != nil {
		return Event{}, err
	}
	return svc.repo.CreateEvent(ctx, Event{
		Title:       ne.Title,
		Description: ne.Description,
		Date:        ne.Date,
		Location:    ne.Location,
		CreatedBy:   actor.ID,
	})
}

func (svc *service) QueryEvents(ctx context.Context) ([]Event, error) {
	// upcoming first
	ordering := []core.DBOrdering{{Field: "date", Ascending: true}}
	return svc.repo.QueryEvents(ctx, ordering)
}

func (svc *service) Settings(ctx context.Context) (Settings, error) {
	return svc.repo.GetSettings(ctx)
}

func (svc *service) UpdateSettings(ctx context.Context, actor user.Actor, us UpdateSettings) (Settings, error) {
	if !actor.Role.IsPrincipal() {
		return Settings{}, core.ErrPermissionDenied
	}
	if err := us.Validate(); err != nil {
		return Settings{}, err
	}
	return svc.repo.SaveSettings(ctx, Settings{
		Name:    us.Name,
		Address: us.Address,
		Phone:   us.Phone,
		Email:   us.Email,
	})
}

func canPost(actor user.Actor) bool {
	return actor.Role.IsTeacher() || actor.Role.IsStaff() || actor.Role.IsPrincipal()
}
