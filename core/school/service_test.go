package school_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
	inmemdb "github.com/trezcool/shule/storage/database/inmem"
)

var (
	principal = user.Actor{ID: uuid.New().String(), Role: user.RolePrincipal}
	teacher   = user.Actor{ID: uuid.New().String(), Role: user.RoleTeacher}
	staff     = user.Actor{ID: uuid.New().String(), Role: user.RoleStaff}
	student   = user.Actor{ID: uuid.New().String(), Role: user.RoleStudent}
)

func setup(t *testing.T) school.Service {
	t.Helper()
	core.Conf = &core.Config{TestMode: true}
	return school.NewService(inmemdb.NewSchoolRepository(inmemdb.Open()))
}

func Test_service_Announce(t *testing.T) {
	ctx := context.Background()

	t.Run("staff roles can post", func(t *testing.T) {
		svc := setup(t)

		for _, actor := range []user.Actor{principal, teacher, staff} {
			ann, err := svc.Announce(ctx, actor, school.NewAnnouncement{
				Title:   "Exam week",
				Content: "Finals start Monday.",
			})
			if err != nil {
				t.Fatalf("Announce(%q) failed: %v", actor.Role, err)
			}
			if ann.CreatedBy != actor.ID {
				t.Errorf("created_by = %s, want %s", ann.CreatedBy, actor.ID)
			}
		}
	})

	t.Run("students cannot post", func(t *testing.T) {
		svc := setup(t)

		na := school.NewAnnouncement{Title: "Party", Content: "My place."}
		if _, err := svc.Announce(ctx, student, na); err != core.ErrPermissionDenied {
			t.Errorf("Announce() error = %v, want ErrPermissionDenied", err)
		}
	})

	t.Run("title and content are required", func(t *testing.T) {
		svc := setup(t)

		if _, err := svc.Announce(ctx, principal, school.NewAnnouncement{Title: "No body"}); err == nil {
			t.Error("Announce() expected a validation error")
		}
		if _, err := svc.Announce(ctx, principal, school.NewAnnouncement{Content: "No title"}); err == nil {
			t.Error("Announce() expected a validation error")
		}
	})

	t.Run("announcements are listed newest first", func(t *testing.T) {
		svc := setup(t)

		for _, title := range []string{"first", "second"} {
			if _, err := svc.Announce(ctx, staff, school.NewAnnouncement{Title: title, Content: "x"}); err != nil {
				t.Fatalf("Announce() failed: %v", err)
			}
		}
		anns, err := svc.QueryAnnouncements(ctx)
		if err != nil {
			t.Fatalf("QueryAnnouncements() failed: %v", err)
		}
		if len(anns) != 2 {
			t.Fatalf("announcements = %d, want 2", len(anns))
		}
	})
}

func Test_service_CreateEvent(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	date := time.Now().AddDate(0, 0, 7).UTC()
	evt, err := svc.CreateEvent(ctx, teacher, school.NewEvent{
		Title:    "Science fair",
		Date:     date,
		Location: "Main hall",
	})
	if err != nil {
		t.Fatalf("CreateEvent() failed: %v", err)
	}
	if evt.ID == "" {
		t.Error("event ID not set")
	}

	if _, err = svc.CreateEvent(ctx, student, school.NewEvent{Title: "Party", Date: date}); err != core.ErrPermissionDenied {
		t.Errorf("CreateEvent() error = %v, want ErrPermissionDenied", err)
	}
	if _, err = svc.CreateEvent(ctx, teacher, school.NewEvent{Title: "No date"}); err == nil {
		t.Error("CreateEvent() expected a validation error")
	}

	events, err := svc.QueryEvents(ctx)
	if err != nil {
		t.Fatalf("QueryEvents() failed: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("events = %d, want 1", len(events))
	}
}

func Test_service_Settings(t *testing.T) {
	ctx := context.Background()

	t.Run("settings start unset", func(t *testing.T) {
		svc := setup(t)
		if _, err := svc.Settings(ctx); err != school.ErrSettingsNotFound {
			t.Errorf("Settings() error = %v, want ErrSettingsNotFound", err)
		}
	})

	t.Run("principal updates the school profile", func(t *testing.T) {
		svc := setup(t)

		saved, err := svc.UpdateSettings(ctx, principal, school.UpdateSettings{
			Name:  "Shule Academy",
			Email: "info@shule.cd",
			Phone: "+243811234567",
		})
		if err != nil {
			t.Fatalf("UpdateSettings() failed: %v", err)
		}
		if saved.Name != "Shule Academy" {
			t.Errorf("name = %s, want Shule Academy", saved.Name)
		}

		got, err := svc.Settings(ctx)
		if err != nil {
			t.Fatalf("Settings() failed: %v", err)
		}
		if got.Name != saved.Name {
			t.Errorf("round trip name = %s, want %s", got.Name, saved.Name)
		}
	})

	t.Run("principal only", func(t *testing.T) {
		svc := setup(t)

		us := school.UpdateSettings{Name: "Shule Academy"}
		for _, actor := range []user.Actor{teacher, staff, student} {
			if _, err := svc.UpdateSettings(ctx, actor, us); err != core.ErrPermissionDenied {
				t.Errorf("UpdateSettings(%q) error = %v, want ErrPermissionDenied", actor.Role, err)
			}
		}
	})

	t.Run("invalid settings", func(t *testing.T) {
		svc := setup(t)

		if _, err := svc.UpdateSettings(ctx, principal, school.UpdateSettings{}); err == nil {
			t.Error("UpdateSettings() expected a validation error (missing name)")
		}
		if _, err := svc.UpdateSettings(ctx, principal, school.UpdateSettings{Name: "S", Email: "lol"}); err == nil {
			t.Error("UpdateSettings() expected a validation error (bad email)")
		}
	})
}
