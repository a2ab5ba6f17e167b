package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"confrarias/internal/model"
	"confrarias/internal/pkg"
	"confrarias/internal/repository/mysql"

	"go.uber.org/zap"
)

type EventInput struct {
	ConfrariaID string    `json:"confrariaId"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
}

type EventUpdate struct {
	Title       *string    `json:"title"`
	Date        *time.Time `json:"date"`
	Location    *string    `json:"location"`
	Description *string    `json:"description"`
	ImageURL    *string    `json:"imageUrl"`
}

type EventService struct {
	repo  *mysql.EventRepository
	users *mysql.UserRepository
	log   *zap.Logger
}

func NewEventService(repo *mysql.EventRepository, users *mysql.UserRepository, log *zap.Logger) *EventService {
	return &EventService{repo: repo, users: users, log: log}
}

// Create defaults the owning confraria to the caller.
func (s *EventService) Create(ctx context.Context, caller Caller, in EventInput) (*model.Event, error) {
	if in.ConfrariaID == "" {
		in.ConfrariaID = caller.ID
	}
	if err := Authorize(caller, ActionManageEvent, in.ConfrariaID).Err(); err != nil {
		return nil, err
	}
	if err := ensureConfraria(ctx, s.users, s.log, in.ConfrariaID); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Location = strings.TrimSpace(in.Location)
	switch {
	case in.Title == "":
		return nil, invalid("O título é obrigatório.")
	case utf8.RuneCountInString(in.Title) > 200:
		return nil, invalid("O título é demasiado longo.")
	case in.Location == "":
		return nil, invalid("O local é obrigatório.")
	case in.Date.IsZero():
		return nil, invalid("A data é obrigatória.")
	}

	e := &model.Event{
		ID:          pkg.NewID(),
		ConfrariaID: in.ConfrariaID,
		Title:       in.Title,
		Date:        in.Date,
		Location:    in.Location,
		Description: strings.TrimSpace(in.Description),
		ImageURL:    strings.TrimSpace(in.ImageURL),
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, storeErr(s.log, "event.create", err, "")
	}
	return e, nil
}

func (s *EventService) Update(ctx context.Context, caller Caller, id string, upd EventUpdate) (*model.Event, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(s.log, "event.get", err, "Evento não encontrado.")
	}
	if err = Authorize(caller, ActionManageEvent, e.ConfrariaID).Err(); err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if upd.Title != nil {
		t := strings.TrimSpace(*upd.Title)
		if t == "" || utf8.RuneCountInString(t) > 200 {
			return nil, invalid("Título inválido.")
		}
		fields["title"], e.Title = t, t
	}
	if upd.Date != nil {
		if upd.Date.IsZero() {
			return nil, invalid("A data é obrigatória.")
		}
		fields["date"], e.Date = *upd.Date, *upd.Date
	}
	if upd.Location != nil {
		l := strings.TrimSpace(*upd.Location)
		if l == "" {
			return nil, invalid("O local é obrigatório.")
		}
		fields["location"], e.Location = l, l
	}
	if upd.Description != nil {
		d := strings.TrimSpace(*upd.Description)
		fields["description"], e.Description = d, d
	}
	if upd.ImageURL != nil {
		u := strings.TrimSpace(*upd.ImageURL)
		fields["image_url"], e.ImageURL = u, u
	}
	if len(fields) == 0 {
		return e, nil
	}
	if err = s.repo.Update(ctx, id, fields); err != nil {
		return nil, storeErr(s.log, "event.update", err, "Evento não encontrado.")
	}
	return e, nil
}

func (s *EventService) Delete(ctx context.Context, caller Caller, id string) error {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return storeErr(s.log, "event.get", err, "Evento não encontrado.")
	}
	if err = Authorize(caller, ActionManageEvent, e.ConfrariaID).Err(); err != nil {
		return err
	}
	if err = s.repo.Delete(ctx, id); err != nil {
		return storeErr(s.log, "event.delete", err, "")
	}
	return nil
}

// ListByConfraria lists a confraria's events by date; upcomingOnly drops past ones.
func (s *EventService) ListByConfraria(ctx context.Context, confrariaID string, upcomingOnly bool, limit int) ([]model.Event, error) {
	var from time.Time
	if upcomingOnly {
		from = time.Now()
	}
	list, err := s.repo.ListByConfraria(ctx, confrariaID, from, clampLimit(limit, 50, 200))
	if err != nil {
		return nil, storeErr(s.log, "event.list", err, "")
	}
	return list, nil
}

// Upcoming is the site-wide agenda.
func (s *EventService) Upcoming(ctx context.Context, limit int) ([]model.Event, error) {
	list, err := s.repo.ListUpcoming(ctx, time.Now(), clampLimit(limit, 20, 100))
	if err != nil {
		return nil, storeErr(s.log, "event.upcoming", err, "")
	}
	return list, nil
}

// ensureConfraria checks that id names an existing confraria account.
func ensureConfraria(ctx context.Context, users *mysql.UserRepository, log *zap.Logger, id string) error {
	u, err := users.FindCaller(ctx, id)
	if errors.Is(err, mysql.ErrNotFound) || (err == nil && u.Role != model.RoleConfraria) {
		return notFound("Confraria não encontrada.")
	}
	if err != nil {
		return storeErr(log, "user.find_confraria", err, "")
	}
	return nil
}
