package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"confrarias/internal/model"
	"confrarias/internal/pkg"
	"confrarias/internal/repository/mysql"

	"go.uber.org/zap"
)

const maxDiscoveryImages = 10

type DiscoveryInput struct {
	Title       string
	Description string
	Category    string
	Images      []ImageRef
}

type ImageRef struct {
	URL  string `json:"url"`
	Hint string `json:"hint"`
}

type DiscoveryPage struct {
	Items      []model.Discovery `json:"items"`
	SealedByMe map[string]bool   `json:"sealedByMe"`
	NextCursor string            `json:"nextCursor,omitempty"`
}

type DiscoveryService struct {
	repo *mysql.DiscoveryRepository
	log  *zap.Logger
}

func NewDiscoveryService(repo *mysql.DiscoveryRepository, log *zap.Logger) *DiscoveryService {
	return &DiscoveryService{repo: repo, log: log}
}

// Submit stores a new discovery awaiting moderation.
func (s *DiscoveryService) Submit(ctx context.Context, caller Caller, in DiscoveryInput) (*model.Discovery, error) {
	if err := Authorize(caller, ActionSubmitDiscovery, "").Err(); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)
	switch {
	case in.Title == "":
		return nil, invalid("O título é obrigatório.")
	case utf8.RuneCountInString(in.Title) > 200:
		return nil, invalid("O título é demasiado longo.")
	case in.Category == "":
		return nil, invalid("A categoria é obrigatória.")
	case utf8.RuneCountInString(in.Category) > 64:
		return nil, invalid("A categoria é demasiado longa.")
	case len(in.Images) > maxDiscoveryImages:
		return nil, invalid("Demasiadas imagens.")
	}

	d := &model.Discovery{
		ID:          pkg.NewID(),
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		AuthorID:    caller.ID,
		Status:      model.StatusPendente,
		Selos:       0,
		SealGivers:  []string{},
	}
	for _, img := range in.Images {
		if strings.TrimSpace(img.URL) == "" {
			return nil, invalid("Imagem sem endereço.")
		}
		d.Images = append(d.Images, model.DiscoveryImage{URL: img.URL, Hint: img.Hint})
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, storeErr(s.log, "discovery.create", err, "")
	}
	if d.Images == nil {
		d.Images = []model.DiscoveryImage{}
	}
	return d, nil
}

// Get hides discoveries that are not approved from everyone but their author
// and admins.
func (s *DiscoveryService) Get(ctx context.Context, caller Caller, id string) (*model.Discovery, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(s.log, "discovery.get", err, "Descoberta não encontrada.")
	}
	if d.Status != model.StatusAprovado && !caller.IsAdmin() && caller.ID != d.AuthorID {
		return nil, notFound("Descoberta não encontrada.")
	}
	return d, nil
}

// List pages discoveries newest first. Only admins may ask for a status other
// than Aprovado; admins passing an empty status get every discovery.
func (s *DiscoveryService) List(ctx context.Context, caller Caller, status model.ModerationStatus, cursor string, limit int) (*DiscoveryPage, error) {
	if status != "" && !status.Valid() {
		return nil, invalid("Estado inválido.")
	}
	if status != model.StatusAprovado {
		if err := Authorize(caller, ActionModerate, "").Err(); err != nil {
			return nil, err
		}
	}
	lastAt, lastID, err := decodeCursor(cursor)
	if err != nil {
		return nil, err
	}
	limit = clampLimit(limit, 20, 50)

	list, err := s.repo.ListByStatus(ctx, status, mysql.DiscoveryCursor{LastID: lastID, LastCreatedAt: lastAt}, limit)
	if err != nil {
		return nil, storeErr(s.log, "discovery.list", err, "")
	}
	ids := make([]string, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}
	sealed, err := s.repo.SealedBy(ctx, caller.ID, ids)
	if err != nil {
		return nil, storeErr(s.log, "discovery.sealed_by", err, "")
	}

	page := &DiscoveryPage{Items: list, SealedByMe: sealed}
	if page.Items == nil {
		page.Items = []model.Discovery{}
	}
	if len(list) == limit {
		last := list[len(list)-1]
		page.NextCursor = encodeCursor(last.CreatedAt, last.ID)
	}
	return page, nil
}
