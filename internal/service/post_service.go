package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"confrarias/internal/ai"
	"confrarias/internal/model"
	"confrarias/internal/pkg"
	"confrarias/internal/repository/mysql"

	"go.uber.org/zap"
)

type PostInput struct {
	ConfrariaID string   `json:"confrariaId"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	ImageURL    string   `json:"imageUrl"`
	Tags        []string `json:"tags"`
}

type PostUpdate struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	ImageURL *string   `json:"imageUrl"`
	Tags     *[]string `json:"tags"`
}

type PostPage struct {
	Items      []model.Post `json:"items"`
	NextCursor string       `json:"nextCursor,omitempty"`
}

type PostService struct {
	repo  *mysql.PostRepository
	users *mysql.UserRepository
	log   *zap.Logger
}

func NewPostService(repo *mysql.PostRepository, users *mysql.UserRepository, log *zap.Logger) *PostService {
	return &PostService{repo: repo, users: users, log: log}
}

// CreatePost publishes on a confraria page. Only that confraria or an admin
// may post there; the confraria defaults to the caller.
func (s *PostService) CreatePost(ctx context.Context, caller Caller, in PostInput) (*model.Post, error) {
	if in.ConfrariaID == "" {
		in.ConfrariaID = caller.ID
	}
	if err := Authorize(caller, ActionManagePost, in.ConfrariaID).Err(); err != nil {
		return nil, err
	}
	if err := ensureConfraria(ctx, s.users, s.log, in.ConfrariaID); err != nil {
		return nil, err
	}
	title, err := postTitle(in.Title)
	if err != nil {
		return nil, err
	}
	post := &model.Post{
		ID:          pkg.NewID(),
		ConfrariaID: in.ConfrariaID,
		AuthorID:    caller.ID,
		Title:       title,
		Content:     strings.TrimSpace(in.Content),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Tags:        joinTags(in.Tags),
	}
	if err = s.repo.Create(ctx, post); err != nil {
		return nil, storeErr(s.log, "post.create", err, "")
	}
	return post, nil
}

func (s *PostService) UpdatePost(ctx context.Context, caller Caller, id string, upd PostUpdate) (*model.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(s.log, "post.get", err, "Publicação não encontrada.")
	}
	if err = Authorize(caller, ActionManagePost, post.ConfrariaID).Err(); err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if upd.Title != nil {
		t, err := postTitle(*upd.Title)
		if err != nil {
			return nil, err
		}
		fields["title"], post.Title = t, t
	}
	if upd.Content != nil {
		c := strings.TrimSpace(*upd.Content)
		fields["content"], post.Content = c, c
	}
	if upd.ImageURL != nil {
		u := strings.TrimSpace(*upd.ImageURL)
		fields["image_url"], post.ImageURL = u, u
	}
	if upd.Tags != nil {
		t := joinTags(*upd.Tags)
		fields["tags"], post.Tags = t, t
	}
	if len(fields) == 0 {
		return post, nil
	}
	if err = s.repo.Update(ctx, id, fields); err != nil {
		return nil, storeErr(s.log, "post.update", err, "Publicação não encontrada.")
	}
	return post, nil
}

// DeletePost is allowed to the owning confraria and admins.
func (s *PostService) DeletePost(ctx context.Context, caller Caller, id string) error {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return storeErr(s.log, "post.get", err, "Publicação não encontrada.")
	}
	if err = Authorize(caller, ActionManagePost, post.ConfrariaID).Err(); err != nil {
		return err
	}
	if err = s.repo.Delete(ctx, id); err != nil {
		return storeErr(s.log, "post.delete", err, "")
	}
	return nil
}

func (s *PostService) GetPost(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(s.log, "post.get", err, "Publicação não encontrada.")
	}
	return post, nil
}

// ListPosts pages a confraria's posts newest first. Pass the previous
// page's NextCursor to continue; it is empty on the last page.
func (s *PostService) ListPosts(ctx context.Context, confrariaID, cursor string, limit int) (*PostPage, error) {
	lastAt, lastID, err := decodeCursor(cursor)
	if err != nil {
		return nil, err
	}
	limit = clampLimit(limit, 20, 50)
	list, err := s.repo.ListByConfrariaCursor(ctx, confrariaID, lastID, lastAt, limit)
	if err != nil {
		return nil, storeErr(s.log, "post.list", err, "")
	}
	page := &PostPage{Items: list}
	if page.Items == nil {
		page.Items = []model.Post{}
	}
	if len(list) == limit {
		last := list[len(list)-1]
		page.NextCursor = encodeCursor(last.CreatedAt, last.ID)
	}
	return page, nil
}

func postTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", invalid("O título é obrigatório.")
	}
	if utf8.RuneCountInString(title) > 200 {
		return "", invalid("O título é demasiado longo.")
	}
	return title, nil
}

// joinTags stores tags with the same rules applied to AI suggestions.
func joinTags(tags []string) string {
	return strings.Join(ai.NormalizeTags(tags), ",")
}
