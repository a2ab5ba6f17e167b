package service

import (
	"context"
	"testing"
	"time"

	"confrarias/internal/model"
	"confrarias/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPost_AuthoringRules(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.seedUser(t, "admin", model.RoleAdmin)
	conf := e.seedUser(t, "conf", model.RoleConfraria)
	other := e.seedUser(t, "outra", model.RoleConfraria)
	confrade := e.seedUser(t, "u1", model.RoleConfrade)

	post, err := e.posts.CreatePost(ctx, conf, PostInput{Title: "Capítulo anual", Content: "Grande festa", Tags: []string{"#Festa", "festa", "Vinho"}})
	require.NoError(t, err)
	assert.Equal(t, conf.ID, post.ConfrariaID)
	assert.Equal(t, "festa,vinho", post.Tags)

	_, err = e.posts.CreatePost(ctx, confrade, PostInput{Title: "Olá"})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = e.posts.CreatePost(ctx, other, PostInput{ConfrariaID: conf.ID, Title: "Intruso"})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = e.posts.CreatePost(ctx, admin, PostInput{ConfrariaID: confrade.ID, Title: "Não é confraria"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.posts.CreatePost(ctx, conf, PostInput{Title: " "})
	assert.ErrorIs(t, err, ErrValidation)

	title := "Capítulo anual 2026"
	updated, err := e.posts.UpdatePost(ctx, admin, post.ID, PostUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)

	_, err = e.posts.UpdatePost(ctx, other, post.ID, PostUpdate{Title: &title})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	require.NoError(t, e.posts.DeletePost(ctx, conf, post.ID))
	_, err = e.posts.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPost_CursorPagination(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	conf := e.seedUser(t, "conf", model.RoleConfraria)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, e.db.Create(&model.Post{
			ID:          pkg.NewID(),
			ConfrariaID: conf.ID,
			AuthorID:    conf.ID,
			Title:       "post",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	seen := map[string]bool{}
	cursor := ""
	pages := 0
	for {
		page, err := e.posts.ListPosts(ctx, conf.ID, cursor, 2)
		require.NoError(t, err)
		pages++
		for i, p := range page.Items {
			assert.False(t, seen[p.ID])
			seen[p.ID] = true
			if i > 0 {
				assert.True(t, page.Items[i-1].CreatedAt.After(p.CreatedAt))
			}
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	assert.Len(t, seen, 5)
	assert.Equal(t, 3, pages)
}

func TestEvent_Lifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	conf := e.seedUser(t, "conf", model.RoleConfraria)
	other := e.seedUser(t, "outra", model.RoleConfraria)

	when := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	ev, err := e.events.Create(ctx, conf, EventInput{Title: "Jantar de gala", Date: when, Location: "Braga"})
	require.NoError(t, err)

	_, err = e.events.Create(ctx, conf, EventInput{Title: "Sem data", Location: "Braga"})
	assert.ErrorIs(t, err, ErrValidation)

	loc := "Guimarães"
	_, err = e.events.Update(ctx, other, ev.ID, EventUpdate{Location: &loc})
	assert.ErrorIs(t, err, ErrPermissionDenied)
	updated, err := e.events.Update(ctx, conf, ev.ID, EventUpdate{Location: &loc})
	require.NoError(t, err)
	assert.Equal(t, loc, updated.Location)

	list, err := e.events.ListByConfraria(ctx, conf.ID, true, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, loc, list[0].Location)

	upcoming, err := e.events.Upcoming(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, upcoming, 1)

	assert.ErrorIs(t, e.events.Delete(ctx, other, ev.ID), ErrPermissionDenied)
	require.NoError(t, e.events.Delete(ctx, conf, ev.ID))
	assert.ErrorIs(t, e.events.Delete(ctx, conf, ev.ID), ErrNotFound)
}

func TestSubmission_ProvisionAfterApproval(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.seedUser(t, "admin", model.RoleAdmin)
	confrade := e.seedUser(t, "u1", model.RoleConfrade)

	_, err := e.submissions.Submit(ctx, SubmissionInput{ConfrariaName: "Sem distrito", ResponsibleName: "X", Email: "x@example.pt", Council: "Y"})
	assert.ErrorIs(t, err, ErrValidation)

	sub, err := e.submissions.Submit(ctx, SubmissionInput{
		ConfrariaName:   "Confraria do Leitão",
		ResponsibleName: "Rui Costa",
		Email:           "Leitao@Example.pt",
		District:        "Aveiro",
		Council:         "Anadia",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPendente, sub.Status)
	assert.Equal(t, "leitao@example.pt", sub.Email)

	_, err = e.submissions.List(ctx, confrade, "", 0, 10)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	queue, err := e.submissions.List(ctx, admin, model.StatusPendente, 0, 10)
	require.NoError(t, err)
	assert.Len(t, queue, 1)

	_, _, err = e.provision.Provision(ctx, sub.ID, "leitao")
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, e.moderation.SetStatus(ctx, admin, model.TargetSubmission, sub.ID, model.StatusAprovado))

	// approval alone does not create the account
	var n int64
	require.NoError(t, e.db.Model(&model.User{}).Where("role = ?", model.RoleConfraria).Count(&n).Error)
	assert.Zero(t, n)

	user, password, err := e.provision.Provision(ctx, sub.ID, "leitao")
	require.NoError(t, err)
	assert.Equal(t, model.RoleConfraria, user.Role)
	assert.Equal(t, "Confraria do Leitão", user.Name)
	assert.Len(t, password, 12)

	_, err = e.users.Login(ctx, "leitao", password)
	require.NoError(t, err)

	_, _, err = e.provision.Provision(ctx, sub.ID, "leitao")
	assert.ErrorIs(t, err, ErrValidation)
}
