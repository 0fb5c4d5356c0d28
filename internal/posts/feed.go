// Package posts keeps the news feed.
package posts

import (
	"context"
	"strings"
	"sync"

	"huntx-client/internal/listeners"
	"huntx-client/internal/models"
)

// API is the part of the REST client used by the feed.
type API interface {
	Posts(ctx context.Context) ([]models.Post, error)
	CreatePost(ctx context.Context, content string) (models.Post, error)
	LikePost(ctx context.Context, postID string) (models.Post, error)
	CommentPost(ctx context.Context, postID, content string) (models.Post, error)
}

// SessionSource reports the signed-in user.
type SessionSource interface {
	Current() (models.Session, bool)
}

// Feed holds posts newest first.
type Feed struct {
	api     API
	session SessionSource

	mu    sync.RWMutex
	posts []models.Post

	listeners listeners.Registry[[]models.Post]
}

func NewFeed(client API, session SessionSource) *Feed {
	return &Feed{api: client, session: session}
}

// Load replaces the feed with the backend's, unless the signed-in user
// changed while the call was out.
func (f *Feed) Load(ctx context.Context) ([]models.Post, error) {
	const op = "load posts"
	sess, ok := f.session.Current()
	if !ok {
		return nil, models.NewError(models.KindFetch, op, models.ErrNotSignedIn)
	}
	list, err := f.api.Posts(ctx)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	if cur, ok := f.session.Current(); !ok || cur.UserID != sess.UserID {
		f.mu.Unlock()
		return nil, models.NewError(models.KindFetch, op, models.ErrNotSignedIn)
	}
	f.posts = append([]models.Post(nil), list...)
	f.mu.Unlock()
	f.notify()
	return f.Posts(), nil
}

// Posts returns a copy of the feed.
func (f *Feed) Posts() []models.Post {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]models.Post(nil), f.posts...)
}

// Create publishes content and prepends the stored post.
func (f *Feed) Create(ctx context.Context, content string) (models.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Post{}, models.Errorf(models.KindSend, "create post", models.ErrValidation, "post content is empty")
	}
	post, err := f.api.CreatePost(ctx, content)
	if err != nil {
		return models.Post{}, err
	}
	f.mu.Lock()
	f.posts = append([]models.Post{post}, f.posts...)
	f.mu.Unlock()
	f.notify()
	return post, nil
}

// Like toggles the current user's like on postID.
func (f *Feed) Like(ctx context.Context, postID string) (models.Post, error) {
	post, err := f.api.LikePost(ctx, postID)
	if err != nil {
		return models.Post{}, err
	}
	f.replace(post)
	return post, nil
}

// Comment adds a comment under postID.
func (f *Feed) Comment(ctx context.Context, postID, content string) (models.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Post{}, models.Errorf(models.KindSend, "comment post", models.ErrValidation, "comment is empty")
	}
	post, err := f.api.CommentPost(ctx, postID, content)
	if err != nil {
		return models.Post{}, err
	}
	f.replace(post)
	return post, nil
}

// OnChange registers fn for every feed change.
func (f *Feed) OnChange(fn func([]models.Post)) (cancel func()) {
	return f.listeners.Add(fn)
}

// Reset empties the feed.
func (f *Feed) Reset() {
	f.mu.Lock()
	f.posts = nil
	f.mu.Unlock()
	f.notify()
}

func (f *Feed) replace(post models.Post) {
	f.mu.Lock()
	for i := range f.posts {
		if f.posts[i].ID == post.ID {
			f.posts[i] = post
			break
		}
	}
	f.mu.Unlock()
	f.notify()
}

func (f *Feed) notify() {
	f.listeners.Notify(f.Posts())
}
