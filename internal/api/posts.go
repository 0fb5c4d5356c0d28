package api

import (
	"context"
	"net/http"
	"net/url"

	"huntx-client/internal/models"
)

// Posts returns the news feed.
func (c *Client) Posts(ctx context.Context) ([]models.Post, error) {
	var out wirePosts
	if err := c.read(ctx, "list posts", request{
		method: http.MethodGet,
		route:  "/posts/list",
		path:   "/posts/list",
		auth:   true,
	}, &out); err != nil {
		return nil, err
	}
	posts := make([]models.Post, 0, len(out))
	for _, p := range out {
		posts = append(posts, p.model())
	}
	return posts, nil
}

type contentBody struct {
	Content string `json:"content"`
}

// CreatePost publishes content and returns the stored post.
func (c *Client) CreatePost(ctx context.Context, content string) (models.Post, error) {
	return c.postWrite(ctx, "create post", "/posts/create", "/posts/create", contentBody{Content: content})
}

// LikePost toggles the signed-in user's like on postID.
func (c *Client) LikePost(ctx context.Context, postID string) (models.Post, error) {
	return c.postWrite(ctx, "like post", "/posts/:id/like", "/posts/"+url.PathEscape(postID)+"/like", struct{}{})
}

// CommentPost adds a comment under postID.
func (c *Client) CommentPost(ctx context.Context, postID, content string) (models.Post, error) {
	return c.postWrite(ctx, "comment post", "/posts/:id/comment", "/posts/"+url.PathEscape(postID)+"/comment", contentBody{Content: content})
}

func (c *Client) postWrite(ctx context.Context, op, route, path string, body any) (models.Post, error) {
	var out wirePost
	if err := c.write(ctx, op, request{method: http.MethodPost, route: route, path: path, body: body, auth: true}, &out); err != nil {
		return models.Post{}, err
	}
	return out.model(), nil
}
