package models

import "time"

// Post is a news feed entry.
type Post struct {
	ID        string    `json:"id"`
	Author    Contact   `json:"author"`
	Content   string    `json:"content"`
	Likes     []string  `json:"likes"`
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `json:"createdAt"`
}

// Comment is a reply under a post.
type Comment struct {
	ID        string    `json:"id"`
	Author    Contact   `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// LikedBy reports whether userID liked the post.
func (p Post) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// Profile is the editable user profile.
type Profile struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Role           Role     `json:"role"`
	Headline       string   `json:"headline,omitempty"`
	Bio            string   `json:"bio,omitempty"`
	Location       string   `json:"location,omitempty"`
	Skills         []string `json:"skills,omitempty"`
	Company        string   `json:"company,omitempty"`
	ProfilePicture string   `json:"profilePicture,omitempty"`
}

// ProfileUpdate carries the fields a user may change. Nil fields are left as is.
type ProfileUpdate struct {
	Name     *string  `json:"name,omitempty"`
	Headline *string  `json:"headline,omitempty"`
	Bio      *string  `json:"bio,omitempty"`
	Location *string  `json:"location,omitempty"`
	Skills   []string `json:"skills,omitempty"`
	Company  *string  `json:"company,omitempty"`
}
