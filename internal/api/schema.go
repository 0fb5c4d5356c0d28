package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"huntx-client/internal/models"
)

// ref is a user reference. The backend sends either a bare id string or a
// populated document, depending on the endpoint.
type ref struct {
	ID             string `json:"_id"`
	Name           string `json:"name"`
	Role           string `json:"role,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

func (r *ref) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*r = ref{ID: id}
		return nil
	}
	type plain ref
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = ref(p)
	return nil
}

func (r ref) contact() models.Contact {
	return models.Contact{ID: r.ID, Name: r.Name, Role: models.Role(r.Role), ProfilePicture: r.ProfilePicture}
}

func (r ref) participant() models.Participant {
	return models.Participant{ID: r.ID, Name: r.Name, ProfilePicture: r.ProfilePicture}
}

type wireMessage struct {
	ID             string    `json:"_id"`
	ConversationID string    `json:"conversationId"`
	Sender         ref       `json:"sender"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (m wireMessage) validate() error {
	switch {
	case m.ID == "":
		return errors.New("message without _id")
	case m.Sender.ID == "":
		return fmt.Errorf("message %s without sender", m.ID)
	case m.CreatedAt.IsZero():
		return fmt.Errorf("message %s without createdAt", m.ID)
	}
	return nil
}

func (m wireMessage) model(conversationID string) models.Message {
	if m.ConversationID != "" {
		conversationID = m.ConversationID
	}
	return models.Message{
		ID:             m.ID,
		ConversationID: conversationID,
		SenderID:       m.Sender.ID,
		SenderName:     m.Sender.Name,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}

type wireConversation struct {
	ID           string        `json:"_id"`
	Participants []ref         `json:"participants"`
	Messages     []wireMessage `json:"messages"`
}

func (c wireConversation) validate() error {
	if c.ID == "" {
		return errors.New("conversation without _id")
	}
	if len(c.Participants) != 2 || c.Participants[0].ID == "" || c.Participants[0].ID == c.Participants[1].ID {
		return fmt.Errorf("conversation %s must have two distinct participants", c.ID)
	}
	for _, m := range c.Messages {
		if err := m.validate(); err != nil {
			return err
		}
		if m.ConversationID != "" && m.ConversationID != c.ID {
			return fmt.Errorf("message %s belongs to %s, not %s", m.ID, m.ConversationID, c.ID)
		}
	}
	return nil
}

func (c wireConversation) model() models.Conversation {
	conv := models.Conversation{ID: c.ID}
	for _, p := range c.Participants {
		conv.Participants = append(conv.Participants, p.participant())
	}
	for _, m := range c.Messages {
		conv.Messages = append(conv.Messages, m.model(c.ID))
	}
	models.SortMessages(conv.Messages)
	return conv
}

type wireConversations []wireConversation

func (l wireConversations) validate() error {
	for _, c := range l {
		if err := c.validate(); err != nil {
			return err
		}
	}
	return nil
}

type wireNotification struct {
	ID        string    `json:"_id"`
	Type      string    `json:"type"`
	RelatedID string    `json:"relatedId"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

func (n wireNotification) validate() error {
	if n.ID == "" {
		return errors.New("notification without _id")
	}
	if !models.NotificationType(n.Type).Valid() {
		return fmt.Errorf("notification %s has unknown type %q", n.ID, n.Type)
	}
	return nil
}

func (n wireNotification) model() models.Notification {
	return models.Notification{
		ID:        n.ID,
		Type:      models.NotificationType(n.Type),
		RelatedID: n.RelatedID,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

type notificationList struct {
	Notifications []wireNotification `json:"notifications"`
}

func (l *notificationList) validate() error {
	for _, n := range l.Notifications {
		if err := n.validate(); err != nil {
			return err
		}
	}
	return nil
}

type authResponse struct {
	Token   string `json:"token"`
	Role    string `json:"role"`
	UserID  string `json:"userId"`
	Name    string `json:"name"`
	User    *ref   `json:"user"`
	Message string `json:"message"`
}

func (a *authResponse) validate() error {
	if a.Token == "" {
		return errors.New("sign-in response without token")
	}
	if _, ok := models.ParseRole(a.Role); !ok {
		return fmt.Errorf("sign-in response has unknown role %q", a.Role)
	}
	return nil
}

type messageResponse struct {
	Message string `json:"message"`
}

type connectionList struct {
	Connections     []ref `json:"connections"`
	PendingRequests []ref `json:"pendingRequests"`
	SentRequests    []ref `json:"sentRequests"`
}

func (l *connectionList) validate() error {
	for _, group := range [][]ref{l.Connections, l.PendingRequests, l.SentRequests} {
		for _, r := range group {
			if r.ID == "" {
				return errors.New("connection entry without _id")
			}
		}
	}
	return nil
}

func contacts(refs []ref) []models.Contact {
	out := make([]models.Contact, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.contact())
	}
	return out
}

type wireJob struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	JobType     string    `json:"jobType"`
	Salary      string    `json:"salary"`
	Description string    `json:"description"`
	PostedBy    ref       `json:"postedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (j wireJob) validate() error {
	if j.ID == "" || j.Title == "" {
		return errors.New("job without _id or title")
	}
	return nil
}

func (j wireJob) model() models.Job {
	return models.Job{
		ID:          j.ID,
		Title:       j.Title,
		Company:     j.Company,
		Location:    j.Location,
		JobType:     j.JobType,
		Salary:      j.Salary,
		Description: j.Description,
		PostedBy:    j.PostedBy.ID,
		CreatedAt:   j.CreatedAt,
	}
}

type wireJobs []wireJob

func (l wireJobs) validate() error {
	for _, j := range l {
		if err := j.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (l wireJobs) models() []models.Job {
	out := make([]models.Job, 0, len(l))
	for _, j := range l {
		out = append(out, j.model())
	}
	return out
}

type jobPage struct {
	Jobs  wireJobs `json:"jobs"`
	Total int      `json:"total"`
}

func (p *jobPage) validate() error {
	if p.Total < len(p.Jobs) {
		return fmt.Errorf("total %d smaller than page size %d", p.Total, len(p.Jobs))
	}
	return p.Jobs.validate()
}

type wireApplication struct {
	ID        string    `json:"_id"`
	Job       wireJob   `json:"job"`
	Applicant ref       `json:"applicant"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func (a wireApplication) model() models.Application {
	return models.Application{
		ID:        a.ID,
		Job:       a.Job.model(),
		Applicant: a.Applicant.contact(),
		Status:    models.ApplicationStatus(a.Status),
		CreatedAt: a.CreatedAt,
	}
}

type wireApplications []wireApplication

func (l wireApplications) validate() error {
	for _, a := range l {
		if a.ID == "" || a.Job.ID == "" {
			return errors.New("application without _id or job")
		}
		if !models.ApplicationStatus(a.Status).Valid() {
			return fmt.Errorf("application %s has unknown status %q", a.ID, a.Status)
		}
	}
	return nil
}

type wireCompanies []models.Company

type wireComment struct {
	ID        string    `json:"_id"`
	User      ref       `json:"user"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type wirePost struct {
	ID        string        `json:"_id"`
	Author    ref           `json:"author"`
	Content   string        `json:"content"`
	Likes     []string      `json:"likes"`
	Comments  []wireComment `json:"comments"`
	CreatedAt time.Time     `json:"createdAt"`
}

func (p wirePost) validate() error {
	if p.ID == "" {
		return errors.New("post without _id")
	}
	return nil
}

func (p wirePost) model() models.Post {
	post := models.Post{
		ID:        p.ID,
		Author:    p.Author.contact(),
		Content:   p.Content,
		Likes:     append([]string(nil), p.Likes...),
		CreatedAt: p.CreatedAt,
	}
	for _, c := range p.Comments {
		post.Comments = append(post.Comments, models.Comment{
			ID:        c.ID,
			Author:    c.User.contact(),
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
		})
	}
	return post
}

type wirePosts []wirePost

func (l wirePosts) validate() error {
	for _, p := range l {
		if err := p.validate(); err != nil {
			return err
		}
	}
	return nil
}

type wireProfile struct {
	ID             string   `json:"_id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Role           string   `json:"role"`
	Headline       string   `json:"headline"`
	Bio            string   `json:"bio"`
	Location       string   `json:"location"`
	Skills         []string `json:"skills"`
	Company        string   `json:"company"`
	ProfilePicture string   `json:"profilePicture"`
}

func (p *wireProfile) validate() error {
	if p.ID == "" {
		return errors.New("profile without _id")
	}
	return nil
}

func (p *wireProfile) model() models.Profile {
	return models.Profile{
		ID:             p.ID,
		Name:           p.Name,
		Email:          p.Email,
		Role:           models.Role(p.Role),
		Headline:       p.Headline,
		Bio:            p.Bio,
		Location:       p.Location,
		Skills:         p.Skills,
		Company:        p.Company,
		ProfilePicture: p.ProfilePicture,
	}
}

// DecodeMessage parses and validates a message pushed over the realtime channel.
func DecodeMessage(data []byte) (models.Message, error) {
	var m wireMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return models.Message{}, fmt.Errorf("%w: %v", models.ErrShapeMismatch, err)
	}
	if err := m.validate(); err != nil {
		return models.Message{}, fmt.Errorf("%w: %v", models.ErrShapeMismatch, err)
	}
	if m.ConversationID == "" {
		return models.Message{}, fmt.Errorf("%w: message %s without conversationId", models.ErrShapeMismatch, m.ID)
	}
	return m.model(""), nil
}

// DecodeNotification parses a pushed notification. fallback is used when the
// payload has no type.
func DecodeNotification(data []byte, fallback models.NotificationType) (models.Notification, error) {
	var n wireNotification
	if err := json.Unmarshal(data, &n); err != nil {
		return models.Notification{}, fmt.Errorf("%w: %v", models.ErrShapeMismatch, err)
	}
	if n.Type == "" {
		n.Type = string(fallback)
	}
	if err := n.validate(); err != nil {
		return models.Notification{}, fmt.Errorf("%w: %v", models.ErrShapeMismatch, err)
	}
	return n.model(), nil
}

// OutgoingMessage is the payload emitted on "sendMessage" so the recipient can
// append without a re-fetch.
type OutgoingMessage struct {
	ID             string    `json:"_id"`
	ConversationID string    `json:"conversationId"`
	Sender         ref       `json:"sender"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
	RecipientID    string    `json:"recipientId"`
}

// NewOutgoingMessage builds the relay payload for msg.
func NewOutgoingMessage(msg models.Message, senderName, recipientID string) OutgoingMessage {
	return OutgoingMessage{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		Sender:         ref{ID: msg.SenderID, Name: senderName},
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
		RecipientID:    recipientID,
	}
}
