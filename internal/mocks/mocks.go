package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"huntx-client/internal/api"
	"huntx-client/internal/models"
)

type SessionRepositoryMock struct {
	mock.Mock
}

func (m *SessionRepositoryMock) Load(ctx context.Context) (models.Session, error) {
	args := m.Called(ctx)
	var s models.Session
	if val := args.Get(0); val != nil {
		s = val.(models.Session)
	}
	return s, args.Error(1)
}

func (m *SessionRepositoryMock) Save(ctx context.Context, session models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *SessionRepositoryMock) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type AuthAPIMock struct {
	mock.Mock
}

func (m *AuthAPIMock) SignIn(ctx context.Context, creds models.Credentials) (models.AuthResult, error) {
	args := m.Called(ctx, creds)
	var res models.AuthResult
	if val := args.Get(0); val != nil {
		res = val.(models.AuthResult)
	}
	return res, args.Error(1)
}

func (m *AuthAPIMock) SignUp(ctx context.Context, req models.SignUpRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type MessageAPIMock struct {
	mock.Mock
}

func (m *MessageAPIMock) Conversations(ctx context.Context) ([]models.Conversation, error) {
	args := m.Called(ctx)
	var list []models.Conversation
	if val := args.Get(0); val != nil {
		list = val.([]models.Conversation)
	}
	return list, args.Error(1)
}

func (m *MessageAPIMock) SendMessage(ctx context.Context, conversationID, content string) (models.Message, error) {
	args := m.Called(ctx, conversationID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageAPIMock) StartConversation(ctx context.Context, recipientID string) (models.Conversation, error) {
	args := m.Called(ctx, recipientID)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

type NotificationAPIMock struct {
	mock.Mock
}

func (m *NotificationAPIMock) Notifications(ctx context.Context) ([]models.Notification, error) {
	args := m.Called(ctx)
	var list []models.Notification
	if val := args.Get(0); val != nil {
		list = val.([]models.Notification)
	}
	return list, args.Error(1)
}

func (m *NotificationAPIMock) MarkNotificationsRead(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type ConnectionAPIMock struct {
	mock.Mock
}

func (m *ConnectionAPIMock) Connections(ctx context.Context) (models.ConnectionList, error) {
	args := m.Called(ctx)
	var list models.ConnectionList
	if val := args.Get(0); val != nil {
		list = val.(models.ConnectionList)
	}
	return list, args.Error(1)
}

func (m *ConnectionAPIMock) ConnectionAction(ctx context.Context, action api.ConnectionAction, userID string) error {
	args := m.Called(ctx, action, userID)
	return args.Error(0)
}

func (m *ConnectionAPIMock) Users(ctx context.Context) ([]models.Contact, error) {
	args := m.Called(ctx)
	var list []models.Contact
	if val := args.Get(0); val != nil {
		list = val.([]models.Contact)
	}
	return list, args.Error(1)
}

type JobAPIMock struct {
	mock.Mock
}

func (m *JobAPIMock) Jobs(ctx context.Context, filter models.JobFilter) (models.JobPage, error) {
	args := m.Called(ctx, filter)
	var page models.JobPage
	if val := args.Get(0); val != nil {
		page = val.(models.JobPage)
	}
	return page, args.Error(1)
}

func (m *JobAPIMock) Job(ctx context.Context, id string) (models.Job, error) {
	args := m.Called(ctx, id)
	var job models.Job
	if val := args.Get(0); val != nil {
		job = val.(models.Job)
	}
	return job, args.Error(1)
}

func (m *JobAPIMock) FeaturedJobs(ctx context.Context) ([]models.Job, error) {
	args := m.Called(ctx)
	return jobs(args.Get(0)), args.Error(1)
}

func (m *JobAPIMock) TopCompanies(ctx context.Context) ([]models.Company, error) {
	args := m.Called(ctx)
	var list []models.Company
	if val := args.Get(0); val != nil {
		list = val.([]models.Company)
	}
	return list, args.Error(1)
}

func (m *JobAPIMock) Apply(ctx context.Context, jobID string) error {
	args := m.Called(ctx, jobID)
	return args.Error(0)
}

func (m *JobAPIMock) MyApplications(ctx context.Context) ([]models.Application, error) {
	args := m.Called(ctx)
	return applications(args.Get(0)), args.Error(1)
}

func (m *JobAPIMock) EmployerApplications(ctx context.Context) ([]models.Application, error) {
	args := m.Called(ctx)
	return applications(args.Get(0)), args.Error(1)
}

func (m *JobAPIMock) PostJob(ctx context.Context, job api.NewJob) (string, error) {
	args := m.Called(ctx, job)
	return args.String(0), args.Error(1)
}

func (m *JobAPIMock) MyJobs(ctx context.Context) ([]models.Job, error) {
	args := m.Called(ctx)
	return jobs(args.Get(0)), args.Error(1)
}

func (m *JobAPIMock) UpdateApplicationStatus(ctx context.Context, applicationID string, status models.ApplicationStatus) (models.ApplicationStatus, error) {
	args := m.Called(ctx, applicationID, status)
	var out models.ApplicationStatus
	if val := args.Get(0); val != nil {
		out = val.(models.ApplicationStatus)
	}
	return out, args.Error(1)
}

func jobs(val any) []models.Job {
	if val == nil {
		return nil
	}
	return val.([]models.Job)
}

func applications(val any) []models.Application {
	if val == nil {
		return nil
	}
	return val.([]models.Application)
}

type PostAPIMock struct {
	mock.Mock
}

func (m *PostAPIMock) Posts(ctx context.Context) ([]models.Post, error) {
	args := m.Called(ctx)
	var list []models.Post
	if val := args.Get(0); val != nil {
		list = val.([]models.Post)
	}
	return list, args.Error(1)
}

func (m *PostAPIMock) CreatePost(ctx context.Context, content string) (models.Post, error) {
	args := m.Called(ctx, content)
	return post(args.Get(0)), args.Error(1)
}

func (m *PostAPIMock) LikePost(ctx context.Context, postID string) (models.Post, error) {
	args := m.Called(ctx, postID)
	return post(args.Get(0)), args.Error(1)
}

func (m *PostAPIMock) CommentPost(ctx context.Context, postID, content string) (models.Post, error) {
	args := m.Called(ctx, postID, content)
	return post(args.Get(0)), args.Error(1)
}

func post(val any) models.Post {
	if val == nil {
		return models.Post{}
	}
	return val.(models.Post)
}

type ProfileAPIMock struct {
	mock.Mock
}

func (m *ProfileAPIMock) Profile(ctx context.Context) (models.Profile, error) {
	args := m.Called(ctx)
	var p models.Profile
	if val := args.Get(0); val != nil {
		p = val.(models.Profile)
	}
	return p, args.Error(1)
}

func (m *ProfileAPIMock) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (models.Profile, error) {
	args := m.Called(ctx, update)
	var p models.Profile
	if val := args.Get(0); val != nil {
		p = val.(models.Profile)
	}
	return p, args.Error(1)
}
