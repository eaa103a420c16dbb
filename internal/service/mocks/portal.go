package mocks

import (
	"context"
	"io"

	"onboarding_portal/internal/model"
	"onboarding_portal/internal/portal"

	"github.com/stretchr/testify/mock"
)

type MockPortalAPI struct {
	mock.Mock
}

func (m *MockPortalAPI) Login(ctx context.Context, creds portal.Credentials) (*portal.AuthResponse, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portal.AuthResponse), args.Error(1)
}

func (m *MockPortalAPI) Register(ctx context.Context, reg portal.Registration) (*portal.AuthResponse, error) {
	args := m.Called(ctx, reg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portal.AuthResponse), args.Error(1)
}

func (m *MockPortalAPI) Me(ctx context.Context) (*model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockPortalAPI) ListUsers(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockPortalAPI) ListFiles(ctx context.Context) ([]model.KnowledgeFile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.KnowledgeFile), args.Error(1)
}

func (m *MockPortalAPI) UploadFile(ctx context.Context, filename string, content io.Reader) (*model.KnowledgeFile, error) {
	args := m.Called(ctx, filename, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.KnowledgeFile), args.Error(1)
}

func (m *MockPortalAPI) DeleteFile(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPortalAPI) DownloadFile(ctx context.Context, id string) (*portal.Download, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portal.Download), args.Error(1)
}

func (m *MockPortalAPI) ListTracks(ctx context.Context) ([]model.Track, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Track), args.Error(1)
}

func (m *MockPortalAPI) CreateTrack(ctx context.Context, payload model.TrackPayload) (*model.Track, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Track), args.Error(1)
}

func (m *MockPortalAPI) UpdateTrack(ctx context.Context, id string, payload model.TrackPayload) (*model.Track, error) {
	args := m.Called(ctx, id, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Track), args.Error(1)
}

func (m *MockPortalAPI) DeleteTrack(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPortalAPI) MyTrack(ctx context.Context) (*model.Track, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Track), args.Error(1)
}

func (m *MockPortalAPI) Progress(ctx context.Context) ([]model.ProgressRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ProgressRecord), args.Error(1)
}

func (m *MockPortalAPI) SubmitTask(ctx context.Context, taskID string, answer *string) (*model.ProgressRecord, error) {
	args := m.Called(ctx, taskID, answer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProgressRecord), args.Error(1)
}

func (m *MockPortalAPI) AssignTrack(ctx context.Context, userID, trackID string) error {
	args := m.Called(ctx, userID, trackID)
	return args.Error(0)
}

func (m *MockPortalAPI) GetQuiz(ctx context.Context, id int) (*model.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quiz), args.Error(1)
}

func (m *MockPortalAPI) SubmitQuiz(ctx context.Context, id int, submission model.QuizSubmission) (*model.QuizResult, error) {
	args := m.Called(ctx, id, submission)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QuizResult), args.Error(1)
}

func (m *MockPortalAPI) Employees(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockPortalAPI) Mentees(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockPortalAPI) AssignMentor(ctx context.Context, menteeID, mentorID string) error {
	args := m.Called(ctx, menteeID, mentorID)
	return args.Error(0)
}

func (m *MockPortalAPI) CreateUser(ctx context.Context, user portal.NewUser) (*model.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockPortalAPI) Requests(ctx context.Context) ([]model.Ticket, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Ticket), args.Error(1)
}

func (m *MockPortalAPI) ApproveUser(ctx context.Context, userID string, role model.Role) (*model.User, error) {
	args := m.Called(ctx, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockPortalAPI) RejectRequest(ctx context.Context, ticketID string) error {
	args := m.Called(ctx, ticketID)
	return args.Error(0)
}
