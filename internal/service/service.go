package service

import (
	"context"
	"errors"
	"io"
	"time"

	"onboarding_portal/internal/model"
	"onboarding_portal/internal/portal"
)

var (
	ErrIndexOutOfRange      = errors.New("index out of range")
	ErrUnknownField         = errors.New("unknown field")
	ErrInvalidValue         = errors.New("invalid value")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrTrackNameRequired    = errors.New("track name is required")
	ErrNoSaveOperation      = errors.New("no save operation configured")
	ErrSaveInProgress       = errors.New("save already in progress")

	ErrEmptyQuiz     = errors.New("quiz has no questions")
	ErrNoSelection   = errors.New("select an option first")
	ErrUnknownOption = errors.New("option does not belong to the current question")
	ErrQuizFinished  = errors.New("quiz already finished")
	ErrSubmitPending = errors.New("answers are being submitted")
	ErrNoQuizResult  = errors.New("portal returned no quiz result")

	ErrTaskLocked     = errors.New("task is locked")
	ErrQuizMissing    = errors.New("task has no quiz attached")
	ErrReviewRequired = errors.New("task is completed after mentor review")
	ErrStageNotFound  = errors.New("stage not found")
	ErrTaskNotFound   = errors.New("task not found")

	ErrCredentialsRequired = errors.New("email and password are required")
	ErrSessionNotFound     = errors.New("session not found")
	ErrHandleNotFound      = errors.New("handle not found")
	ErrForbidden           = errors.New("forbidden")
	ErrNoTrackAssigned     = errors.New("no track assigned")
	ErrTrackNotFound       = errors.New("track not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrTrackAlreadySet     = errors.New("user already has a track")
)

// IsValidation reports whether err was raised locally, before any network call,
// because of bad input.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrIndexOutOfRange, ErrUnknownField, ErrInvalidValue, ErrTrackNameRequired,
		ErrNoSaveOperation, ErrEmptyQuiz, ErrNoSelection, ErrUnknownOption,
		ErrCredentialsRequired, ErrQuizMissing,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

type Service struct {
	*SessionService
	*TrackService
	*AssignmentService
	*QuizService
	*LearningService
	*KnowledgeService
	*DashboardService
	*ChatService
	Workspaces *WorkspaceService
}

// PortalAPI is the slice of the portal client the services depend on.
type PortalAPI interface {
	AuthAPI
	TrackAPI
	FileCatalog
	KnowledgeAPI
	QuizAPI
	LearningAPI
	StaffAPI
}

func NewService(api PortalAPI, sessions SessionRepository, cfg Config) *Service {
	workspaces := NewWorkspaceService()
	return &Service{
		SessionService:    NewSessionService(api, sessions, workspaces, cfg.OrganizationName, cfg.SessionTTL),
		TrackService:      NewTrackService(api, api),
		AssignmentService: NewAssignmentService(api),
		QuizService:       NewQuizService(api),
		LearningService:   NewLearningService(api),
		KnowledgeService:  NewKnowledgeService(api),
		DashboardService:  NewDashboardService(api, cfg.OrganizationName),
		ChatService:       NewChatService(cfg.ChatReplyDelay),
		Workspaces:        workspaces,
	}
}

type Config struct {
	OrganizationName string
	SessionTTL       time.Duration
	ChatReplyDelay   time.Duration
}

type SessionRepository interface {
	SaveSession(ctx context.Context, s *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) ([]string, error)
}

type AuthAPI interface {
	Login(ctx context.Context, creds portal.Credentials) (*portal.AuthResponse, error)
	Register(ctx context.Context, reg portal.Registration) (*portal.AuthResponse, error)
	Me(ctx context.Context) (*model.User, error)
}

type FileCatalog interface {
	ListFiles(ctx context.Context) ([]model.KnowledgeFile, error)
}

type TrackAPI interface {
	ListTracks(ctx context.Context) ([]model.Track, error)
	CreateTrack(ctx context.Context, payload model.TrackPayload) (*model.Track, error)
	UpdateTrack(ctx context.Context, id string, payload model.TrackPayload) (*model.Track, error)
	DeleteTrack(ctx context.Context, id string) error
}

type KnowledgeAPI interface {
	FileCatalog
	UploadFile(ctx context.Context, filename string, content io.Reader) (*model.KnowledgeFile, error)
	DeleteFile(ctx context.Context, id string) error
	DownloadFile(ctx context.Context, id string) (*portal.Download, error)
}

type QuizAPI interface {
	GetQuiz(ctx context.Context, id int) (*model.Quiz, error)
	SubmitQuiz(ctx context.Context, id int, submission model.QuizSubmission) (*model.QuizResult, error)
}

type LearningAPI interface {
	MyTrack(ctx context.Context) (*model.Track, error)
	Progress(ctx context.Context) ([]model.ProgressRecord, error)
	SubmitTask(ctx context.Context, taskID string, answer *string) (*model.ProgressRecord, error)
}

type StaffAPI interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	Employees(ctx context.Context) ([]model.User, error)
	Mentees(ctx context.Context) ([]model.User, error)
	ListTracks(ctx context.Context) ([]model.Track, error)
	AssignMentor(ctx context.Context, menteeID, mentorID string) error
	AssignTrack(ctx context.Context, userID, trackID string) error
	CreateUser(ctx context.Context, user portal.NewUser) (*model.User, error)
	Requests(ctx context.Context) ([]model.Ticket, error)
	ApproveUser(ctx context.Context, userID string, role model.Role) (*model.User, error)
	RejectRequest(ctx context.Context, ticketID string) error
}
