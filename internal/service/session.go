package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"onboarding_portal/internal/model"
	"onboarding_portal/internal/portal"
	"onboarding_portal/internal/repository"
	"onboarding_portal/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const xpPerLevel = 1000

type SessionServiceI interface {
	Login(ctx context.Context, email, password string) (*model.Session, error)
	Register(ctx context.Context, fullName, email, password string) (*model.Session, error)
	Logout(ctx context.Context, sessionID string) error
	LoadSession(ctx context.Context, sessionID string) (*model.Session, error)
	Refresh(ctx context.Context, s *model.Session) (*model.User, error)
	Invalidate(ctx context.Context, s *model.Session)
}

// SessionService owns the lifecycle of browser sessions: created by login or
// registration, removed by logout or by the portal rejecting the credential.
type SessionService struct {
	api          AuthAPI
	repo         SessionRepository
	workspaces   *WorkspaceService
	organization string
	ttl          time.Duration
	now          func() time.Time
}

func NewSessionService(api AuthAPI, repo SessionRepository, workspaces *WorkspaceService, organization string, ttl time.Duration) *SessionService {
	return &SessionService{
		api:          api,
		repo:         repo,
		workspaces:   workspaces,
		organization: organization,
		ttl:          ttl,
		now:          time.Now,
	}
}

func (s *SessionService) Login(ctx context.Context, email, password string) (*model.Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, ErrCredentialsRequired
	}

	resp, err := s.api.Login(ctx, portal.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}
	return s.start(ctx, resp)
}

func (s *SessionService) Register(ctx context.Context, fullName, email, password string) (*model.Session, error) {
	if strings.TrimSpace(fullName) == "" || strings.TrimSpace(email) == "" || password == "" {
		return nil, ErrCredentialsRequired
	}

	resp, err := s.api.Register(ctx, portal.Registration{
		FullName:         fullName,
		Email:            email,
		Password:         password,
		OrganizationName: s.organization,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register: %w", err)
	}
	return s.start(ctx, resp)
}

func (s *SessionService) start(ctx context.Context, resp *portal.AuthResponse) (*model.Session, error) {
	now := s.now()
	user := resp.User
	session := &model.Session{
		ID:        uuid.NewString(),
		Token:     resp.AccessToken,
		User:      &user,
		CreatedAt: now,
	}
	if s.ttl > 0 {
		session.ExpiresAt = now.Add(s.ttl)
	}

	if err := s.repo.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	logger.Component("session").Info("session started",
		zap.String("session_id", session.ID),
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)
	return session, nil
}

func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	s.workspaces.Drop(sessionID)
	if err := s.repo.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *SessionService) LoadSession(ctx context.Context, sessionID string) (*model.Session, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.workspaces.Drop(sessionID)
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session.Expired(s.now()) {
		s.workspaces.Drop(sessionID)
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Refresh replaces the cached identity with the portal's current view of it.
func (s *SessionService) Refresh(ctx context.Context, session *model.Session) (*model.User, error) {
	user, err := s.api.Me(portal.WithSession(ctx, session))
	if err != nil {
		return nil, fmt.Errorf("failed to refresh identity: %w", err)
	}

	session.User = user
	if err := s.repo.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return user, nil
}

// Invalidate forgets a session whose credential the portal rejected. It is
// installed as the portal client's unauthorized hook.
func (s *SessionService) Invalidate(ctx context.Context, session *model.Session) {
	s.workspaces.Drop(session.ID)
	if err := s.repo.DeleteSession(context.WithoutCancel(ctx), session.ID); err != nil {
		logger.Component("session").Error("failed to delete rejected session",
			zap.String("session_id", session.ID), zap.Error(err))
		return
	}
	logger.Component("session").Info("session invalidated", zap.String("session_id", session.ID))
}

type Profile struct {
	User          model.User `json:"user"`
	LevelProgress int        `json:"level_progress"`
	XPToNextLevel int        `json:"xp_to_next_level"`
}

func (s *SessionService) Profile(ctx context.Context, session *model.Session) (*Profile, error) {
	user, err := s.Refresh(ctx, session)
	if err != nil {
		return nil, err
	}

	progress := user.XPPoints % xpPerLevel
	if progress < 0 {
		progress = 0
	}
	return &Profile{
		User:          *user,
		LevelProgress: progress,
		XPToNextLevel: xpPerLevel - progress,
	}, nil
}

// Sweep removes expired sessions every interval until ctx is done.
func (s *SessionService) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.sweep(ctx); err != nil {
				logger.Component("session").Warn("failed to sweep sessions", zap.Error(err))
			}
		}
	}
}

// sweep deletes expired sessions and drops every workspace whose session is
// gone, including sessions the store expired on its own.
func (s *SessionService) sweep(ctx context.Context) error {
	ids, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return err
	}
	for _, id := range ids {
		s.workspaces.Drop(id)
	}

	orphaned := 0
	for _, id := range s.workspaces.IDs() {
		_, err := s.repo.GetSession(ctx, id)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			s.workspaces.Drop(id)
			orphaned++
		case err != nil:
			return err
		}
	}

	if len(ids) > 0 || orphaned > 0 {
		logger.Component("session").Debug("expired sessions removed",
			zap.Int("sessions", len(ids)), zap.Int("orphaned_workspaces", orphaned))
	}
	return nil
}
