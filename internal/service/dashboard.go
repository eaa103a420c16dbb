package service

import (
	"context"
	"fmt"
	"strings"

	"onboarding_portal/internal/model"
	"onboarding_portal/internal/portal"
	"onboarding_portal/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type DashboardServiceI interface {
	AdminDashboard(ctx context.Context) AdminDashboard
	CreateUser(ctx context.Context, req NewUserRequest) (*model.User, error)
	ApproveUser(ctx context.Context, userID string, role model.Role) (*model.User, error)
	RejectRequest(ctx context.Context, ticketID string) error
}

type DashboardService struct {
	api          StaffAPI
	organization string
}

func NewDashboardService(api StaffAPI, organization string) *DashboardService {
	return &DashboardService{api: api, organization: organization}
}

type UserGroups struct {
	Unconfirmed []model.User `json:"unconfirmed"`
	HR          []model.User `json:"hr"`
	Mentors     []model.User `json:"mentors"`
	Employees   []model.User `json:"employees"`
	Admins      []model.User `json:"admins"`
}

// GroupUsers splits users by role, keeping their order within each group.
func GroupUsers(users []model.User) UserGroups {
	g := UserGroups{
		Unconfirmed: []model.User{},
		HR:          []model.User{},
		Mentors:     []model.User{},
		Employees:   []model.User{},
		Admins:      []model.User{},
	}
	for _, u := range users {
		switch u.Role {
		case model.RoleUnconfirmed:
			g.Unconfirmed = append(g.Unconfirmed, u)
		case model.RoleHR:
			g.HR = append(g.HR, u)
		case model.RoleMentor:
			g.Mentors = append(g.Mentors, u)
		case model.RoleEmployee:
			g.Employees = append(g.Employees, u)
		case model.RoleAdmin:
			g.Admins = append(g.Admins, u)
		}
	}
	return g
}

type AdminDashboard struct {
	Groups  UserGroups     `json:"groups"`
	Total   int            `json:"total"`
	Tickets []model.Ticket `json:"tickets"`
}

// AdminDashboard loads users and open tickets side by side. Each list
// degrades to empty on its own.
func (s *DashboardService) AdminDashboard(ctx context.Context) AdminDashboard {
	log := logger.Component("dashboard")

	var users []model.User
	var tickets []model.Ticket

	var g errgroup.Group
	g.Go(func() error {
		var err error
		users, err = s.api.ListUsers(ctx)
		if err != nil {
			log.Warn("failed to load users", zap.Error(err))
			users = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		tickets, err = s.api.Requests(ctx)
		if err != nil {
			log.Warn("failed to load registration requests", zap.Error(err))
			tickets = nil
		}
		return nil
	})
	_ = g.Wait()

	return AdminDashboard{
		Groups:  GroupUsers(users),
		Total:   len(users),
		Tickets: append([]model.Ticket{}, tickets...),
	}
}

type NewUserRequest struct {
	FullName string     `json:"full_name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

func (s *DashboardService) CreateUser(ctx context.Context, req NewUserRequest) (*model.User, error) {
	if strings.TrimSpace(req.FullName) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrInvalidValue)
	}
	role := req.Role
	if role == "" {
		role = model.RoleEmployee
	}

	user, err := s.api.CreateUser(ctx, portal.NewUser{
		FullName:         req.FullName,
		Email:            req.Email,
		Password:         req.Password,
		Role:             role,
		OrganizationName: s.organization,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// ApproveUser confirms a pending registration with a working role.
func (s *DashboardService) ApproveUser(ctx context.Context, userID string, role model.Role) (*model.User, error) {
	if userID == "" || role == model.RoleUnconfirmed {
		return nil, fmt.Errorf("%w: a user and a confirmed role are required", ErrInvalidValue)
	}

	user, err := s.api.ApproveUser(ctx, userID, role)
	if err != nil {
		return nil, fmt.Errorf("failed to approve user: %w", err)
	}
	return user, nil
}

func (s *DashboardService) RejectRequest(ctx context.Context, ticketID string) error {
	if ticketID == "" {
		return fmt.Errorf("%w: ticket is required", ErrInvalidValue)
	}
	if err := s.api.RejectRequest(ctx, ticketID); err != nil {
		return fmt.Errorf("failed to reject request: %w", err)
	}
	return nil
}
