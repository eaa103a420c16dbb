package service

import (
	"context"
	"errors"
	"testing"

	"onboarding_portal/internal/model"
	"onboarding_portal/internal/portal"
	"onboarding_portal/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGroupUsers(t *testing.T) {
	users := []model.User{
		{ID: "1", Role: model.RoleEmployee},
		{ID: "2", Role: model.RoleUnconfirmed},
		{ID: "3", Role: model.RoleEmployee},
		{ID: "4", Role: model.RoleAdmin},
		{ID: "5", Role: model.RoleHR},
		{ID: "6", Role: model.RoleMentor},
	}

	g := GroupUsers(users)
	assert.Len(t, g.Unconfirmed, 1)
	assert.Len(t, g.HR, 1)
	assert.Len(t, g.Mentors, 1)
	assert.Len(t, g.Admins, 1)
	require.Len(t, g.Employees, 2)
	assert.Equal(t, "1", g.Employees[0].ID)
	assert.Equal(t, "3", g.Employees[1].ID)

	empty := GroupUsers(nil)
	assert.NotNil(t, empty.Employees)
	assert.Empty(t, empty.Employees)
}

func TestDashboardService_AdminDashboard(t *testing.T) {
	tests := []struct {
		name            string
		usersErr        error
		ticketsErr      error
		expectedTotal   int
		expectedTickets int
	}{
		{name: "Both loaded", expectedTotal: 2, expectedTickets: 1},
		{name: "Users fail", usersErr: errors.New("Error 500"), expectedTotal: 0, expectedTickets: 1},
		{name: "Tickets fail", ticketsErr: errors.New("Error 500"), expectedTotal: 2, expectedTickets: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mocks.MockPortalAPI{}
			if tt.usersErr != nil {
				api.On("ListUsers", mock.Anything).Return(nil, tt.usersErr)
			} else {
				api.On("ListUsers", mock.Anything).Return([]model.User{
					{ID: "1", Role: model.RoleUnconfirmed},
					{ID: "2", Role: model.RoleHR},
				}, nil)
			}
			if tt.ticketsErr != nil {
				api.On("Requests", mock.Anything).Return(nil, tt.ticketsErr)
			} else {
				api.On("Requests", mock.Anything).Return([]model.Ticket{{ID: "r1", Status: "open"}}, nil)
			}

			d := NewDashboardService(api, "Org").AdminDashboard(context.Background())
			assert.Equal(t, tt.expectedTotal, d.Total)
			assert.Len(t, d.Tickets, tt.expectedTickets)
			assert.NotNil(t, d.Tickets)
		})
	}
}

func TestDashboardService_CreateUser(t *testing.T) {
	api := &mocks.MockPortalAPI{}
	api.On("CreateUser", mock.Anything, portal.NewUser{
		FullName:         "Ann",
		Email:            "ann@corp",
		Password:         "pw",
		Role:             model.RoleEmployee,
		OrganizationName: "Org",
	}).Return(&model.User{ID: "u1", Role: model.RoleEmployee}, nil).Once()
	s := NewDashboardService(api, "Org")

	user, err := s.CreateUser(context.Background(), NewUserRequest{FullName: "Ann", Email: "ann@corp", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	_, err = s.CreateUser(context.Background(), NewUserRequest{FullName: " ", Email: "x@corp", Password: "pw"})
	assert.ErrorIs(t, err, ErrInvalidValue)
	api.AssertExpectations(t)
}

func TestDashboardService_ApproveAndReject(t *testing.T) {
	api := &mocks.MockPortalAPI{}
	api.On("ApproveUser", mock.Anything, "u1", model.RoleMentor).
		Return(&model.User{ID: "u1", Role: model.RoleMentor}, nil)
	api.On("RejectRequest", mock.Anything, "r1").Return(&portal.APIError{Status: 404, Message: "Ticket not found"})
	s := NewDashboardService(api, "Org")

	user, err := s.ApproveUser(context.Background(), "u1", model.RoleMentor)
	require.NoError(t, err)
	assert.Equal(t, model.RoleMentor, user.Role)

	_, err = s.ApproveUser(context.Background(), "u1", model.RoleUnconfirmed)
	assert.ErrorIs(t, err, ErrInvalidValue)

	err = s.RejectRequest(context.Background(), "r1")
	assert.Equal(t, 404, portal.StatusOf(err))

	assert.ErrorIs(t, s.RejectRequest(context.Background(), ""), ErrInvalidValue)
}
