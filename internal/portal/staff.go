package portal

import (
	"context"
	"net/http"
	"net/url"

	"onboarding_portal/internal/model"
)

func (c *Client) Employees(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.Do(ctx, Request{Path: "/hr/employees"}, &users); err != nil {
		return nil, err
	}
	return users, nil
}

type mentorAssignment struct {
	MenteeID string `json:"mentee_id"`
	MentorID string `json:"mentor_id"`
}

func (c *Client) AssignMentor(ctx context.Context, menteeID, mentorID string) error {
	req := Request{
		Method: http.MethodPost,
		Path:   "/hr/assign-mentor",
		Body:   mentorAssignment{MenteeID: menteeID, MentorID: mentorID},
	}
	return c.Do(ctx, req, nil)
}

func (c *Client) Mentees(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.Do(ctx, Request{Path: "/mentor/mentees"}, &users); err != nil {
		return nil, err
	}
	return users, nil
}

type NewUser struct {
	FullName         string     `json:"full_name"`
	Email            string     `json:"email"`
	Password         string     `json:"password"`
	Role             model.Role `json:"role"`
	OrganizationName string     `json:"organization_name"`
}

func (c *Client) CreateUser(ctx context.Context, user NewUser) (*model.User, error) {
	var created model.User
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/admin/users", Body: user}, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Requests lists open registration tickets.
func (c *Client) Requests(ctx context.Context) ([]model.Ticket, error) {
	var tickets []model.Ticket
	if err := c.Do(ctx, Request{Path: "/admin/requests"}, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// ApproveUser grants role to a pending user and resolves their tickets.
func (c *Client) ApproveUser(ctx context.Context, userID string, role model.Role) (*model.User, error) {
	var user model.User
	req := Request{
		Method: http.MethodPost,
		Path:   "/admin/approve-user/" + escape(userID),
		Query:  url.Values{"role": []string{string(role)}},
	}
	if err := c.Do(ctx, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) RejectRequest(ctx context.Context, ticketID string) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: "/admin/requests/" + escape(ticketID) + "/reject"}, nil)
}
