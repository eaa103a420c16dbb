package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"onboarding_portal/internal/model"
	"onboarding_portal/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	mentorAssignedMarker = "Ментор назначен"
	trackAssignedMarker  = "Назначен"
)

type AssignmentServiceI interface {
	MentorBoard(ctx context.Context, search string) MentorBoard
	AssignMentor(ctx context.Context, menteeID, mentorID string) (MentorBoard, error)
	TrackBoard(ctx context.Context, search string) TrackBoard
	AssignTrack(ctx context.Context, userID, trackID string) (TrackBoard, error)
	NewMenteeAssignment() *MenteeAssignment
}

type AssignmentService struct {
	api StaffAPI
}

func NewAssignmentService(api StaffAPI) *AssignmentService {
	return &AssignmentService{api: api}
}

type MentorRow struct {
	User model.User `json:"user"`
	// CurrentMentor is the mentor's name, a marker when the mentor is not in
	// the catalog, or empty.
	CurrentMentor string       `json:"current_mentor"`
	Options       []model.User `json:"options"`
}

type MentorBoard struct {
	Rows    []MentorRow  `json:"rows"`
	Mentors []model.User `json:"mentors"`
}

// MentorBoard lists every non-admin user with the mentors they could be given.
func (s *AssignmentService) MentorBoard(ctx context.Context, search string) MentorBoard {
	users, err := s.api.Employees(ctx)
	if err != nil {
		logger.Component("assignment").Warn("failed to load employees", zap.Error(err))
		users = nil
	}
	return buildMentorBoard(users, search)
}

func buildMentorBoard(users []model.User, search string) MentorBoard {
	board := MentorBoard{Rows: []MentorRow{}, Mentors: []model.User{}}

	names := make(map[string]string)
	for _, u := range users {
		if u.Role == model.RoleMentor {
			board.Mentors = append(board.Mentors, u)
			names[u.ID] = u.FullName
		}
	}

	for _, u := range users {
		if u.Role == model.RoleAdmin || !matches(search, u.FullName) {
			continue
		}

		row := MentorRow{User: u, Options: make([]model.User, 0, len(board.Mentors))}
		for _, m := range board.Mentors {
			if m.ID != u.ID {
				row.Options = append(row.Options, m)
			}
		}
		if u.HasMentor() {
			row.CurrentMentor = mentorAssignedMarker
			if name, ok := names[*u.MentorID]; ok && name != "" {
				row.CurrentMentor = name
			}
		}
		board.Rows = append(board.Rows, row)
	}
	return board
}

// AssignMentor binds a mentor right away and returns the reloaded board.
func (s *AssignmentService) AssignMentor(ctx context.Context, menteeID, mentorID string) (MentorBoard, error) {
	if menteeID == "" || mentorID == "" {
		return MentorBoard{}, fmt.Errorf("%w: mentee and mentor are required", ErrInvalidValue)
	}
	if menteeID == mentorID {
		return MentorBoard{}, fmt.Errorf("%w: a user cannot mentor themselves", ErrInvalidValue)
	}

	if err := s.api.AssignMentor(ctx, menteeID, mentorID); err != nil {
		return MentorBoard{}, fmt.Errorf("failed to assign mentor: %w", err)
	}
	return s.MentorBoard(ctx, ""), nil
}

type TrackRow struct {
	User model.User `json:"user"`
	// CurrentTrack is the track name, a marker when the track is not in the
	// catalog, or empty.
	CurrentTrack string `json:"current_track"`
}

type TrackBoard struct {
	Rows   []TrackRow    `json:"rows"`
	Tracks []model.Track `json:"tracks"`
	Shown  int           `json:"shown"`
}

// TrackBoard loads employees and tracks together. If either load fails both
// lists come back empty.
func (s *AssignmentService) TrackBoard(ctx context.Context, search string) TrackBoard {
	var users []model.User
	var tracks []model.Track

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.api.Employees(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		tracks, err = s.api.ListTracks(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Component("assignment").Warn("failed to load track assignment data", zap.Error(err))
		users, tracks = nil, nil
	}

	return buildTrackBoard(users, tracks, search)
}

func buildTrackBoard(users []model.User, tracks []model.Track, search string) TrackBoard {
	board := TrackBoard{Rows: []TrackRow{}, Tracks: []model.Track{}}
	board.Tracks = append(board.Tracks, tracks...)

	names := make(map[string]string, len(tracks))
	for _, t := range tracks {
		names[t.ID] = t.Name
	}

	for _, u := range users {
		if !u.Role.In(model.RoleEmployee, model.RoleMentor) {
			continue
		}
		if !matches(search, u.FullName) && !matches(search, u.Email) {
			continue
		}

		row := TrackRow{User: u}
		if u.HasTrack() {
			row.CurrentTrack = trackAssignedMarker
			if name, ok := names[*u.TrackID]; ok && name != "" {
				row.CurrentTrack = name
			}
		}
		board.Rows = append(board.Rows, row)
	}
	board.Shown = len(board.Rows)
	return board
}

func (s *AssignmentService) AssignTrack(ctx context.Context, userID, trackID string) (TrackBoard, error) {
	if userID == "" || trackID == "" {
		return TrackBoard{}, fmt.Errorf("%w: user and track are required", ErrInvalidValue)
	}
	if err := s.api.AssignTrack(ctx, userID, trackID); err != nil {
		return TrackBoard{}, fmt.Errorf("failed to assign track: %w", err)
	}
	return s.TrackBoard(ctx, ""), nil
}

func (s *AssignmentService) NewMenteeAssignment() *MenteeAssignment {
	return &MenteeAssignment{api: s.api}
}

// MenteeAssignment is the mentor's own view of their mentees. Mentees without
// a track get a track only after an explicit Begin, Choose, Confirm sequence.
type MenteeAssignment struct {
	mu          sync.Mutex
	api         StaffAPI
	mentees     []model.User
	tracks      []model.Track
	assigningTo string
	chosen      string
}

func (m *MenteeAssignment) Load(ctx context.Context) {
	var mentees []model.User
	var tracks []model.Track

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		mentees, err = m.api.Mentees(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		tracks, err = m.api.ListTracks(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Component("assignment").Warn("failed to load mentees", zap.Error(err))
		mentees, tracks = nil, nil
	}

	m.mu.Lock()
	m.mentees = mentees
	m.tracks = tracks
	m.mu.Unlock()
}

// Begin opens the inline track choice for one mentee. Any other open choice
// is dropped.
func (m *MenteeAssignment) Begin(userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user := m.mentee(userID)
	if user == nil {
		return ErrUserNotFound
	}
	if user.HasTrack() {
		return ErrTrackAlreadySet
	}
	m.assigningTo = userID
	m.chosen = ""
	return nil
}

func (m *MenteeAssignment) Choose(trackID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.assigningTo == "" {
		return fmt.Errorf("%w: no mentee selected", ErrInvalidValue)
	}
	if trackID != "" && !m.hasTrack(trackID) {
		return ErrTrackNotFound
	}
	m.chosen = trackID
	return nil
}

func (m *MenteeAssignment) Cancel() {
	m.mu.Lock()
	m.assigningTo = ""
	m.chosen = ""
	m.mu.Unlock()
}

// Confirm assigns the chosen track and reloads the mentees. It reports false
// without calling the portal when no mentee or no track is chosen.
func (m *MenteeAssignment) Confirm(ctx context.Context) (bool, error) {
	m.mu.Lock()
	userID, trackID := m.assigningTo, m.chosen
	m.mu.Unlock()

	if userID == "" || trackID == "" {
		return false, nil
	}

	if err := m.api.AssignTrack(ctx, userID, trackID); err != nil {
		return false, fmt.Errorf("failed to assign track: %w", err)
	}

	mentees, err := m.api.Mentees(ctx)
	if err != nil {
		logger.Component("assignment").Warn("failed to reload mentees", zap.Error(err))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.assigningTo = ""
	m.chosen = ""
	if err == nil {
		m.mentees = mentees
	}
	return true, nil
}

func (m *MenteeAssignment) mentee(id string) *model.User {
	for i := range m.mentees {
		if m.mentees[i].ID == id {
			return &m.mentees[i]
		}
	}
	return nil
}

func (m *MenteeAssignment) hasTrack(id string) bool {
	for _, t := range m.tracks {
		if t.ID == id {
			return true
		}
	}
	return false
}

type MenteeRow struct {
	User         model.User `json:"user"`
	CurrentTrack string     `json:"current_track"`
	Assigning    bool       `json:"assigning"`
}

type MenteeView struct {
	Rows        []MenteeRow   `json:"rows"`
	Tracks      []model.Track `json:"tracks"`
	AssigningTo string        `json:"assigning_to"`
	Chosen      string        `json:"chosen"`
}

func (m *MenteeAssignment) View() MenteeView {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make(map[string]string, len(m.tracks))
	for _, t := range m.tracks {
		names[t.ID] = t.Name
	}

	view := MenteeView{
		Rows:        make([]MenteeRow, 0, len(m.mentees)),
		Tracks:      append([]model.Track{}, m.tracks...),
		AssigningTo: m.assigningTo,
		Chosen:      m.chosen,
	}
	for _, u := range m.mentees {
		row := MenteeRow{User: u, Assigning: u.ID == m.assigningTo}
		if u.HasTrack() {
			row.CurrentTrack = trackAssignedMarker
			if name, ok := names[*u.TrackID]; ok && name != "" {
				row.CurrentTrack = name
			}
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

func matches(search, text string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(search))
}
