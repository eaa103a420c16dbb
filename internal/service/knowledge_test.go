package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"onboarding_portal/internal/model"
	"onboarding_portal/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestKnowledgeService_ListFiles(t *testing.T) {
	api := &mocks.MockPortalAPI{}
	api.On("ListFiles", mock.Anything).Return([]model.KnowledgeFile{
		{ID: "f1", Name: "Регламент отпусков.pdf"},
		{ID: "f2", Name: "Security Policy.docx"},
	}, nil).Once()
	api.On("ListFiles", mock.Anything).Return(nil, errors.New("Error 502")).Once()
	s := NewKnowledgeService(api)

	files := s.ListFiles(context.Background(), "policy")
	require.Len(t, files, 1)
	assert.Equal(t, "f2", files[0].ID)

	files = s.ListFiles(context.Background(), "")
	assert.Empty(t, files)
	assert.NotNil(t, files)
}

func TestKnowledgeService_UploadFile(t *testing.T) {
	tests := []struct {
		name          string
		role          model.Role
		filename      string
		expectedError error
	}{
		{name: "Employee forbidden", role: model.RoleEmployee, filename: "a.pdf", expectedError: ErrForbidden},
		{name: "Unconfirmed forbidden", role: model.RoleUnconfirmed, filename: "a.pdf", expectedError: ErrForbidden},
		{name: "Missing name", role: model.RoleHR, expectedError: ErrInvalidValue},
		{name: "Mentor uploads", role: model.RoleMentor, filename: "a.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mocks.MockPortalAPI{}
			api.On("UploadFile", mock.Anything, "a.pdf", mock.Anything).
				Return(&model.KnowledgeFile{ID: "f1", Name: "a.pdf"}, nil)

			file, err := NewKnowledgeService(api).UploadFile(context.Background(), tt.role, tt.filename, strings.NewReader("%PDF"))
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				api.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "f1", file.ID)
		})
	}
}

func TestKnowledgeService_DeleteFile(t *testing.T) {
	api := &mocks.MockPortalAPI{}
	api.On("DeleteFile", mock.Anything, "f1").Return(nil).Once()
	s := NewKnowledgeService(api)

	assert.ErrorIs(t, s.DeleteFile(context.Background(), model.RoleEmployee, "f1", true), ErrForbidden)
	assert.ErrorIs(t, s.DeleteFile(context.Background(), model.RoleAdmin, "f1", false), ErrConfirmationRequired)
	assert.NoError(t, s.DeleteFile(context.Background(), model.RoleAdmin, "f1", true))
	api.AssertExpectations(t)
}
