package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/communitysquad/eventhub/internal/model"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		caller   []string
		required []string
		wantErr  error
	}{
		{
			name:     "no required roles admits any caller",
			caller:   nil,
			required: nil,
		},
		{
			name:     "matching role admits",
			caller:   []string{"viewer", "admin"},
			required: []string{"admin"},
		},
		{
			name:     "any one of the required roles suffices",
			caller:   []string{"viewer"},
			required: []string{"admin", "viewer"},
		},
		{
			name:     "disjoint role sets deny",
			caller:   []string{"viewer"},
			required: []string{"admin"},
			wantErr:  ErrForbidden,
		},
		{
			name:     "empty caller roles deny when roles are required",
			caller:   nil,
			required: []string{"viewer"},
			wantErr:  ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.caller, tt.required)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestPrincipalIsAdmin(t *testing.T) {
	require.True(t, Principal{Roles: []string{model.RoleViewer, model.RoleAdmin}}.IsAdmin())
	require.False(t, Principal{Roles: []string{model.RoleViewer}}.IsAdmin())
	require.False(t, Principal{}.IsAdmin())
}
