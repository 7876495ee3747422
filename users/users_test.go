package users_test

import (
	"testing"

	apperrors "github.com/jrsteele09/go-internship-session/internal/errors"
	"github.com/jrsteele09/go-internship-session/internal/utils"
	"github.com/jrsteele09/go-internship-session/users"
	"github.com/stretchr/testify/require"
)

func TestRolePredicates(t *testing.T) {
	chair := &users.User{ID: "c1", Role: users.RoleCommissionChair}

	require.True(t, chair.IsCommissionChair())
	require.True(t, chair.IsCommission())
	require.False(t, chair.IsCommissionMember())
	require.False(t, chair.IsAdmin())
	require.False(t, chair.IsStudent())
	require.True(t, chair.HasRole(users.RoleAdmin, users.RoleCommissionChair))
	require.False(t, chair.HasRole())
}

func TestPredicatesOnNilUser(t *testing.T) {
	var u *users.User

	require.False(t, u.HasRole(users.RoleStudent))
	require.False(t, u.HasPermission(users.PermissionUploadDocuments))
	require.False(t, u.IsAdmin())
	require.False(t, u.RequiresProfileCompletion())
}

func TestHasPermission(t *testing.T) {
	u := &users.User{Permissions: []users.Permission{users.PermissionReviewApplications}}

	require.True(t, u.HasPermission(users.PermissionReviewApplications))
	require.False(t, u.HasPermission(users.PermissionManageFAQ))
}

func TestRequiresProfileCompletion(t *testing.T) {
	tests := []struct {
		name string
		user users.User
		want bool
	}{
		{"admin without links", users.User{Role: users.RoleAdmin}, false},
		{"student without department", users.User{Role: users.RoleStudent}, true},
		{"student with department", users.User{Role: users.RoleStudent, DepartmentID: "d1"}, false},
		{"member with department only", users.User{Role: users.RoleCommissionMember, DepartmentID: "d1"}, true},
		{"member with faculty only", users.User{Role: users.RoleCommissionMember, FacultyID: "f1"}, true},
		{"chair fully linked", users.User{Role: users.RoleCommissionChair, DepartmentID: "d1", FacultyID: "f1"}, false},
		{"unknown role without department", users.User{Role: "GUEST"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.user.RequiresProfileCompletion())
		})
	}
}

func TestProfileUpdate(t *testing.T) {
	require.True(t, users.ProfileUpdate{}.Empty())

	u := users.User{Name: "A", Surname: "B", Phone: "123"}
	update := users.ProfileUpdate{Name: utils.Ptr("Ana"), DepartmentID: utils.Ptr("d7")}
	require.False(t, update.Empty())

	update.Apply(&u)
	require.Equal(t, "Ana", u.Name)
	require.Equal(t, "B", u.Surname)
	require.Equal(t, "123", u.Phone)
	require.Equal(t, "d7", u.DepartmentID)
	require.Equal(t, "Ana B", u.FullName())
}

func TestValidatePasswordStrength(t *testing.T) {
	require.NoError(t, users.ValidatePasswordStrength("Passw0rdX"))
	require.ErrorContains(t, users.ValidatePasswordStrength("Sh0rt"), "at least 8")
	require.ErrorContains(t, users.ValidatePasswordStrength("password1"), "uppercase")
	require.ErrorContains(t, users.ValidatePasswordStrength("PASSWORD1"), "lowercase")
	require.ErrorContains(t, users.ValidatePasswordStrength("Passwordx"), "number")
	require.ErrorIs(t, users.ValidatePasswordStrength("weak"), apperrors.ErrWeakPassword)
}

func TestPasswordHash(t *testing.T) {
	hash, err := users.HashPassword("Passw0rdX")
	require.NoError(t, err)

	require.True(t, users.CheckPasswordHash("Passw0rdX", hash))
	require.False(t, users.CheckPasswordHash("wrong", hash))
}
