package fakebackend

import (
	"fmt"

	"github.com/jrsteele09/go-internship-session/users"
	"github.com/rs/zerolog/log"
)

// DemoPassword is the password of every demo account.
const DemoPassword = "Internship2024"

// AddUser stores user with password, replacing any user with the same id.
func (s *Server) AddUser(user users.User, password string) (*users.User, error) {
	if err := users.ValidatePasswordStrength(password); err != nil {
		return nil, fmt.Errorf("[fakebackend AddUser] %w", err)
	}
	hash, err := users.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("[fakebackend AddUser] failed to hash password: %w", err)
	}
	user.PasswordHash = hash
	if err := s.users.Upsert(&user); err != nil {
		return nil, fmt.Errorf("[fakebackend AddUser] failed to store user: %w", err)
	}
	return &user, nil
}

// InitialiseDemoUsers creates one account per role unless users already exist.
func (s *Server) InitialiseDemoUsers() error {
	existing, err := s.users.List(0, 1)
	if err != nil {
		return fmt.Errorf("[fakebackend InitialiseDemoUsers] failed to list users: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	demo := []users.User{
		{
			Name: "Ada", Surname: "Admin", Email: "admin@portal.local", Role: users.RoleAdmin,
			Permissions: []users.Permission{
				users.PermissionManageFaculties, users.PermissionManageDepartments, users.PermissionManageReasons,
				users.PermissionManageFAQ, users.PermissionManageChatbot, users.PermissionViewAllApplications,
			},
		},
		{
			Name: "Carl", Surname: "Chair", Email: "chair@portal.local", Role: users.RoleCommissionChair,
			Permissions:  []users.Permission{users.PermissionAssignApplications, users.PermissionReviewApplications},
			DepartmentID: "dep-cs", FacultyID: "fac-eng",
		},
		{
			Name: "Mia", Surname: "Member", Email: "member@portal.local", Role: users.RoleCommissionMember,
			Permissions: []users.Permission{users.PermissionReviewApplications},
		},
		{
			Name: "Sam", Surname: "Student", Email: "student@portal.local", Role: users.RoleStudent,
			Permissions:  []users.Permission{users.PermissionSubmitApplications, users.PermissionUploadDocuments},
			DepartmentID: "dep-cs",
		},
	}

	for _, user := range demo {
		if _, err := s.AddUser(user, DemoPassword); err != nil {
			return err
		}
	}

	log.Info().Msg("Demo accounts:")
	for _, user := range demo {
		log.Info().Msgf("   %-22s %-18s password: %s", user.Email, user.Role, DemoPassword)
	}
	return nil
}
