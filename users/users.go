package users

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	apperrors "github.com/jrsteele09/go-internship-session/internal/errors"
	"github.com/jrsteele09/go-internship-session/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// RoleType is the role tag the backend assigns to a portal user
type RoleType string

const (
	RoleAdmin            RoleType = "ADMIN"             // Manages faculties, departments, rejection reasons, FAQ and chatbot
	RoleCommissionChair  RoleType = "COMMISSION_CHAIR"  // Chairs a department's internship commission, assigns reviewers
	RoleCommissionMember RoleType = "COMMISSION_MEMBER" // Reviews internship applications and documents
	RoleStudent          RoleType = "STUDENT"           // Applies for internships and submits documents
)

// Permission is a capability tag granted by the backend
type Permission string

const (
	PermissionManageFaculties     Permission = "MANAGE_FACULTIES"
	PermissionManageDepartments   Permission = "MANAGE_DEPARTMENTS"
	PermissionManageReasons       Permission = "MANAGE_REJECTION_REASONS"
	PermissionManageFAQ           Permission = "MANAGE_FAQ"
	PermissionManageChatbot       Permission = "MANAGE_CHATBOT"
	PermissionAssignApplications  Permission = "ASSIGN_APPLICATIONS"
	PermissionReviewApplications  Permission = "REVIEW_APPLICATIONS"
	PermissionSubmitApplications  Permission = "SUBMIT_APPLICATIONS"
	PermissionUploadDocuments     Permission = "UPLOAD_DOCUMENTS"
	PermissionViewAllApplications Permission = "VIEW_ALL_APPLICATIONS"
)

type User struct {
	ID           string       `json:"id"`                     // Unique identifier for the user
	Name         string       `json:"name"`                   // First name
	Surname      string       `json:"surname"`                // Last name
	Email        string       `json:"email,omitempty"`        // Login identifier
	Phone        string       `json:"phone,omitempty"`        // Contact number
	Role         RoleType     `json:"role"`                   // Role tag
	Permissions  []Permission `json:"permissions"`            // Capability tags
	DepartmentID string       `json:"departmentId,omitempty"` // Linked department
	FacultyID    string       `json:"facultyId,omitempty"`    // Linked faculty
	PasswordHash string       `json:"-"`                      // Only populated by backends, never serialized
}

// ProfileUpdate carries the fields of a partial profile update. Nil fields
// are left untouched by the backend.
type ProfileUpdate struct {
	Name         *string `json:"name,omitempty"`
	Surname      *string `json:"surname,omitempty"`
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	DepartmentID *string `json:"departmentId,omitempty"`
	FacultyID    *string `json:"facultyId,omitempty"`
}

// Empty reports whether the update changes nothing.
func (p ProfileUpdate) Empty() bool {
	return p == ProfileUpdate{}
}

// Apply copies the set fields of p onto u.
func (p ProfileUpdate) Apply(u *User) {
	utils.Assign(&u.Name, p.Name)
	utils.Assign(&u.Surname, p.Surname)
	utils.Assign(&u.Email, p.Email)
	utils.Assign(&u.Phone, p.Phone)
	utils.Assign(&u.DepartmentID, p.DepartmentID)
	utils.Assign(&u.FacultyID, p.FacultyID)
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.Name + " " + u.Surname)
}

// HasRole returns true if the user holds any of roles
func (u *User) HasRole(roles ...RoleType) bool {
	if u == nil {
		return false
	}
	return slices.Contains(roles, u.Role)
}

// HasPermission returns true if the user was granted permission
func (u *User) HasPermission(permission Permission) bool {
	if u == nil {
		return false
	}
	return slices.Contains(u.Permissions, permission)
}

func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

func (u *User) IsCommissionChair() bool {
	return u.HasRole(RoleCommissionChair)
}

func (u *User) IsCommissionMember() bool {
	return u.HasRole(RoleCommissionMember)
}

// IsCommission returns true for both chairs and members of a commission
func (u *User) IsCommission() bool {
	return u.HasRole(RoleCommissionChair, RoleCommissionMember)
}

func (u *User) IsStudent() bool {
	return u.HasRole(RoleStudent)
}

// RequiresProfileCompletion reports whether the user must finish onboarding
// before using the portal:
//   - administrators never do
//   - commission chairs and members need a department and a faculty
//   - students, and any role the client does not know, need a department
func (u *User) RequiresProfileCompletion() bool {
	if u == nil {
		return false
	}
	switch u.Role {
	case RoleAdmin:
		return false
	case RoleCommissionChair, RoleCommissionMember:
		return u.DepartmentID == "" || u.FacultyID == ""
	default:
		return u.DepartmentID == ""
	}
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: must be at least 8 characters long", apperrors.ErrWeakPassword)
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("%w: must contain at least one uppercase letter", apperrors.ErrWeakPassword)
	}
	if !hasLower {
		return fmt.Errorf("%w: must contain at least one lowercase letter", apperrors.ErrWeakPassword)
	}
	if !hasNumber {
		return fmt.Errorf("%w: must contain at least one number", apperrors.ErrWeakPassword)
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
