package fakeuserrepo

import (
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-internship-session/internal/errors"
	"github.com/jrsteele09/go-internship-session/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

// ErrNotFound is returned for unknown ids and e-mails.
var ErrNotFound = apperrors.ErrUserNotFound

// FakeUserRepo keeps users in memory. Stored users are copied on the way in
// and out so callers can't mutate shared state.
type FakeUserRepo struct {
	users    map[string]users.User
	emailIds map[string]string // email to user id
	lock     sync.RWMutex
}

func NewFakeUserRepo() users.UserRepo {
	return &FakeUserRepo{
		users:    make(map[string]users.User),
		emailIds: make(map[string]string),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func clone(u users.User) *users.User {
	u.Permissions = slices.Clone(u.Permissions)
	return &u
}

func (ur *FakeUserRepo) Upsert(user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if previous, ok := ur.users[user.ID]; ok && emailKey(previous.Email) != emailKey(user.Email) {
		delete(ur.emailIds, emailKey(previous.Email))
	}
	ur.users[user.ID] = *clone(*user)
	ur.emailIds[emailKey(user.Email)] = user.ID
	return nil
}

func (ur *FakeUserRepo) Delete(email string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	userID, ok := ur.emailIds[emailKey(email)]
	if !ok {
		return apperrors.Wrapf(ErrNotFound, "email %s", email)
	}
	delete(ur.emailIds, emailKey(email))
	delete(ur.users, userID)
	return nil
}

func (ur *FakeUserRepo) GetByEmail(email string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	userID, ok := ur.emailIds[emailKey(email)]
	if !ok {
		return nil, apperrors.Wrapf(ErrNotFound, "email %s", email)
	}
	return clone(ur.users[userID]), nil
}

func (ur *FakeUserRepo) GetByID(id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	user, ok := ur.users[id]
	if !ok {
		return nil, apperrors.Wrapf(ErrNotFound, "id %s", id)
	}
	return clone(user), nil
}

func (ur *FakeUserRepo) List(offset, limit int) ([]*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	userList := make([]*users.User, 0, len(ur.users))
	for _, v := range ur.users {
		userList = append(userList, clone(v))
	}

	sort.Slice(userList, func(i, j int) bool {
		return userList[i].ID < userList[j].ID
	})

	if offset < 0 || offset >= len(userList) {
		return nil, nil
	}
	end := len(userList)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return userList[offset:end], nil
}

func (ur *FakeUserRepo) SetPasswordHash(email, hash string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	userID, ok := ur.emailIds[emailKey(email)]
	if !ok {
		return apperrors.Wrapf(ErrNotFound, "email %s", email)
	}
	user := ur.users[userID]
	user.PasswordHash = hash
	ur.users[userID] = user
	return nil
}
