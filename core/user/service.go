package user

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/nabha/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrUserExists         = errors.New("a user with this username or email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRollNumberTaken    = errors.New("a student with this roll number already exists in the class")
)

type (
	Repository interface {
		CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers []User, exec ...core.DBExecutor) error
		CreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.Name, User.Username or User.Email.
		QueryUsers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]User, error)
		GetUser(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (User, error)
		UpdateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		UpdateOrCreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		DeleteUsersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
	}

	Service interface {
		Create(ctx context.Context, nu NewUser) (User, error)
		Login(ctx context.Context, creds LoginCredentials) (User, error)
		// RegisterStudent opens a student account keyed on school, class and roll number.
		RegisterStudent(ctx context.Context, ns NewStudent) (User, error)
		LoginStudent(ctx context.Context, creds StudentCredentials) (User, error)
		// Roster returns the students of a class ordered by roll number.
		Roster(ctx context.Context, schoolID, className string) ([]User, error)
		Get(ctx context.Context, filter GetFilter) (User, error)
		// Query orders by creation date when no ordering is given.
		Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]User, error)
		Update(ctx context.Context, id string, uu UpdateUser) (User, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) checkUniqueness(ctx context.Context, uname, email string, exclUsers ...User) error {
	if err := svc.repo.CheckUsernameUniqueness(ctx, uname, email, exclUsers); err != nil {
		if errors.Cause(err) == ErrUserExists {
			return core.NewValidationError(err,
				core.FieldError{Field: "username", Error: err.Error()},
				core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	if err := nu.Validate(); err != nil {
		return User{}, err
	}
	if err := svc.checkUniqueness(ctx, nu.Username, nu.Email); err != nil {
		return User{}, err
	}

	now := core.NowFunc()
	usr := User{
		Name:      nu.Name,
		Username:  nu.Username,
		Email:     nu.Email,
		IsActive:  true,
		Roles:     nu.Roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *service) Login(ctx context.Context, creds LoginCredentials) (User, error) {
	if err := creds.Validate(); err != nil {
		return User{}, err
	}
	usr, err := svc.repo.GetUser(ctx, GetFilter{UsernameOrEmail: []string{creds.Username}})
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if !usr.IsActive || usr.CheckPassword(creds.Password) != nil {
		return User{}, ErrInvalidCredentials
	}

	usr.LastLogin = core.NowFunc()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *service) RegisterStudent(ctx context.Context, ns NewStudent) (User, error) {
	if err := ns.Validate(); err != nil {
		return User{}, err
	}
	roll := ClassRoll{SchoolID: ns.SchoolID, ClassName: ns.ClassName, RollNumber: ns.RollNumber}
	_, err := svc.repo.GetUser(ctx, GetFilter{ClassRoll: &roll})
	switch {
	case err == nil:
		return User{}, core.NewFieldError("roll_number", ErrRollNumberTaken)
	case errors.Cause(err) != ErrNotFound:
		return User{}, err
	}

	now := core.NowFunc()
	usr := User{
		Name:       ns.Name,
		IsActive:   true,
		Roles:      StudentRoles,
		SchoolID:   ns.SchoolID,
		ClassName:  ns.ClassName,
		RollNumber: ns.RollNumber,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := usr.SetPin(ns.Pin); err != nil {
		return User{}, errors.Wrap(err, "hashing pin")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *service) LoginStudent(ctx context.Context, creds StudentCredentials) (User, error) {
	if err := creds.Validate(); err != nil {
		return User{}, err
	}
	usr, err := svc.repo.GetUser(ctx, GetFilter{ClassRoll: &creds.ClassRoll})
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if !usr.IsActive || !usr.IsStudent() || usr.CheckPin(creds.Pin) != nil {
		return User{}, ErrInvalidCredentials
	}

	usr.LastLogin = core.NowFunc()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *service) Roster(ctx context.Context, schoolID, className string) ([]User, error) {
	filter := &QueryFilter{Roles: StudentRoles, SchoolID: schoolID, ClassName: className}
	filter.Clean()
	if filter.SchoolID == "" || filter.ClassName == "" {
		return []User{}, nil
	}
	return svc.repo.QueryUsers(ctx, filter, []core.DBOrdering{{Field: "roll_number", Ascending: true}, {Field: "name", Ascending: true}})
}

func (svc *service) Get(ctx context.Context, filter GetFilter) (User, error) {
	filter.Username = core.CleanString(filter.Username, true /* lower */)
	filter.Email = core.CleanString(filter.Email, true /* lower */)
	for i, v := range filter.UsernameOrEmail {
		filter.UsernameOrEmail[i] = core.CleanString(v, true /* lower */)
	}
	if filter.ClassRoll != nil {
		filter.ClassRoll.clean()
	}
	return svc.repo.GetUser(ctx, filter)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]User, error) {
	if filter != nil {
		filter.Clean()
	}
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at", Ascending: true}}
	}
	return svc.repo.QueryUsers(ctx, filter, ordering)
}

func (svc *service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	usr, err := svc.repo.GetUser(ctx, GetFilter{ID: id})
	if err != nil {
		return User{}, err
	}
	if err := uu.Validate(usr); err != nil {
		return User{}, err
	}
	if err := svc.checkUniqueness(ctx, uu.Username, uu.Email, usr); err != nil {
		return User{}, err
	}

	usr.Name = uu.Name
	usr.Username = uu.Username
	usr.Email = uu.Email
	usr.Roles = uu.Roles
	if uu.IsActive != nil {
		usr.IsActive = *uu.IsActive
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "hashing password")
		}
	}
	usr.UpdatedAt = core.NowFunc()
	return svc.repo.UpdateUser(ctx, usr)
}
