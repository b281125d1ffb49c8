package user

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/nabha/core"
)

// Roles
const (
	// Admin
	RoleAdmin          = "admin:"
	RoleAdminOwner     = "admin:owner"
	RoleAdminPrincipal = "admin:principal"

	// Teacher
	RoleTeacher = "teacher:"

	// Student
	RoleStudent = "student:"
)

var (
	AdminRoles   = []string{RoleAdmin, RoleAdminOwner, RoleAdminPrincipal}
	TeacherRoles = []string{RoleTeacher}
	StudentRoles = []string{RoleStudent}
	AllRoles     = getAllRoles()

	rolePriorities = map[string]int{
		// Admins: 30 - 21
		RoleAdminOwner:     30,
		RoleAdminPrincipal: 29,
		RoleAdmin:          21,

		// Teachers: 20 - 11
		RoleTeacher: 11,

		// Students: 10 - 1
		RoleStudent: 1,
	}
)

func getAllRoles() []string {
	all := make([]string, 0, 5)
	all = append(all, AdminRoles...)
	all = append(all, TeacherRoles...)
	all = append(all, StudentRoles...)
	return all
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	Roles        []string  `json:"roles" db:"-"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	SchoolID     string    `json:"school_id" db:"school_id"`
	ClassName    string    `json:"class_name" db:"class_name"`
	RollNumber   string    `json:"roll_number" db:"roll_number"`
	PinHash      []byte    `json:"-" db:"pin_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login" db:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// SetPin hashes a student's PIN. An account without one cannot log in with class and roll number.
func (u *User) SetPin(pin string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PinHash = hash
	return nil
}

func (u *User) CheckPin(pin string) error {
	if len(u.PinHash) == 0 {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return bcrypt.CompareHashAndPassword(u.PinHash, []byte(pin))
}

func (u *User) RoleStartsWith(prefix string) bool {
	for _, role := range u.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.RoleStartsWith(RoleAdmin)
}

func (u *User) IsTeacher() bool {
	return u.RoleStartsWith(RoleTeacher)
}

func (u *User) IsStudent() bool {
	return u.RoleStartsWith(RoleStudent)
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string   `json:"name" validate:"required"`
	Username        string   `json:"username" validate:"omitempty,min=3,alphanum_"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Password        string   `json:"password" validate:"required"`
	PasswordConfirm string   `json:"password_confirm" validate:"required,eqfield=Password"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
}

func (nu *NewUser) Validate() error {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	return core.Validate.Struct(nu)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name            string   `json:"name"`
	Username        string   `json:"username" validate:"omitempty,min=3,alphanum_"`
	Email           string   `json:"email" validate:"omitempty,email"`
	IsActive        *bool    `json:"is_active"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
	Password        string   `json:"password" validate:"omitempty"`
	PasswordConfirm string   `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(origUsr User) error {
	if name := core.CleanString(uu.Name); name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}
	if uname := core.CleanString(uu.Username, true /* lower */); uname != "" {
		uu.Username = uname
	} else {
		uu.Username = origUsr.Username
	}
	if email := core.CleanString(uu.Email, true /* lower */); email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}
	if uu.Roles == nil {
		uu.Roles = origUsr.Roles
	}
	return core.Validate.Struct(uu)
}

// LoginCredentials are posted by clients to open a session.
type LoginCredentials struct {
	Username string `json:"username" validate:"required"` // username or email
	Password string `json:"password" validate:"required"`
}

func (lc *LoginCredentials) Validate() error {
	lc.Username = core.CleanString(lc.Username, true /* lower */)
	return core.Validate.Struct(lc)
}

// NewStudent registers a student who logs in with class, roll number and PIN.
type NewStudent struct {
	Name       string `json:"name" validate:"required"`
	SchoolID   string `json:"school_id" validate:"required"`
	ClassName  string `json:"class_name" validate:"required,max=50"`
	RollNumber string `json:"roll_number" validate:"required,max=20,alphanum"`
	Pin        string `json:"pin" validate:"required,len=4,numeric"`
}

func (ns *NewStudent) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.SchoolID = core.CleanString(ns.SchoolID)
	ns.ClassName = core.CleanString(ns.ClassName)
	ns.RollNumber = core.CleanString(ns.RollNumber)
	return core.Validate.Struct(ns)
}

// ClassRoll identifies a student within a school class.
type ClassRoll struct {
	SchoolID   string `json:"school_id" validate:"required"`
	ClassName  string `json:"class_name" validate:"required"`
	RollNumber string `json:"roll_number" validate:"required"`
}

func (cr *ClassRoll) clean() {
	cr.SchoolID = core.CleanString(cr.SchoolID)
	cr.ClassName = core.CleanString(cr.ClassName)
	cr.RollNumber = core.CleanString(cr.RollNumber)
}

// StudentCredentials are posted by students who log in with their PIN.
type StudentCredentials struct {
	ClassRoll
	Pin string `json:"pin" validate:"required"`
}

func (sc *StudentCredentials) Validate() error {
	sc.clean()
	return core.Validate.Struct(sc)
}

// GetFilter selects a single User; the first non-empty field wins.
type GetFilter struct {
	ID              string
	Username        string
	Email           string
	UsernameOrEmail []string // [username, email]; a single value matches either column
	ClassRoll       *ClassRoll
}

type QueryFilter struct {
	Search      string    `query:"search"`
	Roles       []string  `query:"role"` // role prefixes, OR-ed
	IsActive    *bool     `query:"is_active"`
	SchoolID    string    `query:"school_id"`
	ClassName   string    `query:"class_name"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.IsActive == nil && qf.SchoolID == "" && qf.ClassName == "" &&
		qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.SchoolID = core.CleanString(qf.SchoolID)
	qf.ClassName = core.CleanString(qf.ClassName)
}
