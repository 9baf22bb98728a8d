package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleVendor     Role = "vendor"
	RoleEvaluator  Role = "evaluator"
	RoleSupervisor Role = "supervisor"
	RoleClient     Role = "client"
	RoleSystem     Role = "system"
)

func (r Role) Valid() bool {
	switch r {
	case RoleVendor, RoleEvaluator, RoleSupervisor, RoleClient, RoleSystem:
		return true
	}
	return false
}

// Identity names who performed an action.
type Identity struct {
	UserID int64 `json:"userId"`
	Role   Role  `json:"role"`
}

type Actor interface {
	Identity() Identity
	IsActive() bool
	DisplayName() string
}

// Zone is a department/province/district location. Empty parts are unset.
type Zone struct {
	Department string
	Province   string
	District   string
}

func (z Zone) IsZero() bool {
	return z.Department == "" && z.Province == "" && z.District == ""
}

// Covers reports whether a location falls inside z. An unset zone covers
// everything; each assigned level must match, unset levels match anything.
func (z Zone) Covers(location Zone) bool {
	if z.IsZero() {
		return true
	}
	if z.Department != "" && !strings.EqualFold(z.Department, location.Department) {
		return false
	}
	if z.Province != "" && !strings.EqualFold(z.Province, location.Province) {
		return false
	}
	if z.District != "" && !strings.EqualFold(z.District, location.District) {
		return false
	}
	return true
}

// Authority is held by evaluators and supervisors.
type Authority struct {
	Ceiling decimal.Decimal
}

func (a Authority) CanApprove(amount decimal.Decimal) bool {
	return amount.LessThanOrEqual(a.Ceiling)
}

// Staff is any vendor, evaluator or supervisor account. Role specific data
// lives in Zone and Authority.
type Staff struct {
	ID        int64
	Role      Role
	Name      string
	Active    bool
	Zone      Zone
	Authority *Authority
}

func (s Staff) Identity() Identity {
	return Identity{UserID: s.ID, Role: s.Role}
}

func (s Staff) IsActive() bool {
	return s.Active
}

func (s Staff) DisplayName() string {
	return s.Name
}

func (s Staff) CanEvaluate() bool {
	return (s.Role == RoleEvaluator || s.Role == RoleSupervisor) && s.Authority != nil
}
