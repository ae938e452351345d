// Package authz evaluates who may mutate towers, teams and tournaments.
// Services call Authorizer.Require before every mutating operation.
package authz

import (
	"errors"
	"fmt"
	"strings"

	authModels "towerhub-api/packages/auth/models"
	"towerhub-api/packages/core/models"

	"gorm.io/gorm"
)

var ErrForbidden = errors.New("forbidden")

// Capability is a single permission check against the current database state.
type Capability interface {
	Name() string
	Check(db *gorm.DB, userID uint) (bool, error)
}

// IsOwner holds for the leader of the tower.
type IsOwner struct {
	TowerID uint
}

func (c IsOwner) Name() string { return "tower owner" }

func (c IsOwner) Check(db *gorm.DB, userID uint) (bool, error) {
	var tower models.Tower
	err := db.Select("id", "leader_id").First(&tower, c.TowerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return tower.LeaderID == userID, nil
}

// IsCoLeader holds for the assigned co-leader and for approved members
// holding the CO_LEADER role.
type IsCoLeader struct {
	TowerID uint
}

func (c IsCoLeader) Name() string { return "tower co-leader" }

func (c IsCoLeader) Check(db *gorm.DB, userID uint) (bool, error) {
	var tower models.Tower
	err := db.Select("id", "co_leader_id").First(&tower, c.TowerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if tower.CoLeaderID != nil && *tower.CoLeaderID == userID {
		return true, nil
	}

	var count int64
	err = db.Model(&models.TowerMember{}).
		Where("tower_id = ? AND user_id = ? AND role = ? AND approved = ?", c.TowerID, userID, models.TowerRoleCoLeader, true).
		Count(&count).Error
	return count > 0, err
}

// IsOrganizer holds for the organizers of the tournament. With a zero
// TournamentID it checks the platform organizer role instead, which is what
// creating a tournament requires.
type IsOrganizer struct {
	TournamentID uint
}

func (c IsOrganizer) Name() string {
	if c.TournamentID == 0 {
		return "organizer"
	}
	return "tournament organizer"
}

func (c IsOrganizer) Check(db *gorm.DB, userID uint) (bool, error) {
	if c.TournamentID == 0 {
		return hasRole(db, userID, authModels.RoleOrganizer)
	}
	var count int64
	err := db.Table("tournament_organizers").
		Where("tournament_id = ? AND player_id = ?", c.TournamentID, userID).
		Count(&count).Error
	return count > 0, err
}

type IsSuperAdmin struct{}

func (IsSuperAdmin) Name() string { return "super admin" }

func (IsSuperAdmin) Check(db *gorm.DB, userID uint) (bool, error) {
	return hasRole(db, userID, authModels.RoleSuperAdmin)
}

type anyOf []Capability

// AnyOf holds when at least one of caps holds.
func AnyOf(caps ...Capability) Capability {
	return anyOf(caps)
}

func (a anyOf) Name() string {
	names := make([]string, 0, len(a))
	for _, c := range a {
		names = append(names, c.Name())
	}
	return strings.Join(names, " or ")
}

func (a anyOf) Check(db *gorm.DB, userID uint) (bool, error) {
	for _, c := range a {
		ok, err := c.Check(db, userID)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// TowerAdmin is the owner or a co-leader of the tower.
func TowerAdmin(towerID uint) Capability {
	return AnyOf(IsOwner{TowerID: towerID}, IsCoLeader{TowerID: towerID})
}

// TournamentStaff is an organizer of the tournament or a super admin.
func TournamentStaff(tournamentID uint) Capability {
	return AnyOf(IsOrganizer{TournamentID: tournamentID}, IsSuperAdmin{})
}

func hasRole(db *gorm.DB, userID uint, role string) (bool, error) {
	var user authModels.User
	err := db.Select("id", "roles", "enabled").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.Enabled && user.HasRole(role), nil
}

// Authorizer runs capability checks on a database handle.
type Authorizer struct {
	db *gorm.DB
}

func NewAuthorizer(db *gorm.DB) *Authorizer {
	return &Authorizer{db: db}
}

// Allowed reports whether every capability holds.
func (a *Authorizer) Allowed(userID uint, caps ...Capability) (bool, error) {
	for _, c := range caps {
		ok, err := c.Check(a.db, userID)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// Require returns an error wrapping ErrForbidden naming the first
// capability that does not hold.
func (a *Authorizer) Require(userID uint, caps ...Capability) error {
	for _, c := range caps {
		ok, err := c.Check(a.db, userID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: requires %s", ErrForbidden, c.Name())
		}
	}
	return nil
}
