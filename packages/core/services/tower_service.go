package services

import (
	"fmt"
	"strings"

	"towerhub-api/packages/core/authz"
	"towerhub-api/packages/core/models"
	"towerhub-api/packages/core/ranking"
	"towerhub-api/packages/core/utils"

	"gorm.io/gorm"
)

const (
	towerCodeAttempts  = 5
	announcementsLimit = 50
)

type TowerService struct {
	db            *gorm.DB
	progression   *ProgressionService
	notifications *NotificationService
}

func NewTowerService(db *gorm.DB, progression *ProgressionService, notifications *NotificationService) *TowerService {
	return &TowerService{
		db:            db,
		progression:   progression,
		notifications: notifications,
	}
}

func (s *TowerService) require(userID uint, caps ...authz.Capability) error {
	return authz.NewAuthorizer(s.db).Require(userID, caps...)
}

func (s *TowerService) GetTower(towerID uint) (*models.Tower, error) {
	var tower models.Tower
	if err := first(s.db, &tower, "tower", towerID); err != nil {
		return nil, err
	}
	return &tower, nil
}

func (s *TowerService) member(towerID, memberID uint) (*models.TowerMember, error) {
	var m models.TowerMember
	if err := first(s.db.Where("tower_id = ?", towerID), &m, "member", memberID); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *TowerService) memberByUser(towerID, userID uint) (*models.TowerMember, error) {
	var m models.TowerMember
	if err := first(s.db.Where("tower_id = ? AND user_id = ? AND approved = ?", towerID, userID, true), &m, "member"); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create founds a tower. The creator becomes its leader and an approved
// co-leader member.
func (s *TowerService) Create(userID uint, req models.CreateTowerRequest) (*models.Tower, error) {
	name := strings.TrimSpace(req.Name)

	var count int64
	if err := s.db.Model(&models.TowerMember{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, Conflict("you already belong to a tower")
	}
	if err := s.db.Model(&models.Tower{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, Conflict("tower name already exists")
	}

	code, err := s.uniqueCode()
	if err != nil {
		return nil, err
	}

	tower := &models.Tower{
		Name:       name,
		Code:       code,
		LeaderID:   userID,
		MaxTeams:   models.DefaultTowerMaxTeams,
		MaxMembers: models.DefaultTowerMaxMembers,
		Level:      1,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tower).Error; err != nil {
			return err
		}
		return tx.Create(&models.TowerMember{
			TowerID:  tower.ID,
			UserID:   userID,
			Role:     models.TowerRoleCoLeader,
			Approved: true,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.progression.AwardBadgeQuietly(userID, models.BadgeTowerOwner)
	s.progression.UpdateAchievementQuietly(userID, models.AchievementTowerCreated, 1)
	return tower, nil
}

func (s *TowerService) uniqueCode() (string, error) {
	for i := 0; i < towerCodeAttempts; i++ {
		code, err := utils.GenerateTowerCode()
		if err != nil {
			return "", err
		}
		var count int64
		if err := s.db.Unscoped().Model(&models.Tower{}).Where("code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique tower code after %d attempts", towerCodeAttempts)
}

// Join files a pending membership request using the tower invite code.
func (s *TowerService) Join(userID uint, code string) (*models.TowerMember, error) {
	var tower models.Tower
	if err := first(s.db.Where("code = ?", strings.ToUpper(strings.TrimSpace(code))), &tower, "tower"); err != nil {
		if IsNotFound(err) {
			return nil, NotFound("invalid tower code")
		}
		return nil, err
	}

	var existing models.TowerMember
	err := s.db.Where("user_id = ?", userID).First(&existing).Error
	if err == nil {
		if existing.TowerID == tower.ID {
			return nil, Conflict("you already requested to join this tower")
		}
		return nil, Conflict("you already belong to a tower")
	}
	if !isRecordNotFound(err) {
		return nil, err
	}

	var approved int64
	if err := s.db.Model(&models.TowerMember{}).Where("tower_id = ? AND approved = ?", tower.ID, true).Count(&approved).Error; err != nil {
		return nil, err
	}
	if approved >= int64(tower.MaxMembers) {
		return nil, Conflict("tower is full")
	}

	member := &models.TowerMember{TowerID: tower.ID, UserID: userID, Role: models.TowerRoleMember}
	if err := s.db.Create(member).Error; err != nil {
		return nil, err
	}

	var player models.Player
	s.db.Select("id", "username").First(&player, userID)
	s.notifications.Send(tower.LeaderID, models.NotificationTowerJoinRequest, "New join request",
		fmt.Sprintf("%s wants to join %s.", player.Username, tower.Name),
		map[string]interface{}{"towerId": tower.ID, "memberId": member.ID}, &userID)

	return member, nil
}

func (s *TowerService) ApproveMember(actorID, towerID, memberID uint) (*models.TowerMember, error) {
	if err := s.require(actorID, authz.TowerAdmin(towerID)); err != nil {
		return nil, err
	}
	tower, err := s.GetTower(towerID)
	if err != nil {
		return nil, err
	}
	m, err := s.member(towerID, memberID)
	if err != nil {
		return nil, err
	}
	if m.Approved {
		return m, nil
	}

	var approved int64
	if err := s.db.Model(&models.TowerMember{}).Where("tower_id = ? AND approved = ?", towerID, true).Count(&approved).Error; err != nil {
		return nil, err
	}
	if approved >= int64(tower.MaxMembers) {
		return nil, Conflict("tower is full")
	}

	if err := s.db.Model(m).Update("approved", true).Error; err != nil {
		return nil, err
	}
	m.Approved = true

	s.notifications.Send(m.UserID, models.NotificationTowerMemberApproved, "Welcome aboard",
		fmt.Sprintf("Your request to join %s was approved.", tower.Name),
		map[string]interface{}{"towerId": towerID}, &actorID)
	return m, nil
}

// RemoveMember kicks a member, pending or approved, and drops them from
// the tower's teams.
func (s *TowerService) RemoveMember(actorID, towerID, memberID uint) error {
	if err := s.require(actorID, authz.TowerAdmin(towerID)); err != nil {
		return err
	}
	m, err := s.member(towerID, memberID)
	if err != nil {
		return err
	}
	return s.removeMembership(towerID, m)
}

// Leave removes the caller's own membership. The owner has to delete the
// tower instead.
func (s *TowerService) Leave(userID, towerID uint) error {
	var m models.TowerMember
	if err := first(s.db.Where("tower_id = ? AND user_id = ?", towerID, userID), &m, "membership"); err != nil {
		return err
	}
	return s.removeMembership(towerID, &m)
}

func (s *TowerService) removeMembership(towerID uint, m *models.TowerMember) error {
	tower, err := s.GetTower(towerID)
	if err != nil {
		return err
	}
	if m.UserID == tower.LeaderID {
		return Invalid("the tower owner cannot leave or be removed")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		teamIDs := tx.Model(&models.Team{}).Select("id").Where("tower_id = ?", towerID)
		if err := tx.Where("user_id = ? AND team_id IN (?)", m.UserID, teamIDs).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Team{}).
			Where("tower_id = ? AND captain_id = ?", towerID, m.UserID).
			Update("captain_id", nil).Error; err != nil {
			return err
		}
		if tower.CoLeaderID != nil && *tower.CoLeaderID == m.UserID {
			if err := tx.Model(tower).Update("co_leader_id", nil).Error; err != nil {
				return err
			}
		}
		return tx.Delete(m).Error
	})
}

// AddCoLeader gives an approved member the CO_LEADER role.
func (s *TowerService) AddCoLeader(actorID, towerID, userID uint) (*models.TowerMember, error) {
	if err := s.require(actorID, authz.TowerAdmin(towerID)); err != nil {
		return nil, err
	}
	m, err := s.memberByUser(towerID, userID)
	if err != nil {
		return nil, err
	}
	return s.setRole(actorID, towerID, m, models.TowerRoleCoLeader)
}

func (s *TowerService) Promote(actorID, towerID, memberID uint) (*models.TowerMember, error) {
	if err := s.require(actorID, authz.TowerAdmin(towerID)); err != nil {
		return nil, err
	}
	m, err := s.member(towerID, memberID)
	if err != nil {
		return nil, err
	}
	if !m.Approved {
		return nil, Invalid("member is not approved yet")
	}
	if m.Role != models.TowerRoleMember {
		return nil, Invalid("only members can be promoted to elite")
	}
	return s.setRole(actorID, towerID, m, models.TowerRoleElite)
}

func (s *TowerService) Demote(actorID, towerID, memberID uint) (*models.TowerMember, error) {
	if err := s.require(actorID, authz.TowerAdmin(towerID)); err != nil {
		return nil, err
	}
	tower, err := s.GetTower(towerID)
	if err != nil {
		return nil, err
	}
	m, err := s.member(towerID, memberID)
	if err != nil {
		return nil, err
	}
	if m.UserID == tower.LeaderID {
		return nil, Invalid("the tower owner cannot be demoted")
	}
	if m.Role == models.TowerRoleMember {
		return nil, Invalid("member already has the lowest role")
	}
	if tower.CoLeaderID != nil && *tower.CoLeaderID == m.UserID {
		if err := s.db.Model(tower).Update("co_leader_id", nil).Error; err != nil {
			return nil, err
		}
	}
	return s.setRole(actorID, towerID, m, models.TowerRoleMember)
}

func (s *TowerService) setRole(actorID, towerID uint, m *models.TowerMember, role string) (*models.TowerMember, error) {
	if err := s.db.Model(m).Update("role", role).Error; err != nil {
		return nil, err
	}
	m.Role = role
	s.notifications.Send(m.UserID, models.NotificationTowerRoleChanged, "Tower role updated",
		fmt.Sprintf("Your role is now %s.", role),
		map[string]interface{}{"towerId": towerID, "role": role}, &actorID)
	return m, nil
}

// AssignCoLeader names the single co-leader shown on the tower.
func (s *TowerService) AssignCoLeader(actorID, towerID, userID uint) (*models.Tower, error) {
	if err := s.require(actorID, authz.IsOwner{TowerID: towerID}); err != nil {
		return nil, err
	}
	tower, err := s.GetTower(towerID)
	if err != nil {
		return nil, err
	}
	if userID == tower.LeaderID {
		return nil, Invalid("the owner cannot be the co-leader")
	}
	m, err := s.memberByUser(towerID, userID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(tower).Update("co_leader_id", userID).Error; err != nil {
			return err
		}
		return tx.Model(m).Update("role", models.TowerRoleCoLeader).Error
	})
	if err != nil {
		return nil, err
	}
	tower.CoLeaderID = &userID

	s.notifications.Send(userID, models.NotificationTowerRoleChanged, "You are co-leader",
		fmt.Sprintf("You are now the co-leader of %s.", tower.Name),
		map[string]interface{}{"towerId": towerID, "role": models.TowerRoleCoLeader}, &actorID)
	return tower, nil
}

func (s *TowerService) RemoveCoLeader(actorID, towerID uint) (*models.Tower, error) {
	if err := s.require(actorID, authz.IsOwner{TowerID: towerID}); err != nil {
		return nil, err
	}
	tower, err := s.GetTower(towerID)
	if err != nil {
		return nil, err
	}
	if tower.CoLeaderID == nil {
		return nil, Invalid("tower has no co-leader")
	}
	coLeaderID := *tower.CoLeaderID

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(tower).Update("co_leader_id", nil).Error; err != nil {
			return err
		}
		return tx.Model(&models.TowerMember{}).
			Where("tower_id = ? AND user_id = ?", towerID, coLeaderID).
			Update("role", models.TowerRoleMember).Error
	})
	if err != nil {
		return nil, err
	}
	tower.CoLeaderID = nil
	return tower, nil
}

// Delete removes an empty tower for good, freeing its name and code.
func (s *TowerService) Delete(actorID, towerID uint) error {
	if err := s.require(actorID, authz.IsOwner{TowerID: towerID}); err != nil {
		return err
	}
	var teams int64
	if err := s.db.Model(&models.Team{}).Where("tower_id = ?", towerID).Count(&teams).Error; err != nil {
		return err
	}
	if teams > 0 {
		return Invalid("delete the tower's teams first")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tower_id = ?", towerID).Delete(&models.TowerAnnouncement{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tower_id = ?", towerID).Delete(&models.TowerMember{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.Tower{}, towerID).Error
	})
}

func (s *TowerService) UpdateSettings(actorID, towerID uint, req models.UpdateTowerSettingsRequest) (*models.Tower, error) {
	if err := s.require(actorID, authz.TowerAdmin(towerID)); err != nil {
		return nil, err
	}
	tower, err := s.GetTower(towerID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != tower.Name {
			var count int64
			if err := s.db.Model(&models.Tower{}).Where("name = ? AND id <> ?", name, towerID).Count(&count).Error; err != nil {
				return nil, err
			}
			if count > 0 {
				return nil, Conflict("tower name already exists")
			}
			updates["name"] = name
		}
	}
	if req.LogoURL != nil {
		updates["logo_url"] = *req.LogoURL
	}
	if req.BannerURL != nil {
		updates["banner_url"] = *req.BannerURL
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.MaxTeams != nil {
		var teams int64
		if err := s.db.Model(&models.Team{}).Where("tower_id = ?", towerID).Count(&teams).Error; err != nil {
			return nil, err
		}
		if int64(*req.MaxTeams) < teams {
			return nil, Invalid("maxTeams is below the current number of teams (%d)", teams)
		}
		updates["max_teams"] = *req.MaxTeams
	}
	if req.MaxMembers != nil {
		var members int64
		if err := s.db.Model(&models.TowerMember{}).Where("tower_id = ? AND approved = ?", towerID, true).Count(&members).Error; err != nil {
			return nil, err
		}
		if int64(*req.MaxMembers) < members {
			return nil, Invalid("maxMembers is below the current number of members (%d)", members)
		}
		updates["max_members"] = *req.MaxMembers
	}

	if len(updates) > 0 {
		if err := s.db.Model(tower).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetTower(towerID)
}

func (s *TowerService) Overview(towerID uint) (*models.TowerOverview, error) {
	var tower models.Tower
	if err := first(s.db.Preload("Leader").Preload("CoLeader"), &tower, "tower", towerID); err != nil {
		return nil, err
	}

	var members []models.TowerMember
	if err := s.db.Where("tower_id = ? AND approved = ?", towerID, true).
		Preload("Player").
		Order("role ASC").Order("joined_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}

	var teams []models.Team
	if err := s.db.Where("tower_id = ?", towerID).
		Preload("Captain").
		Preload("Members.Player").
		Order("id ASC").
		Find(&teams).Error; err != nil {
		return nil, err
	}

	regs, err := s.activeRegistrations(towerID)
	if err != nil {
		return nil, err
	}

	stats := models.TowerStats{
		TotalMembers:  int64(len(members)),
		TotalTeams:    int64(len(teams)),
		ActiveEntries: int64(len(regs)),
	}
	for _, m := range members {
		if m.Player != nil {
			stats.TotalKills += m.Player.Kills
			stats.TotalMVPs += m.Player.MvpCount
		}
	}

	return &models.TowerOverview{
		Tower:         tower,
		Members:       members,
		Teams:         teams,
		Registrations: regs,
		Stats:         stats,
	}, nil
}

// activeRegistrations are pending or approved entries of the tower's teams
// in tournaments that have not finished.
func (s *TowerService) activeRegistrations(towerID uint) ([]models.TournamentRegistration, error) {
	var regs []models.TournamentRegistration
	err := s.db.
		Joins("JOIN teams ON teams.id = tournament_registrations.team_id AND teams.deleted_at IS NULL").
		Joins("JOIN tournaments ON tournaments.id = tournament_registrations.tournament_id AND tournaments.deleted_at IS NULL").
		Where("teams.tower_id = ?", towerID).
		Where("tournament_registrations.status IN ?", []string{models.RegistrationPending, models.RegistrationApproved}).
		Where("tournaments.status IN ?", models.OngoingStatuses).
		Preload("Tournament").
		Preload("Team").
		Order("tournament_registrations.created_at DESC").
		Find(&regs).Error
	return regs, err
}

// Members lists approved members. Pending requests are only included for
// tower admins.
func (s *TowerService) Members(viewerID, towerID uint) (*models.TowerMembersResponse, error) {
	if _, err := s.GetTower(towerID); err != nil {
		return nil, err
	}

	var rows []models.TowerMember
	if err := s.db.Where("tower_id = ?", towerID).
		Preload("Player").
		Order("joined_at ASC").Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	isAdmin := false
	if viewerID != 0 {
		ok, err := authz.NewAuthorizer(s.db).Allowed(viewerID, authz.TowerAdmin(towerID))
		if err != nil {
			return nil, err
		}
		isAdmin = ok
	}

	resp := &models.TowerMembersResponse{
		TowerID: towerID,
		Members: []models.TowerMemberView{},
		Pending: []models.TowerMemberView{},
	}
	for _, m := range rows {
		if m.Player == nil {
			continue
		}
		metrics := ranking.Derive(m.Player.ScoreRecord())
		view := models.TowerMemberView{
			MemberID: m.ID,
			Role:     m.Role,
			Approved: m.Approved,
			JoinedAt: m.JoinedAt,
			Player:   *m.Player,
			KDRatio:  metrics.KDRatio,
			WinRate:  metrics.WinRate,
		}
		switch {
		case m.Approved:
			resp.Members = append(resp.Members, view)
		case isAdmin:
			resp.Pending = append(resp.Pending, view)
		}
	}
	return resp, nil
}

func (s *TowerService) TeamsStatus(towerID uint) ([]models.TeamStatus, error) {
	if _, err := s.GetTower(towerID); err != nil {
		return nil, err
	}

	var teams []models.Team
	if err := s.db.Where("tower_id = ?", towerID).
		Preload("Captain").
		Preload("Members.Player").
		Order("id ASC").
		Find(&teams).Error; err != nil {
		return nil, err
	}

	regs, err := s.activeRegistrations(towerID)
	if err != nil {
		return nil, err
	}
	byTeam := make(map[uint][]models.TournamentRegistration)
	for _, r := range regs {
		byTeam[r.TeamID] = append(byTeam[r.TeamID], r)
	}

	out := make([]models.TeamStatus, 0, len(teams))
	for _, t := range teams {
		active := byTeam[t.ID]
		if active == nil {
			active = []models.TournamentRegistration{}
		}
		out = append(out, models.TeamStatus{
			Team:                t,
			MemberCount:         len(t.Members),
			ActiveRegistrations: active,
			Aggregate:           ranking.AggregateTeam(t.MemberRecords()),
		})
	}
	return out, nil
}

// Tournaments lists every registration of the tower's teams.
func (s *TowerService) Tournaments(towerID uint) ([]models.TournamentRegistration, error) {
	if _, err := s.GetTower(towerID); err != nil {
		return nil, err
	}
	var regs []models.TournamentRegistration
	err := s.db.
		Joins("JOIN teams ON teams.id = tournament_registrations.team_id").
		Where("teams.tower_id = ?", towerID).
		Preload("Tournament").
		Preload("Team").
		Order("tournament_registrations.created_at DESC").
		Find(&regs).Error
	return regs, err
}

// Leaderboard ranks the tower's approved members and its leader by
// points. Ranks start at 1.
func (s *TowerService) Leaderboard(towerID uint) ([]models.TowerMemberRankEntry, error) {
	var tower models.Tower
	if err := first(s.db.Preload("Leader"), &tower, "tower", towerID); err != nil {
		return nil, err
	}

	var members []models.TowerMember
	if err := s.db.Where("tower_id = ? AND approved = ?", towerID, true).Preload("Player").Find(&members).Error; err != nil {
		return nil, err
	}

	players := make(map[uint]models.Player)
	roles := make(map[uint]string)
	if tower.Leader != nil {
		players[tower.LeaderID] = *tower.Leader
		roles[tower.LeaderID] = models.TowerRoleOwner
	}
	for _, m := range members {
		if m.Player == nil {
			continue
		}
		if _, dup := players[m.UserID]; dup {
			continue
		}
		players[m.UserID] = *m.Player
		roles[m.UserID] = m.Role
	}

	records := make([]ranking.ScoreRecord, 0, len(players))
	for _, p := range players {
		records = append(records, p.ScoreRecord())
	}
	ranking.SortByPoints(records)

	out := make([]models.TowerMemberRankEntry, 0, len(records))
	for _, ranked := range ranking.RankPage(records, 0) {
		out = append(out, models.TowerMemberRankEntry{
			Rank:    ranked.Rank,
			Role:    roles[ranked.Record.ID],
			Player:  players[ranked.Record.ID],
			KDRatio: ranked.Metrics.KDRatio,
			WinRate: ranked.Metrics.WinRate,
		})
	}
	return out, nil
}

func (s *TowerService) Announcements(towerID uint) ([]models.TowerAnnouncement, error) {
	if _, err := s.GetTower(towerID); err != nil {
		return nil, err
	}
	var list []models.TowerAnnouncement
	err := s.db.Where("tower_id = ?", towerID).
		Preload("Author").
		Order("created_at DESC").Order("id DESC").
		Limit(announcementsLimit).
		Find(&list).Error
	return list, err
}

func (s *TowerService) CreateAnnouncement(actorID, towerID uint, req models.CreateAnnouncementRequest) (*models.TowerAnnouncement, error) {
	if err := s.require(actorID, authz.TowerAdmin(towerID)); err != nil {
		return nil, err
	}
	tower, err := s.GetTower(towerID)
	if err != nil {
		return nil, err
	}

	a := &models.TowerAnnouncement{
		TowerID:  towerID,
		AuthorID: actorID,
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
	}
	if err := s.db.Create(a).Error; err != nil {
		return nil, err
	}

	var memberIDs []uint
	if err := s.db.Model(&models.TowerMember{}).
		Where("tower_id = ? AND approved = ? AND user_id <> ?", towerID, true, actorID).
		Pluck("user_id", &memberIDs).Error; err != nil {
		return nil, err
	}
	batch := make([]models.Notification, 0, len(memberIDs))
	for _, id := range memberIDs {
		batch = append(batch, NewNotification(id, models.NotificationTowerAnnouncement,
			tower.Name+": "+a.Title, a.Content,
			map[string]interface{}{"towerId": towerID, "announcementId": a.ID}, &actorID))
	}
	s.notifications.SendMany(batch)
	return a, nil
}
