package models

// All lists every core model, in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Player{},
		&Tower{},
		&TowerMember{},
		&TowerAnnouncement{},
		&Team{},
		&TeamMember{},
		&Tournament{},
		&TournamentRegistration{},
		&Match{},
		&Proof{},
		&Notification{},
		&OrganizerApplication{},
		&Badge{},
		&UserBadge{},
		&Achievement{},
		&UserAchievement{},
		&RankSnapshot{},
	}
}

type EntityRef struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	LogoURL string `json:"logoUrl"`
}
