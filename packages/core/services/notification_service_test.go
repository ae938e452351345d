package services

import (
	"testing"

	authModels "towerhub-api/packages/auth/models"
	"towerhub-api/packages/core/models"
	"towerhub-api/packages/core/testutil"

	"github.com/bmizerany/assert"
)

func TestCategoryOf(t *testing.T) {
	cases := map[string]string{
		models.NotificationTournamentCreated:    authModels.NotifyCategoryTournaments,
		models.NotificationRegistrationApproved: authModels.NotifyCategoryTournaments,
		models.NotificationTeamMemberAdded:      authModels.NotifyCategoryTeams,
		models.NotificationTowerAnnouncement:    authModels.NotifyCategoryTowers,
		models.NotificationLevelUp:              authModels.NotifyCategoryAccount,
	}
	for kind, want := range cases {
		assert.Equal(t, want, categoryOf(kind))
	}
}

func TestNotifyRespectsEmailPreferences(t *testing.T) {
	e := newEnv(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")
	assert.Equal(t, nil, e.db.Model(&authModels.User{}).Where("id = ?", alice.ID).
		Updates(map[string]interface{}{"email": "alice@example.com", "notify_towers": false}).Error)

	_, err := e.notifications.Notify(alice.ID, models.NotificationTowerAnnouncement, "Scrims tonight", "8pm", nil, nil)
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(e.mailer.Sent()))

	_, err = e.notifications.Notify(alice.ID, models.NotificationTournamentCreated, "New cup", "Open", nil, nil)
	assert.Equal(t, nil, err)
	// bob has no address
	_, err = e.notifications.Notify(bob.ID, models.NotificationTournamentCreated, "New cup", "Open", nil, nil)
	assert.Equal(t, nil, err)

	sent := e.mailer.Sent()
	assert.Equal(t, 1, len(sent))
	assert.Equal(t, "alice@example.com", sent[0].To)
	assert.Equal(t, "New cup", sent[0].Subject)
}

func TestNotificationInbox(t *testing.T) {
	e := newEnv(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")

	first, err := e.notifications.Notify(alice.ID, models.NotificationLevelUp, "Level up", "Level 2", map[string]int{"level": 2}, nil)
	assert.Equal(t, nil, err)
	_, err = e.notifications.Notify(alice.ID, models.NotificationLevelUp, "Level up", "Level 3", nil, nil)
	assert.Equal(t, nil, err)

	list, err := e.notifications.List(alice.ID, false)
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(list))
	assert.Equal(t, "Level 3", list[0].Message)

	_, err = e.notifications.MarkRead(bob.ID, first.ID)
	assert.T(t, IsNotFound(err))

	read, err := e.notifications.MarkRead(alice.ID, first.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, true, read.Read)

	count, err := e.notifications.UnreadCount(alice.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(1), count)

	unread, err := e.notifications.List(alice.ID, true)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(unread))

	n, err := e.notifications.MarkAllRead(alice.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(1), n)

	assert.Equal(t, KindNotFound, KindOf(e.notifications.Delete(bob.ID, first.ID)))
	assert.Equal(t, nil, e.notifications.Delete(alice.ID, first.ID))
}
