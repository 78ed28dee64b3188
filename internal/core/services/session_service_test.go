package services

import (
	"context"
	"testing"

	"smartwash-backend/internal/adapters/persistence/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSession(t *testing.T) {
	db := newTestDB(t)
	svc := newTestSessionService(db)

	user := seedUser(t, db, "alice", 100000)
	machine := seedMachine(t, db, "WM-001")
	seedPlan(t, db, 500, 0, true)
	quick := seedWashMode(t, db, "Quick", 10)
	rinse := seedWashMode(t, db, "Rinse", 5)

	session, err := svc.StartSession(context.Background(), user.ID, &StartSessionInput{
		MachineCode: machine.MachineCode,
		WashModeIDs: []uint{quick.ID, rinse.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, models.SessionStatusRunning, session.Status)
	assert.Equal(t, models.PaymentStatusPaid, session.PaymentStatus)
	assert.Equal(t, 15, session.Duration)
	assert.Equal(t, float64(500), session.Price)
	assert.Equal(t, float64(7500), session.TotalCost)
	assert.NotNil(t, session.StartTime)
	assert.Equal(t, machine.MqttTopic, session.MqttTopic)

	// Machine invariant: in_use with the session attached.
	var updated models.Machine
	require.NoError(t, db.First(&updated, machine.ID).Error)
	assert.Equal(t, models.MachineStatusInUse, updated.Status)
	require.NotNil(t, updated.CurrentSessionID)
	assert.Equal(t, session.ID, *updated.CurrentSessionID)

	// Wallet debited and the ledger entry tagged with the session.
	var wallet models.Wallet
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&wallet).Error)
	assert.Equal(t, float64(92500), wallet.Balance)

	var txn models.Transaction
	require.NoError(t, db.Where("user_id = ? AND type = ?", user.ID, models.TransactionTypeDeduct).First(&txn).Error)
	require.NotNil(t, txn.SessionID)
	assert.Equal(t, session.ID, *txn.SessionID)

	// Start produces a session and a payment notification.
	var notifyCount int64
	require.NoError(t, db.Model(&models.Notification{}).Where("user_id = ?", user.ID).Count(&notifyCount).Error)
	assert.Equal(t, int64(2), notifyCount)
}

func TestStartSessionInsufficientBalance(t *testing.T) {
	db := newTestDB(t)
	svc := newTestSessionService(db)

	user := seedUser(t, db, "poor", 1000)
	machine := seedMachine(t, db, "WM-002")
	seedPlan(t, db, 500, 0, true)
	mode := seedWashMode(t, db, "Quick", 10)

	_, err := svc.StartSession(context.Background(), user.ID, &StartSessionInput{
		MachineCode: machine.MachineCode,
		WashModeIDs: []uint{mode.ID},
	})
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// The whole unit must roll back: machine free, wallet untouched, no session.
	var updated models.Machine
	require.NoError(t, db.First(&updated, machine.ID).Error)
	assert.Equal(t, models.MachineStatusAvailable, updated.Status)
	assert.Nil(t, updated.CurrentSessionID)

	var wallet models.Wallet
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&wallet).Error)
	assert.Equal(t, float64(1000), wallet.Balance)

	var sessionCount int64
	require.NoError(t, db.Model(&models.Session{}).Count(&sessionCount).Error)
	assert.Equal(t, int64(0), sessionCount)
}

func TestStartSessionMachineBusy(t *testing.T) {
	db := newTestDB(t)
	svc := newTestSessionService(db)

	alice := seedUser(t, db, "alice", 100000)
	bob := seedUser(t, db, "bob", 100000)
	machine := seedMachine(t, db, "WM-003")
	seedPlan(t, db, 500, 0, true)
	mode := seedWashMode(t, db, "Quick", 10)

	input := &StartSessionInput{
		MachineCode: machine.MachineCode,
		WashModeIDs: []uint{mode.ID},
	}

	_, err := svc.StartSession(context.Background(), alice.ID, input)
	require.NoError(t, err)

	_, err = svc.StartSession(context.Background(), bob.ID, input)
	assert.ErrorIs(t, err, ErrMachineBusy)

	// The loser is not billed.
	var wallet models.Wallet
	require.NoError(t, db.Where("user_id = ?", bob.ID).First(&wallet).Error)
	assert.Equal(t, float64(100000), wallet.Balance)
}

func TestStartSessionValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newTestSessionService(db)

	user := seedUser(t, db, "alice", 100000)
	machine := seedMachine(t, db, "WM-004")
	mode := seedWashMode(t, db, "Quick", 10)

	ctx := context.Background()

	_, err := svc.StartSession(ctx, user.ID, &StartSessionInput{
		MachineCode: machine.MachineCode,
	})
	assert.ErrorIs(t, err, ErrNoWashModesSelected)

	_, err = svc.StartSession(ctx, user.ID, &StartSessionInput{
		MachineCode: "NOPE",
		WashModeIDs: []uint{mode.ID},
	})
	assert.ErrorIs(t, err, ErrMachineNotFound)

	// No plan seeded yet, so the default lookup fails.
	_, err = svc.StartSession(ctx, user.ID, &StartSessionInput{
		MachineCode: machine.MachineCode,
		WashModeIDs: []uint{mode.ID},
	})
	assert.ErrorIs(t, err, ErrNoDefaultPlan)

	seedPlan(t, db, 500, 0, true)

	_, err = svc.StartSession(ctx, user.ID, &StartSessionInput{
		MachineCode: machine.MachineCode,
		WashModeIDs: []uint{mode.ID, 999},
	})
	assert.ErrorIs(t, err, ErrWashModeNotFound)
}

func TestStartSessionInactivePlanRejected(t *testing.T) {
	db := newTestDB(t)
	svc := newTestSessionService(db)

	user := seedUser(t, db, "alice", 100000)
	machine := seedMachine(t, db, "WM-005")
	mode := seedWashMode(t, db, "Quick", 10)

	inactive := seedPlan(t, db, 500, 0, false)
	inactive.IsActive = false
	require.NoError(t, db.Save(inactive).Error)

	_, err := svc.StartSession(context.Background(), user.ID, &StartSessionInput{
		MachineCode: machine.MachineCode,
		WashModeIDs: []uint{mode.ID},
		PricePlanID: &inactive.ID,
	})
	assert.ErrorIs(t, err, ErrPlanUnavailable)
}

func TestStartSessionDurationOverPlanMaximum(t *testing.T) {
	db := newTestDB(t)
	svc := newTestSessionService(db)

	user := seedUser(t, db, "alice", 100000)
	machine := seedMachine(t, db, "WM-006")
	seedPlan(t, db, 500, 10, true)
	long := seedWashMode(t, db, "Long", 15)

	_, err := svc.StartSession(context.Background(), user.ID, &StartSessionInput{
		MachineCode: machine.MachineCode,
		WashModeIDs: []uint{long.ID},
	})
	assert.ErrorIs(t, err, ErrDurationExceedsPlan)
}

func TestStartSessionDurationIncludesStages(t *testing.T) {
	db := newTestDB(t)
	svc := newTestSessionService(db)

	user := seedUser(t, db, "alice", 100000)
	machine := seedMachine(t, db, "WM-007")
	seedPlan(t, db, 100, 0, true)

	mode := &models.WashMode{
		Name:        "Staged",
		Description: "Staged cycle",
		Duration:    5,
		Stages: []models.WaterStage{
			{StageOrder: 1, Level: 2, Duration: 8},
			{StageOrder: 2, Level: 1, Duration: 4},
		},
	}
	require.NoError(t, db.Create(mode).Error)

	session, err := svc.StartSession(context.Background(), user.ID, &StartSessionInput{
		MachineCode: machine.MachineCode,
		WashModeIDs: []uint{mode.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 17, session.Duration)
	assert.Equal(t, float64(1700), session.TotalCost)
}

func TestEndSession(t *testing.T) {
	db := newTestDB(t)
	svc := newTestSessionService(db)

	user := seedUser(t, db, "alice", 100000)
	machine := seedMachine(t, db, "WM-008")
	seedPlan(t, db, 500, 0, true)
	mode := seedWashMode(t, db, "Quick", 10)

	session, err := svc.StartSession(context.Background(), user.ID, &StartSessionInput{
		MachineCode: machine.MachineCode,
		WashModeIDs: []uint{mode.ID},
	})
	require.NoError(t, err)

	ended, err := svc.EndSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusCompleted, ended.Status)
	assert.NotNil(t, ended.EndTime)

	var updated models.Machine
	require.NoError(t, db.First(&updated, machine.ID).Error)
	assert.Equal(t, models.MachineStatusAvailable, updated.Status)
	assert.Nil(t, updated.CurrentSessionID)
}

func TestCancelSessionRefundsPaidSession(t *testing.T) {
	db := newTestDB(t)
	svc := newTestSessionService(db)

	user := seedUser(t, db, "alice", 100000)
	machine := seedMachine(t, db, "WM-009")
	seedPlan(t, db, 500, 0, true)
	mode := seedWashMode(t, db, "Quick", 10)

	session, err := svc.StartSession(context.Background(), user.ID, &StartSessionInput{
		MachineCode: machine.MachineCode,
		WashModeIDs: []uint{mode.ID},
	})
	require.NoError(t, err)

	cancelled, err := svc.CancelSession(context.Background(), user.ID, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusCancelled, cancelled.Status)
	assert.Equal(t, models.PaymentStatusRefunded, cancelled.PaymentStatus)
	assert.NotNil(t, cancelled.EndTime)

	// The full cost comes back.
	var wallet models.Wallet
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&wallet).Error)
	assert.Equal(t, float64(100000), wallet.Balance)

	var refund models.Transaction
	require.NoError(t, db.Where("user_id = ? AND type = ?", user.ID, models.TransactionTypeRefund).First(&refund).Error)
	assert.Equal(t, float64(5000), refund.Amount)

	var updated models.Machine
	require.NoError(t, db.First(&updated, machine.ID).Error)
	assert.Equal(t, models.MachineStatusAvailable, updated.Status)
}

func TestCancelSessionRejectsTerminalStates(t *testing.T) {
	db := newTestDB(t)
	svc := newTestSessionService(db)

	user := seedUser(t, db, "alice", 100000)
	machine := seedMachine(t, db, "WM-010")
	seedPlan(t, db, 500, 0, true)
	mode := seedWashMode(t, db, "Quick", 10)

	session, err := svc.StartSession(context.Background(), user.ID, &StartSessionInput{
		MachineCode: machine.MachineCode,
		WashModeIDs: []uint{mode.ID},
	})
	require.NoError(t, err)

	_, err = svc.EndSession(context.Background(), session.ID)
	require.NoError(t, err)

	_, err = svc.CancelSession(context.Background(), user.ID, session.ID)
	assert.ErrorIs(t, err, ErrInvalidSessionState)
}

func TestCancelSessionScopedToOwner(t *testing.T) {
	db := newTestDB(t)
	svc := newTestSessionService(db)

	alice := seedUser(t, db, "alice", 100000)
	mallory := seedUser(t, db, "mallory", 100000)
	machine := seedMachine(t, db, "WM-011")
	seedPlan(t, db, 500, 0, true)
	mode := seedWashMode(t, db, "Quick", 10)

	session, err := svc.StartSession(context.Background(), alice.ID, &StartSessionInput{
		MachineCode: machine.MachineCode,
		WashModeIDs: []uint{mode.ID},
	})
	require.NoError(t, err)

	// Someone else's session looks like it does not exist.
	_, err = svc.CancelSession(context.Background(), mallory.ID, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGetSessionJoinsDetails(t *testing.T) {
	db := newTestDB(t)
	svc := newTestSessionService(db)

	user := seedUser(t, db, "alice", 100000)
	machine := seedMachine(t, db, "WM-012")
	seedPlan(t, db, 500, 0, true)
	mode := seedWashMode(t, db, "Quick", 10)

	session, err := svc.StartSession(context.Background(), user.ID, &StartSessionInput{
		MachineCode: machine.MachineCode,
		WashModeIDs: []uint{mode.ID},
	})
	require.NoError(t, err)

	got, err := svc.GetSession(context.Background(), user.ID, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, machine.Name, got.MachineName)
	assert.Equal(t, machine.Location, got.MachineLocation)
}

func TestGetUserSessionsFiltersByStatus(t *testing.T) {
	db := newTestDB(t)
	svc := newTestSessionService(db)

	user := seedUser(t, db, "alice", 100000)
	seedPlan(t, db, 500, 0, true)
	mode := seedWashMode(t, db, "Quick", 10)

	first := seedMachine(t, db, "WM-013")
	second := seedMachine(t, db, "WM-014")

	s1, err := svc.StartSession(context.Background(), user.ID, &StartSessionInput{
		MachineCode: first.MachineCode,
		WashModeIDs: []uint{mode.ID},
	})
	require.NoError(t, err)
	_, err = svc.StartSession(context.Background(), user.ID, &StartSessionInput{
		MachineCode: second.MachineCode,
		WashModeIDs: []uint{mode.ID},
	})
	require.NoError(t, err)

	_, err = svc.EndSession(context.Background(), s1.ID)
	require.NoError(t, err)

	all, err := svc.GetUserSessions(context.Background(), user.ID, "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)

	running, err := svc.GetUserSessions(context.Background(), user.ID, models.SessionStatusRunning, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), running.Total)
	assert.Equal(t, models.SessionStatusRunning, running.Sessions[0].Status)
}
