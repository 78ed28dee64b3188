package services

import (
	"context"
	"testing"
	"time"

	"smartwash-backend/internal/adapters/persistence/models"
	"smartwash-backend/internal/adapters/persistence/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestMachineService(db *gorm.DB) *MachineService {
	return NewMachineService(repositories.NewMachineRepository(db))
}

func TestMachineCreate(t *testing.T) {
	db := newTestDB(t)
	svc := newTestMachineService(db)
	ctx := context.Background()

	machine, err := svc.Create(ctx, &CreateMachineInput{
		Name:        "Washer One",
		MachineCode: "WM-001",
		Location:    "Building A - Floor 1",
		MqttTopic:   "smartwash/machines/WM-001",
	})
	require.NoError(t, err)

	assert.NotZero(t, machine.ID)
	assert.Equal(t, models.MachineStatusAvailable, machine.Status)
	assert.False(t, machine.LastSeen.IsZero())
}

func TestMachineCreateMissingFields(t *testing.T) {
	db := newTestDB(t)
	svc := newTestMachineService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, &CreateMachineInput{
		Name:        "Washer One",
		MachineCode: "WM-001",
	})
	assert.ErrorIs(t, err, ErrMachineMissingField)

	_, err = svc.Create(ctx, &CreateMachineInput{
		MachineCode: "WM-001",
		Location:    "Building A",
		MqttTopic:   "smartwash/machines/WM-001",
	})
	assert.ErrorIs(t, err, ErrMachineMissingField)
}

func TestMachineCreateDuplicateCode(t *testing.T) {
	db := newTestDB(t)
	svc := newTestMachineService(db)
	ctx := context.Background()

	seedMachine(t, db, "WM-001")

	_, err := svc.Create(ctx, &CreateMachineInput{
		Name:        "Another Washer",
		MachineCode: "WM-001",
		Location:    "Building B",
		MqttTopic:   "smartwash/machines/WM-001-b",
	})
	assert.ErrorIs(t, err, ErrMachineCodeExists)
}

func TestMachineListFilters(t *testing.T) {
	db := newTestDB(t)
	svc := newTestMachineService(db)
	ctx := context.Background()

	seedMachine(t, db, "WM-001")
	seedMachine(t, db, "WM-002")
	offline := seedMachine(t, db, "WM-003")
	offline.Status = models.MachineStatusOffline
	offline.Location = "Dormitory C"
	require.NoError(t, db.Save(offline).Error)

	out, err := svc.List(ctx, "", "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.Total)

	out, err = svc.List(ctx, models.MachineStatusAvailable, "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), out.Total)

	// location matches as a case-insensitive substring
	out, err = svc.List(ctx, "", "dormitory", 1, 20)
	require.NoError(t, err)
	require.Equal(t, int64(1), out.Total)
	assert.Equal(t, "WM-003", out.Machines[0].MachineCode)
}

func TestMachineListPagination(t *testing.T) {
	db := newTestDB(t)
	svc := newTestMachineService(db)
	ctx := context.Background()

	for _, code := range []string{"WM-001", "WM-002", "WM-003", "WM-004", "WM-005"} {
		seedMachine(t, db, code)
	}

	out, err := svc.List(ctx, "", "", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), out.Total)
	assert.Len(t, out.Machines, 2)
	assert.Equal(t, 3, out.TotalPages)

	out, err = svc.List(ctx, "", "", 3, 2)
	require.NoError(t, err)
	assert.Len(t, out.Machines, 1)
}

func TestMachineGetByCode(t *testing.T) {
	db := newTestDB(t)
	svc := newTestMachineService(db)
	ctx := context.Background()

	seedMachine(t, db, "WM-001")

	machine, err := svc.GetByCode(ctx, "WM-001")
	require.NoError(t, err)
	assert.Equal(t, "Washer WM-001", machine.Name)

	_, err = svc.GetByCode(ctx, "WM-999")
	assert.ErrorIs(t, err, ErrMachineNotFound)
}

func TestMachineUpdateAllowList(t *testing.T) {
	db := newTestDB(t)
	svc := newTestMachineService(db)
	ctx := context.Background()

	seedMachine(t, db, "WM-001")

	machine, err := svc.Update(ctx, "WM-001", &UpdateMachineInput{
		Fields: map[string]interface{}{
			"name":     "Renamed Washer",
			"location": "Building B",
			"status":   models.MachineStatusOffline,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Washer", machine.Name)
	assert.Equal(t, "Building B", machine.Location)
	assert.Equal(t, models.MachineStatusOffline, machine.Status)

	// one disallowed field rejects the whole update
	_, err = svc.Update(ctx, "WM-001", &UpdateMachineInput{
		Fields: map[string]interface{}{
			"name":        "Sneaky",
			"machineCode": "WM-777",
		},
	})
	assert.ErrorIs(t, err, ErrInvalidMachineField)

	machine, err = svc.GetByCode(ctx, "WM-001")
	require.NoError(t, err)
	assert.Equal(t, "Renamed Washer", machine.Name)
}

func TestMachineUpdateRejectsUnknownStatus(t *testing.T) {
	db := newTestDB(t)
	svc := newTestMachineService(db)
	ctx := context.Background()

	seedMachine(t, db, "WM-001")

	_, err := svc.Update(ctx, "WM-001", &UpdateMachineInput{
		Fields: map[string]interface{}{"status": "exploded"},
	})
	assert.ErrorIs(t, err, ErrBadMachineStatus)

	machine, err := svc.GetByCode(ctx, "WM-001")
	require.NoError(t, err)
	assert.Equal(t, models.MachineStatusAvailable, machine.Status)
}

func TestMachineDelete(t *testing.T) {
	db := newTestDB(t)
	svc := newTestMachineService(db)
	ctx := context.Background()

	seedMachine(t, db, "WM-001")

	require.NoError(t, svc.Delete(ctx, "WM-001"))
	assert.ErrorIs(t, svc.Delete(ctx, "WM-001"), ErrMachineNotFound)

	_, err := svc.GetByCode(ctx, "WM-001")
	assert.ErrorIs(t, err, ErrMachineNotFound)
}

func TestMachineSetStatus(t *testing.T) {
	db := newTestDB(t)
	svc := newTestMachineService(db)
	ctx := context.Background()

	seeded := seedMachine(t, db, "WM-001")
	before := seeded.LastSeen

	time.Sleep(10 * time.Millisecond)

	machine, err := svc.SetStatus(ctx, "WM-001", models.MachineStatusError)
	require.NoError(t, err)
	assert.Equal(t, models.MachineStatusError, machine.Status)
	assert.True(t, machine.LastSeen.After(before))

	_, err = svc.SetStatus(ctx, "WM-001", "broken")
	assert.ErrorIs(t, err, ErrBadMachineStatus)

	_, err = svc.SetStatus(ctx, "WM-999", models.MachineStatusOffline)
	assert.ErrorIs(t, err, ErrMachineNotFound)
}
