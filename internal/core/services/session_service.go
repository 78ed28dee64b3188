package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smartwash-backend/internal/adapters/persistence/models"
	"smartwash-backend/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Session service errors
var (
	ErrMachineNotFound      = errors.New("machine not found")
	ErrMachineBusy          = errors.New("machine is not available")
	ErrPlanUnavailable      = errors.New("price plan not found or inactive")
	ErrNoDefaultPlan        = errors.New("no default price plan configured")
	ErrWashModeNotFound     = errors.New("wash mode not found")
	ErrSessionNotFound      = errors.New("session not found")
	ErrInvalidSessionState  = errors.New("only pending or running sessions can be cancelled")
	ErrDurationExceedsPlan  = errors.New("total duration exceeds the plan's maximum")
	ErrNoWashModesSelected  = errors.New("at least one wash mode is required")
)

// SessionService coordinates machines, wash modes, price plans and the
// wallet ledger to run a billed usage session. Every state transition runs
// as one database transaction: either all writes land or none do.
type SessionService struct {
	db               *gorm.DB
	sessionRepo      repositories.SessionRepository
	machineRepo      repositories.MachineRepository
	planRepo         repositories.PricePlanRepository
	washModeRepo     repositories.WashModeRepository
	userRepo         repositories.UserRepository
	walletService    *WalletService
	notifyService    *NotificationService
	deviceCommander  DeviceCommander
}

// NewSessionService creates a new session service
func NewSessionService(
	db *gorm.DB,
	sessionRepo repositories.SessionRepository,
	machineRepo repositories.MachineRepository,
	planRepo repositories.PricePlanRepository,
	washModeRepo repositories.WashModeRepository,
	userRepo repositories.UserRepository,
	walletService *WalletService,
	notifyService *NotificationService,
	deviceCommander DeviceCommander,
) *SessionService {
	return &SessionService{
		db:              db,
		sessionRepo:     sessionRepo,
		machineRepo:     machineRepo,
		planRepo:        planRepo,
		washModeRepo:    washModeRepo,
		userRepo:        userRepo,
		walletService:   walletService,
		notifyService:   notifyService,
		deviceCommander: deviceCommander,
	}
}

// StartSessionInput represents start session input
type StartSessionInput struct {
	MachineCode string `json:"machine_code"`
	WashModeIDs []uint `json:"wash_mode_ids"`
	PricePlanID *uint  `json:"price_plan_id"`
	Notes       string `json:"notes"`
}

// SessionListOutput represents a page of sessions
type SessionListOutput struct {
	Sessions   []*models.SessionResponse `json:"sessions"`
	Total      int64                     `json:"total"`
	Page       int                       `json:"page"`
	Limit      int                       `json:"limit"`
	TotalPages int                       `json:"total_pages"`
}

// StartSession reserves the machine, bills the wallet and starts the session
// as one atomic unit. Any failure rolls the whole unit back, leaving the
// machine available, the wallet untouched and no session row behind.
func (s *SessionService) StartSession(ctx context.Context, userID uint, input *StartSessionInput) (*models.Session, error) {
	if len(input.WashModeIDs) == 0 {
		return nil, ErrNoWashModesSelected
	}

	var session *models.Session
	err := s.db.Transaction(func(tx *gorm.DB) error {
		machineRepo := s.machineRepo.WithTx(tx)
		sessionRepo := s.sessionRepo.WithTx(tx)

		// 1. Machine must exist and be available.
		machine, err := machineRepo.GetByCode(ctx, input.MachineCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMachineNotFound
			}
			return err
		}
		if machine.Status != models.MachineStatusAvailable {
			return ErrMachineBusy
		}

		// 2. Resolve the billing plan: explicit and active, or the default.
		plan, err := s.resolvePlan(ctx, tx, input.PricePlanID)
		if err != nil {
			return err
		}

		// 3. All requested wash modes must resolve.
		modes, err := s.washModeRepo.WithTx(tx).GetByIDs(ctx, input.WashModeIDs)
		if err != nil {
			return err
		}
		if len(modes) != len(uniqueIDs(input.WashModeIDs)) {
			return ErrWashModeNotFound
		}

		// 4-5. Duration and cost.
		duration := 0
		for _, mode := range modes {
			duration += mode.TotalDuration()
		}
		if plan.MaxDuration > 0 && duration > plan.MaxDuration {
			return ErrDurationExceedsPlan
		}
		totalCost := plan.RatePerMinute * float64(duration)

		// 6. Balance check before any write.
		balance, err := s.walletService.BalanceTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		if balance < totalCost {
			return ErrInsufficientBalance
		}

		// 7. Create the session in pending.
		session = &models.Session{
			MachineCode:   input.MachineCode,
			UserID:        userID,
			Duration:      duration,
			Status:        models.SessionStatusPending,
			Price:         plan.RatePerMinute,
			TotalCost:     totalCost,
			PaymentStatus: models.PaymentStatusUnpaid,
			MachineStatus: models.MachineStatusInUse,
			MqttTopic:     machine.MqttTopic,
			Notes:         input.Notes,
		}
		if err := sessionRepo.Create(ctx, session); err != nil {
			return err
		}

		// 8. Claim the machine. The guarded update makes concurrent starts
		// against the same machine race safely: the loser sees no row updated.
		claimed, err := machineRepo.Claim(ctx, input.MachineCode, session.ID)
		if err != nil {
			return err
		}
		if !claimed {
			return ErrMachineBusy
		}

		// 9. Debit the wallet, tagged with the session.
		deduct, err := s.walletService.DeductTx(ctx, tx, userID, totalCost, &session.ID,
			fmt.Sprintf("Payment for machine %s session", input.MachineCode))
		if err != nil {
			return err
		}

		// 10. Flip the session to running.
		now := time.Now()
		session.Status = models.SessionStatusRunning
		session.PaymentStatus = models.PaymentStatusPaid
		session.StartTime = &now
		if err := sessionRepo.Update(ctx, session); err != nil {
			return err
		}

		if err := s.notifyService.NotifySessionStartTx(ctx, tx, session, machine.ID); err != nil {
			return err
		}
		if err := s.notifyService.NotifyPaymentTx(ctx, tx, userID, &session.ID,
			fmt.Sprintf("Charged %.0f %s for machine %s", deduct.Transaction.Amount, deduct.Wallet.Currency, input.MachineCode)); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// The broker channel is fire-and-forget; a command failure must not
	// undo a committed session.
	_ = s.deviceCommander.SendStart(ctx, session.MqttTopic, session.ID, session.Duration)

	return session, nil
}

// EndSession completes a running session and frees its machine
func (s *SessionService) EndSession(ctx context.Context, sessionID uint) (*models.Session, error) {
	var session *models.Session
	err := s.db.Transaction(func(tx *gorm.DB) error {
		sessionRepo := s.sessionRepo.WithTx(tx)
		machineRepo := s.machineRepo.WithTx(tx)

		var err error
		session, err = sessionRepo.GetByID(ctx, sessionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return err
		}

		if _, err := machineRepo.GetByCode(ctx, session.MachineCode); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMachineNotFound
			}
			return err
		}

		now := time.Now()
		session.EndTime = &now
		session.Status = models.SessionStatusCompleted
		session.MachineStatus = models.MachineStatusAvailable
		if err := sessionRepo.Update(ctx, session); err != nil {
			return err
		}

		if err := machineRepo.Release(ctx, session.MachineCode); err != nil {
			return err
		}

		return s.notifyService.NotifySessionEndTx(ctx, tx, session, "Wash session finished")
	})
	if err != nil {
		return nil, err
	}

	_ = s.deviceCommander.SendStop(ctx, session.MqttTopic, session.ID)

	return session, nil
}

// CancelSession aborts a pending or running session owned by the user,
// refunding the full cost when it was already paid.
func (s *SessionService) CancelSession(ctx context.Context, userID, sessionID uint) (*models.Session, error) {
	var session *models.Session
	err := s.db.Transaction(func(tx *gorm.DB) error {
		sessionRepo := s.sessionRepo.WithTx(tx)
		machineRepo := s.machineRepo.WithTx(tx)

		var err error
		session, err = sessionRepo.GetByIDAndUser(ctx, sessionID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return err
		}
		if !session.IsCancellable() {
			return ErrInvalidSessionState
		}

		// Best effort: a machine deleted mid-session is not an error here.
		if _, err := machineRepo.GetByCode(ctx, session.MachineCode); err == nil {
			if err := machineRepo.Release(ctx, session.MachineCode); err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if session.PaymentStatus == models.PaymentStatusPaid {
			_, err := s.walletService.RefundTx(ctx, tx, userID, session.TotalCost, &session.ID,
				fmt.Sprintf("Refund for cancelled session %d", session.ID))
			if err != nil {
				return err
			}
			session.PaymentStatus = models.PaymentStatusRefunded
		}

		now := time.Now()
		session.Status = models.SessionStatusCancelled
		session.EndTime = &now
		session.MachineStatus = models.MachineStatusAvailable
		if err := sessionRepo.Update(ctx, session); err != nil {
			return err
		}

		return s.notifyService.NotifySessionEndTx(ctx, tx, session, "Wash session cancelled")
	})
	if err != nil {
		return nil, err
	}

	_ = s.deviceCommander.SendStop(ctx, session.MqttTopic, session.ID)

	return session, nil
}

// GetSession returns a session scoped to the requesting user, with owner
// and machine details joined in.
func (s *SessionService) GetSession(ctx context.Context, userID, sessionID uint) (*models.SessionResponse, error) {
	session, err := s.sessionRepo.GetByIDAndUser(ctx, sessionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	response := session.ToResponse()

	if user, err := s.userRepo.GetByID(ctx, userID); err == nil {
		response.Username = user.Username
	}
	if machine, err := s.machineRepo.GetByCode(ctx, session.MachineCode); err == nil {
		response.MachineName = machine.Name
		response.MachineLocation = machine.Location
	}

	return response, nil
}

// GetUserSessions returns a page of the user's sessions, newest first
func (s *SessionService) GetUserSessions(ctx context.Context, userID uint, status string, page, limit int) (*SessionListOutput, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	sessions, total, err := s.sessionRepo.ListByUser(ctx, userID, status, offset, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.SessionResponse, len(sessions))
	for i, session := range sessions {
		responses[i] = session.ToResponse()
		if machine, err := s.machineRepo.GetByCode(ctx, session.MachineCode); err == nil {
			responses[i].MachineName = machine.Name
			responses[i].MachineLocation = machine.Location
		}
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return &SessionListOutput{
		Sessions:   responses,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// resolvePlan picks the explicit plan when given (it must be active) and
// falls back to the default plan otherwise.
func (s *SessionService) resolvePlan(ctx context.Context, tx *gorm.DB, planID *uint) (*models.PricePlan, error) {
	planRepo := s.planRepo.WithTx(tx)

	if planID != nil {
		plan, err := planRepo.GetByID(ctx, *planID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrPlanUnavailable
			}
			return nil, err
		}
		if !plan.IsActive {
			return nil, ErrPlanUnavailable
		}
		return plan, nil
	}

	plan, err := planRepo.GetDefault(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoDefaultPlan
		}
		return nil, err
	}
	return plan, nil
}

// uniqueIDs deduplicates the requested mode ids so the count comparison
// against resolved rows stays correct.
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
