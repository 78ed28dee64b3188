package models

import (
	"time"
)

// Machine statuses
const (
	MachineStatusAvailable = "available"
	MachineStatusInUse     = "in_use"
	MachineStatusOffline   = "offline"
	MachineStatusError     = "error"
)

// ValidMachineStatus reports whether s is a known machine status.
func ValidMachineStatus(s string) bool {
	switch s {
	case MachineStatusAvailable, MachineStatusInUse, MachineStatusOffline, MachineStatusError:
		return true
	}
	return false
}

// Machine represents machines table. Invariant: CurrentSessionID is non-nil
// exactly when Status is in_use; the session service maintains both sides
// inside one transaction.
type Machine struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"size:100;not null" json:"name"`
	MachineCode      string    `gorm:"uniqueIndex;size:50;not null" json:"machine_code"`
	Status           string    `gorm:"size:20;default:'available'" json:"status"`
	Location         string    `gorm:"size:255;not null" json:"location"`
	CurrentSessionID *uint     `gorm:"index" json:"current_session_id"`
	MqttTopic        string    `gorm:"size:255;not null" json:"mqtt_topic"`
	LastSeen         time.Time `json:"last_seen"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Machine) TableName() string {
	return "machines"
}

// PricePlan represents price_plans table. At most one row has IsDefault set;
// the plan service clears the flag on every other row in the same transaction
// that sets it.
type PricePlan struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:100;not null" json:"name"`
	RatePerMinute float64   `gorm:"not null" json:"rate_per_minute"`
	MaxDuration   int       `gorm:"default:0" json:"max_duration"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	IsDefault     bool      `gorm:"default:false" json:"is_default"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PricePlan) TableName() string {
	return "price_plans"
}

// WashMode represents wash_modes table
type WashMode struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"size:100;not null" json:"name"`
	Description string       `gorm:"size:255;not null" json:"description"`
	Duration    int          `gorm:"not null" json:"duration"`
	IsDefault   bool         `gorm:"default:false" json:"is_default"`
	Stages      []WaterStage `gorm:"foreignKey:WashModeID;constraint:OnDelete:CASCADE" json:"stages"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WashMode) TableName() string {
	return "wash_modes"
}

// TotalDuration returns the billable duration of the mode in minutes:
// base duration plus the duration of every water stage.
func (m *WashMode) TotalDuration() int {
	total := m.Duration
	for _, stage := range m.Stages {
		total += stage.Duration
	}
	return total
}

// WaterStage represents water_stages table, an ordered stage within a wash mode
type WaterStage struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	WashModeID uint `gorm:"index;not null" json:"wash_mode_id"`
	StageOrder int  `gorm:"not null" json:"stage_order"`
	Level      int  `gorm:"not null" json:"level"`
	Duration   int  `gorm:"not null" json:"duration"`
}

func (WaterStage) TableName() string {
	return "water_stages"
}

// Session statuses
const (
	SessionStatusPending   = "pending"
	SessionStatusRunning   = "running"
	SessionStatusCompleted = "completed"
	SessionStatusCancelled = "cancelled"
)

// Payment statuses
const (
	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

// Session represents wash_sessions table, one timed occupation of a machine.
// pending and running are the only cancellable states; completed and
// cancelled are terminal.
type Session struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	MachineCode   string     `gorm:"index;size:50;not null" json:"machine_code"`
	UserID        uint       `gorm:"index;not null" json:"user_id"`
	StartTime     *time.Time `json:"start_time"`
	EndTime       *time.Time `json:"end_time"`
	Duration      int        `json:"duration"`
	Status        string     `gorm:"size:10;default:'pending'" json:"status"`
	Price         float64    `gorm:"not null" json:"price"`
	TotalCost     float64    `gorm:"default:0" json:"total_cost"`
	PaymentStatus string     `gorm:"size:10;default:'unpaid'" json:"payment_status"`
	MachineStatus string     `gorm:"size:20;default:'available'" json:"machine_status"`
	MqttTopic     string     `gorm:"size:255" json:"mqtt_topic"`
	Notes         string     `gorm:"size:255" json:"notes"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Session) TableName() string {
	return "wash_sessions"
}

// IsCancellable reports whether the session may still be cancelled.
func (s *Session) IsCancellable() bool {
	return s.Status == SessionStatusPending || s.Status == SessionStatusRunning
}

// SessionResponse DTO with owner and machine details joined in by the service
type SessionResponse struct {
	ID              uint       `json:"id"`
	MachineCode     string     `json:"machine_code"`
	MachineName     string     `json:"machine_name,omitempty"`
	MachineLocation string     `json:"machine_location,omitempty"`
	UserID          uint       `json:"user_id"`
	Username        string     `json:"username,omitempty"`
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	Duration        int        `json:"duration"`
	Status          string     `json:"status"`
	Price           float64    `json:"price"`
	TotalCost       float64    `json:"total_cost"`
	PaymentStatus   string     `json:"payment_status"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (s *Session) ToResponse() *SessionResponse {
	return &SessionResponse{
		ID:            s.ID,
		MachineCode:   s.MachineCode,
		UserID:        s.UserID,
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		Duration:      s.Duration,
		Status:        s.Status,
		Price:         s.Price,
		TotalCost:     s.TotalCost,
		PaymentStatus: s.PaymentStatus,
		CreatedAt:     s.CreatedAt,
	}
}

// Notification types
const (
	NotificationTypeSessionStart = "session_start"
	NotificationTypeSessionEnd   = "session_end"
	NotificationTypePayment      = "payment"
	NotificationTypeMachineAlert = "machine_alert"
	NotificationTypeSystem       = "system"
)

// Notification represents notifications table
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Type      string    `gorm:"size:20;not null" json:"type"`
	Title     string    `gorm:"size:100;not null" json:"title"`
	Message   string    `gorm:"size:255;not null" json:"message"`
	IsRead    bool      `gorm:"default:false" json:"is_read"`
	SessionID *uint     `gorm:"index" json:"session_id"`
	MachineID *uint     `gorm:"index" json:"machine_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
