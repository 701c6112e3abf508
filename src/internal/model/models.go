package model

import "time"

type AppError string

func (e AppError) Error() string { return string(e) }

const (
	ErrNotFound = AppError("NOT_FOUND")
)

type User struct {
	ID               int64      `json:"id" db:"id"`
	Email            string     `json:"email" db:"email"`
	Username         string     `json:"username" db:"username"`
	PasswordHash     string     `json:"-" db:"password_hash"`
	Role             Role       `json:"role" db:"role"`
	IsActive         bool       `json:"is_active" db:"is_active"`
	ResetToken       *string    `json:"-" db:"reset_token"`
	ResetTokenExpiry *time.Time `json:"-" db:"reset_token_expiry"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

type UserProfile struct {
	ID             int64   `json:"id" db:"id"`
	UserID         int64   `json:"user_id" db:"user_id"`
	FullName       string  `json:"full_name" db:"full_name"`
	CompanyName    string  `json:"company_name" db:"company_name"`
	Rating         float64 `json:"rating" db:"rating"`
	TotalReviews   int     `json:"total_reviews" db:"total_reviews"`
	CompletedTasks int     `json:"completed_tasks" db:"completed_tasks"`
}

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
	UrgencyUrgent Urgency = "urgent"
)

func ValidUrgency(u Urgency) bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyUrgent:
		return true
	}
	return false
}

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestAccepted  RequestStatus = "accepted"
	RequestCompleted RequestStatus = "completed"
)

// CanTransitionTo reports whether a help request may move from s to next.
// Statuses only ever advance: pending -> accepted -> completed.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	switch s {
	case RequestPending:
		return next == RequestAccepted || next == RequestCompleted
	case RequestAccepted:
		return next == RequestCompleted
	}
	return false
}

type HelpRequest struct {
	ID          int64         `json:"id" db:"id"`
	RequesterID int64         `json:"requester_id" db:"requester_id"`
	Title       string        `json:"title" db:"title"`
	Description string        `json:"description" db:"description"`
	CategoryID  *int64        `json:"category_id" db:"category_id"`
	Category    *string       `json:"category" db:"category"`
	Location    string        `json:"location" db:"location"`
	Urgency     Urgency       `json:"urgency" db:"urgency"`
	Status      RequestStatus `json:"status" db:"status"`
	PhotoURL    *string       `json:"photo_url" db:"photo_url"`
	ViewCount   int           `json:"view_count" db:"view_count"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty" db:"completed_at"`
}

type OfferStatus string

const (
	OfferAccepted  OfferStatus = "accepted"
	OfferWithdrawn OfferStatus = "withdrawn"
)

type Offer struct {
	ID          int64       `json:"id" db:"id"`
	RequestID   int64       `json:"request_id" db:"request_id"`
	VolunteerID int64       `json:"volunteer_id" db:"volunteer_id"`
	Status      OfferStatus `json:"status" db:"status"`
	Message     string      `json:"message" db:"message"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// AcceptedTask is the CSR-facing join of an accepted offer and its request.
type AcceptedTask struct {
	ID          int64         `json:"id" db:"id"`
	RequestID   int64         `json:"request_id" db:"request_id"`
	Title       string        `json:"title" db:"title"`
	Description string        `json:"description" db:"description"`
	Location    string        `json:"location" db:"location"`
	Urgency     Urgency       `json:"urgency" db:"urgency"`
	Status      RequestStatus `json:"status" db:"status"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
}

type Review struct {
	ID          int64     `json:"id" db:"id"`
	PinID       int64     `json:"-" db:"pin_id"`
	PinName     string    `json:"pin_name,omitempty" db:"pin_name"`
	VolunteerID int64     `json:"volunteer_id,omitempty" db:"volunteer_id"`
	RequestID   int64     `json:"request_id,omitempty" db:"request_id"`
	Rating      int       `json:"rating" db:"rating"`
	Comment     string    `json:"comment" db:"comment"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type ShortlistEntry struct {
	ID            int64     `json:"id" db:"id"`
	PinID         int64     `json:"-" db:"pin_id"`
	VolunteerID   int64     `json:"volunteer_id" db:"volunteer_id"`
	VolunteerName string    `json:"volunteer_name" db:"volunteer_name"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

type BlacklistEntry struct {
	ID            int64     `json:"id" db:"id"`
	PinID         int64     `json:"-" db:"pin_id"`
	VolunteerID   int64     `json:"volunteer_id" db:"volunteer_id"`
	VolunteerName string    `json:"volunteer_name" db:"volunteer_name"`
	Reason        string    `json:"reason" db:"reason"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

type Category struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	IsActive    bool   `json:"-" db:"is_active"`
}

type AuditLogEntry struct {
	ID        int64     `json:"id" db:"id"`
	UserID    *int64    `json:"user_id" db:"user_id"`
	Username  string    `json:"username" db:"username"`
	Action    string    `json:"action" db:"action"`
	Details   string    `json:"details" db:"details"`
	IPAddress string    `json:"ip_address" db:"ip_address"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

// LogPage is one page of the audit log, newest first.
type LogPage struct {
	Logs        []AuditLogEntry `json:"logs"`
	Total       int             `json:"total"`
	Pages       int             `json:"pages"`
	CurrentPage int             `json:"current_page"`
}

type ReportType string

const (
	ReportUserActivity         ReportType = "user_activity"
	ReportRequestSummary       ReportType = "request_summary"
	ReportVolunteerPerformance ReportType = "volunteer_performance"
)

func ValidReportType(t ReportType) bool {
	switch t {
	case ReportUserActivity, ReportRequestSummary, ReportVolunteerPerformance:
		return true
	}
	return false
}

type ReportFrequency string

const (
	FrequencyDaily   ReportFrequency = "daily"
	FrequencyWeekly  ReportFrequency = "weekly"
	FrequencyMonthly ReportFrequency = "monthly"
)

// Interval returns the gap between two runs of a report.
func (f ReportFrequency) Interval() time.Duration {
	switch f {
	case FrequencyWeekly:
		return 7 * 24 * time.Hour
	case FrequencyMonthly:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

func ValidFrequency(f ReportFrequency) bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

type ScheduledReport struct {
	ID         int64           `json:"id" db:"id"`
	Name       string          `json:"name" db:"name"`
	ReportType ReportType      `json:"report_type" db:"report_type"`
	Frequency  ReportFrequency `json:"frequency" db:"frequency"`
	Recipients string          `json:"recipients" db:"recipients"`
	IsActive   bool            `json:"is_active" db:"is_active"`
	LastRun    *time.Time      `json:"last_run" db:"last_run"`
	NextRun    *time.Time      `json:"next_run" db:"next_run"`
	CreatedAt  time.Time       `json:"-" db:"created_at"`
}

type Stats struct {
	TotalUsers        int `json:"total_users" db:"total_users"`
	ActiveUsers       int `json:"active_users" db:"active_users"`
	TotalRequests     int `json:"total_requests" db:"total_requests"`
	CompletedRequests int `json:"completed_requests" db:"completed_requests"`
}

// RequestFilter narrows the public help-request listing. Zero values mean
// no filtering on that dimension.
type RequestFilter struct {
	Status     RequestStatus
	Urgency    Urgency
	Location   string
	CategoryID int64
}

// Actor identifies the authenticated caller of a service operation,
// carried from the HTTP layer for ownership checks and audit logging.
type Actor struct {
	UserID int64
	Role   Role
	IP     string
}
