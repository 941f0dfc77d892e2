package model

import (
	"time"
)

// Base model fields shared by all models
type Base struct {
	UUID      string    `json:"uuid" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Status defines the review status of a submission
type Status string

const (
	// StatusPending represents a submission awaiting review
	StatusPending Status = "pending"
	// StatusApproved represents a submission accepted by a reviewer
	StatusApproved Status = "approved"
	// StatusRejected represents a submission rejected by a reviewer or auto-rejected
	StatusRejected Status = "rejected"
)

// Reviewer sentinels
const (
	// ReviewerAutoReject marks submissions rejected at creation time by the adjudication rule
	ReviewerAutoReject = "auto-reject"
	// ReviewerUnknown is recorded when the reviewer's profile lookup fails
	ReviewerUnknown = "unknown"
)

// ResultCode defines the answer for a single checklist item
type ResultCode string

const (
	// ResultGood represents an item in working condition
	ResultGood ResultCode = "good"
	// ResultDefect represents an item with an observed defect
	ResultDefect ResultCode = "defect"
	// ResultNotApplicable represents an item that does not apply to the vehicle
	ResultNotApplicable ResultCode = "not_applicable"
)

// Valid reports whether the code belongs to the closed result set
func (c ResultCode) Valid() bool {
	switch c {
	case ResultGood, ResultDefect, ResultNotApplicable:
		return true
	}
	return false
}

// StatusFromString converts a string to a Status
func StatusFromString(status string) Status {
	switch status {
	case "approved":
		return StatusApproved
	case "rejected":
		return StatusRejected
	default:
		return StatusPending
	}
}

// Terminal reports whether the status admits no further transitions
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CounterKind identifies which correlative sequence a counter hands out
type CounterKind string

const (
	// ChecklistCounter numbers pre-use checklist records
	ChecklistCounter CounterKind = "checklist"
	// FatigueCounter numbers fatigue declarations
	FatigueCounter CounterKind = "fatigue"
)

// Counter is the per-kind correlative id source. The row must exist before
// any submission of its kind is accepted; increments happen under a row lock.
type Counter struct {
	Kind      CounterKind `json:"kind" gorm:"primaryKey"`
	LastID    int64       `json:"last_id" gorm:"column:last_id"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// InspectionRecord is a pre-use checklist submission for a fleet vehicle
type InspectionRecord struct {
	Base
	CorrelativeID  int64  `json:"correlative_id" gorm:"column:correlative_id;uniqueIndex"`
	InspectionDate string `json:"inspection_date" gorm:"column:inspection_date;index"`
	InspectionTime string `json:"inspection_time" gorm:"column:inspection_time"`
	Driver         string `json:"driver" gorm:"column:driver"`
	InternalNumber string `json:"internal_number" gorm:"column:internal_number;index"`
	Odometer       int64  `json:"odometer"`
	Notes          string `json:"notes"`

	// Vehicle snapshot at inspection time
	VehicleMake  string `json:"vehicle_make"`
	VehicleModel string `json:"vehicle_model"`
	VehiclePlate string `json:"vehicle_plate"`
	VehicleYear  string `json:"vehicle_year"`
	VehicleColor string `json:"vehicle_color"`

	SignatureURL    string `json:"signature_url"`
	DamageSketchURL string `json:"damage_sketch_url,omitempty"`

	Status     Status  `json:"status" gorm:"index"`
	CreatedBy  string  `json:"created_by"`
	ReviewedBy *string `json:"reviewed_by"`

	Answers []ChecklistAnswer `json:"answers,omitempty" gorm:"foreignKey:RecordID"`
}

// ChecklistAnswer is the typed detail row for one catalog item of a record
type ChecklistAnswer struct {
	Base
	RecordID    string     `json:"record_id" gorm:"column:record_id;type:uuid;index"`
	Item        ItemID     `json:"item" gorm:"column:item"`
	Result      ResultCode `json:"result" gorm:"column:result"`
	Observation string     `json:"observation,omitempty"`
	PhotoURL    string     `json:"photo_url,omitempty"`
}

// DefectCount returns the number of answers marked defect
func DefectCount(answers []ChecklistAnswer) int {
	count := 0
	for _, a := range answers {
		if a.Result == ResultDefect {
			count++
		}
	}
	return count
}

// FatigueAnswer is the yes/no answer to one fatigue question
type FatigueAnswer string

const (
	// AnswerYes is an affirmative answer
	AnswerYes FatigueAnswer = "yes"
	// AnswerNo is a negative answer
	AnswerNo FatigueAnswer = "no"
)

// Valid reports whether the answer is yes or no
func (a FatigueAnswer) Valid() bool {
	return a == AnswerYes || a == AnswerNo
}

// FatigueDeclaration is a driver fatigue and drowsiness self-declaration
type FatigueDeclaration struct {
	Base
	CorrelativeID  int64  `json:"correlative_id" gorm:"column:correlative_id;uniqueIndex"`
	Driver         string `json:"driver" gorm:"column:driver"`
	VehicleType    string `json:"vehicle_type"`
	InternalNumber string `json:"internal_number" gorm:"column:internal_number;index"`
	Destination    string `json:"destination"`
	DepartureTime  string `json:"departure_time"`
	Date           string `json:"date" gorm:"index"`

	// ErrorCount is the number of answers deviating from the expected safe answer
	ErrorCount int `json:"error_count" gorm:"column:error_count"`

	SignatureURL string  `json:"signature_url"`
	Status       Status  `json:"status" gorm:"index"`
	CreatedBy    string  `json:"created_by"`
	ReviewedBy   *string `json:"reviewed_by"`

	Responses []FatigueResponse `json:"responses,omitempty" gorm:"foreignKey:DeclarationID"`
}

// FatigueResponse is the answer row for one fatigue question
type FatigueResponse struct {
	Base
	DeclarationID string        `json:"declaration_id" gorm:"column:declaration_id;type:uuid;index"`
	QuestionIndex int           `json:"question_index" gorm:"column:question_index"`
	Answer        FatigueAnswer `json:"answer"`
	Remark        string        `json:"remark,omitempty"`
}

// Driver is a registered fleet driver selectable on submission forms
type Driver struct {
	Base
	Name string `json:"name" gorm:"uniqueIndex"`
}

// Vehicle is a registered fleet vehicle, identified by its internal number
type Vehicle struct {
	Base
	InternalNumber string `json:"internal_number" gorm:"column:internal_number;uniqueIndex"`
	Make           string `json:"make"`
	Model          string `json:"model"`
	Plate          string `json:"plate"`
	Year           string `json:"year"`
	Color          string `json:"color"`
}

// Role defines the capability level of a user
type Role string

const (
	// RoleAdmin may review submissions and manage the registries
	RoleAdmin Role = "admin"
	// RoleController may submit checklists and browse listings
	RoleController Role = "controller"
)

// User is an operator profile consulted for role checks and display names
type User struct {
	Base
	Name  string `json:"name"`
	Email string `json:"email" gorm:"uniqueIndex"`
	Role  Role   `json:"role"`
}
