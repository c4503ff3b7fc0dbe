package domain

import "time"

// Role represents user role in the system
type Role string

const (
	RoleUser    Role = "USER"
	RoleOfficer Role = "OFFICER"
	RoleAdmin   Role = "ADMIN"
)

// VerificationCode is the one outstanding OTP for an email address
type VerificationCode struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Attempts  int       `json:"attempts"`
}

// IsExpired reports whether the code is past its expiry at now
func (v *VerificationCode) IsExpired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}

// AuthStatus is the externally owned authentication state the wizard reads
type AuthStatus struct {
	UserID        uint
	Authenticated bool
	Verified      bool
}

// ApplicationStatus is the lifecycle state of a submitted application
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusInReview ApplicationStatus = "in_review"
	StatusApproved ApplicationStatus = "approved"
	StatusRejected ApplicationStatus = "rejected"
)

// IsValid reports whether s is a known status
func (s ApplicationStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInReview, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsOpen reports whether the application still awaits a decision
func (s ApplicationStatus) IsOpen() bool {
	return s == StatusPending || s == StatusInReview
}

// ============================================================
// Loan application sections (submitted, typed form)
// ============================================================

type PersonalInfo struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	DocumentType   string `json:"documentType"`
	DocumentNumber string `json:"documentNumber"`
	BirthDate      string `json:"birthDate"`
	Nationality    string `json:"nationality"`
	MaritalStatus  string `json:"maritalStatus"`
	Dependents     *int   `json:"dependents,omitempty"`
}

type ContactInfo struct {
	Address       string `json:"address"`
	District      string `json:"district"`
	Province      string `json:"province"`
	Department    string `json:"department"`
	MobilePhone   string `json:"mobilePhone"`
	Email         string `json:"email"`
	HomeReference string `json:"homeReference,omitempty"`
}

type EmploymentInfo struct {
	EmploymentType string `json:"employmentType"`
	EmployerName   string `json:"employerName,omitempty"`
	Position       string `json:"position,omitempty"`
	YearsEmployed  *int   `json:"yearsEmployed,omitempty"`
	MonthsEmployed *int   `json:"monthsEmployed,omitempty"`
	ContractType   string `json:"contractType,omitempty"`
	WorkPhone      string `json:"workPhone,omitempty"`
}

type FinancialInfo struct {
	MonthlyIncome      float64  `json:"monthlyIncome"`
	OtherIncome        *float64 `json:"otherIncome,omitempty"`
	OtherIncomeSource  string   `json:"otherIncomeSource,omitempty"`
	MonthlyExpenses    *float64 `json:"monthlyExpenses,omitempty"`
	CurrentDebts       *float64 `json:"currentDebts,omitempty"`
	CurrentDebtsEntity string   `json:"currentDebtsEntity,omitempty"`
	LoanAmount         float64  `json:"loanAmount"`
	LoanTermMonths     int      `json:"loanTermMonths"`
	LoanPurpose        string   `json:"loanPurpose"`
}

type AdditionalInfo struct {
	HasCreditHistory     bool   `json:"hasCreditHistory"`
	HasBankAccount       bool   `json:"hasBankAccount"`
	BankName             string `json:"bankName,omitempty"`
	HasGuarantee         bool   `json:"hasGuarantee"`
	GuaranteeDescription string `json:"guaranteeDescription,omitempty"`
	AdditionalComments   string `json:"additionalComments,omitempty"`
}

type Consents struct {
	AcceptTerms          bool `json:"acceptTerms"`
	AuthorizeCreditCheck bool `json:"authorizeCreditCheck"`
	ConfirmTruthfulness  bool `json:"confirmTruthfulness"`
	AcceptGeolocation    bool `json:"acceptGeolocation"`
}

// AllGiven reports whether every consent was accepted
func (c Consents) AllGiven() bool {
	return c.AcceptTerms && c.AuthorizeCreditCheck && c.ConfirmTruthfulness
}

// ProductSnapshot is the selected credit product as seen at submission time
type ProductSnapshot struct {
	ID           uint    `json:"id"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	InterestType string  `json:"interestType"`
	RateNominal  float64 `json:"rateNominal"`
	TermMin      int     `json:"termMin"`
	TermMax      int     `json:"termMax"`
	AmountMin    float64 `json:"amountMin"`
	AmountMax    float64 `json:"amountMax"`
}

// AmountInRange reports whether amount is within the product bounds
func (p *ProductSnapshot) AmountInRange(amount float64) bool {
	return amount >= p.AmountMin && amount <= p.AmountMax
}

// TermInRange reports whether months is within the product bounds
func (p *ProductSnapshot) TermInRange(months int) bool {
	return months >= p.TermMin && months <= p.TermMax
}

// Location is the optional geolocation captured with an application
type Location struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// ApplicationRecord is the assembled payload handed to persistence
type ApplicationRecord struct {
	TenantID       string
	UserID         uint
	PersonalInfo   PersonalInfo
	ContactInfo    ContactInfo
	EmploymentInfo EmploymentInfo
	FinancialInfo  FinancialInfo
	AdditionalInfo AdditionalInfo
	Consents       Consents
	Product        *ProductSnapshot
	Location       *Location
	Status         ApplicationStatus
	CreatedAt      time.Time
}
