package models

import (
	"time"

	"microcredit-api/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Tenants & catalog
// ============================================================

// Tenant is a microfinance institution
type Tenant struct {
	ID            string         `gorm:"primaryKey;size:50" json:"id"`
	Name          string         `gorm:"size:100;not null" json:"name"`
	LegalName     string         `gorm:"size:200" json:"legalName"`
	RUC           string         `gorm:"size:20" json:"ruc"`
	Email         string         `gorm:"size:100" json:"email"`
	MinLoanAmount float64        `gorm:"type:decimal(15,2)" json:"minLoanAmount"`
	MaxLoanAmount float64        `gorm:"type:decimal(15,2)" json:"maxLoanAmount"`
	MinTermMonths int            `json:"minTermMonths"`
	MaxTermMonths int            `json:"maxTermMonths"`
	IsActive      bool           `gorm:"default:true" json:"isActive"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Tenant) TableName() string {
	return "tenants"
}

// Product is a loan product offered by a tenant
type Product struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	TenantID     string         `gorm:"size:50;not null;index;uniqueIndex:idx_tenant_product_code" json:"tenantId"`
	Code         string         `gorm:"size:30;not null;uniqueIndex:idx_tenant_product_code" json:"code"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	Description  string         `gorm:"type:text" json:"description"`
	InterestType string         `gorm:"size:20;not null" json:"interestType"`
	RateNominal  float64        `gorm:"type:decimal(6,2);not null" json:"rateNominal"`
	TermMin      int            `gorm:"not null" json:"termMin"`
	TermMax      int            `gorm:"not null" json:"termMax"`
	AmountMin    float64        `gorm:"type:decimal(15,2);not null" json:"amountMin"`
	AmountMax    float64        `gorm:"type:decimal(15,2);not null" json:"amountMax"`
	IsActive     bool           `gorm:"default:true" json:"isActive"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Tenant *Tenant `gorm:"foreignKey:TenantID" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// Snapshot copies the terms an application is bound to
func (p *Product) Snapshot() *domain.ProductSnapshot {
	return &domain.ProductSnapshot{
		ID:           p.ID,
		Code:         p.Code,
		Name:         p.Name,
		InterestType: p.InterestType,
		RateNominal:  p.RateNominal,
		TermMin:      p.TermMin,
		TermMax:      p.TermMax,
		AmountMin:    p.AmountMin,
		AmountMax:    p.AmountMax,
	}
}

// ============================================================
// Auth
// ============================================================

// User represents users table
type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	TenantID      string         `gorm:"size:50;not null;index" json:"tenantId"`
	Email         string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	FirstName     string         `gorm:"size:100" json:"firstName"`
	LastName      string         `gorm:"size:100" json:"lastName"`
	Phone         string         `gorm:"size:20" json:"phone"`
	Password      string         `gorm:"size:255;not null" json:"-"`
	Role          string         `gorm:"size:20;default:'USER'" json:"role"`
	EmailVerified bool           `gorm:"default:false" json:"emailVerified"`
	IsActive      bool           `gorm:"default:true" json:"isActive"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Tenant *Tenant `gorm:"foreignKey:TenantID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID            uint      `json:"id"`
	TenantID      string    `json:"tenantId"`
	Email         string    `json:"email"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Phone         string    `json:"phone"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"emailVerified"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:            u.ID,
		TenantID:      u.TenantID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Phone:         u.Phone,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		IsActive:      u.IsActive,
		CreatedAt:     u.CreatedAt,
	}
}

// IsStaff reports whether the user may review applications
func (u *User) IsStaff() bool {
	return u.Role == string(domain.RoleOfficer) || u.Role == string(domain.RoleAdmin)
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"userId"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expiresAt"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	RevokedAt *time.Time `gorm:"index" json:"revokedAt"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Applications
// ============================================================

// LoanApplication is a submitted application
type LoanApplication struct {
	ID             string                   `gorm:"primaryKey;size:36" json:"id"`
	TenantID       string                   `gorm:"size:50;not null;index" json:"tenantId"`
	UserID         uint                     `gorm:"not null;index" json:"userId"`
	PersonalInfo   domain.PersonalInfo      `gorm:"serializer:json;type:text" json:"personalInfo"`
	ContactInfo    domain.ContactInfo       `gorm:"serializer:json;type:text" json:"contactInfo"`
	EmploymentInfo domain.EmploymentInfo    `gorm:"serializer:json;type:text" json:"employmentInfo"`
	FinancialInfo  domain.FinancialInfo     `gorm:"serializer:json;type:text" json:"financialInfo"`
	AdditionalInfo domain.AdditionalInfo    `gorm:"serializer:json;type:text" json:"additionalInfo"`
	Consents       domain.Consents          `gorm:"serializer:json;type:text" json:"consents"`
	Product        *domain.ProductSnapshot  `gorm:"serializer:json;type:text" json:"product,omitempty"`
	Location       *domain.Location         `gorm:"serializer:json;type:text" json:"location,omitempty"`
	LoanAmount     float64                  `gorm:"type:decimal(15,2);not null" json:"loanAmount"`
	Status         domain.ApplicationStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	CreatedAt      time.Time                `gorm:"index" json:"createdAt"`
	UpdatedAt      time.Time                `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (LoanApplication) TableName() string {
	return "loan_applications"
}

// NewLoanApplication maps an assembled record to its row
func NewLoanApplication(id string, rec *domain.ApplicationRecord) *LoanApplication {
	return &LoanApplication{
		ID:             id,
		TenantID:       rec.TenantID,
		UserID:         rec.UserID,
		PersonalInfo:   rec.PersonalInfo,
		ContactInfo:    rec.ContactInfo,
		EmploymentInfo: rec.EmploymentInfo,
		FinancialInfo:  rec.FinancialInfo,
		AdditionalInfo: rec.AdditionalInfo,
		Consents:       rec.Consents,
		Product:        rec.Product,
		Location:       rec.Location,
		LoanAmount:     rec.FinancialInfo.LoanAmount,
		Status:         rec.Status,
		CreatedAt:      rec.CreatedAt,
	}
}

// ApplicantName returns the display name of the applicant
func (a *LoanApplication) ApplicantName() string {
	return a.PersonalInfo.FirstName + " " + a.PersonalInfo.LastName
}

// ApplicationEvent records a status transition
type ApplicationEvent struct {
	ID            uint                     `gorm:"primaryKey" json:"id"`
	ApplicationID string                   `gorm:"size:36;not null;index" json:"applicationId"`
	FromStatus    domain.ApplicationStatus `gorm:"size:20" json:"fromStatus"`
	ToStatus      domain.ApplicationStatus `gorm:"size:20;not null" json:"toStatus"`
	PerformedBy   uint                     `gorm:"not null" json:"performedBy"`
	Remark        string                   `gorm:"type:text" json:"remark"`
	IPAddress     string                   `gorm:"size:50" json:"ipAddress"`
	CreatedAt     time.Time                `gorm:"autoCreateTime" json:"createdAt"`
}

func (ApplicationEvent) TableName() string {
	return "application_events"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate creates or updates all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Tenant{},
		&Product{},
		&User{},
		&RefreshToken{},
		&LoanApplication{},
		&ApplicationEvent{},
	)
}
