package wizard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"microcredit-api/internal/core/domain"
)

// Draft holds the form values exactly as entered. Numbers stay strings until
// the record is assembled so validation can report unparsable input.
type Draft struct {
	text     map[string]string
	flags    map[string]bool
	product  *domain.ProductSnapshot
	location *domain.Location
}

// NewDraft creates an empty draft
func NewDraft() *Draft {
	return &Draft{
		text:  make(map[string]string),
		flags: make(map[string]bool),
	}
}

// Set stores one field value
func (d *Draft) Set(name string, value interface{}) error {
	f, ok := fieldsByName[name]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownField, name)
	}

	if f.kind == kindFlag {
		b, err := flagValue(value)
		if err != nil {
			return err
		}
		d.flags[name] = b
		return nil
	}

	s, err := textValue(value)
	if err != nil {
		return err
	}
	d.text[name] = strings.TrimSpace(s)
	return nil
}

// Text returns a text field value
func (d *Draft) Text(name string) string {
	return d.text[name]
}

// Flag returns a checkbox field value
func (d *Draft) Flag(name string) bool {
	return d.flags[name]
}

// Product returns the selected product, if any
func (d *Draft) Product() *domain.ProductSnapshot {
	return d.product
}

// Location returns the captured location, if any
func (d *Draft) Location() *domain.Location {
	return d.location
}

// Values returns every entered field keyed by name
func (d *Draft) Values() map[string]interface{} {
	out := make(map[string]interface{}, len(d.text)+len(d.flags))
	for k, v := range d.text {
		out[k] = v
	}
	for k, v := range d.flags {
		out[k] = v
	}
	return out
}

// value returns the field as the validator should see it
func (d *Draft) value(f field) interface{} {
	if f.kind == kindFlag {
		return d.flags[f.name]
	}
	return d.text[f.name]
}

func (d *Draft) optionalInt(name string) (*int, error) {
	s := d.text[name]
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &n, nil
}

func (d *Draft) optionalFloat(name string) (*float64, error) {
	s := d.text[name]
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &n, nil
}

func (d *Draft) requiredFloat(name string) (float64, error) {
	n, err := d.optionalFloat(name)
	if err != nil {
		return 0, err
	}
	if n == nil {
		return 0, fmt.Errorf("%s: missing", name)
	}
	return *n, nil
}

// loanTerms parses the amount and term, reporting ok=false when either is
// missing or malformed
func (d *Draft) loanTerms() (amount float64, months int, ok bool) {
	amount, err := strconv.ParseFloat(d.text["loanAmount"], 64)
	if err != nil {
		return 0, 0, false
	}
	months, err = strconv.Atoi(d.text["loanTermMonths"])
	if err != nil {
		return 0, 0, false
	}
	return amount, months, true
}

// assemble converts the draft into the typed record handed to persistence
func (d *Draft) assemble(tenantID string, userID uint, now time.Time) (*domain.ApplicationRecord, error) {
	dependents, err := d.optionalInt("dependents")
	if err != nil {
		return nil, err
	}
	years, err := d.optionalInt("yearsEmployed")
	if err != nil {
		return nil, err
	}
	months, err := d.optionalInt("monthsEmployed")
	if err != nil {
		return nil, err
	}
	income, err := d.requiredFloat("monthlyIncome")
	if err != nil {
		return nil, err
	}
	otherIncome, err := d.optionalFloat("otherIncome")
	if err != nil {
		return nil, err
	}
	expenses, err := d.optionalFloat("monthlyExpenses")
	if err != nil {
		return nil, err
	}
	debts, err := d.optionalFloat("currentDebts")
	if err != nil {
		return nil, err
	}
	amount, term, ok := d.loanTerms()
	if !ok {
		return nil, fmt.Errorf("loan terms: %w", domain.ErrValidationFailed)
	}

	rec := &domain.ApplicationRecord{
		TenantID: tenantID,
		UserID:   userID,
		PersonalInfo: domain.PersonalInfo{
			FirstName:      d.text["firstName"],
			LastName:       d.text["lastName"],
			DocumentType:   d.text["documentType"],
			DocumentNumber: d.text["documentNumber"],
			BirthDate:      d.text["birthDate"],
			Nationality:    d.text["nationality"],
			MaritalStatus:  d.text["maritalStatus"],
			Dependents:     dependents,
		},
		ContactInfo: domain.ContactInfo{
			Address:       d.text["address"],
			District:      d.text["district"],
			Province:      d.text["province"],
			Department:    d.text["department"],
			MobilePhone:   d.text["mobilePhone"],
			Email:         d.text["email"],
			HomeReference: d.text["homeReference"],
		},
		EmploymentInfo: domain.EmploymentInfo{
			EmploymentType: d.text["employmentType"],
			EmployerName:   d.text["employerName"],
			Position:       d.text["position"],
			YearsEmployed:  years,
			MonthsEmployed: months,
			ContractType:   d.text["contractType"],
			WorkPhone:      d.text["workPhone"],
		},
		FinancialInfo: domain.FinancialInfo{
			MonthlyIncome:      income,
			OtherIncome:        otherIncome,
			OtherIncomeSource:  d.text["otherIncomeSource"],
			MonthlyExpenses:    expenses,
			CurrentDebts:       debts,
			CurrentDebtsEntity: d.text["currentDebtsEntity"],
			LoanAmount:         amount,
			LoanTermMonths:     term,
			LoanPurpose:        d.text["loanPurpose"],
		},
		AdditionalInfo: domain.AdditionalInfo{
			HasCreditHistory:     d.flags["hasCreditHistory"],
			HasBankAccount:       d.flags["hasBankAccount"],
			BankName:             d.text["bankName"],
			HasGuarantee:         d.flags["hasGuarantee"],
			GuaranteeDescription: d.text["guaranteeDescription"],
			AdditionalComments:   d.text["additionalComments"],
		},
		Consents: domain.Consents{
			AcceptTerms:          d.flags["acceptTerms"],
			AuthorizeCreditCheck: d.flags["authorizeCreditCheck"],
			ConfirmTruthfulness:  d.flags["confirmTruthfulness"],
			AcceptGeolocation:    d.flags["acceptGeolocation"],
		},
		Product:   d.product,
		Status:    domain.StatusPending,
		CreatedAt: now,
	}

	if d.location != nil && rec.Consents.AcceptGeolocation {
		loc := *d.location
		rec.Location = &loc
	}

	return rec, nil
}
