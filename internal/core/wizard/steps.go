// Package wizard drives the loan application form: an ordered list of
// steps, a draft of form values and the rules that gate each transition.
// It performs no I/O; persistence is reached through a Submitter.
package wizard

import "microcredit-api/internal/core/domain"

// Step names one page of the application form
type Step string

const (
	StepAccount      Step = "account"
	StepVerification Step = "verification"
	StepProduct      Step = "product"
	StepPersonal     Step = "personal"
	StepContact      Step = "contact"
	StepEmployment   Step = "employment"
	StepFinancial    Step = "financial"
	StepAdditional   Step = "additional"
	StepConsents     Step = "consents"
	StepComplete     Step = "complete"
)

// DefaultSteps is the full form in display order. StepComplete is terminal
// and never listed.
var DefaultSteps = []Step{
	StepAccount,
	StepVerification,
	StepProduct,
	StepPersonal,
	StepContact,
	StepEmployment,
	StepFinancial,
	StepAdditional,
	StepConsents,
}

// stepFields lists the draft fields each step validates on next()
var stepFields = map[Step][]string{
	StepPersonal:   {"firstName", "lastName", "documentType", "documentNumber", "birthDate", "nationality", "maritalStatus", "dependents"},
	StepContact:    {"address", "district", "province", "department", "mobilePhone", "email", "homeReference"},
	StepEmployment: {"employmentType", "employerName", "position", "yearsEmployed", "monthsEmployed", "contractType", "workPhone"},
	StepFinancial:  {"monthlyIncome", "otherIncome", "otherIncomeSource", "monthlyExpenses", "currentDebts", "currentDebtsEntity", "loanAmount", "loanTermMonths", "loanPurpose"},
	StepAdditional: {"hasCreditHistory", "hasBankAccount", "bankName", "hasGuarantee", "guaranteeDescription", "additionalComments"},
	StepConsents:   {"acceptTerms", "authorizeCreditCheck", "confirmTruthfulness", "acceptGeolocation"},
}

// FieldsFor returns the draft fields owned by step
func FieldsFor(step Step) []string {
	return stepFields[step]
}

// isDataStep reports whether step collects draft data
func isDataStep(step Step) bool {
	return step != StepAccount && step != StepVerification && step != StepComplete
}

// allowed reports whether step may be shown under status. The account
// step belongs to anonymous users, verification to signed-in users with an
// unverified email, every data step to verified users.
func allowed(step Step, status domain.AuthStatus) bool {
	switch step {
	case StepAccount:
		return !status.Authenticated
	case StepVerification:
		return status.Authenticated && !status.Verified
	case StepComplete:
		return true
	default:
		return status.Authenticated && status.Verified
	}
}

// EntryStep is the first step a user with status lands on
func EntryStep(steps []Step, status domain.AuthStatus) Step {
	for _, step := range steps {
		if allowed(step, status) {
			return step
		}
	}
	return steps[len(steps)-1]
}
