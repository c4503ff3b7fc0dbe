package wizard

import (
	"context"
	"errors"
	"testing"
	"time"

	"microcredit-api/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	anonymous  = domain.AuthStatus{}
	unverified = domain.AuthStatus{UserID: 7, Authenticated: true}
	verified   = domain.AuthStatus{UserID: 7, Authenticated: true, Verified: true}

	microProduct = &domain.ProductSnapshot{
		ID: 1, Code: "MICRO", Name: "Microcrédito", InterestType: "TEA", RateNominal: 35,
		TermMin: 3, TermMax: 24, AmountMin: 1000, AmountMax: 5000,
	}
)

type fakeSubmitter struct {
	calls int
	last  *domain.ApplicationRecord
	err   error
}

func (f *fakeSubmitter) SubmitApplication(ctx context.Context, rec *domain.ApplicationRecord) (string, error) {
	f.calls++
	f.last = rec
	if f.err != nil {
		return "", f.err
	}
	return "app-1", nil
}

var validValues = map[string]interface{}{
	"firstName":            "Ana",
	"lastName":             "Quispe",
	"documentType":         "DNI",
	"documentNumber":       "12345678",
	"birthDate":            "1990-05-17",
	"nationality":          "Peruana",
	"maritalStatus":        "soltero",
	"dependents":           "2",
	"address":              "Av. Arequipa 123",
	"district":             "Lince",
	"province":             "Lima",
	"department":           "Lima",
	"mobilePhone":          "987654321",
	"email":                "ana@example.com",
	"employmentType":       "independiente",
	"yearsEmployed":        float64(3),
	"monthlyIncome":        "2500.50",
	"loanAmount":           "3000",
	"loanTermMonths":       "12",
	"loanPurpose":          "Capital de trabajo",
	"hasCreditHistory":     true,
	"hasBankAccount":       "true",
	"acceptTerms":          true,
	"authorizeCreditCheck": true,
	"confirmTruthfulness":  true,
}

func fill(t *testing.T, c *Controller) {
	t.Helper()
	for name, value := range validValues {
		require.NoError(t, c.Set(name, value), name)
	}
	require.NoError(t, c.SelectProduct(microProduct))
}

// walkToLast advances a verified, filled controller to the consents step
func walkToLast(t *testing.T, c *Controller) {
	t.Helper()
	for c.Current() != StepConsents {
		_, err := c.Next()
		require.NoError(t, err, string(c.Current()))
	}
}

func TestEntryStepByAuthStatus(t *testing.T) {
	assert.Equal(t, StepAccount, NewController(nil, "acme", anonymous).Current())
	assert.Equal(t, StepVerification, NewController(nil, "acme", unverified).Current())
	assert.Equal(t, StepProduct, NewController(nil, "acme", verified).Current())
}

func TestOnAuthStatusChangedJumpsForward(t *testing.T) {
	c := NewController(nil, "acme", anonymous)

	c.OnAuthStatusChanged(unverified)
	assert.Equal(t, StepVerification, c.Current())

	c.OnAuthStatusChanged(verified)
	assert.Equal(t, StepProduct, c.Current())

	// an already reachable data step is kept
	require.NoError(t, c.SelectProduct(microProduct))
	_, err := c.Next()
	require.NoError(t, err)
	c.OnAuthStatusChanged(verified)
	assert.Equal(t, StepPersonal, c.Current())

	// signing out sends the form back to account creation
	c.OnAuthStatusChanged(anonymous)
	assert.Equal(t, StepAccount, c.Current())
}

func TestGatedStepsRefuseNext(t *testing.T) {
	c := NewController(nil, "acme", anonymous)
	_, err := c.Next()
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
	assert.Contains(t, c.FieldErrors(), "account")
	assert.Equal(t, StepAccount, c.Current())

	c = NewController(nil, "acme", unverified)
	_, err = c.Next()
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
	assert.Equal(t, StepVerification, c.Current())
}

func TestNextValidatesOnlyCurrentStep(t *testing.T) {
	c := NewController(nil, "acme", verified)
	require.NoError(t, c.SelectProduct(microProduct))
	_, err := c.Next()
	require.NoError(t, err)
	require.Equal(t, StepPersonal, c.Current())

	require.NoError(t, c.Set("firstName", "A"))
	require.NoError(t, c.Set("documentType", "RUC"))
	_, err = c.Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
	assert.Equal(t, StepPersonal, c.Current())

	var fe *FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "Nombre requerido", fe.Fields["firstName"])
	assert.Equal(t, "Tipo de documento inválido", fe.Fields["documentType"])
	assert.Contains(t, fe.Fields, "lastName")
	// fields of later steps are not reported
	assert.NotContains(t, fe.Fields, "address")
	assert.NotContains(t, fe.Fields, "acceptTerms")

	// the draft survives a failed transition
	assert.Equal(t, "A", c.Draft().Text("firstName"))
}

func TestProductStepRequiresSelection(t *testing.T) {
	c := NewController(nil, "acme", verified)
	_, err := c.Next()
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
	assert.Equal(t, "Selecciona un producto", c.FieldErrors()["product"])
}

func TestNumericFieldMessages(t *testing.T) {
	d := NewDraft()
	require.NoError(t, d.Set("monthlyIncome", "mucho"))
	require.NoError(t, d.Set("loanTermMonths", "12.5"))
	require.NoError(t, d.Set("otherIncome", "-3"))

	errs := validateFields(d, FieldsFor(StepFinancial))
	assert.Equal(t, "Debe ser un número válido", errs["monthlyIncome"])
	assert.Equal(t, "Debe ser un número entero", errs["loanTermMonths"])
	assert.Equal(t, "Debe ser un número válido", errs["otherIncome"])
	assert.Equal(t, "Monto del préstamo requerido", errs["loanAmount"])
}

func TestFinancialStepChecksProductBounds(t *testing.T) {
	c := NewController(nil, "acme", verified)
	fill(t, c)
	require.NoError(t, c.Set("loanAmount", "6000"))

	for c.Current() != StepFinancial {
		_, err := c.Next()
		require.NoError(t, err)
	}
	_, err := c.Next()
	assert.ErrorIs(t, err, domain.ErrOutOfRange)
	assert.Contains(t, c.FieldErrors(), "loanAmount")
	assert.Equal(t, StepFinancial, c.Current())
}

func TestFinancialStepRejectsOverflowingTerm(t *testing.T) {
	c := NewController(nil, "acme", verified)
	fill(t, c)
	require.NoError(t, c.Set("loanTermMonths", "99999999999999999999"))

	for c.Current() != StepFinancial {
		_, err := c.Next()
		require.NoError(t, err)
	}
	_, err := c.Next()
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
	assert.Equal(t, "Debe ser un número entero", c.FieldErrors()["loanTermMonths"])
	assert.Equal(t, StepFinancial, c.Current())
}

func TestSubmitReportsOverflowingTermOnField(t *testing.T) {
	c := NewController(nil, "acme", verified)
	fill(t, c)
	walkToLast(t, c)
	require.NoError(t, c.Set("loanTermMonths", "99999999999999999999"))

	sub := &fakeSubmitter{}
	_, err := c.Submit(context.Background(), sub)
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
	assert.Contains(t, c.FieldErrors(), "loanTermMonths")
	assert.Equal(t, 0, sub.calls)
	assert.Equal(t, StepConsents, c.Current())
}

func TestCheckBoundsTreatsUnparseableAsOutOfRange(t *testing.T) {
	d := NewDraft()
	d.product = microProduct
	require.NoError(t, d.Set("loanAmount", "3000"))
	require.NoError(t, d.Set("loanTermMonths", "99999999999999999999"))

	errs := checkBounds(d)
	assert.Equal(t, "El plazo debe estar entre 3 y 24 meses", errs["loanTermMonths"])
	assert.NotContains(t, errs, "loanAmount")
}

func TestPreviousSkipsGatedSteps(t *testing.T) {
	c := NewController(nil, "acme", verified)
	_, err := c.Previous()
	assert.ErrorIs(t, err, domain.ErrNoPreviousStep)
	assert.Equal(t, StepProduct, c.Current())
	assert.False(t, c.CanGoBack())

	require.NoError(t, c.SelectProduct(microProduct))
	_, err = c.Next()
	require.NoError(t, err)
	assert.True(t, c.CanGoBack())

	step, err := c.Previous()
	require.NoError(t, err)
	assert.Equal(t, StepProduct, step)
}

func TestPreviousRefusedAtAccount(t *testing.T) {
	c := NewController(nil, "acme", anonymous)
	_, err := c.Previous()
	assert.ErrorIs(t, err, domain.ErrNoPreviousStep)
	assert.Equal(t, StepAccount, c.Current())
}

func TestNextOnLastStepPointsToSubmit(t *testing.T) {
	c := NewController(nil, "acme", verified)
	fill(t, c)
	walkToLast(t, c)

	_, err := c.Next()
	assert.ErrorIs(t, err, domain.ErrLastStep)
	assert.Equal(t, StepConsents, c.Current())
}

func TestSubmitOnlyFromLastStep(t *testing.T) {
	c := NewController(nil, "acme", verified)
	fill(t, c)
	sub := &fakeSubmitter{}

	_, err := c.Submit(context.Background(), sub)
	assert.ErrorIs(t, err, domain.ErrNotOnLastStep)
	assert.Equal(t, 0, sub.calls)
}

func TestSubmitOutOfRangeSkipsPersistence(t *testing.T) {
	c := NewController(nil, "acme", verified)
	fill(t, c)
	walkToLast(t, c)

	require.NoError(t, c.SelectProduct(&domain.ProductSnapshot{ID: 2, TermMin: 1, TermMax: 36, AmountMin: 1000, AmountMax: 5000}))
	require.NoError(t, c.Set("loanAmount", 6000.0))

	sub := &fakeSubmitter{}
	_, err := c.Submit(context.Background(), sub)
	assert.ErrorIs(t, err, domain.ErrOutOfRange)
	assert.Equal(t, 0, sub.calls)
	assert.Equal(t, StepConsents, c.Current())
}

func TestSubmitRequiresConsents(t *testing.T) {
	c := NewController(nil, "acme", verified)
	fill(t, c)
	walkToLast(t, c)
	require.NoError(t, c.Set("acceptTerms", false))

	sub := &fakeSubmitter{}
	_, err := c.Submit(context.Background(), sub)
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
	assert.Equal(t, "Debes aceptar los términos", c.FieldErrors()["acceptTerms"])
	assert.Equal(t, 0, sub.calls)
}

func TestSubmitRevalidatesEarlierSteps(t *testing.T) {
	c := NewController(nil, "acme", verified)
	fill(t, c)
	walkToLast(t, c)
	require.NoError(t, c.Set("email", "not-an-email"))

	sub := &fakeSubmitter{}
	_, err := c.Submit(context.Background(), sub)
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
	assert.Equal(t, "Email inválido", c.FieldErrors()["email"])
	assert.Equal(t, 0, sub.calls)
}

func TestSubmitAssemblesRecord(t *testing.T) {
	c := NewController(nil, "acme", verified)
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return created }
	fill(t, c)
	require.NoError(t, c.Set("acceptGeolocation", true))
	require.NoError(t, c.SetLocation(-12.08, -77.03))
	walkToLast(t, c)

	sub := &fakeSubmitter{}
	id, err := c.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, "app-1", id)
	assert.Equal(t, StepComplete, c.Current())
	assert.True(t, c.IsComplete())
	assert.Equal(t, "app-1", c.ApplicationID())

	rec := sub.last
	require.NotNil(t, rec)
	assert.Equal(t, "acme", rec.TenantID)
	assert.Equal(t, uint(7), rec.UserID)
	assert.Equal(t, domain.StatusPending, rec.Status)
	assert.Equal(t, created, rec.CreatedAt)
	assert.Equal(t, "Ana", rec.PersonalInfo.FirstName)
	require.NotNil(t, rec.PersonalInfo.Dependents)
	assert.Equal(t, 2, *rec.PersonalInfo.Dependents)
	require.NotNil(t, rec.EmploymentInfo.YearsEmployed)
	assert.Equal(t, 3, *rec.EmploymentInfo.YearsEmployed)
	assert.Nil(t, rec.EmploymentInfo.MonthsEmployed)
	assert.InDelta(t, 2500.50, rec.FinancialInfo.MonthlyIncome, 0.001)
	assert.Equal(t, 3000.0, rec.FinancialInfo.LoanAmount)
	assert.Equal(t, 12, rec.FinancialInfo.LoanTermMonths)
	assert.True(t, rec.AdditionalInfo.HasBankAccount)
	assert.True(t, rec.Consents.AllGiven())
	require.NotNil(t, rec.Product)
	assert.Equal(t, "MICRO", rec.Product.Code)
	require.NotNil(t, rec.Location)
	assert.Equal(t, -12.08, rec.Location.Latitude)

	// the form is frozen once submitted
	assert.ErrorIs(t, c.Set("firstName", "Otra"), domain.ErrWizardComplete)
	_, err = c.Submit(context.Background(), sub)
	assert.ErrorIs(t, err, domain.ErrWizardComplete)
	assert.Equal(t, 1, sub.calls)
}

func TestSubmitWithoutGeolocationConsentDropsLocation(t *testing.T) {
	c := NewController(nil, "acme", verified)
	fill(t, c)
	require.NoError(t, c.SetLocation(-12.08, -77.03))
	walkToLast(t, c)

	sub := &fakeSubmitter{}
	_, err := c.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Nil(t, sub.last.Location)
}

func TestSubmitFailureKeepsDraftForRetry(t *testing.T) {
	c := NewController(nil, "acme", verified)
	fill(t, c)
	walkToLast(t, c)

	sub := &fakeSubmitter{err: errors.New("database unavailable")}
	_, err := c.Submit(context.Background(), sub)
	assert.ErrorIs(t, err, domain.ErrSubmissionFailed)
	assert.Equal(t, StepConsents, c.Current())
	assert.Contains(t, c.SubmitError(), "database unavailable")
	assert.Equal(t, "Ana", c.Draft().Text("firstName"))

	sub.err = nil
	id, err := c.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, "app-1", id)
	assert.Empty(t, c.SubmitError())
	assert.Equal(t, 2, sub.calls)
}

func TestSetRejectsUnknownAndMalformed(t *testing.T) {
	c := NewController(nil, "acme", verified)
	assert.ErrorIs(t, c.Set("salary", "1"), domain.ErrUnknownField)
	assert.ErrorIs(t, c.Set("acceptTerms", "maybe"), domain.ErrInvalidInput)
	assert.ErrorIs(t, c.Set("firstName", []string{"a"}), domain.ErrInvalidInput)
	assert.ErrorIs(t, c.SetLocation(91, 0), domain.ErrInvalidInput)
}
