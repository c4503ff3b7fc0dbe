package wizard

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"microcredit-api/internal/core/domain"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		n, err := strconv.ParseFloat(fl.Field().String(), 64)
		return err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) && n >= 0
	})
	_ = v.RegisterValidation("integer", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Field().String())
		return err == nil && n >= 0
	})
	return v
}

// FieldErrors carries per-field messages. Kind is ErrValidationFailed or
// ErrOutOfRange.
type FieldErrors struct {
	Kind   error
	Fields map[string]string
}

func (e *FieldErrors) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("%v: %s", e.Kind, strings.Join(names, ", "))
}

func (e *FieldErrors) Unwrap() error {
	return e.Kind
}

// validateFields checks the named fields of d and returns their messages
func validateFields(d *Draft, names []string) map[string]string {
	errs := make(map[string]string)
	for _, name := range names {
		f := fieldsByName[name]
		if f.rule == "" {
			continue
		}
		if err := validate.Var(d.value(f), f.rule); err != nil {
			errs[name] = messageFor(f, err)
		}
	}
	return errs
}

func messageFor(f field, err error) string {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		switch verrs[0].Tag() {
		case "amount":
			return msgNumber
		case "integer":
			return msgInteger
		}
	}
	return f.message
}

// checkBounds reports loan amount and term outside the product limits
func checkBounds(d *Draft) map[string]string {
	errs := make(map[string]string)
	p := d.product
	if p == nil {
		return errs
	}

	// unparseable values count as out of range
	amount, err := strconv.ParseFloat(d.text["loanAmount"], 64)
	if err != nil || !p.AmountInRange(amount) {
		errs["loanAmount"] = fmt.Sprintf("El monto debe estar entre %.2f y %.2f", p.AmountMin, p.AmountMax)
	}
	months, err := strconv.Atoi(d.text["loanTermMonths"])
	if err != nil || !p.TermInRange(months) {
		errs["loanTermMonths"] = fmt.Sprintf("El plazo debe estar entre %d y %d meses", p.TermMin, p.TermMax)
	}
	return errs
}

// validateStep runs the checks owned by step
func validateStep(d *Draft, step Step, status domain.AuthStatus) error {
	switch step {
	case StepAccount:
		if !status.Authenticated {
			return &FieldErrors{Kind: domain.ErrValidationFailed, Fields: map[string]string{"account": "Debes crear una cuenta o iniciar sesión"}}
		}
		return nil
	case StepVerification:
		if !status.Verified {
			return &FieldErrors{Kind: domain.ErrValidationFailed, Fields: map[string]string{"verification": "Debes verificar tu email"}}
		}
		return nil
	case StepProduct:
		if d.product == nil {
			return &FieldErrors{Kind: domain.ErrValidationFailed, Fields: map[string]string{"product": msgProduct}}
		}
		return nil
	}

	if errs := validateFields(d, FieldsFor(step)); len(errs) > 0 {
		return &FieldErrors{Kind: domain.ErrValidationFailed, Fields: errs}
	}
	if step == StepFinancial {
		if errs := checkBounds(d); len(errs) > 0 {
			return &FieldErrors{Kind: domain.ErrOutOfRange, Fields: errs}
		}
	}
	return nil
}

// validateAll is the final guard before submission
func validateAll(d *Draft) error {
	errs := make(map[string]string)
	if d.product == nil {
		errs["product"] = msgProduct
	}
	for _, step := range DefaultSteps {
		for name, msg := range validateFields(d, FieldsFor(step)) {
			errs[name] = msg
		}
	}
	if len(errs) > 0 {
		return &FieldErrors{Kind: domain.ErrValidationFailed, Fields: errs}
	}
	if errs := checkBounds(d); len(errs) > 0 {
		return &FieldErrors{Kind: domain.ErrOutOfRange, Fields: errs}
	}
	return nil
}
