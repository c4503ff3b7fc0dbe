package wizard

import (
	"fmt"
	"strconv"
	"strings"

	"microcredit-api/internal/core/domain"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindFlag
)

// field describes one form input. rule is a validator tag; message is shown
// for any failure of the rule.
type field struct {
	name    string
	kind    fieldKind
	rule    string
	message string
}

const (
	msgNumber  = "Debe ser un número válido"
	msgInteger = "Debe ser un número entero"
	msgProduct = "Selecciona un producto"
)

var fieldTable = []field{
	// personal
	{name: "firstName", rule: "required,min=2", message: "Nombre requerido"},
	{name: "lastName", rule: "required,min=2", message: "Apellido requerido"},
	{name: "documentType", rule: "required,oneof=DNI CE PASAPORTE", message: "Tipo de documento inválido"},
	{name: "documentNumber", rule: "required,min=8", message: "Número de documento inválido"},
	{name: "birthDate", rule: "required,datetime=2006-01-02", message: "Fecha de nacimiento requerida"},
	{name: "nationality", rule: "required,min=2", message: "Nacionalidad requerida"},
	{name: "maritalStatus", rule: "required,oneof=soltero casado divorciado viudo conviviente", message: "Estado civil inválido"},
	{name: "dependents", rule: "omitempty,integer", message: msgInteger},

	// contact
	{name: "address", rule: "required,min=5", message: "Dirección requerida"},
	{name: "district", rule: "required,min=2", message: "Distrito requerido"},
	{name: "province", rule: "required,min=2", message: "Provincia requerida"},
	{name: "department", rule: "required,min=2", message: "Departamento requerido"},
	{name: "mobilePhone", rule: "required,min=9", message: "Teléfono móvil requerido"},
	{name: "email", rule: "required,email", message: "Email inválido"},
	{name: "homeReference"},

	// employment
	{name: "employmentType", rule: "required,oneof=empleado independiente empresario jubilado estudiante desempleado", message: "Tipo de empleo inválido"},
	{name: "employerName"},
	{name: "position"},
	{name: "yearsEmployed", rule: "omitempty,integer", message: msgInteger},
	{name: "monthsEmployed", rule: "omitempty,integer", message: msgInteger},
	{name: "contractType", rule: "omitempty,oneof=indefinido temporal independiente", message: "Tipo de contrato inválido"},
	{name: "workPhone"},

	// financial
	{name: "monthlyIncome", rule: "required,amount", message: "Ingreso mensual requerido"},
	{name: "otherIncome", rule: "omitempty,amount", message: msgNumber},
	{name: "otherIncomeSource"},
	{name: "monthlyExpenses", rule: "omitempty,amount", message: msgNumber},
	{name: "currentDebts", rule: "omitempty,amount", message: msgNumber},
	{name: "currentDebtsEntity"},
	{name: "loanAmount", rule: "required,amount", message: "Monto del préstamo requerido"},
	{name: "loanTermMonths", rule: "required,integer", message: "Plazo requerido"},
	{name: "loanPurpose", rule: "required", message: "Propósito requerido"},

	// additional
	{name: "hasCreditHistory", kind: kindFlag},
	{name: "hasBankAccount", kind: kindFlag},
	{name: "bankName"},
	{name: "hasGuarantee", kind: kindFlag},
	{name: "guaranteeDescription"},
	{name: "additionalComments"},

	// consents
	{name: "acceptTerms", kind: kindFlag, rule: "eq=true", message: "Debes aceptar los términos"},
	{name: "authorizeCreditCheck", kind: kindFlag, rule: "eq=true", message: "Debes autorizar la consulta"},
	{name: "confirmTruthfulness", kind: kindFlag, rule: "eq=true", message: "Debes confirmar la veracidad"},
	{name: "acceptGeolocation", kind: kindFlag},
}

var fieldsByName = func() map[string]field {
	m := make(map[string]field, len(fieldTable))
	for _, f := range fieldTable {
		m[f.name] = f
	}
	return m
}()

// KnownField reports whether name is a draft field
func KnownField(name string) bool {
	_, ok := fieldsByName[name]
	return ok
}

// textValue converts an incoming form value to its stored string
func textValue(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("%w: unsupported value %T", domain.ErrInvalidInput, value)
	}
}

// flagValue converts an incoming form value to a checkbox state
func flagValue(value interface{}) (bool, error) {
	switch v := value.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("%w: %q is not a boolean", domain.ErrInvalidInput, v)
		}
		return b, nil
	default:
		return false, fmt.Errorf("%w: unsupported value %T", domain.ErrInvalidInput, value)
	}
}
