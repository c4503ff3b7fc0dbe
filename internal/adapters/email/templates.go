package email

import (
	"bytes"
	"html/template"
)

var verificationTmpl = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Arial, sans-serif; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1>Verificación de Email</h1>
    <p>Hola,</p>
    <p>Para continuar con tu registro en {{.Brand}}, usa el siguiente código de verificación:</p>
    <div style="border: 2px dashed #667eea; border-radius: 8px; padding: 20px; text-align: center;">
      <span style="font-size: 32px; font-weight: bold; letter-spacing: 8px; color: #667eea;">{{.Code}}</span>
    </div>
    <p>Este código expirará en {{.Minutes}} minutos.</p>
    <p>Si no solicitaste este código, puedes ignorar este mensaje.</p>
  </div>
</body>
</html>`))

var applicationTmpl = template.Must(template.New("application").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Arial, sans-serif; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1>{{.Title}}</h1>
    <p>Hola {{.Name}},</p>
    <p>{{.Body}}</p>
    <p>Número de solicitud: <strong>{{.ApplicationID}}</strong></p>
    <p>Estado: <strong>{{.Status}}</strong></p>
  </div>
</body>
</html>`))

// VerificationSubject is the subject line of verification code emails
const VerificationSubject = "Código de Verificación"

// RenderVerification renders the verification code email body
func RenderVerification(brand, code string, minutes int) (string, error) {
	var buf bytes.Buffer
	err := verificationTmpl.Execute(&buf, map[string]interface{}{
		"Brand":   brand,
		"Code":    code,
		"Minutes": minutes,
	})
	return buf.String(), err
}

// ApplicationMessage is the data of an application notification
type ApplicationMessage struct {
	Title         string
	Name          string
	Body          string
	ApplicationID string
	Status        string
}

// RenderApplication renders an application notification body
func RenderApplication(msg ApplicationMessage) (string, error) {
	var buf bytes.Buffer
	err := applicationTmpl.Execute(&buf, msg)
	return buf.String(), err
}
