package mail

import (
	"bytes"
	"html/template"
	"time"
)

const PasswordResetSubject = "Password Reset Code - TechScribe"

var passwordResetTmpl = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<body style="background-color: #f9f9f9; padding: 20px;">
  <div style="font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #ffffff; border: 1px solid #e0e0e0; border-radius: 8px;">
    <div style="text-align: center; padding-bottom: 20px; border-bottom: 1px solid #eeeeee;">
      <span style="font-size: 24px; font-weight: bold; color: #4F46E5;">TechScribe</span>
    </div>
    <div style="padding: 20px 0; color: #333333; line-height: 1.6;">
      <p>Hello,</p>
      <p>We received a request to reset your password. Use the code below to proceed:</p>
      <div style="background-color: #F3F4F6; border-radius: 8px; padding: 15px; text-align: center; margin: 20px 0;">
        <span style="font-size: 32px; font-weight: bold; color: #1F2937; letter-spacing: 5px;">{{.Code}}</span>
      </div>
      <p>This code will expire in <strong>{{.Minutes}} minutes</strong>.</p>
      <p>If you didn't request this, you can safely ignore this email.</p>
    </div>
    <div style="text-align: center; font-size: 12px; color: #888888; margin-top: 20px; border-top: 1px solid #eeeeee; padding-top: 10px;">
      <p>&copy; {{.Year}} TechScribe. All rights reserved.</p>
    </div>
  </div>
</body>
</html>
`))

// PasswordReset renders the reset code email.
func PasswordReset(code string, validFor time.Duration) (Message, error) {
	var b bytes.Buffer
	err := passwordResetTmpl.Execute(&b, struct {
		Code    string
		Minutes int
		Year    int
	}{code, int(validFor.Minutes()), time.Now().Year()})
	if err != nil {
		return Message{}, err
	}
	return Message{Subject: PasswordResetSubject, HTML: b.String()}, nil
}
