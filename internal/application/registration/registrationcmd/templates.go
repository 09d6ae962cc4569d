package registrationcmd

import (
	"bytes"
	htmltemplate "html/template"
	texttemplate "text/template"
)

const VerificationSubject = "Activate your MUBAS SOMASE Voting account"

type verificationData struct {
	Username  string
	Link      string
	ExpiresIn string
}

var verificationHTML = htmltemplate.Must(htmltemplate.New("verification.html").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <h2>Welcome to MUBAS SOMASE Voting, {{.Username}}!</h2>
  <p>Thank you for registering. Please confirm your email address to activate your account.</p>
  <p><a href="{{.Link}}" style="background:#1d4ed8;color:#ffffff;padding:10px 18px;border-radius:4px;text-decoration:none;">Activate account</a></p>
  <p>If the button does not work, copy this link into your browser:<br>{{.Link}}</p>
  <p>The link expires in {{.ExpiresIn}}. If you did not register, you can ignore this email.</p>
  <p>MUBAS SOMASE Electoral Commission</p>
</body>
</html>
`))

var verificationText = texttemplate.Must(texttemplate.New("verification.txt").Parse(`Welcome to MUBAS SOMASE Voting, {{.Username}}!

Thank you for registering. Open the link below to activate your account:

{{.Link}}

The link expires in {{.ExpiresIn}}. If you did not register, you can ignore this email.

MUBAS SOMASE Electoral Commission
`))

func renderVerification(data verificationData) (html string, text string, err error) {
	var hb, tb bytes.Buffer
	if err := verificationHTML.Execute(&hb, data); err != nil {
		return "", "", err
	}
	if err := verificationText.Execute(&tb, data); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}
