package service

import (
	"fmt"
	"html"
)

func passwordRecoveryEmailTemplate(code, appName string) (string, string) {
	subject := "Password Recovery Request"
	body := fmt.Sprintf(`<h1>%s Password Recovery Message</h1>
<p>Use this code to recover your password: <b>%s</b></p>
<p>If you didn't request this, you can safely ignore this email.</p>`,
		html.EscapeString(appName), html.EscapeString(code))

	return subject, body
}

func verificationEmailTemplate(name, verifyURL, appName string) (string, string) {
	subject := fmt.Sprintf("Verify your %s account", appName)
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Confirm your email address by following this link:</p>
<p><a href="%s">%s</a></p>
<p>Best,<br>The %s Team</p>`,
		html.EscapeString(name), html.EscapeString(verifyURL), html.EscapeString(verifyURL), html.EscapeString(appName))

	return subject, body
}
