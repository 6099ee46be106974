package service

import "fmt"

func welcomeEmailTemplate(email, appURL, appName string) (string, string) {
	subject := fmt.Sprintf("Welcome to %s!", appName)
	body := fmt.Sprintf(`Hi %s,

Your account is ready. Connect with your email and password to get a token, then upload your first files:
%s

Images you upload get thumbnails in 500, 250 and 100 pixel widths.

Best,
The %s Team`, email, appURL, appName)

	return subject, body
}
