package email

import "fmt"

func verificationTemplate(name, link string) string {
	return fmt.Sprintf(`
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<h2>Welcome, %s!</h2>
	<p>Thanks for registering with Sorriso Kids. To activate your account,
	confirm your email address by clicking the link below:</p>
	<p><a href="%s" style="background: #3498db; color: #fff; padding: 10px 18px;
	text-decoration: none; border-radius: 4px;">Confirm email</a></p>
	<p>The link is valid for 24 hours. If you did not register, you can ignore
	this message.</p>
</body>
</html>`, name, link)
}

func passwordResetTemplate(link string) string {
	return fmt.Sprintf(`
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<h2>Password reset</h2>
	<p>We received a request to reset your password. Click the link below to
	choose a new one:</p>
	<p><a href="%s" style="background: #3498db; color: #fff; padding: 10px 18px;
	text-decoration: none; border-radius: 4px;">Reset password</a></p>
	<p>The link is valid for 1 hour and can be used once. If you did not ask
	for a reset, you can ignore this message.</p>
</body>
</html>`, link)
}

func appointmentConfirmationTemplate(childName, dentistName, date, startTime string) string {
	return fmt.Sprintf(`
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<h2>Appointment confirmed</h2>
	<p>An appointment for <strong>%s</strong> has been booked:</p>
	<ul>
		<li>Dentist: %s</li>
		<li>Date: %s</li>
		<li>Time: %s</li>
	</ul>
	<p>Please arrive 10 minutes early.</p>
</body>
</html>`, childName, dentistName, date, startTime)
}

func dentistWelcomeTemplate(name, email, tempPassword, link string) string {
	return fmt.Sprintf(`
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<h2>Welcome aboard, %s!</h2>
	<p>Your volunteer application was approved. A dentist account has been
	created for you:</p>
	<ul>
		<li>Login: %s</li>
		<li>Temporary password: <code>%s</code></li>
	</ul>
	<p>Sign in at <a href="%s">%s</a> and change your password right away.</p>
</body>
</html>`, name, email, tempPassword, link, link)
}
