package email

import (
	"fmt"
	"html"
	"time"
)

const (
	brandGradient = "linear-gradient(135deg, #800020 0%, #a91e43 100%)"
	brandColor    = "#800020"
)

// Message is a rendered email ready for a Notifier.
type Message struct {
	Subject string
	HTML    string
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// layout wraps content, which must already be HTML, in the branded frame.
// Every other argument is plain text.
func layout(header, content, buttonURL, buttonText, signoff string) string {
	return fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: %s; padding: 30px; text-align: center; border-radius: 10px 10px 0 0;">
    <h1 style="color: white; margin: 0;">%s</h1>
  </div>
  <div style="background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px;">
    %s
    <div style="text-align: center; margin: 30px 0;">
      <a href="%s" style="background: %s; color: white; padding: 12px 30px; text-decoration: none; border-radius: 25px; display: inline-block;">%s</a>
    </div>
    <p>%s</p>
  </div>
</div>
`, brandGradient, html.EscapeString(header), content, html.EscapeString(buttonURL), brandColor,
		html.EscapeString(buttonText), html.EscapeString(signoff))
}

// WelcomeEmail greets a newly registered user.
func WelcomeEmail(name, appURL string) Message {
	content := fmt.Sprintf(`<h2>Hi %s!</h2>
    <p>Thank you for joining Scholaco. We're excited to help you track your scholarship applications!</p>
    <p><strong>What you can do:</strong></p>
    <ul>
      <li>Track all your scholarship applications in one place</li>
      <li>Never miss a deadline with smart reminders</li>
      <li>Monitor your progress with beautiful analytics</li>
    </ul>`, html.EscapeString(name))

	return Message{
		Subject: "Welcome to Scholaco! 🎓",
		HTML:    layout("Welcome to Scholaco!", content, appURL, "Get Started", "Best of luck with your applications!"),
	}
}

// DeadlineReminderEmail warns that an application deadline is daysLeft days away.
func DeadlineReminderEmail(appName, organization string, deadline time.Time, daysLeft int, appURL string) Message {
	content := fmt.Sprintf(`<h2>Don't forget!</h2>
    <div style="background: #fff3cd; border-left: 4px solid #ffc107; padding: 15px; margin: 20px 0;">
      <h3 style="margin-top: 0;">%s</h3>
      <p><strong>Organization:</strong> %s</p>
      <p><strong>Deadline:</strong> %s</p>
      <p><strong>Time Remaining:</strong> %d day%s</p>
    </div>
    <p><strong>Action items:</strong></p>
    <ul>
      <li>Complete all required documents</li>
      <li>Review your application</li>
      <li>Submit before the deadline</li>
    </ul>`,
		html.EscapeString(appName),
		html.EscapeString(organization),
		deadline.Format("Monday, January 2, 2006"),
		daysLeft, plural(daysLeft),
	)

	return Message{
		Subject: fmt.Sprintf("⏰ Reminder: %s deadline in %d day%s", appName, daysLeft, plural(daysLeft)),
		HTML:    layout("⏰ Deadline Reminder", content, appURL+"/dashboard", "View in Scholaco", "Good luck! 🚀"),
	}
}

// ApplicationSubmittedEmail confirms an application was marked as submitted.
func ApplicationSubmittedEmail(appName, appURL string) Message {
	content := fmt.Sprintf(`<h2>Great job!</h2>
    <p>Your application for <strong>%s</strong> has been marked as submitted.</p>
    <p>We'll keep tracking it for you. You can view all your applications in your Scholaco dashboard.</p>`,
		html.EscapeString(appName))

	return Message{
		Subject: fmt.Sprintf("✅ Application Submitted: %s", appName),
		HTML:    layout("✅ Application Submitted!", content, appURL+"/dashboard", "View Dashboard", "Keep up the great work! 🎉"),
	}
}
