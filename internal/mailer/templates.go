package mailer

import (
	"fmt"
	"strings"
	"time"
)

// SignInCodeMail builds the passwordless sign-in email with both the short
// code and the magic-link variant.
func SignInCodeMail(code, link string) (subject, body string) {
	subject = "Your sign-in code"
	body = fmt.Sprintf(
		"Your sign-in code is: %s\n\nIt expires in 10 minutes.\n\nOr sign in directly:\n%s\n",
		code, link,
	)
	return subject, body
}

// InvitationMail builds the organization invitation email.
func InvitationMail(orgName, inviterEmail, link string) (subject, body string) {
	subject = fmt.Sprintf("You've been invited to join %s", orgName)
	body = fmt.Sprintf(
		"%s invited you to join the %s team.\n\nAccept the invitation:\n%s\n\nThe invitation expires in 7 days.\n",
		inviterEmail, orgName, link,
	)
	return subject, body
}

// NewMessageMail builds the notification sent to a todo's other readers when
// a comment is posted.
func NewMessageMail(authorEmail, todoTitle, content string) (subject, body string) {
	subject = fmt.Sprintf("New comment on \"%s\"", todoTitle)
	body = fmt.Sprintf("%s commented on \"%s\":\n\n%s\n", authorEmail, todoTitle, content)
	return subject, body
}

// DigestItem is one pending todo line in a notification digest.
type DigestItem struct {
	Title       string
	OwnerEmail  string
	DueDate     *time.Time
	Description string
}

// DigestMail builds one batched email listing all of a user's pending todo
// notifications.
func DigestMail(items []DigestItem) (subject, body string) {
	subject = fmt.Sprintf("%d todo(s) were shared with you", len(items))

	var b strings.Builder
	b.WriteString("The following todos were shared with you:\n\n")
	for _, item := range items {
		fmt.Fprintf(&b, "- %s (from %s)", item.Title, item.OwnerEmail)
		if item.DueDate != nil {
			fmt.Fprintf(&b, ", due %s", item.DueDate.Format("2006-01-02"))
		}
		b.WriteString("\n")
		if item.Description != "" {
			fmt.Fprintf(&b, "  %s\n", item.Description)
		}
	}
	return subject, b.String()
}
