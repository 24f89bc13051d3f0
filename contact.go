package main

import (
	"fmt"
	"net/http"
	"net/smtp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// contactHandler handles contact form submissions with HTMX, returning an
// HTML fragment for the form area.
func contactHandler(cfg SMTPConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.PostForm("fullName")
		email := c.PostForm("email")
		message := c.PostForm("message")

		if name == "" || email == "" || message == "" {
			c.HTML(http.StatusOK, "contact-error.html", gin.H{
				"error": "Please fill in your name, email and a message.",
			})
			return
		}
		if !strings.Contains(email, "@") {
			c.HTML(http.StatusOK, "contact-error.html", gin.H{
				"error": "That email address doesn't look right.",
			})
			return
		}

		if err := sendContactEmail(cfg, name, email, message); err != nil {
			logrus.WithError(err).Error("Error sending contact email")
			c.HTML(http.StatusOK, "contact-error.html", gin.H{
				"error": "Sorry, there was an error sending your message. Please try again later.",
			})
			return
		}

		c.HTML(http.StatusOK, "contact-success.html", gin.H{
			"success": "Thank you for your message! I'll get back to you soon.",
		})
	}
}

func sendContactEmail(cfg SMTPConfig, name, email, message string) error {
	if cfg.User == "" || cfg.Pass == "" {
		return fmt.Errorf("SMTP credentials not configured")
	}
	if cfg.ToEmail == "" {
		return fmt.Errorf("TO_EMAIL not configured")
	}

	subject := fmt.Sprintf("Portfolio Contact: %s", name)
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Message:
%s

---
Sent from your portfolio contact form
`, name, email, message)

	msg := []byte("To: " + cfg.ToEmail + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"From: " + cfg.User + "\r\n" +
		"Reply-To: " + email + "\r\n" +
		"\r\n" +
		body + "\r\n")

	auth := smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)

	if err := smtp.SendMail(cfg.Host+":"+cfg.Port, auth, cfg.User, []string{cfg.ToEmail}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"name":  name,
		"email": email,
	}).Info("Contact email sent")
	return nil
}
