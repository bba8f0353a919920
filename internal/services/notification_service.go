// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/libreshelf/library-backend/internal/config"
	"github.com/libreshelf/library-backend/internal/models"
)

type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

type NotificationRequest struct {
	UserID    uuid.UUID              `json:"user_id" validate:"required"`
	Type      string                 `json:"type" validate:"required"`
	Title     string                 `json:"title" validate:"required"`
	Message   string                 `json:"message" validate:"required"`
	Data      map[string]interface{} `json:"data,omitempty"`
	SendEmail bool                   `json:"send_email,omitempty"`
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

// Authentication notifications
func (s *NotificationService) SendWelcomeEmail(user *models.User, verificationToken string) error {
	template := s.getEmailTemplate("welcome")

	data := map[string]interface{}{
		"Username":        user.Username,
		"VerificationURL": fmt.Sprintf("%s/verify-email?token=%s", s.config.Frontend.BaseURL, verificationToken),
		"PlatformName":    "LibreShelf",
	}

	subject := "Welcome to LibreShelf"
	body, err := s.renderTemplate(template.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, subject, body)
}

func (s *NotificationService) SendPasswordResetEmail(user *models.User, resetToken string) error {
	template := s.getEmailTemplate("password_reset")

	data := map[string]interface{}{
		"Username":  user.Username,
		"ResetURL":  fmt.Sprintf("%s/reset-password?token=%s", s.config.Frontend.BaseURL, resetToken),
		"ExpiresIn": "1 hour",
	}

	subject := "Password Reset Request"
	body, err := s.renderTemplate(template.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, subject, body)
}

// Circulation notifications

// NotifyOrderCreated records a staff notification for a new order. Paper
// orders get a higher priority since a copy has to be put aside for pickup.
func (s *NotificationService) NotifyOrderCreated(order *models.Order) error {
	book := order.Book
	if book.ID == uuid.Nil {
		if err := s.db.First(&book, "id = ?", order.BookID).Error; err != nil {
			logrus.WithError(err).Warn("Failed to load book for order notification")
		}
	}

	priority := "low"
	message := fmt.Sprintf("New %s order for '%s'", order.OrderType, book.Title)
	if order.OrderType == models.CirculationTypePaper {
		priority = "medium"
		if order.BookCopy != nil {
			message = fmt.Sprintf("Copy #%d of '%s' is awaiting pickup", order.BookCopy.CopyNumber, book.Title)
		}
	}

	notification := &models.AdminNotification{
		Type:                "order_created",
		Title:               "New Order",
		Message:             message,
		Priority:            priority,
		RelatedResourceType: "order",
		RelatedResourceID:   &order.ID,
	}

	if err := s.db.Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// NotifyOrderDeleted records a staff notification when an order is closed
// and, for paper orders, the copy is back on the shelf.
func (s *NotificationService) NotifyOrderDeleted(order *models.Order) error {
	var book models.Book
	if err := s.db.First(&book, "id = ?", order.BookID).Error; err != nil {
		logrus.WithError(err).Warn("Failed to load book for order notification")
	}

	message := fmt.Sprintf("Order for '%s' was closed", book.Title)
	if order.HoldsCopy() {
		message = fmt.Sprintf("A copy of '%s' was returned to circulation", book.Title)
	}

	notification := &models.AdminNotification{
		Type:                "order_closed",
		Title:               "Order Closed",
		Message:             message,
		Priority:            "low",
		RelatedResourceType: "order",
		RelatedResourceID:   &order.ID,
	}

	if err := s.db.Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// Admin notifications
func (s *NotificationService) SendUserStatusChangeNotification(user *models.User, oldStatus models.UserStatus, reason string) error {
	data := map[string]interface{}{
		"Username":  user.Username,
		"NewStatus": user.Status,
		"OldStatus": oldStatus,
		"Reason":    reason,
	}

	subject := "Account Status Update"
	template := s.getEmailTemplate("user_status_change")
	body, err := s.renderTemplate(template.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, subject, body)
}

// Generic notification methods
func (s *NotificationService) SendCustomNotification(req *NotificationRequest) error {
	// Create in-app notification
	notification := &models.AdminNotification{
		Type:    req.Type,
		Title:   req.Title,
		Message: req.Message,
	}

	if err := s.db.Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	// Send email if requested
	if req.SendEmail {
		var user models.User
		if err := s.db.First(&user, req.UserID).Error; err != nil {
			return fmt.Errorf("user not found: %w", err)
		}

		return s.sendEmail(user.Email, req.Title, req.Message)
	}

	return nil
}

// Helper methods
func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		fmt.Printf("Email would be sent to %s: %s\n", to, subject)
		return nil
	}

	// Setup authentication
	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	// Compose message
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	// Send email
	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	// In a real implementation, these would be loaded from files or database
	templates := map[string]EmailTemplate{
		"welcome": {
			Subject: "Welcome to LibreShelf",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Welcome {{.Username}}!</h2>
	<p>Thank you for joining LibreShelf. Please verify your email address by clicking the link below:</p>
	<a href="{{.VerificationURL}}">Verify Email</a>
	<p>Best regards,<br>{{.PlatformName}} Team</p>
</body>
</html>`,
		},
		"password_reset": {
			Subject: "Password Reset Request",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Password Reset</h2>
	<p>Hello {{.Username}},</p>
	<p>A password reset was requested for your account. The link below expires in {{.ExpiresIn}}.</p>
	<a href="{{.ResetURL}}">Reset Password</a>
	<p>If you did not request this, you can ignore this email.</p>
</body>
</html>`,
		},
		"user_status_change": {
			Subject: "Account Status Update",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Account Status Update</h2>
	<p>Hello {{.Username}},</p>
	<p>Your account status changed from {{.OldStatus}} to {{.NewStatus}}.</p>
	<p>{{.Reason}}</p>
</body>
</html>`,
		},
	}

	if template, exists := templates[templateType]; exists {
		return template
	}

	// Default template
	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Message}}</p>",
	}
}
