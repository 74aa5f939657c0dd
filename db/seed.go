package db

import (
	"errors"
	"log"

	"github.com/munhub-dev/munhub/internal/models"
	"github.com/munhub-dev/munhub/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Seed creates the first super admin and the stock email templates on an
// empty database. It is safe to run on every boot.
func Seed(conn *gorm.DB, adminEmail, adminPassword string) error {
	if adminEmail != "" && adminPassword != "" {
		if err := seedAdmin(conn, adminEmail, adminPassword); err != nil {
			return err
		}
	}

	return seedTemplates(conn)
}

func seedAdmin(conn *gorm.DB, email, password string) error {
	var existing models.User

	err := conn.Where("email = ?", email).First(&existing).Error

	if err == nil {
		return nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	if err != nil {
		return err
	}

	admin := models.User{
		FirstName:    "Super",
		LastName:     "Admin",
		Email:        email,
		PasswordHash: string(hash),
		Role:         string(types.RoleSuperAdmin),
		Active:       true,
	}

	if err := conn.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("Seeded super admin %s", email)
	return nil
}

var stockTemplates = []models.EmailTemplate{
	{
		Name:      "registration_received",
		Subject:   "We received your registration, {{firstName}}",
		HTMLBody:  "<p>Hi {{firstName}},</p><p>Your registration has been received and is under review. Your current status is <b>{{status}}</b>.</p>",
		TextBody:  "Hi {{firstName}}, your registration has been received and is under review. Current status: {{status}}.",
		Variables: datatypes.JSON([]byte(`["firstName","status"]`)),
		Active:    true,
	},
	{
		Name:      "registration_shortlisted",
		Subject:   "You have been shortlisted, {{firstName}}",
		HTMLBody:  "<p>Hi {{firstName}},</p><p>You have been shortlisted. Please complete your payment of {{amount}} to confirm your seat.</p>",
		TextBody:  "Hi {{firstName}}, you have been shortlisted. Please complete your payment of {{amount}} to confirm your seat.",
		Variables: datatypes.JSON([]byte(`["firstName","amount"]`)),
		Active:    true,
	},
	{
		Name:      "payment_confirmed",
		Subject:   "Payment received",
		HTMLBody:  "<p>Hi {{firstName}},</p><p>We received your payment of {{amount}}. Your seat is confirmed.</p>",
		TextBody:  "Hi {{firstName}}, we received your payment of {{amount}}. Your seat is confirmed.",
		Variables: datatypes.JSON([]byte(`["firstName","amount"]`)),
		Active:    true,
	},
	{
		Name:      "allocation_announced",
		Subject:   "Your committee allocation",
		HTMLBody:  "<p>Hi {{firstName}},</p><p>You have been allocated <b>{{portfolio}}</b> in <b>{{committee}}</b>.</p>",
		TextBody:  "Hi {{firstName}}, you have been allocated {{portfolio}} in {{committee}}.",
		Variables: datatypes.JSON([]byte(`["firstName","committee","portfolio"]`)),
		Active:    true,
	},
}

func seedTemplates(conn *gorm.DB) error {
	for _, tmpl := range stockTemplates {
		var existing models.EmailTemplate

		err := conn.Where("name = ?", tmpl.Name).First(&existing).Error

		if err == nil {
			continue
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := conn.Create(&tmpl).Error; err != nil {
			return err
		}
	}

	return nil
}
