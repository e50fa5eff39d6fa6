package services

import (
	"fmt"
	"strings"

	"github.com/profactive/backend/internal/models"
)

func orderCreatedEmail(adminEmail string, order *models.Order, course *models.Course) models.Email {
	return models.Email{
		To:      adminEmail,
		Subject: fmt.Sprintf("New order #%d: %s", order.ID, course.Name),
		Body: fmt.Sprintf(
			"A new order is waiting for activation.\n\nCourse: %s\nEmail: %s\n%s\n",
			course.Name, order.Sender, order.Notes,
		),
	}
}

func orderActivatedEmail(to string, order *models.Order) models.Email {
	return models.Email{
		To:      to,
		Subject: "Your course is now available",
		Body: fmt.Sprintf(
			"Your order #%d for the course \"%s\" has been activated.\nSign in to your account to start learning.\n",
			order.ID, order.CourseName,
		),
	}
}

// credentialsEmail takes the raw password explicitly, it is never stored on the user
func credentialsEmail(user *models.User, password, siteURL string) models.Email {
	return models.Email{
		To:      user.Email,
		Subject: "Your account has been created",
		Body: fmt.Sprintf(
			"Hello, %s!\n\nAn account has been created for you.\n\nLogin: %s\nPassword: %s\n\nSign in at %s and change the password in your profile.\n",
			user.FullName(), user.Email, password, siteURL,
		),
	}
}

func referralEmail(ref *models.Referral) models.Email {
	return models.Email{
		To:      ref.Email,
		Subject: "Your referral promo code",
		Body: fmt.Sprintf(
			"Hello, %s!\n\nYour promo code: %s\nShare your link: %s\n",
			ref.FullName(), ref.PromoCode, ref.ReferralLink,
		),
	}
}

func pendingOrdersDigestEmail(adminEmail string, orders []models.Order) models.Email {
	var body strings.Builder
	fmt.Fprintf(&body, "Orders waiting for activation: %d\n\n", len(orders))
	for _, order := range orders {
		fmt.Fprintf(&body, "#%d %s, %s, %s\n", order.ID, order.OrderDate.Format("2006-01-02"), order.CourseName, order.Sender)
	}

	return models.Email{
		To:      adminEmail,
		Subject: fmt.Sprintf("%d pending orders", len(orders)),
		Body:    body.String(),
	}
}
