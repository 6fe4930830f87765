package service

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"path/filepath"
	"time"

	"bookflow/internal/db"
	"bookflow/internal/entities"
)

// SenderService composes and delivers booking notifications. Delivery itself
// runs in a goroutine: the booking is already committed by the time this is
// called, so a slow or failing provider never blocks the confirm path.
type SenderService struct {
	Loc *time.Location
}

func NewSenderService(loc *time.Location) *SenderService {
	if loc == nil {
		loc = time.UTC
	}
	return &SenderService{Loc: loc}
}

func (s *SenderService) SendBookingConfirmation(booking db.Booking) error {
	emailData := entities.BookingEmailData{
		UserName:      booking.UserName,
		BookingCode:   booking.Code,
		DateFormatted: booking.BookingDate.In(s.Loc).Format("Monday, 02 Jan 2006"),
		TimeFormatted: booking.BookingTime,
		DurationMins:  booking.DurationMins,
		Notes:         booking.Notes,
		CurrentYear:   time.Now().In(s.Loc).Year(),
		Status:        booking.Status,
	}

	emailSubject := fmt.Sprintf("Your appointment is %s - Code: %s", booking.Status, emailData.BookingCode)
	plainTextBody := fmt.Sprintf(
		"Hello %s,\n\nYour appointment is %s.\n\n"+
			"Appointment details:\n"+
			"Booking code: %s\n"+
			"Date: %s\n"+
			"Time: %s (%d minutes)\n\n"+
			"Thank you for booking with us.",
		emailData.UserName, emailData.Status, emailData.BookingCode,
		emailData.DateFormatted, emailData.TimeFormatted, emailData.DurationMins,
	)

	var htmlBody string
	tmplPath := filepath.Join("internal", "templates", "booking_email.html")
	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		log.Printf("WARNING: could not parse email template (%s): %v", tmplPath, err)
	} else {
		var htmlBodyBuffer bytes.Buffer
		if err := tmpl.Execute(&htmlBodyBuffer, emailData); err != nil {
			log.Printf("WARNING: could not execute email template for booking %s: %v", emailData.BookingCode, err)
		} else {
			htmlBody = htmlBodyBuffer.String()
		}
	}
	if htmlBody == "" {
		htmlBody = "<p>" + template.HTMLEscapeString(plainTextBody) + "</p>"
	}

	go func(toEmail, userName, subject, plainBody, htmlBodyContent string) {
		if errEmail := SendEmailWithSendGrid(toEmail, userName, subject, plainBody, htmlBodyContent); errEmail != nil {
			log.Printf("WARNING (async): email delivery failed for booking %s: %v", emailData.BookingCode, errEmail)
		}
	}(booking.UserEmail, emailData.UserName, emailSubject, plainTextBody, htmlBody)

	if booking.UserPhone != "" {
		smsMessage := fmt.Sprintf("Bookflow: your appointment %s is %s!\nDate: %s at %s.\nMore details in your email.",
			booking.Code, booking.Status, booking.BookingDate.In(s.Loc).Format("02/01"), booking.BookingTime)
		go func(phone, body string) {
			if errSMS := SendSMS(phone, body); errSMS != nil {
				log.Printf("WARNING (async): SMS delivery failed for booking %s: %v", booking.Code, errSMS)
			}
		}(booking.UserPhone, smsMessage)
	}

	return nil
}
