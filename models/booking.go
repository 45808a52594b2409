package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

// PaymentStatus tracks whether a booking has been paid for.
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Booking represents a facility booking record. The payment subsystem only
// mutates Status, PaymentStatus and the two gateway correlation fields;
// everything else is owned by the booking domain.
type Booking struct {
	ID                string        `bson:"id" json:"id"`                                                       // Unique booking identifier (e.g., UUID)
	UserID            string        `bson:"user_id" json:"user_id"`                                             // User who made the booking
	ServiceName       string        `bson:"service_name" json:"service_name"`                                   // Booked service (e.g., "AC Cleaning")
	Status            BookingStatus `bson:"status" json:"status"`                                               // Booking lifecycle state
	PaymentStatus     PaymentStatus `bson:"payment_status" json:"payment_status"`                               // Payment lifecycle state
	TotalAmount       float64       `bson:"total_amount" json:"total_amount"`                                   // Total price in major currency units
	Currency          string        `bson:"currency" json:"currency"`                                           // Settlement currency code
	CheckoutSessionID string        `bson:"checkout_session_id,omitempty" json:"checkout_session_id,omitempty"` // Set once a checkout session is created
	PaymentIntentID   string        `bson:"payment_intent_id,omitempty" json:"payment_intent_id,omitempty"`     // Set once payment succeeds
	CreatedAt         time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time     `bson:"updated_at" json:"updated_at"`
}
