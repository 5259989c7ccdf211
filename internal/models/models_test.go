package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingActive(t *testing.T) {
	tests := []struct {
		status string
		active bool
	}{
		{BookingStatusPending, true},
		{BookingStatusConfirmed, true},
		{BookingStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			b := &Booking{Status: tt.status}
			assert.Equal(t, tt.active, b.Active())
		})
	}
}

func TestBookingCanPay(t *testing.T) {
	tests := []struct {
		name          string
		paymentStatus string
		wantErr       error
	}{
		{"unpaid booking is payable", PaymentStatusRequired, nil},
		{"paid booking rejects a second payment", PaymentStatusPaid, ErrPaymentCompleted},
		{"refunded booking is not payable", PaymentStatusRefunded, ErrBookingCancelled},
		{"void booking is not payable", PaymentStatusVoid, ErrBookingCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Booking{PaymentStatus: tt.paymentStatus}
			assert.Equal(t, tt.wantErr, b.CanPay())
		})
	}
}

func TestBookingCanCancel(t *testing.T) {
	tests := []struct {
		name          string
		paymentStatus string
		wantErr       error
	}{
		{"unpaid booking is cancellable", PaymentStatusRequired, nil},
		{"paid booking is cancellable", PaymentStatusPaid, nil},
		{"refunded booking is already cancelled", PaymentStatusRefunded, ErrAlreadyCancelled},
		{"void booking is already cancelled", PaymentStatusVoid, ErrAlreadyCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Booking{PaymentStatus: tt.paymentStatus}
			assert.Equal(t, tt.wantErr, b.CanCancel())
		})
	}
}

func TestBookingRefundTarget(t *testing.T) {
	paid := &Booking{PaymentStatus: PaymentStatusPaid}
	assert.Equal(t, PaymentStatusRefunded, paid.RefundTarget())

	unpaid := &Booking{PaymentStatus: PaymentStatusRequired}
	assert.Equal(t, PaymentStatusVoid, unpaid.RefundTarget())
}
