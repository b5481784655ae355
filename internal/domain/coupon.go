package domain

import (
	"context"
	"errors"
	"strings"
)

const (
	MsgCouponCodeRequired = "Digite um código de cupom válido."
	MsgCouponInvalid      = "O cupom não é válido."
	MsgCouponUnavailable  = "Não foi possível validar o cupom."
	MsgCouponAlreadyHeld  = "Já existe um cupom aplicado. Remova-o antes de aplicar outro."
)

var ErrCouponAlreadyApplied = errors.New("a coupon is already applied")

// CouponValidation is the remote verdict for a code against a cart total
type CouponValidation struct {
	Valid          bool    `json:"valid"`
	DiscountAmount float64 `json:"discount_amount"`
	ErrorMessage   string  `json:"error_message"`
}

// CouponRejectedError carries the message shown when a code is refused
type CouponRejectedError struct {
	Code    string
	Message string
	// Err is set when the code could not be checked at all
	Err error
}

func (e *CouponRejectedError) Error() string {
	return e.Message
}

func (e *CouponRejectedError) Unwrap() error {
	return e.Err
}

// NewCouponUnavailable reports a validation call that failed in transit
func NewCouponUnavailable(code string, err error) *CouponRejectedError {
	return &CouponRejectedError{Code: code, Message: MsgCouponUnavailable, Err: err}
}

// NormalizeCouponCode trims and uppercases a typed code
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func NewCouponRejected(code string, v *CouponValidation) *CouponRejectedError {
	msg := MsgCouponInvalid
	if v != nil && v.ErrorMessage != "" {
		msg = v.ErrorMessage
	}
	return &CouponRejectedError{Code: code, Message: msg}
}

type CouponValidator interface {
	ValidateCoupon(ctx context.Context, code string, cartTotal float64) (*CouponValidation, error)
}
