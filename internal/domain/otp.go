package domain

type OTPStatus int

const (
	OTPInvalid OTPStatus = iota
	OTPValid
	OTPExpired
)
