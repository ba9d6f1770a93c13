package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidLength indicates phone number length is not 10 digits
	ErrInvalidLength = errors.New("phone number must be exactly 10 digits")

	// ErrInvalidPrefix indicates phone number doesn't start with a Kenyan mobile prefix
	ErrInvalidPrefix = errors.New("phone number must start with 07XX or 01XX")

	// ErrInvalidFormat indicates phone number contains invalid characters
	ErrInvalidFormat = errors.New("phone number can only contain digits")

	// ErrEmptyPhone indicates phone number is empty
	ErrEmptyPhone = errors.New("phone number cannot be empty")
)

// validPrefixes contains the Kenyan mobile ranges
var validPrefixes = []string{
	"070", "071", "072", "073", "074", "075", "076", "077", "078", "079",
	"010", "011",
}

var phoneRegex = regexp.MustCompile(`^\d+$`)

// PhoneValidator handles phone number validation
type PhoneValidator struct{}

// NewPhoneValidator creates a new phone validator instance
func NewPhoneValidator() *PhoneValidator {
	return &PhoneValidator{}
}

// Validate validates a Kenyan mobile number.
// Accepts 0712345678, 0712 345 678, +254712345678, 254712345678 or 712345678.
// Returns the local 10-digit form.
func (v *PhoneValidator) Validate(phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", ErrEmptyPhone
	}

	sanitized := v.Sanitize(phone)

	if !phoneRegex.MatchString(sanitized) {
		return "", ErrInvalidFormat
	}

	if len(sanitized) != 10 {
		return "", ErrInvalidLength
	}

	if !v.IsValidPrefix(sanitized) {
		return "", ErrInvalidPrefix
	}

	return sanitized, nil
}

// Sanitize strips separators and rewrites the country code to a leading 0
func (v *PhoneValidator) Sanitize(phone string) string {
	replacer := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", "+", "", ".", "")
	phone = replacer.Replace(strings.TrimSpace(phone))

	switch {
	case strings.HasPrefix(phone, "254") && len(phone) == 12:
		phone = "0" + phone[3:]
	case len(phone) == 9 && (strings.HasPrefix(phone, "7") || strings.HasPrefix(phone, "1")):
		phone = "0" + phone
	}

	return phone
}

// IsValidPrefix checks if phone number has a valid Kenyan mobile prefix
func (v *PhoneValidator) IsValidPrefix(phone string) bool {
	if len(phone) < 3 {
		return false
	}

	prefix := phone[:3]
	for _, validPrefix := range validPrefixes {
		if prefix == validPrefix {
			return true
		}
	}

	return false
}

// ToInternational returns the 2547XXXXXXXX form SMS gateways expect
func (v *PhoneValidator) ToInternational(phone string) (string, error) {
	sanitized, err := v.Validate(phone)
	if err != nil {
		return "", err
	}
	return "254" + sanitized[1:], nil
}

// Format formats a phone number for display: 07XX XXX XXX
func (v *PhoneValidator) Format(phone string) (string, error) {
	sanitized, err := v.Validate(phone)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s %s %s", sanitized[0:4], sanitized[4:7], sanitized[7:10]), nil
}

// GetOperator returns the mobile network for the number's range
func (v *PhoneValidator) GetOperator(phone string) (string, error) {
	sanitized, err := v.Validate(phone)
	if err != nil {
		return "", err
	}

	switch sanitized[:3] {
	case "070", "071", "072", "074", "079", "011":
		return "Safaricom", nil
	case "073", "078", "010":
		return "Airtel", nil
	case "077":
		return "Telkom", nil
	}

	switch sanitized[:4] {
	case "0757", "0758", "0759", "0768", "0769":
		return "Safaricom", nil
	case "0750", "0751", "0752", "0753", "0754", "0755", "0756", "0762":
		return "Airtel", nil
	case "0763", "0764", "0765", "0766":
		return "Equitel", nil
	}

	return "Unknown", nil
}

// IsValid is a convenience method that returns true if phone is valid
func (v *PhoneValidator) IsValid(phone string) bool {
	_, err := v.Validate(phone)
	return err == nil
}
