package usecase

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport is returned when the pricing API could not be reached.
	ErrTransport = errors.New("pricing api request failed")

	// ErrMalformedResponse is returned when a 200 response body is not a JSON array of ticker objects.
	ErrMalformedResponse = errors.New("malformed pricing api response")

	// ErrTickerNotFound is returned when a requested ticker is absent from a successful response.
	ErrTickerNotFound = errors.New("ticker not found in response")

	// ErrFieldNotFound is returned when a ticker is present but lacks a required field.
	ErrFieldNotFound = errors.New("field not found in ticker")

	// ErrInvalidPrice is returned when a price cannot be parsed as a decimal.
	ErrInvalidPrice = errors.New("invalid price")

	// ErrZeroPrice is returned when an exchange rate would divide by a zero price.
	ErrZeroPrice = errors.New("price is zero")
)

// APIError はAPIが200以外のステータスで最終的に応答した場合のエラーです。
// 429のリトライが尽きた場合も、最後の応答がこのエラーになります。
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API Error: %d with body: %s", e.StatusCode, e.Body)
}

// LookupError は成功した応答に要求した銘柄（またはそのフィールド）が含まれていない場合のエラーです。
type LookupError struct {
	Ticker string
	Field  string
}

func (e *LookupError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("ticker %s has no %s field", e.Ticker, e.Field)
	}
	return fmt.Sprintf("ticker %s not found in response", e.Ticker)
}

func (e *LookupError) Unwrap() error {
	if e.Field != "" {
		return ErrFieldNotFound
	}
	return ErrTickerNotFound
}
