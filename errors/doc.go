// Package errors provides tabkit's structured error type.
//
// Every failure carries an ErrorCode. Configuration codes describe requests
// that are rejected before any work starts; runtime codes describe failures
// at the file, network, decode, parse and hook stages. AppError supports
// errors.Is and errors.As through Unwrap.
package errors
