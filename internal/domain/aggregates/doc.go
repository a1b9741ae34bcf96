// Package aggregates defines the write boundaries of the content lifecycle:
// rules with their codes, announcements, categories and cross references.
//
// Contracts here carry no persistence detail. Every write method is one atomic
// unit; failures are *Error values with a stable ErrorCode.
package aggregates
