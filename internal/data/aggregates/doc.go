// Package aggregates implements the content write paths: rule numbering and
// codes, the review workflow, categories, cross references and announcements.
//
// Each exported operation validates its input, opens one transaction through
// TxRunner and composes the table repos in internal/data/repos inside it.
// Failures leave as *domainagg.Error values via MapError.
package aggregates
