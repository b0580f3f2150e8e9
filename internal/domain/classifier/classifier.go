// Package classifier decides whether an order's status signal means the order
// really happened.
//
// The policy is defensive-allow: only a recognized failure indicator rejects an
// order. Unknown, empty or success-looking signals are all accepted, so an
// ambiguous order is counted rather than silently dropped.
package classifier

import (
	"strings"
	"unicode"
)

// Verdict is the outcome of classifying a status signal.
type Verdict int

const (
	Accept Verdict = iota
	Reject
)

func (v Verdict) String() string {
	if v == Reject {
		return "reject"
	}
	return "accept"
}

// RuleSet lists the failure and success indicators for one platform.
// Entries are compared lowercase. Purely numeric entries are sentinel codes and
// only match a signal that is exactly that code.
type RuleSet struct {
	Failure []string
	Success []string
}

// Default is the rule set observed on the page-number platform. Codes 1, 3, 4
// and 7 came back for cancelled, unpaid and rejected orders; 5 and 6 for
// delivered ones.
var Default = RuleSet{
	Failure: []string{"cancelled", "canceled", "unpaid", "pending", "rejected", "failed", "refunded", "1", "3", "4", "7"},
	Success: []string{"delivered", "completed", "5", "6"},
}

// Classifier applies a RuleSet.
type Classifier struct {
	failureCodes    map[string]bool
	failureKeywords map[string]bool
	successCodes    map[string]bool
	successKeywords map[string]bool
}

// New builds a classifier from a rule set.
func New(rules RuleSet) *Classifier {
	c := &Classifier{
		failureCodes:    make(map[string]bool),
		failureKeywords: make(map[string]bool),
		successCodes:    make(map[string]bool),
		successKeywords: make(map[string]bool),
	}
	for _, r := range rules.Failure {
		addRule(r, c.failureCodes, c.failureKeywords)
	}
	for _, r := range rules.Success {
		addRule(r, c.successCodes, c.successKeywords)
	}
	return c
}

func addRule(rule string, codes, keywords map[string]bool) {
	rule = strings.ToLower(strings.TrimSpace(rule))
	if rule == "" {
		return
	}
	if isNumeric(rule) {
		codes[rule] = true
		return
	}
	keywords[rule] = true
}

// Classify maps a raw status signal to Accept or Reject.
func (c *Classifier) Classify(signal string) Verdict {
	s := normalize(signal)
	if s == "" {
		return Accept
	}
	if c.failureCodes[s] || c.failureKeywords[s] {
		return Reject
	}
	for _, word := range words(s) {
		if c.failureKeywords[word] {
			return Reject
		}
	}
	return Accept
}

// IsSuccess reports whether the signal matches a known success indicator.
// Unrecognized signals are accepted by Classify but are not successes.
func (c *Classifier) IsSuccess(signal string) bool {
	s := normalize(signal)
	if s == "" {
		return false
	}
	if c.successCodes[s] || c.successKeywords[s] {
		return true
	}
	for _, word := range words(s) {
		if c.successKeywords[word] {
			return true
		}
	}
	return false
}

// Signaler is anything that may carry a status signal.
type Signaler interface {
	StatusSignal() (string, bool)
}

// Filter returns the records the classifier accepts, preserving order.
// Records without a status signal are always kept.
func Filter[T Signaler](c *Classifier, records []T) []T {
	if c == nil {
		return records
	}
	kept := make([]T, 0, len(records))
	for _, r := range records {
		signal, ok := r.StatusSignal()
		if ok && c.Classify(signal) == Reject {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

func normalize(signal string) string {
	return strings.ToLower(strings.TrimSpace(signal))
}

func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
