// Package rule defines rule documents and their applicability conditions.
//
// A rule is included for a project when any one of its condition predicates
// matches the detected attributes (logical OR), when its optional CEL match
// expression evaluates to true, or unconditionally when it is flagged as an
// always rule.
package rule
