// Package query translates the tasks listing's textual filter and sort
// expressions into GORM scopes. The grammar is deliberately tiny:
//
//	filter: propertyName(value) or propertyName(value>value2)
//	sort:   +propertyName or -propertyName
//
// Property tokens are matched case-insensitively against a fixed set; no
// reflection over entity fields is involved.
package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/taskhub/task-manager-api/internal/utils"
	"gorm.io/gorm"
)

// Scope is a query refinement applied to the tasks query.
type Scope func(*gorm.DB) *gorm.DB

// ParseError describes a malformed or unsupported filter/sort expression.
// It surfaces to the client as a 400 with Message.
type ParseError struct {
	Param   string // "filter" or "sort"
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Param, e.Message)
}

const (
	filterGrammarMsg = "Incorrect filtering pattern. Expected '<propertyToBeFiltered>(<filter>)'."
	sortGrammarMsg   = "Incorrect sorting pattern. Expected '+<propertyToBeSorted>' for ascending or '-<propertyToBeSorted>' for descending."
)

// The value group stops at '>' so that 'deadline(a>b)' splits into a range.
// '%3E' is accepted alongside '>' for clients that double-encode.
var (
	filterPattern = regexp.MustCompile(`^(\w+)\(([^>%\s]+)(?:>|%3E)?(\S+)?\)$`)
	sortPattern   = regexp.MustCompile(`^([-+])(\w+)$`)
)

// Accepted property tokens, mapped to their column names.
var (
	filterColumns = map[string]string{
		"status":   "status",
		"deadline": "deadline",
		"assignee": "assignee_id",
	}
	sortColumns = map[string]string{
		"id":       "id",
		"priority": "priority",
		"deadline": "deadline",
	}
)

// Filter parses a filter expression into a scope.
func Filter(expr string) (Scope, error) {
	m := filterPattern.FindStringSubmatch(expr)
	if m == nil {
		return nil, &ParseError{Param: "filter", Message: filterGrammarMsg}
	}

	property := strings.ToLower(m[1])
	value := m[2]
	secondValue := m[3]

	column, ok := filterColumns[property]
	if !ok {
		return nil, &ParseError{Param: "filter", Message: "Invalid filterBy property."}
	}

	switch property {
	case "status":
		status, err := strconv.Atoi(value)
		if err != nil {
			return nil, &ParseError{Param: "filter", Message: fmt.Sprintf("Status filter value %q is not an integer.", value)}
		}
		return func(db *gorm.DB) *gorm.DB {
			return db.Where(column+" = ?", status)
		}, nil

	case "deadline":
		from, err := utils.ParseDate(value)
		if err != nil {
			return nil, &ParseError{Param: "filter", Message: fmt.Sprintf("Deadline filter value %q is not a date.", value)}
		}
		if secondValue == "" {
			return func(db *gorm.DB) *gorm.DB {
				return db.Where(column+" = ?", from)
			}, nil
		}
		to, err := utils.ParseDate(secondValue)
		if err != nil {
			return nil, &ParseError{Param: "filter", Message: fmt.Sprintf("Deadline filter value %q is not a date.", secondValue)}
		}
		// Inclusive on both ends.
		return func(db *gorm.DB) *gorm.DB {
			return db.Where(column+" >= ? AND "+column+" <= ?", from, to)
		}, nil

	case "assignee":
		if value == "null" {
			return func(db *gorm.DB) *gorm.DB {
				return db.Where(column + " IS NULL")
			}, nil
		}
		assigneeID, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return nil, &ParseError{Param: "filter", Message: fmt.Sprintf("Assignee filter value %q is not a user id or 'null'.", value)}
		}
		return func(db *gorm.DB) *gorm.DB {
			return db.Where(column+" = ?", assigneeID)
		}, nil
	}

	return nil, &ParseError{Param: "filter", Message: "Invalid filterBy property."}
}

// Sort parses a sort expression into a scope. The order is a single-key
// total order; ties keep the storage's natural order.
func Sort(expr string) (Scope, error) {
	m := sortPattern.FindStringSubmatch(expr)
	if m == nil {
		return nil, &ParseError{Param: "sort", Message: sortGrammarMsg}
	}

	column, ok := sortColumns[strings.ToLower(m[2])]
	if !ok {
		return nil, &ParseError{Param: "sort", Message: "Invalid sortBy property."}
	}

	direction := "ASC"
	if m[1] == "-" {
		direction = "DESC"
	}

	return func(db *gorm.DB) *gorm.DB {
		return db.Order(column + " " + direction)
	}, nil
}

