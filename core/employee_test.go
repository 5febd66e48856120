package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextEmployeeCode(t *testing.T) {
	tests := []struct {
		name     string
		last     string
		expected string
	}{
		{name: "First employee", last: "", expected: "EMP001"},
		{name: "Simple increment", last: "EMP001", expected: "EMP002"},
		{name: "Keeps leading zeros", last: "EMP009", expected: "EMP010"},
		{name: "Past three digits", last: "EMP999", expected: "EMP1000"},
		{name: "Unparseable restarts", last: "EMPabc", expected: "EMP001"},
		{name: "Foreign prefix restarts", last: "X042", expected: "EMP001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NextEmployeeCode(tt.last))
		})
	}
}

func TestEmployeeFullName(t *testing.T) {
	emp := Employee{FirstName: "Ada", Surname: "Lovelace"}
	assert.Equal(t, "Ada Lovelace", emp.FullName())

	solo := Employee{FirstName: "Ada"}
	assert.Equal(t, "Ada", solo.FullName())
}
