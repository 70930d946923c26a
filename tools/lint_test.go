package tools

import (
	"strings"
	"testing"
)

func TestLint_UndefinedLabel(t *testing.T) {
	source := `
		LDA R0, 10(R31)
		BR undefined_label
	`

	linter := NewLinter(DefaultLintOptions())
	issues := linter.Lint(source, "test.s")

	foundError := false
	for _, issue := range issues {
		if issue.Code == "UNDEF_LABEL" && strings.Contains(issue.Message, "undefined_label") {
			foundError = true
			if issue.Level != LintError {
				t.Errorf("Expected error level, got %v", issue.Level)
			}
		}
	}

	if !foundError {
		t.Error("Expected undefined label error")
	}
}

func TestLint_DuplicateLabel(t *testing.T) {
	source := `
loop:	ADDQ R0, #1, R0
loop:	ADDQ R0, #1, R0
	`

	linter := NewLinter(DefaultLintOptions())
	issues := linter.Lint(source, "test.s")

	// Parser may catch this as parse error instead of letting linter handle it
	foundIssue := false
	for _, issue := range issues {
		if issue.Code == "DUPLICATE_LABEL" || issue.Code == "PARSE_ERROR" {
			foundIssue = true
		}
	}

	if !foundIssue {
		t.Error("Expected duplicate label warning or parse error")
	}
}

func TestLint_UnusedLabel(t *testing.T) {
	source := `
_start:	ADDQ R31, #0, R0
		CALL_PAL #0x83

unused:	ADDQ R31, #1, R1
	`

	options := DefaultLintOptions()
	options.CheckUnused = true

	linter := NewLinter(options)
	issues := linter.Lint(source, "test.s")

	foundWarning := false
	for _, issue := range issues {
		if issue.Code == "UNUSED_LABEL" && strings.Contains(issue.Message, "unused") {
			foundWarning = true
		}
	}

	if !foundWarning {
		t.Error("Expected unused label warning")
	}
}

func TestLint_UnreachableCode(t *testing.T) {
	source := `
		BR skip
		ADDQ R0, #1, R0
skip:	RET (R26)
	`

	options := DefaultLintOptions()
	options.CheckReach = true

	linter := NewLinter(options)
	issues := linter.Lint(source, "test.s")

	foundWarning := false
	for _, issue := range issues {
		if issue.Code == "UNREACHABLE_CODE" {
			foundWarning = true
		}
	}

	if !foundWarning {
		t.Error("Expected unreachable code warning after unconditional BR")
	}
}

func TestLint_ConditionalBranch(t *testing.T) {
	source := `
		BEQ R0, target
		ADDQ R0, #1, R0
target:	RET (R26)
	`

	options := DefaultLintOptions()
	options.CheckReach = true

	linter := NewLinter(options)
	issues := linter.Lint(source, "test.s")

	// Conditional branch should not trigger unreachable code warning
	for _, issue := range issues {
		if issue.Code == "UNREACHABLE_CODE" {
			t.Error("Should not report unreachable code after conditional branch")
		}
	}
}

func TestLint_NoIssues(t *testing.T) {
	source := `
_start:	ADDQ R31, #10, R0
		RET (R26)
	`

	linter := NewLinter(DefaultLintOptions())
	issues := linter.Lint(source, "test.s")

	for _, issue := range issues {
		if issue.Level == LintError {
			t.Errorf("Unexpected error: %s", issue.Message)
		}
	}
}

func TestLint_CallSysUnreachable(t *testing.T) {
	source := `
_start:	CALL_PAL #CALLSYS
		ADDQ R0, #1, R0
	`

	options := DefaultLintOptions()
	options.CheckReach = true

	linter := NewLinter(options)
	issues := linter.Lint(source, "test.s")

	foundWarning := false
	for _, issue := range issues {
		if issue.Code == "UNREACHABLE_CODE" {
			foundWarning = true
		}
	}

	if !foundWarning {
		t.Error("Expected unreachable code warning after CALL_PAL CALLSYS")
	}
}
