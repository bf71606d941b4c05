package payroll

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunStatusTransitions(t *testing.T) {
	cases := []struct {
		from    RunStatus
		action  RunAction
		want    RunStatus
		allowed bool
	}{
		{RunStatusDraft, ActionProcess, RunStatusProcessing, true},
		{RunStatusDraft, ActionCancel, RunStatusCancelled, true},
		{RunStatusDraft, ActionApprove, "", false},
		{RunStatusDraft, ActionMarkPaid, "", false},
		{RunStatusProcessing, ActionApprove, RunStatusApproved, true},
		{RunStatusProcessing, ActionCancel, RunStatusCancelled, true},
		{RunStatusProcessing, ActionMarkPaid, "", false},
		{RunStatusApproved, ActionMarkPaid, RunStatusPaid, true},
		{RunStatusApproved, ActionCancel, "", false},
		{RunStatusApproved, ActionProcess, "", false},
		{RunStatusPaid, ActionCancel, "", false},
		{RunStatusPaid, ActionProcess, "", false},
		{RunStatusCancelled, ActionProcess, "", false},
		{RunStatusCancelled, ActionCancel, "", false},
	}
	for _, c := range cases {
		got, ok := c.from.Next(c.action)
		assert.Equal(t, c.allowed, ok, "%s + %s", c.from, c.action)
		if c.allowed {
			assert.Equal(t, c.want, got, "%s + %s", c.from, c.action)
		}
	}
}

func TestRunStatusTerminal(t *testing.T) {
	assert.False(t, RunStatusDraft.Terminal())
	assert.False(t, RunStatusProcessing.Terminal())
	assert.False(t, RunStatusApproved.Terminal())
	assert.True(t, RunStatusPaid.Terminal())
	assert.True(t, RunStatusCancelled.Terminal())
}

func TestRunStatusEditable(t *testing.T) {
	assert.True(t, RunStatusDraft.Editable())
	assert.True(t, RunStatusProcessing.Editable())
	assert.False(t, RunStatusApproved.Editable())
	assert.False(t, RunStatusPaid.Editable())
	assert.False(t, RunStatusCancelled.Editable())
}

func TestPeriodStart(t *testing.T) {
	run := PayrollRun{PeriodMonth: 3, PeriodYear: 2025}
	start := run.PeriodStart()
	assert.Equal(t, 2025, start.Year())
	assert.Equal(t, 3, int(start.Month()))
	assert.Equal(t, 1, start.Day())
}
