package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptedIndustryAdvance(t *testing.T) {
	m := NewMachine()

	out, err := m.Submit("Healthcare", true)
	require.NoError(t, err)

	assert.True(t, out.Scripted)
	assert.False(t, out.FreeForm)
	assert.Equal(t, StageDepartment, m.Stage())
	assert.Contains(t, out.Reply, "Healthcare")
	assert.Equal(t, QuickRepliesFor(StageDepartment), out.QuickReplies)
}

func TestEveryIndustryAdvancesToDepartment(t *testing.T) {
	for _, qr := range QuickRepliesFor(StageIndustry) {
		if qr.Value == IndustryOther {
			continue
		}
		t.Run(qr.Value, func(t *testing.T) {
			m := NewMachine()
			out, err := m.Submit(qr.Value, true)
			require.NoError(t, err)
			assert.Equal(t, StageDepartment, out.Stage)
			assert.Equal(t, qr.Value, m.Industry())
		})
	}
}

func TestOtherIndustryDetour(t *testing.T) {
	m := NewMachine()

	out, err := m.Submit(IndustryOther, true)
	require.NoError(t, err)

	// Selecting "other" holds the stage and switches to text input.
	assert.True(t, out.Scripted)
	assert.True(t, out.TextInput)
	assert.Equal(t, StageIndustry, m.Stage())
	assert.True(t, m.AwaitingIndustry())

	// The typed industry is then treated like the quick reply.
	out, err = m.Submit("Logistics", false)
	require.NoError(t, err)
	assert.True(t, out.Scripted)
	assert.Equal(t, StageDepartment, m.Stage())
	assert.Equal(t, "Logistics", m.Industry())
	assert.Contains(t, out.Reply, "Logistics")
	assert.False(t, m.AwaitingIndustry())
}

func TestDepartmentAdvancesToDetails(t *testing.T) {
	m := NewMachine()
	_, err := m.Submit("Finance", true)
	require.NoError(t, err)

	out, err := m.Submit("Sales", true)
	require.NoError(t, err)

	assert.True(t, out.Scripted)
	assert.Equal(t, StageDetails, m.Stage())
	assert.Contains(t, out.Reply, "Sales")
	assert.Contains(t, out.Reply, "Finance")
}

func TestDetailsBookingHoldsStage(t *testing.T) {
	m := machineAtDetails(t)

	out, err := m.Submit(DetailsBook, true)
	require.NoError(t, err)

	assert.True(t, out.OpenBooking)
	assert.Equal(t, StageDetails, m.Stage())
}

func TestDetailsTellMoreEntersFreeForm(t *testing.T) {
	m := machineAtDetails(t)

	out, err := m.Submit(DetailsMore, true)
	require.NoError(t, err)

	assert.True(t, out.FreeForm)
	assert.Equal(t, StageFreeForm, m.Stage())

	// FreeForm is absorbing: everything after routes to the backend.
	out, err = m.Submit("what does onboarding look like?", false)
	require.NoError(t, err)
	assert.True(t, out.FreeForm)
	assert.Equal(t, StageFreeForm, m.Stage())
}

func TestUnknownQuickReplyRejected(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) *Machine
		value string
	}{
		{"industry stage, department value", func(t *testing.T) *Machine { return NewMachine() }, "Sales"},
		{"industry stage, garbage", func(t *testing.T) *Machine { return NewMachine() }, "Aerospace"},
		{"details stage, industry value", machineAtDetails, "Healthcare"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.setup(t)
			before := m.Stage()

			_, err := m.Submit(tt.value, true)

			assert.ErrorIs(t, err, ErrUnknownQuickReply)
			assert.Equal(t, before, m.Stage(), "stage must not move on a stale quick reply")
		})
	}
}

func TestFreeTextDuringScriptedStageRoutesToBackend(t *testing.T) {
	m := NewMachine()

	out, err := m.Submit("can you integrate with Salesforce?", false)
	require.NoError(t, err)

	assert.True(t, out.FreeForm)
	assert.Equal(t, StageIndustry, m.Stage())
}

func TestRestoreRejectsInvalidStage(t *testing.T) {
	_, err := Restore(Stage("bogus"), "", "", false)
	assert.Error(t, err)

	m, err := Restore(StageDetails, "Retail", "Marketing", false)
	require.NoError(t, err)
	assert.Equal(t, StageDetails, m.Stage())
	assert.Equal(t, "Retail", m.Industry())
}

func machineAtDetails(t *testing.T) *Machine {
	t.Helper()
	m := NewMachine()
	if _, err := m.Submit("Healthcare", true); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Submit("Operations", true); err != nil {
		t.Fatal(err)
	}
	return m
}
