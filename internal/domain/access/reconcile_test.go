package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffGrants_CreatesMissingGrant(t *testing.T) {
	intents := []PermissionIntent{
		{
			Key:    GrantKey{DocumentType: "sales_invoice", Role: "POS User"},
			Rights: NewRightSet(RightRead, RightCreate, RightSubmit),
		},
	}

	cs := DiffGrants(intents, nil)

	require.Equal(t, 1, cs.Len())
	change := cs.Changes[0]
	assert.Equal(t, ChangeCreate, change.Kind)
	assert.True(t, change.Grant.Managed)
	assert.True(t, change.Grant.Rights.Has(RightRead))
	assert.True(t, change.Grant.Rights.Has(RightCreate))
}

func TestDiffGrants_WriteImpliesRead(t *testing.T) {
	intents := []PermissionIntent{
		{
			Key:    GrantKey{DocumentType: "customer", Role: "POS User"},
			Rights: NewRightSet(RightWrite),
		},
	}

	cs := DiffGrants(intents, nil)

	require.Equal(t, 1, cs.Len())
	assert.True(t, cs.Changes[0].Grant.Rights.Has(RightRead))
}

func TestDiffGrants_UpdatesWhenRightsDiffer(t *testing.T) {
	key := GrantKey{DocumentType: "sales_invoice", Role: "POS User"}
	grants := []PermissionGrant{
		{Key: key, Rights: NewRightSet(RightRead), Managed: true},
	}
	intents := []PermissionIntent{
		{Key: key, Rights: NewRightSet(RightRead, RightCreate)},
	}

	cs := DiffGrants(intents, grants)

	require.Equal(t, 1, cs.Len())
	assert.Equal(t, ChangeUpdate, cs.Changes[0].Kind)
}

func TestDiffGrants_SecondRunPlansNothing(t *testing.T) {
	intents := []PermissionIntent{
		{
			Key:    GrantKey{DocumentType: "sales_invoice", Role: "POS User"},
			Rights: NewRightSet(RightRead, RightWrite, RightCreate, RightSubmit),
		},
		{
			Key:    GrantKey{DocumentType: "customer", Role: "POS User"},
			Rights: NewRightSet(RightRead, RightCreate),
		},
	}

	first := DiffGrants(intents, nil)
	require.Equal(t, 2, first.Len())

	// Materialize the first plan and diff again.
	grants := make([]PermissionGrant, 0, first.Len())
	for _, c := range first.Changes {
		grants = append(grants, c.Grant)
	}
	second := DiffGrants(intents, grants)
	assert.Zero(t, second.Len())
}

func TestDiffGrants_ManualGrantSurvives(t *testing.T) {
	manual := PermissionGrant{
		Key:     GrantKey{DocumentType: "stock_entry", Role: "Warehouse Manager"},
		Rights:  NewRightSet(RightRead, RightWrite),
		Managed: false,
	}
	intents := []PermissionIntent{
		{
			Key:    GrantKey{DocumentType: "sales_invoice", Role: "POS User"},
			Rights: NewRightSet(RightRead),
		},
	}

	cs := DiffGrants(intents, []PermissionGrant{manual})

	require.Equal(t, 1, cs.Len())
	assert.Equal(t, ChangeCreate, cs.Changes[0].Kind)
	assert.NotEqual(t, manual.Key, cs.Changes[0].Grant.Key)
}

func TestDiffGrants_ExplicitRemove(t *testing.T) {
	key := GrantKey{DocumentType: "stock_entry", Role: "POS User"}
	grants := []PermissionGrant{{Key: key, Rights: NewRightSet(RightRead), Managed: false}}
	intents := []PermissionIntent{{Key: key, Remove: true}}

	cs := DiffGrants(intents, grants)

	require.Equal(t, 1, cs.Len())
	assert.Equal(t, ChangeRemove, cs.Changes[0].Kind)
}

func TestDiffGrants_RemoveAbsentGrantIsNoop(t *testing.T) {
	intents := []PermissionIntent{
		{Key: GrantKey{DocumentType: "stock_entry", Role: "POS User"}, Remove: true},
	}

	cs := DiffGrants(intents, nil)
	assert.Zero(t, cs.Len())
}

func TestDiffBindings_AdditiveOnly(t *testing.T) {
	bindings := []RoleBinding{
		{UserID: "cashier@store.example", Role: "POS User"},
		{UserID: "cashier@store.example", Role: "POS"},
	}
	current := map[string][]string{
		// Already holds POS plus an unrelated role that must survive.
		"cashier@store.example": {"POS", "Accounts User"},
	}

	changes := DiffBindings(bindings, current)

	require.Len(t, changes, 1)
	assert.Equal(t, "POS User", changes[0].Role)
}

func TestDiffBindings_Deterministic(t *testing.T) {
	bindings := []RoleBinding{
		{UserID: "b@store.example", Role: "POS"},
		{UserID: "a@store.example", Role: "POS"},
	}

	changes := DiffBindings(bindings, nil)

	require.Len(t, changes, 2)
	assert.Equal(t, "a@store.example", changes[0].UserID)
}

func TestFallbackIntents(t *testing.T) {
	intents := FallbackIntents("POS Service")

	require.Len(t, intents, 3)
	for _, intent := range intents {
		assert.Equal(t, "POS Service", intent.Key.Role)
		assert.True(t, intent.Rights.Has(RightRead))
		assert.True(t, intent.Rights.Has(RightSelect))
		assert.True(t, intent.Rights.Has(RightReport))
	}
}
