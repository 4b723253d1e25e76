package factory_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/vesting-engine/factory"
	"github.com/warp/vesting-engine/generic"
	"github.com/warp/vesting-engine/vesting"
)

func TestFromJSON_Presets(t *testing.T) {
	// GIVEN: Every reference scheme
	// WHEN: Converted to JSON and validated back through the factory
	// THEN: It passes validation unchanged

	f := factory.NewSchemeFactory()
	for _, want := range vesting.DefaultSchemes() {
		got, err := f.FromJSON(f.ToJSON(&want))
		require.NoError(t, err, want.ID)
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.Tagline, got.Tagline)
		assert.True(t, want.InitialGrant.Value.Equal(got.InitialGrant.Value), "%s initial grant", want.ID)
		assert.Equal(t, want.HasAnnualGrant(), got.HasAnnualGrant())
		assert.True(t, want.TotalGrant(generic.HorizonYears).Value.Equal(got.TotalGrant(generic.HorizonYears).Value))
		require.Len(t, got.Schedule, len(want.Schedule))
		assert.True(t, got.Schedule.PercentAt(120).Equal(decimal.NewFromInt(100)))
	}
}

func TestParseScheme_SortsScheduleAndBonuses(t *testing.T) {
	f := factory.NewSchemeFactory()
	scheme, err := f.ParseScheme(`{
		"id": "custom", "name": "Custom", "initial_grant": 0.5,
		"vesting_schedule": [{"month": 48, "percent": 100}, {"month": 0, "percent": 25}],
		"bonuses": [{"month": 48, "percent": 5, "label": "Loyalty"}]
	}`)
	require.NoError(t, err)

	assert.Equal(t, generic.Month(0), scheme.Schedule[0].Month)
	assert.Nil(t, scheme.AnnualGrant)
	require.Len(t, scheme.Bonuses, 1)
	assert.Equal(t, "Loyalty", scheme.Bonuses[0].Label)
}

func TestParseScheme_Validation(t *testing.T) {
	f := factory.NewSchemeFactory()
	schedule := `"vesting_schedule": [{"month": 0, "percent": 100}]`

	cases := map[string]struct {
		json  string
		field string
	}{
		"missing id":       {`{"name": "x", "initial_grant": 1, ` + schedule + `}`, "id"},
		"missing name":     {`{"id": "x", "initial_grant": 1, ` + schedule + `}`, "name"},
		"negative grant":   {`{"id": "x", "name": "x", "initial_grant": -1, ` + schedule + `}`, "initial_grant"},
		"negative annual":  {`{"id": "x", "name": "x", "initial_grant": 1, "annual_grant": -0.1, ` + schedule + `}`, "annual_grant"},
		"negative cap":     {`{"id": "x", "name": "x", "initial_grant": 1, "max_annual_grants": -1, ` + schedule + `}`, "max_annual_grants"},
		"empty schedule":   {`{"id": "x", "name": "x", "initial_grant": 1, "vesting_schedule": []}`, "vesting_schedule"},
		"incomplete":       {`{"id": "x", "name": "x", "initial_grant": 1, "vesting_schedule": [{"month": 0, "percent": 50}]}`, "vesting_schedule"},
		"decreasing":       {`{"id": "x", "name": "x", "initial_grant": 1, "vesting_schedule": [{"month": 0, "percent": 60}, {"month": 12, "percent": 40}, {"month": 24, "percent": 100}]}`, "vesting_schedule"},
		"beyond horizon":   {`{"id": "x", "name": "x", "initial_grant": 1, "vesting_schedule": [{"month": 300, "percent": 100}]}`, "vesting_schedule"},
		"bonus past range": {`{"id": "x", "name": "x", "initial_grant": 1, "bonuses": [{"month": 999, "percent": 1}], ` + schedule + `}`, "bonuses"},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.ParseScheme(c.json)
			require.Error(t, err)
			assert.ErrorIs(t, err, generic.ErrInvalidScheme)
			assert.True(t, generic.IsClientError(err))

			var se *generic.SchemeError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, c.field, se.Field)
		})
	}
}

func TestParseScheme_MalformedJSON(t *testing.T) {
	_, err := factory.NewSchemeFactory().ParseScheme(`{"id": `)
	assert.Error(t, err)
}

func TestMarshalScheme_StoresWhatParseReads(t *testing.T) {
	f := factory.NewSchemeFactory()
	steady := vesting.SteadyBuilder()

	encoded, err := f.MarshalScheme(&steady)
	require.NoError(t, err)

	decoded, err := f.ParseScheme(encoded)
	require.NoError(t, err)
	require.NotNil(t, decoded.MaxAnnualGrants)
	assert.Equal(t, 5, *decoded.MaxAnnualGrants)
	assert.True(t, decoded.AnnualGrant.Value.Equal(steady.AnnualGrant.Value))
}

func TestDecodeStored_SanitizesGrants(t *testing.T) {
	// GIVEN: A stored row whose grants would fail validation
	// WHEN: Decoding it without validation
	// THEN: Negative grants come back as zero BTC

	scheme, err := factory.NewSchemeFactory().DecodeStored(
		`{"id": "legacy", "name": "Legacy", "initial_grant": -0.5, "annual_grant": -1, "vesting_schedule": [{"month": 0, "percent": 100}]}`)
	require.NoError(t, err)
	assert.True(t, scheme.InitialGrant.IsZero())
	require.NotNil(t, scheme.AnnualGrant)
	assert.True(t, scheme.AnnualGrant.IsZero())
}

func TestCustomEventsFromJSON(t *testing.T) {
	// Custom events are accepted even when they would fail scheme validation.
	events := factory.CustomEventsFromJSON([]factory.CustomEventJSON{
		{TimePeriod: 12, PercentageVested: 150},
		{ID: "keep", TimePeriod: 0, PercentageVested: 10},
	})

	require.Len(t, events, 2)
	assert.NotEmpty(t, events[0].ID)
	assert.Equal(t, "keep", events[1].ID)
	assert.True(t, events[0].PercentageVested.Equal(decimal.NewFromInt(150)))

	assert.Nil(t, factory.CustomEventsFromJSON(nil))
	assert.Len(t, factory.CustomEventsToJSON(events), 2)
}
