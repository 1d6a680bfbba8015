package prediction

import (
	"encoding/json"
	"testing"

	"github.com/jaswdr/faker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/traveldelay/core/model"
)

// randomRequest returns a complete request body with random feature values.
func randomRequest(fake faker.Faker) map[string]any {
	body := map[string]any{}
	for _, name := range model.RequiredFields {
		body[name] = fake.Float64(2, -50, 500)
	}
	return body
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestParseRequest_EmptyObjectListsAllFields(t *testing.T) {
	_, err := ParseRequest([]byte(`{}`))
	require.Error(t, err)
	assert.Equal(t, KindBadRequest, KindOf(err))
	assert.Equal(t, model.RequiredFields, MissingFields(err))
	for _, name := range model.RequiredFields {
		assert.Contains(t, err.Error(), name)
	}
}

func TestParseRequest_PartialBody(t *testing.T) {
	_, err := ParseRequest([]byte(`{"distance_km":100,"duration_min":120}`))
	require.Error(t, err)
	assert.Equal(t, KindBadRequest, KindOf(err))
	missing := MissingFields(err)
	assert.Len(t, missing, 9)
	assert.NotContains(t, missing, model.DistanceKM)
	assert.NotContains(t, missing, model.DurationMin)
	assert.Equal(t, "Missing required fields: origin_temp, origin_wind, dest_temp, dest_wind, "+
		"avg_temp_along_route, avg_wind_along_route, mean_condition, max_condition, severe_count", err.Error())
}

func TestParseRequest_Malformed(t *testing.T) {
	cases := []struct {
		name string
		body string
		msg  string
	}{
		{"empty", "", MsgNoData},
		{"whitespace", "  \n", MsgNoData},
		{"null", "null", MsgNoData},
		{"array", `[1,2]`, MsgNotObject},
		{"number", `42`, MsgNotObject},
		{"truncated", `{"distance_km":`, "Invalid JSON body"},
		{"trailing", `{} {}`, "Invalid JSON body"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ParseRequest([]byte(c.body))
			require.Error(t, err)
			assert.Equal(t, KindBadRequest, KindOf(err))
			assert.Contains(t, err.Error(), c.msg)
		})
	}
}

func TestParseRequest_PresenceOnly(t *testing.T) {
	body := map[string]any{}
	for _, name := range model.RequiredFields {
		body[name] = "not a number"
	}
	f, err := ParseRequest(mustJSON(t, body))
	require.NoError(t, err)
	assert.Len(t, f, len(model.RequiredFields))
}

func TestParseRequest_ExtraFieldsIgnored(t *testing.T) {
	fake := faker.New()
	body := randomRequest(fake)
	body["route_name"] = fake.Lorem().Word()
	f, err := ParseRequest(mustJSON(t, body))
	require.NoError(t, err)
	assert.Contains(t, f, "route_name")
}

func TestParseRequest_Deterministic(t *testing.T) {
	fake := faker.New()
	for i := 0; i < 50; i++ {
		body := randomRequest(fake)
		drop := model.RequiredFields[fake.IntBetween(0, len(model.RequiredFields)-1)]
		delete(body, drop)
		data := mustJSON(t, body)

		_, first := ParseRequest(data)
		_, second := ParseRequest(data)
		require.Error(t, first)
		require.Error(t, second)
		assert.Equal(t, first.Error(), second.Error())
		assert.Contains(t, MissingFields(first), drop)
	}
}
