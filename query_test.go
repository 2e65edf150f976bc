package baas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryParamsEmpty(t *testing.T) {
	var q *ObjectQuery
	params, err := q.queryParams()
	require.NoError(t, err)
	assert.Empty(t, params)

	params, err = (&ObjectQuery{}).queryParams()
	require.NoError(t, err)
	assert.Empty(t, params)
}

func TestQueryParamsFull(t *testing.T) {
	q := &ObjectQuery{
		Where:        EqualTo("genre", "sf"),
		Sort:         []string{"-year", "title"},
		Skip:         20,
		Limit:        10,
		CountRequest: true,
		Projection:   map[string]int{"title": 1},
	}
	params, err := q.queryParams()
	require.NoError(t, err)

	assert.JSONEq(t, `{"genre":"sf"}`, params["where"])
	assert.Equal(t, "-year,title", params["order"])
	assert.Equal(t, "20", params["skip"])
	assert.Equal(t, "10", params["limit"])
	assert.Equal(t, "1", params["count"])
	assert.JSONEq(t, `{"title":1}`, params["projection"])
}

func TestQueryParamsOmitsDefaults(t *testing.T) {
	params, err := (&ObjectQuery{Limit: -1}).queryParams()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"limit": "-1"}, params)
	assert.NotContains(t, params, "skip")
	assert.NotContains(t, params, "count")
}
