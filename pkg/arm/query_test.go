package arm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ansolan/armclient/pkg/arm"
)

func TestQueryParams_ToValues(t *testing.T) {
	params := arm.NewQueryParams().
		WithAPIVersion("2021-04-01").
		WithFilter("tagName eq 'env'").
		WithExpand("properties").
		WithTop(50).
		WithCustom("skiptoken", "abc")

	values := params.ToValues()

	assert.Equal(t, "2021-04-01", values.Get("api-version"))
	assert.Equal(t, "tagName eq 'env'", values.Get("$filter"))
	assert.Equal(t, "properties", values.Get("$expand"))
	assert.Equal(t, "50", values.Get("$top"))
	assert.Equal(t, "abc", values.Get("skiptoken"))
}

func TestQueryParams_ToValuesEmpty(t *testing.T) {
	values := arm.NewQueryParams().ToValues()
	assert.Empty(t, values)
}

func TestQueryParams_ToValuesNil(t *testing.T) {
	var params *arm.QueryParams

	values := params.ToValues()
	assert.NotNil(t, values)
	assert.Empty(t, values)
}

func TestQueryParams_ZeroTopOmitted(t *testing.T) {
	values := arm.NewQueryParams().WithAPIVersion("2023-01-01").ToValues()

	assert.Equal(t, "2023-01-01", values.Get("api-version"))
	assert.NotContains(t, values, "$top")
}
