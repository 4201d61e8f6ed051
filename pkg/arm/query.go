package arm

import (
	"net/url"
	"strconv"
)

// QueryParams represents the common query options accepted by ARM list and
// read operations.
type QueryParams struct {
	// APIVersion is the api-version query parameter. Resource clients set a
	// sensible default; callers can pin a specific version.
	APIVersion string

	// Filter is an OData $filter expression.
	Filter string

	// Expand is an OData $expand expression.
	Expand string

	// Top limits the number of results per page (the page-size hint).
	Top int

	// Custom holds extra parameters passed through verbatim.
	Custom url.Values
}

// NewQueryParams creates an empty QueryParams.
func NewQueryParams() *QueryParams {
	return &QueryParams{}
}

// WithAPIVersion sets the api-version and returns the params for chaining.
func (p *QueryParams) WithAPIVersion(version string) *QueryParams {
	p.APIVersion = version

	return p
}

// WithFilter sets the $filter expression.
func (p *QueryParams) WithFilter(filter string) *QueryParams {
	p.Filter = filter

	return p
}

// WithExpand sets the $expand expression.
func (p *QueryParams) WithExpand(expand string) *QueryParams {
	p.Expand = expand

	return p
}

// WithTop sets the per-page result limit.
func (p *QueryParams) WithTop(top int) *QueryParams {
	p.Top = top

	return p
}

// WithCustom adds a passthrough parameter.
func (p *QueryParams) WithCustom(key, value string) *QueryParams {
	if p.Custom == nil {
		p.Custom = url.Values{}
	}

	p.Custom.Add(key, value)

	return p
}

// ToValues converts the params to url.Values.
func (p *QueryParams) ToValues() url.Values {
	values := url.Values{}

	if p == nil {
		return values
	}

	if p.APIVersion != "" {
		values.Set("api-version", p.APIVersion)
	}

	if p.Filter != "" {
		values.Set("$filter", p.Filter)
	}

	if p.Expand != "" {
		values.Set("$expand", p.Expand)
	}

	if p.Top > 0 {
		values.Set("$top", strconv.Itoa(p.Top))
	}

	for key, vals := range p.Custom {
		for _, value := range vals {
			values.Add(key, value)
		}
	}

	return values
}
