package design

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"goa.design/goa/v3/eval"
	"goa.design/goa/v3/expr"
)

func TestDesign(t *testing.T) {
	require.NoError(t, eval.RunDSL())

	assert.Equal(t, "educhain", expr.Root.API.Name)

	routes := map[string]string{}
	for _, svc := range expr.Root.API.HTTP.Services {
		for _, e := range svc.HTTPEndpoints {
			for _, r := range e.Routes {
				routes[svc.Name()+"."+e.Name()] = r.Method + " " + r.Path
			}
		}
	}
	assert.Equal(t, map[string]string{
		"root.show":         "GET /",
		"health.check":      "GET /health",
		"inquiry.submit":    "POST /submit_inquiry",
		"donation.initiate": "POST /initiate_donation",
	}, routes)

	submit := expr.Root.Service("inquiry").Method("submit")
	require.NotNil(t, submit)
	var errs []string
	for _, e := range submit.Errors {
		errs = append(errs, e.Name)
	}
	assert.ElementsMatch(t, []string{"bad_request", "conflict", "storage_error", "method_not_allowed"}, errs)
}
