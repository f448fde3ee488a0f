package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateNormalizes(t *testing.T) {
	cfg := Config{Pages: []Page{
		{Path: "dashboard", Method: " get ", Handler: "dashboard"},
	}}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "/dashboard", cfg.Pages[0].Path)
	assert.Equal(t, "GET", cfg.Pages[0].Method)
}

func TestValidateDefaultsMethodToGet(t *testing.T) {
	cfg := Config{Pages: []Page{{Path: "/x", Handler: "x"}}}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "GET", cfg.Pages[0].Method)
}

func TestValidateCleansPath(t *testing.T) {
	cfg := Config{Pages: []Page{{Path: "/a//b/../c", Handler: "x"}}}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "/a/c", cfg.Pages[0].Path)
}

func TestValidateRejectsEmpty(t *testing.T) {
	cfg := Config{}
	assert.EqualError(t, cfg.Validate(), "no pages defined")
}

func TestValidateRejectsMissingHandler(t *testing.T) {
	cfg := Config{Pages: []Page{{Path: "/x"}}}
	assert.ErrorContains(t, cfg.Validate(), "handler name required")
}

func TestValidateRejectsMissingPath(t *testing.T) {
	cfg := Config{Pages: []Page{{Handler: "x"}}}
	assert.ErrorContains(t, cfg.Validate(), "path is required")
}

func TestValidateRejectsNegativeTimeout(t *testing.T) {
	cfg := Config{Pages: []Page{{Path: "/x", Handler: "x", Policy: Policy{TimeoutMS: -1}}}}
	assert.ErrorContains(t, cfg.Validate(), "timeout_ms")
}

func TestValidateRejectsDuplicates(t *testing.T) {
	cfg := Config{Pages: []Page{
		{Path: "/x", Method: "GET", Handler: "a"},
		{Path: "/x", Method: "get", Handler: "b"},
	}}
	assert.ErrorContains(t, cfg.Validate(), "duplicate route")
}

func TestValidateAllowsSamePathDifferentMethods(t *testing.T) {
	cfg := Config{Pages: []Page{
		{Path: "/settings", Method: "GET", Handler: "settings"},
		{Path: "/settings", Method: "POST", Handler: "settings_save"},
	}}
	assert.NoError(t, cfg.Validate())
}
