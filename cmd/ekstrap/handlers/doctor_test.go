package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekstrap/ekstrap/internal/config"
	testutil "github.com/ekstrap/ekstrap/internal/testing"
	"github.com/ekstrap/ekstrap/internal/util/prerequisites"
)

// stubDoctorWiring makes every preflight check pass by default.
func stubDoctorWiring(t *testing.T) *config.Config {
	t.Helper()
	saveAndRestoreFactories(t)

	cfg := testutil.NewConfigBuilder().Build()
	loadConfigFile = func(_ string) (*config.Config, error) {
		return cfg, nil
	}
	resolveAccount = func(_ context.Context, _ *config.Config) (string, error) {
		return "111122223333", nil
	}
	discoverRepository = func(_ context.Context) (*config.Repository, error) {
		return &config.Repository{Organization: "acme", Name: "web"}, nil
	}
	checkTools = func(tools []prerequisites.Tool) *prerequisites.CheckResults {
		results := &prerequisites.CheckResults{}
		for _, tool := range tools {
			results.Results = append(results.Results, prerequisites.CheckResult{
				Tool:    tool,
				Found:   true,
				Path:    "/usr/local/bin/" + tool.Name,
				Version: tool.Name + " version 1.0.0",
			})
		}
		return results
	}

	return cfg
}

// stubMissingTools reports every probed binary as absent.
func stubMissingTools() {
	checkTools = func(tools []prerequisites.Tool) *prerequisites.CheckResults {
		results := &prerequisites.CheckResults{}
		for _, tool := range tools {
			results.Results = append(results.Results, prerequisites.CheckResult{Tool: tool})
			results.Missing = append(results.Missing, tool)
		}
		return results
	}
}

func TestDoctor_AllChecksPass(t *testing.T) {
	stubDoctorWiring(t)

	var err error
	output := captureOutput(func() {
		err = Doctor(context.Background(), "ekstrap.yaml")
	})

	require.NoError(t, err)
	assert.Contains(t, output, "account 111122223333")
	assert.Contains(t, output, "acme-web in il-central-1")
	assert.Contains(t, output, "acme/web (configured)")
	assert.Contains(t, output, "kubectl version 1.0.0")
	assert.Contains(t, output, "Environment looks good")
}

func TestDoctor_BrokenConfigShortCircuits(t *testing.T) {
	stubDoctorWiring(t)
	loadConfigFile = func(_ string) (*config.Config, error) {
		return nil, errors.New("yaml: line 3: mapping values are not allowed")
	}
	resolveAccount = func(_ context.Context, _ *config.Config) (string, error) {
		t.Error("credentials must not be probed without a config")
		return "", nil
	}

	err := Doctor(context.Background(), "broken.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "environment is not ready")
}

func TestDoctor_UnresolvableCredentialsAreFatal(t *testing.T) {
	stubDoctorWiring(t)
	resolveAccount = func(_ context.Context, _ *config.Config) (string, error) {
		return "", errors.New("no EC2 IMDS role found")
	}

	var err error
	output := captureOutput(func() {
		err = Doctor(context.Background(), "")
	})

	require.Error(t, err)
	assert.Contains(t, output, "no EC2 IMDS role found")
	assert.Contains(t, output, "acme/web", "later checks still run and report")
}

func TestDoctor_RepositoryFromOriginRemote(t *testing.T) {
	cfg := stubDoctorWiring(t)
	cfg.GitHub.Organization = ""
	cfg.GitHub.Repository = ""

	var err error
	output := captureOutput(func() {
		err = Doctor(context.Background(), "")
	})

	require.NoError(t, err)
	assert.Contains(t, output, "acme/web (from origin remote)")
	assert.Contains(t, output, "git version 1.0.0", "git is probed when discovery is needed")
}

func TestDoctor_UnknownRepositoryIsFatal(t *testing.T) {
	cfg := stubDoctorWiring(t)
	cfg.GitHub.Organization = ""
	cfg.GitHub.Repository = ""
	discoverRepository = func(_ context.Context) (*config.Repository, error) {
		return nil, errors.New("reading origin remote: exit status 128")
	}

	err := Doctor(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "environment is not ready")
}

func TestDoctor_MissingClientToolsAreWarningsOnly(t *testing.T) {
	stubDoctorWiring(t)
	stubMissingTools()

	var err error
	output := captureOutput(func() {
		err = Doctor(context.Background(), "")
	})

	require.NoError(t, err, "missing aws/kubectl binaries must not fail the preflight")
	assert.Contains(t, output, "not on PATH")
	assert.Contains(t, output, "Environment looks good")
}

func TestDoctor_MissingGitIsFatalWhenDiscoveryIsNeeded(t *testing.T) {
	cfg := stubDoctorWiring(t)
	cfg.GitHub.Organization = ""
	cfg.GitHub.Repository = ""
	stubMissingTools()

	err := Doctor(context.Background(), "")
	require.Error(t, err, "git is required while the repository must be discovered")
}
