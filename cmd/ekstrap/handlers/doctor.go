package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ekstrap/ekstrap/internal/config"
	"github.com/ekstrap/ekstrap/internal/util/prerequisites"
)

// CheckResult is the outcome of one preflight probe.
type CheckResult struct {
	Name    string
	OK      bool
	Fatal   bool
	Message string
}

// Factory function variables for doctor - can be replaced in tests.
var (
	// checkTools probes client binaries on PATH.
	checkTools = prerequisites.Check

	// resolveAccount resolves the caller's AWS account through STS.
	resolveAccount = func(ctx context.Context, cfg *config.Config) (string, error) {
		infra, err := newInfraClient(ctx, cfg)
		if err != nil {
			return "", err
		}
		return infra.AccountID(ctx)
	}

	// discoverRepository reads the origin remote of the working directory.
	discoverRepository = config.DiscoverRepository
)

// Doctor handles the doctor command.
//
// It verifies the environment a provision run depends on and makes no
// changes. Missing client tools are warnings; a broken configuration,
// unresolvable credentials or an unknown repository are fatal.
func Doctor(ctx context.Context, configPath string) error {
	results := runChecks(ctx, configPath)

	fmt.Println()
	fmt.Println("  ekstrap doctor")
	fmt.Println("  " + strings.Repeat("═", 14))
	fmt.Println()
	for _, res := range results {
		printCheck(res)
	}
	fmt.Println()

	for _, res := range results {
		if res.Fatal && !res.OK {
			return errors.New("environment is not ready; fix the failed checks above")
		}
	}

	fmt.Println("  Environment looks good. Run 'ekstrap provision' to create the stack.")
	fmt.Println()
	return nil
}

// runChecks runs the preflight probes in order. A broken configuration
// short-circuits the rest; every other check runs regardless of earlier
// results so one doctor pass reports everything at once.
func runChecks(ctx context.Context, configPath string) []CheckResult {
	var results []CheckResult

	cfg, err := loadConfig(configPath)
	if err != nil {
		results = append(results, CheckResult{Name: "configuration", Fatal: true, Message: err.Error()})
		return results
	}
	results = append(results, CheckResult{
		Name:    "configuration",
		OK:      true,
		Fatal:   true,
		Message: fmt.Sprintf("%s in %s", cfg.ClusterName, cfg.Region),
	})

	if account, err := resolveAccount(ctx, cfg); err != nil {
		results = append(results, CheckResult{Name: "aws credentials", Fatal: true, Message: err.Error()})
	} else {
		results = append(results, CheckResult{Name: "aws credentials", OK: true, Fatal: true, Message: "account " + account})
	}

	results = append(results, checkRepository(ctx, cfg))
	results = append(results, toolChecks(cfg)...)

	return results
}

// checkRepository verifies the deploy role will have repository
// coordinates: either configured explicitly or discoverable from the
// origin remote.
func checkRepository(ctx context.Context, cfg *config.Config) CheckResult {
	if cfg.GitHub.Organization != "" && cfg.GitHub.Repository != "" {
		return CheckResult{
			Name:    "github repository",
			OK:      true,
			Fatal:   true,
			Message: fmt.Sprintf("%s/%s (configured)", cfg.GitHub.Organization, cfg.GitHub.Repository),
		}
	}

	repo, err := discoverRepository(ctx)
	if err != nil {
		return CheckResult{
			Name:    "github repository",
			Fatal:   true,
			Message: "not configured and no usable origin remote: " + err.Error(),
		}
	}
	return CheckResult{
		Name:    "github repository",
		OK:      true,
		Fatal:   true,
		Message: fmt.Sprintf("%s/%s (from origin remote)", repo.Organization, repo.Name),
	}
}

// toolChecks probes client binaries. git matters only when the repository
// coordinates still have to be discovered from the clone; aws and kubectl
// are kubectl-time dependencies (exec auth) and never block provisioning.
func toolChecks(cfg *config.Config) []CheckResult {
	tools := prerequisites.OptionalTools()
	if cfg.GitHub.Organization == "" || cfg.GitHub.Repository == "" {
		tools = append(prerequisites.DefaultTools(), tools...)
	}

	var results []CheckResult
	for _, res := range checkTools(tools).Results {
		check := CheckResult{Name: res.Tool.Name, OK: res.Found, Fatal: res.Tool.Required}
		switch {
		case res.Found && res.Version != "":
			check.Message = res.Version
		case res.Found:
			check.Message = "found"
		case res.Tool.Required:
			check.Message = fmt.Sprintf("%s - install: %s", res.Tool.Description, res.Tool.InstallURL)
		default:
			check.Message = fmt.Sprintf("not on PATH (%s)", res.Tool.Description)
		}
		results = append(results, check)
	}
	return results
}

func printCheck(res CheckResult) {
	indicator := "✅" // green check
	if !res.OK {
		indicator = "⚠️ " // warning sign
		if res.Fatal {
			indicator = "❌" // red X
		}
	}

	if res.Message != "" {
		fmt.Printf("  %s  %-20s %s\n", indicator, res.Name, res.Message)
	} else {
		fmt.Printf("  %s  %s\n", indicator, res.Name)
	}
}
