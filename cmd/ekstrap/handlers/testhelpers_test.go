package handlers

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/ekstrap/ekstrap/internal/provisioning"
)

// saveAndRestoreFactories snapshots every injectable factory variable and
// restores it when the test finishes, so tests can stub freely.
func saveAndRestoreFactories(t *testing.T) {
	t.Helper()

	origNewInfraClient := newInfraClient
	origNewReconciler := newReconciler
	origResolveRun := resolveRun
	origLoadConfigFile := loadConfigFile
	origStdoutIsTTY := stdoutIsTTY
	origFileExists := fileExists
	origRunWizard := runWizard
	origWriteConfig := writeConfig
	origCheckTools := checkTools
	origResolveAccount := resolveAccount
	origDiscoverRepository := discoverRepository

	t.Cleanup(func() {
		newInfraClient = origNewInfraClient
		newReconciler = origNewReconciler
		resolveRun = origResolveRun
		loadConfigFile = origLoadConfigFile
		stdoutIsTTY = origStdoutIsTTY
		fileExists = origFileExists
		runWizard = origRunWizard
		writeConfig = origWriteConfig
		checkTools = origCheckTools
		resolveAccount = origResolveAccount
		discoverRepository = origDiscoverRepository
	})
}

// fakeReconciler stands in for the orchestration sequencer.
type fakeReconciler struct {
	provisionSummary *provisioning.Summary
	provisionErr     error
	teardownSummary  *provisioning.Summary
	teardownErr      error
	provisionCalls   int
	teardownCalls    int
}

func (f *fakeReconciler) Provision(_ context.Context) (*provisioning.Summary, error) {
	f.provisionCalls++
	return f.provisionSummary, f.provisionErr
}

func (f *fakeReconciler) Teardown(_ context.Context) (*provisioning.Summary, error) {
	f.teardownCalls++
	return f.teardownSummary, f.teardownErr
}

func captureOutput(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}
