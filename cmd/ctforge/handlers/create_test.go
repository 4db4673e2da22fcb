package handlers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctforge/ctforge/internal/config"
	"github.com/ctforge/ctforge/internal/config/wizard"
	"github.com/ctforge/ctforge/internal/pve"
	"github.com/ctforge/ctforge/internal/util/netutil"
	"github.com/ctforge/ctforge/internal/util/prerequisites"
)

// scriptedPrompter replays canned answers for the wizard.
type scriptedPrompter struct {
	t        *testing.T
	inputs   []string
	confirms []bool
	selects  []string
}

func (s *scriptedPrompter) Input(_ context.Context, title, _, _ string) (string, error) {
	if len(s.inputs) == 0 {
		s.t.Fatalf("unscripted input prompt: %q", title)
	}
	v := s.inputs[0]
	s.inputs = s.inputs[1:]
	return v, nil
}

func (s *scriptedPrompter) Confirm(_ context.Context, title, _ string, _ bool) (bool, error) {
	if len(s.confirms) == 0 {
		s.t.Fatalf("unscripted confirm prompt: %q", title)
	}
	v := s.confirms[0]
	s.confirms = s.confirms[1:]
	return v, nil
}

func (s *scriptedPrompter) Select(_ context.Context, title, _ string, options []Option) (string, error) {
	if len(s.selects) == 0 {
		s.t.Fatalf("unscripted select prompt: %q", title)
	}
	v := s.selects[0]
	s.selects = s.selects[1:]
	return v, nil
}

// Option aliases the wizard option type for the scripted prompter.
type Option = wizard.Option

// gatewayOnlyProber answers like a quiet network segment: the gateway
// responds, candidate container addresses do not.
type gatewayOnlyProber struct {
	reachable map[string]bool
}

func (p *gatewayOnlyProber) Reachable(_ context.Context, addr string) bool {
	return p.reachable[addr]
}

// callRecorder tracks platform calls across goroutines.
type callRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *callRecorder) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *callRecorder) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func stubEnvironment(t *testing.T, client pve.Client, prompter wizard.Prompter) {
	t.Helper()

	origClient := newClient
	origPrompter := newPrompter
	origProber := newProber
	origCheck := checkTools
	origModules := ensureModules
	origGateway := hostGateway
	origLoadConfig := loadConfig
	origLoadManifest := loadManifest
	origWait := waitForPort
	t.Cleanup(func() {
		newClient = origClient
		newPrompter = origPrompter
		newProber = origProber
		checkTools = origCheck
		ensureModules = origModules
		hostGateway = origGateway
		loadConfig = origLoadConfig
		loadManifest = origLoadManifest
		waitForPort = origWait
	})

	newClient = func() pve.Client { return client }
	newPrompter = func() wizard.Prompter { return prompter }
	newProber = func() netutil.Prober {
		return &gatewayOnlyProber{reachable: map[string]bool{"192.168.1.1": true}}
	}
	checkTools = func() *prerequisites.CheckResults { return &prerequisites.CheckResults{} }
	ensureModules = func(_ context.Context) error { return nil }
	hostGateway = func(_ context.Context) (string, error) { return "192.168.1.1", nil }
	loadConfig = func(_ string) (*config.Config, error) { return config.Default(), nil }
	waitForPort = func(_ context.Context, _ string, _ int, _ time.Duration) error { return nil }
	loadManifest = func(_ string) ([]config.Requirement, error) {
		return []config.Requirement{
			{Role: "media", Description: "Shared media library"},
			{Role: "backups", Description: "Backup target"},
		}, nil
	}
}

func testClient(rec *callRecorder) *pve.MockClient {
	return &pve.MockClient{
		ListStoragePoolsFunc: func(_ context.Context) ([]pve.StoragePool, error) {
			return []pve.StoragePool{
				{Name: "local-lvm", Type: "lvmthin", Active: true, AvailKiB: 100 << 20},
				{Name: "nas-0-media", Type: "nfs", Active: true, AvailKiB: 500 << 20},
				{Name: "nas-1-backups", Type: "nfs", Active: true, AvailKiB: 800 << 20},
			}, nil
		},
		CreateFunc: func(_ context.Context, spec pve.ContainerSpec) error {
			rec.record("create")
			return nil
		},
		StartFunc: func(_ context.Context, id int) error {
			rec.record("start")
			return nil
		},
		SetMountPointFunc: func(_ context.Context, id, index int, pool, path string) error {
			rec.record("mount " + pool)
			return nil
		},
		DestroyFunc: func(_ context.Context, id int) error {
			rec.record("destroy")
			return nil
		},
		StopFunc: func(_ context.Context, id int) error {
			rec.record("stop")
			return nil
		},
	}
}

func happyPrompter(t *testing.T) *scriptedPrompter {
	return &scriptedPrompter{
		t:        t,
		selects:  []string{"local-lvm"},
		inputs:   []string{"media", "192.168.1.50", "192.168.1.1", "8", "2048"},
		confirms: []bool{true, true}, // bulk mapping, final gate
	}
}

func TestCreate_FullRun(t *testing.T) {
	rec := &callRecorder{}
	stubEnvironment(t, testClient(rec), happyPrompter(t))

	err := Create(context.Background(), CreateOptions{Plain: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"create", "start", "mount nas-0-media", "mount nas-1-backups"}, rec.recorded())
}

func TestCreate_DryRunTouchesNothing(t *testing.T) {
	rec := &callRecorder{}
	stubEnvironment(t, testClient(rec), happyPrompter(t))

	err := Create(context.Background(), CreateOptions{DryRun: true})
	require.NoError(t, err)

	assert.Empty(t, rec.recorded())
}

func TestCreate_FinalGateDeclinedIsNotAnError(t *testing.T) {
	rec := &callRecorder{}
	prompter := happyPrompter(t)
	prompter.confirms = []bool{true, false} // bulk mapping, final gate declined
	stubEnvironment(t, testClient(rec), prompter)

	err := Create(context.Background(), CreateOptions{Plain: true})
	require.NoError(t, err)

	assert.Empty(t, rec.recorded())
}

func TestCreate_StartFailureTearsDown(t *testing.T) {
	rec := &callRecorder{}
	client := testClient(rec)
	client.StartFunc = func(_ context.Context, id int) error {
		rec.record("start")
		return &pve.CommandError{Line: "pct start 150", ExitCode: 255}
	}
	stubEnvironment(t, client, happyPrompter(t))

	err := Create(context.Background(), CreateOptions{Plain: true})
	require.Error(t, err)

	assert.Equal(t, []string{"create", "start", "destroy"}, rec.recorded())
}

func TestCreate_MissingToolsAborts(t *testing.T) {
	rec := &callRecorder{}
	stubEnvironment(t, testClient(rec), happyPrompter(t))
	checkTools = func() *prerequisites.CheckResults {
		return &prerequisites.CheckResults{
			Missing: []prerequisites.Tool{{Name: "pct", Required: true, Description: "container lifecycle"}},
		}
	}

	err := Create(context.Background(), CreateOptions{Plain: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pct")
	assert.Empty(t, rec.recorded())
}
