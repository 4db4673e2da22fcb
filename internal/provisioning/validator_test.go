package provisioning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctforge/ctforge/internal/pve"
)

// fakeProber reports only the listed addresses as reachable.
type fakeProber struct {
	reachable map[string]bool
	probes    []string
}

func (f *fakeProber) Reachable(_ context.Context, addr string) bool {
	f.probes = append(f.probes, addr)
	return f.reachable[addr]
}

func testFacts() *Facts {
	return &Facts{
		Containers: []pve.Container{
			{ID: 104, Status: "running", Name: "media"},
			{ID: 110, Status: "stopped", Name: "backups"},
		},
		BoundIPs:     map[string]int{"192.168.1.104": 104, "192.168.1.110": 110},
		HostGateway:  "192.168.1.1",
		ExpectedVLAN: 1,
	}
}

func TestValidateIPv4Syntax(t *testing.T) {
	t.Parallel()

	tests := []struct {
		addr string
		ok   bool
	}{
		{"192.168.1.50", true},
		{"0.0.0.0", true},
		{"255.255.255.255", true},
		{"192.168.1.500", false},
		{"192.168.1", false},
		{"192.168.1.1.1", false},
		{"192.168..1", false},
		{"192.168.1.-1", false},
		{"192.168.1.+5", false},
		{"192.168.+1.5", false},
		{"a.b.c.d", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			err := ValidateIPv4Syntax(tt.addr)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				var malformed *MalformedInputError
				assert.ErrorAs(t, err, &malformed)
			}
		})
	}
}

func TestClassifyIPv4_Precedence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("malformed wins before any probe", func(t *testing.T) {
		prober := &fakeProber{}
		_, err := testFacts().ClassifyIPv4(ctx, "192.168.1.500", prober)
		var malformed *MalformedInputError
		require.ErrorAs(t, err, &malformed)
		assert.Empty(t, prober.probes, "malformed candidates must not be probed")
	})

	t.Run("allocated wins over in-use", func(t *testing.T) {
		// Bound to container 104 and answering pings: the registry
		// binding is the more specific rejection.
		prober := &fakeProber{reachable: map[string]bool{"192.168.1.104": true}}
		_, err := testFacts().ClassifyIPv4(ctx, "192.168.1.104", prober)
		var inUse *ResourceInUseError
		require.ErrorAs(t, err, &inUse)
		assert.Equal(t, "container 104", inUse.Holder)
	})

	t.Run("live host rejected", func(t *testing.T) {
		prober := &fakeProber{reachable: map[string]bool{"192.168.1.77": true}}
		_, err := testFacts().ClassifyIPv4(ctx, "192.168.1.77", prober)
		var inUse *ResourceInUseError
		require.ErrorAs(t, err, &inUse)
		assert.Equal(t, "a live host", inUse.Holder)
	})

	t.Run("free on expected VLAN accepted", func(t *testing.T) {
		class, err := testFacts().ClassifyIPv4(ctx, "192.168.1.50", &fakeProber{})
		require.NoError(t, err)
		assert.Equal(t, IPAcceptable, class)
	})

	t.Run("free off VLAN needs confirmation", func(t *testing.T) {
		class, err := testFacts().ClassifyIPv4(ctx, "192.168.20.50", &fakeProber{})
		require.NoError(t, err)
		assert.Equal(t, IPOffVLAN, class)
	})
}

func TestClassifyIPv4_Idempotent(t *testing.T) {
	t.Parallel()

	facts := testFacts()
	prober := &fakeProber{}
	ctx := context.Background()

	first, err1 := facts.ClassifyIPv4(ctx, "192.168.1.50", prober)
	second, err2 := facts.ClassifyIPv4(ctx, "192.168.1.50", prober)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)
}

func TestEffectiveVLANTag(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 20, EffectiveVLANTag("192.168.20.50"))
	assert.Equal(t, 1, EffectiveVLANTag("10.0.0.5"), "zero octet resolves to untagged default")
	assert.Equal(t, 1, EffectiveVLANTag("192.168.1.50"))
}

func TestValidateHostname(t *testing.T) {
	t.Parallel()
	facts := testFacts()

	t.Run("normalizes to lower case", func(t *testing.T) {
		name, err := facts.ValidateHostname("  Jellyfin ")
		require.NoError(t, err)
		assert.Equal(t, "jellyfin", name)
	})

	t.Run("case-insensitive collision", func(t *testing.T) {
		_, err := facts.ValidateHostname("MEDIA")
		var inUse *ResourceInUseError
		require.ErrorAs(t, err, &inUse)
		assert.Equal(t, KindHostname, inUse.Kind)
	})

	t.Run("empty rejected", func(t *testing.T) {
		_, err := facts.ValidateHostname("   ")
		var malformed *MalformedInputError
		assert.ErrorAs(t, err, &malformed)
	})

	t.Run("bad characters rejected", func(t *testing.T) {
		for _, name := range []string{"media files", "-media", "media-", "media_01"} {
			_, err := facts.ValidateHostname(name)
			var malformed *MalformedInputError
			assert.ErrorAs(t, err, &malformed, "hostname %q", name)
		}
	})
}

func TestValidateGateway(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("reachable accepted", func(t *testing.T) {
		prober := &fakeProber{reachable: map[string]bool{"192.168.1.254": true}}
		assert.NoError(t, testFacts().ValidateGateway(ctx, "192.168.1.254", prober))
	})

	t.Run("host default gateway accepted without probe success", func(t *testing.T) {
		assert.NoError(t, testFacts().ValidateGateway(ctx, "192.168.1.1", &fakeProber{}))
	})

	t.Run("same first three octets as host gateway accepted", func(t *testing.T) {
		assert.NoError(t, testFacts().ValidateGateway(ctx, "192.168.1.253", &fakeProber{}))
	})

	t.Run("unreachable foreign gateway rejected", func(t *testing.T) {
		err := testFacts().ValidateGateway(ctx, "10.9.9.1", &fakeProber{})
		var unreachable *UnreachableError
		require.ErrorAs(t, err, &unreachable)
		assert.Equal(t, KindGateway, unreachable.Kind)
	})

	t.Run("no host gateway derivable rejects unreachable", func(t *testing.T) {
		facts := testFacts()
		facts.HostGateway = ""
		err := facts.ValidateGateway(ctx, "192.168.1.1", &fakeProber{})
		var unreachable *UnreachableError
		assert.ErrorAs(t, err, &unreachable)
	})

	t.Run("malformed rejected", func(t *testing.T) {
		err := testFacts().ValidateGateway(ctx, "not-a-gateway", &fakeProber{})
		var malformed *MalformedInputError
		assert.ErrorAs(t, err, &malformed)
	})
}

func TestDeriveCTID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 150, DeriveCTID("192.168.1.150"))
	assert.Equal(t, 142, DeriveCTID("192.168.1.42"))
	assert.Equal(t, 100, DeriveCTID("192.168.1.100"))
	assert.Equal(t, 199, DeriveCTID("192.168.1.99"))
}

func TestResolveCTID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("free candidate accepted", func(t *testing.T) {
		id, err := testFacts().ResolveCTID(ctx, &pve.MockClient{}, 150)
		require.NoError(t, err)
		assert.Equal(t, 150, id)
	})

	t.Run("collision falls back to platform suggestion", func(t *testing.T) {
		registry := &pve.MockClient{NextIDFunc: func(context.Context) (int, error) { return 111, nil }}
		id, err := testFacts().ResolveCTID(ctx, registry, 104)
		require.NoError(t, err)
		assert.Equal(t, 111, id)
	})

	t.Run("persistent collision fails the iteration", func(t *testing.T) {
		registry := &pve.MockClient{NextIDFunc: func(context.Context) (int, error) { return 110, nil }}
		_, err := testFacts().ResolveCTID(ctx, registry, 104)
		var inUse *ResourceInUseError
		require.ErrorAs(t, err, &inUse)
		assert.Equal(t, KindID, inUse.Kind)
	})

	t.Run("below floor rejected", func(t *testing.T) {
		_, err := testFacts().ResolveCTID(ctx, &pve.MockClient{}, 42)
		var malformed *MalformedInputError
		assert.ErrorAs(t, err, &malformed)
	})
}

func TestGatherFacts(t *testing.T) {
	t.Parallel()

	client := &pve.MockClient{
		ListContainersFunc: func(context.Context) ([]pve.Container, error) {
			return []pve.Container{{ID: 104, Status: "running", Name: "media"}}, nil
		},
		ContainerConfigFunc: func(_ context.Context, id int) (map[string]string, error) {
			require.Equal(t, 104, id)
			return map[string]string{
				"net0": "name=eth0,bridge=vmbr0,gw=192.168.1.1,ip=192.168.1.104/24",
			}, nil
		},
	}

	facts, err := GatherFacts(context.Background(), client, "192.168.1.1", 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"192.168.1.104": 104}, facts.BoundIPs)
	assert.Equal(t, "192.168.1.1", facts.HostGateway)
	_, taken := facts.HostnameTaken("MEDIA")
	assert.True(t, taken)
	assert.True(t, facts.CTIDTaken(104))
	assert.False(t, facts.CTIDTaken(105))
}
