package health

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpstreamCheck_Healthy(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	check := UpstreamCheck(ln.Addr().String(), time.Second)

	result := check()

	assert.Equal(t, StatusHealthy, result.Status)
	assert.Empty(t, result.Message)
}

func TestUpstreamCheck_Unreachable(t *testing.T) {
	t.Parallel()

	// Port 1 is practically never listening.
	check := UpstreamCheck("127.0.0.1:1", 100*time.Millisecond)

	result := check()

	assert.Equal(t, StatusDegraded, result.Status)
	assert.Contains(t, result.Message, "failed to connect")
}

func TestTargetAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		target  string
		want    string
		wantErr bool
	}{
		{
			name:   "explicit port kept",
			target: "http://ldap.internal:8080",
			want:   "ldap.internal:8080",
		},
		{
			name:   "http defaults to 80",
			target: "http://console.internal",
			want:   "console.internal:80",
		},
		{
			name:   "https defaults to 443",
			target: "https://console.internal",
			want:   "console.internal:443",
		},
		{
			name:   "path is ignored",
			target: "http://legacy.internal:9000/base",
			want:   "legacy.internal:9000",
		},
		{
			name:    "missing host",
			target:  "http://",
			wantErr: true,
		},
		{
			name:    "unparsable target",
			target:  "://missing-scheme",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := targetAddress(tt.target)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUpstreamCheckForTarget_Healthy(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	check, err := UpstreamCheckForTarget("http://"+ln.Addr().String(), time.Second)
	require.NoError(t, err)

	result := check()

	assert.Equal(t, StatusHealthy, result.Status)
}

func TestUpstreamCheckForTarget_InvalidTarget(t *testing.T) {
	t.Parallel()

	check, err := UpstreamCheckForTarget("://missing-scheme", time.Second)

	assert.Error(t, err)
	assert.Nil(t, check)
}

func TestCachedCheck_ServesFromCache(t *testing.T) {
	t.Parallel()

	calls := 0
	check := CachedCheck(func() Check {
		calls++
		return Check{Status: StatusHealthy, Message: "connected"}
	}, time.Hour)

	first := check()
	second := check()
	third := check()

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.Equal(t, first, third)
}

func TestCachedCheck_RefreshesAfterTTL(t *testing.T) {
	t.Parallel()

	calls := 0
	check := CachedCheck(func() Check {
		calls++
		return Check{Status: StatusHealthy}
	}, time.Millisecond)

	check()
	time.Sleep(5 * time.Millisecond)
	check()

	assert.Equal(t, 2, calls)
}

func TestCachedCheck_PropagatesStatusChanges(t *testing.T) {
	t.Parallel()

	status := StatusHealthy
	check := CachedCheck(func() Check {
		return Check{Status: status}
	}, time.Millisecond)

	assert.Equal(t, StatusHealthy, check().Status)

	status = StatusDegraded
	time.Sleep(5 * time.Millisecond)

	assert.Equal(t, StatusDegraded, check().Status)
}
