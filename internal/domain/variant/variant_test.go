package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeByName(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"Debug", Debug},
		{"debug", Debug},
		{" RELEASE ", Release},
	}
	for _, tt := range tests {
		got, err := ModeByName(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ModeByName("Profile")
	assert.ErrorContains(t, err, "unknown mode")
}

func TestTargetByPlatform(t *testing.T) {
	dev, err := TargetByPlatform("iphoneos")
	require.NoError(t, err)
	assert.Equal(t, "iphoneos", dev.PlatformName())
	assert.Equal(t, []Arch{ARMv7, ARM64}, dev.Archs())

	sim, err := TargetByPlatform("iPhoneSimulator")
	require.NoError(t, err)
	assert.Equal(t, []Arch{I386, X86_64}, sim.Archs())

	_, err = TargetByPlatform("macosx")
	assert.ErrorContains(t, err, "iphoneos, iphonesimulator")
}

func TestTarget_ArchsIsACopy(t *testing.T) {
	archs := Device.Archs()
	archs[0] = X86_64
	assert.Equal(t, ARMv7, Device.Archs()[0])
}

func TestBaseAddress(t *testing.T) {
	for _, tgt := range Targets() {
		for _, a := range tgt.Archs() {
			base, err := BaseAddress(a.Family())
			require.NoError(t, err, a.Name())
			assert.NotZero(t, base)
		}
	}

	base, err := BaseAddress("arm64")
	require.NoError(t, err)
	assert.Equal(t, uint64(0x100000000), base)

	_, err = BaseAddress("mips")
	assert.Error(t, err)
}
