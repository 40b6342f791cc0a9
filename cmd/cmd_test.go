package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return buf.String()
}

func TestVersionFlag(t *testing.T) {
	out := execute(t, "--version")
	assert.Equal(t, Version+"\n", out)
}

func TestStationsCommand(t *testing.T) {
	out := execute(t, "stations")
	assert.Contains(t, out, "南港")
	assert.Contains(t, out, "左營")
	assert.Contains(t, out, "12")
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 12)
}

func TestTimesCommand(t *testing.T) {
	out := execute(t, "times")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 38)
	assert.Equal(t, "00:01", lines[0])
	assert.Equal(t, "23:30", lines[len(lines)-1])
}

func TestProfileRoundTrip(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("profile_dir", t.TempDir())
	viper.Set("booking.start_station", "台北")
	viper.Set("booking.dest_station", "左營")
	viper.Set("booking.outbound_time", "10:00")
	viper.Set("booking.personal_id", "A123456789")

	out := execute(t, "profile", "save")
	assert.Contains(t, out, "Profile saved.")

	out = execute(t, "profile", "show")
	assert.Contains(t, out, "台北")
	assert.Contains(t, out, "左營")
	assert.Contains(t, out, "10:00")
	// The national ID is masked when printed.
	assert.Contains(t, out, "A1******89")
	assert.NotContains(t, out, "A123456789")

	out = execute(t, "profile", "delete")
	assert.Contains(t, out, "Profile deleted.")

	out = execute(t, "profile", "show")
	assert.Contains(t, out, "No saved profile.")
}
