package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "Born DLA "+version+"\n", out)
}

func TestConv_Default(t *testing.T) {
	out, _, err := execute(t, "conv", "--latency", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "output 1x3x3 (CxHxW), int32", lines[0])
	assert.Equal(t, "channel 0:", lines[1])
	assert.Len(t, strings.Fields(lines[2]), 3)
}

func TestConv_Grouped(t *testing.T) {
	out, _, err := execute(t, "conv", "--input", "4x4x4", "--kernel", "3x3x4", "--pad", "1", "--groups", "2", "--output", "int16")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "output 4x4x4 (CxHxW), int16\n"))
	assert.Equal(t, 4, strings.Count(out, "channel "))
}

func TestConv_VerboseLogs(t *testing.T) {
	_, logs, err := execute(t, "conv", "--bias", "--relu", "--output", "int8", "-v")
	require.NoError(t, err)
	assert.Contains(t, logs, "dla layer")
	assert.Contains(t, logs, "jobs=1")
}

func TestConv_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad input dims", []string{"--input", "4x4"}, "--input"},
		{"non-numeric kernel", []string{"--kernel", "2xax1"}, "--kernel"},
		{"zero dim", []string{"--input", "0x4x3"}, "positive"},
		{"unknown output", []string{"--output", "float32"}, "--output"},
		{"relu with groups", []string{"--groups", "2", "--input", "4x4x4", "--relu"}, "--relu"},
		{"indivisible groups", []string{"--groups", "3", "--input", "4x4x8", "--kernel", "1x1x16"}, "grouped conv"},
		{"kernel larger than input", []string{"--input", "2x2x1", "--kernel", "3x3x1"}, "geometry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, append([]string{"conv"}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseDims(t *testing.T) {
	h, w, c, err := parseDims(" 8 x 6x3")
	require.NoError(t, err)
	assert.Equal(t, []int{8, 6, 3}, []int{h, w, c})
}
