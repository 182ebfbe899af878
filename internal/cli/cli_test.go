package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name       string
		args       []string
		wantExit   bool
		wantCode   int
		wantPath   string
		wantHost   string
		wantFormat string
	}{
		{name: "positional path", args: []string{"rig.hcl"}, wantPath: "rig.hcl", wantFormat: "text"},
		{name: "long flag wins", args: []string{"-rig", "a.hcl", "-r", "b.hcl", "c.hcl"}, wantPath: "a.hcl", wantFormat: "text"},
		{name: "shorthand", args: []string{"-r", "b.hcl"}, wantPath: "b.hcl", wantFormat: "text"},
		{name: "host and json", args: []string{"-host", "ws://localhost:3000/socket.io/", "-log-format", "JSON", "rigs"}, wantPath: "rigs", wantHost: "ws://localhost:3000/socket.io/", wantFormat: "json"},
		{name: "help", args: []string{"-h"}, wantExit: true},
		{name: "no path prints usage", args: nil, wantExit: true},
		{name: "unknown flag", args: []string{"-nope"}, wantCode: 2},
		{name: "bad log format", args: []string{"-log-format", "xml", "rig.hcl"}, wantCode: 2},
		{name: "bad log level", args: []string{"-log-level", "loud", "rig.hcl"}, wantCode: 2},
		{name: "negative timeout", args: []string{"-call-timeout", "-1s", "rig.hcl"}, wantCode: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			cfg, exit, err := Parse(tc.args, out)

			if tc.wantCode != 0 {
				var exitErr *ExitError
				require.ErrorAs(t, err, &exitErr)
				assert.Equal(t, tc.wantCode, exitErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantExit, exit)
			if tc.wantExit {
				assert.Nil(t, cfg)
				assert.Contains(t, out.String(), "Usage:")
				return
			}
			assert.Equal(t, tc.wantPath, cfg.RigPath)
			assert.Equal(t, tc.wantHost, cfg.HostURL)
			assert.Equal(t, tc.wantFormat, cfg.LogFormat)
			assert.Equal(t, "info", cfg.LogLevel)
			assert.Equal(t, 10*time.Second, cfg.CallTimeout)
		})
	}
}
