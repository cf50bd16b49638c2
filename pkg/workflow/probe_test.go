package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/snk/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedRunner struct {
	out      string
	err      error
	lookPath error
}

func (r scriptedRunner) Output(context.Context, ports.Command) ([]byte, error) {
	return []byte(r.out), r.err
}

func (r scriptedRunner) Attach(context.Context, ports.Command) error { return nil }

func (r scriptedRunner) LookPath(name string) (string, error) {
	if r.lookPath != nil {
		return "", r.lookPath
	}
	return "/usr/bin/" + name, nil
}

func TestPythonProbe(t *testing.T) {
	sitePackages := t.TempDir()
	inside := filepath.Join(sitePackages, "wf", "__init__.py")

	tests := []struct {
		name    string
		runner  scriptedRunner
		setup   func()
		want    bool
		wantErr bool
	}{
		{
			name:   "Not Installed",
			runner: scriptedRunner{out: fmt.Sprintf(`{"origin": null, "site_packages": [%q]}`, sitePackages)},
			want:   false,
		},
		{
			name:   "Outside Site Packages",
			runner: scriptedRunner{out: fmt.Sprintf(`{"origin": "/home/dev/wf/__init__.py", "site_packages": [%q]}`, sitePackages)},
			want:   true,
		},
		{
			name:   "Inside Site Packages",
			runner: scriptedRunner{out: fmt.Sprintf(`{"origin": %q, "site_packages": [%q]}`, inside, sitePackages)},
			want:   false,
		},
		{
			name:   "Inside With Egg Link",
			runner: scriptedRunner{out: fmt.Sprintf("warning: noise\n"+`{"origin": %q, "site_packages": [%q]}`, inside, sitePackages)},
			setup: func() {
				require.NoError(t, os.WriteFile(filepath.Join(sitePackages, "wf.egg-link"), []byte("/src/wf\n."), 0o644))
			},
			want: true,
		},
		{
			name:    "Interpreter Failure",
			runner:  scriptedRunner{out: "Traceback", err: errors.New("exit status 1")},
			wantErr: true,
		},
		{
			name:    "Garbage Output",
			runner:  scriptedRunner{out: "not json"},
			wantErr: true,
		},
		{
			name:    "No Interpreter",
			runner:  scriptedRunner{lookPath: errors.New("not found")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			got, err := NewPythonProbe(tt.runner).IsEditableInstall("wf")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
