package packages

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"testing"

	"github.com/dshills/quickbar/internal/dispatcher/command"
	"github.com/dshills/quickbar/internal/dispatcher/handlers/handlertest"
)

type fakeRunner struct {
	calls []string
	out   map[string]string
	err   map[string]error
}

func (r *fakeRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	r.calls = append(r.calls, name+" "+strings.Join(args, " "))
	return r.out[name], r.err[name]
}

func TestInstall(t *testing.T) {
	tests := []struct {
		name string
		out  string
		err  error
		want bool
	}{
		{"clean", "success: installed yarn", nil, true},
		{"permission", "error: permission denied", fmt.Errorf("exit status 1"), false},
		{"other failure", "network down", fmt.Errorf("exit status 1"), true},
		{"missing installer", "", &exec.Error{Name: "volta", Err: exec.ErrNotFound}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRunner{out: map[string]string{"volta": tt.out}, err: map[string]error{"volta": tt.err}}
			env := handlertest.New(t, nil)
			env.Add(t, NewHandler(r, ""))

			res := env.Send(t, command.InstallGlobalPackage, `{"packages":["yarn","pnpm"]}`, 0)
			if res.Value != tt.want {
				t.Errorf("install = %v, want %v", res.Value, tt.want)
			}
			if len(r.calls) != 1 || r.calls[0] != "volta install yarn pnpm" {
				t.Errorf("calls = %v", r.calls)
			}
		})
	}
}

func TestInstallNothing(t *testing.T) {
	r := &fakeRunner{}
	env := handlertest.New(t, nil)
	env.Add(t, NewHandler(r, "npm"))
	if res := env.Send(t, command.InstallGlobalPackage, `{"packages":[]}`, 0); res.Value != false || len(r.calls) != 0 {
		t.Errorf("install(empty) = %+v, calls %v", res, r.calls)
	}
}

func TestVersion(t *testing.T) {
	r := &fakeRunner{
		out: map[string]string{"node": "v20.11.1\n", "git": "git version 2.43.0.windows.1"},
		err: map[string]error{"ghost": errors.New("not found")},
	}
	env := handlertest.New(t, nil)
	env.Add(t, NewHandler(r, ""))

	for name, want := range map[string]string{"node": "20.11.1", "git": "2.43.0.windows.1", "ghost": NotInstalled} {
		res := env.Send(t, command.GetPackageVersion, map[string]string{"name": name}, 0)
		if res.Value != want {
			t.Errorf("version(%s) = %v, want %s", name, res.Value, want)
		}
	}
}

func TestParseVersion(t *testing.T) {
	if ParseVersion("") != NotInstalled || ParseVersion("1.2") != NotInstalled {
		t.Error("ParseVersion accepted a partial version")
	}
	if got := ParseVersion("yarn 1.22.19-beta extra"); got != "1.22.19-beta" {
		t.Errorf("ParseVersion() = %q", got)
	}
}
