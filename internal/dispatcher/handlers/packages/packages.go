// Package packages provides handlers that install global packages and
// query installed tool versions by running external programs.
//
// Process failures never surface as errors: an install resolves to false
// and a version query resolves to NotInstalled.
package packages

import (
	"context"
	"errors"
	"os/exec"
	"regexp"
	"strings"

	"github.com/dshills/quickbar/internal/dispatcher/command"
	"github.com/dshills/quickbar/internal/dispatcher/execctx"
	"github.com/dshills/quickbar/internal/dispatcher/handler"
)

// NotInstalled is the version reported for a tool that cannot be run or
// prints no version.
const NotInstalled = "not installed"

// DefaultInstaller installs global packages.
const DefaultInstaller = "volta"

var versionPattern = regexp.MustCompile(`\d+.\d+.\d+[^\s]*`)

// Runner runs a program to completion and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// Handler binds package commands.
type Handler struct {
	runner    Runner
	installer string
}

// NewHandler creates a package handler running installer for installs.
func NewHandler(runner Runner, installer string) *Handler {
	if installer == "" {
		installer = DefaultInstaller
	}
	return &Handler{runner: runner, installer: installer}
}

// Register binds the handler's commands.
func (h *Handler) Register(r handler.Registrar) error {
	return handler.RegisterAll(r, handler.Table{
		command.InstallGlobalPackage: h.install,
		command.GetPackageVersion:    h.version,
	})
}

// install reports success unless the installer could not start or its
// output mentions a permission problem.
func (h *Handler) install(ctx context.Context, ec *execctx.Context) handler.Result {
	var pkgs []string
	for _, p := range ec.Param("packages").Array() {
		if s := p.String(); s != "" {
			pkgs = append(pkgs, s)
		}
	}
	if len(pkgs) == 0 {
		return handler.Value(false)
	}

	out, err := h.runner.Run(ctx, h.installer, append([]string{"install"}, pkgs...)...)
	if err != nil {
		ec.Logger.Debug("installer exited", "installer", h.installer, "error", err)
		if errors.Is(err, exec.ErrNotFound) {
			return handler.Value(false)
		}
	}
	return handler.Value(!strings.Contains(out, "permission"))
}

func (h *Handler) version(ctx context.Context, ec *execctx.Context) handler.Result {
	name := ec.Param("name").String()
	if name == "" {
		return handler.Value(NotInstalled)
	}
	out, err := h.runner.Run(ctx, name, "--version")
	if err != nil {
		ec.Logger.Debug("version query", "name", name, "error", err)
	}
	return handler.Value(ParseVersion(out))
}

// ParseVersion returns the first x.y.z token of out, or NotInstalled.
func ParseVersion(out string) string {
	if v := versionPattern.FindString(strings.TrimSpace(out)); v != "" {
		return v
	}
	return NotInstalled
}
