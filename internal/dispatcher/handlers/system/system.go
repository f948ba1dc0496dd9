// Package system provides handlers for operating system services: well
// known paths, notifications, dialogs, file icons, installed apps and the
// shell.
package system

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/dshills/quickbar/internal/dispatcher/command"
	"github.com/dshills/quickbar/internal/dispatcher/execctx"
	"github.com/dshills/quickbar/internal/dispatcher/handler"
	"github.com/dshills/quickbar/internal/search"
	"github.com/dshills/quickbar/internal/view"
)

// Paths resolves well-known directories.
type Paths interface {
	Home() (string, error)
	Path(name string) (string, error)
}

// Shell performs desktop shell actions.
type Shell interface {
	ShowItemInFolder(ctx context.Context, path string) error
	ResolveShortcut(path string) (string, bool)
	Beep(ctx context.Context) error
}

// Desktop provides the UI-bound services of the window shell.
type Desktop interface {
	ShowOpenDialog(ctx context.Context, parent view.Window, opts json.RawMessage) (json.RawMessage, error)
	ShowSaveDialog(ctx context.Context, parent view.Window, opts json.RawMessage) (json.RawMessage, error)
	FileIcon(ctx context.Context, path string) (string, error)
}

// Apps discovers installed applications.
type Apps interface {
	Find(ctx context.Context) ([]search.App, error)
}

// Notifier shows a notification on behalf of the current plugin.
type Notifier interface {
	Notify(ctx context.Context, body string)
}

// Handler binds system commands.
type Handler struct {
	paths    Paths
	shell    Shell
	desktop  Desktop
	notifier Notifier
	apps     Apps
}

// NewHandler creates a system handler.
func NewHandler(paths Paths, shell Shell, desktop Desktop, notifier Notifier) *Handler {
	return &Handler{paths: paths, shell: shell, desktop: desktop, notifier: notifier}
}

// WithApps sets the app finder behind get-app-list.
func (h *Handler) WithApps(apps Apps) *Handler {
	h.apps = apps
	return h
}

// Register binds the handler's commands.
func (h *Handler) Register(r handler.Registrar) error {
	return handler.RegisterAll(r, handler.Table{
		command.GetLocalID:       h.localID,
		command.GetPath:          h.path,
		command.ShowNotification: h.notification,
		command.ShowOpenDialog:   h.openDialog,
		command.ShowSaveDialog:   h.saveDialog,
		command.GetFileIcon:      h.fileIcon,
		command.ShowItemInFolder: h.showItemInFolder,
		command.ResolveShortcut:  h.resolveShortcut,
		command.Beep:             h.beep,
		command.GetAppList:       h.appList,
	})
}

// localID is the path-escaped home directory, stable per user.
func (h *Handler) localID(ctx context.Context, ec *execctx.Context) handler.Result {
	home, err := h.paths.Home()
	if err != nil {
		return handler.Error(err)
	}
	return handler.Value(url.PathEscape(home))
}

func (h *Handler) path(ctx context.Context, ec *execctx.Context) handler.Result {
	name, err := ec.RequireString("name")
	if err != nil {
		return handler.Error(err)
	}
	p, err := h.paths.Path(name)
	if err != nil {
		return handler.Error(err)
	}
	return handler.Value(p)
}

func (h *Handler) notification(ctx context.Context, ec *execctx.Context) handler.Result {
	h.notifier.Notify(ctx, ec.Param("body").String())
	return handler.Success()
}

func (h *Handler) openDialog(ctx context.Context, ec *execctx.Context) handler.Result {
	if h.desktop == nil {
		return handler.NoOp()
	}
	return h.dialog(ctx, ec, h.desktop.ShowOpenDialog)
}

func (h *Handler) saveDialog(ctx context.Context, ec *execctx.Context) handler.Result {
	if h.desktop == nil {
		return handler.NoOp()
	}
	return h.dialog(ctx, ec, h.desktop.ShowSaveDialog)
}

type dialogFunc func(ctx context.Context, parent view.Window, opts json.RawMessage) (json.RawMessage, error)

func (h *Handler) dialog(ctx context.Context, ec *execctx.Context, show dialogFunc) handler.Result {
	parent := ec.Window
	if parent == nil {
		parent = ec.Host
	}
	res, err := show(ctx, parent, ec.Data)
	if err != nil {
		return handler.Error(err)
	}
	return handler.Value(res)
}

func (h *Handler) fileIcon(ctx context.Context, ec *execctx.Context) handler.Result {
	path, err := ec.RequireString("path")
	if err != nil {
		return handler.Error(err)
	}
	if h.desktop == nil {
		return handler.NoOp()
	}
	icon, err := h.desktop.FileIcon(ctx, path)
	if err != nil {
		return handler.Error(err)
	}
	return handler.Value(icon)
}

func (h *Handler) showItemInFolder(ctx context.Context, ec *execctx.Context) handler.Result {
	path, err := ec.RequireString("path")
	if err != nil {
		return handler.Error(err)
	}
	if err := h.shell.ShowItemInFolder(ctx, path); err != nil {
		ec.Logger.Warn("show item in folder", "path", path, "error", err)
		return handler.Value(false)
	}
	return handler.Value(true)
}

// resolveShortcut answers the shortcut's target, or null when there is
// none.
func (h *Handler) resolveShortcut(ctx context.Context, ec *execctx.Context) handler.Result {
	path, err := ec.RequireString("path")
	if err != nil {
		return handler.Error(err)
	}
	target, ok := h.shell.ResolveShortcut(path)
	if !ok {
		return handler.Value(nil)
	}
	return handler.Value(target)
}

func (h *Handler) beep(ctx context.Context, ec *execctx.Context) handler.Result {
	if err := h.shell.Beep(ctx); err != nil {
		ec.Logger.Debug("beep", "error", err)
	}
	return handler.Value(true)
}

func (h *Handler) appList(ctx context.Context, ec *execctx.Context) handler.Result {
	if h.apps == nil {
		return handler.NoOp()
	}
	apps, err := h.apps.Find(ctx)
	if err != nil {
		return handler.Error(err)
	}
	if apps == nil {
		apps = []search.App{}
	}
	return handler.Value(apps)
}
