// Package command defines the closed set of command names understood by
// the dispatcher and the message that carries them.
package command

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Name identifies a command. Only the names declared in this package are
// valid; there is no wildcard routing.
type Name string

// Plugin lifecycle.
const (
	OpenPlugin         Name = "open-plugin"
	RemovePlugin       Name = "remove-plugin"
	DetachPlugin       Name = "detach-plugin"
	ReattachPlugin     Name = "reattach-plugin"
	LoadPlugin         Name = "load-plugin"
	OpenPluginDevTools Name = "open-plugin-dev-tools"

	AddLocalStartPlugin    Name = "add-local-start-plugin"
	RemoveLocalStartPlugin Name = "remove-local-start-plugin"
)

// Features.
const (
	SetFeature    Name = "set-feature"
	RemoveFeature Name = "remove-feature"
	GetFeatures   Name = "get-features"
)

// Windows and the sub-input overlay.
const (
	SetExpandHeight         Name = "set-expand-height"
	SetSubInput             Name = "set-sub-input"
	RemoveSubInput          Name = "remove-sub-input"
	SetSubInputValue        Name = "set-sub-input-value"
	SubInputBlur            Name = "sub-input-blur"
	SendSubInputChangeEvent Name = "send-sub-input-change-event"
	DetachInputChange       Name = "detach-input-change"
	HideMainWindow          Name = "hide-main-window"
	ShowMainWindow          Name = "show-main-window"
	WindowMoving            Name = "window-moving"
)

// Keyboard synthesis.
const (
	SimulateKeyTap   Name = "simulate-key-tap"
	SendKeyDownEvent Name = "send-key-down-event"
)

// Operating system capabilities.
const (
	GetLocalID           Name = "get-local-id"
	GetPath              Name = "get-path"
	CopyText             Name = "copy-text"
	CopyImage            Name = "copy-image"
	CopyFile             Name = "copy-file"
	GetCopyFiles         Name = "get-copy-files"
	ScreenCapture        Name = "screen-capture"
	GetAppList           Name = "get-app-list"
	ShowOpenDialog       Name = "show-open-dialog"
	ShowSaveDialog       Name = "show-save-dialog"
	ShowNotification     Name = "show-notification"
	GetFileIcon          Name = "get-file-icon"
	ShowItemInFolder     Name = "show-item-in-folder"
	ResolveShortcut      Name = "resolve-shortcut"
	Beep                 Name = "beep"
	InstallGlobalPackage Name = "install-global-package"
	GetPackageVersion    Name = "get-package-version"
)

// Plugin-scoped documents.
const (
	DBPut     Name = "db-put"
	DBGet     Name = "db-get"
	DBRemove  Name = "db-remove"
	DBAllDocs Name = "db-all-docs"
)

var known = map[Name]struct{}{}

func init() {
	for _, n := range []Name{
		OpenPlugin, RemovePlugin, DetachPlugin, ReattachPlugin, LoadPlugin, OpenPluginDevTools,
		AddLocalStartPlugin, RemoveLocalStartPlugin,
		SetFeature, RemoveFeature, GetFeatures,
		SetExpandHeight, SetSubInput, RemoveSubInput, SetSubInputValue, SubInputBlur,
		SendSubInputChangeEvent, DetachInputChange, HideMainWindow, ShowMainWindow, WindowMoving,
		SimulateKeyTap, SendKeyDownEvent,
		GetLocalID, GetPath, CopyText, CopyImage, CopyFile, GetCopyFiles, ScreenCapture, GetAppList, ShowOpenDialog, ShowSaveDialog,
		ShowNotification, GetFileIcon, ShowItemInFolder, ResolveShortcut, Beep, InstallGlobalPackage, GetPackageVersion,
		DBPut, DBGet, DBRemove, DBAllDocs,
	} {
		known[n] = struct{}{}
	}
}

// All returns every command name, sorted.
func All() []Name {
	out := make([]Name, 0, len(known))
	for n := range known {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsKnown reports whether n is a declared command.
func (n Name) IsKnown() bool {
	_, ok := known[n]
	return ok
}

// String returns the wire name.
func (n Name) String() string {
	return string(n)
}

// Message is one inbound command. WinID names the originating window;
// zero means the host window.
type Message struct {
	Type  Name            `json:"type"`
	Data  json.RawMessage `json:"data,omitempty"`
	WinID int             `json:"winId,omitempty"`
}

// New builds a message with data marshaled to JSON.
func New(name Name, data any) (Message, error) {
	msg := Message{Type: name}
	if data == nil {
		return msg, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return msg, fmt.Errorf("encode %s data: %w", name, err)
	}
	msg.Data = raw
	return msg, nil
}
