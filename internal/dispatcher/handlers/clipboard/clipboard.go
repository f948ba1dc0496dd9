// Package clipboard provides handlers that write text, images and files
// to the system clipboard and read copied files back.
package clipboard

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/quickbar/internal/dispatcher/command"
	"github.com/dshills/quickbar/internal/dispatcher/execctx"
	"github.com/dshills/quickbar/internal/dispatcher/handler"
)

// ErrBadDataURL is returned for image payloads that are not base64 data URLs.
var ErrBadDataURL = errors.New("clipboard: malformed data URL")

// Clipboard accesses the system clipboard.
type Clipboard interface {
	WriteText(text string) error
	WriteImage(mime string, data []byte) error
	WriteFiles(paths []string) error
	ReadFiles(ctx context.Context) ([]string, error)
}

// CopiedFile describes one file on the clipboard.
type CopiedFile struct {
	Path        string `json:"path"`
	Name        string `json:"name"`
	IsFile      bool   `json:"isFile"`
	IsDirectory bool   `json:"isDirectory"`
}

// Handler binds clipboard commands.
type Handler struct {
	clip Clipboard
}

// NewHandler creates a clipboard handler.
func NewHandler(clip Clipboard) *Handler {
	return &Handler{clip: clip}
}

// Register binds the handler's commands.
func (h *Handler) Register(r handler.Registrar) error {
	return handler.RegisterAll(r, handler.Table{
		command.CopyText:     h.copyText,
		command.CopyImage:    h.copyImage,
		command.CopyFile:     h.copyFile,
		command.GetCopyFiles: h.copyFiles,
	})
}

func (h *Handler) copyText(ctx context.Context, ec *execctx.Context) handler.Result {
	if err := h.clip.WriteText(ec.Param("text").String()); err != nil {
		return handler.Error(err)
	}
	return handler.Value(true)
}

func (h *Handler) copyImage(ctx context.Context, ec *execctx.Context) handler.Result {
	raw, err := ec.RequireString("img")
	if err != nil {
		return handler.Error(err)
	}
	mime, data, err := DecodeDataURL(raw)
	if err != nil {
		return handler.Error(err)
	}
	if err := h.clip.WriteImage(mime, data); err != nil {
		return handler.Error(err)
	}
	return handler.Value(true)
}

// copyFile reports false for a missing file rather than failing.
func (h *Handler) copyFile(ctx context.Context, ec *execctx.Context) handler.Result {
	file := ec.Param("file").String()
	if file == "" {
		return handler.Value(false)
	}
	if _, err := os.Stat(file); err != nil {
		return handler.Value(false)
	}
	if err := h.clip.WriteFiles([]string{file}); err != nil {
		ec.Logger.Warn("copy file", "file", file, "error", err)
		return handler.Value(false)
	}
	return handler.Value(true)
}

// copyFiles lists the clipboard files that still exist.
func (h *Handler) copyFiles(ctx context.Context, ec *execctx.Context) handler.Result {
	paths, err := h.clip.ReadFiles(ctx)
	if err != nil {
		return handler.Error(err)
	}
	files := make([]CopiedFile, 0, len(paths))
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			ec.Logger.Debug("copied file missing", "path", p, "error", err)
			continue
		}
		files = append(files, CopiedFile{
			Path:        p,
			Name:        filepath.Base(p),
			IsFile:      fi.Mode().IsRegular(),
			IsDirectory: fi.IsDir(),
		})
	}
	return handler.Value(files)
}

// DecodeDataURL splits "data:<mime>;base64,<payload>".
func DecodeDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, ErrBadDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrBadDataURL
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, ErrBadDataURL
	}
	if mime == "" {
		mime = "image/png"
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errors.Join(ErrBadDataURL, err)
	}
	return mime, data, nil
}
