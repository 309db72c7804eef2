package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"finid.backend/internal/domain/entities"
	"finid.backend/pkg/logger"
)

//go:embed templates/*.html
var embedded embed.FS

const (
	layoutFile     = "layout.html"
	reloadDebounce = 200 * time.Millisecond
)

var templateFuncs = template.FuncMap{
	"label": func(choices []entities.Choice, value string) string {
		return entities.ChoiceLabel(choices, value)
	},
	"date": func(t time.Time) string {
		return t.Format("Jan 2, 2006 15:04")
	},
}

// Renderer executes page templates. Each page is parsed together with the
// shared layout.
type Renderer struct {
	mu    sync.RWMutex
	fsys  fs.FS
	dir   string
	pages map[string]*template.Template
}

// NewRenderer parses templates from dir, or from the embedded set when dir is empty
func NewRenderer(dir string) (*Renderer, error) {
	r := &Renderer{dir: dir}
	if dir == "" {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, err
		}
		r.fsys = sub
	} else {
		r.fsys = os.DirFS(dir)
	}

	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) load() error {
	names, err := fs.Glob(r.fsys, "*.html")
	if err != nil {
		return err
	}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		if name == layoutFile {
			continue
		}
		t, err := template.New(layoutFile).Funcs(templateFuncs).ParseFS(r.fsys, layoutFile, name)
		if err != nil {
			return fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[strings.TrimSuffix(name, ".html")] = t
	}

	r.mu.Lock()
	r.pages = pages
	r.mu.Unlock()
	return nil
}

// Render writes the named page. Output is buffered so a failing template
// never leaves a half-written response.
func (r *Renderer) Render(w io.Writer, name string, data interface{}) error {
	r.mu.RLock()
	t, ok := r.pages[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, layoutFile, data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// Watch reparses templates whenever a file in the template directory
// changes. It blocks until ctx is done and is a no-op for embedded templates.
func (r *Renderer) Watch(ctx context.Context) error {
	if r.dir == "" {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(r.dir); err != nil {
		return err
	}
	logger.Info(ctx, "Watching templates", zap.String("dir", r.dir))

	timer := time.NewTimer(reloadDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(ev.Name) != ".html" || ev.Op == fsnotify.Chmod {
				continue
			}
			timer.Reset(reloadDebounce)
		case <-timer.C:
			if err := r.load(); err != nil {
				logger.Warn(ctx, "Template reload failed, keeping previous set", zap.Error(err))
				continue
			}
			logger.Debug(ctx, "Templates reloaded")
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn(ctx, "Template watcher error", zap.Error(err))
		}
	}
}
