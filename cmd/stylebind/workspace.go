package main

import (
	"fmt"

	"github.com/gnana997/stylebind/pkg/bridge"
	"github.com/gnana997/stylebind/pkg/convert"
	"github.com/gnana997/stylebind/pkg/document"
	"github.com/gnana997/stylebind/pkg/styles"
	"github.com/gnana997/stylebind/pkg/variables"
	"github.com/gnana997/stylebind/pkg/watch"
)

// workspace is one open document with its caches and converter.
type workspace struct {
	session   *document.Session
	styles    *styles.Cache
	vars      *variables.Cache
	converter *convert.Converter
}

func (a *app) openWorkspace(path string) (*workspace, error) {
	sess, err := document.Open(path, a.logger)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}

	conv := a.cfg.convention()
	styleCache := styles.NewCache(sess, a.cfg.styleCacheSize(), a.logger)
	vars := variables.NewCache(sess, conv, a.logger)

	w := &workspace{
		session:   sess,
		styles:    styleCache,
		vars:      vars,
		converter: convert.NewConverter(styleCache, vars, conv, a.logger),
	}
	sess.OnReload(w.invalidate)
	return w, nil
}

// invalidate drops cached styles and variables after the document changed.
func (w *workspace) invalidate() {
	w.styles.Purge()
	w.vars.Invalidate()
}

// selectNodes replaces the document's selection when ids or pattern is set.
func (w *workspace) selectNodes(ids []string, pattern string) error {
	switch {
	case len(ids) > 0:
		return w.session.Select(ids)
	case pattern != "":
		_, err := w.session.SelectPattern(pattern)
		return err
	default:
		return nil
	}
}

func (a *app) newBridge(w *workspace, post bridge.Poster, opts bridge.Options) *bridge.Bridge {
	return bridge.New(w.session, w.converter, post, opts, a.logger)
}

// bridgedReloader reloads the session only while the bridge is idle, so a
// conversion in flight finishes against the tree it started on.
type bridgedReloader struct {
	bridge  *bridge.Bridge
	session *document.Session
}

func (r bridgedReloader) Reload() error {
	return r.bridge.Exclusive(r.session.Reload)
}

// startWatcher reloads the workspace document whenever its file changes.
// Reloads are serialized with the messages b handles.
func (a *app) startWatcher(w *workspace, b *bridge.Bridge) (*watch.Watcher, error) {
	target := bridgedReloader{bridge: b, session: w.session}
	wt, err := watch.New(w.session.Path(), target, watch.Options{
		Debounce: a.cfg.debounce(),
		OnReload: func(err error) {
			if err == nil {
				stats := w.styles.Stats()
				a.logger.Debug("caches reset", "style_hits", stats.Hits, "style_misses", stats.Misses)
			}
		},
	}, a.logger)
	if err != nil {
		return nil, err
	}
	if err := wt.Start(); err != nil {
		return nil, err
	}
	a.logger.Info("watching document", "path", w.session.Path())
	return wt, nil
}
