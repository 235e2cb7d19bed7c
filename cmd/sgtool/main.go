package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/sharedgroups/internal/config"
	"github.com/zeusync/sharedgroups/internal/core/catalog"
	"github.com/zeusync/sharedgroups/internal/core/command"
	"github.com/zeusync/sharedgroups/internal/core/document"
	"github.com/zeusync/sharedgroups/internal/core/models"
	"github.com/zeusync/sharedgroups/internal/core/observability/log"
	"github.com/zeusync/sharedgroups/internal/core/world"
	"github.com/zeusync/sharedgroups/internal/injector"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration")
	set := flag.String("set", "", "edit applied to the first instance root, as component.property=value")
	save := flag.Bool("save", false, "write modified group definitions back to their files")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout, options{config: *configPath, set: *set, save: *save}); err != nil {
		fmt.Fprintln(os.Stderr, "sgtool:", err)
		os.Exit(1)
	}
}

type options struct {
	config string
	set    string
	save   bool
}

func run(ctx context.Context, out io.Writer, opts options) error {
	cfg := config.Default()
	if opts.config != "" {
		var err error
		if cfg, err = config.LoadFile(opts.config); err != nil {
			return err
		}
	}
	app := injector.InitializeApp(cfg)
	logger := app.Log.With(log.String("component", "sgtool"))

	docs, err := document.LoadFiles(ctx, cfg.Groups)
	if err != nil {
		return err
	}
	byPath := make(map[string]*document.Document, len(docs))
	for _, doc := range docs {
		byPath[doc.Path] = doc
	}

	var roots []sceneEntity
	for _, sc := range cfg.Scenes {
		w := world.New(models.SceneID(sc.ID), sc.Name)
		if err := app.Manager.AddScene(w); err != nil {
			return err
		}
		history := command.NewHistory(cfg.History.Limit, logger)
		for _, inst := range sc.Instances {
			for i := 0; i < inst.Count; i++ {
				cmd := command.NewImportSharedEntityCmd(app.Manager, w.ID(), byPath[inst.Group], models.NullEntity, nil)
				if _, err := history.Add(cmd); err != nil {
					return fmt.Errorf("scene %d: %w", sc.ID, err)
				}
				history.Finish()
				roots = append(roots, sceneEntity{scene: w.ID(), entity: cmd.Entities()[0]})
			}
		}
		logger.Info("Scene populated", log.Uint32("scene", sc.ID), log.Int("entities", len(w.Entities())))
	}

	if opts.set != "" && len(roots) > 0 {
		cmd, err := parseEdit(app, roots[0], opts.set)
		if err != nil {
			return err
		}
		if _, err := command.NewHistory(cfg.History.Limit, logger).Add(cmd); err != nil {
			return err
		}
	}

	return report(out, app, roots, opts.save)
}

type sceneEntity struct {
	scene  models.SceneID
	entity models.Entity
}

func parseEdit(app *injector.App, target sceneEntity, edit string) (command.Command, error) {
	key, raw, ok := strings.Cut(edit, "=")
	if !ok {
		return nil, fmt.Errorf("edit %q: want component.property=value", edit)
	}
	compName, prop, ok := strings.Cut(key, ".")
	if !ok {
		return nil, fmt.Errorf("edit %q: want component.property=value", edit)
	}
	t, ok := catalog.TypeByName(compName)
	if !ok {
		return nil, fmt.Errorf("edit %q: %w", edit, catalog.ErrUnknownComponent)
	}
	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		return nil, fmt.Errorf("edit %q: %w", edit, err)
	}
	return command.NewPropertyCmd(app.Manager, target.scene, target.entity, t, prop, value), nil
}

func report(out io.Writer, app *injector.App, roots []sceneEntity, save bool) error {
	for _, path := range app.Manager.Paths() {
		modified := app.Manager.Group(path).IsModified()
		doc, err := app.Manager.SaveDocument(path)
		if err != nil {
			return err
		}
		data, err := document.Marshal(doc)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "# group %s\n%s", path, data)
		if save && modified {
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("save %s: %w", path, err)
			}
			app.Log.Info("Group saved", log.String("path", path))
		}
	}
	for _, r := range roots {
		g := app.Manager.FindGroup(r.scene, r.entity)
		extend := app.Manager.InstanceDocument(r.scene, r.entity)
		if g == nil || extend == nil {
			continue
		}
		inst := g.Instance(r.scene, r.entity)
		data, err := yaml.Marshal(extend)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "# scene %d instance %d %s (entity %d)\n%s", r.scene, inst.ID, g.Path(), r.entity, data)
	}
	return nil
}
