package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/comalice/storybook/internal/catalog"
	"github.com/comalice/storybook/internal/config"
	"github.com/comalice/storybook/internal/core"
	"github.com/comalice/storybook/internal/extensibility"
	"github.com/comalice/storybook/internal/primitives"
	"github.com/comalice/storybook/internal/production"
	"github.com/comalice/storybook/internal/session"
	"github.com/comalice/storybook/realtime"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("storybook: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := log.New(os.Stderr, "storybook: ", log.LstdFlags)

	demos := catalog.DefaultDemos()
	if cfg.DemoFile != "" {
		if demos, err = catalog.LoadDemosFile(cfg.DemoFile); err != nil {
			return err
		}
	}

	published := make(chan production.PublishedEvent, 256)
	sysOpts := []core.SystemOption{
		core.WithLogger(logger),
		core.WithVisualizer(&production.DefaultVisualizer{}),
		core.WithPublisher(production.NewChannelPublisher(published)),
	}
	sessOpts := []session.Option{
		session.WithCanvasWidth(cfg.CanvasWidth),
		session.WithSkipHeadless(cfg.SkipHeadless),
	}
	if cfg.SnapshotDir != "" {
		p, err := production.NewPersister(cfg.SnapshotFormat, cfg.SnapshotDir)
		if err != nil {
			return err
		}
		sysOpts = append(sysOpts, core.WithPersister(p))
		if cfg.Restore {
			sessOpts = append(sessOpts, session.WithRestore(p))
		}
	}
	if cfg.Verbose {
		sysOpts = append(sysOpts, core.WithActionRunner(
			extensibility.NewLoggingActionRunner(core.DefaultActionRunner{}, logger)))
	}

	sessOpts = append(sessOpts, session.WithSystemOptions(sysOpts...))
	sess, err := session.New(catalog.Default(), demos, sessOpts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Press Play whenever a demo finishes loading.
	last := sess.Snapshot().Value
	sess.Subscribe(func(snap core.Snapshot) {
		if snap.Value == last {
			return
		}
		fmt.Printf("session: %s -> %s\n", last, snap.Value)
		last = snap.Value
		switch {
		case snap.Matches(session.StateReady):
			if err := sess.Send(session.Play()); err != nil {
				logger.Printf("play: %v", err)
			}
		case snap.Matches(session.StateError):
			fmt.Printf("session: load failed: %s\n", sess.Error())
		}
	})

	rt := realtime.NewRuntime(sess.System(), realtime.Config{
		TickRate: cfg.TickRate,
		Frame:    primitives.NewEvent("Update", nil),
		Targets:  sess.FrameTargets,
		OnTick: func(n uint64) {
			if cfg.Frames > 0 && n >= uint64(cfg.Frames) {
				cancel()
			}
		},
		Logger: logger,
	})

	control := extensibility.NewChannelEventSource(make(chan primitives.Event, 8))
	rt.Attach(ctx, control, session.ActorID)

	if cfg.Watch {
		w, err := catalog.NewWatcher(cfg.DemoFile)
		if err != nil {
			return err
		}
		defer w.Close()
		go reload(ctx, w, sess, control, logger)
	}

	printed := make(chan struct{})
	go func() {
		defer close(printed)
		printTransitions(published)
	}()

	if err := rt.SendEvent(session.ActorID, session.SelectDemo(cfg.Demo)); err != nil {
		return err
	}
	if err := rt.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	rt.Stop()

	fmt.Printf("stopped after %d ticks at %s\n", rt.GetTickNumber(), sess.Snapshot().Value)
	if cfg.DOT {
		for _, a := range sess.Actors() {
			fmt.Println(a.Visualize())
		}
	}
	sess.Close()
	<-printed
	return nil
}

// reload swaps in every new demo set and resets the session so it takes effect.
func reload(ctx context.Context, w *catalog.Watcher, sess *session.Session, control *extensibility.ChannelEventSource, logger *log.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case set, ok := <-w.Events:
			if !ok {
				return
			}
			sess.ReplaceDemos(set)
			logger.Printf("reloaded demos: %s", strings.Join(set.IDs(), ", "))
			if !control.Emit(session.Reset()) {
				logger.Printf("reload: control queue full, reset skipped")
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Printf("watch: %v", err)
		}
	}
}

// printTransitions prints every committed step that changed an actor's state.
func printTransitions(published <-chan production.PublishedEvent) {
	for pe := range published {
		from, to, _ := strings.Cut(pe.Metadata.Transition, " -> ")
		if from == to || pe.Metadata.ActorID == session.ActorID {
			continue
		}
		fmt.Printf("%s %s: %s -> %s (%s)\n",
			pe.Metadata.Timestamp.Format("15:04:05.000"), pe.Metadata.ActorID, from, to, pe.Event.Type)
	}
}
