// Command evergreen opens the interactive particle tree in a window.
//
// Configuration comes from an optional YAML file (-config) with EVERGREEN_*
// environment overrides. Portraits and prizes can be added from
// directories. With -gesture-addr (or gesture.feed_addr) a WebSocket feed
// accepts readings from an external hand-pose classifier and the mouse
// proxy is switched off.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/phanxgames/evergreen"
	"github.com/phanxgames/evergreen/ebitenbackend"
	"github.com/phanxgames/evergreen/gesturefeed"
	"github.com/phanxgames/evergreen/internal/log"
)

var imageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

func main() {
	configPath := flag.String("config", "", "YAML config file")
	photoDir := flag.String("photos", "", "directory of portrait images")
	prizeDir := flag.String("prizes", "", "directory of prize images")
	gestureAddr := flag.String("gesture-addr", "", "listen address of the classifier feed (overrides config)")
	width := flag.Int("width", 1280, "window width")
	height := flag.Int("height", 800, "window height")
	shots := flag.String("screenshots", "screenshots", "screenshot directory")
	flag.Parse()

	if err := run(*configPath, *photoDir, *prizeDir, *gestureAddr, *width, *height, *shots); err != nil {
		fmt.Fprintln(os.Stderr, "evergreen:", err)
		os.Exit(1)
	}
}

func run(configPath, photoDir, prizeDir, gestureAddr string, width, height int, shots string) error {
	cfg, err := evergreen.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Debug {
		cfg.LogLevel = "debug"
	}
	log.Init(cfg.LogLevel)
	if gestureAddr != "" {
		cfg.Gesture.FeedAddr = gestureAddr
	}

	scene, err := evergreen.NewScene(cfg)
	if err != nil {
		return err
	}
	if err := addImages(photoDir, scene.AddPortraits); err != nil {
		return fmt.Errorf("photos: %w", err)
	}
	if err := addImages(prizeDir, scene.AddPrizes); err != nil {
		return fmt.Errorf("prizes: %w", err)
	}

	rc := ebitenbackend.DefaultRunConfig()
	rc.Width, rc.Height = width, height
	rc.ScreenshotDir = shots
	rc.MouseProxy = cfg.Gesture.FeedAddr == ""

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	if cfg.Gesture.FeedAddr != "" {
		// Listen before the window opens so a busy port fails fast.
		ln, err := net.Listen("tcp", cfg.Gesture.FeedAddr)
		if err != nil {
			return fmt.Errorf("gesture feed: %w", err)
		}
		feed := gesturefeed.NewServer(scene.GestureSlot())
		g.Go(func() error {
			return feed.Serve(ctx, ln)
		})
	}

	// Ebitengine must own the main goroutine; the feed shuts down with it.
	runErr := ebitenbackend.Run(scene, rc)
	stop()
	if err := g.Wait(); err != nil {
		return fmt.Errorf("gesture feed: %w", err)
	}
	return runErr
}

// addImages passes every image file in dir to add. An empty dir is a no-op.
func addImages(dir string, add func(...evergreen.ImageRef)) error {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var refs []evergreen.ImageRef
	for _, e := range entries {
		if e.IsDir() || !slices.Contains(imageExts, strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		refs = append(refs, evergreen.ImageRef(filepath.Join(dir, e.Name())))
	}
	add(refs...)
	return nil
}
