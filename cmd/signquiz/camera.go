package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/signquiz/internal/alphabet"
	"github.com/verte-zerg/signquiz/internal/capture"
	"github.com/verte-zerg/signquiz/internal/classifier"
	"github.com/verte-zerg/signquiz/internal/detector"
	"github.com/verte-zerg/signquiz/internal/logging"
	"github.com/verte-zerg/signquiz/internal/model"
	"github.com/verte-zerg/signquiz/internal/tui"
	"github.com/verte-zerg/signquiz/internal/vision"
)

// cameraFeed runs the recognition pipeline next to a Bubble Tea program.
type cameraFeed struct {
	pipeline *vision.Pipeline
	logger   *logging.Logger
}

func newCameraFeed(alpha alphabet.Alphabet, cfg model.CameraConfig, logger *logging.Logger) (*cameraFeed, error) {
	templates, err := classifier.LoadTemplates(cfg.TemplatesPath)
	if err != nil {
		return nil, fmt.Errorf("no letter templates at %s: %w", cfg.TemplatesPath, err)
	}
	cls, err := classifier.NewTemplateClassifier(templates, alpha, cfg.MinScore)
	if err != nil {
		return nil, fmt.Errorf("failed to build classifier: %w", err)
	}
	detCfg := detector.DefaultConfig()
	detCfg.MaxHands = cfg.MaxHands
	detCfg.MinConfidence = cfg.MinConfidence
	detCfg.MinTrackingConf = cfg.MinTracking
	detCfg.ScriptPath = cfg.ScriptPath
	detCfg.PythonPath = cfg.PythonPath
	det, err := detector.NewMediaPipeDetector(detCfg, nil)
	if err != nil {
		if errors.Is(err, detector.ErrScriptNotFound) {
			return nil, fmt.Errorf("%w (set detector.script in the config)", err)
		}
		return nil, err
	}
	logger.Info("camera configured", "index", cfg.Index, "letters", len(cls.Letters()))
	return &cameraFeed{
		pipeline: &vision.Pipeline{
			Camera:     capture.NewCamera(cfg.Index, capture.DefaultOptions()),
			Detector:   det,
			Classifier: cls,
			Interval:   cfg.FrameInterval,
			Logger:     logger,
		},
		logger: logger,
	}, nil
}

// start runs the pipeline until the returned stop func is called. A nil feed
// starts nothing.
func (f *cameraFeed) start(program *tea.Program) func() {
	if f == nil {
		return func() {}
	}
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := f.pipeline.Run(ctx, func(obs vision.Observation) {
			program.Send(tui.ObservationMsg(obs))
		})
		if err != nil && ctx.Err() == nil {
			f.logger.Error("camera pipeline failed", "error", err)
			program.Send(tui.CameraErrMsg{Err: err})
		}
	}()
	return func() {
		cancel()
		wg.Wait()
	}
}

// templateLetters reports which letters have landmark templates. An unreadable
// file yields an empty set.
func templateLetters(path string) map[alphabet.Letter]bool {
	out := map[alphabet.Letter]bool{}
	templates, err := classifier.LoadTemplates(path)
	if err != nil {
		return out
	}
	for letter, poses := range templates {
		if len(poses) > 0 {
			out[letter] = true
		}
	}
	return out
}
