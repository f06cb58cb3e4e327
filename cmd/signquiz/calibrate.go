package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/signquiz/internal/alphabet"
	"github.com/verte-zerg/signquiz/internal/capture"
	"github.com/verte-zerg/signquiz/internal/classifier"
	"github.com/verte-zerg/signquiz/internal/detector"
	"github.com/verte-zerg/signquiz/internal/vision"
)

const defaultCalibrateSamples = 30

var (
	calibrateSamples int
	calibrateReplace bool
)

// errCameraStopped is returned when the pipeline ends while samples are still needed.
var errCameraStopped = errors.New("camera stopped before enough samples were collected")

func newCalibrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calibrate [letters...]",
		Short: "Record landmark templates for letters (default: whole alphabet)",
		RunE:  runCalibrateCmd,
	}
	cmd.Flags().IntVar(&calibrateSamples, "samples", defaultCalibrateSamples, "hand frames averaged per letter")
	cmd.Flags().BoolVar(&calibrateReplace, "replace", false, "replace existing templates instead of adding to them")
	return cmd
}

func runCalibrateCmd(cmd *cobra.Command, args []string) error {
	if calibrateSamples <= 0 {
		return fmt.Errorf("--samples must be > 0")
	}
	rc, err := loadRuntimeConfig(cmd)
	if err != nil {
		return err
	}
	alpha, err := alphabet.Parse(rc.quiz.Alphabet)
	if err != nil {
		return fmt.Errorf("invalid --alphabet: %w", err)
	}
	letters, err := calibrationLetters(alpha, args)
	if err != nil {
		return err
	}
	logger := openLogger(rc)
	defer logger.Sync()

	templates, err := classifier.LoadTemplates(rc.camera.TemplatesPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		templates = classifier.Templates{}
	}

	detCfg := detector.DefaultConfig()
	detCfg.MinConfidence = rc.camera.MinConfidence
	detCfg.MinTrackingConf = rc.camera.MinTracking
	detCfg.ScriptPath = rc.camera.ScriptPath
	detCfg.PythonPath = rc.camera.PythonPath
	det, err := detector.NewMediaPipeDetector(detCfg, nil)
	if err != nil {
		return fmt.Errorf("failed to start hand detector: %w", err)
	}
	pipeline := &vision.Pipeline{
		Camera:   capture.NewCamera(rc.camera.Index, capture.DefaultOptions()),
		Detector: det,
		Interval: rc.camera.FrameInterval,
		Logger:   logger,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	observations := make(chan vision.Observation, calibrateSamples)
	done := make(chan struct{})
	var runErr error
	go func() {
		defer close(done)
		runErr = pipeline.Run(ctx, func(obs vision.Observation) {
			select {
			case observations <- obs:
			default:
			}
		})
	}()

	out := cmd.OutOrStdout()
	reader := bufio.NewReader(cmd.InOrStdin())
	for _, letter := range letters {
		if _, err := fmt.Fprintf(out, "Hold the sign for %s and press enter... ", letter); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if _, err := reader.ReadString('\n'); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read input: %w", err)
		}
		drain(observations)
		samples, err := collectSamples(ctx, observations, done, calibrateSamples)
		if err != nil {
			cancel()
			<-done
			if runErr != nil {
				return runErr
			}
			return err
		}
		tpl, err := classifier.Average(samples)
		if err != nil {
			return err
		}
		if calibrateReplace {
			templates[letter] = nil
		}
		templates[letter] = append(templates[letter], tpl)
		if _, err := fmt.Fprintf(out, "recorded %s from %d frames\n", letter, len(samples)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		logger.Info("template recorded", "letter", letter.String(), "samples", len(samples), "templates", len(templates[letter]))
	}
	cancel()
	<-done

	if err := classifier.SaveTemplates(rc.camera.TemplatesPath, templates); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "Saved templates to %s\n", rc.camera.TemplatesPath)
	return err
}

// calibrationLetters parses args such as "A B" or "ABC" against alpha. No
// args selects every letter.
func calibrationLetters(alpha alphabet.Alphabet, args []string) ([]alphabet.Letter, error) {
	if len(args) == 0 {
		return alpha.Letters(), nil
	}
	requested, err := alphabet.Parse(strings.Join(args, ""))
	if err != nil {
		return nil, fmt.Errorf("invalid letters: %w", err)
	}
	for _, letter := range requested.Letters() {
		if !alpha.Contains(letter) {
			return nil, fmt.Errorf("letter %s is not in the alphabet %s", letter, alpha)
		}
	}
	return requested.Letters(), nil
}

// collectSamples gathers n hands from observations. It stops early when ctx is
// done or the pipeline exits.
func collectSamples(ctx context.Context, observations <-chan vision.Observation, done <-chan struct{}, n int) ([]detector.HandLandmarks, error) {
	samples := make([]detector.HandLandmarks, 0, n)
	for len(samples) < n {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-done:
			return nil, errCameraStopped
		case obs := <-observations:
			if obs.Hand && obs.Landmarks != nil {
				samples = append(samples, *obs.Landmarks)
			}
		}
	}
	return samples, nil
}

func drain(observations <-chan vision.Observation) {
	for {
		select {
		case <-observations:
		default:
			return
		}
	}
}
