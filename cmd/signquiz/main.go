// Package main provides the CLI entrypoint for signquiz.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/signquiz/internal/adaptive"
	"github.com/verte-zerg/signquiz/internal/alphabet"
	"github.com/verte-zerg/signquiz/internal/classifier"
	"github.com/verte-zerg/signquiz/internal/config"
	"github.com/verte-zerg/signquiz/internal/detector"
	"github.com/verte-zerg/signquiz/internal/logging"
	"github.com/verte-zerg/signquiz/internal/model"
	"github.com/verte-zerg/signquiz/internal/phrase"
	"github.com/verte-zerg/signquiz/internal/quiz"
	"github.com/verte-zerg/signquiz/internal/signimg"
	"github.com/verte-zerg/signquiz/internal/stats"
	"github.com/verte-zerg/signquiz/internal/statsui"
	"github.com/verte-zerg/signquiz/internal/store"
	"github.com/verte-zerg/signquiz/internal/tui"
)

const (
	defaultCurveWindow = 20
	defaultFrameMs     = 10
	defaultCameraIndex = 0
)

var (
	quizExploration  float64
	quizSeed         int64
	quizVideoTimeout time.Duration

	sharedAlphabet  string
	sharedNoCamera  bool
	sharedCamera    int
	sharedImagesDir string
	sharedDebug     bool

	phraseText string
	phraseFile string

	statsMode        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool

	pruneBefore string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "signquiz",
		Short:         "Adaptive ASL fingerspelling quiz",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runQuizCmd,
	}

	rootCmd.Flags().Float64Var(&quizExploration, "exploration", adaptive.DefaultExploration, "probability of a uniform random pick (0-1)")
	rootCmd.Flags().Int64Var(&quizSeed, "seed", 0, "random seed (0 uses the clock)")
	rootCmd.Flags().DurationVar(&quizVideoTimeout, "video-timeout", quiz.DefaultVideoTimeout, "time limit for video items (0 disables)")

	rootCmd.PersistentFlags().StringVar(&sharedAlphabet, "alphabet", alphabet.Default().String(), "letters to practice")
	rootCmd.PersistentFlags().BoolVar(&sharedNoCamera, "no-camera", false, "disable the camera and video items")
	rootCmd.PersistentFlags().IntVar(&sharedCamera, "camera", defaultCameraIndex, "camera device index")
	rootCmd.PersistentFlags().StringVar(&sharedImagesDir, "images-dir", config.DefaultImagesDir(), "directory with <letter>.png sign images")
	rootCmd.PersistentFlags().BoolVar(&sharedDebug, "debug", false, "write debug diagnostics to the log")

	rootCmd.AddCommand(newPhraseCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLettersCmd())
	rootCmd.AddCommand(newPruneCmd())
	rootCmd.AddCommand(newCalibrateCmd())

	return rootCmd
}

// runtimeConfig is the merged flag and file configuration for one command.
type runtimeConfig struct {
	quiz    model.Config
	camera  model.CameraConfig
	phrases []string
	logPath string
	debug   bool
}

func loadRuntimeConfig(cmd *cobra.Command) (runtimeConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return runtimeConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyFloatConfig(cmd, "exploration", &quizExploration, fileCfg.Quiz.Exploration)
	applyStringConfig(cmd, "alphabet", &sharedAlphabet, fileCfg.Quiz.Alphabet)
	applyStringConfig(cmd, "images-dir", &sharedImagesDir, fileCfg.Quiz.ImagesDir)
	applyInt64Config(cmd, "seed", &quizSeed, fileCfg.Quiz.Seed)
	applyIntConfig(cmd, "camera", &sharedCamera, fileCfg.Camera.Index)
	applyBoolConfig(cmd, "debug", &sharedDebug, fileCfg.Log.Debug)
	if fileCfg.Quiz.Camera != nil && !cmd.Flags().Changed("no-camera") {
		sharedNoCamera = !*fileCfg.Quiz.Camera
	}
	if fileCfg.Quiz.VideoTimeout != nil && !cmd.Flags().Changed("video-timeout") {
		d, err := time.ParseDuration(*fileCfg.Quiz.VideoTimeout)
		if err != nil {
			return runtimeConfig{}, fmt.Errorf("invalid quiz.video-timeout %q: %w", *fileCfg.Quiz.VideoTimeout, err)
		}
		quizVideoTimeout = d
	}

	rc := runtimeConfig{
		quiz: model.Config{
			Exploration:  quizExploration,
			Alphabet:     sharedAlphabet,
			Seed:         quizSeed,
			Camera:       !sharedNoCamera,
			VideoTimeout: quizVideoTimeout,
			ImagesDir:    sharedImagesDir,
		},
		camera:  cameraConfig(fileCfg),
		phrases: fileCfg.Phrase.Phrases,
		logPath: config.DefaultLogPath(),
		debug:   sharedDebug,
	}
	rc.camera.Index = sharedCamera
	if fileCfg.Log.Path != nil {
		rc.logPath = *fileCfg.Log.Path
	}
	if fileCfg.Phrase.File != nil && phraseFile == "" {
		phraseFile = *fileCfg.Phrase.File
	}
	if err := validateConfig(rc.quiz); err != nil {
		return runtimeConfig{}, err
	}
	if err := validateCameraConfig(rc.camera); err != nil {
		return runtimeConfig{}, err
	}
	return rc, nil
}

func cameraConfig(fileCfg config.FileConfig) model.CameraConfig {
	det := detector.DefaultConfig()
	cc := model.CameraConfig{
		FrameInterval: defaultFrameMs * time.Millisecond,
		MaxHands:      det.MaxHands,
		MinConfidence: det.MinConfidence,
		MinTracking:   det.MinTrackingConf,
		MinScore:      classifier.DefaultMinScore,
		TemplatesPath: config.DefaultTemplatesPath(),
	}
	if fileCfg.Camera.FrameMs != nil {
		cc.FrameInterval = time.Duration(*fileCfg.Camera.FrameMs) * time.Millisecond
	}
	if v := fileCfg.Detector.MinConfidence; v != nil {
		cc.MinConfidence = *v
	}
	if v := fileCfg.Detector.MinTracking; v != nil {
		cc.MinTracking = *v
	}
	if v := fileCfg.Detector.MinScore; v != nil {
		cc.MinScore = *v
	}
	if v := fileCfg.Detector.Script; v != nil {
		cc.ScriptPath = *v
	}
	if v := fileCfg.Detector.Python; v != nil {
		cc.PythonPath = *v
	}
	if v := fileCfg.Detector.Templates; v != nil {
		cc.TemplatesPath = *v
	}
	return cc
}

func runQuizCmd(cmd *cobra.Command, _ []string) error {
	rc, err := loadRuntimeConfig(cmd)
	if err != nil {
		return err
	}
	alpha, err := alphabet.Parse(rc.quiz.Alphabet)
	if err != nil {
		return fmt.Errorf("invalid --alphabet: %w", err)
	}
	logger := openLogger(rc)
	defer logger.Sync()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	var feed *cameraFeed
	if rc.quiz.Camera {
		feed, err = newCameraFeed(alpha, rc.camera, logger)
		if err != nil {
			logErrf("camera disabled: %v\n", err)
			feed = nil
		}
	}

	session, err := quiz.NewSession(alpha, adaptive.NewRand(rc.quiz.Seed), quiz.Config{
		Exploration:  rc.quiz.Exploration,
		VideoEnabled: feed != nil,
		VideoTimeout: rc.quiz.VideoTimeout,
	}, quiz.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to start quiz: %w", err)
	}
	quizModel, err := tui.NewQuizModel(session, tui.QuizOptions{
		Images:   signimg.NewCache(rc.quiz.ImagesDir, signimg.DefaultWidth, signimg.DefaultHeight),
		Recorder: st,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("failed to start quiz: %w", err)
	}
	logger.Info("quiz started", "session", session.ID(), "alphabet", alpha.String(), "video", feed != nil)

	program := tea.NewProgram(quizModel, tea.WithAltScreen())
	stop := feed.start(program)
	_, runErr := program.Run()
	stop()
	if runErr != nil {
		return fmt.Errorf("failed to run TUI: %w", runErr)
	}
	if err := quizModel.Err(); err != nil {
		return err
	}
	return writeQuizSummary(cmd.OutOrStdout(), session)
}

// writeQuizSummary prints the finished session and the per-letter error bars
// of the modalities that were practiced.
func writeQuizSummary(w io.Writer, session *quiz.Session) error {
	correct, incorrect, items := session.Counts()
	if correct+incorrect == 0 {
		return nil
	}
	summary, _ := session.Summary()
	acc, pace := stats.SessionMetrics(correct, incorrect, summary.DurationMs)
	if _, err := fmt.Fprintf(w, "Items: %d  Correct: %d  Wrong: %d  Accuracy: %.1f%%  Letters/min: %.1f\n\n",
		items, correct, incorrect, acc*100, pace); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	snap := session.Snapshot()
	for _, mod := range adaptive.Modalities {
		// Trials start at one, so a count of one means the modality never came up.
		if snap.Modality(mod).Trials <= 1 {
			continue
		}
		if err := stats.RenderBars(w, snap, mod, 0); err != nil {
			return fmt.Errorf("failed to write error bars: %w", err)
		}
	}
	return nil
}

func newPhraseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phrase",
		Short: "Fingerspell phrases letter by letter",
		Args:  cobra.NoArgs,
		RunE:  runPhraseCmd,
	}
	cmd.Flags().StringVar(&phraseText, "text", "", "phrase to practice (default: random)")
	cmd.Flags().StringVar(&phraseFile, "file", "", "file with one phrase per line")
	return cmd
}

func runPhraseCmd(cmd *cobra.Command, _ []string) error {
	rc, err := loadRuntimeConfig(cmd)
	if err != nil {
		return err
	}
	alpha, err := alphabet.Parse(rc.quiz.Alphabet)
	if err != nil {
		return fmt.Errorf("invalid --alphabet: %w", err)
	}
	phrases := rc.phrases
	if phraseFile != "" {
		phrases, err = phrase.LoadFile(phraseFile, alpha)
		if err != nil {
			return err
		}
	}
	logger := openLogger(rc)
	defer logger.Sync()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	var feed *cameraFeed
	if rc.quiz.Camera {
		feed, err = newCameraFeed(alpha, rc.camera, logger)
		if err != nil {
			logErrf("camera disabled, type letters instead: %v\n", err)
			feed = nil
		}
	}

	rng := adaptive.NewRand(rc.quiz.Seed)
	phraseModel, err := tui.NewPhraseModel(alpha, tui.PhraseOptions{
		Text:     phraseText,
		Phrases:  phrases,
		Intn:     rng.Intn,
		Images:   signimg.NewCache(rc.quiz.ImagesDir, signimg.DefaultWidth, signimg.DefaultHeight),
		Recorder: st,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("failed to start phrase practice: %w", err)
	}

	program := tea.NewProgram(phraseModel, tea.WithAltScreen())
	stop := feed.start(program)
	_, runErr := program.Run()
	stop()
	if runErr != nil {
		return fmt.Errorf("failed to run TUI: %w", runErr)
	}
	return phraseModel.Err()
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Browse session history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsMode, "mode", "", "session mode filter (quiz or phrase)")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the browser")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := statsConfig(statsMode, statsSince, statsLast, statsCurveWindow)
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsPlain {
		report, err := stats.BuildReport(context.Background(), st, cfg)
		if err != nil {
			return err
		}
		return writePlainReport(cmd.OutOrStdout(), report, cfg.CurveWindow)
	}

	statsModel := statsui.NewModel(statsui.StoreSource(st), cfg)
	program := tea.NewProgram(statsModel, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func writePlainReport(w io.Writer, report stats.Report, window int) error {
	if err := stats.RenderSummary(w, report.Sessions); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	if len(report.Sessions) == 0 {
		return nil
	}
	if err := stats.RenderCurves(w, report.Sessions, window); err != nil {
		return fmt.Errorf("failed to write curves: %w", err)
	}
	if err := stats.RenderLetterTable(w, report.LetterAggsWindow); err != nil {
		return fmt.Errorf("failed to write letter table: %w", err)
	}
	return nil
}

func statsConfig(mode, since string, last, window int) (model.StatsConfig, error) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode != "" && mode != model.ModeQuiz && mode != model.ModePhrase {
		return model.StatsConfig{}, fmt.Errorf("--mode must be %q or %q", model.ModeQuiz, model.ModePhrase)
	}
	if last < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if window <= 0 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be > 0")
	}
	cfg := model.StatsConfig{Mode: mode, Last: last, CurveWindow: window}
	if since != "" {
		parsed, err := parseDate(since)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Since = &parsed
	}
	return cfg, nil
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.Local)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newLettersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "letters",
		Short: "List practice letters with image and template availability",
		Args:  cobra.NoArgs,
		RunE:  runLettersCmd,
	}
}

func runLettersCmd(cmd *cobra.Command, _ []string) error {
	rc, err := loadRuntimeConfig(cmd)
	if err != nil {
		return err
	}
	alpha, err := alphabet.Parse(rc.quiz.Alphabet)
	if err != nil {
		return fmt.Errorf("invalid --alphabet: %w", err)
	}
	templated := templateLetters(rc.camera.TemplatesPath)
	return writeLetters(cmd.OutOrStdout(), alpha, rc.quiz.ImagesDir, templated)
}

func writeLetters(w io.Writer, alpha alphabet.Alphabet, imagesDir string, templated map[alphabet.Letter]bool) error {
	if _, err := fmt.Fprintf(w, "Images: %s\n", imagesDir); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	missing := 0
	for _, letter := range alpha.Letters() {
		image := "ok"
		if !signimg.Exists(imagesDir, letter) {
			image = "missing"
			missing++
		}
		template := "no"
		if templated[letter] {
			template = "yes"
		}
		if _, err := fmt.Fprintf(w, "%s  image %-7s  template %s\n", letter, image, template); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if _, err := fmt.Fprintf(w, "%d letters, %d without image\n", alpha.Len(), missing); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newPruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete sessions that ended before a date",
		Args:  cobra.NoArgs,
		RunE:  runPruneCmd,
	}
	cmd.Flags().StringVar(&pruneBefore, "before", "", "cutoff date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("before")
	return cmd
}

func runPruneCmd(cmd *cobra.Command, _ []string) error {
	cutoff, err := parseDate(pruneBefore)
	if err != nil {
		return fmt.Errorf("invalid --before value: %w", err)
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	n, err := st.DeleteSessionsBefore(context.Background(), cutoff)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d sessions\n", n); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func openLogger(rc runtimeConfig) *logging.Logger {
	logger, err := logging.New(rc.logPath, rc.debug)
	if err != nil {
		logErrf("logging disabled: %v\n", err)
		return logging.Nop()
	}
	return logger
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	det := detector.DefaultConfig()
	return fmt.Sprintf(`# signquiz configuration
# Uncomment a value to enable it. CLI flags override config values.

[quiz]
# exploration = %.2f        # Probability of a uniform random pick (0-1)
# alphabet = %q
# camera = true             # Set false to practice without video items
# video-timeout = %q        # Time limit for video items, "0s" disables
# images-dir = %q
# seed = 0                  # Random seed, 0 uses the clock

[camera]
# index = %d                 # Camera device index
# frame-ms = %d             # Pause between frames in milliseconds

[detector]
# min-confidence = %.1f     # Hand detection confidence (0-1)
# min-tracking = %.1f       # Hand tracking confidence (0-1)
# min-score = %.1f          # Minimum classifier confidence (0-1)
# script = "scripts/hand_service.py"
# python = "python3"
# templates = %q

[phrase]
# phrases = ["HELLO WORLD", "LEARN ASL"]
# file = "phrases.txt"      # One phrase per line, replaces phrases

[log]
# path = %q
# debug = false
`,
		adaptive.DefaultExploration,
		alphabet.Default().String(),
		quiz.DefaultVideoTimeout.String(),
		config.DefaultImagesDir(),
		defaultCameraIndex,
		defaultFrameMs,
		det.MinConfidence,
		det.MinTrackingConf,
		classifier.DefaultMinScore,
		config.DefaultTemplatesPath(),
		config.DefaultLogPath(),
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Exploration < 0 || cfg.Exploration > 1 {
		return fmt.Errorf("--exploration must be between 0 and 1")
	}
	if strings.TrimSpace(cfg.Alphabet) == "" {
		return fmt.Errorf("--alphabet must not be empty")
	}
	if cfg.VideoTimeout < 0 {
		return fmt.Errorf("--video-timeout must be >= 0")
	}
	if cfg.ImagesDir == "" {
		return fmt.Errorf("--images-dir must not be empty")
	}
	return nil
}

func validateCameraConfig(cfg model.CameraConfig) error {
	if cfg.Index < 0 {
		return fmt.Errorf("--camera must be >= 0")
	}
	if cfg.FrameInterval < 0 {
		return fmt.Errorf("camera.frame-ms must be >= 0")
	}
	if cfg.MinConfidence < 0 || cfg.MinConfidence > 1 {
		return fmt.Errorf("detector.min-confidence must be between 0 and 1")
	}
	if cfg.MinTracking < 0 || cfg.MinTracking > 1 {
		return fmt.Errorf("detector.min-tracking must be between 0 and 1")
	}
	if cfg.MinScore < 0 || cfg.MinScore > 1 {
		return fmt.Errorf("detector.min-score must be between 0 and 1")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
