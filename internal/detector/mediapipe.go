package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// ScriptName is the hand service shipped under scripts/.
const ScriptName = "hand_service.py"

// ErrScriptNotFound is returned when the hand service script cannot be located.
var ErrScriptNotFound = errors.New(ScriptName + " not found")

// MediaPipeDetector runs MediaPipe Hands in a Python subprocess. Each frame is
// sent as a 4-byte big-endian length followed by JPEG bytes; each reply is one
// JSON line.
type MediaPipeDetector struct {
	cfg        Config
	scriptPath string
	pythonPath string
	stderr     io.Writer

	mu        sync.Mutex
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	started   bool
	idleTimer *time.Timer
}

// NewMediaPipeDetector locates the script and interpreter. The subprocess
// starts lazily on the first frame.
func NewMediaPipeDetector(cfg Config, stderr io.Writer) (*MediaPipeDetector, error) {
	script := cfg.ScriptPath
	if script == "" {
		script = findScript()
	}
	if script == "" {
		return nil, ErrScriptNotFound
	}
	if _, err := os.Stat(script); err != nil {
		return nil, fmt.Errorf("failed to stat hand service: %w", err)
	}
	python := cfg.PythonPath
	if python == "" {
		python = findVenvPython()
	}
	if python == "" {
		python = "python3"
	}
	if stderr == nil {
		stderr = io.Discard
	}
	return &MediaPipeDetector{cfg: cfg, scriptPath: script, pythonPath: python, stderr: stderr}, nil
}

// Detect encodes frame as JPEG and returns the hands reported by the service.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureStarted(); err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	defer buf.Close()

	if err := writeFrame(d.stdin, buf.GetBytes()); err != nil {
		d.shutdownLocked()
		return nil, err
	}
	line, err := d.stdout.ReadBytes('\n')
	if err != nil {
		d.shutdownLocked()
		return nil, fmt.Errorf("failed to read hand service response: %w", err)
	}
	hands, err := decodeResponse(line, d.cfg.MaxHands)
	if err != nil {
		return nil, err
	}
	d.resetIdleTimer()
	return hands, nil
}

// Close stops the subprocess.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdownLocked()
}

func (d *MediaPipeDetector) ensureStarted() error {
	if d.started {
		return nil
	}
	args := []string{
		d.scriptPath,
		"--max-hands", strconv.Itoa(maxInt(d.cfg.MaxHands, 1)),
		"--min-detection", strconv.FormatFloat(d.cfg.MinConfidence, 'f', 2, 64),
		"--min-tracking", strconv.FormatFloat(d.cfg.MinTrackingConf, 'f', 2, 64),
	}
	cmd := exec.Command(d.pythonPath, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	cmd.Stderr = d.stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start hand service: %w", err)
	}
	d.cmd = cmd
	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true
	return nil
}

func (d *MediaPipeDetector) shutdownLocked() error {
	if !d.started {
		return nil
	}
	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}
	if cerr := d.stdin.Close(); cerr != nil {
		_ = cerr
	}
	err := d.cmd.Wait()
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil
	return err
}

func (d *MediaPipeDetector) resetIdleTimer() {
	if d.cfg.IdleTimeout <= 0 {
		return
	}
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(d.cfg.IdleTimeout, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if err := d.shutdownLocked(); err != nil {
			_ = err
		}
	})
}

func writeFrame(w io.Writer, data []byte) error {
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(data)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("failed to write frame length: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

type jsonResponse struct {
	Hands []jsonHand `json:"hands"`
	Error string     `json:"error,omitempty"`
}

type jsonHand struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"`
	Score      float64   `json:"score"`
}

func decodeResponse(line []byte, maxHands int) ([]HandLandmarks, error) {
	var resp jsonResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse hand service response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("hand service: %s", resp.Error)
	}
	hands := make([]HandLandmarks, 0, len(resp.Hands))
	for _, h := range resp.Hands {
		if len(h.Points) != NumLandmarks {
			continue
		}
		lm := HandLandmarks{Handedness: h.Handedness, Score: h.Score}
		copy(lm.Points[:], h.Points)
		hands = append(hands, lm)
		if maxHands > 0 && len(hands) == maxHands {
			break
		}
	}
	return hands, nil
}

func findScript() string {
	candidates := []string{
		filepath.Join("scripts", ScriptName),
	}
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		candidates = append(candidates,
			filepath.Join(dir, "scripts", ScriptName),
			filepath.Join(dir, "..", "share", "signquiz", ScriptName),
		)
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".local", "share", "signquiz", ScriptName))
	}
	return firstExisting(candidates)
}

func findVenvPython() string {
	candidates := []string{
		filepath.Join("venv", "bin", "python"),
		filepath.Join(".venv", "bin", "python"),
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".local", "share", "signquiz", "venv", "bin", "python"))
	}
	return firstExisting(candidates)
}

func firstExisting(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			return abs
		}
		return p
	}
	return ""
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
