package pose

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
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

// mediaPipeIndex maps canonical joints to MediaPipe Pose landmark indices.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
var mediaPipeIndex = map[Joint]int{
	Nose:          0,
	LeftShoulder:  11,
	RightShoulder: 12,
	LeftElbow:     13,
	RightElbow:    14,
	LeftWrist:     15,
	RightWrist:    16,
	LeftHip:       23,
	RightHip:      24,
	LeftKnee:      25,
	RightKnee:     26,
	LeftAnkle:     27,
	RightAnkle:    28,
}

// MediaPipeProvider implements Provider using a Python MediaPipe Pose subprocess.
type MediaPipeProvider struct {
	config     Config
	scriptPath string
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stdout     *bufio.Reader
	mu         sync.Mutex
	started    bool
	lastUsed   time.Time
	idleTimer  *time.Timer
}

// NewMediaPipeProvider creates a new MediaPipe pose provider.
// The Python process is started lazily on first detection.
func NewMediaPipeProvider(config Config) (*MediaPipeProvider, error) {
	scriptPath := config.ScriptPath
	if scriptPath == "" {
		scriptPath = findPoseScript()
	}
	if scriptPath == "" {
		return nil, fmt.Errorf("pose_service.py not found")
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = DefaultConfig().IdleTimeout
	}

	return &MediaPipeProvider{
		config:     config,
		scriptPath: scriptPath,
	}, nil
}

// Detect sends a frame to the service and returns the visible landmarks.
func (p *MediaPipeProvider) Detect(frame *gocv.Mat) (LandmarkMap, bool, error) {
	if frame == nil || frame.Empty() {
		return nil, false, fmt.Errorf("detect pose: empty frame")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureStarted(); err != nil {
		return nil, false, err
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, false, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	// Write length (4 bytes big-endian) + data
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))

	if _, err := p.stdin.Write(length); err != nil {
		return nil, false, p.abort(fmt.Errorf("write length: %w", err))
	}
	if _, err := p.stdin.Write(data); err != nil {
		return nil, false, p.abort(fmt.Errorf("write data: %w", err))
	}

	line, err := p.stdout.ReadString('\n')
	if err != nil {
		return nil, false, p.abort(fmt.Errorf("read response: %w", err))
	}

	landmarks, ok, err := decodePoseResponse([]byte(line), p.config.MinVisibility)
	if err != nil {
		return nil, false, err
	}

	p.lastUsed = time.Now()
	p.resetIdleTimer()

	return landmarks, ok, nil
}

// Close shuts down the Python process.
func (p *MediaPipeProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shutdown()
}

func (p *MediaPipeProvider) ensureStarted() error {
	if p.started {
		return nil
	}

	pythonPath := p.config.PythonPath
	if pythonPath == "" {
		pythonPath = findVenvPython()
	}
	if pythonPath == "" {
		pythonPath = "python3"
	}

	p.cmd = exec.Command(pythonPath, p.scriptPath,
		"--min-detection-confidence", strconv.FormatFloat(p.config.MinConfidence, 'f', 2, 64),
		"--min-tracking-confidence", strconv.FormatFloat(p.config.MinTrackingConf, 'f', 2, 64),
	)

	stdin, err := p.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := p.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	p.cmd.Stderr = os.Stderr

	if err := p.cmd.Start(); err != nil {
		return fmt.Errorf("start pose service: %w", err)
	}

	p.stdin = stdin
	p.stdout = bufio.NewReader(stdout)
	p.started = true
	p.lastUsed = time.Now()

	return nil
}

func (p *MediaPipeProvider) shutdown() error {
	if !p.started {
		return nil
	}

	if p.idleTimer != nil {
		p.idleTimer.Stop()
		p.idleTimer = nil
	}

	if p.stdin != nil {
		p.stdin.Close()
	}

	err := p.cmd.Wait()
	p.started = false
	p.cmd = nil
	p.stdin = nil
	p.stdout = nil

	return err
}

// abort tears down a service whose pipes broke so the next Detect starts a
// fresh one.
func (p *MediaPipeProvider) abort(err error) error {
	p.shutdown()
	return err
}

func (p *MediaPipeProvider) resetIdleTimer() {
	if p.idleTimer != nil {
		p.idleTimer.Stop()
	}
	p.idleTimer = time.AfterFunc(p.config.IdleTimeout, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.shutdown()
	})
}

// poseResponse is the JSON line written by the Python service for each frame.
// Landmarks is empty when no body was found.
type poseResponse struct {
	Landmarks []jsonLandmark `json:"landmarks"`
}

type jsonLandmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

func decodePoseResponse(line []byte, minVisibility float64) (LandmarkMap, bool, error) {
	var resp poseResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, false, fmt.Errorf("parse response: %w", err)
	}
	if len(resp.Landmarks) == 0 {
		return nil, false, nil
	}

	m := make(LandmarkMap, NumJoints)
	for j, idx := range mediaPipeIndex {
		if idx >= len(resp.Landmarks) {
			continue
		}
		lm := resp.Landmarks[idx]
		vis := lm.Visibility
		m[j] = LandmarkPoint{X: lm.X, Y: lm.Y, Z: lm.Z, Visibility: &vis}
	}

	return m.FilterVisible(minVisibility), true, nil
}

func findPoseScript() string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/pose_service.py",
		"../scripts/pose_service.py",
		filepath.Join(execDir, "scripts/pose_service.py"),
		filepath.Join(os.Getenv("HOME"), ".ekkalavya/scripts/pose_service.py"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".ekkalavya/venv/bin/python"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}
