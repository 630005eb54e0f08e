package evergreen

import (
	"encoding/json"
	"errors"
	"fmt"
)

// testStep represents a single action in a scenario script.
type testStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	Pose   string  `json:"pose,omitempty"`
	Value  float64 `json:"value,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Frames int     `json:"frames,omitempty"`
	Status string  `json:"status,omitempty"`
}

// testScript is the top-level JSON structure for a scenario script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

var knownActions = map[string]bool{
	"start": true, "stop": true, "flip": true, "exit": true,
	"blend": true, "toggle": true, "gesture": true, "sweep": true,
	"wait": true, "screenshot": true, "expect": true,
}

// TestRunner drives a scene through a scripted sequence of UI operations,
// injected gestures, waits and status expectations, one step per frame.
// Attach to a Scene via SetTestRunner.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
	failures  []string
}

// LoadTestScript parses a JSON scenario script and returns a TestRunner
// ready to be attached to a Scene via SetTestRunner.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, errors.New("parse test script: no steps")
	}
	for i, st := range script.Steps {
		if !knownActions[st.Action] {
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a TestRunner to the scene. The runner's step method
// is called at the start of every Scene.Update.
func (s *Scene) SetTestRunner(runner *TestRunner) {
	s.testRunner = runner
}

// Done reports whether all steps in the script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// Failures returns the messages of every failed expect step.
func (r *TestRunner) Failures() []string {
	return r.failures
}

// step advances the runner by one frame. Called from Scene.Update.
func (r *TestRunner) step(s *Scene) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(s.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "start":
		s.StartLotteryRound()
	case "stop":
		s.StopLotteryRound()
	case "flip":
		s.FlipWinnerCard()
	case "exit":
		s.ExitLottery()
	case "blend":
		s.SetBlendTarget(st.Value)
	case "toggle":
		s.ToggleExplode()
	case "gesture":
		s.InjectHold(st.Pose, st.X, st.Y, st.Frames)
	case "sweep":
		s.InjectSweep(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "screenshot":
		s.Screenshot(st.Label)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "expect":
		if got := s.LotteryStatus().String(); got != st.Status {
			msg := fmt.Sprintf("step %d: status = %s, want %s", r.cursor-1, got, st.Status)
			r.failures = append(r.failures, msg)
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(s.injectQueue) == 0 {
		r.done = true
	}
}
