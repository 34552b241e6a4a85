package trajectory

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sink persists a finished Trajectory. Callers supply one when
// constructing a Logger; the default (nil) discards trajectories, which
// is appropriate for tests and for runtimes that haven't configured
// persistence.
type Sink interface {
	Write(t Trajectory) error
}

// Logger starts, steps, and ends trajectories. Start/Complete operations
// are synchronous; End is asynchronous (spawns the sink write in its own
// goroutine) to allow persistence flush without blocking the caller,
// matching §4.9: "end_trajectory is async to allow persistence flush."
//
// The mutex-guarded map-of-pointers shape mirrors tape.Recorder's
// mu-guarded *Tape, generalized from "one tape per provider wrapper" to
// "one trajectory per episode ID, many concurrent episodes."
type Logger struct {
	mu           sync.Mutex
	trajectories map[string]*Trajectory
	sink         Sink
}

// NewLogger builds a Logger that flushes finished trajectories to sink.
// A nil sink discards them.
func NewLogger(sink Sink) *Logger {
	return &Logger{trajectories: make(map[string]*Trajectory), sink: sink}
}

// StartTrajectory begins a new episode and returns its ID.
func (l *Logger) StartTrajectory(agentID string, opts ...func(*Trajectory)) string {
	id := uuid.NewString()
	t := &Trajectory{
		TrajectoryID: id,
		AgentID:      agentID,
		StartTime:    time.Now(),
	}
	for _, opt := range opts {
		opt(t)
	}

	l.mu.Lock()
	l.trajectories[id] = t
	l.mu.Unlock()
	return id
}

// WithEpisodeID sets Trajectory.EpisodeID at StartTrajectory time.
func WithEpisodeID(id string) func(*Trajectory) { return func(t *Trajectory) { t.EpisodeID = id } }

// WithScenarioID sets Trajectory.ScenarioID at StartTrajectory time.
func WithScenarioID(id string) func(*Trajectory) { return func(t *Trajectory) { t.ScenarioID = id } }

// StartStep appends a new Step to trajectoryID and returns its step_id.
func (l *Logger) StartStep(trajectoryID string, envState map[string]any) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, ok := l.trajectories[trajectoryID]
	if !ok {
		return "", fmt.Errorf("trajectory: unknown trajectory %q", trajectoryID)
	}

	stepID := uuid.NewString()
	t.Steps = append(t.Steps, Step{
		StepID:           stepID,
		StepNumber:       len(t.Steps),
		Timestamp:        time.Now(),
		EnvironmentState: envState,
	})
	return stepID, nil
}

// CompleteStep fills in the rest of a previously started step.
func (l *Logger) CompleteStep(trajectoryID, stepID string, fill func(*Step)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, ok := l.trajectories[trajectoryID]
	if !ok {
		return fmt.Errorf("trajectory: unknown trajectory %q", trajectoryID)
	}
	for i := range t.Steps {
		if t.Steps[i].StepID == stepID {
			fill(&t.Steps[i])
			t.TotalReward += t.Steps[i].Reward
			return nil
		}
	}
	return fmt.Errorf("trajectory: unknown step %q in trajectory %q", stepID, trajectoryID)
}

// EndTrajectory finalizes trajectoryID with status and final metrics,
// then flushes it to the sink asynchronously. The trajectory is removed
// from in-memory tracking immediately; callers that need the finished
// value should capture it via a sink, not by re-reading the logger.
func (l *Logger) EndTrajectory(trajectoryID, status string, metrics map[string]any) {
	l.mu.Lock()
	t, ok := l.trajectories[trajectoryID]
	if ok {
		delete(l.trajectories, trajectoryID)
	}
	l.mu.Unlock()

	if !ok {
		return
	}

	t.EndTime = time.Now()
	t.DurationMS = t.EndTime.Sub(t.StartTime).Milliseconds()
	t.Status = status
	t.Metrics = metrics

	if l.sink == nil {
		return
	}
	go func(final Trajectory) {
		_ = l.sink.Write(final)
	}(*t)
}
