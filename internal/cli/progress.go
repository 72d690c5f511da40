package cli

import (
	"fmt"
	"os"
	"time"
)

// progressStep reports a slow setup step on stderr. A nil step is silent.
type progressStep struct {
	started time.Time
}

func startProgress(label string) *progressStep {
	if noProgress || IsJSONOutput() || IsJSONLOutput() || os.Getenv("ROSARIO_NO_PROGRESS") != "" {
		return nil
	}
	fmt.Fprintf(os.Stderr, "%s... ", label)
	return &progressStep{started: time.Now()}
}

func (p *progressStep) Done() {
	if p == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "done (%s)\n", time.Since(p.started).Round(time.Millisecond))
}

func (p *progressStep) Fail(err error) {
	if p == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "failed: %v\n", err)
}
