package engine

import "github.com/flowgraph/dagflow/kill"

// KillSwitch is a client-owned cancellation token for a job started
// through this package, per spec.md §6's embedding API.
type KillSwitch = kill.Switch

// NewKillSwitch allocates a detached kill switch. Pass it to any job
// function below via WithKillSwitch to bind it to that job's router
// before the crew launches.
func NewKillSwitch() *KillSwitch {
	return kill.New()
}

// FreeKillSwitch detaches ks from whatever router it is bound to,
// leaving it ready to be reused on a later job (original_source/src/
// killers.c's refcounted enable/disable pair, see kill.Switch.Enabled).
func FreeKillSwitch(ks *KillSwitch) {
	if ks != nil {
		ks.Disable()
	}
}

// WithKillSwitch binds ks to the job's router once it exists, so the
// caller can fire ks from another goroutine to cancel the job.
func WithKillSwitch(ks *KillSwitch) Option {
	return func(o *Options) { o.killSwitch = ks }
}
