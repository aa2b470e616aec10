package clock

import (
	"go.uber.org/zap"

	"github.com/hdlbridge/gpi/backend"
	"github.com/hdlbridge/gpi/callback"
	"github.com/hdlbridge/gpi/dispatch"
	"github.com/hdlbridge/gpi/errors"
	"github.com/hdlbridge/gpi/object"
)

// Driver toggles a signal every half period until an exit flag or toggle
// limit is observed. It re-registers a fresh timed callback for each half
// period; teardown happens on a scheduled fire, never synchronously in
// Stop.
type Driver struct {
	sig  *object.Handle
	be   backend.Backend
	disp *dispatch.Dispatcher
	log  *zap.Logger

	value      string
	halfPeriod uint64
	maxToggles int
	toggles    int

	stop bool
	done bool
}

// New creates an idle clock driver for the given signal.
func New(sig *object.Handle, be backend.Backend, disp *dispatch.Dispatcher, log *zap.Logger) *Driver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Driver{sig: sig, be: be, disp: disp, log: log}
}

// Start deposits the initial value and schedules the first toggle.
// maxToggles of zero runs until Stop.
func (d *Driver) Start(initial string, halfPeriod uint64, maxToggles int) error {
	if d.done || d.stop {
		return errors.StaleHandle(errors.PhaseArm, "clock driver already stopped")
	}
	if halfPeriod == 0 {
		return errors.InvalidInput(errors.PhaseArm, "clock half period must be non-zero")
	}
	if initial != "0" && initial != "1" {
		return errors.InvalidInput(errors.PhaseArm, "clock initial value must be 0 or 1")
	}
	if err := d.sig.SetBinStr(backend.Deposit, initial); err != nil {
		return err
	}
	d.value = initial
	d.halfPeriod = halfPeriod
	d.maxToggles = maxToggles
	return d.rearm()
}

// Stop requests shutdown. Only the exit flag is set here; the driver
// tears itself down on its next scheduled fire.
func (d *Driver) Stop() {
	d.stop = true
}

// Done reports whether the driver has torn itself down.
func (d *Driver) Done() bool {
	return d.done
}

// Toggles returns the number of toggles driven so far.
func (d *Driver) Toggles() int {
	return d.toggles
}

func (d *Driver) rearm() error {
	// Each half period gets a fresh callback handle.
	_, err := callback.NewTimed(d.be, d.disp, d.log, d.halfPeriod, d.fire, d)
	return err
}

func (d *Driver) fire(ctx any) {
	drv := ctx.(*Driver)
	if drv.stop {
		drv.done = true
		return
	}

	if drv.value == "0" {
		drv.value = "1"
	} else {
		drv.value = "0"
	}
	if err := drv.sig.SetBinStr(backend.Deposit, drv.value); err != nil {
		drv.log.Error("clock drive failed, stopping",
			zap.String("signal", drv.sig.Path()),
			zap.Error(err),
		)
		drv.done = true
		return
	}
	drv.toggles++

	if drv.maxToggles > 0 && drv.toggles >= drv.maxToggles {
		drv.done = true
		return
	}

	if err := drv.rearm(); err != nil {
		drv.log.Error("clock re-registration failed, stopping",
			zap.String("signal", drv.sig.Path()),
			zap.Error(err),
		)
		drv.done = true
	}
}
