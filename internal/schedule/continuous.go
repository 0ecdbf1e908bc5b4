package schedule

import "time"

// ContinuousAction repeats fn at a fixed interval between Start and Stop.
// It backs "while the key is held" controls.
type ContinuousAction struct {
	scheduler *Scheduler
	fn        func()
	interval  time.Duration

	id     ActionID
	active bool
}

func NewContinuousAction(s *Scheduler, interval time.Duration, fn func()) *ContinuousAction {
	return &ContinuousAction{
		scheduler: s,
		fn:        fn,
		interval:  interval,
	}
}

func (c *ContinuousAction) Start() error {
	if c.active {
		return ErrAlreadyActive
	}
	id, err := c.scheduler.Every(c.interval, c.fn)
	if err != nil {
		return err
	}
	c.id = id
	c.active = true
	return nil
}

func (c *ContinuousAction) Stop() {
	if !c.active {
		return
	}
	c.scheduler.Cancel(c.id)
	c.id = 0
	c.active = false
}

func (c *ContinuousAction) Active() bool {
	return c.active
}
