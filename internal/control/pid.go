package control

// PID is a scalar PID loop. The first update after construction or Reset
// has no derivative term but already integrates the error.
type PID struct {
	Kp       float64
	Ki       float64
	Kd       float64
	integral float64
	prevErr  float64
	first    bool
}

func NewPID(kp, ki, kd float64) *PID {
	return &PID{
		Kp:    kp,
		Ki:    ki,
		Kd:    kd,
		first: true,
	}
}

// Update returns the control output for error err measured dt seconds
// after the previous update.
func (p *PID) Update(err, dt float64) float64 {
	if dt > 0 {
		p.integral += err * dt
	}
	if p.first || dt <= 0 {
		p.prevErr = err
		p.first = false
		return p.Kp*err + p.Ki*p.integral
	}

	derivative := (err - p.prevErr) / dt
	p.prevErr = err

	return p.Kp*err + p.Ki*p.integral + p.Kd*derivative
}

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
}
