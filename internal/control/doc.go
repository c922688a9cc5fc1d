// Package control provides the PID speed controller that closes the loop
// around the motor model.
//
// # Usage
//
//	pid, err := control.New(control.Gains{Kp: 15, Ki: 5, Kd: 0.04}, 0.01, 72)
//	if err != nil {
//	    return err
//	}
//	voltage := pid.Step(target - speed)
//
// Note the gain structure: Ki and Kd scale the integral and derivative
// terms inside the Kp product, not as independent parallel gains.
package control
