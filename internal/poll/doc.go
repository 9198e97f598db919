// Package poll provides bounded polling for eventually consistent cluster state.
//
// # Basic Usage
//
// Use Until to call a probe at a fixed interval until its result is no longer
// pending or the timeout elapses:
//
//	pod, err := poll.Until(ctx, poll.Policy{Interval: time.Second, Timeout: 6 * time.Minute},
//	    func(ctx context.Context) (*corev1.Pod, error) {
//	        return client.CoreV1().Pods(ns).Get(ctx, name, metav1.GetOptions{})
//	    },
//	    func(p *corev1.Pod) bool { return p.Status.Phase != corev1.PodRunning },
//	)
//
// # Probe Errors
//
// A probe error stops polling and is returned as is. Mark an error with
// Retryable to keep polling instead:
//
//	if err != nil {
//	    return nil, poll.Retryable(err)
//	}
//
// # Exhaustion
//
// When the timeout elapses while the result is still pending, Until returns an
// *ExhaustedError which matches ErrExhausted:
//
//	if errors.Is(err, poll.ErrExhausted) {
//	    // still pending after the deadline
//	}
package poll
