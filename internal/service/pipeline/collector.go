package pipeline

import "golang.org/x/sync/errgroup"

// Collect runs the audio and video tasks concurrently and joins both
// results. Both tasks are submitted before either result is awaited and
// a failure in one never interrupts the other; the join reports the
// first error only after both have finished, since downstream fusion
// needs both results.
func Collect[A, V any](audioTask func() (A, error), videoTask func() (V, error)) (A, V, error) {
	var (
		g     errgroup.Group
		audio A
		video V
	)

	g.Go(func() error {
		result, err := audioTask()
		if err != nil {
			return err
		}
		audio = result
		return nil
	})
	g.Go(func() error {
		result, err := videoTask()
		if err != nil {
			return err
		}
		video = result
		return nil
	})

	err := g.Wait()
	return audio, video, err
}
