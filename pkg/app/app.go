// Package app defines the runtime contract shared by the relayer's cmd
// entrypoints.
package app

import "context"

// Runner represents a runnable application component. Run blocks until ctx is
// cancelled or the component fails.
type Runner interface {
	Run(ctx context.Context) error
}
