package driver

import "context"

type sharedDriver struct {
	GraphDriver
}

// Shared wraps a long-lived driver so per-request users can call Close
// without tearing down the underlying connection pool. The owner closes the
// wrapped driver.
func Shared(d GraphDriver) GraphDriver {
	return sharedDriver{GraphDriver: d}
}

func (sharedDriver) Close(context.Context) error {
	return nil
}
