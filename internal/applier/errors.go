package applier

import "fmt"

// ExecError reports a failed SQL statement inside a migration's transaction.
// Statement is the 1-based position of the failing statement within the
// script. The enclosing transaction has been rolled back: no partial effect
// of this migration persists and no ledger row was written.
type ExecError struct {
	Script    string
	Statement int
	Err       error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("statement %d of %s failed: %v", e.Statement, e.Script, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}
