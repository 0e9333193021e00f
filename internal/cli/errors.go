package cli

import "fmt"

type abortedError struct {
	action string
}

func (e abortedError) Error() string {
	return fmt.Sprintf("%s aborted", e.action)
}

func errAborted(action string) error {
	return abortedError{action: action}
}

type missingArgError struct {
	name string
}

func (e missingArgError) Error() string {
	return fmt.Sprintf("missing required argument: %s", e.name)
}

func errMissingArg(name string) error {
	return missingArgError{name: name}
}
