package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/roadmap/internal/repository"
)

// parseSeqRef interprets "#12" or "12" as a project sequence number.
func parseSeqRef(ref string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(ref), "#"))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// notFound wraps repository.ErrNotFound with a user-facing description.
func notFound(kind, ref string) error {
	return fmt.Errorf("%s %q: %w", kind, ref, repository.ErrNotFound)
}

// IsNotFound reports whether err stems from a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("import validation failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%s", msg)
}
